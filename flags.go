package verify

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// Flags is the open-ended mapping of verification attributes attached to a
// record. It is a flat map: values are arbitrary JSON-serializable data but
// keys are never merged recursively.
type Flags map[string]any

// Merge returns the shallow union of f and other: every key in other
// overwrites the same key in f, keys only in f are preserved. Neither
// receiver nor argument is mutated. Merging the same set twice is
// idempotent.
func (f Flags) Merge(other Flags) Flags {
	merged := make(Flags, len(f)+len(other))
	for k, v := range f {
		merged[k] = v
	}
	for k, v := range other {
		merged[k] = v
	}
	return merged
}

// Clone returns a shallow copy of f.
func (f Flags) Clone() Flags {
	if f == nil {
		return nil
	}
	clone := make(Flags, len(f))
	for k, v := range f {
		clone[k] = v
	}
	return clone
}

// Value implements driver.Valuer, storing flags as a JSON text column.
func (f Flags) Value() (driver.Value, error) {
	if f == nil {
		return "{}", nil
	}
	b, err := json.Marshal(f)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner. Empty and NULL columns scan as an empty map,
// matching how the store treats records written before flags existed.
func (f *Flags) Scan(src any) error {
	var data []byte
	switch v := src.(type) {
	case nil:
		*f = Flags{}
		return nil
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("flags: cannot scan %T", src)
	}

	if len(data) == 0 {
		*f = Flags{}
		return nil
	}

	out := Flags{}
	if err := json.Unmarshal(data, &out); err != nil {
		return fmt.Errorf("flags: invalid JSON payload: %w", err)
	}
	*f = out
	return nil
}
