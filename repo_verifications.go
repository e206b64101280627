package verify

import (
	"context"
	"strings"
	"time"

	"github.com/uptrace/bun"
)

// MaxBulkLookup caps the identifiers accepted by a single bulk fetch.
const MaxBulkLookup = 100

// VerificationPatch carries the field-level overwrites for Update. Nil
// pointers leave the stored value untouched; Flags here REPLACE the stored
// flags, unlike the merging Upsert.
type VerificationPatch struct {
	DiscordID *string
	Ckey      *string
	Flags     Flags
	Method    *string

	// VerifiedBy is stamped on every successful patch.
	VerifiedBy string
}

func (p VerificationPatch) isEmpty() bool {
	return p.DiscordID == nil && p.Ckey == nil && p.Flags == nil && p.Method == nil
}

// Verifications is the verification-record store. All identity matching is
// case-insensitive: "ABC" and "abc" address the same record.
type Verifications interface {
	Get(ctx context.Context, discordID string) (*Verification, error)
	GetByCkey(ctx context.Context, ckey string) (*Verification, error)
	List(ctx context.Context, page, limit int, search string) ([]Verification, error)
	BulkGetByDiscordIDs(ctx context.Context, ids []string) ([]Verification, error)
	BulkGetByCkeys(ctx context.Context, ckeys []string) ([]Verification, error)

	// Upsert performs the read-merge-write sequence: flags of an existing
	// record are shallow-merged with newFlags (new keys win) and the row is
	// written back with a fresh updated_at, preserving created_at. The
	// returned bool is true when a new record was created. Upserts for the
	// same discord_id are serialized internally.
	Upsert(ctx context.Context, discordID, ckey string, newFlags Flags, method, verifiedBy string) (*Verification, bool, error)

	Update(ctx context.Context, discordID string, patch VerificationPatch) error
	UpdateByCkey(ctx context.Context, ckey string, patch VerificationPatch) error
	DeleteByDiscordID(ctx context.Context, discordID string) error
	DeleteByCkey(ctx context.Context, ckey string) error
}

type verifications struct {
	db *bun.DB

	// upsertLocks serializes the read-merge-write sequence per discord_id
	// (lower-cased). See Upsert.
	upsertLocks *keyedMutex
	now         func() time.Time
}

var _ Verifications = (*verifications)(nil)

// NewVerificationsRepository builds the verification store.
func NewVerificationsRepository(db *bun.DB) Verifications {
	return &verifications{
		db:          db,
		upsertLocks: newKeyedMutex(),
		now:         time.Now,
	}
}

func (r *verifications) Get(ctx context.Context, discordID string) (*Verification, error) {
	return r.getTx(ctx, r.db, discordID)
}

func (r *verifications) getTx(ctx context.Context, idb bun.IDB, discordID string) (*Verification, error) {
	record := &Verification{}
	err := idb.NewSelect().
		Model(record).
		Where("lower(?TableAlias.discord_id) = lower(?)", discordID).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if isNoRows(err) {
			return nil, NewNotFoundError("verification not found")
		}
		return nil, NewStoreError(err)
	}

	return record, nil
}

func (r *verifications) GetByCkey(ctx context.Context, ckey string) (*Verification, error) {
	record := &Verification{}
	err := r.db.NewSelect().
		Model(record).
		Where("lower(?TableAlias.ckey) = lower(?)", ckey).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if isNoRows(err) {
			return nil, NewNotFoundError("verification not found")
		}
		return nil, NewStoreError(err)
	}

	return record, nil
}

// List returns records ordered by created_at descending. When search is
// non-empty it filters by case-insensitive substring match on discord_id or
// ckey. Pagination is offset based: offset = (page-1)*limit.
func (r *verifications) List(ctx context.Context, page, limit int, search string) ([]Verification, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 50
	}

	var records []Verification
	q := r.db.NewSelect().Model(&records)

	if search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		q = q.Where("lower(?TableAlias.discord_id) LIKE ? OR lower(?TableAlias.ckey) LIKE ?", pattern, pattern)
	}

	err := q.
		OrderExpr("?TableAlias.created_at DESC").
		Limit(limit).
		Offset((page - 1) * limit).
		Scan(ctx)
	if err != nil {
		return nil, NewStoreError(err)
	}

	return records, nil
}

func (r *verifications) BulkGetByDiscordIDs(ctx context.Context, ids []string) ([]Verification, error) {
	return r.bulkGet(ctx, "discord_id", ids)
}

func (r *verifications) BulkGetByCkeys(ctx context.Context, ckeys []string) ([]Verification, error) {
	return r.bulkGet(ctx, "ckey", ckeys)
}

// bulkGet matches any of the provided identifiers (an OR across the set),
// case-insensitively and with no ordering guarantee.
func (r *verifications) bulkGet(ctx context.Context, column string, ids []string) ([]Verification, error) {
	if len(ids) == 0 {
		return nil, NewValidationError("identifier list must not be empty")
	}
	if len(ids) > MaxBulkLookup {
		return nil, NewValidationError("maximum 100 identifiers allowed per request")
	}

	lowered := make([]string, 0, len(ids))
	for _, id := range ids {
		lowered = append(lowered, strings.ToLower(id))
	}

	var records []Verification
	err := r.db.NewSelect().
		Model(&records).
		Where("lower(?TableAlias."+column+") IN (?)", bun.In(lowered)).
		Scan(ctx)
	if err != nil {
		return nil, NewStoreError(err)
	}

	return records, nil
}

func (r *verifications) Upsert(ctx context.Context, discordID, ckey string, newFlags Flags, method, verifiedBy string) (*Verification, bool, error) {
	if method == "" {
		method = DefaultVerificationMethod
	}
	if newFlags == nil {
		newFlags = Flags{}
	}

	// The read and the write below are two statements; the keyed mutex
	// makes them an exclusive section per discord_id so a concurrent upsert
	// cannot slip between them and lose its flags.
	unlock := r.upsertLocks.Lock(strings.ToLower(discordID))
	defer unlock()

	var record *Verification
	var created bool

	err := r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		existing, err := r.getTx(ctx, tx, discordID)
		if err != nil && !IsNotFound(err) {
			return err
		}

		now := r.now().UTC()

		if existing == nil {
			record = &Verification{
				DiscordID:  discordID,
				Ckey:       ckey,
				Flags:      newFlags.Clone(),
				Method:     method,
				VerifiedBy: verifiedBy,
				CreatedAt:  &now,
				UpdatedAt:  &now,
			}
			if _, err := tx.NewInsert().Model(record).Exec(ctx); err != nil {
				return NewStoreError(err)
			}
			created = true
			return nil
		}

		existing.Ckey = ckey
		existing.Flags = existing.Flags.Merge(newFlags)
		existing.Method = method
		existing.VerifiedBy = verifiedBy
		existing.UpdatedAt = &now

		if _, err := tx.NewUpdate().
			Model(existing).
			Column("ckey", "verified_flags", "verification_method", "verified_by", "updated_at").
			Where("id = ?", existing.ID).
			Exec(ctx); err != nil {
			return NewStoreError(err)
		}

		record = existing
		return nil
	})
	if err != nil {
		return nil, false, err
	}

	return record, created, nil
}

func (r *verifications) Update(ctx context.Context, discordID string, patch VerificationPatch) error {
	return r.update(ctx, "discord_id", discordID, patch)
}

func (r *verifications) UpdateByCkey(ctx context.Context, ckey string, patch VerificationPatch) error {
	return r.update(ctx, "ckey", ckey, patch)
}

// update applies a field-level overwrite: supplied fields replace the stored
// values outright, flags included.
func (r *verifications) update(ctx context.Context, column, id string, patch VerificationPatch) error {
	if patch.isEmpty() {
		return NewValidationError("no valid fields to update")
	}

	q := r.db.NewUpdate().Model((*Verification)(nil))

	if patch.DiscordID != nil {
		q = q.Set("discord_id = ?", *patch.DiscordID)
	}
	if patch.Ckey != nil {
		q = q.Set("ckey = ?", *patch.Ckey)
	}
	if patch.Flags != nil {
		q = q.Set("verified_flags = ?", patch.Flags)
	}
	if patch.Method != nil {
		q = q.Set("verification_method = ?", *patch.Method)
	}

	now := r.now().UTC()
	res, err := q.
		Set("verified_by = ?", patch.VerifiedBy).
		Set("updated_at = ?", now).
		Where("lower("+column+") = lower(?)", id).
		Exec(ctx)
	if err != nil {
		return NewStoreError(err)
	}

	if affected, _ := res.RowsAffected(); affected == 0 {
		return NewNotFoundError("verification not found")
	}

	return nil
}

func (r *verifications) DeleteByDiscordID(ctx context.Context, discordID string) error {
	return r.delete(ctx, "discord_id", discordID)
}

func (r *verifications) DeleteByCkey(ctx context.Context, ckey string) error {
	return r.delete(ctx, "ckey", ckey)
}

func (r *verifications) delete(ctx context.Context, column, id string) error {
	res, err := r.db.NewDelete().
		Model((*Verification)(nil)).
		Where("lower("+column+") = lower(?)", id).
		Exec(ctx)
	if err != nil {
		return NewStoreError(err)
	}

	if affected, _ := res.RowsAffected(); affected == 0 {
		return NewNotFoundError("verification not found")
	}

	return nil
}
