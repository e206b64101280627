package verify

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// User is an API account. Accounts authenticate against the service and are
// the only actors that may touch verification records.
type User struct {
	bun.BaseModel `bun:"table:users,alias:usr"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Username      string     `bun:"username,notnull,unique" json:"username,omitempty"`
	PasswordHash  string     `bun:"password_hash,notnull" json:"-"`
	Role          UserRole   `bun:"role,notnull" json:"role,omitempty"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
}

// Verification links a discord_id to a ckey plus the flags accumulated
// across upserts. discord_id and ckey are matched case-insensitively; the
// stored casing is whatever the first writer sent.
type Verification struct {
	bun.BaseModel `bun:"table:verifications,alias:vrf"`
	ID            int64      `bun:"id,pk,autoincrement" json:"-"`
	DiscordID     string     `bun:"discord_id,notnull,unique" json:"discord_id"`
	Ckey          string     `bun:"ckey,notnull" json:"ckey"`
	Flags         Flags      `bun:"verified_flags,type:text" json:"verified_flags"`
	Method        string     `bun:"verification_method,notnull" json:"verification_method"`
	VerifiedBy    string     `bun:"verified_by" json:"verified_by,omitempty"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
}

// DefaultVerificationMethod is recorded when a writer does not say how the
// identity was verified.
const DefaultVerificationMethod = "manual"

// ActivityEntry is one row of the append-only activity log. UserID is nil
// for system-originated entries. Entries are never mutated or deleted
// through the service.
type ActivityEntry struct {
	bun.BaseModel `bun:"table:activity_log,alias:act"`
	ID            int64      `bun:"id,pk,autoincrement" json:"id"`
	UserID        *uuid.UUID `bun:"user_id,nullzero,type:uuid" json:"user_id,omitempty"`
	Action        string     `bun:"action,notnull" json:"action"`
	Details       string     `bun:"details,nullzero" json:"details,omitempty"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`

	// Username is populated by the activity listing join, not persisted.
	Username string `bun:"username,scanonly" json:"username,omitempty"`
}

// Audit action tags emitted by the services.
const (
	ActionLogin              = "login"
	ActionPasswordChange     = "password_change"
	ActionCreateUser         = "create_user"
	ActionUpdateUser         = "update_user"
	ActionDeleteUser         = "delete_user"
	ActionCreateVerification = "create_verification"
	ActionUpdateVerification = "update_verification"
	ActionDeleteVerification = "delete_verification"
)
