package verify

import (
	"context"
	_ "embed"

	"github.com/goliatone/go-repository-bun"
	"github.com/uptrace/bun"
)

//go:embed data/sql/schema.sql
var schemaSQL string

// EnsureSchema applies the table definitions. Every statement is
// idempotent, so this is safe to run at every boot.
func EnsureSchema(ctx context.Context, db *bun.DB) error {
	if _, err := db.ExecContext(ctx, schemaSQL); err != nil {
		return NewStoreError(err)
	}
	return nil
}

// SeedAdmin creates the initial administrator account if no account with
// that username exists yet. Returns true when the account was created.
func SeedAdmin(ctx context.Context, users Users, username, password string) (bool, error) {
	if _, err := users.GetByUsername(ctx, username); err == nil {
		return false, nil
	} else if !repository.IsRecordNotFound(err) {
		return false, err
	}

	hash, err := HashPassword(password)
	if err != nil {
		return false, err
	}

	_, err = users.Create(ctx, &User{
		Username:     username,
		PasswordHash: hash,
		Role:         RoleAdmin,
	})
	if err != nil {
		return false, err
	}

	return true, nil
}
