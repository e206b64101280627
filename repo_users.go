package verify

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Users persists API accounts. It is the sole owner of the users table.
type Users interface {
	repository.Repository[*User]

	GetByUsername(ctx context.Context, username string) (*User, error)
	List(ctx context.Context) ([]User, error)
	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error
	UpdateRole(ctx context.Context, id uuid.UUID, role UserRole) (*User, error)
	DeleteByID(ctx context.Context, id uuid.UUID) (*User, error)
}

type users struct {
	repository.Repository[*User]
	db *bun.DB
}

var (
	_ Users                        = (*users)(nil)
	_ repository.Repository[*User] = (*users)(nil)
)

// NewUsersRepository builds the accounts repository.
func NewUsersRepository(db *bun.DB) Users {
	repo := repository.NewRepository[*User](db, repository.ModelHandlers[*User]{
		NewRecord: func() *User { return &User{} },
		GetID: func(u *User) uuid.UUID {
			if u == nil {
				return uuid.Nil
			}
			return u.ID
		},
		SetID: func(u *User, id uuid.UUID) {
			if u != nil {
				u.ID = id
			}
		},
		GetIdentifier: func() string {
			return "username"
		},
	})

	return &users{
		Repository: repo,
		db:         db,
	}
}

func (a *users) Create(ctx context.Context, record *User, criteria ...repository.InsertCriteria) (*User, error) {
	prepareUserDefaults(record)
	return a.Repository.Create(ctx, record, criteria...)
}

func (a *users) CreateTx(ctx context.Context, tx bun.IDB, record *User, criteria ...repository.InsertCriteria) (*User, error) {
	prepareUserDefaults(record)
	return a.Repository.CreateTx(ctx, tx, record, criteria...)
}

// GetByUsername looks an account up by exact, case-sensitive username.
func (a *users) GetByUsername(ctx context.Context, username string) (*User, error) {
	record := &User{}
	err := a.db.NewSelect().
		Model(record).
		Where("?TableAlias.username = ?", username).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if isNoRows(err) {
			return nil, repository.NewRecordNotFound().
				WithMetadata(map[string]any{
					"username": username,
				})
		}
		return nil, err
	}

	return record, nil
}

// List returns every account ordered by creation time, newest first. The
// password hash stays on the model; serialization excludes it.
func (a *users) List(ctx context.Context) ([]User, error) {
	var records []User
	err := a.db.NewSelect().
		Model(&records).
		OrderExpr("?TableAlias.created_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (a *users) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	res, err := a.db.NewUpdate().
		Model((*User)(nil)).
		Set("password_hash = ?", passwordHash).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return err
	}

	if affected, _ := res.RowsAffected(); affected == 0 {
		return repository.NewRecordNotFound().
			WithMetadata(map[string]any{
				"id": id.String(),
			})
	}

	return nil
}

func (a *users) UpdateRole(ctx context.Context, id uuid.UUID, role UserRole) (*User, error) {
	res, err := a.db.NewUpdate().
		Model((*User)(nil)).
		Set("role = ?", role).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return nil, err
	}

	if affected, _ := res.RowsAffected(); affected == 0 {
		return nil, repository.NewRecordNotFound().
			WithMetadata(map[string]any{
				"id": id.String(),
			})
	}

	return a.Repository.GetByID(ctx, id.String())
}

// DeleteByID removes the account and returns the deleted record so callers
// can log the username, which is unavailable after the delete.
func (a *users) DeleteByID(ctx context.Context, id uuid.UUID) (*User, error) {
	record, err := a.Repository.GetByID(ctx, id.String())
	if err != nil {
		return nil, err
	}

	if _, err := a.db.NewDelete().
		Model((*User)(nil)).
		Where("id = ?", id).
		Exec(ctx); err != nil {
		return nil, err
	}

	return record, nil
}

func prepareUserDefaults(record *User) {
	if record == nil {
		return
	}

	if record.Role == "" {
		record.Role = RoleUser
	}

	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
}

// IsUniqueViolation reports whether the error is the driver's unique
// constraint failure. Both mattn and modernc sqlite drivers surface the
// constraint name in the message.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "unique constraint")
}

func isNoRows(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, sql.ErrNoRows) ||
		strings.Contains(err.Error(), "no rows in result set")
}
