package verify

import (
	"context"
	"database/sql"
	"errors"
	"log"

	"github.com/uptrace/bun"
)

// RepositoryManager exposes all repositories over one shared bun handle.
// Components receive the manager (or individual repositories) at
// construction time; nothing reaches for a process-wide connection.
type RepositoryManager interface {
	Users() Users
	Verifications() Verifications
	Activity() ActivityLog

	Validate() error
	MustValidate()
	RunInTx(ctx context.Context, opts *sql.TxOptions, f func(ctx context.Context, tx bun.Tx) error) error
}

type mngr struct {
	db            *bun.DB
	users         Users
	verifications Verifications
	activity      ActivityLog
}

// NewRepositoryManager wires the repositories over the given database.
func NewRepositoryManager(db *bun.DB) RepositoryManager {
	return &mngr{
		db:            db,
		users:         NewUsersRepository(db),
		verifications: NewVerificationsRepository(db),
		activity:      NewActivityLogRepository(db),
	}
}

func (m mngr) Validate() error {
	if m.users == nil {
		return errors.New("repository users should be initialized")
	}

	if m.verifications == nil {
		return errors.New("repository verifications should be initialized")
	}

	if m.activity == nil {
		return errors.New("repository activity should be initialized")
	}

	return nil
}

func (m mngr) MustValidate() {
	if err := m.Validate(); err != nil {
		log.Panic(err)
	}
}

func (m mngr) RunInTx(ctx context.Context, opts *sql.TxOptions, f func(ctx context.Context, tx bun.Tx) error) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return m.db.RunInTx(ctx, opts, f)
	}
}

func (m mngr) Users() Users {
	return m.users
}

func (m mngr) Verifications() Verifications {
	return m.verifications
}

func (m mngr) Activity() ActivityLog {
	return m.activity
}
