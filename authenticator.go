package verify

import (
	"context"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
)

// MinPasswordLength is the password policy: this is the only rule.
const MinPasswordLength = 6

// Auther implements username/password authentication and self-service
// password changes on top of the accounts store.
type Auther struct {
	users        Users
	tokens       *TokenService
	logger       Logger
	activitySink ActivitySink
}

// NewAuthenticator returns a new Authenticator.
func NewAuthenticator(users Users, tokens *TokenService) *Auther {
	return &Auther{
		users:        users,
		tokens:       tokens,
		logger:       defLogger{},
		activitySink: noopActivitySink{},
	}
}

func (s *Auther) WithLogger(logger Logger) *Auther {
	if logger != nil {
		s.logger = logger
	}
	return s
}

// WithActivitySink configures the audit sink for login and password events.
func (s *Auther) WithActivitySink(sink ActivitySink) *Auther {
	s.activitySink = normalizeActivitySink(sink)
	return s
}

// Login verifies the credentials and issues a session token. An unknown
// username and a wrong password return the same error so the endpoint leaks
// nothing about which accounts exist. The returned identity carries no
// password hash.
func (s *Auther) Login(ctx context.Context, username, password string) (string, Identity, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, errors.Wrap(err, errors.CategoryInternal, "failed to retrieve user during login")
	}

	if err := ComparePasswordAndHash(password, user.PasswordHash); err != nil {
		s.logger.Info("login rejected", "username", username)
		return "", nil, ErrInvalidCredentials
	}

	identity := identityFromUser(user)

	token, err := s.tokens.Generate(identity)
	if err != nil {
		return "", nil, err
	}

	s.emit(ctx, identity, ActionLogin, "")

	return token, identity, nil
}

// ChangePassword rehashes and persists a new password after verifying the
// current one. Previously issued tokens stay valid until they expire.
func (s *Auther) ChangePassword(ctx context.Context, identity Identity, currentPassword, newPassword string) error {
	if identity == nil {
		return ErrUnauthenticated
	}

	if err := validation.Validate(newPassword,
		validation.Required,
		validation.Length(MinPasswordLength, 0),
	); err != nil {
		return NewValidationError("password must be at least 6 characters")
	}

	user, err := s.users.GetByID(ctx, identity.ID())
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return ErrInvalidCredentials
		}
		return errors.Wrap(err, errors.CategoryInternal, "failed to retrieve user during password change")
	}

	if err := ComparePasswordAndHash(currentPassword, user.PasswordHash); err != nil {
		return ErrInvalidCredentials
	}

	hash, err := HashPassword(newPassword)
	if err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to hash password")
	}

	if err := s.users.UpdatePassword(ctx, user.ID, hash); err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to persist password")
	}

	s.emit(ctx, identity, ActionPasswordChange, "")

	return nil
}

func (s *Auther) emit(ctx context.Context, actor Identity, action, details string) {
	entry := NewActivityEntry(actor, action, details)
	if err := s.activitySink.Record(ctx, entry); err != nil {
		s.logger.Warn("activity sink record error", "action", action, "error", err)
	}
}

var _ Authenticator = (*Auther)(nil)
