package verify

import (
	"context"
	"fmt"
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
)

var (
	usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_]+$`)
	allDigits       = regexp.MustCompile(`^[0-9]+$`)
)

// ValidateUsername enforces the account naming policy: 3-32 characters,
// letters, digits and underscores only, and not purely numeric (an all-digit
// name is too easy to confuse with an id).
func ValidateUsername(username string) error {
	return validation.Validate(username,
		validation.Required,
		validation.Length(3, 32),
		validation.Match(usernamePattern).Error("must contain only letters, numbers, and underscores"),
		validation.By(func(value any) error {
			s, _ := value.(string)
			if allDigits.MatchString(s) {
				return fmt.Errorf("must not consist only of digits")
			}
			return nil
		}),
	)
}

// UserAdmin implements account lifecycle operations. All of them are
// admin-only; the guard enforces that at the route level, the self-protection
// invariants live here.
type UserAdmin struct {
	users        Users
	logger       Logger
	activitySink ActivitySink
}

// NewUserAdmin wires the admin service over the accounts store.
func NewUserAdmin(users Users) *UserAdmin {
	return &UserAdmin{
		users:        users,
		logger:       defLogger{},
		activitySink: noopActivitySink{},
	}
}

func (s *UserAdmin) WithLogger(logger Logger) *UserAdmin {
	if logger != nil {
		s.logger = logger
	}
	return s
}

// WithActivitySink configures the audit sink for account changes.
func (s *UserAdmin) WithActivitySink(sink ActivitySink) *UserAdmin {
	s.activitySink = normalizeActivitySink(sink)
	return s
}

// Create validates and persists a new account. Role defaults to user. A
// username collision yields ErrDuplicateUsername.
func (s *UserAdmin) Create(ctx context.Context, actor Identity, username, password string, role UserRole) (*User, error) {
	if role == "" {
		role = RoleUser
	}

	if err := ValidateUsername(username); err != nil {
		return nil, NewValidationError(fmt.Sprintf("invalid username: %v", err))
	}

	if err := validation.Validate(password,
		validation.Required,
		validation.Length(MinPasswordLength, 0),
	); err != nil {
		return nil, NewValidationError("password must be at least 6 characters")
	}

	if !IsValidRole(role) {
		return nil, NewValidationError("role must be user or admin")
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to hash password")
	}

	record, err := s.users.Create(ctx, &User{
		Username:     username,
		PasswordHash: hash,
		Role:         role,
	})
	if err != nil {
		if IsUniqueViolation(err) {
			return nil, ErrDuplicateUsername
		}
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to create user")
	}

	s.emit(ctx, actor, ActionCreateUser, fmt.Sprintf("Created user: %s with role: %s", username, role))

	return record, nil
}

// List returns every account, newest first. Password hashes never serialize.
func (s *UserAdmin) List(ctx context.Context) ([]User, error) {
	records, err := s.users.List(ctx)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to list users")
	}
	return records, nil
}

// UpdateRole changes an account's role. An admin may not remove their own
// admin privilege: actor == target with a non-admin role fails
// ErrSelfDemotion.
func (s *UserAdmin) UpdateRole(ctx context.Context, actor Identity, targetID string, role UserRole) (*User, error) {
	if !IsValidRole(role) {
		return nil, NewValidationError("role must be user or admin")
	}

	if actor != nil && actor.ID() == targetID && role != RoleAdmin {
		return nil, ErrSelfDemotion
	}

	id, err := uuid.Parse(targetID)
	if err != nil {
		return nil, NewNotFoundError("user not found")
	}

	record, err := s.users.UpdateRole(ctx, id, role)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, NewNotFoundError("user not found")
		}
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to update user role")
	}

	s.emit(ctx, actor, ActionUpdateUser, fmt.Sprintf("Updated user %s role to: %s", targetID, role))

	return record, nil
}

// Delete removes an account. Self-deletion is prohibited. The deleted
// username is captured before the row disappears so the audit detail can
// name it.
func (s *UserAdmin) Delete(ctx context.Context, actor Identity, targetID string) error {
	if actor != nil && actor.ID() == targetID {
		return ErrSelfDeletion
	}

	id, err := uuid.Parse(targetID)
	if err != nil {
		return NewNotFoundError("user not found")
	}

	deleted, err := s.users.DeleteByID(ctx, id)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return NewNotFoundError("user not found")
		}
		return errors.Wrap(err, errors.CategoryInternal, "failed to delete user")
	}

	s.emit(ctx, actor, ActionDeleteUser, fmt.Sprintf("Deleted user: %s", deleted.Username))

	return nil
}

func (s *UserAdmin) emit(ctx context.Context, actor Identity, action, details string) {
	entry := NewActivityEntry(actor, action, details)
	if err := s.activitySink.Record(ctx, entry); err != nil {
		s.logger.Warn("activity sink record error", "action", action, "error", err)
	}
}
