package verify

import (
	"strings"

	"github.com/goliatone/go-errors"
)

// ErrInvalidCredentials covers both an unknown username and a wrong
// password; the two are deliberately indistinguishable to the caller so the
// endpoint cannot be used for username enumeration.
var ErrInvalidCredentials = errors.New("invalid credentials", errors.CategoryAuth).
	WithCode(errors.CodeUnauthorized).
	WithTextCode("INVALID_CREDENTIALS")

// ErrUnauthenticated is returned when a request carries no usable bearer
// token.
var ErrUnauthenticated = errors.New("missing or malformed bearer token", errors.CategoryAuth).
	WithCode(errors.CodeUnauthorized).
	WithTextCode("UNAUTHENTICATED")

// ErrForbidden is returned when the caller's role does not meet the
// operation's requirement.
var ErrForbidden = errors.New("insufficient role for this operation", errors.CategoryAuthz).
	WithCode(errors.CodeForbidden).
	WithTextCode("FORBIDDEN")

// ErrTokenExpired signals the embedded expiry has passed.
var ErrTokenExpired = errors.New("token is expired", errors.CategoryAuth).
	WithCode(errors.CodeUnauthorized).
	WithTextCode("TOKEN_EXPIRED")

// ErrTokenMalformed covers unparseable tokens and bad signatures.
var ErrTokenMalformed = errors.New("token is malformed or has an invalid signature", errors.CategoryAuth).
	WithCode(errors.CodeUnauthorized).
	WithTextCode("TOKEN_MALFORMED")

// ErrSelfDemotion guards an admin removing their own admin role.
var ErrSelfDemotion = errors.New("cannot remove admin role from yourself", errors.CategoryValidation).
	WithCode(errors.CodeBadRequest).
	WithTextCode("SELF_DEMOTION")

// ErrSelfDeletion guards an admin deleting their own account.
var ErrSelfDeletion = errors.New("cannot delete yourself", errors.CategoryValidation).
	WithCode(errors.CodeBadRequest).
	WithTextCode("SELF_DELETION")

// ErrDuplicateUsername is returned on a username collision at creation.
var ErrDuplicateUsername = errors.New("username already exists", errors.CategoryConflict).
	WithCode(errors.CodeConflict).
	WithTextCode("DUPLICATE_USERNAME")

// ErrNoEmptyString rejects empty inputs where a value is mandatory.
var ErrNoEmptyString = errors.New("value cannot be an empty string", errors.CategoryBadInput).
	WithCode(errors.CodeBadRequest)

// ErrMismatchedHashAndPassword is the internal bcrypt mismatch marker; the
// service layer translates it to ErrInvalidCredentials before it reaches a
// caller.
var ErrMismatchedHashAndPassword = errors.New("mismatched hash and password", errors.CategoryAuth).
	WithCode(errors.CodeUnauthorized)

// NewValidationError wraps a policy violation with a caller-facing message.
func NewValidationError(msg string) *errors.Error {
	return errors.New(msg, errors.CategoryValidation).
		WithCode(errors.CodeBadRequest).
		WithTextCode("VALIDATION")
}

// NewNotFoundError reports an absent target row.
func NewNotFoundError(msg string) *errors.Error {
	return errors.New(msg, errors.CategoryNotFound).
		WithCode(errors.CodeNotFound).
		WithTextCode("NOT_FOUND")
}

// NewStoreError wraps an underlying persistence failure. The original error
// is kept for server-side logs; callers only ever see the opaque message.
func NewStoreError(err error) *errors.Error {
	return errors.Wrap(err, errors.CategoryInternal, "database error").
		WithCode(errors.CodeInternal).
		WithTextCode("STORE_ERROR")
}

// IsNotFound reports whether the error is (or wraps) a not-found error from
// this package.
func IsNotFound(err error) bool {
	if err == nil {
		return false
	}
	var rich *errors.Error
	if errors.As(err, &rich) {
		return rich.Category == errors.CategoryNotFound
	}
	return false
}

// IsTokenExpiredError will check for expired tokens.
func IsTokenExpiredError(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "token is expired")
}

// IsMalformedError will check for error message.
func IsMalformedError(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "token is malformed") ||
		strings.Contains(err.Error(), "missing or malformed")
}
