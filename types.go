package verify

import (
	"context"
	"fmt"
)

// Logger is the minimal logging surface the services need. The binary wires
// a structured logger; tests and defaults use defLogger.
type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

// Identity holds the attributes of an authenticated caller.
type Identity interface {
	ID() string
	Username() string
	Role() string
}

// Authenticator holds methods to deal with authentication.
type Authenticator interface {
	Login(ctx context.Context, username, password string) (string, Identity, error)
	ChangePassword(ctx context.Context, identity Identity, currentPassword, newPassword string) error
}

type publicIdentity struct {
	id       string
	username string
	role     string
}

func (a publicIdentity) ID() string       { return a.id }
func (a publicIdentity) Username() string { return a.username }
func (a publicIdentity) Role() string     { return a.role }

var _ Identity = publicIdentity{}

func identityFromUser(user *User) Identity {
	return publicIdentity{
		id:       user.ID.String(),
		username: user.Username,
		role:     string(user.Role),
	}
}

type defLogger struct{}

func (d defLogger) Error(format string, args ...any) {
	fmt.Printf("[ERR] VERIFY "+newline(format), args...)
}

func (d defLogger) Warn(format string, args ...any) {
	fmt.Printf("[WRN] VERIFY "+newline(format), args...)
}

func (d defLogger) Info(format string, args ...any) {
	fmt.Printf("[INF] VERIFY "+newline(format), args...)
}

func (d defLogger) Debug(format string, args ...any) {
	fmt.Printf("[DBG] VERIFY "+newline(format), args...)
}

func newline(s string) string {
	if len(s) > 0 && s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s
}
