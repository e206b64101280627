package verify

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// JWTClaims is the payload embedded in issued session tokens. The token is
// signed, not encrypted: holders can read every field.
type JWTClaims struct {
	jwt.RegisteredClaims
	UID      string `json:"uid,omitempty"`
	Uname    string `json:"uname,omitempty"`
	UserRole string `json:"role,omitempty"`
}

// UserID returns the account id, falling back to the subject claim.
func (c *JWTClaims) UserID() string {
	if c.UID != "" {
		return c.UID
	}
	return c.RegisteredClaims.Subject
}

// Username returns the embedded username.
func (c *JWTClaims) Username() string {
	return c.Uname
}

// Role returns the embedded role.
func (c *JWTClaims) Role() string {
	return c.UserRole
}

// ID implements Identity.
func (c *JWTClaims) ID() string {
	return c.UserID()
}

// Expires returns the expiration time.
func (c *JWTClaims) Expires() time.Time {
	if c.RegisteredClaims.ExpiresAt != nil {
		return c.RegisteredClaims.ExpiresAt.Time
	}
	return time.Time{}
}

// IssuedAtTime returns the issued at time.
func (c *JWTClaims) IssuedAtTime() time.Time {
	if c.RegisteredClaims.IssuedAt != nil {
		return c.RegisteredClaims.IssuedAt.Time
	}
	return time.Time{}
}

var _ Identity = (*JWTClaims)(nil)
