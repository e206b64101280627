// Package verify implements an identity-verification record service: it
// links an external chat identity (discord_id) to an in-game identity (ckey)
// together with a set of verification flags, behind username/password
// authentication, role based access control, and an append-only activity log.
//
// The package exposes the service layer (Authenticator, Verifications,
// UserAdmin, Analytics), the persistence layer (RepositoryManager over bun),
// and the HTTP surface (controllers registered on a fiber app). The binary
// lives in cmd/verify-api.
package verify
