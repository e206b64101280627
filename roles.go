package verify

// UserRole is the account's access level.
type UserRole = string

const (
	// RoleUser can read verification records and run bulk lookups.
	RoleUser UserRole = "user"
	// RoleAdmin can additionally write records and manage accounts.
	RoleAdmin UserRole = "admin"
)

// IsValid checks the role is one of the two the system knows about.
func IsValidRole(r UserRole) bool {
	switch r {
	case RoleUser, RoleAdmin:
		return true
	default:
		return false
	}
}

// ParseRole safely parses a string into a UserRole.
func ParseRole(roleStr string) (UserRole, bool) {
	role := UserRole(roleStr)
	return role, IsValidRole(role)
}
