package shared

import "strings"

// Role is the single role a user holds.
type Role string

const (
	RoleAdmin      Role = "admin"
	RoleStudent    Role = "student"
	RoleMentor     Role = "mentor"
	RoleSupervisor Role = "supervisor"
)

// Roles lists every known role.
func Roles() []Role {
	return []Role{RoleAdmin, RoleStudent, RoleMentor, RoleSupervisor}
}

// ParseRole normalises and validates a role name.
func ParseRole(raw string) (Role, bool) {
	role := Role(strings.ToLower(strings.TrimSpace(raw)))
	return role, role.IsValid()
}

// IsValid reports whether r is one of the fixed roles.
func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleStudent, RoleMentor, RoleSupervisor:
		return true
	default:
		return false
	}
}

// Identity is the resolved (user id, role) pair behind a validated token.
type Identity struct {
	UserID int64 `json:"user_id"`
	Role   Role  `json:"role"`
}

// Is reports whether the identity holds the given role.
func (i Identity) Is(role Role) bool {
	return i.Role == role
}

// IsZero reports whether the identity is empty.
func (i Identity) IsZero() bool {
	return i.UserID == 0
}
