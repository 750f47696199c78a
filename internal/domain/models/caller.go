package models

import "strings"

// Role gates which areas a caller may act on.
type Role string

const (
	RoleAdmin    Role = "ADMIN"
	RoleManager  Role = "MANAGER"
	RoleOperator Role = "OPERATOR"
)

// ParseRole normalizes a role name and reports whether it is known.
func ParseRole(value string) (Role, bool) {
	role := Role(strings.ToUpper(strings.TrimSpace(value)))
	switch role {
	case RoleAdmin, RoleManager, RoleOperator:
		return role, true
	default:
		return "", false
	}
}

// Caller is the authenticated identity passed explicitly into every service call.
type Caller struct {
	UserID string
	Role   Role
}

// SystemCaller is used by scheduled jobs.
var SystemCaller = Caller{UserID: "system", Role: RoleAdmin}

// Valid reports whether the caller carries a user id and a known role.
func (c Caller) Valid() bool {
	if strings.TrimSpace(c.UserID) == "" {
		return false
	}
	_, ok := ParseRole(string(c.Role))
	return ok
}
