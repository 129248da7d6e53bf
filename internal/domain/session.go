package domain

import "strings"

type Role string

const (
	RoleAdmin        Role = "Admin"
	RoleStandardUser Role = "Standard User"
	RoleGuest        Role = "Guest"
)

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleStandardUser, RoleGuest:
		return true
	default:
		return false
	}
}

// ParseRole maps the authority's role strings onto the closed Role set.
// Unrecognised values fall back to Guest.
func ParseRole(value string) Role {
	switch strings.TrimSpace(strings.ToLower(value)) {
	case "admin":
		return RoleAdmin
	case "standard user", "standard_user", "standard":
		return RoleStandardUser
	default:
		return RoleGuest
	}
}

// Session is the bearer token and role issued at login. The token is
// opaque to every service; acquisition happens outside this client.
type Session struct {
	Token string
	Role  Role
}

func (s Session) Active() bool {
	return strings.TrimSpace(s.Token) != ""
}
