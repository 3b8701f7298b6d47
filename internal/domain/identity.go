package domain

import (
	"strings"
	"time"
)

type Role string

const (
	RoleRenter        Role = "RENTER"
	RoleUser          Role = "USER"
	RoleHospitalAdmin Role = "HOSPITAL_ADMIN"
	RoleAdmin         Role = "ADMIN"
)

// ParseRole maps the role spellings seen in backend tokens onto a Role.
// Unknown values are kept upper-cased so they still display.
func ParseRole(s string) Role {
	r := strings.ToUpper(strings.TrimSpace(s))
	r = strings.TrimPrefix(r, "ROLE_")
	return Role(r)
}

// IsAdmin reports whether the role may manage inventory and bookings.
func (r Role) IsAdmin() bool {
	return r == RoleHospitalAdmin || r == RoleAdmin
}

// Identity is derived from the bearer token and never mutated in place.
type Identity struct {
	ID        string     `json:"id"`
	Name      string     `json:"name,omitempty"`
	Email     string     `json:"email,omitempty"`
	Role      Role       `json:"role,omitempty"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// IsAdmin is a display-level check, not an authorization decision.
func (i *Identity) IsAdmin() bool {
	return i != nil && i.Role.IsAdmin()
}

// DisplayName prefers the name, then the email, then the subject id.
func (i *Identity) DisplayName() string {
	if i == nil {
		return ""
	}
	if i.Name != "" {
		return i.Name
	}
	if i.Email != "" {
		return i.Email
	}
	return i.ID
}

type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type Registration struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     Role   `json:"role"`
}
