package model

import (
	"fmt"
	"sort"
)

// Role is a capability tag assigned to a user.
type Role string

const (
	RoleStudent    Role = "student"
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "super_admin"
)

var roleBits = map[Role]RoleSet{
	RoleStudent:    1 << 0,
	RoleAdmin:      1 << 1,
	RoleSuperAdmin: 1 << 2,
}

// ParseRole validates a role tag.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if _, ok := roleBits[r]; !ok {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return r, nil
}

// RoleSet is an immutable set of roles. The zero value is empty.
type RoleSet uint8

// NewRoleSet builds a set from the given roles, ignoring unknown tags.
func NewRoleSet(roles ...Role) RoleSet {
	var s RoleSet
	for _, r := range roles {
		s |= roleBits[r]
	}
	return s
}

// Has reports whether r is in the set.
func (s RoleSet) Has(r Role) bool {
	bit, ok := roleBits[r]
	return ok && s&bit != 0
}

// IsAdmin reports whether the set grants admin or super_admin.
func (s RoleSet) IsAdmin() bool {
	return s.Has(RoleAdmin) || s.Has(RoleSuperAdmin)
}

// Roles returns the members sorted by tag.
func (s RoleSet) Roles() []Role {
	out := make([]Role, 0, len(roleBits))
	for r, bit := range roleBits {
		if s&bit != 0 {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Actor is the authenticated caller of an operation. The zero value is anonymous.
type Actor struct {
	UserID   string
	Username string
	Roles    RoleSet
}

// Authenticated reports whether the actor carries a user identity.
func (a Actor) Authenticated() bool {
	return a.UserID != ""
}

// IsAdmin reports whether the actor may manage events.
func (a Actor) IsAdmin() bool {
	return a.Roles.IsAdmin()
}
