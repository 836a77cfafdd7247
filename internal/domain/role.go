package domain

import "slices"

const (
	RoleStudent   = "student"
	RoleRecruiter = "recruiter"
	RoleAdmin     = "admin"
)

// RoleSet is the set of roles a gate accepts.
type RoleSet []string

var (
	AdminOnly         = RoleSet{RoleAdmin}
	AdminOrRecruiter  = RoleSet{RoleAdmin, RoleRecruiter}
	SelfAssignedRoles = RoleSet{RoleStudent, RoleRecruiter}
)

func (s RoleSet) Contains(role string) bool {
	return slices.Contains(s, role)
}

// ValidRole reports whether role is one of the known roles.
func ValidRole(role string) bool {
	return role == RoleStudent || role == RoleRecruiter || role == RoleAdmin
}
