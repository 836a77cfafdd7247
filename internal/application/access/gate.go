// Package access holds the authorization policies shared by every resource:
// role gates, ownership gates and visibility scoping.
package access

import (
	"fmt"

	"github.com/jobboard-api/internal/domain"
)

// RequireRole allows principal iff its role is in allowed.
func RequireRole(principal *domain.User, allowed domain.RoleSet) error {
	if principal == nil {
		return fmt.Errorf("authentication required: %w", domain.ErrUnauthorized)
	}
	if !allowed.Contains(principal.Role) {
		return fmt.Errorf("role %q not permitted: %w", principal.Role, domain.ErrForbidden)
	}
	return nil
}

// Owned is any resource carrying an immutable owner reference.
type Owned interface {
	OwnerID() string
}

// Ownership reports whether principal owns resource.
type Ownership func(principal *domain.User, resource Owned) bool

// CreatedBy is the ownership predicate for resources owned by their creator.
func CreatedBy(principal *domain.User, resource Owned) bool {
	return resource.OwnerID() != "" && resource.OwnerID() == principal.UserID
}

// OwnershipGate allows the owner of a resource, and admins when AdminOverride is set.
type OwnershipGate struct {
	Owns          Ownership
	AdminOverride bool
}

// Named policy variants.
var (
	AdminOrOwner = OwnershipGate{Owns: CreatedBy, AdminOverride: true}
	OwnerOnly    = OwnershipGate{Owns: CreatedBy, AdminOverride: false}
)

// Check returns nil when principal may mutate resource.
func (g OwnershipGate) Check(principal *domain.User, resource Owned) error {
	if principal == nil {
		return fmt.Errorf("authentication required: %w", domain.ErrUnauthorized)
	}
	if g.AdminOverride && principal.IsAdmin() {
		return nil
	}
	owns := g.Owns
	if owns == nil {
		owns = CreatedBy
	}
	if owns(principal, resource) {
		return nil
	}
	return fmt.Errorf("not the resource owner: %w", domain.ErrForbidden)
}
