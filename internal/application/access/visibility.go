package access

import (
	"cmp"
	"fmt"
	"slices"
	"time"

	"github.com/jobboard-api/internal/domain"
)

// ListMode selects how a visibility-scoped collection is listed.
type ListMode int

const (
	ListAll ListMode = iota
	ListByAuthor
	ListPublic
)

// Scoped is a resource with an owner and a private flag.
type Scoped interface {
	OwnerID() string
	Private() bool
}

// Listed is a Scoped resource that can be ordered newest first.
type Listed interface {
	Scoped
	ItemID() string
	Created() time.Time
}

// Scope is the visibility predicate for one listing request.
//
//	PublicOnly:           isPrivate = false
//	ViewerID set:         isPrivate = false OR ownerId = ViewerID
//	AuthorID set:         additionally ownerId = AuthorID
//	Unrestricted:         everything (admin moderation)
type Scope struct {
	AuthorID     string
	ViewerID     string
	PublicOnly   bool
	Unrestricted bool
}

// ResolveScope computes the predicate for a caller, which may be nil for anonymous requests.
func ResolveScope(viewer *domain.User, mode ListMode, authorID string, includePrivate bool) (Scope, error) {
	switch mode {
	case ListPublic:
		return Scope{PublicOnly: true}, nil
	case ListAll:
		if viewer == nil {
			return Scope{PublicOnly: true}, nil
		}
		return Scope{ViewerID: viewer.UserID}, nil
	case ListByAuthor:
		if authorID == "" {
			return Scope{}, fmt.Errorf("author id required: %w", domain.ErrBadRequest)
		}
		if includePrivate && viewer != nil && viewer.UserID == authorID {
			return Scope{AuthorID: authorID, ViewerID: viewer.UserID}, nil
		}
		return Scope{AuthorID: authorID, PublicOnly: true}, nil
	default:
		return Scope{}, fmt.Errorf("unknown list mode %d: %w", mode, domain.ErrBadRequest)
	}
}

// AdminScope sees every item regardless of privacy.
func AdminScope() Scope { return Scope{Unrestricted: true} }

// Allows evaluates the predicate against a single item.
func (s Scope) Allows(item Scoped) bool {
	if s.AuthorID != "" && item.OwnerID() != s.AuthorID {
		return false
	}
	if s.Unrestricted || !item.Private() {
		return true
	}
	if s.PublicOnly {
		return false
	}
	return s.ViewerID != "" && item.OwnerID() == s.ViewerID
}

// Filter keeps the items the scope allows and orders them newest first.
func Filter[T Listed](s Scope, items []T) []T {
	out := make([]T, 0, len(items))
	for _, it := range items {
		if s.Allows(it) {
			out = append(out, it)
		}
	}
	SortNewestFirst(out)
	return out
}

// SortNewestFirst orders by creation time descending, breaking ties by id descending.
func SortNewestFirst[T Listed](items []T) {
	slices.SortStableFunc(items, func(a, b T) int {
		if c := b.Created().Compare(a.Created()); c != 0 {
			return c
		}
		return cmp.Compare(b.ItemID(), a.ItemID())
	})
}
