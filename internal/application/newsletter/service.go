package newsletter

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jobboard-api/internal/application/access"
	"github.com/jobboard-api/internal/domain"
	"github.com/jobboard-api/internal/infrastructure/metrics"
	"github.com/jobboard-api/internal/pkg/id"
)

// ListRequest selects a listing mode. AuthorID is required for access.ListByAuthor.
type ListRequest struct {
	Mode           access.ListMode
	AuthorID       string
	IncludePrivate bool
}

type Service interface {
	Create(ctx context.Context, principal *domain.User, req domain.CreateNewsletterRequest) (*domain.Newsletter, error)
	// List applies the visibility rules for viewer, which is nil for anonymous callers.
	List(ctx context.Context, viewer *domain.User, req ListRequest) ([]domain.Newsletter, error)
	// ListAll ignores privacy; it backs the admin panel.
	ListAll(ctx context.Context) ([]domain.Newsletter, error)
	Update(ctx context.Context, principal *domain.User, id string, req domain.UpdateNewsletterRequest) (*domain.Newsletter, error)
	Delete(ctx context.Context, principal *domain.User, id string) error
	TogglePrivacy(ctx context.Context, principal *domain.User, id string) (*domain.Newsletter, error)
	SetStatus(ctx context.Context, id, status string) (*domain.Newsletter, error)
}

type newsletterStore interface {
	Put(ctx context.Context, n *domain.Newsletter) error
	Get(ctx context.Context, id string) (*domain.Newsletter, error)
	Update(ctx context.Context, id string, updates map[string]any) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, authorID, viewerID string, publicOnly bool) ([]domain.Newsletter, error)
}

type ServiceDeps struct {
	NewsletterRepo newsletterStore
	// Gate defaults to access.AdminOrOwner.
	Gate    *access.OwnershipGate
	Metrics *metrics.Metrics
	Now     func() time.Time
}

type service struct {
	repo    newsletterStore
	gate    access.OwnershipGate
	metrics *metrics.Metrics
	now     func() time.Time
}

func NewService(deps ServiceDeps) Service {
	s := &service{repo: deps.NewsletterRepo, gate: access.AdminOrOwner, metrics: deps.Metrics, now: deps.Now}
	if deps.Gate != nil {
		s.gate = *deps.Gate
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

func (s *service) Create(ctx context.Context, principal *domain.User, req domain.CreateNewsletterRequest) (*domain.Newsletter, error) {
	now := s.now().UTC()
	n := &domain.Newsletter{
		NewsletterID: id.NewAt(now),
		Title:        strings.TrimSpace(req.Title),
		Content:      req.Content,
		IsPrivate:    req.IsPrivate,
		Status:       domain.NewsletterPublished,
		CreatedBy:    principal.UserID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Put(ctx, n); err != nil {
		return nil, err
	}
	return n, nil
}

func (s *service) List(ctx context.Context, viewer *domain.User, req ListRequest) ([]domain.Newsletter, error) {
	scope, err := access.ResolveScope(viewer, req.Mode, req.AuthorID, req.IncludePrivate)
	if err != nil {
		return nil, err
	}
	return s.list(ctx, scope)
}

func (s *service) ListAll(ctx context.Context) ([]domain.Newsletter, error) {
	return s.list(ctx, access.AdminScope())
}

func (s *service) list(ctx context.Context, scope access.Scope) ([]domain.Newsletter, error) {
	items, err := s.repo.List(ctx, scope.AuthorID, scope.ViewerID, scope.PublicOnly)
	if err != nil {
		return nil, err
	}
	return access.Filter(scope, items), nil
}

func (s *service) Update(ctx context.Context, principal *domain.User, id string, req domain.UpdateNewsletterRequest) (*domain.Newsletter, error) {
	n, err := s.authorize(ctx, principal, id)
	if err != nil {
		return nil, err
	}
	updates := map[string]any{}
	if req.Title != nil {
		n.Title = strings.TrimSpace(*req.Title)
		updates["title"] = n.Title
	}
	if req.Content != nil {
		n.Content = *req.Content
		updates["content"] = n.Content
	}
	if req.IsPrivate != nil {
		n.IsPrivate = *req.IsPrivate
		updates["is_private"] = n.IsPrivate
	}
	if len(updates) == 0 {
		return n, nil
	}
	if err := s.repo.Update(ctx, n.NewsletterID, updates); err != nil {
		return nil, err
	}
	n.UpdatedAt = s.now().UTC()
	return n, nil
}

func (s *service) Delete(ctx context.Context, principal *domain.User, id string) error {
	if _, err := s.authorize(ctx, principal, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

func (s *service) TogglePrivacy(ctx context.Context, principal *domain.User, id string) (*domain.Newsletter, error) {
	n, err := s.authorize(ctx, principal, id)
	if err != nil {
		return nil, err
	}
	n.IsPrivate = !n.IsPrivate
	if err := s.repo.Update(ctx, n.NewsletterID, map[string]any{"is_private": n.IsPrivate}); err != nil {
		return nil, err
	}
	return n, nil
}

func (s *service) SetStatus(ctx context.Context, id, status string) (*domain.Newsletter, error) {
	if !domain.ValidNewsletterStatus(status) {
		return nil, fmt.Errorf("invalid newsletter status %q: %w", status, domain.ErrBadRequest)
	}
	n, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, id, map[string]any{"status": status}); err != nil {
		return nil, err
	}
	n.Status = status
	return n, nil
}

func (s *service) authorize(ctx context.Context, principal *domain.User, id string) (*domain.Newsletter, error) {
	n, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.gate.Check(principal, n); err != nil {
		if errors.Is(err, domain.ErrForbidden) {
			s.metrics.AccessDenied("newsletter_ownership")
		}
		return nil, err
	}
	return n, nil
}
