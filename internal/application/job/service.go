package job

import (
	"context"
	"errors"
	"slices"
	"strings"
	"time"

	"github.com/jobboard-api/internal/application/access"
	"github.com/jobboard-api/internal/domain"
	"github.com/jobboard-api/internal/infrastructure/metrics"
	"github.com/jobboard-api/internal/pkg/id"
)

type Service interface {
	Create(ctx context.Context, principal *domain.User, in domain.JobInput) (*domain.Job, error)
	// List returns jobs whose title or description contains keyword (case-insensitive), newest first.
	List(ctx context.Context, keyword string) ([]domain.Job, error)
	Get(ctx context.Context, jobID string) (*domain.Job, error)
	ListMine(ctx context.Context, principal *domain.User) ([]domain.Job, error)
	Update(ctx context.Context, principal *domain.User, jobID string, in domain.JobInput) (*domain.Job, error)
	Delete(ctx context.Context, principal *domain.User, jobID string) error
}

type jobStore interface {
	Put(ctx context.Context, j *domain.Job) error
	Get(ctx context.Context, jobID string) (*domain.Job, error)
	Update(ctx context.Context, jobID string, updates map[string]any) error
	Delete(ctx context.Context, jobID string) error
	List(ctx context.Context) ([]domain.Job, error)
	ListByCreator(ctx context.Context, userID string) ([]domain.Job, error)
}

type ServiceDeps struct {
	JobRepo jobStore
	// Gate defaults to access.AdminOrOwner.
	Gate    *access.OwnershipGate
	Metrics *metrics.Metrics
	Now     func() time.Time
}

type service struct {
	repo    jobStore
	gate    access.OwnershipGate
	metrics *metrics.Metrics
	now     func() time.Time
}

func NewService(deps ServiceDeps) Service {
	s := &service{repo: deps.JobRepo, gate: access.AdminOrOwner, metrics: deps.Metrics, now: deps.Now}
	if deps.Gate != nil {
		s.gate = *deps.Gate
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

func (s *service) Create(ctx context.Context, principal *domain.User, in domain.JobInput) (*domain.Job, error) {
	now := s.now().UTC()
	j := &domain.Job{
		JobID:     id.NewAt(now),
		CreatedBy: principal.UserID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	apply(j, in)
	if err := s.repo.Put(ctx, j); err != nil {
		return nil, err
	}
	return j, nil
}

func (s *service) List(ctx context.Context, keyword string) ([]domain.Job, error) {
	jobs, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	kw := strings.ToLower(strings.TrimSpace(keyword))
	out := make([]domain.Job, 0, len(jobs))
	for _, j := range jobs {
		if kw == "" ||
			strings.Contains(strings.ToLower(j.Title), kw) ||
			strings.Contains(strings.ToLower(j.Description), kw) {
			out = append(out, j)
		}
	}
	sortNewestFirst(out)
	return out, nil
}

func (s *service) Get(ctx context.Context, jobID string) (*domain.Job, error) {
	return s.repo.Get(ctx, jobID)
}

func (s *service) ListMine(ctx context.Context, principal *domain.User) ([]domain.Job, error) {
	jobs, err := s.repo.ListByCreator(ctx, principal.UserID)
	if err != nil {
		return nil, err
	}
	sortNewestFirst(jobs)
	return jobs, nil
}

func (s *service) Update(ctx context.Context, principal *domain.User, jobID string, in domain.JobInput) (*domain.Job, error) {
	j, err := s.authorize(ctx, principal, jobID)
	if err != nil {
		return nil, err
	}
	apply(j, in)
	j.UpdatedAt = s.now().UTC()
	updates := map[string]any{
		"title":            j.Title,
		"description":      j.Description,
		"requirements":     j.Requirements,
		"salary":           j.Salary,
		"location":         j.Location,
		"job_type":         j.JobType,
		"experience_level": j.ExperienceLevel,
		"position":         j.Position,
		"company_id":       j.CompanyID,
	}
	if err := s.repo.Update(ctx, j.JobID, updates); err != nil {
		return nil, err
	}
	return j, nil
}

func (s *service) Delete(ctx context.Context, principal *domain.User, jobID string) error {
	if _, err := s.authorize(ctx, principal, jobID); err != nil {
		return err
	}
	return s.repo.Delete(ctx, jobID)
}

func (s *service) authorize(ctx context.Context, principal *domain.User, jobID string) (*domain.Job, error) {
	j, err := s.repo.Get(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if err := s.gate.Check(principal, j); err != nil {
		if errors.Is(err, domain.ErrForbidden) {
			s.metrics.AccessDenied("job_ownership")
		}
		return nil, err
	}
	return j, nil
}

func apply(j *domain.Job, in domain.JobInput) {
	j.Title = strings.TrimSpace(in.Title)
	j.Description = strings.TrimSpace(in.Description)
	j.Requirements = domain.SplitCSV(in.Requirements)
	j.Salary = in.Salary
	j.Location = strings.TrimSpace(in.Location)
	j.JobType = strings.TrimSpace(in.JobType)
	j.ExperienceLevel = strings.TrimSpace(in.Experience)
	j.Position = in.Position
	j.CompanyID = in.CompanyID
}

func sortNewestFirst(jobs []domain.Job) {
	slices.SortStableFunc(jobs, func(a, b domain.Job) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(b.JobID, a.JobID)
	})
}
