package http

import (
	"context"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/jobboard-api/internal/application/recovery"
	"github.com/jobboard-api/internal/application/session"
	"github.com/jobboard-api/internal/domain"
	"github.com/jobboard-api/internal/infrastructure/metrics"
	"github.com/jobboard-api/internal/transport/http/handler"
)

// UserRepository is the Directory view of principals.
type UserRepository interface {
	Create(ctx context.Context, u *domain.User) error
	Get(ctx context.Context, userID string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Update(ctx context.Context, userID string, updates map[string]any) error
	List(ctx context.Context) ([]domain.User, error)
}

type JobRepository interface {
	Put(ctx context.Context, j *domain.Job) error
	Get(ctx context.Context, jobID string) (*domain.Job, error)
	Update(ctx context.Context, jobID string, updates map[string]any) error
	Delete(ctx context.Context, jobID string) error
	List(ctx context.Context) ([]domain.Job, error)
	ListByCreator(ctx context.Context, userID string) ([]domain.Job, error)
}

type NewsletterRepository interface {
	Put(ctx context.Context, n *domain.Newsletter) error
	Get(ctx context.Context, id string) (*domain.Newsletter, error)
	Update(ctx context.Context, id string, updates map[string]any) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, authorID, viewerID string, publicOnly bool) ([]domain.Newsletter, error)
}

// ResumeStore is the object store backing profile resumes.
type ResumeStore interface {
	Upload(ctx context.Context, key string, r io.Reader) (string, error)
	PresignedURL(ctx context.Context, key string, ttl time.Duration) (string, error)
}

type Mailer interface {
	SendEmail(ctx context.Context, to, subject, body string) error
}

type SMSSender interface {
	SendSMS(ctx context.Context, to, message string) error
}

// Deps holds the infrastructure the router wires into the application services.
// Resumes, SMS and Google are optional.
type Deps struct {
	UserRepo       UserRepository
	JobRepo        JobRepository
	NewsletterRepo NewsletterRepository
	Tickets        recovery.TicketStore
	Resumes        ResumeStore
	ResumeKey      func(userID, filename string, at time.Time) string
	Mailer         Mailer
	SMS            SMSSender
	Google         session.GoogleVerifier
	Tokens         session.TokenCodec
	Metrics        *metrics.Metrics
	Log            *zap.Logger
	Checks         map[string]handler.Check
}
