// Package recovery runs the one-time-code password recovery workflow:
// request a code, verify it, reset the password.
package recovery

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/jobboard-api/internal/domain"
	"github.com/jobboard-api/internal/infrastructure/metrics"
	"github.com/jobboard-api/internal/pkg/otp"
	pkgtoken "github.com/jobboard-api/internal/pkg/token"
)

type RequestCodeRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type VerifyCodeRequest struct {
	Email string `json:"email" validate:"required,email"`
	Code  string `json:"otp" validate:"required,len=6,numeric"`
}

type ResetPasswordRequest struct {
	Email       string `json:"email" validate:"required,email"`
	NewPassword string `json:"newPassword" validate:"required,min=8,max=72"`
	ResetToken  string `json:"reset_token"`
}

// VerifyResult carries the reset grant when resets require a verified code.
type VerifyResult struct {
	ResetToken string `json:"reset_token,omitempty"`
}

type UserStore interface {
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Update(ctx context.Context, userID string, updates map[string]any) error
}

// TicketStore persists at most one ticket per principal and type.
// Save and Delete are compare-and-swap on the ticket version.
type TicketStore interface {
	Get(ctx context.Context, userID, ticketType string) (*domain.RecoveryTicket, error)
	Save(ctx context.Context, t *domain.RecoveryTicket, prevVersion int64) error
	Delete(ctx context.Context, userID, ticketType string, version int64) error
}

type Mailer interface {
	SendEmail(ctx context.Context, to, subject, body string) error
}

type Service interface {
	RequestCode(ctx context.Context, req RequestCodeRequest) error
	VerifyCode(ctx context.Context, req VerifyCodeRequest) (*VerifyResult, error)
	ResetPassword(ctx context.Context, req ResetPasswordRequest) error
}

type ServiceDeps struct {
	UserRepo UserStore
	Tickets  TicketStore
	Mailer   Mailer
	Metrics  *metrics.Metrics
	Log      *zap.Logger

	CodeTTL  time.Duration
	GrantTTL time.Duration
	// MaxAttempts wrong codes discard the ticket. Defaults to 5.
	MaxAttempts int
	// RequireVerified gates ResetPassword on a grant returned by VerifyCode.
	RequireVerified bool

	Now     func() time.Time
	NewCode func() (string, error)
}

type service struct {
	users           UserStore
	tickets         TicketStore
	mailer          Mailer
	metrics         *metrics.Metrics
	log             *zap.Logger
	codeTTL         time.Duration
	grantTTL        time.Duration
	maxAttempts     int
	requireVerified bool
	now             func() time.Time
	newCode         func() (string, error)
}

func NewService(d ServiceDeps) Service {
	s := &service{
		users:           d.UserRepo,
		tickets:         d.Tickets,
		mailer:          d.Mailer,
		metrics:         d.Metrics,
		log:             d.Log,
		codeTTL:         d.CodeTTL,
		grantTTL:        d.GrantTTL,
		maxAttempts:     d.MaxAttempts,
		requireVerified: d.RequireVerified,
		now:             d.Now,
		newCode:         d.NewCode,
	}
	if s.log == nil {
		s.log = zap.NewNop()
	}
	if s.codeTTL <= 0 {
		s.codeTTL = 600 * time.Second
	}
	if s.grantTTL <= 0 {
		s.grantTTL = 600 * time.Second
	}
	if s.maxAttempts <= 0 {
		s.maxAttempts = 5
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.newCode == nil {
		s.newCode = otp.NewCode
	}
	return s
}

func (s *service) principal(ctx context.Context, email string) (*domain.User, error) {
	u, err := s.users.GetByEmail(ctx, strings.TrimSpace(email))
	if errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("user not found: %w", domain.ErrNotFound)
	}
	return u, err
}

// clock returns the current time at the whole-second precision tickets are stored with.
func (s *service) clock() time.Time {
	return s.now().UTC().Truncate(time.Second)
}

func (s *service) RequestCode(ctx context.Context, req RequestCodeRequest) error {
	u, err := s.principal(ctx, req.Email)
	if err != nil {
		return err
	}

	var prev int64
	existing, err := s.tickets.Get(ctx, u.UserID, domain.TicketTypePasswordRecovery)
	switch {
	case err == nil:
		prev = existing.Version
	case !errors.Is(err, domain.ErrNotFound):
		return err
	}

	code, err := s.newCode()
	if err != nil {
		return err
	}
	now := s.clock()
	t := &domain.RecoveryTicket{
		UserID:    u.UserID,
		Type:      domain.TicketTypePasswordRecovery,
		State:     domain.TicketIssued,
		Code:      code,
		IssuedAt:  now,
		ExpiresAt: now.Add(s.codeTTL),
		Version:   prev + 1,
	}
	if err := s.tickets.Save(ctx, t, prev); err != nil {
		return err
	}
	s.metrics.Recovery("requested")

	// The ticket stays valid even if delivery fails.
	body := fmt.Sprintf("Your password reset code is %s. It expires in %d minutes.", code, int(s.codeTTL.Minutes()))
	if err := s.mailer.SendEmail(ctx, u.Email, "Your code for password reset", body); err != nil {
		s.metrics.Recovery("delivery_failed")
		s.log.Warn("recovery code delivery failed", zap.String("user_id", u.UserID), zap.Error(err))
		return fmt.Errorf("send recovery code: %w: %w", domain.ErrUpstream, err)
	}
	return nil
}

func (s *service) VerifyCode(ctx context.Context, req VerifyCodeRequest) (*VerifyResult, error) {
	u, err := s.principal(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	t, err := s.tickets.Get(ctx, u.UserID, domain.TicketTypePasswordRecovery)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("no pending recovery code: %w", domain.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	if t.State != domain.TicketIssued || t.Code == "" {
		return nil, fmt.Errorf("no pending recovery code: %w", domain.ErrNotFound)
	}

	now := s.clock()
	if now.After(t.ExpiresAt) {
		s.metrics.Recovery("expired")
		return nil, fmt.Errorf("recovery code expired: %w", domain.ErrInvalidCode)
	}
	if subtle.ConstantTimeCompare([]byte(req.Code), []byte(t.Code)) != 1 {
		s.metrics.Recovery("invalid_code")
		return nil, s.recordFailure(ctx, t)
	}

	if !s.requireVerified {
		if err := s.tickets.Delete(ctx, t.UserID, t.Type, t.Version); err != nil {
			return nil, err
		}
		s.metrics.Recovery("verified")
		return &VerifyResult{}, nil
	}

	grant, err := pkgtoken.NewGrant()
	if err != nil {
		return nil, err
	}
	verified := *t
	verified.State = domain.TicketVerified
	verified.Code = ""
	verified.GrantHash = pkgtoken.Hash(grant)
	verified.ExpiresAt = now.Add(s.grantTTL)
	verified.Version = t.Version + 1
	if err := s.tickets.Save(ctx, &verified, t.Version); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return nil, fmt.Errorf("recovery code already used: %w", domain.ErrNotFound)
		}
		return nil, err
	}
	s.metrics.Recovery("verified")
	return &VerifyResult{ResetToken: grant}, nil
}

func (s *service) ResetPassword(ctx context.Context, req ResetPasswordRequest) error {
	u, err := s.principal(ctx, req.Email)
	if err != nil {
		return err
	}

	if s.requireVerified {
		if err := s.consumeGrant(ctx, u.UserID, req.ResetToken); err != nil {
			s.metrics.Recovery("reset_denied")
			return err
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	if err := s.users.Update(ctx, u.UserID, map[string]any{"password_hash": string(hash)}); err != nil {
		return err
	}
	s.metrics.Recovery("reset")
	s.log.Info("password reset", zap.String("user_id", u.UserID))
	return nil
}

func (s *service) consumeGrant(ctx context.Context, userID, grant string) error {
	if grant == "" {
		return fmt.Errorf("reset token required: %w", domain.ErrForbidden)
	}
	t, err := s.tickets.Get(ctx, userID, domain.TicketTypePasswordRecovery)
	if errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("no verified recovery code: %w", domain.ErrForbidden)
	}
	if err != nil {
		return err
	}
	if t.State != domain.TicketVerified || s.clock().After(t.ExpiresAt) {
		return fmt.Errorf("no verified recovery code: %w", domain.ErrForbidden)
	}
	if subtle.ConstantTimeCompare([]byte(pkgtoken.Hash(grant)), []byte(t.GrantHash)) != 1 {
		return fmt.Errorf("reset token mismatch: %w", domain.ErrForbidden)
	}
	if err := s.tickets.Delete(ctx, t.UserID, t.Type, t.Version); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("reset token already used: %w", domain.ErrForbidden)
		}
		return err
	}
	return nil
}

// recordFailure counts a wrong code against t and discards the ticket once
// MaxAttempts is reached. Concurrent failures re-read the ticket so none of
// them go uncounted.
func (s *service) recordFailure(ctx context.Context, t *domain.RecoveryTicket) error {
	mismatch := fmt.Errorf("recovery code mismatch: %w", domain.ErrInvalidCode)
	code := t.Code
	for i := 0; i < 3; i++ {
		if t.Attempts+1 >= s.maxAttempts {
			err := s.tickets.Delete(ctx, t.UserID, t.Type, t.Version)
			if errors.Is(err, domain.ErrNotFound) {
				return mismatch
			}
			if err != nil {
				return err
			}
			s.metrics.Recovery("attempts_exhausted")
			s.log.Warn("recovery code attempts exhausted", zap.String("user_id", t.UserID))
			return fmt.Errorf("too many attempts, request a new code: %w", domain.ErrInvalidCode)
		}
		next := *t
		next.Attempts++
		next.Version = t.Version + 1
		err := s.tickets.Save(ctx, &next, t.Version)
		if err == nil {
			return mismatch
		}
		if !errors.Is(err, domain.ErrConflict) {
			return err
		}
		t, err = s.tickets.Get(ctx, t.UserID, t.Type)
		if errors.Is(err, domain.ErrNotFound) {
			return mismatch
		}
		if err != nil {
			return err
		}
		if t.State != domain.TicketIssued || t.Code != code {
			return mismatch
		}
	}
	return mismatch
}
