package session

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/jobboard-api/internal/domain"
	"github.com/jobboard-api/internal/infrastructure/google"
	"github.com/jobboard-api/internal/infrastructure/metrics"
)

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type GoogleLoginRequest struct {
	IDToken string `json:"id_token" validate:"required"`
}

type LoginResult struct {
	Token string
	User  *domain.User
}

// UserStore is the part of the Directory the session layer reads.
type UserStore interface {
	Get(ctx context.Context, userID string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Update(ctx context.Context, userID string, updates map[string]any) error
}

// TokenCodec issues and verifies signed tokens carrying only a principal id.
type TokenCodec interface {
	Issue(userID string) (string, error)
	Verify(token string) (string, error)
}

type GoogleVerifier interface {
	Verify(ctx context.Context, idToken string) (*google.Payload, error)
}

type Service interface {
	Login(ctx context.Context, req LoginRequest) (*LoginResult, error)
	GoogleLogin(ctx context.Context, req GoogleLoginRequest) (*LoginResult, error)
	// Resolve turns a token into the live Principal, without its password hash.
	Resolve(ctx context.Context, token string) (*domain.User, error)
}

type ServiceDeps struct {
	UserRepo UserStore
	Tokens   TokenCodec
	Google   GoogleVerifier
	Metrics  *metrics.Metrics
	Log      *zap.Logger
	// RejectBlocked makes blocked principals fail login and resolution.
	RejectBlocked bool
}

type service struct {
	users         UserStore
	tokens        TokenCodec
	google        GoogleVerifier
	metrics       *metrics.Metrics
	log           *zap.Logger
	rejectBlocked bool
}

func NewService(d ServiceDeps) Service {
	log := d.Log
	if log == nil {
		log = zap.NewNop()
	}
	return &service{
		users:         d.UserRepo,
		tokens:        d.Tokens,
		google:        d.Google,
		metrics:       d.Metrics,
		log:           log,
		rejectBlocked: d.RejectBlocked,
	}
}

var errBadCredentials = fmt.Errorf("incorrect email or password: %w", domain.ErrBadRequest)

func (s *service) Login(ctx context.Context, req LoginRequest) (*LoginResult, error) {
	u, err := s.users.GetByEmail(ctx, strings.TrimSpace(req.Email))
	if errors.Is(err, domain.ErrNotFound) {
		s.metrics.Login("password", "bad_credentials")
		return nil, errBadCredentials
	}
	if err != nil {
		return nil, err
	}
	if u.PasswordHash == "" || bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)) != nil {
		s.metrics.Login("password", "bad_credentials")
		return nil, errBadCredentials
	}
	return s.issue(u, "password")
}

func (s *service) GoogleLogin(ctx context.Context, req GoogleLoginRequest) (*LoginResult, error) {
	if s.google == nil {
		return nil, fmt.Errorf("google sign-in not configured: %w", domain.ErrBadRequest)
	}
	p, err := s.google.Verify(ctx, req.IDToken)
	if err != nil {
		s.metrics.Login("google", "invalid_token")
		return nil, err
	}
	if p.Sub == "" || p.Email == "" || !p.EmailVerified {
		s.metrics.Login("google", "unverified_email")
		return nil, fmt.Errorf("google account email not verified: %w", domain.ErrUnauthorized)
	}
	u, err := s.users.GetByEmail(ctx, p.Email)
	if errors.Is(err, domain.ErrNotFound) {
		s.metrics.Login("google", "unknown_user")
		return nil, fmt.Errorf("no account for %s: %w", p.Email, domain.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	switch {
	case u.GoogleSub == "":
		if err := s.users.Update(ctx, u.UserID, map[string]any{"google_sub": p.Sub}); err != nil {
			return nil, fmt.Errorf("link google account: %w", err)
		}
		u.GoogleSub = p.Sub
	case u.GoogleSub != p.Sub:
		s.metrics.Login("google", "subject_mismatch")
		return nil, fmt.Errorf("google account does not match: %w", domain.ErrUnauthorized)
	}
	return s.issue(u, "google")
}

func (s *service) issue(u *domain.User, method string) (*LoginResult, error) {
	if s.rejectBlocked && u.IsBlocked() {
		s.metrics.Login(method, "blocked")
		return nil, fmt.Errorf("account blocked: %w", domain.ErrForbidden)
	}
	token, err := s.tokens.Issue(u.UserID)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	s.metrics.Login(method, "success")
	s.log.Info("login", zap.String("user_id", u.UserID), zap.String("method", method))
	u.PasswordHash = ""
	return &LoginResult{Token: token, User: u}, nil
}

func (s *service) Resolve(ctx context.Context, token string) (*domain.User, error) {
	userID, err := s.tokens.Verify(token)
	if err != nil {
		s.metrics.Credential("invalid_token")
		return nil, err
	}
	u, err := s.users.Get(ctx, userID)
	if errors.Is(err, domain.ErrNotFound) {
		s.metrics.Credential("unknown_principal")
		return nil, fmt.Errorf("principal %s no longer exists: %w", userID, domain.ErrUnauthorized)
	}
	if err != nil {
		return nil, err
	}
	if s.rejectBlocked && u.IsBlocked() {
		s.metrics.Credential("blocked")
		return nil, fmt.Errorf("account blocked: %w", domain.ErrForbidden)
	}
	s.metrics.Credential("authenticated")
	u.PasswordHash = ""
	return u, nil
}
