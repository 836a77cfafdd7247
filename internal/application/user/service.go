package user

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/jobboard-api/internal/domain"
	"github.com/jobboard-api/internal/pkg/id"
)

// DynamoDB attribute names used in partial update maps.
const (
	fieldEmail    = "email"
	fieldPhone    = "phone"
	fieldFullName = "full_name"
	fieldStatus   = "status"
	fieldIsPublic = "is_public"
	fieldProfile  = "profile"
)

const resumeLinkTTL = 15 * time.Minute

// Upload is a file received with a profile update.
type Upload struct {
	Filename string
	Body     io.Reader
}

type Service interface {
	Register(ctx context.Context, req domain.CreateUserRequest) (*domain.User, error)
	Get(ctx context.Context, userID string) (*domain.User, error)
	UpdateProfile(ctx context.Context, userID string, req domain.UpdateProfileRequest, resume *Upload) (*domain.User, error)
	List(ctx context.Context) ([]domain.User, error)
	ToggleStatus(ctx context.Context, userID string) (*domain.User, error)
	SetStatus(ctx context.Context, userID, status string) (*domain.User, error)
	ToggleVisibility(ctx context.Context, userID string) (*domain.User, error)
}

type userStore interface {
	Create(ctx context.Context, u *domain.User) error
	Get(ctx context.Context, userID string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Update(ctx context.Context, userID string, updates map[string]any) error
	List(ctx context.Context) ([]domain.User, error)
}

type resumeStore interface {
	Upload(ctx context.Context, key string, r io.Reader) (string, error)
	PresignedURL(ctx context.Context, key string, ttl time.Duration) (string, error)
}

type ServiceDeps struct {
	UserRepo userStore
	// Resumes is optional; without it uploads are rejected and links are not presigned.
	Resumes   resumeStore
	ResumeKey func(userID, filename string, at time.Time) string
	Log       *zap.Logger
}

type service struct {
	repo      userStore
	resumes   resumeStore
	resumeKey func(userID, filename string, at time.Time) string
	log       *zap.Logger
}

func NewService(deps ServiceDeps) Service {
	s := &service{
		repo:      deps.UserRepo,
		resumes:   deps.Resumes,
		resumeKey: deps.ResumeKey,
		log:       deps.Log,
	}
	if s.log == nil {
		s.log = zap.NewNop()
	}
	if s.resumeKey == nil {
		s.resumeKey = func(userID, filename string, at time.Time) string {
			return fmt.Sprintf("resumes/%s/%d-%s", userID, at.Unix(), filename)
		}
	}
	return s
}

func (s *service) Register(ctx context.Context, req domain.CreateUserRequest) (*domain.User, error) {
	email := strings.TrimSpace(req.Email)
	if err := s.ensureEmailFree(ctx, email, ""); err != nil {
		return nil, err
	}
	if !domain.SelfAssignedRoles.Contains(req.Role) {
		return nil, fmt.Errorf("role %q cannot be self-assigned: %w", req.Role, domain.ErrBadRequest)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	u := &domain.User{
		UserID:       id.New(),
		Email:        email,
		FullName:     strings.TrimSpace(req.FullName),
		Phone:        strings.TrimSpace(req.Phone),
		PasswordHash: string(hash),
		Role:         req.Role,
		Status:       domain.StatusActive,
		IsPublic:     true,
		AuthProvider: "local",
		Profile:      domain.Profile{Skills: []string{}},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}
	u.PasswordHash = ""
	return u, nil
}

func (s *service) ensureEmailFree(ctx context.Context, email, selfID string) error {
	existing, err := s.repo.GetByEmail(ctx, email)
	if errors.Is(err, domain.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if existing.UserID != selfID {
		return fmt.Errorf("email %s already registered: %w", email, domain.ErrConflict)
	}
	return nil
}

func (s *service) Get(ctx context.Context, userID string) (*domain.User, error) {
	u, err := s.repo.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	u.PasswordHash = ""
	s.presignResume(ctx, u)
	return u, nil
}

func (s *service) presignResume(ctx context.Context, u *domain.User) {
	if s.resumes == nil || u.Profile.Resume == "" {
		return
	}
	url, err := s.resumes.PresignedURL(ctx, u.Profile.Resume, resumeLinkTTL)
	if err != nil {
		s.log.Warn("presign resume", zap.String("user_id", u.UserID), zap.Error(err))
		return
	}
	u.Profile.Resume = url
}

func (s *service) UpdateProfile(ctx context.Context, userID string, req domain.UpdateProfileRequest, resume *Upload) (*domain.User, error) {
	u, err := s.repo.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	updates := map[string]any{}
	profileChanged := false

	if v := trimmed(req.FullName); v != "" {
		u.FullName = v
		updates[fieldFullName] = v
	}
	if v := trimmed(req.Email); v != "" && v != u.Email {
		if err := s.ensureEmailFree(ctx, v, u.UserID); err != nil {
			return nil, err
		}
		u.Email = v
		updates[fieldEmail] = v
	}
	if v := trimmed(req.Phone); v != "" {
		u.Phone = v
		updates[fieldPhone] = v
	}
	if req.Bio != nil {
		u.Profile.Bio = strings.TrimSpace(*req.Bio)
		profileChanged = true
	}
	if req.Skills != nil && strings.TrimSpace(*req.Skills) != "" {
		u.Profile.Skills = domain.SplitCSV(*req.Skills)
		profileChanged = true
	}
	if resume != nil {
		if s.resumes == nil {
			return nil, fmt.Errorf("file uploads are not configured: %w", domain.ErrBadRequest)
		}
		key, err := s.resumes.Upload(ctx, s.resumeKey(u.UserID, resume.Filename, time.Now().UTC()), resume.Body)
		if err != nil {
			return nil, fmt.Errorf("store resume: %w: %w", domain.ErrUpstream, err)
		}
		u.Profile.Resume = key
		u.Profile.ResumeOriginalName = resume.Filename
		profileChanged = true
	}
	if profileChanged {
		updates[fieldProfile] = u.Profile
	}
	if len(updates) == 0 {
		u.PasswordHash = ""
		return u, nil
	}
	if err := s.repo.Update(ctx, u.UserID, updates); err != nil {
		return nil, err
	}
	u.PasswordHash = ""
	s.presignResume(ctx, u)
	return u, nil
}

// List returns every principal newest first, without password hashes.
func (s *service) List(ctx context.Context) ([]domain.User, error) {
	users, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range users {
		users[i].PasswordHash = ""
	}
	slices.SortStableFunc(users, func(a, b domain.User) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(b.UserID, a.UserID)
	})
	return users, nil
}

func (s *service) ToggleStatus(ctx context.Context, userID string) (*domain.User, error) {
	u, err := s.repo.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	next := domain.StatusBlocked
	if u.IsBlocked() {
		next = domain.StatusActive
	}
	return s.apply(ctx, u, map[string]any{fieldStatus: next}, func() { u.Status = next })
}

func (s *service) SetStatus(ctx context.Context, userID, status string) (*domain.User, error) {
	if !domain.ValidStatus(status) {
		return nil, fmt.Errorf("invalid status %q: %w", status, domain.ErrBadRequest)
	}
	u, err := s.repo.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.apply(ctx, u, map[string]any{fieldStatus: status}, func() { u.Status = status })
}

func (s *service) ToggleVisibility(ctx context.Context, userID string) (*domain.User, error) {
	u, err := s.repo.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	next := !u.IsPublic
	return s.apply(ctx, u, map[string]any{fieldIsPublic: next}, func() { u.IsPublic = next })
}

func (s *service) apply(ctx context.Context, u *domain.User, updates map[string]any, mutate func()) (*domain.User, error) {
	if err := s.repo.Update(ctx, u.UserID, updates); err != nil {
		return nil, err
	}
	mutate()
	u.PasswordHash = ""
	return u, nil
}

func trimmed(p *string) string {
	if p == nil {
		return ""
	}
	return strings.TrimSpace(*p)
}
