package session

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/jobboard-api/internal/domain"
	"github.com/jobboard-api/internal/infrastructure/google"
)

// --- mocks ---

type mockUserStore struct{ mock.Mock }

func (m *mockUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if u, _ := args.Get(0).(*domain.User); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockUserStore) Get(ctx context.Context, userID string) (*domain.User, error) {
	args := m.Called(ctx, userID)
	if u, _ := args.Get(0).(*domain.User); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockUserStore) Update(ctx context.Context, userID string, updates map[string]any) error {
	return m.Called(ctx, userID, updates).Error(0)
}

type mockTokens struct{ mock.Mock }

func (m *mockTokens) Issue(userID string) (string, error) {
	args := m.Called(userID)
	return args.String(0), args.Error(1)
}
func (m *mockTokens) Verify(token string) (string, error) {
	args := m.Called(token)
	return args.String(0), args.Error(1)
}

type mockGoogle struct{ mock.Mock }

func (m *mockGoogle) Verify(ctx context.Context, idToken string) (*google.Payload, error) {
	args := m.Called(ctx, idToken)
	if p, _ := args.Get(0).(*google.Payload); p != nil {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}

// --- helpers ---

func newService(us *mockUserStore, tk *mockTokens, g *mockGoogle, rejectBlocked bool) Service {
	deps := ServiceDeps{UserRepo: us, Tokens: tk, RejectBlocked: rejectBlocked}
	if g != nil {
		deps.Google = g
	}
	return NewService(deps)
}

func hashed(t *testing.T, pw string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.MinCost)
	require.NoError(t, err)
	return string(h)
}

// --- Login ---

func TestLogin_HappyPath(t *testing.T) {
	us := &mockUserStore{}
	tk := &mockTokens{}
	u := &domain.User{UserID: "u1", Email: "a@b.com", PasswordHash: hashed(t, "secret123"), Status: domain.StatusActive}
	us.On("GetByEmail", mock.Anything, "a@b.com").Return(u, nil)
	tk.On("Issue", "u1").Return("signed.token.value", nil)

	res, err := newService(us, tk, nil, false).Login(context.Background(), LoginRequest{Email: "a@b.com", Password: "secret123"})

	require.NoError(t, err)
	assert.Equal(t, "signed.token.value", res.Token)
	assert.Empty(t, res.User.PasswordHash)
	tk.AssertExpectations(t)
}

func TestLogin_UnknownEmail(t *testing.T) {
	us := &mockUserStore{}
	us.On("GetByEmail", mock.Anything, "x@x.com").Return(nil, domain.ErrNotFound)

	_, err := newService(us, &mockTokens{}, nil, false).Login(context.Background(), LoginRequest{Email: "x@x.com", Password: "whatever1"})
	assert.True(t, errors.Is(err, domain.ErrBadRequest))
}

func TestLogin_WrongPassword(t *testing.T) {
	us := &mockUserStore{}
	tk := &mockTokens{}
	us.On("GetByEmail", mock.Anything, "a@b.com").Return(&domain.User{UserID: "u1", PasswordHash: hashed(t, "secret123")}, nil)

	_, err := newService(us, tk, nil, false).Login(context.Background(), LoginRequest{Email: "a@b.com", Password: "wrong-pass"})
	assert.True(t, errors.Is(err, domain.ErrBadRequest))
	tk.AssertNotCalled(t, "Issue", mock.Anything)
}

func TestLogin_BlockedPrincipalSucceedsByDefault(t *testing.T) {
	us := &mockUserStore{}
	tk := &mockTokens{}
	u := &domain.User{UserID: "u1", PasswordHash: hashed(t, "secret123"), Status: domain.StatusBlocked}
	us.On("GetByEmail", mock.Anything, "a@b.com").Return(u, nil)
	tk.On("Issue", "u1").Return("signed.token.value", nil)

	res, err := newService(us, tk, nil, false).Login(context.Background(), LoginRequest{Email: "a@b.com", Password: "secret123"})
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)
}

func TestLogin_BlockedPrincipalRejectedWhenConfigured(t *testing.T) {
	us := &mockUserStore{}
	u := &domain.User{UserID: "u1", PasswordHash: hashed(t, "secret123"), Status: domain.StatusBlocked}
	us.On("GetByEmail", mock.Anything, "a@b.com").Return(u, nil)

	_, err := newService(us, &mockTokens{}, nil, true).Login(context.Background(), LoginRequest{Email: "a@b.com", Password: "secret123"})
	assert.True(t, errors.Is(err, domain.ErrForbidden))
}

// --- Resolve ---

func TestResolve_HappyPathStripsPasswordHash(t *testing.T) {
	us := &mockUserStore{}
	tk := &mockTokens{}
	tk.On("Verify", "tok").Return("u1", nil)
	us.On("Get", mock.Anything, "u1").Return(&domain.User{UserID: "u1", PasswordHash: "x", Role: domain.RoleStudent}, nil)

	u, err := newService(us, tk, nil, false).Resolve(context.Background(), "tok")
	require.NoError(t, err)
	assert.Equal(t, "u1", u.UserID)
	assert.Empty(t, u.PasswordHash)
}

func TestResolve_InvalidToken(t *testing.T) {
	tk := &mockTokens{}
	tk.On("Verify", "tok").Return("", domain.ErrTokenExpired)
	us := &mockUserStore{}

	_, err := newService(us, tk, nil, false).Resolve(context.Background(), "tok")
	assert.True(t, errors.Is(err, domain.ErrUnauthorized))
	us.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
}

func TestResolve_UnknownPrincipalIsUnauthenticated(t *testing.T) {
	tk := &mockTokens{}
	us := &mockUserStore{}
	tk.On("Verify", "tok").Return("gone", nil)
	us.On("Get", mock.Anything, "gone").Return(nil, domain.ErrNotFound)

	_, err := newService(us, tk, nil, false).Resolve(context.Background(), "tok")
	assert.True(t, errors.Is(err, domain.ErrUnauthorized))
}

func TestResolve_BlockedPrincipal(t *testing.T) {
	blocked := &domain.User{UserID: "u1", Status: domain.StatusBlocked}
	for _, reject := range []bool{false, true} {
		tk := &mockTokens{}
		us := &mockUserStore{}
		tk.On("Verify", "tok").Return("u1", nil)
		us.On("Get", mock.Anything, "u1").Return(blocked, nil)

		_, err := newService(us, tk, nil, reject).Resolve(context.Background(), "tok")
		if reject {
			assert.True(t, errors.Is(err, domain.ErrForbidden))
		} else {
			assert.NoError(t, err)
		}
	}
}

// --- GoogleLogin ---

func TestGoogleLogin_FirstSignInLinksSubject(t *testing.T) {
	us := &mockUserStore{}
	tk := &mockTokens{}
	g := &mockGoogle{}
	g.On("Verify", mock.Anything, "idt").Return(&google.Payload{Sub: "g-1", Email: "a@b.com", EmailVerified: true}, nil)
	us.On("GetByEmail", mock.Anything, "a@b.com").Return(&domain.User{UserID: "u1"}, nil)
	us.On("Update", mock.Anything, "u1", map[string]any{"google_sub": "g-1"}).Return(nil)
	tk.On("Issue", "u1").Return("signed.token.value", nil)

	res, err := newService(us, tk, g, false).GoogleLogin(context.Background(), GoogleLoginRequest{IDToken: "idt"})
	require.NoError(t, err)
	assert.Equal(t, "g-1", res.User.GoogleSub)
	us.AssertExpectations(t)
}

func TestGoogleLogin_SubjectMismatch(t *testing.T) {
	us := &mockUserStore{}
	g := &mockGoogle{}
	g.On("Verify", mock.Anything, "idt").Return(&google.Payload{Sub: "g-2", Email: "a@b.com", EmailVerified: true}, nil)
	us.On("GetByEmail", mock.Anything, "a@b.com").Return(&domain.User{UserID: "u1", GoogleSub: "g-1"}, nil)

	_, err := newService(us, &mockTokens{}, g, false).GoogleLogin(context.Background(), GoogleLoginRequest{IDToken: "idt"})
	assert.True(t, errors.Is(err, domain.ErrUnauthorized))
}

func TestGoogleLogin_UnknownUser(t *testing.T) {
	us := &mockUserStore{}
	g := &mockGoogle{}
	g.On("Verify", mock.Anything, "idt").Return(&google.Payload{Sub: "g-1", Email: "new@b.com", EmailVerified: true}, nil)
	us.On("GetByEmail", mock.Anything, "new@b.com").Return(nil, domain.ErrNotFound)

	_, err := newService(us, &mockTokens{}, g, false).GoogleLogin(context.Background(), GoogleLoginRequest{IDToken: "idt"})
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestGoogleLogin_UnverifiedEmail(t *testing.T) {
	g := &mockGoogle{}
	g.On("Verify", mock.Anything, "idt").Return(&google.Payload{Sub: "g-1", Email: "a@b.com"}, nil)

	_, err := newService(&mockUserStore{}, &mockTokens{}, g, false).GoogleLogin(context.Background(), GoogleLoginRequest{IDToken: "idt"})
	assert.True(t, errors.Is(err, domain.ErrUnauthorized))
}

func TestGoogleLogin_VerifierError(t *testing.T) {
	g := &mockGoogle{}
	g.On("Verify", mock.Anything, "idt").Return(nil, domain.ErrUnauthorized)

	_, err := newService(&mockUserStore{}, &mockTokens{}, g, false).GoogleLogin(context.Background(), GoogleLoginRequest{IDToken: "idt"})
	assert.True(t, errors.Is(err, domain.ErrUnauthorized))
}

func TestGoogleLogin_NotConfigured(t *testing.T) {
	_, err := newService(&mockUserStore{}, &mockTokens{}, nil, false).GoogleLogin(context.Background(), GoogleLoginRequest{IDToken: "idt"})
	assert.True(t, errors.Is(err, domain.ErrBadRequest))
}
