package newsletter

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jobboard-api/internal/application/access"
	"github.com/jobboard-api/internal/domain"
)

// --- mocks ---

type mockNewsletterStore struct{ mock.Mock }

func (m *mockNewsletterStore) Put(ctx context.Context, n *domain.Newsletter) error {
	return m.Called(ctx, n).Error(0)
}
func (m *mockNewsletterStore) Get(ctx context.Context, id string) (*domain.Newsletter, error) {
	args := m.Called(ctx, id)
	if n, _ := args.Get(0).(*domain.Newsletter); n != nil {
		return n, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockNewsletterStore) Update(ctx context.Context, id string, updates map[string]any) error {
	return m.Called(ctx, id, updates).Error(0)
}
func (m *mockNewsletterStore) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}
func (m *mockNewsletterStore) List(ctx context.Context, authorID, viewerID string, publicOnly bool) ([]domain.Newsletter, error) {
	args := m.Called(ctx, authorID, viewerID, publicOnly)
	items, _ := args.Get(0).([]domain.Newsletter)
	return items, args.Error(1)
}

// --- helpers ---

var (
	alice = &domain.User{UserID: "alice", Role: domain.RoleRecruiter}
	bob   = &domain.User{UserID: "bob", Role: domain.RoleRecruiter}
	admin = &domain.User{UserID: "root", Role: domain.RoleAdmin}
	t0    = time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)
)

func corpus() []domain.Newsletter {
	return []domain.Newsletter{
		{NewsletterID: "n1", CreatedBy: "alice", CreatedAt: t0},
		{NewsletterID: "n2", CreatedBy: "alice", IsPrivate: true, CreatedAt: t0.Add(time.Hour)},
		{NewsletterID: "n3", CreatedBy: "bob", IsPrivate: true, CreatedAt: t0.Add(2 * time.Hour)},
	}
}

func ids(items []domain.Newsletter) []string {
	out := []string{}
	for _, n := range items {
		out = append(out, n.NewsletterID)
	}
	return out
}

// --- List ---

func TestList_PushesScopeToStoreAndFiltersResult(t *testing.T) {
	ns := &mockNewsletterStore{}
	// The store may over-return; the service still applies the predicate.
	ns.On("List", mock.Anything, "", "alice", false).Return(corpus(), nil)

	items, err := NewService(ServiceDeps{NewsletterRepo: ns}).List(context.Background(), alice, ListRequest{Mode: access.ListAll})

	require.NoError(t, err)
	assert.Equal(t, []string{"n2", "n1"}, ids(items))
}

func TestList_AnonymousAll(t *testing.T) {
	ns := &mockNewsletterStore{}
	ns.On("List", mock.Anything, "", "", true).Return(corpus(), nil)

	items, err := NewService(ServiceDeps{NewsletterRepo: ns}).List(context.Background(), nil, ListRequest{Mode: access.ListAll})

	require.NoError(t, err)
	assert.Equal(t, []string{"n1"}, ids(items))
}

func TestList_ByAuthorWithoutAuthor(t *testing.T) {
	_, err := NewService(ServiceDeps{NewsletterRepo: &mockNewsletterStore{}}).
		List(context.Background(), alice, ListRequest{Mode: access.ListByAuthor})
	assert.True(t, errors.Is(err, domain.ErrBadRequest))
}

func TestList_ByAuthorIncludePrivateForOtherAuthorIsForcedPublic(t *testing.T) {
	ns := &mockNewsletterStore{}
	ns.On("List", mock.Anything, "bob", "", true).Return([]domain.Newsletter{corpus()[2]}, nil)

	items, err := NewService(ServiceDeps{NewsletterRepo: ns}).
		List(context.Background(), alice, ListRequest{Mode: access.ListByAuthor, AuthorID: "bob", IncludePrivate: true})

	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestListAll_AdminSeesPrivate(t *testing.T) {
	ns := &mockNewsletterStore{}
	ns.On("List", mock.Anything, "", "", false).Return(corpus(), nil)

	items, err := NewService(ServiceDeps{NewsletterRepo: ns}).ListAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"n3", "n2", "n1"}, ids(items))
}

// --- mutations ---

func TestCreate(t *testing.T) {
	ns := &mockNewsletterStore{}
	ns.On("Put", mock.Anything, mock.AnythingOfType("*domain.Newsletter")).Return(nil)

	n, err := NewService(ServiceDeps{NewsletterRepo: ns, Now: func() time.Time { return t0 }}).
		Create(context.Background(), alice, domain.CreateNewsletterRequest{Title: " Hi ", Content: "body", IsPrivate: true})

	require.NoError(t, err)
	assert.Equal(t, "Hi", n.Title)
	assert.Equal(t, "alice", n.CreatedBy)
	assert.Equal(t, domain.NewsletterPublished, n.Status)
	assert.True(t, n.IsPrivate)
}

func TestTogglePrivacy_Gate(t *testing.T) {
	for _, tc := range []struct {
		name    string
		caller  *domain.User
		allowed bool
	}{
		{"owner", alice, true},
		{"admin override", admin, true},
		{"other author", bob, false},
	} {
		t.Run(tc.name, func(t *testing.T) {
			ns := &mockNewsletterStore{}
			ns.On("Get", mock.Anything, "n1").Return(&domain.Newsletter{NewsletterID: "n1", CreatedBy: "alice"}, nil)
			ns.On("Update", mock.Anything, "n1", map[string]any{"is_private": true}).Return(nil)

			n, err := NewService(ServiceDeps{NewsletterRepo: ns}).TogglePrivacy(context.Background(), tc.caller, "n1")
			if tc.allowed {
				require.NoError(t, err)
				assert.True(t, n.IsPrivate)
				return
			}
			assert.True(t, errors.Is(err, domain.ErrForbidden))
		})
	}
}

func TestUpdate_PartialFields(t *testing.T) {
	ns := &mockNewsletterStore{}
	ns.On("Get", mock.Anything, "n1").Return(&domain.Newsletter{NewsletterID: "n1", CreatedBy: "alice", Title: "old"}, nil)
	ns.On("Update", mock.Anything, "n1", map[string]any{"title": "new"}).Return(nil)
	title := "new"

	n, err := NewService(ServiceDeps{NewsletterRepo: ns}).Update(context.Background(), alice, "n1", domain.UpdateNewsletterRequest{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, "new", n.Title)
	ns.AssertExpectations(t)
}

func TestDelete_OwnerOnlyVariant(t *testing.T) {
	ns := &mockNewsletterStore{}
	ns.On("Get", mock.Anything, "n1").Return(&domain.Newsletter{NewsletterID: "n1", CreatedBy: "alice"}, nil)
	gate := access.OwnerOnly

	err := NewService(ServiceDeps{NewsletterRepo: ns, Gate: &gate}).Delete(context.Background(), admin, "n1")
	assert.True(t, errors.Is(err, domain.ErrForbidden))
	ns.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestSetStatus(t *testing.T) {
	ns := &mockNewsletterStore{}
	ns.On("Get", mock.Anything, "n1").Return(&domain.Newsletter{NewsletterID: "n1"}, nil)
	ns.On("Update", mock.Anything, "n1", map[string]any{"status": domain.NewsletterArchived}).Return(nil)

	svc := NewService(ServiceDeps{NewsletterRepo: ns})
	n, err := svc.SetStatus(context.Background(), "n1", domain.NewsletterArchived)
	require.NoError(t, err)
	assert.Equal(t, domain.NewsletterArchived, n.Status)

	_, err = svc.SetStatus(context.Background(), "n1", "deleted")
	assert.True(t, errors.Is(err, domain.ErrBadRequest))
}
