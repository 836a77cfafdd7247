package job

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

type mockJobStore struct{ mock.Mock }

func (m *mockJobStore) Put(ctx context.Context, j *domain.Job) error {
	return m.Called(ctx, j).Error(0)
}
func (m *mockJobStore) Get(ctx context.Context, jobID string) (*domain.Job, error) {
	args := m.Called(ctx, jobID)
	if j, _ := args.Get(0).(*domain.Job); j != nil {
		return j, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockJobStore) Update(ctx context.Context, jobID string, updates map[string]any) error {
	return m.Called(ctx, jobID, updates).Error(0)
}
func (m *mockJobStore) Delete(ctx context.Context, jobID string) error {
	return m.Called(ctx, jobID).Error(0)
}
func (m *mockJobStore) List(ctx context.Context) ([]domain.Job, error) {
	args := m.Called(ctx)
	jobs, _ := args.Get(0).([]domain.Job)
	return jobs, args.Error(1)
}
func (m *mockJobStore) ListByCreator(ctx context.Context, userID string) ([]domain.Job, error) {
	args := m.Called(ctx, userID)
	jobs, _ := args.Get(0).([]domain.Job)
	return jobs, args.Error(1)
}

// --- helpers ---

var (
	owner     = &domain.User{UserID: "owner", Role: domain.RoleRecruiter}
	stranger  = &domain.User{UserID: "stranger", Role: domain.RoleRecruiter}
	admin     = &domain.User{UserID: "root", Role: domain.RoleAdmin}
	fixedTime = time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
)

func newService(js *mockJobStore) Service {
	return NewService(ServiceDeps{JobRepo: js, Now: func() time.Time { return fixedTime }})
}

func input() domain.JobInput {
	return domain.JobInput{
		Title: "Go Engineer", Description: "Build APIs", Requirements: "Go, AWS",
		Salary: 120000, Location: "Remote", JobType: "full-time", Experience: "senior",
		Position: 2, CompanyID: "c1",
	}
}

// --- tests ---

func TestCreate_SetsOwnerAndSplitsRequirements(t *testing.T) {
	js := &mockJobStore{}
	js.On("Put", mock.Anything, mock.AnythingOfType("*domain.Job")).Return(nil)

	j, err := newService(js).Create(context.Background(), owner, input())

	require.NoError(t, err)
	assert.Equal(t, "owner", j.CreatedBy)
	assert.Equal(t, []string{"Go", "AWS"}, j.Requirements)
	assert.Equal(t, fixedTime, j.CreatedAt)
	assert.NotEmpty(t, j.JobID)
}

func TestList_KeywordIsCaseInsensitiveAndNewestFirst(t *testing.T) {
	js := &mockJobStore{}
	js.On("List", mock.Anything).Return([]domain.Job{
		{JobID: "1", Title: "Golang dev", CreatedAt: fixedTime},
		{JobID: "2", Title: "Chef", Description: "no code", CreatedAt: fixedTime.Add(time.Hour)},
		{JobID: "3", Title: "Backend", Description: "GOLANG services", CreatedAt: fixedTime.Add(2 * time.Hour)},
	}, nil)

	jobs, err := newService(js).List(context.Background(), "golang")

	require.NoError(t, err)
	require.Len(t, jobs, 2)
	assert.Equal(t, "3", jobs[0].JobID)
	assert.Equal(t, "1", jobs[1].JobID)
}

func TestUpdate_OwnershipGate(t *testing.T) {
	for _, tc := range []struct {
		name    string
		caller  *domain.User
		allowed bool
	}{
		{"owner", owner, true},
		{"admin", admin, true},
		{"stranger", stranger, false},
	} {
		t.Run(tc.name, func(t *testing.T) {
			js := &mockJobStore{}
			js.On("Get", mock.Anything, "j1").Return(&domain.Job{JobID: "j1", CreatedBy: "owner"}, nil)
			js.On("Update", mock.Anything, "j1", mock.Anything).Return(nil)

			j, err := newService(js).Update(context.Background(), tc.caller, "j1", input())
			if tc.allowed {
				require.NoError(t, err)
				assert.Equal(t, "owner", j.CreatedBy, "ownership never transfers")
				js.AssertCalled(t, "Update", mock.Anything, "j1", mock.Anything)
				return
			}
			assert.True(t, errors.Is(err, domain.ErrForbidden))
			js.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestUpdate_UpdatesNeverCarryOwner(t *testing.T) {
	js := &mockJobStore{}
	js.On("Get", mock.Anything, "j1").Return(&domain.Job{JobID: "j1", CreatedBy: "owner"}, nil)
	js.On("Update", mock.Anything, "j1", mock.MatchedBy(func(m map[string]any) bool {
		_, has := m["created_by"]
		return !has
	})).Return(nil)

	_, err := newService(js).Update(context.Background(), owner, "j1", input())
	require.NoError(t, err)
	js.AssertExpectations(t)
}

func TestDelete_NotFound(t *testing.T) {
	js := &mockJobStore{}
	js.On("Get", mock.Anything, "missing").Return(nil, domain.ErrNotFound)

	err := newService(js).Delete(context.Background(), admin, "missing")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestDelete_OwnerOnlyGateRejectsAdmin(t *testing.T) {
	js := &mockJobStore{}
	js.On("Get", mock.Anything, "j1").Return(&domain.Job{JobID: "j1", CreatedBy: "owner"}, nil)
	gate := access.OwnerOnly

	err := NewService(ServiceDeps{JobRepo: js, Gate: &gate}).Delete(context.Background(), admin, "j1")
	assert.True(t, errors.Is(err, domain.ErrForbidden))
}

func TestListMine(t *testing.T) {
	js := &mockJobStore{}
	js.On("ListByCreator", mock.Anything, "owner").Return([]domain.Job{
		{JobID: "a", CreatedAt: fixedTime},
		{JobID: "b", CreatedAt: fixedTime.Add(time.Minute)},
	}, nil)

	jobs, err := newService(js).ListMine(context.Background(), owner)
	require.NoError(t, err)
	assert.Equal(t, "b", jobs[0].JobID)
}
