package admin

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/resumatch/resumatch-backend/internal/api"
	"github.com/resumatch/resumatch-backend/internal/types"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) EndpointStats(ctx context.Context) ([]types.EndpointStat, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.EndpointStat), args.Error(1)
}

func (m *MockRepository) UserStats(ctx context.Context) ([]types.UserStat, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.UserStat), args.Error(1)
}

func (m *MockRepository) ListUsers(ctx context.Context, offset, limit int) ([]types.User, int64, error) {
	args := m.Called(ctx, offset, limit)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]types.User), args.Get(1).(int64), args.Error(2)
}

func (m *MockRepository) UpdateUserRole(ctx context.Context, userID uuid.UUID, role string) error {
	return m.Called(ctx, userID, role).Error(0)
}

func (m *MockRepository) DeleteUser(ctx context.Context, userID uuid.UUID) error {
	return m.Called(ctx, userID).Error(0)
}

func newTestService(repo Repository) *ServiceImpl {
	return NewService(repo, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func makeUsers(n int) []types.User {
	users := make([]types.User, n)
	for i := range users {
		users[i] = types.User{ID: uuid.New(), Role: types.RoleUser}
	}
	return users
}

func TestListUsers_DefaultsAndPaginationMath(t *testing.T) {
	repo := new(MockRepository)
	svc := newTestService(repo)

	// Zero values mean "not provided"; defaults are page 1, limit 10.
	repo.On("ListUsers", mock.Anything, 0, 10).
		Return(makeUsers(10), int64(15), nil).Once()

	page, err := svc.ListUsers(context.Background(), 0, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, page.Pagination.Page)
	assert.Equal(t, 10, page.Pagination.Limit)
	assert.Equal(t, int64(15), page.Pagination.Total)
	assert.Equal(t, 2, page.Pagination.TotalPages)
	repo.AssertExpectations(t)
}

func TestListUsers_SecondPage(t *testing.T) {
	repo := new(MockRepository)
	svc := newTestService(repo)

	repo.On("ListUsers", mock.Anything, 10, 10).
		Return(makeUsers(5), int64(15), nil).Once()

	page, err := svc.ListUsers(context.Background(), 2, 10)
	require.NoError(t, err)
	assert.Len(t, page.Users, 5)
	assert.Equal(t, 2, page.Pagination.Page)
	assert.Equal(t, 2, page.Pagination.TotalPages)
}

func TestListUsers_LimitCapped(t *testing.T) {
	repo := new(MockRepository)
	svc := newTestService(repo)

	repo.On("ListUsers", mock.Anything, 0, 100).
		Return(makeUsers(100), int64(250), nil).Once()

	page, err := svc.ListUsers(context.Background(), 1, 5000)
	require.NoError(t, err)
	assert.Equal(t, 100, page.Pagination.Limit)
	assert.Equal(t, 3, page.Pagination.TotalPages)
}

func TestUpdateUserRole_RejectsUnknownRole(t *testing.T) {
	repo := new(MockRepository)
	svc := newTestService(repo)

	err := svc.UpdateUserRole(context.Background(), uuid.New(), "superadmin")
	assert.ErrorIs(t, err, api.ErrValidation)
	repo.AssertNotCalled(t, "UpdateUserRole")
}

func TestUpdateUserRole_Valid(t *testing.T) {
	repo := new(MockRepository)
	svc := newTestService(repo)
	userID := uuid.New()

	repo.On("UpdateUserRole", mock.Anything, userID, types.RoleAdmin).Return(nil).Once()

	err := svc.UpdateUserRole(context.Background(), userID, types.RoleAdmin)
	assert.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestUpdateUserRole_UnknownUserService(t *testing.T) {
	repo := new(MockRepository)
	svc := newTestService(repo)
	userID := uuid.New()

	repo.On("UpdateUserRole", mock.Anything, userID, types.RoleUser).
		Return(api.ErrNotFound).Once()

	err := svc.UpdateUserRole(context.Background(), userID, types.RoleUser)
	assert.ErrorIs(t, err, api.ErrNotFound)
}

func TestDeleteUser_RejectsSelf(t *testing.T) {
	repo := new(MockRepository)
	svc := newTestService(repo)
	callerID := uuid.New()

	err := svc.DeleteUser(context.Background(), callerID, callerID)
	assert.ErrorIs(t, err, api.ErrValidation)
	repo.AssertNotCalled(t, "DeleteUser")
}

func TestDeleteUser_Other(t *testing.T) {
	repo := new(MockRepository)
	svc := newTestService(repo)
	targetID := uuid.New()

	repo.On("DeleteUser", mock.Anything, targetID).Return(nil).Once()

	err := svc.DeleteUser(context.Background(), uuid.New(), targetID)
	assert.NoError(t, err)
	repo.AssertExpectations(t)
}
