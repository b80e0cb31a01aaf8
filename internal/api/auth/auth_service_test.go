package auth

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/resumatch/resumatch-backend/internal/api"
	"github.com/resumatch/resumatch-backend/internal/types"
)

// --- Mock Repository ---

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) CreateUser(ctx context.Context, username, passwordHash string) (*types.User, error) {
	args := m.Called(ctx, username, passwordHash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.User), args.Error(1)
}

func (m *MockRepository) GetUserByUsername(ctx context.Context, username string) (*types.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.User), args.Error(1)
}

func (m *MockRepository) GetUserByID(ctx context.Context, id uuid.UUID) (*types.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.User), args.Error(1)
}

func newTestService(t *testing.T, repo Repository) *ServiceImpl {
	t.Helper()
	return NewService(repo, testTokenService(t, time.Hour), discardLogger())
}

func TestService_Register_Success(t *testing.T) {
	repo := new(MockRepository)
	svc := newTestService(t, repo)

	created := &types.User{ID: uuid.New(), Username: "alice", Role: types.RoleUser}
	repo.On("CreateUser", mock.Anything, "alice", mock.MatchedBy(func(hash string) bool {
		// The service must store a bcrypt hash, never the raw password.
		return bcrypt.CompareHashAndPassword([]byte(hash), []byte("s3cret")) == nil
	})).Return(created, nil).Once()

	user, token, err := svc.Register(context.Background(), "alice", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, created, user)
	assert.NotEmpty(t, token)
	repo.AssertExpectations(t)
}

func TestService_Register_DuplicateUsername(t *testing.T) {
	repo := new(MockRepository)
	svc := newTestService(t, repo)

	repo.On("CreateUser", mock.Anything, "alice", mock.Anything).
		Return(nil, api.ErrConflict).Once()

	_, _, err := svc.Register(context.Background(), "alice", "s3cret")
	assert.ErrorIs(t, err, api.ErrConflict)
	repo.AssertExpectations(t)
}

func TestService_Login_Success(t *testing.T) {
	repo := new(MockRepository)
	svc := newTestService(t, repo)

	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)
	stored := &types.User{ID: uuid.New(), Username: "alice", Password: string(hash), Role: types.RoleUser}
	repo.On("GetUserByUsername", mock.Anything, "alice").Return(stored, nil).Once()

	user, token, err := svc.Login(context.Background(), "alice", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, stored, user)
	assert.NotEmpty(t, token)
	repo.AssertExpectations(t)
}

func TestService_Login_UnknownUser(t *testing.T) {
	repo := new(MockRepository)
	svc := newTestService(t, repo)

	repo.On("GetUserByUsername", mock.Anything, "ghost").Return(nil, api.ErrNotFound).Once()

	_, _, err := svc.Login(context.Background(), "ghost", "whatever")
	assert.ErrorIs(t, err, api.ErrNotFound)
}

func TestService_Login_WrongPassword(t *testing.T) {
	repo := new(MockRepository)
	svc := newTestService(t, repo)

	hash, err := bcrypt.GenerateFromPassword([]byte("right"), bcrypt.MinCost)
	require.NoError(t, err)
	stored := &types.User{ID: uuid.New(), Username: "alice", Password: string(hash)}
	repo.On("GetUserByUsername", mock.Anything, "alice").Return(stored, nil).Once()

	_, _, err = svc.Login(context.Background(), "alice", "wrong")
	assert.ErrorIs(t, err, api.ErrUnauthenticated)
}
