package admin

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/resumatch/resumatch-backend/internal/api"
	"github.com/resumatch/resumatch-backend/internal/api/auth"
	"github.com/resumatch/resumatch-backend/internal/types"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) EndpointStats(ctx context.Context) ([]types.EndpointStat, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.EndpointStat), args.Error(1)
}

func (m *MockService) UserStats(ctx context.Context) ([]types.UserStat, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.UserStat), args.Error(1)
}

func (m *MockService) ListUsers(ctx context.Context, page, limit int) (*types.UserPage, error) {
	args := m.Called(ctx, page, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.UserPage), args.Error(1)
}

func (m *MockService) UpdateUserRole(ctx context.Context, userID uuid.UUID, role string) error {
	return m.Called(ctx, userID, role).Error(0)
}

func (m *MockService) DeleteUser(ctx context.Context, callerID, userID uuid.UUID) error {
	return m.Called(ctx, callerID, userID).Error(0)
}

// adminRouter mounts the handler the way the real route table does, so
// chi URL params resolve.
func adminRouter(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/endpoint-stats", h.EndpointStats)
	r.Get("/user-stats", h.UserStats)
	r.Get("/users", h.ListUsers)
	r.Put("/users/{id}/role", h.UpdateUserRole)
	r.Delete("/users/{id}", h.DeleteUser)
	return r
}

func newTestHandler(svc Service) *Handler {
	return NewHandler(svc, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func adminClaims() *auth.Claims {
	return &auth.Claims{UserID: uuid.New(), Username: "root", Role: types.RoleAdmin}
}

func TestEndpointStats(t *testing.T) {
	svc := new(MockService)
	stats := []types.EndpointStat{
		{Method: "POST", Endpoint: "/api/analyze", TotalRequests: 42},
		{Method: "POST", Endpoint: "/api/suggestions/suggest", TotalRequests: 7},
	}
	svc.On("EndpointStats", mock.Anything).Return(stats, nil).Once()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/endpoint-stats", nil)
	adminRouter(newTestHandler(svc)).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Success bool                 `json:"success"`
		Data    []types.EndpointStat `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.Success)
	require.Len(t, body.Data, 2)
	assert.Equal(t, int64(42), body.Data[0].TotalRequests)
}

func TestListUsers_ParsesQueryParams(t *testing.T) {
	svc := new(MockService)
	page := &types.UserPage{
		Users:      []types.User{},
		Pagination: types.Pagination{Page: 2, Limit: 5, Total: 12, TotalPages: 3},
	}
	svc.On("ListUsers", mock.Anything, 2, 5).Return(page, nil).Once()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/users?page=2&limit=5", nil)
	adminRouter(newTestHandler(svc)).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	svc.AssertExpectations(t)
}

func TestListUsers_NonNumericParamsFallBack(t *testing.T) {
	svc := new(MockService)
	page := &types.UserPage{
		Users:      []types.User{},
		Pagination: types.Pagination{Page: 1, Limit: 10},
	}
	// Atoi failure yields 0; the service normalizes to defaults.
	svc.On("ListUsers", mock.Anything, 0, 0).Return(page, nil).Once()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/users?page=abc&limit=xyz", nil)
	adminRouter(newTestHandler(svc)).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	svc.AssertExpectations(t)
}

func TestUpdateUserRole_InvalidUUID(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/users/not-a-uuid/role",
		strings.NewReader(`{"role":"admin"}`))
	req.Header.Set("Content-Type", "application/json")
	adminRouter(newTestHandler(new(MockService))).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid user id")
}

func TestUpdateUserRole_InvalidRole(t *testing.T) {
	svc := new(MockService)
	userID := uuid.New()
	svc.On("UpdateUserRole", mock.Anything, userID, "superadmin").
		Return(api.ErrValidation).Once()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/users/"+userID.String()+"/role",
		strings.NewReader(`{"role":"superadmin"}`))
	req.Header.Set("Content-Type", "application/json")
	adminRouter(newTestHandler(svc)).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Role must be one of")
}

func TestUpdateUserRole_UnknownUser(t *testing.T) {
	svc := new(MockService)
	userID := uuid.New()
	svc.On("UpdateUserRole", mock.Anything, userID, "admin").
		Return(api.ErrNotFound).Once()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/users/"+userID.String()+"/role",
		strings.NewReader(`{"role":"admin"}`))
	req.Header.Set("Content-Type", "application/json")
	adminRouter(newTestHandler(svc)).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteUser_Success(t *testing.T) {
	svc := new(MockService)
	claims := adminClaims()
	targetID := uuid.New()
	svc.On("DeleteUser", mock.Anything, claims.UserID, targetID).Return(nil).Once()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodDelete, "/users/"+targetID.String(), nil)
	req = req.WithContext(auth.ContextWithClaims(req.Context(), claims))
	adminRouter(newTestHandler(svc)).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	svc.AssertExpectations(t)
}

func TestDeleteUser_Self(t *testing.T) {
	svc := new(MockService)
	claims := adminClaims()
	svc.On("DeleteUser", mock.Anything, claims.UserID, claims.UserID).
		Return(api.ErrValidation).Once()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodDelete, "/users/"+claims.UserID.String(), nil)
	req = req.WithContext(auth.ContextWithClaims(req.Context(), claims))
	adminRouter(newTestHandler(svc)).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Cannot delete your own account")
}

func TestDeleteUser_NoIdentity(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodDelete, "/users/"+uuid.NewString(), nil)
	adminRouter(newTestHandler(new(MockService))).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
