package handlers

import (
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/jjm-manufacturing/core1-backend/internal/database"
	"github.com/jjm-manufacturing/core1-backend/internal/middleware"
	"github.com/jjm-manufacturing/core1-backend/internal/models"
)

func authRouter(t *testing.T, store *MockAccountStore) (*AuthHandler, *middleware.AuthMiddleware, http.Handler) {
	t.Helper()
	logger, _ := quietLogger()
	am := newTestAuth()
	h := NewAuthHandler(store, am, false, logger)

	router := newTestRouter()
	router.POST("/auth/login", h.Login)
	router.GET("/auth/logout", am.RequireAuth(), h.Logout)
	return h, am, router
}

func TestLogin_Success(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("correct horse"), bcrypt.MinCost)
	require.NoError(t, err)

	store := new(MockAccountStore)
	store.On("GetByEmail", mock.Anything, "ops@jjm.test").
		Return(&models.Account{ID: "acc-1", Email: "ops@jjm.test", PasswordHash: string(hash), Core: 1, Role: models.RoleStaff}, nil)
	_, am, router := authRouter(t, store)

	w := doJSON(router, "POST", "/auth/login", map[string]string{"email": "OPS@jjm.test", "password": "correct horse"}, "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "accessToken")

	cookie := w.Header().Get("Set-Cookie")
	assert.True(t, strings.HasPrefix(cookie, middleware.AccessTokenCookie+"="))
	assert.Contains(t, cookie, "HttpOnly")
	assert.Contains(t, cookie, "SameSite=Lax")

	token := strings.TrimPrefix(strings.SplitN(cookie, ";", 2)[0], middleware.AccessTokenCookie+"=")
	claims, err := am.ValidateToken(t.Context(), token)
	require.NoError(t, err)
	assert.Equal(t, "acc-1", claims.AccountID)
	store.AssertExpectations(t)
}

func TestLogin_BadCredentials(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("correct horse"), bcrypt.MinCost)
	require.NoError(t, err)

	store := new(MockAccountStore)
	store.On("GetByEmail", mock.Anything, "ops@jjm.test").
		Return(&models.Account{ID: "acc-1", Email: "ops@jjm.test", PasswordHash: string(hash)}, nil)
	store.On("GetByEmail", mock.Anything, "ghost@jjm.test").Return(nil, database.ErrNotFound)
	_, _, router := authRouter(t, store)

	w := doJSON(router, "POST", "/auth/login", map[string]string{"email": "ops@jjm.test", "password": "wrong"}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Empty(t, w.Header().Get("Set-Cookie"))

	w = doJSON(router, "POST", "/auth/login", map[string]string{"email": "ghost@jjm.test", "password": "whatever"}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid credentials")
}

func TestLogin_InvalidBody(t *testing.T) {
	_, _, router := authRouter(t, new(MockAccountStore))
	w := doJSON(router, "POST", "/auth/login", map[string]string{"email": "not-an-email"}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLogout_RevokesToken(t *testing.T) {
	_, am, router := authRouter(t, new(MockAccountStore))
	token := tokenFor(t, am, models.RoleStaff)

	w := doJSON(router, "GET", "/auth/logout", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Successfully Logged Out", w.Body.String())
	assert.Contains(t, w.Header().Get("Set-Cookie"), "Max-Age=0")

	w = doJSON(router, "GET", "/auth/logout", nil, token)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
