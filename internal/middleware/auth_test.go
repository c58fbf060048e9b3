package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jjm-manufacturing/core1-backend/internal/cache"
	"github.com/jjm-manufacturing/core1-backend/internal/models"
)

const testSecret = "test-secret"

func testAccount() *models.Account {
	return &models.Account{ID: "acc-1", Email: "ops@jjm.test", Core: 1, Role: models.RoleStaff}
}

func newTestAuth() (*AuthMiddleware, *cache.InMemoryRevocationStore) {
	store := cache.NewInMemoryRevocationStore()
	return NewAuthMiddleware(testSecret, time.Hour, store), store
}

func protectedRouter(am *AuthMiddleware) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/protected", am.RequireAuth(), func(c *gin.Context) {
		claims, ok := ClaimsFromContext(c)
		if !ok {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.JSON(http.StatusOK, gin.H{"email": claims.Email, "account": AccountIDFromContext(c)})
	})
	return router
}

func TestGenerateToken_Claims(t *testing.T) {
	am, _ := newTestAuth()

	token, claims, err := am.GenerateToken(testAccount())
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, "acc-1", claims.AccountID)
	assert.Equal(t, models.RoleStaff, claims.Role)
	assert.NotEmpty(t, claims.ID)

	parsed, err := am.ValidateToken(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, claims.ID, parsed.ID)
	assert.Equal(t, 1, parsed.Core)
	assert.WithinDuration(t, time.Now().Add(time.Hour), parsed.ExpiresAt.Time, 2*time.Second)
}

func TestGenerateToken_UniqueJTI(t *testing.T) {
	am, _ := newTestAuth()
	_, a, err := am.GenerateToken(testAccount())
	require.NoError(t, err)
	_, b, err := am.GenerateToken(testAccount())
	require.NoError(t, err)
	assert.NotEqual(t, a.ID, b.ID)
}

func TestRequireAuth(t *testing.T) {
	am, _ := newTestAuth()
	router := protectedRouter(am)
	token, _, err := am.GenerateToken(testAccount())
	require.NoError(t, err)

	t.Run("cookie", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/protected", nil)
		req.AddCookie(&http.Cookie{Name: AccessTokenCookie, Value: token})
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "ops@jjm.test")
		assert.Contains(t, w.Body.String(), "acc-1")
	})

	t.Run("bearer header", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/protected", nil)
		req.Header.Set("Authorization", "bearer "+token)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("missing credentials", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest("GET", "/protected", nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "Authentication required")
	})

	t.Run("malformed header", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/protected", nil)
		req.Header.Set("Authorization", "Token "+token)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "Invalid authorization header format")
	})

	t.Run("wrong secret", func(t *testing.T) {
		other := NewAuthMiddleware("other-secret", time.Hour, nil)
		forged, _, err := other.GenerateToken(testAccount())
		require.NoError(t, err)

		req := httptest.NewRequest("GET", "/protected", nil)
		req.Header.Set("Authorization", "Bearer "+forged)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "Invalid token")
	})
}

func TestRequireAuth_ExpiredToken(t *testing.T) {
	am, _ := newTestAuth()
	claims := &JWTClaims{
		AccountID: "acc-1",
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        "old",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	}
	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+expired)
	w := httptest.NewRecorder()
	protectedRouter(am).ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Token expired")
}

func TestRequireAuth_RejectsNoneAlgorithm(t *testing.T) {
	am, _ := newTestAuth()
	claims := &JWTClaims{AccountID: "acc-1"}
	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = am.ValidateToken(context.Background(), unsigned)
	assert.Error(t, err)
}

func TestRevoke_BlocksToken(t *testing.T) {
	am, store := newTestAuth()
	router := protectedRouter(am)
	token, claims, err := am.GenerateToken(testAccount())
	require.NoError(t, err)

	require.NoError(t, am.Revoke(context.Background(), claims))
	assert.Equal(t, int64(1), store.GetStats().Revocations)

	req := httptest.NewRequest("GET", "/protected", nil)
	req.AddCookie(&http.Cookie{Name: AccessTokenCookie, Value: token})
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Token revoked")
}

func TestRevoke_WithoutStoreIsNoop(t *testing.T) {
	am := NewAuthMiddleware(testSecret, time.Hour, nil)
	_, claims, err := am.GenerateToken(testAccount())
	require.NoError(t, err)
	assert.NoError(t, am.Revoke(context.Background(), claims))
	assert.NoError(t, am.Revoke(context.Background(), nil))
}
