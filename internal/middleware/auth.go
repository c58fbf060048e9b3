// Package middleware provides HTTP middleware components for authentication,
// authorization, telemetry, and other cross-cutting concerns.
package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/jjm-manufacturing/core1-backend/internal/cache"
	"github.com/jjm-manufacturing/core1-backend/internal/models"
)

const (
	// AccessTokenCookie is the cookie the login handler sets.
	AccessTokenCookie = "accessToken"

	claimsKey    = "claims"
	accountIDKey = "account_id"
)

var ErrTokenRevoked = errors.New("token has been revoked")

// JWTClaims represents the JWT token claims.
type JWTClaims struct {
	AccountID string `json:"_id"`
	Email     string `json:"email"`
	Core      int    `json:"core"`
	Role      string `json:"role"`
	jwt.RegisteredClaims
}

// AuthMiddleware provides JWT authentication middleware.
type AuthMiddleware struct {
	secretKey   []byte
	expiry      time.Duration
	revocations cache.RevocationStore
}

// NewAuthMiddleware creates a new authentication middleware. revocations may be nil,
// in which case logout only clears the cookie.
func NewAuthMiddleware(secretKey string, expiry time.Duration, revocations cache.RevocationStore) *AuthMiddleware {
	return &AuthMiddleware{
		secretKey:   []byte(secretKey),
		expiry:      expiry,
		revocations: revocations,
	}
}

// Expiry is the lifetime given to new tokens.
func (am *AuthMiddleware) Expiry() time.Duration {
	return am.expiry
}

// RequireAuth middleware validates JWT tokens from the access token cookie
// or a Bearer Authorization header.
func (am *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, err := extractToken(c)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}

		claims, err := am.ValidateToken(c.Request.Context(), tokenString)
		if err != nil {
			switch {
			case errors.Is(err, jwt.ErrTokenExpired):
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Token expired"})
			case errors.Is(err, ErrTokenRevoked):
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Token revoked"})
			default:
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			}
			return
		}

		c.Set(claimsKey, claims)
		c.Set(accountIDKey, claims.AccountID)
		c.Next()
	}
}

func extractToken(c *gin.Context) (string, error) {
	if cookie, err := c.Cookie(AccessTokenCookie); err == nil && cookie != "" {
		return cookie, nil
	}

	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return "", errors.New("Authentication required")
	}

	// Bearer prefix is case-insensitive as per RFC 6750
	tokenParts := strings.Split(authHeader, " ")
	if len(tokenParts) != 2 || strings.ToLower(tokenParts[0]) != "bearer" || tokenParts[1] == "" {
		return "", errors.New("Invalid authorization header format")
	}
	return tokenParts[1], nil
}

// GenerateToken signs a token for account. Every token gets a fresh jti so it
// can be revoked individually.
func (am *AuthMiddleware) GenerateToken(account *models.Account) (string, *JWTClaims, error) {
	now := time.Now()
	claims := &JWTClaims{
		AccountID: account.ID,
		Email:     account.Email,
		Core:      account.Core,
		Role:      account.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(now.Add(am.expiry)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(am.secretKey)
	if err != nil {
		return "", nil, fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, claims, nil
}

// ValidateToken parses tokenString and rejects revoked tokens.
func (am *AuthMiddleware) ValidateToken(ctx context.Context, tokenString string) (*JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return am.secretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*JWTClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token claims")
	}

	if am.revocations != nil && claims.ID != "" && am.revocations.IsRevoked(ctx, claims.ID) {
		return nil, ErrTokenRevoked
	}
	return claims, nil
}

// Revoke blacklists the token until it would have expired anyway.
func (am *AuthMiddleware) Revoke(ctx context.Context, claims *JWTClaims) error {
	if am.revocations == nil || claims == nil || claims.ID == "" {
		return nil
	}
	expiresAt := time.Now().Add(am.expiry)
	if claims.ExpiresAt != nil {
		expiresAt = claims.ExpiresAt.Time
	}
	return am.revocations.Revoke(ctx, claims.ID, expiresAt)
}

// ClaimsFromContext returns the claims RequireAuth stored on c.
func ClaimsFromContext(c *gin.Context) (*JWTClaims, bool) {
	value, ok := c.Get(claimsKey)
	if !ok {
		return nil, false
	}
	claims, ok := value.(*JWTClaims)
	return claims, ok
}

// AccountIDFromContext returns the authenticated account ID or "".
func AccountIDFromContext(c *gin.Context) string {
	return c.GetString(accountIDKey)
}
