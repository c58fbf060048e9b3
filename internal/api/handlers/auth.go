package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/jjm-manufacturing/core1-backend/internal/database"
	"github.com/jjm-manufacturing/core1-backend/internal/logging"
	"github.com/jjm-manufacturing/core1-backend/internal/middleware"
	"github.com/jjm-manufacturing/core1-backend/internal/models"
)

type AuthHandler struct {
	accounts     AccountStore
	auth         *middleware.AuthMiddleware
	cookieSecure bool
	logger       logrus.FieldLogger
}

func NewAuthHandler(accounts AccountStore, auth *middleware.AuthMiddleware, cookieSecure bool, logger logrus.FieldLogger) *AuthHandler {
	return &AuthHandler{
		accounts:     accounts,
		auth:         auth,
		cookieSecure: cookieSecure,
		logger:       logger,
	}
}

// Login checks credentials, sets the access token cookie and echoes the token.
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	account, err := h.accounts.GetByEmail(c.Request.Context(), strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid credentials"})
			return
		}
		respondError(c, h.logger, err, "Account", "log in")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(req.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid credentials"})
		return
	}

	token, _, err := h.auth.GenerateToken(account)
	if err != nil {
		respondError(c, h.logger, err, "Account", "log in")
		return
	}

	setAccessCookie(c, token, int(h.auth.Expiry().Seconds()), h.cookieSecure)
	logging.LogBusinessEvent(h.logger, "account_login", map[string]interface{}{"account_id": account.ID})
	c.JSON(http.StatusOK, gin.H{"accessToken": token})
}

// Logout revokes the current token and clears the cookie.
func (h *AuthHandler) Logout(c *gin.Context) {
	if claims, ok := middleware.ClaimsFromContext(c); ok {
		if err := h.auth.Revoke(c.Request.Context(), claims); err != nil {
			h.logger.WithError(err).WithField("account_id", claims.AccountID).Warn("Failed to revoke token on logout")
		}
	}

	clearAccessCookie(c, h.cookieSecure)
	c.String(http.StatusOK, "Successfully Logged Out")
}

func setAccessCookie(c *gin.Context, token string, maxAge int, secure bool) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.AccessTokenCookie, token, maxAge, "/", "", secure, true)
}

func clearAccessCookie(c *gin.Context, secure bool) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.AccessTokenCookie, "", -1, "/", "", secure, true)
}
