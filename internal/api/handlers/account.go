package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/jjm-manufacturing/core1-backend/internal/middleware"
	"github.com/jjm-manufacturing/core1-backend/internal/models"
	"github.com/jjm-manufacturing/core1-backend/internal/utils"
)

type AccountHandler struct {
	accounts     AccountStore
	auth         *middleware.AuthMiddleware
	bcryptCost   int
	cookieSecure bool
	logger       logrus.FieldLogger
}

func NewAccountHandler(accounts AccountStore, auth *middleware.AuthMiddleware, bcryptCost int, cookieSecure bool, logger logrus.FieldLogger) *AccountHandler {
	return &AccountHandler{
		accounts:     accounts,
		auth:         auth,
		bcryptCost:   bcryptCost,
		cookieSecure: cookieSecure,
		logger:       logger,
	}
}

// Session echoes the claims of the signed-in account.
func (h *AccountHandler) Session(c *gin.Context) {
	claims, ok := middleware.ClaimsFromContext(c)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"message": "Account Not Found"})
		return
	}
	c.JSON(http.StatusOK, claims)
}

func (h *AccountHandler) List(c *gin.Context) {
	accounts, err := h.accounts.List(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err, "Account", "list accounts")
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": accounts})
}

// Create registers a new staff account. Only admins reach this handler.
func (h *AccountHandler) Create(c *gin.Context) {
	var req models.AccountRequest
	if !bindJSON(c, &req) {
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), h.bcryptCost)
	if err != nil {
		respondError(c, h.logger, err, "Account", "create account")
		return
	}

	account := &models.Account{
		Name:         strings.TrimSpace(req.Name),
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		PasswordHash: string(hash),
		Role:         req.Role,
	}
	if err := h.accounts.Create(c.Request.Context(), account); err != nil {
		respondError(c, h.logger, err, "Account", "create account")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Account created successfully", "account": account})
}

// Delete removes the signed-in account and ends its session.
func (h *AccountHandler) Delete(c *gin.Context) {
	claims, ok := middleware.ClaimsFromContext(c)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Account not found"})
		return
	}

	if err := h.accounts.Delete(c.Request.Context(), claims.AccountID); err != nil {
		respondError(c, h.logger, err, "Account", "delete account")
		return
	}

	if err := h.auth.Revoke(c.Request.Context(), claims); err != nil {
		h.logger.WithError(err).WithField("account_id", claims.AccountID).Warn("Failed to revoke token of deleted account")
	}
	clearAccessCookie(c, h.cookieSecure)
	c.String(http.StatusOK, "Account Deleted Successfully")
}

// EditEmail changes the email of the signed-in account.
func (h *AccountHandler) EditEmail(c *gin.Context) {
	claims, ok := middleware.ClaimsFromContext(c)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Account not found"})
		return
	}

	var req models.EditEmailRequest
	if !bindJSON(c, &req) {
		return
	}

	newEmail := strings.ToLower(strings.TrimSpace(req.NewEmail))
	if newEmail == "" {
		respondError(c, h.logger, utils.NewValidationError("Missing Required Fields"), "Account", "update email")
		return
	}

	if err := h.accounts.UpdateEmail(c.Request.Context(), claims.AccountID, newEmail); err != nil {
		respondError(c, h.logger, err, "Account", "update email")
		return
	}
	c.String(http.StatusOK, "Account Email Updated Successfully")
}
