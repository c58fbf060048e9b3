package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/jjm-manufacturing/core1-backend/internal/database"
	"github.com/jjm-manufacturing/core1-backend/internal/middleware"
	"github.com/jjm-manufacturing/core1-backend/internal/utils"
)

// respondError maps repository and validation errors onto HTTP statuses.
// Anything unrecognised is logged and reported as a generic 500.
func respondError(c *gin.Context, logger logrus.FieldLogger, err error, entity, action string) {
	var validationErr *utils.ValidationError
	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": validationErr.Message})
	case errors.Is(err, database.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": entity + " not found"})
	case errors.Is(err, database.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": entity + " already exists"})
	case errors.Is(err, database.ErrInvalidReference):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Referenced record does not exist"})
	default:
		logger.WithFields(logrus.Fields{
			"entity": entity,
			"action": action,
			"path":   c.Request.URL.Path,
		}).WithError(err).Error("Request failed")
		middleware.RecordError(c, err, "Failed to "+action)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to " + action})
	}
}

// bindJSON binds the request body and answers 400 on failure.
func bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		validationErr := utils.FromBindingError(err)
		var details interface{} = validationErr.Message
		if len(validationErr.Fields) > 0 {
			details = validationErr.Fields
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": details})
		return false
	}
	return true
}

// pathID returns the :id parameter. IDs that cannot exist are reported as not found.
func pathID(c *gin.Context, entity string) (string, bool) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": entity + " not found"})
		return "", false
	}
	return id, true
}

// validateReference checks an ID supplied in a request body.
func validateReference(field, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return utils.NewValidationErrorf("%s must be a valid id", field)
	}
	return nil
}
