package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/jjm-manufacturing/core1-backend/internal/models"
	"github.com/jjm-manufacturing/core1-backend/internal/utils"
)

type MaterialHandler struct {
	materials MaterialStore
	logger    logrus.FieldLogger
}

func NewMaterialHandler(materials MaterialStore, logger logrus.FieldLogger) *MaterialHandler {
	return &MaterialHandler{materials: materials, logger: logger}
}

func (h *MaterialHandler) List(c *gin.Context) {
	materials, err := h.materials.List(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err, "Material", "list materials")
		return
	}
	c.JSON(http.StatusOK, materials)
}

func (h *MaterialHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "Material")
	if !ok {
		return
	}

	material, err := h.materials.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err, "Material", "get material")
		return
	}
	c.JSON(http.StatusOK, material)
}

func (h *MaterialHandler) Create(c *gin.Context) {
	var req models.MaterialRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := validateMaterialRequest(req); err != nil {
		respondError(c, h.logger, err, "Material", "create material")
		return
	}

	material, err := h.materials.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.logger, err, "Material", "create material")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Material created successfully", "material": material})
}

func (h *MaterialHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "Material")
	if !ok {
		return
	}

	var req models.MaterialRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := validateMaterialRequest(req); err != nil {
		respondError(c, h.logger, err, "Material", "update material")
		return
	}

	material, err := h.materials.Update(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, h.logger, err, "Material", "update material")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Material updated successfully", "material": material})
}

func (h *MaterialHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "Material")
	if !ok {
		return
	}

	if err := h.materials.Delete(c.Request.Context(), id); err != nil {
		respondError(c, h.logger, err, "Material", "delete material")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Material deleted successfully"})
}

func validateMaterialRequest(req models.MaterialRequest) error {
	if req.Quantity.IsNegative() {
		return utils.NewValidationError("quantity must not be negative")
	}
	if req.Price.IsNegative() {
		return utils.NewValidationError("price must not be negative")
	}
	if req.ProductID != "" {
		return validateReference("product_id", req.ProductID)
	}
	return nil
}
