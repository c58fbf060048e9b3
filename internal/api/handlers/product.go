package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/jjm-manufacturing/core1-backend/internal/models"
	"github.com/jjm-manufacturing/core1-backend/internal/utils"
)

type ProductHandler struct {
	products ProductStore
	logger   logrus.FieldLogger
}

func NewProductHandler(products ProductStore, logger logrus.FieldLogger) *ProductHandler {
	return &ProductHandler{products: products, logger: logger}
}

func (h *ProductHandler) List(c *gin.Context) {
	products, err := h.products.List(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err, "Product", "list products")
		return
	}
	c.JSON(http.StatusOK, products)
}

func (h *ProductHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "Product")
	if !ok {
		return
	}

	product, err := h.products.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err, "Product", "get product")
		return
	}
	c.JSON(http.StatusOK, product)
}

func (h *ProductHandler) Create(c *gin.Context) {
	var req models.ProductRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := validateMaterialInputs(req.Materials); err != nil {
		respondError(c, h.logger, err, "Product", "create product")
		return
	}

	product, err := h.products.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.logger, err, "Product", "create product")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Product created successfully", "product": product})
}

// Update renames the product and, when materials are present in the body,
// replaces its bill of materials.
func (h *ProductHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "Product")
	if !ok {
		return
	}

	var req models.ProductRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := validateMaterialInputs(req.Materials); err != nil {
		respondError(c, h.logger, err, "Product", "update product")
		return
	}

	product, err := h.products.Update(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, h.logger, err, "Product", "update product")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Product updated successfully", "product": product})
}

func (h *ProductHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "Product")
	if !ok {
		return
	}

	if err := h.products.Delete(c.Request.Context(), id); err != nil {
		respondError(c, h.logger, err, "Product", "delete product")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Product deleted successfully"})
}

func validateMaterialInputs(inputs models.MaterialInputs) error {
	for i, m := range inputs {
		if m.Material == "" {
			return utils.NewValidationErrorf("materials[%d].material is required", i)
		}
		if m.Quantity.IsNegative() || m.Price.IsNegative() {
			return utils.NewValidationErrorf("materials[%d] must not have a negative quantity or price", i)
		}
	}
	return nil
}
