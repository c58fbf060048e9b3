package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/jjm-manufacturing/core1-backend/internal/models"
	"github.com/jjm-manufacturing/core1-backend/internal/utils"
)

type WorkOrderHandler struct {
	workOrders WorkOrderStore
	logger     logrus.FieldLogger
}

func NewWorkOrderHandler(workOrders WorkOrderStore, logger logrus.FieldLogger) *WorkOrderHandler {
	return &WorkOrderHandler{workOrders: workOrders, logger: logger}
}

func (h *WorkOrderHandler) List(c *gin.Context) {
	orders, err := h.workOrders.List(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err, "Work order", "list work orders")
		return
	}
	c.JSON(http.StatusOK, orders)
}

func (h *WorkOrderHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "Work order")
	if !ok {
		return
	}

	order, err := h.workOrders.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err, "Work order", "get work order")
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *WorkOrderHandler) Create(c *gin.Context) {
	var req models.WorkOrderRequest
	if !bindJSON(c, &req) {
		return
	}
	req.ProductionScheduleID = optionalID(req.ProductionScheduleID)
	if err := validateWorkOrderRequest(req); err != nil {
		respondError(c, h.logger, err, "Work order", "create work order")
		return
	}

	order, err := h.workOrders.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.logger, err, "Work order", "create work order")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Work Order created successfully", "workOrder": order})
}

func (h *WorkOrderHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "Work order")
	if !ok {
		return
	}

	var req models.WorkOrderRequest
	if !bindJSON(c, &req) {
		return
	}
	req.ProductionScheduleID = optionalID(req.ProductionScheduleID)
	if err := validateWorkOrderRequest(req); err != nil {
		respondError(c, h.logger, err, "Work order", "update work order")
		return
	}

	order, err := h.workOrders.Update(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, h.logger, err, "Work order", "update work order")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Work Order updated successfully", "workOrder": order})
}

func (h *WorkOrderHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "Work order")
	if !ok {
		return
	}

	if err := h.workOrders.Delete(c.Request.Context(), id); err != nil {
		respondError(c, h.logger, err, "Work order", "delete work order")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Work Order deleted successfully"})
}

// validateWorkOrderRequest covers what binding tags cannot express.
func validateWorkOrderRequest(req models.WorkOrderRequest) error {
	if req.Deadline.IsZero() {
		return utils.NewValidationError("deadline is required")
	}
	if err := validateReference("productId", req.ProductID); err != nil {
		return err
	}
	if req.ProductionScheduleID != nil {
		return validateReference("productionScheduleId", *req.ProductionScheduleID)
	}
	return nil
}

// optionalID treats an empty string the same as an absent reference.
func optionalID(id *string) *string {
	if id == nil || *id == "" {
		return nil
	}
	return id
}
