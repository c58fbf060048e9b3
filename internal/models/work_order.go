package models

import "time"

// WorkOrderStatus is the lifecycle state of a work order
type WorkOrderStatus string

const (
	WorkOrderPending    WorkOrderStatus = "PENDING"
	WorkOrderInProgress WorkOrderStatus = "IN_PROGRESS"
	WorkOrderCompleted  WorkOrderStatus = "COMPLETED"
)

// WorkOrder is a request to produce a quantity of a product
type WorkOrder struct {
	ID                   string           `json:"id" db:"id"`
	ProductID            string           `json:"productId" db:"product_id"`
	Quantity             int              `json:"quantity" db:"quantity"`
	Status               WorkOrderStatus  `json:"status" db:"status"`
	AssignedTo           string           `json:"assignedTo" db:"assigned_to"`
	Deadline             time.Time        `json:"deadline" db:"deadline"`
	ProductionScheduleID *string          `json:"productionScheduleId" db:"production_schedule_id"`
	Product              *ProductSummary  `json:"product,omitempty"`
	ProdSched            *ScheduleSummary `json:"prodSched,omitempty"`
	CreatedAt            time.Time        `json:"createdAt" db:"created_at"`
	UpdatedAt            time.Time        `json:"updatedAt" db:"updated_at"`
}

// WorkOrderRequest creates or updates a work order
type WorkOrderRequest struct {
	ProductID            string          `json:"productId" binding:"required"`
	Quantity             int             `json:"quantity" binding:"required,gt=0"`
	Status               WorkOrderStatus `json:"status" binding:"omitempty,oneof=PENDING IN_PROGRESS COMPLETED"`
	AssignedTo           string          `json:"assignedTo" binding:"required"`
	Deadline             time.Time       `json:"deadline" binding:"required"`
	ProductionScheduleID *string         `json:"productionScheduleId"`
}
