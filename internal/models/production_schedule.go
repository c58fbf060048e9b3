package models

import "time"

// ScheduleStatus reports whether a production run is on track
type ScheduleStatus string

const (
	ScheduleOnTime         ScheduleStatus = "ONTIME"
	ScheduleDelayed        ScheduleStatus = "DELAYED"
	ScheduleBehindSchedule ScheduleStatus = "BEHIND_SCHEDULE"
)

// NeedsAttention reports whether operations should be alerted about this status.
func (s ScheduleStatus) NeedsAttention() bool {
	return s == ScheduleDelayed || s == ScheduleBehindSchedule
}

// ProductionSchedule groups work orders into a planned production window
type ProductionSchedule struct {
	ID          string         `json:"id" db:"id"`
	Status      ScheduleStatus `json:"status" db:"status"`
	Description *string        `json:"description" db:"description"`
	Start       time.Time      `json:"start" db:"start_at"`
	End         time.Time      `json:"end" db:"end_at"`
	WorkOrders  []WorkOrder    `json:"workOrders"`
	CreatedAt   time.Time      `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time      `json:"updatedAt" db:"updated_at"`
}

// ScheduleSummary is the schedule projection embedded in work orders
type ScheduleSummary struct {
	ID          string         `json:"id"`
	Status      ScheduleStatus `json:"status"`
	Description *string        `json:"description"`
}

// ScheduleRequest creates or updates a production schedule
type ScheduleRequest struct {
	Status      ScheduleStatus `json:"status" binding:"omitempty,oneof=ONTIME DELAYED BEHIND_SCHEDULE"`
	Description *string        `json:"description"`
	Start       time.Time      `json:"start" binding:"required"`
	End         time.Time      `json:"end" binding:"required"`
}
