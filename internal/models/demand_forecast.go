package models

import "time"

// DemandForecast is one historical sales observation for a period
type DemandForecast struct {
	ID        string    `json:"id" db:"id"`
	Month     string    `json:"month" db:"month"`
	Sales     float64   `json:"sales" db:"sales"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// DemandForecastRequest creates or updates a forecast entry
type DemandForecastRequest struct {
	Month string   `json:"month" binding:"required"`
	Sales *float64 `json:"sales" binding:"required,gte=0"`
}

// Observation is one (period, value) pair fed to the forecast analysis.
type Observation struct {
	ID     string  `json:"id,omitempty"`
	Period string  `json:"month"`
	Value  float64 `json:"sales"`
}
