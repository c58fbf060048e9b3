package handlers

import (
	"context"

	"github.com/jjm-manufacturing/core1-backend/internal/models"
	"github.com/jjm-manufacturing/core1-backend/internal/services"
)

// The handler dependencies below are satisfied by the repositories in
// internal/database and the services in internal/services.

type AccountStore interface {
	Create(ctx context.Context, account *models.Account) error
	GetByEmail(ctx context.Context, email string) (*models.Account, error)
	List(ctx context.Context) ([]models.Account, error)
	Delete(ctx context.Context, id string) error
	UpdateEmail(ctx context.Context, id, newEmail string) error
}

type ProductStore interface {
	List(ctx context.Context) ([]models.Product, error)
	Get(ctx context.Context, id string) (*models.Product, error)
	Create(ctx context.Context, req models.ProductRequest) (*models.Product, error)
	Update(ctx context.Context, id string, req models.ProductRequest) (*models.Product, error)
	Delete(ctx context.Context, id string) error
}

type MaterialStore interface {
	List(ctx context.Context) ([]models.Material, error)
	Get(ctx context.Context, id string) (*models.Material, error)
	Create(ctx context.Context, req models.MaterialRequest) (*models.Material, error)
	Update(ctx context.Context, id string, req models.MaterialRequest) (*models.Material, error)
	Delete(ctx context.Context, id string) error
}

type WorkOrderStore interface {
	List(ctx context.Context) ([]models.WorkOrder, error)
	Get(ctx context.Context, id string) (*models.WorkOrder, error)
	Create(ctx context.Context, req models.WorkOrderRequest) (*models.WorkOrder, error)
	Update(ctx context.Context, id string, req models.WorkOrderRequest) (*models.WorkOrder, error)
	Delete(ctx context.Context, id string) error
}

type ScheduleStore interface {
	List(ctx context.Context) ([]models.ProductionSchedule, error)
	Get(ctx context.Context, id string) (*models.ProductionSchedule, error)
	Create(ctx context.Context, req models.ScheduleRequest) (*models.ProductionSchedule, error)
	Update(ctx context.Context, id string, req models.ScheduleRequest) (*models.ProductionSchedule, error)
	Delete(ctx context.Context, id string) error
}

type ForecastStore interface {
	List(ctx context.Context) ([]models.DemandForecast, error)
	Get(ctx context.Context, id string) (*models.DemandForecast, error)
	Create(ctx context.Context, req models.DemandForecastRequest) (*models.DemandForecast, error)
	Update(ctx context.Context, id string, req models.DemandForecastRequest) (*models.DemandForecast, error)
	Delete(ctx context.Context, id string) error
	Observations(ctx context.Context) ([]models.Observation, error)
}

type Analyzer interface {
	Analyze(ctx context.Context, observations []models.Observation, windowSize int) (*services.AnalysisResult, error)
}

type ScheduleNotifier interface {
	NotifySchedule(ctx context.Context, schedule *models.ProductionSchedule)
}

type ScheduleAlertMetrics interface {
	RecordScheduleAlert(status string)
}
