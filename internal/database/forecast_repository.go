package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jjm-manufacturing/core1-backend/internal/models"
)

const forecastColumns = "id, month, sales, created_at, updated_at"

// ForecastRepository persists monthly sales observations.
type ForecastRepository struct {
	db DatabasePool
}

func NewForecastRepository(db DatabasePool) *ForecastRepository {
	return &ForecastRepository{db: db}
}

func scanForecast(row pgx.Row) (*models.DemandForecast, error) {
	var f models.DemandForecast
	if err := row.Scan(&f.ID, &f.Month, &f.Sales, &f.CreatedAt, &f.UpdatedAt); err != nil {
		return nil, err
	}
	return &f, nil
}

// List returns entries in insertion order, which is the order the analysis consumes.
func (r *ForecastRepository) List(ctx context.Context) ([]models.DemandForecast, error) {
	rows, err := r.db.Query(ctx, `SELECT `+forecastColumns+` FROM demand_forecasts ORDER BY created_at, id`)
	if err != nil {
		return nil, classify("failed to list forecasts", err)
	}
	defer rows.Close()

	forecasts := []models.DemandForecast{}
	for rows.Next() {
		f, err := scanForecast(rows)
		if err != nil {
			return nil, classify("failed to scan forecast", err)
		}
		forecasts = append(forecasts, *f)
	}
	if err := rows.Err(); err != nil {
		return nil, classify("failed to iterate forecasts", err)
	}
	return forecasts, nil
}

func (r *ForecastRepository) Get(ctx context.Context, id string) (*models.DemandForecast, error) {
	f, err := scanForecast(r.db.QueryRow(ctx, `SELECT `+forecastColumns+` FROM demand_forecasts WHERE id = $1`, id))
	if err != nil {
		return nil, classify("failed to get forecast", err)
	}
	return f, nil
}

func (r *ForecastRepository) Create(ctx context.Context, req models.DemandForecastRequest) (*models.DemandForecast, error) {
	query := `
		INSERT INTO demand_forecasts (id, month, sales)
		VALUES ($1, $2, $3)
		RETURNING ` + forecastColumns

	f, err := scanForecast(r.db.QueryRow(ctx, query, uuid.New().String(), req.Month, *req.Sales))
	if err != nil {
		return nil, classify("failed to create forecast", err)
	}
	return f, nil
}

func (r *ForecastRepository) Update(ctx context.Context, id string, req models.DemandForecastRequest) (*models.DemandForecast, error) {
	query := `
		UPDATE demand_forecasts
		SET month = $1, sales = $2, updated_at = NOW()
		WHERE id = $3
		RETURNING ` + forecastColumns

	f, err := scanForecast(r.db.QueryRow(ctx, query, req.Month, *req.Sales, id))
	if err != nil {
		return nil, classify("failed to update forecast", err)
	}
	return f, nil
}

func (r *ForecastRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM demand_forecasts WHERE id = $1`, id)
	if err != nil {
		return classify("failed to delete forecast", err)
	}
	return requireAffected("failed to delete forecast", tag)
}

// Observations returns the period/value pairs for the analysis in insertion order.
func (r *ForecastRepository) Observations(ctx context.Context) ([]models.Observation, error) {
	forecasts, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	observations := make([]models.Observation, len(forecasts))
	for i, f := range forecasts {
		observations[i] = models.Observation{ID: f.ID, Period: f.Month, Value: f.Sales}
	}
	return observations, nil
}
