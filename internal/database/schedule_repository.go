package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jjm-manufacturing/core1-backend/internal/models"
)

const scheduleColumns = "id, status, description, start_at, end_at, created_at, updated_at"

// ScheduleRepository persists production schedules.
type ScheduleRepository struct {
	db DatabasePool
}

func NewScheduleRepository(db DatabasePool) *ScheduleRepository {
	return &ScheduleRepository{db: db}
}

func scanSchedule(row pgx.Row) (*models.ProductionSchedule, error) {
	var s models.ProductionSchedule
	if err := row.Scan(&s.ID, &s.Status, &s.Description, &s.Start, &s.End, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return nil, err
	}
	s.WorkOrders = []models.WorkOrder{}
	return &s, nil
}

// List returns every schedule with the work orders assigned to it.
func (r *ScheduleRepository) List(ctx context.Context) ([]models.ProductionSchedule, error) {
	rows, err := r.db.Query(ctx, `SELECT `+scheduleColumns+` FROM production_schedules ORDER BY start_at, id`)
	if err != nil {
		return nil, classify("failed to list schedules", err)
	}
	defer rows.Close()

	schedules := []models.ProductionSchedule{}
	for rows.Next() {
		s, err := scanSchedule(rows)
		if err != nil {
			return nil, classify("failed to scan schedule", err)
		}
		schedules = append(schedules, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, classify("failed to iterate schedules", err)
	}
	rows.Close()

	if len(schedules) == 0 {
		return schedules, nil
	}

	orders, err := queryWorkOrders(ctx, r.db, "w.production_schedule_id IS NOT NULL")
	if err != nil {
		return nil, err
	}
	bySchedule := groupWorkOrders(orders, func(o models.WorkOrder) string { return *o.ProductionScheduleID })
	for i := range schedules {
		schedules[i].WorkOrders = nonNilWorkOrders(bySchedule[schedules[i].ID])
	}
	return schedules, nil
}

func (r *ScheduleRepository) Get(ctx context.Context, id string) (*models.ProductionSchedule, error) {
	s, err := scanSchedule(r.db.QueryRow(ctx, `SELECT `+scheduleColumns+` FROM production_schedules WHERE id = $1`, id))
	if err != nil {
		return nil, classify("failed to get schedule", err)
	}
	if s.WorkOrders, err = queryWorkOrders(ctx, r.db, "w.production_schedule_id = $1", id); err != nil {
		return nil, err
	}
	return s, nil
}

func (r *ScheduleRepository) Create(ctx context.Context, req models.ScheduleRequest) (*models.ProductionSchedule, error) {
	query := `
		INSERT INTO production_schedules (id, status, description, start_at, end_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + scheduleColumns

	s, err := scanSchedule(r.db.QueryRow(ctx, query,
		uuid.New().String(), scheduleStatusOrDefault(req.Status), req.Description, req.Start, req.End,
	))
	if err != nil {
		return nil, classify("failed to create schedule", err)
	}
	return s, nil
}

func (r *ScheduleRepository) Update(ctx context.Context, id string, req models.ScheduleRequest) (*models.ProductionSchedule, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE production_schedules
		SET status = $1, description = $2, start_at = $3, end_at = $4, updated_at = NOW()
		WHERE id = $5`,
		scheduleStatusOrDefault(req.Status), req.Description, req.Start, req.End, id,
	)
	if err != nil {
		return nil, classify("failed to update schedule", err)
	}
	if err := requireAffected("failed to update schedule", tag); err != nil {
		return nil, err
	}
	return r.Get(ctx, id)
}

// Delete removes the schedule; its work orders are detached, not deleted.
func (r *ScheduleRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM production_schedules WHERE id = $1`, id)
	if err != nil {
		return classify("failed to delete schedule", err)
	}
	return requireAffected("failed to delete schedule", tag)
}

func scheduleStatusOrDefault(s models.ScheduleStatus) models.ScheduleStatus {
	if s == "" {
		return models.ScheduleOnTime
	}
	return s
}
