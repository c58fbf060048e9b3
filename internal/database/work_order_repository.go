package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jjm-manufacturing/core1-backend/internal/models"
)

const workOrderSelect = `
	SELECT w.id, w.product_id, w.quantity, w.status, w.assigned_to, w.deadline,
	       w.production_schedule_id, w.created_at, w.updated_at,
	       p.name, s.status, s.description
	FROM work_orders w
	JOIN products p ON p.id = w.product_id
	LEFT JOIN production_schedules s ON s.id = w.production_schedule_id`

// WorkOrderRepository persists work orders and resolves their product and schedule.
type WorkOrderRepository struct {
	db DatabasePool
}

func NewWorkOrderRepository(db DatabasePool) *WorkOrderRepository {
	return &WorkOrderRepository{db: db}
}

func scanWorkOrder(row pgx.Row) (*models.WorkOrder, error) {
	var (
		w              models.WorkOrder
		productName    string
		scheduleStatus *string
		scheduleDesc   *string
	)
	err := row.Scan(
		&w.ID, &w.ProductID, &w.Quantity, &w.Status, &w.AssignedTo, &w.Deadline,
		&w.ProductionScheduleID, &w.CreatedAt, &w.UpdatedAt,
		&productName, &scheduleStatus, &scheduleDesc,
	)
	if err != nil {
		return nil, err
	}

	w.Product = &models.ProductSummary{ID: w.ProductID, Name: productName}
	if w.ProductionScheduleID != nil && scheduleStatus != nil {
		w.ProdSched = &models.ScheduleSummary{
			ID:          *w.ProductionScheduleID,
			Status:      models.ScheduleStatus(*scheduleStatus),
			Description: scheduleDesc,
		}
	}
	return &w, nil
}

// queryWorkOrders runs workOrderSelect with an optional WHERE clause.
func queryWorkOrders(ctx context.Context, db DatabasePool, where string, args ...interface{}) ([]models.WorkOrder, error) {
	query := workOrderSelect
	if where != "" {
		query += " WHERE " + where
	}
	query += " ORDER BY w.created_at, w.id"

	rows, err := db.Query(ctx, query, args...)
	if err != nil {
		return nil, classify("failed to query work orders", err)
	}
	defer rows.Close()

	orders := []models.WorkOrder{}
	for rows.Next() {
		order, err := scanWorkOrder(rows)
		if err != nil {
			return nil, classify("failed to scan work order", err)
		}
		orders = append(orders, *order)
	}
	if err := rows.Err(); err != nil {
		return nil, classify("failed to iterate work orders", err)
	}
	return orders, nil
}

func (r *WorkOrderRepository) List(ctx context.Context) ([]models.WorkOrder, error) {
	return queryWorkOrders(ctx, r.db, "")
}

func (r *WorkOrderRepository) Get(ctx context.Context, id string) (*models.WorkOrder, error) {
	order, err := scanWorkOrder(r.db.QueryRow(ctx, workOrderSelect+" WHERE w.id = $1", id))
	if err != nil {
		return nil, classify("failed to get work order", err)
	}
	return order, nil
}

func (r *WorkOrderRepository) Create(ctx context.Context, req models.WorkOrderRequest) (*models.WorkOrder, error) {
	id := uuid.New().String()
	status := req.Status
	if status == "" {
		status = models.WorkOrderPending
	}

	_, err := r.db.Exec(ctx, `
		INSERT INTO work_orders (id, product_id, quantity, status, assigned_to, deadline, production_schedule_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		id, req.ProductID, req.Quantity, status, req.AssignedTo, req.Deadline, req.ProductionScheduleID,
	)
	if err != nil {
		return nil, classify("failed to create work order", err)
	}
	return r.Get(ctx, id)
}

func (r *WorkOrderRepository) Update(ctx context.Context, id string, req models.WorkOrderRequest) (*models.WorkOrder, error) {
	status := req.Status
	if status == "" {
		status = models.WorkOrderPending
	}

	tag, err := r.db.Exec(ctx, `
		UPDATE work_orders
		SET product_id = $1, quantity = $2, status = $3, assigned_to = $4, deadline = $5,
		    production_schedule_id = $6, updated_at = NOW()
		WHERE id = $7`,
		req.ProductID, req.Quantity, status, req.AssignedTo, req.Deadline, req.ProductionScheduleID, id,
	)
	if err != nil {
		return nil, classify("failed to update work order", err)
	}
	if err := requireAffected("failed to update work order", tag); err != nil {
		return nil, err
	}
	return r.Get(ctx, id)
}

func (r *WorkOrderRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM work_orders WHERE id = $1`, id)
	if err != nil {
		return classify("failed to delete work order", err)
	}
	return requireAffected("failed to delete work order", tag)
}

// groupWorkOrders indexes orders by the key returned for each of them.
func groupWorkOrders(orders []models.WorkOrder, key func(models.WorkOrder) string) map[string][]models.WorkOrder {
	grouped := make(map[string][]models.WorkOrder, len(orders))
	for _, o := range orders {
		k := key(o)
		grouped[k] = append(grouped[k], o)
	}
	return grouped
}
