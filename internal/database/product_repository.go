package database

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jjm-manufacturing/core1-backend/internal/models"
)

// ProductRepository persists products together with their materials.
type ProductRepository struct {
	db DatabasePool
}

func NewProductRepository(db DatabasePool) *ProductRepository {
	return &ProductRepository{db: db}
}

// List returns every product with its materials and work orders.
func (r *ProductRepository) List(ctx context.Context) ([]models.Product, error) {
	rows, err := r.db.Query(ctx, `SELECT id, name, created_at, updated_at FROM products ORDER BY created_at, id`)
	if err != nil {
		return nil, classify("failed to list products", err)
	}
	defer rows.Close()

	products := []models.Product{}
	for rows.Next() {
		var p models.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, classify("failed to scan product", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, classify("failed to iterate products", err)
	}
	rows.Close()

	if len(products) == 0 {
		return products, nil
	}

	materials, err := queryMaterials(ctx, r.db, "product_id IS NOT NULL")
	if err != nil {
		return nil, err
	}
	orders, err := queryWorkOrders(ctx, r.db, "")
	if err != nil {
		return nil, err
	}

	materialsByProduct := make(map[string][]models.Material)
	for _, m := range materials {
		materialsByProduct[m.ProductID] = append(materialsByProduct[m.ProductID], m)
	}
	ordersByProduct := groupWorkOrders(orders, func(o models.WorkOrder) string { return o.ProductID })

	for i := range products {
		products[i].Materials = nonNilMaterials(materialsByProduct[products[i].ID])
		products[i].WorkOrders = nonNilWorkOrders(ordersByProduct[products[i].ID])
	}
	return products, nil
}

func (r *ProductRepository) Get(ctx context.Context, id string) (*models.Product, error) {
	var p models.Product
	err := r.db.QueryRow(ctx,
		`SELECT id, name, created_at, updated_at FROM products WHERE id = $1`, id,
	).Scan(&p.ID, &p.Name, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, classify("failed to get product", err)
	}

	if p.Materials, err = queryMaterials(ctx, r.db, "product_id = $1", id); err != nil {
		return nil, err
	}
	if p.WorkOrders, err = queryWorkOrders(ctx, r.db, "w.product_id = $1", id); err != nil {
		return nil, err
	}
	return &p, nil
}

// Create inserts the product and its materials in one transaction.
func (r *ProductRepository) Create(ctx context.Context, req models.ProductRequest) (*models.Product, error) {
	id := uuid.New().String()

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `INSERT INTO products (id, name) VALUES ($1, $2)`, id, req.Name); err != nil {
		return nil, classify("failed to create product", err)
	}
	for _, m := range req.Materials {
		if err := insertMaterial(ctx, tx, &id, m); err != nil {
			return nil, classify("failed to create product material", err)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit product: %w", err)
	}

	return r.Get(ctx, id)
}

// Update renames the product. When req.Materials is non-nil the existing
// materials are replaced by it.
func (r *ProductRepository) Update(ctx context.Context, id string, req models.ProductRequest) (*models.Product, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	tag, err := tx.Exec(ctx, `UPDATE products SET name = $1, updated_at = NOW() WHERE id = $2`, req.Name, id)
	if err != nil {
		return nil, classify("failed to update product", err)
	}
	if err := requireAffected("failed to update product", tag); err != nil {
		return nil, err
	}

	if req.Materials != nil {
		if _, err := tx.Exec(ctx, `DELETE FROM materials WHERE product_id = $1`, id); err != nil {
			return nil, classify("failed to clear product materials", err)
		}
		for _, m := range req.Materials {
			if err := insertMaterial(ctx, tx, &id, m); err != nil {
				return nil, classify("failed to create product material", err)
			}
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit product: %w", err)
	}
	return r.Get(ctx, id)
}

// Delete removes the product; materials and work orders cascade.
func (r *ProductRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return classify("failed to delete product", err)
	}
	return requireAffected("failed to delete product", tag)
}

func nonNilMaterials(m []models.Material) []models.Material {
	if m == nil {
		return []models.Material{}
	}
	return m
}

func nonNilWorkOrders(o []models.WorkOrder) []models.WorkOrder {
	if o == nil {
		return []models.WorkOrder{}
	}
	return o
}
