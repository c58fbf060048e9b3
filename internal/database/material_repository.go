package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jjm-manufacturing/core1-backend/internal/models"
)

const materialColumns = "id, material, quantity, unit, price, product_id, created_at, updated_at"

// MaterialRepository persists bill-of-materials lines.
type MaterialRepository struct {
	db DatabasePool
}

func NewMaterialRepository(db DatabasePool) *MaterialRepository {
	return &MaterialRepository{db: db}
}

func scanMaterial(row pgx.Row) (*models.Material, error) {
	var (
		m         models.Material
		productID *string
	)
	if err := row.Scan(&m.ID, &m.Material, &m.Quantity, &m.Unit, &m.Price, &productID, &m.CreatedAt, &m.UpdatedAt); err != nil {
		return nil, err
	}
	if productID != nil {
		m.ProductID = *productID
	}
	return &m, nil
}

func queryMaterials(ctx context.Context, db DatabasePool, where string, args ...interface{}) ([]models.Material, error) {
	query := `SELECT ` + materialColumns + ` FROM materials`
	if where != "" {
		query += " WHERE " + where
	}
	query += " ORDER BY created_at, id"

	rows, err := db.Query(ctx, query, args...)
	if err != nil {
		return nil, classify("failed to query materials", err)
	}
	defer rows.Close()

	materials := []models.Material{}
	for rows.Next() {
		m, err := scanMaterial(rows)
		if err != nil {
			return nil, classify("failed to scan material", err)
		}
		materials = append(materials, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, classify("failed to iterate materials", err)
	}
	return materials, nil
}

// insertMaterial is shared by the material endpoints and nested product writes.
func insertMaterial(ctx context.Context, db DatabasePool, productID *string, in models.MaterialInput) error {
	_, err := db.Exec(ctx, `
		INSERT INTO materials (id, material, quantity, unit, price, product_id)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		uuid.New().String(), in.Material, in.Quantity, in.Unit, in.Price, productID,
	)
	return err
}

func (r *MaterialRepository) List(ctx context.Context) ([]models.Material, error) {
	return queryMaterials(ctx, r.db, "")
}

func (r *MaterialRepository) Get(ctx context.Context, id string) (*models.Material, error) {
	m, err := scanMaterial(r.db.QueryRow(ctx, `SELECT `+materialColumns+` FROM materials WHERE id = $1`, id))
	if err != nil {
		return nil, classify("failed to get material", err)
	}
	return m, nil
}

func (r *MaterialRepository) Create(ctx context.Context, req models.MaterialRequest) (*models.Material, error) {
	query := `
		INSERT INTO materials (id, material, quantity, unit, price, product_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + materialColumns

	m, err := scanMaterial(r.db.QueryRow(ctx, query,
		uuid.New().String(), req.Material, req.Quantity, req.Unit, req.Price, nullableID(req.ProductID),
	))
	if err != nil {
		return nil, classify("failed to create material", err)
	}
	return m, nil
}

func (r *MaterialRepository) Update(ctx context.Context, id string, req models.MaterialRequest) (*models.Material, error) {
	query := `
		UPDATE materials
		SET material = $1, quantity = $2, unit = $3, price = $4, product_id = $5, updated_at = NOW()
		WHERE id = $6
		RETURNING ` + materialColumns

	m, err := scanMaterial(r.db.QueryRow(ctx, query,
		req.Material, req.Quantity, req.Unit, req.Price, nullableID(req.ProductID), id,
	))
	if err != nil {
		return nil, classify("failed to update material", err)
	}
	return m, nil
}

func (r *MaterialRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM materials WHERE id = $1`, id)
	if err != nil {
		return classify("failed to delete material", err)
	}
	return requireAffected("failed to delete material", tag)
}

func nullableID(id string) *string {
	if id == "" {
		return nil
	}
	return &id
}
