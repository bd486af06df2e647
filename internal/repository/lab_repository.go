package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/timetable-scheduler-api/internal/models"
)

const labColumns = `id, lab_number, lab_name, capacity, lab_type, floor, building, is_active, created_at, updated_at`

// LabRepository manages practical labs.
type LabRepository struct {
	db *sqlx.DB
}

// NewLabRepository constructs a LabRepository.
func NewLabRepository(db *sqlx.DB) *LabRepository {
	return &LabRepository{db: db}
}

// ListActive returns active labs in lab number order.
func (r *LabRepository) ListActive(ctx context.Context) ([]models.Lab, error) {
	query := fmt.Sprintf("SELECT %s FROM labs WHERE is_active = TRUE ORDER BY lab_number ASC", labColumns)
	var labs []models.Lab
	if err := r.db.SelectContext(ctx, &labs, query); err != nil {
		return nil, fmt.Errorf("list labs: %w", err)
	}
	return labs, nil
}

// Upsert inserts or refreshes a lab keyed by lab number.
func (r *LabRepository) Upsert(ctx context.Context, exec sqlx.ExtContext, lab *models.Lab) error {
	if lab.ID == "" {
		lab.ID = uuid.NewString()
	}
	if lab.LabType == "" {
		lab.LabType = "Computer Lab"
	}
	if lab.Building == "" {
		lab.Building = "Main"
	}
	now := time.Now().UTC()
	if lab.CreatedAt.IsZero() {
		lab.CreatedAt = now
	}
	lab.UpdatedAt = now
	lab.IsActive = true

	target := exec
	if target == nil {
		target = r.db
	}
	const query = `
INSERT INTO labs (id, lab_number, lab_name, capacity, lab_type, floor, building, is_active, created_at, updated_at)
VALUES (:id, :lab_number, :lab_name, :capacity, :lab_type, :floor, :building, :is_active, :created_at, :updated_at)
ON CONFLICT (lab_number) DO UPDATE
SET lab_name = EXCLUDED.lab_name,
    capacity = EXCLUDED.capacity,
    lab_type = EXCLUDED.lab_type,
    floor = EXCLUDED.floor,
    building = EXCLUDED.building,
    is_active = TRUE,
    updated_at = EXCLUDED.updated_at
RETURNING id`
	if err := namedReturningID(ctx, target, query, lab, &lab.ID); err != nil {
		return fmt.Errorf("upsert lab: %w", err)
	}
	return nil
}

// Deactivate soft deletes a lab.
func (r *LabRepository) Deactivate(ctx context.Context, id string) error {
	return deactivate(ctx, r.db, "labs", id)
}
