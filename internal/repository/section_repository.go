package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/timetable-scheduler-api/internal/models"
)

// SectionRepository manages student sections.
type SectionRepository struct {
	db *sqlx.DB
}

// NewSectionRepository constructs a SectionRepository.
func NewSectionRepository(db *sqlx.DB) *SectionRepository {
	return &SectionRepository{db: db}
}

// ListByIDs returns the active sections among ids.
func (r *SectionRepository) ListByIDs(ctx context.Context, ids []string) ([]models.Section, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query, args, err := sqlx.In(`SELECT id, section_name, department, year, semester, strength, is_active, created_at, updated_at
FROM sections WHERE is_active = TRUE AND id IN (?) ORDER BY section_name ASC`, ids)
	if err != nil {
		return nil, fmt.Errorf("build section lookup: %w", err)
	}
	var sections []models.Section
	if err := r.db.SelectContext(ctx, &sections, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("list sections: %w", err)
	}
	return sections, nil
}

// EnsureByName creates a placeholder section unless the name exists and
// reports whether a row was created.
func (r *SectionRepository) EnsureByName(ctx context.Context, exec sqlx.ExtContext, name string) (bool, error) {
	now := time.Now().UTC()
	section := models.Section{
		ID:          uuid.NewString(),
		SectionName: name,
		Department:  "Engineering",
		Year:        1,
		Semester:    1,
		Strength:    40,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	target := exec
	if target == nil {
		target = r.db
	}
	const query = `
INSERT INTO sections (id, section_name, department, year, semester, strength, is_active, created_at, updated_at)
VALUES (:id, :section_name, :department, :year, :semester, :strength, :is_active, :created_at, :updated_at)
ON CONFLICT (section_name) DO NOTHING`
	result, err := sqlx.NamedExecContext(ctx, target, query, section)
	if err != nil {
		return false, fmt.Errorf("ensure section: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("section rows affected: %w", err)
	}
	return affected > 0, nil
}
