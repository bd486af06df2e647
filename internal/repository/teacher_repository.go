package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/timetable-scheduler-api/internal/models"
)

// TeacherRepository manages persistence for teachers.
type TeacherRepository struct {
	db *sqlx.DB
}

// NewTeacherRepository constructs a TeacherRepository.
func NewTeacherRepository(db *sqlx.DB) *TeacherRepository {
	return &TeacherRepository{db: db}
}

// FindByID fetches a teacher by ID.
func (r *TeacherRepository) FindByID(ctx context.Context, id string) (*models.Teacher, error) {
	const query = `SELECT id, name, email, department, max_hours_per_week, is_active, created_at, updated_at FROM teachers WHERE id = $1`
	var teacher models.Teacher
	if err := r.db.GetContext(ctx, &teacher, query, id); err != nil {
		return nil, err
	}
	return &teacher, nil
}

// EnsureByCode creates a placeholder teacher named after a timetable code
// unless the generated email is taken, and reports whether a row was created.
func (r *TeacherRepository) EnsureByCode(ctx context.Context, exec sqlx.ExtContext, code string) (bool, error) {
	now := time.Now().UTC()
	teacher := models.Teacher{
		ID:              uuid.NewString(),
		Name:            code,
		Email:           PlaceholderEmail(code),
		Department:      "TBD",
		MaxHoursPerWeek: 40,
		IsActive:        true,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	target := exec
	if target == nil {
		target = r.db
	}
	const query = `INSERT INTO teachers (id, name, email, department, max_hours_per_week, is_active, created_at, updated_at)
		VALUES (:id, :name, :email, :department, :max_hours_per_week, :is_active, :created_at, :updated_at)
		ON CONFLICT (email) DO NOTHING`
	result, err := sqlx.NamedExecContext(ctx, target, query, teacher)
	if err != nil {
		return false, fmt.Errorf("ensure teacher: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("teacher rows affected: %w", err)
	}
	return affected > 0, nil
}

// PlaceholderEmail derives the address used for teachers created from codes.
func PlaceholderEmail(code string) string {
	return strings.ToLower(strings.TrimSpace(code)) + "@example.edu"
}
