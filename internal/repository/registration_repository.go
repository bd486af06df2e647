package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/timetable-scheduler-api/internal/models"
)

const registrationSelect = `SELECT r.id, r.section_id, s.section_name, s.strength AS section_strength,
r.subject_name, r.subject_code, r.credits, r.hours_per_week, r.is_lab,
r.teacher_id, t.name AS teacher_name, r.room_id, r.lab_id, r.semester, r.academic_year,
r.status, r.priority, r.created_at, r.updated_at
FROM registrations r
JOIN sections s ON s.id = r.section_id
JOIN teachers t ON t.id = r.teacher_id`

// registrationOrder fixes tie breaking so equal priorities come back in a stable order.
const registrationOrder = `ORDER BY r.priority DESC, r.created_at ASC, r.id ASC`

// RegistrationRepository persists teaching demand.
type RegistrationRepository struct {
	db *sqlx.DB
}

// NewRegistrationRepository constructs a RegistrationRepository.
func NewRegistrationRepository(db *sqlx.DB) *RegistrationRepository {
	return &RegistrationRepository{db: db}
}

func (r *RegistrationRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

// List returns registrations matching filter along with the total count.
func (r *RegistrationRepository) List(ctx context.Context, filter models.RegistrationFilter) ([]models.Registration, int, error) {
	where, args, err := registrationWhere(filter)
	if err != nil {
		return nil, 0, err
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := r.db.Rebind(fmt.Sprintf("%s %s %s LIMIT %d OFFSET %d", registrationSelect, where, registrationOrder, size, offset))
	var regs []models.Registration
	if err := r.db.SelectContext(ctx, &regs, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list registrations: %w", err)
	}

	countQuery := r.db.Rebind(fmt.Sprintf("SELECT COUNT(*) FROM registrations r %s", where))
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count registrations: %w", err)
	}

	if err := r.attachTimeSlots(ctx, regs); err != nil {
		return nil, 0, err
	}
	return regs, total, nil
}

// ListApproved returns every Approved registration for the sections whose
// semester and academic year match, in scheduling order.
func (r *RegistrationRepository) ListApproved(ctx context.Context, sectionIDs []string, semester, academicYear string) ([]models.Registration, error) {
	if len(sectionIDs) == 0 {
		return nil, nil
	}
	where, args, err := registrationWhere(models.RegistrationFilter{
		SectionIDs:   sectionIDs,
		Semester:     semester,
		AcademicYear: academicYear,
		Status:       models.RegistrationStatusApproved,
	})
	if err != nil {
		return nil, err
	}
	query := r.db.Rebind(fmt.Sprintf("%s %s %s", registrationSelect, where, registrationOrder))
	var regs []models.Registration
	if err := r.db.SelectContext(ctx, &regs, query, args...); err != nil {
		return nil, fmt.Errorf("list approved registrations: %w", err)
	}
	if err := r.attachTimeSlots(ctx, regs); err != nil {
		return nil, err
	}
	return regs, nil
}

// FindByID fetches a registration with its requested slots.
func (r *RegistrationRepository) FindByID(ctx context.Context, id string) (*models.Registration, error) {
	query := registrationSelect + ` WHERE r.id = $1`
	var reg models.Registration
	if err := r.db.GetContext(ctx, &reg, query, id); err != nil {
		return nil, err
	}
	regs := []models.Registration{reg}
	if err := r.attachTimeSlots(ctx, regs); err != nil {
		return nil, err
	}
	return &regs[0], nil
}

// Create inserts the registration and its requested slots.
func (r *RegistrationRepository) Create(ctx context.Context, exec sqlx.ExtContext, reg *models.Registration) error {
	if reg.ID == "" {
		reg.ID = uuid.NewString()
	}
	if reg.Status == "" {
		reg.Status = models.RegistrationStatusPending
	}
	if reg.Priority == 0 {
		reg.Priority = models.DefaultPriority
	}
	now := time.Now().UTC()
	if reg.CreatedAt.IsZero() {
		reg.CreatedAt = now
	}
	reg.UpdatedAt = now

	target := r.exec(exec)
	const query = `
INSERT INTO registrations (id, section_id, subject_name, subject_code, credits, hours_per_week, is_lab, teacher_id, room_id, lab_id, semester, academic_year, status, priority, created_at, updated_at)
VALUES (:id, :section_id, :subject_name, :subject_code, :credits, :hours_per_week, :is_lab, :teacher_id, :room_id, :lab_id, :semester, :academic_year, :status, :priority, :created_at, :updated_at)`
	if _, err := sqlx.NamedExecContext(ctx, target, query, reg); err != nil {
		return fmt.Errorf("insert registration: %w", err)
	}

	return insertRegistrationSlots(ctx, target, reg)
}

// Update rewrites the editable fields of a registration and replaces its
// requested slots. Status and created_at are left as they are.
func (r *RegistrationRepository) Update(ctx context.Context, exec sqlx.ExtContext, reg *models.Registration) error {
	if reg.Priority == 0 {
		reg.Priority = models.DefaultPriority
	}
	reg.UpdatedAt = time.Now().UTC()

	target := r.exec(exec)
	const query = `
UPDATE registrations
SET section_id = :section_id, subject_name = :subject_name, subject_code = :subject_code, credits = :credits,
    hours_per_week = :hours_per_week, is_lab = :is_lab, teacher_id = :teacher_id, room_id = :room_id, lab_id = :lab_id,
    semester = :semester, academic_year = :academic_year, priority = :priority, updated_at = :updated_at
WHERE id = :id`
	result, err := sqlx.NamedExecContext(ctx, target, query, reg)
	if err != nil {
		return fmt.Errorf("update registration: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("registration rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}

	if _, err := target.ExecContext(ctx, `DELETE FROM registration_time_slots WHERE registration_id = $1`, reg.ID); err != nil {
		return fmt.Errorf("clear registration time slots: %w", err)
	}
	return insertRegistrationSlots(ctx, target, reg)
}

func insertRegistrationSlots(ctx context.Context, exec sqlx.ExtContext, reg *models.Registration) error {
	const query = `INSERT INTO registration_time_slots (registration_id, time_slot_id, position) VALUES ($1, $2, $3)`
	for i, slotID := range reg.TimeSlotIDs {
		if _, err := exec.ExecContext(ctx, query, reg.ID, slotID, i); err != nil {
			return fmt.Errorf("insert registration time slot: %w", err)
		}
	}
	return nil
}

// UpdateStatus moves a registration through the approval workflow.
func (r *RegistrationRepository) UpdateStatus(ctx context.Context, id string, status models.RegistrationStatus) error {
	const query = `UPDATE registrations SET status = $1, updated_at = $2 WHERE id = $3`
	result, err := r.db.ExecContext(ctx, query, status, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("update registration status: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("registration rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes a registration; its slot links cascade.
func (r *RegistrationRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM registrations WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete registration: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("registration rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

type registrationSlotRow struct {
	RegistrationID string `db:"registration_id"`
	TimeSlotID     string `db:"time_slot_id"`
}

func (r *RegistrationRepository) attachTimeSlots(ctx context.Context, regs []models.Registration) error {
	if len(regs) == 0 {
		return nil
	}
	ids := make([]string, len(regs))
	index := make(map[string]int, len(regs))
	for i := range regs {
		ids[i] = regs[i].ID
		index[regs[i].ID] = i
		regs[i].TimeSlotIDs = []string{}
	}
	query, args, err := sqlx.In(`SELECT registration_id, time_slot_id FROM registration_time_slots
WHERE registration_id IN (?) ORDER BY registration_id ASC, position ASC`, ids)
	if err != nil {
		return fmt.Errorf("build registration slot lookup: %w", err)
	}
	var rows []registrationSlotRow
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(query), args...); err != nil {
		return fmt.Errorf("list registration time slots: %w", err)
	}
	for _, row := range rows {
		if i, ok := index[row.RegistrationID]; ok {
			regs[i].TimeSlotIDs = append(regs[i].TimeSlotIDs, row.TimeSlotID)
		}
	}
	return nil
}

// registrationWhere renders filter using ? placeholders for sqlx.In and Rebind.
func registrationWhere(filter models.RegistrationFilter) (string, []interface{}, error) {
	var conditions []string
	var args []interface{}

	if len(filter.SectionIDs) > 0 {
		clause, inArgs, err := sqlx.In("r.section_id IN (?)", filter.SectionIDs)
		if err != nil {
			return "", nil, fmt.Errorf("build section filter: %w", err)
		}
		conditions = append(conditions, clause)
		args = append(args, inArgs...)
	}
	if semester := strings.TrimSpace(filter.Semester); semester != "" {
		conditions = append(conditions, "LOWER(TRIM(r.semester)) = LOWER(?)")
		args = append(args, semester)
	}
	if year := strings.TrimSpace(filter.AcademicYear); year != "" {
		conditions = append(conditions, "LOWER(TRIM(r.academic_year)) = LOWER(?)")
		args = append(args, year)
	}
	if filter.Status != "" {
		conditions = append(conditions, "r.status = ?")
		args = append(args, filter.Status)
	}

	if len(conditions) == 0 {
		return "WHERE 1=1", args, nil
	}
	return "WHERE " + strings.Join(conditions, " AND "), args, nil
}
