package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"

	"github.com/noah-isme/timetable-scheduler-api/internal/models"
)

const timetableColumns = `id, name, semester, academic_year, status, generated_by, generated_at, created_at, updated_at`

// TimetableRepository persists generated timetables with their entries and conflicts.
type TimetableRepository struct {
	db *sqlx.DB
}

// NewTimetableRepository constructs a TimetableRepository.
func NewTimetableRepository(db *sqlx.DB) *TimetableRepository {
	return &TimetableRepository{db: db}
}

func (r *TimetableRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

// Create inserts the timetable header and its section links.
func (r *TimetableRepository) Create(ctx context.Context, exec sqlx.ExtContext, timetable *models.Timetable) error {
	if timetable == nil {
		return fmt.Errorf("timetable payload is nil")
	}
	if timetable.ID == "" {
		timetable.ID = uuid.NewString()
	}
	if timetable.Status == "" {
		timetable.Status = models.TimetableStatusDraft
	}
	now := time.Now().UTC()
	if timetable.GeneratedAt.IsZero() {
		timetable.GeneratedAt = now
	}
	if timetable.CreatedAt.IsZero() {
		timetable.CreatedAt = now
	}
	timetable.UpdatedAt = now

	target := r.exec(exec)
	const query = `
INSERT INTO timetables (id, name, semester, academic_year, status, generated_by, generated_at, created_at, updated_at)
VALUES (:id, :name, :semester, :academic_year, :status, :generated_by, :generated_at, :created_at, :updated_at)`
	if _, err := sqlx.NamedExecContext(ctx, target, query, timetable); err != nil {
		return fmt.Errorf("insert timetable: %w", err)
	}

	const sectionQuery = `INSERT INTO timetable_sections (timetable_id, section_id) VALUES ($1, $2)`
	for _, sectionID := range timetable.SectionIDs {
		if _, err := target.ExecContext(ctx, sectionQuery, timetable.ID, sectionID); err != nil {
			return fmt.Errorf("insert timetable section: %w", err)
		}
	}
	return nil
}

// InsertEntries stores schedule entries for a timetable.
func (r *TimetableRepository) InsertEntries(ctx context.Context, exec sqlx.ExtContext, timetableID string, entries []models.ScheduleEntry) error {
	if len(entries) == 0 {
		return nil
	}
	target := r.exec(exec)
	const query = `
INSERT INTO timetable_entries (id, timetable_id, position, day, time_slot_id, section_id, subject_name, subject_code, credits, hours_per_week, is_lab, teacher_id, room_id, lab_id)
VALUES (:id, :timetable_id, :position, :day, :time_slot_id, :section_id, :subject_name, :subject_code, :credits, :hours_per_week, :is_lab, :teacher_id, :room_id, :lab_id)`
	for i := range entries {
		entry := &entries[i]
		if entry.ID == "" {
			entry.ID = uuid.NewString()
		}
		entry.TimetableID = timetableID
		if _, err := sqlx.NamedExecContext(ctx, target, query, entry); err != nil {
			return fmt.Errorf("insert timetable entry: %w", err)
		}
	}
	return nil
}

type conflictRow struct {
	ID            string              `db:"id"`
	TimetableID   string              `db:"timetable_id"`
	Position      int                 `db:"position"`
	Type          models.ConflictType `db:"type"`
	Description   string              `db:"description"`
	AffectedItems types.JSONText      `db:"affected_items"`
}

// InsertConflicts stores conflict records; affected items are kept as a JSON array.
func (r *TimetableRepository) InsertConflicts(ctx context.Context, exec sqlx.ExtContext, timetableID string, conflicts []models.ConflictRecord) error {
	if len(conflicts) == 0 {
		return nil
	}
	target := r.exec(exec)
	const query = `
INSERT INTO timetable_conflicts (id, timetable_id, position, type, description, affected_items)
VALUES (:id, :timetable_id, :position, :type, :description, :affected_items)`
	for i := range conflicts {
		conflict := &conflicts[i]
		if conflict.ID == "" {
			conflict.ID = uuid.NewString()
		}
		conflict.TimetableID = timetableID
		items := conflict.AffectedItems
		if items == nil {
			items = []string{}
		}
		payload, err := json.Marshal(items)
		if err != nil {
			return fmt.Errorf("marshal affected items: %w", err)
		}
		row := conflictRow{
			ID:            conflict.ID,
			TimetableID:   timetableID,
			Position:      conflict.Position,
			Type:          conflict.Type,
			Description:   conflict.Description,
			AffectedItems: types.JSONText(payload),
		}
		if _, err := sqlx.NamedExecContext(ctx, target, query, row); err != nil {
			return fmt.Errorf("insert timetable conflict: %w", err)
		}
	}
	return nil
}

// List returns timetable headers matching filter along with the total count.
func (r *TimetableRepository) List(ctx context.Context, filter models.TimetableFilter) ([]models.Timetable, int, error) {
	base := "FROM timetables WHERE 1=1"
	var conditions []string
	var args []interface{}

	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)+1))
		args = append(args, filter.Status)
	}
	if semester := strings.TrimSpace(filter.Semester); semester != "" {
		conditions = append(conditions, fmt.Sprintf("LOWER(TRIM(semester)) = LOWER($%d)", len(args)+1))
		args = append(args, semester)
	}
	if year := strings.TrimSpace(filter.AcademicYear); year != "" {
		conditions = append(conditions, fmt.Sprintf("LOWER(TRIM(academic_year)) = LOWER($%d)", len(args)+1))
		args = append(args, year)
	}
	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
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

	query := fmt.Sprintf("SELECT %s %s ORDER BY generated_at DESC, id ASC LIMIT %d OFFSET %d", timetableColumns, base, size, offset)
	var timetables []models.Timetable
	if err := r.db.SelectContext(ctx, &timetables, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list timetables: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) "+base, args...); err != nil {
		return nil, 0, fmt.Errorf("count timetables: %w", err)
	}
	return timetables, total, nil
}

// FindByID loads a timetable header.
func (r *TimetableRepository) FindByID(ctx context.Context, id string) (*models.Timetable, error) {
	query := fmt.Sprintf("SELECT %s FROM timetables WHERE id = $1", timetableColumns)
	var timetable models.Timetable
	if err := r.db.GetContext(ctx, &timetable, query, id); err != nil {
		return nil, err
	}
	return &timetable, nil
}

// ListSectionIDs returns the sections a timetable was generated for.
func (r *TimetableRepository) ListSectionIDs(ctx context.Context, timetableID string) ([]string, error) {
	const query = `SELECT section_id FROM timetable_sections WHERE timetable_id = $1 ORDER BY section_id ASC`
	ids := []string{}
	if err := r.db.SelectContext(ctx, &ids, query, timetableID); err != nil {
		return nil, fmt.Errorf("list timetable sections: %w", err)
	}
	return ids, nil
}

// ListEntries returns schedule entries in generation order.
func (r *TimetableRepository) ListEntries(ctx context.Context, timetableID string) ([]models.ScheduleEntry, error) {
	const query = `SELECT id, timetable_id, position, day, time_slot_id, section_id, subject_name, subject_code, credits, hours_per_week, is_lab, teacher_id, room_id, lab_id
FROM timetable_entries WHERE timetable_id = $1 ORDER BY position ASC`
	entries := []models.ScheduleEntry{}
	if err := r.db.SelectContext(ctx, &entries, query, timetableID); err != nil {
		return nil, fmt.Errorf("list timetable entries: %w", err)
	}
	return entries, nil
}

// ListConflicts returns conflicts in discovery order.
func (r *TimetableRepository) ListConflicts(ctx context.Context, timetableID string) ([]models.ConflictRecord, error) {
	const query = `SELECT id, timetable_id, position, type, description, affected_items
FROM timetable_conflicts WHERE timetable_id = $1 ORDER BY position ASC`
	var rows []conflictRow
	if err := r.db.SelectContext(ctx, &rows, query, timetableID); err != nil {
		return nil, fmt.Errorf("list timetable conflicts: %w", err)
	}
	conflicts := make([]models.ConflictRecord, 0, len(rows))
	for _, row := range rows {
		items := []string{}
		if len(row.AffectedItems) > 0 {
			if err := row.AffectedItems.Unmarshal(&items); err != nil {
				return nil, fmt.Errorf("decode affected items: %w", err)
			}
		}
		conflicts = append(conflicts, models.ConflictRecord{
			ID:            row.ID,
			TimetableID:   row.TimetableID,
			Position:      row.Position,
			Type:          row.Type,
			Description:   row.Description,
			AffectedItems: items,
		})
	}
	return conflicts, nil
}

// ListEntryDetails joins entries with their catalogue labels for exports.
func (r *TimetableRepository) ListEntryDetails(ctx context.Context, timetableID string) ([]models.ScheduleEntryDetail, error) {
	const query = `SELECT e.day, ts.start_time, ts.end_time, s.section_name, e.subject_code, e.subject_name,
t.name AS teacher_name, rm.room_number, lb.lab_number, e.is_lab
FROM timetable_entries e
JOIN time_slots ts ON ts.id = e.time_slot_id
JOIN sections s ON s.id = e.section_id
JOIN teachers t ON t.id = e.teacher_id
LEFT JOIN rooms rm ON rm.id = e.room_id
LEFT JOIN labs lb ON lb.id = e.lab_id
WHERE e.timetable_id = $1
ORDER BY e.position ASC`
	details := []models.ScheduleEntryDetail{}
	if err := r.db.SelectContext(ctx, &details, query, timetableID); err != nil {
		return nil, fmt.Errorf("list timetable entry details: %w", err)
	}
	return details, nil
}

// UpdateStatus changes the lifecycle status of a timetable.
func (r *TimetableRepository) UpdateStatus(ctx context.Context, id string, status models.TimetableStatus) error {
	const query = `UPDATE timetables SET status = $1, updated_at = $2 WHERE id = $3`
	result, err := r.db.ExecContext(ctx, query, status, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("update timetable status: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("timetable rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes a timetable; entries, conflicts and section links cascade.
func (r *TimetableRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM timetables WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete timetable: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("timetable rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
