package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/timetable-scheduler-api/internal/models"
)

const timeSlotColumns = `id, day, start_time, end_time, duration, slot_type, is_active, created_at, updated_at`

// weekdayOrder sorts the day column Monday first instead of alphabetically.
const weekdayOrder = `CASE day WHEN 'Monday' THEN 1 WHEN 'Tuesday' THEN 2 WHEN 'Wednesday' THEN 3 WHEN 'Thursday' THEN 4 WHEN 'Friday' THEN 5 WHEN 'Saturday' THEN 6 ELSE 7 END`

// TimeSlotRepository manages the time slot catalogue.
type TimeSlotRepository struct {
	db *sqlx.DB
}

// NewTimeSlotRepository constructs a TimeSlotRepository.
func NewTimeSlotRepository(db *sqlx.DB) *TimeSlotRepository {
	return &TimeSlotRepository{db: db}
}

func (r *TimeSlotRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

// ListActive returns active slots ordered by weekday then start time.
func (r *TimeSlotRepository) ListActive(ctx context.Context) ([]models.TimeSlot, error) {
	query := fmt.Sprintf("SELECT %s FROM time_slots WHERE is_active = TRUE ORDER BY %s, start_time ASC, id ASC", timeSlotColumns, weekdayOrder)
	var slots []models.TimeSlot
	if err := r.db.SelectContext(ctx, &slots, query); err != nil {
		return nil, fmt.Errorf("list time slots: %w", err)
	}
	return slots, nil
}

// Upsert inserts the slot or refreshes the existing one with the same window.
func (r *TimeSlotRepository) Upsert(ctx context.Context, exec sqlx.ExtContext, slot *models.TimeSlot) error {
	if slot.ID == "" {
		slot.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if slot.CreatedAt.IsZero() {
		slot.CreatedAt = now
	}
	slot.UpdatedAt = now
	slot.IsActive = true

	const query = `
INSERT INTO time_slots (id, day, start_time, end_time, duration, slot_type, is_active, created_at, updated_at)
VALUES (:id, :day, :start_time, :end_time, :duration, :slot_type, :is_active, :created_at, :updated_at)
ON CONFLICT (day, start_time, end_time) DO UPDATE
SET duration = EXCLUDED.duration,
    slot_type = EXCLUDED.slot_type,
    is_active = TRUE,
    updated_at = EXCLUDED.updated_at
RETURNING id`
	if err := namedReturningID(ctx, r.exec(exec), query, slot, &slot.ID); err != nil {
		return fmt.Errorf("upsert time slot: %w", err)
	}
	return nil
}

// Deactivate hides a slot from the catalogue without deleting it.
func (r *TimeSlotRepository) Deactivate(ctx context.Context, id string) error {
	return deactivate(ctx, r.db, "time_slots", id)
}

// CountByIDs returns how many of ids exist as active slots.
func (r *TimeSlotRepository) CountByIDs(ctx context.Context, ids []string) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	query, args, err := sqlx.In(`SELECT COUNT(*) FROM time_slots WHERE is_active = TRUE AND id IN (?)`, ids)
	if err != nil {
		return 0, fmt.Errorf("build time slot count: %w", err)
	}
	var total int
	if err := r.db.GetContext(ctx, &total, r.db.Rebind(query), args...); err != nil {
		return 0, fmt.Errorf("count time slots: %w", err)
	}
	return total, nil
}
