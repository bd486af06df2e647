package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/timetable-scheduler-api/internal/models"
)

const roomColumns = `id, room_number, room_name, capacity, room_type, floor, building, is_active, created_at, updated_at`

// RoomRepository manages lecture rooms.
type RoomRepository struct {
	db *sqlx.DB
}

// NewRoomRepository constructs a RoomRepository.
func NewRoomRepository(db *sqlx.DB) *RoomRepository {
	return &RoomRepository{db: db}
}

func (r *RoomRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

// ListActive returns active rooms in room number order, which is the order
// the scheduler tries them in.
func (r *RoomRepository) ListActive(ctx context.Context) ([]models.Room, error) {
	query := fmt.Sprintf("SELECT %s FROM rooms WHERE is_active = TRUE ORDER BY room_number ASC", roomColumns)
	var rooms []models.Room
	if err := r.db.SelectContext(ctx, &rooms, query); err != nil {
		return nil, fmt.Errorf("list rooms: %w", err)
	}
	return rooms, nil
}

// Upsert inserts or refreshes a room keyed by room number.
func (r *RoomRepository) Upsert(ctx context.Context, exec sqlx.ExtContext, room *models.Room) error {
	prepareRoom(room)
	const query = `
INSERT INTO rooms (id, room_number, room_name, capacity, room_type, floor, building, is_active, created_at, updated_at)
VALUES (:id, :room_number, :room_name, :capacity, :room_type, :floor, :building, :is_active, :created_at, :updated_at)
ON CONFLICT (room_number) DO UPDATE
SET room_name = EXCLUDED.room_name,
    capacity = EXCLUDED.capacity,
    room_type = EXCLUDED.room_type,
    floor = EXCLUDED.floor,
    building = EXCLUDED.building,
    is_active = TRUE,
    updated_at = EXCLUDED.updated_at
RETURNING id`
	if err := namedReturningID(ctx, r.exec(exec), query, room, &room.ID); err != nil {
		return fmt.Errorf("upsert room: %w", err)
	}
	return nil
}

// Deactivate soft deletes a room.
func (r *RoomRepository) Deactivate(ctx context.Context, id string) error {
	return deactivate(ctx, r.db, "rooms", id)
}

// Ensure inserts the room unless one with the same number exists and reports
// whether a row was created.
func (r *RoomRepository) Ensure(ctx context.Context, exec sqlx.ExtContext, room *models.Room) (bool, error) {
	prepareRoom(room)
	const query = `
INSERT INTO rooms (id, room_number, room_name, capacity, room_type, floor, building, is_active, created_at, updated_at)
VALUES (:id, :room_number, :room_name, :capacity, :room_type, :floor, :building, :is_active, :created_at, :updated_at)
ON CONFLICT (room_number) DO NOTHING`
	result, err := sqlx.NamedExecContext(ctx, r.exec(exec), query, room)
	if err != nil {
		return false, fmt.Errorf("ensure room: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("room rows affected: %w", err)
	}
	return affected > 0, nil
}

func prepareRoom(room *models.Room) {
	if room.ID == "" {
		room.ID = uuid.NewString()
	}
	if room.RoomType == "" {
		room.RoomType = "Classroom"
	}
	if room.Building == "" {
		room.Building = "Main"
	}
	now := time.Now().UTC()
	if room.CreatedAt.IsZero() {
		room.CreatedAt = now
	}
	room.UpdatedAt = now
	room.IsActive = true
}
