package models

import "time"

// Room is a lecture venue.
type Room struct {
	ID         string    `db:"id" json:"id" csv:"-"`
	RoomNumber string    `db:"room_number" json:"room_number" csv:"room_number" validate:"required"`
	RoomName   string    `db:"room_name" json:"room_name" csv:"room_name" validate:"required"`
	Capacity   int       `db:"capacity" json:"capacity" csv:"capacity" validate:"min=1"`
	RoomType   string    `db:"room_type" json:"room_type" csv:"room_type" validate:"omitempty,oneof=Classroom 'Lecture Hall' 'Seminar Room' 'Conference Room'"`
	Floor      int       `db:"floor" json:"floor" csv:"floor"`
	Building   string    `db:"building" json:"building" csv:"building"`
	IsActive   bool      `db:"is_active" json:"is_active" csv:"-"`
	CreatedAt  time.Time `db:"created_at" json:"created_at" csv:"-"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at" csv:"-"`
}

// Lab is a practical venue.
type Lab struct {
	ID        string    `db:"id" json:"id" csv:"-"`
	LabNumber string    `db:"lab_number" json:"lab_number" csv:"lab_number" validate:"required"`
	LabName   string    `db:"lab_name" json:"lab_name" csv:"lab_name" validate:"required"`
	Capacity  int       `db:"capacity" json:"capacity" csv:"capacity" validate:"min=1"`
	LabType   string    `db:"lab_type" json:"lab_type" csv:"lab_type" validate:"omitempty,oneof='Computer Lab' 'Physics Lab' 'Chemistry Lab' 'Biology Lab' 'Engineering Lab' 'Language Lab'"`
	Floor     int       `db:"floor" json:"floor" csv:"floor"`
	Building  string    `db:"building" json:"building" csv:"building"`
	IsActive  bool      `db:"is_active" json:"is_active" csv:"-"`
	CreatedAt time.Time `db:"created_at" json:"created_at" csv:"-"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at" csv:"-"`
}
