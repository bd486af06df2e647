package models

import "time"

// RegistrationStatus tracks the approval workflow.
type RegistrationStatus string

const (
	RegistrationStatusPending  RegistrationStatus = "Pending"
	RegistrationStatusApproved RegistrationStatus = "Approved"
	RegistrationStatusRejected RegistrationStatus = "Rejected"
)

const (
	MinPriority     = 1
	MaxPriority     = 5
	DefaultPriority = MinPriority
)

// Registration is a request that a section be taught a subject by a teacher.
type Registration struct {
	ID              string `db:"id" json:"id"`
	SectionID       string `db:"section_id" json:"section_id"`
	SectionName     string `db:"section_name" json:"section_name"`
	SectionStrength int    `db:"section_strength" json:"section_strength"`
	Subject         `json:"subject"`
	TeacherID       string             `db:"teacher_id" json:"teacher_id"`
	TeacherName     string             `db:"teacher_name" json:"teacher_name"`
	RoomID          *string            `db:"room_id" json:"room_id,omitempty"`
	LabID           *string            `db:"lab_id" json:"lab_id,omitempty"`
	TimeSlotIDs     []string           `db:"-" json:"time_slot_ids"`
	Semester        string             `db:"semester" json:"semester"`
	AcademicYear    string             `db:"academic_year" json:"academic_year"`
	Status          RegistrationStatus `db:"status" json:"status"`
	Priority        int                `db:"priority" json:"priority"`
	CreatedAt       time.Time          `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time          `db:"updated_at" json:"updated_at"`
}

// RegistrationFilter captures list filters. Semester and academic year match
// case-insensitively after trimming.
type RegistrationFilter struct {
	SectionIDs   []string
	Semester     string
	AcademicYear string
	Status       RegistrationStatus
	Page         int
	PageSize     int
}
