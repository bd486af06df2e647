package models

import "time"

// TimetableStatus represents lifecycle phases for generated timetables.
type TimetableStatus string

const (
	TimetableStatusDraft     TimetableStatus = "Draft"
	TimetableStatusGenerated TimetableStatus = "Generated"
	TimetableStatusPublished TimetableStatus = "Published"
	TimetableStatusArchived  TimetableStatus = "Archived"
)

// ConflictType classifies a compromise recorded during generation.
type ConflictType string

const (
	ConflictTeacher        ConflictType = "Teacher Conflict"
	ConflictRoom           ConflictType = "Room Conflict"
	ConflictLab            ConflictType = "Lab Conflict"
	ConflictSection        ConflictType = "Section Conflict"
	ConflictNoAvailability ConflictType = "No Available Slots"
)

// Timetable is the persisted outcome of one generation run.
type Timetable struct {
	ID           string           `db:"id" json:"id"`
	Name         string           `db:"name" json:"name"`
	Semester     string           `db:"semester" json:"semester"`
	AcademicYear string           `db:"academic_year" json:"academic_year"`
	SectionIDs   []string         `db:"-" json:"section_ids"`
	Status       TimetableStatus  `db:"status" json:"status"`
	Schedule     []ScheduleEntry  `db:"-" json:"schedule"`
	Conflicts    []ConflictRecord `db:"-" json:"conflicts"`
	GeneratedBy  *string          `db:"generated_by" json:"generated_by,omitempty"`
	GeneratedAt  time.Time        `db:"generated_at" json:"generated_at"`
	CreatedAt    time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time        `db:"updated_at" json:"updated_at"`
}

// ScheduleEntry is one placed session.
type ScheduleEntry struct {
	ID          string  `db:"id" json:"id"`
	TimetableID string  `db:"timetable_id" json:"timetable_id,omitempty"`
	Position    int     `db:"position" json:"-"`
	Day         Weekday `db:"day" json:"day"`
	TimeSlotID  string  `db:"time_slot_id" json:"time_slot_id"`
	SectionID   string  `db:"section_id" json:"section_id"`
	Subject     `json:"subject"`
	TeacherID   string  `db:"teacher_id" json:"teacher_id"`
	RoomID      *string `db:"room_id" json:"room_id,omitempty"`
	LabID       *string `db:"lab_id" json:"lab_id,omitempty"`
}

// ConflictRecord captures one compromise or failure.
type ConflictRecord struct {
	ID            string       `db:"id" json:"id"`
	TimetableID   string       `db:"timetable_id" json:"timetable_id,omitempty"`
	Position      int          `db:"position" json:"-"`
	Type          ConflictType `db:"type" json:"type"`
	Description   string       `db:"description" json:"description"`
	AffectedItems []string     `db:"-" json:"affected_items"`
}

// TimetableFilter captures list filters.
type TimetableFilter struct {
	Status       TimetableStatus
	Semester     string
	AcademicYear string
	Page         int
	PageSize     int
}

// ScheduleEntryDetail is a schedule entry resolved to display labels.
type ScheduleEntryDetail struct {
	Day         Weekday `db:"day" json:"day"`
	StartTime   string  `db:"start_time" json:"start_time"`
	EndTime     string  `db:"end_time" json:"end_time"`
	SectionName string  `db:"section_name" json:"section_name"`
	SubjectCode string  `db:"subject_code" json:"subject_code"`
	SubjectName string  `db:"subject_name" json:"subject_name"`
	TeacherName string  `db:"teacher_name" json:"teacher_name"`
	RoomNumber  *string `db:"room_number" json:"room_number,omitempty"`
	LabNumber   *string `db:"lab_number" json:"lab_number,omitempty"`
	IsLab       bool    `db:"is_lab" json:"is_lab"`
}
