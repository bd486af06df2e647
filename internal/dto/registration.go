package dto

// CreateRegistrationRequest registers a subject for a section with a teacher.
type CreateRegistrationRequest struct {
	SectionID    string   `json:"sectionId" validate:"required"`
	SubjectName  string   `json:"subjectName" validate:"required,max=255"`
	SubjectCode  string   `json:"subjectCode" validate:"required,max=64"`
	Credits      int      `json:"credits" validate:"required,min=1"`
	HoursPerWeek int      `json:"hoursPerWeek" validate:"required,min=1"`
	IsLab        bool     `json:"isLab"`
	TeacherID    string   `json:"teacherId" validate:"required"`
	RoomID       *string  `json:"roomId" validate:"omitempty"`
	LabID        *string  `json:"labId" validate:"omitempty"`
	TimeSlots    []string `json:"timeSlots" validate:"required,min=1,dive,required"`
	Semester     string   `json:"semester" validate:"required"`
	AcademicYear string   `json:"academicYear" validate:"required"`
	Priority     int      `json:"priority" validate:"omitempty,min=1,max=5"`
}

// ImportRegistrationsRequest loads many registrations at once. Approve
// stores every accepted row as Approved instead of Pending.
type ImportRegistrationsRequest struct {
	Approve       bool                        `json:"approve"`
	Registrations []CreateRegistrationRequest `json:"registrations" validate:"required,min=1,max=500"`
}

// RegistrationImportResult summarises a bulk registration import. Rejected
// rows are 1-based positions in the registrations array.
type RegistrationImportResult struct {
	Imported int        `json:"imported"`
	Approved bool       `json:"approved"`
	IDs      []string   `json:"ids"`
	Rejected []RowError `json:"rejected"`
}

// RegistrationQuery captures list filters for registrations.
type RegistrationQuery struct {
	SectionID    string `form:"sectionId"`
	Semester     string `form:"semester"`
	AcademicYear string `form:"academicYear"`
	Status       string `form:"status" validate:"omitempty,oneof=Pending Approved Rejected"`
	Page         int    `form:"page" validate:"omitempty,min=1"`
	PageSize     int    `form:"pageSize" validate:"omitempty,min=1,max=100"`
}
