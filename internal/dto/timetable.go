package dto

import "github.com/noah-isme/timetable-scheduler-api/internal/models"

// GenerateTimetableRequest asks the engine to build a timetable for a set of sections.
type GenerateTimetableRequest struct {
	Name         string   `json:"name" validate:"required,max=255"`
	Semester     string   `json:"semester" validate:"required"`
	AcademicYear string   `json:"academicYear" validate:"required"`
	Sections     []string `json:"sections" validate:"required,min=1,dive,required"`
}

// TimetableQuery captures list filters for timetables.
type TimetableQuery struct {
	Status       string `form:"status" validate:"omitempty,oneof=Draft Generated Published Archived"`
	Semester     string `form:"semester"`
	AcademicYear string `form:"academicYear"`
	Page         int    `form:"page" validate:"omitempty,min=1"`
	PageSize     int    `form:"pageSize" validate:"omitempty,min=1,max=100"`
}

// GenerationSummary reports how one generation run went.
type GenerationSummary struct {
	Registrations     int                         `json:"registrations"`
	SessionsRequested int                         `json:"sessionsRequested"`
	SessionsPlaced    int                         `json:"sessionsPlaced"`
	GapFilled         int                         `json:"gapFilled"`
	Abandoned         int                         `json:"abandoned"`
	ConflictsByType   map[models.ConflictType]int `json:"conflictsByType"`
	DurationMs        float64                     `json:"durationMs"`
}

// GenerateTimetableResponse wraps the persisted timetable with run statistics.
type GenerateTimetableResponse struct {
	Timetable *models.Timetable `json:"timetable"`
	Summary   GenerationSummary `json:"summary"`
}

// ExportFormat selects the renderer for a timetable export.
type ExportFormat string

const (
	ExportFormatCSV  ExportFormat = "csv"
	ExportFormatPDF  ExportFormat = "pdf"
	ExportFormatXLSX ExportFormat = "xlsx"
)

// ExportFile is a rendered timetable ready for download.
type ExportFile struct {
	Filename    string
	ContentType string
	Payload     []byte
}
