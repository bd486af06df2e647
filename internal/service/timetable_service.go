package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/noah-isme/timetable-scheduler-api/internal/dto"
	"github.com/noah-isme/timetable-scheduler-api/internal/models"
	"github.com/noah-isme/timetable-scheduler-api/internal/scheduler"
	appErrors "github.com/noah-isme/timetable-scheduler-api/pkg/errors"
	"github.com/noah-isme/timetable-scheduler-api/pkg/export"
)

type txProvider interface {
	BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error)
}

type timetableStore interface {
	Create(ctx context.Context, exec sqlx.ExtContext, timetable *models.Timetable) error
	InsertEntries(ctx context.Context, exec sqlx.ExtContext, timetableID string, entries []models.ScheduleEntry) error
	InsertConflicts(ctx context.Context, exec sqlx.ExtContext, timetableID string, conflicts []models.ConflictRecord) error
	List(ctx context.Context, filter models.TimetableFilter) ([]models.Timetable, int, error)
	FindByID(ctx context.Context, id string) (*models.Timetable, error)
	ListSectionIDs(ctx context.Context, timetableID string) ([]string, error)
	ListEntries(ctx context.Context, timetableID string) ([]models.ScheduleEntry, error)
	ListConflicts(ctx context.Context, timetableID string) ([]models.ConflictRecord, error)
	ListEntryDetails(ctx context.Context, timetableID string) ([]models.ScheduleEntryDetail, error)
	UpdateStatus(ctx context.Context, id string, status models.TimetableStatus) error
	Delete(ctx context.Context, id string) error
}

type sectionReader interface {
	ListByIDs(ctx context.Context, ids []string) ([]models.Section, error)
}

type approvedRegistrationReader interface {
	ListApproved(ctx context.Context, sectionIDs []string, semester, academicYear string) ([]models.Registration, error)
}

type timeSlotLister interface {
	ListActive(ctx context.Context) ([]models.TimeSlot, error)
}

type roomLister interface {
	ListActive(ctx context.Context) ([]models.Room, error)
}

type labLister interface {
	ListActive(ctx context.Context) ([]models.Lab, error)
}

var exportHeaders = []string{"Day", "Start", "End", "Section", "Subject Code", "Subject Name", "Teacher", "Room/Lab", "Type"}

var unsafeFilename = regexp.MustCompile(`[^A-Za-z0-9_-]+`)

// TimetableService generates timetables and manages their lifecycle.
type TimetableService struct {
	timetables    timetableStore
	sections      sectionReader
	registrations approvedRegistrationReader
	slots         timeSlotLister
	rooms         roomLister
	labs          labLister
	tx            txProvider
	cache         *CacheService
	metrics       *MetricsService
	validator     *validator.Validate
	logger        *zap.Logger
	exporters     map[dto.ExportFormat]export.Exporter
	cacheTTL      time.Duration
}

// NewTimetableService wires timetable dependencies.
func NewTimetableService(
	timetables timetableStore,
	sections sectionReader,
	registrations approvedRegistrationReader,
	slots timeSlotLister,
	rooms roomLister,
	labs labLister,
	tx txProvider,
	cache *CacheService,
	metrics *MetricsService,
	validate *validator.Validate,
	logger *zap.Logger,
	cacheTTL time.Duration,
) *TimetableService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TimetableService{
		timetables:    timetables,
		sections:      sections,
		registrations: registrations,
		slots:         slots,
		rooms:         rooms,
		labs:          labs,
		tx:            tx,
		cache:         cache,
		metrics:       metrics,
		validator:     validate,
		logger:        logger,
		cacheTTL:      cacheTTL,
		exporters: map[dto.ExportFormat]export.Exporter{
			dto.ExportFormatCSV:  export.NewCSVExporter(),
			dto.ExportFormatPDF:  export.NewPDFExporter(),
			dto.ExportFormatXLSX: export.NewXLSXExporter("Timetable"),
		},
	}
}

// Generate builds and persists a timetable for the requested sections.
func (s *TimetableService) Generate(ctx context.Context, req dto.GenerateTimetableRequest, generatedBy string) (*dto.GenerateTimetableResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid timetable generation payload")
	}
	sectionIDs := uniqueTrimmed(req.Sections)
	if len(sectionIDs) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "at least one section is required")
	}
	semester := strings.TrimSpace(req.Semester)
	academicYear := strings.TrimSpace(req.AcademicYear)

	sections, err := s.sections.ListByIDs(ctx, sectionIDs)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load sections")
	}
	if len(sections) != len(sectionIDs) {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "one or more sections not found")
	}

	registrations, err := s.registrations.ListApproved(ctx, sectionIDs, semester, academicYear)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load registrations")
	}
	if len(registrations) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "no approved registrations found for the specified criteria")
	}

	timeSlots, err := s.slots.ListActive(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load time slots")
	}
	rooms, err := s.rooms.ListActive(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load rooms")
	}
	labs, err := s.labs.ListActive(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load labs")
	}

	start := time.Now()
	result, err := scheduler.Generate(registrations, timeSlots, rooms, labs)
	if err != nil {
		if errors.Is(err, scheduler.ErrEmptyCatalogue) {
			return nil, appErrors.Wrap(err, appErrors.ErrPreconditionFailed.Code, appErrors.ErrPreconditionFailed.Status, "no active time slots defined")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to generate timetable")
	}
	elapsed := time.Since(start)

	if err := ctx.Err(); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "timetable generation cancelled")
	}

	status := models.TimetableStatusGenerated
	if len(result.Conflicts) > 0 {
		status = models.TimetableStatusDraft
	}
	timetable := &models.Timetable{
		Name:         strings.TrimSpace(req.Name),
		Semester:     semester,
		AcademicYear: academicYear,
		SectionIDs:   sectionIDs,
		Status:       status,
		Schedule:     result.Schedule,
		Conflicts:    result.Conflicts,
		GeneratedAt:  time.Now().UTC(),
	}
	if generatedBy != "" {
		timetable.GeneratedBy = &generatedBy
	}
	if err := s.persist(ctx, timetable); err != nil {
		return nil, err
	}

	counts := result.ConflictCounts()
	s.metrics.ObserveGeneration(status, len(result.Schedule), counts, elapsed)
	s.logger.Info("timetable generated",
		zap.String("timetable_id", timetable.ID),
		zap.Int("sections", len(sectionIDs)),
		zap.Int("registrations", len(registrations)),
		zap.Int("entries", len(result.Schedule)),
		zap.Int("conflicts", len(result.Conflicts)),
		zap.Duration("duration", elapsed),
	)
	_ = s.cache.Set(ctx, TimetableKey(timetable.ID), timetable, s.cacheTTL)

	return &dto.GenerateTimetableResponse{
		Timetable: timetable,
		Summary: dto.GenerationSummary{
			Registrations:     result.Stats.Registrations,
			SessionsRequested: result.Stats.SessionsRequested,
			SessionsPlaced:    result.Stats.SessionsPlaced,
			GapFilled:         result.Stats.GapFilled,
			Abandoned:         result.Stats.Abandoned,
			ConflictsByType:   counts,
			DurationMs:        float64(elapsed) / float64(time.Millisecond),
		},
	}, nil
}

func (s *TimetableService) persist(ctx context.Context, timetable *models.Timetable) error {
	if s.tx == nil {
		return appErrors.Clone(appErrors.ErrInternal, "transaction provider missing")
	}
	tx, err := s.tx.BeginTxx(ctx, nil)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to begin transaction")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = s.timetables.Create(ctx, tx, timetable); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create timetable")
	}
	if err = s.timetables.InsertEntries(ctx, tx, timetable.ID, timetable.Schedule); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist schedule entries")
	}
	if err = s.timetables.InsertConflicts(ctx, tx, timetable.ID, timetable.Conflicts); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist conflicts")
	}
	if err = tx.Commit(); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to commit timetable transaction")
	}
	return nil
}

// List returns timetable headers matching the query.
func (s *TimetableService) List(ctx context.Context, query dto.TimetableQuery) ([]models.Timetable, *models.Pagination, error) {
	if err := s.validator.Struct(query); err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid timetable query")
	}
	filter := models.TimetableFilter{
		Status:       models.TimetableStatus(query.Status),
		Semester:     query.Semester,
		AcademicYear: query.AcademicYear,
		Page:         query.Page,
		PageSize:     query.PageSize,
	}
	timetables, total, err := s.timetables.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list timetables")
	}
	page, size := normalizePage(query.Page, query.PageSize)
	return timetables, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Get loads a timetable with its sections, schedule and conflicts.
func (s *TimetableService) Get(ctx context.Context, id string) (*models.Timetable, error) {
	var cached models.Timetable
	if hit, _ := s.cache.Get(ctx, TimetableKey(id), &cached); hit {
		return &cached, nil
	}

	timetable, err := s.findTimetable(ctx, id)
	if err != nil {
		return nil, err
	}
	if timetable.SectionIDs, err = s.timetables.ListSectionIDs(ctx, id); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load timetable sections")
	}
	if timetable.Schedule, err = s.timetables.ListEntries(ctx, id); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load schedule entries")
	}
	if timetable.Conflicts, err = s.timetables.ListConflicts(ctx, id); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load conflicts")
	}

	_ = s.cache.Set(ctx, TimetableKey(id), timetable, s.cacheTTL)
	return timetable, nil
}

// Publish marks a timetable as Published. Archived timetables stay archived.
func (s *TimetableService) Publish(ctx context.Context, id string) (*models.Timetable, error) {
	return s.transition(ctx, id, models.TimetableStatusPublished, func(current models.TimetableStatus) error {
		if current == models.TimetableStatusArchived {
			return appErrors.Clone(appErrors.ErrConflict, "archived timetables cannot be published")
		}
		return nil
	})
}

// Archive marks a timetable as Archived.
func (s *TimetableService) Archive(ctx context.Context, id string) (*models.Timetable, error) {
	return s.transition(ctx, id, models.TimetableStatusArchived, func(current models.TimetableStatus) error {
		if current == models.TimetableStatusArchived {
			return appErrors.Clone(appErrors.ErrConflict, "timetable already archived")
		}
		return nil
	})
}

func (s *TimetableService) transition(ctx context.Context, id string, target models.TimetableStatus, guard func(models.TimetableStatus) error) (*models.Timetable, error) {
	timetable, err := s.findTimetable(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := guard(timetable.Status); err != nil {
		return nil, err
	}
	if err := s.timetables.UpdateStatus(ctx, id, target); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "timetable not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update timetable status")
	}
	_ = s.cache.Invalidate(ctx, TimetableKey(id))
	timetable.Status = target
	return timetable, nil
}

// Delete removes a timetable and everything generated with it.
func (s *TimetableService) Delete(ctx context.Context, id string) error {
	if err := s.timetables.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "timetable not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete timetable")
	}
	_ = s.cache.Invalidate(ctx, TimetableKey(id))
	return nil
}

// Export renders a timetable as a flat table in the requested format.
func (s *TimetableService) Export(ctx context.Context, id string, format dto.ExportFormat) (*dto.ExportFile, error) {
	if format == "" {
		format = dto.ExportFormatCSV
	}
	exporter, ok := s.exporters[dto.ExportFormat(strings.ToLower(string(format)))]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, "format must be one of csv, pdf, xlsx")
	}
	timetable, err := s.findTimetable(ctx, id)
	if err != nil {
		return nil, err
	}
	details, err := s.timetables.ListEntryDetails(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load schedule entries")
	}

	payload, err := exporter.Render(exportDataset(timetable, details))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render timetable export")
	}
	return &dto.ExportFile{
		Filename:    fmt.Sprintf("%s.%s", exportFilename(timetable), exporter.Extension()),
		ContentType: exporter.ContentType(),
		Payload:     payload,
	}, nil
}

func (s *TimetableService) findTimetable(ctx context.Context, id string) (*models.Timetable, error) {
	timetable, err := s.timetables.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "timetable not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load timetable")
	}
	return timetable, nil
}

func exportDataset(timetable *models.Timetable, details []models.ScheduleEntryDetail) export.Dataset {
	rows := make([]map[string]string, 0, len(details))
	for _, d := range details {
		location, kind := "", "Lecture"
		if d.IsLab {
			kind = "Lab"
			if d.LabNumber != nil {
				location = *d.LabNumber
			}
		} else if d.RoomNumber != nil {
			location = *d.RoomNumber
		}
		rows = append(rows, map[string]string{
			"Day":          string(d.Day),
			"Start":        d.StartTime,
			"End":          d.EndTime,
			"Section":      d.SectionName,
			"Subject Code": d.SubjectCode,
			"Subject Name": d.SubjectName,
			"Teacher":      d.TeacherName,
			"Room/Lab":     location,
			"Type":         kind,
		})
	}
	return export.Dataset{
		Title:   fmt.Sprintf("%s (%s %s)", timetable.Name, timetable.Semester, timetable.AcademicYear),
		Headers: exportHeaders,
		Rows:    rows,
	}
}

func exportFilename(timetable *models.Timetable) string {
	name := strings.Trim(unsafeFilename.ReplaceAllString(timetable.Name, "_"), "_")
	if name == "" {
		return "timetable-" + timetable.ID
	}
	return strings.ToLower(name)
}

func uniqueTrimmed(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

func normalizePage(page, size int) (int, int) {
	if page < 1 {
		page = 1
	}
	if size <= 0 || size > 100 {
		size = 20
	}
	return page, size
}
