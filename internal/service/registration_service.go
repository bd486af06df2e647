package service

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/noah-isme/timetable-scheduler-api/internal/dto"
	"github.com/noah-isme/timetable-scheduler-api/internal/models"
	appErrors "github.com/noah-isme/timetable-scheduler-api/pkg/errors"
)

type registrationStore interface {
	List(ctx context.Context, filter models.RegistrationFilter) ([]models.Registration, int, error)
	FindByID(ctx context.Context, id string) (*models.Registration, error)
	Create(ctx context.Context, exec sqlx.ExtContext, reg *models.Registration) error
	Update(ctx context.Context, exec sqlx.ExtContext, reg *models.Registration) error
	UpdateStatus(ctx context.Context, id string, status models.RegistrationStatus) error
	Delete(ctx context.Context, id string) error
}

type teacherFinder interface {
	FindByID(ctx context.Context, id string) (*models.Teacher, error)
}

type timeSlotCounter interface {
	CountByIDs(ctx context.Context, ids []string) (int, error)
}

// RegistrationService manages subject registrations and their approval.
type RegistrationService struct {
	repo      registrationStore
	sections  sectionReader
	teachers  teacherFinder
	slots     timeSlotCounter
	tx        txProvider
	validator *validator.Validate
	logger    *zap.Logger
}

// NewRegistrationService constructs a RegistrationService.
func NewRegistrationService(repo registrationStore, sections sectionReader, teachers teacherFinder, slots timeSlotCounter, tx txProvider, validate *validator.Validate, logger *zap.Logger) *RegistrationService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RegistrationService{repo: repo, sections: sections, teachers: teachers, slots: slots, tx: tx, validator: validate, logger: logger}
}

// List returns registrations matching the query.
func (s *RegistrationService) List(ctx context.Context, query dto.RegistrationQuery) ([]models.Registration, *models.Pagination, error) {
	if err := s.validator.Struct(query); err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid registration query")
	}
	filter := models.RegistrationFilter{
		Semester:     query.Semester,
		AcademicYear: query.AcademicYear,
		Status:       models.RegistrationStatus(query.Status),
		Page:         query.Page,
		PageSize:     query.PageSize,
	}
	if id := strings.TrimSpace(query.SectionID); id != "" {
		filter.SectionIDs = []string{id}
	}
	regs, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list registrations")
	}
	page, size := normalizePage(query.Page, query.PageSize)
	return regs, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Get returns one registration.
func (s *RegistrationService) Get(ctx context.Context, id string) (*models.Registration, error) {
	reg, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "registration not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load registration")
	}
	return reg, nil
}

// Create registers a subject for a section. New registrations start Pending.
func (s *RegistrationService) Create(ctx context.Context, req dto.CreateRegistrationRequest) (*models.Registration, error) {
	reg, err := s.buildRegistration(ctx, req)
	if err != nil {
		return nil, err
	}
	if err := s.inTx(ctx, "create registration", func(tx sqlx.ExtContext) error {
		return s.repo.Create(ctx, tx, reg)
	}); err != nil {
		return nil, err
	}
	s.logger.Info("registration created",
		zap.String("registration_id", reg.ID),
		zap.String("section_id", reg.SectionID),
		zap.String("subject_code", reg.Code),
	)
	return s.Get(ctx, reg.ID)
}

// Update replaces the subject, teacher, rooms and requested slots of a
// registration. The payload is checked exactly like Create; the approval
// status is kept.
func (s *RegistrationService) Update(ctx context.Context, id string, req dto.CreateRegistrationRequest) (*models.Registration, error) {
	reg, err := s.buildRegistration(ctx, req)
	if err != nil {
		return nil, err
	}
	reg.ID = id
	if err := s.inTx(ctx, "update registration", func(tx sqlx.ExtContext) error {
		return s.repo.Update(ctx, tx, reg)
	}); err != nil {
		return nil, err
	}
	s.logger.Info("registration updated", zap.String("registration_id", id))
	return s.Get(ctx, id)
}

// Import creates every valid registration of req in one transaction.
// Rows that fail validation or reference unknown records are reported and
// skipped.
func (s *RegistrationService) Import(ctx context.Context, req dto.ImportRegistrationsRequest) (*dto.RegistrationImportResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid registration import")
	}

	result := &dto.RegistrationImportResult{Approved: req.Approve, IDs: []string{}, Rejected: []dto.RowError{}}
	regs := make([]*models.Registration, 0, len(req.Registrations))
	for i, item := range req.Registrations {
		reg, err := s.buildRegistration(ctx, item)
		if err != nil {
			appErr := appErrors.FromError(err)
			if appErr.Status >= http.StatusInternalServerError {
				return nil, err
			}
			result.Rejected = append(result.Rejected, dto.RowError{Row: i + 1, Message: appErr.Error()})
			continue
		}
		if req.Approve {
			reg.Status = models.RegistrationStatusApproved
		}
		regs = append(regs, reg)
	}

	if len(regs) > 0 {
		if err := s.inTx(ctx, "import registrations", func(tx sqlx.ExtContext) error {
			for _, reg := range regs {
				if err := s.repo.Create(ctx, tx, reg); err != nil {
					return err
				}
			}
			return nil
		}); err != nil {
			return nil, err
		}
	}
	for _, reg := range regs {
		result.IDs = append(result.IDs, reg.ID)
	}
	result.Imported = len(regs)
	s.logger.Info("registrations imported",
		zap.Int("imported", result.Imported),
		zap.Int("rejected", len(result.Rejected)),
		zap.Bool("approved", req.Approve),
	)
	return result, nil
}

// buildRegistration validates req and checks that its section, teacher and
// slots exist. The result is Pending and has no id.
func (s *RegistrationService) buildRegistration(ctx context.Context, req dto.CreateRegistrationRequest) (*models.Registration, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid registration payload")
	}

	sections, err := s.sections.ListByIDs(ctx, []string{req.SectionID})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load section")
	}
	if len(sections) == 0 {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "section not found")
	}

	if _, err := s.teachers.FindByID(ctx, req.TeacherID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "teacher not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teacher")
	}

	slotIDs := uniqueTrimmed(req.TimeSlots)
	found, err := s.slots.CountByIDs(ctx, slotIDs)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to verify time slots")
	}
	if found != len(slotIDs) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "one or more time slots do not exist")
	}

	priority := req.Priority
	if priority == 0 {
		priority = models.DefaultPriority
	}
	return &models.Registration{
		SectionID: req.SectionID,
		Subject: models.Subject{
			Name:         strings.TrimSpace(req.SubjectName),
			Code:         strings.TrimSpace(req.SubjectCode),
			Credits:      req.Credits,
			HoursPerWeek: req.HoursPerWeek,
			IsLab:        req.IsLab,
		},
		TeacherID:    req.TeacherID,
		RoomID:       req.RoomID,
		LabID:        req.LabID,
		TimeSlotIDs:  slotIDs,
		Semester:     strings.TrimSpace(req.Semester),
		AcademicYear: strings.TrimSpace(req.AcademicYear),
		Status:       models.RegistrationStatusPending,
		Priority:     priority,
	}, nil
}

func (s *RegistrationService) inTx(ctx context.Context, action string, fn func(tx sqlx.ExtContext) error) error {
	if s.tx == nil {
		return appErrors.Clone(appErrors.ErrInternal, "transaction provider missing")
	}
	tx, err := s.tx.BeginTxx(ctx, nil)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to begin transaction")
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "registration not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to "+action)
	}
	if err := tx.Commit(); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to commit registration")
	}
	return nil
}

// Approve marks a registration Approved so generation picks it up.
func (s *RegistrationService) Approve(ctx context.Context, id string) (*models.Registration, error) {
	return s.setStatus(ctx, id, models.RegistrationStatusApproved)
}

// Reject marks a registration Rejected.
func (s *RegistrationService) Reject(ctx context.Context, id string) (*models.Registration, error) {
	return s.setStatus(ctx, id, models.RegistrationStatusRejected)
}

func (s *RegistrationService) setStatus(ctx context.Context, id string, status models.RegistrationStatus) (*models.Registration, error) {
	if err := s.repo.UpdateStatus(ctx, id, status); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "registration not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update registration status")
	}
	return s.Get(ctx, id)
}

// Delete removes a registration.
func (s *RegistrationService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "registration not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete registration")
	}
	return nil
}
