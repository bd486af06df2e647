package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/noah-isme/timetable-scheduler-api/internal/dto"
	"github.com/noah-isme/timetable-scheduler-api/internal/importer"
	"github.com/noah-isme/timetable-scheduler-api/internal/models"
	"github.com/noah-isme/timetable-scheduler-api/internal/scheduler"
	appErrors "github.com/noah-isme/timetable-scheduler-api/pkg/errors"
)

type timeSlotCatalogue interface {
	ListActive(ctx context.Context) ([]models.TimeSlot, error)
	Upsert(ctx context.Context, exec sqlx.ExtContext, slot *models.TimeSlot) error
	Deactivate(ctx context.Context, id string) error
}

type roomCatalogue interface {
	ListActive(ctx context.Context) ([]models.Room, error)
	Upsert(ctx context.Context, exec sqlx.ExtContext, room *models.Room) error
	Ensure(ctx context.Context, exec sqlx.ExtContext, room *models.Room) (bool, error)
	Deactivate(ctx context.Context, id string) error
}

type labCatalogue interface {
	ListActive(ctx context.Context) ([]models.Lab, error)
	Upsert(ctx context.Context, exec sqlx.ExtContext, lab *models.Lab) error
	Deactivate(ctx context.Context, id string) error
}

type teacherEnsurer interface {
	EnsureByCode(ctx context.Context, exec sqlx.ExtContext, code string) (bool, error)
}

type sectionEnsurer interface {
	EnsureByName(ctx context.Context, exec sqlx.ExtContext, name string) (bool, error)
}

// Weekdays and slot windows of the standard teaching week.
var (
	standardDays = []models.Weekday{models.Monday, models.Tuesday, models.Wednesday, models.Thursday, models.Friday}
	standardDay  = []models.TimeSlot{
		{StartTime: "09:00", EndTime: "10:00", SlotType: models.SlotTypeLecture},
		{StartTime: "10:00", EndTime: "11:00", SlotType: models.SlotTypeLecture},
		{StartTime: "11:15", EndTime: "12:15", SlotType: models.SlotTypeLecture},
		{StartTime: "12:15", EndTime: "13:15", SlotType: models.SlotTypeLecture},
		{StartTime: "14:00", EndTime: "15:00", SlotType: models.SlotTypeLecture},
		{StartTime: "14:00", EndTime: "16:00", SlotType: models.SlotTypeLab},
		{StartTime: "15:00", EndTime: "16:00", SlotType: models.SlotTypeLecture},
	}
)

// CatalogueService exposes the slot, room and lab catalogue and its imports.
type CatalogueService struct {
	slots     timeSlotCatalogue
	rooms     roomCatalogue
	labs      labCatalogue
	teachers  teacherEnsurer
	sections  sectionEnsurer
	tx        txProvider
	csv       *importer.CatalogueCSV
	validator *validator.Validate
	logger    *zap.Logger
}

// NewCatalogueService constructs a CatalogueService.
func NewCatalogueService(
	slots timeSlotCatalogue,
	rooms roomCatalogue,
	labs labCatalogue,
	teachers teacherEnsurer,
	sections sectionEnsurer,
	tx txProvider,
	validate *validator.Validate,
	logger *zap.Logger,
) *CatalogueService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CatalogueService{
		slots:     slots,
		rooms:     rooms,
		labs:      labs,
		teachers:  teachers,
		sections:  sections,
		tx:        tx,
		csv:       importer.NewCatalogueCSV(),
		validator: validate,
		logger:    logger,
	}
}

// ListTimeSlots returns active slots ordered by weekday then start time.
func (s *CatalogueService) ListTimeSlots(ctx context.Context) ([]models.TimeSlot, error) {
	slots, err := s.slots.ListActive(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list time slots")
	}
	scheduler.SortTimeSlots(slots)
	return slots, nil
}

// ListRooms returns active rooms.
func (s *CatalogueService) ListRooms(ctx context.Context) ([]models.Room, error) {
	rooms, err := s.rooms.ListActive(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list rooms")
	}
	return rooms, nil
}

// ListLabs returns active labs.
func (s *CatalogueService) ListLabs(ctx context.Context) ([]models.Lab, error) {
	labs, err := s.labs.ListActive(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list labs")
	}
	return labs, nil
}

// DeactivateTimeSlot removes a slot from the active catalogue. Registrations
// that still request it keep the reference; generation only sees active slots.
func (s *CatalogueService) DeactivateTimeSlot(ctx context.Context, id string) error {
	return s.deactivate(ctx, "time slot", id, s.slots.Deactivate)
}

// DeactivateRoom removes a room from the active catalogue.
func (s *CatalogueService) DeactivateRoom(ctx context.Context, id string) error {
	return s.deactivate(ctx, "room", id, s.rooms.Deactivate)
}

// DeactivateLab removes a lab from the active catalogue.
func (s *CatalogueService) DeactivateLab(ctx context.Context, id string) error {
	return s.deactivate(ctx, "lab", id, s.labs.Deactivate)
}

func (s *CatalogueService) deactivate(ctx context.Context, kind, id string, fn func(context.Context, string) error) error {
	if err := fn(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, kind+" not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to deactivate "+kind)
	}
	s.logger.Info("catalogue entry deactivated", zap.String("kind", kind), zap.String("id", id))
	return nil
}

// ImportCSV validates each row of a catalogue upload and upserts the valid
// ones in one transaction. Invalid rows are reported, not fatal.
func (s *CatalogueService) ImportCSV(ctx context.Context, kind dto.CatalogueKind, in io.Reader) (*dto.CSVImportResult, error) {
	result := &dto.CSVImportResult{Kind: kind, Rejected: []dto.RowError{}}
	var writes []func(sqlx.ExtContext) error

	switch kind {
	case dto.CatalogueTimeSlots:
		rows, err := s.csv.TimeSlots(in)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid csv file")
		}
		for i, slot := range rows {
			if err := slot.Validate(); err != nil {
				result.Rejected = append(result.Rejected, dto.RowError{Row: i + 2, Message: err.Error()})
				continue
			}
			writes = append(writes, func(exec sqlx.ExtContext) error { return s.slots.Upsert(ctx, exec, slot) })
		}
	case dto.CatalogueRooms:
		rows, err := s.csv.Rooms(in)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid csv file")
		}
		for i, room := range rows {
			if err := s.validator.Struct(room); err != nil {
				result.Rejected = append(result.Rejected, dto.RowError{Row: i + 2, Message: err.Error()})
				continue
			}
			writes = append(writes, func(exec sqlx.ExtContext) error { return s.rooms.Upsert(ctx, exec, room) })
		}
	case dto.CatalogueLabs:
		rows, err := s.csv.Labs(in)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid csv file")
		}
		for i, lab := range rows {
			if err := s.validator.Struct(lab); err != nil {
				result.Rejected = append(result.Rejected, dto.RowError{Row: i + 2, Message: err.Error()})
				continue
			}
			writes = append(writes, func(exec sqlx.ExtContext) error { return s.labs.Upsert(ctx, exec, lab) })
		}
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, "kind must be one of timeslots, rooms, labs")
	}

	if err := s.inTx(ctx, func(tx sqlx.ExtContext) error {
		for _, write := range writes {
			if err := write(tx); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		return nil, err
	}
	result.Imported = len(writes)
	s.logger.Info("catalogue imported",
		zap.String("kind", string(kind)),
		zap.Int("imported", result.Imported),
		zap.Int("rejected", len(result.Rejected)),
	)
	return result, nil
}

// ImportGrid scans a timetable grid workbook and makes sure every slot,
// teacher, room and section it mentions exists.
func (s *CatalogueService) ImportGrid(ctx context.Context, in io.Reader) (*dto.GridImportResult, error) {
	grid, err := importer.ScanGrid(in)
	if err != nil {
		if errors.Is(err, importer.ErrNoTimeHeader) {
			return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, err.Error())
		}
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid workbook")
	}

	slots := grid.TimeSlots()
	result := &dto.GridImportResult{
		TimeSlots:    make([]string, 0, len(slots)),
		Teachers:     grid.TeacherCodes(),
		Rooms:        grid.RoomCodes(),
		Sections:     grid.Sections(),
		Cells:        len(grid.Cells),
		SkippedCells: grid.Skipped,
	}
	for _, slot := range slots {
		result.TimeSlots = append(result.TimeSlots, slot.Label())
	}

	err = s.inTx(ctx, func(tx sqlx.ExtContext) error {
		for i := range slots {
			slot := &slots[i]
			if err := slot.Validate(); err != nil {
				s.logger.Warn("grid time slot skipped", zap.String("slot", slot.Label()), zap.Error(err))
				continue
			}
			if err := s.slots.Upsert(ctx, tx, slot); err != nil {
				return err
			}
			result.UpsertedSlots++
		}
		for _, code := range result.Teachers {
			created, err := s.teachers.EnsureByCode(ctx, tx, code)
			if err != nil {
				return err
			}
			if created {
				result.CreatedTeachers++
			}
		}
		for _, code := range result.Rooms {
			created, err := s.rooms.Ensure(ctx, tx, &models.Room{RoomNumber: code, RoomName: code, Capacity: 40, Floor: 1})
			if err != nil {
				return err
			}
			if created {
				result.CreatedRooms++
			}
		}
		for _, name := range result.Sections {
			created, err := s.sections.EnsureByName(ctx, tx, name)
			if err != nil {
				return err
			}
			if created {
				result.CreatedSections++
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("timetable grid imported",
		zap.Int("cells", result.Cells),
		zap.Int("slots", result.UpsertedSlots),
		zap.Int("teachers_created", result.CreatedTeachers),
		zap.Int("rooms_created", result.CreatedRooms),
		zap.Int("sections_created", result.CreatedSections),
	)
	return result, nil
}

// SeedStandardWeek upserts the Monday to Friday slot grid and returns the
// number of slots written.
func (s *CatalogueService) SeedStandardWeek(ctx context.Context) (int, error) {
	count := 0
	err := s.inTx(ctx, func(tx sqlx.ExtContext) error {
		for _, day := range standardDays {
			for _, template := range standardDay {
				slot := template
				slot.Day = day
				if err := slot.Validate(); err != nil {
					return fmt.Errorf("standard slot %s: %w", slot.Label(), err)
				}
				if err := s.slots.Upsert(ctx, tx, &slot); err != nil {
					return err
				}
				count++
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (s *CatalogueService) inTx(ctx context.Context, fn func(tx sqlx.ExtContext) error) error {
	if s.tx == nil {
		return appErrors.Clone(appErrors.ErrInternal, "transaction provider missing")
	}
	tx, err := s.tx.BeginTxx(ctx, nil)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to begin transaction")
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to write catalogue")
	}
	if err := tx.Commit(); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to commit catalogue")
	}
	return nil
}
