package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/timetable-scheduler-api/internal/models"
)

var registrationCols = []string{
	"id", "section_id", "section_name", "section_strength",
	"subject_name", "subject_code", "credits", "hours_per_week", "is_lab",
	"teacher_id", "teacher_name", "room_id", "lab_id", "semester", "academic_year",
	"status", "priority", "created_at", "updated_at",
}

func TestRegistrationRepositoryListApproved(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewRegistrationRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows(registrationCols).
		AddRow("r1", "A", "CSE-A", 60, "Maths", "MA", 3, 3, false, "t1", "Ada", nil, nil, "Odd", "2024-25", "Approved", 5, now, now).
		AddRow("r2", "B", "CSE-B", 55, "Physics Lab", "PHL", 1, 2, true, "t2", "Bo", nil, "lab-1", "odd", "2024-25", "Approved", 1, now, now)
	mock.ExpectQuery(regexp.QuoteMeta("WHERE r.section_id IN (?, ?) AND LOWER(TRIM(r.semester)) = LOWER(?) AND LOWER(TRIM(r.academic_year)) = LOWER(?) AND r.status = ? ORDER BY r.priority DESC, r.created_at ASC, r.id ASC")).
		WithArgs("A", "B", "Odd", "2024-25", models.RegistrationStatusApproved).
		WillReturnRows(rows)
	mock.ExpectQuery(regexp.QuoteMeta("FROM registration_time_slots")).
		WithArgs("r1", "r2").
		WillReturnRows(sqlmock.NewRows([]string{"registration_id", "time_slot_id"}).
			AddRow("r1", "slot-2").
			AddRow("r1", "slot-1"))

	regs, err := repo.ListApproved(context.Background(), []string{"A", "B"}, " Odd ", "2024-25")
	require.NoError(t, err)
	require.Len(t, regs, 2)
	assert.Equal(t, "CSE-A", regs[0].SectionName)
	assert.Equal(t, "Maths", regs[0].Subject.Name)
	assert.Equal(t, []string{"slot-2", "slot-1"}, regs[0].TimeSlotIDs)
	assert.Empty(t, regs[1].TimeSlotIDs)
	assert.True(t, regs[1].Subject.IsLab)
	require.NotNil(t, regs[1].LabID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRegistrationRepositoryListApprovedNoSections(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	regs, err := NewRegistrationRepository(db).ListApproved(context.Background(), nil, "Odd", "2024-25")
	require.NoError(t, err)
	assert.Empty(t, regs)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRegistrationRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewRegistrationRepository(db)

	mock.ExpectExec("INSERT INTO registrations").
		WithArgs(sqlmock.AnyArg(), "A", "Maths", "MA", 3, 3, false, "t1", nil, nil, "Odd", "2024-25", models.RegistrationStatusPending, 1, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO registration_time_slots")).
		WithArgs(sqlmock.AnyArg(), "slot-1", 0).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO registration_time_slots")).
		WithArgs(sqlmock.AnyArg(), "slot-2", 1).
		WillReturnResult(sqlmock.NewResult(1, 1))

	reg := &models.Registration{
		SectionID:    "A",
		Subject:      models.Subject{Name: "Maths", Code: "MA", Credits: 3, HoursPerWeek: 3},
		TeacherID:    "t1",
		TimeSlotIDs:  []string{"slot-1", "slot-2"},
		Semester:     "Odd",
		AcademicYear: "2024-25",
	}
	require.NoError(t, repo.Create(context.Background(), nil, reg))
	assert.NotEmpty(t, reg.ID)
	assert.Equal(t, models.RegistrationStatusPending, reg.Status)
	assert.Equal(t, models.DefaultPriority, reg.Priority)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRegistrationRepositoryListPaginates(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewRegistrationRepository(db)

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("WHERE r.status = ? ORDER BY r.priority DESC, r.created_at ASC, r.id ASC LIMIT 5 OFFSET 0")).
		WithArgs(models.RegistrationStatusPending).
		WillReturnRows(sqlmock.NewRows(registrationCols).
			AddRow("r1", "A", "CSE-A", 60, "Maths", "MA", 3, 3, false, "t1", "Ada", nil, nil, "Odd", "2024-25", "Pending", 1, now, now))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM registrations r WHERE r.status = ?")).
		WithArgs(models.RegistrationStatusPending).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(regexp.QuoteMeta("FROM registration_time_slots")).
		WithArgs("r1").
		WillReturnRows(sqlmock.NewRows([]string{"registration_id", "time_slot_id"}).AddRow("r1", "slot-1"))

	regs, total, err := repo.List(context.Background(), models.RegistrationFilter{Status: models.RegistrationStatusPending, PageSize: 5})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, regs, 1)
	assert.Equal(t, []string{"slot-1"}, regs[0].TimeSlotIDs)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRegistrationRepositoryUpdateStatus(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewRegistrationRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE registrations SET status = $1")).
		WithArgs(models.RegistrationStatusApproved, sqlmock.AnyArg(), "r1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE registrations SET status = $1")).
		WithArgs(models.RegistrationStatusRejected, sqlmock.AnyArg(), "missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.UpdateStatus(context.Background(), "r1", models.RegistrationStatusApproved))
	assert.ErrorIs(t, repo.UpdateStatus(context.Background(), "missing", models.RegistrationStatusRejected), sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRegistrationRepositoryDeleteNotFound(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM registrations WHERE id = $1")).
		WithArgs("missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := NewRegistrationRepository(db).Delete(context.Background(), "missing")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRegistrationRepositoryUpdateReplacesSlots(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewRegistrationRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("SET section_id = ?, subject_name = ?")).
		WithArgs("A", "Maths II", "MA2", 4, 4, false, "t2", nil, nil, "Odd", "2024-25", 3, sqlmock.AnyArg(), "r1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM registration_time_slots WHERE registration_id = $1")).
		WithArgs("r1").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO registration_time_slots")).
		WithArgs("r1", "slot-3", 0).
		WillReturnResult(sqlmock.NewResult(1, 1))

	reg := &models.Registration{
		ID:           "r1",
		SectionID:    "A",
		Subject:      models.Subject{Name: "Maths II", Code: "MA2", Credits: 4, HoursPerWeek: 4},
		TeacherID:    "t2",
		TimeSlotIDs:  []string{"slot-3"},
		Semester:     "Odd",
		AcademicYear: "2024-25",
		Priority:     3,
	}
	require.NoError(t, repo.Update(context.Background(), nil, reg))
	assert.False(t, reg.UpdatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRegistrationRepositoryUpdateNotFound(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	mock.ExpectExec(regexp.QuoteMeta("UPDATE registrations")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	reg := &models.Registration{ID: "missing", SectionID: "A", TeacherID: "t1", TimeSlotIDs: []string{"slot-1"}}
	err := NewRegistrationRepository(db).Update(context.Background(), nil, reg)
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}
