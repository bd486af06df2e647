package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/timetable-scheduler-api/internal/models"
)

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestTimetableRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewTimetableRepository(db)

	mock.ExpectExec("INSERT INTO timetables").
		WithArgs(sqlmock.AnyArg(), "Odd", "Odd", "2024-25", models.TimetableStatusGenerated, nil, sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO timetable_sections (timetable_id, section_id) VALUES ($1, $2)")).
		WithArgs(sqlmock.AnyArg(), "sec-1").
		WillReturnResult(sqlmock.NewResult(1, 1))

	tt := &models.Timetable{Name: "Odd", Semester: "Odd", AcademicYear: "2024-25", Status: models.TimetableStatusGenerated, SectionIDs: []string{"sec-1"}}
	require.NoError(t, repo.Create(context.Background(), nil, tt))
	assert.NotEmpty(t, tt.ID)
	assert.False(t, tt.GeneratedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTimetableRepositoryInsertEntriesAndConflicts(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewTimetableRepository(db)

	room := "room-1"
	entries := []models.ScheduleEntry{{
		Position:   0,
		Day:        models.Monday,
		TimeSlotID: "slot-1",
		SectionID:  "sec-1",
		Subject:    models.Subject{Name: "Maths", Code: "MA", Credits: 3, HoursPerWeek: 3},
		TeacherID:  "t1",
		RoomID:     &room,
	}}
	mock.ExpectExec("INSERT INTO timetable_entries").
		WithArgs(sqlmock.AnyArg(), "tt-1", 0, models.Monday, "slot-1", "sec-1", "Maths", "MA", 3, 3, false, "t1", &room, nil).
		WillReturnResult(sqlmock.NewResult(1, 1))

	conflicts := []models.ConflictRecord{{Position: 0, Type: models.ConflictRoom, Description: "no room", AffectedItems: []string{"r1"}}}
	mock.ExpectExec("INSERT INTO timetable_conflicts").
		WithArgs(sqlmock.AnyArg(), "tt-1", 0, models.ConflictRoom, "no room", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, repo.InsertEntries(context.Background(), nil, "tt-1", entries))
	require.NoError(t, repo.InsertConflicts(context.Background(), nil, "tt-1", conflicts))
	assert.Equal(t, "tt-1", entries[0].TimetableID)
	assert.NotEmpty(t, conflicts[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTimetableRepositoryListConflictsDecodesItems(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewTimetableRepository(db)

	rows := sqlmock.NewRows([]string{"id", "timetable_id", "position", "type", "description", "affected_items"}).
		AddRow("c1", "tt-1", 0, "Lab Conflict", "forced", []byte(`["r1","r2"]`)).
		AddRow("c2", "tt-1", 1, "Room Conflict", "none", []byte(`[]`))
	mock.ExpectQuery(regexp.QuoteMeta("FROM timetable_conflicts WHERE timetable_id = $1 ORDER BY position ASC")).
		WithArgs("tt-1").
		WillReturnRows(rows)

	conflicts, err := repo.ListConflicts(context.Background(), "tt-1")
	require.NoError(t, err)
	require.Len(t, conflicts, 2)
	assert.Equal(t, models.ConflictLab, conflicts[0].Type)
	assert.Equal(t, []string{"r1", "r2"}, conflicts[0].AffectedItems)
	assert.Empty(t, conflicts[1].AffectedItems)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTimetableRepositoryListEntries(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewTimetableRepository(db)

	rows := sqlmock.NewRows([]string{"id", "timetable_id", "position", "day", "time_slot_id", "section_id", "subject_name", "subject_code", "credits", "hours_per_week", "is_lab", "teacher_id", "room_id", "lab_id"}).
		AddRow("e1", "tt-1", 0, "Tuesday", "slot-1", "sec-1", "Physics Lab", "PHL", 1, 2, true, "t1", nil, "lab-1")
	mock.ExpectQuery(regexp.QuoteMeta("FROM timetable_entries WHERE timetable_id = $1 ORDER BY position ASC")).
		WithArgs("tt-1").
		WillReturnRows(rows)

	entries, err := repo.ListEntries(context.Background(), "tt-1")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, models.Tuesday, entries[0].Day)
	assert.True(t, entries[0].Subject.IsLab)
	assert.Nil(t, entries[0].RoomID)
	require.NotNil(t, entries[0].LabID)
	assert.Equal(t, "lab-1", *entries[0].LabID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTimetableRepositoryListFilters(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewTimetableRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "name", "semester", "academic_year", "status", "generated_by", "generated_at", "created_at", "updated_at"}).
		AddRow("tt-1", "Odd", "Odd", "2024-25", "Draft", nil, now, now, now)
	mock.ExpectQuery(regexp.QuoteMeta("FROM timetables WHERE 1=1 AND status = $1 AND LOWER(TRIM(semester)) = LOWER($2) ORDER BY generated_at DESC, id ASC LIMIT 10 OFFSET 10")).
		WithArgs(models.TimetableStatusDraft, "Odd").
		WillReturnRows(rows)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM timetables WHERE 1=1 AND status = $1")).
		WithArgs(models.TimetableStatusDraft, "Odd").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(11))

	list, total, err := repo.List(context.Background(), models.TimetableFilter{Status: models.TimetableStatusDraft, Semester: " Odd ", Page: 2, PageSize: 10})
	require.NoError(t, err)
	assert.Len(t, list, 1)
	assert.Equal(t, 11, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTimetableRepositoryUpdateStatusNotFound(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewTimetableRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE timetables SET status = $1")).
		WithArgs(models.TimetableStatusPublished, sqlmock.AnyArg(), "missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdateStatus(context.Background(), "missing", models.TimetableStatusPublished)
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTimetableRepositoryDelete(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewTimetableRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM timetables WHERE id = $1")).
		WithArgs("tt-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Delete(context.Background(), "tt-1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
