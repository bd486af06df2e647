package handler

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/timetable-scheduler-api/internal/dto"
	"github.com/noah-isme/timetable-scheduler-api/internal/models"
	appErrors "github.com/noah-isme/timetable-scheduler-api/pkg/errors"
)

type catalogueServiceMock struct {
	kind        dto.CatalogueKind
	uploaded    string
	deactivated []string
}

func (m *catalogueServiceMock) deactivate(kind, id string) error {
	if id == "missing" {
		return appErrors.Clone(appErrors.ErrNotFound, kind+" not found")
	}
	m.deactivated = append(m.deactivated, kind+":"+id)
	return nil
}

func (m *catalogueServiceMock) DeactivateTimeSlot(ctx context.Context, id string) error {
	return m.deactivate("time slot", id)
}

func (m *catalogueServiceMock) DeactivateRoom(ctx context.Context, id string) error {
	return m.deactivate("room", id)
}

func (m *catalogueServiceMock) DeactivateLab(ctx context.Context, id string) error {
	return m.deactivate("lab", id)
}

func (m *catalogueServiceMock) ListTimeSlots(ctx context.Context) ([]models.TimeSlot, error) {
	return []models.TimeSlot{{ID: "mon-1", Day: models.Monday, StartTime: "09:00", EndTime: "10:00"}}, nil
}

func (m *catalogueServiceMock) ListRooms(ctx context.Context) ([]models.Room, error) {
	return []models.Room{{ID: "r-1", RoomNumber: "232"}}, nil
}

func (m *catalogueServiceMock) ListLabs(ctx context.Context) ([]models.Lab, error) {
	return []models.Lab{}, nil
}

func (m *catalogueServiceMock) ImportCSV(ctx context.Context, kind dto.CatalogueKind, in io.Reader) (*dto.CSVImportResult, error) {
	m.kind = kind
	raw, err := io.ReadAll(in)
	if err != nil {
		return nil, err
	}
	m.uploaded = string(raw)
	return &dto.CSVImportResult{Kind: kind, Imported: 1, Rejected: []dto.RowError{}}, nil
}

func (m *catalogueServiceMock) ImportGrid(ctx context.Context, in io.Reader) (*dto.GridImportResult, error) {
	raw, err := io.ReadAll(in)
	if err != nil {
		return nil, err
	}
	m.uploaded = string(raw)
	return &dto.GridImportResult{Cells: 4}, nil
}

func catalogueRouter(svc *catalogueServiceMock, limit int64) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewCatalogueHandler(svc, limit)
	r := gin.New()
	r.GET("/catalogue/timeslots", h.TimeSlots)
	r.GET("/catalogue/rooms", h.Rooms)
	r.GET("/catalogue/labs", h.Labs)
	r.POST("/catalogue/import/csv", h.ImportCSV)
	r.POST("/catalogue/import/grid", h.ImportGrid)
	r.DELETE("/catalogue/timeslots/:id", h.DeleteTimeSlot)
	r.DELETE("/catalogue/rooms/:id", h.DeleteRoom)
	r.DELETE("/catalogue/labs/:id", h.DeleteLab)
	return r
}

func multipartUpload(t *testing.T, target, filename, content string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, target, &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func TestCatalogueHandlerLists(t *testing.T) {
	r := catalogueRouter(&catalogueServiceMock{}, 0)

	for _, path := range []string{"/catalogue/timeslots", "/catalogue/rooms", "/catalogue/labs"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, w.Code, path)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/catalogue/timeslots", nil))
	slots := decodeEnvelope(t, w.Body.Bytes())["data"].([]interface{})
	require.Len(t, slots, 1)
	assert.Equal(t, "Monday", slots[0].(map[string]interface{})["day"])
}

func TestCatalogueHandlerImportCSV(t *testing.T) {
	svc := &catalogueServiceMock{}
	content := "room_number,room_name,capacity\n232,Room 232,40\n"

	w := httptest.NewRecorder()
	catalogueRouter(svc, 0).ServeHTTP(w, multipartUpload(t, "/catalogue/import/csv?kind=Rooms", "rooms.csv", content))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, dto.CatalogueRooms, svc.kind)
	assert.Equal(t, content, svc.uploaded)
}

func TestCatalogueHandlerImportCSVRequiresKindAndFile(t *testing.T) {
	r := catalogueRouter(&catalogueServiceMock{}, 0)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, multipartUpload(t, "/catalogue/import/csv", "rooms.csv", "a\n"))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/catalogue/import/csv?kind=rooms", strings.NewReader("")))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCatalogueHandlerImportGridRejectsOversizedUpload(t *testing.T) {
	svc := &catalogueServiceMock{}
	w := httptest.NewRecorder()
	catalogueRouter(svc, 64).ServeHTTP(w, multipartUpload(t, "/catalogue/import/grid", "grid.xlsx", strings.Repeat("x", 512)))

	assert.GreaterOrEqual(t, w.Code, http.StatusBadRequest)
	assert.Empty(t, svc.uploaded)

	w = httptest.NewRecorder()
	catalogueRouter(svc, 0).ServeHTTP(w, multipartUpload(t, "/catalogue/import/grid", "grid.xlsx", "PK"))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "PK", svc.uploaded)
}

func TestCatalogueHandlerDeactivate(t *testing.T) {
	svc := &catalogueServiceMock{}
	r := catalogueRouter(svc, 0)

	for _, path := range []string{"/catalogue/timeslots/mon-1", "/catalogue/rooms/r-1", "/catalogue/labs/l-1"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, path, nil))
		assert.Equal(t, http.StatusNoContent, w.Code, path)
	}
	assert.Equal(t, []string{"time slot:mon-1", "room:r-1", "lab:l-1"}, svc.deactivated)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/catalogue/rooms/missing", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}
