package handler

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/timetable-scheduler-api/internal/dto"
	"github.com/noah-isme/timetable-scheduler-api/internal/models"
	appErrors "github.com/noah-isme/timetable-scheduler-api/pkg/errors"
)

type registrationServiceMock struct {
	query    dto.RegistrationQuery
	created  dto.CreateRegistrationRequest
	updated  dto.CreateRegistrationRequest
	imported dto.ImportRegistrationsRequest
	deleted  string
}

func (m *registrationServiceMock) Update(ctx context.Context, id string, req dto.CreateRegistrationRequest) (*models.Registration, error) {
	if id == "missing" {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "registration not found")
	}
	m.updated = req
	return &models.Registration{ID: id, Status: models.RegistrationStatusApproved}, nil
}

func (m *registrationServiceMock) Import(ctx context.Context, req dto.ImportRegistrationsRequest) (*dto.RegistrationImportResult, error) {
	m.imported = req
	return &dto.RegistrationImportResult{Imported: len(req.Registrations), Approved: req.Approve, IDs: []string{"reg-1"}, Rejected: []dto.RowError{}}, nil
}

func (m *registrationServiceMock) List(ctx context.Context, query dto.RegistrationQuery) ([]models.Registration, *models.Pagination, error) {
	m.query = query
	return []models.Registration{}, &models.Pagination{Page: 1, PageSize: 20}, nil
}

func (m *registrationServiceMock) Get(ctx context.Context, id string) (*models.Registration, error) {
	if id == "missing" {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "registration not found")
	}
	return &models.Registration{ID: id}, nil
}

func (m *registrationServiceMock) Create(ctx context.Context, req dto.CreateRegistrationRequest) (*models.Registration, error) {
	m.created = req
	return &models.Registration{ID: "reg-1", Status: models.RegistrationStatusPending}, nil
}

func (m *registrationServiceMock) Approve(ctx context.Context, id string) (*models.Registration, error) {
	return &models.Registration{ID: id, Status: models.RegistrationStatusApproved}, nil
}

func (m *registrationServiceMock) Reject(ctx context.Context, id string) (*models.Registration, error) {
	return &models.Registration{ID: id, Status: models.RegistrationStatusRejected}, nil
}

func (m *registrationServiceMock) Delete(ctx context.Context, id string) error {
	m.deleted = id
	return nil
}

func registrationRouter(svc *registrationServiceMock) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewRegistrationHandler(svc)
	r := gin.New()
	r.GET("/registrations", h.List)
	r.POST("/registrations", h.Create)
	r.POST("/registrations/import", h.Import)
	r.GET("/registrations/:id", h.Get)
	r.PUT("/registrations/:id", h.Update)
	r.PATCH("/registrations/:id/approve", h.Approve)
	r.PATCH("/registrations/:id/reject", h.Reject)
	r.DELETE("/registrations/:id", h.Delete)
	return r
}

func TestRegistrationHandlerCreate(t *testing.T) {
	svc := &registrationServiceMock{}
	body := `{"sectionId":"sec-a","subjectName":"Databases","subjectCode":"DBMS","credits":3,"hoursPerWeek":3,"isLab":false,"teacherId":"t-1","timeSlots":["mon-1"],"semester":"V","academicYear":"2025-2026"}`

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/registrations", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	registrationRouter(svc).ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "sec-a", svc.created.SectionID)
	assert.Equal(t, []string{"mon-1"}, svc.created.TimeSlots)
	assert.Equal(t, 3, svc.created.HoursPerWeek)
}

func TestRegistrationHandlerCreateMalformed(t *testing.T) {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/registrations", bytes.NewBufferString(`[`))
	req.Header.Set("Content-Type", "application/json")
	registrationRouter(&registrationServiceMock{}).ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRegistrationHandlerListAndTransitions(t *testing.T) {
	svc := &registrationServiceMock{}
	r := registrationRouter(svc)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/registrations?sectionId=sec-a&status=Approved", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "sec-a", svc.query.SectionID)
	assert.Equal(t, "Approved", svc.query.Status)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/registrations/missing", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPatch, "/registrations/reg-1/approve", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Approved", decodeEnvelope(t, w.Body.Bytes())["data"].(map[string]interface{})["status"])

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPatch, "/registrations/reg-1/reject", nil))
	assert.Equal(t, "Rejected", decodeEnvelope(t, w.Body.Bytes())["data"].(map[string]interface{})["status"])

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/registrations/reg-1", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "reg-1", svc.deleted)
}

func TestRegistrationHandlerUpdate(t *testing.T) {
	svc := &registrationServiceMock{}
	r := registrationRouter(svc)
	body := `{"sectionId":"sec-a","subjectName":"Databases II","subjectCode":"DBMS2","credits":4,"hoursPerWeek":4,"teacherId":"t-1","timeSlots":["mon-1","tue-1"],"semester":"V","academicYear":"2025-2026"}`

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/registrations/reg-1", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Databases II", svc.updated.SubjectName)
	assert.Equal(t, []string{"mon-1", "tue-1"}, svc.updated.TimeSlots)
	assert.Equal(t, "reg-1", decodeEnvelope(t, w.Body.Bytes())["data"].(map[string]interface{})["id"])

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPut, "/registrations/missing", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPut, "/registrations/reg-1", bytes.NewBufferString(`{`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRegistrationHandlerImport(t *testing.T) {
	svc := &registrationServiceMock{}
	body := `{"approve":true,"registrations":[{"sectionId":"sec-a","subjectName":"Library","subjectCode":"LIB","credits":1,"hoursPerWeek":1,"teacherId":"lib","timeSlots":["mon-1"],"semester":"V","academicYear":"2025-2026"}]}`

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/registrations/import", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	registrationRouter(svc).ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, svc.imported.Approve)
	require.Len(t, svc.imported.Registrations, 1)
	assert.Equal(t, "LIB", svc.imported.Registrations[0].SubjectCode)
	data := decodeEnvelope(t, w.Body.Bytes())["data"].(map[string]interface{})
	assert.Equal(t, float64(1), data["imported"])
}
