package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/timetable-scheduler-api/internal/handler"
	"github.com/noah-isme/timetable-scheduler-api/internal/middleware"
	"github.com/noah-isme/timetable-scheduler-api/internal/models"
)

func testHandlers() Handlers {
	return Handlers{
		Timetables:    handler.NewTimetableHandler(nil),
		Registrations: handler.NewRegistrationHandler(nil),
		Catalogue:     handler.NewCatalogueHandler(nil, 0),
		Metrics:       handler.NewMetricsHandler(nil),
	}
}

func routeSet(r *gin.Engine) map[string]bool {
	routes := map[string]bool{}
	for _, info := range r.Routes() {
		routes[info.Method+" "+info.Path] = true
	}
	return routes
}

func TestRegisterMountsRoutesUnderPrefix(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	Register(r, testHandlers(), Options{APIPrefix: "api/v1/", ExposeMetrics: true})

	routes := routeSet(r)
	for _, want := range []string{
		"GET /health",
		"GET /ready",
		"GET /metrics",
		"GET /api/v1/metrics/summary",
		"POST /api/v1/timetables/generate",
		"GET /api/v1/timetables",
		"GET /api/v1/timetables/:id",
		"PATCH /api/v1/timetables/:id/publish",
		"PATCH /api/v1/timetables/:id/archive",
		"DELETE /api/v1/timetables/:id",
		"GET /api/v1/timetables/:id/export",
		"GET /api/v1/registrations",
		"POST /api/v1/registrations",
		"GET /api/v1/registrations/:id",
		"PATCH /api/v1/registrations/:id/approve",
		"PATCH /api/v1/registrations/:id/reject",
		"DELETE /api/v1/registrations/:id",
		"PUT /api/v1/registrations/:id",
		"POST /api/v1/registrations/import",
		"GET /api/v1/catalogue/timeslots",
		"GET /api/v1/catalogue/rooms",
		"GET /api/v1/catalogue/labs",
		"POST /api/v1/catalogue/import/csv",
		"POST /api/v1/catalogue/import/grid",
		"DELETE /api/v1/catalogue/timeslots/:id",
		"DELETE /api/v1/catalogue/rooms/:id",
		"DELETE /api/v1/catalogue/labs/:id",
	} {
		assert.True(t, routes[want], want)
	}
}

func TestRegisterWithoutMetrics(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	Register(r, testHandlers(), Options{})

	routes := routeSet(r)
	assert.False(t, routes["GET /metrics"])
	assert.True(t, routes["GET /timetables"])
}

func TestMutatingRoutesRequireAdmin(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	teacher := func(c *gin.Context) {
		c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "u-1", Role: models.RoleTeacher})
		c.Next()
	}
	Register(r, testHandlers(), Options{APIPrefix: "/api", Auth: teacher})

	for _, route := range []struct{ method, path string }{
		{http.MethodPost, "/api/timetables/generate"},
		{http.MethodPatch, "/api/timetables/tt-1/publish"},
		{http.MethodDelete, "/api/registrations/reg-1"},
		{http.MethodPut, "/api/registrations/reg-1"},
		{http.MethodPost, "/api/registrations/import"},
		{http.MethodPost, "/api/catalogue/import/grid"},
		{http.MethodDelete, "/api/catalogue/timeslots/mon-1"},
		{http.MethodDelete, "/api/catalogue/rooms/r-1"},
		{http.MethodDelete, "/api/catalogue/labs/l-1"},
	} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(route.method, route.path, nil))
		require.Equal(t, http.StatusForbidden, w.Code, route.path)
	}
}
