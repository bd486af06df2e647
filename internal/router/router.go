// Package router mounts the HTTP handlers on a gin engine.
package router

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/timetable-scheduler-api/internal/handler"
	"github.com/noah-isme/timetable-scheduler-api/internal/middleware"
	"github.com/noah-isme/timetable-scheduler-api/internal/models"
)

// Handlers groups everything the API surface needs.
type Handlers struct {
	Timetables    *handler.TimetableHandler
	Registrations *handler.RegistrationHandler
	Catalogue     *handler.CatalogueHandler
	Metrics       *handler.MetricsHandler
}

// Options controls which optional routes are mounted.
type Options struct {
	APIPrefix     string
	ExposeMetrics bool
	// Auth runs before every API route. Mutating routes additionally
	// require an admin role.
	Auth gin.HandlerFunc
}

// Register mounts the operational endpoints at the root and the API under
// opts.APIPrefix.
func Register(r *gin.Engine, h Handlers, opts Options) {
	r.GET("/health", h.Metrics.Health)
	r.GET("/ready", h.Metrics.Ready)
	if opts.ExposeMetrics {
		r.GET("/metrics", h.Metrics.Prometheus)
	}

	api := r.Group(normalizePrefix(opts.APIPrefix))
	if opts.Auth != nil {
		api.Use(opts.Auth)
	}
	admin := middleware.RequireRoles(models.RoleAdmin, models.RoleSuperAdmin)

	if opts.ExposeMetrics {
		api.GET("/metrics/summary", admin, h.Metrics.Summary)
	}

	timetables := api.Group("/timetables")
	timetables.GET("", h.Timetables.List)
	timetables.GET("/:id", h.Timetables.Get)
	timetables.GET("/:id/export", h.Timetables.Export)
	timetables.POST("/generate", admin, h.Timetables.Generate)
	timetables.PATCH("/:id/publish", admin, h.Timetables.Publish)
	timetables.PATCH("/:id/archive", admin, h.Timetables.Archive)
	timetables.DELETE("/:id", admin, h.Timetables.Delete)

	registrations := api.Group("/registrations")
	registrations.GET("", h.Registrations.List)
	registrations.GET("/:id", h.Registrations.Get)
	registrations.POST("", admin, h.Registrations.Create)
	registrations.POST("/import", admin, h.Registrations.Import)
	registrations.PUT("/:id", admin, h.Registrations.Update)
	registrations.PATCH("/:id/approve", admin, h.Registrations.Approve)
	registrations.PATCH("/:id/reject", admin, h.Registrations.Reject)
	registrations.DELETE("/:id", admin, h.Registrations.Delete)

	catalogue := api.Group("/catalogue")
	catalogue.GET("/timeslots", h.Catalogue.TimeSlots)
	catalogue.GET("/rooms", h.Catalogue.Rooms)
	catalogue.GET("/labs", h.Catalogue.Labs)
	catalogue.POST("/import/csv", admin, h.Catalogue.ImportCSV)
	catalogue.POST("/import/grid", admin, h.Catalogue.ImportGrid)
	catalogue.DELETE("/timeslots/:id", admin, h.Catalogue.DeleteTimeSlot)
	catalogue.DELETE("/rooms/:id", admin, h.Catalogue.DeleteRoom)
	catalogue.DELETE("/labs/:id", admin, h.Catalogue.DeleteLab)
}

func normalizePrefix(prefix string) string {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" || prefix == "/" {
		return "/"
	}
	return "/" + strings.Trim(prefix, "/")
}
