package handler

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/timetable-scheduler-api/internal/dto"
	"github.com/noah-isme/timetable-scheduler-api/internal/models"
	appErrors "github.com/noah-isme/timetable-scheduler-api/pkg/errors"
	"github.com/noah-isme/timetable-scheduler-api/pkg/response"
)

const defaultMaxUploadBytes int64 = 5 * 1024 * 1024

type catalogueService interface {
	ListTimeSlots(ctx context.Context) ([]models.TimeSlot, error)
	ListRooms(ctx context.Context) ([]models.Room, error)
	ListLabs(ctx context.Context) ([]models.Lab, error)
	DeactivateTimeSlot(ctx context.Context, id string) error
	DeactivateRoom(ctx context.Context, id string) error
	DeactivateLab(ctx context.Context, id string) error
	ImportCSV(ctx context.Context, kind dto.CatalogueKind, in io.Reader) (*dto.CSVImportResult, error)
	ImportGrid(ctx context.Context, in io.Reader) (*dto.GridImportResult, error)
}

// CatalogueHandler exposes the slot, room and lab catalogue.
type CatalogueHandler struct {
	service        catalogueService
	maxUploadBytes int64
}

// NewCatalogueHandler constructs the handler. Uploads larger than
// maxUploadBytes are rejected.
func NewCatalogueHandler(svc catalogueService, maxUploadBytes int64) *CatalogueHandler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = defaultMaxUploadBytes
	}
	return &CatalogueHandler{service: svc, maxUploadBytes: maxUploadBytes}
}

// TimeSlots godoc
// @Summary List active time slots
// @Tags Catalogue
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /catalogue/timeslots [get]
func (h *CatalogueHandler) TimeSlots(c *gin.Context) {
	slots, err := h.service.ListTimeSlots(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, slots, nil)
}

// Rooms godoc
// @Summary List active rooms
// @Tags Catalogue
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /catalogue/rooms [get]
func (h *CatalogueHandler) Rooms(c *gin.Context) {
	rooms, err := h.service.ListRooms(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rooms, nil)
}

// Labs godoc
// @Summary List active labs
// @Tags Catalogue
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /catalogue/labs [get]
func (h *CatalogueHandler) Labs(c *gin.Context) {
	labs, err := h.service.ListLabs(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, labs, nil)
}

// ImportCSV godoc
// @Summary Import time slots, rooms or labs from CSV
// @Description Valid rows are upserted in one transaction; invalid rows are returned with their line numbers.
// @Tags Catalogue
// @Accept multipart/form-data
// @Produce json
// @Param kind query string true "timeslots, rooms or labs"
// @Param file formData file true "CSV file"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /catalogue/import/csv [post]
func (h *CatalogueHandler) ImportCSV(c *gin.Context) {
	kind := dto.CatalogueKind(strings.ToLower(strings.TrimSpace(c.Query("kind"))))
	if kind == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "kind is required"))
		return
	}
	src, ok := h.openUpload(c)
	if !ok {
		return
	}
	defer src.Close()

	result, err := h.service.ImportCSV(c.Request.Context(), kind, src)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// ImportGrid godoc
// @Summary Import a timetable grid workbook
// @Description Scans the first sheet for time columns and SUBJECT(TEACHER)-ROOM cells and ensures the slots, teachers, rooms and sections exist.
// @Tags Catalogue
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "XLSX workbook"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /catalogue/import/grid [post]
func (h *CatalogueHandler) ImportGrid(c *gin.Context) {
	src, ok := h.openUpload(c)
	if !ok {
		return
	}
	defer src.Close()

	result, err := h.service.ImportGrid(c.Request.Context(), src)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// DeleteTimeSlot godoc
// @Summary Deactivate a time slot
// @Tags Catalogue
// @Param id path string true "Time slot ID"
// @Success 204
// @Failure 404 {object} response.Envelope
// @Router /catalogue/timeslots/{id} [delete]
func (h *CatalogueHandler) DeleteTimeSlot(c *gin.Context) {
	h.deactivate(c, h.service.DeactivateTimeSlot)
}

// DeleteRoom godoc
// @Summary Deactivate a room
// @Tags Catalogue
// @Param id path string true "Room ID"
// @Success 204
// @Failure 404 {object} response.Envelope
// @Router /catalogue/rooms/{id} [delete]
func (h *CatalogueHandler) DeleteRoom(c *gin.Context) {
	h.deactivate(c, h.service.DeactivateRoom)
}

// DeleteLab godoc
// @Summary Deactivate a lab
// @Tags Catalogue
// @Param id path string true "Lab ID"
// @Success 204
// @Failure 404 {object} response.Envelope
// @Router /catalogue/labs/{id} [delete]
func (h *CatalogueHandler) DeleteLab(c *gin.Context) {
	h.deactivate(c, h.service.DeactivateLab)
}

func (h *CatalogueHandler) deactivate(c *gin.Context, fn func(context.Context, string) error) {
	if err := fn(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

func (h *CatalogueHandler) openUpload(c *gin.Context) (io.ReadCloser, bool) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes)
	fileHeader, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.Error(c, appErrors.Clone(appErrors.ErrPayloadTooLarge, "file exceeds upload limit"))
			return nil, false
		}
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "file is required"))
		return nil, false
	}
	if fileHeader.Size > h.maxUploadBytes {
		response.Error(c, appErrors.Clone(appErrors.ErrPayloadTooLarge, "file exceeds upload limit"))
		return nil, false
	}
	src, err := fileHeader.Open()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open file"))
		return nil, false
	}
	return src, true
}
