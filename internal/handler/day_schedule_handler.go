package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/camp-schedule-api/internal/dto"
	"github.com/noah-isme/camp-schedule-api/internal/models"
	"github.com/noah-isme/camp-schedule-api/internal/service"
	appErrors "github.com/noah-isme/camp-schedule-api/pkg/errors"
	"github.com/noah-isme/camp-schedule-api/pkg/response"
)

type daySchedule interface {
	CreateVersion(ctx context.Context, day dto.DayPath, req dto.CreateVersionRequest) (*dto.CreateVersionResponse, error)
	Reconcile(ctx context.Context, day dto.DayPath, req dto.ReconcileRequest) (*dto.ReconcileResponse, error)
	ScheduleReconcile(day dto.DayPath) (*dto.ScheduleReconcileResponse, error)
	GetDay(ctx context.Context, day dto.DayPath) (*models.DayState, error)
	Validate(ctx context.Context, day dto.DayPath) (*models.ConflictReport, error)
	LookupSlots(ctx context.Context, day dto.DayPath, query dto.SlotLookupQuery) (*dto.SlotLookupResponse, error)
}

// DayScheduleHandler exposes camp day schedule endpoints.
type DayScheduleHandler struct {
	service daySchedule
}

// NewDayScheduleHandler constructs the handler.
func NewDayScheduleHandler(svc *service.DayScheduleService) *DayScheduleHandler {
	return &DayScheduleHandler{service: svc}
}

// CreateVersion godoc
// @Summary Save a draft schedule version
// @Description Stores the payload as received and schedules a debounced reconcile of the day.
// @Tags Schedule
// @Accept json
// @Produce json
// @Param campId path string true "Camp ID"
// @Param date path string true "Schedule date (YYYY-MM-DD)"
// @Param payload body dto.CreateVersionRequest true "Draft payload"
// @Success 201 {object} response.Envelope
// @Router /camps/{campId}/days/{date}/versions [post]
func (h *DayScheduleHandler) CreateVersion(c *gin.Context) {
	var req dto.CreateVersionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid version payload"))
		return
	}
	result, err := h.service.CreateVersion(c.Request.Context(), dayPath(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// Reconcile godoc
// @Summary Merge drafts and publish the day
// @Description Runs the merge synchronously, then validates the published result unless skipValidation is set.
// @Tags Schedule
// @Accept json
// @Produce json
// @Param campId path string true "Camp ID"
// @Param date path string true "Schedule date (YYYY-MM-DD)"
// @Param payload body dto.ReconcileRequest false "Reconcile options"
// @Success 200 {object} response.Envelope
// @Router /camps/{campId}/days/{date}/reconcile [post]
func (h *DayScheduleHandler) Reconcile(c *gin.Context) {
	var req dto.ReconcileRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid reconcile payload"))
			return
		}
	}
	result, err := h.service.Reconcile(c.Request.Context(), dayPath(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result)
}

// ScheduleReconcile godoc
// @Summary Trigger a debounced reconcile
// @Tags Schedule
// @Produce json
// @Param campId path string true "Camp ID"
// @Param date path string true "Schedule date (YYYY-MM-DD)"
// @Success 202 {object} response.Envelope
// @Router /camps/{campId}/days/{date}/reconcile/schedule [post]
func (h *DayScheduleHandler) ScheduleReconcile(c *gin.Context) {
	result, err := h.service.ScheduleReconcile(dayPath(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Accepted(c, result)
}

// GetDay godoc
// @Summary Get the published day schedule
// @Tags Schedule
// @Produce json
// @Param campId path string true "Camp ID"
// @Param date path string true "Schedule date (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Router /camps/{campId}/days/{date} [get]
func (h *DayScheduleHandler) GetDay(c *gin.Context) {
	state, err := h.service.GetDay(c.Request.Context(), dayPath(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, state, map[string]interface{}{"publishedAt": state.PublishedAt})
}

// Validate godoc
// @Summary Validate the published day
// @Description Reports resource conflicts, capacity overruns, repetitions, missing required activities and empty slots.
// @Tags Schedule
// @Produce json
// @Param campId path string true "Camp ID"
// @Param date path string true "Schedule date (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Router /camps/{campId}/days/{date}/validation [get]
func (h *DayScheduleHandler) Validate(c *gin.Context) {
	report, err := h.service.Validate(c.Request.Context(), dayPath(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, report, map[string]interface{}{
		"errors":   len(report.Errors),
		"warnings": len(report.Warnings),
	})
}

// LookupSlots godoc
// @Summary Resolve slots and the owning entry for a bunk and time range
// @Tags Schedule
// @Produce json
// @Param campId path string true "Camp ID"
// @Param date path string true "Schedule date (YYYY-MM-DD)"
// @Param bunk query string true "Bunk ID"
// @Param start query string true "Range start (clock time or minutes)"
// @Param end query string true "Range end (clock time or minutes)"
// @Success 200 {object} response.Envelope
// @Router /camps/{campId}/days/{date}/slots [get]
func (h *DayScheduleHandler) LookupSlots(c *gin.Context) {
	var query dto.SlotLookupQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid slot query"))
		return
	}
	result, err := h.service.LookupSlots(c.Request.Context(), dayPath(c), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result)
}

func dayPath(c *gin.Context) dto.DayPath {
	return dto.DayPath{CampID: c.Param("campId"), Date: c.Param("date")}
}
