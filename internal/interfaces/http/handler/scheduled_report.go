package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	reportapp "github.com/ipms/backend/internal/application/report"
	"github.com/ipms/backend/internal/domain/report"
	"github.com/ipms/backend/internal/interfaces/http/middleware"
)

// ScheduleManager manages recurring report jobs
type ScheduleManager interface {
	Schedule(ctx context.Context, req reportapp.CreateScheduleRequest) (*reportapp.ScheduleResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*reportapp.ScheduleResponse, error)
	Update(ctx context.Context, id uuid.UUID, req reportapp.UpdateScheduleRequest) (*reportapp.ScheduleResponse, error)
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, req reportapp.ListSchedulesRequest) ([]reportapp.ScheduleResponse, error)
	Errors(ctx context.Context, id uuid.UUID) ([]report.ReportError, error)
	ProcessDueReports(ctx context.Context) (*reportapp.SweepResponse, error)
}

// ScheduledReportHandler handles scheduled report API endpoints
type ScheduledReportHandler struct {
	BaseHandler
	schedules ScheduleManager
}

// NewScheduledReportHandler creates a new ScheduledReportHandler
func NewScheduledReportHandler(schedules ScheduleManager) *ScheduledReportHandler {
	return &ScheduledReportHandler{schedules: schedules}
}

// Create registers a new recurring report job.
//
// POST /api/v1/reports/scheduled
func (h *ScheduledReportHandler) Create(c *gin.Context) {
	var req reportapp.CreateScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}
	req.CreatedBy = getActor(c)

	resp, err := h.schedules.Schedule(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, resp)
}

// Get returns one scheduled report by ID.
//
// GET /api/v1/reports/scheduled/:id
func (h *ScheduledReportHandler) Get(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid schedule ID")
		return
	}

	resp, err := h.schedules.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// Update modifies a scheduled report. Omitted fields keep their value.
//
// PUT /api/v1/reports/scheduled/:id
func (h *ScheduledReportHandler) Update(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid schedule ID")
		return
	}

	var req reportapp.UpdateScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	resp, err := h.schedules.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// Delete removes a scheduled report.
//
// DELETE /api/v1/reports/scheduled/:id
func (h *ScheduledReportHandler) Delete(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid schedule ID")
		return
	}

	if err := h.schedules.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// List returns scheduled reports, optionally filtered by status,
// report type or frequency.
//
// GET /api/v1/reports/scheduled
func (h *ScheduledReportHandler) List(c *gin.Context) {
	var req reportapp.ListSchedulesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	resp, err := h.schedules.List(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// Errors returns the failure history of one scheduled report.
//
// GET /api/v1/reports/scheduled/:id/errors
func (h *ScheduledReportHandler) Errors(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid schedule ID")
		return
	}

	resp, err := h.schedules.Errors(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// Process runs one due-report sweep immediately instead of waiting for
// the cron tick.
//
// POST /api/v1/reports/scheduled/process
func (h *ScheduledReportHandler) Process(c *gin.Context) {
	resp, err := h.schedules.ProcessDueReports(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// RegisterRoutes registers scheduled report routes
func (h *ScheduledReportHandler) RegisterRoutes(rg *gin.RouterGroup) {
	scheduled := rg.Group("/reports/scheduled")
	{
		scheduled.POST("", h.Create)
		scheduled.GET("", h.List)
		scheduled.POST("/process", h.Process)
		scheduled.GET("/:id", h.Get)
		scheduled.PUT("/:id", h.Update)
		scheduled.DELETE("/:id", h.Delete)
		scheduled.GET("/:id/errors", h.Errors)
	}
}
