package handler

import (
	"context"
	"strconv"

	"github.com/gin-gonic/gin"
	reportapp "github.com/ipms/backend/internal/application/report"
	"github.com/ipms/backend/internal/domain/report"
	"github.com/ipms/backend/internal/infrastructure/delivery"
	"github.com/ipms/backend/internal/interfaces/http/middleware"
)

// ReportGenerator runs the on-demand report pipeline
type ReportGenerator interface {
	Generate(ctx context.Context, req reportapp.GenerateReportRequest) (*reportapp.GenerateReportResponse, []byte, error)
	RecentActivity(ctx context.Context, limit int) ([]report.ActivityLog, error)
}

// ReportHandler handles report generation API endpoints
type ReportHandler struct {
	BaseHandler
	generator  ReportGenerator
	generateMW []gin.HandlerFunc
}

// NewReportHandler creates a new ReportHandler
func NewReportHandler(generator ReportGenerator) *ReportHandler {
	return &ReportHandler{generator: generator}
}

// WithGenerateMiddleware attaches extra middleware (e.g. the generation
// rate limiter) to the generate route only
func (h *ReportHandler) WithGenerateMiddleware(mw ...gin.HandlerFunc) *ReportHandler {
	h.generateMW = append(h.generateMW, mw...)
	return h
}

// Generate runs one report through the pipeline. With ?download=true the
// artifact bytes are streamed back instead of the metadata envelope.
//
// POST /api/v1/reports/generate
func (h *ReportHandler) Generate(c *gin.Context) {
	var req reportapp.GenerateReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}
	req.GeneratedBy = getActor(c)

	resp, artifact, err := h.generator.Generate(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	if c.Query("download") == "true" {
		c.Header("Content-Disposition", "attachment; filename="+resp.Filename)
		c.Data(200, delivery.ContentTypeFor(report.Format(resp.Format)), artifact)
		return
	}

	h.Created(c, resp)
}

// Activity returns the most recent report generation audit records.
//
// GET /api/v1/reports/activity
func (h *ReportHandler) Activity(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	entries, err := h.generator.RecentActivity(c.Request.Context(), limit)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, entries)
}

// RegisterRoutes registers report generation routes
func (h *ReportHandler) RegisterRoutes(rg *gin.RouterGroup) {
	reports := rg.Group("/reports")
	{
		generateChain := append(h.generateMW, h.Generate)
		reports.POST("/generate", generateChain...)
		reports.GET("/activity", h.Activity)
	}
}
