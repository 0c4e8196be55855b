package report

import (
	"time"

	"github.com/ipms/backend/internal/domain/report"
	"github.com/ipms/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// GenerateReportRequest describes one on-demand report generation
type GenerateReportRequest struct {
	ReportType  string     `json:"report_type" binding:"required"`
	Format      string     `json:"format"`
	StartDate   time.Time  `json:"start_date" binding:"required"`
	EndDate     time.Time  `json:"end_date" binding:"required"`
	Granularity string     `json:"granularity"`
	ClientID    *uuid.UUID `json:"client_id"`
	GeneratedBy string     `json:"-"`
}

// Normalize validates the request and resolves defaults. The returned
// values are safe to hand to the collectors.
func (r *GenerateReportRequest) Normalize() (report.Type, report.Format, report.FinancialFilter, error) {
	reportType := report.Type(r.ReportType)
	if !reportType.IsValid() {
		return "", "", report.FinancialFilter{}, shared.NewDomainError("INVALID_INPUT", "unknown report type")
	}

	format := report.FormatPDF
	if r.Format != "" {
		format = report.Format(r.Format)
		if !format.IsValid() {
			return "", "", report.FinancialFilter{}, shared.NewDomainError("INVALID_INPUT", "unknown output format")
		}
	}

	granularity := report.GranularityMonth
	if r.Granularity != "" {
		granularity = report.Granularity(r.Granularity)
		if !granularity.IsValid() {
			return "", "", report.FinancialFilter{}, shared.NewDomainError("INVALID_INPUT", "unknown granularity")
		}
	}

	dr := report.DateRange{Start: r.StartDate, End: r.EndDate}
	if err := dr.Validate(); err != nil {
		return "", "", report.FinancialFilter{}, err
	}

	if reportType == report.TypeClientPortfolio && r.ClientID == nil {
		return "", "", report.FinancialFilter{}, shared.NewDomainError("INVALID_INPUT", "client_id is required for client portfolio reports")
	}

	return reportType, format, report.FinancialFilter{Range: dr, Granularity: granularity}, nil
}

// GenerateReportResponse describes a stored report artifact
type GenerateReportResponse struct {
	ReportType  string    `json:"report_type"`
	Format      string    `json:"format"`
	Filename    string    `json:"filename"`
	Location    string    `json:"location"`
	SizeBytes   int       `json:"size_bytes"`
	GeneratedAt time.Time `json:"generated_at"`
}

// CreateScheduleRequest creates a recurring report job
type CreateScheduleRequest struct {
	ReportType string            `json:"report_type" binding:"required"`
	Frequency  string            `json:"frequency" binding:"required"`
	StartDate  time.Time         `json:"start_date" binding:"required"`
	EndDate    time.Time         `json:"end_date" binding:"required"`
	Recipients []string          `json:"recipients" binding:"required,min=1,dive,email"`
	Format     string            `json:"format"`
	Parameters map[string]string `json:"parameters"`
	CreatedBy  string            `json:"-"`
}

// UpdateScheduleRequest updates a recurring report job. Nil fields are
// left unchanged.
type UpdateScheduleRequest struct {
	Frequency  *string            `json:"frequency"`
	StartDate  *time.Time         `json:"start_date"`
	EndDate    *time.Time         `json:"end_date"`
	Recipients []string           `json:"recipients" binding:"omitempty,min=1,dive,email"`
	Format     *string            `json:"format"`
	Parameters *map[string]string `json:"parameters"`
	Status     *string            `json:"status"`
}

// ListSchedulesRequest narrows a scheduled-report listing
type ListSchedulesRequest struct {
	Status     string `form:"status"`
	ReportType string `form:"report_type"`
	Frequency  string `form:"frequency"`
}

// ScheduleResponse is the API view of a scheduled report
type ScheduleResponse struct {
	ID         string            `json:"id"`
	ReportType string            `json:"report_type"`
	Frequency  string            `json:"frequency"`
	StartDate  time.Time         `json:"start_date"`
	EndDate    time.Time         `json:"end_date"`
	Recipients []string          `json:"recipients"`
	Format     string            `json:"format"`
	Parameters map[string]string `json:"parameters,omitempty"`
	Status     string            `json:"status"`
	LastRun    *time.Time        `json:"last_run,omitempty"`
	NextRun    time.Time         `json:"next_run"`
	CreatedBy  string            `json:"created_by"`
	CreatedAt  time.Time         `json:"created_at"`
	UpdatedAt  time.Time         `json:"updated_at"`
}

// SweepResponse summarizes one due-report sweep
type SweepResponse struct {
	Processed int `json:"processed"`
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
	Skipped   int `json:"skipped"`
}

func toScheduleResponse(s *report.ScheduledReport) *ScheduleResponse {
	return &ScheduleResponse{
		ID:         s.ID.String(),
		ReportType: string(s.ReportType),
		Frequency:  string(s.Frequency),
		StartDate:  s.StartDate,
		EndDate:    s.EndDate,
		Recipients: s.Recipients,
		Format:     string(s.Format),
		Parameters: s.Parameters,
		Status:     string(s.Status),
		LastRun:    s.LastRun,
		NextRun:    s.NextRun,
		CreatedBy:  s.CreatedBy,
		CreatedAt:  s.CreatedAt,
		UpdatedAt:  s.UpdatedAt,
	}
}
