package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/ipms/backend/internal/domain/report"
	"github.com/ipms/backend/internal/domain/shared"
)

// ScheduledReportModel is the GORM model for the scheduled_reports table
type ScheduledReportModel struct {
	ID         uuid.UUID  `gorm:"type:uuid;primary_key"`
	ReportType string     `gorm:"column:report_type;type:varchar(50);not null"`
	Frequency  string     `gorm:"type:varchar(20);not null"`
	StartDate  time.Time  `gorm:"column:start_date;not null"`
	EndDate    time.Time  `gorm:"column:end_date;not null"`
	Recipients string     `gorm:"type:text;not null"` // JSON array of addresses
	Format     string     `gorm:"type:varchar(10);not null;default:'pdf'"`
	Parameters string     `gorm:"type:text"` // JSON object
	Status     string     `gorm:"type:varchar(20);not null;default:'pending';index"`
	LastRun    *time.Time `gorm:"column:last_run"`
	NextRun    time.Time  `gorm:"column:next_run;not null;index"`
	CreatedBy  string     `gorm:"column:created_by;type:varchar(255)"`
	CreatedAt  time.Time  `gorm:"not null"`
	UpdatedAt  time.Time  `gorm:"not null"`
}

// TableName returns the table name for ScheduledReportModel
func (ScheduledReportModel) TableName() string {
	return "scheduled_reports"
}

// ToDomain converts ScheduledReportModel to domain ScheduledReport.
// A row whose recipients or parameters no longer parse is reported as
// an error rather than silently treated as empty.
func (m *ScheduledReportModel) ToDomain() (*report.ScheduledReport, error) {
	var recipients []string
	if m.Recipients != "" {
		if err := json.Unmarshal([]byte(m.Recipients), &recipients); err != nil {
			return nil, fmt.Errorf("decode recipients for schedule %s: %w", m.ID, err)
		}
	}
	var params map[string]string
	if m.Parameters != "" {
		if err := json.Unmarshal([]byte(m.Parameters), &params); err != nil {
			return nil, fmt.Errorf("decode parameters for schedule %s: %w", m.ID, err)
		}
	}
	return &report.ScheduledReport{
		BaseEntity: shared.BaseEntity{
			ID:        m.ID,
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		ReportType: report.Type(m.ReportType),
		Frequency:  report.Frequency(m.Frequency),
		StartDate:  m.StartDate,
		EndDate:    m.EndDate,
		Recipients: recipients,
		Format:     report.Format(m.Format),
		Parameters: params,
		Status:     report.ScheduleStatus(m.Status),
		LastRun:    m.LastRun,
		NextRun:    m.NextRun,
		CreatedBy:  m.CreatedBy,
	}, nil
}

// ScheduledReportModelFromDomain creates a ScheduledReportModel from domain ScheduledReport
func ScheduledReportModelFromDomain(s *report.ScheduledReport) *ScheduledReportModel {
	recipients, _ := json.Marshal(s.Recipients)
	params := "{}"
	if s.Parameters != nil {
		if b, err := json.Marshal(s.Parameters); err == nil {
			params = string(b)
		}
	}
	return &ScheduledReportModel{
		ID:         s.ID,
		ReportType: string(s.ReportType),
		Frequency:  string(s.Frequency),
		StartDate:  s.StartDate,
		EndDate:    s.EndDate,
		Recipients: string(recipients),
		Format:     string(s.Format),
		Parameters: params,
		Status:     string(s.Status),
		LastRun:    s.LastRun,
		NextRun:    s.NextRun,
		CreatedBy:  s.CreatedBy,
		CreatedAt:  s.CreatedAt,
		UpdatedAt:  s.UpdatedAt,
	}
}

// ReportErrorModel is the GORM model for the report_errors table
type ReportErrorModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	ReportID  uuid.UUID `gorm:"column:report_id;type:uuid;not null;index"`
	Message   string    `gorm:"column:error_message;type:text;not null"`
	CreatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for ReportErrorModel
func (ReportErrorModel) TableName() string {
	return "report_errors"
}

// ToDomain converts ReportErrorModel to domain ReportError
func (m *ReportErrorModel) ToDomain() *report.ReportError {
	return &report.ReportError{
		ID:        m.ID,
		ReportID:  m.ReportID,
		Message:   m.Message,
		CreatedAt: m.CreatedAt,
	}
}

// ReportErrorModelFromDomain creates a ReportErrorModel from domain ReportError
func ReportErrorModelFromDomain(e *report.ReportError) *ReportErrorModel {
	return &ReportErrorModel{
		ID:        e.ID,
		ReportID:  e.ReportID,
		Message:   e.Message,
		CreatedAt: e.CreatedAt,
	}
}

// ActivityLogModel is the GORM model for the activity_logs table
type ActivityLogModel struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key"`
	Action      string    `gorm:"type:varchar(100);not null"`
	Description string    `gorm:"type:text"`
	Actor       string    `gorm:"type:varchar(255)"`
	OccurredAt  time.Time `gorm:"column:occurred_at;not null;index"`
}

// TableName returns the table name for ActivityLogModel
func (ActivityLogModel) TableName() string {
	return "activity_logs"
}

// ToDomain converts ActivityLogModel to domain ActivityLog
func (m *ActivityLogModel) ToDomain() *report.ActivityLog {
	return &report.ActivityLog{
		ID:          m.ID,
		Action:      m.Action,
		Description: m.Description,
		Actor:       m.Actor,
		OccurredAt:  m.OccurredAt,
	}
}

// ActivityLogModelFromDomain creates an ActivityLogModel from domain ActivityLog
func ActivityLogModelFromDomain(l *report.ActivityLog) *ActivityLogModel {
	return &ActivityLogModel{
		ID:          l.ID,
		Action:      l.Action,
		Description: l.Description,
		Actor:       l.Actor,
		OccurredAt:  l.OccurredAt,
	}
}
