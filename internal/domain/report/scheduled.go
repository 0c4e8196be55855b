package report

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/ipms/backend/internal/domain/shared"
)

// Frequency is the recurrence interval of a scheduled report
type Frequency string

const (
	FrequencyDaily     Frequency = "daily"
	FrequencyWeekly    Frequency = "weekly"
	FrequencyMonthly   Frequency = "monthly"
	FrequencyQuarterly Frequency = "quarterly"
	FrequencyYearly    Frequency = "yearly"
)

// IsValid checks if the frequency is a known recurrence interval
func (f Frequency) IsValid() bool {
	switch f {
	case FrequencyDaily, FrequencyWeekly, FrequencyMonthly, FrequencyQuarterly, FrequencyYearly:
		return true
	}
	return false
}

// String returns the string representation of Frequency
func (f Frequency) String() string {
	return string(f)
}

// Next returns the next run time after the given instant.
// The result is always strictly after the input.
func (f Frequency) Next(after time.Time) time.Time {
	switch f {
	case FrequencyDaily:
		return after.AddDate(0, 0, 1)
	case FrequencyWeekly:
		return after.AddDate(0, 0, 7)
	case FrequencyQuarterly:
		return after.AddDate(0, 3, 0)
	case FrequencyYearly:
		return after.AddDate(1, 0, 0)
	default:
		return after.AddDate(0, 1, 0)
	}
}

// ScheduleStatus is the lifecycle state of a scheduled report
type ScheduleStatus string

const (
	ScheduleStatusPending    ScheduleStatus = "pending"
	ScheduleStatusProcessing ScheduleStatus = "processing"
	ScheduleStatusCompleted  ScheduleStatus = "completed"
	ScheduleStatusFailed     ScheduleStatus = "failed"
)

// IsValid checks if the status is a valid ScheduleStatus
func (s ScheduleStatus) IsValid() bool {
	switch s {
	case ScheduleStatusPending, ScheduleStatusProcessing, ScheduleStatusCompleted, ScheduleStatusFailed:
		return true
	}
	return false
}

// String returns the string representation of ScheduleStatus
func (s ScheduleStatus) String() string {
	return string(s)
}

// IsTerminal returns true if the schedule will not be picked up again.
// failed is terminal: there is no automatic retry.
func (s ScheduleStatus) IsTerminal() bool {
	return s == ScheduleStatusCompleted || s == ScheduleStatusFailed
}

// ScheduledReport is a recurring report job polled by the sweep
type ScheduledReport struct {
	shared.BaseEntity
	ReportType Type              `json:"report_type"`
	Frequency  Frequency         `json:"frequency"`
	StartDate  time.Time         `json:"start_date"`
	EndDate    time.Time         `json:"end_date"`
	Recipients []string          `json:"recipients"`
	Format     Format            `json:"format"`
	Parameters map[string]string `json:"parameters"`
	Status     ScheduleStatus    `json:"status"`
	LastRun    *time.Time        `json:"last_run,omitempty"`
	NextRun    time.Time         `json:"next_run"`
	CreatedBy  string            `json:"created_by"`
}

// NewScheduledReport creates a pending schedule with next_run computed
// from the frequency.
func NewScheduledReport(reportType Type, freq Frequency, start, end time.Time, recipients []string, format Format, params map[string]string, createdBy string) (*ScheduledReport, error) {
	if !reportType.IsValid() {
		return nil, shared.NewDomainError("INVALID_INPUT", "unknown report type")
	}
	if !freq.IsValid() {
		return nil, shared.NewDomainError("INVALID_INPUT", "unknown frequency")
	}
	if format == "" {
		format = FormatPDF
	} else if !format.IsValid() {
		return nil, shared.NewDomainError("INVALID_INPUT", "unknown output format")
	}
	if err := (DateRange{Start: start, End: end}).Validate(); err != nil {
		return nil, err
	}
	if len(recipients) == 0 {
		return nil, shared.NewDomainError("INVALID_INPUT", "at least one recipient is required")
	}
	s := &ScheduledReport{
		BaseEntity: shared.NewBaseEntity(),
		ReportType: reportType,
		Frequency:  freq,
		StartDate:  start,
		EndDate:    end,
		Recipients: recipients,
		Format:     format,
		Parameters: params,
		Status:     ScheduleStatusPending,
		CreatedBy:  createdBy,
	}
	s.NextRun = freq.Next(s.CreatedAt)
	return s, nil
}

// Range returns the reporting window stored on the schedule
func (s *ScheduledReport) Range() DateRange {
	return DateRange{Start: s.StartDate, End: s.EndDate}
}

// IsDue reports whether the schedule is eligible for the sweep at now
func (s *ScheduledReport) IsDue(now time.Time) bool {
	return s.Status == ScheduleStatusPending && !s.NextRun.After(now)
}

// Complete records a successful run: last_run is set, next_run advances
// by the frequency and is strictly after last_run.
func (s *ScheduledReport) Complete(ranAt time.Time) {
	s.LastRun = &ranAt
	s.NextRun = s.Frequency.Next(ranAt)
	s.Status = ScheduleStatusCompleted
	s.UpdatedAt = time.Now()
}

// Fail records an unsuccessful run. The schedule stays failed until an
// administrator resets it.
func (s *ScheduledReport) Fail(ranAt time.Time) {
	s.LastRun = &ranAt
	s.Status = ScheduleStatusFailed
	s.UpdatedAt = time.Now()
}

// ReportError is one recorded failure of a scheduled report run
type ReportError struct {
	ID        uuid.UUID `json:"id"`
	ReportID  uuid.UUID `json:"report_id"`
	Message   string    `json:"error_message"`
	CreatedAt time.Time `json:"created_at"`
}

// NewReportError records a failure message for a scheduled report
func NewReportError(reportID uuid.UUID, message string) *ReportError {
	return &ReportError{
		ID:        uuid.New(),
		ReportID:  reportID,
		Message:   message,
		CreatedAt: time.Now(),
	}
}

// ScheduleFilter narrows scheduled-report listings
type ScheduleFilter struct {
	Status     ScheduleStatus
	ReportType Type
	Frequency  Frequency
}

// ScheduledReportRepository persists scheduled report jobs
type ScheduledReportRepository interface {
	Save(ctx context.Context, s *ScheduledReport) error
	Update(ctx context.Context, s *ScheduledReport) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*ScheduledReport, error)
	FindAll(ctx context.Context, filter ScheduleFilter) ([]ScheduledReport, error)

	// FindDue returns pending schedules with next_run <= now
	FindDue(ctx context.Context, now time.Time) ([]ScheduledReport, error)

	// Claim atomically flips a schedule from pending to processing.
	// It returns shared.ErrConcurrencyConflict when another sweep
	// already owns the job.
	Claim(ctx context.Context, id uuid.UUID) error
}

// ReportErrorRepository persists scheduled-report failure records
type ReportErrorRepository interface {
	Save(ctx context.Context, e *ReportError) error
	FindByReportID(ctx context.Context, reportID uuid.UUID) ([]ReportError, error)
}
