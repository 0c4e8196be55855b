package report

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/ipms/backend/internal/domain/report"
	"github.com/ipms/backend/internal/domain/shared"
	"github.com/ipms/backend/internal/infrastructure/delivery"
	"go.uber.org/zap"
)

// ScheduledReportService manages recurring report jobs and runs the
// due-job sweep.
type ScheduledReportService struct {
	scheduleRepo report.ScheduledReportRepository
	errorRepo    report.ReportErrorRepository
	builder      *BuilderService
	sender       delivery.Sender
	logger       *zap.Logger
}

// NewScheduledReportService creates the scheduled-report service
func NewScheduledReportService(
	scheduleRepo report.ScheduledReportRepository,
	errorRepo report.ReportErrorRepository,
	builder *BuilderService,
	sender delivery.Sender,
	logger *zap.Logger,
) *ScheduledReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScheduledReportService{
		scheduleRepo: scheduleRepo,
		errorRepo:    errorRepo,
		builder:      builder,
		sender:       sender,
		logger:       logger,
	}
}

// Schedule creates a new recurring report job
func (s *ScheduledReportService) Schedule(ctx context.Context, req CreateScheduleRequest) (*ScheduleResponse, error) {
	scheduled, err := report.NewScheduledReport(
		report.Type(req.ReportType),
		report.Frequency(req.Frequency),
		req.StartDate,
		req.EndDate,
		req.Recipients,
		report.Format(req.Format),
		req.Parameters,
		req.CreatedBy,
	)
	if err != nil {
		return nil, err
	}

	if err := s.scheduleRepo.Save(ctx, scheduled); err != nil {
		return nil, fmt.Errorf("failed to save schedule: %w", err)
	}

	s.logger.Info("report scheduled",
		zap.String("id", scheduled.ID.String()),
		zap.String("report_type", string(scheduled.ReportType)),
		zap.String("frequency", string(scheduled.Frequency)),
		zap.Time("next_run", scheduled.NextRun))

	return toScheduleResponse(scheduled), nil
}

// Get retrieves one schedule by ID
func (s *ScheduledReportService) Get(ctx context.Context, id uuid.UUID) (*ScheduleResponse, error) {
	scheduled, err := s.scheduleRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("NOT_FOUND", "scheduled report not found")
		}
		return nil, fmt.Errorf("failed to get schedule: %w", err)
	}
	return toScheduleResponse(scheduled), nil
}

// Update modifies an existing schedule. A status update to pending
// resets a failed job for another run.
func (s *ScheduledReportService) Update(ctx context.Context, id uuid.UUID, req UpdateScheduleRequest) (*ScheduleResponse, error) {
	scheduled, err := s.scheduleRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("NOT_FOUND", "scheduled report not found")
		}
		return nil, fmt.Errorf("failed to get schedule: %w", err)
	}

	if req.Frequency != nil {
		freq := report.Frequency(*req.Frequency)
		if !freq.IsValid() {
			return nil, shared.NewDomainError("INVALID_INPUT", "unknown frequency")
		}
		scheduled.Frequency = freq
		scheduled.NextRun = freq.Next(time.Now())
	}

	start, end := scheduled.StartDate, scheduled.EndDate
	if req.StartDate != nil {
		start = *req.StartDate
	}
	if req.EndDate != nil {
		end = *req.EndDate
	}
	if err := (report.DateRange{Start: start, End: end}).Validate(); err != nil {
		return nil, err
	}
	scheduled.StartDate, scheduled.EndDate = start, end

	if len(req.Recipients) > 0 {
		scheduled.Recipients = req.Recipients
	}
	if req.Format != nil {
		format := report.Format(*req.Format)
		if !format.IsValid() {
			return nil, shared.NewDomainError("INVALID_INPUT", "unknown output format")
		}
		scheduled.Format = format
	}
	if req.Parameters != nil {
		scheduled.Parameters = *req.Parameters
	}
	if req.Status != nil {
		status := report.ScheduleStatus(*req.Status)
		if !status.IsValid() {
			return nil, shared.NewDomainError("INVALID_INPUT", "unknown status")
		}
		scheduled.Status = status
	}
	scheduled.UpdatedAt = time.Now()

	if err := s.scheduleRepo.Update(ctx, scheduled); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("NOT_FOUND", "scheduled report not found")
		}
		return nil, fmt.Errorf("failed to update schedule: %w", err)
	}

	return toScheduleResponse(scheduled), nil
}

// Delete removes a schedule
func (s *ScheduledReportService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.scheduleRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return shared.NewDomainError("NOT_FOUND", "scheduled report not found")
		}
		return fmt.Errorf("failed to delete schedule: %w", err)
	}
	return nil
}

// List returns schedules matching the filter, soonest next run first
func (s *ScheduledReportService) List(ctx context.Context, req ListSchedulesRequest) ([]ScheduleResponse, error) {
	filter := report.ScheduleFilter{
		Status:     report.ScheduleStatus(req.Status),
		ReportType: report.Type(req.ReportType),
		Frequency:  report.Frequency(req.Frequency),
	}

	schedules, err := s.scheduleRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list schedules: %w", err)
	}

	items := make([]ScheduleResponse, len(schedules))
	for i := range schedules {
		items[i] = *toScheduleResponse(&schedules[i])
	}
	return items, nil
}

// Errors returns the recorded failures for one schedule
func (s *ScheduledReportService) Errors(ctx context.Context, id uuid.UUID) ([]report.ReportError, error) {
	errs, err := s.errorRepo.FindByReportID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list report errors: %w", err)
	}
	return errs, nil
}

// ProcessDueReports runs one sweep over due schedules. Each schedule is
// claimed before processing so concurrent sweeps never run the same job
// twice; a claim conflict means another sweep owns it and is skipped.
func (s *ScheduledReportService) ProcessDueReports(ctx context.Context) (*SweepResponse, error) {
	now := time.Now()
	due, err := s.scheduleRepo.FindDue(ctx, now)
	if err != nil {
		return nil, fmt.Errorf("failed to find due reports: %w", err)
	}

	resp := &SweepResponse{}
	for i := range due {
		scheduled := &due[i]

		if err := s.scheduleRepo.Claim(ctx, scheduled.ID); err != nil {
			if errors.Is(err, shared.ErrConcurrencyConflict) {
				resp.Skipped++
				continue
			}
			s.logger.Error("failed to claim scheduled report",
				zap.String("id", scheduled.ID.String()), zap.Error(err))
			resp.Failed++
			continue
		}
		resp.Processed++

		if err := s.runScheduled(ctx, scheduled); err != nil {
			s.recordFailure(ctx, scheduled, err)
			resp.Failed++
			continue
		}
		resp.Succeeded++
	}

	if resp.Processed > 0 || resp.Skipped > 0 {
		s.logger.Info("scheduled report sweep finished",
			zap.Int("processed", resp.Processed),
			zap.Int("succeeded", resp.Succeeded),
			zap.Int("failed", resp.Failed),
			zap.Int("skipped", resp.Skipped))
	}
	return resp, nil
}

// runScheduled generates and delivers one claimed schedule. Delivery
// failures after the artifact is stored are logged but do not fail the
// run.
func (s *ScheduledReportService) runScheduled(ctx context.Context, scheduled *report.ScheduledReport) error {
	ranAt := time.Now()

	var clientID *uuid.UUID
	if raw, ok := scheduled.Parameters["client_id"]; ok {
		id, err := uuid.Parse(raw)
		if err != nil {
			return shared.NewDomainError("INVALID_INPUT", "invalid client_id parameter")
		}
		clientID = &id
	}

	result, artifact, err := s.builder.Generate(ctx, GenerateReportRequest{
		ReportType:  string(scheduled.ReportType),
		Format:      string(scheduled.Format),
		StartDate:   scheduled.StartDate,
		EndDate:     scheduled.EndDate,
		Granularity: scheduled.Parameters["granularity"],
		ClientID:    clientID,
		GeneratedBy: scheduled.CreatedBy,
	})
	if err != nil {
		return err
	}

	attachment := delivery.Attachment{
		Filename:    result.Filename,
		ContentType: delivery.ContentTypeFor(scheduled.Format),
		Data:        artifact,
	}
	for _, recipient := range scheduled.Recipients {
		if err := s.sender.Send(ctx, recipient, scheduled, attachment); err != nil {
			s.logger.Warn("report delivery failed",
				zap.String("id", scheduled.ID.String()),
				zap.String("recipient", recipient),
				zap.Error(err))
		}
	}

	scheduled.Complete(ranAt)
	if err := s.scheduleRepo.Update(ctx, scheduled); err != nil {
		return fmt.Errorf("failed to mark schedule completed: %w", err)
	}
	return nil
}

// recordFailure marks the schedule failed and records the error. The
// schedule stays failed until an administrator resets it.
func (s *ScheduledReportService) recordFailure(ctx context.Context, scheduled *report.ScheduledReport, cause error) {
	s.logger.Error("scheduled report run failed",
		zap.String("id", scheduled.ID.String()),
		zap.String("report_type", string(scheduled.ReportType)),
		zap.Error(cause))

	if err := s.errorRepo.Save(ctx, report.NewReportError(scheduled.ID, cause.Error())); err != nil {
		s.logger.Warn("failed to record report error", zap.Error(err))
	}

	scheduled.Fail(time.Now())
	if err := s.scheduleRepo.Update(ctx, scheduled); err != nil {
		s.logger.Error("failed to mark schedule failed",
			zap.String("id", scheduled.ID.String()), zap.Error(err))
	}
}
