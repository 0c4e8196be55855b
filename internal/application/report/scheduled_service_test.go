package report_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	app "github.com/ipms/backend/internal/application/report"
	"github.com/ipms/backend/internal/domain/report"
	"github.com/ipms/backend/internal/domain/shared"
	"github.com/ipms/backend/internal/infrastructure/delivery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// =============================================================================
// Mock Implementations
// =============================================================================

type MockScheduledReportRepository struct {
	mock.Mock
}

func (m *MockScheduledReportRepository) Save(ctx context.Context, s *report.ScheduledReport) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

func (m *MockScheduledReportRepository) Update(ctx context.Context, s *report.ScheduledReport) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

func (m *MockScheduledReportRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockScheduledReportRepository) FindByID(ctx context.Context, id uuid.UUID) (*report.ScheduledReport, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*report.ScheduledReport), args.Error(1)
}

func (m *MockScheduledReportRepository) FindAll(ctx context.Context, filter report.ScheduleFilter) ([]report.ScheduledReport, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]report.ScheduledReport), args.Error(1)
}

func (m *MockScheduledReportRepository) FindDue(ctx context.Context, now time.Time) ([]report.ScheduledReport, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]report.ScheduledReport), args.Error(1)
}

func (m *MockScheduledReportRepository) Claim(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockReportErrorRepository struct {
	mock.Mock
}

func (m *MockReportErrorRepository) Save(ctx context.Context, e *report.ReportError) error {
	args := m.Called(ctx, e)
	return args.Error(0)
}

func (m *MockReportErrorRepository) FindByReportID(ctx context.Context, reportID uuid.UUID) ([]report.ReportError, error) {
	args := m.Called(ctx, reportID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]report.ReportError), args.Error(1)
}

type MockSender struct {
	mock.Mock
}

func (m *MockSender) Send(ctx context.Context, recipient string, rpt *report.ScheduledReport, attachment delivery.Attachment) error {
	args := m.Called(ctx, recipient, rpt, attachment)
	return args.Error(0)
}

// =============================================================================
// Fixtures
// =============================================================================

func dueSchedule(t *testing.T) report.ScheduledReport {
	t.Helper()
	start, end := testRange()
	s, err := report.NewScheduledReport(
		report.TypeFinancialSummary,
		report.FrequencyDaily,
		start, end,
		[]string{"ops@example.com"},
		report.FormatPDF,
		nil,
		"admin",
	)
	require.NoError(t, err)
	s.NextRun = time.Now().Add(-time.Hour)
	return *s
}

func newScheduledService(t *testing.T, scheduleRepo *MockScheduledReportRepository, errorRepo *MockReportErrorRepository, financial *MockFinancialReportRepository, sender *MockSender) *app.ScheduledReportService {
	t.Helper()
	builder, _ := newBuilder(t, financial, new(MockPolicyReportRepository), new(MockClientReportRepository), newSilentActivityRepo())
	return app.NewScheduledReportService(scheduleRepo, errorRepo, builder, sender, zap.NewNop())
}

func newSilentActivityRepo() *MockActivityLogRepository {
	activity := new(MockActivityLogRepository)
	activity.On("Save", mock.Anything, mock.Anything).Return(nil)
	return activity
}

// =============================================================================
// Tests
// =============================================================================

func TestScheduledReportService_Schedule(t *testing.T) {
	start, end := testRange()

	t.Run("creates a pending schedule with computed next run", func(t *testing.T) {
		scheduleRepo := new(MockScheduledReportRepository)
		svc := newScheduledService(t, scheduleRepo, new(MockReportErrorRepository), new(MockFinancialReportRepository), new(MockSender))

		scheduleRepo.On("Save", mock.Anything, mock.MatchedBy(func(s *report.ScheduledReport) bool {
			return s.Status == report.ScheduleStatusPending && s.NextRun.After(s.CreatedAt)
		})).Return(nil)

		resp, err := svc.Schedule(context.Background(), app.CreateScheduleRequest{
			ReportType: "financial_summary",
			Frequency:  "weekly",
			StartDate:  start,
			EndDate:    end,
			Recipients: []string{"ops@example.com"},
			CreatedBy:  "admin",
		})

		require.NoError(t, err)
		assert.Equal(t, "pending", resp.Status)
		assert.Equal(t, "pdf", resp.Format, "format defaults to pdf")
		scheduleRepo.AssertExpectations(t)
	})

	t.Run("rejects a schedule without recipients", func(t *testing.T) {
		svc := newScheduledService(t, new(MockScheduledReportRepository), new(MockReportErrorRepository), new(MockFinancialReportRepository), new(MockSender))

		_, err := svc.Schedule(context.Background(), app.CreateScheduleRequest{
			ReportType: "financial_summary",
			Frequency:  "weekly",
			StartDate:  start,
			EndDate:    end,
		})

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_INPUT", domainErr.Code)
	})
}

func TestScheduledReportService_ProcessDueReports(t *testing.T) {
	t.Run("claims, generates, delivers and completes a due schedule", func(t *testing.T) {
		scheduleRepo := new(MockScheduledReportRepository)
		financial := new(MockFinancialReportRepository)
		sender := new(MockSender)
		svc := newScheduledService(t, scheduleRepo, new(MockReportErrorRepository), financial, sender)

		due := dueSchedule(t)
		scheduleRepo.On("FindDue", mock.Anything, mock.Anything).Return([]report.ScheduledReport{due}, nil)
		scheduleRepo.On("Claim", mock.Anything, due.ID).Return(nil)
		financial.On("GetFinancialSummary", mock.Anything, mock.Anything).Return(testFinancialSummary(), nil)
		sender.On("Send", mock.Anything, "ops@example.com", mock.Anything, mock.Anything).Return(nil)
		scheduleRepo.On("Update", mock.Anything, mock.MatchedBy(func(s *report.ScheduledReport) bool {
			return s.Status == report.ScheduleStatusCompleted && s.LastRun != nil && s.NextRun.After(*s.LastRun)
		})).Return(nil)

		resp, err := svc.ProcessDueReports(context.Background())

		require.NoError(t, err)
		assert.Equal(t, 1, resp.Processed)
		assert.Equal(t, 1, resp.Succeeded)
		assert.Zero(t, resp.Failed)
		scheduleRepo.AssertExpectations(t)
		sender.AssertExpectations(t)
	})

	t.Run("skips a schedule claimed by a concurrent sweep", func(t *testing.T) {
		scheduleRepo := new(MockScheduledReportRepository)
		svc := newScheduledService(t, scheduleRepo, new(MockReportErrorRepository), new(MockFinancialReportRepository), new(MockSender))

		due := dueSchedule(t)
		scheduleRepo.On("FindDue", mock.Anything, mock.Anything).Return([]report.ScheduledReport{due}, nil)
		scheduleRepo.On("Claim", mock.Anything, due.ID).Return(shared.ErrConcurrencyConflict)

		resp, err := svc.ProcessDueReports(context.Background())

		require.NoError(t, err)
		assert.Equal(t, 1, resp.Skipped)
		assert.Zero(t, resp.Processed)
		scheduleRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("generation failure records the error and marks the schedule failed", func(t *testing.T) {
		scheduleRepo := new(MockScheduledReportRepository)
		errorRepo := new(MockReportErrorRepository)
		financial := new(MockFinancialReportRepository)
		svc := newScheduledService(t, scheduleRepo, errorRepo, financial, new(MockSender))

		due := dueSchedule(t)
		scheduleRepo.On("FindDue", mock.Anything, mock.Anything).Return([]report.ScheduledReport{due}, nil)
		scheduleRepo.On("Claim", mock.Anything, due.ID).Return(nil)
		financial.On("GetFinancialSummary", mock.Anything, mock.Anything).Return(nil, assert.AnError)
		errorRepo.On("Save", mock.Anything, mock.MatchedBy(func(e *report.ReportError) bool {
			return e.ReportID == due.ID && e.Message != ""
		})).Return(nil)
		scheduleRepo.On("Update", mock.Anything, mock.MatchedBy(func(s *report.ScheduledReport) bool {
			return s.Status == report.ScheduleStatusFailed
		})).Return(nil)

		resp, err := svc.ProcessDueReports(context.Background())

		require.NoError(t, err)
		assert.Equal(t, 1, resp.Failed)
		assert.Zero(t, resp.Succeeded)
		errorRepo.AssertExpectations(t)
		scheduleRepo.AssertExpectations(t)
	})

	t.Run("delivery failure after a stored artifact still completes the run", func(t *testing.T) {
		scheduleRepo := new(MockScheduledReportRepository)
		financial := new(MockFinancialReportRepository)
		sender := new(MockSender)
		svc := newScheduledService(t, scheduleRepo, new(MockReportErrorRepository), financial, sender)

		due := dueSchedule(t)
		scheduleRepo.On("FindDue", mock.Anything, mock.Anything).Return([]report.ScheduledReport{due}, nil)
		scheduleRepo.On("Claim", mock.Anything, due.ID).Return(nil)
		financial.On("GetFinancialSummary", mock.Anything, mock.Anything).Return(testFinancialSummary(), nil)
		sender.On("Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(assert.AnError)
		scheduleRepo.On("Update", mock.Anything, mock.MatchedBy(func(s *report.ScheduledReport) bool {
			return s.Status == report.ScheduleStatusCompleted
		})).Return(nil)

		resp, err := svc.ProcessDueReports(context.Background())

		require.NoError(t, err)
		assert.Equal(t, 1, resp.Succeeded)
		assert.Zero(t, resp.Failed)
	})

	t.Run("continues the sweep after one schedule fails", func(t *testing.T) {
		scheduleRepo := new(MockScheduledReportRepository)
		errorRepo := new(MockReportErrorRepository)
		financial := new(MockFinancialReportRepository)
		sender := new(MockSender)
		svc := newScheduledService(t, scheduleRepo, errorRepo, financial, sender)

		bad := dueSchedule(t)
		good := dueSchedule(t)
		scheduleRepo.On("FindDue", mock.Anything, mock.Anything).Return([]report.ScheduledReport{bad, good}, nil)
		scheduleRepo.On("Claim", mock.Anything, mock.Anything).Return(nil)
		financial.On("GetFinancialSummary", mock.Anything, mock.Anything).Return(nil, assert.AnError).Once()
		financial.On("GetFinancialSummary", mock.Anything, mock.Anything).Return(testFinancialSummary(), nil).Once()
		errorRepo.On("Save", mock.Anything, mock.Anything).Return(nil)
		sender.On("Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
		scheduleRepo.On("Update", mock.Anything, mock.Anything).Return(nil)

		resp, err := svc.ProcessDueReports(context.Background())

		require.NoError(t, err)
		assert.Equal(t, 1, resp.Succeeded)
		assert.Equal(t, 1, resp.Failed)
	})
}

func TestScheduledReportService_Update(t *testing.T) {
	t.Run("resetting a failed schedule back to pending", func(t *testing.T) {
		scheduleRepo := new(MockScheduledReportRepository)
		svc := newScheduledService(t, scheduleRepo, new(MockReportErrorRepository), new(MockFinancialReportRepository), new(MockSender))

		failed := dueSchedule(t)
		failed.Fail(time.Now())
		scheduleRepo.On("FindByID", mock.Anything, failed.ID).Return(&failed, nil)
		scheduleRepo.On("Update", mock.Anything, mock.MatchedBy(func(s *report.ScheduledReport) bool {
			return s.Status == report.ScheduleStatusPending
		})).Return(nil)

		status := "pending"
		resp, err := svc.Update(context.Background(), failed.ID, app.UpdateScheduleRequest{Status: &status})

		require.NoError(t, err)
		assert.Equal(t, "pending", resp.Status)
	})

	t.Run("unknown schedule maps to NOT_FOUND", func(t *testing.T) {
		scheduleRepo := new(MockScheduledReportRepository)
		svc := newScheduledService(t, scheduleRepo, new(MockReportErrorRepository), new(MockFinancialReportRepository), new(MockSender))

		scheduleRepo.On("FindByID", mock.Anything, mock.Anything).Return(nil, shared.ErrNotFound)

		_, err := svc.Update(context.Background(), uuid.New(), app.UpdateScheduleRequest{})

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "NOT_FOUND", domainErr.Code)
	})
}
