package integration

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/ipms/backend/internal/domain/report"
	"github.com/ipms/backend/internal/domain/shared"
	"github.com/ipms/backend/internal/infrastructure/persistence"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newScheduleFixture(t *testing.T) *report.ScheduledReport {
	t.Helper()

	s, err := report.NewScheduledReport(
		report.TypeFinancialSummary,
		report.FrequencyWeekly,
		time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC),
		[]string{"ops@example.com"},
		report.FormatPDF,
		nil,
		"analyst@example.com",
	)
	require.NoError(t, err)
	return s
}

// TestScheduledReportRepository_Integration tests schedule persistence against a real PostgreSQL database
func TestScheduledReportRepository_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	tdb := NewTestDB(t)
	ctx := context.Background()
	repo := persistence.NewGormScheduledReportRepository(tdb.DB)

	t.Run("save and find round trip", func(t *testing.T) {
		s := newScheduleFixture(t)
		require.NoError(t, repo.Save(ctx, s))

		found, err := repo.FindByID(ctx, s.ID)
		require.NoError(t, err)
		assert.Equal(t, report.TypeFinancialSummary, found.ReportType)
		assert.Equal(t, report.FrequencyWeekly, found.Frequency)
		assert.Equal(t, []string{"ops@example.com"}, found.Recipients)
		assert.Equal(t, report.ScheduleStatusPending, found.Status)
		assert.Equal(t, "analyst@example.com", found.CreatedBy)
	})

	t.Run("find by unknown id yields not found", func(t *testing.T) {
		_, err := repo.FindByID(ctx, uuid.New())
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("find due honors status and next_run", func(t *testing.T) {
		due := newScheduleFixture(t)
		due.NextRun = time.Now().Add(-time.Hour)
		require.NoError(t, repo.Save(ctx, due))

		notYet := newScheduleFixture(t)
		notYet.NextRun = time.Now().Add(24 * time.Hour)
		require.NoError(t, repo.Save(ctx, notYet))

		found, err := repo.FindDue(ctx, time.Now())
		require.NoError(t, err)

		ids := make([]uuid.UUID, len(found))
		for i, s := range found {
			ids[i] = s.ID
		}
		assert.Contains(t, ids, due.ID)
		assert.NotContains(t, ids, notYet.ID)
	})

	t.Run("claim is exclusive", func(t *testing.T) {
		s := newScheduleFixture(t)
		s.NextRun = time.Now().Add(-time.Hour)
		require.NoError(t, repo.Save(ctx, s))

		require.NoError(t, repo.Claim(ctx, s.ID))

		// The second claim loses the race
		err := repo.Claim(ctx, s.ID)
		assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)

		claimed, err := repo.FindByID(ctx, s.ID)
		require.NoError(t, err)
		assert.Equal(t, report.ScheduleStatusProcessing, claimed.Status)
	})

	t.Run("update persists lifecycle transitions", func(t *testing.T) {
		s := newScheduleFixture(t)
		require.NoError(t, repo.Save(ctx, s))

		ranAt := time.Now().UTC().Truncate(time.Second)
		s.Complete(ranAt)
		require.NoError(t, repo.Update(ctx, s))

		found, err := repo.FindByID(ctx, s.ID)
		require.NoError(t, err)
		assert.Equal(t, report.ScheduleStatusCompleted, found.Status)
		require.NotNil(t, found.LastRun)
		assert.WithinDuration(t, ranAt, *found.LastRun, time.Second)
		assert.True(t, found.NextRun.After(ranAt))
	})

	t.Run("delete removes the schedule", func(t *testing.T) {
		s := newScheduleFixture(t)
		require.NoError(t, repo.Save(ctx, s))
		require.NoError(t, repo.Delete(ctx, s.ID))

		_, err := repo.FindByID(ctx, s.ID)
		assert.ErrorIs(t, err, shared.ErrNotFound)

		assert.ErrorIs(t, repo.Delete(ctx, s.ID), shared.ErrNotFound)
	})
}

// TestReportErrorRepository_Integration tests failure record persistence
func TestReportErrorRepository_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	tdb := NewTestDB(t)
	ctx := context.Background()
	repo := persistence.NewGormReportErrorRepository(tdb.DB)

	reportID := uuid.New()
	first := report.NewReportError(reportID, "renderer crashed")
	first.CreatedAt = time.Now().Add(-time.Hour)
	require.NoError(t, repo.Save(ctx, first))

	second := report.NewReportError(reportID, "delivery rejected")
	require.NoError(t, repo.Save(ctx, second))

	require.NoError(t, repo.Save(ctx, report.NewReportError(uuid.New(), "other schedule")))

	found, err := repo.FindByReportID(ctx, reportID)
	require.NoError(t, err)
	require.Len(t, found, 2)

	// Newest first
	assert.Equal(t, "delivery rejected", found[0].Message)
	assert.Equal(t, "renderer crashed", found[1].Message)
}

// TestActivityLogRepository_Integration tests the audit trail persistence
func TestActivityLogRepository_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	tdb := NewTestDB(t)
	ctx := context.Background()
	repo := persistence.NewGormActivityLogRepository(tdb.DB)

	older := report.NewActivityLog("report_generated", "financial_summary for January", "analyst@example.com")
	older.OccurredAt = time.Now().Add(-time.Hour)
	require.NoError(t, repo.Save(ctx, older))

	newer := report.NewActivityLog("report_generated", "policy_performance for January", "system")
	require.NoError(t, repo.Save(ctx, newer))

	logs, err := repo.FindRecent(ctx, 1)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, "policy_performance for January", logs[0].Description)

	all, err := repo.FindRecent(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
