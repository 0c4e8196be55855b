package scheduler

import (
	"context"
	"sync"
	"time"

	appreport "github.com/ipms/backend/internal/application/report"
	"github.com/ipms/backend/internal/infrastructure/config"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// ReportSweeper triggers the due-report sweep on a cron schedule. Every
// tick runs one ProcessDueReports pass; claim conflicts inside the
// sweep make overlapping ticks safe.
type ReportSweeper struct {
	config  config.SchedulerConfig
	service *appreport.ScheduledReportService
	logger  *zap.Logger
	cron    *cron.Cron

	mu        sync.Mutex
	isRunning bool
	lastRunAt *time.Time
}

// NewReportSweeper creates the cron-driven sweeper
func NewReportSweeper(cfg config.SchedulerConfig, service *appreport.ScheduledReportService, logger *zap.Logger) *ReportSweeper {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportSweeper{
		config:  cfg,
		service: service,
		logger:  logger,
		cron:    cron.New(),
	}
}

// Start registers the sweep job and starts the cron runner
func (s *ReportSweeper) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.isRunning {
		return nil
	}

	if s.config.CronSchedule == "" {
		return ErrInvalidConfig
	}

	if _, err := s.cron.AddFunc(s.config.CronSchedule, s.sweep); err != nil {
		return err
	}

	s.cron.Start()
	s.isRunning = true

	s.logger.Info("report sweeper started",
		zap.String("cron_schedule", s.config.CronSchedule),
		zap.Duration("sweep_timeout", s.config.SweepTimeout))
	return nil
}

// Stop halts the cron runner and waits for a running sweep to finish
func (s *ReportSweeper) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	s.mu.Unlock()

	stopCtx := s.cron.Stop()
	select {
	case <-stopCtx.Done():
		s.logger.Info("report sweeper stopped")
		return nil
	case <-ctx.Done():
		s.logger.Warn("report sweeper stop timed out")
		return ctx.Err()
	}
}

// TriggerNow runs one sweep outside the cron schedule
func (s *ReportSweeper) TriggerNow(ctx context.Context) (*appreport.SweepResponse, error) {
	s.mu.Lock()
	running := s.isRunning
	s.mu.Unlock()
	if !running {
		return nil, ErrSweeperNotRunning
	}

	return s.service.ProcessDueReports(ctx)
}

// sweep runs one timed ProcessDueReports pass
func (s *ReportSweeper) sweep() {
	ctx := context.Background()
	if s.config.SweepTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.config.SweepTimeout)
		defer cancel()
	}

	now := time.Now()
	s.mu.Lock()
	s.lastRunAt = &now
	s.mu.Unlock()

	if _, err := s.service.ProcessDueReports(ctx); err != nil {
		s.logger.Error("due-report sweep failed", zap.Error(err))
	}
}

// Status reports the sweeper's current state
func (s *ReportSweeper) Status() map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return map[string]any{
		"enabled":       s.config.Enabled,
		"is_running":    s.isRunning,
		"cron_schedule": s.config.CronSchedule,
		"last_run_at":   s.lastRunAt,
	}
}
