package report

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ipms/backend/internal/domain/report"
	"github.com/ipms/backend/internal/domain/shared"
	"github.com/ipms/backend/internal/infrastructure/rendering"
	"go.uber.org/zap"
)

// BuilderService runs the full report pipeline: collect, assemble,
// render, store. Each generation also writes an audit record and purges
// artifacts past the retention window.
type BuilderService struct {
	financialRepo report.FinancialReportRepository
	policyRepo    report.PolicyReportRepository
	clientRepo    report.ClientReportRepository
	activityRepo  report.ActivityLogRepository
	renderers     *rendering.RendererSet
	storage       rendering.ArtifactStorage
	retention     time.Duration
	logger        *zap.Logger
}

// NewBuilderService creates the report pipeline service
func NewBuilderService(
	financialRepo report.FinancialReportRepository,
	policyRepo report.PolicyReportRepository,
	clientRepo report.ClientReportRepository,
	activityRepo report.ActivityLogRepository,
	renderers *rendering.RendererSet,
	storage rendering.ArtifactStorage,
	retentionDays int,
	logger *zap.Logger,
) *BuilderService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BuilderService{
		financialRepo: financialRepo,
		policyRepo:    policyRepo,
		clientRepo:    clientRepo,
		activityRepo:  activityRepo,
		renderers:     renderers,
		storage:       storage,
		retention:     time.Duration(retentionDays) * 24 * time.Hour,
		logger:        logger,
	}
}

// Generate runs one report through the pipeline and returns the stored
// artifact's metadata.
func (s *BuilderService) Generate(ctx context.Context, req GenerateReportRequest) (*GenerateReportResponse, []byte, error) {
	reportType, format, filter, err := req.Normalize()
	if err != nil {
		return nil, nil, err
	}

	meta := newMetadata(reportType, filter.Range, req.GeneratedBy)
	data, err := s.collect(ctx, reportType, filter, req.ClientID, meta)
	if err != nil {
		return nil, nil, err
	}

	renderer, err := s.renderers.For(format)
	if err != nil {
		return nil, nil, err
	}

	artifact, err := renderer.Render(ctx, data)
	if err != nil {
		var renderErr *rendering.RenderError
		if errors.As(err, &renderErr) {
			return nil, nil, shared.NewDomainError(renderErr.Code, renderErr.Message)
		}
		return nil, nil, fmt.Errorf("failed to render report: %w", err)
	}

	filename := reportFilename(reportType, format, meta.GeneratedAt)
	location, err := s.storage.Store(ctx, filename, artifact)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to store report artifact: %w", err)
	}

	s.recordActivity(ctx, reportType, filename, req.GeneratedBy)
	s.purgeExpired(ctx)

	s.logger.Info("report generated",
		zap.String("report_type", string(reportType)),
		zap.String("format", string(format)),
		zap.String("filename", filename),
		zap.Int("size_bytes", len(artifact)))

	return &GenerateReportResponse{
		ReportType:  string(reportType),
		Format:      string(format),
		Filename:    filename,
		Location:    location,
		SizeBytes:   len(artifact),
		GeneratedAt: meta.GeneratedAt,
	}, artifact, nil
}

// RecentActivity returns the most recent report audit records
func (s *BuilderService) RecentActivity(ctx context.Context, limit int) ([]report.ActivityLog, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	entries, err := s.activityRepo.FindRecent(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list report activity: %w", err)
	}
	return entries, nil
}

// collect fetches the read model for the report type and assembles it
// into presentation-ready data.
func (s *BuilderService) collect(ctx context.Context, reportType report.Type, filter report.FinancialFilter, clientID *uuid.UUID, meta report.Metadata) (*report.ReportData, error) {
	switch reportType {
	case report.TypeFinancialSummary:
		summary, err := s.financialRepo.GetFinancialSummary(ctx, filter)
		if err != nil {
			return nil, fmt.Errorf("failed to collect financial summary: %w", err)
		}
		return assembleFinancialSummary(summary, meta), nil

	case report.TypeFinancialTransactions:
		tx, err := s.financialRepo.GetFinancialTransactions(ctx, filter)
		if err != nil {
			return nil, fmt.Errorf("failed to collect financial transactions: %w", err)
		}
		return assembleFinancialTransactions(tx, meta), nil

	case report.TypePolicyPerformance:
		perf, err := s.policyRepo.GetPolicyPerformance(ctx, filter)
		if err != nil {
			return nil, fmt.Errorf("failed to collect policy performance: %w", err)
		}
		return assemblePolicyPerformance(perf, meta), nil

	case report.TypeClientPortfolio:
		portfolio, err := s.clientRepo.GetClientPortfolio(ctx, *clientID)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return nil, shared.NewDomainError("NOT_FOUND", "client not found")
			}
			return nil, fmt.Errorf("failed to collect client portfolio: %w", err)
		}
		return assembleClientPortfolio(portfolio, meta), nil

	default:
		return nil, shared.NewDomainError("INVALID_INPUT", "unknown report type")
	}
}

// recordActivity writes the audit record. Audit failures do not fail
// the generation.
func (s *BuilderService) recordActivity(ctx context.Context, reportType report.Type, filename, actor string) {
	entry := report.NewActivityLog(
		"report_generated",
		fmt.Sprintf("generated %s report %s", reportType, filename),
		actor,
	)
	if err := s.activityRepo.Save(ctx, entry); err != nil {
		s.logger.Warn("failed to record report activity", zap.Error(err))
	}
}

// purgeExpired removes artifacts past the retention window. Purge
// failures do not fail the generation.
func (s *BuilderService) purgeExpired(ctx context.Context) {
	if s.retention <= 0 {
		return
	}
	removed, err := s.storage.CleanupOlderThan(ctx, s.retention)
	if err != nil {
		s.logger.Warn("artifact retention purge failed", zap.Error(err))
		return
	}
	if removed > 0 {
		s.logger.Info("purged expired report artifacts", zap.Int("removed", removed))
	}
}

// reportFilename builds a unique artifact name:
// report_<type>_<timestamp>_<token><ext>
func reportFilename(reportType report.Type, format report.Format, at time.Time) string {
	token := strings.ReplaceAll(uuid.New().String(), "-", "")[:8]
	return fmt.Sprintf("report_%s_%s_%s%s",
		reportType, at.Format("20060102_150405"), token, format.Extension())
}
