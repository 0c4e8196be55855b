package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/ipms/backend/internal/domain/report"
	"github.com/ipms/backend/internal/domain/shared"
	"github.com/ipms/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormScheduledReportRepository implements ScheduledReportRepository using GORM
type GormScheduledReportRepository struct {
	db *gorm.DB
}

// NewGormScheduledReportRepository creates a new GormScheduledReportRepository
func NewGormScheduledReportRepository(db *gorm.DB) *GormScheduledReportRepository {
	return &GormScheduledReportRepository{db: db}
}

// Save inserts a new scheduled report
func (r *GormScheduledReportRepository) Save(ctx context.Context, s *report.ScheduledReport) error {
	model := models.ScheduledReportModelFromDomain(s)
	return r.db.WithContext(ctx).Create(model).Error
}

// Update writes the full record back
func (r *GormScheduledReportRepository) Update(ctx context.Context, s *report.ScheduledReport) error {
	model := models.ScheduledReportModelFromDomain(s)
	model.UpdatedAt = time.Now()
	result := r.db.WithContext(ctx).
		Model(&models.ScheduledReportModel{}).
		Where("id = ?", model.ID).
		Select("*").
		Omit("id", "created_at").
		Updates(model)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Delete removes a scheduled report permanently
func (r *GormScheduledReportRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.ScheduledReportModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// FindByID finds a scheduled report by ID
func (r *GormScheduledReportRepository) FindByID(ctx context.Context, id uuid.UUID) (*report.ScheduledReport, error) {
	var model models.ScheduledReportModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain()
}

// FindAll lists scheduled reports with optional filtering
func (r *GormScheduledReportRepository) FindAll(ctx context.Context, filter report.ScheduleFilter) ([]report.ScheduledReport, error) {
	query := r.db.WithContext(ctx).Model(&models.ScheduledReportModel{})
	if filter.Status != "" {
		query = query.Where("status = ?", string(filter.Status))
	}
	if filter.ReportType != "" {
		query = query.Where("report_type = ?", string(filter.ReportType))
	}
	if filter.Frequency != "" {
		query = query.Where("frequency = ?", string(filter.Frequency))
	}

	var schedModels []models.ScheduledReportModel
	if err := query.Order("next_run ASC").Find(&schedModels).Error; err != nil {
		return nil, err
	}

	schedules := make([]report.ScheduledReport, len(schedModels))
	for i, model := range schedModels {
		s, err := model.ToDomain()
		if err != nil {
			return nil, err
		}
		schedules[i] = *s
	}
	return schedules, nil
}

// FindDue returns pending schedules with next_run <= now
func (r *GormScheduledReportRepository) FindDue(ctx context.Context, now time.Time) ([]report.ScheduledReport, error) {
	var schedModels []models.ScheduledReportModel
	if err := r.db.WithContext(ctx).
		Where("status = ?", string(report.ScheduleStatusPending)).
		Where("next_run <= ?", now).
		Order("next_run ASC").
		Find(&schedModels).Error; err != nil {
		return nil, err
	}

	schedules := make([]report.ScheduledReport, len(schedModels))
	for i, model := range schedModels {
		s, err := model.ToDomain()
		if err != nil {
			return nil, err
		}
		schedules[i] = *s
	}
	return schedules, nil
}

// Claim atomically flips a schedule from pending to processing. A
// conditional update keeps two overlapping sweeps from both owning the
// same job: the loser sees zero rows affected.
func (r *GormScheduledReportRepository) Claim(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Model(&models.ScheduledReportModel{}).
		Where("id = ? AND status = ?", id, string(report.ScheduleStatusPending)).
		Updates(map[string]interface{}{
			"status":     string(report.ScheduleStatusProcessing),
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

// GormReportErrorRepository implements ReportErrorRepository using GORM
type GormReportErrorRepository struct {
	db *gorm.DB
}

// NewGormReportErrorRepository creates a new GormReportErrorRepository
func NewGormReportErrorRepository(db *gorm.DB) *GormReportErrorRepository {
	return &GormReportErrorRepository{db: db}
}

// Save inserts a failure record
func (r *GormReportErrorRepository) Save(ctx context.Context, e *report.ReportError) error {
	return r.db.WithContext(ctx).Create(models.ReportErrorModelFromDomain(e)).Error
}

// FindByReportID returns failure records for one schedule, newest first
func (r *GormReportErrorRepository) FindByReportID(ctx context.Context, reportID uuid.UUID) ([]report.ReportError, error) {
	var errModels []models.ReportErrorModel
	if err := r.db.WithContext(ctx).
		Where("report_id = ?", reportID).
		Order("created_at DESC").
		Find(&errModels).Error; err != nil {
		return nil, err
	}

	errs := make([]report.ReportError, len(errModels))
	for i, model := range errModels {
		errs[i] = *model.ToDomain()
	}
	return errs, nil
}
