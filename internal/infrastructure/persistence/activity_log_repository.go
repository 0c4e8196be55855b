package persistence

import (
	"context"

	"github.com/ipms/backend/internal/domain/report"
	"github.com/ipms/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormActivityLogRepository implements ActivityLogRepository using GORM
type GormActivityLogRepository struct {
	db *gorm.DB
}

// NewGormActivityLogRepository creates a new GormActivityLogRepository
func NewGormActivityLogRepository(db *gorm.DB) *GormActivityLogRepository {
	return &GormActivityLogRepository{db: db}
}

// Save inserts an audit record
func (r *GormActivityLogRepository) Save(ctx context.Context, l *report.ActivityLog) error {
	return r.db.WithContext(ctx).Create(models.ActivityLogModelFromDomain(l)).Error
}

// FindRecent returns the most recent audit records
func (r *GormActivityLogRepository) FindRecent(ctx context.Context, limit int) ([]report.ActivityLog, error) {
	if limit <= 0 {
		limit = 50
	}
	var logModels []models.ActivityLogModel
	if err := r.db.WithContext(ctx).
		Order("occurred_at DESC").
		Limit(limit).
		Find(&logModels).Error; err != nil {
		return nil, err
	}

	logs := make([]report.ActivityLog, len(logModels))
	for i, model := range logModels {
		logs[i] = *model.ToDomain()
	}
	return logs, nil
}
