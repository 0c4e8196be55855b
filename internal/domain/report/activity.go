package report

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// ActivityLog is one audit record of a report generation
type ActivityLog struct {
	ID          uuid.UUID `json:"id"`
	Action      string    `json:"action"`
	Description string    `json:"description"`
	Actor       string    `json:"actor"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// NewActivityLog records an audit entry for an actor's action
func NewActivityLog(action, description, actor string) *ActivityLog {
	return &ActivityLog{
		ID:          uuid.New(),
		Action:      action,
		Description: description,
		Actor:       actor,
		OccurredAt:  time.Now(),
	}
}

// ActivityLogRepository persists report audit records
type ActivityLogRepository interface {
	Save(ctx context.Context, l *ActivityLog) error
	FindRecent(ctx context.Context, limit int) ([]ActivityLog, error)
}
