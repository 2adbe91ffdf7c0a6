package repos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/coursova/backend/internal/logger"
	"github.com/coursova/backend/internal/types"
)

type EngagementRepo interface {
	UpsertWatchTime(ctx context.Context, tx *gorm.DB, rec *types.EngagementRecord) (*types.EngagementRecord, error)
	GetByPeriod(ctx context.Context, tx *gorm.DB, period string) ([]*types.EngagementRecord, error)
	GetByUserIDs(ctx context.Context, tx *gorm.DB, userIDs []uuid.UUID) ([]*types.EngagementRecord, error)
}

type engagementRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewEngagementRepo(db *gorm.DB, baseLog *logger.Logger) EngagementRepo {
	return &engagementRepo{db: db, log: baseLog.With("repo", "EngagementRepo")}
}

// UpsertWatchTime accumulates watch minutes into the (student, content, period)
// row, creating it when absent. Completion is sticky once set.
func (r *engagementRepo) UpsertWatchTime(ctx context.Context, tx *gorm.DB, rec *types.EngagementRecord) (*types.EngagementRecord, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if rec == nil {
		return nil, nil
	}
	if rec.LastWatchedAt.IsZero() {
		rec.LastWatchedAt = time.Now().UTC()
	}

	if err := transaction.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "user_id"},
				{Name: "program_id"},
				{Name: "module_id"},
				{Name: "period"},
			},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"watch_time_minutes": gorm.Expr("engagement_record.watch_time_minutes + EXCLUDED.watch_time_minutes"),
				"is_completed":       gorm.Expr("engagement_record.is_completed OR EXCLUDED.is_completed"),
				"last_watched_at":    gorm.Expr("GREATEST(engagement_record.last_watched_at, EXCLUDED.last_watched_at)"),
				"updated_at":         time.Now(),
			}),
		}).
		Create(rec).Error; err != nil {
		return nil, err
	}
	return rec, nil
}

func (r *engagementRepo) GetByPeriod(ctx context.Context, tx *gorm.DB, period string) ([]*types.EngagementRecord, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.EngagementRecord
	if period == "" {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Preload("Program").
		Preload("Module").
		Where("period = ?", period).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *engagementRepo) GetByUserIDs(ctx context.Context, tx *gorm.DB, userIDs []uuid.UUID) ([]*types.EngagementRecord, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.EngagementRecord
	if len(userIDs) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("user_id IN ?", userIDs).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
