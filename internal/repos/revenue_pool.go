package repos

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/coursova/backend/internal/logger"
	"github.com/coursova/backend/internal/types"
)

type RevenuePoolRepo interface {
	UpsertByPeriod(ctx context.Context, tx *gorm.DB, pool *types.RevenuePool) (*types.RevenuePool, error)
	GetByPeriod(ctx context.Context, tx *gorm.DB, period string) (*types.RevenuePool, error)
	MarkDistributed(ctx context.Context, tx *gorm.DB, id uuid.UUID, distributedAt time.Time) (bool, error)
}

type revenuePoolRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewRevenuePoolRepo(db *gorm.DB, baseLog *logger.Logger) RevenuePoolRepo {
	return &revenuePoolRepo{db: db, log: baseLog.With("repo", "RevenuePoolRepo")}
}

// UpsertByPeriod writes the computed pool keyed by period. The conflict update
// only applies while the existing row is still CALCULATING, so a DISTRIBUTED
// pool is never overwritten. Returns the row currently persisted for the
// period, which may be the untouched DISTRIBUTED one.
func (r *revenuePoolRepo) UpsertByPeriod(ctx context.Context, tx *gorm.DB, pool *types.RevenuePool) (*types.RevenuePool, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if pool == nil {
		return nil, nil
	}
	pool.Status = types.PoolStatusCalculating

	if err := transaction.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "period"}},
			Where: clause.Where{Exprs: []clause.Expression{
				clause.Eq{Column: clause.Column{Table: "revenue_pool", Name: "status"}, Value: types.PoolStatusCalculating},
			}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"period_start":      pool.PeriodStart,
				"period_end":        pool.PeriodEnd,
				"total_revenue":     pool.TotalRevenue,
				"platform_fee":      pool.PlatformFee,
				"teacher_pool":      pool.TeacherPool,
				"total_watch_time":  pool.TotalWatchTime,
				"total_engagements": pool.TotalEngagements,
				"updated_at":        time.Now(),
			}),
		}).
		Create(pool).Error; err != nil {
		return nil, err
	}

	return r.GetByPeriod(ctx, tx, pool.Period)
}

func (r *revenuePoolRepo) GetByPeriod(ctx context.Context, tx *gorm.DB, period string) (*types.RevenuePool, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var pool types.RevenuePool
	err := transaction.WithContext(ctx).
		Where("period = ?", period).
		First(&pool).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &pool, nil
}

// MarkDistributed flips CALCULATING -> DISTRIBUTED. The status predicate makes
// the flip a compare-and-swap: a second caller loses the race and gets false.
func (r *revenuePoolRepo) MarkDistributed(ctx context.Context, tx *gorm.DB, id uuid.UUID, distributedAt time.Time) (bool, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if id == uuid.Nil {
		return false, nil
	}

	res := transaction.WithContext(ctx).
		Model(&types.RevenuePool{}).
		Where("id = ? AND status = ?", id, types.PoolStatusCalculating).
		Updates(map[string]interface{}{
			"status":         types.PoolStatusDistributed,
			"distributed_at": distributedAt,
			"updated_at":     time.Now(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
