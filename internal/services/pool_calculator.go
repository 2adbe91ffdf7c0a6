package services

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/coursova/backend/internal/logger"
	"github.com/coursova/backend/internal/repos"
	"github.com/coursova/backend/internal/types"
)

type PoolCalculator interface {
	CalculatePool(ctx context.Context, tx *gorm.DB, period string) (*types.RevenuePool, error)
}

type poolCalculator struct {
	log              *logger.Logger
	subscriptionRepo repos.SubscriptionRepo
	poolRepo         repos.RevenuePoolRepo
	aggregator       EngagementAggregator
	feeRate          float64
}

func NewPoolCalculator(
	baseLog *logger.Logger,
	subscriptionRepo repos.SubscriptionRepo,
	poolRepo repos.RevenuePoolRepo,
	aggregator EngagementAggregator,
) PoolCalculator {
	return &poolCalculator{
		log:              baseLog.With("service", "PoolCalculator"),
		subscriptionRepo: subscriptionRepo,
		poolRepo:         poolRepo,
		aggregator:       aggregator,
		feeRate:          types.PlatformFeeRate,
	}
}

// CalculatePool computes and persists the revenue pool for a period via a
// single upsert keyed by the period. Recomputation is idempotent while the
// pool is still CALCULATING; a DISTRIBUTED period is terminal and rejected.
func (c *poolCalculator) CalculatePool(ctx context.Context, tx *gorm.DB, period string) (*types.RevenuePool, error) {
	periodStart, periodEnd, err := ParsePeriod(period)
	if err != nil {
		return nil, err
	}

	existing, err := c.poolRepo.GetByPeriod(ctx, tx, period)
	if err != nil {
		return nil, fmt.Errorf("load revenue pool: %w", err)
	}
	if existing != nil && existing.Status == types.PoolStatusDistributed {
		return nil, fmt.Errorf("%w: %s", ErrPoolDistributed, period)
	}

	totalRevenue, err := c.subscriptionRepo.SumCompletedOverlapping(ctx, tx, periodStart, periodEnd)
	if err != nil {
		return nil, fmt.Errorf("sum subscription revenue: %w", err)
	}

	totals, err := c.aggregator.Aggregate(ctx, tx, period)
	if err != nil {
		return nil, fmt.Errorf("aggregate engagement: %w", err)
	}

	platformFee := totalRevenue * c.feeRate
	pool := &types.RevenuePool{
		Period:           period,
		PeriodStart:      periodStart,
		PeriodEnd:        periodEnd,
		TotalRevenue:     totalRevenue,
		PlatformFee:      platformFee,
		TeacherPool:      totalRevenue - platformFee,
		TotalWatchTime:   totals.TotalWatchTime,
		TotalEngagements: totals.TotalCompleted,
		Status:           types.PoolStatusCalculating,
	}

	persisted, err := c.poolRepo.UpsertByPeriod(ctx, tx, pool)
	if err != nil {
		return nil, fmt.Errorf("persist revenue pool: %w", err)
	}
	// The upsert refuses to touch a DISTRIBUTED row; if that is what came
	// back, another run finished between the status check and the write.
	if persisted != nil && persisted.Status == types.PoolStatusDistributed {
		return nil, fmt.Errorf("%w: %s", ErrPoolDistributed, period)
	}

	c.log.Info("revenue pool calculated",
		"period", period,
		"total_revenue", persisted.TotalRevenue,
		"platform_fee", persisted.PlatformFee,
		"teacher_pool", persisted.TeacherPool,
		"total_watch_time", persisted.TotalWatchTime,
		"total_engagements", persisted.TotalEngagements)
	return persisted, nil
}
