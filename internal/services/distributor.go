package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/coursova/backend/internal/logger"
	"github.com/coursova/backend/internal/repos"
	"github.com/coursova/backend/internal/types"
)

// PeriodLease serializes distribution runs for one period across processes.
// The concrete implementation lives in the redis client package; a nil lease
// disables the guard and leaves only the database compare-and-swap.
type PeriodLease interface {
	Acquire(ctx context.Context, period string) (bool, error)
	Release(ctx context.Context, period string) error
}

const (
	PayoutStatusCreated = "created"
	PayoutStatusExists  = "exists"
	PayoutStatusFailed  = "failed"
)

// TeacherPayoutOutcome reports what happened to one teacher's ledger entry so
// a reconciliation pass can retry failures idempotently.
type TeacherPayoutOutcome struct {
	TeacherID        uuid.UUID `json:"teacher_id"`
	WatchTimeMinutes float64   `json:"watch_time_minutes"`
	EngagedStudents  int       `json:"engaged_students"`
	Amount           float64   `json:"amount"`
	NetAmount        float64   `json:"net_amount"`
	Status           string    `json:"status"`
	Reason           string    `json:"reason,omitempty"`
}

type DistributionResult struct {
	Period      string                 `json:"period"`
	Distributed int                    `json:"distributed"`
	Failed      int                    `json:"failed"`
	TotalAmount float64                `json:"total_amount"`
	Outcomes    []TeacherPayoutOutcome `json:"outcomes"`
}

type RevenueDistributor interface {
	DistributeRevenue(ctx context.Context, period string) (*DistributionResult, error)
}

type revenueDistributor struct {
	db          *gorm.DB
	log         *logger.Logger
	calculator  PoolCalculator
	aggregator  EngagementAggregator
	poolRepo    repos.RevenuePoolRepo
	earningRepo repos.TeacherEarningRepo
	lease       PeriodLease
	feeRate     float64
}

func NewRevenueDistributor(
	db *gorm.DB,
	baseLog *logger.Logger,
	calculator PoolCalculator,
	aggregator EngagementAggregator,
	poolRepo repos.RevenuePoolRepo,
	earningRepo repos.TeacherEarningRepo,
	lease PeriodLease,
) RevenueDistributor {
	return &revenueDistributor{
		db:          db,
		log:         baseLog.With("service", "RevenueDistributor"),
		calculator:  calculator,
		aggregator:  aggregator,
		poolRepo:    poolRepo,
		earningRepo: earningRepo,
		lease:       lease,
		feeRate:     types.PlatformFeeRate,
	}
}

// DistributeRevenue settles one period: recompute the pool, split the teacher
// pool proportionally by watch-time share, append one ledger line per teacher,
// then flip the pool to DISTRIBUTED exactly once.
//
// Entry creation is best-effort per teacher. A failed entry is logged and
// reported in the outcome list but does not abort the batch or block the
// status flip; the unique (teacher, period, source) index makes a later retry
// safe.
func (d *revenueDistributor) DistributeRevenue(ctx context.Context, period string) (*DistributionResult, error) {
	if _, _, err := ParsePeriod(period); err != nil {
		return nil, err
	}

	if d.lease != nil {
		acquired, err := d.lease.Acquire(ctx, period)
		if err != nil {
			d.log.Warn("period lease unavailable, relying on pool status guard", "period", period, "error", err)
		} else if !acquired {
			return nil, fmt.Errorf("%w: %s", ErrPoolBusy, period)
		} else {
			defer func() {
				if rErr := d.lease.Release(context.WithoutCancel(ctx), period); rErr != nil {
					d.log.Warn("period lease release failed", "period", period, "error", rErr)
				}
			}()
		}
	}

	pool, err := d.calculator.CalculatePool(ctx, nil, period)
	if err != nil {
		return nil, err
	}

	result := &DistributionResult{Period: period}

	// No engagement this period: nothing to pay out, but the period still
	// closes so the scheduler never revisits it.
	if pool.TotalWatchTime <= 0 {
		if err := d.markDistributed(ctx, pool); err != nil {
			return nil, err
		}
		d.log.Info("no engagement for period, pool closed without payouts", "period", period)
		return result, nil
	}

	totals, err := d.aggregator.Aggregate(ctx, nil, period)
	if err != nil {
		return nil, err
	}

	for _, teacherID := range sortedTeacherIDs(totals.PerTeacherWatchTime) {
		watchTime := totals.PerTeacherWatchTime[teacherID]
		if watchTime <= 0 {
			continue
		}
		share := (watchTime / pool.TotalWatchTime) * pool.TeacherPool
		if share <= 0 {
			continue
		}

		outcome := TeacherPayoutOutcome{
			TeacherID:        teacherID,
			WatchTimeMinutes: watchTime,
			EngagedStudents:  totals.PerTeacherStudents[teacherID],
			Amount:           share,
			NetAmount:        share * (1 - d.feeRate),
		}

		_, err := d.earningRepo.Create(ctx, nil, &types.TeacherEarning{
			TeacherID:         teacherID,
			Period:            period,
			RevenueSource:     types.RevenueSourceSubscription,
			WatchTimeMinutes:  watchTime,
			EngagedStudents:   totals.PerTeacherStudents[teacherID],
			Amount:            share,
			PlatformFeeAmount: share * d.feeRate,
			NetAmount:         share * (1 - d.feeRate),
			Status:            types.EarningStatusAvailable,
			RevenuePoolID:     pool.ID,
		})
		switch {
		case errors.Is(err, repos.ErrDuplicateEarning):
			outcome.Status = PayoutStatusExists
			d.log.Info("earning already exists, skipping", "period", period, "teacher_id", teacherID)
		case err != nil:
			outcome.Status = PayoutStatusFailed
			outcome.Reason = err.Error()
			result.Failed++
			d.log.Error("earning creation failed, continuing batch",
				"period", period, "teacher_id", teacherID, "amount", share, "error", err)
		default:
			outcome.Status = PayoutStatusCreated
			result.Distributed++
			result.TotalAmount += share
		}
		result.Outcomes = append(result.Outcomes, outcome)
	}

	if err := d.markDistributed(ctx, pool); err != nil {
		return nil, err
	}

	d.log.Info("revenue distributed",
		"period", period,
		"distributed", result.Distributed,
		"failed", result.Failed,
		"total_amount", result.TotalAmount)
	return result, nil
}

func (d *revenueDistributor) markDistributed(ctx context.Context, pool *types.RevenuePool) error {
	flipped, err := d.poolRepo.MarkDistributed(ctx, nil, pool.ID, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("mark pool distributed: %w", err)
	}
	if !flipped {
		return fmt.Errorf("%w: %s", ErrPoolDistributed, pool.Period)
	}
	return nil
}

func sortedTeacherIDs(watchTimes map[uuid.UUID]float64) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(watchTimes))
	for id := range watchTimes {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })
	return ids
}
