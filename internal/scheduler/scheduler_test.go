package scheduler

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/coursova/backend/internal/logger"
	"github.com/coursova/backend/internal/services"
	"github.com/coursova/backend/internal/types"
)

type fakeDistributor struct {
	calls []string
	err   error
}

func (f *fakeDistributor) DistributeRevenue(ctx context.Context, period string) (*services.DistributionResult, error) {
	f.calls = append(f.calls, period)
	if f.err != nil {
		return nil, f.err
	}
	return &services.DistributionResult{Period: period}, nil
}

type fakePoolRepo struct {
	pool *types.RevenuePool
	err  error
}

func (f *fakePoolRepo) UpsertByPeriod(ctx context.Context, tx *gorm.DB, pool *types.RevenuePool) (*types.RevenuePool, error) {
	return pool, nil
}

func (f *fakePoolRepo) GetByPeriod(ctx context.Context, tx *gorm.DB, period string) (*types.RevenuePool, error) {
	return f.pool, f.err
}

func (f *fakePoolRepo) MarkDistributed(ctx context.Context, tx *gorm.DB, id uuid.UUID, at time.Time) (bool, error) {
	return false, nil
}

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("init logger: %v", err)
	}
	return log
}

func TestRunMonthlyDistributionTargetsPreviousMonth(t *testing.T) {
	dist := &fakeDistributor{}
	s := New(testLogger(t), dist, &fakePoolRepo{}, "0 3 1 * *")

	s.RunMonthlyDistribution()

	want := services.PreviousPeriod(time.Now())
	if len(dist.calls) != 1 || dist.calls[0] != want {
		t.Fatalf("calls = %v, want one run for %s", dist.calls, want)
	}
}

func TestRunMonthlyDistributionSkipsSettledPeriod(t *testing.T) {
	dist := &fakeDistributor{}
	pools := &fakePoolRepo{pool: &types.RevenuePool{
		ID:     uuid.New(),
		Period: services.PreviousPeriod(time.Now()),
		Status: types.PoolStatusDistributed,
	}}
	s := New(testLogger(t), dist, pools, "0 3 1 * *")

	s.RunMonthlyDistribution()

	if len(dist.calls) != 0 {
		t.Fatalf("distributor invoked for an already settled period: %v", dist.calls)
	}
}

func TestRunMonthlyDistributionToleratesConcurrentRun(t *testing.T) {
	// A concurrent run winning the race is routine, not an error.
	dist := &fakeDistributor{err: fmt.Errorf("wrapped: %w", services.ErrPoolBusy)}
	s := New(testLogger(t), dist, &fakePoolRepo{}, "0 3 1 * *")

	s.RunMonthlyDistribution()

	if len(dist.calls) != 1 {
		t.Fatalf("calls = %v, want exactly one attempt", dist.calls)
	}
}
