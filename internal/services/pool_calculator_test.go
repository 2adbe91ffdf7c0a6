package services

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/google/uuid"

	"github.com/coursova/backend/internal/types"
)

func newTestCalculator(t *testing.T, subs *fakeSubscriptionRepo, pools *fakePoolRepo, engagements *fakeEngagementRepo) PoolCalculator {
	t.Helper()
	log := testLogger(t)
	return NewPoolCalculator(log, subs, pools, NewEngagementAggregator(log, engagements))
}

func TestCalculatePoolFeeSplit(t *testing.T) {
	teacher := uuid.New()
	student := uuid.New()
	engagements := &fakeEngagementRepo{records: []*types.EngagementRecord{
		programRecord(student, teacher, "2025-03", 30, true),
		moduleRecord(student, teacher, "2025-03", 10, false),
	}}
	pools := &fakePoolRepo{}
	calc := newTestCalculator(t, &fakeSubscriptionRepo{sum: 12}, pools, engagements)

	pool, err := calc.CalculatePool(context.Background(), nil, "2025-03")
	if err != nil {
		t.Fatalf("CalculatePool: %v", err)
	}

	if math.Abs(pool.PlatformFee-3.6) > 1e-6 {
		t.Fatalf("PlatformFee = %v, want 3.6", pool.PlatformFee)
	}
	if math.Abs(pool.TeacherPool-8.4) > 1e-6 {
		t.Fatalf("TeacherPool = %v, want 8.4", pool.TeacherPool)
	}
	if math.Abs(pool.PlatformFee+pool.TeacherPool-pool.TotalRevenue) > 1e-6 {
		t.Fatalf("fee split does not conserve revenue: %v + %v != %v",
			pool.PlatformFee, pool.TeacherPool, pool.TotalRevenue)
	}
	if pool.TotalWatchTime != 40 {
		t.Fatalf("TotalWatchTime = %v, want 40", pool.TotalWatchTime)
	}
	if pool.TotalEngagements != 1 {
		t.Fatalf("TotalEngagements = %d, want 1", pool.TotalEngagements)
	}
	if pool.Status != types.PoolStatusCalculating {
		t.Fatalf("Status = %q, want CALCULATING", pool.Status)
	}
}

func TestCalculatePoolIdempotentWhileCalculating(t *testing.T) {
	pools := &fakePoolRepo{}
	calc := newTestCalculator(t, &fakeSubscriptionRepo{sum: 12}, pools, &fakeEngagementRepo{})

	first, err := calc.CalculatePool(context.Background(), nil, "2025-03")
	if err != nil {
		t.Fatalf("first CalculatePool: %v", err)
	}
	second, err := calc.CalculatePool(context.Background(), nil, "2025-03")
	if err != nil {
		t.Fatalf("second CalculatePool: %v", err)
	}
	if first.ID != second.ID {
		t.Fatalf("recompute produced a new pool row: %s != %s", first.ID, second.ID)
	}
	if first.TotalRevenue != second.TotalRevenue ||
		first.PlatformFee != second.PlatformFee ||
		first.TeacherPool != second.TeacherPool {
		t.Fatalf("recompute changed figures: %+v vs %+v", first, second)
	}
}

func TestCalculatePoolRejectsDistributed(t *testing.T) {
	pools := &fakePoolRepo{pool: &types.RevenuePool{
		ID:     uuid.New(),
		Period: "2025-03",
		Status: types.PoolStatusDistributed,
	}}
	calc := newTestCalculator(t, &fakeSubscriptionRepo{sum: 12}, pools, &fakeEngagementRepo{})

	_, err := calc.CalculatePool(context.Background(), nil, "2025-03")
	if !errors.Is(err, ErrPoolDistributed) {
		t.Fatalf("err = %v, want ErrPoolDistributed", err)
	}
}

func TestCalculatePoolInvalidPeriod(t *testing.T) {
	calc := newTestCalculator(t, &fakeSubscriptionRepo{}, &fakePoolRepo{}, &fakeEngagementRepo{})
	if _, err := calc.CalculatePool(context.Background(), nil, "2025/03"); !errors.Is(err, ErrInvalidPeriod) {
		t.Fatalf("err = %v, want ErrInvalidPeriod", err)
	}
}
