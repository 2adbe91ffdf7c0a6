package repos

import (
	"context"
	"testing"
	"time"

	"github.com/coursova/backend/internal/repos/testutil"
	"github.com/coursova/backend/internal/types"
)

func TestRevenuePoolRepoUpsert(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	ctx := context.Background()
	repo := NewRevenuePoolRepo(db, testutil.Logger(t))

	start, _ := time.ParseInLocation("2006-01", "2025-03", time.UTC)
	pool := &types.RevenuePool{
		Period:           "2025-03",
		PeriodStart:      start,
		PeriodEnd:        start.AddDate(0, 1, 0).Add(-time.Second),
		TotalRevenue:     12,
		PlatformFee:      3.6,
		TeacherPool:      8.4,
		TotalWatchTime:   40,
		TotalEngagements: 2,
	}

	created, err := repo.UpsertByPeriod(ctx, tx, pool)
	if err != nil {
		t.Fatalf("UpsertByPeriod create: %v", err)
	}
	if created.Status != types.PoolStatusCalculating {
		t.Fatalf("status = %q, want CALCULATING", created.Status)
	}

	// Recompute while still CALCULATING overwrites the figures.
	pool2 := *pool
	pool2.ID = created.ID
	pool2.TotalRevenue = 18
	pool2.PlatformFee = 5.4
	pool2.TeacherPool = 12.6
	updated, err := repo.UpsertByPeriod(ctx, tx, &pool2)
	if err != nil {
		t.Fatalf("UpsertByPeriod recompute: %v", err)
	}
	if updated.ID != created.ID {
		t.Fatalf("recompute created a second row: %s != %s", updated.ID, created.ID)
	}
	if updated.TotalRevenue != 18 {
		t.Fatalf("TotalRevenue = %v, want 18", updated.TotalRevenue)
	}
}

func TestRevenuePoolRepoUpsertLeavesDistributedAlone(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	ctx := context.Background()
	repo := NewRevenuePoolRepo(db, testutil.Logger(t))

	seeded := testutil.SeedPool(t, ctx, tx, "2025-04", types.PoolStatusDistributed)

	attempt := &types.RevenuePool{
		Period:       "2025-04",
		PeriodStart:  seeded.PeriodStart,
		PeriodEnd:    seeded.PeriodEnd,
		TotalRevenue: 99,
	}
	got, err := repo.UpsertByPeriod(ctx, tx, attempt)
	if err != nil {
		t.Fatalf("UpsertByPeriod: %v", err)
	}
	if got.Status != types.PoolStatusDistributed {
		t.Fatalf("status = %q, want DISTRIBUTED untouched", got.Status)
	}
	if got.TotalRevenue != 0 {
		t.Fatalf("TotalRevenue = %v, distributed pool was overwritten", got.TotalRevenue)
	}
}

func TestRevenuePoolRepoMarkDistributedCAS(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	ctx := context.Background()
	repo := NewRevenuePoolRepo(db, testutil.Logger(t))

	pool := testutil.SeedPool(t, ctx, tx, "2025-05", types.PoolStatusCalculating)
	now := time.Now().UTC()

	flipped, err := repo.MarkDistributed(ctx, tx, pool.ID, now)
	if err != nil || !flipped {
		t.Fatalf("first MarkDistributed: flipped=%v err=%v", flipped, err)
	}

	flipped, err = repo.MarkDistributed(ctx, tx, pool.ID, now)
	if err != nil {
		t.Fatalf("second MarkDistributed: %v", err)
	}
	if flipped {
		t.Fatal("second MarkDistributed flipped again, CAS guard failed")
	}

	got, err := repo.GetByPeriod(ctx, tx, "2025-05")
	if err != nil {
		t.Fatalf("GetByPeriod: %v", err)
	}
	if got.Status != types.PoolStatusDistributed || got.DistributedAt == nil {
		t.Fatalf("pool = %+v, want DISTRIBUTED with distributed_at set", got)
	}
}
