package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/coursova/backend/internal/logger"
	"github.com/coursova/backend/internal/repos"
	"github.com/coursova/backend/internal/types"
)

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("init logger: %v", err)
	}
	return log
}

type fakeEngagementRepo struct {
	records []*types.EngagementRecord
	err     error
}

func (f *fakeEngagementRepo) UpsertWatchTime(ctx context.Context, tx *gorm.DB, rec *types.EngagementRecord) (*types.EngagementRecord, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.records = append(f.records, rec)
	return rec, nil
}

func (f *fakeEngagementRepo) GetByPeriod(ctx context.Context, tx *gorm.DB, period string) ([]*types.EngagementRecord, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []*types.EngagementRecord
	for _, r := range f.records {
		if r.Period == period {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeEngagementRepo) GetByUserIDs(ctx context.Context, tx *gorm.DB, userIDs []uuid.UUID) ([]*types.EngagementRecord, error) {
	return f.records, f.err
}

type fakeSubscriptionRepo struct {
	repos.SubscriptionRepo

	sum    float64
	sumErr error
}

func (f *fakeSubscriptionRepo) SumCompletedOverlapping(ctx context.Context, tx *gorm.DB, periodStart, periodEnd time.Time) (float64, error) {
	return f.sum, f.sumErr
}

type fakePoolRepo struct {
	pool        *types.RevenuePool
	upsertErr   error
	markErr     error
	markResults []bool
	markCalls   int
}

func (f *fakePoolRepo) UpsertByPeriod(ctx context.Context, tx *gorm.DB, pool *types.RevenuePool) (*types.RevenuePool, error) {
	if f.upsertErr != nil {
		return nil, f.upsertErr
	}
	if f.pool != nil && f.pool.Status == types.PoolStatusDistributed {
		return f.pool, nil
	}
	pool.Status = types.PoolStatusCalculating
	if f.pool != nil {
		pool.ID = f.pool.ID
	} else if pool.ID == uuid.Nil {
		pool.ID = uuid.New()
	}
	f.pool = pool
	return pool, nil
}

func (f *fakePoolRepo) GetByPeriod(ctx context.Context, tx *gorm.DB, period string) (*types.RevenuePool, error) {
	if f.pool == nil || f.pool.Period != period {
		return nil, nil
	}
	return f.pool, nil
}

func (f *fakePoolRepo) MarkDistributed(ctx context.Context, tx *gorm.DB, id uuid.UUID, at time.Time) (bool, error) {
	f.markCalls++
	if f.markErr != nil {
		return false, f.markErr
	}
	if len(f.markResults) > 0 {
		res := f.markResults[0]
		f.markResults = f.markResults[1:]
		return res, nil
	}
	if f.pool == nil || f.pool.Status == types.PoolStatusDistributed {
		return false, nil
	}
	f.pool.Status = types.PoolStatusDistributed
	f.pool.DistributedAt = &at
	return true, nil
}

type fakeEarningRepo struct {
	created  []*types.TeacherEarning
	errByID  map[uuid.UUID]error
	existing map[uuid.UUID]bool
}

func (f *fakeEarningRepo) Create(ctx context.Context, tx *gorm.DB, earning *types.TeacherEarning) (*types.TeacherEarning, error) {
	if err := f.errByID[earning.TeacherID]; err != nil {
		return nil, err
	}
	if f.existing[earning.TeacherID] {
		return nil, repos.ErrDuplicateEarning
	}
	f.created = append(f.created, earning)
	return earning, nil
}

func (f *fakeEarningRepo) GetByTeacherIDs(ctx context.Context, tx *gorm.DB, teacherIDs []uuid.UUID) ([]*types.TeacherEarning, error) {
	return f.created, nil
}

func (f *fakeEarningRepo) GetByPeriod(ctx context.Context, tx *gorm.DB, period string) ([]*types.TeacherEarning, error) {
	return f.created, nil
}

func (f *fakeEarningRepo) SumAmountByPoolID(ctx context.Context, tx *gorm.DB, poolID uuid.UUID) (float64, error) {
	var total float64
	for _, e := range f.created {
		if e.RevenuePoolID == poolID {
			total += e.Amount
		}
	}
	return total, nil
}

type fakeLease struct {
	acquired   bool
	acquireErr error
	released   int
}

func (f *fakeLease) Acquire(ctx context.Context, period string) (bool, error) {
	return f.acquired, f.acquireErr
}

func (f *fakeLease) Release(ctx context.Context, period string) error {
	f.released++
	return nil
}

func programRecord(student, teacher uuid.UUID, period string, minutes float64, completed bool) *types.EngagementRecord {
	pid := uuid.New()
	return &types.EngagementRecord{
		ID:               uuid.New(),
		UserID:           student,
		ProgramID:        pid,
		Program:          &types.Program{ID: pid, TeacherID: teacher},
		Period:           period,
		WatchTimeMinutes: minutes,
		IsCompleted:      completed,
	}
}

func moduleRecord(student, teacher uuid.UUID, period string, minutes float64, completed bool) *types.EngagementRecord {
	mid := uuid.New()
	return &types.EngagementRecord{
		ID:               uuid.New(),
		UserID:           student,
		ModuleID:         mid,
		Module:           &types.CourseModule{ID: mid, TeacherID: teacher},
		Period:           period,
		WatchTimeMinutes: minutes,
		IsCompleted:      completed,
	}
}
