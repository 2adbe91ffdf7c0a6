package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/coursova/backend/internal/types"
)

func PtrUUID(id uuid.UUID) *uuid.UUID { return &id }

func SeedUser(tb testing.TB, ctx context.Context, tx *gorm.DB, email, role string) *types.User {
	tb.Helper()
	u := &types.User{
		ID:        uuid.New(),
		Email:     email,
		Password:  "pw",
		FirstName: "A",
		LastName:  "B",
		Role:      role,
	}
	if err := tx.WithContext(ctx).Create(u).Error; err != nil {
		tb.Fatalf("seed user: %v", err)
	}
	return u
}

func SeedProgram(tb testing.TB, ctx context.Context, tx *gorm.DB, teacherID uuid.UUID) *types.Program {
	tb.Helper()
	p := &types.Program{
		ID:        uuid.New(),
		TeacherID: teacherID,
		Title:     "program",
	}
	if err := tx.WithContext(ctx).Create(p).Error; err != nil {
		tb.Fatalf("seed program: %v", err)
	}
	return p
}

func SeedModule(tb testing.TB, ctx context.Context, tx *gorm.DB, teacherID uuid.UUID) *types.CourseModule {
	tb.Helper()
	m := &types.CourseModule{
		ID:        uuid.New(),
		TeacherID: teacherID,
		Title:     "module",
	}
	if err := tx.WithContext(ctx).Create(m).Error; err != nil {
		tb.Fatalf("seed module: %v", err)
	}
	return m
}

func SeedSubscription(tb testing.TB, ctx context.Context, tx *gorm.DB, userID uuid.UUID, amount float64, status string, startsAt, expiresAt time.Time) *types.Subscription {
	tb.Helper()
	s := &types.Subscription{
		ID:        uuid.New(),
		UserID:    userID,
		Amount:    amount,
		Status:    status,
		StartsAt:  startsAt,
		ExpiresAt: expiresAt,
	}
	if err := tx.WithContext(ctx).Create(s).Error; err != nil {
		tb.Fatalf("seed subscription: %v", err)
	}
	return s
}

func SeedEngagement(tb testing.TB, ctx context.Context, tx *gorm.DB, userID uuid.UUID, programID, moduleID uuid.UUID, period string, minutes float64, completed bool) *types.EngagementRecord {
	tb.Helper()
	e := &types.EngagementRecord{
		ID:               uuid.New(),
		UserID:           userID,
		ProgramID:        programID,
		ModuleID:         moduleID,
		Period:           period,
		WatchTimeMinutes: minutes,
		IsCompleted:      completed,
		LastWatchedAt:    time.Now().UTC(),
	}
	if err := tx.WithContext(ctx).Create(e).Error; err != nil {
		tb.Fatalf("seed engagement: %v", err)
	}
	return e
}

func SeedPool(tb testing.TB, ctx context.Context, tx *gorm.DB, period, status string) *types.RevenuePool {
	tb.Helper()
	start, _ := time.ParseInLocation("2006-01", period, time.UTC)
	p := &types.RevenuePool{
		ID:          uuid.New(),
		Period:      period,
		PeriodStart: start,
		PeriodEnd:   start.AddDate(0, 1, 0).Add(-time.Second),
		Status:      status,
	}
	if err := tx.WithContext(ctx).Create(p).Error; err != nil {
		tb.Fatalf("seed pool: %v", err)
	}
	return p
}
