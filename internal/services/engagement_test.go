package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/coursova/backend/internal/requestdata"
	"github.com/coursova/backend/internal/types"
)

func authedCtx(userID uuid.UUID) context.Context {
	return requestdata.WithRequestData(context.Background(), &requestdata.RequestData{
		UserID: userID,
		Role:   types.RoleStudent,
	})
}

func TestRecordWatchTime(t *testing.T) {
	repo := &fakeEngagementRepo{}
	svc := NewEngagementService(nil, testLogger(t), repo)

	userID := uuid.New()
	programID := uuid.New()
	occurredAt := time.Date(2025, 3, 20, 18, 0, 0, 0, time.UTC)

	rec, err := svc.RecordWatchTime(authedCtx(userID), WatchTimeInput{
		ProgramID:  &programID,
		Minutes:    12.5,
		OccurredAt: &occurredAt,
	})
	if err != nil {
		t.Fatalf("RecordWatchTime: %v", err)
	}
	if rec.UserID != userID {
		t.Fatalf("UserID = %s, want caller", rec.UserID)
	}
	if rec.Period != "2025-03" {
		t.Fatalf("Period = %q, want derived from event time", rec.Period)
	}
	if rec.ProgramID != programID || rec.ModuleID != uuid.Nil {
		t.Fatalf("content ids = %s/%s, want program only", rec.ProgramID, rec.ModuleID)
	}
	if rec.WatchTimeMinutes != 12.5 {
		t.Fatalf("WatchTimeMinutes = %v, want 12.5", rec.WatchTimeMinutes)
	}
}

func TestRecordWatchTimeRequiresExactlyOneContentID(t *testing.T) {
	repo := &fakeEngagementRepo{}
	svc := NewEngagementService(nil, testLogger(t), repo)
	ctx := authedCtx(uuid.New())

	programID := uuid.New()
	moduleID := uuid.New()

	if _, err := svc.RecordWatchTime(ctx, WatchTimeInput{Minutes: 1}); err == nil {
		t.Fatal("accepted input with no content id")
	}
	if _, err := svc.RecordWatchTime(ctx, WatchTimeInput{ProgramID: &programID, ModuleID: &moduleID, Minutes: 1}); err == nil {
		t.Fatal("accepted input with both content ids")
	}
	if len(repo.records) != 0 {
		t.Fatalf("persisted %d records, want none", len(repo.records))
	}
}

func TestRecordWatchTimeRejectsNegativeMinutes(t *testing.T) {
	svc := NewEngagementService(nil, testLogger(t), &fakeEngagementRepo{})
	programID := uuid.New()
	if _, err := svc.RecordWatchTime(authedCtx(uuid.New()), WatchTimeInput{ProgramID: &programID, Minutes: -1}); err == nil {
		t.Fatal("accepted negative minutes")
	}
}

func TestRecordWatchTimeUnauthenticated(t *testing.T) {
	svc := NewEngagementService(nil, testLogger(t), &fakeEngagementRepo{})
	programID := uuid.New()
	if _, err := svc.RecordWatchTime(context.Background(), WatchTimeInput{ProgramID: &programID, Minutes: 1}); err == nil {
		t.Fatal("accepted unauthenticated call")
	}
}
