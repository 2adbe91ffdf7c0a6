package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/coursova/backend/internal/logger"
	"github.com/coursova/backend/internal/repos"
	"github.com/coursova/backend/internal/requestdata"
	"github.com/coursova/backend/internal/types"
)

type WatchTimeInput struct {
	ProgramID   *uuid.UUID `json:"program_id,omitempty"`
	ModuleID    *uuid.UUID `json:"module_id,omitempty"`
	Minutes     float64    `json:"minutes"`
	IsCompleted bool       `json:"is_completed"`
	OccurredAt  *time.Time `json:"occurred_at,omitempty"`
}

type EngagementService interface {
	RecordWatchTime(ctx context.Context, input WatchTimeInput) (*types.EngagementRecord, error)
}

type engagementService struct {
	db             *gorm.DB
	log            *logger.Logger
	engagementRepo repos.EngagementRepo
}

func NewEngagementService(db *gorm.DB, baseLog *logger.Logger, engagementRepo repos.EngagementRepo) EngagementService {
	return &engagementService{
		db:             db,
		log:            baseLog.With("service", "EngagementService"),
		engagementRepo: engagementRepo,
	}
}

// RecordWatchTime folds a watch event into the student's per-period engagement
// record. The upsert keyed by (student, content, period) makes repeated and
// out-of-order events safe.
func (s *engagementService) RecordWatchTime(ctx context.Context, input WatchTimeInput) (*types.EngagementRecord, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, fmt.Errorf("not authenticated")
	}

	hasProgram := input.ProgramID != nil && *input.ProgramID != uuid.Nil
	hasModule := input.ModuleID != nil && *input.ModuleID != uuid.Nil
	if hasProgram == hasModule {
		return nil, fmt.Errorf("exactly one of program_id or module_id is required")
	}
	if input.Minutes < 0 {
		return nil, fmt.Errorf("minutes must not be negative")
	}

	occurredAt := time.Now().UTC()
	if input.OccurredAt != nil && !input.OccurredAt.IsZero() {
		occurredAt = input.OccurredAt.UTC()
	}

	rec := &types.EngagementRecord{
		UserID:           rd.UserID,
		Period:           PeriodOf(occurredAt),
		WatchTimeMinutes: input.Minutes,
		IsCompleted:      input.IsCompleted,
		LastWatchedAt:    occurredAt,
	}
	if hasProgram {
		rec.ProgramID = *input.ProgramID
	} else {
		rec.ModuleID = *input.ModuleID
	}

	persisted, err := s.engagementRepo.UpsertWatchTime(ctx, nil, rec)
	if err != nil {
		s.log.Warn("watch time upsert failed", "error", err, "user_id", rd.UserID)
		return nil, err
	}
	return persisted, nil
}
