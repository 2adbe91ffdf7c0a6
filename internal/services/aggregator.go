package services

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/coursova/backend/internal/logger"
	"github.com/coursova/backend/internal/repos"
	"github.com/coursova/backend/internal/types"
)

// EngagementTotals is the per-period rollup the distribution math runs on.
type EngagementTotals struct {
	TotalWatchTime      float64
	TotalCompleted      int
	PerTeacherWatchTime map[uuid.UUID]float64
	PerTeacherCompleted map[uuid.UUID]int
	PerTeacherStudents  map[uuid.UUID]int
}

type EngagementAggregator interface {
	Aggregate(ctx context.Context, tx *gorm.DB, period string) (*EngagementTotals, error)
}

type engagementAggregator struct {
	log            *logger.Logger
	engagementRepo repos.EngagementRepo
}

func NewEngagementAggregator(baseLog *logger.Logger, engagementRepo repos.EngagementRepo) EngagementAggregator {
	return &engagementAggregator{
		log:            baseLog.With("service", "EngagementAggregator"),
		engagementRepo: engagementRepo,
	}
}

// Aggregate buckets a period's engagement by owning teacher. Records whose
// content no longer resolves to a teacher are skipped with a warning; they
// must not sink a whole distribution run. Pure read, safe to repeat.
func (a *engagementAggregator) Aggregate(ctx context.Context, tx *gorm.DB, period string) (*EngagementTotals, error) {
	if _, _, err := ParsePeriod(period); err != nil {
		return nil, err
	}

	records, err := a.engagementRepo.GetByPeriod(ctx, tx, period)
	if err != nil {
		return nil, err
	}

	totals := &EngagementTotals{
		PerTeacherWatchTime: map[uuid.UUID]float64{},
		PerTeacherCompleted: map[uuid.UUID]int{},
		PerTeacherStudents:  map[uuid.UUID]int{},
	}
	studentsSeen := map[uuid.UUID]map[uuid.UUID]struct{}{}

	for _, rec := range records {
		if rec == nil {
			continue
		}
		teacherID, ok := resolveOwningTeacher(rec)
		if !ok {
			a.log.Warn("engagement record does not resolve to a teacher, skipping",
				"record_id", rec.ID, "period", period,
				"program_id", rec.ProgramID, "module_id", rec.ModuleID)
			continue
		}

		totals.TotalWatchTime += rec.WatchTimeMinutes
		totals.PerTeacherWatchTime[teacherID] += rec.WatchTimeMinutes
		if rec.IsCompleted {
			totals.TotalCompleted++
			totals.PerTeacherCompleted[teacherID]++
		}

		if _, ok := studentsSeen[teacherID]; !ok {
			studentsSeen[teacherID] = map[uuid.UUID]struct{}{}
		}
		if _, seen := studentsSeen[teacherID][rec.UserID]; !seen {
			studentsSeen[teacherID][rec.UserID] = struct{}{}
			totals.PerTeacherStudents[teacherID]++
		}
	}

	return totals, nil
}

// resolveOwningTeacher maps a record to its teacher through the program or
// module relation; the two foreign keys are mutually exclusive.
func resolveOwningTeacher(rec *types.EngagementRecord) (uuid.UUID, bool) {
	if rec.Program != nil && rec.Program.TeacherID != uuid.Nil {
		return rec.Program.TeacherID, true
	}
	if rec.Module != nil && rec.Module.TeacherID != uuid.Nil {
		return rec.Module.TeacherID, true
	}
	return uuid.Nil, false
}
