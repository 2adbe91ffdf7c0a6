package scheduler

import (
	"context"
	"errors"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/coursova/backend/internal/logger"
	"github.com/coursova/backend/internal/repos"
	"github.com/coursova/backend/internal/services"
	"github.com/coursova/backend/internal/types"
)

// Scheduler runs the monthly revenue distribution for the previous calendar
// month. The status pre-check keeps a restarted process from re-triggering a
// settled period; the distributor enforces the same guard internally.
type Scheduler struct {
	cron        *cron.Cron
	log         *logger.Logger
	distributor services.RevenueDistributor
	poolRepo    repos.RevenuePoolRepo
	schedule    string
}

func New(
	baseLog *logger.Logger,
	distributor services.RevenueDistributor,
	poolRepo repos.RevenuePoolRepo,
	schedule string,
) *Scheduler {
	schedLog := baseLog.With("service", "Scheduler")
	c := cron.New(cron.WithChain(cron.Recover(cron.DefaultLogger)))
	return &Scheduler{
		cron:        c,
		log:         schedLog,
		distributor: distributor,
		poolRepo:    poolRepo,
		schedule:    schedule,
	}
}

func (s *Scheduler) Start() {
	if _, err := s.cron.AddFunc(s.schedule, s.RunMonthlyDistribution); err != nil {
		s.log.Error("failed to schedule monthly distribution job", "schedule", s.schedule, "error", err)
		return
	}
	s.log.Info("scheduled monthly distribution job", "schedule", s.schedule)
	s.cron.Start()
}

func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}

func (s *Scheduler) RunMonthlyDistribution() {
	ctx := context.Background()
	period := services.PreviousPeriod(time.Now())
	log := s.log.With("period", period)
	log.Info("starting monthly distribution job")

	pool, err := s.poolRepo.GetByPeriod(ctx, nil, period)
	if err != nil {
		log.Error("failed to load revenue pool, skipping run", "error", err)
		return
	}
	if pool != nil && pool.Status == types.PoolStatusDistributed {
		log.Info("period already distributed, skipping run")
		return
	}

	result, err := s.distributor.DistributeRevenue(ctx, period)
	if err != nil {
		if errors.Is(err, services.ErrPoolDistributed) || errors.Is(err, services.ErrPoolBusy) {
			log.Info("distribution already handled elsewhere", "reason", err)
			return
		}
		log.Error("monthly distribution failed", "error", err)
		return
	}

	log.Info("monthly distribution job finished",
		"distributed", result.Distributed,
		"failed", result.Failed,
		"total_amount", result.TotalAmount)
}
