package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/coursova/backend/internal/clients/redis"
	"github.com/coursova/backend/internal/db"
	"github.com/coursova/backend/internal/handlers"
	"github.com/coursova/backend/internal/logger"
	"github.com/coursova/backend/internal/middleware"
	"github.com/coursova/backend/internal/observability"
	"github.com/coursova/backend/internal/repos"
	"github.com/coursova/backend/internal/scheduler"
	"github.com/coursova/backend/internal/server"
	"github.com/coursova/backend/internal/services"
	"github.com/coursova/backend/internal/utils"
)

func main() {
	// Logger
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Env
	log.Info("Loading environment variables from main...")
	jwtSecretKey := utils.GetEnv("JWT_SECRET_KEY", "defaultsecret", log)
	accessTokenTTL := utils.GetEnvAsInt("ACCESS_TOKEN_TTL", 3600, log)
	monthlyPrice := utils.GetEnvAsFloat("SUBSCRIPTION_MONTHLY_PRICE", 6.0, log)
	distributionSchedule := utils.GetEnv("DISTRIBUTION_CRON", "0 3 1 * *", log)
	leaseTTLMinutes := utils.GetEnvAsInt("DISTRIBUTION_LEASE_TTL_MINUTES", 10, log)

	// Tracing
	otelShutdown := observability.InitOTel(context.Background(), log, observability.OtelConfig{
		ServiceName: "coursova-backend",
		Environment: utils.GetEnv("DEPLOY_ENV", "development", log),
		Version:     utils.GetEnv("SERVICE_VERSION", "dev", log),
	})

	// Postgres
	postgresService, err := db.NewPostgresService(log)
	if err != nil {
		log.Error("Postgres init failed", "error", err)
		os.Exit(1)
	}
	if err = postgresService.AutoMigrateAll(); err != nil {
		log.Warn("Postgres auto migration failed", "error", err)
	}
	thePG := postgresService.DB()

	// Repos
	log.Info("Setting up Repos from main...")
	userRepo := repos.NewUserRepo(thePG, log)
	subscriptionRepo := repos.NewSubscriptionRepo(thePG, log)
	accessGrantRepo := repos.NewAccessGrantRepo(thePG, log)
	engagementRepo := repos.NewEngagementRepo(thePG, log)
	revenuePoolRepo := repos.NewRevenuePoolRepo(thePG, log)
	teacherEarningRepo := repos.NewTeacherEarningRepo(thePG, log)

	// Period lease (optional: falls back to the pool status guard alone)
	var lease services.PeriodLease
	if rl, err := redis.NewPeriodLease(log, time.Duration(leaseTTLMinutes)*time.Minute); err != nil {
		log.Warn("Could not init period lease, continuing without it", "error", err)
	} else {
		lease = rl
		defer rl.Close()
	}

	// Services
	log.Info("Setting up Services from main...")
	authService := services.NewAuthService(thePG, log, userRepo, jwtSecretKey, time.Duration(accessTokenTTL)*time.Second)
	accessGranter := services.NewAccessGranter(log, accessGrantRepo)
	subscriptionService := services.NewSubscriptionService(thePG, log, subscriptionRepo, accessGranter, monthlyPrice)
	engagementService := services.NewEngagementService(thePG, log, engagementRepo)
	aggregator := services.NewEngagementAggregator(log, engagementRepo)
	poolCalculator := services.NewPoolCalculator(log, subscriptionRepo, revenuePoolRepo, aggregator)
	distributor := services.NewRevenueDistributor(thePG, log, poolCalculator, aggregator, revenuePoolRepo, teacherEarningRepo, lease)

	// Handlers
	log.Info("Setting up handlers from main...")
	authHandler := handlers.NewAuthHandler(authService)
	subscriptionHandler := handlers.NewSubscriptionHandler(log, subscriptionService)
	engagementHandler := handlers.NewEngagementHandler(log, engagementService)
	earningsHandler := handlers.NewEarningsHandler(log, teacherEarningRepo)
	revenueHandler := handlers.NewRevenueHandler(log, distributor, revenuePoolRepo)

	// Middleware
	authMiddleware := middleware.NewAuthMiddleware(log, authService)

	// Router
	log.Info("Setting up router from main...")
	router := server.NewRouter(server.RouterConfig{
		AuthHandler:         authHandler,
		AuthMiddleware:      authMiddleware,
		SubscriptionHandler: subscriptionHandler,
		EngagementHandler:   engagementHandler,
		EarningsHandler:     earningsHandler,
		RevenueHandler:      revenueHandler,
	})

	// Scheduler
	sched := scheduler.New(log, distributor, revenuePoolRepo, distributionSchedule)
	sched.Start()

	port := utils.GetEnv("PORT", "8080", log)
	srv := &http.Server{Addr: ":" + port, Handler: router}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("Server listening", "port", port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gCtx.Done()
		log.Info("Shutting down...")
		<-sched.Stop().Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if otelShutdown != nil {
			_ = otelShutdown(shutdownCtx)
		}
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("Server failed", "error", err)
	}
}
