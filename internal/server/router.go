package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/coursova/backend/internal/handlers"
	"github.com/coursova/backend/internal/middleware"
	"github.com/coursova/backend/internal/types"
)

type RouterConfig struct {
	AuthHandler         *handlers.AuthHandler
	AuthMiddleware      *middleware.AuthMiddleware
	SubscriptionHandler *handlers.SubscriptionHandler
	EngagementHandler   *handlers.EngagementHandler
	EarningsHandler     *handlers.EarningsHandler
	RevenueHandler      *handlers.RevenueHandler
	AllowOrigins        []string
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()
	router.Use(otelgin.Middleware("coursova-backend"))

	allowOrigins := cfg.AllowOrigins
	if len(allowOrigins) == 0 {
		allowOrigins = []string{"http://localhost:3000"}
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins:     allowOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

	// Public
	router.GET("/healthcheck", handlers.HealthCheck)
	router.POST("/register", cfg.AuthHandler.Register)
	router.POST("/login", cfg.AuthHandler.Login)

	// Protected
	protected := router.Group("/")
	protected.Use(cfg.AuthMiddleware.RequireAuth())
	// Subscriptions
	protected.POST("/subscriptions", cfg.SubscriptionHandler.Subscribe)
	protected.POST("/subscriptions/:id/cancel", cfg.SubscriptionHandler.Cancel)
	protected.GET("/subscriptions", cfg.SubscriptionHandler.ListMine)
	// Engagement
	protected.POST("/engagement/watch", cfg.EngagementHandler.RecordWatchTime)
	// Teacher earnings
	protected.GET("/teacher/earnings", cfg.EarningsHandler.ListMine)

	// Admin
	admin := router.Group("/admin")
	admin.Use(cfg.AuthMiddleware.RequireAuth(), cfg.AuthMiddleware.RequireRole(types.RoleAdmin))
	admin.POST("/revenue/distribute", cfg.RevenueHandler.Distribute)
	admin.GET("/revenue/pools/:period", cfg.RevenueHandler.GetPool)

	return router
}
