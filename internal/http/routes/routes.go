package routes

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/mo-amir99/techboost-server-go/internal/features/auth"
	"github.com/mo-amir99/techboost-server-go/internal/features/course"
	"github.com/mo-amir99/techboost-server-go/internal/features/enrollment"
	"github.com/mo-amir99/techboost-server-go/internal/features/lesson"
	"github.com/mo-amir99/techboost-server-go/internal/features/statistic"
	"github.com/mo-amir99/techboost-server-go/internal/features/user"
	"github.com/mo-amir99/techboost-server-go/internal/middleware"
	"github.com/mo-amir99/techboost-server-go/pkg/config"
	"github.com/mo-amir99/techboost-server-go/pkg/health"
	"github.com/mo-amir99/techboost-server-go/pkg/metrics"
)

// Dependencies are the shared services the feature routes are built from.
type Dependencies struct {
	Config        *config.Config
	DB            *gorm.DB
	Logger        *slog.Logger
	Authenticator *middleware.Authenticator
	Statistics    *statistic.Service
	Notifier      enrollment.Notifier
	Health        *health.Handler
}

// Register wires all feature routes onto the engine.
func Register(engine *gin.Engine, deps Dependencies) {
	cfg, db, logger := deps.Config, deps.DB, deps.Logger

	// Probes and metrics stay outside the rate limited API surface.
	if deps.Health != nil {
		health.RegisterRoutes(engine, deps.Health)
	}
	engine.GET("/metrics", gin.WrapH(metrics.Handler()))

	api := engine.Group("")

	acAuth := deps.Authenticator.RequireAuth()
	acAdmin := deps.Authenticator.RequireAdmin()

	tokens := auth.TokenConfig{
		JWTSecret:  cfg.Auth.JWTSecret,
		Expiry:     cfg.Auth.TokenExpiry,
		BcryptCost: cfg.Auth.BcryptCost,
	}

	authHandler := auth.NewHandler(db, logger, tokens)
	auth.RegisterRoutes(api, authHandler)

	userHandler := user.NewHandler(db, logger, tokens.Issue, cfg.Auth.BcryptCost)
	user.RegisterRoutes(api, userHandler, acAuth, acAdmin)

	enrollmentService := enrollment.NewService(
		enrollment.NewGormStore(db),
		enrollment.NewGormCatalog(db),
		deps.Statistics,
		deps.Notifier,
		logger,
	)
	enrollmentHandler := enrollment.NewHandler(enrollmentService, logger)
	enrollment.RegisterRoutes(api, enrollmentHandler, acAuth)

	courseHandler := course.NewHandler(db, logger, deps.Statistics)
	course.RegisterRoutes(api, courseHandler, acAdmin)

	lessonHandler := lesson.NewHandler(db, logger)
	lesson.RegisterRoutes(api, lessonHandler)

	statisticHandler := statistic.NewHandler(deps.Statistics, logger)
	statistic.RegisterRoutes(api, statisticHandler, acAdmin)
}
