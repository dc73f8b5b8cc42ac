package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mo-amir99/techboost-server-go/internal/bootstrap"
	"github.com/mo-amir99/techboost-server-go/internal/features/statistic"
	"github.com/mo-amir99/techboost-server-go/internal/http/routes"
	authmw "github.com/mo-amir99/techboost-server-go/internal/middleware"
	"github.com/mo-amir99/techboost-server-go/pkg/cache"
	"github.com/mo-amir99/techboost-server-go/pkg/config"
	"github.com/mo-amir99/techboost-server-go/pkg/database"
	"github.com/mo-amir99/techboost-server-go/pkg/health"
	"github.com/mo-amir99/techboost-server-go/pkg/jobs"
	"github.com/mo-amir99/techboost-server-go/pkg/logger"
	"github.com/mo-amir99/techboost-server-go/pkg/metrics"
	"github.com/mo-amir99/techboost-server-go/pkg/middleware"
	"github.com/mo-amir99/techboost-server-go/pkg/request"
	socketioserver "github.com/mo-amir99/techboost-server-go/pkg/socketio"
	"github.com/mo-amir99/techboost-server-go/pkg/validation"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	appLogger, err := logger.New(cfg.LogLevel, cfg.LogDir)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := validation.Register(); err != nil {
		appLogger.Error("validator registration failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	db, err := database.ConnectWithRetry(ctx, cfg.Database, appLogger, 5, time.Second)
	if err != nil {
		appLogger.Error("database connection failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	defer func() {
		if err := database.Close(db, appLogger); err != nil {
			appLogger.Error("database close failed", slog.String("error", err.Error()))
		}
	}()

	if err := bootstrap.ApplyDatabaseMigrations(ctx, db, cfg, appLogger); err != nil {
		appLogger.Error("migrations failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if err := bootstrap.EnsureAdmin(ctx, db, cfg.Auth, appLogger); err != nil {
		appLogger.Error("ensure admin failed", slog.String("error", err.Error()))
	}

	cacheClient, err := cache.New(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		appLogger.Error("cache connection failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer cacheClient.Close()

	authenticator := authmw.NewAuthenticator(authmw.NewGormIdentityStore(db), cfg.Auth.JWTSecret, appLogger)

	// Socket.IO pushes enrollment and completion events to the user's room.
	socketIOServer := socketioserver.NewServer(appLogger, authenticator.AuthenticateUserID)
	defer socketIOServer.Close()

	appLogger.Info("socket.io server initialized")

	statisticService := statistic.NewService(statistic.NewGormStore(db), cacheClient, cfg.Stats.CacheTTL, appLogger)

	scheduler := jobs.NewScheduler(appLogger)
	if err := scheduler.AddJob(statistic.NewReconcileJob(statisticService, appLogger), cfg.Stats.ReconcileInterval, true); err != nil {
		appLogger.Error("schedule statistics reconcile failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
	scheduler.Start()
	defer scheduler.Stop()

	router := gin.New()

	// Socket.IO needs minimal middleware - just recovery and CORS
	router.Use(middleware.Recovery(appLogger))
	router.Use(middleware.CORS(cfg.AllowedOrigins))

	router.GET("/socket.io/*any", gin.WrapH(socketIOServer.GetHandler()))
	router.POST("/socket.io/*any", gin.WrapH(socketIOServer.GetHandler()))

	// Now apply full middleware stack for all other routes
	router.Use(middleware.RequestID())
	router.Use(middleware.RequestLogger(appLogger))
	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.RequestSizeLimit(cfg.MaxBodyBytes))
	router.Use(middleware.Timeout(cfg.RequestTimeout))
	router.Use(metrics.Middleware())
	router.Use(request.Handler(appLogger))

	rateLimiter := middleware.NewRateLimiter(cacheClient, appLogger, cfg.RateLimit.Requests, cfg.RateLimit.Window)
	router.Use(rateLimiter.Middleware())

	healthHandler := health.NewHandler(appLogger, map[string]health.Checker{
		"database": func(ctx context.Context) error { return database.Ping(ctx, db) },
		"cache":    cacheClient.Ping,
	})

	routes.Register(router, routes.Dependencies{
		Config:        cfg,
		DB:            db,
		Logger:        appLogger,
		Authenticator: authenticator,
		Statistics:    statisticService,
		Notifier:      socketIOServer,
		Health:        healthHandler,
	})

	srv := &http.Server{
		Addr:              cfg.ServerAddress(),
		Handler:           router,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	go func() {
		appLogger.Info("server starting",
			slog.String("addr", cfg.ServerAddress()),
			slog.String("env", cfg.Env),
			slog.String("log_level", cfg.LogLevel),
		)

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Error("server listen failed", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	appLogger.Info("server started successfully")

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("server shutdown failed", slog.String("error", err.Error()))
	} else {
		appLogger.Info("server stopped gracefully")
	}
}
