package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/sma-schedule-sim/api/swagger"
	"github.com/noah-isme/sma-schedule-sim/internal/handler"
	internalmiddleware "github.com/noah-isme/sma-schedule-sim/internal/middleware"
	"github.com/noah-isme/sma-schedule-sim/internal/models"
	"github.com/noah-isme/sma-schedule-sim/internal/repository"
	"github.com/noah-isme/sma-schedule-sim/internal/service"
	"github.com/noah-isme/sma-schedule-sim/pkg/cache"
	"github.com/noah-isme/sma-schedule-sim/pkg/config"
	"github.com/noah-isme/sma-schedule-sim/pkg/database"
	"github.com/noah-isme/sma-schedule-sim/pkg/jobs"
	"github.com/noah-isme/sma-schedule-sim/pkg/logger"
	corsmiddleware "github.com/noah-isme/sma-schedule-sim/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/sma-schedule-sim/pkg/middleware/requestid"
	"github.com/noah-isme/sma-schedule-sim/pkg/solver"
	"github.com/noah-isme/sma-schedule-sim/pkg/storage"
)

// @title Schedule Simulation API
// @version 1.0.0
// @description Builds timetable problems, pre-fills them with heuristics and runs them on the external solver.
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

const sweepInterval = 5 * time.Minute

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	metrics := service.NewMetricsService()

	var sessionRepo service.SessionRepository
	if cfg.Simulator.PersistSessions {
		redisClient, err := cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, sessions stay in memory", zap.Error(err))
		} else {
			repo := repository.NewSessionRepository(redisClient, logr)
			defer repo.Close() //nolint:errcheck
			sessionRepo = repo
		}
	}

	var institution *repository.InstitutionRepository
	if cfg.Simulator.InstitutionSource {
		db, err := database.NewPostgres(ctx, cfg.Database)
		if err != nil {
			logr.Fatal("failed to connect to institution database", zap.Error(err))
		}
		defer db.Close() //nolint:errcheck
		institution = repository.NewInstitutionRepository(db)
	}

	exportStore, err := storage.NewLocalStorage(cfg.Exports.StorageDir)
	if err != nil {
		logr.Fatal("failed to prepare export storage", zap.Error(err))
	}
	exports := service.NewExportService(
		exportStore,
		storage.NewSignedURLSigner(cfg.Exports.SignedURLSecret, cfg.Exports.SignedURLTTL),
		service.ExportConfig{APIPrefix: cfg.APIPrefix, ResultTTL: 24 * time.Hour},
		logr,
	)

	solverClient := solver.New(cfg.Solver, logr)
	orchestrator := service.NewRunOrchestrator(solverClient, metrics, logr)
	sessions := service.NewSessionStore(cfg.Simulator.SessionTTL, sessionRepo, metrics, logr, institution != nil)
	worker := service.NewRunWorker(sessions, orchestrator, logr)
	runQueue := jobs.NewQueue("simulation-runs", worker.Handle, jobs.QueueConfig{
		Workers:    cfg.Simulator.RunWorkers,
		MaxRetries: -1,
		Logger:     logr,
	})
	runQueue.Start(ctx)
	defer runQueue.Stop()

	var institutionSource interface {
		FetchSnapshot(context.Context) (*models.InstitutionSnapshot, error)
	}
	if institution != nil {
		institutionSource = institution
	}
	simulations := service.NewSimulationService(
		sessions,
		institutionSource,
		solverClient,
		orchestrator,
		runQueue,
		service.NewDistributor(nil),
		exports,
		validator.New(),
		metrics,
		logr,
		service.SimulationServiceConfig{Defaults: defaultSimulationConfig(cfg.Simulator)},
	)
	tokens := service.NewTokenService(service.TokenConfig{
		Secret: cfg.JWT.Secret,
		Issuer: cfg.JWT.Issuer,
		Expiry: cfg.JWT.Expiry,
	})

	go sweep(ctx, simulations, exports, logr)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(internalmiddleware.Metrics(metrics, "/metrics", "/health"))
	r.Use(internalmiddleware.WithResponseMeta())

	metricsHandler := handler.NewMetricsHandler(metrics)
	r.GET("/health", metricsHandler.Health)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	simulationHandler := handler.NewSimulationHandler(simulations)
	api := r.Group(cfg.APIPrefix)
	simulationHandler.RegisterDownload(api)

	secured := api.Group("")
	secured.Use(internalmiddleware.JWT(tokens))
	secured.GET("/metrics/summary", internalmiddleware.RequireRoles(models.RoleSuperAdmin, models.RoleAdmin), metricsHandler.Summary)
	simulationHandler.RegisterRoutes(secured, internalmiddleware.Audit(logr, "simulation"))

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Warn("graceful shutdown failed", zap.Error(err))
	}
}

func defaultSimulationConfig(cfg config.SimulatorConfig) models.SimulationConfig {
	return models.SimulationConfig{
		Name:                    "Simulation",
		WorkingDays:             append([]string(nil), cfg.WorkingDays...),
		DefaultPeriodsPerDay:    cfg.DefaultPeriodsPerDay,
		MaxTeacherPeriodsPerDay: cfg.MaxTeacherPeriodsPerDay,
		MaxConsecutivePeriods:   cfg.MaxConsecutivePeriods,
		TimeLimitSeconds:        cfg.TimeLimitSeconds,
	}
}

func sweep(ctx context.Context, simulations *service.SimulationService, exports *service.ExportService, logr *zap.Logger) {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			simulations.SweepSessions(ctx)
			if removed, err := exports.Cleanup(24 * time.Hour); err != nil {
				logr.Warn("export cleanup failed", zap.Error(err))
			} else if len(removed) > 0 {
				logr.Info("removed expired exports", zap.Int("count", len(removed)))
			}
		}
	}
}
