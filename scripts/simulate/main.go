package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/sma-schedule-sim/internal/dto"
	"github.com/noah-isme/sma-schedule-sim/internal/models"
	"github.com/noah-isme/sma-schedule-sim/internal/repository"
	"github.com/noah-isme/sma-schedule-sim/internal/service"
	"github.com/noah-isme/sma-schedule-sim/pkg/cache"
	"github.com/noah-isme/sma-schedule-sim/pkg/config"
	"github.com/noah-isme/sma-schedule-sim/pkg/export"
	"github.com/noah-isme/sma-schedule-sim/pkg/logger"
	"github.com/noah-isme/sma-schedule-sim/pkg/solver"
)

// simulate drives one synthetic simulation end to end against the configured solver
// and prints the class timetables as CSV. With -issue-token it only prints a signed
// access token for local API testing, and -purge-sessions drops every persisted session.
func main() {
	var (
		issueRole string
		purge     bool
		teachers  int
		subjects  int
		grades    int
		perGrade  int
		periods   int
		timeout   time.Duration
	)

	flag.StringVar(&issueRole, "issue-token", "", "Print an access token for the given role and exit")
	flag.BoolVar(&purge, "purge-sessions", false, "Delete all sessions persisted in Redis and exit")
	flag.IntVar(&teachers, "teachers", 12, "Number of synthetic teachers")
	flag.IntVar(&subjects, "subjects", 8, "Number of synthetic subjects")
	flag.IntVar(&grades, "grades", 3, "Number of synthetic grades")
	flag.IntVar(&perGrade, "classes-per-grade", 2, "Classes per grade")
	flag.IntVar(&periods, "periods", 7, "Periods per day")
	flag.DurationVar(&timeout, "timeout", 5*time.Minute, "Overall timeout")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if issueRole != "" {
		tokens := service.NewTokenService(service.TokenConfig{
			Secret: cfg.JWT.Secret,
			Issuer: cfg.JWT.Issuer,
			Expiry: cfg.JWT.Expiry,
		})
		token, expires, err := tokens.Issue("cli", models.UserRole(issueRole), "", "simulate")
		if err != nil {
			logr.Fatal("failed to issue token", zap.Error(err))
		}
		fmt.Printf("%s\n# expires %s\n", token, expires.Format(time.RFC3339))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if purge {
		client, err := cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			logr.Fatal("failed to connect to redis", zap.Error(err))
		}
		repo := repository.NewSessionRepository(client, logr)
		defer repo.Close() //nolint:errcheck
		removed, err := repo.DeleteAll(ctx)
		if err != nil {
			logr.Fatal("failed to purge sessions", zap.Error(err))
		}
		fmt.Printf("removed %d sessions\n", removed)
		return
	}

	metrics := service.NewMetricsService()
	client := solver.New(cfg.Solver, logr)
	orchestrator := service.NewRunOrchestrator(client, metrics, logr)
	sessions := service.NewSessionStore(cfg.Simulator.SessionTTL, nil, metrics, logr, false)
	sims := service.NewSimulationService(sessions, nil, client, orchestrator, nil, nil, nil, nil, metrics, logr,
		service.SimulationServiceConfig{Defaults: models.SimulationConfig{
			Name:                    "CLI simulation",
			WorkingDays:             cfg.Simulator.WorkingDays,
			DefaultPeriodsPerDay:    periods,
			MaxTeacherPeriodsPerDay: cfg.Simulator.MaxTeacherPeriodsPerDay,
			MaxConsecutivePeriods:   cfg.Simulator.MaxConsecutivePeriods,
			TimeLimitSeconds:        cfg.Simulator.TimeLimitSeconds,
		}})

	if err := run(ctx, sims, models.SyntheticParams{
		NumTeachers:     teachers,
		NumSubjects:     subjects,
		NumGrades:       grades,
		ClassesPerGrade: perGrade,
		PeriodsPerDay:   periods,
	}); err != nil {
		logr.Error("simulation failed", zap.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, sims *service.SimulationService, params models.SyntheticParams) error {
	view, err := sims.CreateSession(ctx, dto.CreateSessionRequest{})
	if err != nil {
		return err
	}
	if _, err := sims.SelectDataSource(ctx, view.ID, dto.DataSourceRequest{Kind: models.DataSourceSynthetic, Params: &params}); err != nil {
		return fmt.Errorf("select data source: %w", err)
	}
	for _, strategy := range []string{dto.StrategyRandomizePeriods, dto.StrategyBalanceTeachers} {
		if _, err := sims.Distribute(ctx, view.ID, strategy); err != nil {
			return fmt.Errorf("%s: %w", strategy, err)
		}
	}
	if _, err := sims.Navigate(ctx, view.ID, dto.NavigateRequest{Action: "goto", Target: service.StepReviewAndRun.String()}); err != nil {
		return fmt.Errorf("navigate: %w", err)
	}

	outcome, err := sims.RunNow(ctx, view.ID)
	if err != nil {
		return err
	}
	fmt.Printf("status: %s\n", outcome.RunStatus())
	if failure, ok := outcome.(*models.FailureOutcome); ok {
		fmt.Printf("error: %s\n", failure.ErrorMessage)
		for _, c := range failure.Conflicts {
			fmt.Printf("conflict: %+v\n", c)
		}
		return nil
	}

	entities, err := sims.Entities(ctx, view.ID)
	if err != nil {
		return err
	}
	csv := export.NewCSVExporter()
	for _, class := range entities.Classes {
		grid, err := sims.ClassGrid(ctx, view.ID, class)
		if err != nil {
			return err
		}
		out, err := csv.Render(grid.Dataset())
		if err != nil {
			return err
		}
		fmt.Printf("\n# %s\n%s", class, out)
	}
	return nil
}
