package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/sma-schedule-sim/internal/models"
	"github.com/noah-isme/sma-schedule-sim/pkg/solver"
)

type simulationSolver interface {
	CreateSimulation(ctx context.Context, name string, instance models.Snapshot) (string, error)
	RunSimulation(ctx context.Context, id string) (*solver.RunResponse, error)
}

// RunOrchestrator submits a model to the solver and normalises whatever comes back.
// Execute never returns an error: every failure becomes an error outcome.
type RunOrchestrator struct {
	solver  simulationSolver
	metrics *MetricsService
	logger  *zap.Logger
	now     func() time.Time
}

// NewRunOrchestrator wires the orchestrator.
func NewRunOrchestrator(client simulationSolver, metrics *MetricsService, logger *zap.Logger) *RunOrchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RunOrchestrator{solver: client, metrics: metrics, logger: logger, now: time.Now}
}

// Execute creates a simulation from instance and runs it.
func (o *RunOrchestrator) Execute(ctx context.Context, instance models.Snapshot) (outcome models.RunOutcome) {
	start := o.now()
	simulationID := ""
	defer func() {
		if r := recover(); r != nil {
			o.logger.Error("simulation run panicked", zap.Any("panic", r), zap.String("simulation_id", simulationID))
			outcome = &models.FailureOutcome{
				Status:       models.RunStatusError,
				SimulationID: simulationID,
				ErrorMessage: fmt.Sprintf("simulation run failed unexpectedly: %v", r),
			}
		}
		o.metrics.ObserveSimulationRun(outcome.RunStatus(), o.now().Sub(start))
		o.logger.Info("simulation run finished",
			zap.String("simulation_id", simulationID),
			zap.String("status", string(outcome.RunStatus())),
			zap.Duration("duration", o.now().Sub(start)),
		)
	}()

	if o.solver == nil {
		return &models.FailureOutcome{Status: models.RunStatusError, ErrorMessage: "solver is not configured"}
	}

	name := strings.TrimSpace(instance.Config.Name)
	id, err := o.solver.CreateSimulation(ctx, name, instance)
	if err != nil {
		o.logger.Warn("failed to create simulation", zap.Error(err))
		return &models.FailureOutcome{
			Status:       models.RunStatusError,
			ErrorMessage: fmt.Sprintf("failed to create simulation: %v", err),
		}
	}
	simulationID = id

	resp, err := o.solver.RunSimulation(ctx, id)
	if err != nil {
		o.logger.Warn("failed to run simulation", zap.String("simulation_id", id), zap.Error(err))
		return &models.FailureOutcome{
			Status:       models.RunStatusError,
			SimulationID: id,
			ErrorMessage: fmt.Sprintf("failed to run simulation: %v", err),
		}
	}
	return normalizeRun(id, resp)
}

// normalizeRun maps a raw solver answer onto the five run statuses.
func normalizeRun(simulationID string, resp *solver.RunResponse) models.RunOutcome {
	if resp == nil {
		return &models.FailureOutcome{
			Status:       models.RunStatusError,
			SimulationID: simulationID,
			ErrorMessage: "solver returned an empty response",
		}
	}

	if !resp.Success {
		status := models.RunStatusError
		if len(resp.Conflicts) > 0 || (resp.Result != nil && strings.EqualFold(resp.Result.Status, string(models.RunStatusInfeasible))) {
			status = models.RunStatusInfeasible
		}
		msg := strings.TrimSpace(resp.Message)
		if msg == "" {
			if status == models.RunStatusInfeasible {
				msg = "no timetable satisfies the constraints"
			} else {
				msg = "simulation failed"
			}
		}
		return &models.FailureOutcome{
			Status:          status,
			SimulationID:    simulationID,
			ErrorMessage:    msg,
			Conflicts:       resp.Conflicts,
			ConflictHeatmap: resp.ConflictHeatmap,
		}
	}

	if resp.Result == nil || len(resp.Result.Schedule) == 0 {
		status := models.RunStatusError
		msg := "solver reported success without a schedule"
		if resp.Result != nil && strings.EqualFold(resp.Result.Status, string(models.RunStatusTimeout)) {
			status = models.RunStatusTimeout
			msg = "solver hit its time limit before finding a schedule"
		}
		return &models.FailureOutcome{
			Status:          status,
			SimulationID:    simulationID,
			ErrorMessage:    msg,
			Conflicts:       resp.Conflicts,
			ConflictHeatmap: resp.ConflictHeatmap,
		}
	}

	result := resp.Result
	out := &models.ScheduleOutcome{
		Status:        successStatus(result.Status),
		SimulationID:  simulationID,
		SolvingTimeMs: result.SolvingTimeMs,
		Schedule:      result.Schedule,
		ByTeacher:     result.ByTeacher,
		ByClass:       result.ByClass,
		QualityReport: result.QualityReport,
	}
	if len(out.ByTeacher) == 0 {
		out.ByTeacher = groupSchedule(result.Schedule, func(e models.ScheduleEntry) (string, models.GridCell) {
			return e.Teacher, models.GridCell{Subject: e.Subject, Class: e.Class}
		})
	}
	if len(out.ByClass) == 0 {
		out.ByClass = groupSchedule(result.Schedule, func(e models.ScheduleEntry) (string, models.GridCell) {
			return e.Class, models.GridCell{Subject: e.Subject, Teacher: e.Teacher}
		})
	}
	return out
}

func successStatus(raw string) models.RunStatus {
	switch models.RunStatus(strings.ToLower(strings.TrimSpace(raw))) {
	case models.RunStatusOptimal:
		return models.RunStatusOptimal
	case models.RunStatusTimeout:
		return models.RunStatusTimeout
	default:
		return models.RunStatusFeasible
	}
}

func groupSchedule(entries []models.ScheduleEntry, key func(models.ScheduleEntry) (string, models.GridCell)) map[string]models.WeekGrid {
	grids := make(map[string]models.WeekGrid)
	for _, e := range entries {
		name, cell := key(e)
		if name == "" {
			continue
		}
		grid, ok := grids[name]
		if !ok {
			grid = make(models.WeekGrid)
			grids[name] = grid
		}
		if grid[e.Day] == nil {
			grid[e.Day] = make(map[int]models.GridCell)
		}
		grid[e.Day][e.Period] = cell
	}
	return grids
}
