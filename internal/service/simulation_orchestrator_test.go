package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-schedule-sim/internal/models"
	"github.com/noah-isme/sma-schedule-sim/pkg/solver"
)

type solverStub struct {
	createID   string
	createErr  error
	runResp    *solver.RunResponse
	runErr     error
	panicOnRun bool

	createdName     string
	createdInstance models.Snapshot
	runID           string
}

func (s *solverStub) CreateSimulation(_ context.Context, name string, instance models.Snapshot) (string, error) {
	s.createdName = name
	s.createdInstance = instance
	return s.createID, s.createErr
}

func (s *solverStub) RunSimulation(_ context.Context, id string) (*solver.RunResponse, error) {
	s.runID = id
	if s.panicOnRun {
		panic("decoder exploded")
	}
	return s.runResp, s.runErr
}

func sampleSchedule() []models.ScheduleEntry {
	return []models.ScheduleEntry{
		{Teacher: "Ana", Subject: "Math", Class: "Grade 1 A", Day: "Sunday", Period: 1},
		{Teacher: "Ana", Subject: "Math", Class: "Grade 1 B", Day: "Sunday", Period: 2},
		{Teacher: "Budi", Subject: "Art", Class: "Grade 1 A", Day: "Monday", Period: 3},
	}
}

func TestRunOrchestratorSuccessDerivesGrids(t *testing.T) {
	stub := &solverStub{createID: "sim-1", runResp: &solver.RunResponse{
		Success: true,
		Result:  &solver.RunResult{Status: "OPTIMAL", SolvingTimeMs: 800, Schedule: sampleSchedule()},
	}}
	orch := NewRunOrchestrator(stub, NewMetricsService(), nil)
	instance := models.Snapshot{Config: testSimulationConfig()}

	out := orch.Execute(context.Background(), instance)

	sched, ok := out.(*models.ScheduleOutcome)
	require.True(t, ok)
	assert.Equal(t, models.RunStatusOptimal, sched.Status)
	assert.Equal(t, "sim-1", sched.SimulationID)
	assert.Equal(t, "sim-1", stub.runID)
	assert.Equal(t, "Term 1 draft", stub.createdName)
	require.Len(t, sched.ByTeacher, 2)
	cell, ok := sched.ByTeacher["Ana"].Cell("Sunday", 2)
	require.True(t, ok)
	assert.Equal(t, "Grade 1 B", cell.Class)
	cell, ok = sched.ByClass["Grade 1 A"].Cell("Monday", 3)
	require.True(t, ok)
	assert.Equal(t, "Budi", cell.Teacher)
}

func TestRunOrchestratorFailureModes(t *testing.T) {
	cases := []struct {
		name    string
		stub    *solverStub
		status  models.RunStatus
		message string
	}{
		{
			name:    "create fails",
			stub:    &solverStub{createErr: errors.New("connection refused")},
			status:  models.RunStatusError,
			message: "connection refused",
		},
		{
			name:    "run transport fails",
			stub:    &solverStub{createID: "sim-2", runErr: &solver.APIError{StatusCode: 502}},
			status:  models.RunStatusError,
			message: "status 502",
		},
		{
			name:    "run panics",
			stub:    &solverStub{createID: "sim-3", panicOnRun: true},
			status:  models.RunStatusError,
			message: "decoder exploded",
		},
		{
			name: "infeasible with conflicts",
			stub: &solverStub{createID: "sim-4", runResp: &solver.RunResponse{
				Message:   "overloaded",
				Conflicts: []models.Conflict{{Type: "teacher_overload", Message: "Ana", Severity: "high"}},
			}},
			status:  models.RunStatusInfeasible,
			message: "overloaded",
		},
		{
			name:    "failure without conflicts",
			stub:    &solverStub{createID: "sim-5", runResp: &solver.RunResponse{}},
			status:  models.RunStatusError,
			message: "simulation failed",
		},
		{
			name: "success with empty schedule",
			stub: &solverStub{createID: "sim-6", runResp: &solver.RunResponse{
				Success: true,
				Result:  &solver.RunResult{Status: "optimal"},
			}},
			status:  models.RunStatusError,
			message: "without a schedule",
		},
		{
			name: "timeout without schedule",
			stub: &solverStub{createID: "sim-7", runResp: &solver.RunResponse{
				Success: true,
				Result:  &solver.RunResult{Status: "timeout"},
			}},
			status:  models.RunStatusTimeout,
			message: "time limit",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			out := NewRunOrchestrator(tc.stub, nil, nil).Execute(context.Background(), models.Snapshot{})

			failure, ok := out.(*models.FailureOutcome)
			require.True(t, ok, "expected failure outcome, got %T", out)
			assert.Equal(t, tc.status, failure.Status)
			assert.Contains(t, failure.ErrorMessage, tc.message)
		})
	}
}

func TestRunOrchestratorWithoutSolver(t *testing.T) {
	out := NewRunOrchestrator(nil, nil, nil).Execute(context.Background(), models.Snapshot{})
	assert.Equal(t, models.RunStatusError, out.RunStatus())
}

func TestNormalizeRunStatuses(t *testing.T) {
	for raw, want := range map[string]models.RunStatus{
		"optimal":  models.RunStatusOptimal,
		"feasible": models.RunStatusFeasible,
		"timeout":  models.RunStatusTimeout,
		"":         models.RunStatusFeasible,
		"solved":   models.RunStatusFeasible,
	} {
		out := normalizeRun("sim", &solver.RunResponse{
			Success: true,
			Result:  &solver.RunResult{Status: raw, Schedule: sampleSchedule()},
		})
		assert.Equal(t, want, out.RunStatus(), "raw status %q", raw)
	}
}

func TestNormalizeRunNeverReportsEmptyOptimal(t *testing.T) {
	responses := []*solver.RunResponse{
		nil,
		{Success: false, Result: &solver.RunResult{Status: "optimal", Schedule: sampleSchedule()}},
		{Success: true},
		{Success: true, Result: &solver.RunResult{Status: "optimal", Schedule: []models.ScheduleEntry{}}},
	}
	for i, resp := range responses {
		out := normalizeRun("sim", resp)
		if resp != nil && !resp.Success {
			assert.Contains(t, []models.RunStatus{models.RunStatusInfeasible, models.RunStatusError}, out.RunStatus(), "case %d", i)
		}
		if sched, ok := out.(*models.ScheduleOutcome); ok {
			assert.NotEmpty(t, sched.Schedule, "case %d", i)
		}
		assert.NotEqual(t, models.RunStatusOptimal, out.RunStatus(), "case %d", i)
	}
}

func TestNormalizeRunKeepsProvidedGrids(t *testing.T) {
	byClass := map[string]models.WeekGrid{"Grade 9 Z": {"Friday": {7: {Subject: "Chem"}}}}
	out := normalizeRun("sim", &solver.RunResponse{
		Success: true,
		Result:  &solver.RunResult{Status: "feasible", Schedule: sampleSchedule(), ByClass: byClass},
	})

	sched := out.(*models.ScheduleOutcome)
	assert.Equal(t, byClass, sched.ByClass)
	assert.Contains(t, sched.ByTeacher, "Ana")
}
