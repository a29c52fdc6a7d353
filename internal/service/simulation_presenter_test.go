package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-schedule-sim/internal/models"
	appErrors "github.com/noah-isme/sma-schedule-sim/pkg/errors"
	"github.com/noah-isme/sma-schedule-sim/pkg/solver"
)

func presenterConfig() models.SimulationConfig {
	cfg := testSimulationConfig()
	cfg.WorkingDays = []string{"Sunday", "Monday"}
	cfg.DefaultPeriodsPerDay = 3
	return cfg
}

func TestResultPresenterClassGrid(t *testing.T) {
	outcome := normalizeRun("sim", nil)
	_, err := NewResultPresenter(presenterConfig()).ClassGrid(outcome, "Grade 1 A")
	assert.ErrorIs(t, err, appErrors.ErrPreconditionFailed)

	sched := &models.ScheduleOutcome{
		Status: models.RunStatusFeasible,
		ByClass: map[string]models.WeekGrid{
			"Grade 1 A": {
				"Sunday":  {1: {Subject: "Math", Teacher: "Ana"}},
				"Tuesday": {5: {Subject: "Art", Teacher: "Budi"}},
			},
		},
	}

	grid, err := NewResultPresenter(presenterConfig()).ClassGrid(sched, "Grade 1 A")
	require.NoError(t, err)

	assert.Equal(t, []string{"Sunday", "Monday", "Tuesday"}, grid.Days)
	assert.Equal(t, []int{1, 2, 3, 4, 5}, grid.Periods)
	require.NotNil(t, grid.Cells[0][0])
	assert.Equal(t, "Math", grid.Cells[0][0].Subject)
	assert.Nil(t, grid.Cells[0][1])
	require.NotNil(t, grid.Cells[4][2])
	assert.Equal(t, "Art", grid.Cells[4][2].Subject)
}

func TestResultPresenterToleratesEmptyMaps(t *testing.T) {
	sched := &models.ScheduleOutcome{Status: models.RunStatusOptimal, Schedule: sampleSchedule()}
	p := NewResultPresenter(presenterConfig())

	grid, err := p.TeacherGrid(sched, "Nobody")
	require.NoError(t, err)
	assert.Len(t, grid.Periods, 3)
	for _, row := range grid.Cells {
		for _, cell := range row {
			assert.Nil(t, cell)
		}
	}

	index := p.Entities(sched)
	assert.Empty(t, index.Classes)
	assert.Empty(t, index.Teachers)
}

func TestResultPresenterEntitiesSorted(t *testing.T) {
	out := normalizeRun("sim", &solver.RunResponse{
		Success: true,
		Result:  &solver.RunResult{Status: "optimal", Schedule: sampleSchedule()},
	})
	index := NewResultPresenter(presenterConfig()).Entities(out)

	assert.Equal(t, []string{"Grade 1 A", "Grade 1 B"}, index.Classes)
	assert.Equal(t, []string{"Ana", "Budi"}, index.Teachers)
}

func TestResultPresenterHeatmap(t *testing.T) {
	p := NewResultPresenter(presenterConfig())

	_, ok := p.Heatmap(&models.ScheduleOutcome{})
	assert.False(t, ok)
	_, ok = p.Heatmap(&models.FailureOutcome{Status: models.RunStatusError})
	assert.False(t, ok)

	view, ok := p.Heatmap(&models.FailureOutcome{
		Status:          models.RunStatusInfeasible,
		ConflictHeatmap: models.ConflictHeatmap{"Monday": {2: 0.75}, "Sunday": {1: 0.25}},
	})
	require.True(t, ok)
	assert.Equal(t, 0.75, view.Max)
	assert.Equal(t, 0.25, view.Values[0][0])
	assert.Equal(t, 0.75, view.Values[1][1])
	assert.Zero(t, view.Values[2][1])
}

func TestResultPresenterMatchesDaysCaseInsensitively(t *testing.T) {
	p := NewResultPresenter(presenterConfig())

	grid, err := p.ClassGrid(&models.ScheduleOutcome{
		Status: models.RunStatusFeasible,
		ByClass: map[string]models.WeekGrid{
			"Grade 1 A": {
				"monday":  {2: {Subject: "Math", Teacher: "Ana"}},
				"SUNDAY":  {1: {Subject: "Art", Teacher: "Budi"}},
				"tuesday": {1: {Subject: "Music", Teacher: "Ana"}},
				"Tuesday": {2: {Subject: "Music", Teacher: "Ana"}},
			},
		},
	}, "Grade 1 A")
	require.NoError(t, err)
	assert.Equal(t, []string{"Sunday", "Monday", "Tuesday"}, grid.Days)
	require.NotNil(t, grid.Cells[1][1])
	assert.Equal(t, "Math", grid.Cells[1][1].Subject)
	require.NotNil(t, grid.Cells[0][0])
	assert.Equal(t, "Art", grid.Cells[0][0].Subject)
	assert.NotNil(t, grid.Cells[0][2])
	assert.NotNil(t, grid.Cells[1][2])

	view, ok := p.Heatmap(&models.FailureOutcome{
		Status:          models.RunStatusInfeasible,
		ConflictHeatmap: models.ConflictHeatmap{"monday": {2: 0.5}},
	})
	require.True(t, ok)
	assert.Equal(t, []string{"Sunday", "Monday"}, view.Days)
	assert.Equal(t, 0.5, view.Values[1][1])
}

func TestGridDataset(t *testing.T) {
	grid := Grid{
		Kind:    GridKindTeacher,
		Name:    "Ana",
		Days:    []string{"Sunday", "Monday"},
		Periods: []int{1, 2},
		Cells: [][]*models.GridCell{
			{{Subject: "Math", Class: "Grade 1 A"}, nil},
			{nil, {Subject: "Math", Class: "Grade 1 B"}},
		},
	}

	data := grid.Dataset()

	assert.Equal(t, "Teacher timetable: Ana", data.Title)
	assert.Equal(t, []string{"Period", "Sunday", "Monday"}, data.Headers)
	require.Len(t, data.Rows, 2)
	assert.Equal(t, "Math\nGrade 1 A", data.Rows[0]["Sunday"])
	assert.Equal(t, "", data.Rows[0]["Monday"])
	assert.Equal(t, "2", data.Rows[1]["Period"])
}
