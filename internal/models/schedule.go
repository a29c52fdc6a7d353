package models

import (
	"encoding/json"
	"fmt"
)

// RunStatus is the normalised outcome of a solver run.
type RunStatus string

const (
	RunStatusOptimal    RunStatus = "optimal"
	RunStatusFeasible   RunStatus = "feasible"
	RunStatusInfeasible RunStatus = "infeasible"
	RunStatusTimeout    RunStatus = "timeout"
	RunStatusError      RunStatus = "error"
)

// ScheduleEntry is one placed lesson.
type ScheduleEntry struct {
	TeacherID int    `json:"teacher_id,omitempty"`
	Teacher   string `json:"teacher"`
	SubjectID int    `json:"subject_id,omitempty"`
	Subject   string `json:"subject"`
	ClassID   int    `json:"class_id,omitempty"`
	Class     string `json:"class"`
	Day       string `json:"day"`
	Period    int    `json:"period"`
}

// GridCell is the content of one occupied day×period cell.
type GridCell struct {
	Subject string `json:"subject"`
	Teacher string `json:"teacher,omitempty"`
	Class   string `json:"class,omitempty"`
}

// WeekGrid maps day -> period -> cell. Missing entries are free periods.
type WeekGrid map[string]map[int]GridCell

// Cell returns the cell at day/period and whether it is occupied.
func (g WeekGrid) Cell(day string, period int) (GridCell, bool) {
	periods, ok := g[day]
	if !ok {
		return GridCell{}, false
	}
	cell, ok := periods[period]
	return cell, ok
}

// QualityMetric is one named score in a quality report.
type QualityMetric struct {
	Score   float64 `json:"score"`
	Details string  `json:"details"`
}

// QualityReport is the solver's own assessment of a produced schedule.
type QualityReport struct {
	OverallScore float64                  `json:"overall_score"`
	Metrics      map[string]QualityMetric `json:"metrics"`
	Warnings     []string                 `json:"warnings"`
	Suggestions  []string                 `json:"suggestions"`
}

// Conflict explains why the solver could not produce a schedule.
type Conflict struct {
	Type       string `json:"type"`
	Message    string `json:"message"`
	Severity   string `json:"severity"`
	Suggestion string `json:"suggestion"`
}

// ConflictHeatmap maps day -> period -> conflict density.
type ConflictHeatmap map[string]map[int]float64

// RunOutcome is either a ScheduleOutcome or a FailureOutcome.
type RunOutcome interface {
	RunStatus() RunStatus
	isRunOutcome()
}

// ScheduleOutcome is a run that produced a timetable.
type ScheduleOutcome struct {
	Status        RunStatus           `json:"status"`
	SimulationID  string              `json:"simulation_id"`
	SolvingTimeMs int64               `json:"solving_time_ms"`
	Schedule      []ScheduleEntry     `json:"schedule"`
	ByTeacher     map[string]WeekGrid `json:"by_teacher"`
	ByClass       map[string]WeekGrid `json:"by_class"`
	QualityReport *QualityReport      `json:"quality_report,omitempty"`
}

// FailureOutcome is a run that produced no usable timetable.
type FailureOutcome struct {
	Status          RunStatus       `json:"status"`
	SimulationID    string          `json:"simulation_id,omitempty"`
	ErrorMessage    string          `json:"error_message"`
	Conflicts       []Conflict      `json:"conflicts,omitempty"`
	ConflictHeatmap ConflictHeatmap `json:"conflict_heatmap,omitempty"`
}

func (o *ScheduleOutcome) RunStatus() RunStatus { return o.Status }
func (o *FailureOutcome) RunStatus() RunStatus  { return o.Status }
func (*ScheduleOutcome) isRunOutcome()          {}
func (*FailureOutcome) isRunOutcome()           {}

const (
	outcomeKindSchedule = "schedule"
	outcomeKindFailure  = "failure"
)

type outcomeEnvelope struct {
	Kind    string          `json:"kind"`
	Outcome json.RawMessage `json:"outcome"`
}

// MarshalOutcome encodes an outcome with its variant tag so it can be decoded again.
func MarshalOutcome(o RunOutcome) ([]byte, error) {
	var kind string
	switch o.(type) {
	case *ScheduleOutcome:
		kind = outcomeKindSchedule
	case *FailureOutcome:
		kind = outcomeKindFailure
	case nil:
		return []byte("null"), nil
	default:
		return nil, fmt.Errorf("unknown run outcome %T", o)
	}
	raw, err := json.Marshal(o)
	if err != nil {
		return nil, err
	}
	return json.Marshal(outcomeEnvelope{Kind: kind, Outcome: raw})
}

// UnmarshalOutcome decodes data written by MarshalOutcome.
func UnmarshalOutcome(data []byte) (RunOutcome, error) {
	if len(data) == 0 || string(data) == "null" {
		return nil, nil
	}
	var env outcomeEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, err
	}
	switch env.Kind {
	case outcomeKindSchedule:
		var out ScheduleOutcome
		if err := json.Unmarshal(env.Outcome, &out); err != nil {
			return nil, err
		}
		return &out, nil
	case outcomeKindFailure:
		var out FailureOutcome
		if err := json.Unmarshal(env.Outcome, &out); err != nil {
			return nil, err
		}
		return &out, nil
	default:
		return nil, fmt.Errorf("unknown run outcome kind %q", env.Kind)
	}
}
