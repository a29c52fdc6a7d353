package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/noah-isme/sma-schedule-sim/internal/models"
	appErrors "github.com/noah-isme/sma-schedule-sim/pkg/errors"
)

// Step is a position in the simulation wizard.
type Step int

const (
	StepDataSource Step = iota
	StepBasicConfig
	StepTeacherPreferences
	StepSubjectConstraints
	StepPeriodAllocation
	StepReviewAndRun
	StepResults
)

var stepNames = [...]string{
	StepDataSource:         "data_source",
	StepBasicConfig:        "basic_config",
	StepTeacherPreferences: "teacher_preferences",
	StepSubjectConstraints: "subject_constraints",
	StepPeriodAllocation:   "period_allocation",
	StepReviewAndRun:       "review_and_run",
	StepResults:            "results",
}

func (s Step) String() string {
	if s < StepDataSource || s > StepResults {
		return fmt.Sprintf("step(%d)", int(s))
	}
	return stepNames[s]
}

// MarshalText encodes the step by name.
func (s Step) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText decodes a step name.
func (s *Step) UnmarshalText(text []byte) error {
	parsed, err := ParseStep(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// ParseStep resolves a step name.
func ParseStep(name string) (Step, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for i, n := range stepNames {
		if n == name {
			return Step(i), nil
		}
	}
	return StepDataSource, appErrors.Newf(appErrors.ErrValidation, "unknown step %q", name)
}

// CanProceed reports whether the wizard may advance past step, and why not.
func CanProceed(step Step, m *Model) (bool, string) {
	switch step {
	case StepBasicConfig:
		if strings.TrimSpace(m.config.Name) == "" {
			return false, "simulation name is required"
		}
		if len(m.config.WorkingDays) == 0 {
			return false, "at least one working day is required"
		}
	case StepTeacherPreferences:
		if len(m.teachers) == 0 {
			return false, "add at least one teacher"
		}
	case StepSubjectConstraints:
		if len(m.subjects) == 0 {
			return false, "add at least one subject"
		}
	case StepPeriodAllocation:
		if len(m.classes) == 0 {
			return false, "add at least one class"
		}
		for _, r := range m.requirements {
			if r.PeriodsPerWeek > 0 {
				return true, ""
			}
		}
		return false, "allocate periods to at least one requirement"
	case StepResults:
		return false, "results is the final step"
	}
	return true, ""
}

// DataSource describes where the entities of a session came from.
type DataSource interface {
	Kind() models.DataSourceKind
}

// InstitutionSource marks entities loaded from the institutional database.
type InstitutionSource struct {
	LoadedAt time.Time `json:"loaded_at"`
}

// SyntheticSource marks entities produced by the synthetic generator.
type SyntheticSource struct {
	Params   models.SyntheticParams `json:"params"`
	LoadedAt time.Time              `json:"loaded_at"`
}

func (InstitutionSource) Kind() models.DataSourceKind { return models.DataSourceInstitution }
func (SyntheticSource) Kind() models.DataSourceKind   { return models.DataSourceSynthetic }

// StepView is the step-specific payload of a session view. Each step has its own shape.
type StepView interface {
	Step() Step
}

// DataSourceView shows the current source and whether the institution source can be used.
type DataSourceView struct {
	Kind               models.DataSourceKind `json:"kind"`
	Source             DataSource            `json:"source,omitempty"`
	InstitutionEnabled bool                  `json:"institution_enabled"`
	Counts             EntityCounts          `json:"counts"`
}

// BasicConfigView exposes the editable simulation config.
type BasicConfigView struct {
	Config models.SimulationConfig `json:"config"`
}

// TeacherPreferenceRow pairs a teacher with its effective preference.
type TeacherPreferenceRow struct {
	Teacher    models.Teacher           `json:"teacher"`
	Preference models.TeacherPreference `json:"preference"`
	Explicit   bool                     `json:"explicit"`
}

// TeacherPreferencesView lists teachers with their preferences.
type TeacherPreferencesView struct {
	Teachers []TeacherPreferenceRow `json:"teachers"`
}

// SubjectConstraintRow pairs a subject with its effective constraint.
type SubjectConstraintRow struct {
	Subject    models.Subject           `json:"subject"`
	Constraint models.SubjectConstraint `json:"constraint"`
	Explicit   bool                     `json:"explicit"`
}

// SubjectConstraintsView lists subjects with their constraints.
type SubjectConstraintsView struct {
	Subjects []SubjectConstraintRow `json:"subjects"`
}

// PeriodAllocationView is the requirement matrix editor.
type PeriodAllocationView struct {
	Teachers     []models.Teacher     `json:"teachers"`
	Subjects     []models.Subject     `json:"subjects"`
	Classes      []models.ClassGroup  `json:"classes"`
	Requirements []models.Requirement `json:"requirements"`
	Capacity     CapacityReport       `json:"capacity"`
}

// ReviewView summarises what will be sent to the solver.
type ReviewView struct {
	Counts   EntityCounts            `json:"counts"`
	Config   models.SimulationConfig `json:"config"`
	Capacity CapacityReport          `json:"capacity"`
	Running  bool                    `json:"running"`
}

// ResultsView carries the outcome of the last run.
type ResultsView struct {
	Status  models.RunStatus  `json:"status"`
	Outcome models.RunOutcome `json:"outcome"`
}

// EntityCounts sizes the six entity collections.
type EntityCounts struct {
	Teachers           int `json:"teachers"`
	Subjects           int `json:"subjects"`
	Classes            int `json:"classes"`
	Requirements       int `json:"requirements"`
	TeacherPreferences int `json:"teacher_preferences"`
	SubjectConstraints int `json:"subject_constraints"`
}

func (DataSourceView) Step() Step         { return StepDataSource }
func (BasicConfigView) Step() Step        { return StepBasicConfig }
func (TeacherPreferencesView) Step() Step { return StepTeacherPreferences }
func (SubjectConstraintsView) Step() Step { return StepSubjectConstraints }
func (PeriodAllocationView) Step() Step   { return StepPeriodAllocation }
func (ReviewView) Step() Step             { return StepReviewAndRun }
func (ResultsView) Step() Step            { return StepResults }

func countEntities(m *Model) EntityCounts {
	return EntityCounts{
		Teachers:           len(m.teachers),
		Subjects:           len(m.subjects),
		Classes:            len(m.classes),
		Requirements:       len(m.requirements),
		TeacherPreferences: len(m.teacherPrefs),
		SubjectConstraints: len(m.constraints),
	}
}

type stepViewContext struct {
	source             DataSource
	institutionEnabled bool
	running            bool
	outcome            models.RunOutcome
}

func buildStepView(step Step, m *Model, vc stepViewContext) StepView {
	switch step {
	case StepBasicConfig:
		return BasicConfigView{Config: m.Config()}
	case StepTeacherPreferences:
		rows := make([]TeacherPreferenceRow, 0, len(m.teachers))
		for _, t := range m.teachers {
			pref, explicit := m.TeacherPreference(t.ID)
			rows = append(rows, TeacherPreferenceRow{Teacher: t, Preference: pref, Explicit: explicit})
		}
		return TeacherPreferencesView{Teachers: rows}
	case StepSubjectConstraints:
		rows := make([]SubjectConstraintRow, 0, len(m.subjects))
		for _, s := range m.subjects {
			c, explicit := m.SubjectConstraint(s.ID)
			rows = append(rows, SubjectConstraintRow{Subject: s, Constraint: c, Explicit: explicit})
		}
		return SubjectConstraintsView{Subjects: rows}
	case StepPeriodAllocation:
		return PeriodAllocationView{
			Teachers:     m.Teachers(),
			Subjects:     m.Subjects(),
			Classes:      m.Classes(),
			Requirements: m.Requirements(),
			Capacity:     AnalyzeCapacity(m),
		}
	case StepReviewAndRun:
		return ReviewView{
			Counts:   countEntities(m),
			Config:   m.Config(),
			Capacity: AnalyzeCapacity(m),
			Running:  vc.running,
		}
	case StepResults:
		view := ResultsView{Outcome: vc.outcome}
		if vc.outcome != nil {
			view.Status = vc.outcome.RunStatus()
		}
		return view
	default:
		view := DataSourceView{
			Source:             vc.source,
			InstitutionEnabled: vc.institutionEnabled,
			Counts:             countEntities(m),
		}
		if vc.source != nil {
			view.Kind = vc.source.Kind()
		}
		return view
	}
}
