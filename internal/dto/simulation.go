package dto

import "github.com/noah-isme/sma-schedule-sim/internal/models"

// Heuristic strategy names accepted by the distribute endpoint.
const (
	StrategyRandomizePeriods  = "randomize-periods"
	StrategyRandomizeTeachers = "randomize-teachers"
	StrategyBalanceTeachers   = "balance-teachers"
)

// Navigation actions.
const (
	NavigateNext  = "next"
	NavigateBack  = "back"
	NavigateGoTo  = "goto"
	NavigateReset = "reset"
)

// CreateSessionRequest opens a new simulation session. Omitted fields take server defaults.
type CreateSessionRequest struct {
	Name                 string   `json:"name" validate:"omitempty,max=120"`
	WorkingDays          []string `json:"working_days" validate:"omitempty,max=7,dive,required"`
	DefaultPeriodsPerDay int      `json:"default_periods_per_day" validate:"omitempty,min=1,max=16"`
}

// DataSourceRequest switches the session's data source. Synthetic requires Params.
type DataSourceRequest struct {
	Kind   models.DataSourceKind   `json:"kind" validate:"required,oneof=institution synthetic"`
	Params *models.SyntheticParams `json:"params" validate:"required_if=Kind synthetic"`
}

// NavigateRequest moves the wizard.
type NavigateRequest struct {
	Action string `json:"action" validate:"required,oneof=next back goto reset"`
	Target string `json:"target" validate:"required_if=Action goto"`
}

// UpdateConfigRequest replaces the simulation config.
type UpdateConfigRequest struct {
	Name                    string         `json:"name" validate:"max=120"`
	WorkingDays             []string       `json:"working_days" validate:"max=7,dive,required"`
	PeriodsPerDay           map[string]int `json:"periods_per_day" validate:"omitempty,dive,min=0,max=16"`
	DefaultPeriodsPerDay    int            `json:"default_periods_per_day" validate:"min=1,max=16"`
	MaxTeacherPeriodsPerDay int            `json:"max_teacher_periods_per_day" validate:"min=0,max=16"`
	MaxConsecutivePeriods   int            `json:"max_consecutive_periods" validate:"min=0,max=16"`
	TimeLimitSeconds        int            `json:"time_limit_seconds" validate:"min=1,max=3600"`
}

// ToConfig converts the request into a config value.
func (r UpdateConfigRequest) ToConfig() models.SimulationConfig {
	cfg := models.SimulationConfig{
		Name:                    r.Name,
		WorkingDays:             r.WorkingDays,
		PeriodsPerDay:           r.PeriodsPerDay,
		DefaultPeriodsPerDay:    r.DefaultPeriodsPerDay,
		MaxTeacherPeriodsPerDay: r.MaxTeacherPeriodsPerDay,
		MaxConsecutivePeriods:   r.MaxConsecutivePeriods,
		TimeLimitSeconds:        r.TimeLimitSeconds,
	}
	return cfg.Clone()
}

// NameRequest creates or renames a teacher or subject.
type NameRequest struct {
	Name string `json:"name" validate:"max=120"`
}

// TeacherRequest creates or updates a teacher.
type TeacherRequest struct {
	Name        string `json:"name" validate:"max=120"`
	WeeklyQuota *int   `json:"weekly_quota" validate:"omitempty,min=0,max=60"`
}

// ClassRequest creates a class. Empty grade and name use default naming.
type ClassRequest struct {
	Grade     string `json:"grade" validate:"required_with=ClassName,max=60"`
	ClassName string `json:"class_name" validate:"required_with=Grade,max=60"`
}

// RequirementRequest sets the weekly periods of a class and subject pair.
type RequirementRequest struct {
	ClassID        int `json:"class_id" validate:"required,min=1"`
	SubjectID      int `json:"subject_id" validate:"required,min=1"`
	PeriodsPerWeek int `json:"periods_per_week" validate:"max=60"`
}

// AssignTeacherRequest assigns a teacher to a requirement, null to unassign.
type AssignTeacherRequest struct {
	TeacherID *int `json:"teacher_id" validate:"omitempty,min=1"`
}

// TeacherPreferenceRequest stores a teacher preference.
type TeacherPreferenceRequest struct {
	WeeklyQuota     int                  `json:"weekly_quota" validate:"min=0,max=60"`
	MinDailyPeriods int                  `json:"min_daily_periods" validate:"min=0,max=16"`
	MaxDailyPeriods int                  `json:"max_daily_periods" validate:"min=0,max=16"`
	MaxConsecutive  int                  `json:"max_consecutive" validate:"min=0,max=16"`
	PreferTime      models.PreferTime    `json:"prefer_time" validate:"omitempty,oneof=any early late"`
	TeachingStyle   models.TeachingStyle `json:"teaching_style" validate:"omitempty,oneof=any consecutive distributed"`
	GoldenDays      []string             `json:"golden_days" validate:"max=7,dive,required"`
}

// ToModel converts the request for teacherID.
func (r TeacherPreferenceRequest) ToModel(teacherID int) models.TeacherPreference {
	return models.TeacherPreference{
		TeacherID:       teacherID,
		WeeklyQuota:     r.WeeklyQuota,
		MinDailyPeriods: r.MinDailyPeriods,
		MaxDailyPeriods: r.MaxDailyPeriods,
		MaxConsecutive:  r.MaxConsecutive,
		PreferTime:      r.PreferTime,
		TeachingStyle:   r.TeachingStyle,
		GoldenDays:      r.GoldenDays,
	}
}

// SubjectConstraintRequest stores a subject constraint.
type SubjectConstraintRequest struct {
	RequiresConsecutive bool `json:"requires_consecutive"`
	ConsecutiveCount    int  `json:"consecutive_count" validate:"min=0,max=8"`
	AvoidFirstPeriod    bool `json:"avoid_first_period"`
	AvoidLastPeriod     bool `json:"avoid_last_period"`
	NoConsecutiveDays   bool `json:"no_consecutive_days"`
	MaxPerDay           int  `json:"max_per_day" validate:"min=0,max=16"`
	IsHeavy             bool `json:"is_heavy"`
}

// ToModel converts the request for subjectID.
func (r SubjectConstraintRequest) ToModel(subjectID int) models.SubjectConstraint {
	return models.SubjectConstraint{
		SubjectID:           subjectID,
		RequiresConsecutive: r.RequiresConsecutive,
		ConsecutiveCount:    r.ConsecutiveCount,
		AvoidFirstPeriod:    r.AvoidFirstPeriod,
		AvoidLastPeriod:     r.AvoidLastPeriod,
		NoConsecutiveDays:   r.NoConsecutiveDays,
		MaxPerDay:           r.MaxPerDay,
		IsHeavy:             r.IsHeavy,
	}
}

// DistributeResponse reports what a heuristic did.
type DistributeResponse struct {
	Strategy     string                 `json:"strategy"`
	Allocations  map[string]map[int]int `json:"allocations,omitempty"`
	TeacherLoads map[int]int            `json:"teacher_loads,omitempty"`
	Assigned     int                    `json:"assigned,omitempty"`
}

// RunResponse acknowledges a queued run.
type RunResponse struct {
	SessionID string `json:"session_id"`
	RunID     string `json:"run_id"`
	Status    string `json:"status"`
}

// ExportRequest renders one grid of the last result.
type ExportRequest struct {
	View   string `json:"view" validate:"required,oneof=class teacher"`
	Key    string `json:"key" validate:"required"`
	Format string `json:"format" validate:"required,oneof=csv pdf"`
}
