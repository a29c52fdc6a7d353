package models

// DefaultWorkingDays is the school week used when a config names no days.
var DefaultWorkingDays = []string{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday"}

// SimulationConfig carries the global parameters of a timetable problem.
type SimulationConfig struct {
	Name                    string         `json:"name"`
	WorkingDays             []string       `json:"working_days"`
	PeriodsPerDay           map[string]int `json:"periods_per_day"`
	DefaultPeriodsPerDay    int            `json:"default_periods_per_day"`
	MaxTeacherPeriodsPerDay int            `json:"max_teacher_periods_per_day"`
	MaxConsecutivePeriods   int            `json:"max_consecutive_periods"`
	TimeLimitSeconds        int            `json:"time_limit_seconds"`
}

// PeriodsOn returns the number of periods held on day, falling back to the default.
func (c SimulationConfig) PeriodsOn(day string) int {
	if n, ok := c.PeriodsPerDay[day]; ok {
		return n
	}
	return c.DefaultPeriodsPerDay
}

// MaxPeriods is the longest school day in the configuration.
func (c SimulationConfig) MaxPeriods() int {
	max := 0
	for _, day := range c.WorkingDays {
		if n := c.PeriodsOn(day); n > max {
			max = n
		}
	}
	return max
}

// Clone returns a deep copy.
func (c SimulationConfig) Clone() SimulationConfig {
	out := c
	out.WorkingDays = append([]string(nil), c.WorkingDays...)
	if c.PeriodsPerDay != nil {
		out.PeriodsPerDay = make(map[string]int, len(c.PeriodsPerDay))
		for k, v := range c.PeriodsPerDay {
			out.PeriodsPerDay[k] = v
		}
	}
	return out
}

// ConfigOverrides are partial config values returned by the synthetic generator.
type ConfigOverrides struct {
	WorkingDays             []string       `json:"working_days,omitempty"`
	PeriodsPerDay           map[string]int `json:"periods_per_day,omitempty"`
	DefaultPeriodsPerDay    *int           `json:"default_periods_per_day,omitempty"`
	MaxTeacherPeriodsPerDay *int           `json:"max_teacher_periods_per_day,omitempty"`
	MaxConsecutivePeriods   *int           `json:"max_consecutive_periods,omitempty"`
}

// Apply writes every set override onto cfg.
func (o *ConfigOverrides) Apply(cfg *SimulationConfig) {
	if o == nil || cfg == nil {
		return
	}
	if len(o.WorkingDays) > 0 {
		cfg.WorkingDays = append([]string(nil), o.WorkingDays...)
	}
	if len(o.PeriodsPerDay) > 0 {
		cfg.PeriodsPerDay = make(map[string]int, len(o.PeriodsPerDay))
		for k, v := range o.PeriodsPerDay {
			cfg.PeriodsPerDay[k] = v
		}
	}
	if o.DefaultPeriodsPerDay != nil {
		cfg.DefaultPeriodsPerDay = *o.DefaultPeriodsPerDay
	}
	if o.MaxTeacherPeriodsPerDay != nil {
		cfg.MaxTeacherPeriodsPerDay = *o.MaxTeacherPeriodsPerDay
	}
	if o.MaxConsecutivePeriods != nil {
		cfg.MaxConsecutivePeriods = *o.MaxConsecutivePeriods
	}
}

// DataSourceKind names where the entities of a session came from.
type DataSourceKind string

const (
	DataSourceNone        DataSourceKind = ""
	DataSourceInstitution DataSourceKind = "institution"
	DataSourceSynthetic   DataSourceKind = "synthetic"
)

// SyntheticParams sizes a generated instance.
type SyntheticParams struct {
	NumTeachers     int `json:"num_teachers" validate:"min=1,max=200"`
	NumSubjects     int `json:"num_subjects" validate:"min=1,max=50"`
	NumGrades       int `json:"num_grades" validate:"min=1,max=12"`
	ClassesPerGrade int `json:"classes_per_grade" validate:"min=1,max=10"`
	PeriodsPerDay   int `json:"periods_per_day" validate:"min=1,max=12"`
}

// InstitutionSnapshot is what the institutional data store provides. It carries no requirements.
type InstitutionSnapshot struct {
	Teachers           []Teacher           `json:"teachers"`
	Subjects           []Subject           `json:"subjects"`
	Classes            []ClassGroup        `json:"classes"`
	TeacherPreferences []TeacherPreference `json:"teacher_preferences"`
	SubjectConstraints []SubjectConstraint `json:"subject_constraints"`
}

// SyntheticSnapshot is what the synthetic generator returns.
type SyntheticSnapshot struct {
	Teachers           []Teacher           `json:"teachers"`
	Subjects           []Subject           `json:"subjects"`
	Classes            []ClassGroup        `json:"classes"`
	Requirements       []Requirement       `json:"requirements"`
	TeacherPreferences []TeacherPreference `json:"teacher_preferences"`
	SubjectConstraints []SubjectConstraint `json:"subject_constraints"`
	ConfigOverrides    *ConfigOverrides    `json:"config_overrides,omitempty"`
}

// Snapshot is a full copy of a simulation model.
type Snapshot struct {
	Teachers           []Teacher           `json:"teachers"`
	Subjects           []Subject           `json:"subjects"`
	Classes            []ClassGroup        `json:"classes"`
	Requirements       []Requirement       `json:"requirements"`
	TeacherPreferences []TeacherPreference `json:"teacher_preferences"`
	SubjectConstraints []SubjectConstraint `json:"subject_constraints"`
	Config             SimulationConfig    `json:"config"`
}
