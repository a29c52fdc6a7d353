package models

// Teacher is a staff member that can be assigned to requirements.
type Teacher struct {
	ID          int    `json:"id" db:"id"`
	Name        string `json:"name" db:"name"`
	WeeklyQuota int    `json:"weekly_quota" db:"weekly_quota"`
}

// PreferTime expresses when in the day a teacher would rather teach.
type PreferTime string

const (
	PreferTimeAny   PreferTime = "any"
	PreferTimeEarly PreferTime = "early"
	PreferTimeLate  PreferTime = "late"
)

// TeachingStyle expresses how a teacher's periods should be spread across a day.
type TeachingStyle string

const (
	TeachingStyleAny         TeachingStyle = "any"
	TeachingStyleConsecutive TeachingStyle = "consecutive"
	TeachingStyleDistributed TeachingStyle = "distributed"
)

// TeacherPreference stores the workload and placement wishes of a single teacher.
type TeacherPreference struct {
	TeacherID       int           `json:"teacher_id" db:"teacher_id"`
	WeeklyQuota     int           `json:"weekly_quota" db:"weekly_quota" validate:"min=0"`
	MinDailyPeriods int           `json:"min_daily_periods" db:"min_daily_periods" validate:"min=0"`
	MaxDailyPeriods int           `json:"max_daily_periods" db:"max_daily_periods" validate:"min=0"`
	MaxConsecutive  int           `json:"max_consecutive" db:"max_consecutive" validate:"min=0"`
	PreferTime      PreferTime    `json:"prefer_time" db:"prefer_time" validate:"omitempty,oneof=any early late"`
	TeachingStyle   TeachingStyle `json:"teaching_style" db:"teaching_style" validate:"omitempty,oneof=any consecutive distributed"`
	GoldenDays      []string      `json:"golden_days" db:"-"`
}

// DefaultTeacherPreference is what the solver assumes when a teacher has no stored preference.
func DefaultTeacherPreference(teacherID int) TeacherPreference {
	return TeacherPreference{
		TeacherID:       teacherID,
		WeeklyQuota:     24,
		MinDailyPeriods: 0,
		MaxDailyPeriods: 6,
		MaxConsecutive:  3,
		PreferTime:      PreferTimeAny,
		TeachingStyle:   TeachingStyleAny,
		GoldenDays:      []string{},
	}
}
