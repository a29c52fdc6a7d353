package models

// Subject is a course taught to classes.
type Subject struct {
	ID   int    `json:"id" db:"id"`
	Name string `json:"name" db:"name"`
}

// SubjectConstraint captures placement rules for every period of a subject.
type SubjectConstraint struct {
	SubjectID           int  `json:"subject_id" db:"subject_id"`
	RequiresConsecutive bool `json:"requires_consecutive" db:"requires_consecutive"`
	ConsecutiveCount    int  `json:"consecutive_count" db:"consecutive_count" validate:"min=0"`
	AvoidFirstPeriod    bool `json:"avoid_first_period" db:"avoid_first_period"`
	AvoidLastPeriod     bool `json:"avoid_last_period" db:"avoid_last_period"`
	NoConsecutiveDays   bool `json:"no_consecutive_days" db:"no_consecutive_days"`
	MaxPerDay           int  `json:"max_per_day" db:"max_per_day" validate:"min=0"`
	IsHeavy             bool `json:"is_heavy" db:"is_heavy"`
}

// DefaultSubjectConstraint is the permissive constraint used when none is stored.
func DefaultSubjectConstraint(subjectID int) SubjectConstraint {
	return SubjectConstraint{
		SubjectID:        subjectID,
		ConsecutiveCount: 2,
		MaxPerDay:        2,
	}
}
