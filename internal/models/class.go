package models

// DefaultGrades and DefaultClassLetters drive default naming of new classes.
var (
	DefaultGrades       = []string{"Grade 1", "Grade 2", "Grade 3", "Grade 4", "Grade 5", "Grade 6"}
	DefaultClassLetters = []string{"A", "B", "C", "D"}
)

// ClassGroup is a cohort of students that shares one weekly timetable.
type ClassGroup struct {
	ID        int    `json:"id" db:"id"`
	Grade     string `json:"grade" db:"grade"`
	ClassName string `json:"class_name" db:"class_name"`
}

// Label renders the class as shown in grids and exports.
func (c ClassGroup) Label() string {
	return c.Grade + " " + c.ClassName
}

// Requirement states that a class needs a subject for a number of weekly periods,
// optionally taught by a given teacher. Name fields are display copies taken when
// the requirement is created or reassigned.
type Requirement struct {
	ID             int    `json:"id"`
	ClassID        int    `json:"class_id"`
	Grade          string `json:"grade"`
	ClassName      string `json:"class_name"`
	SubjectID      int    `json:"subject_id"`
	SubjectName    string `json:"subject_name"`
	TeacherID      *int   `json:"teacher_id"`
	TeacherName    string `json:"teacher_name"`
	PeriodsPerWeek int    `json:"periods_per_week"`
}

// Assigned reports whether a teacher is attached.
func (r Requirement) Assigned() bool {
	return r.TeacherID != nil
}

// TeacherRef returns a pointer to a copy of id, for use as Requirement.TeacherID.
func TeacherRef(id int) *int {
	return &id
}
