package service

import (
	"fmt"
	"sort"
	"strings"

	"github.com/noah-isme/sma-schedule-sim/internal/models"
	appErrors "github.com/noah-isme/sma-schedule-sim/pkg/errors"
)

const defaultWeeklyQuota = 24

// Model is the in-memory timetabling instance of one simulation session.
// It is not safe for concurrent use; Session serialises access to it.
type Model struct {
	teachers     []models.Teacher
	subjects     []models.Subject
	classes      []models.ClassGroup
	requirements []models.Requirement
	teacherPrefs map[int]models.TeacherPreference
	constraints  map[int]models.SubjectConstraint
	config       models.SimulationConfig
}

// NewModel returns an empty model using cfg as its simulation config.
func NewModel(cfg models.SimulationConfig) *Model {
	return &Model{
		teacherPrefs: make(map[int]models.TeacherPreference),
		constraints:  make(map[int]models.SubjectConstraint),
		config:       cfg.Clone(),
	}
}

// --- Teachers ---

// AddTeacher appends a teacher with id max(existing)+1.
func (m *Model) AddTeacher(name string) models.Teacher {
	id := 1
	for _, t := range m.teachers {
		if t.ID >= id {
			id = t.ID + 1
		}
	}
	name = strings.TrimSpace(name)
	if name == "" {
		name = fmt.Sprintf("Teacher %d", id)
	}
	teacher := models.Teacher{ID: id, Name: name, WeeklyQuota: defaultWeeklyQuota}
	m.teachers = append(m.teachers, teacher)
	return teacher
}

// RenameTeacher changes a teacher's name. Existing requirements keep their copy of the old name.
func (m *Model) RenameTeacher(id int, name string) bool {
	for i := range m.teachers {
		if m.teachers[i].ID == id {
			m.teachers[i].Name = strings.TrimSpace(name)
			return true
		}
	}
	return false
}

// SetTeacherQuota updates the weekly quota stored on the teacher itself.
func (m *Model) SetTeacherQuota(id, quota int) bool {
	for i := range m.teachers {
		if m.teachers[i].ID == id {
			if quota < 0 {
				quota = 0
			}
			m.teachers[i].WeeklyQuota = quota
			return true
		}
	}
	return false
}

// RemoveTeacher deletes the teacher, its preference and every requirement it teaches.
// It returns the number of requirements removed.
func (m *Model) RemoveTeacher(id int) int {
	kept := m.teachers[:0]
	for _, t := range m.teachers {
		if t.ID != id {
			kept = append(kept, t)
		}
	}
	m.teachers = kept
	delete(m.teacherPrefs, id)
	return m.removeRequirements(func(r models.Requirement) bool {
		return r.TeacherID != nil && *r.TeacherID == id
	})
}

// Teacher looks a teacher up by id.
func (m *Model) Teacher(id int) (models.Teacher, bool) {
	for _, t := range m.teachers {
		if t.ID == id {
			return t, true
		}
	}
	return models.Teacher{}, false
}

// SetTeacherPreference stores the preference of an existing teacher, replacing any previous one.
func (m *Model) SetTeacherPreference(pref models.TeacherPreference) error {
	if _, ok := m.Teacher(pref.TeacherID); !ok {
		return appErrors.Newf(appErrors.ErrNotFound, "teacher %d not found", pref.TeacherID)
	}
	if pref.PreferTime == "" {
		pref.PreferTime = models.PreferTimeAny
	}
	if pref.TeachingStyle == "" {
		pref.TeachingStyle = models.TeachingStyleAny
	}
	if pref.MaxDailyPeriods > 0 && pref.MinDailyPeriods > pref.MaxDailyPeriods {
		return appErrors.Clone(appErrors.ErrValidation, "min_daily_periods cannot exceed max_daily_periods")
	}
	pref.GoldenDays = append([]string{}, pref.GoldenDays...)
	m.teacherPrefs[pref.TeacherID] = pref
	return nil
}

// TeacherPreference returns the stored preference, or the default one with explicit=false.
func (m *Model) TeacherPreference(teacherID int) (pref models.TeacherPreference, explicit bool) {
	if p, ok := m.teacherPrefs[teacherID]; ok {
		return p, true
	}
	return models.DefaultTeacherPreference(teacherID), false
}

// --- Subjects ---

// AddSubject appends a subject with id max(existing)+1.
func (m *Model) AddSubject(name string) models.Subject {
	id := 1
	for _, s := range m.subjects {
		if s.ID >= id {
			id = s.ID + 1
		}
	}
	name = strings.TrimSpace(name)
	if name == "" {
		name = fmt.Sprintf("Subject %d", id)
	}
	subject := models.Subject{ID: id, Name: name}
	m.subjects = append(m.subjects, subject)
	return subject
}

// RenameSubject changes a subject's name without touching requirement copies.
func (m *Model) RenameSubject(id int, name string) bool {
	for i := range m.subjects {
		if m.subjects[i].ID == id {
			m.subjects[i].Name = strings.TrimSpace(name)
			return true
		}
	}
	return false
}

// RemoveSubject deletes the subject, its constraint and its requirements.
func (m *Model) RemoveSubject(id int) int {
	kept := m.subjects[:0]
	for _, s := range m.subjects {
		if s.ID != id {
			kept = append(kept, s)
		}
	}
	m.subjects = kept
	delete(m.constraints, id)
	return m.removeRequirements(func(r models.Requirement) bool { return r.SubjectID == id })
}

// Subject looks a subject up by id.
func (m *Model) Subject(id int) (models.Subject, bool) {
	for _, s := range m.subjects {
		if s.ID == id {
			return s, true
		}
	}
	return models.Subject{}, false
}

// SetSubjectConstraint stores the constraint of an existing subject.
func (m *Model) SetSubjectConstraint(c models.SubjectConstraint) error {
	if _, ok := m.Subject(c.SubjectID); !ok {
		return appErrors.Newf(appErrors.ErrNotFound, "subject %d not found", c.SubjectID)
	}
	if c.RequiresConsecutive && c.ConsecutiveCount < 2 {
		c.ConsecutiveCount = 2
	}
	m.constraints[c.SubjectID] = c
	return nil
}

// SubjectConstraint returns the stored constraint, or the default one with explicit=false.
func (m *Model) SubjectConstraint(subjectID int) (c models.SubjectConstraint, explicit bool) {
	if sc, ok := m.constraints[subjectID]; ok {
		return sc, true
	}
	return models.DefaultSubjectConstraint(subjectID), false
}

// --- Classes ---

// AddClass appends a class named by walking DefaultGrades × DefaultClassLetters from
// the current class count, skipping names already in use.
func (m *Model) AddClass() models.ClassGroup {
	grade, letter := m.nextDefaultClassName()
	return m.AddClassNamed(grade, letter)
}

// AddClassNamed appends a class with an explicit grade and name.
func (m *Model) AddClassNamed(grade, className string) models.ClassGroup {
	id := 1
	for _, c := range m.classes {
		if c.ID >= id {
			id = c.ID + 1
		}
	}
	class := models.ClassGroup{ID: id, Grade: strings.TrimSpace(grade), ClassName: strings.TrimSpace(className)}
	m.classes = append(m.classes, class)
	return class
}

func (m *Model) nextDefaultClassName() (string, string) {
	grades, letters := models.DefaultGrades, models.DefaultClassLetters
	used := make(map[string]bool, len(m.classes))
	for _, c := range m.classes {
		used[c.Grade+"\x00"+c.ClassName] = true
	}
	slots := len(grades) * len(letters)
	for offset := 0; offset < slots; offset++ {
		idx := (len(m.classes) + offset) % slots
		grade := grades[idx%len(grades)]
		letter := letters[idx/len(grades)]
		if !used[grade+"\x00"+letter] {
			return grade, letter
		}
	}
	// Every default slot is taken: continue with numbered sections.
	idx := len(m.classes)
	grade := grades[idx%len(grades)]
	for n := idx/slots + 1; ; n++ {
		name := fmt.Sprintf("%s%d", letters[idx/len(grades)%len(letters)], n)
		if !used[grade+"\x00"+name] {
			return grade, name
		}
	}
}

// RemoveClass deletes the class and its requirements.
func (m *Model) RemoveClass(id int) int {
	kept := m.classes[:0]
	for _, c := range m.classes {
		if c.ID != id {
			kept = append(kept, c)
		}
	}
	m.classes = kept
	return m.removeRequirements(func(r models.Requirement) bool { return r.ClassID == id })
}

// Class looks a class up by id.
func (m *Model) Class(id int) (models.ClassGroup, bool) {
	for _, c := range m.classes {
		if c.ID == id {
			return c, true
		}
	}
	return models.ClassGroup{}, false
}

// --- Requirements ---

// UpsertRequirement sets the weekly periods of the (class, subject) pair, creating the
// requirement when missing. New requirements go to the lowest-id teacher, or stay
// unassigned when there are no teachers. Negative periods are stored as zero.
func (m *Model) UpsertRequirement(classID, subjectID, periods int) (models.Requirement, error) {
	if periods < 0 {
		periods = 0
	}
	for i := range m.requirements {
		r := &m.requirements[i]
		if r.ClassID == classID && r.SubjectID == subjectID {
			r.PeriodsPerWeek = periods
			return *r, nil
		}
	}

	class, ok := m.Class(classID)
	if !ok {
		return models.Requirement{}, appErrors.Newf(appErrors.ErrNotFound, "class %d not found", classID)
	}
	subject, ok := m.Subject(subjectID)
	if !ok {
		return models.Requirement{}, appErrors.Newf(appErrors.ErrNotFound, "subject %d not found", subjectID)
	}

	id := 1
	for _, r := range m.requirements {
		if r.ID >= id {
			id = r.ID + 1
		}
	}
	req := models.Requirement{
		ID:             id,
		ClassID:        class.ID,
		Grade:          class.Grade,
		ClassName:      class.ClassName,
		SubjectID:      subject.ID,
		SubjectName:    subject.Name,
		PeriodsPerWeek: periods,
	}
	if teacher, ok := m.firstTeacher(); ok {
		req.TeacherID = models.TeacherRef(teacher.ID)
		req.TeacherName = teacher.Name
	}
	m.requirements = append(m.requirements, req)
	return req, nil
}

// AssignTeacher attaches teacherID (nil to unassign) to a requirement and refreshes its display copy.
func (m *Model) AssignTeacher(requirementID int, teacherID *int) (models.Requirement, error) {
	idx := m.requirementIndex(requirementID)
	if idx < 0 {
		return models.Requirement{}, appErrors.Newf(appErrors.ErrNotFound, "requirement %d not found", requirementID)
	}
	if teacherID == nil {
		m.requirements[idx].TeacherID = nil
		m.requirements[idx].TeacherName = ""
		return m.requirements[idx], nil
	}
	teacher, ok := m.Teacher(*teacherID)
	if !ok {
		return models.Requirement{}, appErrors.Newf(appErrors.ErrNotFound, "teacher %d not found", *teacherID)
	}
	m.assign(idx, teacher)
	return m.requirements[idx], nil
}

// RemoveRequirement deletes one requirement.
func (m *Model) RemoveRequirement(id int) bool {
	return m.removeRequirements(func(r models.Requirement) bool { return r.ID == id }) > 0
}

func (m *Model) assign(idx int, teacher models.Teacher) {
	m.requirements[idx].TeacherID = models.TeacherRef(teacher.ID)
	m.requirements[idx].TeacherName = teacher.Name
}

func (m *Model) requirementIndex(id int) int {
	for i, r := range m.requirements {
		if r.ID == id {
			return i
		}
	}
	return -1
}

func (m *Model) firstTeacher() (models.Teacher, bool) {
	if len(m.teachers) == 0 {
		return models.Teacher{}, false
	}
	first := m.teachers[0]
	for _, t := range m.teachers[1:] {
		if t.ID < first.ID {
			first = t
		}
	}
	return first, true
}

func (m *Model) removeRequirements(match func(models.Requirement) bool) int {
	kept := m.requirements[:0]
	removed := 0
	for _, r := range m.requirements {
		if match(r) {
			removed++
			continue
		}
		kept = append(kept, r)
	}
	m.requirements = kept
	return removed
}

// --- Config & bulk ---

// Config returns a copy of the simulation config.
func (m *Model) Config() models.SimulationConfig {
	return m.config.Clone()
}

// SetConfig replaces the simulation config.
func (m *Model) SetConfig(cfg models.SimulationConfig) {
	m.config = cfg.Clone()
}

// Teachers returns a copy of the teacher list.
func (m *Model) Teachers() []models.Teacher {
	return append([]models.Teacher{}, m.teachers...)
}

// Subjects returns a copy of the subject list.
func (m *Model) Subjects() []models.Subject {
	return append([]models.Subject{}, m.subjects...)
}

// Classes returns a copy of the class list.
func (m *Model) Classes() []models.ClassGroup {
	return append([]models.ClassGroup{}, m.classes...)
}

// Requirements returns a deep copy of the requirement list.
func (m *Model) Requirements() []models.Requirement {
	out := make([]models.Requirement, len(m.requirements))
	for i, r := range m.requirements {
		out[i] = cloneRequirement(r)
	}
	return out
}

// Clear empties all six entity collections. The config is kept.
func (m *Model) Clear() {
	m.teachers = nil
	m.subjects = nil
	m.classes = nil
	m.requirements = nil
	m.teacherPrefs = make(map[int]models.TeacherPreference)
	m.constraints = make(map[int]models.SubjectConstraint)
}

// Snapshot returns a deep copy of the model.
func (m *Model) Snapshot() models.Snapshot {
	snap := models.Snapshot{
		Teachers:           m.Teachers(),
		Subjects:           m.Subjects(),
		Classes:            m.Classes(),
		Requirements:       m.Requirements(),
		TeacherPreferences: make([]models.TeacherPreference, 0, len(m.teacherPrefs)),
		SubjectConstraints: make([]models.SubjectConstraint, 0, len(m.constraints)),
		Config:             m.config.Clone(),
	}
	for _, p := range m.teacherPrefs {
		p.GoldenDays = append([]string{}, p.GoldenDays...)
		snap.TeacherPreferences = append(snap.TeacherPreferences, p)
	}
	sort.Slice(snap.TeacherPreferences, func(i, j int) bool {
		return snap.TeacherPreferences[i].TeacherID < snap.TeacherPreferences[j].TeacherID
	})
	for _, c := range m.constraints {
		snap.SubjectConstraints = append(snap.SubjectConstraints, c)
	}
	sort.Slice(snap.SubjectConstraints, func(i, j int) bool {
		return snap.SubjectConstraints[i].SubjectID < snap.SubjectConstraints[j].SubjectID
	})
	return snap
}

// Load replaces the entity collections with those of snap, ordering each by id.
// Preferences and constraints pointing at unknown entities, and requirements
// pointing at unknown classes or subjects, are dropped. Requirements whose
// teacher is unknown become unassigned.
func (m *Model) Load(snap models.Snapshot) {
	m.Clear()
	m.teachers = append([]models.Teacher{}, snap.Teachers...)
	sort.Slice(m.teachers, func(i, j int) bool { return m.teachers[i].ID < m.teachers[j].ID })
	m.subjects = append([]models.Subject{}, snap.Subjects...)
	sort.Slice(m.subjects, func(i, j int) bool { return m.subjects[i].ID < m.subjects[j].ID })
	m.classes = append([]models.ClassGroup{}, snap.Classes...)
	sort.Slice(m.classes, func(i, j int) bool { return m.classes[i].ID < m.classes[j].ID })

	for _, p := range snap.TeacherPreferences {
		_ = m.SetTeacherPreference(p)
	}
	for _, c := range snap.SubjectConstraints {
		_ = m.SetSubjectConstraint(c)
	}
	for _, r := range snap.Requirements {
		if _, ok := m.Class(r.ClassID); !ok {
			continue
		}
		if _, ok := m.Subject(r.SubjectID); !ok {
			continue
		}
		r = cloneRequirement(r)
		if r.TeacherID != nil {
			if _, ok := m.Teacher(*r.TeacherID); !ok {
				r.TeacherID = nil
				r.TeacherName = ""
			}
		}
		if r.PeriodsPerWeek < 0 {
			r.PeriodsPerWeek = 0
		}
		m.requirements = append(m.requirements, r)
	}
	sort.Slice(m.requirements, func(i, j int) bool { return m.requirements[i].ID < m.requirements[j].ID })
}

func cloneRequirement(r models.Requirement) models.Requirement {
	if r.TeacherID != nil {
		r.TeacherID = models.TeacherRef(*r.TeacherID)
	}
	return r
}
