package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/sma-schedule-sim/internal/models"
)

// InstitutionRepository reads the school's current staff, subjects and classes for simulations.
type InstitutionRepository struct {
	db *sqlx.DB
}

// NewInstitutionRepository constructs the repository.
func NewInstitutionRepository(db *sqlx.DB) *InstitutionRepository {
	return &InstitutionRepository{db: db}
}

const (
	institutionTeachersQuery = `SELECT id, full_name AS name, COALESCE(weekly_quota, 24) AS weekly_quota
		FROM teachers WHERE active = TRUE ORDER BY id`
	institutionSubjectsQuery = `SELECT id, name FROM subjects WHERE active = TRUE ORDER BY id`
	institutionClassesQuery  = `SELECT id, grade, name AS class_name FROM classes WHERE active = TRUE ORDER BY id`
	institutionPrefsQuery    = `SELECT p.teacher_id, p.weekly_quota, p.min_daily_periods, p.max_daily_periods, p.max_consecutive,
		p.prefer_time, p.teaching_style, p.golden_days
		FROM teacher_preferences p JOIN teachers t ON t.id = p.teacher_id
		WHERE t.active = TRUE ORDER BY p.teacher_id`
	institutionConstraintsQuery = `SELECT c.subject_id, c.requires_consecutive, c.consecutive_count, c.avoid_first_period,
		c.avoid_last_period, c.no_consecutive_days, c.max_per_day, c.is_heavy
		FROM subject_constraints c JOIN subjects s ON s.id = c.subject_id
		WHERE s.active = TRUE ORDER BY c.subject_id`
)

type teacherPreferenceRow struct {
	models.TeacherPreference
	GoldenDays pq.StringArray `db:"golden_days"`
}

// FetchSnapshot loads every entity the simulator needs in one read-only transaction.
// The institution has no requirements; those are built in the wizard.
func (r *InstitutionRepository) FetchSnapshot(ctx context.Context) (*models.InstitutionSnapshot, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin institution snapshot: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	snapshot := &models.InstitutionSnapshot{
		Teachers:           []models.Teacher{},
		Subjects:           []models.Subject{},
		Classes:            []models.ClassGroup{},
		TeacherPreferences: []models.TeacherPreference{},
		SubjectConstraints: []models.SubjectConstraint{},
	}

	if err := tx.SelectContext(ctx, &snapshot.Teachers, institutionTeachersQuery); err != nil {
		return nil, fmt.Errorf("list teachers: %w", err)
	}
	if err := tx.SelectContext(ctx, &snapshot.Subjects, institutionSubjectsQuery); err != nil {
		return nil, fmt.Errorf("list subjects: %w", err)
	}
	if err := tx.SelectContext(ctx, &snapshot.Classes, institutionClassesQuery); err != nil {
		return nil, fmt.Errorf("list classes: %w", err)
	}

	var prefs []teacherPreferenceRow
	if err := tx.SelectContext(ctx, &prefs, institutionPrefsQuery); err != nil {
		return nil, fmt.Errorf("list teacher preferences: %w", err)
	}
	for _, row := range prefs {
		pref := row.TeacherPreference
		pref.GoldenDays = append([]string{}, row.GoldenDays...)
		snapshot.TeacherPreferences = append(snapshot.TeacherPreferences, pref)
	}

	if err := tx.SelectContext(ctx, &snapshot.SubjectConstraints, institutionConstraintsQuery); err != nil {
		return nil, fmt.Errorf("list subject constraints: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit institution snapshot: %w", err)
	}
	return snapshot, nil
}
