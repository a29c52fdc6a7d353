package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-schedule-sim/internal/models"
)

func newInstitutionMock(t *testing.T) (*InstitutionRepository, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return NewInstitutionRepository(sqlx.NewDb(db, "sqlmock")), mock, func() { db.Close() }
}

func TestInstitutionRepositoryFetchSnapshot(t *testing.T) {
	repo, mock, cleanup := newInstitutionMock(t)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FROM teachers WHERE active = TRUE")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "weekly_quota"}).
			AddRow(1, "Ana", 24).
			AddRow(2, "Budi", 18))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name FROM subjects")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).AddRow(1, "Math"))
	mock.ExpectQuery(regexp.QuoteMeta("FROM classes")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "grade", "class_name"}).AddRow(10, "Grade 7", "A"))
	mock.ExpectQuery(regexp.QuoteMeta("FROM teacher_preferences p")).
		WillReturnRows(sqlmock.NewRows([]string{"teacher_id", "weekly_quota", "min_daily_periods", "max_daily_periods", "max_consecutive", "prefer_time", "teaching_style", "golden_days"}).
			AddRow(2, 18, 1, 5, 2, "early", "consecutive", "{Monday,Tuesday}"))
	mock.ExpectQuery(regexp.QuoteMeta("FROM subject_constraints c")).
		WillReturnRows(sqlmock.NewRows([]string{"subject_id", "requires_consecutive", "consecutive_count", "avoid_first_period", "avoid_last_period", "no_consecutive_days", "max_per_day", "is_heavy"}).
			AddRow(1, true, 2, false, true, false, 2, true))
	mock.ExpectCommit()

	snap, err := repo.FetchSnapshot(context.Background())
	require.NoError(t, err)

	require.Len(t, snap.Teachers, 2)
	assert.Equal(t, 18, snap.Teachers[1].WeeklyQuota)
	assert.Equal(t, "A", snap.Classes[0].ClassName)
	require.Len(t, snap.TeacherPreferences, 1)
	pref := snap.TeacherPreferences[0]
	assert.Equal(t, models.PreferTimeEarly, pref.PreferTime)
	assert.Equal(t, []string{"Monday", "Tuesday"}, pref.GoldenDays)
	require.Len(t, snap.SubjectConstraints, 1)
	assert.True(t, snap.SubjectConstraints[0].IsHeavy)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInstitutionRepositoryFetchSnapshotError(t *testing.T) {
	repo, mock, cleanup := newInstitutionMock(t)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectQuery("FROM teachers").WillReturnError(errors.New("relation does not exist"))
	mock.ExpectRollback()

	_, err := repo.FetchSnapshot(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "list teachers")
	assert.NoError(t, mock.ExpectationsWereMet())
}
