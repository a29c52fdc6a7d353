package service

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-schedule-sim/internal/models"
	appErrors "github.com/noah-isme/sma-schedule-sim/pkg/errors"
)

func populatedSession(t *testing.T) *Session {
	t.Helper()
	s := NewSession("sess-1", testSimulationConfig(), true)
	require.NoError(t, s.SwitchDataSource(SyntheticSource{Params: models.SyntheticParams{NumTeachers: 2}}, nil))
	require.NoError(t, s.Mutate(func(m *Model) error {
		m.AddTeacher("Ana")
		m.AddTeacher("Budi")
		math := m.AddSubject("Math")
		class := m.AddClass()
		_, err := m.UpsertRequirement(class.ID, math.ID, 5)
		return err
	}))
	return s
}

func advanceTo(t *testing.T, s *Session, target Step) {
	t.Helper()
	for s.View().Step < target {
		require.NoError(t, s.Next())
	}
}

func TestCanProceedRules(t *testing.T) {
	m := NewModel(models.SimulationConfig{})

	ok, _ := CanProceed(StepDataSource, m)
	assert.True(t, ok)
	ok, reason := CanProceed(StepBasicConfig, m)
	assert.False(t, ok)
	assert.NotEmpty(t, reason)
	m.SetConfig(testSimulationConfig())
	ok, _ = CanProceed(StepBasicConfig, m)
	assert.True(t, ok)

	ok, _ = CanProceed(StepTeacherPreferences, m)
	assert.False(t, ok)
	m.AddTeacher("Ana")
	ok, _ = CanProceed(StepTeacherPreferences, m)
	assert.True(t, ok)

	ok, _ = CanProceed(StepSubjectConstraints, m)
	assert.False(t, ok)
	m.AddSubject("Math")
	ok, _ = CanProceed(StepSubjectConstraints, m)
	assert.True(t, ok)

	ok, _ = CanProceed(StepReviewAndRun, m)
	assert.True(t, ok)
}

func TestCanProceedPeriodAllocationIff(t *testing.T) {
	m := NewModel(testSimulationConfig())
	m.AddTeacher("Ana")
	subject := m.AddSubject("Math")

	ok, _ := CanProceed(StepPeriodAllocation, m)
	assert.False(t, ok, "no classes")

	class := m.AddClass()
	ok, _ = CanProceed(StepPeriodAllocation, m)
	assert.False(t, ok, "no requirements")

	req, err := m.UpsertRequirement(class.ID, subject.ID, 0)
	require.NoError(t, err)
	ok, _ = CanProceed(StepPeriodAllocation, m)
	assert.False(t, ok, "only zero-period requirements")

	_, err = m.UpsertRequirement(class.ID, subject.ID, 2)
	require.NoError(t, err)
	ok, _ = CanProceed(StepPeriodAllocation, m)
	assert.True(t, ok)

	m.RemoveRequirement(req.ID)
	ok, _ = CanProceed(StepPeriodAllocation, m)
	assert.False(t, ok)
}

func TestParseStep(t *testing.T) {
	step, err := ParseStep(" Period_Allocation ")
	require.NoError(t, err)
	assert.Equal(t, StepPeriodAllocation, step)

	_, err = ParseStep("nowhere")
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}

func TestSessionNextBlockedByGate(t *testing.T) {
	s := NewSession("", models.SimulationConfig{}, false)
	require.NoError(t, s.Next())

	err := s.Next()
	require.Error(t, err)
	assert.ErrorIs(t, err, appErrors.ErrStepBlocked)
	assert.Equal(t, StepBasicConfig, s.View().Step)
	assert.False(t, s.View().CanProceed)
}

func TestSessionBackIsNonDestructive(t *testing.T) {
	s := populatedSession(t)
	advanceTo(t, s, StepReviewAndRun)
	before := s.View().Counts

	for i := 0; i < 10; i++ {
		require.NoError(t, s.Back())
	}

	view := s.View()
	assert.Equal(t, StepDataSource, view.Step)
	assert.Equal(t, before, view.Counts)
}

func TestSessionGoTo(t *testing.T) {
	s := populatedSession(t)

	require.NoError(t, s.GoTo(StepReviewAndRun))
	assert.Equal(t, StepReviewAndRun, s.View().Step)
	require.NoError(t, s.GoTo(StepTeacherPreferences))
	assert.ErrorIs(t, s.GoTo(StepResults), appErrors.ErrValidation)

	require.NoError(t, s.GoTo(StepDataSource))
	require.NoError(t, s.Mutate(func(m *Model) error {
		for _, teacher := range m.Teachers() {
			m.RemoveTeacher(teacher.ID)
		}
		return nil
	}))
	err := s.GoTo(StepReviewAndRun)
	assert.ErrorIs(t, err, appErrors.ErrStepBlocked)
	assert.Equal(t, StepDataSource, s.View().Step)
}

func TestSessionSwitchDataSourceEmptiesCollections(t *testing.T) {
	s := populatedSession(t)
	require.NoError(t, s.Mutate(func(m *Model) error {
		teacher := m.Teachers()[0]
		subject := m.Subjects()[0]
		if err := m.SetTeacherPreference(models.DefaultTeacherPreference(teacher.ID)); err != nil {
			return err
		}
		return m.SetSubjectConstraint(models.DefaultSubjectConstraint(subject.ID))
	}))

	require.NoError(t, s.SwitchDataSource(InstitutionSource{LoadedAt: time.Now()}, nil))

	view := s.View()
	assert.Equal(t, EntityCounts{}, view.Counts)
	assert.Equal(t, models.DataSourceInstitution, view.DataSource)
}

func TestSessionSwitchDataSourceOnlyAtFirstStep(t *testing.T) {
	s := populatedSession(t)
	require.NoError(t, s.Next())

	err := s.SwitchDataSource(InstitutionSource{}, nil)
	assert.ErrorIs(t, err, appErrors.ErrStepBlocked)
	assert.Equal(t, 2, s.View().Counts.Teachers)
}

func TestSessionRunLifecycle(t *testing.T) {
	s := populatedSession(t)

	_, err := s.BeginRun()
	assert.ErrorIs(t, err, appErrors.ErrStepBlocked)

	advanceTo(t, s, StepReviewAndRun)
	assert.ErrorIs(t, s.Next(), appErrors.ErrStepBlocked)

	ticket, err := s.BeginRun()
	require.NoError(t, err)
	assert.True(t, s.View().Running)
	assert.Len(t, ticket.Instance.Teachers, 2)

	_, err = s.BeginRun()
	assert.ErrorIs(t, err, appErrors.ErrRunInProgress)
	assert.ErrorIs(t, s.Mutate(func(*Model) error { return nil }), appErrors.ErrRunInProgress)
	assert.ErrorIs(t, s.Back(), appErrors.ErrRunInProgress)

	ticket.Instance.Teachers[0].Name = "changed"
	assert.False(t, s.CompleteRun("stale", &models.FailureOutcome{Status: models.RunStatusError}))
	require.True(t, s.CompleteRun(ticket.RunID, &models.FailureOutcome{Status: models.RunStatusError, ErrorMessage: "boom"}))

	view := s.View()
	assert.Equal(t, StepResults, view.Step)
	assert.False(t, view.Running)
	results, ok := view.View.(ResultsView)
	require.True(t, ok)
	assert.Equal(t, models.RunStatusError, results.Status)
	s.Read(func(m *Model) {
		assert.Equal(t, "Ana", m.Teachers()[0].Name)
	})

	assert.ErrorIs(t, s.Next(), appErrors.ErrStepBlocked)
	assert.ErrorIs(t, s.Back(), appErrors.ErrStepBlocked)

	require.NoError(t, s.Reset())
	assert.Equal(t, StepDataSource, s.View().Step)
	assert.Nil(t, s.Outcome())
	assert.Equal(t, 2, s.View().Counts.Teachers)
}

func TestSessionAbortRun(t *testing.T) {
	s := populatedSession(t)
	advanceTo(t, s, StepReviewAndRun)
	ticket, err := s.BeginRun()
	require.NoError(t, err)

	s.AbortRun(ticket.RunID)

	assert.False(t, s.Running())
	assert.Equal(t, StepReviewAndRun, s.View().Step)
}

func TestSessionStateRoundTrip(t *testing.T) {
	s := populatedSession(t)
	advanceTo(t, s, StepReviewAndRun)
	ticket, err := s.BeginRun()
	require.NoError(t, err)
	s.CompleteRun(ticket.RunID, &models.ScheduleOutcome{
		Status:   models.RunStatusOptimal,
		Schedule: []models.ScheduleEntry{{Teacher: "Ana", Subject: "Math", Class: "Grade 1 A", Day: "Sunday", Period: 1}},
	})

	state, err := s.State()
	require.NoError(t, err)
	raw, err := json.Marshal(state)
	require.NoError(t, err)

	var decoded SessionState
	require.NoError(t, json.Unmarshal(raw, &decoded))
	restored, err := RestoreSession(decoded, true)
	require.NoError(t, err)

	view := restored.View()
	assert.Equal(t, "sess-1", view.ID)
	assert.Equal(t, StepResults, view.Step)
	assert.Equal(t, models.DataSourceSynthetic, view.DataSource)
	assert.Equal(t, s.View().Counts, view.Counts)
	outcome, ok := restored.Outcome().(*models.ScheduleOutcome)
	require.True(t, ok)
	assert.Len(t, outcome.Schedule, 1)
}

func TestSessionViewShapeFollowsStep(t *testing.T) {
	s := populatedSession(t)

	source, ok := s.View().View.(DataSourceView)
	require.True(t, ok)
	assert.Equal(t, models.DataSourceSynthetic, source.Kind)
	assert.True(t, source.InstitutionEnabled)
	assert.Equal(t, 2, source.Counts.Teachers)

	require.NoError(t, s.Next())
	_, ok = s.View().View.(BasicConfigView)
	require.True(t, ok)

	require.NoError(t, s.Next())
	prefs, ok := s.View().View.(TeacherPreferencesView)
	require.True(t, ok)
	require.Len(t, prefs.Teachers, 2)
	assert.False(t, prefs.Teachers[0].Explicit)

	require.NoError(t, s.Next())
	constraints, ok := s.View().View.(SubjectConstraintsView)
	require.True(t, ok)
	require.Len(t, constraints.Subjects, 1)
	assert.Equal(t, "Math", constraints.Subjects[0].Subject.Name)

	require.NoError(t, s.Next())
	alloc, ok := s.View().View.(PeriodAllocationView)
	require.True(t, ok)
	require.Len(t, alloc.Requirements, 1)
	assert.Equal(t, 5, alloc.Requirements[0].PeriodsPerWeek)

	require.NoError(t, s.Next())
	view := s.View()
	review, ok := view.View.(ReviewView)
	require.True(t, ok)
	assert.Equal(t, 1, review.Counts.Requirements)
	assert.True(t, view.CanProceed)
	assert.Empty(t, view.BlockedReason)
	assert.Equal(t, "start a run to see results", view.Hint)
	assert.Equal(t, StepReviewAndRun, view.View.Step())
}
