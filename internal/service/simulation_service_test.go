package service

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-schedule-sim/internal/dto"
	"github.com/noah-isme/sma-schedule-sim/internal/models"
	appErrors "github.com/noah-isme/sma-schedule-sim/pkg/errors"
	"github.com/noah-isme/sma-schedule-sim/pkg/jobs"
)

type institutionStub struct {
	snap *models.InstitutionSnapshot
	err  error
}

func (s *institutionStub) FetchSnapshot(context.Context) (*models.InstitutionSnapshot, error) {
	return s.snap, s.err
}

type syntheticStub struct {
	snap   *models.SyntheticSnapshot
	err    error
	params models.SyntheticParams
}

func (s *syntheticStub) GenerateSynthetic(_ context.Context, params models.SyntheticParams) (*models.SyntheticSnapshot, error) {
	s.params = params
	return s.snap, s.err
}

type runnerStub struct {
	outcome  models.RunOutcome
	received models.Snapshot
}

func (r *runnerStub) Execute(_ context.Context, instance models.Snapshot) models.RunOutcome {
	r.received = instance
	return r.outcome
}

type queueStub struct {
	mu   sync.Mutex
	jobs []jobs.Job
	err  error
	busy map[string]bool
}

func (q *queueStub) Busy(key string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.busy[key]
}

func (q *queueStub) Enqueue(job jobs.Job) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.err != nil {
		return q.err
	}
	q.jobs = append(q.jobs, job)
	return nil
}

func syntheticFixture() *models.SyntheticSnapshot {
	periods := 8
	return &models.SyntheticSnapshot{
		Teachers: []models.Teacher{{ID: 1, Name: "Ana", WeeklyQuota: 24}, {ID: 2, Name: "Budi", WeeklyQuota: 24}},
		Subjects: []models.Subject{{ID: 1, Name: "Math"}, {ID: 2, Name: "Art"}},
		Classes:  []models.ClassGroup{{ID: 1, Grade: "Grade 1", ClassName: "A"}},
		Requirements: []models.Requirement{
			{ID: 1, ClassID: 1, Grade: "Grade 1", ClassName: "A", SubjectID: 1, SubjectName: "Math", TeacherID: models.TeacherRef(1), TeacherName: "Ana", PeriodsPerWeek: 5},
			{ID: 2, ClassID: 1, Grade: "Grade 1", ClassName: "A", SubjectID: 2, SubjectName: "Art", TeacherID: models.TeacherRef(2), TeacherName: "Budi", PeriodsPerWeek: 2},
		},
		ConfigOverrides: &models.ConfigOverrides{DefaultPeriodsPerDay: &periods},
	}
}

type simulationFixture struct {
	svc         *SimulationService
	store       *SessionStore
	institution *institutionStub
	synthetic   *syntheticStub
	runner      *runnerStub
	queue       *queueStub
}

func newSimulationFixture(t *testing.T, withInstitution bool) simulationFixture {
	t.Helper()
	f := simulationFixture{
		store:     NewSessionStore(time.Hour, nil, nil, nil, withInstitution),
		synthetic: &syntheticStub{snap: syntheticFixture()},
		runner: &runnerStub{outcome: &models.ScheduleOutcome{
			Status:   models.RunStatusOptimal,
			Schedule: sampleSchedule(),
			ByClass: map[string]models.WeekGrid{
				"Grade 1 A": {"Sunday": {1: {Subject: "Math", Teacher: "Ana"}}},
			},
		}},
		queue: &queueStub{},
	}
	var institution institutionFetcher
	if withInstitution {
		f.institution = &institutionStub{}
		institution = f.institution
	}
	f.svc = NewSimulationService(
		f.store,
		institution,
		f.synthetic,
		f.runner,
		f.queue,
		NewDistributor(rand.New(rand.NewSource(7))),
		nil,
		nil,
		NewMetricsService(),
		nil,
		SimulationServiceConfig{Defaults: testSimulationConfig()},
	)
	return f
}

func (f simulationFixture) syntheticSession(t *testing.T) string {
	t.Helper()
	ctx := context.Background()
	view, err := f.svc.CreateSession(ctx, dto.CreateSessionRequest{})
	require.NoError(t, err)
	_, err = f.svc.SelectDataSource(ctx, view.ID, dto.DataSourceRequest{
		Kind:   models.DataSourceSynthetic,
		Params: &models.SyntheticParams{NumTeachers: 2, NumSubjects: 2, NumGrades: 1, ClassesPerGrade: 1, PeriodsPerDay: 8},
	})
	require.NoError(t, err)
	return view.ID
}

func (f simulationFixture) navigateTo(t *testing.T, id string, target Step) {
	t.Helper()
	_, err := f.svc.Navigate(context.Background(), id, dto.NavigateRequest{Action: dto.NavigateGoTo, Target: target.String()})
	require.NoError(t, err)
}

func TestSimulationServiceCreateSessionAppliesDefaults(t *testing.T) {
	f := newSimulationFixture(t, false)

	view, err := f.svc.CreateSession(context.Background(), dto.CreateSessionRequest{Name: "Draft B", DefaultPeriodsPerDay: 6})
	require.NoError(t, err)
	assert.Equal(t, StepDataSource, view.Step)
	assert.Equal(t, 1, f.store.Len())

	session, err := f.store.Get(context.Background(), view.ID)
	require.NoError(t, err)
	session.Read(func(m *Model) {
		assert.Equal(t, "Draft B", m.Config().Name)
		assert.Equal(t, 6, m.Config().DefaultPeriodsPerDay)
		assert.Equal(t, testSimulationConfig().WorkingDays, m.Config().WorkingDays)
	})
}

func TestSimulationServiceCreateSessionValidation(t *testing.T) {
	f := newSimulationFixture(t, false)

	_, err := f.svc.CreateSession(context.Background(), dto.CreateSessionRequest{DefaultPeriodsPerDay: 40})
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}

func TestSimulationServiceSyntheticSourceAppliesOverrides(t *testing.T) {
	f := newSimulationFixture(t, false)
	id := f.syntheticSession(t)

	view, err := f.svc.GetSession(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, models.DataSourceSynthetic, view.DataSource)
	assert.Equal(t, 2, view.Counts.Teachers)
	assert.Equal(t, 2, view.Counts.Requirements)
	assert.Equal(t, 2, f.synthetic.params.NumTeachers)

	session, _ := f.store.Get(context.Background(), id)
	session.Read(func(m *Model) {
		assert.Equal(t, 8, m.Config().DefaultPeriodsPerDay)
		assert.Equal(t, testSimulationConfig().Name, m.Config().Name)
	})
}

func TestSimulationServiceUpstreamFailureKeepsModel(t *testing.T) {
	f := newSimulationFixture(t, false)
	id := f.syntheticSession(t)
	f.synthetic.err = errors.New("generator unavailable")

	_, err := f.svc.SelectDataSource(context.Background(), id, dto.DataSourceRequest{
		Kind:   models.DataSourceSynthetic,
		Params: &models.SyntheticParams{NumTeachers: 1, NumSubjects: 1, NumGrades: 1, ClassesPerGrade: 1, PeriodsPerDay: 5},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, appErrors.ErrUpstream)

	view, err := f.svc.GetSession(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, 2, view.Counts.Teachers)
}

func TestSimulationServiceInstitutionSource(t *testing.T) {
	ctx := context.Background()

	disabled := newSimulationFixture(t, false)
	view, err := disabled.svc.CreateSession(ctx, dto.CreateSessionRequest{})
	require.NoError(t, err)
	_, err = disabled.svc.SelectDataSource(ctx, view.ID, dto.DataSourceRequest{Kind: models.DataSourceInstitution})
	assert.ErrorIs(t, err, appErrors.ErrPreconditionFailed)

	enabled := newSimulationFixture(t, true)
	enabled.institution.snap = &models.InstitutionSnapshot{
		Teachers: []models.Teacher{{ID: 3, Name: "Citra", WeeklyQuota: 20}},
		Subjects: []models.Subject{{ID: 4, Name: "Biology"}},
		Classes:  []models.ClassGroup{{ID: 9, Grade: "Grade 2", ClassName: "B"}},
	}
	view, err = enabled.svc.CreateSession(ctx, dto.CreateSessionRequest{})
	require.NoError(t, err)
	view, err = enabled.svc.SelectDataSource(ctx, view.ID, dto.DataSourceRequest{Kind: models.DataSourceInstitution})
	require.NoError(t, err)
	assert.Equal(t, models.DataSourceInstitution, view.DataSource)
	assert.Equal(t, 1, view.Counts.Classes)
	assert.Zero(t, view.Counts.Requirements)
}

func TestSimulationServiceSwitchOnlyAtDataSource(t *testing.T) {
	f := newSimulationFixture(t, false)
	id := f.syntheticSession(t)
	f.navigateTo(t, id, StepBasicConfig)

	_, err := f.svc.SelectDataSource(context.Background(), id, dto.DataSourceRequest{
		Kind:   models.DataSourceSynthetic,
		Params: &models.SyntheticParams{NumTeachers: 1, NumSubjects: 1, NumGrades: 1, ClassesPerGrade: 1, PeriodsPerDay: 5},
	})
	assert.ErrorIs(t, err, appErrors.ErrStepBlocked)
}

func TestSimulationServiceEntityEdits(t *testing.T) {
	ctx := context.Background()
	f := newSimulationFixture(t, false)
	id := f.syntheticSession(t)

	quota := 18
	teacher, err := f.svc.AddTeacher(ctx, id, dto.TeacherRequest{Name: "Citra", WeeklyQuota: &quota})
	require.NoError(t, err)
	assert.Equal(t, 3, teacher.ID)
	assert.Equal(t, 18, teacher.WeeklyQuota)

	_, err = f.svc.UpdateTeacher(ctx, id, 99, dto.TeacherRequest{Name: "Nobody"})
	assert.ErrorIs(t, err, appErrors.ErrNotFound)

	class, err := f.svc.AddClass(ctx, id, dto.ClassRequest{})
	require.NoError(t, err)
	assert.NotEmpty(t, class.Grade)

	req, err := f.svc.UpsertRequirement(ctx, id, dto.RequirementRequest{ClassID: class.ID, SubjectID: 1, PeriodsPerWeek: 4})
	require.NoError(t, err)
	assert.Equal(t, 1, *req.TeacherID)

	req, err = f.svc.AssignTeacher(ctx, id, req.ID, dto.AssignTeacherRequest{TeacherID: models.TeacherRef(3)})
	require.NoError(t, err)
	assert.Equal(t, "Citra", req.TeacherName)

	removed, err := f.svc.RemoveTeacher(ctx, id, 3)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	_, err = f.svc.SetSubjectConstraint(ctx, id, 1, dto.SubjectConstraintRequest{RequiresConsecutive: true, ConsecutiveCount: 2})
	require.NoError(t, err)

	_, err = f.svc.SetTeacherPreference(ctx, id, 1, dto.TeacherPreferenceRequest{MinDailyPeriods: 4, MaxDailyPeriods: 2})
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	assert.ErrorIs(t, f.svc.RemoveRequirement(ctx, id, 404), appErrors.ErrNotFound)
}

func TestSimulationServiceDistribute(t *testing.T) {
	ctx := context.Background()
	f := newSimulationFixture(t, false)
	id := f.syntheticSession(t)

	resp, err := f.svc.Distribute(ctx, id, dto.StrategyBalanceTeachers)
	require.NoError(t, err)
	assert.Equal(t, map[int]int{1: 5, 2: 2}, resp.TeacherLoads)

	resp, err = f.svc.Distribute(ctx, id, dto.StrategyRandomizePeriods)
	require.NoError(t, err)
	total := 0
	for _, periods := range resp.Allocations["Grade 1"] {
		total += periods
	}
	assert.Equal(t, 5*8, total)

	_, err = f.svc.Distribute(ctx, id, "shuffle-everything")
	assert.ErrorIs(t, err, appErrors.ErrValidation)
	assert.Equal(t, uint64(2), f.svc.metrics.Snapshot().HeuristicsApplied)
}

func TestSimulationServiceRunLifecycle(t *testing.T) {
	ctx := context.Background()
	f := newSimulationFixture(t, false)
	id := f.syntheticSession(t)

	_, err := f.svc.StartRun(ctx, id)
	assert.ErrorIs(t, err, appErrors.ErrStepBlocked)

	f.navigateTo(t, id, StepReviewAndRun)
	resp, err := f.svc.StartRun(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "queued", resp.Status)
	require.Len(t, f.queue.jobs, 1)
	assert.Equal(t, id, f.queue.jobs[0].Key)

	_, err = f.svc.StartRun(ctx, id)
	assert.ErrorIs(t, err, appErrors.ErrRunInProgress)
	_, err = f.svc.AddSubject(ctx, id, dto.NameRequest{Name: "Music"})
	assert.ErrorIs(t, err, appErrors.ErrRunInProgress)
	_, err = f.svc.Result(ctx, id)
	assert.ErrorIs(t, err, appErrors.ErrRunInProgress)

	worker := NewRunWorker(f.store, f.runner, nil)
	require.NoError(t, worker.Handle(ctx, f.queue.jobs[0]))
	assert.Len(t, f.runner.received.Requirements, 2)

	view, err := f.svc.GetSession(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, StepResults, view.Step)
	assert.False(t, view.Running)

	outcome, err := f.svc.Result(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, models.RunStatusOptimal, outcome.RunStatus())

	grid, err := f.svc.ClassGrid(ctx, id, "Grade 1 A")
	require.NoError(t, err)
	require.NotNil(t, grid.Cells[0][0])
	assert.Equal(t, "Math", grid.Cells[0][0].Subject)

	_, err = f.svc.Heatmap(ctx, id)
	assert.ErrorIs(t, err, appErrors.ErrNotFound)

	_, err = f.svc.Navigate(ctx, id, dto.NavigateRequest{Action: dto.NavigateReset})
	require.NoError(t, err)
	_, err = f.svc.Result(ctx, id)
	assert.ErrorIs(t, err, appErrors.ErrPreconditionFailed)
}

func TestSimulationServiceEnqueueFailureReleasesSession(t *testing.T) {
	ctx := context.Background()
	f := newSimulationFixture(t, false)
	id := f.syntheticSession(t)
	f.navigateTo(t, id, StepReviewAndRun)
	f.queue.err = errors.New("queue stopped")

	_, err := f.svc.StartRun(ctx, id)
	assert.ErrorIs(t, err, appErrors.ErrInternal)

	view, err := f.svc.GetSession(ctx, id)
	require.NoError(t, err)
	assert.False(t, view.Running)
	assert.Equal(t, StepReviewAndRun, view.Step)
}

func TestSimulationServiceQueuedKeyBlocksRunAndDelete(t *testing.T) {
	ctx := context.Background()
	f := newSimulationFixture(t, false)
	id := f.syntheticSession(t)
	f.navigateTo(t, id, StepReviewAndRun)
	f.queue.busy = map[string]bool{id: true}

	_, err := f.svc.StartRun(ctx, id)
	assert.ErrorIs(t, err, appErrors.ErrRunInProgress)
	assert.Empty(t, f.queue.jobs)

	view, err := f.svc.GetSession(ctx, id)
	require.NoError(t, err)
	assert.False(t, view.Running)

	assert.ErrorIs(t, f.svc.DeleteSession(ctx, id), appErrors.ErrRunInProgress)

	f.queue.busy = nil
	require.NoError(t, f.svc.DeleteSession(ctx, id))
	_, err = f.svc.GetSession(ctx, id)
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}

func TestSimulationServiceRunNowReportsFailure(t *testing.T) {
	ctx := context.Background()
	f := newSimulationFixture(t, false)
	f.runner.outcome = &models.FailureOutcome{
		Status:          models.RunStatusInfeasible,
		ErrorMessage:    "no room for Math",
		ConflictHeatmap: models.ConflictHeatmap{"Sunday": {1: 3}},
	}
	id := f.syntheticSession(t)
	f.navigateTo(t, id, StepReviewAndRun)

	outcome, err := f.svc.RunNow(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, models.RunStatusInfeasible, outcome.RunStatus())

	heatmap, err := f.svc.Heatmap(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 3.0, heatmap.Max)

	_, err = f.svc.ClassGrid(ctx, id, "Grade 1 A")
	assert.ErrorIs(t, err, appErrors.ErrPreconditionFailed)
}

func TestRunWorkerIgnoresStaleTickets(t *testing.T) {
	ctx := context.Background()
	f := newSimulationFixture(t, false)
	id := f.syntheticSession(t)
	f.navigateTo(t, id, StepReviewAndRun)

	worker := NewRunWorker(f.store, f.runner, nil)
	stale := jobs.Job{Key: id, Payload: RunTicket{SessionID: id, RunID: "old-run"}}
	require.NoError(t, worker.Handle(ctx, stale))

	view, err := f.svc.GetSession(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, StepReviewAndRun, view.Step)
}
