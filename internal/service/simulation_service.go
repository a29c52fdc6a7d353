package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-schedule-sim/internal/dto"
	"github.com/noah-isme/sma-schedule-sim/internal/models"
	appErrors "github.com/noah-isme/sma-schedule-sim/pkg/errors"
	"github.com/noah-isme/sma-schedule-sim/pkg/jobs"
	"github.com/noah-isme/sma-schedule-sim/pkg/middleware/requestid"
)

// RunJobType tags simulation runs on the job queue.
const RunJobType = "simulation_run"

type institutionFetcher interface {
	FetchSnapshot(ctx context.Context) (*models.InstitutionSnapshot, error)
}

type syntheticGenerator interface {
	GenerateSynthetic(ctx context.Context, params models.SyntheticParams) (*models.SyntheticSnapshot, error)
}

type runExecutor interface {
	Execute(ctx context.Context, instance models.Snapshot) models.RunOutcome
}

type runDispatcher interface {
	Enqueue(job jobs.Job) error
	Busy(key string) bool
}

type gridExporter interface {
	ExportGrid(ctx context.Context, owner string, grid Grid, format string) (*ExportResult, error)
	Download(token string) (*ExportFile, error)
}

// SimulationServiceConfig carries the defaults applied to new sessions.
type SimulationServiceConfig struct {
	Defaults models.SimulationConfig
}

// SimulationService drives simulation sessions: data loading, editing, heuristics, runs and results.
type SimulationService struct {
	sessions    *SessionStore
	institution institutionFetcher
	synthetic   syntheticGenerator
	runner      runExecutor
	queue       runDispatcher
	distributor *Distributor
	exports     gridExporter
	validator   *validator.Validate
	metrics     *MetricsService
	logger      *zap.Logger
	cfg         SimulationServiceConfig
	now         func() time.Time
}

// NewSimulationService wires the simulation dependencies. institution may be nil when the
// institutional data source is disabled.
func NewSimulationService(
	sessions *SessionStore,
	institution institutionFetcher,
	synthetic syntheticGenerator,
	runner runExecutor,
	queue runDispatcher,
	distributor *Distributor,
	exports gridExporter,
	validate *validator.Validate,
	metrics *MetricsService,
	logger *zap.Logger,
	cfg SimulationServiceConfig,
) *SimulationService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if distributor == nil {
		distributor = NewDistributor(nil)
	}
	if len(cfg.Defaults.WorkingDays) == 0 {
		cfg.Defaults.WorkingDays = append([]string(nil), models.DefaultWorkingDays...)
	}
	if cfg.Defaults.DefaultPeriodsPerDay <= 0 {
		cfg.Defaults.DefaultPeriodsPerDay = 7
	}
	return &SimulationService{
		sessions:    sessions,
		institution: institution,
		synthetic:   synthetic,
		runner:      runner,
		queue:       queue,
		distributor: distributor,
		exports:     exports,
		validator:   validate,
		metrics:     metrics,
		logger:      logger,
		cfg:         cfg,
		now:         time.Now,
	}
}

// CreateSession opens a new session at the DataSource step.
func (s *SimulationService) CreateSession(ctx context.Context, req dto.CreateSessionRequest) (*SessionView, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid session payload")
	}
	cfg := s.cfg.Defaults.Clone()
	if name := strings.TrimSpace(req.Name); name != "" {
		cfg.Name = name
	}
	if len(req.WorkingDays) > 0 {
		cfg.WorkingDays = append([]string(nil), req.WorkingDays...)
	}
	if req.DefaultPeriodsPerDay > 0 {
		cfg.DefaultPeriodsPerDay = req.DefaultPeriodsPerDay
	}

	session := NewSession("", cfg, s.institution != nil)
	s.sessions.Add(ctx, session)
	s.logger.Info("simulation session created", zap.String("session_id", session.ID()))
	view := session.View()
	return &view, nil
}

// GetSession returns the current view of a session.
func (s *SimulationService) GetSession(ctx context.Context, id string) (*SessionView, error) {
	session, err := s.sessions.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	view := session.View()
	return &view, nil
}

// DeleteSession discards a session. Sessions with a run in flight are kept.
func (s *SimulationService) DeleteSession(ctx context.Context, id string) error {
	session, err := s.sessions.Get(ctx, id)
	if err != nil {
		return err
	}
	if session.Running() || s.runQueued(id) {
		return appErrors.ErrRunInProgress
	}
	s.sessions.Delete(ctx, id)
	return nil
}

// SelectDataSource loads entities from the chosen source, replacing everything in the session.
// Loading happens before the session is touched, so a failed load leaves the model as it was.
func (s *SimulationService) SelectDataSource(ctx context.Context, id string, req dto.DataSourceRequest) (*SessionView, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid data source payload")
	}
	session, err := s.sessions.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if session.Running() {
		return nil, appErrors.ErrRunInProgress
	}
	if session.Step() != StepDataSource {
		return nil, appErrors.Clone(appErrors.ErrStepBlocked, "go back to the data source step to switch data")
	}

	var cfg models.SimulationConfig
	session.Read(func(m *Model) { cfg = m.Config() })

	var (
		src  DataSource
		snap models.Snapshot
	)
	loadedAt := s.now().UTC()
	switch req.Kind {
	case models.DataSourceInstitution:
		if s.institution == nil {
			return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "institution data source is disabled")
		}
		start := time.Now()
		data, err := s.institution.FetchSnapshot(ctx)
		s.metrics.ObserveDBQuery("institution_snapshot", time.Since(start))
		if err != nil {
			s.logger.Warn("failed to load institution data", zap.String("session_id", id), zap.Error(err))
			return nil, appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, "failed to load institution data")
		}
		snap = institutionSnapshot(data, cfg)
		src = InstitutionSource{LoadedAt: loadedAt}
	case models.DataSourceSynthetic:
		if s.synthetic == nil {
			return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "synthetic generator is not configured")
		}
		data, err := s.synthetic.GenerateSynthetic(ctx, *req.Params)
		if err != nil {
			s.logger.Warn("failed to generate synthetic data", zap.String("session_id", id), zap.Error(err))
			return nil, appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, "failed to generate synthetic data")
		}
		snap = syntheticSnapshot(data, cfg)
		src = SyntheticSource{Params: *req.Params, LoadedAt: loadedAt}
	default:
		return nil, appErrors.Newf(appErrors.ErrValidation, "unknown data source %q", req.Kind)
	}

	if err := session.SwitchDataSource(src, &snap); err != nil {
		return nil, err
	}
	s.sessions.Save(ctx, session)
	s.logger.Info("simulation data source selected",
		zap.String("session_id", id),
		zap.String("kind", string(req.Kind)),
		zap.Int("teachers", len(snap.Teachers)),
		zap.Int("classes", len(snap.Classes)),
	)
	view := session.View()
	return &view, nil
}

func institutionSnapshot(data *models.InstitutionSnapshot, cfg models.SimulationConfig) models.Snapshot {
	snap := models.Snapshot{Config: cfg}
	if data == nil {
		return snap
	}
	snap.Teachers = data.Teachers
	snap.Subjects = data.Subjects
	snap.Classes = data.Classes
	snap.TeacherPreferences = data.TeacherPreferences
	snap.SubjectConstraints = data.SubjectConstraints
	return snap
}

func syntheticSnapshot(data *models.SyntheticSnapshot, cfg models.SimulationConfig) models.Snapshot {
	snap := models.Snapshot{Config: cfg.Clone()}
	if data == nil {
		return snap
	}
	data.ConfigOverrides.Apply(&snap.Config)
	snap.Teachers = data.Teachers
	snap.Subjects = data.Subjects
	snap.Classes = data.Classes
	snap.Requirements = data.Requirements
	snap.TeacherPreferences = data.TeacherPreferences
	snap.SubjectConstraints = data.SubjectConstraints
	return snap
}

// Navigate moves the wizard.
func (s *SimulationService) Navigate(ctx context.Context, id string, req dto.NavigateRequest) (*SessionView, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid navigation payload")
	}
	session, err := s.sessions.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	switch req.Action {
	case dto.NavigateNext:
		err = session.Next()
	case dto.NavigateBack:
		err = session.Back()
	case dto.NavigateReset:
		err = session.Reset()
	case dto.NavigateGoTo:
		var target Step
		target, err = ParseStep(req.Target)
		if err == nil {
			err = session.GoTo(target)
		}
	default:
		err = appErrors.Newf(appErrors.ErrValidation, "unknown navigation action %q", req.Action)
	}
	if err != nil {
		return nil, err
	}
	s.sessions.Save(ctx, session)
	view := session.View()
	return &view, nil
}

// UpdateConfig replaces the simulation config of a session.
func (s *SimulationService) UpdateConfig(ctx context.Context, id string, req dto.UpdateConfigRequest) (*models.SimulationConfig, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid config payload")
	}
	cfg := req.ToConfig()
	if _, err := s.mutate(ctx, id, func(m *Model) error {
		m.SetConfig(cfg)
		return nil
	}); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// AddTeacher appends a teacher. An empty name gets a default one.
func (s *SimulationService) AddTeacher(ctx context.Context, id string, req dto.TeacherRequest) (*models.Teacher, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid teacher payload")
	}
	var teacher models.Teacher
	_, err := s.mutate(ctx, id, func(m *Model) error {
		teacher = m.AddTeacher(req.Name)
		if req.WeeklyQuota != nil {
			m.SetTeacherQuota(teacher.ID, *req.WeeklyQuota)
			teacher, _ = m.Teacher(teacher.ID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &teacher, nil
}

// UpdateTeacher renames a teacher and optionally changes its weekly quota.
func (s *SimulationService) UpdateTeacher(ctx context.Context, id string, teacherID int, req dto.TeacherRequest) (*models.Teacher, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid teacher payload")
	}
	var teacher models.Teacher
	_, err := s.mutate(ctx, id, func(m *Model) error {
		if !m.RenameTeacher(teacherID, req.Name) {
			return appErrors.Newf(appErrors.ErrNotFound, "teacher %d not found", teacherID)
		}
		if req.WeeklyQuota != nil {
			m.SetTeacherQuota(teacherID, *req.WeeklyQuota)
		}
		teacher, _ = m.Teacher(teacherID)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &teacher, nil
}

// RemoveTeacher deletes a teacher along with its preference and requirements.
func (s *SimulationService) RemoveTeacher(ctx context.Context, id string, teacherID int) (int, error) {
	removed := 0
	_, err := s.mutate(ctx, id, func(m *Model) error {
		if _, ok := m.Teacher(teacherID); !ok {
			return appErrors.Newf(appErrors.ErrNotFound, "teacher %d not found", teacherID)
		}
		removed = m.RemoveTeacher(teacherID)
		return nil
	})
	return removed, err
}

// SetTeacherPreference stores the preference of a teacher.
func (s *SimulationService) SetTeacherPreference(ctx context.Context, id string, teacherID int, req dto.TeacherPreferenceRequest) (*models.TeacherPreference, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid teacher preference payload")
	}
	var pref models.TeacherPreference
	_, err := s.mutate(ctx, id, func(m *Model) error {
		if err := m.SetTeacherPreference(req.ToModel(teacherID)); err != nil {
			return err
		}
		pref, _ = m.TeacherPreference(teacherID)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &pref, nil
}

// AddSubject appends a subject.
func (s *SimulationService) AddSubject(ctx context.Context, id string, req dto.NameRequest) (*models.Subject, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid subject payload")
	}
	var subject models.Subject
	_, err := s.mutate(ctx, id, func(m *Model) error {
		subject = m.AddSubject(req.Name)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &subject, nil
}

// RenameSubject changes a subject's name.
func (s *SimulationService) RenameSubject(ctx context.Context, id string, subjectID int, req dto.NameRequest) (*models.Subject, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid subject payload")
	}
	var subject models.Subject
	_, err := s.mutate(ctx, id, func(m *Model) error {
		if !m.RenameSubject(subjectID, req.Name) {
			return appErrors.Newf(appErrors.ErrNotFound, "subject %d not found", subjectID)
		}
		subject, _ = m.Subject(subjectID)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &subject, nil
}

// RemoveSubject deletes a subject along with its constraint and requirements.
func (s *SimulationService) RemoveSubject(ctx context.Context, id string, subjectID int) (int, error) {
	removed := 0
	_, err := s.mutate(ctx, id, func(m *Model) error {
		if _, ok := m.Subject(subjectID); !ok {
			return appErrors.Newf(appErrors.ErrNotFound, "subject %d not found", subjectID)
		}
		removed = m.RemoveSubject(subjectID)
		return nil
	})
	return removed, err
}

// SetSubjectConstraint stores the constraint of a subject.
func (s *SimulationService) SetSubjectConstraint(ctx context.Context, id string, subjectID int, req dto.SubjectConstraintRequest) (*models.SubjectConstraint, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid subject constraint payload")
	}
	var constraint models.SubjectConstraint
	_, err := s.mutate(ctx, id, func(m *Model) error {
		if err := m.SetSubjectConstraint(req.ToModel(subjectID)); err != nil {
			return err
		}
		constraint, _ = m.SubjectConstraint(subjectID)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &constraint, nil
}

// AddClass appends a class, named by default when the request leaves grade and name empty.
func (s *SimulationService) AddClass(ctx context.Context, id string, req dto.ClassRequest) (*models.ClassGroup, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid class payload")
	}
	var class models.ClassGroup
	_, err := s.mutate(ctx, id, func(m *Model) error {
		if strings.TrimSpace(req.Grade) == "" {
			class = m.AddClass()
			return nil
		}
		class = m.AddClassNamed(req.Grade, req.ClassName)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &class, nil
}

// RemoveClass deletes a class and its requirements.
func (s *SimulationService) RemoveClass(ctx context.Context, id string, classID int) (int, error) {
	removed := 0
	_, err := s.mutate(ctx, id, func(m *Model) error {
		if _, ok := m.Class(classID); !ok {
			return appErrors.Newf(appErrors.ErrNotFound, "class %d not found", classID)
		}
		removed = m.RemoveClass(classID)
		return nil
	})
	return removed, err
}

// UpsertRequirement sets the weekly periods of a class and subject pair.
func (s *SimulationService) UpsertRequirement(ctx context.Context, id string, req dto.RequirementRequest) (*models.Requirement, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid requirement payload")
	}
	var requirement models.Requirement
	_, err := s.mutate(ctx, id, func(m *Model) (err error) {
		requirement, err = m.UpsertRequirement(req.ClassID, req.SubjectID, req.PeriodsPerWeek)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &requirement, nil
}

// AssignTeacher assigns or clears the teacher of a requirement.
func (s *SimulationService) AssignTeacher(ctx context.Context, id string, requirementID int, req dto.AssignTeacherRequest) (*models.Requirement, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid assignment payload")
	}
	var requirement models.Requirement
	_, err := s.mutate(ctx, id, func(m *Model) (err error) {
		requirement, err = m.AssignTeacher(requirementID, req.TeacherID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &requirement, nil
}

// RemoveRequirement deletes a requirement.
func (s *SimulationService) RemoveRequirement(ctx context.Context, id string, requirementID int) error {
	_, err := s.mutate(ctx, id, func(m *Model) error {
		if !m.RemoveRequirement(requirementID) {
			return appErrors.Newf(appErrors.ErrNotFound, "requirement %d not found", requirementID)
		}
		return nil
	})
	return err
}

// Distribute applies one of the pre-population heuristics to the session model.
func (s *SimulationService) Distribute(ctx context.Context, id, strategy string) (*dto.DistributeResponse, error) {
	resp := &dto.DistributeResponse{Strategy: strategy}
	var apply func(m *Model)
	switch strategy {
	case dto.StrategyRandomizePeriods:
		apply = func(m *Model) { resp.Allocations = s.distributor.RandomizePeriods(m) }
	case dto.StrategyRandomizeTeachers:
		apply = func(m *Model) { resp.Assigned = s.distributor.RandomizeTeachers(m) }
	case dto.StrategyBalanceTeachers:
		apply = func(m *Model) { resp.TeacherLoads = s.distributor.BalanceTeachers(m) }
	default:
		return nil, appErrors.Newf(appErrors.ErrValidation, "unknown distribution strategy %q", strategy)
	}
	if _, err := s.mutate(ctx, id, func(m *Model) error {
		apply(m)
		return nil
	}); err != nil {
		return nil, err
	}
	s.metrics.RecordHeuristic(strategy)
	s.logger.Debug("simulation heuristic applied", zap.String("session_id", id), zap.String("strategy", strategy))
	return resp, nil
}

// StartRun marks the session as running and queues the solver call.
func (s *SimulationService) StartRun(ctx context.Context, id string) (*dto.RunResponse, error) {
	if s.queue == nil {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "run queue is not configured")
	}
	session, err := s.sessions.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	// The worker releases the key only after CompleteRun, so a finished run can still hold it.
	if s.runQueued(id) {
		return nil, appErrors.ErrRunInProgress
	}
	ticket, err := session.BeginRun()
	if err != nil {
		return nil, err
	}
	job := jobs.Job{ID: ticket.RunID, Type: RunJobType, Key: ticket.SessionID, Payload: ticket}
	if err := s.queue.Enqueue(job); err != nil {
		session.AbortRun(ticket.RunID)
		if errors.Is(err, jobs.ErrDuplicateKey) {
			return nil, appErrors.ErrRunInProgress
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to enqueue simulation run")
	}
	s.sessions.Save(ctx, session)
	s.logger.Info("simulation run queued", zap.String("session_id", id), zap.String("run_id", ticket.RunID))
	return &dto.RunResponse{SessionID: ticket.SessionID, RunID: ticket.RunID, Status: "queued"}, nil
}

func (s *SimulationService) runQueued(id string) bool {
	return s.queue != nil && s.queue.Busy(id)
}

// RunNow executes a run in the calling goroutine and returns its outcome.
func (s *SimulationService) RunNow(ctx context.Context, id string) (models.RunOutcome, error) {
	if s.runner == nil {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "solver is not configured")
	}
	session, err := s.sessions.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	ticket, err := session.BeginRun()
	if err != nil {
		return nil, err
	}
	outcome := s.runner.Execute(ctx, ticket.Instance)
	session.CompleteRun(ticket.RunID, outcome)
	s.sessions.Save(ctx, session)
	return outcome, nil
}

// Result returns the outcome of the last run.
func (s *SimulationService) Result(ctx context.Context, id string) (models.RunOutcome, error) {
	session, err := s.sessions.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	outcome := session.Outcome()
	if outcome == nil {
		if session.Running() {
			return nil, appErrors.ErrRunInProgress
		}
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "no run result available")
	}
	return outcome, nil
}

// Entities lists the classes and teachers present in the last schedule.
func (s *SimulationService) Entities(ctx context.Context, id string) (*EntityIndex, error) {
	outcome, presenter, err := s.presenterFor(ctx, id)
	if err != nil {
		return nil, err
	}
	index := presenter.Entities(outcome)
	return &index, nil
}

// ClassGrid renders the weekly grid of one class.
func (s *SimulationService) ClassGrid(ctx context.Context, id, class string) (*Grid, error) {
	outcome, presenter, err := s.presenterFor(ctx, id)
	if err != nil {
		return nil, err
	}
	grid, err := presenter.ClassGrid(outcome, class)
	if err != nil {
		return nil, err
	}
	return &grid, nil
}

// TeacherGrid renders the weekly grid of one teacher.
func (s *SimulationService) TeacherGrid(ctx context.Context, id, teacher string) (*Grid, error) {
	outcome, presenter, err := s.presenterFor(ctx, id)
	if err != nil {
		return nil, err
	}
	grid, err := presenter.TeacherGrid(outcome, teacher)
	if err != nil {
		return nil, err
	}
	return &grid, nil
}

// Heatmap renders the conflict heatmap of a failed run.
func (s *SimulationService) Heatmap(ctx context.Context, id string) (*HeatmapView, error) {
	outcome, presenter, err := s.presenterFor(ctx, id)
	if err != nil {
		return nil, err
	}
	view, ok := presenter.Heatmap(outcome)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "no conflict heatmap for this run")
	}
	return &view, nil
}

// Export renders one grid of the last result to a downloadable file.
func (s *SimulationService) Export(ctx context.Context, id string, req dto.ExportRequest) (*ExportResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid export payload")
	}
	if s.exports == nil {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "exports are not configured")
	}
	var (
		grid *Grid
		err  error
	)
	if req.View == GridKindTeacher {
		grid, err = s.TeacherGrid(ctx, id, req.Key)
	} else {
		grid, err = s.ClassGrid(ctx, id, req.Key)
	}
	if err != nil {
		return nil, err
	}
	return s.exports.ExportGrid(ctx, id, *grid, req.Format)
}

// Download resolves a signed export token.
func (s *SimulationService) Download(token string) (*ExportFile, error) {
	if s.exports == nil {
		return nil, appErrors.ErrNotFound
	}
	return s.exports.Download(token)
}

// SweepSessions expires idle sessions and reports how many were dropped.
func (s *SimulationService) SweepSessions(ctx context.Context) int {
	removed := s.sessions.Sweep(ctx)
	if removed > 0 {
		s.logger.Info("expired simulation sessions", zap.Int("count", removed))
	}
	return removed
}

func (s *SimulationService) presenterFor(ctx context.Context, id string) (models.RunOutcome, ResultPresenter, error) {
	session, err := s.sessions.Get(ctx, id)
	if err != nil {
		return nil, ResultPresenter{}, err
	}
	var cfg models.SimulationConfig
	session.Read(func(m *Model) { cfg = m.Config() })
	return session.Outcome(), NewResultPresenter(cfg), nil
}

func (s *SimulationService) mutate(ctx context.Context, id string, fn func(m *Model) error) (*Session, error) {
	session, err := s.sessions.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := session.Mutate(fn); err != nil {
		return nil, err
	}
	s.sessions.Save(ctx, session)
	return session, nil
}

// RunWorker executes queued simulation runs.
type RunWorker struct {
	sessions *SessionStore
	runner   runExecutor
	logger   *zap.Logger
}

// NewRunWorker constructs a worker.
func NewRunWorker(sessions *SessionStore, runner runExecutor, logger *zap.Logger) *RunWorker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RunWorker{sessions: sessions, runner: runner, logger: logger}
}

// Handle processes a queue job. Runs are never retried: every failure becomes an outcome.
func (w *RunWorker) Handle(ctx context.Context, job jobs.Job) error {
	ticket, ok := job.Payload.(RunTicket)
	if !ok {
		w.logger.Error("unexpected simulation job payload", zap.String("job_id", job.ID))
		return nil
	}
	session, err := w.sessions.Get(ctx, ticket.SessionID)
	if err != nil {
		w.logger.Warn("simulation session gone before run", zap.String("session_id", ticket.SessionID), zap.Error(err))
		return nil
	}
	outcome := w.runner.Execute(requestid.WithValue(ctx, ticket.RunID), ticket.Instance)
	if !session.CompleteRun(ticket.RunID, outcome) {
		w.logger.Warn("discarding stale simulation run", zap.String("session_id", ticket.SessionID), zap.String("run_id", ticket.RunID))
		return nil
	}
	w.sessions.Save(ctx, session)
	return nil
}
