package service

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/noah-isme/sma-schedule-sim/internal/models"
	appErrors "github.com/noah-isme/sma-schedule-sim/pkg/errors"
)

// Session owns one wizard run-through: its model, current step, data source and last outcome.
// Every read and write of the model goes through the session lock.
type Session struct {
	id                 string
	institutionEnabled bool

	mu        sync.Mutex
	model     *Model
	step      Step
	source    DataSource
	outcome   models.RunOutcome
	running   bool
	runID     string
	createdAt time.Time
	updatedAt time.Time
	now       func() time.Time
}

// SessionView is the read model returned to clients.
type SessionView struct {
	ID            string                `json:"id"`
	Step          Step                  `json:"step"`
	CanProceed    bool                  `json:"can_proceed"`
	BlockedReason string                `json:"blocked_reason,omitempty"`
	Hint          string                `json:"hint,omitempty"`
	Running       bool                  `json:"running"`
	DataSource    models.DataSourceKind `json:"data_source"`
	Counts        EntityCounts          `json:"counts"`
	Capacity      CapacityReport        `json:"capacity"`
	View          StepView              `json:"view"`
	CreatedAt     time.Time             `json:"created_at"`
	UpdatedAt     time.Time             `json:"updated_at"`
}

// RunTicket is handed out by BeginRun. Instance is a deep copy of the model.
type RunTicket struct {
	SessionID string          `json:"session_id"`
	RunID     string          `json:"run_id"`
	Instance  models.Snapshot `json:"-"`
}

// NewSession creates a session at the DataSource step with an empty model.
func NewSession(id string, cfg models.SimulationConfig, institutionEnabled bool) *Session {
	if id == "" {
		id = uuid.NewString()
	}
	s := &Session{
		id:                 id,
		institutionEnabled: institutionEnabled,
		model:              NewModel(cfg),
		step:               StepDataSource,
		now:                time.Now,
	}
	s.createdAt = s.now().UTC()
	s.updatedAt = s.createdAt
	return s
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// View renders the session for its current step.
func (s *Session) View() SessionView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewLocked()
}

func (s *Session) viewLocked() SessionView {
	ok, reason := CanProceed(s.step, s.model)
	view := SessionView{
		ID:            s.id,
		Step:          s.step,
		CanProceed:    ok,
		BlockedReason: reason,
		Running:       s.running,
		Counts:        countEntities(s.model),
		Capacity:      AnalyzeCapacity(s.model),
		View: buildStepView(s.step, s.model, stepViewContext{
			source:             s.source,
			institutionEnabled: s.institutionEnabled,
			running:            s.running,
			outcome:            s.outcome,
		}),
		CreatedAt: s.createdAt,
		UpdatedAt: s.updatedAt,
	}
	if s.source != nil {
		view.DataSource = s.source.Kind()
	}
	if s.step == StepReviewAndRun && !s.running {
		view.Hint = "start a run to see results"
	}
	return view
}

// Read runs fn with the model under the session lock. fn must not retain the model.
func (s *Session) Read(fn func(m *Model)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.model)
}

// Mutate applies fn to the model. Edits are refused while a run is in flight and once
// results are shown.
func (s *Session) Mutate(fn func(m *Model) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.editableLocked(); err != nil {
		return err
	}
	if err := fn(s.model); err != nil {
		return err
	}
	s.touchLocked()
	return nil
}

func (s *Session) editableLocked() error {
	if s.running {
		return appErrors.ErrRunInProgress
	}
	if s.step == StepResults {
		return appErrors.Clone(appErrors.ErrStepBlocked, "reset the session to edit after a run")
	}
	return nil
}

func (s *Session) touchLocked() {
	s.updatedAt = s.now().UTC()
}

// Next advances one step when the current step allows it.
func (s *Session) Next() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return appErrors.ErrRunInProgress
	}
	switch s.step {
	case StepReviewAndRun:
		return appErrors.Clone(appErrors.ErrStepBlocked, "start a run to see results")
	case StepResults:
		return appErrors.Clone(appErrors.ErrStepBlocked, "results is the final step")
	}
	if ok, reason := CanProceed(s.step, s.model); !ok {
		return appErrors.Clone(appErrors.ErrStepBlocked, reason)
	}
	s.step++
	s.touchLocked()
	return nil
}

// Back returns to the previous step without touching the model. It is a no-op at DataSource.
func (s *Session) Back() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.editableLocked(); err != nil {
		return err
	}
	if s.step > StepDataSource {
		s.step--
		s.touchLocked()
	}
	return nil
}

// GoTo jumps to target. Moving backwards is always allowed; moving forwards requires every
// step in between to allow proceeding. Results can only be reached through a run.
func (s *Session) GoTo(target Step) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.editableLocked(); err != nil {
		return err
	}
	if target < StepDataSource || target >= StepResults {
		return appErrors.Newf(appErrors.ErrValidation, "cannot jump to %s", target)
	}
	for step := s.step; step < target; step++ {
		if ok, reason := CanProceed(step, s.model); !ok {
			return appErrors.Newf(appErrors.ErrStepBlocked, "%s: %s", step, reason)
		}
	}
	s.step = target
	s.touchLocked()
	return nil
}

// Reset returns to DataSource and discards the last result. The model is kept.
func (s *Session) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return appErrors.ErrRunInProgress
	}
	s.step = StepDataSource
	s.outcome = nil
	s.touchLocked()
	return nil
}

// SwitchDataSource empties all six entity collections, records src and loads snap when given.
// It is only allowed at the DataSource step.
func (s *Session) SwitchDataSource(src DataSource, snap *models.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.editableLocked(); err != nil {
		return err
	}
	if s.step != StepDataSource {
		return appErrors.Clone(appErrors.ErrStepBlocked, "go back to the data source step to switch data")
	}
	s.model.Clear()
	if snap != nil {
		s.model.Load(*snap)
		s.model.SetConfig(snap.Config)
	}
	s.source = src
	s.touchLocked()
	return nil
}

// Source returns the current data source, nil when none was chosen.
func (s *Session) Source() DataSource {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.source
}

// Step returns the current wizard step.
func (s *Session) Step() Step {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.step
}

// Running reports whether a run is in flight.
func (s *Session) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Outcome returns the result of the last completed run.
func (s *Session) Outcome() models.RunOutcome {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.outcome
}

// BeginRun marks the session as running and returns a deep copy of the model to submit.
func (s *Session) BeginRun() (RunTicket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return RunTicket{}, appErrors.ErrRunInProgress
	}
	if s.step != StepReviewAndRun {
		return RunTicket{}, appErrors.Newf(appErrors.ErrStepBlocked, "runs start from %s, session is at %s", StepReviewAndRun, s.step)
	}
	s.running = true
	s.runID = uuid.NewString()
	s.touchLocked()
	return RunTicket{SessionID: s.id, RunID: s.runID, Instance: s.model.Snapshot()}, nil
}

// CompleteRun stores out and moves to Results. Completions of stale runs are ignored.
func (s *Session) CompleteRun(runID string, out models.RunOutcome) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running || s.runID != runID {
		return false
	}
	s.running = false
	s.runID = ""
	s.outcome = out
	s.step = StepResults
	s.touchLocked()
	return true
}

// AbortRun clears the running flag without producing a result.
func (s *Session) AbortRun(runID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.runID == runID {
		s.running = false
		s.runID = ""
		s.touchLocked()
	}
}

// SessionState is the persisted form of a session.
type SessionState struct {
	ID             string                 `json:"id"`
	Step           Step                   `json:"step"`
	SourceKind     models.DataSourceKind  `json:"source_kind"`
	SourceParams   models.SyntheticParams `json:"source_params"`
	SourceLoadedAt time.Time              `json:"source_loaded_at"`
	Model          models.Snapshot        `json:"model"`
	Outcome        json.RawMessage        `json:"outcome,omitempty"`
	CreatedAt      time.Time              `json:"created_at"`
	UpdatedAt      time.Time              `json:"updated_at"`
}

// State captures the session for persistence. An in-flight run is not part of the state.
func (s *Session) State() (SessionState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	outcome, err := models.MarshalOutcome(s.outcome)
	if err != nil {
		return SessionState{}, err
	}
	state := SessionState{
		ID:        s.id,
		Step:      s.step,
		Model:     s.model.Snapshot(),
		Outcome:   outcome,
		CreatedAt: s.createdAt,
		UpdatedAt: s.updatedAt,
	}
	switch src := s.source.(type) {
	case InstitutionSource:
		state.SourceKind = src.Kind()
		state.SourceLoadedAt = src.LoadedAt
	case SyntheticSource:
		state.SourceKind = src.Kind()
		state.SourceParams = src.Params
		state.SourceLoadedAt = src.LoadedAt
	}
	return state, nil
}

// RestoreSession rebuilds a session from persisted state.
func RestoreSession(state SessionState, institutionEnabled bool) (*Session, error) {
	outcome, err := models.UnmarshalOutcome(state.Outcome)
	if err != nil {
		return nil, err
	}
	s := NewSession(state.ID, state.Model.Config, institutionEnabled)
	s.model.Load(state.Model)
	s.step = state.Step
	s.outcome = outcome
	if s.step == StepResults && outcome == nil {
		s.step = StepReviewAndRun
	}
	switch state.SourceKind {
	case models.DataSourceInstitution:
		s.source = InstitutionSource{LoadedAt: state.SourceLoadedAt}
	case models.DataSourceSynthetic:
		s.source = SyntheticSource{Params: state.SourceParams, LoadedAt: state.SourceLoadedAt}
	}
	if !state.CreatedAt.IsZero() {
		s.createdAt = state.CreatedAt
	}
	if !state.UpdatedAt.IsZero() {
		s.updatedAt = state.UpdatedAt
	}
	return s, nil
}
