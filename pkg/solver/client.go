package solver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/sma-schedule-sim/internal/models"
	"github.com/noah-isme/sma-schedule-sim/pkg/config"
	"github.com/noah-isme/sma-schedule-sim/pkg/middleware/requestid"
)

const maxErrorBody = 4 << 10

// APIError is returned when the solver answers with a non-2xx status and no usable body.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("solver responded with status %d", e.StatusCode)
	}
	return fmt.Sprintf("solver responded with status %d: %s", e.StatusCode, e.Message)
}

// RunResult is the schedule part of a run response.
type RunResult struct {
	Status        string                     `json:"status"`
	SolvingTimeMs int64                      `json:"solving_time_ms"`
	Schedule      []models.ScheduleEntry     `json:"schedule"`
	ByTeacher     map[string]models.WeekGrid `json:"by_teacher"`
	ByClass       map[string]models.WeekGrid `json:"by_class"`
	QualityReport *models.QualityReport      `json:"quality_report"`
}

// RunResponse is the raw answer of a simulation run, before normalisation.
type RunResponse struct {
	Success         bool                   `json:"success"`
	Result          *RunResult             `json:"result"`
	Message         string                 `json:"message"`
	Conflicts       []models.Conflict      `json:"conflicts"`
	ConflictHeatmap models.ConflictHeatmap `json:"conflict_heatmap"`
}

type createSimulationRequest struct {
	Name     string          `json:"name"`
	Instance models.Snapshot `json:"instance"`
}

type createSimulationResponse struct {
	ID json.RawMessage `json:"id"`
}

// Client talks to the external timetable solver over HTTP.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
	logger  *zap.Logger
}

// New builds a solver client. A zero HTTPTimeout means requests only end with their context.
func New(cfg config.SolverConfig, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		token:   cfg.APIToken,
		http:    &http.Client{Timeout: cfg.HTTPTimeout},
		logger:  logger,
	}
}

// GenerateSynthetic asks the solver service for a generated instance.
func (c *Client) GenerateSynthetic(ctx context.Context, params models.SyntheticParams) (*models.SyntheticSnapshot, error) {
	raw, status, err := c.do(ctx, http.MethodPost, "/simulations/synthetic", params)
	if err != nil {
		return nil, err
	}
	if status >= http.StatusMultipleChoices {
		return nil, apiError(status, raw)
	}
	var snapshot models.SyntheticSnapshot
	if err := decode(raw, &snapshot); err != nil {
		return nil, err
	}
	return &snapshot, nil
}

// CreateSimulation registers instance under name and returns the solver's simulation id.
// Numeric and string ids are both accepted.
func (c *Client) CreateSimulation(ctx context.Context, name string, instance models.Snapshot) (string, error) {
	raw, status, err := c.do(ctx, http.MethodPost, "/simulations", createSimulationRequest{Name: name, Instance: instance})
	if err != nil {
		return "", err
	}
	if status >= http.StatusMultipleChoices {
		return "", apiError(status, raw)
	}
	var created createSimulationResponse
	if err := decode(raw, &created); err != nil {
		return "", err
	}
	return parseID(created.ID)
}

// RunSimulation executes a created simulation. A non-2xx answer that still carries a run
// report (for example an infeasible result with conflicts) is returned as a response.
func (c *Client) RunSimulation(ctx context.Context, id string) (*RunResponse, error) {
	raw, status, err := c.do(ctx, http.MethodPost, "/simulations/"+url.PathEscape(id)+"/run", nil)
	if err != nil {
		return nil, err
	}
	var resp RunResponse
	decodeErr := decode(raw, &resp)
	if status >= http.StatusMultipleChoices {
		if decodeErr != nil || (!resp.Success && resp.Message == "" && len(resp.Conflicts) == 0) {
			return nil, apiError(status, raw)
		}
		return &resp, nil
	}
	if decodeErr != nil {
		return nil, decodeErr
	}
	return &resp, nil
}

func (c *Client) do(ctx context.Context, method, path string, payload any) ([]byte, int, error) {
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, 0, fmt.Errorf("encode solver request: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if id := requestid.FromContext(ctx); id != "" {
		req.Header.Set(requestid.HeaderKey, id)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("solver request %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("read solver response: %w", err)
	}
	c.logger.Debug("solver call",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Int("bytes", len(raw)),
	)
	return raw, resp.StatusCode, nil
}

func decode(raw []byte, out any) error {
	if len(bytes.TrimSpace(raw)) == 0 {
		return fmt.Errorf("decode solver response: empty body")
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode solver response: %w", err)
	}
	return nil
}

// apiError extracts a human readable message from common error body shapes.
func apiError(status int, raw []byte) *APIError {
	var body struct {
		Message string          `json:"message"`
		Detail  json.RawMessage `json:"detail"`
		Error   string          `json:"error"`
	}
	msg := ""
	if err := json.Unmarshal(raw, &body); err == nil {
		switch {
		case body.Message != "":
			msg = body.Message
		case body.Error != "":
			msg = body.Error
		case len(body.Detail) > 0:
			var detail string
			if json.Unmarshal(body.Detail, &detail) == nil {
				msg = detail
			} else {
				msg = string(body.Detail)
			}
		}
	} else {
		msg = string(raw)
	}
	return &APIError{StatusCode: status, Message: truncate(msg)}
}

func parseID(raw json.RawMessage) (string, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return "", fmt.Errorf("solver did not return a simulation id")
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if s == "" {
			return "", fmt.Errorf("solver returned an empty simulation id")
		}
		return s, nil
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return "", fmt.Errorf("unexpected simulation id %s", string(raw))
	}
	if i, err := n.Int64(); err == nil {
		return strconv.FormatInt(i, 10), nil
	}
	return n.String(), nil
}

func truncate(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > maxErrorBody {
		return s[:maxErrorBody]
	}
	return s
}
