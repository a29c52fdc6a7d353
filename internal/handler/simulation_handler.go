package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-schedule-sim/internal/dto"
	"github.com/noah-isme/sma-schedule-sim/internal/middleware"
	"github.com/noah-isme/sma-schedule-sim/internal/models"
	"github.com/noah-isme/sma-schedule-sim/internal/service"
	appErrors "github.com/noah-isme/sma-schedule-sim/pkg/errors"
	"github.com/noah-isme/sma-schedule-sim/pkg/logger"
	"github.com/noah-isme/sma-schedule-sim/pkg/response"
)

type simulationService interface {
	CreateSession(ctx context.Context, req dto.CreateSessionRequest) (*service.SessionView, error)
	GetSession(ctx context.Context, id string) (*service.SessionView, error)
	DeleteSession(ctx context.Context, id string) error
	SelectDataSource(ctx context.Context, id string, req dto.DataSourceRequest) (*service.SessionView, error)
	Navigate(ctx context.Context, id string, req dto.NavigateRequest) (*service.SessionView, error)
	UpdateConfig(ctx context.Context, id string, req dto.UpdateConfigRequest) (*models.SimulationConfig, error)

	AddTeacher(ctx context.Context, id string, req dto.TeacherRequest) (*models.Teacher, error)
	UpdateTeacher(ctx context.Context, id string, teacherID int, req dto.TeacherRequest) (*models.Teacher, error)
	RemoveTeacher(ctx context.Context, id string, teacherID int) (int, error)
	SetTeacherPreference(ctx context.Context, id string, teacherID int, req dto.TeacherPreferenceRequest) (*models.TeacherPreference, error)
	AddSubject(ctx context.Context, id string, req dto.NameRequest) (*models.Subject, error)
	RenameSubject(ctx context.Context, id string, subjectID int, req dto.NameRequest) (*models.Subject, error)
	RemoveSubject(ctx context.Context, id string, subjectID int) (int, error)
	SetSubjectConstraint(ctx context.Context, id string, subjectID int, req dto.SubjectConstraintRequest) (*models.SubjectConstraint, error)
	AddClass(ctx context.Context, id string, req dto.ClassRequest) (*models.ClassGroup, error)
	RemoveClass(ctx context.Context, id string, classID int) (int, error)
	UpsertRequirement(ctx context.Context, id string, req dto.RequirementRequest) (*models.Requirement, error)
	AssignTeacher(ctx context.Context, id string, requirementID int, req dto.AssignTeacherRequest) (*models.Requirement, error)
	RemoveRequirement(ctx context.Context, id string, requirementID int) error

	Distribute(ctx context.Context, id, strategy string) (*dto.DistributeResponse, error)
	StartRun(ctx context.Context, id string) (*dto.RunResponse, error)
	Result(ctx context.Context, id string) (models.RunOutcome, error)
	Entities(ctx context.Context, id string) (*service.EntityIndex, error)
	ClassGrid(ctx context.Context, id, class string) (*service.Grid, error)
	TeacherGrid(ctx context.Context, id, teacher string) (*service.Grid, error)
	Heatmap(ctx context.Context, id string) (*service.HeatmapView, error)
	Export(ctx context.Context, id string, req dto.ExportRequest) (*service.ExportResult, error)
	Download(token string) (*service.ExportFile, error)
}

// SimulationHandler exposes the schedule simulation wizard.
type SimulationHandler struct {
	service simulationService
}

// NewSimulationHandler constructs the handler.
func NewSimulationHandler(svc *service.SimulationService) *SimulationHandler {
	return &SimulationHandler{service: svc}
}

// RegisterRoutes mounts the session routes on group. Viewers may read, schedulers may edit and run.
func (h *SimulationHandler) RegisterRoutes(group *gin.RouterGroup, auditLogger gin.HandlerFunc) {
	read := middleware.RequireRoles(models.RoleSuperAdmin, models.RoleAdmin, models.RoleScheduler, models.RoleViewer)
	write := middleware.RequireRoles(models.RoleSuperAdmin, models.RoleAdmin, models.RoleScheduler)
	if auditLogger == nil {
		auditLogger = func(c *gin.Context) { c.Next() }
	}

	sessions := group.Group("/simulations/sessions")
	sessions.POST("", write, auditLogger, h.CreateSession)

	session := sessions.Group("/:" + logger.SessionParam)
	session.GET("", read, h.GetSession)
	session.DELETE("", write, auditLogger, h.DeleteSession)
	session.PUT("/data-source", write, auditLogger, h.SelectDataSource)
	session.POST("/navigate", write, auditLogger, h.Navigate)
	session.PUT("/config", write, auditLogger, h.UpdateConfig)

	session.POST("/teachers", write, auditLogger, h.AddTeacher)
	session.PUT("/teachers/:id", write, auditLogger, h.UpdateTeacher)
	session.DELETE("/teachers/:id", write, auditLogger, h.RemoveTeacher)
	session.PUT("/teachers/:id/preference", write, auditLogger, h.SetTeacherPreference)
	session.POST("/subjects", write, auditLogger, h.AddSubject)
	session.PUT("/subjects/:id", write, auditLogger, h.RenameSubject)
	session.DELETE("/subjects/:id", write, auditLogger, h.RemoveSubject)
	session.PUT("/subjects/:id/constraint", write, auditLogger, h.SetSubjectConstraint)
	session.POST("/classes", write, auditLogger, h.AddClass)
	session.DELETE("/classes/:id", write, auditLogger, h.RemoveClass)
	session.PUT("/requirements", write, auditLogger, h.UpsertRequirement)
	session.PUT("/requirements/:id/teacher", write, auditLogger, h.AssignTeacher)
	session.DELETE("/requirements/:id", write, auditLogger, h.RemoveRequirement)

	session.POST("/distribute/:strategy", write, auditLogger, h.Distribute)
	session.POST("/run", write, auditLogger, h.Run)

	session.GET("/result", read, h.Result)
	session.GET("/result/entities", read, h.Entities)
	session.GET("/result/classes/:name", read, h.ClassGrid)
	session.GET("/result/teachers/:name", read, h.TeacherGrid)
	session.GET("/result/heatmap", read, h.Heatmap)
	session.POST("/result/export", read, auditLogger, h.Export)
}

// RegisterDownload mounts the signed export download route. The token is the credential.
func (h *SimulationHandler) RegisterDownload(group *gin.RouterGroup) {
	group.GET("/exports/:token", h.Download)
}

// CreateSession godoc
// @Summary Open a simulation session
// @Tags Simulation
// @Accept json
// @Produce json
// @Param payload body dto.CreateSessionRequest false "Session defaults"
// @Success 201 {object} response.Envelope
// @Router /simulations/sessions [post]
func (h *SimulationHandler) CreateSession(c *gin.Context) {
	var req dto.CreateSessionRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid session payload"))
			return
		}
	}
	view, err := h.service.CreateSession(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, view)
}

// GetSession godoc
// @Summary Get the current step view of a session
// @Tags Simulation
// @Produce json
// @Param sessionId path string true "Session ID"
// @Success 200 {object} response.Envelope
// @Router /simulations/sessions/{sessionId} [get]
func (h *SimulationHandler) GetSession(c *gin.Context) {
	view, err := h.service.GetSession(c.Request.Context(), sessionID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	h.sessionJSON(c, http.StatusOK, view)
}

// DeleteSession godoc
// @Summary Discard a session
// @Tags Simulation
// @Param sessionId path string true "Session ID"
// @Success 204
// @Router /simulations/sessions/{sessionId} [delete]
func (h *SimulationHandler) DeleteSession(c *gin.Context) {
	if err := h.service.DeleteSession(c.Request.Context(), sessionID(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// SelectDataSource godoc
// @Summary Load teachers, subjects and classes from the institution or the synthetic generator
// @Description Replaces every entity in the session. Only allowed at the data source step.
// @Tags Simulation
// @Accept json
// @Produce json
// @Param sessionId path string true "Session ID"
// @Param payload body dto.DataSourceRequest true "Data source"
// @Success 200 {object} response.Envelope
// @Failure 502 {object} response.Envelope
// @Router /simulations/sessions/{sessionId}/data-source [put]
func (h *SimulationHandler) SelectDataSource(c *gin.Context) {
	var req dto.DataSourceRequest
	if !bindJSON(c, &req, "invalid data source payload") {
		return
	}
	view, err := h.service.SelectDataSource(c.Request.Context(), sessionID(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.sessionJSON(c, http.StatusOK, view)
}

// Navigate godoc
// @Summary Move the wizard (next, back, goto, reset)
// @Tags Simulation
// @Accept json
// @Produce json
// @Param sessionId path string true "Session ID"
// @Param payload body dto.NavigateRequest true "Navigation"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /simulations/sessions/{sessionId}/navigate [post]
func (h *SimulationHandler) Navigate(c *gin.Context) {
	var req dto.NavigateRequest
	if !bindJSON(c, &req, "invalid navigation payload") {
		return
	}
	view, err := h.service.Navigate(c.Request.Context(), sessionID(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.sessionJSON(c, http.StatusOK, view)
}

// UpdateConfig godoc
// @Summary Replace the simulation config
// @Tags Simulation
// @Accept json
// @Produce json
// @Param sessionId path string true "Session ID"
// @Param payload body dto.UpdateConfigRequest true "Config"
// @Success 200 {object} response.Envelope
// @Router /simulations/sessions/{sessionId}/config [put]
func (h *SimulationHandler) UpdateConfig(c *gin.Context) {
	var req dto.UpdateConfigRequest
	if !bindJSON(c, &req, "invalid config payload") {
		return
	}
	cfg, err := h.service.UpdateConfig(c.Request.Context(), sessionID(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, cfg, nil)
}

// AddTeacher godoc
// @Summary Add a teacher
// @Tags Simulation
// @Accept json
// @Produce json
// @Param sessionId path string true "Session ID"
// @Param payload body dto.TeacherRequest false "Teacher"
// @Success 201 {object} response.Envelope
// @Router /simulations/sessions/{sessionId}/teachers [post]
func (h *SimulationHandler) AddTeacher(c *gin.Context) {
	var req dto.TeacherRequest
	if !bindOptionalJSON(c, &req, "invalid teacher payload") {
		return
	}
	teacher, err := h.service.AddTeacher(c.Request.Context(), sessionID(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, teacher)
}

// UpdateTeacher godoc
// @Summary Rename a teacher or change its weekly quota
// @Tags Simulation
// @Accept json
// @Produce json
// @Param sessionId path string true "Session ID"
// @Param id path int true "Teacher ID"
// @Param payload body dto.TeacherRequest true "Teacher"
// @Success 200 {object} response.Envelope
// @Router /simulations/sessions/{sessionId}/teachers/{id} [put]
func (h *SimulationHandler) UpdateTeacher(c *gin.Context) {
	id, ok := intParam(c, "id")
	if !ok {
		return
	}
	var req dto.TeacherRequest
	if !bindJSON(c, &req, "invalid teacher payload") {
		return
	}
	teacher, err := h.service.UpdateTeacher(c.Request.Context(), sessionID(c), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, teacher, nil)
}

// RemoveTeacher godoc
// @Summary Remove a teacher with its preference and requirements
// @Tags Simulation
// @Produce json
// @Param sessionId path string true "Session ID"
// @Param id path int true "Teacher ID"
// @Success 200 {object} response.Envelope
// @Router /simulations/sessions/{sessionId}/teachers/{id} [delete]
func (h *SimulationHandler) RemoveTeacher(c *gin.Context) {
	id, ok := intParam(c, "id")
	if !ok {
		return
	}
	removed, err := h.service.RemoveTeacher(c.Request.Context(), sessionID(c), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"removed_requirements": removed}, nil)
}

// SetTeacherPreference godoc
// @Summary Store a teacher preference
// @Tags Simulation
// @Accept json
// @Produce json
// @Param sessionId path string true "Session ID"
// @Param id path int true "Teacher ID"
// @Param payload body dto.TeacherPreferenceRequest true "Preference"
// @Success 200 {object} response.Envelope
// @Router /simulations/sessions/{sessionId}/teachers/{id}/preference [put]
func (h *SimulationHandler) SetTeacherPreference(c *gin.Context) {
	id, ok := intParam(c, "id")
	if !ok {
		return
	}
	var req dto.TeacherPreferenceRequest
	if !bindJSON(c, &req, "invalid teacher preference payload") {
		return
	}
	pref, err := h.service.SetTeacherPreference(c.Request.Context(), sessionID(c), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, pref, nil)
}

// AddSubject godoc
// @Summary Add a subject
// @Tags Simulation
// @Accept json
// @Produce json
// @Param sessionId path string true "Session ID"
// @Param payload body dto.NameRequest false "Subject"
// @Success 201 {object} response.Envelope
// @Router /simulations/sessions/{sessionId}/subjects [post]
func (h *SimulationHandler) AddSubject(c *gin.Context) {
	var req dto.NameRequest
	if !bindOptionalJSON(c, &req, "invalid subject payload") {
		return
	}
	subject, err := h.service.AddSubject(c.Request.Context(), sessionID(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, subject)
}

// RenameSubject godoc
// @Summary Rename a subject
// @Tags Simulation
// @Accept json
// @Produce json
// @Param sessionId path string true "Session ID"
// @Param id path int true "Subject ID"
// @Param payload body dto.NameRequest true "Subject"
// @Success 200 {object} response.Envelope
// @Router /simulations/sessions/{sessionId}/subjects/{id} [put]
func (h *SimulationHandler) RenameSubject(c *gin.Context) {
	id, ok := intParam(c, "id")
	if !ok {
		return
	}
	var req dto.NameRequest
	if !bindJSON(c, &req, "invalid subject payload") {
		return
	}
	subject, err := h.service.RenameSubject(c.Request.Context(), sessionID(c), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, subject, nil)
}

// RemoveSubject godoc
// @Summary Remove a subject with its constraint and requirements
// @Tags Simulation
// @Produce json
// @Param sessionId path string true "Session ID"
// @Param id path int true "Subject ID"
// @Success 200 {object} response.Envelope
// @Router /simulations/sessions/{sessionId}/subjects/{id} [delete]
func (h *SimulationHandler) RemoveSubject(c *gin.Context) {
	id, ok := intParam(c, "id")
	if !ok {
		return
	}
	removed, err := h.service.RemoveSubject(c.Request.Context(), sessionID(c), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"removed_requirements": removed}, nil)
}

// SetSubjectConstraint godoc
// @Summary Store a subject constraint
// @Tags Simulation
// @Accept json
// @Produce json
// @Param sessionId path string true "Session ID"
// @Param id path int true "Subject ID"
// @Param payload body dto.SubjectConstraintRequest true "Constraint"
// @Success 200 {object} response.Envelope
// @Router /simulations/sessions/{sessionId}/subjects/{id}/constraint [put]
func (h *SimulationHandler) SetSubjectConstraint(c *gin.Context) {
	id, ok := intParam(c, "id")
	if !ok {
		return
	}
	var req dto.SubjectConstraintRequest
	if !bindJSON(c, &req, "invalid subject constraint payload") {
		return
	}
	constraint, err := h.service.SetSubjectConstraint(c.Request.Context(), sessionID(c), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, constraint, nil)
}

// AddClass godoc
// @Summary Add a class, named automatically when grade and name are omitted
// @Tags Simulation
// @Accept json
// @Produce json
// @Param sessionId path string true "Session ID"
// @Param payload body dto.ClassRequest false "Class"
// @Success 201 {object} response.Envelope
// @Router /simulations/sessions/{sessionId}/classes [post]
func (h *SimulationHandler) AddClass(c *gin.Context) {
	var req dto.ClassRequest
	if !bindOptionalJSON(c, &req, "invalid class payload") {
		return
	}
	class, err := h.service.AddClass(c.Request.Context(), sessionID(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, class)
}

// RemoveClass godoc
// @Summary Remove a class with its requirements
// @Tags Simulation
// @Produce json
// @Param sessionId path string true "Session ID"
// @Param id path int true "Class ID"
// @Success 200 {object} response.Envelope
// @Router /simulations/sessions/{sessionId}/classes/{id} [delete]
func (h *SimulationHandler) RemoveClass(c *gin.Context) {
	id, ok := intParam(c, "id")
	if !ok {
		return
	}
	removed, err := h.service.RemoveClass(c.Request.Context(), sessionID(c), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"removed_requirements": removed}, nil)
}

// UpsertRequirement godoc
// @Summary Set the weekly periods of a class and subject
// @Tags Simulation
// @Accept json
// @Produce json
// @Param sessionId path string true "Session ID"
// @Param payload body dto.RequirementRequest true "Requirement"
// @Success 200 {object} response.Envelope
// @Router /simulations/sessions/{sessionId}/requirements [put]
func (h *SimulationHandler) UpsertRequirement(c *gin.Context) {
	var req dto.RequirementRequest
	if !bindJSON(c, &req, "invalid requirement payload") {
		return
	}
	requirement, err := h.service.UpsertRequirement(c.Request.Context(), sessionID(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, requirement, nil)
}

// AssignTeacher godoc
// @Summary Assign a teacher to a requirement, null to unassign
// @Tags Simulation
// @Accept json
// @Produce json
// @Param sessionId path string true "Session ID"
// @Param id path int true "Requirement ID"
// @Param payload body dto.AssignTeacherRequest true "Assignment"
// @Success 200 {object} response.Envelope
// @Router /simulations/sessions/{sessionId}/requirements/{id}/teacher [put]
func (h *SimulationHandler) AssignTeacher(c *gin.Context) {
	id, ok := intParam(c, "id")
	if !ok {
		return
	}
	var req dto.AssignTeacherRequest
	if !bindJSON(c, &req, "invalid assignment payload") {
		return
	}
	requirement, err := h.service.AssignTeacher(c.Request.Context(), sessionID(c), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, requirement, nil)
}

// RemoveRequirement godoc
// @Summary Remove a requirement
// @Tags Simulation
// @Param sessionId path string true "Session ID"
// @Param id path int true "Requirement ID"
// @Success 204
// @Router /simulations/sessions/{sessionId}/requirements/{id} [delete]
func (h *SimulationHandler) RemoveRequirement(c *gin.Context) {
	id, ok := intParam(c, "id")
	if !ok {
		return
	}
	if err := h.service.RemoveRequirement(c.Request.Context(), sessionID(c), id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Distribute godoc
// @Summary Apply a distribution heuristic
// @Tags Simulation
// @Produce json
// @Param sessionId path string true "Session ID"
// @Param strategy path string true "randomize-periods, randomize-teachers or balance-teachers"
// @Success 200 {object} response.Envelope
// @Router /simulations/sessions/{sessionId}/distribute/{strategy} [post]
func (h *SimulationHandler) Distribute(c *gin.Context) {
	result, err := h.service.Distribute(c.Request.Context(), sessionID(c), c.Param("strategy"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Run godoc
// @Summary Submit the model to the solver
// @Description Returns immediately. Poll the session until running is false.
// @Tags Simulation
// @Produce json
// @Param sessionId path string true "Session ID"
// @Success 202 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /simulations/sessions/{sessionId}/run [post]
func (h *SimulationHandler) Run(c *gin.Context) {
	result, err := h.service.StartRun(c.Request.Context(), sessionID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Accepted(c, result)
}

// Result godoc
// @Summary Get the normalised outcome of the last run
// @Tags Simulation
// @Produce json
// @Param sessionId path string true "Session ID"
// @Success 200 {object} response.Envelope
// @Router /simulations/sessions/{sessionId}/result [get]
func (h *SimulationHandler) Result(c *gin.Context) {
	outcome, err := h.service.Result(c.Request.Context(), sessionID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetMeta(c, "status", outcome.RunStatus())
	response.JSON(c, http.StatusOK, outcome, middleware.ExtractMeta(c))
}

// Entities godoc
// @Summary List the classes and teachers of the last schedule
// @Tags Simulation
// @Produce json
// @Param sessionId path string true "Session ID"
// @Success 200 {object} response.Envelope
// @Router /simulations/sessions/{sessionId}/result/entities [get]
func (h *SimulationHandler) Entities(c *gin.Context) {
	index, err := h.service.Entities(c.Request.Context(), sessionID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, index, nil)
}

// ClassGrid godoc
// @Summary Weekly grid of one class
// @Tags Simulation
// @Produce json
// @Param sessionId path string true "Session ID"
// @Param name path string true "Class display name"
// @Success 200 {object} response.Envelope
// @Router /simulations/sessions/{sessionId}/result/classes/{name} [get]
func (h *SimulationHandler) ClassGrid(c *gin.Context) {
	grid, err := h.service.ClassGrid(c.Request.Context(), sessionID(c), c.Param("name"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, grid, nil)
}

// TeacherGrid godoc
// @Summary Weekly grid of one teacher
// @Tags Simulation
// @Produce json
// @Param sessionId path string true "Session ID"
// @Param name path string true "Teacher name"
// @Success 200 {object} response.Envelope
// @Router /simulations/sessions/{sessionId}/result/teachers/{name} [get]
func (h *SimulationHandler) TeacherGrid(c *gin.Context) {
	grid, err := h.service.TeacherGrid(c.Request.Context(), sessionID(c), c.Param("name"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, grid, nil)
}

// Heatmap godoc
// @Summary Conflict heatmap of a failed run
// @Tags Simulation
// @Produce json
// @Param sessionId path string true "Session ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /simulations/sessions/{sessionId}/result/heatmap [get]
func (h *SimulationHandler) Heatmap(c *gin.Context) {
	view, err := h.service.Heatmap(c.Request.Context(), sessionID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view, nil)
}

// Export godoc
// @Summary Render a class or teacher grid to CSV or PDF
// @Tags Simulation
// @Accept json
// @Produce json
// @Param sessionId path string true "Session ID"
// @Param payload body dto.ExportRequest true "Export"
// @Success 201 {object} response.Envelope
// @Router /simulations/sessions/{sessionId}/result/export [post]
func (h *SimulationHandler) Export(c *gin.Context) {
	var req dto.ExportRequest
	if !bindJSON(c, &req, "invalid export payload") {
		return
	}
	result, err := h.service.Export(c.Request.Context(), sessionID(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// Download godoc
// @Summary Download an exported timetable
// @Tags Simulation
// @Produce octet-stream
// @Param token path string true "Signed token"
// @Success 200 {file} file
// @Router /exports/{token} [get]
func (h *SimulationHandler) Download(c *gin.Context) {
	file, err := h.service.Download(c.Param("token"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.Filename, file.ContentType, file.Body)
}

func (h *SimulationHandler) sessionJSON(c *gin.Context, status int, view *service.SessionView) {
	middleware.SetMeta(c, "step", view.Step)
	middleware.SetMeta(c, "running", view.Running)
	response.JSON(c, status, view, middleware.ExtractMeta(c))
}

func sessionID(c *gin.Context) string {
	return c.Param(logger.SessionParam)
}

func intParam(c *gin.Context, name string) (int, bool) {
	value, err := strconv.Atoi(c.Param(name))
	if err != nil || value <= 0 {
		response.Error(c, appErrors.Newf(appErrors.ErrValidation, "%s must be a positive integer", name))
		return 0, false
	}
	return value, true
}

func bindJSON(c *gin.Context, dest interface{}, message string) bool {
	if err := c.ShouldBindJSON(dest); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, message))
		return false
	}
	return true
}

// bindOptionalJSON accepts an empty body for endpoints where every field has a default.
func bindOptionalJSON(c *gin.Context, dest interface{}, message string) bool {
	if c.Request.ContentLength == 0 {
		return true
	}
	return bindJSON(c, dest, message)
}
