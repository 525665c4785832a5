package controllers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/yigit/swimdesk/internal/app/models"
	"github.com/yigit/swimdesk/internal/app/models/dto"
	"github.com/yigit/swimdesk/internal/middleware"
	"github.com/yigit/swimdesk/internal/pkg/helpers"
)

// SessionUseCase is what the session endpoints need from the service layer
type SessionUseCase interface {
	CreateSession(ctx context.Context, req *dto.SessionRequest) (*models.Session, error)
	GetSessionByID(ctx context.Context, id int64) (*models.Session, error)
	ListSessions(ctx context.Context, filter dto.SessionFilter, page, size int) (*dto.PaginatedResponse, error)
	UpdateSession(ctx context.Context, id int64, req *dto.SessionRequest) (*models.Session, error)
	AssignInstructors(ctx context.Context, id int64, req *dto.AssignInstructorsRequest) (*models.Session, error)
	DeleteSession(ctx context.Context, id int64) error
	GetUsage(ctx context.Context, id int64) (*dto.SessionUsageResponse, error)
}

// SessionController handles scheduled class sessions
type SessionController struct {
	sessionService SessionUseCase
	logger         zerolog.Logger
}

// NewSessionController creates a new SessionController
func NewSessionController(sessionService SessionUseCase, logger zerolog.Logger) *SessionController {
	return &SessionController{
		sessionService: sessionService,
		logger:         logger,
	}
}

// CreateSession godoc
// @Summary Schedule a session
// @Description Schedules one occurrence of an offering and optionally assigns instructors
// @Tags sessions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.SessionRequest true "Session"
// @Success 201 {object} dto.APIResponse{data=models.Session} "Session created"
// @Failure 400 {object} dto.ErrorResponse "Invalid request format"
// @Failure 404 {object} dto.ErrorResponse "Offering or instructor not found"
// @Router /sessions [post]
func (c *SessionController) CreateSession(ctx *gin.Context) {
	var req dto.SessionRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	session, err := c.sessionService.CreateSession(ctx.Request.Context(), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	c.logger.Info().
		Int64("sessionID", session.ID).
		Int64("offeringID", session.OfferingID).
		Time("startsAt", session.StartsAt).
		Msg("Session scheduled")
	respond(ctx, http.StatusCreated, "Session created successfully", session)
}

// GetSession godoc
// @Summary Get a session
// @Tags sessions
// @Produce json
// @Security BearerAuth
// @Param id path int true "Session ID"
// @Success 200 {object} dto.APIResponse{data=models.Session} "Session"
// @Failure 403 {object} dto.ErrorResponse "Instructor is not assigned to this session"
// @Failure 404 {object} dto.ErrorResponse "Session not found"
// @Router /sessions/{id} [get]
func (c *SessionController) GetSession(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id", "session")
	if !ok {
		return
	}

	session, err := c.sessionService.GetSessionByID(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	respond(ctx, http.StatusOK, "", session)
}

// ListSessions godoc
// @Summary List sessions
// @Tags sessions
// @Produce json
// @Security BearerAuth
// @Param from query string false "First day (YYYY-MM-DD)"
// @Param to query string false "Last day, inclusive (YYYY-MM-DD)"
// @Param offeringId query int false "Offering filter"
// @Param page query int false "Page number" default(1)
// @Param size query int false "Page size" default(10)
// @Success 200 {object} dto.APIResponse{data=dto.PaginatedResponse} "Sessions"
// @Failure 400 {object} dto.ErrorResponse "Invalid filter"
// @Router /sessions [get]
func (c *SessionController) ListSessions(ctx *gin.Context) {
	from, to, ok := parseDateRangeQuery(ctx)
	if !ok {
		return
	}
	offeringID, ok := parseOptionalIDQuery(ctx, "offeringId")
	if !ok {
		return
	}
	pg := helpers.PageFromQuery(ctx)

	filter := dto.SessionFilter{From: from, To: to, OfferingID: offeringID}
	sessions, err := c.sessionService.ListSessions(ctx.Request.Context(), filter, pg.Number, pg.Size)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	respond(ctx, http.StatusOK, "", sessions)
}

// UpdateSession godoc
// @Summary Update a session
// @Description Instructors are only replaced when instructorIds is present
// @Tags sessions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Session ID"
// @Param request body dto.SessionRequest true "Session"
// @Success 200 {object} dto.APIResponse{data=models.Session} "Session updated"
// @Failure 404 {object} dto.ErrorResponse "Session not found"
// @Router /sessions/{id} [put]
func (c *SessionController) UpdateSession(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id", "session")
	if !ok {
		return
	}

	var req dto.SessionRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	session, err := c.sessionService.UpdateSession(ctx.Request.Context(), id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	respond(ctx, http.StatusOK, "Session updated successfully", session)
}

// AssignInstructors godoc
// @Summary Assign instructors
// @Description Replaces the instructors of a session, which changes its effective capacity
// @Tags sessions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Session ID"
// @Param request body dto.AssignInstructorsRequest true "Instructor IDs"
// @Success 200 {object} dto.APIResponse{data=models.Session} "Instructors assigned"
// @Failure 404 {object} dto.ErrorResponse "Session or instructor not found"
// @Router /sessions/{id}/instructors [put]
func (c *SessionController) AssignInstructors(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id", "session")
	if !ok {
		return
	}

	var req dto.AssignInstructorsRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	session, err := c.sessionService.AssignInstructors(ctx.Request.Context(), id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	c.logger.Info().Int64("sessionID", id).Int("instructors", len(req.InstructorIDs)).Msg("Session instructors replaced")
	respond(ctx, http.StatusOK, "Instructors assigned successfully", session)
}

// DeleteSession godoc
// @Summary Delete a session
// @Tags sessions
// @Produce json
// @Security BearerAuth
// @Param id path int true "Session ID"
// @Success 200 {object} dto.APIResponse "Session deleted"
// @Failure 404 {object} dto.ErrorResponse "Session not found"
// @Failure 409 {object} dto.ErrorResponse "Session has enrollments"
// @Router /sessions/{id} [delete]
func (c *SessionController) DeleteSession(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id", "session")
	if !ok {
		return
	}

	if err := c.sessionService.DeleteSession(ctx.Request.Context(), id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	respond(ctx, http.StatusOK, "Session deleted successfully", nil)
}

// GetUsage godoc
// @Summary Session capacity usage
// @Description Returns filled, effective capacity, availability and the full flag for a session
// @Tags sessions
// @Produce json
// @Security BearerAuth
// @Param id path int true "Session ID"
// @Success 200 {object} dto.APIResponse{data=dto.SessionUsageResponse} "Usage"
// @Failure 404 {object} dto.ErrorResponse "Session not found"
// @Router /sessions/{id}/usage [get]
func (c *SessionController) GetUsage(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id", "session")
	if !ok {
		return
	}

	usage, err := c.sessionService.GetUsage(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	respond(ctx, http.StatusOK, "", usage)
}
