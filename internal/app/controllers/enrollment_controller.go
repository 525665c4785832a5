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

// EnrollmentUseCase is what the enrollment endpoints need from the service layer
type EnrollmentUseCase interface {
	Enroll(ctx context.Context, actorID int64, req *dto.EnrollRequest) (*models.Enrollment, error)
	Transfer(ctx context.Context, actorID, enrollmentID int64, req *dto.TransferRequest) (*dto.TransferResponse, error)
	Cancel(ctx context.Context, actorID, enrollmentID int64) (*models.Enrollment, error)
	RecordSkip(ctx context.Context, enrollmentID int64, req *dto.SkipRequest) (*models.EnrollmentSkip, error)
	ListSkips(ctx context.Context, enrollmentID int64) ([]*models.EnrollmentSkip, error)
	GetEnrollmentByID(ctx context.Context, id int64) (*models.Enrollment, error)
	ListEnrollments(ctx context.Context, filter dto.EnrollmentFilter, page, size int) (*dto.PaginatedResponse, error)
	GetBalance(ctx context.Context, enrollmentID int64) (*dto.BalanceResponse, error)
}

// EnrollmentController handles enrollments, transfers and skips
type EnrollmentController struct {
	enrollmentService EnrollmentUseCase
	logger            zerolog.Logger
}

// NewEnrollmentController creates a new EnrollmentController
func NewEnrollmentController(enrollmentService EnrollmentUseCase, logger zerolog.Logger) *EnrollmentController {
	return &EnrollmentController{
		enrollmentService: enrollmentService,
		logger:            logger,
	}
}

// Enroll godoc
// @Summary Enroll a swimmer
// @Description Places a swimmer in a session. Rejected with 409 when the class would go over its effective capacity.
// @Tags enrollments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.EnrollRequest true "Enrollment"
// @Success 201 {object} dto.APIResponse{data=models.Enrollment} "Enrolled"
// @Failure 400 {object} dto.ErrorResponse "Invalid request format or class ratio"
// @Failure 404 {object} dto.ErrorResponse "Session or swimmer not found"
// @Failure 409 {object} dto.ErrorResponse "Class full or already enrolled"
// @Router /enrollments [post]
func (c *EnrollmentController) Enroll(ctx *gin.Context) {
	actorID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	var req dto.EnrollRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	enrollment, err := c.enrollmentService.Enroll(ctx.Request.Context(), actorID, &req)
	if err != nil {
		c.logger.Info().Err(err).
			Int64("sessionID", req.SessionID).
			Int64("swimmerID", req.SwimmerID).
			Msg("Enrollment rejected")
		middleware.HandleAPIError(ctx, err)
		return
	}

	respond(ctx, http.StatusCreated, "Swimmer enrolled successfully", enrollment)
}

// GetEnrollment godoc
// @Summary Get an enrollment
// @Tags enrollments
// @Produce json
// @Security BearerAuth
// @Param id path int true "Enrollment ID"
// @Success 200 {object} dto.APIResponse{data=models.Enrollment} "Enrollment"
// @Failure 404 {object} dto.ErrorResponse "Enrollment not found"
// @Router /enrollments/{id} [get]
func (c *EnrollmentController) GetEnrollment(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id", "enrollment")
	if !ok {
		return
	}

	enrollment, err := c.enrollmentService.GetEnrollmentByID(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	respond(ctx, http.StatusOK, "", enrollment)
}

// ListEnrollments godoc
// @Summary List enrollments
// @Tags enrollments
// @Produce json
// @Security BearerAuth
// @Param sessionId query int false "Session filter"
// @Param swimmerId query int false "Swimmer filter"
// @Param status query string false "Status filter" Enums(ACTIVE, CANCELED, TRANSFERRED)
// @Param page query int false "Page number" default(1)
// @Param size query int false "Page size" default(10)
// @Success 200 {object} dto.APIResponse{data=dto.PaginatedResponse} "Enrollments"
// @Failure 400 {object} dto.ErrorResponse "Invalid filter"
// @Router /enrollments [get]
func (c *EnrollmentController) ListEnrollments(ctx *gin.Context) {
	var filter dto.EnrollmentFilter
	var ok bool
	if filter.SessionID, ok = parseOptionalIDQuery(ctx, "sessionId"); !ok {
		return
	}
	if filter.SwimmerID, ok = parseOptionalIDQuery(ctx, "swimmerId"); !ok {
		return
	}
	if raw := ctx.Query("status"); raw != "" {
		status := models.EnrollmentStatus(raw)
		if !status.IsValid() {
			errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid query parameter").
				WithField("status").
				WithDetails("status must be one of ACTIVE, CANCELED, TRANSFERRED")
			ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
			return
		}
		filter.Status = &status
	}
	pg := helpers.PageFromQuery(ctx)

	enrollments, err := c.enrollmentService.ListEnrollments(ctx.Request.Context(), filter, pg.Number, pg.Size)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	respond(ctx, http.StatusOK, "", enrollments)
}

// Transfer godoc
// @Summary Transfer an enrollment
// @Description Moves an active enrollment to another session. The target is checked against its capacity first.
// @Tags enrollments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Enrollment ID"
// @Param request body dto.TransferRequest true "Target session"
// @Success 200 {object} dto.APIResponse{data=dto.TransferResponse} "Transferred"
// @Failure 400 {object} dto.ErrorResponse "Same session"
// @Failure 404 {object} dto.ErrorResponse "Enrollment or session not found"
// @Failure 409 {object} dto.ErrorResponse "Target full, already enrolled, or enrollment not active"
// @Router /enrollments/{id}/transfer [post]
func (c *EnrollmentController) Transfer(ctx *gin.Context) {
	actorID, ok := currentUserID(ctx)
	if !ok {
		return
	}
	id, ok := parseIDParam(ctx, "id", "enrollment")
	if !ok {
		return
	}

	var req dto.TransferRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	result, err := c.enrollmentService.Transfer(ctx.Request.Context(), actorID, id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	respond(ctx, http.StatusOK, "Enrollment transferred successfully", result)
}

// Cancel godoc
// @Summary Cancel an enrollment
// @Tags enrollments
// @Produce json
// @Security BearerAuth
// @Param id path int true "Enrollment ID"
// @Success 200 {object} dto.APIResponse{data=models.Enrollment} "Canceled"
// @Failure 404 {object} dto.ErrorResponse "Enrollment not found"
// @Failure 409 {object} dto.ErrorResponse "Enrollment not active"
// @Router /enrollments/{id}/cancel [post]
func (c *EnrollmentController) Cancel(ctx *gin.Context) {
	actorID, ok := currentUserID(ctx)
	if !ok {
		return
	}
	id, ok := parseIDParam(ctx, "id", "enrollment")
	if !ok {
		return
	}

	enrollment, err := c.enrollmentService.Cancel(ctx.Request.Context(), actorID, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	respond(ctx, http.StatusOK, "Enrollment canceled successfully", enrollment)
}

// RecordSkip godoc
// @Summary Record a skipped class
// @Description Marks that the swimmer will miss one date. The seat stays reserved.
// @Tags enrollments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Enrollment ID"
// @Param request body dto.SkipRequest true "Skip"
// @Success 201 {object} dto.APIResponse{data=models.EnrollmentSkip} "Skip recorded"
// @Failure 404 {object} dto.ErrorResponse "Enrollment not found"
// @Failure 409 {object} dto.ErrorResponse "Skip already recorded"
// @Router /enrollments/{id}/skip [post]
func (c *EnrollmentController) RecordSkip(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id", "enrollment")
	if !ok {
		return
	}

	var req dto.SkipRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	skip, err := c.enrollmentService.RecordSkip(ctx.Request.Context(), id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	respond(ctx, http.StatusCreated, "Skip recorded successfully", skip)
}

// ListSkips godoc
// @Summary List skips of an enrollment
// @Tags enrollments
// @Produce json
// @Security BearerAuth
// @Param id path int true "Enrollment ID"
// @Success 200 {object} dto.APIResponse{data=[]models.EnrollmentSkip} "Skips"
// @Failure 404 {object} dto.ErrorResponse "Enrollment not found"
// @Router /enrollments/{id}/skips [get]
func (c *EnrollmentController) ListSkips(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id", "enrollment")
	if !ok {
		return
	}

	skips, err := c.enrollmentService.ListSkips(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	respond(ctx, http.StatusOK, "", skips)
}

// GetBalance godoc
// @Summary Enrollment balance
// @Description Price of the offering minus non-refunded payments
// @Tags enrollments, payments
// @Produce json
// @Security BearerAuth
// @Param id path int true "Enrollment ID"
// @Success 200 {object} dto.APIResponse{data=dto.BalanceResponse} "Balance"
// @Failure 404 {object} dto.ErrorResponse "Enrollment not found"
// @Router /enrollments/{id}/balance [get]
func (c *EnrollmentController) GetBalance(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id", "enrollment")
	if !ok {
		return
	}

	balance, err := c.enrollmentService.GetBalance(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	respond(ctx, http.StatusOK, "", balance)
}
