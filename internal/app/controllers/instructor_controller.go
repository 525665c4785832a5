package controllers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/yigit/swimdesk/internal/app/models"
	"github.com/yigit/swimdesk/internal/app/models/dto"
	"github.com/yigit/swimdesk/internal/middleware"
)

// InstructorUseCase is what the instructor endpoints need from the service layer
type InstructorUseCase interface {
	CreateInstructor(ctx context.Context, req *dto.InstructorRequest) (*models.Instructor, error)
	GetInstructorByID(ctx context.Context, id int64) (*models.Instructor, error)
	ListInstructors(ctx context.Context, activeOnly bool) ([]*models.Instructor, error)
	UpdateInstructor(ctx context.Context, id int64, req *dto.InstructorRequest) (*models.Instructor, error)
	DeleteInstructor(ctx context.Context, id int64) error
}

// InstructorController handles instructor related operations
type InstructorController struct {
	instructorService InstructorUseCase
	logger            zerolog.Logger
}

// NewInstructorController creates a new instructor controller
func NewInstructorController(instructorService InstructorUseCase, logger zerolog.Logger) *InstructorController {
	return &InstructorController{
		instructorService: instructorService,
		logger:            logger,
	}
}

// CreateInstructor godoc
// @Summary Create an instructor
// @Tags instructors
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.InstructorRequest true "Instructor"
// @Success 201 {object} dto.APIResponse{data=models.Instructor} "Instructor created"
// @Failure 400 {object} dto.ErrorResponse "Invalid request format"
// @Failure 409 {object} dto.ErrorResponse "Email already exists"
// @Router /instructors [post]
func (c *InstructorController) CreateInstructor(ctx *gin.Context) {
	var req dto.InstructorRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	instructor, err := c.instructorService.CreateInstructor(ctx.Request.Context(), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	c.logger.Info().Int64("instructorID", instructor.ID).Msg("Instructor created")
	respond(ctx, http.StatusCreated, "Instructor created successfully", instructor)
}

// GetInstructorByID retrieves instructor information by ID
// @Summary Get instructor by ID
// @Tags instructors
// @Produce json
// @Security BearerAuth
// @Param id path int true "Instructor ID" Format(int64)
// @Success 200 {object} dto.APIResponse{data=models.Instructor} "Instructor retrieved successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid Instructor ID format"
// @Failure 404 {object} dto.ErrorResponse "Instructor not found"
// @Router /instructors/{id} [get]
func (c *InstructorController) GetInstructorByID(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id", "instructor")
	if !ok {
		return
	}

	instructor, err := c.instructorService.GetInstructorByID(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	respond(ctx, http.StatusOK, "", instructor)
}

// ListInstructors godoc
// @Summary List instructors
// @Tags instructors
// @Produce json
// @Security BearerAuth
// @Param active query bool false "Only active instructors"
// @Success 200 {object} dto.APIResponse{data=[]models.Instructor} "Instructors"
// @Router /instructors [get]
func (c *InstructorController) ListInstructors(ctx *gin.Context) {
	instructors, err := c.instructorService.ListInstructors(ctx.Request.Context(), ctx.Query("active") == "true")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	respond(ctx, http.StatusOK, "", instructors)
}

// UpdateInstructor godoc
// @Summary Update an instructor
// @Tags instructors
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Instructor ID"
// @Param request body dto.InstructorRequest true "Instructor"
// @Success 200 {object} dto.APIResponse{data=models.Instructor} "Instructor updated"
// @Failure 404 {object} dto.ErrorResponse "Instructor not found"
// @Router /instructors/{id} [put]
func (c *InstructorController) UpdateInstructor(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id", "instructor")
	if !ok {
		return
	}

	var req dto.InstructorRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	instructor, err := c.instructorService.UpdateInstructor(ctx.Request.Context(), id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	respond(ctx, http.StatusOK, "Instructor updated successfully", instructor)
}

// DeleteInstructor godoc
// @Summary Delete an instructor
// @Tags instructors
// @Produce json
// @Security BearerAuth
// @Param id path int true "Instructor ID"
// @Success 200 {object} dto.APIResponse "Instructor deleted"
// @Failure 404 {object} dto.ErrorResponse "Instructor not found"
// @Failure 409 {object} dto.ErrorResponse "Instructor is assigned to sessions"
// @Router /instructors/{id} [delete]
func (c *InstructorController) DeleteInstructor(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id", "instructor")
	if !ok {
		return
	}

	if err := c.instructorService.DeleteInstructor(ctx.Request.Context(), id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	respond(ctx, http.StatusOK, "Instructor deleted successfully", nil)
}
