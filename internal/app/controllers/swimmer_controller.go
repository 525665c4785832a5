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

// SwimmerUseCase is what the swimmer endpoints need from the service layer
type SwimmerUseCase interface {
	CreateSwimmer(ctx context.Context, req *dto.SwimmerRequest) (*models.Swimmer, error)
	GetSwimmerByID(ctx context.Context, id int64) (*models.Swimmer, error)
	ListSwimmers(ctx context.Context, search string, page, size int) (*dto.PaginatedResponse, error)
	UpdateSwimmer(ctx context.Context, id int64, req *dto.SwimmerRequest) (*models.Swimmer, error)
	DeleteSwimmer(ctx context.Context, id int64) error
}

// SwimmerController handles swimmer records
type SwimmerController struct {
	swimmerService SwimmerUseCase
	logger         zerolog.Logger
}

// NewSwimmerController creates a new SwimmerController
func NewSwimmerController(swimmerService SwimmerUseCase, logger zerolog.Logger) *SwimmerController {
	return &SwimmerController{
		swimmerService: swimmerService,
		logger:         logger,
	}
}

// CreateSwimmer godoc
// @Summary Register a swimmer
// @Tags swimmers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.SwimmerRequest true "Swimmer"
// @Success 201 {object} dto.APIResponse{data=models.Swimmer} "Swimmer created"
// @Failure 400 {object} dto.ErrorResponse "Invalid request format"
// @Router /swimmers [post]
func (c *SwimmerController) CreateSwimmer(ctx *gin.Context) {
	var req dto.SwimmerRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	swimmer, err := c.swimmerService.CreateSwimmer(ctx.Request.Context(), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	respond(ctx, http.StatusCreated, "Swimmer created successfully", swimmer)
}

// GetSwimmer godoc
// @Summary Get a swimmer
// @Tags swimmers
// @Produce json
// @Security BearerAuth
// @Param id path int true "Swimmer ID"
// @Success 200 {object} dto.APIResponse{data=models.Swimmer} "Swimmer"
// @Failure 404 {object} dto.ErrorResponse "Swimmer not found"
// @Router /swimmers/{id} [get]
func (c *SwimmerController) GetSwimmer(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id", "swimmer")
	if !ok {
		return
	}

	swimmer, err := c.swimmerService.GetSwimmerByID(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	respond(ctx, http.StatusOK, "", swimmer)
}

// ListSwimmers godoc
// @Summary List swimmers
// @Tags swimmers
// @Produce json
// @Security BearerAuth
// @Param q query string false "Name search"
// @Param page query int false "Page number" default(1)
// @Param size query int false "Page size" default(10)
// @Success 200 {object} dto.APIResponse{data=dto.PaginatedResponse} "Swimmers"
// @Router /swimmers [get]
func (c *SwimmerController) ListSwimmers(ctx *gin.Context) {
	pg := helpers.PageFromQuery(ctx)

	swimmers, err := c.swimmerService.ListSwimmers(ctx.Request.Context(), ctx.Query("q"), pg.Number, pg.Size)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	respond(ctx, http.StatusOK, "", swimmers)
}

// UpdateSwimmer godoc
// @Summary Update a swimmer
// @Tags swimmers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Swimmer ID"
// @Param request body dto.SwimmerRequest true "Swimmer"
// @Success 200 {object} dto.APIResponse{data=models.Swimmer} "Swimmer updated"
// @Failure 404 {object} dto.ErrorResponse "Swimmer not found"
// @Router /swimmers/{id} [put]
func (c *SwimmerController) UpdateSwimmer(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id", "swimmer")
	if !ok {
		return
	}

	var req dto.SwimmerRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	swimmer, err := c.swimmerService.UpdateSwimmer(ctx.Request.Context(), id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	respond(ctx, http.StatusOK, "Swimmer updated successfully", swimmer)
}

// DeleteSwimmer godoc
// @Summary Delete a swimmer
// @Tags swimmers
// @Produce json
// @Security BearerAuth
// @Param id path int true "Swimmer ID"
// @Success 200 {object} dto.APIResponse "Swimmer deleted"
// @Failure 404 {object} dto.ErrorResponse "Swimmer not found"
// @Failure 409 {object} dto.ErrorResponse "Swimmer has enrollments"
// @Router /swimmers/{id} [delete]
func (c *SwimmerController) DeleteSwimmer(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id", "swimmer")
	if !ok {
		return
	}

	if err := c.swimmerService.DeleteSwimmer(ctx.Request.Context(), id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	respond(ctx, http.StatusOK, "Swimmer deleted successfully", nil)
}
