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

// OfferingUseCase is what the offering endpoints need from the service layer
type OfferingUseCase interface {
	CreateOffering(ctx context.Context, req *dto.CreateOfferingRequest) (*models.Offering, error)
	GetOfferingByID(ctx context.Context, id int64) (*models.Offering, error)
	ListOfferings(ctx context.Context, activeOnly bool, page, size int) (*dto.PaginatedResponse, error)
	UpdateOffering(ctx context.Context, id int64, req *dto.UpdateOfferingRequest) (*models.Offering, error)
	DeleteOffering(ctx context.Context, id int64) error
}

// OfferingController handles the class catalog
type OfferingController struct {
	offeringService OfferingUseCase
	logger          zerolog.Logger
}

// NewOfferingController creates a new OfferingController
func NewOfferingController(offeringService OfferingUseCase, logger zerolog.Logger) *OfferingController {
	return &OfferingController{
		offeringService: offeringService,
		logger:          logger,
	}
}

// CreateOffering godoc
// @Summary Create an offering
// @Description Adds a class type to the catalog. Default ratio and base capacity fall back to the school defaults.
// @Tags offerings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateOfferingRequest true "Offering"
// @Success 201 {object} dto.APIResponse{data=models.Offering} "Offering created"
// @Failure 400 {object} dto.ErrorResponse "Invalid request format"
// @Failure 403 {object} dto.ErrorResponse "Admin only"
// @Router /offerings [post]
func (c *OfferingController) CreateOffering(ctx *gin.Context) {
	var req dto.CreateOfferingRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	offering, err := c.offeringService.CreateOffering(ctx.Request.Context(), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	c.logger.Info().Int64("offeringID", offering.ID).Str("title", offering.Title).Msg("Offering created")
	respond(ctx, http.StatusCreated, "Offering created successfully", offering)
}

// GetOffering godoc
// @Summary Get an offering
// @Tags offerings
// @Produce json
// @Security BearerAuth
// @Param id path int true "Offering ID"
// @Success 200 {object} dto.APIResponse{data=models.Offering} "Offering"
// @Failure 400 {object} dto.ErrorResponse "Invalid offering ID"
// @Failure 404 {object} dto.ErrorResponse "Offering not found"
// @Router /offerings/{id} [get]
func (c *OfferingController) GetOffering(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id", "offering")
	if !ok {
		return
	}

	offering, err := c.offeringService.GetOfferingByID(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	respond(ctx, http.StatusOK, "", offering)
}

// ListOfferings godoc
// @Summary List offerings
// @Tags offerings
// @Produce json
// @Security BearerAuth
// @Param active query bool false "Only active offerings"
// @Param page query int false "Page number" default(1)
// @Param size query int false "Page size" default(10)
// @Success 200 {object} dto.APIResponse{data=dto.PaginatedResponse} "Offerings"
// @Router /offerings [get]
func (c *OfferingController) ListOfferings(ctx *gin.Context) {
	pg := helpers.PageFromQuery(ctx)
	activeOnly := ctx.Query("active") == "true"

	offerings, err := c.offeringService.ListOfferings(ctx.Request.Context(), activeOnly, pg.Number, pg.Size)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	respond(ctx, http.StatusOK, "", offerings)
}

// UpdateOffering godoc
// @Summary Update an offering
// @Tags offerings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Offering ID"
// @Param request body dto.UpdateOfferingRequest true "Offering"
// @Success 200 {object} dto.APIResponse{data=models.Offering} "Offering updated"
// @Failure 400 {object} dto.ErrorResponse "Invalid request format"
// @Failure 404 {object} dto.ErrorResponse "Offering not found"
// @Router /offerings/{id} [put]
func (c *OfferingController) UpdateOffering(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id", "offering")
	if !ok {
		return
	}

	var req dto.UpdateOfferingRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	offering, err := c.offeringService.UpdateOffering(ctx.Request.Context(), id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	respond(ctx, http.StatusOK, "Offering updated successfully", offering)
}

// DeleteOffering godoc
// @Summary Delete an offering
// @Description Fails with 409 while sessions of the offering exist
// @Tags offerings
// @Produce json
// @Security BearerAuth
// @Param id path int true "Offering ID"
// @Success 200 {object} dto.APIResponse "Offering deleted"
// @Failure 404 {object} dto.ErrorResponse "Offering not found"
// @Failure 409 {object} dto.ErrorResponse "Offering has sessions"
// @Router /offerings/{id} [delete]
func (c *OfferingController) DeleteOffering(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id", "offering")
	if !ok {
		return
	}

	if err := c.offeringService.DeleteOffering(ctx.Request.Context(), id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	c.logger.Info().Int64("offeringID", id).Msg("Offering deleted")
	respond(ctx, http.StatusOK, "Offering deleted successfully", nil)
}
