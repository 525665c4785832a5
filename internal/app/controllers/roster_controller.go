package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/yigit/swimdesk/internal/app/models/dto"
	"github.com/yigit/swimdesk/internal/app/services"
	"github.com/yigit/swimdesk/internal/domain"
	"github.com/yigit/swimdesk/internal/middleware"
	"github.com/yigit/swimdesk/internal/pkg/helpers"
)

// RosterUseCase is what the roster endpoints need from the service layer
type RosterUseCase interface {
	GetSlotPage(ctx context.Context, from, to *time.Time, page, size int) (*services.RosterPage, error)
	GroupByOffering(ctx context.Context, from, to *time.Time) ([]domain.OfferingGroup, error)
}

// RosterController serves printable class rosters
type RosterController struct {
	rosterService RosterUseCase
	logger        zerolog.Logger
}

// NewRosterController creates a new RosterController
func NewRosterController(rosterService RosterUseCase, logger zerolog.Logger) *RosterController {
	return &RosterController{
		rosterService: rosterService,
		logger:        logger,
	}
}

// GetSlots godoc
// @Summary Rosters by day
// @Description One page of sessions laid out by day, each with its instructors, swimmers and usage
// @Tags roster
// @Produce json
// @Security BearerAuth
// @Param from query string false "First day (YYYY-MM-DD)"
// @Param to query string false "Last day, inclusive (YYYY-MM-DD)"
// @Param page query int false "Page number" default(1)
// @Param size query int false "Page size" default(10)
// @Success 200 {object} dto.APIResponse{data=services.RosterPage} "Rosters"
// @Failure 400 {object} dto.ErrorResponse "Invalid date range"
// @Router /rosters [get]
func (c *RosterController) GetSlots(ctx *gin.Context) {
	from, to, ok := parseDateRangeQuery(ctx)
	if !ok {
		return
	}
	pg := helpers.PageFromQuery(ctx)

	slots, err := c.rosterService.GetSlotPage(ctx.Request.Context(), from, to, pg.Number, pg.Size)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	respond(ctx, http.StatusOK, "", slots)
}

// GetByOffering godoc
// @Summary Rosters grouped by offering
// @Description Every session in the range grouped under its offering, sorted by offering title
// @Tags roster
// @Produce json
// @Security BearerAuth
// @Param from query string false "First day (YYYY-MM-DD)"
// @Param to query string false "Last day, inclusive (YYYY-MM-DD)"
// @Param page query int false "Page number" default(1)
// @Param size query int false "Offerings per page" default(10)
// @Success 200 {object} dto.APIResponse{data=dto.PaginatedResponse{items=[]domain.OfferingGroup}} "Offering groups"
// @Failure 400 {object} dto.ErrorResponse "Invalid date range"
// @Router /rosters/by-offering [get]
func (c *RosterController) GetByOffering(ctx *gin.Context) {
	from, to, ok := parseDateRangeQuery(ctx)
	if !ok {
		return
	}

	pg := helpers.PageFromQuery(ctx)

	groups, err := c.rosterService.GroupByOffering(ctx.Request.Context(), from, to)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	// groups only exist after the whole range is sorted, so paging happens here
	items, info := helpers.Paginate(groups, pg)
	respond(ctx, http.StatusOK, "", dto.PaginatedResponse{Items: items, Pagination: info})
}
