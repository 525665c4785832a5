package services

import (
	"context"
	"strings"

	"github.com/rs/zerolog"
	"github.com/yigit/swimdesk/internal/app/models"
	"github.com/yigit/swimdesk/internal/app/models/dto"
	"github.com/yigit/swimdesk/internal/domain"
	"github.com/yigit/swimdesk/internal/pkg/apperrors"
	"github.com/yigit/swimdesk/internal/pkg/helpers"
)

// OfferingService manages the class catalog
type OfferingService struct {
	offeringRepo OfferingStore
	defaults     CapacityDefaults
	logger       zerolog.Logger
}

// NewOfferingService creates a new OfferingService
func NewOfferingService(offeringRepo OfferingStore, defaults CapacityDefaults, logger zerolog.Logger) *OfferingService {
	if defaults.ClassRatio == "" {
		defaults.ClassRatio = domain.DefaultRatio
	}
	return &OfferingService{
		offeringRepo: offeringRepo,
		defaults:     defaults,
		logger:       logger,
	}
}

// apply copies a request onto an offering. An empty ratio takes the school default; an omitted
// capacity leaves the offering's current one in place.
func (s *OfferingService) apply(o *models.Offering, req *dto.CreateOfferingRequest) error {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return apperrors.NewBadRequestError("title is required")
	}

	ratio := domain.ClassRatio(req.DefaultClassRatio)
	if ratio == "" {
		ratio = s.defaults.ClassRatio
	}
	if !ratio.IsKnown() {
		return apperrors.NewBadRequestError("unknown class ratio: " + string(ratio))
	}

	o.Title = title
	o.Notes = helpers.NullIfBlank(req.Notes)
	o.Level = helpers.NullIfBlank(req.Level)
	o.DefaultClassRatio = string(ratio)
	if req.BaseCapacity != nil {
		o.BaseCapacity = *req.BaseCapacity
	}
	o.PriceCents = req.PriceCents
	if req.IsActive != nil {
		o.IsActive = *req.IsActive
	}
	return nil
}

// CreateOffering creates a new offering
func (s *OfferingService) CreateOffering(ctx context.Context, req *dto.CreateOfferingRequest) (*models.Offering, error) {
	offering := &models.Offering{IsActive: true, BaseCapacity: s.defaults.BaseCapacity}
	if err := s.apply(offering, req); err != nil {
		return nil, err
	}
	if err := s.offeringRepo.Create(ctx, offering); err != nil {
		return nil, err
	}
	s.logger.Info().Int64("offeringID", offering.ID).Str("title", offering.Title).Msg("Offering created")
	return offering, nil
}

// GetOfferingByID retrieves an offering
func (s *OfferingService) GetOfferingByID(ctx context.Context, id int64) (*models.Offering, error) {
	return s.offeringRepo.GetByID(ctx, id)
}

// ListOfferings returns a page of offerings
func (s *OfferingService) ListOfferings(ctx context.Context, activeOnly bool, page, size int) (*dto.PaginatedResponse, error) {
	pg := helpers.NewPage(page, size)
	offerings, total, err := s.offeringRepo.List(ctx, activeOnly, pg.Offset(), pg.Size)
	if err != nil {
		return nil, err
	}
	return &dto.PaginatedResponse{
		Items:      offerings,
		Pagination: pg.Info(total),
	}, nil
}

// UpdateOffering replaces an offering's editable fields
func (s *OfferingService) UpdateOffering(ctx context.Context, id int64, req *dto.UpdateOfferingRequest) (*models.Offering, error) {
	offering, err := s.offeringRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	create := dto.CreateOfferingRequest(*req)
	if err := s.apply(offering, &create); err != nil {
		return nil, err
	}
	if err := s.offeringRepo.Update(ctx, offering); err != nil {
		return nil, err
	}
	return offering, nil
}

// DeleteOffering deletes an offering that has no sessions
func (s *OfferingService) DeleteOffering(ctx context.Context, id int64) error {
	if err := s.offeringRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info().Int64("offeringID", id).Msg("Offering deleted")
	return nil
}
