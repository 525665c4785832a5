package services

import (
	"context"
	"strings"

	"github.com/rs/zerolog"
	"github.com/yigit/swimdesk/internal/app/models"
	"github.com/yigit/swimdesk/internal/app/models/dto"
	"github.com/yigit/swimdesk/internal/pkg/apperrors"
	"github.com/yigit/swimdesk/internal/pkg/helpers"
)

// SwimmerService handles swimmer records
type SwimmerService struct {
	swimmerRepo SwimmerStore
	logger      zerolog.Logger
}

// NewSwimmerService creates a new SwimmerService
func NewSwimmerService(swimmerRepo SwimmerStore, logger zerolog.Logger) *SwimmerService {
	return &SwimmerService{
		swimmerRepo: swimmerRepo,
		logger:      logger,
	}
}

func (s *SwimmerService) apply(sw *models.Swimmer, req *dto.SwimmerRequest) error {
	sw.FirstName = strings.TrimSpace(req.FirstName)
	sw.LastName = strings.TrimSpace(req.LastName)
	sw.BirthDate = nil
	if birth := helpers.NullIfBlank(req.BirthDate); birth != nil {
		d, err := helpers.ParseDate(*birth)
		if err != nil {
			return apperrors.NewBadRequestError("birthDate must be YYYY-MM-DD")
		}
		sw.BirthDate = &d
	}
	sw.GuardianName = helpers.NullIfBlank(req.GuardianName)
	sw.GuardianEmail = helpers.NullIfBlank(req.GuardianEmail)
	sw.GuardianPhone = helpers.NullIfBlank(req.GuardianPhone)
	sw.Level = helpers.NullIfBlank(req.Level)
	sw.Notes = helpers.NullIfBlank(req.Notes)
	return nil
}

// CreateSwimmer creates a new swimmer
func (s *SwimmerService) CreateSwimmer(ctx context.Context, req *dto.SwimmerRequest) (*models.Swimmer, error) {
	swimmer := &models.Swimmer{}
	if err := s.apply(swimmer, req); err != nil {
		return nil, err
	}
	if err := s.swimmerRepo.Create(ctx, swimmer); err != nil {
		return nil, err
	}
	return swimmer, nil
}

// GetSwimmerByID retrieves a swimmer
func (s *SwimmerService) GetSwimmerByID(ctx context.Context, id int64) (*models.Swimmer, error) {
	return s.swimmerRepo.GetByID(ctx, id)
}

// ListSwimmers returns a page of swimmers matching an optional name search
func (s *SwimmerService) ListSwimmers(ctx context.Context, search string, page, size int) (*dto.PaginatedResponse, error) {
	pg := helpers.NewPage(page, size)
	swimmers, total, err := s.swimmerRepo.List(ctx, strings.TrimSpace(search), pg.Offset(), pg.Size)
	if err != nil {
		return nil, err
	}
	return &dto.PaginatedResponse{
		Items:      swimmers,
		Pagination: pg.Info(total),
	}, nil
}

// UpdateSwimmer replaces a swimmer's fields
func (s *SwimmerService) UpdateSwimmer(ctx context.Context, id int64, req *dto.SwimmerRequest) (*models.Swimmer, error) {
	swimmer, err := s.swimmerRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.apply(swimmer, req); err != nil {
		return nil, err
	}
	if err := s.swimmerRepo.Update(ctx, swimmer); err != nil {
		return nil, err
	}
	return swimmer, nil
}

// DeleteSwimmer deletes a swimmer with no enrollments
func (s *SwimmerService) DeleteSwimmer(ctx context.Context, id int64) error {
	return s.swimmerRepo.Delete(ctx, id)
}
