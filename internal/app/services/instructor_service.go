package services

import (
	"context"
	"strings"

	"github.com/rs/zerolog"
	"github.com/yigit/swimdesk/internal/app/models"
	"github.com/yigit/swimdesk/internal/app/models/dto"
	"github.com/yigit/swimdesk/internal/pkg/apperrors"
	"github.com/yigit/swimdesk/internal/pkg/helpers"
	"github.com/yigit/swimdesk/internal/pkg/validation"
)

// InstructorService handles instructor operations
type InstructorService struct {
	instructorRepo InstructorStore
	logger         zerolog.Logger
}

// NewInstructorService creates a new InstructorService
func NewInstructorService(instructorRepo InstructorStore, logger zerolog.Logger) *InstructorService {
	return &InstructorService{
		instructorRepo: instructorRepo,
		logger:         logger,
	}
}

func (s *InstructorService) apply(i *models.Instructor, req *dto.InstructorRequest) error {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if !validation.IsValidEmail(email) {
		return apperrors.NewBadRequestError("invalid email format")
	}
	i.FirstName = strings.TrimSpace(req.FirstName)
	i.LastName = strings.TrimSpace(req.LastName)
	i.Email = email
	i.Certifications = helpers.NullIfBlank(req.Certifications)
	i.UserID = req.UserID
	if req.IsActive != nil {
		i.IsActive = *req.IsActive
	}
	return nil
}

// CreateInstructor creates a new instructor
func (s *InstructorService) CreateInstructor(ctx context.Context, req *dto.InstructorRequest) (*models.Instructor, error) {
	instructor := &models.Instructor{IsActive: true}
	if err := s.apply(instructor, req); err != nil {
		return nil, err
	}
	if err := s.instructorRepo.Create(ctx, instructor); err != nil {
		return nil, err
	}
	return instructor, nil
}

// GetInstructorByID retrieves an instructor
func (s *InstructorService) GetInstructorByID(ctx context.Context, id int64) (*models.Instructor, error) {
	return s.instructorRepo.GetByID(ctx, id)
}

// ListInstructors returns every instructor, optionally only active ones
func (s *InstructorService) ListInstructors(ctx context.Context, activeOnly bool) ([]*models.Instructor, error) {
	return s.instructorRepo.List(ctx, activeOnly)
}

// UpdateInstructor replaces an instructor's fields
func (s *InstructorService) UpdateInstructor(ctx context.Context, id int64, req *dto.InstructorRequest) (*models.Instructor, error) {
	instructor, err := s.instructorRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.apply(instructor, req); err != nil {
		return nil, err
	}
	if err := s.instructorRepo.Update(ctx, instructor); err != nil {
		return nil, err
	}
	return instructor, nil
}

// DeleteInstructor deletes an instructor with no session assignments
func (s *InstructorService) DeleteInstructor(ctx context.Context, id int64) error {
	return s.instructorRepo.Delete(ctx, id)
}
