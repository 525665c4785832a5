package auth

import (
	"context"
	"errors"

	"github.com/yigit/swimdesk/internal/app/models"
	"github.com/yigit/swimdesk/internal/pkg/apperrors"
	"github.com/yigit/swimdesk/internal/pkg/logger"
)

// ErrNotAssigned is returned when an instructor asks for a session they do not teach
var ErrNotAssigned = errors.New("instructor is not assigned to this session")

// UserLookup loads accounts
type UserLookup interface {
	GetByID(ctx context.Context, id int64) (*models.User, error)
}

// SessionStaffing reports who teaches which session
type SessionStaffing interface {
	InstructorsBySession(ctx context.Context, sessionIDs []int64) (map[int64][]*models.Instructor, error)
}

// AuthorizationService answers per-request access questions that a role alone cannot
type AuthorizationService struct {
	userRepo    UserLookup
	sessionRepo SessionStaffing
}

// NewAuthorizationService creates a new AuthorizationService
func NewAuthorizationService(userRepo UserLookup, sessionRepo SessionStaffing) *AuthorizationService {
	return &AuthorizationService{
		userRepo:    userRepo,
		sessionRepo: sessionRepo,
	}
}

// ValidateActiveUser fails when the account was removed or disabled after its token was issued
func (s *AuthorizationService) ValidateActiveUser(ctx context.Context, userID int64) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return apperrors.ErrAccountDisabled
		}
		logger.Error().Err(err).Int64("userID", userID).Msg("Error getting user in ValidateActiveUser")
		return err
	}
	if !user.IsActive {
		return apperrors.ErrAccountDisabled
	}
	return nil
}

// CanViewSession reports whether a user may see a session's roster and usage.
// Admins and desk staff see everything; instructors only the sessions they teach.
func (s *AuthorizationService) CanViewSession(ctx context.Context, userID int64, role models.RoleType, sessionID int64) (bool, error) {
	switch role {
	case models.RoleAdmin, models.RoleStaff:
		return true, nil
	case models.RoleInstructor:
	default:
		return false, nil
	}

	staffing, err := s.sessionRepo.InstructorsBySession(ctx, []int64{sessionID})
	if err != nil {
		logger.Error().Err(err).Int64("sessionID", sessionID).Msg("Error loading session instructors in CanViewSession")
		return false, err
	}
	for _, instructor := range staffing[sessionID] {
		if instructor.UserID != nil && *instructor.UserID == userID {
			return true, nil
		}
	}
	return false, nil
}

// ValidateSessionAccess is CanViewSession returning ErrPermissionDenied on refusal
func (s *AuthorizationService) ValidateSessionAccess(ctx context.Context, userID int64, role models.RoleType, sessionID int64) error {
	ok, err := s.CanViewSession(ctx, userID, role, sessionID)
	if err != nil {
		return err
	}
	if !ok {
		return apperrors.NewCustomError(apperrors.ErrPermissionDenied, ErrNotAssigned.Error())
	}
	return nil
}
