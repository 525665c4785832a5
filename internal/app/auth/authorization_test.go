package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/swimdesk/internal/app/models"
	"github.com/yigit/swimdesk/internal/pkg/apperrors"
)

type stubUsers map[int64]*models.User

func (s stubUsers) GetByID(_ context.Context, id int64) (*models.User, error) {
	if u, ok := s[id]; ok {
		return u, nil
	}
	return nil, apperrors.ErrUserNotFound
}

type stubStaffing struct {
	bySession map[int64][]*models.Instructor
	err       error
}

func (s stubStaffing) InstructorsBySession(_ context.Context, ids []int64) (map[int64][]*models.Instructor, error) {
	if s.err != nil {
		return nil, s.err
	}
	out := map[int64][]*models.Instructor{}
	for _, id := range ids {
		out[id] = s.bySession[id]
	}
	return out, nil
}

func TestValidateActiveUser(t *testing.T) {
	svc := NewAuthorizationService(stubUsers{
		1: {ID: 1, IsActive: true},
		2: {ID: 2, IsActive: false},
	}, stubStaffing{})

	assert.NoError(t, svc.ValidateActiveUser(context.Background(), 1))
	assert.ErrorIs(t, svc.ValidateActiveUser(context.Background(), 2), apperrors.ErrAccountDisabled)
	assert.ErrorIs(t, svc.ValidateActiveUser(context.Background(), 3), apperrors.ErrAccountDisabled)
}

func TestCanViewSession(t *testing.T) {
	coachUser := int64(10)
	svc := NewAuthorizationService(stubUsers{}, stubStaffing{bySession: map[int64][]*models.Instructor{
		5: {{ID: 1, UserID: &coachUser}, {ID: 2}},
	}})
	ctx := context.Background()

	tests := []struct {
		name      string
		userID    int64
		role      models.RoleType
		sessionID int64
		want      bool
	}{
		{"admin sees all", 1, models.RoleAdmin, 6, true},
		{"staff sees all", 2, models.RoleStaff, 6, true},
		{"assigned instructor", coachUser, models.RoleInstructor, 5, true},
		{"other instructor", 11, models.RoleInstructor, 5, false},
		{"instructor of another session", coachUser, models.RoleInstructor, 6, false},
		{"unknown role", 1, "GUEST", 5, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.CanViewSession(ctx, tt.userID, tt.role, tt.sessionID)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	err := svc.ValidateSessionAccess(ctx, 11, models.RoleInstructor, 5)
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)
}

func TestCanViewSession_StoreError(t *testing.T) {
	boom := errors.New("db down")
	svc := NewAuthorizationService(stubUsers{}, stubStaffing{err: boom})

	_, err := svc.CanViewSession(context.Background(), 1, models.RoleInstructor, 5)
	assert.ErrorIs(t, err, boom)
}
