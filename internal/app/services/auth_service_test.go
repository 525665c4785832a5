package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/swimdesk/internal/app/models"
	"github.com/yigit/swimdesk/internal/app/models/dto"
	"github.com/yigit/swimdesk/internal/pkg/apperrors"
	"github.com/yigit/swimdesk/internal/pkg/auth"
	"golang.org/x/crypto/bcrypt"
)

func newAuthFixture(t *testing.T) (*AuthService, *fakeUserStore, *fakeTokenStore, *auth.JWTService) {
	t.Helper()
	previous := auth.BcryptCost
	auth.BcryptCost = bcrypt.MinCost
	t.Cleanup(func() { auth.BcryptCost = previous })

	users := newFakeUserStore()
	tokens := newFakeTokenStore()
	jwtService := auth.NewJWTService(auth.JWTConfig{
		SecretKey:       "test-secret",
		AccessTokenExp:  15 * time.Minute,
		RefreshTokenExp: time.Hour,
		TokenIssuer:     "swimdesk-test",
	})
	return NewAuthService(users, tokens, jwtService, testLogger), users, tokens, jwtService
}

func seedUser(t *testing.T, users *fakeUserStore, email, password string, role models.RoleType, active bool) *models.User {
	t.Helper()
	hash, err := auth.HashPassword(password)
	require.NoError(t, err)
	u := &models.User{Email: email, Password: hash, FirstName: "Desk", LastName: "User", RoleType: role, IsActive: active}
	require.NoError(t, users.Create(context.Background(), u))
	return u
}

func TestLogin(t *testing.T) {
	svc, users, tokens, jwtService := newAuthFixture(t)
	u := seedUser(t, users, "desk@swim.test", "changeme123", models.RoleStaff, true)
	seedUser(t, users, "gone@swim.test", "changeme123", models.RoleStaff, false)
	ctx := context.Background()

	resp, err := svc.Login(ctx, &dto.LoginRequest{Email: " Desk@Swim.test ", Password: "changeme123"})
	require.NoError(t, err)
	assert.Equal(t, "Bearer", resp.Token.TokenType)
	assert.Equal(t, u.ID, resp.User.ID)
	assert.Equal(t, "STAFF", resp.User.Role)
	assert.Contains(t, tokens.tokens, resp.Token.RefreshToken)
	assert.NotNil(t, users.users[u.ID].LastLoginAt)

	claims, err := jwtService.ValidateToken(resp.Token.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, u.ID, claims.UserID)

	_, err = svc.Login(ctx, &dto.LoginRequest{Email: "desk@swim.test", Password: "wrong-password"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)

	_, err = svc.Login(ctx, &dto.LoginRequest{Email: "nobody@swim.test", Password: "changeme123"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)

	_, err = svc.Login(ctx, &dto.LoginRequest{Email: "gone@swim.test", Password: "changeme123"})
	assert.ErrorIs(t, err, apperrors.ErrAccountDisabled)
}

func TestRefreshToken_Rotates(t *testing.T) {
	svc, users, tokens, _ := newAuthFixture(t)
	seedUser(t, users, "desk@swim.test", "changeme123", models.RoleAdmin, true)
	ctx := context.Background()

	login, err := svc.Login(ctx, &dto.LoginRequest{Email: "desk@swim.test", Password: "changeme123"})
	require.NoError(t, err)

	rotated, err := svc.RefreshToken(ctx, login.Token.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, login.Token.RefreshToken, rotated.RefreshToken)
	assert.True(t, tokens.tokens[login.Token.RefreshToken].revoked)

	_, err = svc.RefreshToken(ctx, login.Token.RefreshToken)
	assert.ErrorIs(t, err, apperrors.ErrTokenRevoked)

	_, err = svc.RefreshToken(ctx, "unknown")
	assert.ErrorIs(t, err, apperrors.ErrTokenNotFound)

	_, err = svc.RefreshToken(ctx, "  ")
	assert.ErrorIs(t, err, apperrors.ErrTokenInvalid)

	require.NoError(t, svc.Logout(ctx, rotated.RefreshToken))
	_, err = svc.RefreshToken(ctx, rotated.RefreshToken)
	assert.ErrorIs(t, err, apperrors.ErrTokenRevoked)
}

func TestCreateStaff(t *testing.T) {
	svc, users, _, _ := newAuthFixture(t)
	ctx := context.Background()

	created, err := svc.CreateStaff(ctx, &dto.CreateStaffRequest{
		Email:     "Coach@Swim.test",
		Password:  "longenough",
		FirstName: " Marta ",
		LastName:  "Kaya",
		RoleType:  models.RoleInstructor,
	})
	require.NoError(t, err)
	assert.Equal(t, "coach@swim.test", created.Email)
	assert.Equal(t, "Marta", created.FirstName)
	assert.True(t, auth.CheckPassword(users.users[created.ID].Password, "longenough"))

	_, err = svc.CreateStaff(ctx, &dto.CreateStaffRequest{Email: "coach@swim.test", Password: "longenough", RoleType: models.RoleStaff})
	assert.ErrorIs(t, err, apperrors.ErrEmailAlreadyExists)

	_, err = svc.CreateStaff(ctx, &dto.CreateStaffRequest{Email: "x@swim.test", Password: "short", RoleType: models.RoleStaff})
	assert.ErrorIs(t, err, apperrors.ErrBadRequest)

	_, err = svc.CreateStaff(ctx, &dto.CreateStaffRequest{Email: "y@swim.test", Password: "longenough", RoleType: "OWNER"})
	assert.ErrorIs(t, err, apperrors.ErrBadRequest)

	list, err := svc.ListStaff(ctx, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), list.Pagination.TotalItems)
}

func TestChangePassword_RevokesSessions(t *testing.T) {
	svc, users, tokens, _ := newAuthFixture(t)
	u := seedUser(t, users, "desk@swim.test", "changeme123", models.RoleStaff, true)
	ctx := context.Background()

	login, err := svc.Login(ctx, &dto.LoginRequest{Email: "desk@swim.test", Password: "changeme123"})
	require.NoError(t, err)

	err = svc.ChangePassword(ctx, u.ID, &dto.ChangePasswordRequest{CurrentPassword: "nope", NewPassword: "brandnew123"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)

	require.NoError(t, svc.ChangePassword(ctx, u.ID, &dto.ChangePasswordRequest{CurrentPassword: "changeme123", NewPassword: "brandnew123"}))
	assert.True(t, tokens.tokens[login.Token.RefreshToken].revoked)

	_, err = svc.Login(ctx, &dto.LoginRequest{Email: "desk@swim.test", Password: "brandnew123"})
	assert.NoError(t, err)

	profile, err := svc.GetProfile(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "desk@swim.test", profile.Email)
}
