package controllers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/yigit/swimdesk/internal/app/models/dto"
	"github.com/yigit/swimdesk/internal/middleware"
	"github.com/yigit/swimdesk/internal/pkg/helpers"
)

// AuthUseCase is what the auth endpoints need from the service layer
type AuthUseCase interface {
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error)
	RefreshToken(ctx context.Context, refreshToken string) (*dto.TokenResponse, error)
	Logout(ctx context.Context, refreshToken string) error
	GetProfile(ctx context.Context, userID int64) (*dto.UserResponse, error)
	ChangePassword(ctx context.Context, userID int64, req *dto.ChangePasswordRequest) error
	CreateStaff(ctx context.Context, req *dto.CreateStaffRequest) (*dto.UserResponse, error)
	ListStaff(ctx context.Context, page, size int) (*dto.PaginatedResponse, error)
}

// AuthController handles authentication related operations
type AuthController struct {
	authService AuthUseCase
	logger      zerolog.Logger
}

// NewAuthController creates a new AuthController
func NewAuthController(authService AuthUseCase, logger zerolog.Logger) *AuthController {
	return &AuthController{
		authService: authService,
		logger:      logger,
	}
}

// Login handles user login
// @Summary User login
// @Description Authenticates a staff member and returns an access and refresh token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.LoginRequest true "Login credentials"
// @Success 200 {object} dto.APIResponse{data=dto.AuthResponse} "Login successful"
// @Failure 400 {object} dto.ErrorResponse "Invalid request format or validation error"
// @Failure 401 {object} dto.ErrorResponse "Invalid credentials"
// @Failure 403 {object} dto.ErrorResponse "Account disabled"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /auth/login [post]
func (c *AuthController) Login(ctx *gin.Context) {
	var req dto.LoginRequest
	if !middleware.BindJSON(ctx, &req) {
		c.logger.Warn().Msg("Invalid login request payload")
		return
	}

	authResponse, err := c.authService.Login(ctx.Request.Context(), &req)
	if err != nil {
		c.logger.Warn().Err(err).Str("email", req.Email).Msg("Login failed")
		middleware.HandleAPIError(ctx, err)
		return
	}

	c.logger.Info().
		Int64("userID", authResponse.User.ID).
		Msg("User logged in successfully")

	respond(ctx, http.StatusOK, "Login successful", authResponse)
}

// RefreshToken handles refresh token request
// @Summary Refresh access token
// @Description Rotates a refresh token and issues a new access token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.RefreshTokenRequest true "Refresh token"
// @Success 200 {object} dto.APIResponse{data=dto.TokenResponse} "Token refreshed successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid request format or validation error"
// @Failure 401 {object} dto.ErrorResponse "Invalid refresh token"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /auth/refresh [post]
func (c *AuthController) RefreshToken(ctx *gin.Context) {
	var req dto.RefreshTokenRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	tokenResponse, err := c.authService.RefreshToken(ctx.Request.Context(), req.RefreshToken)
	if err != nil {
		c.logger.Warn().Err(err).Msg("Refresh token failed")
		middleware.HandleAPIError(ctx, err)
		return
	}

	respond(ctx, http.StatusOK, "Token refreshed successfully", tokenResponse)
}

// Logout revokes a refresh token
// @Summary Logout
// @Description Revokes the given refresh token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.RefreshTokenRequest true "Refresh token"
// @Success 200 {object} dto.APIResponse "Logged out"
// @Failure 400 {object} dto.ErrorResponse "Invalid request format"
// @Failure 401 {object} dto.ErrorResponse "Invalid refresh token"
// @Router /auth/logout [post]
func (c *AuthController) Logout(ctx *gin.Context) {
	var req dto.RefreshTokenRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	if err := c.authService.Logout(ctx.Request.Context(), req.RefreshToken); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	respond(ctx, http.StatusOK, "Logged out", nil)
}

// GetProfile returns the authenticated user
// @Summary Current user
// @Description Returns the profile of the authenticated user
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.UserResponse} "Profile"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 404 {object} dto.ErrorResponse "User not found"
// @Router /auth/profile [get]
func (c *AuthController) GetProfile(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	profile, err := c.authService.GetProfile(ctx.Request.Context(), userID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	respond(ctx, http.StatusOK, "", profile)
}

// ChangePassword changes the authenticated user's password
// @Summary Change password
// @Description Changes the password and revokes every refresh token of the user
// @Tags auth
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.ChangePasswordRequest true "Current and new password"
// @Success 200 {object} dto.APIResponse "Password changed"
// @Failure 400 {object} dto.ErrorResponse "Invalid request format"
// @Failure 401 {object} dto.ErrorResponse "Current password is wrong"
// @Router /auth/password [put]
func (c *AuthController) ChangePassword(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	var req dto.ChangePasswordRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	if err := c.authService.ChangePassword(ctx.Request.Context(), userID, &req); err != nil {
		c.logger.Warn().Err(err).Int64("userID", userID).Msg("Password change failed")
		middleware.HandleAPIError(ctx, err)
		return
	}

	respond(ctx, http.StatusOK, "Password changed", nil)
}

// CreateStaff creates a user account
// @Summary Create staff account
// @Description Creates an admin, desk staff or instructor login
// @Tags staff
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateStaffRequest true "Account"
// @Success 201 {object} dto.APIResponse{data=dto.UserResponse} "Account created"
// @Failure 400 {object} dto.ErrorResponse "Invalid request format"
// @Failure 403 {object} dto.ErrorResponse "Admin only"
// @Failure 409 {object} dto.ErrorResponse "Email already exists"
// @Router /staff [post]
func (c *AuthController) CreateStaff(ctx *gin.Context) {
	var req dto.CreateStaffRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	user, err := c.authService.CreateStaff(ctx.Request.Context(), &req)
	if err != nil {
		c.logger.Warn().Err(err).Str("email", req.Email).Msg("Failed to create staff account")
		middleware.HandleAPIError(ctx, err)
		return
	}

	c.logger.Info().Int64("userID", user.ID).Str("role", user.Role).Msg("Staff account created")
	respond(ctx, http.StatusCreated, "Account created", user)
}

// ListStaff lists user accounts
// @Summary List staff accounts
// @Tags staff
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number" default(1)
// @Param size query int false "Page size" default(10)
// @Success 200 {object} dto.APIResponse{data=dto.PaginatedResponse} "Accounts"
// @Failure 403 {object} dto.ErrorResponse "Admin only"
// @Router /staff [get]
func (c *AuthController) ListStaff(ctx *gin.Context) {
	pg := helpers.PageFromQuery(ctx)

	users, err := c.authService.ListStaff(ctx.Request.Context(), pg.Number, pg.Size)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	respond(ctx, http.StatusOK, "", users)
}
