package dto

import (
	"time"

	"github.com/yigit/swimdesk/internal/app/models"
)

// LoginRequest represents login credentials
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email" example:"desk@swimschool.test"`
	Password string `json:"password" binding:"required" example:"changeme123"`
}

// TokenResponse represents JWT token information
type TokenResponse struct {
	AccessToken           string `json:"accessToken"`
	TokenType             string `json:"tokenType" example:"Bearer"`
	ExpiresIn             int64  `json:"expiresIn"`
	RefreshToken          string `json:"refreshToken,omitempty"`
	RefreshTokenExpiresIn int64  `json:"refreshTokenExpiresIn,omitempty"`
}

// RefreshTokenRequest represents refresh token request
type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

// CreateStaffRequest is used by admins to create a staff account
type CreateStaffRequest struct {
	Email     string          `json:"email" binding:"required,email"`
	Password  string          `json:"password" binding:"required,min=8"`
	FirstName string          `json:"firstName" binding:"required,min=1,max=100"`
	LastName  string          `json:"lastName" binding:"required,min=1,max=100"`
	RoleType  models.RoleType `json:"roleType" binding:"required,oneof=ADMIN STAFF INSTRUCTOR" example:"STAFF"`
}

// ChangePasswordRequest represents a password change request
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required,min=8"`
}

// UserResponse represents basic user information
type UserResponse struct {
	ID          int64      `json:"id" example:"1"`
	Email       string     `json:"email" example:"desk@swimschool.test"`
	FirstName   string     `json:"firstName" example:"Jane"`
	LastName    string     `json:"lastName" example:"Doe"`
	Role        string     `json:"role" example:"STAFF" enums:"ADMIN,STAFF,INSTRUCTOR"`
	IsActive    bool       `json:"isActive"`
	LastLoginAt *time.Time `json:"lastLoginAt,omitempty"`
}

// AuthResponse represents successful authentication response
type AuthResponse struct {
	Token TokenResponse `json:"token"`
	User  *UserResponse `json:"user"`
}

// NewUserResponse maps a user model, never exposing the password hash
func NewUserResponse(u *models.User) *UserResponse {
	if u == nil {
		return nil
	}
	return &UserResponse{
		ID:          u.ID,
		Email:       u.Email,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		Role:        string(u.RoleType),
		IsActive:    u.IsActive,
		LastLoginAt: u.LastLoginAt,
	}
}
