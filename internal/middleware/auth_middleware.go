package middleware

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	appauth "github.com/yigit/swimdesk/internal/app/auth"
	"github.com/yigit/swimdesk/internal/app/models"
	"github.com/yigit/swimdesk/internal/app/models/dto"
	"github.com/yigit/swimdesk/internal/pkg/auth"
)

// Context keys set by JWTAuth
const (
	ContextUserID   = "userID"
	ContextEmail    = "email"
	ContextRoleType = "roleType"
)

// AuthMiddleware for authentication and authorization
type AuthMiddleware struct {
	jwtService *auth.JWTService
	authz      *appauth.AuthorizationService
}

// NewAuthMiddleware creates a new AuthMiddleware
func NewAuthMiddleware(jwtService *auth.JWTService, authz *appauth.AuthorizationService) *AuthMiddleware {
	return &AuthMiddleware{
		jwtService: jwtService,
		authz:      authz,
	}
}

func abortUnauthorized(c *gin.Context, code dto.ErrorCode, details string) {
	errorDetail := dto.NewErrorDetail(code, "Authentication required").
		WithDetails(details).
		WithSeverity(dto.ErrorSeverityError)
	c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse(errorDetail))
}

// JWTAuth middleware for JWT token validation.
// Browsers cannot set headers on websocket upgrades, so a raw token in ?token= is accepted too.
func (m *AuthMiddleware) JWTAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		var tokenString string

		if authHeader := c.GetHeader("Authorization"); authHeader != "" {
			token, err := auth.ExtractBearerToken(strings.Trim(authHeader, "\"'"))
			if err != nil {
				abortUnauthorized(c, dto.ErrorCodeInvalidToken, "Invalid token format")
				return
			}
			tokenString = token
		} else if queryToken := c.Query("token"); queryToken != "" {
			tokenString = queryToken
		}

		if tokenString == "" {
			abortUnauthorized(c, dto.ErrorCodeUnauthorized, "Authorization header missing")
			return
		}

		claims, err := m.jwtService.ValidateAndExtractClaims(tokenString)
		if err != nil {
			if errors.Is(err, auth.ErrExpiredToken) {
				abortUnauthorized(c, dto.ErrorCodeExpiredToken, "Token has expired")
				return
			}
			abortUnauthorized(c, dto.ErrorCodeInvalidToken, "Invalid token")
			return
		}

		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextEmail, claims.Email)
		c.Set(ContextRoleType, models.RoleType(claims.RoleType))

		c.Next()
	}
}

// ActiveUserRequired rejects tokens whose account has been disabled since they were issued
func (m *AuthMiddleware) ActiveUserRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := GetUserID(c)
		if !ok {
			abortUnauthorized(c, dto.ErrorCodeUnauthorized, "User information not found")
			return
		}

		if err := m.authz.ValidateActiveUser(c.Request.Context(), userID); err != nil {
			HandleAPIError(c, err)
			c.Abort()
			return
		}

		c.Next()
	}
}

// RoleRequired middleware to check that the user has one of the given roles
func (m *AuthMiddleware) RoleRequired(roles ...models.RoleType) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := GetRole(c)
		if !exists {
			abortUnauthorized(c, dto.ErrorCodeUnauthorized, "User role not found")
			return
		}

		for _, allowed := range roles {
			if role == allowed {
				c.Next()
				return
			}
		}

		errorDetail := dto.NewErrorDetail(dto.ErrorCodeForbidden, "Access denied").
			WithDetails("You don't have sufficient permissions for this operation").
			WithSeverity(dto.ErrorSeverityError)
		c.AbortWithStatusJSON(http.StatusForbidden, dto.NewErrorResponse(errorDetail))
	}
}

// SessionAccessRequired limits instructors to the sessions they teach. The session id is read from param.
func (m *AuthMiddleware) SessionAccessRequired(param string) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID, err := strconv.ParseInt(c.Param(param), 10, 64)
		if err != nil || sessionID <= 0 {
			// Let the handler report the malformed id
			c.Next()
			return
		}

		userID, _ := GetUserID(c)
		role, _ := GetRole(c)
		if err := m.authz.ValidateSessionAccess(c.Request.Context(), userID, role, sessionID); err != nil {
			HandleAPIError(c, err)
			c.Abort()
			return
		}

		c.Next()
	}
}

// GetUserID returns the authenticated user's id
func GetUserID(c *gin.Context) (int64, bool) {
	v, exists := c.Get(ContextUserID)
	if !exists {
		return 0, false
	}
	id, ok := v.(int64)
	return id, ok
}

// GetRole returns the authenticated user's role
func GetRole(c *gin.Context) (models.RoleType, bool) {
	v, exists := c.Get(ContextRoleType)
	if !exists {
		return "", false
	}
	role, ok := v.(models.RoleType)
	return role, ok
}
