package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/yigit/swimdesk/internal/app/models/dto"
	"github.com/yigit/swimdesk/internal/pkg/apperrors"
	"github.com/yigit/swimdesk/internal/pkg/logger"
)

// apiError is how one sentinel is reported to clients
type apiError struct {
	target  error
	status  int
	code    dto.ErrorCode
	message string
}

// errorTable is checked in order, so specific sentinels come before the generic ones
var errorTable = []apiError{
	// Enrollment rules
	{apperrors.ErrClassFull, http.StatusConflict, dto.ErrorCodeClassFull, "Class is full"},
	{apperrors.ErrAlreadyEnrolled, http.StatusConflict, dto.ErrorCodeAlreadyEnrolled, "Swimmer is already enrolled in this session"},
	{apperrors.ErrEnrollmentNotActive, http.StatusConflict, dto.ErrorCodeEnrollmentNotActive, "Enrollment is not active"},
	{apperrors.ErrSkipAlreadyRecorded, http.StatusConflict, dto.ErrorCodeSkipAlreadyRecorded, "Skip already recorded for this date"},
	{apperrors.ErrSameSession, http.StatusBadRequest, dto.ErrorCodeSameSession, "Target session must differ from the current session"},
	{apperrors.ErrAlreadyRefunded, http.StatusConflict, dto.ErrorCodeAlreadyRefunded, "Payment already refunded"},

	// Not found
	{apperrors.ErrUserNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound, "User not found"},
	{apperrors.ErrOfferingNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound, "Offering not found"},
	{apperrors.ErrSessionNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound, "Session not found"},
	{apperrors.ErrInstructorNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound, "Instructor not found"},
	{apperrors.ErrSwimmerNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound, "Swimmer not found"},
	{apperrors.ErrEnrollmentNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound, "Enrollment not found"},
	{apperrors.ErrPaymentNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound, "Payment not found"},
	{apperrors.ErrResourceNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound, "Resource not found"},

	// Conflicts
	{apperrors.ErrOfferingHasSession, http.StatusConflict, dto.ErrorCodeConflict, "Offering has scheduled sessions"},
	{apperrors.ErrHasRelations, http.StatusConflict, dto.ErrorCodeConflict, "Resource is still referenced"},
	{apperrors.ErrEmailAlreadyExists, http.StatusConflict, dto.ErrorCodeResourceAlreadyExists, "Email already exists"},
	{apperrors.ErrResourceAlreadyExists, http.StatusConflict, dto.ErrorCodeResourceAlreadyExists, "Resource already exists"},
	{apperrors.ErrConflict, http.StatusConflict, dto.ErrorCodeConflict, "Conflict"},

	// Authentication and authorization
	{apperrors.ErrInvalidCredentials, http.StatusUnauthorized, dto.ErrorCodeInvalidCredentials, "Invalid credentials"},
	{apperrors.ErrAccountDisabled, http.StatusForbidden, dto.ErrorCodeInactiveAccount, "Account is disabled"},
	{apperrors.ErrTokenExpired, http.StatusUnauthorized, dto.ErrorCodeExpiredToken, "Token expired"},
	{apperrors.ErrTokenInvalid, http.StatusUnauthorized, dto.ErrorCodeInvalidToken, "Invalid token"},
	{apperrors.ErrInvalidFormat, http.StatusUnauthorized, dto.ErrorCodeInvalidToken, "Invalid token format"},
	{apperrors.ErrTokenNotFound, http.StatusUnauthorized, dto.ErrorCodeTokenNotFound, "Token not found"},
	{apperrors.ErrTokenRevoked, http.StatusUnauthorized, dto.ErrorCodeInvalidToken, "Token revoked"},
	{apperrors.ErrPermissionDenied, http.StatusForbidden, dto.ErrorCodeForbidden, "Permission denied"},

	// Input
	{apperrors.ErrValidationFailed, http.StatusBadRequest, dto.ErrorCodeValidationFailed, "Validation failed"},
	{apperrors.ErrBadRequest, http.StatusBadRequest, dto.ErrorCodeValidationFailed, "Invalid request"},
}

// HandleAPIError maps an application error to its HTTP status and error envelope
func HandleAPIError(c *gin.Context, err error) {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.HandleValidationError(err)))
		return
	}

	for _, e := range errorTable {
		if !errors.Is(err, e.target) {
			continue
		}
		detail := dto.NewErrorDetail(e.code, e.message)
		var custom *apperrors.CustomError
		if errors.As(err, &custom) {
			detail = detail.WithDetails(custom.Error())
		}
		c.JSON(e.status, dto.NewErrorResponse(detail))
		return
	}

	logger.Error().Err(err).
		Str("method", c.Request.Method).
		Str("path", c.FullPath()).
		Msg("Unhandled error")
	detail := dto.NewErrorDetail(dto.ErrorCodeInternalServer, "Internal server error").
		WithSeverity(dto.ErrorSeverityCritical)
	c.JSON(http.StatusInternalServerError, dto.NewErrorResponse(detail))
}
