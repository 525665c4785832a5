// Package controllers handles HTTP request handling
package controllers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yigit/swimdesk/internal/app/models/dto"
	"github.com/yigit/swimdesk/internal/middleware"
	"github.com/yigit/swimdesk/internal/pkg/helpers"
)

// parseIDParam reads a positive int64 path parameter, writing a 400 when it is malformed
func parseIDParam(ctx *gin.Context, name, label string) (int64, bool) {
	id, err := strconv.ParseInt(ctx.Param(name), 10, 64)
	if err != nil || id <= 0 {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid "+label+" ID")
		errorDetail = errorDetail.WithDetails("ID must be a positive number")
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return 0, false
	}
	return id, true
}

// parseOptionalIDQuery reads an optional positive int64 query parameter
func parseOptionalIDQuery(ctx *gin.Context, name string) (*int64, bool) {
	raw := ctx.Query(name)
	if raw == "" {
		return nil, true
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid query parameter").
			WithField(name).
			WithDetails(name + " must be a positive number")
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return nil, false
	}
	return &id, true
}

// parseDateRangeQuery reads the from/to calendar dates of a list endpoint
func parseDateRangeQuery(ctx *gin.Context) (from, to *time.Time, ok bool) {
	start, end, err := helpers.ParseDateRange(ctx.Query("from"), ctx.Query("to"))
	if err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid date range").
			WithDetails(err.Error())
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return nil, nil, false
	}
	return start, end, true
}

// currentUserID returns the authenticated user's id, writing a 401 if it is missing
func currentUserID(ctx *gin.Context) (int64, bool) {
	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "User not authenticated")
		ctx.JSON(http.StatusUnauthorized, dto.NewErrorResponse(errorDetail))
		return 0, false
	}
	return userID, true
}

func respond(ctx *gin.Context, status int, message string, data interface{}) {
	resp := dto.NewAPIResponse(data)
	resp.Message = message
	ctx.JSON(status, resp)
}
