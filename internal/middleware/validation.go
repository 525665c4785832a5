package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/yigit/swimdesk/internal/app/models/dto"
)

// BindJSON binds and validates a request body, writing a 400 response on failure.
// Rules come from the `binding` struct tags, including the custom ones registered with gin.
func BindJSON(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			c.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.HandleValidationError(err)))
			return false
		}

		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid request format").
			WithDetails(err.Error())
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return false
	}
	return true
}

// ValidateRequest binds the body into a fresh value from newObj and stores it as "validatedBody"
func ValidateRequest(newObj func() interface{}) gin.HandlerFunc {
	return func(c *gin.Context) {
		obj := newObj()
		if !BindJSON(c, obj) {
			c.Abort()
			return
		}
		c.Set("validatedBody", obj)
		c.Next()
	}
}
