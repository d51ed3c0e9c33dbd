package helper

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"taskapp/internal/core/model/response"
)

// SendError writes the failure envelope used by every error path:
// {"status":"error","message":...,"errors":[...]}.
func SendError(c *gin.Context, statusCode int, message string, errors []response.ValidationError) {
	c.JSON(statusCode, response.ErrorResponse{
		Status:  "error",
		Message: message,
		Errors:  errors,
	})
}

func SendValidationError(c *gin.Context, errors []response.ValidationError) {
	SendError(c, http.StatusBadRequest, "Validation failed", errors)
}

func SendBadRequestError(c *gin.Context, field string, message string) {
	SendValidationError(c, []response.ValidationError{
		{
			Field:   field,
			Message: message,
		},
	})
}

func SendNotFoundError(c *gin.Context, message string) {
	SendError(c, http.StatusNotFound, message, nil)
}

func SendInternalError(c *gin.Context) {
	SendError(c, http.StatusInternalServerError, "Internal server error", nil)
}

func SendTooManyRequests(c *gin.Context) {
	SendError(c, http.StatusTooManyRequests, "Too many requests from this IP, please try again later.", nil)
}
