package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"lingo-server/internal/models"
)

func handleServiceError(c *gin.Context, err error) {
	var statusCode int
	var message string

	switch {
	case errors.Is(err, models.ErrPlayNotFound):
		statusCode = http.StatusNotFound
		message = "Play episode not found"
	case errors.Is(err, models.ErrEpisodeNotFound):
		statusCode = http.StatusNotFound
		message = "Episode not found"
	case errors.Is(err, models.ErrDialogueNotFound):
		statusCode = http.StatusNotFound
		message = "Dialogue not found"
	case errors.Is(err, models.ErrNotFound):
		statusCode = http.StatusNotFound
		message = "Resource not found"
	case errors.Is(err, models.ErrNotYourPlay), errors.Is(err, models.ErrForbidden):
		statusCode = http.StatusForbidden
		message = "Access to this play episode is forbidden"
	case errors.Is(err, models.ErrPlayNotActive):
		statusCode = http.StatusForbidden
		message = "Play episode is not active"
	case errors.Is(err, models.ErrEmptyUserInput):
		statusCode = http.StatusBadRequest
		message = "User input must not be empty"
	case errors.Is(err, models.ErrActiveSlotExists):
		statusCode = http.StatusBadRequest
		message = "Another slot is already being generated for this play"
	case errors.Is(err, models.ErrAIInvalidJSON), errors.Is(err, models.ErrAIInvalidShape):
		statusCode = http.StatusBadRequest
		message = "AI response was rejected, please retry"
	case errors.Is(err, models.ErrResultNotReady):
		statusCode = http.StatusBadRequest
		message = "Play episode is not completed yet"
	case errors.Is(err, models.ErrInvalidCursor):
		statusCode = http.StatusBadRequest
		message = "Invalid pagination cursor"
	case errors.Is(err, models.ErrInvalidInput), errors.Is(err, models.ErrBadRequest):
		statusCode = http.StatusBadRequest
		message = err.Error()
	case errors.Is(err, models.ErrTokenInvalid), errors.Is(err, models.ErrTokenMalformed), errors.Is(err, models.ErrTokenExpired):
		statusCode = http.StatusUnauthorized
		message = "Token is invalid or expired"
	default:
		zap.L().Error("Unhandled internal error in handleServiceError", zap.Error(err))
		statusCode = http.StatusInternalServerError
		message = "An unexpected internal error occurred"
	}

	c.AbortWithStatusJSON(statusCode, models.ErrorResponse{Error: message})
}
