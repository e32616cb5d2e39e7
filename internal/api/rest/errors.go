package rest

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	apierrors "github.com/quizmint/qm-engine/internal/api/shared/errors"
	"github.com/quizmint/qm-engine/internal/domain"
	"github.com/quizmint/qm-engine/internal/logger"
)

// respondBadRequest responds with a bad request error
func respondBadRequest(c *gin.Context, message string, details ...string) {
	c.JSON(http.StatusBadRequest, apierrors.NewBadRequestError(message, details...))
}

// respondNotFound responds with a not found error
func respondNotFound(c *gin.Context, message string, details ...string) {
	c.JSON(http.StatusNotFound, apierrors.NewNotFoundError(message, details...))
}

// respondValidationError responds with a validation error
func respondValidationError(c *gin.Context, message string) {
	c.JSON(http.StatusUnprocessableEntity, apierrors.NewValidationError(message))
}

// respondInternalError responds with an internal server error and logs it
func respondInternalError(c *gin.Context, err error, message string, fields ...zap.Field) {
	logger.Error(err, fields...)
	c.JSON(http.StatusInternalServerError, apierrors.NewInternalError(message))
}

// respondDomainError maps a domain sentinel to its HTTP shape. Unknown
// errors fall through to a logged 500.
func respondDomainError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrSessionNotFound),
		errors.Is(err, domain.ErrEligibilityNotFound):
		respondNotFound(c, err.Error())
	case errors.Is(err, domain.ErrAlreadyActive),
		errors.Is(err, domain.ErrSessionFinalized),
		errors.Is(err, domain.ErrEligibilityUsed),
		errors.Is(err, domain.ErrForgeNotReady),
		errors.Is(err, domain.ErrSeasonClosed),
		errors.Is(err, domain.ErrNoStockAvailable):
		c.JSON(http.StatusConflict, apierrors.NewConflictError(err.Error()))
	case errors.Is(err, domain.ErrEligibilityExpired):
		c.JSON(http.StatusGone, apierrors.NewGoneError(err.Error()))
	case errors.Is(err, domain.ErrDailyLimitReached),
		errors.Is(err, domain.ErrOnCooldown),
		errors.Is(err, domain.ErrThrottled):
		c.JSON(http.StatusTooManyRequests, apierrors.NewTooManyRequestsError(err.Error()))
	case errors.Is(err, domain.ErrBadQuestionIndex):
		respondValidationError(c, err.Error())
	default:
		respondInternalError(c, err, "Request failed")
	}
}
