package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pageza/vinoteca/backend/internal/logger"
	"github.com/pageza/vinoteca/backend/internal/service"
	"go.uber.org/zap"
)

// respondError maps service errors to a status and a {"error": ...} body. Unexpected
// errors are logged and reported without detail.
func respondError(c *gin.Context, err error, fallback string) {
	status := http.StatusInternalServerError
	msg := fallback

	switch {
	case errors.Is(err, service.ErrInvalidFilter):
		status, msg = http.StatusBadRequest, err.Error()
	case errors.Is(err, service.ErrWineNotFound),
		errors.Is(err, service.ErrVineyardNotFound),
		errors.Is(err, service.ErrUserNotFound),
		errors.Is(err, service.ErrCellarEntryNotFound):
		status, msg = http.StatusNotFound, err.Error()
	case errors.Is(err, service.ErrCellarEntryExists):
		status, msg = http.StatusConflict, err.Error()
	default:
		logger.FromContext(c.Request.Context()).Error(fallback, zap.Error(err))
	}

	c.JSON(status, gin.H{"error": msg})
}
