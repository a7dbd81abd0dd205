package handler

import (
	"errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"lxtrip/holdbroker/internal/service"
	"lxtrip/holdbroker/pkg/response"
)

// writeServiceError maps domain errors to status codes. Anything unrecognised is
// logged in full and answered with a generic message.
func writeServiceError(c *gin.Context, logger *zap.Logger, err error, fallback string) {
	switch {
	case service.IsValidationError(err):
		response.BadRequest(c, err.Error())
	case errors.Is(err, service.ErrHoldNotFound):
		response.Gone(c, err.Error())
	case errors.Is(err, service.ErrInvalidHoldState):
		response.Conflict(c, err.Error())
	case errors.Is(err, service.ErrOfferSearchFailed):
		logger.Warn("offer search failed", zap.Error(err))
		response.BadGateway(c, "offer search unavailable")
	default:
		_ = c.Error(err)
		logger.Error(fallback, zap.Error(err), zap.String("path", c.FullPath()))
		response.InternalError(c, fallback)
	}
}
