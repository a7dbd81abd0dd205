package handler

import (
	"errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"lxtrip/holdbroker/internal/service"
	"lxtrip/holdbroker/pkg/response"
)

type AdminHandler struct {
	holdService service.HoldService
	logger      *zap.Logger
}

func NewAdminHandler(holdService service.HoldService, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{holdService: holdService, logger: logger}
}

// GetHold returns the stored record of a pending hold.
func (h *AdminHandler) GetHold(c *gin.Context) {
	hold, err := h.holdService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrHoldNotFound) {
			response.NotFound(c, err.Error())
			return
		}
		writeServiceError(c, h.logger, err, "failed to load hold")
		return
	}

	response.Success(c, hold)
}
