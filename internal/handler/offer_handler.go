package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"lxtrip/holdbroker/internal/service"
	"lxtrip/holdbroker/pkg/response"
)

type OfferHandler struct {
	gateway service.OfferGateway
	logger  *zap.Logger
}

func NewOfferHandler(gateway service.OfferGateway, logger *zap.Logger) *OfferHandler {
	return &OfferHandler{gateway: gateway, logger: logger}
}

type SearchOffersQuery struct {
	Origin        string `form:"origin" binding:"required"`
	Destination   string `form:"destination" binding:"required"`
	DepartureDate string `form:"departureDate" binding:"required"`
	Adults        int    `form:"adults" binding:"omitempty,min=1,max=9"`
}

// Search proxies an offer search upstream.
func (h *OfferHandler) Search(c *gin.Context) {
	var q SearchOffersQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	offers, err := h.gateway.Search(c.Request.Context(), service.OfferQuery{
		Origin:        q.Origin,
		Destination:   q.Destination,
		DepartureDate: q.DepartureDate,
		Adults:        q.Adults,
	})
	if err != nil {
		writeServiceError(c, h.logger, err, "failed to search offers")
		return
	}

	response.Success(c, gin.H{"data": offers})
}
