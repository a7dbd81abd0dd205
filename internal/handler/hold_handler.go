package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"lxtrip/holdbroker/internal/handler/middleware"
	"lxtrip/holdbroker/internal/service"
	"lxtrip/holdbroker/pkg/response"
)

type HoldHandler struct {
	holdService service.HoldService
	logger      *zap.Logger
}

func NewHoldHandler(holdService service.HoldService, logger *zap.Logger) *HoldHandler {
	return &HoldHandler{holdService: holdService, logger: logger}
}

type CreateHoldRequest struct {
	OfferID       string   `json:"offerId" binding:"required"`
	SupplierPrice *float64 `json:"supplierPrice" binding:"required"`
	UserID        string   `json:"userId"`
}

type ConfirmHoldRequest struct {
	HoldID           string `json:"holdId" binding:"required"`
	PaymentReference string `json:"paymentReference" binding:"required"`
}

// Create places a hold on a quoted offer.
func (h *HoldHandler) Create(c *gin.Context) {
	var req CreateHoldRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: offerId and numeric supplierPrice are required")
		return
	}

	userID := req.UserID
	if userID == "" {
		userID = middleware.UserID(c)
	}

	result, err := h.holdService.Create(c.Request.Context(), service.CreateHoldInput{
		OfferID:       req.OfferID,
		UserID:        userID,
		SupplierPrice: *req.SupplierPrice,
	})
	if err != nil {
		writeServiceError(c, h.logger, err, "failed to create hold")
		return
	}

	response.Success(c, result)
}

// Confirm converts a pending hold into a booking after payment succeeded.
func (h *HoldHandler) Confirm(c *gin.Context) {
	var req ConfirmHoldRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: holdId and paymentReference are required")
		return
	}

	result, err := h.holdService.Confirm(c.Request.Context(), req.HoldID, req.PaymentReference)
	if err != nil {
		writeServiceError(c, h.logger, err, "failed to confirm hold")
		return
	}

	response.Success(c, result)
}
