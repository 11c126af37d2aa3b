package payment

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"paintmarket/internal/modules/settings"
	"paintmarket/internal/pkg/response"
)

type Handler struct {
	service  *Service
	settings *settings.Service
	loggerf  func(format string, args ...interface{})
}

func NewHandler(service *Service, settingsSvc *settings.Service, loggerf func(format string, args ...interface{})) *Handler {
	if loggerf == nil {
		loggerf = func(string, ...interface{}) {}
	}
	return &Handler{service: service, settings: settingsSvc, loggerf: loggerf}
}

func (h *Handler) RegisterProtectedRoutes(rg *gin.RouterGroup) {
	rg.GET("/payment-methods", h.ListMethods)
	rg.POST("/payment-methods", h.SaveMethod)
	rg.DELETE("/payment-methods/:id", h.RemoveMethod)
	rg.GET("/payments/config", h.GetConfig)
}

func (h *Handler) RegisterPublicRoutes(rg *gin.RouterGroup) {
	rg.POST("/webhooks/payment", h.Webhook)
}

func (h *Handler) SaveMethod(c *gin.Context) {
	userID := c.GetInt64("user_id")

	var req SavePaymentMethodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	method, err := h.service.SavePaymentMethod(c.Request.Context(), userID, req.CardToken)
	if err != nil {
		if errors.Is(err, ErrPaymentFailed) {
			response.Error(c, http.StatusPaymentRequired, "PAYMENT_FAILED", err.Error())
			return
		}
		h.loggerf("level=error msg=save payment method failed user_id=%d err=%v", userID, err)
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Please try again")
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"payment_method": method})
}

func (h *Handler) ListMethods(c *gin.Context) {
	userID := c.GetInt64("user_id")
	methods, err := h.service.ListPaymentMethods(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Please try again")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"payment_methods": methods})
}

func (h *Handler) RemoveMethod(c *gin.Context) {
	userID := c.GetInt64("user_id")
	methodID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid payment method ID")
		return
	}

	if err := h.service.RemovePaymentMethod(c.Request.Context(), userID, methodID); err != nil {
		if errors.Is(err, ErrMethodNotFound) {
			response.Error(c, http.StatusNotFound, "NOT_FOUND", "Payment method not found")
			return
		}
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Please try again")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"removed": true})
}

func (h *Handler) GetConfig(c *gin.Context) {
	snap, err := h.settings.Load(c.Request.Context())
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Please try again")
		return
	}
	response.Success(c, http.StatusOK, ConfigResponse{
		PublishableKey:  h.service.PublishableKey(),
		LeadPrice:       snap.LeadPrice,
		Currency:        h.service.currency,
		PaymentsEnabled: snap.PaymentsEnabled,
	})
}

// Webhook receives provider-signed payment events. 200 is returned
// only after the event was processed (or recognized as a replay);
// anything else tells the provider to retry.
func (h *Handler) Webhook(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.String(http.StatusBadRequest, "bad request")
		return
	}
	signature := c.GetHeader("X-Payment-Signature")

	if err := h.service.HandleWebhookEvent(c.Request.Context(), body, signature); err != nil {
		h.loggerf("level=error msg=webhook processing failed err=%v", err)
		switch {
		case errors.Is(err, ErrInvalidSignature):
			c.String(http.StatusForbidden, "invalid signature")
		case errors.Is(err, ErrUnknownIntent):
			c.String(http.StatusNotFound, "unknown payment intent")
		default:
			c.String(http.StatusInternalServerError, "internal error")
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"received": true})
}
