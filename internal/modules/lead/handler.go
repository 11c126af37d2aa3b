package lead

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"paintmarket/internal/domain"
	"paintmarket/internal/modules/payment"
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

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, customerOnly, painterOnly gin.HandlerFunc) {
	rg.GET("/leads", h.ListOpen)
	rg.GET("/leads/:id", h.Get)
	rg.POST("/leads", customerOnly, h.Create)
	rg.GET("/leads/my", customerOnly, h.ListMine)
	rg.POST("/leads/:id/complete", h.Complete)

	rg.POST("/leads/:id/claim", painterOnly, h.Claim)
	rg.GET("/leads/:id/access", painterOnly, h.Access)
	rg.GET("/leads/claimed", painterOnly, h.ListClaimed)
}

func (h *Handler) Create(c *gin.Context) {
	customerID := c.GetInt64("user_id")

	var req CreateLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	snap, err := h.settings.Load(c.Request.Context())
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Please try again")
		return
	}

	l, err := h.service.CreateLead(c.Request.Context(), customerID, req, snap)
	if err != nil {
		if errors.Is(err, ErrValidation) {
			response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
			return
		}
		h.loggerf("level=error msg=create lead failed customer_id=%d err=%v", customerID, err)
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Please try again")
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"lead": fullView(l)})
}

func (h *Handler) ListOpen(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	leads, err := h.service.ListOpenLeads(c.Request.Context(), limit, offset)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Please try again")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"leads": leads})
}

func (h *Handler) ListMine(c *gin.Context) {
	customerID := c.GetInt64("user_id")
	leads, err := h.service.ListCustomerLeads(c.Request.Context(), customerID)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Please try again")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"leads": leads})
}

func (h *Handler) Get(c *gin.Context) {
	leadID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid lead ID")
		return
	}

	userID := c.GetInt64("user_id")
	role := domain.UserRole(c.GetString("role"))

	view, err := h.service.GetLead(c.Request.Context(), userID, role, leadID)
	if err != nil {
		if errors.Is(err, ErrLeadNotFound) {
			response.Error(c, http.StatusNotFound, "NOT_FOUND", "Lead not found")
			return
		}
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Please try again")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"lead": view})
}

func (h *Handler) Claim(c *gin.Context) {
	painterID := c.GetInt64("user_id")
	leadID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid lead ID")
		return
	}

	var req ClaimLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "payment_method_id is required")
		return
	}

	snap, err := h.settings.Load(c.Request.Context())
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Please try again")
		return
	}

	result, err := h.service.ClaimLead(c.Request.Context(), painterID, leadID, req.PaymentMethodID, snap)
	if err != nil {
		h.writeClaimError(c, painterID, leadID, err)
		return
	}
	response.Success(c, http.StatusCreated, result)
}

func (h *Handler) writeClaimError(c *gin.Context, painterID, leadID int64, err error) {
	switch {
	case errors.Is(err, ErrLeadNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "Lead not found")
	case errors.Is(err, ErrLeadNotOpen):
		response.Error(c, http.StatusConflict, "LEAD_NOT_OPEN", "This lead is no longer open")
	case errors.Is(err, ErrPaymentCapReached):
		response.Error(c, http.StatusConflict, "PAYMENT_CAP_REACHED", "This lead has reached its maximum number of claims")
	case errors.Is(err, ErrAlreadyClaimed):
		response.Error(c, http.StatusConflict, "ALREADY_CLAIMED", "You have already claimed this lead")
	case errors.Is(err, ErrPainterNotActive):
		response.Error(c, http.StatusForbidden, "PAINTER_NOT_ACTIVE", "Your account must be approved before claiming leads")
	case errors.Is(err, ErrPaymentsDisabled):
		response.Error(c, http.StatusServiceUnavailable, "PAYMENTS_DISABLED", "Payments are temporarily disabled")
	case errors.Is(err, payment.ErrMethodNotFound):
		response.Error(c, http.StatusNotFound, "METHOD_NOT_FOUND", "Payment method not found")
	case errors.Is(err, payment.ErrPaymentFailed):
		response.Error(c, http.StatusPaymentRequired, "PAYMENT_FAILED", err.Error())
	case errors.Is(err, ErrReconcileRequired):
		h.loggerf("level=error msg=claim requires reconciliation painter_id=%d lead_id=%d err=%v", painterID, leadID, err)
		response.Error(c, http.StatusInternalServerError, "RECONCILE_REQUIRED", "Your payment was taken but could not be confirmed; support has been notified")
	default:
		h.loggerf("level=error msg=claim failed painter_id=%d lead_id=%d err=%v", painterID, leadID, err)
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Please try again")
	}
}

func (h *Handler) Access(c *gin.Context) {
	painterID := c.GetInt64("user_id")
	leadID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid lead ID")
		return
	}

	has, err := h.service.HasAccess(c.Request.Context(), painterID, leadID)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Please try again")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"has_access": has})
}

func (h *Handler) ListClaimed(c *gin.Context) {
	painterID := c.GetInt64("user_id")
	claimed, err := h.service.ListClaimedLeads(c.Request.Context(), painterID)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Please try again")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"claimed_leads": claimed})
}

func (h *Handler) Complete(c *gin.Context) {
	userID := c.GetInt64("user_id")
	role := domain.UserRole(c.GetString("role"))
	leadID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid lead ID")
		return
	}

	if err := h.service.CompleteLead(c.Request.Context(), userID, role, leadID); err != nil {
		switch {
		case errors.Is(err, ErrLeadNotFound):
			response.Error(c, http.StatusNotFound, "NOT_FOUND", "Lead not found")
		case errors.Is(err, ErrNotOwner):
			response.Error(c, http.StatusForbidden, "FORBIDDEN", "Only the lead owner can complete it")
		case errors.Is(err, ErrInvalidTransition):
			response.Error(c, http.StatusConflict, "INVALID_TRANSITION", "Only an assigned lead can be completed")
		default:
			response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Please try again")
		}
		return
	}
	response.Success(c, http.StatusOK, gin.H{"completed": true})
}
