package bid

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"paintmarket/internal/domain"
	"paintmarket/internal/modules/lead"
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
	rg.POST("/leads/:id/bids", painterOnly, h.Submit)
	rg.GET("/leads/:id/bids", h.ListForLead)
	rg.GET("/bids/my", painterOnly, h.ListMine)
	rg.POST("/bids/:id/withdraw", painterOnly, h.Withdraw)
	rg.POST("/bids/:id/resubmit", painterOnly, h.Resubmit)
	rg.POST("/bids/:id/accept", customerOnly, h.Accept)
	rg.POST("/bids/:id/reject", customerOnly, h.Reject)
}

func (h *Handler) Submit(c *gin.Context) {
	painterID := c.GetInt64("user_id")
	leadID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid lead ID")
		return
	}

	var req SubmitBidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	snap, err := h.settings.Load(c.Request.Context())
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Please try again")
		return
	}

	b, err := h.service.SubmitBid(c.Request.Context(), painterID, leadID, req, snap)
	if err != nil {
		h.writeBidError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"bid": b})
}

func (h *Handler) ListForLead(c *gin.Context) {
	userID := c.GetInt64("user_id")
	role := domain.UserRole(c.GetString("role"))
	leadID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid lead ID")
		return
	}

	bids, err := h.service.ListBidsForLead(c.Request.Context(), userID, role, leadID)
	if err != nil {
		h.writeBidError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"bids": bids})
}

func (h *Handler) ListMine(c *gin.Context) {
	painterID := c.GetInt64("user_id")
	bids, err := h.service.ListMyBids(c.Request.Context(), painterID)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Please try again")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"bids": bids})
}

func (h *Handler) Withdraw(c *gin.Context) {
	painterID := c.GetInt64("user_id")
	bidID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid bid ID")
		return
	}

	if err := h.service.WithdrawBid(c.Request.Context(), painterID, bidID); err != nil {
		h.writeBidError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"withdrawn": true})
}

func (h *Handler) Resubmit(c *gin.Context) {
	painterID := c.GetInt64("user_id")
	bidID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid bid ID")
		return
	}

	var req ResubmitBidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	snap, err := h.settings.Load(c.Request.Context())
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Please try again")
		return
	}

	b, err := h.service.ResubmitBid(c.Request.Context(), painterID, bidID, req.Amount, snap)
	if err != nil {
		h.writeBidError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"bid": b})
}

func (h *Handler) Accept(c *gin.Context) {
	customerID := c.GetInt64("user_id")
	bidID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid bid ID")
		return
	}

	if err := h.service.AcceptBid(c.Request.Context(), customerID, bidID); err != nil {
		h.writeBidError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"accepted": true})
}

func (h *Handler) Reject(c *gin.Context) {
	customerID := c.GetInt64("user_id")
	bidID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid bid ID")
		return
	}

	if err := h.service.RejectBid(c.Request.Context(), customerID, bidID); err != nil {
		h.writeBidError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"rejected": true})
}

func (h *Handler) writeBidError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrValidation):
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
	case errors.Is(err, ErrBidNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "Bid not found")
	case errors.Is(err, ErrLeadNotFound), errors.Is(err, lead.ErrLeadNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "Lead not found")
	case errors.Is(err, ErrLeadNotOpen):
		response.Error(c, http.StatusConflict, "LEAD_NOT_OPEN", "This lead is no longer open")
	case errors.Is(err, ErrNoLeadAccess):
		response.Error(c, http.StatusForbidden, "NO_LEAD_ACCESS", "Purchase lead access before bidding")
	case errors.Is(err, ErrDuplicateBid):
		response.Error(c, http.StatusConflict, "DUPLICATE_BID", "You already have an active bid on this lead")
	case errors.Is(err, ErrNotBidOwner):
		response.Error(c, http.StatusForbidden, "FORBIDDEN", "This bid belongs to another painter")
	case errors.Is(err, ErrNotLeadOwner), errors.Is(err, lead.ErrNotOwner):
		response.Error(c, http.StatusForbidden, "FORBIDDEN", "This lead belongs to another customer")
	case errors.Is(err, ErrNotPending):
		response.Error(c, http.StatusConflict, "NOT_PENDING", "The bid is not in a pending state")
	case errors.Is(err, ErrCannotResubmit):
		response.Error(c, http.StatusConflict, "CANNOT_RESUBMIT", "Only pending or rejected bids can be resubmitted")
	case errors.Is(err, lead.ErrInvalidTransition):
		response.Error(c, http.StatusConflict, "INVALID_TRANSITION", "The lead can no longer be assigned")
	default:
		h.loggerf("level=error msg=bid operation failed err=%v", err)
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Please try again")
	}
}
