package lead

import (
	"strings"
	"time"

	"paintmarket/internal/domain"
)

type CreateLeadRequest struct {
	Title         string `json:"title" binding:"required,min=3,max=200"`
	Description   string `json:"description" binding:"required,min=10"`
	Location      string `json:"location" binding:"required"`
	CustomerName  string `json:"customer_name" binding:"required"`
	CustomerEmail string `json:"customer_email" binding:"required,email"`
	CustomerPhone string `json:"customer_phone" binding:"omitempty,min=7,max=20"`
}

type ClaimLeadRequest struct {
	PaymentMethodID int64 `json:"payment_method_id" binding:"required"`
}

// LeadView is the public projection of a lead. Contact details are
// only filled in for the owning customer, admins and painters whose
// claim payment succeeded.
type LeadView struct {
	ID                int64             `json:"id"`
	Title             string            `json:"title"`
	Description       string            `json:"description"`
	Location          string            `json:"location"`
	Status            domain.LeadStatus `json:"status"`
	Price             float64           `json:"price"`
	PaymentCount      int               `json:"payment_count"`
	MaxPayments       int               `json:"max_payments"`
	ClaimableNow      bool              `json:"claimable_now"`
	AssignedPainterID *int64            `json:"assigned_painter_id,omitempty"`
	CreatedAt         time.Time         `json:"created_at"`

	CustomerName  string `json:"customer_name,omitempty"`
	CustomerEmail string `json:"customer_email,omitempty"`
	CustomerPhone string `json:"customer_phone,omitempty"`
}

func maskedView(l *domain.Lead) LeadView {
	return LeadView{
		ID:                l.ID,
		Title:             l.Title,
		Description:       l.Description,
		Location:          generalizeLocation(l.Location),
		Status:            l.Status,
		Price:             l.Price,
		PaymentCount:      l.PaymentCount,
		MaxPayments:       l.MaxPayments,
		ClaimableNow:      l.AcceptsClaims(),
		AssignedPainterID: l.AssignedPainterID,
		CreatedAt:         l.CreatedAt,
	}
}

func fullView(l *domain.Lead) LeadView {
	v := maskedView(l)
	v.Location = l.Location
	v.CustomerName = l.CustomerName
	v.CustomerEmail = l.CustomerEmail
	v.CustomerPhone = l.CustomerPhone
	return v
}

// generalizeLocation keeps only the coarsest part of the address so an
// unclaimed listing still tells painters the area without giving away
// the customer's street.
func generalizeLocation(loc string) string {
	if i := strings.LastIndexByte(loc, ','); i >= 0 {
		return strings.TrimSpace(loc[i+1:])
	}
	return loc
}

type ClaimResult struct {
	Claim     *domain.LeadClaim `json:"claim"`
	HasAccess bool              `json:"has_access"`
}

type ClaimedLead struct {
	Lead  LeadView         `json:"lead"`
	Claim domain.LeadClaim `json:"claim"`
}
