package domain

import "time"

type LeadStatus string

const (
	LeadOpen     LeadStatus = "open"
	LeadAssigned LeadStatus = "assigned"
	LeadClosed   LeadStatus = "closed"
)

// Lead is a customer-submitted painting job. Status only ever moves
// open -> assigned -> closed. PaymentActive is flipped off once
// PaymentCount reaches MaxPayments; the lead stays open so existing
// claimants can still bid.
type Lead struct {
	ID                int64      `json:"id" gorm:"primaryKey"`
	CustomerID        int64      `json:"customer_id" gorm:"index;not null"`
	CustomerName      string     `json:"customer_name,omitempty"`
	CustomerEmail     string     `json:"customer_email,omitempty"`
	CustomerPhone     string     `json:"customer_phone,omitempty"`
	Title             string     `json:"title" validate:"required"`
	Description       string     `json:"description" gorm:"type:text"`
	Location          string     `json:"location"`
	Status            LeadStatus `json:"status" gorm:"type:varchar(20);default:'open';index"`
	AssignedPainterID *int64     `json:"assigned_painter_id,omitempty"`
	Price             float64    `json:"price"`
	PaymentCount      int        `json:"payment_count"`
	MaxPayments       int        `json:"max_payments"`
	PaymentActive     bool       `json:"payment_active" gorm:"default:true"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

func (Lead) TableName() string { return "leads" }

func (l *Lead) IsOpen() bool { return l.Status == LeadOpen }

// AcceptsClaims reports whether a new paid claim may be taken on this lead.
func (l *Lead) AcceptsClaims() bool {
	return l.Status == LeadOpen && l.PaymentActive && l.PaymentCount < l.MaxPayments
}
