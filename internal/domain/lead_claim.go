package domain

import "time"

type ClaimPaymentStatus string

const (
	ClaimPaymentPending   ClaimPaymentStatus = "pending"
	ClaimPaymentSucceeded ClaimPaymentStatus = "succeeded"
	ClaimPaymentFailed    ClaimPaymentStatus = "failed"
)

// LeadClaim links a painter to a lead through a payment. One row per
// (lead, painter): a failed claim is retried in place, so the unique
// index doubles as the "at most one non-failed claim" guard.
type LeadClaim struct {
	ID              int64              `json:"id" gorm:"primaryKey"`
	LeadID          int64              `json:"lead_id" gorm:"uniqueIndex:idx_one_claim_per_painter;not null"`
	PainterID       int64              `json:"painter_id" gorm:"uniqueIndex:idx_one_claim_per_painter;not null"`
	Amount          float64            `json:"amount"`
	PaymentIntentID string             `json:"payment_intent_id" gorm:"type:varchar(64);uniqueIndex"`
	PaymentStatus   ClaimPaymentStatus `json:"payment_status" gorm:"type:varchar(20);default:'pending';index"`
	PaymentNumber   int                `json:"payment_number"`
	FailureReason   string             `json:"failure_reason,omitempty" gorm:"type:text"`
	EventRawBody    string             `json:"-" gorm:"type:text"`
	PaidAt          *time.Time         `json:"paid_at,omitempty"`
	CreatedAt       time.Time          `json:"created_at"`
	UpdatedAt       time.Time          `json:"updated_at"`
}

func (LeadClaim) TableName() string { return "lead_claims" }

// GrantsAccess reports whether this claim gives the painter access to
// the lead's full details.
func (c *LeadClaim) GrantsAccess() bool {
	return c.PaymentStatus == ClaimPaymentSucceeded
}
