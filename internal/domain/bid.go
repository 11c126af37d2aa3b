package domain

import "time"

type BidStatus string

const (
	BidPending   BidStatus = "pending"
	BidAccepted  BidStatus = "accepted"
	BidRejected  BidStatus = "rejected"
	BidWithdrawn BidStatus = "withdrawn"
)

// Bid is a painter's priced proposal on a claimed lead.
// pending -> accepted (terminal), pending -> rejected -> pending (resubmit),
// pending -> withdrawn (terminal).
type Bid struct {
	ID        int64     `json:"id" gorm:"primaryKey"`
	LeadID    int64     `json:"lead_id" gorm:"index:idx_bids_lead_painter;not null"`
	PainterID int64     `json:"painter_id" gorm:"index:idx_bids_lead_painter;not null"`
	Amount    float64   `json:"amount" validate:"required,gt=0"`
	Message   string    `json:"message" gorm:"type:text"`
	Timeline  string    `json:"timeline"`
	Status    BidStatus `json:"status" gorm:"type:varchar(20);default:'pending';index"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Bid) TableName() string { return "bids" }

func (b *Bid) IsActive() bool { return b.Status != BidWithdrawn }

// CanResubmit reports whether the bid may be re-offered with a new amount.
func (b *Bid) CanResubmit() bool {
	return b.Status == BidPending || b.Status == BidRejected
}
