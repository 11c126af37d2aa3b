package domain

import "time"

// Message is one entry in the lead-scoped thread between the customer
// and the assigned painter.
type Message struct {
	ID        int64     `json:"id" gorm:"primaryKey"`
	LeadID    int64     `json:"lead_id" gorm:"index;not null"`
	SenderID  int64     `json:"sender_id" gorm:"index;not null"`
	Body      string    `json:"body" gorm:"type:text;not null"`
	CreatedAt time.Time `json:"created_at"`
}

func (Message) TableName() string { return "messages" }
