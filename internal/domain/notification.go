package domain

import (
	"encoding/json"
	"time"
)

type NotificationType string

const (
	NotifBidSubmitted     NotificationType = "bid_submitted"
	NotifBidAccepted      NotificationType = "bid_accepted"
	NotifBidRejected      NotificationType = "bid_rejected"
	NotifLeadClaimed      NotificationType = "lead_claimed"
	NotifLeadAssigned     NotificationType = "lead_assigned"
	NotifLeadCompleted    NotificationType = "lead_completed"
	NotifPaymentConfirmed NotificationType = "payment_confirmed"
	NotifNewMessage       NotificationType = "new_message"
	NotifAdminAlert       NotificationType = "admin_alert"
)

type Notification struct {
	ID        int64            `json:"id" gorm:"primaryKey"`
	UserID    int64            `json:"user_id" gorm:"index:idx_notifications_user_unread"`
	Type      NotificationType `json:"type" gorm:"type:varchar(40)"`
	Title     string           `json:"title"`
	Message   string           `json:"message" gorm:"type:text"`
	Data      json.RawMessage  `json:"data,omitempty" gorm:"type:text"`
	IsRead    bool             `json:"is_read" gorm:"index:idx_notifications_user_unread"`
	ReadAt    *time.Time       `json:"read_at,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
}

func (Notification) TableName() string { return "notifications" }

func (n *Notification) MarkAsRead() {
	n.IsRead = true
	now := time.Now()
	n.ReadAt = &now
}
