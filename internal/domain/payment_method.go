package domain

import "time"

// PaymentMethod is a vaulted card reference held by the payment
// provider; only the provider token and display fields are stored.
type PaymentMethod struct {
	ID          int64     `json:"id" gorm:"primaryKey"`
	UserID      int64     `json:"user_id" gorm:"index;not null"`
	ProviderRef string    `json:"provider_ref" gorm:"type:varchar(64);uniqueIndex;not null"`
	Brand       string    `json:"brand,omitempty" gorm:"type:varchar(20)"`
	Last4       string    `json:"last4,omitempty" gorm:"type:varchar(4)"`
	IsDefault   bool      `json:"is_default"`
	CreatedAt   time.Time `json:"created_at"`
}

func (PaymentMethod) TableName() string { return "payment_methods" }
