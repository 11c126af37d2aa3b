package payment

type SavePaymentMethodRequest struct {
	CardToken string `json:"card_token" binding:"required"`
}

type ConfigResponse struct {
	PublishableKey  string  `json:"publishable_key"`
	LeadPrice       float64 `json:"lead_price"`
	Currency        string  `json:"currency"`
	PaymentsEnabled bool    `json:"payments_enabled"`
}
