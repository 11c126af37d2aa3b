package payment

import (
	"context"
	"time"

	"paintmarket/internal/domain"
)

type chargeClient interface {
	CreateCharge(ctx context.Context, req ChargeRequest) (*Charge, error)
	CreatePaymentMethod(ctx context.Context, cardToken, customerRef string) (*ProviderMethod, error)
	DeletePaymentMethod(ctx context.Context, providerRef string) error
}

type claimRepo interface {
	GetByIntentID(ctx context.Context, intentID string) (*domain.LeadClaim, error)
	MarkSucceededIdempotent(ctx context.Context, intentID, rawBody string, paidAt time.Time) (bool, error)
	MarkFailed(ctx context.Context, intentID, rawBody, reason string) (bool, error)
}

type leadSlotReleaser interface {
	ReleaseClaimSlot(ctx context.Context, leadID int64) error
}

type methodRepo interface {
	Create(ctx context.Context, pm *domain.PaymentMethod) error
	GetByID(ctx context.Context, id int64) (*domain.PaymentMethod, error)
	ListByUser(ctx context.Context, userID int64) ([]domain.PaymentMethod, error)
	DeleteOwned(ctx context.Context, id, userID int64) (bool, error)
}

type notifier interface {
	NotifyPaymentConfirmed(ctx context.Context, painterID, leadID int64)
}
