package lead

import (
	"context"
	"time"

	"paintmarket/internal/domain"
	"paintmarket/internal/modules/payment"
)

type leadRepo interface {
	Create(ctx context.Context, l *domain.Lead) error
	GetByID(ctx context.Context, id int64) (*domain.Lead, error)
	ListOpen(ctx context.Context, limit, offset int) ([]domain.Lead, error)
	ListByCustomer(ctx context.Context, customerID int64) ([]domain.Lead, error)
	ReserveClaimSlot(ctx context.Context, leadID int64) (*domain.Lead, bool, error)
	ReleaseClaimSlot(ctx context.Context, leadID int64) error
	AssignPainter(ctx context.Context, leadID, painterID int64) (bool, error)
	Complete(ctx context.Context, leadID int64) (bool, error)
}

type claimRepo interface {
	Create(ctx context.Context, c *domain.LeadClaim) error
	GetByLeadAndPainter(ctx context.Context, leadID, painterID int64) (*domain.LeadClaim, error)
	HasSucceededClaim(ctx context.Context, leadID, painterID int64) (bool, error)
	RetryFailed(ctx context.Context, id int64, intentID string, amount float64, paymentNumber int) error
	MarkSucceededIdempotent(ctx context.Context, intentID, rawBody string, paidAt time.Time) (bool, error)
	ListByPainter(ctx context.Context, painterID int64) ([]domain.LeadClaim, error)
}

type userReader interface {
	GetByID(ctx context.Context, id int64) (*domain.User, error)
}

type chargeGateway interface {
	CreateCharge(ctx context.Context, painterID int64, amount float64, paymentMethodID int64, leadID int64) (*payment.ChargeResult, error)
}

type notifier interface {
	NotifyLeadClaimed(ctx context.Context, customerID, painterID, leadID int64)
	NotifyPaymentConfirmed(ctx context.Context, painterID, leadID int64)
	NotifyLeadAssigned(ctx context.Context, customerID, painterID, leadID int64)
	NotifyLeadCompleted(ctx context.Context, customerID, painterID, leadID int64)
}
