package bid

import (
	"context"

	"paintmarket/internal/domain"
)

type bidRepo interface {
	Create(ctx context.Context, b *domain.Bid) error
	GetByID(ctx context.Context, id int64) (*domain.Bid, error)
	GetActiveByLeadAndPainter(ctx context.Context, leadID, painterID int64) (*domain.Bid, error)
	ListByLead(ctx context.Context, leadID int64) ([]domain.Bid, error)
	ListByPainter(ctx context.Context, painterID int64) ([]domain.Bid, error)
	UpdateStatusFrom(ctx context.Context, id int64, from, to domain.BidStatus) (bool, error)
	Resubmit(ctx context.Context, id int64, amount float64) (bool, error)
	RejectOthers(ctx context.Context, leadID, acceptedBidID int64) error
}

type leadReader interface {
	GetByID(ctx context.Context, id int64) (*domain.Lead, error)
}

// leadAssigner is how an accepted bid turns into an assignment. The
// lead service owns the transition and its ownership checks.
type leadAssigner interface {
	AssignToPainter(ctx context.Context, customerID, leadID, painterID int64) error
}

type accessChecker interface {
	HasSucceededClaim(ctx context.Context, leadID, painterID int64) (bool, error)
}

type notifier interface {
	NotifyBidSubmitted(ctx context.Context, customerID, painterID, leadID, bidID int64, amount float64)
	NotifyBidAccepted(ctx context.Context, painterID, leadID, bidID int64)
	NotifyBidRejected(ctx context.Context, painterID, leadID, bidID int64)
}
