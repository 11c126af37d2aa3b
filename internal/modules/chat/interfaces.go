package chat

import (
	"context"

	"paintmarket/internal/domain"
)

type messageRepo interface {
	Create(ctx context.Context, m *domain.Message) error
	ListByLead(ctx context.Context, leadID int64, limit int) ([]domain.Message, error)
}

type leadReader interface {
	GetByID(ctx context.Context, id int64) (*domain.Lead, error)
	ListByCustomer(ctx context.Context, customerID int64) ([]domain.Lead, error)
}

type accessChecker interface {
	HasSucceededClaim(ctx context.Context, leadID, painterID int64) (bool, error)
}

type claimLister interface {
	ListByLead(ctx context.Context, leadID int64) ([]domain.LeadClaim, error)
	ListByPainter(ctx context.Context, painterID int64) ([]domain.LeadClaim, error)
}

type notifier interface {
	NotifyNewMessage(ctx context.Context, recipientID, senderID, leadID int64, preview string)
}
