package notification

import (
	"context"

	"paintmarket/internal/domain"
)

type notificationRepo interface {
	Create(ctx context.Context, n *domain.Notification, data map[string]any) error
	GetByUserID(ctx context.Context, userID int64, limit int) ([]domain.Notification, error)
	CountUnread(ctx context.Context, userID int64) (int64, error)
	MarkAsRead(ctx context.Context, notificationID, userID int64) error
	MarkAllAsRead(ctx context.Context, userID int64) error
}

type userReader interface {
	GetByID(ctx context.Context, id int64) (*domain.User, error)
}

type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}
