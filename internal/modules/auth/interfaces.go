package auth

import (
	"context"

	"paintmarket/internal/domain"
)

type userRepo interface {
	Create(ctx context.Context, u *domain.User) error
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	UpdatePainterStatus(ctx context.Context, painterID int64, status domain.PainterStatus, reason string) error
	ListPainters(ctx context.Context, status *domain.PainterStatus, limit, offset int) ([]domain.User, error)
}

type tokenIssuer interface {
	GenerateToken(userID int64, role string) (string, error)
}
