package auth

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"paintmarket/internal/domain"
)

type Service struct {
	users   userRepo
	tokens  tokenIssuer
	loggerf func(format string, args ...interface{})
}

func NewService(users userRepo, tokens tokenIssuer, loggerf func(format string, args ...interface{})) *Service {
	if loggerf == nil {
		loggerf = func(string, ...interface{}) {}
	}
	return &Service{users: users, tokens: tokens, loggerf: loggerf}
}

func (s *Service) RegisterCustomer(ctx context.Context, req RegisterCustomerRequest) (*AuthResponse, error) {
	return s.register(ctx, &domain.User{
		Email: normalizeEmail(req.Email),
		Role:  domain.RoleCustomer,
		Name:  req.Name,
		Phone: req.Phone,
	}, req.Password)
}

// RegisterPainter creates a painter account in pending status. The
// account can log in and browse right away but cannot claim leads
// until an admin approves it.
func (s *Service) RegisterPainter(ctx context.Context, req RegisterPainterRequest) (*AuthResponse, error) {
	return s.register(ctx, &domain.User{
		Email:         normalizeEmail(req.Email),
		Role:          domain.RolePainter,
		Name:          req.Name,
		Phone:         req.Phone,
		CompanyName:   req.CompanyName,
		PainterStatus: domain.PainterPending,
	}, req.Password)
}

func (s *Service) register(ctx context.Context, u *domain.User, password string) (*AuthResponse, error) {
	taken, err := s.users.ExistsByEmail(ctx, u.Email)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	u.PasswordHash = string(hash)

	if err := s.users.Create(ctx, u); err != nil {
		return nil, err
	}

	token, err := s.tokens.GenerateToken(u.ID, string(u.Role))
	if err != nil {
		return nil, err
	}
	return &AuthResponse{Token: token, User: u}, nil
}

func (s *Service) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	u, err := s.users.GetByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)) != nil {
		return nil, ErrInvalidCredentials
	}

	token, err := s.tokens.GenerateToken(u.ID, string(u.Role))
	if err != nil {
		return nil, err
	}
	return &AuthResponse{Token: token, User: u}, nil
}

func (s *Service) GetUser(ctx context.Context, userID int64) (*domain.User, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return u, nil
}

func (s *Service) ApprovePainter(ctx context.Context, painterID int64) error {
	err := s.users.UpdatePainterStatus(ctx, painterID, domain.PainterActive, "")
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotPainter
	}
	return err
}

func (s *Service) SuspendPainter(ctx context.Context, painterID int64, reason string) error {
	err := s.users.UpdatePainterStatus(ctx, painterID, domain.PainterSuspended, reason)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotPainter
	}
	return err
}

func (s *Service) ListPainters(ctx context.Context, status *domain.PainterStatus, limit, offset int) ([]domain.User, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.users.ListPainters(ctx, status, limit, offset)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
