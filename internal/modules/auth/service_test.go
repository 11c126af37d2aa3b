package auth

import (
	"context"
	"errors"
	"testing"

	"gorm.io/gorm"

	"paintmarket/internal/domain"
)

type mockUserRepo struct {
	byEmail map[string]*domain.User
	nextID  int64

	statusUpdates map[int64]domain.PainterStatus
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{byEmail: make(map[string]*domain.User), nextID: 1, statusUpdates: make(map[int64]domain.PainterStatus)}
}

func (m *mockUserRepo) Create(ctx context.Context, u *domain.User) error {
	u.ID = m.nextID
	m.nextID++
	m.byEmail[u.Email] = u
	return nil
}
func (m *mockUserRepo) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	for _, u := range m.byEmail {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}
func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	u, ok := m.byEmail[email]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return u, nil
}
func (m *mockUserRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	_, ok := m.byEmail[email]
	return ok, nil
}
func (m *mockUserRepo) UpdatePainterStatus(ctx context.Context, painterID int64, status domain.PainterStatus, reason string) error {
	u, err := m.GetByID(ctx, painterID)
	if err != nil || u.Role != domain.RolePainter {
		return gorm.ErrRecordNotFound
	}
	u.PainterStatus = status
	u.SuspendReason = reason
	m.statusUpdates[painterID] = status
	return nil
}
func (m *mockUserRepo) ListPainters(ctx context.Context, status *domain.PainterStatus, limit, offset int) ([]domain.User, error) {
	var out []domain.User
	for _, u := range m.byEmail {
		if u.Role != domain.RolePainter {
			continue
		}
		if status != nil && u.PainterStatus != *status {
			continue
		}
		out = append(out, *u)
	}
	return out, nil
}

type mockTokenIssuer struct{}

func (mockTokenIssuer) GenerateToken(userID int64, role string) (string, error) {
	return "token", nil
}

func newAuthFixture() (*Service, *mockUserRepo) {
	repo := newMockUserRepo()
	return NewService(repo, mockTokenIssuer{}, func(string, ...interface{}) {}), repo
}

func TestRegisterCustomer(t *testing.T) {
	svc, _ := newAuthFixture()

	res, err := svc.RegisterCustomer(context.Background(), RegisterCustomerRequest{
		Email: "Sarah@Example.com", Password: "password123", Name: "Sarah",
	})
	if err != nil {
		t.Fatalf("RegisterCustomer returned error: %v", err)
	}
	if res.User.Email != "sarah@example.com" {
		t.Fatalf("email must be normalized, got %s", res.User.Email)
	}
	if res.User.Role != domain.RoleCustomer {
		t.Fatalf("expected customer role, got %s", res.User.Role)
	}
	if res.User.PasswordHash == "password123" || res.User.PasswordHash == "" {
		t.Fatalf("password must be hashed")
	}
	if res.Token == "" {
		t.Fatalf("expected a token")
	}
}

func TestRegisterPainterStartsPending(t *testing.T) {
	svc, _ := newAuthFixture()

	res, err := svc.RegisterPainter(context.Background(), RegisterPainterRequest{
		Email: "tom@example.com", Password: "password123", Name: "Tom", CompanyName: "Briggs Ltd",
	})
	if err != nil {
		t.Fatalf("RegisterPainter returned error: %v", err)
	}
	if res.User.PainterStatus != domain.PainterPending {
		t.Fatalf("painters must start pending, got %s", res.User.PainterStatus)
	}
	if res.User.CanClaim() {
		t.Fatalf("pending painters must not be claim-eligible")
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, _ := newAuthFixture()

	req := RegisterCustomerRequest{Email: "sarah@example.com", Password: "password123", Name: "Sarah"}
	if _, err := svc.RegisterCustomer(context.Background(), req); err != nil {
		t.Fatalf("first register failed: %v", err)
	}
	if _, err := svc.RegisterCustomer(context.Background(), req); !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestLogin(t *testing.T) {
	svc, _ := newAuthFixture()
	_, err := svc.RegisterCustomer(context.Background(), RegisterCustomerRequest{
		Email: "sarah@example.com", Password: "password123", Name: "Sarah",
	})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}

	if _, err := svc.Login(context.Background(), LoginRequest{Email: "sarah@example.com", Password: "password123"}); err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if _, err := svc.Login(context.Background(), LoginRequest{Email: "sarah@example.com", Password: "wrong"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for bad password, got %v", err)
	}
	if _, err := svc.Login(context.Background(), LoginRequest{Email: "nobody@example.com", Password: "password123"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for unknown email, got %v", err)
	}
}

func TestApproveAndSuspendPainter(t *testing.T) {
	svc, repo := newAuthFixture()
	res, _ := svc.RegisterPainter(context.Background(), RegisterPainterRequest{
		Email: "tom@example.com", Password: "password123", Name: "Tom", CompanyName: "Briggs Ltd",
	})

	if err := svc.ApprovePainter(context.Background(), res.User.ID); err != nil {
		t.Fatalf("approve failed: %v", err)
	}
	if repo.statusUpdates[res.User.ID] != domain.PainterActive {
		t.Fatalf("expected active status update")
	}

	if err := svc.SuspendPainter(context.Background(), res.User.ID, "spam bids"); err != nil {
		t.Fatalf("suspend failed: %v", err)
	}
	if repo.statusUpdates[res.User.ID] != domain.PainterSuspended {
		t.Fatalf("expected suspended status update")
	}
}

func TestApproveNonPainter(t *testing.T) {
	svc, _ := newAuthFixture()
	res, _ := svc.RegisterCustomer(context.Background(), RegisterCustomerRequest{
		Email: "sarah@example.com", Password: "password123", Name: "Sarah",
	})

	if err := svc.ApprovePainter(context.Background(), res.User.ID); !errors.Is(err, ErrNotPainter) {
		t.Fatalf("expected ErrNotPainter, got %v", err)
	}
}
