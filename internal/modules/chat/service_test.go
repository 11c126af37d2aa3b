package chat

import (
	"context"
	"errors"
	"testing"

	"gorm.io/gorm"

	"paintmarket/internal/domain"
)

type mockMessageRepo struct{ messages []domain.Message }

func (m *mockMessageRepo) Create(ctx context.Context, msg *domain.Message) error {
	msg.ID = int64(len(m.messages) + 1)
	m.messages = append(m.messages, *msg)
	return nil
}
func (m *mockMessageRepo) ListByLead(ctx context.Context, leadID int64, limit int) ([]domain.Message, error) {
	var out []domain.Message
	for _, msg := range m.messages {
		if msg.LeadID == leadID {
			out = append(out, msg)
		}
	}
	return out, nil
}

type mockLeadReader struct{ lead *domain.Lead }

func (m *mockLeadReader) GetByID(ctx context.Context, id int64) (*domain.Lead, error) {
	if m.lead == nil || m.lead.ID != id {
		return nil, gorm.ErrRecordNotFound
	}
	return m.lead, nil
}
func (m *mockLeadReader) ListByCustomer(ctx context.Context, customerID int64) ([]domain.Lead, error) {
	if m.lead != nil && m.lead.CustomerID == customerID {
		return []domain.Lead{*m.lead}, nil
	}
	return nil, nil
}

type mockAccess struct{ paid map[int64]bool }

func (m *mockAccess) HasSucceededClaim(ctx context.Context, leadID, painterID int64) (bool, error) {
	return m.paid[painterID], nil
}

type mockClaims struct{ claims []domain.LeadClaim }

func (m *mockClaims) ListByLead(ctx context.Context, leadID int64) ([]domain.LeadClaim, error) {
	return m.claims, nil
}
func (m *mockClaims) ListByPainter(ctx context.Context, painterID int64) ([]domain.LeadClaim, error) {
	var out []domain.LeadClaim
	for _, c := range m.claims {
		if c.PainterID == painterID {
			out = append(out, c)
		}
	}
	return out, nil
}

type mockChatNotifier struct{ recipients []int64 }

func (m *mockChatNotifier) NotifyNewMessage(ctx context.Context, recipientID, senderID, leadID int64, preview string) {
	m.recipients = append(m.recipients, recipientID)
}

func newChatFixture(leadCustomer int64, paidPainters ...int64) (*Service, *mockChatNotifier) {
	paid := make(map[int64]bool)
	var claims []domain.LeadClaim
	for _, p := range paidPainters {
		paid[p] = true
		claims = append(claims, domain.LeadClaim{LeadID: 1, PainterID: p, PaymentStatus: domain.ClaimPaymentSucceeded})
	}
	notifs := &mockChatNotifier{}
	svc := NewService(
		&mockMessageRepo{},
		&mockLeadReader{lead: &domain.Lead{ID: 1, CustomerID: leadCustomer}},
		&mockAccess{paid: paid},
		&mockClaims{claims: claims},
		notifs,
		NewHub(),
		func(string, ...interface{}) {},
	)
	return svc, notifs
}

func TestSendMessageParticipants(t *testing.T) {
	svc, notifs := newChatFixture(2, 7)

	if _, err := svc.SendMessage(context.Background(), 2, domain.RoleCustomer, 1, "Hello painter"); err != nil {
		t.Fatalf("customer message failed: %v", err)
	}
	if len(notifs.recipients) != 1 || notifs.recipients[0] != 7 {
		t.Fatalf("expected painter 7 notified, got %v", notifs.recipients)
	}

	if _, err := svc.SendMessage(context.Background(), 7, domain.RolePainter, 1, "Hello customer"); err != nil {
		t.Fatalf("paid painter message failed: %v", err)
	}
	if notifs.recipients[len(notifs.recipients)-1] != 2 {
		t.Fatalf("expected customer notified of painter message")
	}
}

func TestSendMessageRejectsOutsiders(t *testing.T) {
	svc, _ := newChatFixture(2, 7)

	if _, err := svc.SendMessage(context.Background(), 99, domain.RolePainter, 1, "Let me in"); !errors.Is(err, ErrNotParticipant) {
		t.Fatalf("expected ErrNotParticipant for unpaid painter, got %v", err)
	}
	if _, err := svc.SendMessage(context.Background(), 99, domain.RoleCustomer, 1, "Not my lead"); !errors.Is(err, ErrNotParticipant) {
		t.Fatalf("expected ErrNotParticipant for stranger customer, got %v", err)
	}
}

func TestSendMessageRejectsEmptyBody(t *testing.T) {
	svc, _ := newChatFixture(2, 7)

	if _, err := svc.SendMessage(context.Background(), 2, domain.RoleCustomer, 1, "   "); !errors.Is(err, ErrEmptyMessage) {
		t.Fatalf("expected ErrEmptyMessage, got %v", err)
	}
}

func TestListMessagesRequiresParticipation(t *testing.T) {
	svc, _ := newChatFixture(2, 7)

	if _, err := svc.SendMessage(context.Background(), 2, domain.RoleCustomer, 1, "Hello"); err != nil {
		t.Fatalf("send failed: %v", err)
	}

	msgs, err := svc.ListMessages(context.Background(), 7, domain.RolePainter, 1, 50)
	if err != nil {
		t.Fatalf("participant list failed: %v", err)
	}
	if len(msgs) != 1 {
		t.Fatalf("expected 1 message, got %d", len(msgs))
	}

	if _, err := svc.ListMessages(context.Background(), 99, domain.RolePainter, 1, 50); !errors.Is(err, ErrNotParticipant) {
		t.Fatalf("expected ErrNotParticipant, got %v", err)
	}
}

func TestSubscribableLeads(t *testing.T) {
	svc, _ := newChatFixture(2, 7)

	ids, err := svc.SubscribableLeads(context.Background(), 2, domain.RoleCustomer)
	if err != nil || len(ids) != 1 || ids[0] != 1 {
		t.Fatalf("customer subscriptions wrong: ids=%v err=%v", ids, err)
	}

	ids, err = svc.SubscribableLeads(context.Background(), 7, domain.RolePainter)
	if err != nil || len(ids) != 1 || ids[0] != 1 {
		t.Fatalf("painter subscriptions wrong: ids=%v err=%v", ids, err)
	}
}
