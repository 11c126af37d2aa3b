package lead

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"gorm.io/gorm"

	"paintmarket/internal/domain"
	"paintmarket/internal/modules/payment"
	"paintmarket/internal/modules/settings"
)

type mockLeadRepo struct {
	lead          *domain.Lead
	reserveOK     bool
	reserveCalls  int
	releaseCalls  int
	assignOK      bool
	completeOK    bool
	completeCalls int
}

func (m *mockLeadRepo) Create(ctx context.Context, l *domain.Lead) error { l.ID = 1; return nil }
func (m *mockLeadRepo) GetByID(ctx context.Context, id int64) (*domain.Lead, error) {
	if m.lead == nil || m.lead.ID != id {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *m.lead
	return &cp, nil
}
func (m *mockLeadRepo) ListOpen(ctx context.Context, limit, offset int) ([]domain.Lead, error) {
	if m.lead == nil {
		return nil, nil
	}
	return []domain.Lead{*m.lead}, nil
}
func (m *mockLeadRepo) ListByCustomer(ctx context.Context, customerID int64) ([]domain.Lead, error) {
	return nil, nil
}
func (m *mockLeadRepo) ReserveClaimSlot(ctx context.Context, leadID int64) (*domain.Lead, bool, error) {
	m.reserveCalls++
	if !m.reserveOK {
		return nil, false, nil
	}
	cp := *m.lead
	cp.PaymentCount++
	return &cp, true, nil
}
func (m *mockLeadRepo) ReleaseClaimSlot(ctx context.Context, leadID int64) error {
	m.releaseCalls++
	return nil
}
func (m *mockLeadRepo) AssignPainter(ctx context.Context, leadID, painterID int64) (bool, error) {
	return m.assignOK, nil
}
func (m *mockLeadRepo) Complete(ctx context.Context, leadID int64) (bool, error) {
	m.completeCalls++
	return m.completeOK, nil
}

type mockClaimRepo struct {
	existing    *domain.LeadClaim
	createErr   error
	createCalls int
	retryCalls  int
	created     *domain.LeadClaim
}

func (m *mockClaimRepo) Create(ctx context.Context, c *domain.LeadClaim) error {
	m.createCalls++
	if m.createErr != nil {
		return m.createErr
	}
	c.ID = 10
	m.created = c
	return nil
}
func (m *mockClaimRepo) GetByLeadAndPainter(ctx context.Context, leadID, painterID int64) (*domain.LeadClaim, error) {
	if m.created != nil {
		return m.created, nil
	}
	return m.existing, nil
}
func (m *mockClaimRepo) HasSucceededClaim(ctx context.Context, leadID, painterID int64) (bool, error) {
	return m.existing != nil && m.existing.GrantsAccess(), nil
}
func (m *mockClaimRepo) RetryFailed(ctx context.Context, id int64, intentID string, amount float64, paymentNumber int) error {
	m.retryCalls++
	m.existing.PaymentIntentID = intentID
	m.existing.PaymentStatus = domain.ClaimPaymentPending
	m.created = m.existing
	return nil
}
func (m *mockClaimRepo) MarkSucceededIdempotent(ctx context.Context, intentID, rawBody string, paidAt time.Time) (bool, error) {
	if m.created != nil && m.created.PaymentIntentID == intentID {
		m.created.PaymentStatus = domain.ClaimPaymentSucceeded
	}
	return true, nil
}
func (m *mockClaimRepo) ListByPainter(ctx context.Context, painterID int64) ([]domain.LeadClaim, error) {
	return nil, nil
}

type mockUserReader struct{ user *domain.User }

func (m *mockUserReader) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	if m.user == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return m.user, nil
}

type mockGateway struct {
	result *payment.ChargeResult
	err    error
	calls  int
}

func (m *mockGateway) CreateCharge(ctx context.Context, painterID int64, amount float64, paymentMethodID int64, leadID int64) (*payment.ChargeResult, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.result, nil
}

type mockNotifier struct {
	claimed   int
	confirmed int
	assigned  int
	completed int
}

func (m *mockNotifier) NotifyLeadClaimed(ctx context.Context, customerID, painterID, leadID int64) {
	m.claimed++
}
func (m *mockNotifier) NotifyPaymentConfirmed(ctx context.Context, painterID, leadID int64) {
	m.confirmed++
}
func (m *mockNotifier) NotifyLeadAssigned(ctx context.Context, customerID, painterID, leadID int64) {
	m.assigned++
}
func (m *mockNotifier) NotifyLeadCompleted(ctx context.Context, customerID, painterID, leadID int64) {
	m.completed++
}

func activePainter() *domain.User {
	return &domain.User{ID: 7, Role: domain.RolePainter, PainterStatus: domain.PainterActive}
}

func openLead() *domain.Lead {
	return &domain.Lead{
		ID:            1,
		CustomerID:    2,
		Status:        domain.LeadOpen,
		Price:         15,
		PaymentCount:  0,
		MaxPayments:   3,
		PaymentActive: true,
	}
}

func snapshot() *settings.Snapshot {
	s := settings.Defaults()
	return &s
}

func newClaimFixture(leads *mockLeadRepo, claims *mockClaimRepo, users *mockUserReader, gw *mockGateway, notifs *mockNotifier) *Service {
	return NewService(leads, claims, users, gw, notifs, func(string, ...interface{}) {})
}

func TestClaimLeadSucceeds(t *testing.T) {
	leads := &mockLeadRepo{lead: openLead(), reserveOK: true}
	claims := &mockClaimRepo{}
	gw := &mockGateway{result: &payment.ChargeResult{IntentID: "pi_1", Status: domain.ClaimPaymentSucceeded}}
	notifs := &mockNotifier{}
	svc := newClaimFixture(leads, claims, &mockUserReader{user: activePainter()}, gw, notifs)

	res, err := svc.ClaimLead(context.Background(), 7, 1, 3, snapshot())
	if err != nil {
		t.Fatalf("ClaimLead returned error: %v", err)
	}
	if !res.HasAccess {
		t.Fatalf("expected access after succeeded charge")
	}
	if res.Claim.PaymentIntentID != "pi_1" {
		t.Fatalf("expected intent pi_1, got %s", res.Claim.PaymentIntentID)
	}
	if leads.reserveCalls != 1 || leads.releaseCalls != 0 {
		t.Fatalf("expected one reservation and no release, got %d/%d", leads.reserveCalls, leads.releaseCalls)
	}
	if notifs.claimed != 1 || notifs.confirmed != 1 {
		t.Fatalf("expected claimed and confirmed notifications, got %d/%d", notifs.claimed, notifs.confirmed)
	}
}

func TestClaimLeadPendingChargeGrantsNoAccess(t *testing.T) {
	leads := &mockLeadRepo{lead: openLead(), reserveOK: true}
	claims := &mockClaimRepo{}
	gw := &mockGateway{result: &payment.ChargeResult{IntentID: "pi_2", Status: domain.ClaimPaymentPending}}
	notifs := &mockNotifier{}
	svc := newClaimFixture(leads, claims, &mockUserReader{user: activePainter()}, gw, notifs)

	res, err := svc.ClaimLead(context.Background(), 7, 1, 3, snapshot())
	if err != nil {
		t.Fatalf("ClaimLead returned error: %v", err)
	}
	if res.HasAccess {
		t.Fatalf("pending charge must not grant access")
	}
	if notifs.confirmed != 0 {
		t.Fatalf("payment confirmation must wait for the webhook")
	}
}

func TestClaimLeadCapReached(t *testing.T) {
	l := openLead()
	l.PaymentCount = 3
	l.PaymentActive = false
	leads := &mockLeadRepo{lead: l, reserveOK: false}
	gw := &mockGateway{}
	svc := newClaimFixture(leads, &mockClaimRepo{}, &mockUserReader{user: activePainter()}, gw, &mockNotifier{})

	_, err := svc.ClaimLead(context.Background(), 7, 1, 3, snapshot())
	if !errors.Is(err, ErrPaymentCapReached) {
		t.Fatalf("expected ErrPaymentCapReached, got %v", err)
	}
	if gw.calls != 0 {
		t.Fatalf("no charge should be attempted without a reservation")
	}
}

func TestClaimLeadNotOpen(t *testing.T) {
	l := openLead()
	l.Status = domain.LeadAssigned
	leads := &mockLeadRepo{lead: l, reserveOK: false}
	svc := newClaimFixture(leads, &mockClaimRepo{}, &mockUserReader{user: activePainter()}, &mockGateway{}, &mockNotifier{})

	_, err := svc.ClaimLead(context.Background(), 7, 1, 3, snapshot())
	if !errors.Is(err, ErrLeadNotOpen) {
		t.Fatalf("expected ErrLeadNotOpen, got %v", err)
	}
}

func TestClaimLeadAlreadyClaimed(t *testing.T) {
	claims := &mockClaimRepo{existing: &domain.LeadClaim{ID: 5, LeadID: 1, PainterID: 7, PaymentStatus: domain.ClaimPaymentSucceeded}}
	leads := &mockLeadRepo{lead: openLead(), reserveOK: true}
	gw := &mockGateway{}
	svc := newClaimFixture(leads, claims, &mockUserReader{user: activePainter()}, gw, &mockNotifier{})

	_, err := svc.ClaimLead(context.Background(), 7, 1, 3, snapshot())
	if !errors.Is(err, ErrAlreadyClaimed) {
		t.Fatalf("expected ErrAlreadyClaimed, got %v", err)
	}
	if leads.reserveCalls != 0 || gw.calls != 0 {
		t.Fatalf("duplicate claim must be rejected before reserving or charging")
	}
}

func TestClaimLeadChargeDeclinedReleasesSlot(t *testing.T) {
	leads := &mockLeadRepo{lead: openLead(), reserveOK: true}
	gw := &mockGateway{err: fmt.Errorf("%w: card declined", payment.ErrPaymentFailed)}
	svc := newClaimFixture(leads, &mockClaimRepo{}, &mockUserReader{user: activePainter()}, gw, &mockNotifier{})

	_, err := svc.ClaimLead(context.Background(), 7, 1, 3, snapshot())
	if !errors.Is(err, payment.ErrPaymentFailed) {
		t.Fatalf("expected ErrPaymentFailed, got %v", err)
	}
	if leads.releaseCalls != 1 {
		t.Fatalf("expected reserved slot to be released, got %d releases", leads.releaseCalls)
	}
}

func TestClaimLeadRetriesFailedClaimInPlace(t *testing.T) {
	claims := &mockClaimRepo{existing: &domain.LeadClaim{ID: 5, LeadID: 1, PainterID: 7, PaymentStatus: domain.ClaimPaymentFailed, PaymentIntentID: "pi_old"}}
	leads := &mockLeadRepo{lead: openLead(), reserveOK: true}
	gw := &mockGateway{result: &payment.ChargeResult{IntentID: "pi_new", Status: domain.ClaimPaymentSucceeded}}
	svc := newClaimFixture(leads, claims, &mockUserReader{user: activePainter()}, gw, &mockNotifier{})

	res, err := svc.ClaimLead(context.Background(), 7, 1, 3, snapshot())
	if err != nil {
		t.Fatalf("ClaimLead returned error: %v", err)
	}
	if claims.retryCalls != 1 || claims.createCalls != 0 {
		t.Fatalf("expected failed claim to be rearmed, not duplicated (retry=%d create=%d)", claims.retryCalls, claims.createCalls)
	}
	if res.Claim.PaymentIntentID != "pi_new" {
		t.Fatalf("expected new intent on the rearmed claim, got %s", res.Claim.PaymentIntentID)
	}
}

func TestClaimLeadPaymentsDisabled(t *testing.T) {
	svc := newClaimFixture(&mockLeadRepo{lead: openLead()}, &mockClaimRepo{}, &mockUserReader{user: activePainter()}, &mockGateway{}, &mockNotifier{})

	snap := snapshot()
	snap.PaymentsEnabled = false
	_, err := svc.ClaimLead(context.Background(), 7, 1, 3, snap)
	if !errors.Is(err, ErrPaymentsDisabled) {
		t.Fatalf("expected ErrPaymentsDisabled, got %v", err)
	}
}

func TestClaimLeadPendingPainterRejected(t *testing.T) {
	pending := activePainter()
	pending.PainterStatus = domain.PainterPending
	svc := newClaimFixture(&mockLeadRepo{lead: openLead()}, &mockClaimRepo{}, &mockUserReader{user: pending}, &mockGateway{}, &mockNotifier{})

	_, err := svc.ClaimLead(context.Background(), 7, 1, 3, snapshot())
	if !errors.Is(err, ErrPainterNotActive) {
		t.Fatalf("expected ErrPainterNotActive, got %v", err)
	}
}

func TestClaimLeadInsertFailureAfterChargeRequiresReconciliation(t *testing.T) {
	leads := &mockLeadRepo{lead: openLead(), reserveOK: true}
	claims := &mockClaimRepo{createErr: errors.New("disk full")}
	gw := &mockGateway{result: &payment.ChargeResult{IntentID: "pi_3", Status: domain.ClaimPaymentSucceeded}}
	svc := newClaimFixture(leads, claims, &mockUserReader{user: activePainter()}, gw, &mockNotifier{})

	_, err := svc.ClaimLead(context.Background(), 7, 1, 3, snapshot())
	if !errors.Is(err, ErrReconcileRequired) {
		t.Fatalf("expected ErrReconcileRequired, got %v", err)
	}
	if leads.releaseCalls != 0 {
		t.Fatalf("slot must stay reserved when money already moved")
	}
}

func TestCompleteLeadOnlyOwnerOrAdmin(t *testing.T) {
	l := openLead()
	l.Status = domain.LeadAssigned
	painterID := int64(7)
	l.AssignedPainterID = &painterID

	leads := &mockLeadRepo{lead: l, completeOK: true}
	notifs := &mockNotifier{}
	svc := newClaimFixture(leads, &mockClaimRepo{}, &mockUserReader{}, &mockGateway{}, notifs)

	if err := svc.CompleteLead(context.Background(), 99, domain.RoleCustomer, 1); !errors.Is(err, ErrNotOwner) {
		t.Fatalf("expected ErrNotOwner for stranger, got %v", err)
	}
	if err := svc.CompleteLead(context.Background(), 2, domain.RoleCustomer, 1); err != nil {
		t.Fatalf("owner completion failed: %v", err)
	}
	if notifs.completed != 1 {
		t.Fatalf("expected completion notification")
	}
}

func TestCompleteLeadInvalidTransition(t *testing.T) {
	leads := &mockLeadRepo{lead: openLead(), completeOK: false}
	svc := newClaimFixture(leads, &mockClaimRepo{}, &mockUserReader{}, &mockGateway{}, &mockNotifier{})

	if err := svc.CompleteLead(context.Background(), 2, domain.RoleCustomer, 1); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
}

func TestGetLeadMasksContactForUnpaidPainter(t *testing.T) {
	l := openLead()
	l.CustomerName = "Sarah"
	l.CustomerEmail = "sarah@example.com"
	l.Location = "14 Elm Road, Manchester"

	svc := newClaimFixture(&mockLeadRepo{lead: l}, &mockClaimRepo{}, &mockUserReader{}, &mockGateway{}, &mockNotifier{})

	view, err := svc.GetLead(context.Background(), 7, domain.RolePainter, 1)
	if err != nil {
		t.Fatalf("GetLead returned error: %v", err)
	}
	if view.CustomerEmail != "" || view.CustomerName != "" {
		t.Fatalf("contact details must be masked without a paid claim")
	}
	if view.Location != "Manchester" {
		t.Fatalf("expected coarse location, got %q", view.Location)
	}
}

func TestGetLeadFullForPaidPainter(t *testing.T) {
	l := openLead()
	l.CustomerEmail = "sarah@example.com"
	claims := &mockClaimRepo{existing: &domain.LeadClaim{LeadID: 1, PainterID: 7, PaymentStatus: domain.ClaimPaymentSucceeded}}

	svc := newClaimFixture(&mockLeadRepo{lead: l}, claims, &mockUserReader{}, &mockGateway{}, &mockNotifier{})

	view, err := svc.GetLead(context.Background(), 7, domain.RolePainter, 1)
	if err != nil {
		t.Fatalf("GetLead returned error: %v", err)
	}
	if view.CustomerEmail != "sarah@example.com" {
		t.Fatalf("paid painter must see contact details")
	}
}
