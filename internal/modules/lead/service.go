package lead

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"paintmarket/internal/domain"
	"paintmarket/internal/modules/payment"
	"paintmarket/internal/modules/settings"
	"paintmarket/internal/pkg/validator"
)

// Service owns the lead lifecycle: posting, paid claiming, assignment
// and completion. Claiming is the money path; see ClaimLead for the
// ordering that keeps the payment cap exact under concurrency.
type Service struct {
	leads    leadRepo
	claims   claimRepo
	users    userReader
	payments chargeGateway
	notifs   notifier
	loggerf  func(format string, args ...interface{})
}

func NewService(leads leadRepo, claims claimRepo, users userReader, payments chargeGateway, notifs notifier, loggerf func(format string, args ...interface{})) *Service {
	if loggerf == nil {
		loggerf = func(string, ...interface{}) {}
	}
	return &Service{
		leads:    leads,
		claims:   claims,
		users:    users,
		payments: payments,
		notifs:   notifs,
		loggerf:  loggerf,
	}
}

// CreateLead posts a job at the current access price. Price and cap
// are frozen on the row so later settings changes never affect leads
// already on the board.
func (s *Service) CreateLead(ctx context.Context, customerID int64, req CreateLeadRequest, snap *settings.Snapshot) (*domain.Lead, error) {
	l := &domain.Lead{
		CustomerID:    customerID,
		CustomerName:  req.CustomerName,
		CustomerEmail: req.CustomerEmail,
		CustomerPhone: req.CustomerPhone,
		Title:         req.Title,
		Description:   req.Description,
		Location:      req.Location,
		Status:        domain.LeadOpen,
		Price:         snap.LeadPrice,
		MaxPayments:   snap.MaxPaymentsPerLead,
		PaymentActive: true,
	}
	if fields := validator.Validate(l); fields != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, fields)
	}
	if err := s.leads.Create(ctx, l); err != nil {
		return nil, err
	}
	return l, nil
}

func (s *Service) ListOpenLeads(ctx context.Context, limit, offset int) ([]LeadView, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	leads, err := s.leads.ListOpen(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	views := make([]LeadView, 0, len(leads))
	for i := range leads {
		views = append(views, maskedView(&leads[i]))
	}
	return views, nil
}

func (s *Service) ListCustomerLeads(ctx context.Context, customerID int64) ([]LeadView, error) {
	leads, err := s.leads.ListByCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}
	views := make([]LeadView, 0, len(leads))
	for i := range leads {
		views = append(views, fullView(&leads[i]))
	}
	return views, nil
}

// GetLead returns the lead with contact details included only when the
// caller is entitled to them.
func (s *Service) GetLead(ctx context.Context, userID int64, role domain.UserRole, leadID int64) (*LeadView, error) {
	l, err := s.leads.GetByID(ctx, leadID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLeadNotFound
		}
		return nil, err
	}

	full := false
	switch {
	case role == domain.RoleAdmin:
		full = true
	case role == domain.RoleCustomer && l.CustomerID == userID:
		full = true
	case role == domain.RolePainter:
		full, err = s.claims.HasSucceededClaim(ctx, leadID, userID)
		if err != nil {
			return nil, err
		}
	}

	var v LeadView
	if full {
		v = fullView(l)
	} else {
		v = maskedView(l)
	}
	return &v, nil
}

// HasAccess reports whether the painter's claim payment has succeeded
// for this lead. Pending and failed claims grant nothing.
func (s *Service) HasAccess(ctx context.Context, painterID, leadID int64) (bool, error) {
	return s.claims.HasSucceededClaim(ctx, leadID, painterID)
}

// ClaimLead purchases access to a lead. Order matters:
//
//  1. reserve a payment slot with a conditional increment, so the cap
//     holds no matter how many painters race;
//  2. charge the painter's stored payment method;
//  3. record the claim, giving the slot back if the charge failed.
//
// A claim row that exists in failed state is rearmed in place rather
// than duplicated.
func (s *Service) ClaimLead(ctx context.Context, painterID, leadID, paymentMethodID int64, snap *settings.Snapshot) (*ClaimResult, error) {
	if !snap.PaymentsEnabled {
		return nil, ErrPaymentsDisabled
	}

	painter, err := s.users.GetByID(ctx, painterID)
	if err != nil {
		return nil, err
	}
	if !painter.CanClaim() {
		return nil, ErrPainterNotActive
	}

	existing, err := s.claims.GetByLeadAndPainter(ctx, leadID, painterID)
	if err != nil {
		return nil, err
	}
	if existing != nil && existing.PaymentStatus != domain.ClaimPaymentFailed {
		return nil, ErrAlreadyClaimed
	}

	l, reserved, err := s.leads.ReserveClaimSlot(ctx, leadID)
	if err != nil {
		return nil, err
	}
	if !reserved {
		return nil, s.classifyClaimRefusal(ctx, leadID)
	}

	result, err := s.payments.CreateCharge(ctx, painterID, l.Price, paymentMethodID, leadID)
	if err != nil {
		if rerr := s.leads.ReleaseClaimSlot(ctx, leadID); rerr != nil {
			s.loggerf("level=error msg=slot release failed after declined charge lead_id=%d err=%v", leadID, rerr)
		}
		return nil, err
	}

	claim, err := s.recordClaim(ctx, existing, l, painterID, result)
	if err != nil {
		return nil, err
	}

	s.notifs.NotifyLeadClaimed(ctx, l.CustomerID, painterID, leadID)
	if claim.PaymentStatus == domain.ClaimPaymentSucceeded {
		s.notifs.NotifyPaymentConfirmed(ctx, painterID, leadID)
	}
	return &ClaimResult{Claim: claim, HasAccess: claim.GrantsAccess()}, nil
}

// classifyClaimRefusal turns a refused reservation into the precise
// error the painter should see.
func (s *Service) classifyClaimRefusal(ctx context.Context, leadID int64) error {
	l, err := s.leads.GetByID(ctx, leadID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrLeadNotFound
		}
		return err
	}
	if !l.IsOpen() {
		return ErrLeadNotOpen
	}
	return ErrPaymentCapReached
}

func (s *Service) recordClaim(ctx context.Context, existing *domain.LeadClaim, l *domain.Lead, painterID int64, result *payment.ChargeResult) (*domain.LeadClaim, error) {
	if existing != nil {
		if err := s.claims.RetryFailed(ctx, existing.ID, result.IntentID, l.Price, l.PaymentCount); err != nil {
			return nil, s.reconcileFailure(ctx, result, l.ID, painterID, err)
		}
		if result.Status == domain.ClaimPaymentSucceeded {
			if _, err := s.claims.MarkSucceededIdempotent(ctx, result.IntentID, "", time.Now().UTC()); err != nil {
				return nil, s.reconcileFailure(ctx, result, l.ID, painterID, err)
			}
		}
		claim, err := s.claims.GetByLeadAndPainter(ctx, l.ID, painterID)
		if err != nil || claim == nil {
			return nil, s.reconcileFailure(ctx, result, l.ID, painterID, err)
		}
		return claim, nil
	}

	claim := &domain.LeadClaim{
		LeadID:          l.ID,
		PainterID:       painterID,
		Amount:          l.Price,
		PaymentIntentID: result.IntentID,
		PaymentStatus:   result.Status,
		PaymentNumber:   l.PaymentCount,
	}
	if result.Status == domain.ClaimPaymentSucceeded {
		now := time.Now().UTC()
		claim.PaidAt = &now
	}
	if err := s.claims.Create(ctx, claim); err != nil {
		if isUniqueViolation(err) {
			// A concurrent claim by the same painter won the insert.
			// The slot we reserved is surplus; give it back.
			if rerr := s.leads.ReleaseClaimSlot(ctx, l.ID); rerr != nil {
				s.loggerf("level=error msg=slot release failed after duplicate claim lead_id=%d err=%v", l.ID, rerr)
			}
			return nil, ErrAlreadyClaimed
		}
		return nil, s.reconcileFailure(ctx, result, l.ID, painterID, err)
	}
	return claim, nil
}

// reconcileFailure is the one path where money moved but the database
// write failed. The slot is left reserved and the intent logged so the
// charge can be matched up manually.
func (s *Service) reconcileFailure(ctx context.Context, result *payment.ChargeResult, leadID, painterID int64, cause error) error {
	s.loggerf("level=error msg=claim not recorded after charge intent=%s lead_id=%d painter_id=%d err=%v",
		result.IntentID, leadID, painterID, cause)
	return fmt.Errorf("%w (intent %s): %v", ErrReconcileRequired, result.IntentID, cause)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return errors.Is(err, gorm.ErrDuplicatedKey)
}

// AssignToPainter moves an open lead to assigned. Called from bid
// acceptance; the conditional update makes double-assignment a no-op
// race loser, not a corruption.
func (s *Service) AssignToPainter(ctx context.Context, customerID, leadID, painterID int64) error {
	l, err := s.leads.GetByID(ctx, leadID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrLeadNotFound
		}
		return err
	}
	if l.CustomerID != customerID {
		return ErrNotOwner
	}

	ok, err := s.leads.AssignPainter(ctx, leadID, painterID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrInvalidTransition
	}

	s.notifs.NotifyLeadAssigned(ctx, l.CustomerID, painterID, leadID)
	return nil
}

// CompleteLead closes an assigned lead. Only the owning customer or an
// admin may close it.
func (s *Service) CompleteLead(ctx context.Context, userID int64, role domain.UserRole, leadID int64) error {
	l, err := s.leads.GetByID(ctx, leadID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrLeadNotFound
		}
		return err
	}
	if role != domain.RoleAdmin && l.CustomerID != userID {
		return ErrNotOwner
	}

	ok, err := s.leads.Complete(ctx, leadID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrInvalidTransition
	}

	if l.AssignedPainterID != nil {
		s.notifs.NotifyLeadCompleted(ctx, l.CustomerID, *l.AssignedPainterID, leadID)
	}
	return nil
}

// ListClaimedLeads returns the leads a painter has paid for, newest
// first, with the claim state attached.
func (s *Service) ListClaimedLeads(ctx context.Context, painterID int64) ([]ClaimedLead, error) {
	claims, err := s.claims.ListByPainter(ctx, painterID)
	if err != nil {
		return nil, err
	}

	out := make([]ClaimedLead, 0, len(claims))
	for i := range claims {
		c := claims[i]
		l, err := s.leads.GetByID(ctx, c.LeadID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				continue
			}
			return nil, err
		}
		view := maskedView(l)
		if c.GrantsAccess() {
			view = fullView(l)
		}
		out = append(out, ClaimedLead{Lead: view, Claim: c})
	}
	return out, nil
}
