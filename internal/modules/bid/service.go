package bid

import (
	"context"
	"errors"
	"fmt"
	"unicode/utf8"

	"gorm.io/gorm"

	"paintmarket/internal/domain"
	"paintmarket/internal/modules/settings"
)

// Service manages quotes. Only painters whose claim payment succeeded
// may bid; one active bid per painter per lead, mutated in place on
// resubmission.
type Service struct {
	bids    bidRepo
	leads   leadReader
	assign  leadAssigner
	access  accessChecker
	notifs  notifier
	loggerf func(format string, args ...interface{})
}

func NewService(bids bidRepo, leads leadReader, assign leadAssigner, access accessChecker, notifs notifier, loggerf func(format string, args ...interface{})) *Service {
	if loggerf == nil {
		loggerf = func(string, ...interface{}) {}
	}
	return &Service{
		bids:    bids,
		leads:   leads,
		assign:  assign,
		access:  access,
		notifs:  notifs,
		loggerf: loggerf,
	}
}

func validateBid(amount float64, message, timeline string, snap *settings.Snapshot) error {
	if amount < snap.BidMinAmount || amount > snap.BidMaxAmount {
		return fmt.Errorf("%w: amount must be between %.2f and %.2f", ErrValidation, snap.BidMinAmount, snap.BidMaxAmount)
	}
	n := utf8.RuneCountInString(message)
	if n < snap.BidMessageMinLen || n > snap.BidMessageMaxLen {
		return fmt.Errorf("%w: message must be between %d and %d characters", ErrValidation, snap.BidMessageMinLen, snap.BidMessageMaxLen)
	}
	if timeline == "" {
		return fmt.Errorf("%w: timeline is required", ErrValidation)
	}
	return nil
}

func (s *Service) SubmitBid(ctx context.Context, painterID, leadID int64, req SubmitBidRequest, snap *settings.Snapshot) (*domain.Bid, error) {
	if err := validateBid(req.Amount, req.Message, req.Timeline, snap); err != nil {
		return nil, err
	}

	l, err := s.leads.GetByID(ctx, leadID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLeadNotFound
		}
		return nil, err
	}
	if !l.IsOpen() {
		return nil, ErrLeadNotOpen
	}

	has, err := s.access.HasSucceededClaim(ctx, leadID, painterID)
	if err != nil {
		return nil, err
	}
	if !has {
		return nil, ErrNoLeadAccess
	}

	existing, err := s.bids.GetActiveByLeadAndPainter(ctx, leadID, painterID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrDuplicateBid
	}

	b := &domain.Bid{
		LeadID:    leadID,
		PainterID: painterID,
		Amount:    req.Amount,
		Message:   req.Message,
		Timeline:  req.Timeline,
		Status:    domain.BidPending,
	}
	if err := s.bids.Create(ctx, b); err != nil {
		return nil, err
	}

	s.notifs.NotifyBidSubmitted(ctx, l.CustomerID, painterID, leadID, b.ID, b.Amount)
	return b, nil
}

func (s *Service) WithdrawBid(ctx context.Context, painterID, bidID int64) error {
	b, err := s.getOwnedBid(ctx, painterID, bidID)
	if err != nil {
		return err
	}

	ok, err := s.bids.UpdateStatusFrom(ctx, b.ID, domain.BidPending, domain.BidWithdrawn)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotPending
	}
	return nil
}

// ResubmitBid re-offers a pending or rejected bid with a new amount.
// The row is mutated in place so the customer still sees one bid per
// painter.
func (s *Service) ResubmitBid(ctx context.Context, painterID, bidID int64, amount float64, snap *settings.Snapshot) (*domain.Bid, error) {
	if amount < snap.BidMinAmount || amount > snap.BidMaxAmount {
		return nil, fmt.Errorf("%w: amount must be between %.2f and %.2f", ErrValidation, snap.BidMinAmount, snap.BidMaxAmount)
	}

	b, err := s.getOwnedBid(ctx, painterID, bidID)
	if err != nil {
		return nil, err
	}

	l, err := s.leads.GetByID(ctx, b.LeadID)
	if err != nil {
		return nil, err
	}
	if !l.IsOpen() {
		return nil, ErrLeadNotOpen
	}

	ok, err := s.bids.Resubmit(ctx, b.ID, amount)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrCannotResubmit
	}

	updated, err := s.bids.GetByID(ctx, b.ID)
	if err != nil {
		return nil, err
	}
	s.notifs.NotifyBidSubmitted(ctx, l.CustomerID, painterID, l.ID, updated.ID, updated.Amount)
	return updated, nil
}

// AcceptBid accepts a quote and assigns the lead to its painter. The
// bid is moved to accepted first; if the assignment loses the race the
// bid is rolled back to pending.
func (s *Service) AcceptBid(ctx context.Context, customerID, bidID int64) error {
	b, err := s.getBid(ctx, bidID)
	if err != nil {
		return err
	}

	ok, err := s.bids.UpdateStatusFrom(ctx, b.ID, domain.BidPending, domain.BidAccepted)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotPending
	}

	if err := s.assign.AssignToPainter(ctx, customerID, b.LeadID, b.PainterID); err != nil {
		if _, rerr := s.bids.UpdateStatusFrom(ctx, b.ID, domain.BidAccepted, domain.BidPending); rerr != nil {
			s.loggerf("level=error msg=bid rollback failed bid_id=%d err=%v", b.ID, rerr)
		}
		return err
	}

	if err := s.bids.RejectOthers(ctx, b.LeadID, b.ID); err != nil {
		s.loggerf("level=error msg=reject competing bids failed lead_id=%d err=%v", b.LeadID, err)
	}

	s.notifs.NotifyBidAccepted(ctx, b.PainterID, b.LeadID, b.ID)
	s.notifyRejected(ctx, b.LeadID, b.ID)
	return nil
}

func (s *Service) notifyRejected(ctx context.Context, leadID, acceptedBidID int64) {
	others, err := s.bids.ListByLead(ctx, leadID)
	if err != nil {
		s.loggerf("level=error msg=list bids for rejection notices failed lead_id=%d err=%v", leadID, err)
		return
	}
	for i := range others {
		o := others[i]
		if o.ID == acceptedBidID || o.Status != domain.BidRejected {
			continue
		}
		s.notifs.NotifyBidRejected(ctx, o.PainterID, leadID, o.ID)
	}
}

func (s *Service) RejectBid(ctx context.Context, customerID, bidID int64) error {
	b, err := s.getBid(ctx, bidID)
	if err != nil {
		return err
	}
	if err := s.requireLeadOwner(ctx, customerID, b.LeadID); err != nil {
		return err
	}

	ok, err := s.bids.UpdateStatusFrom(ctx, b.ID, domain.BidPending, domain.BidRejected)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotPending
	}

	s.notifs.NotifyBidRejected(ctx, b.PainterID, b.LeadID, b.ID)
	return nil
}

func (s *Service) ListBidsForLead(ctx context.Context, userID int64, role domain.UserRole, leadID int64) ([]domain.Bid, error) {
	if role != domain.RoleAdmin {
		if err := s.requireLeadOwner(ctx, userID, leadID); err != nil {
			return nil, err
		}
	}
	return s.bids.ListByLead(ctx, leadID)
}

func (s *Service) ListMyBids(ctx context.Context, painterID int64) ([]domain.Bid, error) {
	return s.bids.ListByPainter(ctx, painterID)
}

func (s *Service) getBid(ctx context.Context, bidID int64) (*domain.Bid, error) {
	b, err := s.bids.GetByID(ctx, bidID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBidNotFound
		}
		return nil, err
	}
	return b, nil
}

func (s *Service) getOwnedBid(ctx context.Context, painterID, bidID int64) (*domain.Bid, error) {
	b, err := s.getBid(ctx, bidID)
	if err != nil {
		return nil, err
	}
	if b.PainterID != painterID {
		return nil, ErrNotBidOwner
	}
	return b, nil
}

func (s *Service) requireLeadOwner(ctx context.Context, customerID, leadID int64) error {
	l, err := s.leads.GetByID(ctx, leadID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrLeadNotFound
		}
		return err
	}
	if l.CustomerID != customerID {
		return ErrNotLeadOwner
	}
	return nil
}
