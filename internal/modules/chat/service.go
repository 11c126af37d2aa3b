package chat

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"paintmarket/internal/domain"
)

// Service runs the lead-scoped message threads. A thread connects the
// lead's customer with the painters whose claim payment succeeded;
// nobody else can read or post.
type Service struct {
	messages messageRepo
	leads    leadReader
	access   accessChecker
	claims   claimLister
	notifs   notifier
	hub      *Hub
	loggerf  func(format string, args ...interface{})
}

func NewService(messages messageRepo, leads leadReader, access accessChecker, claims claimLister, notifs notifier, hub *Hub, loggerf func(format string, args ...interface{})) *Service {
	if loggerf == nil {
		loggerf = func(string, ...interface{}) {}
	}
	return &Service{
		messages: messages,
		leads:    leads,
		access:   access,
		claims:   claims,
		notifs:   notifs,
		hub:      hub,
		loggerf:  loggerf,
	}
}

// IsParticipant reports whether the user may read and post in the
// lead's thread.
func (s *Service) IsParticipant(ctx context.Context, userID int64, role domain.UserRole, leadID int64) (bool, error) {
	l, err := s.leads.GetByID(ctx, leadID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, ErrLeadNotFound
		}
		return false, err
	}

	switch role {
	case domain.RoleAdmin:
		return true, nil
	case domain.RoleCustomer:
		return l.CustomerID == userID, nil
	case domain.RolePainter:
		return s.access.HasSucceededClaim(ctx, leadID, userID)
	}
	return false, nil
}

func (s *Service) SendMessage(ctx context.Context, senderID int64, role domain.UserRole, leadID int64, body string) (*domain.Message, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, ErrEmptyMessage
	}

	ok, err := s.IsParticipant(ctx, senderID, role, leadID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotParticipant
	}

	m := &domain.Message{
		LeadID:   leadID,
		SenderID: senderID,
		Body:     body,
	}
	if err := s.messages.Create(ctx, m); err != nil {
		return nil, err
	}

	s.hub.BroadcastToLead(leadID, &WSEvent{
		Type:    EventNewMessage,
		LeadID:  leadID,
		Payload: m,
	})
	s.notifyRecipients(ctx, senderID, leadID, body)
	return m, nil
}

// notifyRecipients leaves an in-app notification for every other
// thread participant; offline users catch up from there.
func (s *Service) notifyRecipients(ctx context.Context, senderID, leadID int64, body string) {
	l, err := s.leads.GetByID(ctx, leadID)
	if err != nil {
		s.loggerf("level=error msg=message recipients lookup failed lead_id=%d err=%v", leadID, err)
		return
	}

	if l.CustomerID != senderID {
		s.notifs.NotifyNewMessage(ctx, l.CustomerID, senderID, leadID, body)
	}

	claims, err := s.claims.ListByLead(ctx, leadID)
	if err != nil {
		s.loggerf("level=error msg=message claimants lookup failed lead_id=%d err=%v", leadID, err)
		return
	}
	for i := range claims {
		c := claims[i]
		if !c.GrantsAccess() || c.PainterID == senderID {
			continue
		}
		s.notifs.NotifyNewMessage(ctx, c.PainterID, senderID, leadID, body)
	}
}

func (s *Service) ListMessages(ctx context.Context, userID int64, role domain.UserRole, leadID int64, limit int) ([]domain.Message, error) {
	ok, err := s.IsParticipant(ctx, userID, role, leadID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotParticipant
	}
	return s.messages.ListByLead(ctx, leadID, limit)
}

// SubscribableLeads returns the lead threads the user belongs to, used
// to pre-subscribe a fresh WebSocket connection.
func (s *Service) SubscribableLeads(ctx context.Context, userID int64, role domain.UserRole) ([]int64, error) {
	switch role {
	case domain.RoleCustomer:
		return s.customerLeadIDs(ctx, userID)
	case domain.RolePainter:
		return s.painterLeadIDs(ctx, userID)
	}
	return nil, nil
}

func (s *Service) customerLeadIDs(ctx context.Context, customerID int64) ([]int64, error) {
	leads, err := s.leads.ListByCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}
	ids := make([]int64, 0, len(leads))
	for i := range leads {
		ids = append(ids, leads[i].ID)
	}
	return ids, nil
}

func (s *Service) painterLeadIDs(ctx context.Context, painterID int64) ([]int64, error) {
	claims, err := s.claims.ListByPainter(ctx, painterID)
	if err != nil {
		return nil, err
	}
	ids := make([]int64, 0, len(claims))
	for i := range claims {
		if claims[i].GrantsAccess() {
			ids = append(ids, claims[i].LeadID)
		}
	}
	return ids, nil
}
