package payment

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"paintmarket/internal/domain"
)

const (
	eventChargeSucceeded = "charge.succeeded"
	eventChargeFailed    = "charge.failed"
)

// Service is the payment gateway: it wraps the provider client for
// charges and card vaulting, and processes the provider's signed
// webhook events. Provider failures surface as ErrPaymentFailed with
// the provider's reason; no automatic retries.
type Service struct {
	client  chargeClient
	claims  claimRepo
	leads   leadSlotReleaser
	methods methodRepo
	notifs  notifier
	loggerf func(format string, args ...interface{})

	webhookSecret  string
	publishableKey string
	currency       string
}

func NewService(client chargeClient, claims claimRepo, leads leadSlotReleaser, methods methodRepo, notifs notifier, loggerf func(format string, args ...interface{})) *Service {
	if loggerf == nil {
		loggerf = func(string, ...interface{}) {}
	}
	return &Service{
		client:         client,
		claims:         claims,
		leads:          leads,
		methods:        methods,
		notifs:         notifs,
		loggerf:        loggerf,
		webhookSecret:  os.Getenv("PAYMENT_WEBHOOK_SECRET"),
		publishableKey: os.Getenv("PAYMENT_PUBLISHABLE_KEY"),
		currency:       envOrDefault("PAYMENT_CURRENCY", "gbp"),
	}
}

func envOrDefault(name, def string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return def
}

type ChargeResult struct {
	IntentID string
	Status   domain.ClaimPaymentStatus
}

// CreateCharge charges the painter's stored payment method for lead
// access. The method must belong to the painter.
func (s *Service) CreateCharge(ctx context.Context, painterID int64, amount float64, paymentMethodID int64, leadID int64) (*ChargeResult, error) {
	method, err := s.methods.GetByID(ctx, paymentMethodID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMethodNotFound
		}
		return nil, err
	}
	if method.UserID != painterID {
		return nil, ErrMethodNotFound
	}

	charge, err := s.client.CreateCharge(ctx, ChargeRequest{
		Amount:        amount,
		Currency:      s.currency,
		PaymentMethod: method.ProviderRef,
		Description:   fmt.Sprintf("Lead access purchase (lead %d)", leadID),
		Metadata: map[string]string{
			"lead_id":    fmt.Sprintf("%d", leadID),
			"painter_id": fmt.Sprintf("%d", painterID),
		},
		IdempotencyKey: uuid.NewString(),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPaymentFailed, err)
	}

	switch charge.Status {
	case "succeeded":
		return &ChargeResult{IntentID: charge.ID, Status: domain.ClaimPaymentSucceeded}, nil
	case "pending":
		return &ChargeResult{IntentID: charge.ID, Status: domain.ClaimPaymentPending}, nil
	default:
		reason := charge.FailureMessage
		if reason == "" {
			reason = "charge was declined"
		}
		return nil, fmt.Errorf("%w: %s", ErrPaymentFailed, reason)
	}
}

func (s *Service) SavePaymentMethod(ctx context.Context, userID int64, cardToken string) (*domain.PaymentMethod, error) {
	pm, err := s.client.CreatePaymentMethod(ctx, cardToken, fmt.Sprintf("user_%d", userID))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPaymentFailed, err)
	}

	method := &domain.PaymentMethod{
		UserID:      userID,
		ProviderRef: pm.ID,
		Brand:       pm.Card.Brand,
		Last4:       pm.Card.Last4,
	}
	if err := s.methods.Create(ctx, method); err != nil {
		return nil, err
	}
	return method, nil
}

func (s *Service) ListPaymentMethods(ctx context.Context, userID int64) ([]domain.PaymentMethod, error) {
	return s.methods.ListByUser(ctx, userID)
}

func (s *Service) RemovePaymentMethod(ctx context.Context, userID, methodID int64) error {
	method, err := s.methods.GetByID(ctx, methodID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrMethodNotFound
		}
		return err
	}
	if method.UserID != userID {
		return ErrMethodNotFound
	}

	// Provider-side detach is best effort; the local row is the source
	// of truth for what the painter can select.
	if err := s.client.DeletePaymentMethod(ctx, method.ProviderRef); err != nil {
		s.loggerf("level=error msg=provider detach failed method_id=%d err=%v", methodID, err)
	}

	deleted, err := s.methods.DeleteOwned(ctx, methodID, userID)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrMethodNotFound
	}
	return nil
}

func (s *Service) PublishableKey() string { return s.publishableKey }

// VerifyWebhookSignature checks the HMAC-SHA256 signature the provider
// puts on every event delivery. Header format: "sha256=<hex>".
func (s *Service) VerifyWebhookSignature(body []byte, signatureHeader string) bool {
	if s.webhookSecret == "" || signatureHeader == "" {
		return false
	}
	mac := hmac.New(sha256.New, []byte(s.webhookSecret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	got := strings.TrimPrefix(signatureHeader, "sha256=")
	return hmac.Equal([]byte(got), []byte(expected))
}

type webhookEvent struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data struct {
		PaymentIntentID string  `json:"payment_intent_id"`
		Amount          float64 `json:"amount"`
		FailureMessage  string  `json:"failure_message,omitempty"`
	} `json:"data"`
}

// HandleWebhookEvent finalizes a payment out of band. Processing is
// idempotent: redelivered events find the claim already in its
// terminal state and change nothing.
func (s *Service) HandleWebhookEvent(ctx context.Context, body []byte, signatureHeader string) error {
	if !s.VerifyWebhookSignature(body, signatureHeader) {
		return ErrInvalidSignature
	}

	var event webhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return fmt.Errorf("malformed event payload: %w", err)
	}
	if event.Data.PaymentIntentID == "" {
		return ErrUnknownIntent
	}

	claim, err := s.claims.GetByIntentID(ctx, event.Data.PaymentIntentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUnknownIntent
		}
		return err
	}

	switch event.Type {
	case eventChargeSucceeded:
		changed, err := s.claims.MarkSucceededIdempotent(ctx, event.Data.PaymentIntentID, string(body), time.Now().UTC())
		if err != nil {
			return err
		}
		if !changed {
			s.loggerf("level=info msg=webhook replay ignored event_id=%s intent=%s", event.ID, event.Data.PaymentIntentID)
			return nil
		}
		s.loggerf("level=info msg=payment confirmed via webhook intent=%s lead_id=%d painter_id=%d", event.Data.PaymentIntentID, claim.LeadID, claim.PainterID)
		s.notifs.NotifyPaymentConfirmed(ctx, claim.PainterID, claim.LeadID)
		return nil

	case eventChargeFailed:
		failed, err := s.claims.MarkFailed(ctx, event.Data.PaymentIntentID, string(body), event.Data.FailureMessage)
		if err != nil {
			return err
		}
		if failed {
			// Give the reserved claim slot back so another painter can buy in.
			if rerr := s.leads.ReleaseClaimSlot(ctx, claim.LeadID); rerr != nil {
				s.loggerf("level=error msg=failed to release claim slot lead_id=%d err=%v", claim.LeadID, rerr)
			}
		}
		return nil

	default:
		s.loggerf("level=info msg=ignoring webhook event type=%s event_id=%s", event.Type, event.ID)
		return nil
	}
}
