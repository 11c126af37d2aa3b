package settings

import (
	"context"
	"errors"
	"os"
	"strconv"
)

// Setting keys understood by the marketplace. Anything else in the
// settings table is ignored by Load and rejected by Update.
const (
	KeyLeadPrice          = "lead_price"
	KeyMaxPaymentsPerLead = "max_payments_per_lead"
	KeyBidMinAmount       = "bid_min_amount"
	KeyBidMaxAmount       = "bid_max_amount"
	KeyBidMessageMinLen   = "bid_message_min_len"
	KeyBidMessageMaxLen   = "bid_message_max_len"
	KeyPaymentsEnabled    = "payments_enabled"
	KeyNotifyEnabled      = "notifications_enabled"
	KeyAdminEmail         = "admin_email"
)

var ErrUnknownKey = errors.New("unknown setting key")

// Snapshot is an immutable view of the settings table, loaded once per
// request and passed into services instead of being read ad hoc.
type Snapshot struct {
	LeadPrice            float64
	MaxPaymentsPerLead   int
	BidMinAmount         float64
	BidMaxAmount         float64
	BidMessageMinLen     int
	BidMessageMaxLen     int
	PaymentsEnabled      bool
	NotificationsEnabled bool
	AdminEmail           string
}

type settingRepo interface {
	GetAll(ctx context.Context) (map[string]string, error)
	Upsert(ctx context.Context, key, value string) error
}

type Service struct {
	settings settingRepo
}

func NewService(settings settingRepo) *Service {
	return &Service{settings: settings}
}

// Defaults returns the snapshot used when a key is absent from the
// table. Admin email falls back to the environment.
func Defaults() Snapshot {
	return Snapshot{
		LeadPrice:            15.00,
		MaxPaymentsPerLead:   3,
		BidMinAmount:         50.00,
		BidMaxAmount:         100000.00,
		BidMessageMinLen:     10,
		BidMessageMaxLen:     2000,
		PaymentsEnabled:      true,
		NotificationsEnabled: true,
		AdminEmail:           os.Getenv("ADMIN_NOTIFICATION_EMAIL"),
	}
}

func (s *Service) Load(ctx context.Context) (*Snapshot, error) {
	values, err := s.settings.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	snap := Defaults()
	if v, ok := values[KeyLeadPrice]; ok {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 {
			snap.LeadPrice = f
		}
	}
	if v, ok := values[KeyMaxPaymentsPerLead]; ok {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			snap.MaxPaymentsPerLead = n
		}
	}
	if v, ok := values[KeyBidMinAmount]; ok {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f >= 0 {
			snap.BidMinAmount = f
		}
	}
	if v, ok := values[KeyBidMaxAmount]; ok {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 {
			snap.BidMaxAmount = f
		}
	}
	if v, ok := values[KeyBidMessageMinLen]; ok {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			snap.BidMessageMinLen = n
		}
	}
	if v, ok := values[KeyBidMessageMaxLen]; ok {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			snap.BidMessageMaxLen = n
		}
	}
	if v, ok := values[KeyPaymentsEnabled]; ok {
		if b, err := strconv.ParseBool(v); err == nil {
			snap.PaymentsEnabled = b
		}
	}
	if v, ok := values[KeyNotifyEnabled]; ok {
		if b, err := strconv.ParseBool(v); err == nil {
			snap.NotificationsEnabled = b
		}
	}
	if v, ok := values[KeyAdminEmail]; ok && v != "" {
		snap.AdminEmail = v
	}
	return &snap, nil
}

func (s *Service) Update(ctx context.Context, updates map[string]string) error {
	for key := range updates {
		if !isKnownKey(key) {
			return ErrUnknownKey
		}
	}
	for key, value := range updates {
		if err := s.settings.Upsert(ctx, key, value); err != nil {
			return err
		}
	}
	return nil
}

func isKnownKey(key string) bool {
	switch key {
	case KeyLeadPrice, KeyMaxPaymentsPerLead,
		KeyBidMinAmount, KeyBidMaxAmount,
		KeyBidMessageMinLen, KeyBidMessageMaxLen,
		KeyPaymentsEnabled, KeyNotifyEnabled, KeyAdminEmail:
		return true
	}
	return false
}
