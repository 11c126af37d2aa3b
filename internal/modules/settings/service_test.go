package settings

import (
	"context"
	"errors"
	"testing"
)

type mockSettingRepo struct {
	values  map[string]string
	upserts map[string]string
}

func (m *mockSettingRepo) GetAll(ctx context.Context) (map[string]string, error) {
	return m.values, nil
}

func (m *mockSettingRepo) Upsert(ctx context.Context, key, value string) error {
	if m.upserts == nil {
		m.upserts = make(map[string]string)
	}
	m.upserts[key] = value
	return nil
}

func TestLoadUsesDefaultsForMissingKeys(t *testing.T) {
	svc := NewService(&mockSettingRepo{values: map[string]string{}})

	snap, err := svc.Load(context.Background())
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if snap.LeadPrice != 15.00 || snap.MaxPaymentsPerLead != 3 {
		t.Fatalf("unexpected defaults: %+v", snap)
	}
	if !snap.PaymentsEnabled {
		t.Fatalf("payments default to enabled")
	}
}

func TestLoadParsesStoredValues(t *testing.T) {
	svc := NewService(&mockSettingRepo{values: map[string]string{
		KeyLeadPrice:          "25.50",
		KeyMaxPaymentsPerLead: "5",
		KeyBidMinAmount:       "100",
		KeyPaymentsEnabled:    "false",
	}})

	snap, err := svc.Load(context.Background())
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if snap.LeadPrice != 25.50 || snap.MaxPaymentsPerLead != 5 || snap.BidMinAmount != 100 {
		t.Fatalf("stored values not applied: %+v", snap)
	}
	if snap.PaymentsEnabled {
		t.Fatalf("payments_enabled=false not applied")
	}
}

func TestLoadIgnoresMalformedValues(t *testing.T) {
	svc := NewService(&mockSettingRepo{values: map[string]string{
		KeyLeadPrice:          "not-a-number",
		KeyMaxPaymentsPerLead: "-2",
	}})

	snap, err := svc.Load(context.Background())
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if snap.LeadPrice != 15.00 || snap.MaxPaymentsPerLead != 3 {
		t.Fatalf("malformed values must fall back to defaults: %+v", snap)
	}
}

func TestUpdateRejectsUnknownKeys(t *testing.T) {
	repo := &mockSettingRepo{values: map[string]string{}}
	svc := NewService(repo)

	err := svc.Update(context.Background(), map[string]string{"mystery_key": "1"})
	if !errors.Is(err, ErrUnknownKey) {
		t.Fatalf("expected ErrUnknownKey, got %v", err)
	}
	if len(repo.upserts) != 0 {
		t.Fatalf("nothing may be written when any key is unknown")
	}
}

func TestUpdateWritesKnownKeys(t *testing.T) {
	repo := &mockSettingRepo{values: map[string]string{}}
	svc := NewService(repo)

	err := svc.Update(context.Background(), map[string]string{
		KeyLeadPrice:       "20.00",
		KeyPaymentsEnabled: "false",
	})
	if err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	if repo.upserts[KeyLeadPrice] != "20.00" || repo.upserts[KeyPaymentsEnabled] != "false" {
		t.Fatalf("expected both keys written, got %+v", repo.upserts)
	}
}
