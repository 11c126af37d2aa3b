package repository

import (
	"context"

	"gorm.io/gorm"

	"paintmarket/internal/domain"
)

type LeadRepository struct {
	db *gorm.DB
}

func NewLeadRepository(db *gorm.DB) *LeadRepository {
	return &LeadRepository{db: db}
}

func (r *LeadRepository) Create(ctx context.Context, l *domain.Lead) error {
	return r.db.WithContext(ctx).Create(l).Error
}

func (r *LeadRepository) GetByID(ctx context.Context, id int64) (*domain.Lead, error) {
	var l domain.Lead
	if err := r.db.WithContext(ctx).First(&l, id).Error; err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *LeadRepository) ListOpen(ctx context.Context, limit, offset int) ([]domain.Lead, error) {
	var leads []domain.Lead
	err := r.db.WithContext(ctx).
		Where("status = ?", domain.LeadOpen).
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&leads).Error
	if err != nil {
		return nil, err
	}
	return leads, nil
}

func (r *LeadRepository) ListByCustomer(ctx context.Context, customerID int64) ([]domain.Lead, error) {
	var leads []domain.Lead
	err := r.db.WithContext(ctx).
		Where("customer_id = ?", customerID).
		Order("created_at DESC").
		Find(&leads).Error
	if err != nil {
		return nil, err
	}
	return leads, nil
}

// ReserveClaimSlot takes one paid-claim slot on the lead with a single
// conditional increment, so concurrent claims can never push
// payment_count past max_payments. Returns false when no slot is left
// or the lead stopped accepting claims.
func (r *LeadRepository) ReserveClaimSlot(ctx context.Context, leadID int64) (*domain.Lead, bool, error) {
	res := r.db.WithContext(ctx).
		Model(&domain.Lead{}).
		Where("id = ? AND status = ? AND payment_active = ? AND payment_count < max_payments",
			leadID, domain.LeadOpen, true).
		UpdateColumn("payment_count", gorm.Expr("payment_count + 1"))
	if res.Error != nil {
		return nil, false, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, false, nil
	}

	lead, err := r.GetByID(ctx, leadID)
	if err != nil {
		return nil, false, err
	}
	if lead.PaymentCount >= lead.MaxPayments {
		if derr := r.DeactivatePayments(ctx, leadID); derr != nil {
			return nil, false, derr
		}
		lead.PaymentActive = false
	}
	return lead, true, nil
}

// ReleaseClaimSlot undoes a reservation after a failed charge and
// reopens claiming if the lead dropped back under the cap.
func (r *LeadRepository) ReleaseClaimSlot(ctx context.Context, leadID int64) error {
	res := r.db.WithContext(ctx).
		Model(&domain.Lead{}).
		Where("id = ? AND payment_count > 0", leadID).
		UpdateColumn("payment_count", gorm.Expr("payment_count - 1"))
	if res.Error != nil {
		return res.Error
	}
	return r.db.WithContext(ctx).
		Model(&domain.Lead{}).
		Where("id = ? AND status = ? AND payment_count < max_payments", leadID, domain.LeadOpen).
		UpdateColumn("payment_active", true).Error
}

func (r *LeadRepository) DeactivatePayments(ctx context.Context, leadID int64) error {
	return r.db.WithContext(ctx).
		Model(&domain.Lead{}).
		Where("id = ?", leadID).
		UpdateColumn("payment_active", false).Error
}

// AssignPainter moves an open lead to assigned. The conditional WHERE
// keeps status from ever regressing or double-assigning.
func (r *LeadRepository) AssignPainter(ctx context.Context, leadID, painterID int64) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&domain.Lead{}).
		Where("id = ? AND status = ?", leadID, domain.LeadOpen).
		Updates(map[string]interface{}{
			"status":              domain.LeadAssigned,
			"assigned_painter_id": painterID,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *LeadRepository) Complete(ctx context.Context, leadID int64) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&domain.Lead{}).
		Where("id = ? AND status = ?", leadID, domain.LeadAssigned).
		Update("status", domain.LeadClosed)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
