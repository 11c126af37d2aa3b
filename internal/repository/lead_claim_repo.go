package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"paintmarket/internal/domain"
)

type LeadClaimRepository struct {
	db *gorm.DB
}

func NewLeadClaimRepository(db *gorm.DB) *LeadClaimRepository {
	return &LeadClaimRepository{db: db}
}

func (r *LeadClaimRepository) Create(ctx context.Context, c *domain.LeadClaim) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *LeadClaimRepository) GetByID(ctx context.Context, id int64) (*domain.LeadClaim, error) {
	var c domain.LeadClaim
	if err := r.db.WithContext(ctx).First(&c, id).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *LeadClaimRepository) GetByLeadAndPainter(ctx context.Context, leadID, painterID int64) (*domain.LeadClaim, error) {
	var c domain.LeadClaim
	err := r.db.WithContext(ctx).
		Where("lead_id = ? AND painter_id = ?", leadID, painterID).
		First(&c).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

func (r *LeadClaimRepository) GetByIntentID(ctx context.Context, intentID string) (*domain.LeadClaim, error) {
	var c domain.LeadClaim
	err := r.db.WithContext(ctx).
		Where("payment_intent_id = ?", intentID).
		First(&c).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *LeadClaimRepository) HasSucceededClaim(ctx context.Context, leadID, painterID int64) (bool, error) {
	var cnt int64
	err := r.db.WithContext(ctx).
		Model(&domain.LeadClaim{}).
		Where("lead_id = ? AND painter_id = ? AND payment_status = ?", leadID, painterID, domain.ClaimPaymentSucceeded).
		Count(&cnt).Error
	if err != nil {
		return false, err
	}
	return cnt > 0, nil
}

// RetryFailed rearms an existing failed claim for a new charge attempt.
// The (lead, painter) unique index means failed claims are reused, not
// duplicated.
func (r *LeadClaimRepository) RetryFailed(ctx context.Context, id int64, intentID string, amount float64, paymentNumber int) error {
	res := r.db.WithContext(ctx).
		Model(&domain.LeadClaim{}).
		Where("id = ? AND payment_status = ?", id, domain.ClaimPaymentFailed).
		Updates(map[string]interface{}{
			"payment_intent_id": intentID,
			"amount":            amount,
			"payment_number":    paymentNumber,
			"payment_status":    domain.ClaimPaymentPending,
			"failure_reason":    "",
			"paid_at":           nil,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// MarkSucceededIdempotent flips a claim to succeeded exactly once.
// Webhook redelivery of the same event finds the row already succeeded
// and reports changed=false without touching anything.
func (r *LeadClaimRepository) MarkSucceededIdempotent(ctx context.Context, intentID, rawBody string, paidAt time.Time) (bool, error) {
	var changed bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var c domain.LeadClaim
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("payment_intent_id = ?", intentID).
			First(&c).Error; err != nil {
			return err
		}
		if c.PaymentStatus == domain.ClaimPaymentSucceeded {
			changed = false
			return nil
		}
		res := tx.Model(&domain.LeadClaim{}).
			Where("payment_intent_id = ?", intentID).
			Updates(map[string]interface{}{
				"payment_status": domain.ClaimPaymentSucceeded,
				"event_raw_body": rawBody,
				"paid_at":        paidAt,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return errors.New("claim row not updated")
		}
		changed = true
		return nil
	})
	return changed, err
}

// MarkFailed records a terminal charge failure. Succeeded claims are
// never downgraded.
func (r *LeadClaimRepository) MarkFailed(ctx context.Context, intentID, rawBody, reason string) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&domain.LeadClaim{}).
		Where("payment_intent_id = ? AND payment_status <> ?", intentID, domain.ClaimPaymentSucceeded).
		Updates(map[string]interface{}{
			"payment_status": domain.ClaimPaymentFailed,
			"event_raw_body": rawBody,
			"failure_reason": reason,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *LeadClaimRepository) ListByLead(ctx context.Context, leadID int64) ([]domain.LeadClaim, error) {
	var claims []domain.LeadClaim
	err := r.db.WithContext(ctx).
		Where("lead_id = ?", leadID).
		Order("created_at ASC").
		Find(&claims).Error
	if err != nil {
		return nil, err
	}
	return claims, nil
}

func (r *LeadClaimRepository) ListByPainter(ctx context.Context, painterID int64) ([]domain.LeadClaim, error) {
	var claims []domain.LeadClaim
	err := r.db.WithContext(ctx).
		Where("painter_id = ?", painterID).
		Order("created_at DESC").
		Find(&claims).Error
	if err != nil {
		return nil, err
	}
	return claims, nil
}
