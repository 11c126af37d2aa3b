package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"paintmarket/internal/domain"
)

type BidRepository struct {
	db *gorm.DB
}

func NewBidRepository(db *gorm.DB) *BidRepository {
	return &BidRepository{db: db}
}

func (r *BidRepository) Create(ctx context.Context, b *domain.Bid) error {
	return r.db.WithContext(ctx).Create(b).Error
}

func (r *BidRepository) GetByID(ctx context.Context, id int64) (*domain.Bid, error) {
	var b domain.Bid
	if err := r.db.WithContext(ctx).First(&b, id).Error; err != nil {
		return nil, err
	}
	return &b, nil
}

// GetActiveByLeadAndPainter returns the painter's non-withdrawn bid on
// the lead, or nil when none exists.
func (r *BidRepository) GetActiveByLeadAndPainter(ctx context.Context, leadID, painterID int64) (*domain.Bid, error) {
	var b domain.Bid
	err := r.db.WithContext(ctx).
		Where("lead_id = ? AND painter_id = ? AND status <> ?", leadID, painterID, domain.BidWithdrawn).
		First(&b).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &b, nil
}

func (r *BidRepository) ListByLead(ctx context.Context, leadID int64) ([]domain.Bid, error) {
	var bids []domain.Bid
	err := r.db.WithContext(ctx).
		Where("lead_id = ?", leadID).
		Order("created_at ASC").
		Find(&bids).Error
	if err != nil {
		return nil, err
	}
	return bids, nil
}

func (r *BidRepository) ListByPainter(ctx context.Context, painterID int64) ([]domain.Bid, error) {
	var bids []domain.Bid
	err := r.db.WithContext(ctx).
		Where("painter_id = ?", painterID).
		Order("created_at DESC").
		Find(&bids).Error
	if err != nil {
		return nil, err
	}
	return bids, nil
}

// UpdateStatusFrom transitions a bid only out of the expected current
// status, so stale writers lose.
func (r *BidRepository) UpdateStatusFrom(ctx context.Context, id int64, from, to domain.BidStatus) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&domain.Bid{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// Resubmit resets a pending or rejected bid back to pending with the
// new amount. The existing row is mutated; no second bid row is ever
// created for the pair.
func (r *BidRepository) Resubmit(ctx context.Context, id int64, amount float64) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&domain.Bid{}).
		Where("id = ? AND status IN ?", id, []domain.BidStatus{domain.BidPending, domain.BidRejected}).
		Updates(map[string]interface{}{
			"amount":     amount,
			"status":     domain.BidPending,
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// RejectOthers marks every pending bid on the lead except the accepted
// one as rejected.
func (r *BidRepository) RejectOthers(ctx context.Context, leadID, acceptedBidID int64) error {
	return r.db.WithContext(ctx).
		Model(&domain.Bid{}).
		Where("lead_id = ? AND id <> ? AND status = ?", leadID, acceptedBidID, domain.BidPending).
		Update("status", domain.BidRejected).Error
}
