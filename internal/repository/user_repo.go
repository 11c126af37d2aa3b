package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"paintmarket/internal/domain"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, u *domain.User) error {
	return r.db.WithContext(ctx).Create(u).Error
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	var u domain.User
	if err := r.db.WithContext(ctx).First(&u, id).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	var u domain.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var cnt int64
	if err := r.db.WithContext(ctx).Model(&domain.User{}).Where("email = ?", email).Count(&cnt).Error; err != nil {
		return false, err
	}
	return cnt > 0, nil
}

func (r *UserRepository) Update(ctx context.Context, u *domain.User) error {
	return r.db.WithContext(ctx).Save(u).Error
}

func (r *UserRepository) UpdatePainterStatus(ctx context.Context, painterID int64, status domain.PainterStatus, reason string) error {
	updates := map[string]interface{}{
		"painter_status": status,
		"suspend_reason": reason,
	}
	if status == domain.PainterActive {
		updates["verified_at"] = time.Now().UTC()
		updates["suspend_reason"] = ""
	}
	res := r.db.WithContext(ctx).
		Model(&domain.User{}).
		Where("id = ? AND role = ?", painterID, domain.RolePainter).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *UserRepository) ListPainters(ctx context.Context, status *domain.PainterStatus, limit, offset int) ([]domain.User, error) {
	q := r.db.WithContext(ctx).Where("role = ?", domain.RolePainter)
	if status != nil {
		q = q.Where("painter_status = ?", *status)
	}
	var painters []domain.User
	if err := q.Order("created_at DESC").Limit(limit).Offset(offset).Find(&painters).Error; err != nil {
		return nil, err
	}
	return painters, nil
}
