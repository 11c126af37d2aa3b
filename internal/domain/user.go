package domain

import "time"

type UserRole string

const (
	RoleCustomer UserRole = "customer"
	RolePainter  UserRole = "painter"
	RoleAdmin    UserRole = "admin"
)

type PainterStatus string

const (
	PainterPending   PainterStatus = "pending"
	PainterActive    PainterStatus = "active"
	PainterSuspended PainterStatus = "suspended"
)

type User struct {
	ID            int64         `json:"id" gorm:"primaryKey"`
	Email         string        `json:"email" gorm:"uniqueIndex;not null" validate:"required,email"`
	PasswordHash  string        `json:"-"`
	Role          UserRole      `json:"role" gorm:"type:varchar(20);index"`
	Name          string        `json:"name"`
	Phone         string        `json:"phone,omitempty"`
	CompanyName   string        `json:"company_name,omitempty"`
	PainterStatus PainterStatus `json:"painter_status,omitempty" gorm:"type:varchar(20)"`
	VerifiedAt    *time.Time    `json:"verified_at,omitempty"`
	SuspendReason string        `json:"suspend_reason,omitempty" gorm:"type:text"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

func (User) TableName() string { return "users" }

// CanClaim reports whether the painter account is allowed to buy lead access.
func (u *User) CanClaim() bool {
	return u.Role == RolePainter && u.PainterStatus == PainterActive
}
