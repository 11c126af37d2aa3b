package auth

import "paintmarket/internal/domain"

type RegisterCustomerRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8,max=72"`
	Name     string `json:"name" binding:"required,min=2,max=100"`
	Phone    string `json:"phone" binding:"omitempty,min=7,max=20"`
}

type RegisterPainterRequest struct {
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required,min=8,max=72"`
	Name        string `json:"name" binding:"required,min=2,max=100"`
	Phone       string `json:"phone" binding:"omitempty,min=7,max=20"`
	CompanyName string `json:"company_name" binding:"required,min=2,max=150"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type AuthResponse struct {
	Token string       `json:"token"`
	User  *domain.User `json:"user"`
}

type SuspendPainterRequest struct {
	Reason string `json:"reason" binding:"required,min=3"`
}
