package lead

import "errors"

var (
	ErrValidation        = errors.New("lead validation failed")
	ErrLeadNotFound      = errors.New("lead not found")
	ErrLeadNotOpen       = errors.New("lead is not open")
	ErrPaymentCapReached = errors.New("lead has reached its payment cap")
	ErrAlreadyClaimed    = errors.New("lead already claimed by this painter")
	ErrPainterNotActive  = errors.New("painter account is not active")
	ErrPaymentsDisabled  = errors.New("payments are currently disabled")
	ErrNoAccess          = errors.New("no access to this lead")
	ErrNotOwner          = errors.New("lead belongs to another customer")
	ErrInvalidTransition = errors.New("invalid lead status transition")

	// ErrReconcileRequired means the charge went through but the claim
	// row could not be written. The slot stays reserved; support has to
	// reconcile against the provider dashboard.
	ErrReconcileRequired = errors.New("payment succeeded but claim was not recorded")
)
