package bid

import "errors"

var (
	ErrBidNotFound    = errors.New("bid not found")
	ErrLeadNotFound   = errors.New("lead not found")
	ErrLeadNotOpen    = errors.New("lead is not open for bidding")
	ErrNoLeadAccess   = errors.New("lead access has not been purchased")
	ErrDuplicateBid   = errors.New("an active bid already exists for this lead")
	ErrNotBidOwner    = errors.New("bid belongs to another painter")
	ErrNotLeadOwner   = errors.New("lead belongs to another customer")
	ErrNotPending     = errors.New("bid is not pending")
	ErrCannotResubmit = errors.New("bid cannot be resubmitted")
	ErrValidation     = errors.New("bid validation failed")
)
