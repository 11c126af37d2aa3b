package chat

import "errors"

var (
	ErrLeadNotFound   = errors.New("lead not found")
	ErrNotParticipant = errors.New("not a participant of this lead thread")
	ErrEmptyMessage   = errors.New("message body is empty")
)
