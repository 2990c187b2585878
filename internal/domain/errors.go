package domain

import "errors"

var (
	ErrInvalidStroke    = errors.New("invalid stroke segment")
	ErrNotJoined        = errors.New("connection has not joined a room")
	ErrRoomMismatch     = errors.New("event room differs from joined room")
	ErrEmptyRoomID      = errors.New("room id is empty")
	ErrRateLimited      = errors.New("rate limited")
	ErrUnknownRetention = errors.New("unknown retention policy")
)
