package domain

// RoomID is the caller-supplied room key. It is opaque and never validated.
type RoomID string

// ConnectionID identifies one live transport connection.
type ConnectionID string
