// Package domain holds the whiteboard value types and sentinel errors.
package domain

// Participant is one connected session in one room.
// It is created on join and dropped on leave; never mutated otherwise.
type Participant struct {
	ConnectionID ConnectionID `json:"connectionId"`
	DisplayName  string       `json:"displayName"`
}

// NewParticipant is a tiny helper to avoid ad-hoc struct literals in adapters.
func NewParticipant(id ConnectionID, displayName string) Participant {
	return Participant{ConnectionID: id, DisplayName: displayName}
}
