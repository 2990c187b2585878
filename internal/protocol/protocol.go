// Package protocol defines the JSON frames exchanged between a whiteboard
// client and the server. Every frame carries a "type" discriminator.
package protocol

import (
	"encoding/json"
	"fmt"

	"github.com/dkeye/Whiteboard/internal/core"
	"github.com/dkeye/Whiteboard/internal/domain"
)

type Type string

// Client to server.
const (
	TypeJoin   Type = "join"
	TypeStroke Type = "stroke"
	TypeClear  Type = "clear"
	TypeLeave  Type = "leave"
	TypePing   Type = "ping"
)

// Server to client. Stroke and clear reuse the inbound names.
const (
	TypeWelcome Type = "welcome"
	TypeHistory Type = "history"
	TypeMembers Type = "members"
	TypePong    Type = "pong"
)

type Envelope struct {
	Type Type `json:"type"`
}

type JoinRequest struct {
	Type        Type          `json:"type"`
	RoomID      domain.RoomID `json:"roomId"`
	DisplayName string        `json:"displayName"`
}

type StrokeMessage struct {
	Type   Type                 `json:"type"`
	RoomID domain.RoomID        `json:"roomId"`
	Data   domain.StrokeSegment `json:"data"`
}

type ClearRequest struct {
	Type   Type          `json:"type"`
	RoomID domain.RoomID `json:"roomId"`
}

type WelcomeMessage struct {
	Type         Type                `json:"type"`
	ConnectionID domain.ConnectionID `json:"connectionId"`
}

type HistoryMessage struct {
	Type    Type                   `json:"type"`
	History []domain.StrokeSegment `json:"history"`
}

type MembersMessage struct {
	Type    Type                 `json:"type"`
	Members []domain.Participant `json:"members"`
}

// Signal is a frame with no payload (clear broadcast, pong).
type Signal struct {
	Type Type `json:"type"`
}

func NewWelcome(id domain.ConnectionID) WelcomeMessage {
	return WelcomeMessage{Type: TypeWelcome, ConnectionID: id}
}

func NewHistory(history []domain.StrokeSegment) HistoryMessage {
	if history == nil {
		history = []domain.StrokeSegment{}
	}
	return HistoryMessage{Type: TypeHistory, History: history}
}

func NewMembers(members []domain.Participant) MembersMessage {
	if members == nil {
		members = []domain.Participant{}
	}
	return MembersMessage{Type: TypeMembers, Members: members}
}

func NewStroke(room domain.RoomID, seg domain.StrokeSegment) StrokeMessage {
	return StrokeMessage{Type: TypeStroke, RoomID: room, Data: seg}
}

func NewClear() Signal { return Signal{Type: TypeClear} }

func NewPong() Signal { return Signal{Type: TypePong} }

// PeekType reads only the discriminator.
func PeekType(data []byte) (Type, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return "", fmt.Errorf("decode envelope: %w", err)
	}
	return env.Type, nil
}

// Decode unmarshals a full frame into v.
func Decode(data []byte, v any) error {
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode payload: %w", err)
	}
	return nil
}

func Encode(v any) (core.Frame, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode frame: %w", err)
	}
	return core.Frame(b), nil
}
