package core

import (
	"slices"

	"github.com/samber/lo"

	"github.com/dkeye/Whiteboard/internal/domain"
)

// Room holds the ordered membership set and the append-only stroke history.
// It is not safe for concurrent use; the owner serializes every call.
type Room struct {
	id      domain.RoomID
	members []domain.Participant
	byConn  map[domain.ConnectionID]struct{}
	history []domain.StrokeSegment
}

func NewRoom(id domain.RoomID) *Room {
	return &Room{
		id:     id,
		byConn: make(map[domain.ConnectionID]struct{}),
	}
}

func (r *Room) ID() domain.RoomID { return r.id }

func (r *Room) MemberCount() int { return len(r.members) }

func (r *Room) HistoryLen() int { return len(r.history) }

func (r *Room) HasMember(id domain.ConnectionID) bool {
	_, ok := r.byConn[id]
	return ok
}

// AddMember appends p in join order. A connection already present is left
// where it is and false is returned.
func (r *Room) AddMember(p domain.Participant) bool {
	if r.HasMember(p.ConnectionID) {
		return false
	}
	r.byConn[p.ConnectionID] = struct{}{}
	r.members = append(r.members, p)
	return true
}

func (r *Room) RemoveMember(id domain.ConnectionID) bool {
	if !r.HasMember(id) {
		return false
	}
	delete(r.byConn, id)
	r.members = slices.DeleteFunc(r.members, func(p domain.Participant) bool {
		return p.ConnectionID == id
	})
	return true
}

// Members returns a copy of the membership list in join order.
func (r *Room) Members() []domain.Participant {
	return append(make([]domain.Participant, 0, len(r.members)), r.members...)
}

// Others returns every member except the given connection, in join order.
func (r *Room) Others(except domain.ConnectionID) []domain.Participant {
	return lo.Filter(r.members, func(p domain.Participant, _ int) bool {
		return p.ConnectionID != except
	})
}

func (r *Room) Append(seg domain.StrokeSegment) {
	r.history = append(r.history, seg)
}

func (r *Room) Truncate() {
	r.history = nil
}

// History returns a copy of the log in replay order. It is never nil.
func (r *Room) History() []domain.StrokeSegment {
	out := make([]domain.StrokeSegment, len(r.history))
	copy(out, r.history)
	return out
}
