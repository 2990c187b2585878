package orch

import (
	"slices"

	"github.com/rs/zerolog/log"
	"github.com/samber/lo"

	"github.com/dkeye/Whiteboard/internal/domain"
	"github.com/dkeye/Whiteboard/internal/protocol"
)

// Join moves the connection into roomID. A connection that is already
// joined leaves its current room first.
func (o *Orchestrator) Join(id domain.ConnectionID, roomID domain.RoomID, displayName string) error {
	if roomID == "" {
		return domain.ErrEmptyRoomID
	}
	if !o.Limiter.Allow(id) {
		return domain.ErrRateLimited
	}
	return o.serialize(func(d *dropped) error {
		if from, ok := o.Sessions.RoomOf(id); ok {
			o.leave(id, d)
			log.Info().Str("module", "orch").Str("conn", string(id)).Str("from_room", string(from)).Msg("left for rejoin")
		}

		history, members := o.Rooms.Join(roomID, id, displayName)
		o.Sessions.UpdateRoom(id, roomID)

		o.publish([]domain.ConnectionID{id}, protocol.NewHistory(history), d)
		o.publish(connectionIDs(members), protocol.NewMembers(members), d)
		return nil
	})
}

// Stroke appends seg to the joined room and relays it to everyone else.
func (o *Orchestrator) Stroke(id domain.ConnectionID, roomID domain.RoomID, seg domain.StrokeSegment) error {
	if err := seg.Validate(); err != nil {
		return err
	}
	return o.serialize(func(d *dropped) error {
		if err := o.checkJoined(id, roomID); err != nil {
			return err
		}
		others, ok := o.Rooms.AppendStroke(roomID, id, seg)
		if !ok {
			return domain.ErrNotJoined
		}
		o.publish(connectionIDs(others), protocol.NewStroke(roomID, seg), d)
		return nil
	})
}

// Clear empties the room's history and signals every member, the sender too.
func (o *Orchestrator) Clear(id domain.ConnectionID, roomID domain.RoomID) error {
	return o.serialize(func(d *dropped) error {
		if err := o.checkJoined(id, roomID); err != nil {
			return err
		}
		members, ok := o.Rooms.Clear(roomID)
		if !ok {
			return domain.ErrNotJoined
		}
		o.publish(connectionIDs(members), protocol.NewClear(), d)
		return nil
	})
}

// Leave returns the connection to the not-joined state without closing it.
func (o *Orchestrator) Leave(id domain.ConnectionID) error {
	return o.serialize(func(d *dropped) error {
		if _, ok := o.Sessions.RoomOf(id); !ok {
			return domain.ErrNotJoined
		}
		o.leave(id, d)
		return nil
	})
}

func (o *Orchestrator) checkJoined(id domain.ConnectionID, roomID domain.RoomID) error {
	joined, ok := o.Sessions.RoomOf(id)
	if !ok {
		return domain.ErrNotJoined
	}
	if joined != roomID {
		return domain.ErrRoomMismatch
	}
	return nil
}

// leave must run under the protocol lock.
func (o *Orchestrator) leave(id domain.ConnectionID, d *dropped) {
	affected := o.Rooms.Leave(id)
	o.Sessions.RemoveRoom(id)

	rooms := lo.Keys(affected)
	slices.Sort(rooms)
	for _, roomID := range rooms {
		members := affected[roomID]
		o.publish(connectionIDs(members), protocol.NewMembers(members), d)
	}
}
