package app

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/Whiteboard/internal/core"
	"github.com/dkeye/Whiteboard/internal/domain"
)

type sessionEntry struct {
	Room   domain.RoomID
	Client string
	Conn   core.SignalConnection
	Cancel context.CancelFunc
}

// Sessions is the directory of live connections and the room each one is
// joined to. An empty Room means the connection has not joined yet.
type Sessions struct {
	mu       sync.RWMutex
	sessions map[domain.ConnectionID]*sessionEntry
}

func NewSessions() *Sessions {
	return &Sessions{
		sessions: make(map[domain.ConnectionID]*sessionEntry),
	}
}

func (s *Sessions) Bind(id domain.ConnectionID, client string, conn core.SignalConnection, cancel context.CancelFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[id] = &sessionEntry{Client: client, Conn: conn, Cancel: cancel}
	log.Info().Str("module", "app.sessions").Str("conn", string(id)).Str("client", client).Msg("bound connection")
}

func (s *Sessions) Unbind(id domain.ConnectionID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	log.Info().Str("module", "app.sessions").Str("conn", string(id)).Msg("unbind connection")
}

func (s *Sessions) Get(id domain.ConnectionID) (core.SignalConnection, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if e, ok := s.sessions[id]; ok {
		return e.Conn, true
	}
	return nil, false
}

func (s *Sessions) RoomOf(id domain.ConnectionID) (domain.RoomID, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.sessions[id]
	if !ok || entry.Room == "" {
		return "", false
	}
	return entry.Room, true
}

func (s *Sessions) UpdateRoom(id domain.ConnectionID, room domain.RoomID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.sessions[id]
	if !ok {
		return false
	}
	entry.Room = room
	return true
}

func (s *Sessions) RemoveRoom(id domain.ConnectionID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if entry, ok := s.sessions[id]; ok {
		entry.Room = ""
	}
}

func (s *Sessions) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Cancel stops the connection's pumps and closes its transport. The read
// loop then reports the disconnect through the normal path.
func (s *Sessions) Cancel(id domain.ConnectionID) bool {
	s.mu.RLock()
	e, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return false
	}
	if e.Cancel != nil {
		e.Cancel()
	}
	if e.Conn != nil {
		e.Conn.Close()
	}
	log.Info().Str("module", "app.sessions").Str("conn", string(id)).Msg("canceled connection")
	return true
}

// Deliver enqueues f on every listed connection without blocking.
// Unknown connections are skipped; full or closed ones are reported as dropped.
func (s *Sessions) Deliver(to []domain.ConnectionID, f core.Frame) core.PublishResult {
	s.mu.RLock()
	defer s.mu.RUnlock()
	res := core.PublishResult{}
	for _, id := range to {
		e, ok := s.sessions[id]
		if !ok {
			continue
		}
		if err := e.Conn.TrySend(f); err != nil {
			res.Dropped = append(res.Dropped, id)
			continue
		}
		res.SendTo++
	}
	log.Debug().Str("module", "app.sessions").Int("sent_to", res.SendTo).Int("dropped", len(res.Dropped)).Msg("deliver result")
	return res
}
