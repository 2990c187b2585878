package app

import (
	"cmp"
	"context"
	"slices"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/samber/lo"

	"github.com/dkeye/Whiteboard/internal/core"
	"github.com/dkeye/Whiteboard/internal/domain"
)

type roomEntry struct {
	room       *core.Room
	emptySince time.Time // zero while the room has members
}

// Registry owns every room, its membership and its stroke history.
// All mutations go through one mutex, so operations on a room observe a
// single total order.
type Registry struct {
	mu          sync.Mutex
	rooms       map[domain.RoomID]*roomEntry
	memberships map[domain.ConnectionID]map[domain.RoomID]struct{}

	retention Retention
	grace     time.Duration
	now       func() time.Time
}

type Option func(*Registry)

func WithRetention(policy Retention, grace time.Duration) Option {
	return func(r *Registry) {
		r.retention = policy
		r.grace = grace
	}
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(r *Registry) { r.now = now }
}

func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		rooms:       make(map[domain.RoomID]*roomEntry),
		memberships: make(map[domain.ConnectionID]map[domain.RoomID]struct{}),
		retention:   DeleteAfterGrace,
		grace:       DefaultGrace,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Join creates the room if needed and appends the participant. It returns the
// full history for the joiner to replay and the membership list to broadcast.
func (r *Registry) Join(roomID domain.RoomID, id domain.ConnectionID, displayName string) ([]domain.StrokeSegment, []domain.Participant) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.rooms[roomID]
	if !ok {
		entry = &roomEntry{room: core.NewRoom(roomID)}
		r.rooms[roomID] = entry
		log.Info().Str("module", "app.registry").Str("room", string(roomID)).Msg("room created")
	}
	entry.room.AddMember(domain.NewParticipant(id, displayName))
	entry.emptySince = time.Time{}

	if _, ok := r.memberships[id]; !ok {
		r.memberships[id] = make(map[domain.RoomID]struct{})
	}
	r.memberships[id][roomID] = struct{}{}

	log.Info().Str("module", "app.registry").Str("room", string(roomID)).Str("conn", string(id)).
		Int("members", entry.room.MemberCount()).Int("history", entry.room.HistoryLen()).Msg("joined")
	return entry.room.History(), entry.room.Members()
}

// AppendStroke records seg and returns every member except the sender.
// A stroke for an unknown room is a caller error: nothing is created and ok is false.
func (r *Registry) AppendStroke(roomID domain.RoomID, from domain.ConnectionID, seg domain.StrokeSegment) ([]domain.Participant, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.rooms[roomID]
	if !ok {
		return nil, false
	}
	entry.room.Append(seg)
	return entry.room.Others(from), true
}

// Clear truncates the history and returns every member, sender included.
func (r *Registry) Clear(roomID domain.RoomID) ([]domain.Participant, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.rooms[roomID]
	if !ok {
		return nil, false
	}
	entry.room.Truncate()
	log.Info().Str("module", "app.registry").Str("room", string(roomID)).Msg("history cleared")
	return entry.room.Members(), true
}

// Leave removes the connection from every room it joined and returns the
// updated membership of each affected room.
func (r *Registry) Leave(id domain.ConnectionID) map[domain.RoomID][]domain.Participant {
	r.mu.Lock()
	defer r.mu.Unlock()

	joined := r.memberships[id]
	delete(r.memberships, id)

	out := make(map[domain.RoomID][]domain.Participant, len(joined))
	for roomID := range joined {
		entry, ok := r.rooms[roomID]
		if !ok || !entry.room.RemoveMember(id) {
			continue
		}
		out[roomID] = entry.room.Members()
		log.Info().Str("module", "app.registry").Str("room", string(roomID)).Str("conn", string(id)).
			Int("members", entry.room.MemberCount()).Msg("left")
		if entry.room.MemberCount() == 0 {
			r.onEmpty(roomID, entry)
		}
	}
	return out
}

func (r *Registry) onEmpty(roomID domain.RoomID, entry *roomEntry) {
	if r.retention == DeleteWhenEmpty {
		delete(r.rooms, roomID)
		log.Info().Str("module", "app.registry").Str("room", string(roomID)).Msg("empty room deleted")
		return
	}
	entry.emptySince = r.now()
}

// Sweep deletes rooms that have stayed empty for the grace period.
// It only acts under DeleteAfterGrace and returns the deleted ids.
func (r *Registry) Sweep(now time.Time) []domain.RoomID {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.retention != DeleteAfterGrace {
		return nil
	}
	var removed []domain.RoomID
	for roomID, entry := range r.rooms {
		if entry.room.MemberCount() > 0 || entry.emptySince.IsZero() {
			continue
		}
		if now.Sub(entry.emptySince) >= r.grace {
			delete(r.rooms, roomID)
			removed = append(removed, roomID)
		}
	}
	slices.Sort(removed)
	if len(removed) > 0 {
		log.Info().Str("module", "app.registry").Int("rooms", len(removed)).Msg("expired rooms swept")
	}
	return removed
}

// Run sweeps every interval until ctx is done.
func (r *Registry) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	log.Info().Str("module", "app.registry").Str("retention", r.retention.String()).Dur("interval", interval).Msg("sweeper started")
	for {
		select {
		case <-ctx.Done():
			log.Info().Str("module", "app.registry").Msg("sweeper stopped")
			return nil
		case <-ticker.C:
			r.Sweep(r.now())
		}
	}
}

type RoomInfo struct {
	ID          domain.RoomID `json:"id"`
	MemberCount int           `json:"memberCount"`
	HistoryLen  int           `json:"historyLength"`
	EmptySince  *time.Time    `json:"emptySince,omitempty"`
}

type RoomSnapshot struct {
	ID         domain.RoomID        `json:"id"`
	Members    []domain.Participant `json:"members"`
	HistoryLen int                  `json:"historyLength"`
}

// List returns every room sorted by id.
func (r *Registry) List() []RoomInfo {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := lo.MapToSlice(r.rooms, func(id domain.RoomID, e *roomEntry) RoomInfo {
		info := RoomInfo{ID: id, MemberCount: e.room.MemberCount(), HistoryLen: e.room.HistoryLen()}
		if !e.emptySince.IsZero() {
			since := e.emptySince
			info.EmptySince = &since
		}
		return info
	})
	slices.SortFunc(out, func(a, b RoomInfo) int { return cmp.Compare(a.ID, b.ID) })
	return out
}

func (r *Registry) Snapshot(roomID domain.RoomID) (RoomSnapshot, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.rooms[roomID]
	if !ok {
		return RoomSnapshot{}, false
	}
	return RoomSnapshot{ID: roomID, Members: entry.room.Members(), HistoryLen: entry.room.HistoryLen()}, true
}

// History returns a copy of the room's log, or nil for an unknown room.
func (r *Registry) History(roomID domain.RoomID) []domain.StrokeSegment {
	r.mu.Lock()
	defer r.mu.Unlock()

	if entry, ok := r.rooms[roomID]; ok {
		return entry.room.History()
	}
	return nil
}
