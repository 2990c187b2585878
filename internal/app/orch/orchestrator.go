package orch

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"
	"github.com/samber/lo"

	"github.com/dkeye/Whiteboard/internal/app"
	"github.com/dkeye/Whiteboard/internal/core"
	"github.com/dkeye/Whiteboard/internal/domain"
	"github.com/dkeye/Whiteboard/internal/protocol"
)

// Orchestrator runs the per-connection session protocol: it maps inbound
// events onto Registry calls and fans the resulting frames out.
//
// Every event is handled under one mutex, registry call and fan-out
// together, so all receivers see frames in the registry's arrival order.
// Fan-out only enqueues, so a slow receiver never holds the lock.
type Orchestrator struct {
	Rooms    *app.Registry
	Sessions *app.Sessions
	// Delivery defaults to Sessions.
	Delivery core.Delivery
	Policy   app.Policy
	Limiter  *app.RateLimiter

	mu sync.Mutex
}

// dropped collects receivers whose buffer was full while the lock was held.
type dropped []domain.ConnectionID

func (o *Orchestrator) delivery() core.Delivery {
	if o.Delivery != nil {
		return o.Delivery
	}
	return o.Sessions
}

// serialize runs fn under the protocol lock and applies the backpressure
// policy once the lock is released.
func (o *Orchestrator) serialize(fn func(d *dropped) error) error {
	var d dropped
	o.mu.Lock()
	err := fn(&d)
	o.mu.Unlock()
	o.settle(d)
	return err
}

func (o *Orchestrator) publish(to []domain.ConnectionID, msg any, d *dropped) {
	if len(to) == 0 {
		return
	}
	frame, err := protocol.Encode(msg)
	if err != nil {
		log.Error().Err(err).Str("module", "orch").Msg("publish encode")
		return
	}
	res := o.delivery().Deliver(to, frame)
	*d = append(*d, res.Dropped...)
}

func (o *Orchestrator) settle(d dropped) {
	if o.Policy == nil {
		return
	}
	for _, id := range lo.Uniq(d) {
		switch o.Policy.OnBackPressure(id) {
		case app.KickMember:
			log.Warn().Str("module", "orch").Str("conn", string(id)).Msg("kicking slow receiver")
			o.Sessions.Cancel(id)
		case app.MarkSlow, app.DropFrame, app.NoAction:
		}
	}
}

func connectionIDs(ps []domain.Participant) []domain.ConnectionID {
	return lo.Map(ps, func(p domain.Participant, _ int) domain.ConnectionID { return p.ConnectionID })
}

// Connect registers a fresh transport connection and tells it its id.
func (o *Orchestrator) Connect(id domain.ConnectionID, client string, conn core.SignalConnection, cancel context.CancelFunc) {
	o.Sessions.Bind(id, client, conn, cancel)
	_ = o.serialize(func(d *dropped) error {
		o.publish([]domain.ConnectionID{id}, protocol.NewWelcome(id), d)
		return nil
	})
}

// Disconnect is an immediate leave followed by forgetting the connection.
func (o *Orchestrator) Disconnect(id domain.ConnectionID) {
	_ = o.serialize(func(d *dropped) error {
		o.leave(id, d)
		o.Sessions.Unbind(id)
		return nil
	})
	o.Limiter.Forget(id)
	log.Info().Str("module", "orch").Str("conn", string(id)).Msg("disconnected")
}
