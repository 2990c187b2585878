//go:generate go run go.uber.org/mock/mockgen -source=signal_iface.go -destination=../../mocks/mock_signal.go -package=mocks
package core

import "github.com/dkeye/Whiteboard/internal/domain"

// Frame is a raw encoded payload.
type Frame []byte

// SignalConnection abstracts for a system messaging transport
// Owned by the adapter; the adapter must Close() it.
type SignalConnection interface {
	// TrySend enqueues f without blocking. It fails when the connection is
	// closed or its send buffer is full.
	TrySend(Frame) error
	Close()
}

// PublishResult reports delivery stats/backpressure to orchestrator.
type PublishResult struct {
	SendTo  int
	Dropped []domain.ConnectionID
}

// Delivery is the fire-and-forget fan-out primitive the protocol calls into.
// Implementations must never block on a slow receiver.
type Delivery interface {
	Deliver(to []domain.ConnectionID, f Frame) PublishResult
}
