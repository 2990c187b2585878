package signal

import (
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Whiteboard/internal/protocol"
)

func (ctl *SignalWSController) handleJoin(c *WsSignalConn, data []byte) error {
	var p protocol.JoinRequest
	if err := protocol.Decode(data, &p); err != nil {
		return err
	}
	log.Info().Str("module", "signal").Str("conn", string(c.id)).Str("room", string(p.RoomID)).Msg("join")
	return ctl.Orch.Join(c.id, p.RoomID, p.DisplayName)
}

func (ctl *SignalWSController) handleStroke(c *WsSignalConn, data []byte) error {
	var p protocol.StrokeMessage
	if err := protocol.Decode(data, &p); err != nil {
		return err
	}
	return ctl.Orch.Stroke(c.id, p.RoomID, p.Data)
}

func (ctl *SignalWSController) handleClear(c *WsSignalConn, data []byte) error {
	var p protocol.ClearRequest
	if err := protocol.Decode(data, &p); err != nil {
		return err
	}
	log.Info().Str("module", "signal").Str("conn", string(c.id)).Str("room", string(p.RoomID)).Msg("clear")
	return ctl.Orch.Clear(c.id, p.RoomID)
}

// handleLeave exits the current room; the connection stays open.
func (ctl *SignalWSController) handleLeave(c *WsSignalConn) error {
	log.Info().Str("module", "signal").Str("conn", string(c.id)).Msg("leave")
	return ctl.Orch.Leave(c.id)
}
