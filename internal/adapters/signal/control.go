package signal

import "github.com/dkeye/Whiteboard/internal/protocol"

func (ctl *SignalWSController) handlePing(c *WsSignalConn) error {
	frame, err := protocol.Encode(protocol.NewPong())
	if err != nil {
		return err
	}
	return c.TrySend(frame)
}
