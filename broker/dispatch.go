package broker

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/sage-x-project/sage-relay/wire"
)

// handleDispatch serves /ws/input: exactly one INPUT in, exactly one
// OUTPUT or ERROR out, then the connection closes.
func (b *Broker) handleDispatch(w http.ResponseWriter, r *http.Request) {
	raw, err := b.upgrader.Upgrade(w, r, nil)
	if err != nil {
		b.log.Warn("dispatch upgrade failed", zap.Error(err))
		return
	}
	conn := newSafeConn(raw)
	defer conn.Close()

	_, frame, err := raw.ReadMessage()
	if err != nil {
		return
	}

	msg, decodeErr := wire.Decode(frame)
	if decodeErr != nil {
		_ = conn.WriteJSON(wire.NewError(decodeErr.Error(), ""))
		return
	}

	in, ok := msg.(*wire.Input)
	if !ok {
		_ = conn.WriteJSON(wire.NewError(wire.ErrProtocolError.Error(), ""))
		return
	}

	targetConn, online := b.registry.ConnFor(in.To)
	if !online {
		_ = conn.WriteJSON(wire.NewError(wire.ErrAgentOffline.Error(), in.InputID))
		return
	}

	now := time.Now()
	if !b.pending.Insert(in.InputID, conn, now) {
		_ = conn.WriteJSON(wire.NewError(wire.ErrDuplicateID.Error(), in.InputID))
		return
	}

	breaker := b.breakers.forAddress(in.To)
	forwardErr := breaker.Execute(func() error {
		return targetConn.WriteJSON(in)
	})
	if forwardErr != nil {
		b.pending.Delete(in.InputID)
		_ = conn.WriteJSON(wire.NewError(wire.ErrAgentUnreachable.Error(), in.InputID))
		return
	}

	deadline := time.Duration(b.cfg.DeadlineSec) * time.Second
	b.awaitOutput(conn, raw, in.InputID, deadline)
}

// awaitOutput blocks the dispatch connection's single exchange until
// either the control endpoint resolves the pending request (writing
// directly to conn via deliverOutput) or the deadline elapses. Since
// this connection never sends another frame after the initial INPUT,
// a deadlined read doubles as the wait: it returns as soon as the
// deadline passes or the caller closes the socket (typically right
// after receiving its OUTPUT).
func (b *Broker) awaitOutput(conn *safeConn, raw *websocket.Conn, inputID string, deadline time.Duration) {
	_ = raw.SetReadDeadline(time.Now().Add(deadline))
	_, _, _ = raw.ReadMessage()

	// If we get here, either the deadline elapsed or the peer closed
	// the socket. Either way, the pending entry (if still present)
	// must be removed before reporting Timeout, so a late OUTPUT from
	// the agent finds nothing to resolve.
	if _, stillPending := b.pending.Resolve(inputID); stillPending {
		_ = conn.WriteJSON(wire.NewError(wire.ErrTimeout.Error(), inputID))
	}
}
