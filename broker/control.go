package broker

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/sage-x-project/sage-relay/identity"
	"github.com/sage-x-project/sage-relay/wire"
)

// handleControl serves /ws/announce. A fresh connection is unbound
// until its first valid ANNOUNCE; from then on it represents exactly
// one announced agent for its lifetime.
func (b *Broker) handleControl(w http.ResponseWriter, r *http.Request) {
	raw, err := b.upgrader.Upgrade(w, r, nil)
	if err != nil {
		b.log.Warn("control upgrade failed", zap.Error(err))
		return
	}
	conn := newSafeConn(raw)
	defer conn.Close()

	var bound string

	for {
		_, frame, err := raw.ReadMessage()
		if err != nil {
			break
		}

		msg, decodeErr := wire.Decode(frame)
		if decodeErr != nil {
			_ = conn.WriteJSON(wire.NewError(decodeErr.Error(), ""))
			continue
		}

		switch m := msg.(type) {
		case *wire.Announce:
			if !b.verifyAnnounce(m) {
				_ = conn.WriteJSON(wire.NewError(wire.ErrBadSignature.Error(), ""))
				continue
			}
			if bound != "" && m.Address != bound {
				// A bound connection only ever re-announces its own
				// address; a different address on the same socket is
				// not the protocol this endpoint models.
				_ = conn.WriteJSON(wire.NewError(wire.ErrProtocolError.Error(), ""))
				continue
			}

			now := time.Now()
			if bound == m.Address {
				// Re-announce on the connection already bound to this
				// address (a heartbeat-triggered resend) refreshes the
				// existing record in place; it must never evict itself.
				b.registry.Refresh(m.Address, m.Summary, m.Endpoints, conn, now)
			} else if evicted := b.registry.Bind(m.Address, m.Summary, m.Endpoints, conn, now); evicted != nil {
				b.log.Info("closing superseded control connection", zap.String("address", m.Address))
				_ = evicted.Close()
			}
			bound = m.Address
			b.log.Debug("agent announced", zap.String("address", m.Address), zap.String("summary", m.Summary))

		case *wire.Heartbeat:
			if bound == "" || m.Address != bound {
				_ = conn.WriteJSON(wire.NewError("heartbeat address does not match bound connection", ""))
				continue
			}
			if !withinSkew(m.Timestamp, b.cfg.HeartbeatSec) {
				_ = conn.WriteJSON(wire.NewError("heartbeat timestamp outside allowed skew", ""))
				continue
			}
			b.registry.Touch(bound, conn, time.Now())

		case *wire.Output:
			if bound == "" {
				_ = conn.WriteJSON(wire.NewError(wire.ErrProtocolError.Error(), ""))
				continue
			}
			b.deliverOutput(m)

		default:
			_ = conn.WriteJSON(wire.NewError(wire.ErrProtocolError.Error(), ""))
		}
	}

	if bound != "" {
		b.registry.Unbind(bound, conn)
		b.log.Debug("control connection closed", zap.String("address", bound))
	}
}

// verifyAnnounce re-derives the canonical signing bytes and checks the
// embedded signature against the embedded address, re-verifying on
// every re-announce, not just the first.
func (b *Broker) verifyAnnounce(m *wire.Announce) bool {
	sig, err := wire.DecodeSignature(m.Signature)
	if err != nil {
		return false
	}
	canon, err := wire.Canonicalize(m)
	if err != nil {
		return false
	}
	if !identity.Verify(m.Address, canon, sig) {
		return false
	}
	return withinSkew(m.Timestamp, b.cfg.HeartbeatSec)
}

// withinSkew rejects an ANNOUNCE/HEARTBEAT timestamp older than two
// heartbeat intervals, closing the re-signing loophole described in
// DESIGN.md's open-question decisions.
func withinSkew(timestamp int64, heartbeatSec int) bool {
	skew := time.Duration(2*heartbeatSec) * time.Second
	age := time.Since(time.Unix(timestamp, 0))
	return age >= -skew && age <= skew
}

// deliverOutput forwards an agent's OUTPUT to the caller it correlates
// with, dropping it silently (with a warning log) when no pending
// request matches — the entry may have already timed out, been
// resolved, or never existed.
func (b *Broker) deliverOutput(m *wire.Output) {
	pending, ok := b.pending.Resolve(m.InputID)
	if !ok {
		b.log.Warn("dropped OUTPUT with no matching pending request", zap.String("input_id", m.InputID))
		return
	}
	if err := pending.Caller.WriteJSON(m); err != nil {
		b.log.Warn("failed to deliver OUTPUT to caller", zap.String("input_id", m.InputID), zap.Error(err))
	}
}
