// Package relayclient implements the two endpoint loops SPEC_FULL.md
// §4.4 describes: the serving-agent loop and the one-shot calling
// client.
package relayclient

import (
	"context"
	"errors"
	"net"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/sage-x-project/sage-relay/identity"
	"github.com/sage-x-project/sage-relay/resilience"
	"github.com/sage-x-project/sage-relay/wire"
)

var reconnectBackoff = &resilience.ExponentialBackoffPolicy{
	InitialDelay: 1 * time.Second,
	MaxDelay:     30 * time.Second,
	Multiplier:   2.0,
	MaxAttempts:  0, // ServeLoop applies its own unbounded retry, ignoring ShouldRetry
}

// Handler answers one INPUT prompt with its result.
type Handler func(prompt string) string

// AgentOptions configures the serving-agent loop.
type AgentOptions struct {
	RelayURL         string
	Summary          string
	Endpoints        []string
	HeartbeatInterval time.Duration
}

// ServeLoop runs the serving-agent loop until ctx is canceled: connect,
// announce, answer INPUTs, re-sign and resend ANNOUNCE on every
// heartbeat timeout, and reconnect with exponential backoff on socket
// closure.
func ServeLoop(ctx context.Context, id *identity.Identity, opts AgentOptions, handler Handler, log *zap.Logger) error {
	attempt := 0

	for {
		err := serveOnce(ctx, id, opts, handler, log)
		if ctx.Err() != nil {
			return ctx.Err()
		}

		delay := reconnectBackoff.NextDelay(attempt)
		attempt++
		log.Warn("control connection lost, reconnecting", zap.Error(err), zap.Duration("delay", delay))
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func serveOnce(ctx context.Context, id *identity.Identity, opts AgentOptions, handler Handler, log *zap.Logger) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, opts.RelayURL, nil)
	if err != nil {
		return err
	}
	defer conn.Close()

	if err := sendAnnounce(conn, id, opts); err != nil {
		return err
	}
	log.Info("announced", zap.String("address", id.Address))

	go func() {
		<-ctx.Done()
		_ = conn.Close()
	}()

	for {
		_ = conn.SetReadDeadline(time.Now().Add(opts.HeartbeatInterval))
		_, frame, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			var netErr net.Error
			if errors.As(err, &netErr) && netErr.Timeout() {
				if err := sendAnnounce(conn, id, opts); err != nil {
					return err
				}
				continue
			}
			return err
		}

		msg, decodeErr := wire.Decode(frame)
		if decodeErr != nil {
			log.Warn("received malformed frame", zap.Error(decodeErr))
			continue
		}

		switch m := msg.(type) {
		case *wire.Input:
			result := handler(m.Prompt)
			out := wire.NewOutput(m.InputID, result)
			if err := conn.WriteJSON(out); err != nil {
				return err
			}
		case *wire.Error:
			log.Warn("received ERROR frame", zap.String("error", m.ErrMsg))
		default:
			log.Warn("received unexpected frame on control connection")
		}
	}
}

// sendAnnounce builds a fresh ANNOUNCE with the current wall time and
// signs it before sending — every send re-signs, including the
// periodic heartbeat resend, so the timestamp the signature covers is
// always the one actually transmitted.
func sendAnnounce(conn *websocket.Conn, id *identity.Identity, opts AgentOptions) error {
	endpoints := opts.Endpoints
	if endpoints == nil {
		endpoints = []string{}
	}
	a := &wire.Announce{
		Type:      wire.TypeAnnounce,
		Address:   id.Address,
		Timestamp: time.Now().Unix(),
		Summary:   opts.Summary,
		Endpoints: endpoints,
	}
	canon, err := wire.Canonicalize(a)
	if err != nil {
		return err
	}
	a.Signature = wire.EncodeSignature(id.Sign(canon))
	return conn.WriteJSON(a)
}
