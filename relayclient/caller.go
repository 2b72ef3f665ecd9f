package relayclient

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/sage-x-project/sage-relay/wire"
)

// RelayError wraps a relay-reported ERROR frame's message.
type RelayError struct {
	Message string
}

func (e *RelayError) Error() string { return "relay error: " + e.Message }

// ErrProtocolError is returned when the dispatch endpoint replies with
// anything other than a matching OUTPUT or an ERROR.
var ErrProtocolError = fmt.Errorf("relayclient: unexpected response from dispatch endpoint")

// Call opens a dispatch-endpoint connection, sends one INPUT addressed
// to target with prompt, and returns the result or an error. It
// implements SPEC_FULL.md §4.4's calling-client operations.
func Call(ctx context.Context, relayURL, target, prompt string, timeout time.Duration) (string, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, relayURL, nil)
	if err != nil {
		return "", fmt.Errorf("relayclient: dial dispatch endpoint: %w", err)
	}
	defer conn.Close()

	inputID := uuid.New().String()
	in := &wire.Input{Type: wire.TypeInput, InputID: inputID, To: target, Prompt: prompt}
	if err := conn.WriteJSON(in); err != nil {
		return "", fmt.Errorf("relayclient: send INPUT: %w", err)
	}

	_ = conn.SetReadDeadline(time.Now().Add(timeout))
	_, frame, err := conn.ReadMessage()
	if err != nil {
		return "", fmt.Errorf("relayclient: read response: %w", err)
	}

	msg, decodeErr := wire.Decode(frame)
	if decodeErr != nil {
		return "", fmt.Errorf("%w: %v", ErrProtocolError, decodeErr)
	}

	switch m := msg.(type) {
	case *wire.Output:
		if m.InputID != inputID {
			return "", ErrProtocolError
		}
		return m.Result, nil
	case *wire.Error:
		return "", &RelayError{Message: m.ErrMsg}
	default:
		return "", ErrProtocolError
	}
}
