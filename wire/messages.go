// Package wire implements the relay's JSON wire protocol: the five
// message types, their canonical signed form, and frame parsing.
package wire

import (
	"encoding/json"
	"fmt"
)

// Type identifies one of the five wire messages carried one-per-frame.
type Type string

const (
	TypeAnnounce  Type = "ANNOUNCE"
	TypeHeartbeat Type = "HEARTBEAT"
	TypeInput     Type = "INPUT"
	TypeOutput    Type = "OUTPUT"
	TypeError     Type = "ERROR"
)

// Announce is sent by a serving agent to register or refresh its
// presence. Signature is computed over the canonical form of every
// other field; see Canonicalize.
type Announce struct {
	Type      Type     `json:"type"`
	Address   string   `json:"address"`
	Timestamp int64    `json:"timestamp"`
	Summary   string   `json:"summary"`
	Endpoints []string `json:"endpoints"`
	Signature string   `json:"signature,omitempty"`
}

// Heartbeat refreshes liveness for an already-bound control
// connection. It carries no signature.
type Heartbeat struct {
	Type      Type   `json:"type"`
	Address   string `json:"address"`
	Timestamp int64  `json:"timestamp"`
}

// Input is a caller's task request, identified by a caller-supplied
// input_id used to correlate the eventual Output or Error.
type Input struct {
	Type    Type   `json:"type"`
	InputID string `json:"input_id"`
	To      string `json:"to"`
	Prompt  string `json:"prompt"`
	From    string `json:"from,omitempty"`
}

// Output is a serving agent's reply to an Input, relayed back to the
// originating caller by input_id.
type Output struct {
	Type    Type   `json:"type"`
	InputID string `json:"input_id"`
	Result  string `json:"result"`
	Success bool   `json:"success"`
}

// Error is sent by the relay (or, on a control connection, echoed
// back) to report a protocol-level failure. InputID is set when the
// error correlates to a specific pending exchange.
type Error struct {
	Type    Type   `json:"type"`
	ErrMsg  string `json:"error"`
	InputID string `json:"input_id,omitempty"`
}

// NewOutput builds an Output with Success defaulting to true.
func NewOutput(inputID, result string) *Output {
	return &Output{Type: TypeOutput, InputID: inputID, Result: result, Success: true}
}

// NewError builds an Error frame, optionally correlated to input_id.
func NewError(message, inputID string) *Error {
	return &Error{Type: TypeError, ErrMsg: message, InputID: inputID}
}

// envelope is used only to sniff the `type` field before deciding
// which concrete struct to unmarshal the frame into.
type envelope struct {
	Type Type `json:"type"`
}

// Decode inspects a raw frame's type field and unmarshals it into the
// matching concrete message type. It returns an error wrapping
// ErrUnknownType for a type outside the protocol's five, and one
// wrapping ErrMalformedMessage for malformed JSON, a missing type
// field, or a missing required field.
func Decode(frame []byte) (interface{}, error) {
	var env envelope
	if err := json.Unmarshal(frame, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedMessage, err)
	}

	switch env.Type {
	case TypeAnnounce:
		var m Announce
		if err := json.Unmarshal(frame, &m); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedMessage, err)
		}
		if m.Address == "" || m.Signature == "" {
			return nil, ErrMalformedMessage
		}
		return &m, nil
	case TypeHeartbeat:
		var m Heartbeat
		if err := json.Unmarshal(frame, &m); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedMessage, err)
		}
		if m.Address == "" {
			return nil, ErrMalformedMessage
		}
		return &m, nil
	case TypeInput:
		var m Input
		if err := json.Unmarshal(frame, &m); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedMessage, err)
		}
		if m.InputID == "" || m.To == "" || m.Prompt == "" {
			return nil, ErrMalformedMessage
		}
		return &m, nil
	case TypeOutput:
		var m Output
		if err := json.Unmarshal(frame, &m); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedMessage, err)
		}
		if m.InputID == "" {
			return nil, ErrMalformedMessage
		}
		return &m, nil
	case TypeError:
		var m Error
		if err := json.Unmarshal(frame, &m); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedMessage, err)
		}
		return &m, nil
	case "":
		return nil, ErrMalformedMessage
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, env.Type)
	}
}
