package wire

import "errors"

// Sentinel errors for wire-level failures, mirroring the conceptual
// error kinds named by the protocol.
var (
	ErrMalformedMessage = errors.New("wire: malformed message")
	ErrUnknownType      = errors.New("wire: unknown message type")
	ErrBadSignature     = errors.New("wire: signature does not verify")
	ErrAgentOffline     = errors.New("wire: agent offline")
	ErrAgentUnreachable = errors.New("wire: agent unreachable")
	ErrDuplicateID      = errors.New("wire: duplicate input_id")
	ErrTimeout          = errors.New("wire: request timed out")
	ErrProtocolError    = errors.New("wire: unexpected frame")
)
