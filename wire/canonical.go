package wire

import (
	"encoding/hex"
	"encoding/json"
)

// Canonicalize returns the JSON bytes an Announce's signature is
// computed over: every field except signature, with map keys sorted
// lexicographically at every nesting level and no insignificant
// whitespace.
//
// encoding/json already marshals map[string]interface{} values with
// keys sorted lexicographically, at every nesting level, and never
// inserts whitespace outside of string values — so building the
// signing payload as a map and marshaling it directly produces the
// canonical form without any extra sorting pass.
func Canonicalize(a *Announce) ([]byte, error) {
	endpoints := a.Endpoints
	if endpoints == nil {
		endpoints = []string{}
	}
	payload := map[string]interface{}{
		"type":      a.Type,
		"address":   a.Address,
		"timestamp": a.Timestamp,
		"summary":   a.Summary,
		"endpoints": endpoints,
	}
	return json.Marshal(payload)
}

// EncodeSignature renders a raw signature as lowercase hex with no
// "0x" prefix, the form carried in Announce.Signature.
func EncodeSignature(sig []byte) string {
	return hex.EncodeToString(sig)
}

// DecodeSignature parses a hex-encoded signature previously produced
// by EncodeSignature.
func DecodeSignature(s string) ([]byte, error) {
	return hex.DecodeString(s)
}
