package wire

import (
	"bytes"
	"encoding/json"
	"testing"
)

func TestCanonicalizeSortsKeysAndOmitsSignature(t *testing.T) {
	a := &Announce{
		Type:      TypeAnnounce,
		Address:   "0xabc",
		Timestamp: 1700000000,
		Summary:   "echoes input",
		Endpoints: []string{"wss://example.test"},
		Signature: "deadbeef",
	}

	out, err := Canonicalize(a)
	if err != nil {
		t.Fatalf("Canonicalize: %v", err)
	}

	if bytes.Contains(out, []byte("signature")) {
		t.Fatal("canonical form must not include the signature field")
	}
	var compact bytes.Buffer
	if err := json.Compact(&compact, out); err != nil {
		t.Fatalf("compact canonical form: %v", err)
	}
	if !bytes.Equal(out, compact.Bytes()) {
		t.Fatal("canonical form must contain no insignificant whitespace")
	}
	wantCanon := `{"address":"0xabc","endpoints":["wss://example.test"],"summary":"echoes input","timestamp":1700000000,"type":"ANNOUNCE"}`
	if string(out) != wantCanon {
		t.Fatalf("canonical form = %s, want keys sorted as %s", out, wantCanon)
	}

	var generic map[string]json.RawMessage
	if err := json.Unmarshal(out, &generic); err != nil {
		t.Fatalf("unmarshal canonical form: %v", err)
	}
	want := []string{"address", "endpoints", "summary", "timestamp", "type"}
	for _, k := range want {
		if _, ok := generic[k]; !ok {
			t.Fatalf("canonical form missing field %q", k)
		}
	}
}

func TestCanonicalizeRoundTripIsIdempotent(t *testing.T) {
	a := &Announce{
		Type:      TypeAnnounce,
		Address:   "0xabc",
		Timestamp: 1700000000,
		Summary:   "s",
		Endpoints: []string{"a", "b"},
	}

	first, err := Canonicalize(a)
	if err != nil {
		t.Fatalf("Canonicalize: %v", err)
	}

	var decoded Announce
	if err := json.Unmarshal(first, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	decoded.Type = TypeAnnounce

	second, err := Canonicalize(&decoded)
	if err != nil {
		t.Fatalf("Canonicalize second: %v", err)
	}

	if !bytes.Equal(first, second) {
		t.Fatalf("canon(parse(canon(x))) != canon(x):\n%s\n%s", first, second)
	}
}

func TestDecodeUnknownType(t *testing.T) {
	_, err := Decode([]byte(`{"type":"BOGUS"}`))
	if err == nil {
		t.Fatal("expected error for unknown type")
	}
}

func TestDecodeMalformedJSON(t *testing.T) {
	_, err := Decode([]byte(`{not json`))
	if err == nil {
		t.Fatal("expected error for malformed JSON")
	}
}

func TestDecodeMissingRequiredField(t *testing.T) {
	_, err := Decode([]byte(`{"type":"INPUT","to":"0xabc"}`))
	if err == nil {
		t.Fatal("expected error for missing input_id")
	}
}

func TestDecodeRoundTripsEachType(t *testing.T) {
	cases := map[Type][]byte{
		TypeAnnounce:  []byte(`{"type":"ANNOUNCE","address":"0xabc","timestamp":1,"summary":"s","endpoints":[],"signature":"ab"}`),
		TypeHeartbeat: []byte(`{"type":"HEARTBEAT","address":"0xabc","timestamp":1}`),
		TypeInput:     []byte(`{"type":"INPUT","input_id":"u1","to":"0xabc","prompt":"hi"}`),
		TypeOutput:    []byte(`{"type":"OUTPUT","input_id":"u1","result":"hi","success":true}`),
		TypeError:     []byte(`{"type":"ERROR","error":"boom"}`),
	}
	for typ, raw := range cases {
		msg, err := Decode(raw)
		if err != nil {
			t.Fatalf("Decode %s: %v", typ, err)
		}
		if msg == nil {
			t.Fatalf("Decode %s returned nil", typ)
		}
	}
}
