package broker

import (
	"testing"
	"time"
)

func TestRegistryBindAndLookup(t *testing.T) {
	r := NewRegistry()
	conn := &safeConn{}

	r.Bind("0xabc", "hello", []string{}, conn, time.Now())

	rec, ok := r.Lookup("0xabc")
	if !ok {
		t.Fatal("expected record after Bind")
	}
	if rec.Summary != "hello" {
		t.Fatalf("summary = %q, want %q", rec.Summary, "hello")
	}
}

func TestRegistryBindEvictsPredecessor(t *testing.T) {
	r := NewRegistry()
	first := &safeConn{}
	second := &safeConn{}

	if evicted := r.Bind("0xabc", "s1", nil, first, time.Now()); evicted != nil {
		t.Fatal("first Bind should not evict anything")
	}

	evicted := r.Bind("0xabc", "s2", nil, second, time.Now())
	if evicted != first {
		t.Fatal("second Bind should return the first connection for eviction")
	}

	rec, ok := r.Lookup("0xabc")
	if !ok || rec.Summary != "s2" {
		t.Fatal("registry should now reflect the second announce")
	}
}

func TestRegistryUnbindOnlyRemovesMatchingConn(t *testing.T) {
	r := NewRegistry()
	first := &safeConn{}
	second := &safeConn{}

	r.Bind("0xabc", "s1", nil, first, time.Now())
	r.Bind("0xabc", "s2", nil, second, time.Now())

	// Stale unbind from the evicted first connection must not remove
	// the record now owned by the second connection.
	r.Unbind("0xabc", first)
	if _, ok := r.Lookup("0xabc"); !ok {
		t.Fatal("Unbind from a superseded connection must not delete the current record")
	}

	r.Unbind("0xabc", second)
	if _, ok := r.Lookup("0xabc"); ok {
		t.Fatal("Unbind from the current connection should remove the record")
	}
}

func TestRegistryFindCaseInsensitiveSubstring(t *testing.T) {
	r := NewRegistry()
	r.Bind("0x1", "Echoes Input", nil, &safeConn{}, time.Now())
	r.Bind("0x2", "does math", nil, &safeConn{}, time.Now())

	matches := r.Find("echo", 10)
	if len(matches) != 1 || matches[0].Address != "0x1" {
		t.Fatalf("Find(\"echo\") = %+v, want one match for 0x1", matches)
	}
}

func TestRegistrySweepEvictsStaleOnly(t *testing.T) {
	r := NewRegistry()
	staleConn := &safeConn{}
	freshConn := &safeConn{}

	old := time.Now().Add(-10 * time.Minute)
	r.Bind("0xstale", "s", nil, staleConn, old)
	r.Bind("0xfresh", "s", nil, freshConn, time.Now())

	evicted := r.Sweep(time.Now().Add(-2 * time.Minute))
	if len(evicted) != 1 || evicted[0] != staleConn {
		t.Fatalf("expected only the stale connection to be evicted, got %d", len(evicted))
	}

	if _, ok := r.Lookup("0xstale"); ok {
		t.Fatal("stale record should have been evicted")
	}
	if _, ok := r.Lookup("0xfresh"); !ok {
		t.Fatal("fresh record should survive the sweep")
	}
}

func TestRegistryLenBoundsOpenConnections(t *testing.T) {
	r := NewRegistry()
	if r.Len() != 0 {
		t.Fatalf("Len() = %d, want 0", r.Len())
	}
	r.Bind("0x1", "s", nil, &safeConn{}, time.Now())
	r.Bind("0x2", "s", nil, &safeConn{}, time.Now())
	if r.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", r.Len())
	}
}
