package broker

import (
	"testing"
	"time"
)

func TestPendingInsertRejectsDuplicate(t *testing.T) {
	p := NewPendingTable()
	conn := &safeConn{}

	if !p.Insert("u1", conn, time.Now()) {
		t.Fatal("first Insert should succeed")
	}
	if p.Insert("u1", conn, time.Now()) {
		t.Fatal("second Insert with the same input_id should fail")
	}
}

func TestPendingResolveDeletesEntry(t *testing.T) {
	p := NewPendingTable()
	conn := &safeConn{}
	p.Insert("u1", conn, time.Now())

	got, ok := p.Resolve("u1")
	if !ok || got.Caller != conn {
		t.Fatal("Resolve should return the inserted entry")
	}

	if _, ok := p.Resolve("u1"); ok {
		t.Fatal("Resolve should be a one-shot operation")
	}
}

func TestPendingDeleteIsIdempotent(t *testing.T) {
	p := NewPendingTable()
	p.Insert("u1", &safeConn{}, time.Now())
	p.Delete("u1")
	p.Delete("u1")
	if p.Len() != 0 {
		t.Fatalf("Len() = %d, want 0", p.Len())
	}
}

func TestPendingLenBoundsOpenDispatchConnections(t *testing.T) {
	p := NewPendingTable()
	p.Insert("u1", &safeConn{}, time.Now())
	p.Insert("u2", &safeConn{}, time.Now())
	if p.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", p.Len())
	}
	p.Resolve("u1")
	if p.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", p.Len())
	}
}
