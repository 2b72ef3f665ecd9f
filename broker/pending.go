package broker

import (
	"sync"
	"time"
)

// PendingRequest is the broker's correlation record for one in-flight
// caller/agent exchange, keyed by input_id.
type PendingRequest struct {
	InputID   string
	Caller    *safeConn
	StartedAt time.Time
}

// PendingTable holds in-flight requests behind a single mutex. Every
// operation is O(1).
type PendingTable struct {
	mu      sync.Mutex
	entries map[string]*PendingRequest
}

// NewPendingTable returns an empty pending-request table.
func NewPendingTable() *PendingTable {
	return &PendingTable{entries: make(map[string]*PendingRequest)}
}

// Insert adds a new pending request for inputID. It returns false if
// inputID already exists, so the caller can report DuplicateId without
// clobbering the existing entry.
func (t *PendingTable) Insert(inputID string, caller *safeConn, now time.Time) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, exists := t.entries[inputID]; exists {
		return false
	}
	t.entries[inputID] = &PendingRequest{InputID: inputID, Caller: caller, StartedAt: now}
	return true
}

// Resolve removes and returns the pending request for inputID, for
// use when a matching OUTPUT arrives on a control connection. The
// delete-then-respond ordering here is what makes it safe to send the
// OUTPUT to the caller only once, even if two OUTPUTs race.
func (t *PendingTable) Resolve(inputID string) (*PendingRequest, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	p, ok := t.entries[inputID]
	if !ok {
		return nil, false
	}
	delete(t.entries, inputID)
	return p, true
}

// Delete removes inputID without returning it, used by the dispatch
// task's forward-failure path (its timeout path uses Resolve, so it
// can tell whether the entry was still pending). It must run before
// sending the corresponding ERROR frame, so a late OUTPUT from the
// agent finds nothing to resolve.
func (t *PendingTable) Delete(inputID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.entries, inputID)
}

// Len reports the number of in-flight requests, for the pending-bound
// testable property (|pending entries| <= |open dispatch connections|).
func (t *PendingTable) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.entries)
}
