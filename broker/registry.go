package broker

import (
	"sort"
	"strings"
	"sync"
	"time"
)

// Record is the externally-visible snapshot of one Announce Record:
// everything a lookup caller may see, with the connection handle kept
// private to the registry.
type Record struct {
	Address         string
	Summary         string
	Endpoints       []string
	LastAnnounceTS  int64
	LastHeartbeatTS int64
}

type entry struct {
	record Record
	conn   *safeConn
}

// Registry holds the broker's live Announce Records, keyed by
// address, behind a single RWMutex. Bind, Refresh, Touch, Unbind,
// ConnFor, Lookup and Len are O(1); Find and ListAll scan and sort
// every entry under the read lock; Sweep scans but releases the lock
// between evictions.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]*entry
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]*entry)}
}

// Bind installs a new Announce Record for address, connection conn.
// If a record already exists for address, its previous connection
// handle is returned so the caller can close it — this implements the
// "atomically close the predecessor" duplicate-announce policy (see
// DESIGN.md).
func (r *Registry) Bind(address, summary string, endpoints []string, conn *safeConn, now time.Time) (evicted *safeConn) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if prev, ok := r.entries[address]; ok && prev.conn != conn {
		evicted = prev.conn
	}

	r.entries[address] = &entry{
		record: Record{
			Address:         address,
			Summary:         summary,
			Endpoints:       endpoints,
			LastAnnounceTS:  now.Unix(),
			LastHeartbeatTS: now.Unix(),
		},
		conn: conn,
	}
	return evicted
}

// Refresh overwrites summary/endpoints and last_announce_ts for an
// address that is already bound to conn. It is a no-op if the
// registry's current connection for address is not conn (the record
// was already rebound to a newer connection).
func (r *Registry) Refresh(address, summary string, endpoints []string, conn *safeConn, now time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[address]
	if !ok || e.conn != conn {
		return
	}
	e.record.Summary = summary
	e.record.Endpoints = endpoints
	e.record.LastAnnounceTS = now.Unix()
	e.record.LastHeartbeatTS = now.Unix()
}

// Touch updates last_heartbeat_ts for address if it is currently bound
// to conn. Returns false if the address is not bound to this
// connection (stale handle, already evicted).
func (r *Registry) Touch(address string, conn *safeConn, now time.Time) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[address]
	if !ok || e.conn != conn {
		return false
	}
	ts := now.Unix()
	e.record.LastHeartbeatTS = ts
	e.record.LastAnnounceTS = ts
	return true
}

// Unbind removes the registry entry for address only if it is still
// bound to conn, so a control task that exits after having been
// superseded by a newer connection does not delete the newer record.
func (r *Registry) Unbind(address string, conn *safeConn) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if e, ok := r.entries[address]; ok && e.conn == conn {
		delete(r.entries, address)
	}
}

// ConnFor returns the live connection handle bound to address, for
// the dispatch path to forward an INPUT onto.
func (r *Registry) ConnFor(address string) (*safeConn, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.entries[address]
	if !ok {
		return nil, false
	}
	return e.conn, true
}

// Lookup returns the record for address, or ok=false if unbound.
func (r *Registry) Lookup(address string) (Record, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.entries[address]
	if !ok {
		return Record{}, false
	}
	return e.record, true
}

// Find returns up to limit records whose summary contains query
// case-insensitively, most-recently-announced first.
func (r *Registry) Find(query string, limit int) []Record {
	r.mu.RLock()
	defer r.mu.RUnlock()

	query = strings.ToLower(query)
	matches := make([]Record, 0, limit)
	for _, e := range r.entries {
		if strings.Contains(strings.ToLower(e.record.Summary), query) {
			matches = append(matches, e.record)
		}
	}
	sortByRecency(matches)
	if len(matches) > limit {
		matches = matches[:limit]
	}
	return matches
}

// ListAll returns a capped snapshot of all bound records,
// most-recently-announced first.
func (r *Registry) ListAll(limit int) []Record {
	r.mu.RLock()
	defer r.mu.RUnlock()

	all := make([]Record, 0, len(r.entries))
	for _, e := range r.entries {
		all = append(all, e.record)
	}
	sortByRecency(all)
	if len(all) > limit {
		all = all[:limit]
	}
	return all
}

// Len reports the number of bound addresses, for the registry-bound
// testable property (|registry entries| <= |open control connections|).
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// Sweep evicts every record whose last_announce_ts is older than
// staleBefore, returning the connections that must be closed by the
// caller. The lock is released and reacquired between evictions so a
// long sweep never holds the registry lock for the whole pass.
func (r *Registry) Sweep(staleBefore time.Time) []*safeConn {
	cutoff := staleBefore.Unix()

	var stale []string
	r.mu.RLock()
	for addr, e := range r.entries {
		if e.record.LastAnnounceTS < cutoff {
			stale = append(stale, addr)
		}
	}
	r.mu.RUnlock()

	var evicted []*safeConn
	for _, addr := range stale {
		r.mu.Lock()
		if e, ok := r.entries[addr]; ok && e.record.LastAnnounceTS < cutoff {
			evicted = append(evicted, e.conn)
			delete(r.entries, addr)
		}
		r.mu.Unlock()
	}
	return evicted
}

func sortByRecency(records []Record) {
	sort.Slice(records, func(i, j int) bool {
		return records[i].LastAnnounceTS > records[j].LastAnnounceTS
	})
}
