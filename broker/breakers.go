package broker

import (
	"sync"
	"time"

	"github.com/sage-x-project/sage-relay/resilience"
)

// breakerSet lazily creates one circuit breaker per target address on
// the dispatch forward path, so a consistently unreachable agent stops
// absorbing dispatch attempts after a few consecutive failures instead
// of forcing every caller to pay the full forward-and-fail cost.
type breakerSet struct {
	mu       sync.Mutex
	breakers map[string]*resilience.CircuitBreaker
}

func newBreakerSet() *breakerSet {
	return &breakerSet{breakers: make(map[string]*resilience.CircuitBreaker)}
}

func (s *breakerSet) forAddress(address string) *resilience.CircuitBreaker {
	s.mu.Lock()
	defer s.mu.Unlock()

	cb, ok := s.breakers[address]
	if !ok {
		cb = resilience.NewCircuitBreaker(5, 10*time.Second)
		s.breakers[address] = cb
	}
	return cb
}
