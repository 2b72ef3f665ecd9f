package broker

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// startSweeper launches the liveness sweeper goroutine and returns a
// function that stops it. The sweeper runs on b.cfg.SweepInterval and
// evicts any Announce Record whose last_announce_ts is older than
// b.cfg.StaleAgentSec, closing the evicted connections.
func (b *Broker) startSweeper(ctx context.Context) (stop func()) {
	ticker := time.NewTicker(b.cfg.SweepInterval)
	done := make(chan struct{})
	quit := make(chan struct{})

	go func() {
		defer close(done)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-quit:
				return
			case <-ticker.C:
				b.sweepOnce()
			}
		}
	}()

	return func() {
		close(quit)
		<-done
	}
}

func (b *Broker) sweepOnce() {
	staleBefore := time.Now().Add(-time.Duration(b.cfg.StaleAgentSec) * time.Second)
	evicted := b.registry.Sweep(staleBefore)
	for _, conn := range evicted {
		b.log.Info("evicting stale agent", zap.Duration("stale_threshold", time.Duration(b.cfg.StaleAgentSec)*time.Second))
		_ = conn.Close()
	}
}
