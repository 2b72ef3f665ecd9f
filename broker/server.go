// Package broker implements the relay's three WebSocket endpoints
// (control, dispatch, lookup), the in-memory registry and pending
// tables they share, the liveness sweeper, and an HTTP monitoring side
// channel.
package broker

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/sage-x-project/sage-relay/config"
)

// upgradeTimeout bounds how long the initial HTTP-to-WebSocket
// handshake may take.
const upgradeTimeout = 10 * time.Second

// Broker wires the registry, pending table, sweeper, and all three
// endpoint handlers into one HTTP server listening on a single port.
type Broker struct {
	cfg      *config.RelayConfig
	log      *zap.Logger
	registry *Registry
	pending  *PendingTable
	breakers *breakerSet
	upgrader websocket.Upgrader

	server *http.Server
}

// New builds a Broker from configuration and a base logger.
func New(cfg *config.RelayConfig, log *zap.Logger) *Broker {
	return &Broker{
		cfg:      cfg,
		log:      log,
		registry: NewRegistry(),
		pending:  NewPendingTable(),
		breakers: newBreakerSet(),
		upgrader: websocket.Upgrader{
			HandshakeTimeout: upgradeTimeout,
			CheckOrigin:      func(r *http.Request) bool { return true },
		},
	}
}

// mux builds the broker's HTTP route table.
func (b *Broker) mux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws/announce", b.handleControl)
	mux.HandleFunc("/ws/input", b.handleDispatch)
	mux.HandleFunc("/ws/lookup", b.handleLookup)
	mux.HandleFunc("/", b.handleStatus)
	mux.HandleFunc("/agents", b.handleAgents)
	return mux
}

// Run starts the sweeper and the HTTP server, blocking until ctx is
// canceled or the server fails. On cancellation it shuts the server
// down gracefully.
func (b *Broker) Run(ctx context.Context) error {
	stopSweeper := b.startSweeper(ctx)
	defer stopSweeper()

	b.server = &http.Server{
		Addr:    b.cfg.ListenAddr,
		Handler: b.mux(),
	}

	errCh := make(chan error, 1)
	go func() {
		b.log.Info("relay broker listening", zap.String("addr", b.cfg.ListenAddr))
		errCh <- b.server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return b.server.Shutdown(shutdownCtx)
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	}
}

// Handler exposes the broker's HTTP route table, for embedding in an
// externally-managed *http.Server or an httptest.Server.
func (b *Broker) Handler() http.Handler { return b.mux() }

// Registry exposes the broker's registry for tests and the HTTP side
// channel.
func (b *Broker) Registry() *Registry { return b.registry }

// Pending exposes the broker's pending table for tests.
func (b *Broker) Pending() *PendingTable { return b.pending }
