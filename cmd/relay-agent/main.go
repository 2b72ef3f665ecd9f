// Command relay-agent runs a trivial demo serving agent: it announces
// to a relay and echoes back whatever prompt it receives.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/sage-x-project/sage-relay/config"
	"github.com/sage-x-project/sage-relay/identity"
	"github.com/sage-x-project/sage-relay/logging"
	"github.com/sage-x-project/sage-relay/relayclient"
)

func main() {
	dir := flag.String("dir", ".", "identity directory to load or create")
	summary := flag.String("summary", "echoes input", "free-text summary advertised in ANNOUNCE")
	flag.Parse()

	cfg := config.LoadClientEnv()

	id, err := identity.Load(*dir)
	if err != nil {
		log.Fatalf("load identity: %v", err)
	}
	if id == nil {
		id, err = identity.Generate()
		if err != nil {
			log.Fatalf("generate identity: %v", err)
		}
		if err := identity.Save(id, *dir); err != nil {
			log.Fatalf("save identity: %v", err)
		}
		log.Printf("generated new identity %s", id.Address)
	}

	zapLog, err := logging.New("development")
	if err != nil {
		log.Fatalf("build logger: %v", err)
	}
	logger := logging.Named(zapLog, "relay-agent")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := relayclient.AgentOptions{
		RelayURL:          cfg.RelayURL,
		Summary:           *summary,
		Endpoints:         []string{},
		HeartbeatInterval: time.Duration(cfg.HeartbeatSec) * time.Second,
	}

	echo := func(prompt string) string {
		return strings.TrimSpace(prompt)
	}

	if err := relayclient.ServeLoop(ctx, id, opts, echo, logger); err != nil && ctx.Err() == nil {
		logger.Fatal("serve loop exited", zap.Error(err))
	}
}
