// Command relay runs the relay broker: the registry, pending-request
// table, liveness sweeper, and the three WebSocket endpoints.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/sage-x-project/sage-relay/broker"
	"github.com/sage-x-project/sage-relay/config"
	"github.com/sage-x-project/sage-relay/logging"
)

func main() {
	yamlPath := flag.String("config", "", "optional YAML config file overlaying environment defaults")
	env := flag.String("env", envOr("RELAY_ENV", "development"), "development or production")
	flag.Parse()

	cfg := config.LoadEnv()
	if *yamlPath != "" {
		if err := config.LoadYAML(*yamlPath, cfg); err != nil {
			log.Fatalf("load config: %v", err)
		}
	}

	zapLog, err := logging.New(*env)
	if err != nil {
		log.Fatalf("build logger: %v", err)
	}
	defer zapLog.Sync()
	logger := logging.Named(zapLog, "relay")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	b := broker.New(cfg, logger)
	if err := b.Run(ctx); err != nil {
		logger.Fatal("relay broker exited", zap.Error(err))
	}
}

func envOr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}
