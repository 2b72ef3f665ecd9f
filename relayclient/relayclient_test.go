package relayclient_test

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/sage-x-project/sage-relay/broker"
	"github.com/sage-x-project/sage-relay/config"
	"github.com/sage-x-project/sage-relay/identity"
	"github.com/sage-x-project/sage-relay/relayclient"
)

func TestServeLoopAndCallRoundTrip(t *testing.T) {
	cfg := &config.RelayConfig{
		HeartbeatSec:  1,
		StaleAgentSec: 30,
		DeadlineSec:   5,
		SweepInterval: time.Hour,
		LookupFindCap: 10,
		LookupListCap: 100,
	}
	b := broker.New(cfg, zap.NewNop())
	srv := httptest.NewServer(b.Handler())
	defer srv.Close()

	relayURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/announce"
	dispatchURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/input"

	id, err := identity.Generate()
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		opts := relayclient.AgentOptions{
			RelayURL:          relayURL,
			Summary:           "echoes input",
			Endpoints:         []string{},
			HeartbeatInterval: time.Second,
		}
		_ = relayclient.ServeLoop(ctx, id, opts, func(prompt string) string {
			return prompt
		}, zap.NewNop())
	}()

	time.Sleep(150 * time.Millisecond)

	result, err := relayclient.Call(context.Background(), dispatchURL, id.Address, "hi", 2*time.Second)
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	if result != "hi" {
		t.Fatalf("result = %q, want %q", result, "hi")
	}
}

func TestCallAgentOffline(t *testing.T) {
	cfg := &config.RelayConfig{
		HeartbeatSec: 60, StaleAgentSec: 120, DeadlineSec: 5,
		SweepInterval: time.Hour, LookupFindCap: 10, LookupListCap: 100,
	}
	b := broker.New(cfg, zap.NewNop())
	srv := httptest.NewServer(b.Handler())
	defer srv.Close()

	dispatchURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/input"

	_, err := relayclient.Call(context.Background(), dispatchURL, "0x"+strings.Repeat("00", 32), "hi", time.Second)
	if err == nil {
		t.Fatal("expected an error for an offline agent")
	}
	relayErr, ok := err.(*relayclient.RelayError)
	if !ok {
		t.Fatalf("err = %T, want *relayclient.RelayError", err)
	}
	if relayErr.Message != "wire: agent offline" {
		t.Fatalf("message = %q, want AgentOffline", relayErr.Message)
	}
}
