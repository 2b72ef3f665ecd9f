// Package config loads relay and client configuration from an
// optional .env file, process environment variables, and an optional
// YAML file, with typed defaults matching SPEC_FULL.md §6.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// RelayConfig configures the broker binary.
type RelayConfig struct {
	ListenAddr     string        `yaml:"listen_addr"`
	EmailDomain    string        `yaml:"email_domain"`
	HeartbeatSec   int           `yaml:"heartbeat_interval_sec"`
	StaleAgentSec  int           `yaml:"stale_agent_sec"`
	DeadlineSec    int           `yaml:"request_deadline_sec"`
	SweepInterval  time.Duration `yaml:"-"`
	LookupFindCap  int           `yaml:"lookup_find_cap"`
	LookupListCap  int           `yaml:"lookup_list_cap"`
}

// ClientConfig configures the serving-agent loop and calling client.
type ClientConfig struct {
	RelayURL         string
	EmailDomain      string
	HeartbeatSec     int
	RequestTimeoutSec int
}

// LoadEnv reads an optional .env file (ignored if absent) and returns
// a RelayConfig built from environment variables, falling back to the
// defaults named in SPEC_FULL.md §6.
func LoadEnv() *RelayConfig {
	_ = godotenv.Load()

	return &RelayConfig{
		ListenAddr:    getEnv("RELAY_LISTEN_ADDR", ":8000"),
		EmailDomain:   getEnv("EMAIL_DOMAIN", "mail.relay.internal"),
		HeartbeatSec:  getEnvInt("HEARTBEAT_INTERVAL_SEC", 60),
		StaleAgentSec: getEnvInt("STALE_AGENT_SEC", 120),
		DeadlineSec:   getEnvInt("REQUEST_DEADLINE_SEC", 300),
		SweepInterval: 30 * time.Second,
		LookupFindCap: getEnvInt("LOOKUP_FIND_CAP", 10),
		LookupListCap: getEnvInt("LOOKUP_LIST_CAP", 100),
	}
}

// LoadClientEnv reads an optional .env file and returns a
// ClientConfig for the serving-agent loop and calling client.
func LoadClientEnv() *ClientConfig {
	_ = godotenv.Load()

	return &ClientConfig{
		RelayURL:          getEnv("RELAY_URL", "ws://localhost:8000/ws/announce"),
		EmailDomain:       getEnv("EMAIL_DOMAIN", "mail.relay.internal"),
		HeartbeatSec:      getEnvInt("HEARTBEAT_INTERVAL_SEC", 60),
		RequestTimeoutSec: getEnvInt("REQUEST_TIMEOUT_SEC", 30),
	}
}

// LoadYAML merges settings from a YAML file on top of the defaults
// already present in cfg. A missing file is not an error.
func LoadYAML(path string, cfg *RelayConfig) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}
	return nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
