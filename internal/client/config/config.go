package config

import "time"

// Config holds runtime settings for the shoplist client.
//
// Fields:
//   - ServerEndpointAddr: host:port of the backend gRPC endpoint.
//   - DatabaseFile: SQLite file keeping the signed-in session.
//   - RequestTimeout: upper bound for a single backend call.
//   - InMemory: run against an in-process backend instead of the server.
//   - LogLevel: debug, info, warn or error.
type Config struct {
	ServerEndpointAddr string
	DatabaseFile       string
	RequestTimeout     time.Duration
	InMemory           bool
	LogLevel           string
}

// LoadDefaults populates c with defaults.
func (c *Config) LoadDefaults() {
	c.ServerEndpointAddr = "127.0.0.1:50051"
	c.DatabaseFile = "shoplist.db"
	c.RequestTimeout = 10 * time.Second
	c.InMemory = false
	c.LogLevel = "warn"
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
