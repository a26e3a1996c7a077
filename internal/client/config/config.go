// Package config handles configuration for the TimeBoard CLI.
package config

import "time"

// Config holds runtime settings for the TimeBoard CLI.
//
// Fields:
//   - ServerEndpointAddr: host:port of the gRPC endpoint.
//   - CallTimeout: deadline applied to every remote call.
//   - MaxMessageSize: largest request sent, attachments included. Keep it at
//     or below the server's body limit.
type Config struct {
	ServerEndpointAddr string
	CallTimeout        time.Duration
	MaxMessageSize     int
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerEndpointAddr = "127.0.0.1:50051"
	c.CallTimeout = 10 * time.Second
	c.MaxMessageSize = 32 * 1024 * 1024
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
