// Package config handles configuration for the TimeBoard server,
// including defaults, a JSON or YAML file overlay, and command-line flags.
package config

import "time"

// Config holds runtime settings for the TimeBoard server.
//
// Fields:
//   - HTTPAddr: bind address for the web views, JSON API and /metrics.
//   - GRPCAddr: bind address for the gRPC API.
//   - SecretKey: HMAC secret for signing session tokens (HS256).
//   - SessionTTL: idle time after which a session's timeline is dropped.
//   - ImageMaxBytes / ImageMaxDimension / ImageQuality: image intake bounds.
//   - ImageMaxPixels: largest source image accepted, in width*height.
//   - BodyLimit: maximum accepted request body, uploads included.
//   - LogLevel: debug, info, warn or error.
type Config struct {
	HTTPAddr          string
	GRPCAddr          string
	SecretKey         string
	SessionTTL        time.Duration
	ImageMaxBytes     int
	ImageMaxDimension int
	ImageQuality      int
	ImageMaxPixels    int
	BodyLimit         int
	LogLevel          string
}

// LoadDefaults populates Config with development defaults.
// NOTE: SecretKey must be overridden outside of development.
func (c *Config) LoadDefaults() {
	c.HTTPAddr = ":8080"
	c.GRPCAddr = ":50051"
	c.SecretKey = "secretKey"
	c.SessionTTL = 2 * time.Hour
	c.ImageMaxBytes = 400 * 1024
	c.ImageMaxDimension = 1024
	c.ImageQuality = 85
	c.ImageMaxPixels = 24_000_000
	c.BodyLimit = 32 * 1024 * 1024
	c.LogLevel = "info"
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from an optional config file and finally from command-line flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseFile(cfg)
	parseFlags(cfg)
	return cfg
}
