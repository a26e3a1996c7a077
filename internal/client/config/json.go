package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/timeboard/internal/flagx"
	"github.com/dmitrijs2005/timeboard/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Intervals may
// be strings like "3s" or integer nanoseconds.
type JsonConfig struct {
	ServerEndpointAddr string         `json:"server_endpoint_addr"`
	CallTimeout        timex.Duration `json:"call_timeout"`
	MaxMessageSize     int            `json:"max_message_size"`
}

// parseJson overlays Config with values from the JSON file named by -c or
// -config. Missing keys keep their current value. Read or unmarshal errors
// panic.
func parseJson(cfg *Config) {
	path := flagx.ConfigFileFlag()
	if path == "" {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	jc.apply(cfg)
}

func (jc JsonConfig) apply(cfg *Config) {
	if jc.ServerEndpointAddr != "" {
		cfg.ServerEndpointAddr = jc.ServerEndpointAddr
	}
	if jc.CallTimeout.Duration > 0 {
		cfg.CallTimeout = jc.CallTimeout.Duration
	}
	if jc.MaxMessageSize > 0 {
		cfg.MaxMessageSize = jc.MaxMessageSize
	}
}
