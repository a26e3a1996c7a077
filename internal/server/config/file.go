package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/timeboard/internal/flagx"
	"github.com/dmitrijs2005/timeboard/internal/timex"
	"gopkg.in/yaml.v3"
)

// FileConfig is the on-disk shape of the configuration. It is decoded from
// JSON or YAML and only its non-zero fields are copied onto Config, so a file
// may set just the values it cares about.
type FileConfig struct {
	HTTPAddr          string         `json:"http_addr" yaml:"http_addr"`
	GRPCAddr          string         `json:"grpc_addr" yaml:"grpc_addr"`
	SecretKey         string         `json:"secret_key" yaml:"secret_key"`
	SessionTTL        timex.Duration `json:"session_ttl" yaml:"session_ttl"`
	ImageMaxBytes     int            `json:"image_max_bytes" yaml:"image_max_bytes"`
	ImageMaxDimension int            `json:"image_max_dimension" yaml:"image_max_dimension"`
	ImageQuality      int            `json:"image_quality" yaml:"image_quality"`
	ImageMaxPixels    int            `json:"image_max_pixels" yaml:"image_max_pixels"`
	BodyLimit         int            `json:"body_limit" yaml:"body_limit"`
	LogLevel          string         `json:"log_level" yaml:"log_level"`
}

// parseFile overlays values from the file named by -c/-config. Files ending in
// .yaml or .yml are read as YAML, anything else as JSON. Without the flag
// nothing happens. An unreadable or malformed file panics: the server must not
// start on a half-applied configuration.
func parseFile(config *Config) {
	path := flagx.ConfigFileFlag()
	if path == "" {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	fc := &FileConfig{}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, fc)
	default:
		err = json.Unmarshal(data, fc)
	}
	if err != nil {
		panic(err)
	}

	fc.apply(config)
}

func (fc *FileConfig) apply(config *Config) {
	setString(&config.HTTPAddr, fc.HTTPAddr)
	setString(&config.GRPCAddr, fc.GRPCAddr)
	setString(&config.SecretKey, fc.SecretKey)
	setString(&config.LogLevel, fc.LogLevel)
	setInt(&config.ImageMaxBytes, fc.ImageMaxBytes)
	setInt(&config.ImageMaxDimension, fc.ImageMaxDimension)
	setInt(&config.ImageQuality, fc.ImageQuality)
	setInt(&config.ImageMaxPixels, fc.ImageMaxPixels)
	setInt(&config.BodyLimit, fc.BodyLimit)
	if fc.SessionTTL.Duration > 0 {
		config.SessionTTL = fc.SessionTTL.Duration
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setInt(dst *int, v int) {
	if v != 0 {
		*dst = v
	}
}
