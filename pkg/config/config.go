// Package config loads connector configuration from YAML files: API
// credentials plus the endpoint and timing knobs of the REST and WebSocket
// clients.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Credentials are the API credentials for one FTX account. SubAccount is
// optional; when set it scopes every request to that subaccount.
// Credentials must never be logged.
type Credentials struct {
	Key        string `yaml:"apiKey"`
	Secret     string `yaml:"apiSecret"`
	SubAccount string `yaml:"subAccountName"`
}

// Valid reports whether key and secret are both present.
func (c Credentials) Valid() bool {
	return c.Key != "" && c.Secret != ""
}

// Config is the full connector configuration.
type Config struct {
	Credentials Credentials

	// RESTEndpoint is the base URL of the REST API.
	RESTEndpoint string

	// WSEndpoint is the WebSocket URL.
	WSEndpoint string

	// ReadTimeout bounds every blocking stream read.
	ReadTimeout time.Duration

	// PingInterval is the liveness window of every stream channel.
	PingInterval time.Duration
}

// Default returns the configuration used when a field is absent from the
// file: production endpoints, 30s read timeout, 15s ping interval.
func Default() Config {
	return Config{
		RESTEndpoint: "https://ftx.com",
		WSEndpoint:   "wss://ftx.com/ws/",
		ReadTimeout:  30 * time.Second,
		PingInterval: 15 * time.Second,
	}
}

// Load reads and validates a YAML configuration file.
func Load(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: open %s: %w", path, err)
	}
	defer f.Close()

	return LoadReader(f)
}

// fileConfig is the raw YAML shape. Durations are strings ("30s", "1m")
// parsed with time.ParseDuration.
type fileConfig struct {
	Credentials  Credentials `yaml:",inline"`
	RESTEndpoint string      `yaml:"restEndpoint"`
	WSEndpoint   string      `yaml:"wsEndpoint"`
	ReadTimeout  string      `yaml:"readTimeout"`
	PingInterval string      `yaml:"pingInterval"`
}

// LoadReader parses configuration from r, applying defaults for absent
// fields. Missing credentials fail the load; everything else has a default.
func LoadReader(r io.Reader) (Config, error) {
	var raw fileConfig

	dec := yaml.NewDecoder(r)
	if err := dec.Decode(&raw); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("config: parse: %w", err)
	}

	if !raw.Credentials.Valid() {
		return Config{}, errors.New("config: apiKey and apiSecret are required")
	}

	cfg := Default()
	cfg.Credentials = raw.Credentials
	if raw.RESTEndpoint != "" {
		cfg.RESTEndpoint = raw.RESTEndpoint
	}
	if raw.WSEndpoint != "" {
		cfg.WSEndpoint = raw.WSEndpoint
	}

	if raw.ReadTimeout != "" {
		d, err := time.ParseDuration(raw.ReadTimeout)
		if err != nil {
			return Config{}, fmt.Errorf("config: readTimeout: %w", err)
		}
		cfg.ReadTimeout = d
	}
	if raw.PingInterval != "" {
		d, err := time.ParseDuration(raw.PingInterval)
		if err != nil {
			return Config{}, fmt.Errorf("config: pingInterval: %w", err)
		}
		cfg.PingInterval = d
	}

	return cfg, nil
}
