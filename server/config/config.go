package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/nomis52/reactivities/logging"
)

const defaultListenAddr = ":8080"

// ServerConfig represents the server runtime configuration.
type ServerConfig struct {
	Listener ListenerConfig `yaml:"listener"`
	Sync     SyncConfig     `yaml:"sync"`
	LogLevel string         `yaml:"log_level"`
	// The path to the store config file (API, monitoring, journal)
	StoreConfig string `yaml:"store_config"`
	// Watch reloads the store config and TLS key pair when the files change
	Watch bool `yaml:"watch"`
}

// ListenerConfig holds HTTP server listener settings.
type ListenerConfig struct {
	// The listen address, defaults to :8080
	Addr string `yaml:"addr"`
	// TLS is enabled when both TLSCert and TLSKey are set
	TLSCert string `yaml:"tls_cert"`
	TLSKey  string `yaml:"tls_key"`
}

// SyncConfig controls the scheduled refresh of the store.
type SyncConfig struct {
	// Cron schedules separated by ';'. Empty disables scheduled syncs.
	Schedule string `yaml:"schedule"`
	// LoadOnStart loads all activities before the listener starts.
	LoadOnStart bool `yaml:"load_on_start"`
}

// TLSEnabled reports whether the listener should serve TLS.
func (c *ServerConfig) TLSEnabled() bool {
	return c.Listener.TLSCert != "" && c.Listener.TLSKey != ""
}

// LoadConfig reads the YAML config file at the given path and returns a ServerConfig struct.
func LoadConfig(path string) (*ServerConfig, error) {
	var cfg ServerConfig
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open server config file %s: %w", path, err)
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode YAML server config: %w", err)
	}

	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// SetDefaults sets reasonable default values for optional fields.
func (c *ServerConfig) SetDefaults() {
	if c.Listener.Addr == "" {
		c.Listener.Addr = defaultListenAddr
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

// Validate checks the server configuration.
func (c *ServerConfig) Validate() error {
	if c.StoreConfig == "" {
		return errors.New("store_config is required")
	}
	if (c.Listener.TLSCert == "") != (c.Listener.TLSKey == "") {
		return errors.New("tls_cert and tls_key must be set together")
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

// Level returns LogLevel as an slog.Level.
func (c *ServerConfig) Level() (slog.Level, error) {
	return logging.ParseLevel(c.LogLevel)
}
