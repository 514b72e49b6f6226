// Package config defines the gateway's configuration surface: an explicit,
// fully-enumerated struct with defaults applied field-by-field, optionally
// loaded from a config file, validated once at startup and treated as
// immutable afterwards.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

// Config enumerates every recognized option.
type Config struct {
	// ListenAddr is the address the proxy and control API listen on.
	ListenAddr string `mapstructure:"ListenAddr"`

	// MetricsAddr is the Prometheus metrics listen address; empty disables it.
	MetricsAddr string `mapstructure:"MetricsAddr"`

	// GatewayURL is the downstream content gateway's base address. A DNS
	// hostname enables subdomain addressing; an IP address forces path
	// addressing.
	GatewayURL string `mapstructure:"GatewayURL"`

	// IPFSAPIAddr is the IPFS node HTTP API address.
	IPFSAPIAddr string `mapstructure:"IPFSAPIAddr"`

	// IPNSKeyName identifies the private key the durable record is signed with.
	IPNSKeyName string `mapstructure:"IPNSKeyName"`

	// PublishedName is the mutable name the durable record is fetched under.
	PublishedName string `mapstructure:"PublishedName"`

	// RefreshInterval is the background mapping refresh period.
	RefreshInterval time.Duration `mapstructure:"RefreshInterval"`

	// RecordLifetime is the validity window of published name records.
	RecordLifetime time.Duration `mapstructure:"RecordLifetime"`

	// EnableTLS turns on TLS termination; requires both file paths below.
	EnableTLS   bool   `mapstructure:"EnableTLS"`
	TLSCertFile string `mapstructure:"TLSCertFile"`
	TLSKeyFile  string `mapstructure:"TLSKeyFile"`

	EnablePprof bool `mapstructure:"EnablePprof"`
	LogJSON     bool `mapstructure:"LogJSON"`
	LogDebug    bool `mapstructure:"LogDebug"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ListenAddr", "127.0.0.1:8080")
	v.SetDefault("MetricsAddr", "127.0.0.1:8090")
	v.SetDefault("GatewayURL", "http://127.0.0.1:8081")
	v.SetDefault("IPFSAPIAddr", "127.0.0.1:5001")
	v.SetDefault("IPNSKeyName", "self")
	v.SetDefault("PublishedName", "")
	v.SetDefault("RefreshInterval", "10s")
	v.SetDefault("RecordLifetime", "8760h")
	v.SetDefault("EnableTLS", false)
	v.SetDefault("EnablePprof", false)
	v.SetDefault("LogJSON", false)
	v.SetDefault("LogDebug", false)
}

// Load reads the configuration from an optional file. An empty path yields
// the defaults; flag overrides and validation are the caller's concern.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, viper.DecodeHook(mapstructure.StringToTimeDurationHookFunc())); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return &cfg, nil
}

// Validate checks the configuration once at startup. Any error here is
// fatal: a process with a broken configuration must not start.
func (c *Config) Validate() error {
	if c.ListenAddr == "" {
		return errors.New("listen address must not be empty")
	}

	u, err := url.Parse(c.GatewayURL)
	if err != nil {
		return fmt.Errorf("invalid gateway URL: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return errors.New("gateway URL must include scheme and host")
	}

	if c.IPFSAPIAddr == "" {
		return errors.New("IPFS API address must not be empty")
	}
	if c.IPNSKeyName == "" {
		return errors.New("IPNS key name must not be empty")
	}
	if c.PublishedName == "" {
		return errors.New("published name must not be empty")
	}
	if c.RefreshInterval <= 0 {
		return errors.New("refresh interval must be positive")
	}
	if c.RecordLifetime <= 0 {
		return errors.New("record lifetime must be positive")
	}

	if c.EnableTLS {
		if c.TLSCertFile == "" || c.TLSKeyFile == "" {
			return errors.New("TLS enabled but certificate or key file not configured")
		}
		if _, err := os.Stat(c.TLSCertFile); err != nil {
			return fmt.Errorf("TLS certificate file: %w", err)
		}
		if _, err := os.Stat(c.TLSKeyFile); err != nil {
			return fmt.Errorf("TLS key file: %w", err)
		}
	}

	return nil
}
