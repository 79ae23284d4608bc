// Copyright 2026 The Voxlane Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"crypto/tls"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"

	"github.com/voxlane/voxlane/keylog"
)

// Config is the secure-transport layer configuration.
type Config struct {
	// ListenAddress is the TLS listener for inbound SIP connections,
	// e.g. ":5061".
	ListenAddress string `yaml:"listen_address"`

	// UpstreamAddress is where decrypted SIP traffic is forwarded,
	// e.g. "127.0.0.1:5060".
	UpstreamAddress string `yaml:"upstream_address"`

	// AdminSocketPath is the Unix socket for voxlanectl.
	// Default: /run/voxlane/tls-admin.sock.
	AdminSocketPath string `yaml:"admin_socket_path"`

	// SweepInterval is how often stale configuration generations are
	// collected, as a Go duration string. Default: "1m".
	SweepInterval string `yaml:"sweep_interval"`

	// SharedArenaBytes sizes the shared-memory string arena domain
	// names are duplicated into. Default: 65536.
	SharedArenaBytes int `yaml:"shared_arena_bytes"`

	// Keylog configures secret export.
	Keylog KeylogConfig `yaml:"keylog"`

	// Domains lists the TLS domains served by this proxy. At least
	// one is required; the first is the default for connections whose
	// SNI matches no domain.
	Domains []DomainConfig `yaml:"domains"`
}

// KeylogConfig configures the secret-export channels.
type KeylogConfig struct {
	// Mode is a comma-separated channel list: "file", "peer",
	// "file,peer", or "none"/empty for off.
	Mode string `yaml:"mode"`

	// File is the keylog file path, required when mode includes
	// "file".
	File string `yaml:"file"`

	// Peer is the UDP collector address as "host:port", optionally
	// with a ";transport=udp" suffix. Required when mode includes
	// "peer".
	Peer string `yaml:"peer"`
}

// DomainConfig is one TLS domain: a server name with its certificate
// chain and private key.
type DomainConfig struct {
	// Name is the SNI server name, e.g. "sip.example.org".
	Name string `yaml:"name"`

	// Certificate is the path to the PEM certificate chain.
	Certificate string `yaml:"certificate"`

	// Key is the path to the PEM private key.
	Key string `yaml:"key"`

	// MinVersion is the minimum TLS version for this domain: "1.2"
	// (default) or "1.3".
	MinVersion string `yaml:"min_version"`
}

// ParseMinVersion returns the domain's minimum TLS version as a
// crypto/tls constant.
func (d *DomainConfig) ParseMinVersion() (uint16, error) {
	switch d.MinVersion {
	case "", "1.2":
		return tls.VersionTLS12, nil
	case "1.3":
		return tls.VersionTLS13, nil
	default:
		return 0, fmt.Errorf("unsupported min_version %q (want \"1.2\" or \"1.3\")", d.MinVersion)
	}
}

// Default returns the configuration defaults applied before the file
// is loaded. They give every optional field a sensible zero value;
// the file itself is still required.
func Default() *Config {
	return &Config{
		AdminSocketPath:  "/run/voxlane/tls-admin.sock",
		SweepInterval:    "1m",
		SharedArenaBytes: 65536,
	}
}

// LoadFile loads configuration from path, merging over Default().
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	// JSONC is rewritten to plain JSON, which YAML 1.2 is a superset
	// of, so a single unmarshal path handles both formats.
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".jsonc":
		data = jsonc.ToJSON(data)
	}

	config := Default()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", path, err)
	}
	return config, nil
}

// Validate checks the configuration for errors, reporting all of them
// at once.
func (c *Config) Validate() error {
	var errs []error

	if c.ListenAddress == "" {
		errs = append(errs, fmt.Errorf("listen_address is required"))
	}
	if c.UpstreamAddress == "" {
		errs = append(errs, fmt.Errorf("upstream_address is required"))
	}
	if c.AdminSocketPath == "" {
		errs = append(errs, fmt.Errorf("admin_socket_path is required"))
	}
	if _, err := c.ParseSweepInterval(); err != nil {
		errs = append(errs, err)
	}
	if c.SharedArenaBytes <= 0 {
		errs = append(errs, fmt.Errorf("shared_arena_bytes must be positive, got %d", c.SharedArenaBytes))
	}

	mode, err := keylog.ParseMode(c.Keylog.Mode)
	if err != nil {
		errs = append(errs, err)
	} else {
		if mode.FileActive() && c.Keylog.File == "" {
			errs = append(errs, fmt.Errorf("keylog.file is required when keylog.mode includes \"file\""))
		}
		if mode.PeerActive() && c.Keylog.Peer == "" {
			errs = append(errs, fmt.Errorf("keylog.peer is required when keylog.mode includes \"peer\""))
		}
	}

	if len(c.Domains) == 0 {
		errs = append(errs, fmt.Errorf("at least one TLS domain is required"))
	}
	for i, domain := range c.Domains {
		if domain.Name == "" {
			errs = append(errs, fmt.Errorf("domains[%d]: name is required", i))
		}
		if domain.Certificate == "" {
			errs = append(errs, fmt.Errorf("domains[%d]: certificate is required", i))
		}
		if domain.Key == "" {
			errs = append(errs, fmt.Errorf("domains[%d]: key is required", i))
		}
		if _, err := domain.ParseMinVersion(); err != nil {
			errs = append(errs, fmt.Errorf("domains[%d]: %w", i, err))
		}
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// ParseSweepInterval returns SweepInterval as a duration.
func (c *Config) ParseSweepInterval() (time.Duration, error) {
	interval, err := time.ParseDuration(c.SweepInterval)
	if err != nil {
		return 0, fmt.Errorf("invalid sweep_interval %q: %w", c.SweepInterval, err)
	}
	if interval <= 0 {
		return 0, fmt.Errorf("sweep_interval must be positive, got %q", c.SweepInterval)
	}
	return interval, nil
}

// KeylogSettings converts the keylog section into the exporter's
// configuration. Call Validate first; an invalid mode string returns
// an error here too.
func (c *Config) KeylogSettings() (keylog.Config, error) {
	mode, err := keylog.ParseMode(c.Keylog.Mode)
	if err != nil {
		return keylog.Config{}, err
	}
	return keylog.Config{
		Mode:        mode,
		FilePath:    c.Keylog.File,
		PeerAddress: c.Keylog.Peer,
	}, nil
}
