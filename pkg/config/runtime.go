package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/fluxorio/actorrt/pkg/actor"
)

// ServerConfig is the top-level runtime configuration: the supervisor's
// shape, every service instance to boot, and the optional admin/debug
// surfaces.
type ServerConfig struct {
	// Sid identifies this server definition within a multi-server
	// config file (spec §6); zero when the file holds a single server.
	Sid      int             `yaml:"sid" json:"sid"`
	Workers  int             `yaml:"workers" json:"workers"`
	TickMS   int             `yaml:"tick_ms" json:"tick_ms"`
	Services []ServiceConfig `yaml:"services" json:"services"`
	Admin    AdminConfig     `yaml:"admin" json:"admin"`
	Metrics  MetricsConfig   `yaml:"metrics" json:"metrics"`
}

// ServiceConfig describes one service instance the supervisor boots at
// startup, mirroring the add_service parameters of spec §4.7 so a
// config file can declare a static topology without any runcmd calls.
type ServiceConfig struct {
	Name       string `yaml:"name" json:"name"`
	Type       string `yaml:"type" json:"type"`
	Unique     bool   `yaml:"unique" json:"unique"`
	WorkerHint uint8  `yaml:"worker_hint" json:"worker_hint"`
	// Config is the raw, service-type-specific payload passed verbatim
	// to Service.Init, e.g. a kvstore DSN or a JSON blob.
	Config string `yaml:"config" json:"config"`
}

// AdminConfig gates privileged runcmd verbs behind a JWT bearer token
// (see pkg/admin).
type AdminConfig struct {
	Enabled     bool   `yaml:"enabled" json:"enabled"`
	ListenAddr  string `yaml:"listen_addr" json:"listen_addr"`
	SigningKey  string `yaml:"signing_key" json:"signing_key"`
	TokenTTLSec int    `yaml:"token_ttl_sec" json:"token_ttl_sec"`
}

// MetricsConfig controls the Prometheus debug endpoint exposed at the
// cmd layer (pkg/metrics + cmd/supervisor).
type MetricsConfig struct {
	Enabled    bool   `yaml:"enabled" json:"enabled"`
	ListenAddr string `yaml:"listen_addr" json:"listen_addr"`
}

// DefaultServerConfig returns a single-worker, admin-and-metrics-off
// configuration suitable as a starting point for LoadWithEnv overrides.
func DefaultServerConfig() *ServerConfig {
	return &ServerConfig{
		Workers: 1,
		TickMS:  10,
		Admin: AdminConfig{
			ListenAddr:  ":9091",
			TokenTTLSec: 3600,
		},
		Metrics: MetricsConfig{
			ListenAddr: ":9090",
		},
	}
}

// Validate checks the invariants the supervisor needs before boot: a
// worker count in [1, 255] (actor.MaxWorkers), a positive tick, and
// every declared service naming a non-empty type.
func (c *ServerConfig) Validate() error {
	if c.Workers < 1 || c.Workers > actor.MaxWorkers {
		return fmt.Errorf("config: workers must be between 1 and %d, got %d", actor.MaxWorkers, c.Workers)
	}
	if c.TickMS <= 0 {
		return fmt.Errorf("config: tick_ms must be positive, got %d", c.TickMS)
	}
	for i, svc := range c.Services {
		if svc.Type == "" {
			return fmt.Errorf("config: services[%d] (%s) has an empty type", i, svc.Name)
		}
		if svc.WorkerHint != 0 && int(svc.WorkerHint) > c.Workers {
			return fmt.Errorf("config: services[%d] (%s) worker_hint %d exceeds workers %d", i, svc.Name, svc.WorkerHint, c.Workers)
		}
	}
	if c.Admin.Enabled && c.Admin.SigningKey == "" {
		return fmt.Errorf("config: admin.signing_key is required when admin.enabled is true")
	}
	return nil
}

// LoadServerConfig loads and validates a ServerConfig from path
// (YAML or JSON, auto-detected by extension), applying APP_-prefixed
// environment variable overrides on top of the file.
func LoadServerConfig(path string) (*ServerConfig, error) {
	cfg := DefaultServerConfig()
	if err := LoadWithEnv(path, "APP", cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadServerDefs loads a multi-server config file: a JSON array of
// ServerConfig entries, each naming the Sid the -r flag selects among
// (spec §6). Unlike LoadServerConfig this is plain encoding/json with
// no env-override pass, since a fleet config file is meant to be read
// verbatim and selected into, not templated per-process.
func LoadServerDefs(path string) ([]*ServerConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	var raw []*ServerConfig
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	defs := make([]*ServerConfig, 0, len(raw))
	for _, entry := range raw {
		merged := DefaultServerConfig()
		merged.Sid = entry.Sid
		if entry.Workers != 0 {
			merged.Workers = entry.Workers
		}
		if entry.TickMS != 0 {
			merged.TickMS = entry.TickMS
		}
		if entry.Services != nil {
			merged.Services = entry.Services
		}
		merged.Admin = entry.Admin
		merged.Metrics = entry.Metrics
		if err := merged.Validate(); err != nil {
			return nil, fmt.Errorf("config: server sid=%d: %w", merged.Sid, err)
		}
		defs = append(defs, merged)
	}
	return defs, nil
}

// SelectServerDef returns the entry in defs whose Sid matches sid, or
// false if none matches (spec §6 exit code 3).
func SelectServerDef(defs []*ServerConfig, sid int) (*ServerConfig, bool) {
	for _, d := range defs {
		if d.Sid == sid {
			return d, true
		}
	}
	return nil, false
}
