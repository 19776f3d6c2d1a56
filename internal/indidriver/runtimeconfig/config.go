// Package runtimeconfig holds a driver host process's own bootstrap
// settings: where to bind the debug API, where to keep the audit
// database, and the compiled protocol version ceiling. This is
// distinct from pkg/indiconfig, which persists per-device property
// state in the wire XML format — runtimeconfig never touches the wire.
package runtimeconfig

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config is the driver host's bootstrap configuration.
type Config struct {
	// DebugAddr is the address the debug HTTP API binds to.
	// Env: INDI_DEBUG_ADDR. Default: 127.0.0.1:8177.
	DebugAddr string `yaml:"debug_addr"`

	// AuditDBPath is the sqlite file the audit store writes to.
	// Env: INDI_AUDIT_DB. Default: ~/.indi/audit.db.
	AuditDBPath string `yaml:"audit_db_path"`

	// LogLevel is the zerolog level name.
	// Env: INDI_LOG_LEVEL. Default: "info".
	LogLevel string `yaml:"log_level"`

	// ProtocolVersion records the INDIV ceiling. The dispatcher does
	// not read this field; it enforces indi.SupportedProtocolVersion.
	ProtocolVersion string `yaml:"protocol_version"`
}

const (
	defaultDebugAddr      = "127.0.0.1:8177"
	defaultLogLevel       = "info"
	defaultProtoVersion   = "1.7"
	defaultAuditFileName  = "audit.db"
	defaultHostConfigName = "host.yaml"
)

// New builds the configuration: defaults, overlaid by an optional YAML
// file at ~/.indi/host.yaml if present, overlaid by environment
// variables, which always win — the same precedence order the
// teacher's own config.New uses for its connection settings.
func New() (*Config, error) {
	cfg := &Config{
		DebugAddr:       defaultDebugAddr,
		AuditDBPath:     defaultAuditDBPath(),
		LogLevel:        defaultLogLevel,
		ProtocolVersion: defaultProtoVersion,
	}

	if path, err := hostConfigPath(); err == nil {
		if err := overlayYAML(cfg, path); err != nil {
			return nil, err
		}
	}

	overlayEnv(cfg)

	return cfg, nil
}

func defaultAuditDBPath() string {
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".indi", defaultAuditFileName)
	}
	return filepath.Join(".", ".indi", defaultAuditFileName)
}

func hostConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".indi", defaultHostConfigName), nil
}

func overlayYAML(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read host config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse host config: %w", err)
	}
	return nil
}

func overlayEnv(cfg *Config) {
	if v := os.Getenv("INDI_DEBUG_ADDR"); v != "" {
		cfg.DebugAddr = v
	}
	if v := os.Getenv("INDI_AUDIT_DB"); v != "" {
		cfg.AuditDBPath = v
	}
	if v := os.Getenv("INDI_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("INDI_PROTOCOL_VERSION"); v != "" {
		cfg.ProtocolVersion = v
	}
}
