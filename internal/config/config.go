package config

import (
	"fmt"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config represents the top-level configuration for AgriTrace.
type Config struct {
	Server     ServerConfig     `koanf:"server"`
	Database   DatabaseConfig   `koanf:"database"`
	Ledger     LedgerConfig     `koanf:"ledger"`
	Provenance ProvenanceConfig `koanf:"provenance"`
}

// ServerConfig holds the HTTP server configuration.
type ServerConfig struct {
	Port          int    `koanf:"port"`
	Host          string `koanf:"host"`
	MaxBodySizeMB int    `koanf:"max_body_size_mb"`
	Mode          string `koanf:"mode"` // "debug" or "release"
}

// DatabaseConfig holds the database connection settings.
// Type "memory" runs the store in-process, for development only.
type DatabaseConfig struct {
	Type         string `koanf:"type"` // "postgres" or "memory"
	DSN          string `koanf:"dsn"`
	MaxOpenConns int    `koanf:"max_open_conns"`
	MaxIdleConns int    `koanf:"max_idle_conns"`
	AutoMigrate  bool   `koanf:"auto_migrate"`
}

// LedgerConfig holds settings for the attestation ledger client.
type LedgerConfig struct {
	Delay       string  `koanf:"delay"`   // simulated block time, parsed as time.Duration in main
	Timeout     string  `koanf:"timeout"` // per-attempt submission timeout
	MaxRetries  int     `koanf:"max_retries"`
	FailureRate float64 `koanf:"failure_rate"` // fault injection, 0 in production
}

// ProvenanceConfig holds settings for the provenance core.
type ProvenanceConfig struct {
	ProfilesPath string `koanf:"profiles_path"` // role payload profiles YAML, empty for built-ins
}

// Load loads the configuration from the given file path and environment variables.
func Load(configPath string) (*Config, error) {
	k := koanf.New(".")

	// 1. Defaults
	defaults := map[string]interface{}{
		"server.port":              8080,
		"server.host":              "0.0.0.0",
		"server.max_body_size_mb":  1,
		"server.mode":              "release",
		"database.type":            "postgres",
		"database.dsn":             "postgres://localhost:5432/agritrace?sslmode=disable",
		"database.max_open_conns":  25,
		"database.max_idle_conns":  25,
		"database.auto_migrate":    true,
		"ledger.delay":             "800ms",
		"ledger.timeout":           "5s",
		"ledger.max_retries":       3,
		"ledger.failure_rate":      0.0,
		"provenance.profiles_path": "",
	}
	for key, value := range defaults {
		k.Set(key, value)
	}

	// 2. Load from file
	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	}

	// 3. Load from Environment Variables
	// AGRITRACE_SERVER__PORT=9090 overrides server.port
	if err := k.Load(env.Provider("AGRITRACE_", ".", func(s string) string {
		return strings.Replace(strings.ToLower(
			strings.TrimPrefix(s, "AGRITRACE_")), "__", ".", -1)
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}
