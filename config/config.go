// Package config loads the registrar configuration. Sources are layered:
// built-in defaults, then an optional YAML file, then REGISTRAR_* environment
// variables.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/Konsultn-Engineering/registrar/connector"
	"github.com/Konsultn-Engineering/registrar/logging"
	"github.com/Konsultn-Engineering/registrar/validation"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "REGISTRAR_"

// PathEnvVar overrides the config file location.
const PathEnvVar = EnvPrefix + "CONFIG"

// DefaultPaths are searched in order when no path is given.
var DefaultPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/registrar/config.yaml",
}

type Config struct {
	Server   ServerConfig     `koanf:"server"`
	Database connector.Config `koanf:"database"`
	Logging  logging.Config   `koanf:"logging"`
	Paging   PagingConfig     `koanf:"paging"`
	Security SecurityConfig   `koanf:"security"`
}

type ServerConfig struct {
	Addr            string        `koanf:"addr" validate:"required"`
	ReadTimeout     time.Duration `koanf:"read_timeout" validate:"gte=0"`
	WriteTimeout    time.Duration `koanf:"write_timeout" validate:"gte=0"`
	IdleTimeout     time.Duration `koanf:"idle_timeout" validate:"gte=0"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" validate:"gte=0"`
}

// PagingConfig bounds listing requests. DefaultSize applies when a request
// omits size.
type PagingConfig struct {
	DefaultSize int64 `koanf:"default_size" validate:"gt=0,ltefield=MaxSize"`
	MaxSize     int64 `koanf:"max_size" validate:"gt=0"`
}

type SecurityConfig struct {
	CORSOrigins       []string      `koanf:"cors_origins"`
	RateLimitReqs     int           `koanf:"rate_limit_reqs" validate:"gte=0"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window" validate:"gte=0"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
}

func defaultConfig() *Config {
	logCfg := logging.DefaultConfig()
	logCfg.Output = nil

	return &Config{
		Server: ServerConfig{
			Addr:            ":8080",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Database: connector.DefaultConfig(),
		Logging:  logCfg,
		Paging: PagingConfig{
			DefaultSize: 20,
			MaxSize:     100,
		},
		Security: SecurityConfig{
			CORSOrigins:     []string{"*"},
			RateLimitReqs:   100,
			RateLimitWindow: time.Minute,
		},
	}
}

// Load reads the configuration. An empty path falls back to PathEnvVar and
// then DefaultPaths; a missing file is not an error unless path was given.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path == "" {
		path = findConfigFile()
	} else if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("config file %s: %w", path, err)
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envTransform(k.Keys())), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := splitLists(k); err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}
	cfg.Logging.Output = os.Stderr

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks field rules of every section.
func (c *Config) Validate() error {
	if verrs := validation.Struct(c); verrs != nil {
		return fmt.Errorf("configuration validation failed: %w", verrs)
	}
	return nil
}

func findConfigFile() string {
	if p := os.Getenv(PathEnvVar); p != "" {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	for _, p := range DefaultPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// envTransform maps REGISTRAR_DATABASE_SSL_MODE to database.ssl_mode. Keys
// already known from defaults or the file are matched exactly, so
// underscores inside a key survive; unknown names split at the first
// underscore.
func envTransform(known []string) func(string) string {
	index := make(map[string]string, len(known))
	for _, key := range known {
		index[strings.ReplaceAll(key, ".", "_")] = key
	}
	return func(name string) string {
		name = strings.ToLower(strings.TrimPrefix(name, EnvPrefix))
		if name == "config" {
			return ""
		}
		if key, ok := index[name]; ok {
			return key
		}
		return strings.Replace(name, "_", ".", 1)
	}
}

var listKeys = []string{
	"security.cors_origins",
}

// splitLists turns comma separated env values into slices.
func splitLists(k *koanf.Koanf) error {
	for _, key := range listKeys {
		s, ok := k.Get(key).(string)
		if !ok {
			continue
		}
		var items []string
		for _, part := range strings.Split(s, ",") {
			if part = strings.TrimSpace(part); part != "" {
				items = append(items, part)
			}
		}
		if err := k.Set(key, items); err != nil {
			return fmt.Errorf("failed to set %s: %w", key, err)
		}
	}
	return nil
}
