// Package config loads server settings from defaults, an optional YAML
// file and DATADECK_* environment variables, in rising precedence.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Server holds the HTTP listener settings.
type Server struct {
	Port        int      `mapstructure:"port" yaml:"port"`
	CORSOrigins []string `mapstructure:"cors_origins" yaml:"cors_origins"`
}

// Upload holds ingestion limits.
type Upload struct {
	MaxBytes int64 `mapstructure:"max_bytes" yaml:"max_bytes"`
}

// Session holds registry eviction settings. Durations are carried as
// integer minutes so the saved YAML stays hand-editable; zero TTL
// disables eviction.
type Session struct {
	TTLMinutes   int `mapstructure:"ttl_minutes" yaml:"ttl_minutes"`
	SweepMinutes int `mapstructure:"sweep_minutes" yaml:"sweep_minutes"`
}

// Log holds logging settings.
type Log struct {
	Verbose bool `mapstructure:"verbose" yaml:"verbose"`
}

// Config is the full server configuration.
type Config struct {
	Server  Server  `mapstructure:"server" yaml:"server"`
	Upload  Upload  `mapstructure:"upload" yaml:"upload"`
	Session Session `mapstructure:"session" yaml:"session"`
	Log     Log     `mapstructure:"log" yaml:"log"`
}

// SessionTTL returns the idle lifetime of a session.
func (c *Config) SessionTTL() time.Duration {
	return time.Duration(c.Session.TTLMinutes) * time.Minute
}

// SweepInterval returns how often the eviction janitor runs.
func (c *Config) SweepInterval() time.Duration {
	return time.Duration(c.Session.SweepMinutes) * time.Minute
}

// Load loads configuration from file, env, and defaults.
// Precedence: env > config file > defaults.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("DATADECK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("server.port", 8001)
	v.SetDefault("server.cors_origins", []string{
		"http://localhost:3000",
		"http://127.0.0.1:3000",
	})
	v.SetDefault("upload.max_bytes", int64(100<<20))
	v.SetDefault("session.ttl_minutes", 60)
	v.SetDefault("session.sweep_minutes", 5)
	v.SetDefault("log.verbose", false)

	// Config file
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home dir: %w", err)
		}
		v.AddConfigPath(filepath.Join(home, ".datadeck"))
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	// optional read
	_ = v.ReadInConfig()

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &c, nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile
// is empty, it writes to ~/.datadeck/config.yaml, creating the
// directory if necessary.
func Save(c *Config, cfgFile string) error {
	path := cfgFile
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("resolve home dir: %w", err)
		}
		dir := filepath.Join(home, ".datadeck")
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir config dir: %w", err)
		}
		path = filepath.Join(dir, "config.yaml")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
