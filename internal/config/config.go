// Package config loads and validates the YAML configuration: global settings
// plus the ordered set of monitored targets.
package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/raysh454/kanshi/internal/extract"
	"github.com/raysh454/kanshi/internal/monitor"
	"github.com/raysh454/kanshi/internal/store"
)

// EmailConfig configures the SMTP notifier.
type EmailConfig struct {
	SMTPServer string `yaml:"smtp_server"`
	SMTPPort   int    `yaml:"smtp_port"`
	Username   string `yaml:"username"`
	Password   string `yaml:"password"`
	FromAddr   string `yaml:"from_addr"`
	ToAddr     string `yaml:"to_addr"`
}

// Settings are the global knobs shared by all targets.
type Settings struct {
	// CheckInterval is the default seconds between checks; targets may
	// override it individually.
	CheckInterval int `yaml:"check_interval"`

	// DataDir is where snapshots and history are stored.
	DataDir string `yaml:"data_dir"`

	LogLevel string `yaml:"log_level"`

	// WebhookURL enables webhook notifications when set.
	WebhookURL string `yaml:"webhook_url,omitempty"`

	// Email enables email notifications when present.
	Email *EmailConfig `yaml:"email,omitempty"`

	// ListenAddr enables the read-only status API when set.
	ListenAddr string `yaml:"listen_addr,omitempty"`
}

// Config is the complete parsed configuration.
type Config struct {
	Settings Settings          `yaml:"settings"`
	Targets  []*monitor.Target `yaml:"targets"`
}

// FindTarget looks a target up by name, case-insensitively.
func (c *Config) FindTarget(name string) *monitor.Target {
	for _, t := range c.Targets {
		if strings.EqualFold(t.Name, name) {
			return t
		}
	}
	return nil
}

// Load reads and validates the configuration at path. Unknown keys are
// rejected so typos fail loudly instead of silently disabling a setting.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := &Config{
		Settings: Settings{
			CheckInterval: 60,
			DataDir:       "./data",
			LogLevel:      "info",
		},
	}

	dec := yaml.NewDecoder(strings.NewReader(string(data)))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

func (cfg *Config) validate() error {
	if cfg.Settings.CheckInterval <= 0 {
		return fmt.Errorf("settings.check_interval must be positive")
	}
	if cfg.Settings.DataDir == "" {
		return fmt.Errorf("settings.data_dir must not be empty")
	}

	seenNames := make(map[string]string, len(cfg.Targets))
	seenTokens := make(map[string]string, len(cfg.Targets))

	for i, t := range cfg.Targets {
		if t.Name == "" {
			return fmt.Errorf("targets[%d]: name is required", i)
		}
		if t.URL == "" {
			return fmt.Errorf("target %q: url is required", t.Name)
		}

		if t.Mode == "" {
			t.Mode = extract.ModeText
		}
		if !t.Mode.Valid() {
			return fmt.Errorf("target %q: unknown mode %q", t.Name, t.Mode)
		}
		if t.Mode == extract.ModeSelector && t.Selector == "" {
			return fmt.Errorf("target %q: mode %q requires a selector", t.Name, t.Mode)
		}
		if t.Interval < 0 {
			return fmt.Errorf("target %q: interval must not be negative", t.Name)
		}

		lower := strings.ToLower(t.Name)
		if other, dup := seenNames[lower]; dup {
			return fmt.Errorf("target %q: name already used by %q", t.Name, other)
		}
		seenNames[lower] = t.Name

		// Distinct names that derive the same storage token would
		// silently share snapshot and history files.
		token := store.SafeToken(t.Name)
		if other, dup := seenTokens[token]; dup {
			return fmt.Errorf("target %q: storage key %q collides with target %q", t.Name, token, other)
		}
		seenTokens[token] = t.Name
	}

	return nil
}
