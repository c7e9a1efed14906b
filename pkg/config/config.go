package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// NotificationConfig holds notification-related settings
type NotificationConfig struct {
	Method string `yaml:"method"` // stderr, macos, silent
}

// VaultConfig holds vault lock settings
type VaultConfig struct {
	Timeout string `yaml:"timeout"` // e.g., "15m", "1d"
	Dir     string `yaml:"dir"`
}

// PINConfig holds PIN unlock settings
type PINConfig struct {
	MinLength   int `yaml:"min_length"`
	MaxAttempts int `yaml:"max_attempts"`
}

// BiometricsConfig holds biometric unlock settings
type BiometricsConfig struct {
	Prompt        string `yaml:"prompt"`
	ToggleTimeout string `yaml:"toggle_timeout"`
	Kind          string `yaml:"kind"` // auto, face, fingerprint
}

// LogConfig holds logging settings
type LogConfig struct {
	Level string `yaml:"level"`
}

// Config represents the unlocksmith configuration
type Config struct {
	Notifications NotificationConfig `yaml:"notifications"`
	Vault         VaultConfig        `yaml:"vault"`
	PIN           PINConfig          `yaml:"pin"`
	Biometrics    BiometricsConfig   `yaml:"biometrics"`
	Log           LogConfig          `yaml:"log"`
}

// Default returns the configuration used when no file exists
func Default() *Config {
	return &Config{
		Notifications: NotificationConfig{
			Method: "stderr",
		},
		Vault: VaultConfig{
			Timeout: "15m",
		},
		PIN: PINConfig{
			MinLength:   4,
			MaxAttempts: 5,
		},
		Biometrics: BiometricsConfig{
			Prompt:        "Authentication required to unlock your vault",
			ToggleTimeout: "60s",
			Kind:          "auto",
		},
		Log: LogConfig{
			Level: "warn",
		},
	}
}

// Dir returns ~/.unlocksmith
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".unlocksmith"), nil
}

// Load loads configuration from ~/.unlocksmith/config.yml
// Returns default config if file doesn't exist
func Load() (*Config, error) {
	dir, err := Dir()
	if err != nil {
		return Default(), nil // Return defaults
	}
	return LoadFile(filepath.Join(dir, "config.yml"))
}

// LoadFile loads configuration from path on top of the defaults
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path) // #nosec G304
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, err
	}

	// Check for UNLOCKSMITH_SILENT environment variable (used by Summon provider)
	if os.Getenv("UNLOCKSMITH_SILENT") == "true" {
		cfg.Notifications.Method = "silent"
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values that would otherwise fail later
func (c *Config) Validate() error {
	switch c.Notifications.Method {
	case "stderr", "macos", "silent":
	default:
		return fmt.Errorf("invalid notifications.method: %q", c.Notifications.Method)
	}
	switch c.Biometrics.Kind {
	case "", "auto", "face", "fingerprint":
	default:
		return fmt.Errorf("invalid biometrics.kind: %q", c.Biometrics.Kind)
	}
	if c.PIN.MinLength < 1 {
		return fmt.Errorf("invalid pin.min_length: %d", c.PIN.MinLength)
	}
	if _, err := c.VaultTimeout(); err != nil {
		return fmt.Errorf("invalid vault.timeout: %w", err)
	}
	if _, err := c.ToggleTimeout(); err != nil {
		return fmt.Errorf("invalid biometrics.toggle_timeout: %w", err)
	}
	return nil
}

// VaultTimeout returns how long the vault stays unlocked. "never" means 0.
func (c *Config) VaultTimeout() (time.Duration, error) {
	if c.Vault.Timeout == "never" {
		return 0, nil
	}
	return ParseDuration(c.Vault.Timeout)
}

// ToggleTimeout bounds a biometric enable/disable round trip
func (c *Config) ToggleTimeout() (time.Duration, error) {
	return ParseDuration(c.Biometrics.ToggleTimeout)
}

// VaultDir returns the configured vault directory or ~/.unlocksmith/vault
func (c *Config) VaultDir() (string, error) {
	if c.Vault.Dir != "" {
		return c.Vault.Dir, nil
	}
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "vault"), nil
}

// ParseDuration parses Go durations and the "d", "w", "mo", "y" suffixes
func ParseDuration(s string) (time.Duration, error) {
	// Try standard Go duration first
	if d, err := time.ParseDuration(s); err == nil {
		return d, nil
	}
	return parseDuration(s)
}

// parseDuration parses duration strings like "7d", "2w", "1mo", "1y"
func parseDuration(s string) (time.Duration, error) {
	if len(s) < 2 {
		return 0, fmt.Errorf("invalid duration: %s", s)
	}

	// Months
	if len(s) >= 3 && (s[len(s)-2:] == "mo" || s[len(s)-2:] == "MO") {
		var months int
		_, err := fmt.Sscanf(s[:len(s)-2], "%d", &months)
		if err != nil {
			return 0, err
		}
		return time.Duration(months) * 30 * 24 * time.Hour, nil
	}

	var unit time.Duration
	switch s[len(s)-1] {
	case 'd', 'D':
		unit = 24 * time.Hour
	case 'w', 'W':
		unit = 7 * 24 * time.Hour
	case 'y', 'Y':
		unit = 365 * 24 * time.Hour
	default:
		return 0, fmt.Errorf("invalid duration format: %s", s)
	}

	var n int
	if _, err := fmt.Sscanf(s[:len(s)-1], "%d", &n); err != nil {
		return 0, err
	}
	return time.Duration(n) * unit, nil
}
