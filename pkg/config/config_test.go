package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// TestLoadFileDefaults tests loading config with defaults
func TestLoadFileDefaults(t *testing.T) {
	cfg, err := LoadFile(filepath.Join(t.TempDir(), "missing.yml"))
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}

	if cfg.Notifications.Method != "stderr" {
		t.Errorf("Expected default method 'stderr', got '%s'", cfg.Notifications.Method)
	}
	if cfg.Vault.Timeout != "15m" {
		t.Errorf("Expected default timeout '15m', got '%s'", cfg.Vault.Timeout)
	}
	if cfg.PIN.MaxAttempts != 5 {
		t.Errorf("Expected default max attempts 5, got %d", cfg.PIN.MaxAttempts)
	}
	if cfg.Biometrics.Kind != "auto" {
		t.Errorf("Expected default biometrics kind 'auto', got '%s'", cfg.Biometrics.Kind)
	}
}

// TestLoadFileOverrides tests that file values replace defaults
func TestLoadFileOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	data := []byte(`
notifications:
  method: silent
vault:
  timeout: 1d
pin:
  min_length: 6
biometrics:
  kind: fingerprint
`)
	if err := os.WriteFile(path, data, 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}

	if cfg.Notifications.Method != "silent" {
		t.Errorf("Expected method 'silent', got '%s'", cfg.Notifications.Method)
	}
	timeout, err := cfg.VaultTimeout()
	if err != nil || timeout != 24*time.Hour {
		t.Errorf("Expected 24h timeout, got %v (%v)", timeout, err)
	}
	if cfg.PIN.MinLength != 6 {
		t.Errorf("Expected min length 6, got %d", cfg.PIN.MinLength)
	}
	// Untouched values keep their defaults
	if cfg.PIN.MaxAttempts != 5 {
		t.Errorf("Expected default max attempts 5, got %d", cfg.PIN.MaxAttempts)
	}
}

func TestLoadFileSilentEnv(t *testing.T) {
	t.Setenv("UNLOCKSMITH_SILENT", "true")

	cfg, err := LoadFile(filepath.Join(t.TempDir(), "missing.yml"))
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if cfg.Notifications.Method != "silent" {
		t.Errorf("Expected silent method, got '%s'", cfg.Notifications.Method)
	}
}

func TestLoadFileInvalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"bad yaml", "vault: [unclosed"},
		{"bad method", "notifications:\n  method: pager\n"},
		{"bad kind", "biometrics:\n  kind: iris\n"},
		{"bad timeout", "vault:\n  timeout: soon\n"},
		{"bad pin length", "pin:\n  min_length: 0\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yml")
			if err := os.WriteFile(path, []byte(tt.data), 0600); err != nil {
				t.Fatal(err)
			}
			if _, err := LoadFile(path); err == nil {
				t.Error("Expected error, got nil")
			}
		})
	}
}

func TestVaultTimeoutNever(t *testing.T) {
	cfg := Default()
	cfg.Vault.Timeout = "never"
	timeout, err := cfg.VaultTimeout()
	if err != nil || timeout != 0 {
		t.Errorf("Expected 0 for never, got %v (%v)", timeout, err)
	}
}

// TestParseDuration tests the exported duration parser
func TestParseDuration(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected time.Duration
		wantErr  bool
	}{
		{"7 days", "7d", 7 * 24 * time.Hour, false},
		{"2 weeks", "2w", 14 * 24 * time.Hour, false},
		{"1 month", "1mo", 30 * 24 * time.Hour, false},
		{"1 year", "1y", 365 * 24 * time.Hour, false},
		{"24 hours", "24h", 24 * time.Hour, false},
		{"mixed", "1h30m", 90 * time.Minute, false},
		{"invalid", "invalid", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			duration, err := ParseDuration(tt.input)

			if (err != nil) != tt.wantErr {
				t.Errorf("Expected error=%v, got error=%v", tt.wantErr, err)
			}

			if !tt.wantErr && duration != tt.expected {
				t.Errorf("Expected %v, got %v", tt.expected, duration)
			}
		})
	}
}

// TestParseDurationSuffixes tests the internal parseDuration function
func TestParseDurationSuffixes(t *testing.T) {
	tests := []struct {
		input    string
		expected time.Duration
		wantErr  bool
	}{
		{"1d", 24 * time.Hour, false},
		{"7D", 7 * 24 * time.Hour, false},
		{"2w", 14 * 24 * time.Hour, false},
		{"3W", 21 * 24 * time.Hour, false},
		{"1mo", 30 * 24 * time.Hour, false},
		{"6MO", 180 * 24 * time.Hour, false},
		{"1y", 365 * 24 * time.Hour, false},
		{"2Y", 730 * 24 * time.Hour, false},
		{"x", 0, true},
		{"", 0, true},
		{"d", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			duration, err := parseDuration(tt.input)

			if (err != nil) != tt.wantErr {
				t.Errorf("parseDuration(%q) error=%v, wantErr=%v", tt.input, err, tt.wantErr)
			}

			if !tt.wantErr && duration != tt.expected {
				t.Errorf("parseDuration(%q) = %v, want %v", tt.input, duration, tt.expected)
			}
		})
	}
}
