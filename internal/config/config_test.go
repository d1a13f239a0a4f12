package config

import (
	"testing"
	"time"
)

func TestRequireEnv(t *testing.T) {
	tests := []struct {
		name      string
		key       string
		value     string
		shouldSet bool
		wantPanic bool
	}{
		{
			name:      "variable set",
			key:       "TEST_VAR",
			value:     "test_value",
			shouldSet: true,
		},
		{
			name:      "variable not set",
			key:       "TEST_VAR_MISSING",
			wantPanic: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.shouldSet {
				t.Setenv(tt.key, tt.value)
			}

			if tt.wantPanic {
				defer func() {
					if r := recover(); r == nil {
						t.Errorf("requireEnv() should have panicked")
					}
				}()
			}

			result := requireEnv(tt.key)
			if !tt.wantPanic && result != tt.value {
				t.Errorf("requireEnv() = %v, want %v", result, tt.value)
			}
		})
	}
}

func TestGetenv(t *testing.T) {
	t.Setenv("TEST_GETENV", "set")
	if got := getenv("TEST_GETENV", "def"); got != "set" {
		t.Errorf("getenv = %q, want set", got)
	}
	if got := getenv("TEST_GETENV_MISSING", "def"); got != "def" {
		t.Errorf("getenv = %q, want def", got)
	}
}

func TestGetenvInt(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		set      bool
		expected int
	}{
		{name: "valid integer", value: "42", set: true, expected: 42},
		{name: "invalid integer falls back", value: "nope", set: true, expected: 7},
		{name: "unset falls back", expected: 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key := "TEST_GETENV_INT"
			if tt.set {
				t.Setenv(key, tt.value)
			}
			if got := getenvInt(key, 7); got != tt.expected {
				t.Errorf("getenvInt = %d, want %d", got, tt.expected)
			}
		})
	}
}

func TestMustBool(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		set      bool
		def      bool
		expected bool
	}{
		{name: "true value", value: "true", set: true, expected: true},
		{name: "false value", value: "false", set: true, def: true, expected: false},
		{name: "invalid falls back", value: "maybe", set: true, def: true, expected: true},
		{name: "unset falls back", def: true, expected: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key := "TEST_MUST_BOOL"
			if tt.set {
				t.Setenv(key, tt.value)
			}
			if got := mustBool(key, tt.def); got != tt.expected {
				t.Errorf("mustBool = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestMustDuration(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		set      bool
		expected time.Duration
	}{
		{name: "valid duration", value: "90s", set: true, expected: 90 * time.Second},
		{name: "invalid falls back", value: "soon", set: true, expected: time.Minute},
		{name: "unset falls back", expected: time.Minute},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key := "TEST_MUST_DURATION"
			if tt.set {
				t.Setenv(key, tt.value)
			}
			if got := mustDuration(key, time.Minute); got != tt.expected {
				t.Errorf("mustDuration = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("COMPASS_REDIS_ADDR", "localhost:6379")

	cfg := Load()

	if cfg.ListenAddr != ":8080" {
		t.Errorf("ListenAddr = %q, want :8080", cfg.ListenAddr)
	}
	if cfg.RefreshInterval != 24*time.Hour {
		t.Errorf("RefreshInterval = %v, want 24h", cfg.RefreshInterval)
	}
	if cfg.UpdateTimeout != 30*time.Second {
		t.Errorf("UpdateTimeout = %v, want 30s", cfg.UpdateTimeout)
	}
	if cfg.RedisAddr != "localhost:6379" {
		t.Errorf("RedisAddr = %q", cfg.RedisAddr)
	}
	if cfg.RequestChannel == "" || cfg.DirectoryChannel == "" {
		t.Error("transport channels must have defaults")
	}
}
