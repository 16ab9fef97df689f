package config

import (
	"testing"
	"time"
)

func TestLoad_CustomEnvironment(t *testing.T) {
	t.Setenv("ENV", "production")
	t.Setenv("OSC_PORT", "9100")
	t.Setenv("MIDI_ENABLED", "false")
	t.Setenv("ARTNET_ENABLED", "false")
	t.Setenv("ARTNET_PORT", "6455")
	t.Setenv("ARTNET_BROADCAST", "192.168.1.255")
	t.Setenv("MONITOR_ENABLED", "false")
	t.Setenv("MONITOR_PORT", "8081")
	t.Setenv("CORS_ORIGIN", "http://example.com")
	t.Setenv("REMOTE_CLOCK_URL", "ws://clocks.local:9090/feed")
	t.Setenv("WLED_TIMEOUT", "3000")
	t.Setenv("WLED_RATE_LIMIT", "5")

	cfg := Load()

	if cfg.Env != "production" {
		t.Errorf("Expected Env to be 'production', got '%s'", cfg.Env)
	}
	if cfg.OSCPort != 9100 {
		t.Errorf("Expected OSCPort to be 9100, got %d", cfg.OSCPort)
	}
	if cfg.MidiEnabled != false {
		t.Errorf("Expected MidiEnabled to be false, got %v", cfg.MidiEnabled)
	}
	if cfg.ArtNetEnabled != false {
		t.Errorf("Expected ArtNetEnabled to be false, got %v", cfg.ArtNetEnabled)
	}
	if cfg.ArtNetPort != 6455 {
		t.Errorf("Expected ArtNetPort to be 6455, got %d", cfg.ArtNetPort)
	}
	if cfg.ArtNetBroadcast != "192.168.1.255" {
		t.Errorf("Expected ArtNetBroadcast to be '192.168.1.255', got '%s'", cfg.ArtNetBroadcast)
	}
	if cfg.MonitorEnabled != false {
		t.Errorf("Expected MonitorEnabled to be false, got %v", cfg.MonitorEnabled)
	}
	if cfg.MonitorPort != "8081" {
		t.Errorf("Expected MonitorPort to be '8081', got '%s'", cfg.MonitorPort)
	}
	if cfg.CORSOrigin != "http://example.com" {
		t.Errorf("Expected CORSOrigin to be 'http://example.com', got '%s'", cfg.CORSOrigin)
	}
	if cfg.RemoteClockURL != "ws://clocks.local:9090/feed" {
		t.Errorf("Expected RemoteClockURL to be set, got '%s'", cfg.RemoteClockURL)
	}
	if cfg.WledTimeout != 3000*time.Millisecond {
		t.Errorf("Expected WledTimeout to be 3000ms, got %v", cfg.WledTimeout)
	}
	if cfg.WledRateLimit != 5 {
		t.Errorf("Expected WledRateLimit to be 5, got %v", cfg.WledRateLimit)
	}
}

func TestIsDevelopment(t *testing.T) {
	tests := []struct {
		env      string
		expected bool
	}{
		{"development", true},
		{"production", false},
		{"staging", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			cfg := &Config{Env: tt.env}
			if got := cfg.IsDevelopment(); got != tt.expected {
				t.Errorf("IsDevelopment() with env '%s' = %v, expected %v", tt.env, got, tt.expected)
			}
		})
	}
}

func TestIsProduction(t *testing.T) {
	tests := []struct {
		env      string
		expected bool
	}{
		{"production", true},
		{"development", false},
		{"staging", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			cfg := &Config{Env: tt.env}
			if got := cfg.IsProduction(); got != tt.expected {
				t.Errorf("IsProduction() with env '%s' = %v, expected %v", tt.env, got, tt.expected)
			}
		})
	}
}

func TestGetEnv(t *testing.T) {
	t.Setenv("TEST_CONFIG_STRING", "custom-value")
	if got := getEnv("TEST_CONFIG_STRING", "default"); got != "custom-value" {
		t.Errorf("getEnv() = '%s', expected 'custom-value'", got)
	}
	if got := getEnv("TEST_CONFIG_UNSET_STRING", "default"); got != "default" {
		t.Errorf("getEnv() = '%s', expected 'default'", got)
	}
}

func TestGetEnvInt(t *testing.T) {
	t.Setenv("TEST_CONFIG_INT", "42")
	if got := getEnvInt("TEST_CONFIG_INT", 7); got != 42 {
		t.Errorf("getEnvInt() = %d, expected 42", got)
	}
	if got := getEnvInt("TEST_CONFIG_UNSET_INT", 7); got != 7 {
		t.Errorf("getEnvInt() = %d, expected 7", got)
	}

	t.Setenv("TEST_CONFIG_BAD_INT", "not-a-number")
	if got := getEnvInt("TEST_CONFIG_BAD_INT", 7); got != 7 {
		t.Errorf("getEnvInt() with invalid value = %d, expected default 7", got)
	}
}

func TestGetEnvBool(t *testing.T) {
	trueValues := []string{"true", "1", "TRUE", "True", "t"}
	for _, v := range trueValues {
		t.Run("true_"+v, func(t *testing.T) {
			t.Setenv("TEST_CONFIG_BOOL", v)
			if got := getEnvBool("TEST_CONFIG_BOOL", false); got != true {
				t.Errorf("getEnvBool(%q) = %v, expected true", v, got)
			}
		})
	}

	falseValues := []string{"false", "0", "FALSE", "False", "f"}
	for _, v := range falseValues {
		t.Run("false_"+v, func(t *testing.T) {
			t.Setenv("TEST_CONFIG_BOOL", v)
			if got := getEnvBool("TEST_CONFIG_BOOL", true); got != false {
				t.Errorf("getEnvBool(%q) = %v, expected false", v, got)
			}
		})
	}

	t.Setenv("TEST_CONFIG_BAD_BOOL", "not-a-bool")
	if got := getEnvBool("TEST_CONFIG_BAD_BOOL", true); got != true {
		t.Errorf("getEnvBool() with invalid value = %v, expected default true", got)
	}
}
