// Package config provides configuration management for the showrunner.
package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds all configuration values for the controller.
type Config struct {
	Env string

	// OSC control surface configuration
	OSCPort int

	// MIDI control surface configuration
	MidiEnabled bool

	// Art-Net configuration
	ArtNetEnabled   bool
	ArtNetPort      int
	ArtNetBroadcast string // address, or "auto" to pick an interface broadcast

	// Monitor HTTP surface configuration
	MonitorEnabled bool
	MonitorPort    string
	CORSOrigin     string

	// Remote clock service websocket URL, empty to disable
	RemoteClockURL string

	// WLED configuration
	WledTimeout   time.Duration
	WledRateLimit float64 // requests per second per instance
}

// Load loads configuration from environment variables with sensible defaults.
func Load() *Config {
	return &Config{
		Env: getEnv("ENV", "development"),

		// OSC
		OSCPort: getEnvInt("OSC_PORT", 8000),

		// MIDI
		MidiEnabled: getEnvBool("MIDI_ENABLED", true),

		// Art-Net
		ArtNetEnabled:   getEnvBool("ARTNET_ENABLED", true),
		ArtNetPort:      getEnvInt("ARTNET_PORT", 6454),
		ArtNetBroadcast: getEnv("ARTNET_BROADCAST", "255.255.255.255"),

		// Monitor
		MonitorEnabled: getEnvBool("MONITOR_ENABLED", true),
		MonitorPort:    getEnv("MONITOR_PORT", "4000"),
		CORSOrigin:     getEnv("CORS_ORIGIN", "http://localhost:3000"),

		// Remote clocks
		RemoteClockURL: getEnv("REMOTE_CLOCK_URL", ""),

		// WLED
		WledTimeout:   time.Duration(getEnvInt("WLED_TIMEOUT", 2000)) * time.Millisecond,
		WledRateLimit: float64(getEnvInt("WLED_RATE_LIMIT", 10)),
	}
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// getEnv returns the value of an environment variable or a default value.
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvInt returns the integer value of an environment variable or a default value.
func getEnvInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvBool returns the boolean value of an environment variable or a default value.
func getEnvBool(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
