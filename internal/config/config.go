// Package config provides application configuration loaded from environment
// variables with defaults.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all settings for the chat relay.
type Config struct {
	// Server
	Port           string
	GinMode        string // debug|release|test
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	MaxHeaderBytes int

	// Logging
	LogLevel  string // debug|info|warn|error
	LogPretty bool

	// Storage
	DBDriver string // sqlite|postgres
	DBDSN    string // file path for sqlite, connection string for postgres

	// Static assets
	StaticDir string
}

// Load reads configuration from the environment, applying defaults.
func Load() Config {
	return Config{
		Port:           getenv("PORT", "8080"),
		GinMode:        strings.ToLower(getenv("GIN_MODE", "release")),
		ReadTimeout:    getdur("READ_TIMEOUT", 10*time.Second),
		WriteTimeout:   getdur("WRITE_TIMEOUT", 10*time.Second),
		MaxHeaderBytes: getint("MAX_HEADER_BYTES", 1<<20),

		LogLevel:  strings.ToLower(getenv("LOG_LEVEL", "info")),
		LogPretty: getbool("LOG_PRETTY", false),

		DBDriver: strings.ToLower(getenv("DB_DRIVER", "sqlite")),
		DBDSN:    getenv("DB_DSN", "chat.db"),

		StaticDir: getenv("STATIC_DIR", "web"),
	}
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getbool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func getint(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func getdur(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}
