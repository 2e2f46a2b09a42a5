// Package config loads server configuration from command line flags,
// environment variables, and an optional .env file, in that order of
// precedence. Anything not set falls back to a sensible default.
package config

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Storage backends.
const (
	BackendBadger = "badger"
	BackendMemory = "memory"
)

type Config struct {
	App     AppConfig
	Logger  LoggerConfig
	Data    DataConfig
	Server  ServerConfig
	Catalog CatalogConfig
}

type AppConfig struct {
	Environment string
}

type LoggerConfig struct {
	Level string
}

type DataConfig struct {
	// BasePath is the root directory for all persistent state: the
	// database, cover images, and search index live underneath it.
	BasePath string
	Backend  string
}

type ServerConfig struct {
	Name            string
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// CatalogConfig controls the Open Library lookup proxy.
type CatalogConfig struct {
	Enabled           bool
	RequestsPerMinute int
	Timeout           time.Duration
}

func (c *Config) IsProduction() bool {
	return c.App.Environment == EnvProduction
}

// DatabasePath returns the directory holding the badger database.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.Data.BasePath, "db")
}

// CoversPath returns the directory holding downloaded cover images.
func (c *Config) CoversPath() string {
	return filepath.Join(c.Data.BasePath, "covers")
}

// SearchIndexPath returns the directory holding the local search index.
func (c *Config) SearchIndexPath() string {
	return filepath.Join(c.Data.BasePath, "search")
}

func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// Load builds the configuration. Flags win over environment variables,
// which win over the .env file, which wins over defaults.
func Load() (*Config, error) {
	var (
		environment = flag.String("environment", "", "Runtime environment (development or production)")
		logLevel    = flag.String("log-level", "", "Log level (debug, info, warn, error)")
		dataPath    = flag.String("data-path", "", "Directory for persistent data")
		backend     = flag.String("storage-backend", "", "Storage backend (badger or memory)")
		host        = flag.String("host", "", "Address to bind the HTTP server to")
		port        = flag.Int("port", 0, "Port for the HTTP server")
	)
	flag.Parse()

	envFile := loadEnvFile(".env")

	portValue := *port
	if portValue == 0 {
		portValue = getIntConfigValue("", "PAGETURN_PORT", envFile, 8080)
	}

	cfg := &Config{
		App: AppConfig{
			Environment: getConfigValue(*environment, "PAGETURN_ENV", envFile, EnvDevelopment),
		},
		Logger: LoggerConfig{
			Level: getConfigValue(*logLevel, "PAGETURN_LOG_LEVEL", envFile, "info"),
		},
		Data: DataConfig{
			BasePath: expandPath(getConfigValue(*dataPath, "PAGETURN_DATA_PATH", envFile, "./data")),
			Backend:  getConfigValue(*backend, "PAGETURN_STORAGE_BACKEND", envFile, BackendBadger),
		},
		Server: ServerConfig{
			Name:            getConfigValue("", "PAGETURN_SERVER_NAME", envFile, "PageTurn"),
			Host:            getConfigValue(*host, "PAGETURN_HOST", envFile, "0.0.0.0"),
			Port:            portValue,
			ReadTimeout:     getDurationConfigValue("PAGETURN_READ_TIMEOUT", envFile, 15*time.Second),
			WriteTimeout:    getDurationConfigValue("PAGETURN_WRITE_TIMEOUT", envFile, 30*time.Second),
			ShutdownTimeout: getDurationConfigValue("PAGETURN_SHUTDOWN_TIMEOUT", envFile, 10*time.Second),
		},
		Catalog: CatalogConfig{
			Enabled:           getBoolConfigValue("PAGETURN_CATALOG_ENABLED", envFile, true),
			RequestsPerMinute: getIntConfigValue("", "PAGETURN_CATALOG_RPM", envFile, 30),
			Timeout:           getDurationConfigValue("PAGETURN_CATALOG_TIMEOUT", envFile, 10*time.Second),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.App.Environment {
	case EnvDevelopment, EnvProduction:
	default:
		return fmt.Errorf("invalid environment %q", c.App.Environment)
	}

	switch c.Data.Backend {
	case BackendBadger, BackendMemory:
	default:
		return fmt.Errorf("invalid storage backend %q", c.Data.Backend)
	}

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Server.Port)
	}

	if c.Data.Backend == BackendBadger && c.Data.BasePath == "" {
		return fmt.Errorf("data path is required for the badger backend")
	}

	if c.Catalog.RequestsPerMinute < 1 {
		return fmt.Errorf("catalog requests per minute must be positive, got %d", c.Catalog.RequestsPerMinute)
	}

	return nil
}

// getConfigValue resolves a single string setting with the standard
// precedence: flag, environment variable, .env file, default.
func getConfigValue(flagValue, envKey string, envFile map[string]string, defaultValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if value := os.Getenv(envKey); value != "" {
		return value
	}
	if value, ok := envFile[envKey]; ok && value != "" {
		return value
	}
	return defaultValue
}

func getBoolConfigValue(envKey string, envFile map[string]string, defaultValue bool) bool {
	raw := getConfigValue("", envKey, envFile, "")
	if raw == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		return defaultValue
	}
	return value
}

func getIntConfigValue(flagValue, envKey string, envFile map[string]string, defaultValue int) int {
	raw := getConfigValue(flagValue, envKey, envFile, "")
	if raw == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return defaultValue
	}
	return value
}

func getDurationConfigValue(envKey string, envFile map[string]string, defaultValue time.Duration) time.Duration {
	raw := getConfigValue("", envKey, envFile, "")
	if raw == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(raw)
	if err != nil {
		return defaultValue
	}
	return value
}

// loadEnvFile reads KEY=VALUE pairs from path. Missing files and
// malformed lines are ignored so a .env file is always optional.
func loadEnvFile(path string) map[string]string {
	values := make(map[string]string)

	file, err := os.Open(path)
	if err != nil {
		return values
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, found := strings.Cut(line, "=")
		if !found {
			continue
		}

		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)
		value = strings.Trim(value, `"'`)

		if key != "" {
			values[key] = value
		}
	}

	return values
}

// expandPath resolves a leading ~ to the user's home directory.
func expandPath(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		if path == "~" {
			return home
		}
		return filepath.Join(home, path[2:])
	}
	return path
}
