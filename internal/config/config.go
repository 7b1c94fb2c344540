// Package config provides configuration management for the CropCert
// application. It handles loading configuration from YAML files, applying
// environment variable and command line flag overrides, and validating
// configuration values for server, database, JWT, registry, events, metrics,
// logging, and security settings.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	JWT      JWTConfig      `yaml:"jwt"`
	Registry RegistryConfig `yaml:"registry"`
	Events   EventsConfig   `yaml:"events"`
	Metrics  MetricsConfig  `yaml:"metrics"`
	Logging  LoggingConfig  `yaml:"logging"`
	Security SecurityConfig `yaml:"security"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port         int           `yaml:"port"`
	Host         string        `yaml:"host"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	TLSEnabled   bool          `yaml:"tls_enabled"`
	TLSCert      string        `yaml:"tls_cert"`
	TLSKey       string        `yaml:"tls_key"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Type     string         `yaml:"type"`
	SQLite   SQLiteConfig   `yaml:"sqlite"`
	Postgres PostgresConfig `yaml:"postgres"`
}

// SQLiteConfig holds SQLite-specific configuration
type SQLiteConfig struct {
	Path string `yaml:"path"`
}

// PostgresConfig holds PostgreSQL-specific configuration
type PostgresConfig struct {
	Host         string `yaml:"host"`
	Port         int    `yaml:"port"`
	Database     string `yaml:"database"`
	User         string `yaml:"user"`
	Password     string `yaml:"password"`
	SSLMode      string `yaml:"ssl_mode"`
	MaxOpenConns int    `yaml:"max_open_conns"`
	MaxIdleConns int    `yaml:"max_idle_conns"`
}

// JWTConfig holds JWT authentication configuration
type JWTConfig struct {
	Secret     string        `yaml:"secret"`
	Expiration time.Duration `yaml:"expiration"`
	Issuer     string        `yaml:"issuer"`
}

// RegistryConfig holds certification registry configuration
type RegistryConfig struct {
	SentinelIdentity string `yaml:"sentinel_identity"`
}

// EventsConfig holds event emission configuration
type EventsConfig struct {
	RedisURL     string `yaml:"redis_url"`
	RedisChannel string `yaml:"redis_channel"`
}

// MetricsConfig holds Prometheus metrics configuration
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// SecurityConfig holds security-related configuration
type SecurityConfig struct {
	CORSEnabled bool     `yaml:"cors_enabled"`
	CORSOrigins []string `yaml:"cors_origins"`
}

// defaultConfig returns the configuration defaults applied before any file,
// environment, or flag overrides
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         8000,
			Host:         "0.0.0.0",
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
			TLSEnabled:   false,
		},
		Database: DatabaseConfig{
			Type: "sqlite",
			SQLite: SQLiteConfig{
				Path: "./data/cropcert.db",
			},
			Postgres: PostgresConfig{
				Host:         "localhost",
				Port:         5432,
				Database:     "cropcert",
				User:         "cropcert",
				SSLMode:      "disable",
				MaxOpenConns: 25,
				MaxIdleConns: 5,
			},
		},
		JWT: JWTConfig{
			Expiration: 24 * time.Hour,
			Issuer:     "cropcert",
		},
		Registry: RegistryConfig{
			SentinelIdentity: "nobody",
		},
		Events: EventsConfig{
			RedisChannel: "cropcert:events",
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
		Security: SecurityConfig{
			CORSEnabled: true,
			CORSOrigins: []string{"http://localhost:3000"},
		},
	}
}

// Load builds the configuration from defaults, the YAML file at path, and
// environment variable and flag overrides (flags may be nil). A missing
// config file is not an error; the defaults apply.
func Load(path string, flags *Flags) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	} else {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	// Apply environment variable overrides
	cfg.applyEnvOverrides()

	// Apply command line flag overrides
	cfg.applyFlagOverrides(flags)

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides to the configuration
func (c *Config) applyEnvOverrides() {
	// Server overrides
	if port := os.Getenv("CROPCERT_SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			c.Server.Port = p
		}
	}
	if host := os.Getenv("CROPCERT_SERVER_HOST"); host != "" {
		c.Server.Host = host
	}

	// Database overrides
	if dbType := os.Getenv("CROPCERT_DB_TYPE"); dbType != "" {
		c.Database.Type = dbType
	}
	if dbPath := os.Getenv("CROPCERT_DB_SQLITE_PATH"); dbPath != "" {
		c.Database.SQLite.Path = dbPath
	}
	if pgHost := os.Getenv("CROPCERT_DB_POSTGRES_HOST"); pgHost != "" {
		c.Database.Postgres.Host = pgHost
	}
	if pgPort := os.Getenv("CROPCERT_DB_POSTGRES_PORT"); pgPort != "" {
		if p, err := strconv.Atoi(pgPort); err == nil {
			c.Database.Postgres.Port = p
		}
	}
	if pgDB := os.Getenv("CROPCERT_DB_POSTGRES_DATABASE"); pgDB != "" {
		c.Database.Postgres.Database = pgDB
	}
	if pgUser := os.Getenv("CROPCERT_DB_POSTGRES_USER"); pgUser != "" {
		c.Database.Postgres.User = pgUser
	}
	if pgPass := os.Getenv("CROPCERT_DB_POSTGRES_PASSWORD"); pgPass != "" {
		c.Database.Postgres.Password = pgPass
	}

	// JWT overrides
	if jwtSecret := os.Getenv("CROPCERT_JWT_SECRET"); jwtSecret != "" {
		c.JWT.Secret = jwtSecret
	}

	// Registry overrides
	if sentinel := os.Getenv("CROPCERT_REGISTRY_SENTINEL"); sentinel != "" {
		c.Registry.SentinelIdentity = sentinel
	}

	// Events overrides
	if redisURL := os.Getenv("CROPCERT_EVENTS_REDIS_URL"); redisURL != "" {
		c.Events.RedisURL = redisURL
	}

	// Logging overrides
	if logLevel := os.Getenv("CROPCERT_LOG_LEVEL"); logLevel != "" {
		c.Logging.Level = logLevel
	}
}

// applyFlagOverrides applies command line flag overrides to the configuration
func (c *Config) applyFlagOverrides(flags *Flags) {
	if flags == nil {
		return
	}

	// Server overrides
	if v, ok := flags.GetServerPort(); ok {
		c.Server.Port = v
	}
	if v, ok := flags.GetServerHost(); ok {
		c.Server.Host = v
	}
	if v, ok := flags.GetServerReadTimeout(); ok {
		if d, err := time.ParseDuration(v); err == nil {
			c.Server.ReadTimeout = d
		}
	}
	if v, ok := flags.GetServerWriteTimeout(); ok {
		if d, err := time.ParseDuration(v); err == nil {
			c.Server.WriteTimeout = d
		}
	}
	if v, ok := flags.GetServerTLSEnabled(); ok {
		c.Server.TLSEnabled = v
	}
	if v, ok := flags.GetServerTLSCert(); ok {
		c.Server.TLSCert = v
	}
	if v, ok := flags.GetServerTLSKey(); ok {
		c.Server.TLSKey = v
	}

	// Database overrides
	if v, ok := flags.GetDBType(); ok {
		c.Database.Type = v
	}
	if v, ok := flags.GetDBSQLitePath(); ok {
		c.Database.SQLite.Path = v
	}
	if v, ok := flags.GetDBPostgresHost(); ok {
		c.Database.Postgres.Host = v
	}
	if v, ok := flags.GetDBPostgresPort(); ok {
		c.Database.Postgres.Port = v
	}
	if v, ok := flags.GetDBPostgresDatabase(); ok {
		c.Database.Postgres.Database = v
	}
	if v, ok := flags.GetDBPostgresUser(); ok {
		c.Database.Postgres.User = v
	}
	if v, ok := flags.GetDBPostgresPassword(); ok {
		c.Database.Postgres.Password = v
	}
	if v, ok := flags.GetDBPostgresSSLMode(); ok {
		c.Database.Postgres.SSLMode = v
	}
	if v, ok := flags.GetDBPostgresMaxOpenConns(); ok {
		c.Database.Postgres.MaxOpenConns = v
	}
	if v, ok := flags.GetDBPostgresMaxIdleConns(); ok {
		c.Database.Postgres.MaxIdleConns = v
	}

	// JWT overrides
	if v, ok := flags.GetJWTSecret(); ok {
		c.JWT.Secret = v
	}
	if v, ok := flags.GetJWTExpiration(); ok {
		if d, err := time.ParseDuration(v); err == nil {
			c.JWT.Expiration = d
		}
	}
	if v, ok := flags.GetJWTIssuer(); ok {
		c.JWT.Issuer = v
	}

	// Registry overrides
	if v, ok := flags.GetRegistrySentinelIdentity(); ok {
		c.Registry.SentinelIdentity = v
	}

	// Events overrides
	if v, ok := flags.GetEventsRedisURL(); ok {
		c.Events.RedisURL = v
	}
	if v, ok := flags.GetEventsRedisChannel(); ok {
		c.Events.RedisChannel = v
	}

	// Metrics overrides
	if v, ok := flags.GetMetricsEnabled(); ok {
		c.Metrics.Enabled = v
	}
	if v, ok := flags.GetMetricsPath(); ok {
		c.Metrics.Path = v
	}

	// Logging overrides
	if v, ok := flags.GetLogLevel(); ok {
		c.Logging.Level = v
	}
	if v, ok := flags.GetLogFormat(); ok {
		c.Logging.Format = v
	}
	if v, ok := flags.GetLogOutput(); ok {
		c.Logging.Output = v
	}

	// Security overrides
	if v, ok := flags.GetSecurityCORSEnabled(); ok {
		c.Security.CORSEnabled = v
	}
	if v, ok := flags.GetSecurityCORSOrigins(); ok {
		c.Security.CORSOrigins = v
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	// Validate server config
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Server.TLSEnabled {
		if c.Server.TLSCert == "" || c.Server.TLSKey == "" {
			return fmt.Errorf("TLS enabled but cert or key not specified")
		}
	}

	// Validate database config
	if c.Database.Type != "sqlite" && c.Database.Type != "postgres" {
		return fmt.Errorf("invalid database type: %s (must be 'sqlite' or 'postgres')", c.Database.Type)
	}
	if c.Database.Type == "sqlite" && c.Database.SQLite.Path == "" {
		return fmt.Errorf("SQLite path not specified")
	}
	if c.Database.Type == "postgres" {
		if c.Database.Postgres.Host == "" || c.Database.Postgres.Database == "" {
			return fmt.Errorf("PostgreSQL host and database must be specified")
		}
	}

	// Validate registry config
	if c.Registry.SentinelIdentity == "" {
		return fmt.Errorf("registry sentinel identity not specified")
	}

	// Validate metrics config
	if c.Metrics.Enabled && c.Metrics.Path == "" {
		return fmt.Errorf("metrics enabled but path not specified")
	}

	// Validate logging config
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logging.Level] {
		return fmt.Errorf("invalid log level: %s", c.Logging.Level)
	}

	return nil
}

// GetDSN returns the database connection string based on the configured type
func (c *Config) GetDSN() string {
	switch c.Database.Type {
	case "sqlite":
		return c.Database.SQLite.Path
	case "postgres":
		return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
			c.Database.Postgres.Host,
			c.Database.Postgres.Port,
			c.Database.Postgres.User,
			c.Database.Postgres.Password,
			c.Database.Postgres.Database,
			c.Database.Postgres.SSLMode,
		)
	default:
		return ""
	}
}
