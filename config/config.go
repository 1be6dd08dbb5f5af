/*
Package config loads server settings.

PRECEDENCE (later wins):
  1. Defaults (LoadDefaults)
  2. .env file, if present (path from ATTENDANCE_ENV_FILE, default ".env")
  3. ATTENDANCE_* environment variables
  4. Command-line flags

  godotenv never overrides variables already set in the real environment.

ENVIRONMENT:
  ATTENDANCE_PORT            HTTP port
  ATTENDANCE_DRIVER          "json" or "sqlite"
  ATTENDANCE_DB              Path of the JSON document or SQLite database
  ATTENDANCE_JWT_SECRET      HS256 signing secret
  ATTENDANCE_TOKEN_TTL       Token lifetime (Go duration, e.g. 168h)
  ATTENDANCE_CORS_ORIGINS    Comma-separated allowed origins
  ATTENDANCE_LOG_LEVEL       debug | info | warn | error
  ATTENDANCE_LOG_FORMAT      json | text
  ATTENDANCE_FLUSH_INTERVAL  Periodic checkpoint flush, 0 disables
  ATTENDANCE_BOOTSTRAP_ADMIN Create the default admin on start (true/false)

FLAGS:
  -port, -driver, -db, -log-level, -flush-interval
*/
package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DriverJSON   = "json"
	DriverSQLite = "sqlite"
)

// DefaultJWTSecret is the development signing secret.
const DefaultJWTSecret = "your-secret-key"

// Config holds runtime settings for the server.
type Config struct {
	Port           int
	Driver         string
	DBPath         string
	JWTSecret      string
	TokenTTL       time.Duration
	CORSOrigins    []string
	LogLevel       string
	LogFormat      string
	FlushInterval  time.Duration
	BootstrapAdmin bool
}

// LoadDefaults fills development defaults. JWTSecret must be overridden
// outside development.
func (c *Config) LoadDefaults() {
	c.Port = 8080
	c.Driver = DriverJSON
	c.DBPath = "db.json"
	c.JWTSecret = DefaultJWTSecret
	c.TokenTTL = 7 * 24 * time.Hour
	c.CORSOrigins = []string{"http://localhost:3000", "http://localhost:5173"}
	c.LogLevel = "info"
	c.LogFormat = "json"
	c.FlushInterval = 0
	c.BootstrapAdmin = true
}

// Load builds a Config from defaults, the .env file, the environment and
// args (without the program name).
func Load(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	envFile := os.Getenv("ATTENDANCE_ENV_FILE")
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load %s: %w", envFile, err)
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.parseFlags(args); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks field combinations that would fail later at startup.
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	if c.Driver != DriverJSON && c.Driver != DriverSQLite {
		return fmt.Errorf("unknown driver %q (want %s or %s)", c.Driver, DriverJSON, DriverSQLite)
	}
	if c.DBPath == "" {
		return errors.New("db path is empty")
	}
	if c.JWTSecret == "" {
		return errors.New("jwt secret is empty")
	}
	if c.FlushInterval < 0 {
		return fmt.Errorf("negative flush interval %s", c.FlushInterval)
	}
	return nil
}

// UsesDefaultSecret reports whether tokens are signed with DefaultJWTSecret.
func (c *Config) UsesDefaultSecret() bool {
	return c.JWTSecret == DefaultJWTSecret
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

// =============================================================================
// ENVIRONMENT
// =============================================================================

// GetEnv returns the variable, or fallback when it is unset or blank.
func GetEnv(key string, fallback ...string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	if len(fallback) > 0 {
		return fallback[0]
	}
	return ""
}

func (c *Config) applyEnv() error {
	if v := GetEnv("ATTENDANCE_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("ATTENDANCE_PORT: %w", err)
		}
		c.Port = port
	}
	c.Driver = GetEnv("ATTENDANCE_DRIVER", c.Driver)
	c.DBPath = GetEnv("ATTENDANCE_DB", c.DBPath)
	c.JWTSecret = GetEnv("ATTENDANCE_JWT_SECRET", c.JWTSecret)
	c.LogLevel = GetEnv("ATTENDANCE_LOG_LEVEL", c.LogLevel)
	c.LogFormat = GetEnv("ATTENDANCE_LOG_FORMAT", c.LogFormat)

	if v := GetEnv("ATTENDANCE_TOKEN_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("ATTENDANCE_TOKEN_TTL: %w", err)
		}
		c.TokenTTL = d
	}
	if v := GetEnv("ATTENDANCE_FLUSH_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("ATTENDANCE_FLUSH_INTERVAL: %w", err)
		}
		c.FlushInterval = d
	}
	if v := GetEnv("ATTENDANCE_CORS_ORIGINS"); v != "" {
		c.CORSOrigins = splitList(v)
	}
	if v := GetEnv("ATTENDANCE_BOOTSTRAP_ADMIN"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("ATTENDANCE_BOOTSTRAP_ADMIN: %w", err)
		}
		c.BootstrapAdmin = b
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// =============================================================================
// FLAGS
// =============================================================================

func (c *Config) parseFlags(args []string) error {
	set := flag.NewFlagSet("server", flag.ContinueOnError)
	set.SetOutput(io.Discard)

	set.IntVar(&c.Port, "port", c.Port, "HTTP server port")
	set.StringVar(&c.Driver, "driver", c.Driver, "storage driver: json or sqlite")
	set.StringVar(&c.DBPath, "db", c.DBPath, "JSON document or SQLite database path")
	set.StringVar(&c.LogLevel, "log-level", c.LogLevel, "log level")
	set.DurationVar(&c.FlushInterval, "flush-interval", c.FlushInterval, "periodic checkpoint flush (0 disables)")

	if err := set.Parse(args); err != nil {
		return fmt.Errorf("parse flags: %w", err)
	}
	return nil
}
