// Package config handles application configuration and environment loading.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

// MaxGroupCodePrefix keeps "<prefix>-XXXXXXXX" within the 32-character code column.
const MaxGroupCodePrefix = 23

// Supported store drivers.
const (
	DriverSQLite = "sqlite"
	DriverMySQL  = "mysql"
)

// Config holds the settings of the ledger server.
type Config struct {
	ListenAddr string `yaml:"listen_addr"` // HTTP listen address (default ":8000")

	DBDriver string `yaml:"db_driver"` // "sqlite" (default) or "mysql"
	DBPath   string `yaml:"db_path"`   // SQLite file path
	DBDSN    string `yaml:"db_dsn"`    // MySQL DSN, required when DBDriver is "mysql"

	LogLevel  string `yaml:"log_level"`  // debug, info, warn, error (default "info")
	LogFormat string `yaml:"log_format"` // "text" (default, colored) or "json"

	GroupCodePrefix string `yaml:"group_code_prefix"`

	// Rate limiting of /api routes. Zero RPS disables it.
	RateLimitRPS   float64 `yaml:"rate_limit_rps"`
	RateLimitBurst int     `yaml:"rate_limit_burst"`

	CORSAllowedOrigins []string `yaml:"cors_allowed_origins"`
	StaticDir          string   `yaml:"static_dir"`

	RequestTimeout  time.Duration `yaml:"request_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		ListenAddr:         ":8000",
		DBDriver:           DriverSQLite,
		DBPath:             "./data/splitledger.db",
		LogLevel:           "info",
		LogFormat:          "text",
		GroupCodePrefix:    "SPESE",
		RateLimitRPS:       100,
		RateLimitBurst:     200,
		CORSAllowedOrigins: []string{"*"},
		RequestTimeout:     30 * time.Second,
		ShutdownTimeout:    10 * time.Second,
	}
}

// Load builds the configuration from defaults, an optional YAML file, an
// optional .env file and the process environment, later sources winning.
// An empty envFile falls back to ./.env when it exists. Flags are applied
// separately with ApplyFlags.
func Load(envFile, configFile string) (*Config, error) {
	cfg := Default()

	if configFile != "" {
		data, err := os.ReadFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	dotenv, err := readEnvFile(envFile)
	if err != nil {
		return nil, err
	}

	lookup := func(key string) (string, bool) {
		if v, ok := os.LookupEnv(key); ok {
			return v, true
		}
		v, ok := dotenv[key]
		return v, ok
	}
	if err := cfg.applyEnv(lookup); err != nil {
		return nil, err
	}

	return cfg, nil
}

// readEnvFile parses a .env file without touching the process environment.
func readEnvFile(path string) (map[string]string, error) {
	if path == "" {
		if _, err := os.Stat(".env"); err != nil {
			return nil, nil
		}
		path = ".env"
	}

	vars, err := godotenv.Read(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}
	return vars, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}

	str("LISTEN_ADDR", &c.ListenAddr)
	str("DB_DRIVER", &c.DBDriver)
	str("DB_PATH", &c.DBPath)
	str("DB_DSN", &c.DBDSN)
	str("LOG_LEVEL", &c.LogLevel)
	str("LOG_FORMAT", &c.LogFormat)
	str("GROUP_CODE_PREFIX", &c.GroupCodePrefix)
	str("STATIC_DIR", &c.StaticDir)

	if v, ok := lookup("RATE_LIMIT_RPS"); ok && v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("invalid RATE_LIMIT_RPS %q: %w", v, err)
		}
		c.RateLimitRPS = f
	}
	if v, ok := lookup("RATE_LIMIT_BURST"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid RATE_LIMIT_BURST %q: %w", v, err)
		}
		c.RateLimitBurst = n
	}
	if v, ok := lookup("CORS_ALLOWED_ORIGINS"); ok && v != "" {
		c.CORSAllowedOrigins = splitList(v)
	}
	if v, ok := lookup("REQUEST_TIMEOUT"); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid REQUEST_TIMEOUT %q: %w", v, err)
		}
		c.RequestTimeout = d
	}
	if v, ok := lookup("SHUTDOWN_TIMEOUT"); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid SHUTDOWN_TIMEOUT %q: %w", v, err)
		}
		c.ShutdownTimeout = d
	}
	return nil
}

// RegisterFlags defines the command-line overrides on fs.
func RegisterFlags(fs *pflag.FlagSet) {
	d := Default()
	fs.String("listen", d.ListenAddr, "HTTP listen address")
	fs.String("db-driver", d.DBDriver, "store driver (sqlite, mysql)")
	fs.String("db-path", d.DBPath, "SQLite database file")
	fs.String("db-dsn", "", "MySQL DSN")
	fs.String("log-level", d.LogLevel, "log level (debug, info, warn, error)")
	fs.String("log-format", d.LogFormat, "log format (text, json)")
	fs.String("code-prefix", d.GroupCodePrefix, "prefix of generated group codes")
	fs.Float64("rate-limit-rps", d.RateLimitRPS, "sustained API requests per second per client, 0 disables")
	fs.Int("rate-limit-burst", d.RateLimitBurst, "API request burst per client")
	fs.StringSlice("cors-origins", d.CORSAllowedOrigins, "allowed CORS origins")
	fs.String("static-dir", "", "directory of static frontend files")
	fs.Duration("request-timeout", d.RequestTimeout, "per-request timeout of API routes")
	fs.Duration("shutdown-timeout", d.ShutdownTimeout, "graceful shutdown timeout")
}

// ApplyFlags copies the flags explicitly set on fs over c.
func (c *Config) ApplyFlags(fs *pflag.FlagSet) error {
	var errs []error
	fs.Visit(func(f *pflag.Flag) {
		var err error
		switch f.Name {
		case "listen":
			c.ListenAddr, err = fs.GetString(f.Name)
		case "db-driver":
			c.DBDriver, err = fs.GetString(f.Name)
		case "db-path":
			c.DBPath, err = fs.GetString(f.Name)
		case "db-dsn":
			c.DBDSN, err = fs.GetString(f.Name)
		case "log-level":
			c.LogLevel, err = fs.GetString(f.Name)
		case "log-format":
			c.LogFormat, err = fs.GetString(f.Name)
		case "code-prefix":
			c.GroupCodePrefix, err = fs.GetString(f.Name)
		case "rate-limit-rps":
			c.RateLimitRPS, err = fs.GetFloat64(f.Name)
		case "rate-limit-burst":
			c.RateLimitBurst, err = fs.GetInt(f.Name)
		case "cors-origins":
			c.CORSAllowedOrigins, err = fs.GetStringSlice(f.Name)
		case "static-dir":
			c.StaticDir, err = fs.GetString(f.Name)
		case "request-timeout":
			c.RequestTimeout, err = fs.GetDuration(f.Name)
		case "shutdown-timeout":
			c.ShutdownTimeout, err = fs.GetDuration(f.Name)
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("flag --%s: %w", f.Name, err))
		}
	})
	return errors.Join(errs...)
}

// Validate checks that the configuration is internally consistent.
func (c *Config) Validate() error {
	var errs []error

	switch c.DBDriver {
	case DriverSQLite:
		if c.DBPath == "" {
			errs = append(errs, errors.New("DB_PATH is required for the sqlite driver"))
		}
	case DriverMySQL:
		if c.DBDSN == "" {
			errs = append(errs, errors.New("DB_DSN is required for the mysql driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("unsupported DB_DRIVER %q: use %q or %q", c.DBDriver, DriverSQLite, DriverMySQL))
	}

	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("unsupported LOG_FORMAT %q: use \"text\" or \"json\"", c.LogFormat))
	}

	prefix := strings.TrimSuffix(strings.TrimSpace(c.GroupCodePrefix), "-")
	if len(prefix) > MaxGroupCodePrefix {
		errs = append(errs, fmt.Errorf("GROUP_CODE_PREFIX must be at most %d characters, got %d", MaxGroupCodePrefix, len(prefix)))
	}

	if c.ListenAddr == "" {
		errs = append(errs, errors.New("LISTEN_ADDR is required"))
	}
	if c.RateLimitRPS < 0 {
		errs = append(errs, errors.New("RATE_LIMIT_RPS must not be negative"))
	}
	if c.RateLimitRPS > 0 && c.RateLimitBurst < 1 {
		errs = append(errs, errors.New("RATE_LIMIT_BURST must be at least 1 when rate limiting is enabled"))
	}
	if c.RequestTimeout < 0 {
		errs = append(errs, errors.New("REQUEST_TIMEOUT must not be negative"))
	}
	if c.ShutdownTimeout <= 0 {
		errs = append(errs, errors.New("SHUTDOWN_TIMEOUT must be positive"))
	}

	return errors.Join(errs...)
}

// SlogLevel maps the LogLevel string to an slog.Level.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
