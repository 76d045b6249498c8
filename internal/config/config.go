package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"net/url"
	"strconv"
	"strings"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"

	"github.com/cesargomez89/sparkify/internal/constants"
)

// Config holds all configuration for the ETL run.
// Values come from an optional YAML file and the environment; environment always wins.
// The database password is only read from the environment (or the .env file).
type Config struct {
	Database DatabaseConfig `yaml:"database"`

	// Roots of the two input trees, walked recursively for *.json files.
	SongRoot string `yaml:"song_root" env:"ETL_SONG_ROOT" env-default:"data/song_data"`
	LogRoot  string `yaml:"log_root" env:"ETL_LOG_ROOT" env-default:"data/log_data"`

	// CreateSchema applies the bundled CREATE TABLE IF NOT EXISTS script before loading.
	CreateSchema bool `yaml:"create_schema" env:"ETL_CREATE_SCHEMA" env-default:"false"`

	LogLevel  string `yaml:"log_level" env:"LOG_LEVEL" env-default:"info"`
	LogFormat string `yaml:"log_format" env:"LOG_FORMAT" env-default:"text"`
}

// DatabaseConfig holds connection settings for the target database.
// The database name is fixed to sparkifydb.
type DatabaseConfig struct {
	Driver     string `yaml:"driver" env:"DB_DRIVER" env-default:"postgres"`
	Host       string `yaml:"host" env:"PGHOST" env-default:"127.0.0.1"`
	Port       int    `yaml:"port" env:"PGPORT" env-default:"5432"`
	User       string `yaml:"user" env:"PGUSER" env-default:"student"`
	Password   string `yaml:"-" env:"PGPASSWORD"`
	SSLMode    string `yaml:"ssl_mode" env:"PGSSLMODE" env-default:"disable"`
	SQLitePath string `yaml:"sqlite_path" env:"SQLITE_PATH" env-default:"sparkify.db"`
}

// Load reads the .env file (if present), then the YAML file at path (if non-empty),
// then the environment.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(constants.DefaultEnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load %s: %w", constants.DefaultEnvFile, err)
	}

	var cfg Config
	if path != "" {
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		return &cfg, nil
	}

	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}
	return &cfg, nil
}

// DSN returns the data source name for the configured driver.
func (d *DatabaseConfig) DSN() string {
	if d.Driver == constants.DriverSQLite {
		return d.SQLitePath
	}

	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Password),
		Host:     net.JoinHostPort(d.Host, strconv.Itoa(d.Port)),
		Path:     "/" + constants.DefaultDBName,
		RawQuery: url.Values{"sslmode": []string{d.SSLMode}}.Encode(),
	}
	if d.Password == "" {
		u.User = url.User(d.User)
	}
	return u.String()
}

// Validate validates the configuration and returns detailed errors
func (c *Config) Validate() error {
	var errs []string

	switch c.Database.Driver {
	case constants.DriverPostgres:
		if c.Database.Host == "" {
			errs = append(errs, "PGHOST cannot be empty")
		}
		if c.Database.Port < 1 || c.Database.Port > 65535 {
			errs = append(errs, fmt.Sprintf("PGPORT must be between 1 and 65535, got: %d", c.Database.Port))
		}
		if c.Database.User == "" {
			errs = append(errs, "PGUSER cannot be empty")
		}
	case constants.DriverSQLite:
		if c.Database.SQLitePath == "" {
			errs = append(errs, "SQLITE_PATH cannot be empty")
		}
	default:
		errs = append(errs, fmt.Sprintf("DB_DRIVER must be one of: postgres, sqlite, got: %s", c.Database.Driver))
	}

	if c.SongRoot == "" {
		errs = append(errs, "ETL_SONG_ROOT cannot be empty")
	}
	if c.LogRoot == "" {
		errs = append(errs, "ETL_LOG_ROOT cannot be empty")
	}

	validLogLevels := map[string]bool{
		constants.LogLevelDebug: true,
		constants.LogLevelInfo:  true,
		constants.LogLevelWarn:  true,
		constants.LogLevelError: true,
	}
	if !validLogLevels[c.LogLevel] {
		errs = append(errs, fmt.Sprintf("LOG_LEVEL must be one of: debug, info, warn, error, got: %s", c.LogLevel))
	}

	if c.LogFormat != constants.LogFormatText && c.LogFormat != constants.LogFormatJSON {
		errs = append(errs, fmt.Sprintf("LOG_FORMAT must be one of: text, json, got: %s", c.LogFormat))
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}

	return nil
}
