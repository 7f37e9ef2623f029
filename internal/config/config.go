// Package config resolves connection and ingestion settings from the
// environment and an optional pgingest.yaml project file.
//
// Precedence, lowest to highest: built-in defaults, pgingest.yaml,
// environment variables. A .env file in the working directory is folded into
// the environment by the CLI (godotenv) before resolution, so .env entries
// behave exactly like exported variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/vvka-141/pgingest/pkg/pgingest"
)

// ErrConfigNotFound is returned when the project config file does not exist.
// Callers can check for this with errors.Is(err, config.ErrConfigNotFound).
var ErrConfigNotFound = errors.New("config file not found")

// ConfigFileName is the optional per-project configuration file.
const ConfigFileName = "pgingest.yaml"

// Environment variable names, matching the original .env contract.
const (
	EnvHost      = "DB_HOST"
	EnvPort      = "DB_PORT"
	EnvDatabase  = "DB_NAME"
	EnvUser      = "DB_USER"
	EnvPassword  = "DB_PASSWORD"
	EnvSSLMode   = "DB_SSLMODE"
	EnvSchema    = "PGINGEST_SCHEMA"
	EnvBatchSize = "PGINGEST_BATCH_SIZE"
)

// Built-in defaults.
const (
	DefaultHost     = "localhost"
	DefaultPort     = 5432
	DefaultDatabase = "postgres"
	DefaultUser     = "postgres"
	DefaultPassword = "postgres"
)

type connectionYAML struct {
	Host     string `yaml:"host,omitempty"`
	Port     int    `yaml:"port,omitempty"`
	Username string `yaml:"username,omitempty"`
	Password string `yaml:"password,omitempty"`
	Database string `yaml:"database,omitempty"`
	SSLMode  string `yaml:"sslmode,omitempty"`
}

type projectYAML struct {
	Connection connectionYAML `yaml:"connection"`
	Schema     string         `yaml:"schema,omitempty"`
	BatchSize  int            `yaml:"batch_size,omitempty"`
}

// Config is the fully resolved runtime configuration.
type Config struct {
	Connection pgingest.ConnectionConfig
	Schema     string
	BatchSize  int
}

// Defaults returns the built-in configuration used when nothing else is set.
func Defaults() *Config {
	return &Config{
		Connection: pgingest.ConnectionConfig{
			Host:     DefaultHost,
			Port:     DefaultPort,
			Database: DefaultDatabase,
			Username: DefaultUser,
			Password: DefaultPassword,
			AppName:  "pgingest",
		},
		Schema:    pgingest.DefaultSchema,
		BatchSize: pgingest.DefaultBatchSize,
	}
}

// Resolve builds the runtime configuration: defaults, overlaid with
// pgingest.yaml from dir (if present), overlaid with environment variables.
func Resolve(dir string) (*Config, error) {
	cfg := Defaults()

	project, err := loadProjectFile(dir)
	if err != nil && !errors.Is(err, ErrConfigNotFound) {
		return nil, err
	}
	if project != nil {
		applyProject(cfg, project)
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func loadProjectFile(dir string) (*projectYAML, error) {
	configPath := filepath.Join(dir, ConfigFileName)
	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var project projectYAML
	if err := yaml.Unmarshal(data, &project); err != nil {
		return nil, fmt.Errorf("parse %s: %w", ConfigFileName, err)
	}
	return &project, nil
}

func applyProject(cfg *Config, p *projectYAML) {
	if p.Connection.Host != "" {
		cfg.Connection.Host = p.Connection.Host
	}
	if p.Connection.Port != 0 {
		cfg.Connection.Port = p.Connection.Port
	}
	if p.Connection.Username != "" {
		cfg.Connection.Username = p.Connection.Username
	}
	if p.Connection.Password != "" {
		cfg.Connection.Password = p.Connection.Password
	}
	if p.Connection.Database != "" {
		cfg.Connection.Database = p.Connection.Database
	}
	if p.Connection.SSLMode != "" {
		cfg.Connection.SSLMode = p.Connection.SSLMode
	}
	if p.Schema != "" {
		cfg.Schema = p.Schema
	}
	if p.BatchSize > 0 {
		cfg.BatchSize = p.BatchSize
	}
}

func applyEnv(cfg *Config) error {
	if v := os.Getenv(EnvHost); v != "" {
		cfg.Connection.Host = v
	}
	if v := os.Getenv(EnvPort); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s=%q is not a valid port: %w", EnvPort, v, pgingest.ErrInvalidConfig)
		}
		cfg.Connection.Port = port
	}
	if v := os.Getenv(EnvDatabase); v != "" {
		cfg.Connection.Database = v
	}
	if v := os.Getenv(EnvUser); v != "" {
		cfg.Connection.Username = v
	}
	if v := os.Getenv(EnvPassword); v != "" {
		cfg.Connection.Password = v
	}
	if v := os.Getenv(EnvSSLMode); v != "" {
		cfg.Connection.SSLMode = v
	}
	if v := os.Getenv(EnvSchema); v != "" {
		cfg.Schema = v
	}
	if v := os.Getenv(EnvBatchSize); v != "" {
		size, err := strconv.Atoi(v)
		if err != nil || size <= 0 {
			return fmt.Errorf("%s=%q is not a valid batch size: %w", EnvBatchSize, v, pgingest.ErrInvalidConfig)
		}
		cfg.BatchSize = size
	}
	return nil
}
