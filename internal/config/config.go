package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	_ "github.com/joho/godotenv/autoload"
	"gopkg.in/yaml.v3"
)

// FileEnv names the environment variable pointing at an optional YAML config file.
const FileEnv = "TASKHUB_CONFIG"

type Config struct {
	Port     int            `yaml:"port" validate:"min=1,max=65535"`
	Database DatabaseConfig `yaml:"database"`
	Auth     AuthConfig     `yaml:"auth"`
	Log      LogConfig      `yaml:"log"`
	Todos    TodoConfig     `yaml:"todos"`
}

type DatabaseConfig struct {
	Host         string `yaml:"host" validate:"required"`
	Port         int    `yaml:"port" validate:"min=1,max=65535"`
	Username     string `yaml:"username" validate:"required"`
	Password     string `yaml:"password"`
	Database     string `yaml:"database" validate:"required"`
	Schema       string `yaml:"schema"`
	SSLMode      string `yaml:"sslmode" validate:"oneof=disable allow prefer require verify-ca verify-full"`
	MaxOpenConns int    `yaml:"max_open_conns" validate:"min=1"`
	MaxIdleConns int    `yaml:"max_idle_conns" validate:"min=0"`
}

type AuthConfig struct {
	JWTSecret string        `yaml:"jwt_secret"`
	TokenTTL  time.Duration `yaml:"token_ttl" validate:"min=1m"`
}

type LogConfig struct {
	Level  string `yaml:"level" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" validate:"oneof=json console"`
}

type TodoConfig struct {
	PageSize int `yaml:"page_size" validate:"min=1,max=100"`
}

// DSN renders the connection string for the GORM postgres driver.
func (d DatabaseConfig) DSN() string {
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=%s",
		d.Host, d.Username, d.Password, d.Database, d.Port, d.SSLMode)
	if d.Schema != "" {
		dsn += " search_path=" + d.Schema
	}
	return dsn
}

// Default returns the configuration used when nothing overrides it.
func Default() Config {
	return Config{
		Port: 8080,
		Database: DatabaseConfig{
			Host:         "localhost",
			Port:         5432,
			Username:     "postgres",
			Database:     "taskhub",
			SSLMode:      "disable",
			MaxOpenConns: 100,
			MaxIdleConns: 10,
		},
		Auth: AuthConfig{
			TokenTTL: 7 * 24 * time.Hour,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
		Todos: TodoConfig{
			PageSize: 10,
		},
	}
}

// Load layers defaults, the YAML file at path (or $TASKHUB_CONFIG when path is
// empty) and environment variables, then validates the result.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv(FileEnv)
	}
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return nil, err
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

// ValidateServe checks the settings only the HTTP server needs.
func (c *Config) ValidateServe() error {
	if len(c.Auth.JWTSecret) < 16 {
		return errors.New("JWT_SECRET must be set and at least 16 characters long")
	}
	return nil
}

func applyEnv(cfg *Config) error {
	setString(&cfg.Database.Host, "BLUEPRINT_DB_HOST")
	setString(&cfg.Database.Username, "BLUEPRINT_DB_USERNAME")
	setString(&cfg.Database.Password, "BLUEPRINT_DB_PASSWORD")
	setString(&cfg.Database.Database, "BLUEPRINT_DB_DATABASE")
	setString(&cfg.Database.Schema, "BLUEPRINT_DB_SCHEMA")
	setString(&cfg.Database.SSLMode, "BLUEPRINT_DB_SSLMODE")
	setString(&cfg.Auth.JWTSecret, "JWT_SECRET")
	setString(&cfg.Log.Level, "LOG_LEVEL")
	setString(&cfg.Log.Format, "LOG_FORMAT")

	ints := []struct {
		dst *int
		key string
	}{
		{&cfg.Port, "PORT"},
		{&cfg.Database.Port, "BLUEPRINT_DB_PORT"},
		{&cfg.Database.MaxOpenConns, "DB_MAX_OPEN_CONNS"},
		{&cfg.Database.MaxIdleConns, "DB_MAX_IDLE_CONNS"},
		{&cfg.Todos.PageSize, "TODO_PAGE_SIZE"},
	}
	for _, e := range ints {
		if err := setInt(e.dst, e.key); err != nil {
			return err
		}
	}

	if v, ok := os.LookupEnv("JWT_TTL"); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid JWT_TTL %q: %w", v, err)
		}
		cfg.Auth.TokenTTL = d
	}
	return nil
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) error {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	*dst = n
	return nil
}
