// Package config loads server settings from a YAML file, a .env file and
// FOUNDIT_* environment variables, in that order of increasing precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

// Config holds runtime configuration.
type Config struct {
	Server struct {
		Address         string        `yaml:"address"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		IdleTimeout     time.Duration `yaml:"idle_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	} `yaml:"server"`
	Database struct {
		Driver string `yaml:"driver"`
		DSN    string `yaml:"dsn"`
	} `yaml:"database"`
	Redis struct {
		Addr     string        `yaml:"addr"`
		Password string        `yaml:"password"`
		DB       int           `yaml:"db"`
		LockTTL  time.Duration `yaml:"lock_ttl"`
	} `yaml:"redis"`
	Log struct {
		File string `yaml:"file"`
	} `yaml:"log"`
	Admin struct {
		Email string `yaml:"email"`
		Name  string `yaml:"name"`
	} `yaml:"admin"`
	CORS struct {
		AllowedOrigins []string `yaml:"allowed_origins"`
	} `yaml:"cors"`
}

// Default returns the built-in configuration.
func Default() Config {
	var cfg Config
	cfg.Server.Address = ":8080"
	cfg.Server.ReadTimeout = 30 * time.Second
	cfg.Server.WriteTimeout = 60 * time.Second
	cfg.Server.IdleTimeout = 120 * time.Second
	cfg.Server.ShutdownTimeout = 5 * time.Second
	cfg.Database.Driver = "sqlite"
	cfg.Database.DSN = "foundit.sqlite3"
	cfg.Redis.LockTTL = 30 * time.Second
	cfg.Admin.Email = "admin@foundit.local"
	cfg.Admin.Name = "Administrator"
	cfg.CORS.AllowedOrigins = []string{"http://localhost:5173", "http://localhost:3000"}
	return cfg
}

// Load builds the configuration. path may be empty; a missing .env file is
// not an error.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("loading .env: %w", err)
	}

	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	strs := map[string]*string{
		"FOUNDIT_ADDR":           &cfg.Server.Address,
		"FOUNDIT_DB_DRIVER":      &cfg.Database.Driver,
		"FOUNDIT_DB_DSN":         &cfg.Database.DSN,
		"FOUNDIT_REDIS_ADDR":     &cfg.Redis.Addr,
		"FOUNDIT_REDIS_PASSWORD": &cfg.Redis.Password,
		"FOUNDIT_LOG_FILE":       &cfg.Log.File,
		"FOUNDIT_ADMIN_EMAIL":    &cfg.Admin.Email,
	}
	for key, dst := range strs {
		if v, ok := os.LookupEnv(key); ok {
			*dst = v
		}
	}

	if v, ok := os.LookupEnv("FOUNDIT_REDIS_DB"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parse FOUNDIT_REDIS_DB: %w", err)
		}
		cfg.Redis.DB = n
	}

	if v, ok := os.LookupEnv("FOUNDIT_CORS_ORIGINS"); ok {
		cfg.CORS.AllowedOrigins = splitList(v)
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Validate checks settings that would otherwise fail late.
func (c Config) Validate() error {
	if c.Server.Address == "" {
		return errors.New("server address is required")
	}
	switch c.Database.Driver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}
	if c.Database.DSN == "" {
		return errors.New("database dsn is required")
	}
	if c.Admin.Email == "" {
		return errors.New("admin email is required")
	}
	return nil
}
