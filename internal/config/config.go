// Package config loads server and client configuration.
//
// Values are layered: built-in defaults, then an optional YAML file, then
// environment variables. Callers are expected to have loaded any `.env` file
// (godotenv) before calling Load.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

// FileEnv names the environment variable holding the YAML config path.
const FileEnv = "CODEBREAKER_CONFIG"

// Config is the complete runtime configuration.
type Config struct {
	Port           string `yaml:"port" env:"PORT"`
	LogLevel       string `yaml:"log_level" env:"LOG_LEVEL"`
	DBPath         string `yaml:"db_path" env:"DB_PATH"`
	JWTSecret      string `yaml:"jwt_secret" env:"JWT_SECRET"`
	JWTExpiresDays int    `yaml:"jwt_expires_days" env:"JWT_EXPIRES_DAYS"`
	CookieName     string `yaml:"cookie_name" env:"COOKIE_NAME"`
	ClientOrigin   string `yaml:"client_origin" env:"CLIENT_ORIGIN"`
	DailySalt      string `yaml:"daily_salt" env:"DAILY_SALT"`
	Symbols        string `yaml:"symbols" env:"CODE_SYMBOLS"`
	Environment    string `yaml:"environment" env:"APP_ENV"`
}

// Default returns the configuration used for local development.
func Default() *Config {
	return &Config{
		Port:           "5175",
		LogLevel:       "info",
		DBPath:         "./data/codebreaker.db",
		JWTSecret:      "dev_secret_change_me",
		JWTExpiresDays: 14,
		CookieName:     "codebreaker_token",
		ClientOrigin:   "http://localhost:5173",
		DailySalt:      "local_dev_salt",
		Symbols:        "123456",
		Environment:    "development",
	}
}

// Load builds a Config from defaults, the YAML file at path (or at
// $CODEBREAKER_CONFIG when path is empty) and the environment.
// A missing file is only an error when a path was given explicitly.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = os.Getenv(FileEnv)
	}
	if path != "" {
		if err := loadFile(cfg, path); err != nil {
			if explicit || !errors.Is(err, os.ErrNotExist) {
				return nil, err
			}
		}
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadFile overlays YAML values from path onto cfg.
func loadFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

// Validate reports the first unusable value.
func (c *Config) Validate() error {
	if c.Symbols == "" {
		return errors.New("config: symbols must not be empty")
	}
	if c.JWTExpiresDays <= 0 {
		return fmt.Errorf("config: jwt_expires_days must be positive, got %d", c.JWTExpiresDays)
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("config: log_level: %w", err)
	}
	if c.Production() {
		def := Default()
		// Built-in secrets are public; production must override both.
		if c.JWTSecret == "" || c.JWTSecret == def.JWTSecret {
			return errors.New("config: JWT_SECRET must be set in production")
		}
		if c.DailySalt == "" || c.DailySalt == def.DailySalt {
			return errors.New("config: DAILY_SALT must be set in production")
		}
	}
	return nil
}

// Level returns the parsed log level, falling back to info.
func (c *Config) Level() zerolog.Level {
	lvl, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil {
		return zerolog.InfoLevel
	}
	return lvl
}

// Production reports whether the server runs with production settings:
// Secure cookies and no built-in secrets.
func (c *Config) Production() bool {
	return c.Environment == "production"
}
