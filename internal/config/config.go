// Package config loads service configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/url"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config is the top-level service configuration.
type Config struct {
	Port     string         `env:"PORT" envDefault:"8080"`
	LogLevel slog.Level     `env:"LOG_LEVEL" envDefault:"info"`
	Database DatabaseConfig `envPrefix:"DB_"`
	Auth     AuthConfig     `envPrefix:"JWT_"`
	Redis    RedisConfig    `envPrefix:"REDIS_"`

	LocationCacheTTL time.Duration `env:"LOCATION_CACHE_TTL" envDefault:"10m"`
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	Host     string `env:"HOST" envDefault:"localhost"`
	Port     string `env:"PORT" envDefault:"5432"`
	User     string `env:"USER" envDefault:"postgres"`
	Password string `env:"PASSWORD" envDefault:"postgres"`
	Name     string `env:"NAME" envDefault:"campusevents"`
	SSLMode  string `env:"SSLMODE" envDefault:"disable"`
	Migrate  bool   `env:"MIGRATE" envDefault:"true"`
}

// DSN builds a libpq-compatible connection string.
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

// MigrateURL builds the pgx5:// URL understood by the migration driver.
func (c DatabaseConfig) MigrateURL() string {
	u := url.URL{
		Scheme:   "pgx5",
		User:     url.UserPassword(c.User, c.Password),
		Host:     c.Host + ":" + c.Port,
		Path:     "/" + c.Name,
		RawQuery: url.Values{"sslmode": []string{c.SSLMode}}.Encode(),
	}
	return u.String()
}

// AuthConfig configures bearer token signing.
type AuthConfig struct {
	Secret string        `env:"SECRET,required"`
	TTL    time.Duration `env:"TTL" envDefault:"1h"`
}

// RedisConfig configures the location cache. An empty Addr disables it.
type RedisConfig struct {
	Addr     string `env:"ADDR"`
	Password string `env:"PASSWORD"`
	DB       int    `env:"DB" envDefault:"0"`
}

// Enabled reports whether a Redis address was configured.
func (c RedisConfig) Enabled() bool {
	return c.Addr != ""
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Load reads an optional .env file and then parses the environment.
// Variables already set in the process take precedence over the file.
func Load(files ...string) (Config, error) {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load dotenv: %w", err)
	}
	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadDatabase is Load for tools that only need the DB_* settings.
func LoadDatabase(files ...string) (DatabaseConfig, error) {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return DatabaseConfig{}, fmt.Errorf("load dotenv: %w", err)
	}
	var cfg DatabaseConfig
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: "DB_"}); err != nil {
		return DatabaseConfig{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}
