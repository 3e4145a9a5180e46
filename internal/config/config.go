// internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	Env       string `yaml:"env" env:"APP_ENV" env-default:"development"`
	LogLevel  string `yaml:"log_level" env:"LOG_LEVEL" env-default:"info"`
	Server    `yaml:"server"`
	Database  `yaml:"database"`
	Telemetry `yaml:"telemetry"`
	RateLimit `yaml:"rate_limit"`
	Overdue   `yaml:"overdue"`
}

type Server struct {
	Addr         string        `yaml:"addr" env:"HTTP_ADDR" env-default:":8080"`
	ReadTimeout  time.Duration `yaml:"read_timeout" env:"HTTP_READ_TIMEOUT" env-default:"15s"`
	WriteTimeout time.Duration `yaml:"write_timeout" env:"HTTP_WRITE_TIMEOUT" env-default:"15s"`
	IdleTimeout  time.Duration `yaml:"idle_timeout" env:"HTTP_IDLE_TIMEOUT" env-default:"60s"`
}

// Database selects the storage backend. DSN is ignored by the memory driver.
type Database struct {
	Driver string `yaml:"driver" env:"DB_DRIVER" env-default:"memory"`
	DSN    string `yaml:"dsn" env:"DATABASE_URL"`
}

type Telemetry struct {
	ServiceName  string `yaml:"service_name" env:"OTEL_SERVICE_NAME" env-default:"biblioteca"`
	OTLPEndpoint string `yaml:"otlp_endpoint" env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
}

// RateLimit throttles write requests. RPS <= 0 disables it.
type RateLimit struct {
	RPS   float64 `yaml:"rps" env:"RATE_LIMIT_RPS" env-default:"50"`
	Burst int     `yaml:"burst" env:"RATE_LIMIT_BURST" env-default:"100"`
}

// Overdue configures the background overdue-loan scan. Zero disables it.
type Overdue struct {
	ScanInterval time.Duration `yaml:"scan_interval" env:"OVERDUE_SCAN_INTERVAL" env-default:"1h"`
}

var ErrInvalidConfig = errors.New("invalid config")

// Load reads the YAML file named by CONFIG_PATH when set, then applies the environment.
func Load() (Config, error) {
	return LoadFromPath(os.Getenv("CONFIG_PATH"))
}

// LoadFromPath reads path (when not empty) and the environment into a Config.
func LoadFromPath(path string) (Config, error) {
	var cfg Config

	var err error
	if path != "" {
		err = cleanenv.ReadConfig(path, &cfg)
	} else {
		err = cleanenv.ReadEnv(&cfg)
	}
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch c.Database.Driver {
	case "memory":
	case "postgres", "sqlite":
		if c.Database.DSN == "" {
			return fmt.Errorf("%w: DATABASE_URL is required for driver %q", ErrInvalidConfig, c.Database.Driver)
		}
	default:
		return fmt.Errorf("%w: unknown DB_DRIVER %q", ErrInvalidConfig, c.Database.Driver)
	}
	if c.RateLimit.RPS > 0 && c.RateLimit.Burst <= 0 {
		return fmt.Errorf("%w: RATE_LIMIT_BURST must be positive", ErrInvalidConfig)
	}
	if c.Overdue.ScanInterval < 0 {
		return fmt.Errorf("%w: OVERDUE_SCAN_INTERVAL must not be negative", ErrInvalidConfig)
	}
	return nil
}

// Usage describes the environment variables Load understands.
func Usage() string {
	var cfg Config
	desc, err := cleanenv.GetDescription(&cfg, nil)
	if err != nil {
		return err.Error()
	}
	return desc
}
