// Package config loads the governor configuration from YAML with
// environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"governor-xrpl-lab/internal/guardian"
	"governor-xrpl-lab/internal/horizon"
	"governor-xrpl-lab/internal/publish"
	"governor-xrpl-lab/internal/storage/redisstore"
	"governor-xrpl-lab/internal/telemetry"
)

// ErrInvalidConfig is returned by Validate.
var ErrInvalidConfig = errors.New("invalid config")

// Storage drivers.
const (
	DriverMemory     = "memory"
	DriverFile       = "file"
	DriverRedis      = "redis"
	DriverPostgres   = "postgres"
	DriverClickhouse = "clickhouse"
)

// Publish drivers.
const (
	PublishNone     = publish.DriverNone
	PublishRabbitMQ = publish.DriverRabbitMQ
)

// Config is the full governor configuration.
type Config struct {
	RPC      RPCConfig                `yaml:"rpc" envPrefix:"RPC_"`
	FeeBand  telemetry.BandThresholds `yaml:"fee_band" envPrefix:"FEE_BAND_"`
	Guardian guardian.Thresholds      `yaml:"guardian" envPrefix:"GUARDIAN_"`
	Horizon  horizon.Config           `yaml:"horizon" envPrefix:"HORIZON_"`
	Planner  PlannerConfig            `yaml:"planner" envPrefix:"PLANNER_"`
	Storage  StorageConfig            `yaml:"storage" envPrefix:"STORAGE_"`
	Publish  PublishConfig            `yaml:"publish" envPrefix:"PUBLISH_"`
	Server   ServerConfig             `yaml:"server" envPrefix:"SERVER_"`
}

// RPCConfig lists ledger nodes and call limits.
type RPCConfig struct {
	Endpoints     []string      `yaml:"endpoints" env:"ENDPOINTS" envSeparator:","`
	WSEndpoints   []string      `yaml:"ws_endpoints" env:"WS_ENDPOINTS" envSeparator:","`
	Timeout       time.Duration `yaml:"timeout" env:"TIMEOUT"`
	RateLimit     float64       `yaml:"rate_limit" env:"RATE_LIMIT"`
	RateBurst     int           `yaml:"rate_burst" env:"RATE_BURST"`
	EMAAlpha      float64       `yaml:"ema_alpha" env:"EMA_ALPHA"`
	UseServerInfo bool          `yaml:"use_server_info" env:"USE_SERVER_INFO"`
}

// Dial converts the section into the node list the snapshot source dials.
func (c RPCConfig) Dial() telemetry.DialConfig {
	return telemetry.DialConfig{
		WSEndpoints:   c.WSEndpoints,
		RPCEndpoints:  c.Endpoints,
		Timeout:       c.Timeout,
		RateLimit:     c.RateLimit,
		RateBurst:     c.RateBurst,
		EMAAlpha:      c.EMAAlpha,
		UseServerInfo: c.UseServerInfo,
	}
}

// PlannerConfig tunes the execution planner.
type PlannerConfig struct {
	RiskBudget int `yaml:"risk_budget" env:"RISK_BUDGET"`
}

// StorageConfig selects the history and policy backends.
type StorageConfig struct {
	Driver        string            `yaml:"driver" env:"DRIVER"`
	HistoryLimit  int               `yaml:"history_limit" env:"HISTORY_LIMIT"`
	FilePath      string            `yaml:"file_path" env:"FILE_PATH"`
	PostgresDSN   string            `yaml:"postgres_dsn" env:"POSTGRES_DSN"`
	MaxConns      int32             `yaml:"max_conns" env:"MAX_CONNS"`
	ClickhouseDSN string            `yaml:"clickhouse_dsn" env:"CLICKHOUSE_DSN"`
	Redis         redisstore.Config `yaml:"redis" envPrefix:"REDIS_"`
	// Migrate applies embedded migrations on startup.
	Migrate bool `yaml:"migrate" env:"MIGRATE"`
}

// PublishConfig selects where decisions are published.
type PublishConfig struct {
	Driver   string                 `yaml:"driver" env:"DRIVER"`
	RabbitMQ publish.RabbitMQConfig `yaml:"rabbitmq" envPrefix:"RABBITMQ_"`
}

// ServerConfig configures the HTTP listener and cycle loop.
type ServerConfig struct {
	Addr          string        `yaml:"addr" env:"ADDR"`
	CycleInterval time.Duration `yaml:"cycle_interval" env:"CYCLE_INTERVAL"`
	// ShutdownTimeout bounds graceful HTTP shutdown.
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SHUTDOWN_TIMEOUT"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		RPC: RPCConfig{
			Endpoints: append([]string(nil), telemetry.DefaultRPCEndpoints...),
			Timeout:   telemetry.MaxCallTimeout,
			RateLimit: 5,
			RateBurst: 5,
			EMAAlpha:  telemetry.DefaultEMAAlpha,
		},
		FeeBand:  telemetry.DefaultBandThresholds(),
		Guardian: guardian.DefaultThresholds(),
		Horizon:  horizon.DefaultConfig(),
		Planner:  PlannerConfig{RiskBudget: 3},
		Storage: StorageConfig{
			Driver:       DriverMemory,
			HistoryLimit: 1000,
			FilePath:     "data/fee_history.jsonl",
			MaxConns:     4,
		},
		Publish: PublishConfig{Driver: PublishNone},
		Server: ServerConfig{
			Addr:            ":8080",
			CycleInterval:   30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
	}
}

// Load reads path over the defaults and applies environment overrides with
// the given prefix. An empty path skips the file.
func Load(path, envPrefix string) (Config, error) {
	cfg := Default()

	if strings.TrimSpace(path) != "" {
		content, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(content, &cfg); err != nil {
			return Config{}, fmt.Errorf("decode config %s: %w", path, err)
		}
	}

	if err := ParseEnv(&cfg, envPrefix); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ParseEnv overlays environment variables onto target.
func ParseEnv(target any, prefix string) error {
	if err := env.ParseWithOptions(target, env.Options{Prefix: prefix}); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Validate checks the configuration for values the governor cannot run with.
func (c Config) Validate() error {
	if len(c.RPC.Endpoints) == 0 && len(c.RPC.WSEndpoints) == 0 {
		return fmt.Errorf("%w: no rpc or ws endpoints", ErrInvalidConfig)
	}
	if c.RPC.Timeout <= 0 || c.RPC.Timeout > telemetry.MaxCallTimeout {
		return fmt.Errorf("%w: rpc timeout %v outside (0, %v]", ErrInvalidConfig, c.RPC.Timeout, telemetry.MaxCallTimeout)
	}
	if c.RPC.RateLimit < 0 {
		return fmt.Errorf("%w: negative rate limit", ErrInvalidConfig)
	}
	if c.RPC.EMAAlpha <= 0 || c.RPC.EMAAlpha > 1 {
		return fmt.Errorf("%w: ema alpha %v outside (0, 1]", ErrInvalidConfig, c.RPC.EMAAlpha)
	}
	if err := c.FeeBand.Validate(); err != nil {
		return fmt.Errorf("%w: fee_band: %v", ErrInvalidConfig, err)
	}
	if err := c.Guardian.Validate(); err != nil {
		return fmt.Errorf("%w: guardian: %v", ErrInvalidConfig, err)
	}
	if c.Planner.RiskBudget < 1 || c.Planner.RiskBudget > 5 {
		return fmt.Errorf("%w: risk budget %d outside [1, 5]", ErrInvalidConfig, c.Planner.RiskBudget)
	}
	if c.Server.CycleInterval <= 0 {
		return fmt.Errorf("%w: cycle interval must be positive", ErrInvalidConfig)
	}

	switch c.Storage.Driver {
	case DriverMemory:
	case DriverFile:
		if c.Storage.FilePath == "" {
			return fmt.Errorf("%w: storage.file_path required for file driver", ErrInvalidConfig)
		}
	case DriverRedis:
		if c.Storage.Redis.Address == "" {
			return fmt.Errorf("%w: storage.redis.address required for redis driver", ErrInvalidConfig)
		}
	case DriverPostgres:
		if c.Storage.PostgresDSN == "" {
			return fmt.Errorf("%w: storage.postgres_dsn required for postgres driver", ErrInvalidConfig)
		}
	case DriverClickhouse:
		if c.Storage.ClickhouseDSN == "" {
			return fmt.Errorf("%w: storage.clickhouse_dsn required for clickhouse driver", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown storage driver %q", ErrInvalidConfig, c.Storage.Driver)
	}

	switch c.Publish.Driver {
	case PublishNone, "":
	case PublishRabbitMQ:
		if c.Publish.RabbitMQ.URL == "" {
			return fmt.Errorf("%w: publish.rabbitmq.url required for rabbitmq driver", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown publish driver %q", ErrInvalidConfig, c.Publish.Driver)
	}
	return nil
}
