package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"

	"github.com/lazorkit/lazordrop/internal/airdrop"
	"github.com/lazorkit/lazordrop/internal/confirm"
	"github.com/lazorkit/lazordrop/internal/cooldown"
	"github.com/lazorkit/lazordrop/internal/logging"
	"github.com/lazorkit/lazordrop/internal/metrics"
)

const (
	DefaultRPCURL = "https://rpc.lazorkit.xyz"
	envPrefix     = "LAZORDROP"
)

type Config struct {
	Logging logging.Config       `mapstructure:"logging" json:"logging,omitempty"`
	Server  ServerConfig         `mapstructure:"server" json:"server,omitempty"`
	Ledger  LedgerConfig         `mapstructure:"ledger" json:"ledger,omitempty"`
	Poller  confirm.Config       `mapstructure:"poller" json:"poller,omitempty"`
	Airdrop airdrop.Config       `mapstructure:"airdrop" json:"airdrop,omitempty"`
	Redis   cooldown.RedisConfig `mapstructure:"redis" json:"redis,omitempty"`
	Metrics metrics.Config       `mapstructure:"metrics" json:"metrics,omitempty"`
	Worker  WorkerConfig         `mapstructure:"worker" json:"worker,omitempty"`
}

type ServerConfig struct {
	Host       string  `mapstructure:"host" json:"host,omitempty"`
	Port       int64   `mapstructure:"port" json:"port,omitempty"`
	RateLimit  float64 `mapstructure:"rate_limit" json:"rate_limit,omitempty"`
	RateBurst  int     `mapstructure:"rate_burst" json:"rate_burst,omitempty"`
	HealthPort int     `mapstructure:"health_port" json:"health_port,omitempty"`
}

type LedgerConfig struct {
	RPCURL     string        `mapstructure:"rpc_url" json:"rpc_url,omitempty"`
	Commitment string        `mapstructure:"commitment" json:"commitment,omitempty"`
	RetryMax   int           `mapstructure:"retry_max" json:"retry_max,omitempty"`
	RetryWait  time.Duration `mapstructure:"retry_wait" json:"retry_wait,omitempty"`
}

type WorkerConfig struct {
	Concurrency int           `mapstructure:"concurrency" json:"concurrency,omitempty"`
	TaskTimeout time.Duration `mapstructure:"task_timeout" json:"task_timeout,omitempty"`
	HealthPort  int           `mapstructure:"health_port" json:"health_port,omitempty"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logging.format", string(logging.FormatText))
	v.SetDefault("logging.level", "info")

	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.rate_limit", 1)
	v.SetDefault("server.rate_burst", 5)
	v.SetDefault("server.health_port", 8081)

	v.SetDefault("ledger.rpc_url", DefaultRPCURL)
	v.SetDefault("ledger.commitment", "confirmed")
	v.SetDefault("ledger.retry_max", 3)
	v.SetDefault("ledger.retry_wait", time.Second)

	v.SetDefault("poller.max_attempts", confirm.DefaultMaxAttempts)
	v.SetDefault("poller.interval", confirm.DefaultInterval)
	v.SetDefault("poller.backoff_multiplier", 0)
	v.SetDefault("poller.backoff_max_interval", 0)
	v.SetDefault("poller.backoff_jitter", 0)

	defaults := airdrop.DefaultConfig()
	v.SetDefault("airdrop.lamports", defaults.Lamports)
	v.SetDefault("airdrop.cooldown", defaults.Cooldown)

	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", "6379")
	v.SetDefault("redis.user", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	m := metrics.DefaultConfig()
	v.SetDefault("metrics.enabled", m.Enabled)
	v.SetDefault("metrics.host", m.Host)
	v.SetDefault("metrics.port", m.Port)
	v.SetDefault("metrics.token", "")

	v.SetDefault("worker.concurrency", 10)
	v.SetDefault("worker.task_timeout", 2*time.Minute)
	v.SetDefault("worker.health_port", 8082)
}

// GetConfigure reads the config named by LAZORDROP_CONFIG_NAME, "config" by default.
func GetConfigure() (*Config, error) {
	configName := os.Getenv("LAZORDROP_CONFIG_NAME")
	if configName == "" {
		configName = "config"
	}
	return ReadConfig(configName, ".")
}

// ReadConfig loads configName from the given paths. A missing file is not an
// error; defaults and LAZORDROP_* environment variables still apply.
func ReadConfig(configName string, paths ...string) (*Config, error) {
	v := viper.New()
	v.SetConfigName(configName)
	for _, p := range paths {
		v.AddConfigPath(p)
	}
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("fail to reading config file, %w", err)
		}
	}

	var cfg Config
	err := v.Unmarshal(&cfg, viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.TextUnmarshallerHookFunc(),
		mapstructure.StringToTimeDurationHookFunc(),
	)))
	if err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.Ledger.RPCURL == "" {
		return errors.New("ledger.rpc_url is required")
	}
	switch c.Ledger.Commitment {
	case "processed", "confirmed", "finalized":
	default:
		return fmt.Errorf("invalid ledger.commitment %q", c.Ledger.Commitment)
	}
	if c.Poller.MaxAttempts <= 0 {
		return fmt.Errorf("poller.max_attempts must be positive, got %d", c.Poller.MaxAttempts)
	}
	if c.Poller.Interval < 0 {
		return fmt.Errorf("poller.interval must not be negative, got %s", c.Poller.Interval)
	}
	if c.Airdrop.Lamports == 0 {
		return errors.New("airdrop.lamports must be positive")
	}
	return nil
}
