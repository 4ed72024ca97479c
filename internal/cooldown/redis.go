package cooldown

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "lazordrop:cooldown:"

type RedisConfig struct {
	Host     string `mapstructure:"host" json:"host,omitempty"`
	Port     string `mapstructure:"port" json:"port,omitempty"`
	User     string `mapstructure:"user" json:"user,omitempty"`
	Password string `mapstructure:"password" json:"password,omitempty"`
	DB       int    `mapstructure:"db" json:"db,omitempty"`
}

func (c RedisConfig) Addr() string {
	return c.Host + ":" + c.Port
}

// RedisStore shares cooldowns between the API server and workers.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(cfg RedisConfig) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Username: cfg.User,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	status := client.Ping(context.Background())
	if status.Err() != nil {
		return nil, fmt.Errorf("redis ping: %w", status.Err())
	}
	return &RedisStore{
		client: client,
	}, nil
}

func (r *RedisStore) Start(ctx context.Context, key string, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return r.client.Set(ctx, keyPrefix+key, time.Now().Add(d).Unix(), d).Err()
}

func (r *RedisStore) TryStart(ctx context.Context, key string, d time.Duration) (time.Duration, bool, error) {
	if err := ctx.Err(); err != nil {
		return 0, false, err
	}
	// The key can expire between SETNX and PTTL, so try twice.
	for i := 0; i < 2; i++ {
		ok, err := r.client.SetNX(ctx, keyPrefix+key, time.Now().Add(d).Unix(), d).Result()
		if err != nil {
			return 0, false, fmt.Errorf("failed to reserve cooldown: %w", err)
		}
		if ok {
			return 0, true, nil
		}
		left, err := r.Remaining(ctx, key)
		if err != nil {
			return 0, false, err
		}
		if left > 0 {
			return left, false, nil
		}
	}
	return 0, false, fmt.Errorf("failed to reserve cooldown for %s", key)
}

func (r *RedisStore) Release(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, keyPrefix+key).Err(); err != nil {
		return fmt.Errorf("failed to release cooldown: %w", err)
	}
	return nil
}

func (r *RedisStore) Remaining(ctx context.Context, key string) (time.Duration, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	ttl, err := r.client.PTTL(ctx, keyPrefix+key).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to read cooldown ttl: %w", err)
	}
	// -2 (missing key) and -1 (no expiry) both come back as non-positive.
	if ttl <= 0 {
		return 0, nil
	}
	return ttl, nil
}

func (r *RedisStore) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *RedisStore) Close() error {
	return r.client.Close()
}
