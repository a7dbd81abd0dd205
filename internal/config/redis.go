package config

import (
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
)

// NewRedisClient builds a client from either a redis:// URL or a host:port address.
// It does not dial; connection health is tracked separately once the client is in use.
func NewRedisClient(cfg RedisConfig) (*redis.Client, error) {
	if strings.HasPrefix(cfg.Addr, "redis://") || strings.HasPrefix(cfg.Addr, "rediss://") {
		opt, err := redis.ParseURL(cfg.Addr)
		if err != nil {
			return nil, fmt.Errorf("parse redis url: %w", err)
		}
		if cfg.PoolSize > 0 {
			opt.PoolSize = cfg.PoolSize
		}
		if cfg.DialTimeout > 0 {
			opt.DialTimeout = cfg.DialTimeout
		}
		return redis.NewClient(opt), nil
	}

	return redis.NewClient(&redis.Options{
		Addr:        cfg.Addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		PoolSize:    cfg.PoolSize,
		DialTimeout: cfg.DialTimeout,
	}), nil
}
