package cache

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "medibot:answer:"

// Redis is a Cache shared between server instances.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedis connects to redisURL (redis://host:port/db) and checks it
// answers.
func NewRedis(ctx context.Context, redisURL string, ttl time.Duration) (*Redis, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse Redis URL")
	}

	client := redis.NewClient(opt)
	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, errors.Wrap(err, "failed to ping Redis")
	}
	return &Redis{client: client, ttl: ttl}, nil
}

func (r *Redis) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := r.client.Get(ctx, keyPrefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, errors.Wrap(err, "redis get")
	}
	return val, true, nil
}

func (r *Redis) Set(ctx context.Context, key, value string) error {
	return errors.Wrap(r.client.Set(ctx, keyPrefix+key, value, r.ttl).Err(), "redis set")
}

func (r *Redis) Close() error {
	return r.client.Close()
}
