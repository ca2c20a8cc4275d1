package adapter

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

func NewRedisClient(ctx context.Context, addr string, password string, db int) (*redis.Client, error) {
	if addr == "" {
		return nil, errors.New("Redis host is empty")
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	// Ping the Redis server to check the connection
	if _, err := client.Ping(pingCtx).Result(); err != nil {
		_ = client.Close()
		return nil, errors.Wrapf(err, "failed to connect to Redis DB %d", db)
	}

	return client, nil
}
