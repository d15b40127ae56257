package data

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/KotFed0t/stock_risk_client/config"
	"github.com/redis/go-redis/v9"
)

const redisPingTimeout = 3 * time.Second

// NewRedisClient connects and pings redis. The client is closed again if the
// ping fails.
func NewRedisClient(ctx context.Context, cfg *config.Config) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(ctx, redisPingTimeout)
	defer cancel()

	pong, err := rdb.Ping(ctx).Result()
	if err != nil {
		slog.Error("Error while connecting Redis", slog.String("error", err.Error()))
		_ = rdb.Close()
		return nil, err
	}
	slog.Debug("Redis connected", slog.String("pong", pong))

	return rdb, nil
}
