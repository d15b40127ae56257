package session

import (
	"context"
	"errors"
	"log/slog"

	"github.com/KotFed0t/stock_risk_client/config"
	"github.com/KotFed0t/stock_risk_client/utils"
	"github.com/redis/go-redis/v9"
)

// RedisStorage keeps the session in redis so several client processes share one login.
type RedisStorage struct {
	redis *redis.Client
	cfg   *config.Config
}

func NewRedisStorage(redisClient *redis.Client, cfg *config.Config) *RedisStorage {
	return &RedisStorage{redis: redisClient, cfg: cfg}
}

func (r *RedisStorage) key(k string) string {
	return r.cfg.Session.KeyPrefix + ":" + k
}

func (r *RedisStorage) Get(ctx context.Context, k string) (string, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)

	res, err := r.redis.Get(ctx, r.key(k)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrNotFound
		}
		slog.Error("failed on redis.Get", slog.String("rqID", rqID), slog.String("err", err.Error()), slog.String("key", k))
		return "", err
	}

	return res, nil
}

func (r *RedisStorage) Set(ctx context.Context, k, value string) error {
	rqID := utils.GetRequestIDFromCtx(ctx)

	err := r.redis.Set(ctx, r.key(k), value, r.cfg.Session.Expiration).Err()
	if err != nil {
		slog.Error("failed on redis.Set", slog.String("rqID", rqID), slog.String("err", err.Error()), slog.String("key", k))
		return err
	}

	return nil
}

func (r *RedisStorage) Clear(ctx context.Context) error {
	rqID := utils.GetRequestIDFromCtx(ctx)

	prefixed := make([]string, 0, len(keys))
	for _, k := range keys {
		prefixed = append(prefixed, r.key(k))
	}

	err := r.redis.Del(ctx, prefixed...).Err()
	if err != nil {
		slog.Error("failed on redis.Del", slog.String("rqID", rqID), slog.String("err", err.Error()))
		return err
	}

	return nil
}
