package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"

	"github.com/KotFed0t/stock_risk_client/config"
	"github.com/KotFed0t/stock_risk_client/internal/model"
	"github.com/KotFed0t/stock_risk_client/utils"
	"github.com/redis/go-redis/v9"
)

var ErrCacheMiss = errors.New("error cache miss")

type RedisCache struct {
	redis *redis.Client
	cfg   *config.Config
}

func NewRedisCache(redisClient *redis.Client, cfg *config.Config) *RedisCache {
	return &RedisCache{redis: redisClient, cfg: cfg}
}

func searchKey(symbol string) string {
	return "search:" + strings.ToUpper(strings.TrimSpace(symbol))
}

func (r *RedisCache) SetSearchResult(ctx context.Context, symbol string, res model.SearchResult) error {
	rqID := utils.GetRequestIDFromCtx(ctx)
	slog.Debug("start SetSearchResult", slog.String("rqID", rqID), slog.String("symbol", symbol))

	resJson, err := json.Marshal(res)
	if err != nil {
		slog.Error(
			"can't marshall search result in SetSearchResult",
			slog.String("rqID", rqID),
			slog.String("err", err.Error()),
			slog.Any("result", res),
		)
		return errors.New("can't marshall search result")
	}

	err = r.redis.Set(ctx, searchKey(symbol), resJson, r.cfg.Cache.SearchExpiration).Err()
	if err != nil {
		slog.Error("failed on redis.Set", slog.String("rqID", rqID), slog.String("err", err.Error()), slog.String("symbol", symbol))
		return err
	}

	slog.Debug("SetSearchResult completed", slog.String("rqID", rqID))

	return nil
}

func (r *RedisCache) GetSearchResult(ctx context.Context, symbol string) (model.SearchResult, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	slog.Debug("GetSearchResult start", slog.String("rqID", rqID), slog.String("symbol", symbol))

	res, err := r.redis.Get(ctx, searchKey(symbol)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return model.SearchResult{}, ErrCacheMiss
		}
		slog.Error("failed on redis.Get", slog.String("rqID", rqID), slog.String("err", err.Error()), slog.String("symbol", symbol))
		return model.SearchResult{}, err
	}

	searchResult := model.SearchResult{}
	err = json.Unmarshal([]byte(res), &searchResult)
	if err != nil {
		slog.Error(
			"can't unmarshall search result in GetSearchResult",
			slog.String("rqID", rqID),
			slog.String("err", err.Error()),
			slog.String("resultFromRedis", res),
		)
		return model.SearchResult{}, errors.New("can't unmarshall search result")
	}

	slog.Debug("GetSearchResult finished", slog.String("rqID", rqID))

	return searchResult, nil
}
