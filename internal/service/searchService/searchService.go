package searchService

import (
	"context"
	"log/slog"
	"strings"

	"github.com/KotFed0t/stock_risk_client/internal/model"
	"github.com/KotFed0t/stock_risk_client/internal/service"
	"github.com/KotFed0t/stock_risk_client/utils"
)

type SearchApi interface {
	Search(ctx context.Context, symbol string) (model.SearchResult, error)
}

type Cache interface {
	GetSearchResult(ctx context.Context, symbol string) (model.SearchResult, error)
	SetSearchResult(ctx context.Context, symbol string, res model.SearchResult) error
}

type SearchService struct {
	api   SearchApi
	cache Cache
}

func New(api SearchApi, cache Cache) *SearchService {
	return &SearchService{api: api, cache: cache}
}

func (s *SearchService) Search(ctx context.Context, symbol string) (res model.SearchResult, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "SearchService.Search"

	symbol = strings.TrimSpace(symbol)
	if symbol == "" {
		return model.SearchResult{}, service.ErrEmptyField
	}

	slog.Debug("Search start", slog.String("rqID", rqID), slog.String("op", op), slog.String("symbol", symbol))
	defer func() {
		slog.Debug("Search finished", slog.String("rqID", rqID), slog.String("op", op), slog.String("symbol", symbol))
	}()

	res, err = s.cache.GetSearchResult(ctx, symbol)
	if err == nil {
		return res, nil
	}
	slog.Debug("can't get search result from cache", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))

	res, err = s.api.Search(ctx, symbol)
	if err != nil {
		slog.Error("can't get search result from api", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return model.SearchResult{}, err
	}

	if err = s.cache.SetSearchResult(ctx, symbol, res); err != nil {
		slog.Warn("can't save search result to cache", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
	}

	return res, nil
}
