package cache

import (
	"context"

	"github.com/KotFed0t/stock_risk_client/internal/model"
)

// NopCache is used when redis is disabled: every lookup misses.
type NopCache struct{}

func (NopCache) SetSearchResult(context.Context, string, model.SearchResult) error {
	return nil
}

func (NopCache) GetSearchResult(context.Context, string) (model.SearchResult, error) {
	return model.SearchResult{}, ErrCacheMiss
}
