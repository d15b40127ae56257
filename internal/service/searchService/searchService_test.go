package searchService

import (
	"context"
	"errors"
	"testing"

	"github.com/KotFed0t/stock_risk_client/data/cache"
	"github.com/KotFed0t/stock_risk_client/internal/model"
	"github.com/KotFed0t/stock_risk_client/internal/service"
)

type fakeApi struct {
	calls int
	err   error
}

func (f *fakeApi) Search(_ context.Context, symbol string) (model.SearchResult, error) {
	f.calls++
	if f.err != nil {
		return model.SearchResult{}, f.err
	}
	if symbol == "zzz" {
		return model.SearchResult{NotFound: "For phrase 'zzz' company not found"}, nil
	}
	return model.SearchResult{Matches: []model.CompanyMatch{{Symbol: symbol, Name: "International Business Machines Corp"}}}, nil
}

type mapCache map[string]model.SearchResult

func (m mapCache) GetSearchResult(_ context.Context, symbol string) (model.SearchResult, error) {
	res, ok := m[symbol]
	if !ok {
		return model.SearchResult{}, cache.ErrCacheMiss
	}
	return res, nil
}

func (m mapCache) SetSearchResult(_ context.Context, symbol string, res model.SearchResult) error {
	m[symbol] = res
	return nil
}

func TestSearchUsesCache(t *testing.T) {
	api := &fakeApi{}
	s := New(api, mapCache{})
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		res, err := s.Search(ctx, "IBM")
		if err != nil || !res.Found() || res.Matches[0].Symbol != "IBM" {
			t.Fatalf("Search() = %+v, %v", res, err)
		}
	}
	if api.calls != 1 {
		t.Fatalf("api called %d times; want 1", api.calls)
	}
}

func TestSearchNotFound(t *testing.T) {
	s := New(&fakeApi{}, cache.NopCache{})

	res, err := s.Search(context.Background(), "zzz")
	if err != nil {
		t.Fatalf("Search() = %v; want nil", err)
	}
	if res.Found() || res.NotFound == "" {
		t.Fatalf("res = %+v; want not-found message", res)
	}
}

func TestSearchErrors(t *testing.T) {
	boom := errors.New("status 502")
	s := New(&fakeApi{err: boom}, cache.NopCache{})

	if _, err := s.Search(context.Background(), "  "); !errors.Is(err, service.ErrEmptyField) {
		t.Fatalf("Search(blank) = %v; want ErrEmptyField", err)
	}
	if _, err := s.Search(context.Background(), "IBM"); !errors.Is(err, boom) {
		t.Fatalf("Search() = %v; want %v", err, boom)
	}
}
