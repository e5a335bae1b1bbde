package service

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/tikalinvest/portfolio-client/internal/apperrors"
	"github.com/tikalinvest/portfolio-client/internal/logging"
	"github.com/tikalinvest/portfolio-client/internal/model"
	"github.com/tikalinvest/portfolio-client/internal/repository"
)

// PriceFeed is the slice of the backend client the market-data cache needs.
type PriceFeed interface {
	GetHistory(ctx context.Context, symbol string) ([]model.Bar, error)
	GetQuotes(ctx context.Context, symbols []string) (map[string]model.Quote, error)
}

// MarketDataService wraps the price feed with a durable per-symbol cache.
// A series is served from the store while younger than the TTL; an expired
// or missing series triggers a fetch, deduplicated per symbol so concurrent
// readers share one backend call. When the fetch fails and an old series
// exists it is served flagged stale; availability beats freshness for
// charting. Only a miss with no fallback at all surfaces an error.
type MarketDataService struct {
	seriesRepo *repository.SeriesRepository
	feed       PriceFeed
	ttl        time.Duration
	group      singleflight.Group

	// now is swappable for TTL boundary tests.
	now func() time.Time
}

// NewMarketDataService creates a MarketDataService with the given TTL.
func NewMarketDataService(seriesRepo *repository.SeriesRepository, feed PriceFeed, ttl time.Duration) *MarketDataService {
	return &MarketDataService{
		seriesRepo: seriesRepo,
		feed:       feed,
		ttl:        ttl,
		now:        time.Now,
	}
}

// GetSeries returns the full-resolution price history for a symbol.
// Downsampling for display is the caller's concern (model.Downsample); the
// cache always stores and returns every bar it has.
func (s *MarketDataService) GetSeries(ctx context.Context, symbol string) (model.CachedSeries, error) {
	cached, err := s.seriesRepo.Get(ctx, symbol)
	if err != nil {
		return model.CachedSeries{}, err
	}
	if cached != nil && s.now().Sub(cached.FetchedAt) < s.ttl {
		return *cached, nil
	}

	fresh, fetchErr := s.fetch(ctx, symbol)
	if fetchErr == nil {
		return fresh, nil
	}

	if cached != nil {
		logging.Warn().Err(fetchErr).Str("symbol", symbol).
			Time("fetchedAt", cached.FetchedAt).
			Msg("price fetch failed, serving stale series")
		stale := *cached
		stale.Stale = true
		return stale, nil
	}

	return model.CachedSeries{}, fmt.Errorf("%w for %s: %v", apperrors.ErrDataUnavailable, symbol, fetchErr)
}

// fetch performs the deduplicated backend fetch and overwrites the cache
// entry on success.
func (s *MarketDataService) fetch(ctx context.Context, symbol string) (model.CachedSeries, error) {
	result, err, _ := s.group.Do(symbol, func() (any, error) {
		bars, err := s.feed.GetHistory(ctx, symbol)
		if err != nil {
			return nil, err
		}
		series := model.CachedSeries{
			Symbol:    symbol,
			FetchedAt: s.now(),
			Bars:      bars,
		}
		if err := s.seriesRepo.Put(ctx, series); err != nil {
			return nil, err
		}
		return series, nil
	})
	if err != nil {
		return model.CachedSeries{}, err
	}
	return result.(model.CachedSeries), nil
}

// PriceLookup returns the best known current price per symbol for
// valuation: live quotes first, falling back per symbol to the last cached
// close. Symbols with neither are simply absent; the valuation engine
// renders them with an unknown value rather than failing.
func (s *MarketDataService) PriceLookup(ctx context.Context, symbols []string) map[string]model.Quote {
	quotes, err := s.feed.GetQuotes(ctx, symbols)
	if err != nil {
		logging.Warn().Err(err).Msg("quote fetch failed, falling back to cached closes")
		quotes = map[string]model.Quote{}
	}

	for _, symbol := range symbols {
		if _, ok := quotes[symbol]; ok {
			continue
		}
		cached, err := s.seriesRepo.Get(ctx, symbol)
		if err != nil || cached == nil {
			continue
		}
		if close, ok := cached.LastClose(); ok {
			quotes[symbol] = model.Quote{Symbol: symbol, Price: close}
		}
	}
	return quotes
}

// GetQuotes proxies the batch quote endpoint for the UI.
func (s *MarketDataService) GetQuotes(ctx context.Context, symbols []string) (map[string]model.Quote, error) {
	return s.feed.GetQuotes(ctx, symbols)
}

// Revalidate refetches every expired series. Run on a schedule so charts
// rarely hit the TTL path interactively; failures are logged and left for
// the stale-fallback read path.
func (s *MarketDataService) Revalidate(ctx context.Context) {
	cutoff := s.now().Add(-s.ttl)
	symbols, err := s.seriesRepo.ExpiredSymbols(ctx, cutoff)
	if err != nil {
		logging.Error().Err(err).Msg("cache revalidation sweep failed")
		return
	}
	for _, symbol := range symbols {
		if _, err := s.fetch(ctx, symbol); err != nil {
			logging.Warn().Err(err).Str("symbol", symbol).Msg("cache revalidation fetch failed")
		}
	}
}
