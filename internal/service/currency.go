package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/fortunamfo/branchbot/internal/domain"
	"github.com/fortunamfo/branchbot/internal/infra/cache"
	"github.com/fortunamfo/branchbot/internal/infra/observability"
	"github.com/fortunamfo/branchbot/internal/port"
)

const ratesCacheKey = "usd"

// CurrencyService serves USD exchange rates, caching scraped boards so
// bursts of requests don't hammer the upstream aggregator.
type CurrencyService struct {
	fetcher port.RateFetcher
	cache   *cache.InMemory[domain.RateBoard]
	metrics *observability.Metrics
	logger  *zap.Logger
}

// NewCurrencyService creates the rate service around a fetcher and a
// TTL cache.
func NewCurrencyService(fetcher port.RateFetcher, c *cache.InMemory[domain.RateBoard], metrics *observability.Metrics, logger *zap.Logger) *CurrencyService {
	return &CurrencyService{
		fetcher: fetcher,
		cache:   c,
		metrics: metrics,
		logger:  logger,
	}
}

// Rates returns the current rate board, from cache when fresh.
func (s *CurrencyService) Rates(ctx context.Context) (domain.RateBoard, error) {
	ctx, span := tracer.Start(ctx, "CurrencyService.Rates")
	defer span.End()

	if board, ok := s.cache.Get(ratesCacheKey); ok {
		s.metrics.IncrCacheHit("rates")
		return board, nil
	}
	s.metrics.IncrCacheMiss("rates")

	board, err := s.fetcher.FetchRates(ctx)
	if err != nil {
		s.metrics.IncrExternalError("currency")
		return domain.RateBoard{}, err
	}

	s.cache.Set(ratesCacheKey, *board)
	s.logger.Debug("rate board refreshed", zap.Int("banks", len(board.Rates)))
	return *board, nil
}
