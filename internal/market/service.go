package market

import (
	"context"
	"fmt"
	"strings"

	"coinboard/internal/apperr"
	"coinboard/internal/cache"
	"coinboard/internal/coingecko"
	"coinboard/internal/config"
	"go.uber.org/zap"
)

// Service shields callers from upstream instability: it caches responses per
// composite key for a fixed window, and on upstream rate limiting serves the
// last-known value where the operation allows degradation.
//
// Failure policy per operation:
//   - MarketCoins, SimplePrices: fail loudly (primary views need fresh data)
//   - CoinDetail: on 429 serve last-known value if present, else propagate
//   - MarketChart: on 429 serve last-known value if present, else an empty
//     chart (chart widgets are decorative)
type Service struct {
	client coingecko.ClientInterface
	cfg    config.CoinGecko
	cache  *cache.Cache
	// lastKnown outlives the fresh cache window and backs the rate-limit
	// fallback paths.
	lastKnown *cache.Cache
	logger    *zap.Logger
}

// NewService creates the market gateway. fresh holds responses for the normal
// cache window; lastKnown should use a much longer TTL.
func NewService(client coingecko.ClientInterface, cfg config.CoinGecko, fresh, lastKnown *cache.Cache, logger *zap.Logger) *Service {
	return &Service{
		client:    client,
		cfg:       cfg,
		cache:     fresh,
		lastKnown: lastKnown,
		logger:    logger,
	}
}

// ResolveCurrency lower-cases the currency, falling back to def when blank.
func ResolveCurrency(currency, def string) string {
	value := strings.TrimSpace(currency)
	if value == "" {
		value = def
	}
	if value == "" {
		value = "usd"
	}
	return strings.ToLower(value)
}

// DefaultCurrency returns the configured market default currency.
func (s *Service) DefaultCurrency() string {
	return ResolveCurrency(s.cfg.VsCurrency, "usd")
}

// DefaultPerPage returns the configured market page size.
func (s *Service) DefaultPerPage() int {
	if s.cfg.PerPage <= 0 {
		return 100
	}
	return s.cfg.PerPage
}

// MarketCoins returns one page of snapshots ordered by market cap descending.
// Upstream failures propagate; there is no silent fallback for this operation.
func (s *Service) MarketCoins(ctx context.Context, perPage, page int, currency string) ([]coingecko.CoinMarket, error) {
	normalized := ResolveCurrency(currency, s.cfg.VsCurrency)
	key := fmt.Sprintf("market:%s:%d:%d", normalized, perPage, page)

	if v, ok := s.cache.Get(key); ok {
		return v.([]coingecko.CoinMarket), nil
	}
	coins, err := s.client.MarketCoins(ctx, normalized, perPage, page)
	if err != nil {
		return nil, err
	}
	s.cache.Put(key, coins)
	return coins, nil
}

// MarketCoinsByIDs returns snapshots for a de-duplicated, lowercase-normalized
// id set. Empty input yields empty output without a network call.
func (s *Service) MarketCoinsByIDs(ctx context.Context, ids []string, currency string) ([]coingecko.CoinMarket, error) {
	normalizedIDs := NormalizeCoinIDs(ids)
	if len(normalizedIDs) == 0 {
		return []coingecko.CoinMarket{}, nil
	}
	normalized := ResolveCurrency(currency, s.cfg.VsCurrency)
	key := "marketByIds:" + normalized + ":" + strings.Join(normalizedIDs, ",")

	if v, ok := s.cache.Get(key); ok {
		return v.([]coingecko.CoinMarket), nil
	}
	coins, err := s.client.MarketCoinsByIDs(ctx, normalizedIDs, normalized)
	if err != nil {
		return nil, err
	}
	s.cache.Put(key, coins)
	return coins, nil
}

// CoinDetail returns a single coin. On upstream rate limiting the last-known
// value for this key is served when present, with a warning logged.
func (s *Service) CoinDetail(ctx context.Context, coinID, currency string) (coingecko.CoinDetail, error) {
	normalized := ResolveCurrency(currency, s.cfg.VsCurrency)
	key := "detail:" + coinID + ":" + normalized

	if v, ok := s.cache.Get(key); ok {
		return v.(coingecko.CoinDetail), nil
	}
	detail, err := s.client.CoinDetail(ctx, coinID, normalized)
	if err != nil {
		if apperr.IsRateLimited(err) {
			if v, ok := s.lastKnown.Get(key); ok {
				s.logger.Warn("CoinGecko rate limit hit for coin detail, serving cached data",
					zap.String("key", key))
				return v.(coingecko.CoinDetail), nil
			}
		}
		return coingecko.CoinDetail{}, err
	}
	s.cache.Put(key, detail)
	s.lastKnown.Put(key, detail)
	return detail, nil
}

// MarketChart returns the three chart series. On upstream rate limiting the
// last-known value is served when present, otherwise an explicitly empty chart
// is returned: this operation degrades silently rather than failing.
func (s *Service) MarketChart(ctx context.Context, coinID string, days int, currency string) (coingecko.MarketChart, error) {
	normalized := ResolveCurrency(currency, s.cfg.VsCurrency)
	key := fmt.Sprintf("chart:%s:%d:%s", coinID, days, normalized)

	if v, ok := s.cache.Get(key); ok {
		return v.(coingecko.MarketChart), nil
	}
	chart, err := s.client.MarketChart(ctx, coinID, days, normalized)
	if err != nil {
		if apperr.IsRateLimited(err) {
			if v, ok := s.lastKnown.Get(key); ok {
				s.logger.Warn("CoinGecko rate limit hit for chart, serving cached data",
					zap.String("key", key))
				return v.(coingecko.MarketChart), nil
			}
			s.logger.Warn("CoinGecko rate limit hit for chart, serving empty dataset",
				zap.String("key", key))
			return coingecko.EmptyChart(), nil
		}
		return coingecko.MarketChart{}, err
	}
	// Empty charts are not worth remembering.
	if !chart.Empty() {
		s.cache.Put(key, chart)
		s.lastKnown.Put(key, chart)
	}
	return chart, nil
}

// SimplePrices returns a map from coin id to price and optional 24h change.
// An empty id list is invalid input.
func (s *Service) SimplePrices(ctx context.Context, ids []string, currency string) (map[string]coingecko.SimplePrice, error) {
	if len(ids) == 0 {
		return nil, apperr.InvalidInput("coinIds must not be empty")
	}
	normalized := ResolveCurrency(currency, s.cfg.SimplePriceVsCurrency)
	key := "simplePrice:" + normalized + ":" + strings.Join(ids, ",")

	if v, ok := s.cache.Get(key); ok {
		return v.(map[string]coingecko.SimplePrice), nil
	}
	prices, err := s.client.SimplePrices(ctx, ids, normalized, s.cfg.Include24hChange)
	if err != nil {
		return nil, err
	}
	s.cache.Put(key, prices)
	return prices, nil
}

// NormalizeCoinIDs trims, lower-cases and de-duplicates ids, preserving the
// first occurrence order and dropping blanks.
func NormalizeCoinIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	normalized := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.ToLower(strings.TrimSpace(id))
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		normalized = append(normalized, id)
	}
	return normalized
}
