package coingecko

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"coinboard/internal/apperr"
	"coinboard/internal/config"
	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// ClientInterface defines the interface for the CoinGecko REST API client.
type ClientInterface interface {
	MarketCoins(ctx context.Context, currency string, perPage, page int) ([]CoinMarket, error)
	MarketCoinsByIDs(ctx context.Context, ids []string, currency string) ([]CoinMarket, error)
	CoinDetail(ctx context.Context, coinID, currency string) (CoinDetail, error)
	MarketChart(ctx context.Context, coinID string, days int, currency string) (MarketChart, error)
	SimplePrices(ctx context.Context, ids []string, currency string, include24hChange bool) (map[string]SimplePrice, error)
}

// Client is a client for the CoinGecko REST API. It performs no retries: the
// caching layer above it is the only resilience mechanism.
type Client struct {
	client  *resty.Client
	logger  *zap.Logger
	limiter *rate.Limiter
}

// ensure Client implements the interface
var _ ClientInterface = (*Client)(nil)

// NewClient creates a new CoinGecko REST API client.
func NewClient(cfg *config.CoinGecko, logger *zap.Logger) *Client {
	client := resty.New().SetBaseURL(cfg.BaseURL)

	// rate.Limit is requests per second.
	limiter := rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateLimitBurst)

	return &Client{
		client:  client,
		logger:  logger,
		limiter: limiter,
	}
}

// doRequest waits for the rate limiter and executes a single GET. Non-2xx
// responses become typed upstream errors carrying the status code.
func (c *Client) doRequest(ctx context.Context, path string, req *resty.Request) (*resty.Response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter wait failed: %w", err)
	}

	c.logger.Debug("Executing request", zap.String("url", c.client.BaseURL+path))
	resp, err := req.SetContext(ctx).Get(path)
	if err != nil {
		return nil, apperr.Upstream(0, fmt.Sprintf("CoinGecko request to %s failed", path), err)
	}
	if resp.IsError() {
		return nil, apperr.Upstream(resp.StatusCode(),
			fmt.Sprintf("CoinGecko %s error (status: %d): %s", path, resp.StatusCode(), resp.String()), nil)
	}
	return resp, nil
}

// MarketCoins fetches one page of market snapshots ordered by market cap
// descending, with 24h change and without sparkline data.
func (c *Client) MarketCoins(ctx context.Context, currency string, perPage, page int) ([]CoinMarket, error) {
	var coins []CoinMarket

	req := c.client.R().
		SetResult(&coins).
		SetQueryParams(map[string]string{
			"vs_currency":             currency,
			"order":                   "market_cap_desc",
			"per_page":                strconv.Itoa(perPage),
			"page":                    strconv.Itoa(page),
			"sparkline":               "false",
			"price_change_percentage": "24h",
		})

	if _, err := c.doRequest(ctx, "/coins/markets", req); err != nil {
		return nil, err
	}
	return coins, nil
}

// MarketCoinsByIDs fetches market snapshots restricted to the given coin ids.
func (c *Client) MarketCoinsByIDs(ctx context.Context, ids []string, currency string) ([]CoinMarket, error) {
	var coins []CoinMarket

	req := c.client.R().
		SetResult(&coins).
		SetQueryParams(map[string]string{
			"vs_currency":             currency,
			"ids":                     strings.Join(ids, ","),
			"order":                   "market_cap_desc",
			"sparkline":               "false",
			"price_change_percentage": "24h",
		})

	if _, err := c.doRequest(ctx, "/coins/markets", req); err != nil {
		return nil, err
	}
	return coins, nil
}

// CoinDetail fetches a single coin and resolves its localized description
// (ko preferred, en fallback, else empty), primary homepage (first non-blank)
// and per-currency numeric fields.
func (c *Client) CoinDetail(ctx context.Context, coinID, currency string) (CoinDetail, error) {
	var raw coinDetailResponse

	req := c.client.R().
		SetResult(&raw).
		SetQueryParams(map[string]string{
			"localization":   "false",
			"tickers":        "false",
			"market_data":    "true",
			"community_data": "false",
			"developer_data": "false",
			"sparkline":      "false",
		})

	if _, err := c.doRequest(ctx, "/coins/"+coinID, req); err != nil {
		return CoinDetail{}, err
	}

	detail := CoinDetail{
		ID:          raw.ID,
		Symbol:      raw.Symbol,
		Name:        raw.Name,
		Description: resolveDescription(raw.Description),
		Homepage:    firstNonBlank(homepages(raw)),
	}
	if md := raw.MarketData; md != nil {
		detail.CurrentPrice = md.CurrentPrice[currency]
		detail.MarketCap = md.MarketCap[currency]
		detail.High24h = md.High24h[currency]
		detail.Low24h = md.Low24h[currency]
		detail.PriceChangePercentage24h = md.PriceChangePercentage24h
	}
	return detail, nil
}

// MarketChart fetches the price, market cap and volume series. Daily interval
// is requested when days >= 90, otherwise upstream picks the granularity.
func (c *Client) MarketChart(ctx context.Context, coinID string, days int, currency string) (MarketChart, error) {
	var raw marketChartResponse

	req := c.client.R().
		SetResult(&raw).
		SetQueryParams(map[string]string{
			"vs_currency": currency,
			"days":        strconv.Itoa(days),
		})
	if days >= 90 {
		req.SetQueryParam("interval", "daily")
	}

	if _, err := c.doRequest(ctx, "/coins/"+coinID+"/market_chart", req); err != nil {
		return MarketChart{}, err
	}

	return MarketChart{
		Prices:       toPoints(raw.Prices),
		MarketCaps:   toPoints(raw.MarketCaps),
		TotalVolumes: toPoints(raw.TotalVolumes),
	}, nil
}

// SimplePrices fetches a batch of current prices. Coins absent or null in the
// upstream payload are omitted from the result, not defaulted to zero.
func (c *Client) SimplePrices(ctx context.Context, ids []string, currency string, include24hChange bool) (map[string]SimplePrice, error) {
	var raw map[string]map[string]*decimal.Decimal

	req := c.client.R().
		SetResult(&raw).
		SetQueryParams(map[string]string{
			"ids":                 strings.Join(ids, ","),
			"vs_currencies":       currency,
			"include_24hr_change": strconv.FormatBool(include24hChange),
		})

	if _, err := c.doRequest(ctx, "/simple/price", req); err != nil {
		return nil, err
	}

	result := make(map[string]SimplePrice, len(ids))
	for _, id := range ids {
		fields, ok := raw[id]
		if !ok || fields == nil {
			continue
		}
		price := fields[currency]
		if price == nil {
			continue
		}
		result[id] = SimplePrice{
			Price:     *price,
			Change24h: fields[currency+"_24h_change"],
		}
	}
	return result, nil
}

func resolveDescription(desc map[string]string) string {
	if desc == nil {
		return ""
	}
	if v, ok := desc["ko"]; ok && strings.TrimSpace(v) != "" {
		return v
	}
	return desc["en"]
}

func homepages(raw coinDetailResponse) []string {
	if raw.Links == nil {
		return nil
	}
	return raw.Links.Homepage
}

func firstNonBlank(values []string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func toPoints(series [][]decimal.Decimal) []ChartPoint {
	points := make([]ChartPoint, 0, len(series))
	for _, pair := range series {
		if len(pair) < 2 {
			continue
		}
		points = append(points, ChartPoint{
			Timestamp: pair[0].IntPart(),
			Value:     pair[1],
		})
	}
	return points
}
