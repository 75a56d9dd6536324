package market

import (
	"context"
	"net/http"
	"testing"
	"time"

	"coinboard/internal/apperr"
	"coinboard/internal/cache"
	"coinboard/internal/coingecko"
	"coinboard/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

// MockClient is a mock implementation of the coingecko.ClientInterface.
type MockClient struct {
	mock.Mock
}

func (m *MockClient) MarketCoins(ctx context.Context, currency string, perPage, page int) ([]coingecko.CoinMarket, error) {
	args := m.Called(ctx, currency, perPage, page)
	return args.Get(0).([]coingecko.CoinMarket), args.Error(1)
}

func (m *MockClient) MarketCoinsByIDs(ctx context.Context, ids []string, currency string) ([]coingecko.CoinMarket, error) {
	args := m.Called(ctx, ids, currency)
	return args.Get(0).([]coingecko.CoinMarket), args.Error(1)
}

func (m *MockClient) CoinDetail(ctx context.Context, coinID, currency string) (coingecko.CoinDetail, error) {
	args := m.Called(ctx, coinID, currency)
	return args.Get(0).(coingecko.CoinDetail), args.Error(1)
}

func (m *MockClient) MarketChart(ctx context.Context, coinID string, days int, currency string) (coingecko.MarketChart, error) {
	args := m.Called(ctx, coinID, days, currency)
	return args.Get(0).(coingecko.MarketChart), args.Error(1)
}

func (m *MockClient) SimplePrices(ctx context.Context, ids []string, currency string, include24hChange bool) (map[string]coingecko.SimplePrice, error) {
	args := m.Called(ctx, ids, currency, include24hChange)
	return args.Get(0).(map[string]coingecko.SimplePrice), args.Error(1)
}

func setupService() (*Service, *MockClient) {
	mockClient := new(MockClient)
	cfg := config.CoinGecko{VsCurrency: "usd", SimplePriceVsCurrency: "usd", Include24hChange: true, PerPage: 100}
	fresh := cache.New(5*time.Minute, 0)
	lastKnown := cache.New(24*time.Hour, 0)
	return NewService(mockClient, cfg, fresh, lastKnown, zap.NewNop()), mockClient
}

func rateLimitErr() error {
	return apperr.Upstream(http.StatusTooManyRequests, "CoinGecko rate limited", nil)
}

func TestResolveCurrency(t *testing.T) {
	assert.Equal(t, "usd", ResolveCurrency("", "usd"))
	assert.Equal(t, "krw", ResolveCurrency("KRW", "usd"))
	assert.Equal(t, "usd", ResolveCurrency("  ", ""))
	assert.Equal(t, "eur", ResolveCurrency(" EUR ", "usd"))
}

func TestNormalizeCoinIDs(t *testing.T) {
	ids := NormalizeCoinIDs([]string{" Bitcoin ", "ethereum", "BITCOIN", "", "ripple"})
	assert.Equal(t, []string{"bitcoin", "ethereum", "ripple"}, ids)
}

func TestMarketCoins_CachesPerKey(t *testing.T) {
	svc, mockClient := setupService()
	coins := []coingecko.CoinMarket{{ID: "bitcoin"}}
	mockClient.On("MarketCoins", mock.Anything, "usd", 100, 1).Return(coins, nil).Once()

	for i := 0; i < 3; i++ {
		got, err := svc.MarketCoins(context.Background(), 100, 1, "")
		assert.NoError(t, err)
		assert.Equal(t, coins, got)
	}
	mockClient.AssertExpectations(t)
}

func TestMarketCoins_UpstreamFailurePropagates(t *testing.T) {
	svc, mockClient := setupService()
	mockClient.On("MarketCoins", mock.Anything, "usd", 100, 1).
		Return([]coingecko.CoinMarket{}, rateLimitErr())

	_, err := svc.MarketCoins(context.Background(), 100, 1, "usd")

	assert.Error(t, err)
	assert.True(t, apperr.IsRateLimited(err))
}

func TestMarketCoinsByIDs_EmptyInputSkipsNetwork(t *testing.T) {
	svc, mockClient := setupService()

	got, err := svc.MarketCoinsByIDs(context.Background(), []string{" ", ""}, "usd")

	assert.NoError(t, err)
	assert.Empty(t, got)
	mockClient.AssertNotCalled(t, "MarketCoinsByIDs")
}

func TestMarketCoinsByIDs_NormalizesIDs(t *testing.T) {
	svc, mockClient := setupService()
	coins := []coingecko.CoinMarket{{ID: "bitcoin"}, {ID: "ethereum"}}
	mockClient.On("MarketCoinsByIDs", mock.Anything, []string{"bitcoin", "ethereum"}, "krw").
		Return(coins, nil).Once()

	got, err := svc.MarketCoinsByIDs(context.Background(), []string{"Bitcoin", "ETHEREUM", "bitcoin"}, "KRW")

	assert.NoError(t, err)
	assert.Equal(t, coins, got)
	mockClient.AssertExpectations(t)
}

func TestCoinDetail_RateLimitServesLastKnown(t *testing.T) {
	svc, mockClient := setupService()
	detail := coingecko.CoinDetail{ID: "bitcoin", Name: "Bitcoin"}
	mockClient.On("CoinDetail", mock.Anything, "bitcoin", "usd").Return(detail, nil).Once()

	got, err := svc.CoinDetail(context.Background(), "bitcoin", "usd")
	assert.NoError(t, err)
	assert.Equal(t, detail, got)

	// Expire the fresh cache so the next read goes upstream again.
	svc.cache.Evict("detail:bitcoin:usd")
	mockClient.On("CoinDetail", mock.Anything, "bitcoin", "usd").Return(coingecko.CoinDetail{}, rateLimitErr()).Once()

	got, err = svc.CoinDetail(context.Background(), "bitcoin", "usd")
	assert.NoError(t, err)
	assert.Equal(t, detail, got)
	mockClient.AssertExpectations(t)
}

func TestCoinDetail_RateLimitWithoutHistoryPropagates(t *testing.T) {
	svc, mockClient := setupService()
	mockClient.On("CoinDetail", mock.Anything, "bitcoin", "usd").
		Return(coingecko.CoinDetail{}, rateLimitErr())

	_, err := svc.CoinDetail(context.Background(), "bitcoin", "usd")

	assert.Error(t, err)
	assert.True(t, apperr.IsRateLimited(err))
}

func TestMarketChart_RateLimitDegradesToEmptyChart(t *testing.T) {
	svc, mockClient := setupService()
	mockClient.On("MarketChart", mock.Anything, "bitcoin", 7, "usd").
		Return(coingecko.MarketChart{}, rateLimitErr())

	chart, err := svc.MarketChart(context.Background(), "bitcoin", 7, "usd")

	assert.NoError(t, err)
	assert.True(t, chart.Empty())
	assert.NotNil(t, chart.Prices)
}

func TestMarketChart_RateLimitServesLastKnown(t *testing.T) {
	svc, mockClient := setupService()
	chart := coingecko.MarketChart{Prices: []coingecko.ChartPoint{{Timestamp: 1}}}
	mockClient.On("MarketChart", mock.Anything, "bitcoin", 7, "usd").Return(chart, nil).Once()

	_, err := svc.MarketChart(context.Background(), "bitcoin", 7, "usd")
	assert.NoError(t, err)

	svc.cache.Evict("chart:bitcoin:7:usd")
	mockClient.On("MarketChart", mock.Anything, "bitcoin", 7, "usd").
		Return(coingecko.MarketChart{}, rateLimitErr()).Once()

	got, err := svc.MarketChart(context.Background(), "bitcoin", 7, "usd")
	assert.NoError(t, err)
	assert.Equal(t, chart, got)
	mockClient.AssertExpectations(t)
}

func TestMarketChart_EmptyChartNotCached(t *testing.T) {
	svc, mockClient := setupService()
	mockClient.On("MarketChart", mock.Anything, "bitcoin", 7, "usd").
		Return(coingecko.MarketChart{}, nil).Twice()

	_, err := svc.MarketChart(context.Background(), "bitcoin", 7, "usd")
	assert.NoError(t, err)
	_, err = svc.MarketChart(context.Background(), "bitcoin", 7, "usd")
	assert.NoError(t, err)
	mockClient.AssertExpectations(t)
}

func TestSimplePrices_EmptyIDsRejected(t *testing.T) {
	svc, mockClient := setupService()

	_, err := svc.SimplePrices(context.Background(), nil, "usd")

	assert.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindInvalidInput))
	mockClient.AssertNotCalled(t, "SimplePrices")
}

func TestSimplePrices_Caches(t *testing.T) {
	svc, mockClient := setupService()
	prices := map[string]coingecko.SimplePrice{"bitcoin": {}}
	mockClient.On("SimplePrices", mock.Anything, []string{"bitcoin"}, "usd", true).
		Return(prices, nil).Once()

	for i := 0; i < 2; i++ {
		got, err := svc.SimplePrices(context.Background(), []string{"bitcoin"}, "usd")
		assert.NoError(t, err)
		assert.Equal(t, prices, got)
	}
	mockClient.AssertExpectations(t)
}
