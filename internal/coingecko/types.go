package coingecko

import "github.com/shopspring/decimal"

// CoinMarket is one row of the /coins/markets response. Numeric fields are
// pointers because the upstream API returns null for thinly traded coins.
type CoinMarket struct {
	ID                       string           `json:"id"`
	Symbol                   string           `json:"symbol"`
	Name                     string           `json:"name"`
	Image                    string           `json:"image"`
	CurrentPrice             *decimal.Decimal `json:"current_price"`
	MarketCap                *decimal.Decimal `json:"market_cap"`
	TotalVolume              *decimal.Decimal `json:"total_volume"`
	PriceChangePercentage24h *decimal.Decimal `json:"price_change_percentage_24h"`
}

// CoinDetail is a single coin with its description and homepage resolved and
// the per-currency numeric fields extracted for one currency.
type CoinDetail struct {
	ID                       string           `json:"id"`
	Symbol                   string           `json:"symbol"`
	Name                     string           `json:"name"`
	Description              string           `json:"description"`
	Homepage                 string           `json:"homepage"`
	CurrentPrice             *decimal.Decimal `json:"current_price"`
	MarketCap                *decimal.Decimal `json:"market_cap"`
	PriceChangePercentage24h *decimal.Decimal `json:"price_change_percentage_24h"`
	High24h                  *decimal.Decimal `json:"high_24h"`
	Low24h                   *decimal.Decimal `json:"low_24h"`
}

// ChartPoint is one (timestamp, value) sample of a market chart series.
// Timestamp is upstream's millisecond epoch.
type ChartPoint struct {
	Timestamp int64           `json:"timestamp"`
	Value     decimal.Decimal `json:"value"`
}

// MarketChart holds the three parallel series of /coins/{id}/market_chart.
type MarketChart struct {
	Prices       []ChartPoint `json:"prices"`
	MarketCaps   []ChartPoint `json:"market_caps"`
	TotalVolumes []ChartPoint `json:"total_volumes"`
}

// EmptyChart returns a chart with three empty, non-nil series.
func EmptyChart() MarketChart {
	return MarketChart{
		Prices:       []ChartPoint{},
		MarketCaps:   []ChartPoint{},
		TotalVolumes: []ChartPoint{},
	}
}

// Empty reports whether all three series carry no points.
func (m MarketChart) Empty() bool {
	return len(m.Prices) == 0 && len(m.MarketCaps) == 0 && len(m.TotalVolumes) == 0
}

// SimplePrice is one coin's entry of the /simple/price response.
type SimplePrice struct {
	Price     decimal.Decimal  `json:"price"`
	Change24h *decimal.Decimal `json:"change_24h,omitempty"`
}

// coinDetailResponse is the raw /coins/{id} payload.
type coinDetailResponse struct {
	ID          string            `json:"id"`
	Symbol      string            `json:"symbol"`
	Name        string            `json:"name"`
	Description map[string]string `json:"description"`
	MarketData  *struct {
		CurrentPrice             map[string]*decimal.Decimal `json:"current_price"`
		MarketCap                map[string]*decimal.Decimal `json:"market_cap"`
		High24h                  map[string]*decimal.Decimal `json:"high_24h"`
		Low24h                   map[string]*decimal.Decimal `json:"low_24h"`
		PriceChangePercentage24h *decimal.Decimal            `json:"price_change_percentage_24h"`
	} `json:"market_data"`
	Links *struct {
		Homepage []string `json:"homepage"`
	} `json:"links"`
}

// marketChartResponse is the raw /coins/{id}/market_chart payload: three
// lists of [timestamp, value] pairs.
type marketChartResponse struct {
	Prices       [][]decimal.Decimal `json:"prices"`
	MarketCaps   [][]decimal.Decimal `json:"market_caps"`
	TotalVolumes [][]decimal.Decimal `json:"total_volumes"`
}
