package config

import (
	"strings"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	Server    Server    `mapstructure:"server"`
	Database  Database  `mapstructure:"database"`
	Logger    Logger    `mapstructure:"logger"`
	CoinGecko CoinGecko `mapstructure:"coingecko"`
	Cache     Cache     `mapstructure:"cache"`
	Trending  Trending  `mapstructure:"trending"`
	Watchlist Watchlist `mapstructure:"watchlist"`
	Auth      Auth      `mapstructure:"auth"`
}

// Server holds the configuration for the web server.
type Server struct {
	Port int `mapstructure:"port"`
}

// Database holds the configuration for the database.
type Database struct {
	DSN string `mapstructure:"dsn"`
}

// Logger holds the configuration for the logger.
type Logger struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// CoinGecko holds the configuration for the upstream market-data API.
type CoinGecko struct {
	BaseURL               string  `mapstructure:"base_url"`
	VsCurrency            string  `mapstructure:"vs_currency"`
	PerPage               int     `mapstructure:"per_page"`
	SimplePriceVsCurrency string  `mapstructure:"simple_price_vs_currency"`
	Include24hChange      bool    `mapstructure:"include_24h_change"`
	RateLimit             float64 `mapstructure:"rate_limit"`
	RateLimitBurst        int     `mapstructure:"rate_limit_burst"`
}

// Cache holds sizing and expiry settings for the in-process caches.
type Cache struct {
	MarketTTLSeconds         int `mapstructure:"market_ttl_seconds"`
	TrendingTTLSeconds       int `mapstructure:"trending_ttl_seconds"`
	ViewDedupTTLHours        int `mapstructure:"view_dedup_ttl_hours"`
	NotificationCountTTLSecs int `mapstructure:"notification_count_ttl_seconds"`
	MaxEntries               int `mapstructure:"max_entries"`
}

// Trending holds the configuration for the trending score engine.
type Trending struct {
	RefreshIntervalSeconds int `mapstructure:"refresh_interval_seconds"`
	DefaultLimit           int `mapstructure:"default_limit"`
}

// DefaultCoin pairs a coin id with a display label for the default watchlist.
type DefaultCoin struct {
	CoinID string `mapstructure:"coin_id"`
	Label  string `mapstructure:"label"`
}

// Watchlist holds the configuration for the watchlist premium calculator.
type Watchlist struct {
	UsdToKrwRate float64       `mapstructure:"usd_to_krw_rate"`
	Defaults     []DefaultCoin `mapstructure:"defaults"`
}

// Auth holds the configuration for JWT issuance and password hashing.
type Auth struct {
	Secret                string `mapstructure:"secret"`
	AccessTokenTTLMinutes int    `mapstructure:"access_token_ttl_minutes"`
	RefreshTokenTTLHours  int    `mapstructure:"refresh_token_ttl_hours"`
	BcryptCost            int    `mapstructure:"bcrypt_cost"`
}

// DefaultCoinIDs returns the configured default watchlist coin ids in order,
// trimmed and lower-cased, blanks dropped.
func (w Watchlist) DefaultCoinIDs() []string {
	ids := make([]string, 0, len(w.Defaults))
	for _, d := range w.Defaults {
		id := strings.ToLower(strings.TrimSpace(d.CoinID))
		if id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

// DefaultLabel returns the configured label for a coin id, or "" when the coin
// has no configured default.
func (w Watchlist) DefaultLabel(coinID string) string {
	coinID = strings.ToLower(strings.TrimSpace(coinID))
	for _, d := range w.Defaults {
		if strings.ToLower(strings.TrimSpace(d.CoinID)) == coinID {
			return strings.TrimSpace(d.Label)
		}
	}
	return ""
}

// LoadConfig reads configuration from file or environment variables.
func LoadConfig(path string) (config Config, err error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("config") // name of config file (without extension)
	viper.SetConfigType("yml")

	// Allow environment variables to override config file
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Set default values
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("database.dsn", "coinboard.db")
	viper.SetDefault("logger.level", "info")
	viper.SetDefault("logger.format", "console")
	viper.SetDefault("coingecko.base_url", "https://api.coingecko.com/api/v3")
	viper.SetDefault("coingecko.vs_currency", "usd")
	viper.SetDefault("coingecko.per_page", 100)
	viper.SetDefault("coingecko.simple_price_vs_currency", "usd")
	viper.SetDefault("coingecko.include_24h_change", true)
	viper.SetDefault("coingecko.rate_limit", 10) // requests per second
	viper.SetDefault("coingecko.rate_limit_burst", 5)
	viper.SetDefault("cache.market_ttl_seconds", 300)
	viper.SetDefault("cache.trending_ttl_seconds", 300)
	viper.SetDefault("cache.view_dedup_ttl_hours", 24)
	viper.SetDefault("cache.notification_count_ttl_seconds", 60)
	viper.SetDefault("cache.max_entries", 10000)
	viper.SetDefault("trending.refresh_interval_seconds", 300)
	viper.SetDefault("trending.default_limit", 10)
	viper.SetDefault("watchlist.usd_to_krw_rate", 1350)
	viper.SetDefault("auth.access_token_ttl_minutes", 30)
	viper.SetDefault("auth.refresh_token_ttl_hours", 336)
	viper.SetDefault("auth.bcrypt_cost", 10)

	err = viper.ReadInConfig()
	if err != nil {
		return
	}

	err = viper.Unmarshal(&config)
	return
}
