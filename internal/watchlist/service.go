package watchlist

import (
	"context"
	"errors"
	"strings"

	"coinboard/internal/apperr"
	"coinboard/internal/coingecko"
	"coinboard/internal/config"
	"coinboard/internal/models"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// MaxEntries caps the number of watchlist entries per member.
const MaxEntries = 20

// MarketGateway is the slice of the market service the watchlist needs.
type MarketGateway interface {
	MarketCoinsByIDs(ctx context.Context, ids []string, currency string) ([]coingecko.CoinMarket, error)
}

// Item is one display-ready watchlist row: a coin id joined with live USD and
// KRW prices and the computed premium.
type Item struct {
	CoinID    string           `json:"coin_id"`
	Symbol    string           `json:"symbol"`
	Name      string           `json:"name"`
	Label     string           `json:"label"`
	Image     string           `json:"image,omitempty"`
	PriceKRW  *decimal.Decimal `json:"price_krw,omitempty"`
	PriceUSD  *decimal.Decimal `json:"price_usd,omitempty"`
	Change24h *decimal.Decimal `json:"change_24h,omitempty"`
	Premium   *decimal.Decimal `json:"premium,omitempty"`
	VolumeUSD *decimal.Decimal `json:"volume_usd,omitempty"`
	Custom    bool             `json:"custom"`
}

// View is a rendered watchlist plus whether the system default list was used.
type View struct {
	Items         []Item `json:"items"`
	UsingDefaults bool   `json:"using_defaults"`
}

// Entry is a member's saved watchlist row.
type Entry struct {
	ID           uint   `json:"id"`
	CoinID       string `json:"coin_id"`
	Label        string `json:"label,omitempty"`
	DisplayOrder int    `json:"display_order"`
}

// Service manages saved watchlist entries and renders the premium view.
type Service struct {
	db     *gorm.DB
	market MarketGateway
	cfg    config.Watchlist
	logger *zap.Logger
}

// NewService creates a watchlist service.
func NewService(db *gorm.DB, market MarketGateway, cfg config.Watchlist, logger *zap.Logger) *Service {
	return &Service{db: db, market: market, cfg: cfg, logger: logger}
}

// source is the resolved coin id list for one view request.
type source struct {
	coinIDs       []string
	labels        map[string]string
	usingDefaults bool
}

// LoadWatchlist renders the watchlist for a member, or the configured default
// list for guests (memberID 0) and members without saved entries.
func (s *Service) LoadWatchlist(ctx context.Context, memberID uint) (View, error) {
	src, err := s.resolveSource(memberID)
	if err != nil {
		return View{}, err
	}
	if len(src.coinIDs) == 0 {
		return View{Items: []Item{}, UsingDefaults: src.usingDefaults}, nil
	}

	usdCoins, err := s.market.MarketCoinsByIDs(ctx, src.coinIDs, "usd")
	if err != nil {
		return View{}, err
	}
	krwCoins, err := s.market.MarketCoinsByIDs(ctx, src.coinIDs, "krw")
	if err != nil {
		return View{}, err
	}
	usdByID := marketMap(usdCoins)
	krwByID := marketMap(krwCoins)

	fx := decimal.NewFromFloat(s.cfg.UsdToKrwRate)
	items := make([]Item, 0, len(src.coinIDs))
	for _, coinID := range src.coinIDs {
		usd, hasUSD := usdByID[coinID]
		krw, hasKRW := krwByID[coinID]
		// A coin absent from both currency responses is dropped entirely.
		if !hasUSD && !hasKRW {
			continue
		}

		var priceUSD, priceKRW, change24h, volumeUSD *decimal.Decimal
		if hasUSD {
			priceUSD = usd.CurrentPrice
			change24h = usd.PriceChangePercentage24h
			volumeUSD = usd.TotalVolume
		}
		if hasKRW {
			priceKRW = krw.CurrentPrice
			if change24h == nil {
				change24h = krw.PriceChangePercentage24h
			}
		}

		// Label resolution: user label, configured default, upstream name.
		label := src.labels[coinID]
		if label == "" {
			label = s.cfg.DefaultLabel(coinID)
		}
		name := firstNonBlank(marketField(usd, hasUSD, func(c coingecko.CoinMarket) string { return c.Name }),
			marketField(krw, hasKRW, func(c coingecko.CoinMarket) string { return c.Name }),
			label)
		if label == "" {
			label = name
		}

		items = append(items, Item{
			CoinID: coinID,
			Symbol: firstNonBlank(
				marketField(usd, hasUSD, func(c coingecko.CoinMarket) string { return c.Symbol }),
				marketField(krw, hasKRW, func(c coingecko.CoinMarket) string { return c.Symbol }),
				coinID),
			Name:  name,
			Label: label,
			Image: firstNonBlank(
				marketField(usd, hasUSD, func(c coingecko.CoinMarket) string { return c.Image }),
				marketField(krw, hasKRW, func(c coingecko.CoinMarket) string { return c.Image })),
			PriceKRW:  priceKRW,
			PriceUSD:  priceUSD,
			Change24h: change24h,
			Premium:   ComputePremium(priceUSD, priceKRW, fx),
			VolumeUSD: volumeUSD,
			Custom:    !src.usingDefaults,
		})
	}
	return View{Items: items, UsingDefaults: src.usingDefaults}, nil
}

// ListEntries returns a member's saved entries ordered by display order.
func (s *Service) ListEntries(memberID uint) ([]Entry, error) {
	entries, err := s.findEntries(memberID)
	if err != nil {
		return nil, err
	}
	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		out = append(out, Entry{ID: e.ID, CoinID: e.CoinID, Label: e.Label, DisplayOrder: e.DisplayOrder})
	}
	return out, nil
}

// AddEntry saves a coin on a member's watchlist. The coin id is validated
// against the market gateway, normalized to lowercase, checked for duplicates
// case-insensitively, and assigned the next display order.
func (s *Service) AddEntry(ctx context.Context, memberID uint, coinID, label string) error {
	normalized := strings.ToLower(strings.TrimSpace(coinID))
	if normalized == "" {
		return apperr.InvalidInput("coinId must not be blank")
	}

	var member models.Member
	if err := s.db.First(&member, memberID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("member not found: %d", memberID)
		}
		return err
	}

	var count int64
	if err := s.db.Model(&models.WatchlistEntry{}).Where("member_id = ?", memberID).Count(&count).Error; err != nil {
		return err
	}
	if count >= MaxEntries {
		return apperr.CapacityExceeded("watchlist holds at most %d coins", MaxEntries)
	}

	var existing int64
	err := s.db.Model(&models.WatchlistEntry{}).
		Where("member_id = ? AND lower(coin_id) = ?", memberID, normalized).
		Count(&existing).Error
	if err != nil {
		return err
	}
	if existing > 0 {
		return apperr.Duplicate("coin already exists in watchlist: %s", normalized)
	}

	// Validate the coin id by loading its market snapshot.
	validation, err := s.market.MarketCoinsByIDs(ctx, []string{normalized}, "usd")
	if err != nil {
		return err
	}
	if len(validation) == 0 {
		return apperr.NotFound("invalid coin id: %s", normalized)
	}

	nextOrder, err := s.nextDisplayOrder(memberID)
	if err != nil {
		return err
	}
	entry := models.WatchlistEntry{
		MemberID:     memberID,
		CoinID:       normalized,
		Label:        strings.TrimSpace(label),
		DisplayOrder: nextOrder,
	}
	return s.db.Create(&entry).Error
}

// RemoveEntry deletes a member's entry. Display orders are not renumbered.
func (s *Service) RemoveEntry(memberID, entryID uint) error {
	var entry models.WatchlistEntry
	err := s.db.Where("id = ? AND member_id = ?", entryID, memberID).First(&entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("watchlist entry not found: %d", entryID)
		}
		return err
	}
	return s.db.Delete(&entry).Error
}

func (s *Service) resolveSource(memberID uint) (source, error) {
	if memberID == 0 {
		return source{coinIDs: s.cfg.DefaultCoinIDs(), labels: map[string]string{}, usingDefaults: true}, nil
	}
	entries, err := s.findEntries(memberID)
	if err != nil {
		return source{}, err
	}
	if len(entries) == 0 {
		return source{coinIDs: s.cfg.DefaultCoinIDs(), labels: map[string]string{}, usingDefaults: true}, nil
	}
	coinIDs := make([]string, 0, len(entries))
	labels := make(map[string]string, len(entries))
	for _, e := range entries {
		id := strings.ToLower(strings.TrimSpace(e.CoinID))
		if id == "" {
			continue
		}
		coinIDs = append(coinIDs, id)
		if _, ok := labels[id]; !ok {
			labels[id] = strings.TrimSpace(e.Label)
		}
	}
	return source{coinIDs: coinIDs, labels: labels, usingDefaults: false}, nil
}

func (s *Service) findEntries(memberID uint) ([]models.WatchlistEntry, error) {
	var entries []models.WatchlistEntry
	err := s.db.Where("member_id = ?", memberID).
		Order("display_order asc, id asc").
		Find(&entries).Error
	return entries, err
}

// nextDisplayOrder assigns max+1; order is only enforced at insert time.
func (s *Service) nextDisplayOrder(memberID uint) (int, error) {
	var maxOrder *int
	err := s.db.Model(&models.WatchlistEntry{}).
		Where("member_id = ?", memberID).
		Select("max(display_order)").
		Scan(&maxOrder).Error
	if err != nil {
		return 0, err
	}
	if maxOrder == nil {
		return 1, nil
	}
	return *maxOrder + 1, nil
}

func marketMap(coins []coingecko.CoinMarket) map[string]coingecko.CoinMarket {
	byID := make(map[string]coingecko.CoinMarket, len(coins))
	for _, c := range coins {
		id := strings.ToLower(strings.TrimSpace(c.ID))
		if _, ok := byID[id]; !ok {
			byID[id] = c
		}
	}
	return byID
}

func marketField(c coingecko.CoinMarket, ok bool, get func(coingecko.CoinMarket) string) string {
	if !ok {
		return ""
	}
	return get(c)
}

func firstNonBlank(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
