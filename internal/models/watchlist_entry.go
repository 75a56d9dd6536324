package models

import "gorm.io/gorm"

// WatchlistEntry is a coin a member tracks on their watchlist. CoinID is
// always stored lowercase; the (member, coin) pair is unique.
type WatchlistEntry struct {
	gorm.Model
	MemberID     uint   `gorm:"uniqueIndex:idx_watchlist_member_coin;not null" json:"member_id"`
	CoinID       string `gorm:"uniqueIndex:idx_watchlist_member_coin;size:80;not null" json:"coin_id"`
	Label        string `gorm:"size:120" json:"label"`
	DisplayOrder int    `gorm:"not null" json:"display_order"`
}
