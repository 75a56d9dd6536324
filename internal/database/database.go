package database

import (
	"fmt"
	"time"

	"coinboard/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// defaultBoards are seeded on first start so the forum is usable immediately.
var defaultBoards = []models.Board{
	{Name: "Free Board", Description: "General discussion", Slug: "free", Type: "GENERAL"},
	{Name: "Coin Talk", Description: "Cryptocurrency discussion", Slug: "coin", Type: "GENERAL"},
	{Name: "Notices", Description: "Announcements from the operators", Slug: "notice", Type: "NOTICE"},
}

// sampleNotices seed the announcement list on first start. PublishedAt is
// filled relative to the current time when seeding.
var sampleNotices = []models.Notice{
	{
		Title:     "Community guidelines",
		Content:   "Please review the community rules before posting. Keep discussions civil.",
		Priority:  2,
		TargetURL: "/boards/free",
	},
	{
		Title:    "Market data maintenance window",
		Content:  "Price updates may be delayed between 02:00 and 03:00 UTC during upstream maintenance.",
		Priority: 3,
	},
	{
		Title:     "Airdrop calendar beta",
		Content:   "A calendar collecting upcoming airdrops is now open in beta.",
		Priority:  1,
		TargetURL: "/boards/coin",
	},
}

// NewDatabase creates a new database connection and performs auto-migration.
func NewDatabase(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := AutoMigrate(db); err != nil {
		return nil, err
	}

	return db, nil
}

// AutoMigrate creates or updates the schema and seeds the default boards.
func AutoMigrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.Member{},
		&models.Board{},
		&models.Post{},
		&models.Comment{},
		&models.Vote{},
		&models.Bookmark{},
		&models.Notification{},
		&models.MemberActivity{},
		&models.WatchlistEntry{},
		&models.RefreshToken{},
		&models.Tag{},
		&models.PostTag{},
		&models.Notice{},
	)
	if err != nil {
		return fmt.Errorf("failed to auto-migrate database: %w", err)
	}

	for _, board := range defaultBoards {
		b := board
		if err := db.FirstOrCreate(&b, models.Board{Slug: board.Slug}).Error; err != nil {
			return fmt.Errorf("failed to seed board '%s': %w", board.Slug, err)
		}
	}

	return seedNotices(db)
}

// seedNotices inserts the sample announcements once, on an empty table only.
func seedNotices(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.Notice{}).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to count notices: %w", err)
	}
	if count > 0 {
		return nil
	}
	now := time.Now()
	for i, notice := range sampleNotices {
		n := notice
		n.PublishedAt = now.Add(-time.Duration(i+1) * time.Hour)
		if err := db.Create(&n).Error; err != nil {
			return fmt.Errorf("failed to seed notice '%s': %w", notice.Title, err)
		}
	}
	return nil
}
