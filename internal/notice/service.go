package notice

import (
	"time"

	"coinboard/internal/models"
	"gorm.io/gorm"
)

// DefaultLimit is how many notices are served when no limit is given.
const DefaultLimit = 5

// Response is one published notice.
type Response struct {
	ID          uint      `json:"id"`
	Title       string    `json:"title"`
	Content     string    `json:"content"`
	Priority    int       `json:"priority"`
	PublishedAt time.Time `json:"published_at"`
	TargetURL   string    `json:"target_url,omitempty"`
}

// Service serves operator announcements. Only notices whose publication time
// has passed are visible; scheduling a notice in the future hides it until
// then.
type Service struct {
	db  *gorm.DB
	now func() time.Time
}

// NewService creates a notice service.
func NewService(db *gorm.DB) *Service {
	return &Service{db: db, now: time.Now}
}

// Active returns published notices, highest priority first and newest first
// within a priority. limit <= 0 falls back to DefaultLimit.
func (s *Service) Active(limit int) ([]Response, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	var notices []models.Notice
	err := s.db.Where("published_at <= ?", s.now()).
		Order("priority desc, published_at desc").
		Limit(limit).
		Find(&notices).Error
	if err != nil {
		return nil, err
	}

	out := make([]Response, 0, len(notices))
	for _, n := range notices {
		out = append(out, Response{
			ID:          n.ID,
			Title:       n.Title,
			Content:     n.Content,
			Priority:    n.Priority,
			PublishedAt: n.PublishedAt,
			TargetURL:   n.TargetURL,
		})
	}
	return out, nil
}
