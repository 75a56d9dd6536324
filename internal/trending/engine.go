package trending

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"coinboard/internal/cache"
	"coinboard/internal/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Scoring windows.
const (
	Window24h = "24h"
	Window7d  = "7d"

	// Candidate caps keep the scoring pass bounded.
	candidates24h = 100
	candidates7d  = 200
)

// Source supplies the inputs of the trending score: recent posts and their
// engagement counts.
type Source interface {
	RecentPosts(since time.Time, limit int) ([]models.Post, error)
	UpvoteCount(postID uint) (int64, error)
	CommentCount(postID uint) (int64, error)
}

// ScoredPost pairs a post with its computed score for one window.
type ScoredPost struct {
	Post  models.Post `json:"post"`
	Score float64     `json:"score"`
}

// Engine ranks recently created posts by a decayed popularity score and serves
// cached top-N lists for the 24 hour and 7 day windows. Run refreshes the
// cache proactively on a fixed interval, independent of read traffic.
type Engine struct {
	source       Source
	cache        *cache.Cache
	logger       *zap.Logger
	defaultLimit int
	now          func() time.Time
}

// NewEngine creates a trending engine sharing the given cache with readers.
func NewEngine(source Source, c *cache.Cache, defaultLimit int, logger *zap.Logger) *Engine {
	if defaultLimit <= 0 {
		defaultLimit = 10
	}
	return &Engine{
		source:       source,
		cache:        c,
		logger:       logger,
		defaultLimit: defaultLimit,
		now:          time.Now,
	}
}

// Score computes the decayed popularity score of a post.
//
//	rawScore = views*0.3 + upvotes*5 + comments*2
//	score    = rawScore / (max(1, hoursElapsed) + 2)^1.5
//
// The one-hour floor keeps brand-new posts from dividing by a vanishing
// elapsed time.
func Score(viewCount, upvotes, comments int64, hoursElapsed float64) float64 {
	if hoursElapsed < 1 {
		hoursElapsed = 1
	}
	rawScore := float64(viewCount)*0.3 + float64(upvotes)*5 + float64(comments)*2
	return rawScore / math.Pow(hoursElapsed+2, 1.5)
}

// Trending returns the cached top-limit posts for a window, computing and
// caching the list on a miss. window must be Window24h or Window7d.
func (e *Engine) Trending(window string, limit int) ([]ScoredPost, error) {
	if limit <= 0 {
		limit = e.defaultLimit
	}
	key := fmt.Sprintf("%s:%d", window, limit)
	v, err := e.cache.GetOrLoad(key, func() (any, error) {
		list, err := e.compute(window, limit)
		if err != nil {
			return nil, err
		}
		return list, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]ScoredPost), nil
}

// Run refreshes the trending cache every interval until ctx is cancelled.
func (e *Engine) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	e.logger.Info("Starting trending refresh loop", zap.Duration("interval", interval))

	for {
		select {
		case <-ctx.Done():
			e.logger.Info("Stopping trending refresh loop")
			return
		case <-ticker.C:
			e.Refresh()
		}
	}
}

// Refresh recomputes both windows at the default limit and overwrites the
// cache entries, regardless of their freshness.
func (e *Engine) Refresh() {
	for _, window := range []string{Window24h, Window7d} {
		list, err := e.compute(window, e.defaultLimit)
		if err != nil {
			e.logger.Error("Trending refresh failed", zap.String("window", window), zap.Error(err))
			continue
		}
		e.cache.Put(fmt.Sprintf("%s:%d", window, e.defaultLimit), list)
	}
	e.logger.Debug("Trending cache refreshed")
}

func (e *Engine) compute(window string, limit int) ([]ScoredPost, error) {
	var (
		span          time.Duration
		maxCandidates int
	)
	switch window {
	case Window24h:
		span, maxCandidates = 24*time.Hour, candidates24h
	case Window7d:
		span, maxCandidates = 7*24*time.Hour, candidates7d
	default:
		return nil, fmt.Errorf("unknown trending window: %s", window)
	}

	now := e.now()
	posts, err := e.source.RecentPosts(now.Add(-span), maxCandidates)
	if err != nil {
		return nil, fmt.Errorf("could not load trending candidates: %w", err)
	}

	scored := make([]ScoredPost, 0, len(posts))
	for _, post := range posts {
		upvotes, err := e.source.UpvoteCount(post.ID)
		if err != nil {
			return nil, fmt.Errorf("could not count upvotes for post %d: %w", post.ID, err)
		}
		comments, err := e.source.CommentCount(post.ID)
		if err != nil {
			return nil, fmt.Errorf("could not count comments for post %d: %w", post.ID, err)
		}
		hours := now.Sub(post.CreatedAt).Hours()
		scored = append(scored, ScoredPost{
			Post:  post,
			Score: Score(post.ViewCount, upvotes, comments, hours),
		})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	if len(scored) > limit {
		scored = scored[:limit]
	}
	return scored, nil
}

// GormSource reads trending inputs from the relational store.
type GormSource struct {
	db *gorm.DB
}

// NewGormSource creates a Source backed by the given database handle.
func NewGormSource(db *gorm.DB) *GormSource {
	return &GormSource{db: db}
}

// RecentPosts returns up to limit posts created after since, newest first.
func (s *GormSource) RecentPosts(since time.Time, limit int) ([]models.Post, error) {
	var posts []models.Post
	err := s.db.Preload("Author").Preload("Board").
		Where("created_at > ?", since).
		Order("created_at desc").
		Limit(limit).
		Find(&posts).Error
	return posts, err
}

// UpvoteCount counts value=1 votes targeting the post.
func (s *GormSource) UpvoteCount(postID uint) (int64, error) {
	var count int64
	err := s.db.Model(&models.Vote{}).
		Where("target_id = ? AND target_type = ? AND value = ?", postID, models.VoteTargetPost, 1).
		Count(&count).Error
	return count, err
}

// CommentCount counts comments on the post.
func (s *GormSource) CommentCount(postID uint) (int64, error) {
	var count int64
	err := s.db.Model(&models.Comment{}).
		Where("post_id = ?", postID).
		Count(&count).Error
	return count, err
}
