package feed

import (
	"context"

	"coinboard/internal/comment"
	"coinboard/internal/models"
	"coinboard/internal/post"
	"coinboard/internal/trending"
	"coinboard/internal/watchlist"
	"go.uber.org/zap"
)

// TrendingSource serves ranked post lists per window.
type TrendingSource interface {
	Trending(window string, limit int) ([]trending.ScoredPost, error)
}

// PostSource serves the latest posts page.
type PostSource interface {
	List(pageNumber, pageSize int) (post.Page, error)
}

// CommentSource serves the sitewide latest comments.
type CommentSource interface {
	Recent(limit int) ([]comment.RecentComment, error)
}

// MarketSource renders the watchlist panel for the caller.
type MarketSource interface {
	LoadWatchlist(ctx context.Context, memberID uint) (watchlist.View, error)
}

// Home is the homepage payload: trending posts, the latest posts, the newest
// comments and the caller's watchlist with premiums.
type Home struct {
	Trending       []trending.ScoredPost   `json:"trending"`
	Latest         []models.Post           `json:"latest"`
	RecentComments []comment.RecentComment `json:"recent_comments"`
	Watchlist      watchlist.View          `json:"watchlist"`
}

// Service assembles the homepage feed from the forum and market services.
// Forum content is the feed's backbone; a watchlist failure degrades to an
// empty panel instead of failing the page.
type Service struct {
	trending      TrendingSource
	posts         PostSource
	comments      CommentSource
	market        MarketSource
	trendingLimit int
	latestSize    int
	recentSize    int
	logger        *zap.Logger
}

// NewService creates a feed service.
func NewService(t TrendingSource, p PostSource, c CommentSource, m MarketSource, trendingLimit, latestSize, recentSize int, logger *zap.Logger) *Service {
	if trendingLimit <= 0 {
		trendingLimit = 10
	}
	if latestSize <= 0 {
		latestSize = 10
	}
	if recentSize <= 0 {
		recentSize = 6
	}
	return &Service{
		trending:      t,
		posts:         p,
		comments:      c,
		market:        m,
		trendingLimit: trendingLimit,
		latestSize:    latestSize,
		recentSize:    recentSize,
		logger:        logger,
	}
}

// Home builds the homepage feed. memberID 0 renders the guest watchlist.
func (s *Service) Home(ctx context.Context, memberID uint) (Home, error) {
	trendingPosts, err := s.trending.Trending(trending.Window24h, s.trendingLimit)
	if err != nil {
		return Home{}, err
	}
	latest, err := s.posts.List(1, s.latestSize)
	if err != nil {
		return Home{}, err
	}
	recent, err := s.comments.Recent(s.recentSize)
	if err != nil {
		return Home{}, err
	}
	view, err := s.market.LoadWatchlist(ctx, memberID)
	if err != nil {
		s.logger.Warn("Watchlist unavailable for home feed", zap.Error(err))
		view = watchlist.View{Items: []watchlist.Item{}, UsingDefaults: true}
	}
	return Home{Trending: trendingPosts, Latest: latest.Posts, RecentComments: recent, Watchlist: view}, nil
}
