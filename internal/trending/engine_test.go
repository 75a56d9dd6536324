package trending

import (
	"testing"
	"time"

	"coinboard/internal/cache"
	"coinboard/internal/models"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// fakeSource serves fixed posts and counts without a database.
type fakeSource struct {
	posts    []models.Post
	upvotes  map[uint]int64
	comments map[uint]int64
	calls    int
}

func (f *fakeSource) RecentPosts(since time.Time, limit int) ([]models.Post, error) {
	f.calls++
	out := make([]models.Post, 0, len(f.posts))
	for _, p := range f.posts {
		if p.CreatedAt.After(since) {
			out = append(out, p)
		}
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeSource) UpvoteCount(postID uint) (int64, error)  { return f.upvotes[postID], nil }
func (f *fakeSource) CommentCount(postID uint) (int64, error) { return f.comments[postID], nil }

func newPost(id uint, createdAt time.Time, views int64) models.Post {
	p := models.Post{ViewCount: views}
	p.Model = gorm.Model{ID: id, CreatedAt: createdAt}
	return p
}

func TestScore(t *testing.T) {
	t.Run("KnownVector", func(t *testing.T) {
		// 1234*0.3 + 12*5 + 5*2 = 440.2; 440.2 / 3^1.5
		score := Score(1234, 12, 5, 1)
		assert.InDelta(t, 84.72, score, 0.01)
	})

	t.Run("OneHourFloor", func(t *testing.T) {
		assert.Equal(t, Score(100, 10, 5, 0.01), Score(100, 10, 5, 1))
	})

	t.Run("DecaysOverTime", func(t *testing.T) {
		fresh := Score(100, 10, 5, 1)
		stale := Score(100, 10, 5, 24)
		assert.Greater(t, fresh, stale)
	})

	t.Run("MoreEngagementScoresHigher", func(t *testing.T) {
		assert.Greater(t, Score(100, 20, 5, 3), Score(100, 10, 5, 3))
		assert.Greater(t, Score(200, 10, 5, 3), Score(100, 10, 5, 3))
		assert.Greater(t, Score(100, 10, 9, 3), Score(100, 10, 5, 3))
	})
}

func TestEngine_Trending(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	source := &fakeSource{
		posts: []models.Post{
			newPost(1, now.Add(-2*time.Hour), 1000),
			newPost(2, now.Add(-3*time.Hour), 10),
			newPost(3, now.Add(-30*time.Hour), 5000), // outside the 24h window
		},
		upvotes:  map[uint]int64{1: 50, 2: 1, 3: 500},
		comments: map[uint]int64{1: 20, 2: 0, 3: 100},
	}

	engine := NewEngine(source, cache.New(5*time.Minute, 0), 10, zap.NewNop())
	engine.now = func() time.Time { return now }

	list, err := engine.Trending(Window24h, 10)

	assert.NoError(t, err)
	assert.Len(t, list, 2)
	assert.Equal(t, uint(1), list[0].Post.ID)
	assert.Equal(t, uint(2), list[1].Post.ID)
	assert.Greater(t, list[0].Score, list[1].Score)
}

func TestEngine_TrendingTruncatesToLimit(t *testing.T) {
	now := time.Now()
	source := &fakeSource{
		posts: []models.Post{
			newPost(1, now.Add(-time.Hour), 100),
			newPost(2, now.Add(-time.Hour), 200),
			newPost(3, now.Add(-time.Hour), 300),
		},
		upvotes:  map[uint]int64{},
		comments: map[uint]int64{},
	}
	engine := NewEngine(source, cache.New(5*time.Minute, 0), 10, zap.NewNop())

	list, err := engine.Trending(Window24h, 2)

	assert.NoError(t, err)
	assert.Len(t, list, 2)
	assert.Equal(t, uint(3), list[0].Post.ID)
}

func TestEngine_TrendingServedFromCache(t *testing.T) {
	now := time.Now()
	source := &fakeSource{
		posts:    []models.Post{newPost(1, now.Add(-time.Hour), 100)},
		upvotes:  map[uint]int64{},
		comments: map[uint]int64{},
	}
	engine := NewEngine(source, cache.New(5*time.Minute, 0), 10, zap.NewNop())

	_, err := engine.Trending(Window24h, 10)
	assert.NoError(t, err)
	_, err = engine.Trending(Window24h, 10)
	assert.NoError(t, err)
	assert.Equal(t, 1, source.calls)

	// A different window is a different cache entry.
	_, err = engine.Trending(Window7d, 10)
	assert.NoError(t, err)
	assert.Equal(t, 2, source.calls)
}

func TestEngine_UnknownWindow(t *testing.T) {
	engine := NewEngine(&fakeSource{}, cache.New(5*time.Minute, 0), 10, zap.NewNop())

	_, err := engine.Trending("1h", 10)

	assert.Error(t, err)
}

func TestEngine_RefreshOverwritesCache(t *testing.T) {
	now := time.Now()
	source := &fakeSource{
		posts:    []models.Post{newPost(1, now.Add(-time.Hour), 100)},
		upvotes:  map[uint]int64{},
		comments: map[uint]int64{},
	}
	c := cache.New(5*time.Minute, 0)
	engine := NewEngine(source, c, 10, zap.NewNop())

	list, err := engine.Trending(Window24h, 10)
	assert.NoError(t, err)
	assert.Len(t, list, 1)

	source.posts = append(source.posts, newPost(2, now.Add(-time.Minute), 500))
	engine.Refresh()

	list, err = engine.Trending(Window24h, 10)
	assert.NoError(t, err)
	assert.Len(t, list, 2)
}
