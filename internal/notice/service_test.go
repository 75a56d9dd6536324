package notice

import (
	"testing"
	"time"

	"coinboard/internal/models"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupService(t *testing.T) *Service {
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	assert.NoError(t, err)
	assert.NoError(t, db.AutoMigrate(&models.Notice{}))
	return NewService(db)
}

func seedNotice(t *testing.T, svc *Service, title string, priority int, publishedAt time.Time) {
	err := svc.db.Create(&models.Notice{
		Title:       title,
		Content:     "content",
		Priority:    priority,
		PublishedAt: publishedAt,
	}).Error
	assert.NoError(t, err)
}

func TestActive_OrdersByPriorityThenRecency(t *testing.T) {
	svc := setupService(t)
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	seedNotice(t, svc, "low", 1, now.Add(-time.Hour))
	seedNotice(t, svc, "high", 3, now.Add(-3*time.Hour))
	seedNotice(t, svc, "mid-old", 2, now.Add(-2*time.Hour))
	seedNotice(t, svc, "mid-new", 2, now.Add(-time.Hour))

	notices, err := svc.Active(10)

	assert.NoError(t, err)
	titles := make([]string, 0, len(notices))
	for _, n := range notices {
		titles = append(titles, n.Title)
	}
	assert.Equal(t, []string{"high", "mid-new", "mid-old", "low"}, titles)
}

func TestActive_ExcludesFutureNotices(t *testing.T) {
	svc := setupService(t)
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	seedNotice(t, svc, "published", 1, now.Add(-time.Minute))
	seedNotice(t, svc, "scheduled", 5, now.Add(time.Hour))

	notices, err := svc.Active(10)

	assert.NoError(t, err)
	assert.Len(t, notices, 1)
	assert.Equal(t, "published", notices[0].Title)
}

func TestActive_LimitAndDefault(t *testing.T) {
	svc := setupService(t)
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	for i := 0; i < DefaultLimit+2; i++ {
		seedNotice(t, svc, "n", 1, now.Add(-time.Duration(i+1)*time.Minute))
	}

	notices, err := svc.Active(2)
	assert.NoError(t, err)
	assert.Len(t, notices, 2)

	// A non-positive limit falls back to the default.
	notices, err = svc.Active(0)
	assert.NoError(t, err)
	assert.Len(t, notices, DefaultLimit)
}

func TestActive_EmptyTable(t *testing.T) {
	svc := setupService(t)

	notices, err := svc.Active(5)

	assert.NoError(t, err)
	assert.Empty(t, notices)
}

func TestNoticeActiveWindow(t *testing.T) {
	ref := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)

	assert.True(t, models.Notice{PublishedAt: ref}.Active(ref))
	assert.True(t, models.Notice{PublishedAt: ref.Add(-time.Second)}.Active(ref))
	assert.False(t, models.Notice{PublishedAt: ref.Add(time.Second)}.Active(ref))
}
