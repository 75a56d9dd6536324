package post

import (
	"testing"
	"time"

	"coinboard/internal/apperr"
	"coinboard/internal/cache"
	"coinboard/internal/events"
	"coinboard/internal/models"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTest(t *testing.T) (*Service, *gorm.DB) {
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	assert.NoError(t, err)
	err = db.AutoMigrate(&models.Member{}, &models.Board{}, &models.Post{})
	assert.NoError(t, err)

	tracker := NewViewTracker(cache.New(time.Hour, 0))
	bus := events.NewBus(16, zap.NewNop())
	return NewService(db, tracker, bus, zap.NewNop()), db
}

func seed(t *testing.T, db *gorm.DB) (models.Member, models.Board) {
	member := models.Member{Username: "alice", Password: "x", Email: "a@example.com", Nickname: "alice", Role: models.RoleUser}
	assert.NoError(t, db.Create(&member).Error)
	board := models.Board{Name: "Free", Slug: "free", Type: "GENERAL"}
	assert.NoError(t, db.Create(&board).Error)
	return member, board
}

func TestCreate(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		svc, db := setupTest(t)
		member, board := seed(t, db)

		created, err := svc.Create(member.ID, CreateRequest{BoardID: board.ID, Title: "  hello  ", Content: "world"})

		assert.NoError(t, err)
		assert.Equal(t, "hello", created.Title)
		assert.Equal(t, "alice", created.Author.Nickname)
		assert.Equal(t, "free", created.Board.Slug)
	})

	t.Run("BlankTitleRejected", func(t *testing.T) {
		svc, db := setupTest(t)
		member, board := seed(t, db)

		_, err := svc.Create(member.ID, CreateRequest{BoardID: board.ID, Title: " ", Content: "x"})
		assert.True(t, apperr.IsKind(err, apperr.KindInvalidInput))
	})

	t.Run("UnknownBoardRejected", func(t *testing.T) {
		svc, db := setupTest(t)
		member, _ := seed(t, db)

		_, err := svc.Create(member.ID, CreateRequest{BoardID: 999, Title: "t", Content: "c"})
		assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
	})
}

func TestRead_CountsViewOncePerViewer(t *testing.T) {
	svc, db := setupTest(t)
	member, board := seed(t, db)
	created, err := svc.Create(member.ID, CreateRequest{BoardID: board.ID, Title: "t", Content: "c"})
	assert.NoError(t, err)

	viewer := Viewer{MemberID: member.ID}
	got, err := svc.Read(created.ID, viewer)
	assert.NoError(t, err)
	assert.Equal(t, int64(1), got.ViewCount)

	got, err = svc.Read(created.ID, viewer)
	assert.NoError(t, err)
	assert.Equal(t, int64(1), got.ViewCount)

	guest := Viewer{ClientIP: "10.0.0.1", UserAgent: "Mozilla/5.0"}
	got, err = svc.Read(created.ID, guest)
	assert.NoError(t, err)
	assert.Equal(t, int64(2), got.ViewCount)
}

func TestGet_DoesNotTouchViewCount(t *testing.T) {
	svc, db := setupTest(t)
	member, board := seed(t, db)
	created, err := svc.Create(member.ID, CreateRequest{BoardID: board.ID, Title: "t", Content: "c"})
	assert.NoError(t, err)

	got, err := svc.Get(created.ID)
	assert.NoError(t, err)
	assert.Equal(t, int64(0), got.ViewCount)
}

func TestSearch(t *testing.T) {
	svc, db := setupTest(t)
	member, board := seed(t, db)
	_, err := svc.Create(member.ID, CreateRequest{BoardID: board.ID, Title: "Bitcoin rally", Content: "to the moon"})
	assert.NoError(t, err)
	_, err = svc.Create(member.ID, CreateRequest{BoardID: board.ID, Title: "Weather", Content: "bitcoin in the content"})
	assert.NoError(t, err)
	_, err = svc.Create(member.ID, CreateRequest{BoardID: board.ID, Title: "Unrelated", Content: "nothing here"})
	assert.NoError(t, err)

	page, err := svc.Search("bitcoin", SearchFilter{}, 1, 20)
	assert.NoError(t, err)
	assert.Equal(t, int64(2), page.Total)
	assert.Len(t, page.Posts, 2)

	// Without any filter a blank query is rejected.
	_, err = svc.Search("  ", SearchFilter{}, 1, 20)
	assert.True(t, apperr.IsKind(err, apperr.KindInvalidInput))
}

func TestSearch_Filters(t *testing.T) {
	svc, db := setupTest(t)
	member, board := seed(t, db)
	other := models.Board{Name: "Coin", Slug: "coin", Type: "GENERAL"}
	assert.NoError(t, db.Create(&other).Error)

	onFree, err := svc.Create(member.ID, CreateRequest{BoardID: board.ID, Title: "bitcoin on free", Content: "x"})
	assert.NoError(t, err)
	onCoin, err := svc.Create(member.ID, CreateRequest{BoardID: other.ID, Title: "bitcoin on coin", Content: "x"})
	assert.NoError(t, err)
	old, err := svc.Create(member.ID, CreateRequest{BoardID: board.ID, Title: "bitcoin but old", Content: "x"})
	assert.NoError(t, err)
	assert.NoError(t, db.Model(&models.Post{}).Where("id = ?", old.ID).
		UpdateColumn("created_at", time.Now().Add(-48*time.Hour)).Error)
	assert.NoError(t, db.Model(&models.Post{}).Where("id = ?", onCoin.ID).
		UpdateColumn("view_count", 50).Error)

	t.Run("BoardFilter", func(t *testing.T) {
		page, err := svc.Search("bitcoin", SearchFilter{BoardID: other.ID}, 1, 20)
		assert.NoError(t, err)
		assert.Equal(t, int64(1), page.Total)
		assert.Equal(t, onCoin.ID, page.Posts[0].ID)
	})

	t.Run("DateRangeFilter", func(t *testing.T) {
		from := time.Now().Add(-time.Hour)
		page, err := svc.Search("bitcoin", SearchFilter{From: &from}, 1, 20)
		assert.NoError(t, err)
		assert.Equal(t, int64(2), page.Total)

		to := time.Now().Add(-24 * time.Hour)
		page, err = svc.Search("bitcoin", SearchFilter{To: &to}, 1, 20)
		assert.NoError(t, err)
		assert.Equal(t, int64(1), page.Total)
		assert.Equal(t, old.ID, page.Posts[0].ID)
	})

	t.Run("MinViewsFilter", func(t *testing.T) {
		minViews := int64(10)
		page, err := svc.Search("bitcoin", SearchFilter{MinViews: &minViews}, 1, 20)
		assert.NoError(t, err)
		assert.Equal(t, int64(1), page.Total)
		assert.Equal(t, onCoin.ID, page.Posts[0].ID)
	})

	t.Run("BlankQueryAllowedWithFilter", func(t *testing.T) {
		page, err := svc.Search("", SearchFilter{BoardID: board.ID}, 1, 20)
		assert.NoError(t, err)
		assert.Equal(t, int64(2), page.Total)
		ids := []uint{page.Posts[0].ID, page.Posts[1].ID}
		assert.Contains(t, ids, onFree.ID)
		assert.Contains(t, ids, old.ID)
	})
}

func TestListByBoardSlug(t *testing.T) {
	svc, db := setupTest(t)
	member, board := seed(t, db)
	other := models.Board{Name: "Coin", Slug: "coin", Type: "GENERAL"}
	assert.NoError(t, db.Create(&other).Error)
	_, err := svc.Create(member.ID, CreateRequest{BoardID: board.ID, Title: "on free", Content: "x"})
	assert.NoError(t, err)
	_, err = svc.Create(member.ID, CreateRequest{BoardID: other.ID, Title: "on coin", Content: "x"})
	assert.NoError(t, err)

	page, err := svc.ListByBoardSlug("coin", 1, 20)
	assert.NoError(t, err)
	assert.Equal(t, int64(1), page.Total)
	assert.Equal(t, "on coin", page.Posts[0].Title)

	_, err = svc.ListByBoardSlug("missing", 1, 20)
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
}

func TestList_PaginationDefaults(t *testing.T) {
	svc, db := setupTest(t)
	member, board := seed(t, db)
	for i := 0; i < 3; i++ {
		_, err := svc.Create(member.ID, CreateRequest{BoardID: board.ID, Title: "t", Content: "c"})
		assert.NoError(t, err)
	}

	page, err := svc.List(0, -5)
	assert.NoError(t, err)
	assert.Equal(t, 1, page.PageNumber)
	assert.Equal(t, 20, page.PageSize)
	assert.Equal(t, int64(3), page.Total)
}

func TestUpdateAndDelete_OwnerOnly(t *testing.T) {
	svc, db := setupTest(t)
	member, board := seed(t, db)
	other := models.Member{Username: "bob", Password: "x", Email: "b@example.com", Nickname: "bob", Role: models.RoleUser}
	assert.NoError(t, db.Create(&other).Error)
	created, err := svc.Create(member.ID, CreateRequest{BoardID: board.ID, Title: "t", Content: "c"})
	assert.NoError(t, err)

	_, err = svc.Update(created.ID, other.ID, UpdateRequest{Title: "hijack", Content: "x"})
	assert.True(t, apperr.IsKind(err, apperr.KindForbidden))

	updated, err := svc.Update(created.ID, member.ID, UpdateRequest{Title: "new title", Content: "new content"})
	assert.NoError(t, err)
	assert.Equal(t, "new title", updated.Title)

	err = svc.Delete(created.ID, other.ID)
	assert.True(t, apperr.IsKind(err, apperr.KindForbidden))

	assert.NoError(t, svc.Delete(created.ID, member.ID))
	_, err = svc.Get(created.ID)
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
}
