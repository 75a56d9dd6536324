package notification

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
	err = db.AutoMigrate(&models.Notification{})
	assert.NoError(t, err)
	return NewService(db, cache.New(time.Minute, 0), zap.NewNop()), db
}

func TestNotifyAndList(t *testing.T) {
	svc, _ := setupTest(t)

	assert.NoError(t, svc.Notify(1, models.NotificationComment, 10, "someone commented"))
	assert.NoError(t, svc.Notify(1, models.NotificationUpvote, 10, "someone upvoted"))
	assert.NoError(t, svc.Notify(2, models.NotificationReply, 11, "someone replied"))

	page, err := svc.List(1, 1, 20)
	assert.NoError(t, err)
	assert.Equal(t, int64(2), page.Total)
	assert.Len(t, page.Notifications, 2)
	for _, n := range page.Notifications {
		assert.Equal(t, uint(1), n.RecipientID)
		assert.False(t, n.Read)
	}
}

func TestUnreadCount_CachedUntilWrite(t *testing.T) {
	svc, db := setupTest(t)
	assert.NoError(t, svc.Notify(1, models.NotificationComment, 10, "m"))

	count, err := svc.UnreadCount(1)
	assert.NoError(t, err)
	assert.Equal(t, int64(1), count)

	// A direct row change is invisible until the cache is evicted by a write
	// through the service.
	db.Model(&models.Notification{}).Where("recipient_id = ?", 1).Update("read", true)
	count, err = svc.UnreadCount(1)
	assert.NoError(t, err)
	assert.Equal(t, int64(1), count)

	assert.NoError(t, svc.Notify(1, models.NotificationUpvote, 10, "m"))
	count, err = svc.UnreadCount(1)
	assert.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestMarkRead(t *testing.T) {
	svc, db := setupTest(t)
	assert.NoError(t, svc.Notify(1, models.NotificationComment, 10, "m"))

	var stored models.Notification
	assert.NoError(t, db.First(&stored).Error)

	t.Run("WrongRecipientForbidden", func(t *testing.T) {
		err := svc.MarkRead(stored.ID, 2)
		assert.True(t, apperr.IsKind(err, apperr.KindForbidden))
	})

	t.Run("UnknownNotification", func(t *testing.T) {
		err := svc.MarkRead(999, 1)
		assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
	})

	t.Run("Success", func(t *testing.T) {
		assert.NoError(t, svc.MarkRead(stored.ID, 1))
		count, err := svc.UnreadCount(1)
		assert.NoError(t, err)
		assert.Equal(t, int64(0), count)

		// Marking twice is a no-op.
		assert.NoError(t, svc.MarkRead(stored.ID, 1))
	})
}

func TestMarkAllRead(t *testing.T) {
	svc, _ := setupTest(t)
	for i := 0; i < 3; i++ {
		assert.NoError(t, svc.Notify(1, models.NotificationComment, 10, "m"))
	}
	assert.NoError(t, svc.Notify(2, models.NotificationComment, 10, "m"))

	assert.NoError(t, svc.MarkAllRead(1))

	count, err := svc.UnreadCount(1)
	assert.NoError(t, err)
	assert.Equal(t, int64(0), count)

	count, err = svc.UnreadCount(2)
	assert.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestListener(t *testing.T) {
	author := models.Member{Nickname: "alice"}
	commenter := models.Member{Nickname: "bob"}

	post := models.Post{AuthorID: 1, Author: author, Title: "hello"}
	post.ID = 10

	t.Run("CommentNotifiesPostAuthor", func(t *testing.T) {
		svc, _ := setupTest(t)
		listener := NewListener(svc, zap.NewNop())

		comment := models.Comment{AuthorID: 2, Author: commenter, PostID: post.ID, Content: "hi"}
		listener.Handle(events.CommentCreated{Comment: comment, Post: post})

		page, err := svc.List(1, 1, 20)
		assert.NoError(t, err)
		assert.Equal(t, int64(1), page.Total)
		assert.Equal(t, models.NotificationComment, page.Notifications[0].Type)
		assert.Equal(t, post.ID, page.Notifications[0].TargetID)
	})

	t.Run("SelfCommentDoesNotNotify", func(t *testing.T) {
		svc, _ := setupTest(t)
		listener := NewListener(svc, zap.NewNop())

		comment := models.Comment{AuthorID: 1, Author: author, PostID: post.ID, Content: "my own post"}
		listener.Handle(events.CommentCreated{Comment: comment, Post: post})

		page, err := svc.List(1, 1, 20)
		assert.NoError(t, err)
		assert.Equal(t, int64(0), page.Total)
	})

	t.Run("ReplyNotifiesParentAuthorToo", func(t *testing.T) {
		svc, _ := setupTest(t)
		listener := NewListener(svc, zap.NewNop())

		parent := models.Comment{AuthorID: 3, PostID: post.ID}
		reply := models.Comment{AuthorID: 2, Author: commenter, PostID: post.ID}
		listener.Handle(events.CommentCreated{Comment: reply, Post: post, Parent: &parent})

		postAuthorPage, err := svc.List(1, 1, 20)
		assert.NoError(t, err)
		assert.Equal(t, int64(1), postAuthorPage.Total)

		parentAuthorPage, err := svc.List(3, 1, 20)
		assert.NoError(t, err)
		assert.Equal(t, int64(1), parentAuthorPage.Total)
		assert.Equal(t, models.NotificationReply, parentAuthorPage.Notifications[0].Type)
	})

	t.Run("UpvoteNotifies", func(t *testing.T) {
		svc, _ := setupTest(t)
		listener := NewListener(svc, zap.NewNop())

		listener.Handle(events.VoteCreated{Vote: models.Vote{MemberID: 2, Value: 1}, Post: &post})

		page, err := svc.List(1, 1, 20)
		assert.NoError(t, err)
		assert.Equal(t, int64(1), page.Total)
		assert.Equal(t, models.NotificationUpvote, page.Notifications[0].Type)
	})

	t.Run("DownvoteDoesNotNotify", func(t *testing.T) {
		svc, _ := setupTest(t)
		listener := NewListener(svc, zap.NewNop())

		listener.Handle(events.VoteCreated{Vote: models.Vote{MemberID: 2, Value: -1}, Post: &post})

		page, err := svc.List(1, 1, 20)
		assert.NoError(t, err)
		assert.Equal(t, int64(0), page.Total)
	})

	t.Run("CommentUpvoteNotifiesCommentAuthor", func(t *testing.T) {
		svc, _ := setupTest(t)
		listener := NewListener(svc, zap.NewNop())

		comment := models.Comment{AuthorID: 3, PostID: post.ID}
		listener.Handle(events.VoteCreated{Vote: models.Vote{MemberID: 2, Value: 1}, Comment: &comment})

		page, err := svc.List(3, 1, 20)
		assert.NoError(t, err)
		assert.Equal(t, int64(1), page.Total)
		assert.Equal(t, post.ID, page.Notifications[0].TargetID)
	})
}
