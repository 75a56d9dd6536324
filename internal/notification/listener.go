package notification

import (
	"fmt"

	"coinboard/internal/events"
	"coinboard/internal/models"
	"go.uber.org/zap"
)

// Listener turns forum events into notifications. Actions on one's own
// content never notify.
type Listener struct {
	service *Service
	logger  *zap.Logger
}

// NewListener creates a notification listener.
func NewListener(service *Service, logger *zap.Logger) *Listener {
	return &Listener{service: service, logger: logger}
}

// Handle is the event bus entry point.
func (l *Listener) Handle(event any) {
	switch e := event.(type) {
	case events.CommentCreated:
		l.onCommentCreated(e)
	case events.VoteCreated:
		l.onVoteCreated(e)
	}
}

func (l *Listener) onCommentCreated(e events.CommentCreated) {
	if e.Post.AuthorID != e.Comment.AuthorID {
		message := fmt.Sprintf("%s commented on your post %q", e.Comment.Author.Nickname, e.Post.Title)
		l.notify(e.Post.AuthorID, models.NotificationComment, e.Post.ID, message)
	}
	if e.Parent != nil && e.Parent.AuthorID != e.Comment.AuthorID {
		message := fmt.Sprintf("%s replied to your comment", e.Comment.Author.Nickname)
		l.notify(e.Parent.AuthorID, models.NotificationReply, e.Post.ID, message)
	}
}

func (l *Listener) onVoteCreated(e events.VoteCreated) {
	// Only fresh upvotes notify.
	if e.Vote.Value != 1 {
		return
	}
	switch {
	case e.Post != nil:
		if e.Post.AuthorID == e.Vote.MemberID {
			return
		}
		message := fmt.Sprintf("Your post %q received an upvote", e.Post.Title)
		l.notify(e.Post.AuthorID, models.NotificationUpvote, e.Post.ID, message)
	case e.Comment != nil:
		if e.Comment.AuthorID == e.Vote.MemberID {
			return
		}
		l.notify(e.Comment.AuthorID, models.NotificationUpvote, e.Comment.PostID, "Your comment received an upvote")
	}
}

func (l *Listener) notify(recipientID uint, notificationType string, targetID uint, message string) {
	if err := l.service.Notify(recipientID, notificationType, targetID, message); err != nil {
		l.logger.Error("Failed to store notification",
			zap.Uint("recipient_id", recipientID),
			zap.String("type", notificationType),
			zap.Error(err))
	}
}
