package activity

import (
	"coinboard/internal/events"
	"go.uber.org/zap"
)

// Listener credits experience points for forum events.
type Listener struct {
	service *Service
	logger  *zap.Logger
}

// NewListener creates an activity listener.
func NewListener(service *Service, logger *zap.Logger) *Listener {
	return &Listener{service: service, logger: logger}
}

// Handle is the event bus entry point.
func (l *Listener) Handle(event any) {
	switch e := event.(type) {
	case events.PostCreated:
		l.record(e.Post.AuthorID, l.service.RecordPost)
	case events.CommentCreated:
		l.record(e.Comment.AuthorID, l.service.RecordComment)
	case events.VoteCreated:
		l.onVoteCreated(e)
	}
}

func (l *Listener) onVoteCreated(e events.VoteCreated) {
	var authorID uint
	switch {
	case e.Post != nil:
		authorID = e.Post.AuthorID
	case e.Comment != nil:
		authorID = e.Comment.AuthorID
	default:
		return
	}
	// Voting on one's own content earns nothing.
	if authorID == e.Vote.MemberID {
		return
	}
	switch e.Vote.Value {
	case 1:
		l.record(authorID, l.service.RecordUpvoteReceived)
	case -1:
		l.record(authorID, l.service.RecordDownvoteReceived)
	}
}

func (l *Listener) record(memberID uint, fn func(uint) error) {
	if err := fn(memberID); err != nil {
		l.logger.Error("Failed to record member activity", zap.Uint("member_id", memberID), zap.Error(err))
	}
}
