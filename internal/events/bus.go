package events

import (
	"context"

	"coinboard/internal/models"
	"go.uber.org/zap"
)

// PostCreated is published after a post write commits.
type PostCreated struct {
	Post models.Post
}

// CommentCreated is published after a comment write commits. Parent is nil
// for top-level comments.
type CommentCreated struct {
	Comment models.Comment
	Post    models.Post
	Parent  *models.Comment
}

// VoteCreated is published after a new vote row commits (not on revote
// updates or removals). Exactly one of Post/Comment is set, matching the
// vote's target type.
type VoteCreated struct {
	Vote    models.Vote
	Post    *models.Post
	Comment *models.Comment
}

// Handler consumes published events. Handler failures must be handled (and
// logged) inside the handler; the bus never propagates them back to the
// publishing request.
type Handler func(event any)

// Bus is an in-process publish/subscribe channel replacing transactional
// event listeners: side effects of a write (experience points, notifications)
// run after the write on the bus goroutine and cannot roll the write back.
type Bus struct {
	ch       chan any
	handlers []Handler
	logger   *zap.Logger
}

// NewBus creates a bus with the given buffer size.
func NewBus(buffer int, logger *zap.Logger) *Bus {
	if buffer <= 0 {
		buffer = 256
	}
	return &Bus{ch: make(chan any, buffer), logger: logger}
}

// Subscribe registers a handler. Not safe to call after Run has started.
func (b *Bus) Subscribe(h Handler) {
	b.handlers = append(b.handlers, h)
}

// Publish enqueues an event. When the buffer is full the event is dropped
// with a warning rather than blocking the request that produced it.
func (b *Bus) Publish(event any) {
	select {
	case b.ch <- event:
	default:
		b.logger.Warn("Event bus full, dropping event", zap.Any("event", event))
	}
}

// Run drains the bus until ctx is cancelled.
func (b *Bus) Run(ctx context.Context) {
	b.logger.Info("Starting event bus")
	for {
		select {
		case <-ctx.Done():
			b.logger.Info("Stopping event bus")
			return
		case event := <-b.ch:
			for _, h := range b.handlers {
				h(event)
			}
		}
	}
}
