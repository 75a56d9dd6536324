package comment

import (
	"errors"
	"strings"
	"time"

	"coinboard/internal/apperr"
	"coinboard/internal/events"
	"coinboard/internal/models"
	"gorm.io/gorm"
)

// Author is the comment author's public identity.
type Author struct {
	ID       uint   `json:"id"`
	Nickname string `json:"nickname"`
}

// Response is one comment with its nested replies.
type Response struct {
	ID        uint       `json:"id"`
	Content   string     `json:"content"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	Author    Author     `json:"author"`
	ParentID  *uint      `json:"parent_id,omitempty"`
	Replies   []Response `json:"replies"`
}

// CreateRequest carries a new comment. ParentID is nil for top-level comments.
type CreateRequest struct {
	PostID   uint   `json:"post_id"`
	ParentID *uint  `json:"parent_id,omitempty"`
	Content  string `json:"content"`
}

// Service implements threaded comments.
type Service struct {
	db  *gorm.DB
	bus *events.Bus
}

// NewService creates a comment service.
func NewService(db *gorm.DB, bus *events.Bus) *Service {
	return &Service{db: db, bus: bus}
}

// ListByPost returns a post's comments assembled into a tree. Comments are
// fetched in creation order, so a parent always precedes its replies and the
// tree builds in one pass.
func (s *Service) ListByPost(postID uint) ([]Response, error) {
	var comments []models.Comment
	err := s.db.Preload("Author").
		Where("post_id = ?", postID).
		Order("created_at asc, id asc").
		Find(&comments).Error
	if err != nil {
		return nil, err
	}

	nodes := make(map[uint]*node, len(comments))
	roots := make([]*node, 0)
	for _, c := range comments {
		n := &node{comment: c}
		nodes[c.ID] = n
		if c.ParentID != nil {
			if parent, ok := nodes[*c.ParentID]; ok {
				parent.replies = append(parent.replies, n)
				continue
			}
		}
		roots = append(roots, n)
	}

	out := make([]Response, 0, len(roots))
	for _, r := range roots {
		out = append(out, r.build())
	}
	return out, nil
}

// RecentComment is a flat card for the sitewide latest-comments list.
type RecentComment struct {
	CommentID      uint      `json:"comment_id"`
	Snippet        string    `json:"snippet"`
	CreatedAt      time.Time `json:"created_at"`
	PostID         uint      `json:"post_id"`
	PostTitle      string    `json:"post_title"`
	BoardName      string    `json:"board_name"`
	BoardSlug      string    `json:"board_slug"`
	AuthorNickname string    `json:"author_nickname"`
}

const snippetLength = 120

// Recent returns the newest comments across all posts as flat cards, content
// collapsed to a single-line snippet.
func (s *Service) Recent(limit int) ([]RecentComment, error) {
	if limit <= 0 {
		limit = 6
	}
	var comments []models.Comment
	err := s.db.Preload("Author").Preload("Post").Preload("Post.Board").
		Order("created_at desc, id desc").
		Limit(limit).
		Find(&comments).Error
	if err != nil {
		return nil, err
	}

	out := make([]RecentComment, 0, len(comments))
	for _, c := range comments {
		out = append(out, RecentComment{
			CommentID:      c.ID,
			Snippet:        snippet(c.Content, snippetLength),
			CreatedAt:      c.CreatedAt,
			PostID:         c.PostID,
			PostTitle:      c.Post.Title,
			BoardName:      c.Post.Board.Name,
			BoardSlug:      c.Post.Board.Slug,
			AuthorNickname: c.Author.Nickname,
		})
	}
	return out, nil
}

// snippet collapses whitespace and truncates to max runes, marking the cut
// with an ellipsis.
func snippet(content string, max int) string {
	normalized := strings.Join(strings.Fields(content), " ")
	runes := []rune(normalized)
	if len(runes) <= max {
		return normalized
	}
	return string(runes[:max-1]) + "…"
}

type node struct {
	comment models.Comment
	replies []*node
}

func (n *node) build() Response {
	replies := make([]Response, 0, len(n.replies))
	for _, r := range n.replies {
		replies = append(replies, r.build())
	}
	return Response{
		ID:        n.comment.ID,
		Content:   n.comment.Content,
		CreatedAt: n.comment.CreatedAt,
		UpdatedAt: n.comment.UpdatedAt,
		Author:    Author{ID: n.comment.AuthorID, Nickname: n.comment.Author.Nickname},
		ParentID:  n.comment.ParentID,
		Replies:   replies,
	}
}

// Create stores a comment. A reply's parent must belong to the same post.
func (s *Service) Create(authorID uint, req CreateRequest) (Response, error) {
	if strings.TrimSpace(req.Content) == "" {
		return Response{}, apperr.InvalidInput("comment content must not be blank")
	}
	var post models.Post
	err := s.db.Preload("Author").First(&post, req.PostID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Response{}, apperr.NotFound("post not found: %d", req.PostID)
	}
	if err != nil {
		return Response{}, err
	}

	var parent *models.Comment
	if req.ParentID != nil {
		var p models.Comment
		err := s.db.Preload("Author").First(&p, *req.ParentID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Response{}, apperr.NotFound("comment not found: %d", *req.ParentID)
		}
		if err != nil {
			return Response{}, err
		}
		if p.PostID != post.ID {
			return Response{}, apperr.InvalidInput("parent comment belongs to a different post")
		}
		parent = &p
	}

	comment := models.Comment{
		AuthorID: authorID,
		PostID:   post.ID,
		ParentID: req.ParentID,
		Content:  req.Content,
	}
	if err := s.db.Create(&comment).Error; err != nil {
		return Response{}, err
	}
	if err := s.db.Preload("Author").First(&comment, comment.ID).Error; err != nil {
		return Response{}, err
	}

	s.bus.Publish(events.CommentCreated{Comment: comment, Post: post, Parent: parent})

	return Response{
		ID:        comment.ID,
		Content:   comment.Content,
		CreatedAt: comment.CreatedAt,
		UpdatedAt: comment.UpdatedAt,
		Author:    Author{ID: comment.AuthorID, Nickname: comment.Author.Nickname},
		ParentID:  comment.ParentID,
		Replies:   []Response{},
	}, nil
}

// Update edits a comment; only the author may edit.
func (s *Service) Update(id, memberID uint, content string) error {
	comment, err := s.find(id)
	if err != nil {
		return err
	}
	if comment.AuthorID != memberID {
		return apperr.Forbidden("not the author of comment %d", id)
	}
	if strings.TrimSpace(content) == "" {
		return apperr.InvalidInput("comment content must not be blank")
	}
	return s.db.Model(&comment).Update("content", content).Error
}

// Delete removes a comment; only the author may delete.
func (s *Service) Delete(id, memberID uint) error {
	comment, err := s.find(id)
	if err != nil {
		return err
	}
	if comment.AuthorID != memberID {
		return apperr.Forbidden("not the author of comment %d", id)
	}
	return s.db.Delete(&comment).Error
}

func (s *Service) find(id uint) (models.Comment, error) {
	var comment models.Comment
	err := s.db.First(&comment, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Comment{}, apperr.NotFound("comment not found: %d", id)
	}
	return comment, err
}
