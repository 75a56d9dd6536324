package post

import (
	"errors"
	"strings"
	"time"

	"coinboard/internal/apperr"
	"coinboard/internal/events"
	"coinboard/internal/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Page is a page of posts plus paging metadata.
type Page struct {
	Posts      []models.Post `json:"posts"`
	PageNumber int           `json:"page"`
	PageSize   int           `json:"size"`
	Total      int64         `json:"total"`
}

// CreateRequest carries a new post.
type CreateRequest struct {
	BoardID uint     `json:"board_id"`
	Title   string   `json:"title"`
	Content string   `json:"content"`
	Tags    []string `json:"tags,omitempty"`
}

// UpdateRequest carries edits to an existing post.
type UpdateRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// Viewer identifies who is reading a post, for view deduplication.
type Viewer struct {
	MemberID  uint
	ClientIP  string
	UserAgent string
}

// Service implements post CRUD, listing, search and deduplicated view
// counting.
type Service struct {
	db      *gorm.DB
	tracker *ViewTracker
	bus     *events.Bus
	logger  *zap.Logger
}

// NewService creates a post service.
func NewService(db *gorm.DB, tracker *ViewTracker, bus *events.Bus, logger *zap.Logger) *Service {
	return &Service{db: db, tracker: tracker, bus: bus, logger: logger}
}

// List returns a page of posts, newest first.
func (s *Service) List(pageNumber, pageSize int) (Page, error) {
	return s.page(s.db.Model(&models.Post{}), pageNumber, pageSize)
}

// ListByBoardSlug returns a page of one board's posts, newest first.
func (s *Service) ListByBoardSlug(slug string, pageNumber, pageSize int) (Page, error) {
	var board models.Board
	err := s.db.Where("slug = ?", slug).First(&board).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Page{}, apperr.NotFound("board not found: %s", slug)
	}
	if err != nil {
		return Page{}, err
	}
	return s.page(s.db.Model(&models.Post{}).Where("board_id = ?", board.ID), pageNumber, pageSize)
}

// SearchFilter narrows a search beyond the text query. Zero values leave the
// corresponding dimension unfiltered.
type SearchFilter struct {
	BoardID  uint
	From     *time.Time
	To       *time.Time
	MinViews *int64
}

func (f SearchFilter) empty() bool {
	return f.BoardID == 0 && f.From == nil && f.To == nil && f.MinViews == nil
}

// Search returns a page of posts whose title or content matches the query,
// narrowed by the filter. A blank query is allowed when at least one filter
// is set.
func (s *Service) Search(query string, filter SearchFilter, pageNumber, pageSize int) (Page, error) {
	query = strings.TrimSpace(query)
	if query == "" && filter.empty() {
		return Page{}, apperr.InvalidInput("search needs a query or at least one filter")
	}
	q := s.db.Model(&models.Post{})
	if query != "" {
		pattern := "%" + query + "%"
		q = q.Where("title LIKE ? OR content LIKE ?", pattern, pattern)
	}
	if filter.BoardID != 0 {
		q = q.Where("board_id = ?", filter.BoardID)
	}
	if filter.From != nil {
		q = q.Where("created_at >= ?", *filter.From)
	}
	if filter.To != nil {
		q = q.Where("created_at <= ?", *filter.To)
	}
	if filter.MinViews != nil {
		q = q.Where("view_count >= ?", *filter.MinViews)
	}
	return s.page(q, pageNumber, pageSize)
}

// Get returns a post without touching its view count.
func (s *Service) Get(id uint) (models.Post, error) {
	return s.find(id)
}

// Read returns a post, incrementing its view count once per viewer within
// the dedup window.
func (s *Service) Read(id uint, viewer Viewer) (models.Post, error) {
	post, err := s.find(id)
	if err != nil {
		return models.Post{}, err
	}
	if s.tracker.ShouldCountView(post.ID, viewer.MemberID, viewer.ClientIP, viewer.UserAgent) {
		if err := s.db.Model(&post).UpdateColumn("view_count", gorm.Expr("view_count + 1")).Error; err != nil {
			s.logger.Error("Failed to increment view count", zap.Uint("post_id", post.ID), zap.Error(err))
		} else {
			post.ViewCount++
		}
	}
	return post, nil
}

// Create stores a new post and publishes a PostCreated event.
func (s *Service) Create(authorID uint, req CreateRequest) (models.Post, error) {
	if strings.TrimSpace(req.Title) == "" || strings.TrimSpace(req.Content) == "" {
		return models.Post{}, apperr.InvalidInput("title and content are required")
	}
	var board models.Board
	err := s.db.First(&board, req.BoardID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Post{}, apperr.NotFound("board not found: %d", req.BoardID)
	}
	if err != nil {
		return models.Post{}, err
	}

	post := models.Post{
		AuthorID: authorID,
		BoardID:  board.ID,
		Title:    strings.TrimSpace(req.Title),
		Content:  req.Content,
	}
	if err := s.db.Create(&post).Error; err != nil {
		return models.Post{}, err
	}
	saved, err := s.find(post.ID)
	if err != nil {
		return models.Post{}, err
	}
	s.bus.Publish(events.PostCreated{Post: saved})
	return saved, nil
}

// Update edits a post; only the author may edit.
func (s *Service) Update(id, memberID uint, req UpdateRequest) (models.Post, error) {
	post, err := s.find(id)
	if err != nil {
		return models.Post{}, err
	}
	if post.AuthorID != memberID {
		return models.Post{}, apperr.Forbidden("not the author of post %d", id)
	}
	updates := map[string]any{
		"title":   strings.TrimSpace(req.Title),
		"content": req.Content,
	}
	if err := s.db.Model(&post).Updates(updates).Error; err != nil {
		return models.Post{}, err
	}
	return s.find(id)
}

// Delete removes a post; only the author may delete.
func (s *Service) Delete(id, memberID uint) error {
	post, err := s.find(id)
	if err != nil {
		return err
	}
	if post.AuthorID != memberID {
		return apperr.Forbidden("not the author of post %d", id)
	}
	return s.db.Delete(&post).Error
}

func (s *Service) find(id uint) (models.Post, error) {
	var post models.Post
	err := s.db.Preload("Author").Preload("Board").First(&post, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Post{}, apperr.NotFound("post not found: %d", id)
	}
	return post, err
}

func (s *Service) page(q *gorm.DB, pageNumber, pageSize int) (Page, error) {
	if pageNumber < 1 {
		pageNumber = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return Page{}, err
	}
	var posts []models.Post
	err := q.Session(&gorm.Session{}).Preload("Author").Preload("Board").
		Order("created_at desc").
		Offset((pageNumber - 1) * pageSize).
		Limit(pageSize).
		Find(&posts).Error
	if err != nil {
		return Page{}, err
	}
	return Page{Posts: posts, PageNumber: pageNumber, PageSize: pageSize, Total: total}, nil
}
