package board

import (
	"errors"
	"strings"

	"coinboard/internal/apperr"
	"coinboard/internal/models"
	"gorm.io/gorm"
)

// Service manages forum boards.
type Service struct {
	db *gorm.DB
}

// NewService creates a board service.
func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// List returns all boards in creation order.
func (s *Service) List() ([]models.Board, error) {
	var boards []models.Board
	err := s.db.Order("id asc").Find(&boards).Error
	return boards, err
}

// GetBySlug returns the board with the given slug.
func (s *Service) GetBySlug(slug string) (models.Board, error) {
	var board models.Board
	err := s.db.Where("slug = ?", slug).First(&board).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Board{}, apperr.NotFound("board not found: %s", slug)
	}
	return board, err
}

// Create adds a board with a unique slug.
func (s *Service) Create(name, description, slug, boardType string) (models.Board, error) {
	name = strings.TrimSpace(name)
	slug = strings.ToLower(strings.TrimSpace(slug))
	if name == "" || slug == "" {
		return models.Board{}, apperr.InvalidInput("board name and slug are required")
	}
	var existing int64
	if err := s.db.Model(&models.Board{}).Where("slug = ?", slug).Count(&existing).Error; err != nil {
		return models.Board{}, err
	}
	if existing > 0 {
		return models.Board{}, apperr.Duplicate("board slug already in use: %s", slug)
	}
	if boardType == "" {
		boardType = "GENERAL"
	}
	board := models.Board{Name: name, Description: strings.TrimSpace(description), Slug: slug, Type: boardType}
	if err := s.db.Create(&board).Error; err != nil {
		return models.Board{}, err
	}
	return board, nil
}
