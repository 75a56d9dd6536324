package bookmark

import (
	"errors"

	"coinboard/internal/apperr"
	"coinboard/internal/models"
	"gorm.io/gorm"
)

// Service manages per-member post bookmarks.
type Service struct {
	db *gorm.DB
}

// NewService creates a bookmark service.
func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// Add bookmarks a post for a member. Adding an existing bookmark is a no-op.
func (s *Service) Add(memberID, postID uint) error {
	var post models.Post
	err := s.db.First(&post, postID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound("post not found: %d", postID)
	}
	if err != nil {
		return err
	}
	bookmark := models.Bookmark{MemberID: memberID, PostID: postID}
	return s.db.Where("member_id = ? AND post_id = ?", memberID, postID).
		FirstOrCreate(&bookmark).Error
}

// Remove deletes a member's bookmark on a post.
func (s *Service) Remove(memberID, postID uint) error {
	var bookmark models.Bookmark
	err := s.db.Where("member_id = ? AND post_id = ?", memberID, postID).First(&bookmark).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound("bookmark not found for post %d", postID)
	}
	if err != nil {
		return err
	}
	return s.db.Delete(&bookmark).Error
}

// IsBookmarked reports whether a member bookmarked a post.
func (s *Service) IsBookmarked(memberID, postID uint) (bool, error) {
	var count int64
	err := s.db.Model(&models.Bookmark{}).
		Where("member_id = ? AND post_id = ?", memberID, postID).
		Count(&count).Error
	return count > 0, err
}

// List returns a member's bookmarks, newest first, with posts preloaded.
func (s *Service) List(memberID uint) ([]models.Bookmark, error) {
	var bookmarks []models.Bookmark
	err := s.db.Preload("Post").Preload("Post.Author").Preload("Post.Board").
		Where("member_id = ?", memberID).
		Order("created_at desc").
		Find(&bookmarks).Error
	return bookmarks, err
}

// CountByPost returns how many members bookmarked a post.
func (s *Service) CountByPost(postID uint) (int64, error) {
	var count int64
	err := s.db.Model(&models.Bookmark{}).Where("post_id = ?", postID).Count(&count).Error
	return count, err
}
