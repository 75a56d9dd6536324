package tag

import (
	"errors"
	"strings"

	"coinboard/internal/apperr"
	"coinboard/internal/models"
	"gorm.io/gorm"
)

// MaxTagsPerPost bounds how many tags one post may carry.
const MaxTagsPerPost = 5

// Page is a page of posts for one tag.
type Page struct {
	Tag        string        `json:"tag"`
	Posts      []models.Post `json:"posts"`
	PageNumber int           `json:"page"`
	PageSize   int           `json:"size"`
	Total      int64         `json:"total"`
}

// Service manages post tags. Tag names are normalized to trimmed lowercase
// and usage counts track how many posts carry each tag.
type Service struct {
	db *gorm.DB
}

// NewService creates a tag service.
func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// SetPostTags replaces a post's tags with the given names, adjusting usage
// counts on both sides of the change.
func (s *Service) SetPostTags(postID uint, names []string) ([]models.Tag, error) {
	normalized := Normalize(names)
	if len(normalized) > MaxTagsPerPost {
		return nil, apperr.InvalidInput("a post may carry at most %d tags", MaxTagsPerPost)
	}

	var current []models.PostTag
	if err := s.db.Preload("Tag").Where("post_id = ?", postID).Find(&current).Error; err != nil {
		return nil, err
	}

	wanted := make(map[string]bool, len(normalized))
	for _, name := range normalized {
		wanted[name] = true
	}

	for _, link := range current {
		if wanted[link.Tag.Name] {
			delete(wanted, link.Tag.Name)
			continue
		}
		if err := s.db.Delete(&link).Error; err != nil {
			return nil, err
		}
		err := s.db.Model(&models.Tag{}).Where("id = ? AND usage_count > 0", link.TagID).
			UpdateColumn("usage_count", gorm.Expr("usage_count - 1")).Error
		if err != nil {
			return nil, err
		}
	}

	for _, name := range normalized {
		if !wanted[name] {
			continue
		}
		tag, err := s.getOrCreate(name)
		if err != nil {
			return nil, err
		}
		if err := s.db.Create(&models.PostTag{PostID: postID, TagID: tag.ID}).Error; err != nil {
			return nil, err
		}
		err = s.db.Model(&models.Tag{}).Where("id = ?", tag.ID).
			UpdateColumn("usage_count", gorm.Expr("usage_count + 1")).Error
		if err != nil {
			return nil, err
		}
	}

	return s.PostTags(postID)
}

// PostTags returns a post's tags in name order.
func (s *Service) PostTags(postID uint) ([]models.Tag, error) {
	var tags []models.Tag
	err := s.db.Model(&models.Tag{}).
		Joins("JOIN post_tags ON post_tags.tag_id = tags.id").
		Where("post_tags.post_id = ?", postID).
		Order("tags.name asc").
		Find(&tags).Error
	return tags, err
}

// Popular returns the most used tags.
func (s *Service) Popular(limit int) ([]models.Tag, error) {
	if limit < 1 || limit > 100 {
		limit = 10
	}
	var tags []models.Tag
	err := s.db.Where("usage_count > 0").
		Order("usage_count desc, name asc").
		Limit(limit).
		Find(&tags).Error
	return tags, err
}

// PostsByTag returns a page of posts carrying the named tag, newest first.
func (s *Service) PostsByTag(name string, pageNumber, pageSize int) (Page, error) {
	name = normalizeOne(name)
	if name == "" {
		return Page{}, apperr.InvalidInput("tag name must not be blank")
	}
	if pageNumber < 1 {
		pageNumber = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	var tag models.Tag
	err := s.db.Where("name = ?", name).First(&tag).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Page{Tag: name, Posts: []models.Post{}, PageNumber: pageNumber, PageSize: pageSize}, nil
	}
	if err != nil {
		return Page{}, err
	}

	q := s.db.Model(&models.Post{}).
		Joins("JOIN post_tags ON post_tags.post_id = posts.id").
		Where("post_tags.tag_id = ?", tag.ID)
	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return Page{}, err
	}
	var posts []models.Post
	err = q.Session(&gorm.Session{}).Preload("Author").Preload("Board").
		Order("posts.created_at desc").
		Offset((pageNumber - 1) * pageSize).
		Limit(pageSize).
		Find(&posts).Error
	if err != nil {
		return Page{}, err
	}
	return Page{Tag: name, Posts: posts, PageNumber: pageNumber, PageSize: pageSize, Total: total}, nil
}

// Normalize lowercases, trims and dedupes tag names, dropping blanks.
func Normalize(names []string) []string {
	seen := make(map[string]bool, len(names))
	out := make([]string, 0, len(names))
	for _, name := range names {
		name = normalizeOne(name)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		out = append(out, name)
	}
	return out
}

func normalizeOne(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func (s *Service) getOrCreate(name string) (models.Tag, error) {
	tag := models.Tag{Name: name}
	err := s.db.Where("name = ?", name).FirstOrCreate(&tag).Error
	return tag, err
}
