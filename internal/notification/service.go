package notification

import (
	"errors"
	"fmt"

	"coinboard/internal/apperr"
	"coinboard/internal/cache"
	"coinboard/internal/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Page is a page of notifications plus paging metadata.
type Page struct {
	Notifications []models.Notification `json:"notifications"`
	PageNumber    int                   `json:"page"`
	PageSize      int                   `json:"size"`
	Total         int64                 `json:"total"`
}

// Service stores and delivers member notifications. Unread counts are cached
// and evicted on any write that could change them.
type Service struct {
	db          *gorm.DB
	unreadCount *cache.Cache
	logger      *zap.Logger
}

// NewService creates a notification service.
func NewService(db *gorm.DB, unreadCount *cache.Cache, logger *zap.Logger) *Service {
	return &Service{db: db, unreadCount: unreadCount, logger: logger}
}

// Notify stores a notification for a member.
func (s *Service) Notify(recipientID uint, notificationType string, targetID uint, message string) error {
	notification := models.Notification{
		RecipientID: recipientID,
		Type:        notificationType,
		TargetID:    targetID,
		Message:     message,
	}
	if err := s.db.Create(&notification).Error; err != nil {
		return err
	}
	s.unreadCount.Evict(countKey(recipientID))
	return nil
}

// List returns a page of a member's notifications, newest first.
func (s *Service) List(memberID uint, pageNumber, pageSize int) (Page, error) {
	if pageNumber < 1 {
		pageNumber = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	q := s.db.Model(&models.Notification{}).Where("recipient_id = ?", memberID)
	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return Page{}, err
	}
	var notifications []models.Notification
	err := q.Session(&gorm.Session{}).
		Order("created_at desc").
		Offset((pageNumber - 1) * pageSize).
		Limit(pageSize).
		Find(&notifications).Error
	if err != nil {
		return Page{}, err
	}
	return Page{Notifications: notifications, PageNumber: pageNumber, PageSize: pageSize, Total: total}, nil
}

// UnreadCount returns the member's unread notification count, cached until
// the next write.
func (s *Service) UnreadCount(memberID uint) (int64, error) {
	v, err := s.unreadCount.GetOrLoad(countKey(memberID), func() (any, error) {
		var count int64
		err := s.db.Model(&models.Notification{}).
			Where("recipient_id = ? AND read = ?", memberID, false).
			Count(&count).Error
		return count, err
	})
	if err != nil {
		return 0, err
	}
	return v.(int64), nil
}

// MarkRead marks one notification read; only its recipient may do so.
func (s *Service) MarkRead(id, memberID uint) error {
	var notification models.Notification
	err := s.db.First(&notification, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound("notification not found: %d", id)
	}
	if err != nil {
		return err
	}
	if notification.RecipientID != memberID {
		return apperr.Forbidden("not the recipient of notification %d", id)
	}
	if notification.Read {
		return nil
	}
	if err := s.db.Model(&notification).Update("read", true).Error; err != nil {
		return err
	}
	s.unreadCount.Evict(countKey(memberID))
	return nil
}

// MarkAllRead marks every unread notification of a member read.
func (s *Service) MarkAllRead(memberID uint) error {
	err := s.db.Model(&models.Notification{}).
		Where("recipient_id = ? AND read = ?", memberID, false).
		Update("read", true).Error
	if err != nil {
		return err
	}
	s.unreadCount.Evict(countKey(memberID))
	return nil
}

func countKey(memberID uint) string {
	return fmt.Sprintf("unread:%d", memberID)
}
