package vote

import (
	"errors"

	"coinboard/internal/apperr"
	"coinboard/internal/events"
	"coinboard/internal/models"
	"gorm.io/gorm"
)

// Summary is the vote state of one target, including the caller's own vote
// (nil when the caller is a guest or has not voted).
type Summary struct {
	TargetID   uint   `json:"target_id"`
	TargetType string `json:"target_type"`
	UpVotes    int64  `json:"up_votes"`
	DownVotes  int64  `json:"down_votes"`
	Score      int64  `json:"score"`
	UserVote   *int   `json:"user_vote,omitempty"`
}

// Service implements toggling up/down votes on posts and comments. Voting the
// same value twice removes the vote; a different value updates it in place.
type Service struct {
	db  *gorm.DB
	bus *events.Bus
}

// NewService creates a vote service.
func NewService(db *gorm.DB, bus *events.Bus) *Service {
	return &Service{db: db, bus: bus}
}

// VotePost applies a member's vote to a post.
func (s *Service) VotePost(postID, memberID uint, value int) (Summary, error) {
	var post models.Post
	err := s.db.Preload("Author").First(&post, postID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Summary{}, apperr.NotFound("post not found: %d", postID)
	}
	if err != nil {
		return Summary{}, err
	}
	return s.apply(memberID, post.ID, models.VoteTargetPost, value, &post, nil)
}

// VoteComment applies a member's vote to a comment.
func (s *Service) VoteComment(commentID, memberID uint, value int) (Summary, error) {
	var comment models.Comment
	err := s.db.Preload("Author").First(&comment, commentID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Summary{}, apperr.NotFound("comment not found: %d", commentID)
	}
	if err != nil {
		return Summary{}, err
	}
	return s.apply(memberID, comment.ID, models.VoteTargetComment, value, nil, &comment)
}

// PostSummary returns the vote state of a post. memberID 0 means guest.
func (s *Service) PostSummary(postID, memberID uint) (Summary, error) {
	var count int64
	if err := s.db.Model(&models.Post{}).Where("id = ?", postID).Count(&count).Error; err != nil {
		return Summary{}, err
	}
	if count == 0 {
		return Summary{}, apperr.NotFound("post not found: %d", postID)
	}
	return s.summarize(postID, models.VoteTargetPost, memberID, nil)
}

// CommentSummary returns the vote state of a comment. memberID 0 means guest.
func (s *Service) CommentSummary(commentID, memberID uint) (Summary, error) {
	var count int64
	if err := s.db.Model(&models.Comment{}).Where("id = ?", commentID).Count(&count).Error; err != nil {
		return Summary{}, err
	}
	if count == 0 {
		return Summary{}, apperr.NotFound("comment not found: %d", commentID)
	}
	return s.summarize(commentID, models.VoteTargetComment, memberID, nil)
}

func (s *Service) apply(memberID, targetID uint, targetType string, value int, post *models.Post, comment *models.Comment) (Summary, error) {
	if value != 1 && value != -1 {
		return Summary{}, apperr.InvalidInput("vote value must be 1 or -1")
	}

	var existing models.Vote
	err := s.db.Where("member_id = ? AND target_id = ? AND target_type = ?", memberID, targetID, targetType).
		First(&existing).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		vote := models.Vote{MemberID: memberID, TargetID: targetID, TargetType: targetType, Value: value}
		if err := s.db.Create(&vote).Error; err != nil {
			return Summary{}, err
		}
		s.bus.Publish(events.VoteCreated{Vote: vote, Post: post, Comment: comment})
		return s.summarize(targetID, targetType, memberID, &value)
	case err != nil:
		return Summary{}, err
	case existing.Value == value:
		// Same value again removes the vote.
		if err := s.db.Delete(&existing).Error; err != nil {
			return Summary{}, err
		}
		return s.summarize(targetID, targetType, memberID, nil)
	default:
		if err := s.db.Model(&existing).Update("value", value).Error; err != nil {
			return Summary{}, err
		}
		return s.summarize(targetID, targetType, memberID, &value)
	}
}

func (s *Service) summarize(targetID uint, targetType string, memberID uint, overrideUserVote *int) (Summary, error) {
	up, err := s.countVotes(targetID, targetType, 1)
	if err != nil {
		return Summary{}, err
	}
	down, err := s.countVotes(targetID, targetType, -1)
	if err != nil {
		return Summary{}, err
	}
	userVote := overrideUserVote
	if userVote == nil && memberID != 0 {
		var vote models.Vote
		err := s.db.Where("member_id = ? AND target_id = ? AND target_type = ?", memberID, targetID, targetType).
			First(&vote).Error
		if err == nil {
			userVote = &vote.Value
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return Summary{}, err
		}
	}
	return Summary{
		TargetID:   targetID,
		TargetType: targetType,
		UpVotes:    up,
		DownVotes:  down,
		Score:      up - down,
		UserVote:   userVote,
	}, nil
}

func (s *Service) countVotes(targetID uint, targetType string, value int) (int64, error) {
	var count int64
	err := s.db.Model(&models.Vote{}).
		Where("target_id = ? AND target_type = ? AND value = ?", targetID, targetType, value).
		Count(&count).Error
	return count, err
}
