package activity

import (
	"errors"

	"coinboard/internal/apperr"
	"coinboard/internal/models"
	"gorm.io/gorm"
)

// Experience awards per action.
const (
	ExperiencePost           = 10
	ExperienceComment        = 5
	ExperienceUpvoteReceived = 2
)

// Summary is a member's activity and level for display.
type Summary struct {
	MemberID              uint   `json:"member_id"`
	Nickname              string `json:"nickname"`
	Level                 int    `json:"level"`
	Tier                  string `json:"tier"`
	ExperiencePoints      int64  `json:"experience_points"`
	ExperienceToNextLevel int64  `json:"experience_to_next_level"`
	TotalPosts            int64  `json:"total_posts"`
	TotalComments         int64  `json:"total_comments"`
	TotalUpvotes          int64  `json:"total_upvotes"`
	TotalDownvotes        int64  `json:"total_downvotes"`
}

// Service tracks member activity counters and experience-based levels.
type Service struct {
	db *gorm.DB
}

// NewService creates an activity service.
func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// Get returns a member's activity summary, creating the zero row on first
// access.
func (s *Service) Get(memberID uint) (Summary, error) {
	var member models.Member
	err := s.db.First(&member, memberID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Summary{}, apperr.NotFound("member not found: %d", memberID)
	}
	if err != nil {
		return Summary{}, err
	}
	activity, err := s.getOrCreate(memberID)
	if err != nil {
		return Summary{}, err
	}
	return summarize(activity, member.Nickname), nil
}

// Rankings returns the top members by experience points.
func (s *Service) Rankings(limit int) ([]Summary, error) {
	if limit < 1 || limit > 100 {
		limit = 10
	}
	var activities []models.MemberActivity
	err := s.db.Order("experience_points desc, member_id asc").Limit(limit).Find(&activities).Error
	if err != nil {
		return nil, err
	}
	out := make([]Summary, 0, len(activities))
	for _, a := range activities {
		var member models.Member
		if err := s.db.First(&member, a.MemberID).Error; err != nil {
			return nil, err
		}
		out = append(out, summarize(a, member.Nickname))
	}
	return out, nil
}

// RecordPost credits a member for publishing a post.
func (s *Service) RecordPost(memberID uint) error {
	return s.update(memberID, func(a *models.MemberActivity) {
		a.TotalPosts++
		a.AddExperience(ExperiencePost)
	})
}

// RecordComment credits a member for writing a comment.
func (s *Service) RecordComment(memberID uint) error {
	return s.update(memberID, func(a *models.MemberActivity) {
		a.TotalComments++
		a.AddExperience(ExperienceComment)
	})
}

// RecordUpvoteReceived credits a member whose content was upvoted.
func (s *Service) RecordUpvoteReceived(memberID uint) error {
	return s.update(memberID, func(a *models.MemberActivity) {
		a.TotalUpvotes++
		a.AddExperience(ExperienceUpvoteReceived)
	})
}

// RecordDownvoteReceived counts a downvote against a member's content. No
// experience change.
func (s *Service) RecordDownvoteReceived(memberID uint) error {
	return s.update(memberID, func(a *models.MemberActivity) {
		a.TotalDownvotes++
	})
}

func (s *Service) update(memberID uint, apply func(*models.MemberActivity)) error {
	activity, err := s.getOrCreate(memberID)
	if err != nil {
		return err
	}
	apply(&activity)
	return s.db.Save(&activity).Error
}

func (s *Service) getOrCreate(memberID uint) (models.MemberActivity, error) {
	activity := models.MemberActivity{MemberID: memberID, Level: 1}
	err := s.db.Where("member_id = ?", memberID).FirstOrCreate(&activity).Error
	return activity, err
}

func summarize(a models.MemberActivity, nickname string) Summary {
	return Summary{
		MemberID:              a.MemberID,
		Nickname:              nickname,
		Level:                 a.Level,
		Tier:                  a.LevelTier(),
		ExperiencePoints:      a.ExperiencePoints,
		ExperienceToNextLevel: a.ExperienceToNextLevel(),
		TotalPosts:            a.TotalPosts,
		TotalComments:         a.TotalComments,
		TotalUpvotes:          a.TotalUpvotes,
		TotalDownvotes:        a.TotalDownvotes,
	}
}
