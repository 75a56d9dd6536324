package auth

import (
	"errors"
	"strings"
	"time"

	"coinboard/internal/apperr"
	"coinboard/internal/models"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// RegisterRequest carries a new member registration.
type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Email    string `json:"email"`
	Nickname string `json:"nickname"`
}

// TokenPair is the response to a successful login or refresh.
type TokenPair struct {
	TokenType    string `json:"token_type"`
	AccessToken  string `json:"access_token"`
	ExpiresIn    int64  `json:"expires_in"`
	RefreshToken string `json:"refresh_token"`
}

// Service implements registration, login, refresh rotation and logout.
type Service struct {
	db         *gorm.DB
	tokens     *TokenProvider
	bcryptCost int
	logger     *zap.Logger
	now        func() time.Time
}

// NewService creates an auth service.
func NewService(db *gorm.DB, tokens *TokenProvider, bcryptCost int, logger *zap.Logger) *Service {
	if bcryptCost <= 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &Service{db: db, tokens: tokens, bcryptCost: bcryptCost, logger: logger, now: time.Now}
}

// Register creates a member after checking username, email and nickname are
// unused.
func (s *Service) Register(req RegisterRequest) error {
	username := strings.TrimSpace(req.Username)
	email := strings.TrimSpace(req.Email)
	nickname := strings.TrimSpace(req.Nickname)
	if username == "" || req.Password == "" || email == "" || nickname == "" {
		return apperr.InvalidInput("username, password, email and nickname are required")
	}

	if taken, err := s.exists("username = ?", username); err != nil {
		return err
	} else if taken {
		return apperr.Duplicate("username already in use: %s", username)
	}
	if taken, err := s.exists("email = ?", email); err != nil {
		return err
	} else if taken {
		return apperr.Duplicate("email already registered: %s", email)
	}
	if taken, err := s.exists("nickname = ?", nickname); err != nil {
		return err
	} else if taken {
		return apperr.Duplicate("nickname already in use: %s", nickname)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if err != nil {
		return err
	}
	member := models.Member{
		Username: username,
		Password: string(hash),
		Email:    email,
		Nickname: nickname,
		Role:     models.RoleUser,
	}
	return s.db.Create(&member).Error
}

// Login checks credentials and issues an access/refresh token pair.
func (s *Service) Login(username, password string) (TokenPair, error) {
	var member models.Member
	err := s.db.Where("username = ?", strings.TrimSpace(username)).First(&member).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return TokenPair{}, apperr.Unauthorized("invalid credentials")
		}
		return TokenPair{}, err
	}
	if bcrypt.CompareHashAndPassword([]byte(member.Password), []byte(password)) != nil {
		return TokenPair{}, apperr.Unauthorized("invalid credentials")
	}
	return s.issuePair(&member)
}

// Refresh rotates a refresh token: the presented token is validated, deleted
// and replaced alongside a fresh access token.
func (s *Service) Refresh(refreshToken string) (TokenPair, error) {
	if _, err := s.tokens.Parse(refreshToken); err != nil {
		return TokenPair{}, apperr.Unauthorized("invalid refresh token")
	}
	var stored models.RefreshToken
	err := s.db.Where("token = ?", refreshToken).First(&stored).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return TokenPair{}, apperr.Unauthorized("unknown refresh token")
		}
		return TokenPair{}, err
	}
	if stored.Expired(s.now()) {
		s.db.Delete(&stored)
		return TokenPair{}, apperr.Unauthorized("refresh token expired")
	}
	var member models.Member
	if err := s.db.First(&member, stored.MemberID).Error; err != nil {
		return TokenPair{}, apperr.Unauthorized("member no longer exists")
	}
	if err := s.db.Delete(&stored).Error; err != nil {
		return TokenPair{}, err
	}
	return s.issuePair(&member)
}

// Logout deletes the member's refresh tokens and, when provided, the
// presented token row.
func (s *Service) Logout(memberID uint, refreshToken string) error {
	if memberID != 0 {
		if err := s.db.Where("member_id = ?", memberID).Delete(&models.RefreshToken{}).Error; err != nil {
			return err
		}
	}
	if strings.TrimSpace(refreshToken) != "" {
		if err := s.db.Where("token = ?", refreshToken).Delete(&models.RefreshToken{}).Error; err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) exists(query string, arg interface{}) (bool, error) {
	var count int64
	if err := s.db.Model(&models.Member{}).Where(query, arg).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *Service) issuePair(member *models.Member) (TokenPair, error) {
	accessToken, err := s.tokens.GenerateAccessToken(member.ID, member.Role)
	if err != nil {
		return TokenPair{}, err
	}
	refreshToken, err := s.tokens.GenerateRefreshToken(member.ID)
	if err != nil {
		return TokenPair{}, err
	}
	// The signed refresh JWT is persisted so logout and rotation can revoke it.
	stored := models.RefreshToken{
		MemberID:  member.ID,
		Token:     refreshToken,
		ExpiresAt: s.now().Add(s.tokens.refreshTTL),
	}
	if err := s.db.Create(&stored).Error; err != nil {
		return TokenPair{}, err
	}
	return TokenPair{
		TokenType:    "Bearer",
		AccessToken:  accessToken,
		ExpiresIn:    int64(s.tokens.AccessTokenTTL().Seconds()),
		RefreshToken: refreshToken,
	}, nil
}
