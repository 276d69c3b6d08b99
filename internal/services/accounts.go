package services

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/agenthub/agenthub/internal/apperr"
	"github.com/agenthub/agenthub/internal/auth"
	"github.com/agenthub/agenthub/internal/models"
)

// Accounts implements registration, login, token refresh, and profile
// management.
type Accounts struct {
	db     *gorm.DB
	tokens *auth.Tokens
	log    zerolog.Logger
}

// NewAccounts creates the account service.
func NewAccounts(db *gorm.DB, tokens *auth.Tokens, log zerolog.Logger) *Accounts {
	return &Accounts{db: db, tokens: tokens, log: log}
}

// Session is an authenticated user with a fresh token pair.
type Session struct {
	User         models.User `json:"user"`
	Token        string      `json:"token"`
	RefreshToken string      `json:"refreshToken"`
}

// TokenPair is the result of a refresh.
type TokenPair struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refreshToken"`
}

// Register creates a user account and signs it in.
func (s *Accounts) Register(ctx context.Context, email, password, name string) (Session, error) {
	if email == "" || password == "" || name == "" {
		return Session{}, apperr.Validation("MISSING_FIELDS", "Email, password, and name are required")
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return Session{}, err
	}
	if count > 0 {
		return Session{}, apperr.Conflict("USER_EXISTS", "User already exists")
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return Session{}, err
	}

	user := models.User{Email: email, PasswordHash: hash, Name: name}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		return Session{}, err
	}

	return s.session(user)
}

// Login verifies credentials and signs the user in. Absent users and bad
// passwords produce the same error.
func (s *Accounts) Login(ctx context.Context, email, password string) (Session, error) {
	if email == "" || password == "" {
		return Session{}, apperr.Validation("MISSING_FIELDS", "Email and password are required")
	}

	var user models.User
	err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Session{}, apperr.Unauthorized("INVALID_CREDENTIALS", "Invalid credentials")
		}
		return Session{}, err
	}
	if !auth.CheckPassword(password, user.PasswordHash) {
		return Session{}, apperr.Unauthorized("INVALID_CREDENTIALS", "Invalid credentials")
	}

	now := time.Now()
	if err := s.db.WithContext(ctx).Model(&user).Update("last_login_at", now).Error; err != nil {
		return Session{}, err
	}
	user.LastLoginAt = &now

	return s.session(user)
}

// Refresh exchanges a valid refresh token for a new token pair.
func (s *Accounts) Refresh(ctx context.Context, refreshToken string) (TokenPair, error) {
	if refreshToken == "" {
		return TokenPair{}, apperr.Validation("MISSING_TOKEN", "Refresh token is required")
	}

	claims, err := s.tokens.Verify(refreshToken)
	if err != nil {
		return TokenPair{}, apperr.Unauthorized("INVALID_TOKEN", "Invalid or expired token")
	}

	user, err := s.Get(ctx, claims.Subject)
	if err != nil {
		return TokenPair{}, err
	}

	token, err := s.tokens.Sign(user.ID, user.Email)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, err := s.tokens.SignRefresh(user.ID, user.Email)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{Token: token, RefreshToken: refresh}, nil
}

// Get fetches a user by id.
func (s *Accounts) Get(ctx context.Context, id string) (models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.User{}, apperr.NotFound("USER_NOT_FOUND", "User not found")
		}
		return models.User{}, err
	}
	return user, nil
}

// UpdateProfileInput are the mutable profile fields. Nil means leave
// unchanged.
type UpdateProfileInput struct {
	Name      *string `json:"name"`
	AvatarURL *string `json:"avatarUrl"`
}

// UpdateProfile applies a partial update to the caller's own profile.
func (s *Accounts) UpdateProfile(ctx context.Context, id string, input UpdateProfileInput) (models.User, error) {
	user, err := s.Get(ctx, id)
	if err != nil {
		return models.User{}, err
	}

	updates := map[string]any{}
	if input.Name != nil {
		updates["name"] = *input.Name
	}
	if input.AvatarURL != nil {
		updates["avatar_url"] = *input.AvatarURL
	}
	if len(updates) > 0 {
		if err := s.db.WithContext(ctx).Model(&user).Updates(updates).Error; err != nil {
			return models.User{}, err
		}
		return s.Get(ctx, id)
	}
	return user, nil
}

func (s *Accounts) session(user models.User) (Session, error) {
	token, err := s.tokens.Sign(user.ID, user.Email)
	if err != nil {
		return Session{}, err
	}
	refresh, err := s.tokens.SignRefresh(user.ID, user.Email)
	if err != nil {
		return Session{}, err
	}
	return Session{User: user, Token: token, RefreshToken: refresh}, nil
}
