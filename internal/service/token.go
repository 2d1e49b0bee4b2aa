package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bitwise74/account-api/internal/model"
	"bitwise74/account-api/pkg/security"

	"gorm.io/gorm"
)

// ErrTokenInvalid is returned for tokens that don't exist or weren't used
// within the retention window
var ErrTokenInvalid = errors.New("token is invalid or expired")

// DefaultTokenRetention is how long a bearer token survives without being used
const DefaultTokenRetention = 7 * 24 * time.Hour

type TokenService struct {
	DB        *gorm.DB
	Retention time.Duration
	// Clock used for expiry checks, defaults to time.Now
	Now func() time.Time
}

func NewTokenService(db *gorm.DB, retention time.Duration) *TokenService {
	if retention <= 0 {
		retention = DefaultTokenRetention
	}

	return &TokenService{DB: db, Retention: retention}
}

// WithTx returns a copy of the service that runs its queries in tx
func (s *TokenService) WithTx(tx *gorm.DB) *TokenService {
	c := *s
	c.DB = tx
	return &c
}

func (s *TokenService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}

	return time.Now().UTC()
}

func (s *TokenService) cutoff() time.Time {
	return s.now().Add(-s.Retention)
}

// Create issues a new bearer token for userID
func (s *TokenService) Create(ctx context.Context, userID uint) (string, error) {
	token, err := security.NewToken(security.TokenSize)
	if err != nil {
		return "", fmt.Errorf("failed to generate token, %w", err)
	}

	err = s.DB.WithContext(ctx).Create(&model.Token{
		Token:      token,
		UserID:     userID,
		LastUsedAt: s.now(),
	}).Error
	if err != nil {
		return "", fmt.Errorf("failed to store token, %w", err)
	}

	return token, nil
}

// Verify returns the owner of token and pushes its expiry forward. Tokens
// last used before now - Retention are rejected with ErrTokenInvalid.
func (s *TokenService) Verify(ctx context.Context, token string) (*model.User, error) {
	if token == "" {
		return nil, ErrTokenInvalid
	}

	var t model.Token

	err := s.DB.WithContext(ctx).
		Preload("User").
		Where("token = ? AND last_used_at > ?", token, s.cutoff()).
		First(&t).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTokenInvalid
		}

		return nil, fmt.Errorf("failed to look up token, %w", err)
	}

	if t.User == nil {
		return nil, ErrTokenInvalid
	}

	err = s.DB.WithContext(ctx).
		Model(&model.Token{}).
		Where("id = ?", t.ID).
		Update("last_used_at", s.now()).
		Error
	if err != nil {
		return nil, fmt.Errorf("failed to refresh token, %w", err)
	}

	return t.User, nil
}

func (s *TokenService) Delete(ctx context.Context, token string) error {
	err := s.DB.WithContext(ctx).
		Where("token = ?", token).
		Delete(&model.Token{}).
		Error
	if err != nil {
		return fmt.Errorf("failed to delete token, %w", err)
	}

	return nil
}

// DeleteForUser removes every token of a user, logging them out everywhere
func (s *TokenService) DeleteForUser(ctx context.Context, userID uint) error {
	err := s.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&model.Token{}).
		Error
	if err != nil {
		return fmt.Errorf("failed to delete tokens of user, %w", err)
	}

	return nil
}

// Sweep deletes every expired token and returns how many were removed
func (s *TokenService) Sweep(ctx context.Context) (int64, error) {
	res := s.DB.WithContext(ctx).
		Where("last_used_at < ?", s.cutoff()).
		Delete(&model.Token{})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to delete expired tokens, %w", res.Error)
	}

	return res.RowsAffected, nil
}
