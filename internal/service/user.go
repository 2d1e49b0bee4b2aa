package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"bitwise74/account-api/internal/model"
	"bitwise74/account-api/pkg/httperr"
	"bitwise74/account-api/pkg/security"
	"bitwise74/account-api/pkg/validators"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	msgEmailInUse      = "E-mail in use"
	msgMailFailure     = "E-mail Failure"
	msgUserNotFound    = "User not found"
	msgBadCredentials  = "Incorrect credentials"
	msgInactive        = "Account is inactive"
	msgInvalidActToken = "This account is either active or the token is invalid"
	msgEmailNotFound   = "E-mail not found"
	msgResetForbidden  = "You are not authorized to update your password. Please follow the password reset steps again."
)

type UserService struct {
	DB     *gorm.DB
	Argon  *security.ArgonHash
	Tokens *TokenService
	Mailer Mailer
	Images ImageStore
}

type RegisterInput struct {
	Username string
	Email    string
	Password string
}

type UpdateInput struct {
	Username string
	// Decoded image, nil keeps the current one
	Image     []byte
	ImageType string
}

func activeUsers(excludeID uint) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		db = db.Where("inactive = ?", false)
		if excludeID != 0 {
			db = db.Where("id <> ?", excludeID)
		}

		return db
	}
}

func (s *UserService) EmailInUse(ctx context.Context, email string) (bool, error) {
	var n int64

	err := s.DB.WithContext(ctx).
		Model(&model.User{}).
		Where("email = ?", email).
		Count(&n).
		Error
	if err != nil {
		return false, fmt.Errorf("failed to check if email is registered, %w", err)
	}

	return n > 0, nil
}

// Register creates an inactive account and mails its activation token. If
// the mail can't be sent the account isn't created.
func (s *UserService) Register(ctx context.Context, in RegisterInput) error {
	hash, err := s.Argon.GenerateFromPassword(in.Password)
	if err != nil {
		return fmt.Errorf("failed to hash password, %w", err)
	}

	token, err := security.NewToken(security.TokenSize)
	if err != nil {
		return fmt.Errorf("failed to generate activation token, %w", err)
	}

	user := model.User{
		Username:        in.Username,
		Email:           in.Email,
		PasswordHash:    hash,
		Inactive:        true,
		ActivationToken: &token,
	}

	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&user).Error; err != nil {
			// Lost a race against another registration with the same email
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return httperr.Validation(map[string]string{"email": msgEmailInUse})
			}

			return fmt.Errorf("failed to create user, %w", err)
		}

		if err := s.Mailer.SendAccountActivation(user.Email, token); err != nil {
			return httperr.BadGateway(msgMailFailure, err)
		}

		return nil
	})
}

func (s *UserService) Activate(ctx context.Context, token string) error {
	if token == "" {
		return httperr.BadRequest(msgInvalidActToken)
	}

	res := s.DB.WithContext(ctx).
		Model(&model.User{}).
		Where("activation_token = ?", token).
		Updates(map[string]any{
			"inactive":         false,
			"activation_token": nil,
		})
	if res.Error != nil {
		return fmt.Errorf("failed to activate user, %w", res.Error)
	}

	if res.RowsAffected == 0 {
		return httperr.BadRequest(msgInvalidActToken)
	}

	return nil
}

// List returns one page of active users ordered by id. excludeID is left out
// of the listing, 0 excludes nobody.
func (s *UserService) List(ctx context.Context, page, size int, excludeID uint) (*model.Page, error) {
	var count int64

	err := s.DB.WithContext(ctx).
		Model(&model.User{}).
		Scopes(activeUsers(excludeID)).
		Count(&count).
		Error
	if err != nil {
		return nil, fmt.Errorf("failed to count users, %w", err)
	}

	var users []model.User

	err = s.DB.WithContext(ctx).
		Scopes(activeUsers(excludeID)).
		Order("id").
		Limit(size).
		Offset(page * size).
		Find(&users).
		Error
	if err != nil {
		return nil, fmt.Errorf("failed to list users, %w", err)
	}

	content := make([]model.UserView, 0, len(users))
	for i := range users {
		content = append(content, users[i].View())
	}

	return &model.Page{
		Content:    content,
		Page:       page,
		Size:       size,
		TotalPages: int(math.Ceil(float64(count) / float64(size))),
	}, nil
}

func (s *UserService) Get(ctx context.Context, id uint) (*model.User, error) {
	var user model.User

	err := s.DB.WithContext(ctx).
		Scopes(activeUsers(0)).
		First(&user, id).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, httperr.NotFound(msgUserNotFound)
		}

		return nil, fmt.Errorf("failed to fetch user, %w", err)
	}

	return &user, nil
}

// Update changes the username and, when given, swaps the profile image. The
// previous image file is removed once the row points at the new one.
func (s *UserService) Update(ctx context.Context, id uint, in UpdateInput) (*model.User, error) {
	var user model.User

	err := s.DB.WithContext(ctx).First(&user, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, httperr.NotFound(msgUserNotFound)
		}

		return nil, fmt.Errorf("failed to fetch user, %w", err)
	}

	old := user.Image
	user.Username = in.Username

	if in.Image != nil {
		name, err := s.Images.Save(ctx, in.Image, in.ImageType)
		if err != nil {
			return nil, err
		}

		user.Image = &name
	}

	err = s.DB.WithContext(ctx).
		Model(&user).
		Updates(map[string]any{
			"username": user.Username,
			"image":    user.Image,
		}).
		Error
	if err != nil {
		if in.Image != nil {
			s.removeImage(ctx, *user.Image)
		}

		return nil, fmt.Errorf("failed to update user, %w", err)
	}

	if in.Image != nil && old != nil {
		s.removeImage(ctx, *old)
	}

	return &user, nil
}

// Delete removes the account, its tokens go with it through the foreign key
func (s *UserService) Delete(ctx context.Context, id uint) error {
	var user model.User

	err := s.DB.WithContext(ctx).First(&user, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return httperr.NotFound(msgUserNotFound)
		}

		return fmt.Errorf("failed to fetch user, %w", err)
	}

	if err := s.DB.WithContext(ctx).Delete(&user).Error; err != nil {
		return fmt.Errorf("failed to delete user, %w", err)
	}

	if user.Image != nil {
		s.removeImage(ctx, *user.Image)
	}

	return nil
}

func (s *UserService) Authenticate(ctx context.Context, email, password string) (*model.Session, error) {
	var user model.User

	err := s.DB.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, httperr.Unauthorized(msgBadCredentials)
		}

		return nil, fmt.Errorf("failed to fetch user, %w", err)
	}

	ok, err := s.Argon.VerifyPasswd(password, user.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("failed to verify password, %w", err)
	}

	if !ok {
		return nil, httperr.Unauthorized(msgBadCredentials)
	}

	if user.Inactive {
		return nil, httperr.Forbidden(msgInactive)
	}

	token, err := s.Tokens.Create(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	return &model.Session{
		ID:       user.ID,
		Username: user.Username,
		Image:    user.Image,
		Token:    token,
	}, nil
}

func (s *UserService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}

	return s.Tokens.Delete(ctx, token)
}

// RequestPasswordReset stores a fresh reset token on the account and mails it
func (s *UserService) RequestPasswordReset(ctx context.Context, email string) error {
	var user model.User

	err := s.DB.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return httperr.NotFound(msgEmailNotFound)
		}

		return fmt.Errorf("failed to fetch user, %w", err)
	}

	token, err := security.NewToken(security.TokenSize)
	if err != nil {
		return fmt.Errorf("failed to generate reset token, %w", err)
	}

	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&user).Update("password_reset_token", token).Error
		if err != nil {
			return fmt.Errorf("failed to store reset token, %w", err)
		}

		if err := s.Mailer.SendPasswordReset(user.Email, token); err != nil {
			return httperr.BadGateway(msgMailFailure, err)
		}

		return nil
	})
}

// ResetPassword sets a new password for the owner of a reset token. The
// token is checked before the password. A successful reset also activates
// the account and logs it out everywhere.
func (s *UserService) ResetPassword(ctx context.Context, token, password string) error {
	if token == "" {
		return httperr.Forbidden(msgResetForbidden)
	}

	var user model.User

	err := s.DB.WithContext(ctx).Where("password_reset_token = ?", token).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return httperr.Forbidden(msgResetForbidden)
		}

		return fmt.Errorf("failed to fetch user, %w", err)
	}

	if err := validators.PasswordValidator(password); err != nil {
		return httperr.Validation(map[string]string{"password": err.Error()})
	}

	hash, err := s.Argon.GenerateFromPassword(password)
	if err != nil {
		return fmt.Errorf("failed to hash password, %w", err)
	}

	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&user).
			Updates(map[string]any{
				"password_hash":        hash,
				"password_reset_token": nil,
				"inactive":             false,
				"activation_token":     nil,
			}).
			Error
		if err != nil {
			return fmt.Errorf("failed to update password, %w", err)
		}

		return s.Tokens.WithTx(tx).DeleteForUser(ctx, user.ID)
	})
}

// PurgeInactive deletes accounts that were never activated and were created
// before cutoff
func (s *UserService) PurgeInactive(ctx context.Context, cutoff time.Time) (int64, error) {
	var users []model.User

	err := s.DB.WithContext(ctx).
		Where("inactive = ? AND created_at < ?", true, cutoff.UTC()).
		Find(&users).
		Error
	if err != nil {
		return 0, fmt.Errorf("failed to query inactive users, %w", err)
	}

	if len(users) == 0 {
		return 0, nil
	}

	ids := make([]uint, len(users))
	for i, u := range users {
		ids[i] = u.ID
	}

	res := s.DB.WithContext(ctx).Where("id IN ?", ids).Delete(&model.User{})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to delete inactive users, %w", res.Error)
	}

	for _, u := range users {
		if u.Image != nil {
			s.removeImage(ctx, *u.Image)
		}
	}

	return res.RowsAffected, nil
}

// Image removal never fails the request, a leftover file is only logged
func (s *UserService) removeImage(ctx context.Context, name string) {
	if err := s.Images.Delete(ctx, name); err != nil {
		zap.L().Warn("Failed to remove profile image", zap.String("image", name), zap.Error(err))
	}
}
