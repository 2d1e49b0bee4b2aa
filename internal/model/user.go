// Package model defines database models
package model

import "time"

type User struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	Username     string `gorm:"not null" json:"username"`
	Email        string `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string `gorm:"not null" json:"-"`

	// New accounts stay inactive until the activation token is used
	Inactive           bool    `gorm:"not null" json:"-"`
	ActivationToken    *string `gorm:"uniqueIndex" json:"-"`
	PasswordResetToken *string `gorm:"uniqueIndex" json:"-"`

	// Stored file name of the profile image, not a path
	Image *string `json:"image"`

	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

// UserView is the public representation of a user
type UserView struct {
	ID       uint    `json:"id"`
	Username string  `json:"username"`
	Email    string  `json:"email"`
	Image    *string `json:"image"`
}

func (u *User) View() UserView {
	return UserView{
		ID:       u.ID,
		Username: u.Username,
		Email:    u.Email,
		Image:    u.Image,
	}
}

type Page struct {
	Content    []UserView `json:"content"`
	Page       int        `json:"page"`
	Size       int        `json:"size"`
	TotalPages int        `json:"totalPages"`
}
