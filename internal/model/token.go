package model

import "time"

// Token is an opaque bearer token handed out on login. It stays valid as long
// as it keeps getting used within the retention window.
type Token struct {
	ID         uint      `gorm:"primaryKey"`
	Token      string    `gorm:"uniqueIndex;not null"`
	UserID     uint      `gorm:"index;not null"`
	User       *User     `gorm:"constraint:OnDelete:CASCADE"`
	LastUsedAt time.Time `gorm:"index;not null"`
}

// Session is what a successful login returns
type Session struct {
	ID       uint    `json:"id"`
	Username string  `json:"username"`
	Image    *string `json:"image"`
	Token    string  `json:"token"`
}
