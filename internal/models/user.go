package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is a registered account. The password hash is never serialized.
type User struct {
	ID              string     `gorm:"primaryKey;size:36" json:"id"`
	Email           string     `gorm:"uniqueIndex;size:255;not null" json:"email"`
	PasswordHash    string     `gorm:"size:255;not null" json:"-"`
	Name            string     `gorm:"size:255;not null" json:"name"`
	AvatarURL       string     `gorm:"size:512" json:"avatarUrl,omitempty"`
	IsEmailVerified bool       `gorm:"default:false" json:"isEmailVerified"`
	LastLoginAt     *time.Time `json:"lastLoginAt,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`

	Agents []Agent `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

// TableName sets the table name.
func (User) TableName() string {
	return "users"
}

// BeforeCreate assigns an ID when one was not provided.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	return nil
}
