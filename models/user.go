package models

import (
	"time"

	"gorm.io/gorm"
)

// User is an account registered by phone number. The phone is the login
// identity (OTP auth); everything else is profile data.
type User struct {
	ID    uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Phone string `gorm:"uniqueIndex;not null" json:"phone"`

	FirstName string  `gorm:"size:20;not null" json:"first_name"`
	LastName  string  `gorm:"size:40;not null" json:"last_name"`
	Bio       *string `gorm:"size:500" json:"bio,omitempty"`
	City      *string `gorm:"size:50" json:"city,omitempty"`

	// Picture is an object key / URL in picture storage.
	Picture string `gorm:"default:'default_user_pic.png'" json:"picture"`

	// BaseScore is the flat rating shown on profiles; per-category
	// standings live in the Score table.
	BaseScore    int       `gorm:"default:1000" json:"score"`
	RegisterDate time.Time `gorm:"autoCreateTime" json:"register_date"`

	EventLinks      []UserEventLink `gorm:"foreignKey:UserID" json:"-"`
	SentInvites     []Friendship    `gorm:"foreignKey:SenderID" json:"-"`
	ReceivedInvites []Friendship    `gorm:"foreignKey:ReceiverID" json:"-"`

	Timestamps
}

// UserSummary is the public shape exposed by search and participant listings.
type UserSummary struct {
	ID        uint   `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Picture   string `json:"picture"`
}

func (u *User) Summary() UserSummary {
	return UserSummary{
		ID:        u.ID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Picture:   u.Picture,
	}
}

// Timestamps adds GORM auto-times
type Timestamps struct {
	CreatedAt time.Time      `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time      `json:"updated_at" gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}
