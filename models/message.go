package models

import "time"

// Message is one entry in an event inbox: organizer announcements, system
// notices when participants are added or removed, and participant pictures.
type Message struct {
	ID      string `gorm:"primaryKey;type:uuid" json:"id"`
	EventID uint   `gorm:"index;not null" json:"event_id"`

	// UserID is nil for system-generated notices.
	UserID *uint `gorm:"index" json:"user_id,omitempty"`

	Category MessageCategory `gorm:"type:varchar(16);not null" json:"category"`
	Text     string          `gorm:"size:3000" json:"text"`

	// PictureURL is set only for picture messages.
	PictureURL *string `json:"picture_url,omitempty"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}
