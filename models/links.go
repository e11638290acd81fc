package models

import "time"

// Friendship is the invite record between two users. The composite primary
// key (SenderID, ReceiverID) keeps the direction: who sent the invite decides
// how each side reads the relationship when the encounter matrix is built.
type Friendship struct {
	SenderID   uint `gorm:"primaryKey" json:"sender_id"`
	ReceiverID uint `gorm:"primaryKey" json:"receiver_id"`

	Status FriendshipStatus `gorm:"type:varchar(16);not null" json:"status"`

	// EventID is the most recent event the two users shared when the invite
	// was sent. Invites are only allowed between users who met at an event.
	EventID *uint     `gorm:"index" json:"event_id,omitempty"`
	Date    time.Time `json:"date"`

	Sender   User `gorm:"foreignKey:SenderID;references:ID" json:"-"`
	Receiver User `gorm:"foreignKey:ReceiverID;references:ID" json:"-"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// UserEventLink joins users to events. Status "creator" and "attends" count
// as participation; "pending" is an open join request carrying the request
// text, "denied" and "deleted" are kept for history.
type UserEventLink struct {
	UserID  uint `gorm:"primaryKey" json:"user_id"`
	EventID uint `gorm:"primaryKey" json:"event_id"`

	Status UserEventStatus `gorm:"type:varchar(16);not null" json:"status"`
	Text   *string         `gorm:"size:500" json:"text,omitempty"`

	User  User  `gorm:"foreignKey:UserID;references:ID" json:"-"`
	Event Event `gorm:"foreignKey:EventID;references:ID" json:"-"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}
