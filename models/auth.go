package models

import "time"

// PhoneAuth stores the verification state for one phone number. Only the
// bcrypt hash of the last code is kept; codes expire after a few minutes.
// When Twilio Verify handles delivery and checking, CodeHash stays empty.
type PhoneAuth struct {
	Phone string `gorm:"primaryKey" json:"phone"`

	CodeHash  string     `json:"-"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

func (PhoneAuth) TableName() string {
	return "phone_auths"
}
