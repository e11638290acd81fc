package models

import "time"

// RankingParameters is one user's rating state for one event in one
// category: performance estimate P (unbounded) and confidence weight W
// (positive, grows with every observed event). Rows are written by the
// rating engine and never deleted implicitly.
type RankingParameters struct {
	UserID   uint          `gorm:"primaryKey" json:"user_id"`
	EventID  uint          `gorm:"primaryKey" json:"event_id"`
	Category EventCategory `gorm:"primaryKey;type:varchar(16)" json:"category"`

	P float64 `gorm:"not null" json:"p"`
	W float64 `gorm:"not null" json:"w"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

func (RankingParameters) TableName() string {
	return "ranking_parameters"
}

// RankingInfo holds the percentile markers of one category's performance
// distribution. The rating engine anchors new participants on Median and
// scales social signals by the P20-P80 spread. Ordering P20 <= P40 <= Median
// <= P60 <= P80 is expected but not enforced by storage; consumers sort
// defensively.
type RankingInfo struct {
	Category EventCategory `gorm:"primaryKey;type:varchar(16)" json:"category"`

	P20    float64 `gorm:"not null" json:"p20"`
	P40    float64 `gorm:"not null" json:"p40"`
	P60    float64 `gorm:"not null" json:"p60"`
	P80    float64 `gorm:"not null" json:"p80"`
	Median float64 `gorm:"not null" json:"median"`

	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

func (RankingInfo) TableName() string {
	return "ranking_info"
}

// Score is the running per-user, per-category aggregate updated with each
// rating run's delta.
type Score struct {
	UserID   uint          `gorm:"primaryKey" json:"user_id"`
	Category EventCategory `gorm:"primaryKey;type:varchar(16)" json:"category"`

	Points int64 `gorm:"default:0" json:"points"`

	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}
