package models

import "time"

// Event is a user-created gathering at a place and time. The creator manages
// the participant list and the inbox; once the event has started and the
// grace period elapsed, the ranking worker closes it and computes standings.
type Event struct {
	ID   uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Name string `gorm:"size:100;not null" json:"name"`
	Slug string `gorm:"uniqueIndex;not null" json:"slug"`
	Desc string `gorm:"size:2000" json:"desc"`

	Category EventCategory `gorm:"type:varchar(16);index;not null" json:"category"`
	StartsAt time.Time     `gorm:"index;not null" json:"starts_at"`

	// Capacity is the attendee limit, creator included. Minimum 2.
	Capacity int `gorm:"check:capacity >= 2" json:"capacity"`

	Picture string `gorm:"default:'default_event_pic.png'" json:"picture"`

	CreatorID uint `gorm:"index;not null" json:"creator_id"`

	// RankedAt marks that the post-event rating run completed. NULL means
	// the ranking worker still has to pick this event up.
	RankedAt *time.Time `gorm:"index" json:"ranked_at,omitempty"`

	Address  *Address  `gorm:"foreignKey:EventID" json:"address,omitempty"`
	Location *Location `gorm:"foreignKey:EventID" json:"-"`
	Messages []Message `gorm:"foreignKey:EventID" json:"-"`

	Timestamps
}

// Address is the postal address of an event, geocoded into Location.
type Address struct {
	EventID uint    `gorm:"primaryKey" json:"event_id"`
	Num     int     `json:"num"`
	Street  string  `gorm:"size:100;not null" json:"street"`
	City    string  `gorm:"size:50;not null" json:"city"`
	Zipcode string  `gorm:"size:10;not null" json:"zipcode"`
	Other   *string `gorm:"size:200" json:"other,omitempty"`

	Timestamps
}

// Location is the geocoded coordinate of an event. Participants read it
// exactly; everyone else gets a jittered approximation.
type Location struct {
	EventID uint    `gorm:"primaryKey" json:"event_id"`
	Lat     float64 `gorm:"not null" json:"lat"`
	Lon     float64 `gorm:"not null" json:"lon"`
	Other   *string `gorm:"size:200" json:"other,omitempty"`

	Timestamps
}
