package models

// EventCategory is the closed set of event types. Ranking parameters,
// percentile tables and scores are all keyed per category.
type EventCategory string

const (
	CategoryParty   EventCategory = "party"
	CategorySports  EventCategory = "sports"
	CategoryCulture EventCategory = "culture"
	CategoryMovies  EventCategory = "movies"
	CategoryGaming  EventCategory = "gaming"
	CategoryOther   EventCategory = "other"
)

// AllEventCategories is used by the percentile refresh job and request validation.
var AllEventCategories = []EventCategory{
	CategoryParty,
	CategorySports,
	CategoryCulture,
	CategoryMovies,
	CategoryGaming,
	CategoryOther,
}

// ValidEventCategory reports whether c is one of the known categories.
func ValidEventCategory(c EventCategory) bool {
	for _, known := range AllEventCategories {
		if c == known {
			return true
		}
	}
	return false
}

// UserEventStatus is the state of a user's link to an event.
type UserEventStatus string

const (
	StatusCreator UserEventStatus = "creator"
	StatusAttends UserEventStatus = "attends"
	StatusPending UserEventStatus = "pending"
	StatusDenied  UserEventStatus = "denied"
	StatusDeleted UserEventStatus = "deleted"
)

// FriendshipStatus is the state of an invite between two users. The sender
// and receiver roles on the Friendship row are significant: the same status
// reads differently from each side (see InteractionCategory).
type FriendshipStatus string

const (
	FriendshipPending  FriendshipStatus = "pending"
	FriendshipAccepted FriendshipStatus = "accepted"
	FriendshipDenied   FriendshipStatus = "denied"
	FriendshipReported FriendshipStatus = "reported"
)

// InteractionCategory tags one directed pair in an encounter matrix.
// Exactly one category holds per ordered pair; (i,j) and (j,i) need not match.
type InteractionCategory string

const (
	NoInteraction InteractionCategory = "NO_INTERACTION"
	FrSend        InteractionCategory = "FR_SEND"
	FrAccepted    InteractionCategory = "FR_ACCEPTED"
	FrRefused     InteractionCategory = "FR_REFUSED"
	FrIgnored     InteractionCategory = "FR_IGNORED"
	UserReport    InteractionCategory = "USER_REPORT"
	UserReported  InteractionCategory = "USER_REPORTED"
	EventPositive InteractionCategory = "EVENT_POSITIVE"
	EventNegative InteractionCategory = "EVENT_NEGATIVE"
)

// MessageCategory is the kind of entry posted to an event inbox.
type MessageCategory string

const (
	MessageOrga    MessageCategory = "orga"
	MessageAdded   MessageCategory = "added"
	MessageDeleted MessageCategory = "deleted"
	MessagePicture MessageCategory = "picture"
)
