package services

import (
	"reflect"
	"testing"
	"time"

	"social-events-system/models"

	"gorm.io/gorm"
)

func TestReducePriorsSkipsCurrentEvent(t *testing.T) {
	// Rows ordered newest event first, as loadPriors queries them. Event 9 is
	// the one being recomputed.
	rows := []models.RankingParameters{
		{UserID: 1, EventID: 9, Category: models.CategoryParty, P: 1080, W: 4},
		{UserID: 1, EventID: 5, Category: models.CategoryParty, P: 1030, W: 3},
		{UserID: 2, EventID: 9, Category: models.CategoryParty, P: 970, W: 2},
	}

	priors := reducePriors(rows, 9)

	if got := priors[1]; got != (RatingPrior{P: 1030, W: 3}) {
		t.Errorf("user 1 must read the pre-run prior, got %+v", got)
	}
	if _, ok := priors[2]; ok {
		t.Error("user 2 only has the current event's row and must be reseeded instead")
	}
}

func TestRatingRunRetryIsIdempotent(t *testing.T) {
	db := newTestDB(t)

	users := []models.User{
		{Phone: "+33600000001", FirstName: "Ana", LastName: "Moreau"},
		{Phone: "+33600000002", FirstName: "Ben", LastName: "Odum"},
		{Phone: "+33600000003", FirstName: "Cleo", LastName: "Faure"},
	}
	if err := db.Create(&users).Error; err != nil {
		t.Fatalf("failed to create users: %v", err)
	}

	event := models.Event{
		Name:      "Rooftop Party",
		Slug:      "rooftop-party",
		Category:  models.CategoryParty,
		StartsAt:  time.Now().Add(-24 * time.Hour),
		Capacity:  10,
		CreatorID: users[0].ID,
	}
	if err := db.Create(&event).Error; err != nil {
		t.Fatalf("failed to create event: %v", err)
	}

	links := []models.UserEventLink{
		{UserID: users[0].ID, EventID: event.ID, Status: models.StatusCreator},
		{UserID: users[1].ID, EventID: event.ID, Status: models.StatusAttends},
		{UserID: users[2].ID, EventID: event.ID, Status: models.StatusAttends},
	}
	if err := db.Create(&links).Error; err != nil {
		t.Fatalf("failed to create links: %v", err)
	}

	friendship := models.Friendship{
		SenderID:   users[0].ID,
		ReceiverID: users[1].ID,
		Status:     models.FriendshipAccepted,
		Date:       time.Now(),
	}
	if err := db.Create(&friendship).Error; err != nil {
		t.Fatalf("failed to create friendship: %v", err)
	}

	info := testInfo()
	if err := db.Create(&info).Error; err != nil {
		t.Fatalf("failed to create percentile row: %v", err)
	}

	svc := NewRankingService(db, NewLinkService(db, NewMessageService(db)))

	first, err := svc.RunRatingUpdate(event.ID, models.CategoryParty)
	if err != nil {
		t.Fatalf("first run failed: %v", err)
	}
	if len(first.Updates) != 3 {
		t.Fatalf("expected 3 updates, got %d", len(first.Updates))
	}
	if err := svc.PersistRatingResult(first); err != nil {
		t.Fatalf("first persist failed: %v", err)
	}

	pointsAfterFirst := readPoints(t, db)

	// A retry (worker found the event unmarked) must recompute the same
	// result and must not credit points again.
	second, err := svc.RunRatingUpdate(event.ID, models.CategoryParty)
	if err != nil {
		t.Fatalf("retried run failed: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("retried run diverged:\nfirst  %+v\nsecond %+v", first, second)
	}
	if err := svc.PersistRatingResult(second); err != nil {
		t.Fatalf("retried persist failed: %v", err)
	}

	pointsAfterSecond := readPoints(t, db)
	if !reflect.DeepEqual(pointsAfterFirst, pointsAfterSecond) {
		t.Fatalf("retry double-counted points:\nafter first  %v\nafter second %v",
			pointsAfterFirst, pointsAfterSecond)
	}

	// The accepted friendship must have moved someone, otherwise the
	// double-count assertion proves nothing.
	if pointsAfterFirst[users[0].ID] <= 0 {
		t.Fatalf("expected a positive delta for user %d, got %d",
			users[0].ID, pointsAfterFirst[users[0].ID])
	}
}

func readPoints(t *testing.T, db *gorm.DB) map[uint]int64 {
	t.Helper()
	var scores []models.Score
	if err := db.Find(&scores).Error; err != nil {
		t.Fatalf("failed to read scores: %v", err)
	}
	points := make(map[uint]int64, len(scores))
	for i := range scores {
		points[scores[i].UserID] = scores[i].Points
	}
	return points
}
