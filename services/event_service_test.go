package services

import (
	"errors"
	"testing"
	"time"

	"social-events-system/models"

	"github.com/google/uuid"
)

func TestDeleteEventRemovesOwnedRows(t *testing.T) {
	db := newTestDB(t)

	users := []models.User{
		{Phone: "+33600000010", FirstName: "Dora", LastName: "Klein"},
		{Phone: "+33600000011", FirstName: "Eli", LastName: "Haddad"},
	}
	if err := db.Create(&users).Error; err != nil {
		t.Fatalf("failed to create users: %v", err)
	}

	event := models.Event{
		Name:      "Museum Night",
		Slug:      "museum-night",
		Category:  models.CategoryCulture,
		StartsAt:  time.Now().Add(48 * time.Hour),
		Capacity:  5,
		CreatorID: users[0].ID,
	}
	if err := db.Create(&event).Error; err != nil {
		t.Fatalf("failed to create event: %v", err)
	}

	fixtures := []interface{}{
		&models.UserEventLink{UserID: users[0].ID, EventID: event.ID, Status: models.StatusCreator},
		&models.UserEventLink{UserID: users[1].ID, EventID: event.ID, Status: models.StatusAttends},
		&models.Address{EventID: event.ID, Num: 3, Street: "Rue des Arts", City: "Lyon", Zipcode: "69001"},
		&models.Location{EventID: event.ID, Lat: 45.76, Lon: 4.83},
		&models.Message{ID: uuid.NewString(), EventID: event.ID, UserID: &users[0].ID, Category: models.MessageOrga, Text: "doors open at 8"},
		&models.Message{ID: uuid.NewString(), EventID: event.ID, Category: models.MessageAdded, Text: "user joined"},
	}
	for _, f := range fixtures {
		if err := db.Create(f).Error; err != nil {
			t.Fatalf("failed to create fixture %T: %v", f, err)
		}
	}

	svc := NewEventService(db)

	if _, err := svc.deleteEventByCreator(users[1].ID, event.ID); !errors.Is(err, errNotEventCreator) {
		t.Fatalf("non-creator must be rejected, got %v", err)
	}

	picture, err := svc.deleteEventByCreator(users[0].ID, event.ID)
	if err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if picture != "default_event_pic.png" {
		t.Errorf("expected stored picture back for cleanup, got %q", picture)
	}

	remaining := []struct {
		name  string
		model interface{}
	}{
		{"links", &models.UserEventLink{}},
		{"address", &models.Address{}},
		{"location", &models.Location{}},
		{"messages", &models.Message{}},
	}
	for _, r := range remaining {
		var n int64
		if err := db.Model(r.model).Where("event_id = ?", event.ID).Count(&n).Error; err != nil {
			t.Fatalf("%s count failed: %v", r.name, err)
		}
		if n != 0 {
			t.Errorf("%s: %d row(s) left behind after event deletion", r.name, n)
		}
	}

	var gone models.Event
	if err := db.First(&gone, event.ID).Error; err == nil {
		t.Error("event row still readable after deletion")
	}
}
