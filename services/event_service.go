// services/event_service.go
package services

import (
	"errors"
	"fmt"
	"log"
	"time"

	"social-events-system/middleware"
	"social-events-system/models"
	"social-events-system/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

type EventService struct {
	DB *gorm.DB
}

func NewEventService(db *gorm.DB) *EventService {
	return &EventService{DB: db}
}

type eventRequest struct {
	Name     string               `json:"name"`
	Desc     string               `json:"desc"`
	Category models.EventCategory `json:"category"`
	StartsAt time.Time            `json:"starts_at"`
	Capacity int                  `json:"capacity"`
}

func validateEventRequest(req *eventRequest) error {
	if req.Name == "" || len(req.Name) > 100 {
		return fmt.Errorf("name must be 1-100 characters")
	}
	if len(req.Desc) > 2000 {
		return fmt.Errorf("description too long (max 2000)")
	}
	if !models.ValidEventCategory(req.Category) {
		return fmt.Errorf("unknown category %q", req.Category)
	}
	if req.Capacity < 2 {
		return fmt.Errorf("capacity must be at least 2")
	}
	return nil
}

// uniqueSlug derives a URL handle from the event name, suffixing a counter
// on collision.
func (s *EventService) uniqueSlug(tx *gorm.DB, name string) (string, error) {
	base := slug.Make(name)
	candidate := base
	for i := 2; ; i++ {
		var count int64
		if err := tx.Model(&models.Event{}).Where("slug = ?", candidate).Count(&count).Error; err != nil {
			return "", err
		}
		if count == 0 {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, i)
	}
}

// CreateEvent creates the event together with its creator link, in one
// transaction so no event exists without a creator participant.
func (s *EventService) CreateEvent(c *fiber.Ctx) error {
	userID := middleware.CurrentUserID(c)

	var req eventRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid JSON", "details": err.Error()})
	}
	if err := validateEventRequest(&req); err != nil {
		return c.Status(422).JSON(fiber.Map{"error": err.Error()})
	}
	if req.StartsAt.Before(time.Now()) {
		return c.Status(422).JSON(fiber.Map{"error": "event must start in the future"})
	}

	var event models.Event
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		eventSlug, err := s.uniqueSlug(tx, req.Name)
		if err != nil {
			return err
		}

		event = models.Event{
			Name:      req.Name,
			Slug:      eventSlug,
			Desc:      req.Desc,
			Category:  req.Category,
			StartsAt:  req.StartsAt,
			Capacity:  req.Capacity,
			CreatorID: userID,
		}
		if err := tx.Create(&event).Error; err != nil {
			return err
		}

		return tx.Create(&models.UserEventLink{
			UserID:  userID,
			EventID: event.ID,
			Status:  models.StatusCreator,
		}).Error
	})
	if err != nil {
		log.Printf("❌ [EVENT] Create failed for user %d: %v", userID, err)
		return c.Status(500).JSON(fiber.Map{"error": "failed to create event"})
	}

	log.Printf("🎉 [EVENT] Created event %d (%s) by user %d", event.ID, event.Slug, userID)
	return c.Status(201).JSON(event)
}

// GetEvent returns one event with its address.
func (s *EventService) GetEvent(c *fiber.Ctx) error {
	eventID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid event id"})
	}

	var event models.Event
	if err := s.DB.Preload("Address").First(&event, eventID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(404).JSON(fiber.Map{"error": "event not found"})
		}
		return c.Status(500).JSON(fiber.Map{"error": "database error"})
	}
	return c.JSON(event)
}

// ListEvents returns upcoming events, optionally filtered by category.
func (s *EventService) ListEvents(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 50)
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	db := s.DB.Model(&models.Event{}).
		Where("starts_at >= ?", time.Now()).
		Order("starts_at ASC").
		Limit(limit)

	if category := c.Query("category"); category != "" {
		if !models.ValidEventCategory(models.EventCategory(category)) {
			return c.Status(422).JSON(fiber.Map{"error": "unknown category"})
		}
		db = db.Where("category = ?", category)
	}

	var events []models.Event
	if err := db.Find(&events).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "database error"})
	}
	return c.JSON(events)
}

// UpdateEvent patches event fields (creator only). Category and start time
// cannot change once anyone but the creator is linked.
func (s *EventService) UpdateEvent(c *fiber.Ctx) error {
	userID := middleware.CurrentUserID(c)
	eventID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid event id"})
	}

	var req struct {
		Name     *string               `json:"name,omitempty"`
		Desc     *string               `json:"desc,omitempty"`
		Category *models.EventCategory `json:"category,omitempty"`
		StartsAt *time.Time            `json:"starts_at,omitempty"`
		Capacity *int                  `json:"capacity,omitempty"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid JSON"})
	}

	var event models.Event
	if err := s.DB.First(&event, eventID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(404).JSON(fiber.Map{"error": "event not found"})
		}
		return c.Status(500).JSON(fiber.Map{"error": "database error"})
	}
	if event.CreatorID != userID {
		return c.Status(403).JSON(fiber.Map{"error": "only the event creator can update it"})
	}

	if req.Category != nil || req.StartsAt != nil {
		var linked int64
		if err := s.DB.Model(&models.UserEventLink{}).
			Where("event_id = ? AND user_id <> ?", eventID, userID).
			Count(&linked).Error; err != nil {
			return c.Status(500).JSON(fiber.Map{"error": "database error"})
		}
		if linked > 0 {
			return c.Status(409).JSON(fiber.Map{"error": "category and start time are frozen once users joined"})
		}
	}

	if req.Name != nil {
		if *req.Name == "" || len(*req.Name) > 100 {
			return c.Status(422).JSON(fiber.Map{"error": "name must be 1-100 characters"})
		}
		event.Name = *req.Name
	}
	if req.Desc != nil {
		if len(*req.Desc) > 2000 {
			return c.Status(422).JSON(fiber.Map{"error": "description too long (max 2000)"})
		}
		event.Desc = *req.Desc
	}
	if req.Category != nil {
		if !models.ValidEventCategory(*req.Category) {
			return c.Status(422).JSON(fiber.Map{"error": "unknown category"})
		}
		event.Category = *req.Category
	}
	if req.StartsAt != nil {
		event.StartsAt = *req.StartsAt
	}
	if req.Capacity != nil {
		if *req.Capacity < 2 {
			return c.Status(422).JSON(fiber.Map{"error": "capacity must be at least 2"})
		}
		event.Capacity = *req.Capacity
	}

	if err := s.DB.Save(&event).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to update event"})
	}
	return c.JSON(event)
}

var errNotEventCreator = errors.New("only the event creator can delete it")

// deleteEventByCreator removes the event and everything it owns (links,
// location, address, inbox messages) in one transaction. Returns the stored
// picture URL so the caller can clean up object storage.
func (s *EventService) deleteEventByCreator(userID, eventID uint) (string, error) {
	var picture string
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var event models.Event
		if err := tx.First(&event, eventID).Error; err != nil {
			return err
		}
		if event.CreatorID != userID {
			return errNotEventCreator
		}
		picture = event.Picture
		if err := tx.Delete(&models.UserEventLink{}, "event_id = ?", eventID).Error; err != nil {
			return err
		}
		if err := tx.Delete(&models.Location{}, "event_id = ?", eventID).Error; err != nil {
			return err
		}
		if err := tx.Delete(&models.Address{}, "event_id = ?", eventID).Error; err != nil {
			return err
		}
		if err := tx.Delete(&models.Message{}, "event_id = ?", eventID).Error; err != nil {
			return err
		}
		return tx.Delete(&event).Error
	})
	return picture, err
}

// DeleteEvent soft-deletes the event and its links (creator only).
func (s *EventService) DeleteEvent(c *fiber.Ctx) error {
	userID := middleware.CurrentUserID(c)
	eventID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid event id"})
	}

	picture, err := s.deleteEventByCreator(userID, uint(eventID))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(404).JSON(fiber.Map{"error": "event not found"})
		}
		return c.Status(403).JSON(fiber.Map{"error": err.Error()})
	}

	// Best effort: the event row is already gone.
	if key := utils.ObjectKeyFromURL(picture); key != "" {
		if err := utils.DeletePictureFromR2(key); err != nil {
			log.Printf("⚠️ [EVENT] Failed to delete picture for event %d: %v", eventID, err)
		}
	}

	log.Printf("🗑️ [EVENT] Deleted event %d by user %d", eventID, userID)
	return c.SendStatus(204)
}

// UploadPicture stores a new event picture (creator only).
func (s *EventService) UploadPicture(c *fiber.Ctx) error {
	userID := middleware.CurrentUserID(c)
	eventID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid event id"})
	}

	var event models.Event
	if err := s.DB.First(&event, eventID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(404).JSON(fiber.Map{"error": "event not found"})
		}
		return c.Status(500).JSON(fiber.Map{"error": "database error"})
	}
	if event.CreatorID != userID {
		return c.Status(403).JSON(fiber.Map{"error": "only the event creator can change the picture"})
	}

	fileHeader, err := c.FormFile("picture")
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "picture file required"})
	}

	name, err := utils.CreatePictureName(fileHeader.Filename)
	if err != nil {
		return c.Status(415).JSON(fiber.Map{"error": err.Error()})
	}

	url, err := utils.UploadPictureToR2(fileHeader, fmt.Sprintf("events/%d/%s", eventID, name))
	if err != nil {
		log.Printf("❌ [EVENT] Picture upload failed for event %d: %v", eventID, err)
		return c.Status(502).JSON(fiber.Map{"error": "failed to store picture"})
	}

	if err := s.DB.Model(&event).Update("picture", url).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to save picture"})
	}
	return c.JSON(fiber.Map{"picture": url})
}
