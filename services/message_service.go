// services/message_service.go
package services

import (
	"errors"
	"fmt"
	"log"

	"social-events-system/middleware"
	"social-events-system/models"
	"social-events-system/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MessageService handles the per-event inbox: organizer announcements,
// system add/remove notices and participant pictures.
type MessageService struct {
	DB *gorm.DB
}

func NewMessageService(db *gorm.DB) *MessageService {
	return &MessageService{DB: db}
}

// ListMessages returns the event inbox, newest first.
func (s *MessageService) ListMessages(c *fiber.Ctx) error {
	eventID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid event id"})
	}

	var messages []models.Message
	if err := s.DB.Where("event_id = ?", eventID).
		Order("created_at DESC").
		Find(&messages).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "database error"})
	}
	return c.JSON(messages)
}

// PostMessage lets the event creator post an organizer announcement.
func (s *MessageService) PostMessage(c *fiber.Ctx) error {
	userID := middleware.CurrentUserID(c)
	eventID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid event id"})
	}

	var req struct {
		Text string `json:"text"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid JSON"})
	}
	if req.Text == "" || len(req.Text) > 3000 {
		return c.Status(422).JSON(fiber.Map{"error": "text must be 1-3000 characters"})
	}

	var link models.UserEventLink
	err = s.DB.First(&link, "user_id = ? AND event_id = ? AND status = ?",
		userID, eventID, models.StatusCreator).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return c.Status(403).JSON(fiber.Map{"error": "only the event creator can post announcements"})
	}
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "database error"})
	}

	msg := models.Message{
		ID:       uuid.NewString(),
		EventID:  uint(eventID),
		UserID:   &userID,
		Category: models.MessageOrga,
		Text:     req.Text,
	}
	if err := s.DB.Create(&msg).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to post message"})
	}
	return c.Status(201).JSON(msg)
}

// DeleteMessage removes an announcement (creator only).
func (s *MessageService) DeleteMessage(c *fiber.Ctx) error {
	userID := middleware.CurrentUserID(c)
	eventID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid event id"})
	}
	messageID := c.Params("message_id")

	var link models.UserEventLink
	err = s.DB.First(&link, "user_id = ? AND event_id = ? AND status = ?",
		userID, eventID, models.StatusCreator).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return c.Status(403).JSON(fiber.Map{"error": "only the event creator can delete messages"})
	}
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "database error"})
	}

	res := s.DB.Delete(&models.Message{}, "id = ? AND event_id = ?", messageID, eventID)
	if res.Error != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to delete message"})
	}
	if res.RowsAffected == 0 {
		return c.Status(404).JSON(fiber.Map{"error": "message not found"})
	}
	return c.SendStatus(204)
}

// PostPicture lets a participant share a picture in the event inbox.
func (s *MessageService) PostPicture(c *fiber.Ctx) error {
	userID := middleware.CurrentUserID(c)
	eventID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid event id"})
	}

	var link models.UserEventLink
	err = s.DB.First(&link, "user_id = ? AND event_id = ? AND status IN ?",
		userID, eventID,
		[]models.UserEventStatus{models.StatusCreator, models.StatusAttends}).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return c.Status(403).JSON(fiber.Map{"error": "only participants can post pictures"})
	}
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "database error"})
	}

	fileHeader, err := c.FormFile("picture")
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "picture file required"})
	}

	name, err := utils.CreatePictureName(fileHeader.Filename)
	if err != nil {
		return c.Status(415).JSON(fiber.Map{"error": err.Error()})
	}

	url, err := utils.UploadPictureToR2(fileHeader, fmt.Sprintf("events/%d/inbox/%s", eventID, name))
	if err != nil {
		log.Printf("❌ [INBOX] Picture upload failed (event %d, user %d): %v", eventID, userID, err)
		return c.Status(502).JSON(fiber.Map{"error": "failed to store picture"})
	}

	msg := models.Message{
		ID:         uuid.NewString(),
		EventID:    uint(eventID),
		UserID:     &userID,
		Category:   models.MessagePicture,
		PictureURL: &url,
	}
	if err := s.DB.Create(&msg).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to save picture message"})
	}
	return c.Status(201).JSON(msg)
}

// PostSystemNotice records an added/deleted participant notice. Failures are
// logged, not surfaced: the membership change itself already committed.
func (s *MessageService) PostSystemNotice(eventID, userID uint, category models.MessageCategory) {
	text := fmt.Sprintf("user %d joined the event", userID)
	if category == models.MessageDeleted {
		text = fmt.Sprintf("user %d was removed from the event", userID)
	}

	msg := models.Message{
		ID:       uuid.NewString(),
		EventID:  eventID,
		Category: category,
		Text:     text,
	}
	if err := s.DB.Create(&msg).Error; err != nil {
		log.Printf("⚠️ [INBOX] Failed to post %s notice for event %d: %v", category, eventID, err)
	}
}
