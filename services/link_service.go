// services/link_service.go
package services

import (
	"errors"
	"fmt"
	"log"

	"social-events-system/middleware"
	"social-events-system/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// LinkService owns the user↔event links: join requests, the creator's
// accept/deny decisions and the participant directory consumed by the
// encounter matrix builder.
type LinkService struct {
	DB       *gorm.DB
	Messages *MessageService
}

func NewLinkService(db *gorm.DB, messages *MessageService) *LinkService {
	return &LinkService{DB: db, Messages: messages}
}

// ReadParticipants returns the users attending or creating the event, in
// link insertion order. That order is the canonical row/column order for one
// encounter matrix build and carries no meaning beyond the call. A missing
// event yields an empty slice, not an error.
func (s *LinkService) ReadParticipants(eventID uint) ([]models.User, error) {
	var links []models.UserEventLink
	err := s.DB.Where("event_id = ? AND status IN ?", eventID,
		[]models.UserEventStatus{models.StatusCreator, models.StatusAttends}).
		Preload("User").
		Order("created_at ASC, user_id ASC").
		Find(&links).Error
	if err != nil {
		return nil, fmt.Errorf("failed to read participants of event %d: %w", eventID, err)
	}

	participants := make([]models.User, 0, len(links))
	for i := range links {
		participants = append(participants, links[i].User)
	}
	return participants, nil
}

// IsParticipant reports whether the user attends or created the event.
func (s *LinkService) IsParticipant(userID, eventID uint) (bool, error) {
	var link models.UserEventLink
	err := s.DB.First(&link, "user_id = ? AND event_id = ?", userID, eventID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return link.Status == models.StatusCreator || link.Status == models.StatusAttends, nil
}

// IsCreator reports whether the user created the event.
func (s *LinkService) IsCreator(userID, eventID uint) (bool, error) {
	var link models.UserEventLink
	err := s.DB.First(&link, "user_id = ? AND event_id = ?", userID, eventID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return link.Status == models.StatusCreator, nil
}

// FindSharedEvents returns the event links both users participate in,
// ordered by event start descending. Used to gate friend invites.
func (s *LinkService) FindSharedEvents(userID1, userID2 uint) ([]models.UserEventLink, error) {
	participating := []models.UserEventStatus{models.StatusCreator, models.StatusAttends}

	var links []models.UserEventLink
	err := s.DB.
		Joins("JOIN user_event_links other ON other.event_id = user_event_links.event_id").
		Joins("JOIN events ON events.id = user_event_links.event_id").
		Where("user_event_links.user_id = ? AND other.user_id = ?", userID1, userID2).
		Where("user_event_links.status IN ? AND other.status IN ?", participating, participating).
		Order("events.starts_at DESC").
		Find(&links).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find shared events: %w", err)
	}
	return links, nil
}

// RequestJoin files a pending join request with an optional message to the
// creator.
func (s *LinkService) RequestJoin(c *fiber.Ctx) error {
	userID := middleware.CurrentUserID(c)
	eventID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid event id"})
	}

	var req struct {
		Text *string `json:"text,omitempty"`
	}
	if err := c.BodyParser(&req); err != nil && len(c.Body()) > 0 {
		return c.Status(400).JSON(fiber.Map{"error": "invalid JSON"})
	}

	var event models.Event
	if err := s.DB.First(&event, eventID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(404).JSON(fiber.Map{"error": "event not found"})
		}
		return c.Status(500).JSON(fiber.Map{"error": "database error"})
	}

	var existing models.UserEventLink
	err = s.DB.First(&existing, "user_id = ? AND event_id = ?", userID, eventID).Error
	if err == nil {
		return c.Status(409).JSON(fiber.Map{"error": "already linked to this event", "status": existing.Status})
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return c.Status(500).JSON(fiber.Map{"error": "database error"})
	}

	link := models.UserEventLink{
		UserID:  uint(userID),
		EventID: uint(eventID),
		Status:  models.StatusPending,
		Text:    req.Text,
	}
	if err := s.DB.Create(&link).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to create join request"})
	}
	return c.Status(201).JSON(link)
}

// AcceptParticipant flips a pending request to attends (creator only) and
// posts the system notice to the inbox. Capacity is checked inside the
// transaction so concurrent accepts cannot oversubscribe.
func (s *LinkService) AcceptParticipant(c *fiber.Ctx) error {
	return s.decideParticipant(c, models.StatusAttends)
}

// DenyParticipant rejects a pending join request (creator only).
func (s *LinkService) DenyParticipant(c *fiber.Ctx) error {
	return s.decideParticipant(c, models.StatusDenied)
}

func (s *LinkService) decideParticipant(c *fiber.Ctx, decision models.UserEventStatus) error {
	creatorID := middleware.CurrentUserID(c)
	eventID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid event id"})
	}
	targetID, err := c.ParamsInt("user_id")
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid user id"})
	}

	isCreator, err := s.IsCreator(creatorID, uint(eventID))
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "database error"})
	}
	if !isCreator {
		return c.Status(403).JSON(fiber.Map{"error": "only the event creator can manage participants"})
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		var link models.UserEventLink
		if err := tx.First(&link, "user_id = ? AND event_id = ?", targetID, eventID).Error; err != nil {
			return err
		}
		if link.Status != models.StatusPending {
			return fmt.Errorf("join request is not pending (status %s)", link.Status)
		}

		if decision == models.StatusAttends {
			var event models.Event
			if err := tx.First(&event, eventID).Error; err != nil {
				return err
			}
			var attending int64
			if err := tx.Model(&models.UserEventLink{}).
				Where("event_id = ? AND status IN ?", eventID,
					[]models.UserEventStatus{models.StatusCreator, models.StatusAttends}).
				Count(&attending).Error; err != nil {
				return err
			}
			if attending >= int64(event.Capacity) {
				return fmt.Errorf("event is at capacity (%d)", event.Capacity)
			}
		}

		link.Status = decision
		return tx.Save(&link).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(404).JSON(fiber.Map{"error": "join request not found"})
		}
		return c.Status(409).JSON(fiber.Map{"error": err.Error()})
	}

	if decision == models.StatusAttends {
		s.Messages.PostSystemNotice(uint(eventID), uint(targetID), models.MessageAdded)
	}

	log.Printf("👥 [LINK] Event %d: user %d → %s", eventID, targetID, decision)
	return c.SendStatus(204)
}

// RemoveParticipant marks an attending user as deleted (creator only) and
// posts the removal notice.
func (s *LinkService) RemoveParticipant(c *fiber.Ctx) error {
	creatorID := middleware.CurrentUserID(c)
	eventID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid event id"})
	}
	targetID, err := c.ParamsInt("user_id")
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid user id"})
	}

	isCreator, err := s.IsCreator(creatorID, uint(eventID))
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "database error"})
	}
	if !isCreator {
		return c.Status(403).JSON(fiber.Map{"error": "only the event creator can manage participants"})
	}
	if uint(targetID) == creatorID {
		return c.Status(400).JSON(fiber.Map{"error": "creator cannot remove themselves"})
	}

	res := s.DB.Model(&models.UserEventLink{}).
		Where("user_id = ? AND event_id = ? AND status = ?", targetID, eventID, models.StatusAttends).
		Update("status", models.StatusDeleted)
	if res.Error != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to remove participant"})
	}
	if res.RowsAffected == 0 {
		return c.Status(404).JSON(fiber.Map{"error": "participant not found"})
	}

	s.Messages.PostSystemNotice(uint(eventID), uint(targetID), models.MessageDeleted)
	return c.SendStatus(204)
}

// ListParticipants returns the participant summaries for an event.
func (s *LinkService) ListParticipants(c *fiber.Ctx) error {
	eventID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid event id"})
	}

	participants, err := s.ReadParticipants(uint(eventID))
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to read participants"})
	}

	res := make([]models.UserSummary, len(participants))
	for i := range participants {
		res[i] = participants[i].Summary()
	}
	return c.JSON(res)
}
