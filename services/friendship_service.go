// services/friendship_service.go
package services

import (
	"errors"
	"log"
	"time"

	"social-events-system/middleware"
	"social-events-system/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// FriendshipService manages invites between users. Invites can only be sent
// between users who shared an event; the most recent shared event is
// recorded on the row.
type FriendshipService struct {
	DB    *gorm.DB
	Links *LinkService
}

func NewFriendshipService(db *gorm.DB, links *LinkService) *FriendshipService {
	return &FriendshipService{DB: db, Links: links}
}

// GetFriendship looks the relationship up in both directions. Returns
// gorm.ErrRecordNotFound when no record exists either way.
func (s *FriendshipService) GetFriendship(userID1, userID2 uint) (*models.Friendship, error) {
	var friendship models.Friendship
	err := s.DB.Where(
		"(sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)",
		userID1, userID2, userID2, userID1,
	).First(&friendship).Error
	if err != nil {
		return nil, err
	}
	return &friendship, nil
}

// SendInvite creates a pending invite to another user meeting the
// shared-event requirement.
func (s *FriendshipService) SendInvite(c *fiber.Ctx) error {
	senderID := middleware.CurrentUserID(c)
	receiverID, err := c.ParamsInt("user_id")
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid user id"})
	}
	if uint(receiverID) == senderID {
		return c.Status(400).JSON(fiber.Map{"error": "cannot invite yourself"})
	}

	var receiver models.User
	if err := s.DB.First(&receiver, receiverID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(404).JSON(fiber.Map{"error": "user not found"})
		}
		return c.Status(500).JSON(fiber.Map{"error": "database error"})
	}

	if _, err := s.GetFriendship(senderID, uint(receiverID)); err == nil {
		return c.Status(409).JSON(fiber.Map{"error": "a relationship already exists between these users"})
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return c.Status(500).JSON(fiber.Map{"error": "database error"})
	}

	shared, err := s.Links.FindSharedEvents(senderID, uint(receiverID))
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "database error"})
	}
	if len(shared) == 0 {
		return c.Status(403).JSON(fiber.Map{"error": "friend invites require a shared event"})
	}
	// FindSharedEvents orders by event start descending.
	mostRecent := shared[0].EventID

	friendship := models.Friendship{
		SenderID:   senderID,
		ReceiverID: uint(receiverID),
		Status:     models.FriendshipPending,
		EventID:    &mostRecent,
		Date:       time.Now(),
	}
	if err := s.DB.Create(&friendship).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to send invite"})
	}

	log.Printf("🤝 [FRIENDS] Invite sent %d → %d (event %d)", senderID, receiverID, mostRecent)
	return c.Status(201).JSON(friendship)
}

// AcceptInvite lets the receiver accept a pending invite.
func (s *FriendshipService) AcceptInvite(c *fiber.Ctx) error {
	return s.decideInvite(c, models.FriendshipAccepted)
}

// RejectInvite lets the receiver deny a pending invite. The row is kept:
// a denied invite still shapes the encounter matrix.
func (s *FriendshipService) RejectInvite(c *fiber.Ctx) error {
	return s.decideInvite(c, models.FriendshipDenied)
}

func (s *FriendshipService) decideInvite(c *fiber.Ctx, decision models.FriendshipStatus) error {
	receiverID := middleware.CurrentUserID(c)
	senderID, err := c.ParamsInt("user_id")
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid user id"})
	}

	res := s.DB.Model(&models.Friendship{}).
		Where("sender_id = ? AND receiver_id = ? AND status = ?",
			senderID, receiverID, models.FriendshipPending).
		Update("status", decision)
	if res.Error != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to update invite"})
	}
	if res.RowsAffected == 0 {
		return c.Status(404).JSON(fiber.Map{"error": "pending invite not found"})
	}
	return c.SendStatus(204)
}

// UnsendInvite lets the sender withdraw a pending invite.
func (s *FriendshipService) UnsendInvite(c *fiber.Ctx) error {
	senderID := middleware.CurrentUserID(c)
	receiverID, err := c.ParamsInt("user_id")
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid user id"})
	}

	res := s.DB.Delete(&models.Friendship{},
		"sender_id = ? AND receiver_id = ? AND status = ?",
		senderID, receiverID, models.FriendshipPending)
	if res.Error != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to withdraw invite"})
	}
	if res.RowsAffected == 0 {
		return c.Status(404).JSON(fiber.Map{"error": "pending invite not found"})
	}
	return c.SendStatus(204)
}

// DeleteFriend removes an accepted friendship in either direction.
func (s *FriendshipService) DeleteFriend(c *fiber.Ctx) error {
	userID := middleware.CurrentUserID(c)
	otherID, err := c.ParamsInt("user_id")
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid user id"})
	}

	res := s.DB.Delete(&models.Friendship{},
		"((sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)) AND status = ?",
		userID, otherID, otherID, userID, models.FriendshipAccepted)
	if res.Error != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to delete friendship"})
	}
	if res.RowsAffected == 0 {
		return c.Status(404).JSON(fiber.Map{"error": "friendship not found"})
	}
	return c.SendStatus(204)
}

// ReportUser flags another user. An existing relationship row is overwritten
// with the report so the encounter matrix sees USER_REPORT/USER_REPORTED;
// without one a new reported row is created (shared event not required).
func (s *FriendshipService) ReportUser(c *fiber.Ctx) error {
	reporterID := middleware.CurrentUserID(c)
	reportedID, err := c.ParamsInt("user_id")
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid user id"})
	}
	if uint(reportedID) == reporterID {
		return c.Status(400).JSON(fiber.Map{"error": "cannot report yourself"})
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		// Drop any existing row in either direction so the report row
		// carries the reporter as sender.
		if err := tx.Delete(&models.Friendship{},
			"(sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)",
			reporterID, reportedID, reportedID, reporterID).Error; err != nil {
			return err
		}
		return tx.Create(&models.Friendship{
			SenderID:   reporterID,
			ReceiverID: uint(reportedID),
			Status:     models.FriendshipReported,
			Date:       time.Now(),
		}).Error
	})
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to report user"})
	}

	log.Printf("🚩 [FRIENDS] User %d reported %d", reporterID, reportedID)
	return c.SendStatus(204)
}
