// services/user_service.go
package services

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"social-events-system/middleware"
	"social-events-system/models"
	"social-events-system/utils"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gorm.io/gorm"
)

type UserService struct {
	DB *gorm.DB
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{DB: db}
}

var cityTitler = cases.Title(language.Und)

// GetSelf returns the authenticated user's profile.
func (s *UserService) GetSelf(c *fiber.Ctx) error {
	userID := middleware.CurrentUserID(c)

	var user models.User
	if err := s.DB.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(404).JSON(fiber.Map{"error": "user not found"})
		}
		return c.Status(500).JSON(fiber.Map{"error": "database error"})
	}
	return c.JSON(user)
}

// UpdateSelf patches profile fields. City names are normalized to title case
// so searches and display stay consistent regardless of input casing.
func (s *UserService) UpdateSelf(c *fiber.Ctx) error {
	userID := middleware.CurrentUserID(c)

	var req struct {
		FirstName *string `json:"first_name,omitempty"`
		LastName  *string `json:"last_name,omitempty"`
		Bio       *string `json:"bio,omitempty"`
		City      *string `json:"city,omitempty"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid JSON"})
	}

	var user models.User
	if err := s.DB.First(&user, userID).Error; err != nil {
		return c.Status(404).JSON(fiber.Map{"error": "user not found"})
	}

	if req.FirstName != nil {
		if *req.FirstName == "" || len(*req.FirstName) > 20 {
			return c.Status(422).JSON(fiber.Map{"error": "invalid first name"})
		}
		user.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		if *req.LastName == "" || len(*req.LastName) > 40 {
			return c.Status(422).JSON(fiber.Map{"error": "invalid last name"})
		}
		user.LastName = *req.LastName
	}
	if req.Bio != nil {
		if len(*req.Bio) > 500 {
			return c.Status(422).JSON(fiber.Map{"error": "bio too long (max 500)"})
		}
		user.Bio = req.Bio
	}
	if req.City != nil {
		normalized := cityTitler.String(strings.ToLower(strings.TrimSpace(*req.City)))
		if len(normalized) > 50 {
			return c.Status(422).JSON(fiber.Map{"error": "city too long (max 50)"})
		}
		user.City = &normalized
	}

	if err := s.DB.Save(&user).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to update profile"})
	}
	return c.JSON(user)
}

// DeleteSelf soft-deletes the account and its auth row. Friendships and
// event links stay for history; rankings keep referencing the id.
func (s *UserService) DeleteSelf(c *fiber.Ctx) error {
	userID := middleware.CurrentUserID(c)

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.First(&user, userID).Error; err != nil {
			return err
		}
		if err := tx.Delete(&models.PhoneAuth{}, "phone = ?", user.Phone).Error; err != nil {
			return err
		}
		return tx.Delete(&user).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(404).JSON(fiber.Map{"error": "user not found"})
		}
		return c.Status(500).JSON(fiber.Map{"error": "failed to delete account"})
	}

	log.Printf("🗑️ [USER] Deleted account %d", userID)
	return c.SendStatus(204)
}

// UploadPicture stores a new profile picture and records its URL.
func (s *UserService) UploadPicture(c *fiber.Ctx) error {
	userID := middleware.CurrentUserID(c)

	fileHeader, err := c.FormFile("picture")
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "picture file required"})
	}

	name, err := utils.CreatePictureName(fileHeader.Filename)
	if err != nil {
		return c.Status(415).JSON(fiber.Map{"error": err.Error()})
	}

	url, err := utils.UploadPictureToR2(fileHeader, fmt.Sprintf("users/%s", name))
	if err != nil {
		log.Printf("❌ [USER] Picture upload failed for %d: %v", userID, err)
		return c.Status(502).JSON(fiber.Map{"error": "failed to store picture"})
	}

	if err := s.DB.Model(&models.User{}).Where("id = ?", userID).
		Update("picture", url).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to save picture"})
	}
	return c.JSON(fiber.Map{"picture": url})
}

// SearchUsers searches profiles by name or city.
func (s *UserService) SearchUsers(c *fiber.Ctx) error {
	query := c.Query("q", "")
	limit := c.QueryInt("limit", 50)
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	db := s.DB.Model(&models.User{}).Limit(limit)
	if query != "" {
		searchTerm := "%" + strings.ToLower(strings.TrimSpace(query)) + "%"
		db = db.Where(
			"LOWER(first_name) LIKE ? OR LOWER(last_name) LIKE ? OR LOWER(city) LIKE ?",
			searchTerm, searchTerm, searchTerm,
		)
	}

	var users []models.User
	if err := db.Find(&users).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "search failed"})
	}

	res := make([]models.UserSummary, len(users))
	for i := range users {
		res[i] = users[i].Summary()
	}
	return c.JSON(res)
}

// GetSentInvites lists the user's outstanding sent friend invites.
func (s *UserService) GetSentInvites(c *fiber.Ctx) error {
	userID := middleware.CurrentUserID(c)

	var invites []models.Friendship
	err := s.DB.Where("sender_id = ? AND status = ?", userID, models.FriendshipPending).
		Preload("Receiver").
		Find(&invites).Error
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "database error"})
	}
	return c.JSON(invites)
}

// GetReceivedInvites lists pending invites waiting on the user.
func (s *UserService) GetReceivedInvites(c *fiber.Ctx) error {
	userID := middleware.CurrentUserID(c)

	var invites []models.Friendship
	err := s.DB.Where("receiver_id = ? AND status = ?", userID, models.FriendshipPending).
		Preload("Sender").
		Find(&invites).Error
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "database error"})
	}
	return c.JSON(invites)
}

// GetFriends returns accepted friendships in both directions as summaries.
func (s *UserService) GetFriends(c *fiber.Ctx) error {
	userID := middleware.CurrentUserID(c)

	var friendships []models.Friendship
	err := s.DB.Where(
		"(sender_id = ? OR receiver_id = ?) AND status = ?",
		userID, userID, models.FriendshipAccepted,
	).Preload("Sender").Preload("Receiver").Find(&friendships).Error
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "database error"})
	}

	friends := make([]models.UserSummary, 0, len(friendships))
	for i := range friendships {
		if friendships[i].SenderID == userID {
			friends = append(friends, friendships[i].Receiver.Summary())
		} else {
			friends = append(friends, friendships[i].Sender.Summary())
		}
	}
	return c.JSON(friends)
}
