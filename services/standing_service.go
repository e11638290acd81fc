// services/standing_service.go
package services

import (
	"errors"

	"social-events-system/middleware"
	"social-events-system/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// StandingService turns raw per-category scores into relative standings
// using the category's percentile markers.
type StandingService struct {
	DB *gorm.DB
}

func NewStandingService(db *gorm.DB) *StandingService {
	return &StandingService{DB: db}
}

// standing brackets, lowest to highest quintile.
var standingBrackets = []string{"bottom", "lower", "middle", "upper", "top"}

// determineStanding places a score against the sorted percentile markers.
func determineStanding(points float64, info models.RankingInfo) string {
	p20, p40, _, p60, p80, _ := normalizeMarkers(info)

	switch {
	case points < p20:
		return standingBrackets[0]
	case points < p40:
		return standingBrackets[1]
	case points < p60:
		return standingBrackets[2]
	case points < p80:
		return standingBrackets[3]
	default:
		return standingBrackets[4]
	}
}

// GetStanding returns the authenticated user's bracket in one category.
func (s *StandingService) GetStanding(c *fiber.Ctx) error {
	userID := middleware.CurrentUserID(c)

	category := models.EventCategory(c.Params("category"))
	if !models.ValidEventCategory(category) {
		return c.Status(422).JSON(fiber.Map{"error": "unknown category"})
	}

	var info models.RankingInfo
	if err := s.DB.First(&info, "category = ?", category).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(404).JSON(fiber.Map{"error": "no standings for this category yet"})
		}
		return c.Status(500).JSON(fiber.Map{"error": "database error"})
	}

	var score models.Score
	err := s.DB.First(&score, "user_id = ? AND category = ?", userID, category).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return c.JSON(fiber.Map{
			"category": category,
			"points":   0,
			"standing": nil,
		})
	}
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "database error"})
	}

	return c.JSON(fiber.Map{
		"category": category,
		"points":   score.Points,
		"standing": determineStanding(float64(score.Points), info),
	})
}

// GetLeaderboard returns the top scores of one category plus the caller's
// own entry with its rank.
func (s *StandingService) GetLeaderboard(c *fiber.Ctx) error {
	userID := middleware.CurrentUserID(c)

	category := models.EventCategory(c.Params("category"))
	if !models.ValidEventCategory(category) {
		return c.Status(422).JSON(fiber.Map{"error": "unknown category"})
	}

	limit := c.QueryInt("limit", 20)
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	var top []models.Score
	if err := s.DB.Where("category = ?", category).
		Order("points DESC, user_id ASC").
		Limit(limit).
		Find(&top).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "database error"})
	}

	var own *models.Score
	var rank int64
	var score models.Score
	err := s.DB.First(&score, "user_id = ? AND category = ?", userID, category).Error
	if err == nil {
		own = &score
		if err := s.DB.Model(&models.Score{}).
			Where("category = ? AND points > ?", category, score.Points).
			Count(&rank).Error; err != nil {
			return c.Status(500).JSON(fiber.Map{"error": "database error"})
		}
		rank++
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return c.Status(500).JSON(fiber.Map{"error": "database error"})
	}

	return c.JSON(fiber.Map{
		"category": category,
		"top":      top,
		"own":      own,
		"own_rank": rank,
	})
}
