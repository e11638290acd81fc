// services/ranking_service.go
package services

import (
	"errors"
	"fmt"
	"log"

	"social-events-system/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// EncounterMatrix is the per-event square table of pairwise interaction
// categories. Cell [i][j] is how participant i relates to participant j;
// the diagonal is never meaningful. Row/column order is only interpretable
// through the index-to-user list returned alongside it.
type EncounterMatrix [][]models.InteractionCategory

// pairKey orders two user ids so a snapshot lookup is direction-free.
type pairKey struct {
	Low, High uint
}

func makePairKey(a, b uint) pairKey {
	if a < b {
		return pairKey{Low: a, High: b}
	}
	return pairKey{Low: b, High: a}
}

// relationshipSnapshot is the batch-fetched friendship state among one
// event's participants. Classification runs against this in-memory map, so
// a matrix build issues one relationship query instead of O(n²).
type relationshipSnapshot map[pairKey]models.Friendship

// RankingService builds encounter matrices and runs the rating engine over
// them. It holds no state of its own: every build is a full recomputation
// from the current relationship rows, which keeps reruns safe.
type RankingService struct {
	DB    *gorm.DB
	Links *LinkService
}

func NewRankingService(db *gorm.DB, links *LinkService) *RankingService {
	return &RankingService{DB: db, Links: links}
}

// loadRelationships fetches every friendship row whose two ends are both in
// userIDs.
func (s *RankingService) loadRelationships(userIDs []uint) (relationshipSnapshot, error) {
	if len(userIDs) < 2 {
		return relationshipSnapshot{}, nil
	}

	var rows []models.Friendship
	err := s.DB.Where("sender_id IN ? AND receiver_id IN ?", userIDs, userIDs).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load relationships: %w", err)
	}

	snapshot := make(relationshipSnapshot, len(rows))
	for i := range rows {
		snapshot[makePairKey(rows[i].SenderID, rows[i].ReceiverID)] = rows[i]
	}
	return snapshot, nil
}

// classifyPair maps the relationship between users a and b onto the
// interaction category each side sees. A missing record is a valid state,
// not an error: both sides read NO_INTERACTION.
func classifyPair(snapshot relationshipSnapshot, a, b uint) (models.InteractionCategory, models.InteractionCategory) {
	rel, ok := snapshot[makePairKey(a, b)]
	if !ok {
		return models.NoInteraction, models.NoInteraction
	}

	// Categories below are stated sender-first, then flipped if b sent.
	var fromSender, fromReceiver models.InteractionCategory
	switch rel.Status {
	case models.FriendshipPending:
		fromSender, fromReceiver = models.FrSend, models.FrIgnored
	case models.FriendshipAccepted:
		fromSender, fromReceiver = models.FrAccepted, models.FrAccepted
	case models.FriendshipDenied:
		fromSender, fromReceiver = models.FrSend, models.FrRefused
	case models.FriendshipReported:
		fromSender, fromReceiver = models.UserReport, models.UserReported
	default:
		return models.NoInteraction, models.NoInteraction
	}

	if rel.SenderID == a {
		return fromSender, fromReceiver
	}
	return fromReceiver, fromSender
}

// buildMatrixFromSnapshot fills an n×n matrix from the participant order and
// the relationship snapshot. Pure: same inputs, same matrix.
func buildMatrixFromSnapshot(participantIDs []uint, snapshot relationshipSnapshot) EncounterMatrix {
	n := len(participantIDs)

	matrix := make(EncounterMatrix, n)
	for i := range matrix {
		matrix[i] = make([]models.InteractionCategory, n)
		for j := range matrix[i] {
			matrix[i][j] = models.NoInteraction
		}
	}

	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			catI, catJ := classifyPair(snapshot, participantIDs[i], participantIDs[j])
			matrix[i][j] = catI
			matrix[j][i] = catJ
		}
	}
	return matrix
}

// BuildEncounterMatrix returns the interaction matrix for one event plus the
// index-to-user mapping that makes its cells interpretable. Zero or one
// participants yield a valid (empty or 1×1) matrix.
func (s *RankingService) BuildEncounterMatrix(eventID uint) (EncounterMatrix, []uint, error) {
	participants, err := s.Links.ReadParticipants(eventID)
	if err != nil {
		return nil, nil, err
	}

	indexToUserID := make([]uint, len(participants))
	for i := range participants {
		indexToUserID[i] = participants[i].ID
	}

	snapshot, err := s.loadRelationships(indexToUserID)
	if err != nil {
		return nil, nil, err
	}

	return buildMatrixFromSnapshot(indexToUserID, snapshot), indexToUserID, nil
}

// GetEncounterMatrix exposes the matrix for inspection and for callers that
// persist rating results themselves.
func (s *RankingService) GetEncounterMatrix(c *fiber.Ctx) error {
	eventID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid event id"})
	}

	matrix, indexToUserID, err := s.BuildEncounterMatrix(uint(eventID))
	if err != nil {
		log.Printf("❌ [RANKING] Matrix build failed for event %d: %v", eventID, err)
		return c.Status(500).JSON(fiber.Map{"error": "failed to build encounter matrix"})
	}

	return c.JSON(fiber.Map{
		"matrix":           matrix,
		"index_to_user_id": indexToUserID,
	})
}

// loadPriors reads each participant's existing (p, w) for the category.
// Users without a row are simply absent from the map; the engine seeds them.
func (s *RankingService) loadPriors(userIDs []uint, category models.EventCategory, currentEventID uint) (map[uint]RatingPrior, error) {
	if len(userIDs) == 0 {
		return map[uint]RatingPrior{}, nil
	}

	var rows []models.RankingParameters
	err := s.DB.Where("user_id IN ? AND category = ?", userIDs, category).
		Order("event_id DESC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load prior ranking parameters: %w", err)
	}
	return reducePriors(rows, currentEventID), nil
}

// reducePriors keeps the newest row per user from rows ordered newest event
// first. Rows written by the event being computed are skipped: a retried run
// must read the same priors as the first run, not its own output.
func reducePriors(rows []models.RankingParameters, currentEventID uint) map[uint]RatingPrior {
	priors := make(map[uint]RatingPrior, len(rows))
	for i := range rows {
		if rows[i].EventID == currentEventID {
			continue
		}
		if _, seen := priors[rows[i].UserID]; !seen {
			priors[rows[i].UserID] = RatingPrior{P: rows[i].P, W: rows[i].W}
		}
	}
	return priors
}

// RunRatingUpdate computes rating updates for one event and category.
// Missing percentile data is a blocking precondition: the engine cannot
// normalize without it.
func (s *RankingService) RunRatingUpdate(eventID uint, category models.EventCategory) (*RatingResult, error) {
	var info models.RankingInfo
	if err := s.DB.First(&info, "category = ?", category).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("no percentile table for category %s: %w", category, err)
		}
		return nil, fmt.Errorf("failed to load percentile table: %w", err)
	}

	matrix, indexToUserID, err := s.BuildEncounterMatrix(eventID)
	if err != nil {
		return nil, err
	}

	priors, err := s.loadPriors(indexToUserID, category, eventID)
	if err != nil {
		return nil, err
	}

	result := ComputeRatingUpdates(eventID, category, matrix, indexToUserID, priors, info)
	return result, nil
}

// ComputeRatings is the HTTP surface of the rating engine: it computes and
// returns updates without persisting, so callers can inspect a run before
// the worker commits one.
func (s *RankingService) ComputeRatings(c *fiber.Ctx) error {
	eventID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid event id"})
	}

	category := models.EventCategory(c.Query("category"))
	if category == "" {
		var event models.Event
		if err := s.DB.First(&event, eventID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return c.Status(404).JSON(fiber.Map{"error": "event not found"})
			}
			return c.Status(500).JSON(fiber.Map{"error": "database error"})
		}
		category = event.Category
	}
	if !models.ValidEventCategory(category) {
		return c.Status(422).JSON(fiber.Map{"error": "unknown category"})
	}

	result, err := s.RunRatingUpdate(uint(eventID), category)
	if err != nil {
		log.Printf("❌ [RANKING] Rating computation failed for event %d: %v", eventID, err)
		return c.Status(409).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(result)
}

// PersistRatingResult writes one event's rating run. Each participant's
// parameter row and score delta commit in a single transaction so p and w
// can never drift apart; participants are independent units, so one failed
// write does not roll back the others. The score delta is credited only when
// this run creates the participant's parameter row for the event, so a
// retried run after a partial failure never double-counts points.
func (s *RankingService) PersistRatingResult(result *RatingResult) error {
	var firstErr error
	for i := range result.Updates {
		u := result.Updates[i]
		err := s.DB.Transaction(func(tx *gorm.DB) error {
			var alreadyApplied int64
			err := tx.Model(&models.RankingParameters{}).
				Where("user_id = ? AND event_id = ? AND category = ?", u.UserID, u.EventID, u.Category).
				Count(&alreadyApplied).Error
			if err != nil {
				return err
			}

			params := models.RankingParameters{
				UserID:   u.UserID,
				EventID:  u.EventID,
				Category: u.Category,
				P:        u.P,
				W:        u.W,
			}
			if err := tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(&params).Error; err != nil {
				return err
			}

			if alreadyApplied > 0 {
				return nil
			}

			var score models.Score
			err = tx.First(&score, "user_id = ? AND category = ?", u.UserID, u.Category).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				score = models.Score{UserID: u.UserID, Category: u.Category, Points: u.ScoreDelta}
				return tx.Create(&score).Error
			}
			if err != nil {
				return err
			}
			score.Points += u.ScoreDelta
			return tx.Save(&score).Error
		})
		if err != nil {
			log.Printf("⚠️ [RANKING] Failed to persist update for user %d: %v", u.UserID, err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}
