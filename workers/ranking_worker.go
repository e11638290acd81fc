package workers

import (
	"context"
	"log"
	"time"

	"social-events-system/models"
	"social-events-system/services"

	"gorm.io/gorm"
)

// RankingWorker sweeps finished events and runs the rating engine over each
// one exactly once. An event is due when it started at least GracePeriod ago
// and has no ranked_at marker yet; the marker is only set after a successful
// persist, so a failed run is retried on the next tick.
type RankingWorker struct {
	DB          *gorm.DB
	Ranking     *services.RankingService
	GracePeriod time.Duration
}

func NewRankingWorker(db *gorm.DB, ranking *services.RankingService) *RankingWorker {
	return &RankingWorker{
		DB:          db,
		Ranking:     ranking,
		GracePeriod: 6 * time.Hour,
	}
}

// findDueEvents returns events whose rating run is pending.
func (w *RankingWorker) findDueEvents() ([]models.Event, error) {
	cutoff := time.Now().UTC().Add(-w.GracePeriod)

	var events []models.Event
	err := w.DB.Where("starts_at <= ? AND ranked_at IS NULL", cutoff).
		Order("starts_at ASC").
		Limit(50).
		Find(&events).Error
	return events, err
}

// processEvent runs and persists one event's rating update, then marks it.
func (w *RankingWorker) processEvent(event models.Event) error {
	result, err := w.Ranking.RunRatingUpdate(event.ID, event.Category)
	if err != nil {
		return err
	}

	if err := w.Ranking.PersistRatingResult(result); err != nil {
		return err
	}

	now := time.Now().UTC()
	if err := w.DB.Model(&models.Event{}).
		Where("id = ?", event.ID).
		Update("ranked_at", &now).Error; err != nil {
		return err
	}

	log.Printf("✅ [RANKING] Event %d rated: %d update(s), %d failure(s)",
		event.ID, len(result.Updates), len(result.Failures))
	return nil
}

// PollFinishedEvents is the worker loop. Run it in its own goroutine; it
// exits when the context is cancelled.
func PollFinishedEvents(ctx context.Context, worker *RankingWorker, pollInterval time.Duration) {
	log.Println("Starting ranking worker...")

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Ranking worker stopped.")
			return
		case <-ticker.C:
			events, err := worker.findDueEvents()
			if err != nil {
				log.Printf("❌ Error finding events due for rating: %v", err)
				continue
			}
			if len(events) == 0 {
				continue
			}

			log.Printf("📥 %d event(s) due for rating.", len(events))
			for _, event := range events {
				if err := worker.processEvent(event); err != nil {
					// ranked_at stays NULL, retried next tick.
					log.Printf("❌ Rating run failed for event %d: %v", event.ID, err)
				}
			}
		}
	}
}
