// services/scheduler.go
package services

import (
	"log"
	"sort"
	"time"

	"social-events-system/models"

	"github.com/go-co-op/gocron/v2"
	"gorm.io/gorm/clause"
)

// percentileAt returns the value at fraction q (0..1) of a sorted sample
// using nearest-rank.
func percentileAt(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	idx := int(q * float64(len(sorted)-1))
	return sorted[idx]
}

// computePercentiles derives the five markers from a category's performance
// sample. Caller guarantees a non-empty sample.
func computePercentiles(sample []float64) (p20, p40, median, p60, p80 float64) {
	sorted := make([]float64, len(sample))
	copy(sorted, sample)
	sort.Float64s(sorted)

	return percentileAt(sorted, 0.20),
		percentileAt(sorted, 0.40),
		percentileAt(sorted, 0.50),
		percentileAt(sorted, 0.60),
		percentileAt(sorted, 0.80)
}

// RefreshPercentiles recomputes the RankingInfo row of every category from
// the current ranking parameter distribution. Categories without data keep
// their existing row (or stay absent, which blocks rating runs for them
// until seeded).
func (s *RankingService) RefreshPercentiles() {
	for _, category := range models.AllEventCategories {
		var sample []float64
		err := s.DB.Model(&models.RankingParameters{}).
			Where("category = ?", category).
			Pluck("p", &sample).Error
		if err != nil {
			log.Printf("[Scheduler] Percentile refresh query failed for %s: %v", category, err)
			continue
		}
		if len(sample) == 0 {
			continue
		}

		p20, p40, median, p60, p80 := computePercentiles(sample)
		info := models.RankingInfo{
			Category: category,
			P20:      p20,
			P40:      p40,
			P60:      p60,
			P80:      p80,
			Median:   median,
		}
		if err := s.DB.Clauses(clause.OnConflict{UpdateAll: true}).Create(&info).Error; err != nil {
			log.Printf("[Scheduler] Failed to save percentiles for %s: %v", category, err)
			continue
		}
		log.Printf("📊 [RANKING] Refreshed percentiles for %s over %d samples", category, len(sample))
	}
}

// StartPercentileScheduler refreshes every category's percentile table
// hourly.
func (s *RankingService) StartPercentileScheduler() {
	sched, _ := gocron.NewScheduler()
	sched.Start()

	_, _ = sched.NewJob(
		gocron.DurationJob(1*time.Hour),
		gocron.NewTask(s.RefreshPercentiles),
	)
}

// StartCodeCleanupScheduler sweeps expired local verify codes every 15
// minutes.
func (s *AuthService) StartCodeCleanupScheduler() {
	sched, _ := gocron.NewScheduler()
	sched.Start()

	_, _ = sched.NewJob(
		gocron.DurationJob(15*time.Minute),
		gocron.NewTask(s.CleanupExpiredCodes),
	)
}
