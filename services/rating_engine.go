// services/rating_engine.go
//
// The post-event rating update. Operates purely on in-memory snapshots
// (encounter matrix, prior parameters, percentile markers) so the whole run
// is deterministic and safely retryable; persistence happens elsewhere.
package services

import (
	"fmt"
	"log"
	"math"
	"sort"

	"social-events-system/models"
)

// RatingPrior is one participant's (p, w) going into an update cycle.
type RatingPrior struct {
	P float64 `json:"p"`
	W float64 `json:"w"`
}

// RatingUpdate is the computed outcome for one participant: new parameters
// plus the score delta, persisted together or not at all.
type RatingUpdate struct {
	UserID     uint                 `json:"user_id"`
	EventID    uint                 `json:"event_id"`
	Category   models.EventCategory `json:"category"`
	P          float64              `json:"p"`
	W          float64              `json:"w"`
	ScoreDelta int64                `json:"score_delta"`
}

// RatingFailure reports one participant whose update could not be computed.
// It never blocks the rest of the event.
type RatingFailure struct {
	UserID uint   `json:"user_id"`
	Reason string `json:"reason"`
}

// RatingResult is the full outcome of one event's rating run.
type RatingResult struct {
	EventID  uint                 `json:"event_id"`
	Category models.EventCategory `json:"category"`
	Updates  []RatingUpdate       `json:"updates"`
	Failures []RatingFailure      `json:"failures"`
}

const (
	// MinConfidenceWeight seeds w for first-time participants and is the
	// clamp floor for malformed priors.
	MinConfidenceWeight = 1.0

	// newObservationWeight is how much one event counts against the
	// accumulated confidence. w grows by exactly this much per cycle.
	newObservationWeight = 1.0
)

// interactionWeights maps what a row user sees in each cell to a social
// signal. Neutral and mutually-friendly cells never carry negative weight,
// so a participant with only those cells cannot lose performance from
// social signals alone.
var interactionWeights = map[models.InteractionCategory]float64{
	models.NoInteraction: 0,
	models.FrSend:        0.25,
	models.FrAccepted:    1.0,
	models.FrIgnored:     0,
	models.FrRefused:     -0.25,
	models.UserReport:    -0.5,
	models.UserReported:  -2.0,
	models.EventPositive: 1.5,
	models.EventNegative: -1.5,
}

// normalizeMarkers returns the five percentile markers in guaranteed
// ascending order. A violated ordering is a data-quality problem, not a
// fatal one: we warn and continue on the sorted values.
func normalizeMarkers(info models.RankingInfo) (p20, p40, median, p60, p80 float64, reordered bool) {
	markers := []float64{info.P20, info.P40, info.Median, info.P60, info.P80}
	sorted := sort.Float64sAreSorted(markers)
	if !sorted {
		sort.Float64s(markers)
	}
	return markers[0], markers[1], markers[2], markers[3], markers[4], !sorted
}

// ComputeRatingUpdates runs the update rule over one event's encounter
// matrix. Pure and deterministic: identical inputs produce identical output,
// participant by participant in matrix index order.
//
// The rule: each participant's social signal is the average interaction
// weight of their matrix row, scaled by half the p20-p80 spread of the
// category distribution. The observed performance perf = p + scale·signal is
// blended into the prior with confidence weighting:
//
//	newP = (w·p + k·perf) / (w + k),  newW = w + k
//
// so an all-neutral row leaves p untouched and confidence always grows.
func ComputeRatingUpdates(
	eventID uint,
	category models.EventCategory,
	matrix EncounterMatrix,
	indexToUserID []uint,
	priors map[uint]RatingPrior,
	info models.RankingInfo,
) *RatingResult {
	result := &RatingResult{
		EventID:  eventID,
		Category: category,
		Updates:  []RatingUpdate{},
		Failures: []RatingFailure{},
	}

	p20, _, median, _, p80, reordered := normalizeMarkers(info)
	if reordered {
		log.Printf("⚠️ [RATING] Percentile markers for %s are out of order, using sorted values", category)
	}

	scale := (p80 - p20) / 2
	if scale <= 0 {
		// Degenerate distribution (all markers equal): social signals
		// cannot be scaled, only seeding still applies.
		scale = 0
	}

	n := len(indexToUserID)
	for i := 0; i < n; i++ {
		userID := indexToUserID[i]

		prior, hasPrior := priors[userID]
		if !hasPrior {
			prior = RatingPrior{P: median, W: MinConfidenceWeight}
		}

		if math.IsNaN(prior.P) || math.IsInf(prior.P, 0) ||
			math.IsNaN(prior.W) || math.IsInf(prior.W, 0) {
			result.Failures = append(result.Failures, RatingFailure{
				UserID: userID,
				Reason: fmt.Sprintf("malformed prior parameters (p=%v, w=%v)", prior.P, prior.W),
			})
			continue
		}
		if prior.W < MinConfidenceWeight {
			log.Printf("⚠️ [RATING] User %d has confidence weight %.3f below minimum, clamping", userID, prior.W)
			prior.W = MinConfidenceWeight
		}

		signal := 0.0
		for j := 0; j < n; j++ {
			if j == i {
				continue
			}
			signal += interactionWeights[matrix[i][j]]
		}
		if n > 1 {
			signal /= float64(n - 1)
		}

		perf := prior.P + scale*signal
		k := newObservationWeight
		newP := (prior.W*prior.P + k*perf) / (prior.W + k)
		newW := prior.W + k

		result.Updates = append(result.Updates, RatingUpdate{
			UserID:     userID,
			EventID:    eventID,
			Category:   category,
			P:          newP,
			W:          newW,
			ScoreDelta: int64(math.Round(newP - prior.P)),
		})
	}

	return result
}
