package services

import (
	"math"
	"reflect"
	"testing"

	"social-events-system/models"
)

func testInfo() models.RankingInfo {
	return models.RankingInfo{
		Category: models.CategoryParty,
		P20:      900,
		P40:      950,
		Median:   1000,
		P60:      1050,
		P80:      1100,
	}
}

func neutralMatrix(n int) EncounterMatrix {
	matrix := make(EncounterMatrix, n)
	for i := range matrix {
		matrix[i] = make([]models.InteractionCategory, n)
		for j := range matrix[i] {
			matrix[i][j] = models.NoInteraction
		}
	}
	return matrix
}

func TestComputeRatingUpdatesSeedsNewParticipants(t *testing.T) {
	matrix := neutralMatrix(2)
	users := []uint{1, 2}

	result := ComputeRatingUpdates(7, models.CategoryParty, matrix, users, map[uint]RatingPrior{}, testInfo())

	if len(result.Failures) != 0 {
		t.Fatalf("expected no failures, got %v", result.Failures)
	}
	if len(result.Updates) != 2 {
		t.Fatalf("expected 2 updates, got %d", len(result.Updates))
	}
	for _, u := range result.Updates {
		if u.P != 1000 {
			t.Errorf("user %d: seeded participant with neutral row should stay at median, got p=%v", u.UserID, u.P)
		}
		if u.W != MinConfidenceWeight+1 {
			t.Errorf("user %d: expected w=%v, got %v", u.UserID, MinConfidenceWeight+1, u.W)
		}
		if u.ScoreDelta != 0 {
			t.Errorf("user %d: neutral row should produce zero delta, got %d", u.UserID, u.ScoreDelta)
		}
	}
}

func TestComputeRatingUpdatesNeutralRowKeepsPrior(t *testing.T) {
	matrix := neutralMatrix(3)
	users := []uint{1, 2, 3}
	priors := map[uint]RatingPrior{
		1: {P: 1200, W: 5}, // above median
		2: {P: 800, W: 2},  // below median
	}

	result := ComputeRatingUpdates(7, models.CategoryParty, matrix, users, priors, testInfo())

	for _, u := range result.Updates {
		prior, ok := priors[u.UserID]
		if !ok {
			continue
		}
		if u.P != prior.P {
			t.Errorf("user %d: neutral row must not move p, had %v got %v", u.UserID, prior.P, u.P)
		}
		if u.W != prior.W+1 {
			t.Errorf("user %d: w must grow by exactly one observation, had %v got %v", u.UserID, prior.W, u.W)
		}
	}
}

func TestComputeRatingUpdatesDirectionOfSignal(t *testing.T) {
	// User 1 sees an accepted friendship, user 2 sees being reported.
	matrix := neutralMatrix(3)
	matrix[0][1] = models.FrAccepted
	matrix[1][2] = models.UserReported
	users := []uint{1, 2, 3}
	priors := map[uint]RatingPrior{
		1: {P: 1000, W: 1},
		2: {P: 1000, W: 1},
		3: {P: 1000, W: 1},
	}

	result := ComputeRatingUpdates(7, models.CategoryParty, matrix, users, priors, testInfo())

	byUser := map[uint]RatingUpdate{}
	for _, u := range result.Updates {
		byUser[u.UserID] = u
	}

	if byUser[1].P <= 1000 {
		t.Errorf("positive row signal should raise p, got %v", byUser[1].P)
	}
	if byUser[1].ScoreDelta <= 0 {
		t.Errorf("positive row signal should yield positive delta, got %d", byUser[1].ScoreDelta)
	}
	if byUser[2].P >= 1000 {
		t.Errorf("being reported should lower p, got %v", byUser[2].P)
	}
	if byUser[3].P != 1000 {
		t.Errorf("neutral bystander should keep p, got %v", byUser[3].P)
	}
}

func TestComputeRatingUpdatesDeterministic(t *testing.T) {
	matrix := neutralMatrix(3)
	matrix[0][1] = models.FrSend
	matrix[1][0] = models.FrIgnored
	matrix[1][2] = models.FrAccepted
	matrix[2][1] = models.FrAccepted
	users := []uint{10, 20, 30}
	priors := map[uint]RatingPrior{
		10: {P: 1111, W: 3},
		30: {P: 950, W: 2},
	}

	first := ComputeRatingUpdates(9, models.CategoryGaming, matrix, users, priors, testInfo())
	second := ComputeRatingUpdates(9, models.CategoryGaming, matrix, users, priors, testInfo())

	if !reflect.DeepEqual(first, second) {
		t.Fatalf("identical inputs must produce identical results:\n%+v\n%+v", first, second)
	}
}

func TestComputeRatingUpdatesIsolatesMalformedPriors(t *testing.T) {
	matrix := neutralMatrix(3)
	users := []uint{1, 2, 3}
	priors := map[uint]RatingPrior{
		1: {P: math.NaN(), W: 1},
		2: {P: 1000, W: math.Inf(1)},
		3: {P: 1000, W: 1},
	}

	result := ComputeRatingUpdates(7, models.CategoryParty, matrix, users, priors, testInfo())

	if len(result.Failures) != 2 {
		t.Fatalf("expected 2 failures, got %v", result.Failures)
	}
	if len(result.Updates) != 1 || result.Updates[0].UserID != 3 {
		t.Fatalf("healthy participant must still be updated, got %+v", result.Updates)
	}
}

func TestComputeRatingUpdatesClampsLowConfidence(t *testing.T) {
	matrix := neutralMatrix(2)
	matrix[0][1] = models.FrAccepted
	users := []uint{1, 2}
	priors := map[uint]RatingPrior{
		1: {P: 1000, W: 0.01},
	}

	result := ComputeRatingUpdates(7, models.CategoryParty, matrix, users, priors, testInfo())

	var found bool
	for _, u := range result.Updates {
		if u.UserID == 1 {
			found = true
			if u.W != MinConfidenceWeight+1 {
				t.Errorf("clamped prior should end at %v, got %v", MinConfidenceWeight+1, u.W)
			}
		}
	}
	if !found {
		t.Fatal("user 1 missing from updates")
	}
}

func TestComputeRatingUpdatesEmptyEvent(t *testing.T) {
	result := ComputeRatingUpdates(7, models.CategoryParty, EncounterMatrix{}, nil, nil, testInfo())
	if len(result.Updates) != 0 || len(result.Failures) != 0 {
		t.Fatalf("empty event must produce empty result, got %+v", result)
	}
}

func TestNormalizeMarkersSortsOutOfOrderValues(t *testing.T) {
	info := models.RankingInfo{P20: 1100, P40: 950, Median: 1000, P60: 900, P80: 1050}

	p20, p40, median, p60, p80, reordered := normalizeMarkers(info)
	if !reordered {
		t.Fatal("expected markers to be flagged as reordered")
	}
	got := []float64{p20, p40, median, p60, p80}
	want := []float64{900, 950, 1000, 1050, 1100}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}

	_, _, _, _, _, reordered = normalizeMarkers(testInfo())
	if reordered {
		t.Fatal("well-ordered markers must not be flagged")
	}
}
