package services

import (
	"math/rand"
	"sync"
	"testing"

	"social-events-system/models"
	"social-events-system/utils"
)

func TestJitterIsSafeForConcurrentReads(t *testing.T) {
	s := &LocationService{
		JitterRadius: 100,
		rng:          rand.New(rand.NewSource(1)),
	}

	var wg sync.WaitGroup
	for g := 0; g < 4; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 500; i++ {
				lat, lon := s.jitter(48.8566, 2.3522)
				if d := utils.HaversineMeters(48.8566, 2.3522, lat, lon); d > 101 {
					t.Errorf("jittered point landed %.2fm away, radius 100m", d)
					return
				}
			}
		}()
	}
	wg.Wait()
}

func TestLocationsWithinRadius(t *testing.T) {
	locations := []models.Location{
		{EventID: 1, Lat: 0, Lon: 0},
		{EventID: 2, Lat: 0.001, Lon: 0}, // ~111m north
		{EventID: 3, Lat: 1, Lon: 0},     // ~111km north
	}

	distances := locationsWithinRadius(0, 0, 200, locations)

	if len(distances) != 2 {
		t.Fatalf("expected 2 events inside 200m, got %v", distances)
	}
	if distances[1] != 0 {
		t.Errorf("event at the query point should be at distance 0, got %v", distances[1])
	}
	if d := distances[2]; d < 100 || d > 130 {
		t.Errorf("event ~111m away reported at %.2fm", d)
	}
	if _, ok := distances[3]; ok {
		t.Error("event 111km away must not be included")
	}
}
