package utils

import (
	"math"
	"math/rand"
	"testing"
)

func TestJitterCoordinateStaysInsideRadius(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	lat, lon := 48.8566, 2.3522
	radius := 100.0

	for i := 0; i < 1000; i++ {
		jLat, jLon := JitterCoordinate(lat, lon, radius, rng)
		d := HaversineMeters(lat, lon, jLat, jLon)
		// Small slack for the flat-earth approximation inside the disc.
		if d > radius*1.01 {
			t.Fatalf("draw %d landed %.2fm away, radius %.2fm", i, d, radius)
		}
	}
}

func TestJitterCoordinateIsSeedable(t *testing.T) {
	lat1, lon1 := JitterCoordinate(48.85, 2.35, 100, rand.New(rand.NewSource(7)))
	lat2, lon2 := JitterCoordinate(48.85, 2.35, 100, rand.New(rand.NewSource(7)))
	if lat1 != lat2 || lon1 != lon2 {
		t.Fatal("same seed must produce the same jitter")
	}

	lat3, lon3 := JitterCoordinate(48.85, 2.35, 100, rand.New(rand.NewSource(8)))
	if lat1 == lat3 && lon1 == lon3 {
		t.Fatal("different seeds should not collide")
	}
}

func TestJitterCoordinateMoves(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	lat, lon := JitterCoordinate(10, 20, 100, rng)
	if lat == 10 && lon == 20 {
		t.Fatal("jitter produced the exact input coordinate")
	}
}

func TestHaversineMeters(t *testing.T) {
	if d := HaversineMeters(48.85, 2.35, 48.85, 2.35); d != 0 {
		t.Fatalf("distance to self should be 0, got %v", d)
	}

	// One degree of latitude at the equator.
	d := HaversineMeters(0, 0, 1, 0)
	if math.Abs(d-111195) > 100 {
		t.Fatalf("one degree of latitude should be ~111195m, got %.0f", d)
	}

	// Paris to London.
	d = HaversineMeters(48.8566, 2.3522, 51.5074, -0.1278)
	if d < 330000 || d > 350000 {
		t.Fatalf("Paris-London should be ~340km, got %.0fkm", d/1000)
	}
}
