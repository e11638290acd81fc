// utils/geo.go
package utils

import (
	"math"
	"math/rand"
)

// MetersPerDegreeLat is the approximate ground distance of one degree of
// latitude. Good enough at event scale (hundreds of meters).
const MetersPerDegreeLat = 111300.0

// earthRadiusMeters for haversine.
const earthRadiusMeters = 6371000.0

// JitterCoordinate returns a point uniformly distributed in a disc of
// radiusMeters around (lat, lon). The caller owns the rand source so the
// jitter is seedable and testable.
func JitterCoordinate(lat, lon, radiusMeters float64, rng *rand.Rand) (float64, float64) {
	u := rng.Float64()
	v := rng.Float64()

	// sqrt(u) keeps the distribution uniform over the disc area instead of
	// clustering at the center.
	r := radiusMeters / MetersPerDegreeLat
	w := r * math.Sqrt(u)
	t := 2 * math.Pi * v

	dLat := w * math.Cos(t)
	// Longitude degrees shrink with latitude.
	dLon := w * math.Sin(t) / math.Cos(lat*math.Pi/180)

	return lat + dLat, lon + dLon
}

// HaversineMeters returns the great-circle distance between two coordinates.
func HaversineMeters(lat1, lon1, lat2, lon2 float64) float64 {
	toRad := func(deg float64) float64 { return deg * math.Pi / 180 }

	phi1 := toRad(lat1)
	phi2 := toRad(lat2)
	dPhi := toRad(lat2 - lat1)
	dLambda := toRad(lon2 - lon1)

	a := math.Sin(dPhi/2)*math.Sin(dPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(dLambda/2)*math.Sin(dLambda/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusMeters * c
}
