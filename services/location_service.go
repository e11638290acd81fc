// services/location_service.go
package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"net/url"
	"os"
	"sort"
	"sync"
	"time"

	"social-events-system/middleware"
	"social-events-system/models"
	"social-events-system/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DefaultJitterRadiusMeters is how far the public approximate location may
// drift from the true coordinate.
const DefaultJitterRadiusMeters = 100.0

// GeocoderClient resolves postal addresses to coordinates through the Google
// Maps Geocoding API. Constructed once at startup; nil disables geocoding
// (locations must then be created with explicit coordinates).
type GeocoderClient struct {
	APIKey  string
	BaseURL string
	Client  *http.Client
}

func NewGeocoderFromEnv() *GeocoderClient {
	apiKey := os.Getenv("GOOGLE_MAPS_API_KEY")
	if apiKey == "" {
		return nil
	}
	return &GeocoderClient{
		APIKey:  apiKey,
		BaseURL: "https://maps.googleapis.com/maps/api/geocode/json",
		Client:  utils.HTTPClient,
	}
}

// Geocode returns the coordinate of the first match for the address.
func (g *GeocoderClient) Geocode(address string) (float64, float64, error) {
	q := url.Values{}
	q.Set("address", address)
	q.Set("key", g.APIKey)

	resp, err := g.Client.Get(g.BaseURL + "?" + q.Encode())
	if err != nil {
		return 0, 0, fmt.Errorf("geocoding request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, 0, fmt.Errorf("geocoder returned status %d", resp.StatusCode)
	}

	var out struct {
		Status  string `json:"status"`
		Results []struct {
			Geometry struct {
				Location struct {
					Lat float64 `json:"lat"`
					Lng float64 `json:"lng"`
				} `json:"location"`
			} `json:"geometry"`
		} `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return 0, 0, fmt.Errorf("failed to decode geocoder response: %w", err)
	}
	if out.Status != "OK" || len(out.Results) == 0 {
		return 0, 0, fmt.Errorf("no geocoding result (status %s)", out.Status)
	}

	loc := out.Results[0].Geometry.Location
	return loc.Lat, loc.Lng, nil
}

// LocationService owns event coordinates. Participants read them exactly;
// everyone else gets a point jittered inside a disc so the true address
// stays private until they are accepted.
type LocationService struct {
	DB           *gorm.DB
	Geocoder     *GeocoderClient
	Links        *LinkService
	JitterRadius float64

	// rngMu serializes draws: *rand.Rand is not safe for concurrent use and
	// approximate reads run on every request goroutine.
	rngMu sync.Mutex
	rng   *rand.Rand
}

func NewLocationService(db *gorm.DB, geocoder *GeocoderClient, links *LinkService) *LocationService {
	return &LocationService{
		DB:           db,
		Geocoder:     geocoder,
		Links:        links,
		JitterRadius: DefaultJitterRadiusMeters,
		rng:          rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// jitter draws one privacy-jittered point around the coordinate.
func (s *LocationService) jitter(lat, lon float64) (float64, float64) {
	s.rngMu.Lock()
	defer s.rngMu.Unlock()
	return utils.JitterCoordinate(lat, lon, s.JitterRadius, s.rng)
}

type locationRequest struct {
	// Either a postal address to geocode...
	Num     int    `json:"num"`
	Street  string `json:"street"`
	City    string `json:"city"`
	Zipcode string `json:"zipcode"`
	// ...or explicit coordinates.
	Lat   *float64 `json:"lat,omitempty"`
	Lon   *float64 `json:"lon,omitempty"`
	Other *string  `json:"other,omitempty"`
}

// SetLocation creates or replaces the event's address and coordinate
// (creator only).
func (s *LocationService) SetLocation(c *fiber.Ctx) error {
	userID := middleware.CurrentUserID(c)
	eventID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid event id"})
	}

	isCreator, err := s.Links.IsCreator(userID, uint(eventID))
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "database error"})
	}
	if !isCreator {
		return c.Status(403).JSON(fiber.Map{"error": "only the event creator can set the location"})
	}

	var req locationRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid JSON"})
	}

	var lat, lon float64
	switch {
	case req.Lat != nil && req.Lon != nil:
		lat, lon = *req.Lat, *req.Lon
	case req.Street != "" && req.City != "":
		if s.Geocoder == nil {
			return c.Status(503).JSON(fiber.Map{"error": "geocoding is not configured, provide lat/lon"})
		}
		address := fmt.Sprintf("%d %s, %s, %s", req.Num, req.Street, req.City, req.Zipcode)
		lat, lon, err = s.Geocoder.Geocode(address)
		if err != nil {
			log.Printf("❌ [LOCATION] Geocoding failed for event %d: %v", eventID, err)
			return c.Status(502).JSON(fiber.Map{"error": "failed to geocode address"})
		}
	default:
		return c.Status(422).JSON(fiber.Map{"error": "provide either an address or lat/lon"})
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		if req.Street != "" {
			addr := models.Address{
				EventID: uint(eventID),
				Num:     req.Num,
				Street:  req.Street,
				City:    req.City,
				Zipcode: req.Zipcode,
				Other:   req.Other,
			}
			if err := tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(&addr).Error; err != nil {
				return err
			}
		}
		loc := models.Location{
			EventID: uint(eventID),
			Lat:     lat,
			Lon:     lon,
			Other:   req.Other,
		}
		return tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(&loc).Error
	})
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to save location"})
	}

	return c.Status(201).JSON(fiber.Map{"lat": lat, "lon": lon})
}

// GetLocation returns the exact coordinate, participants only.
func (s *LocationService) GetLocation(c *fiber.Ctx) error {
	userID := middleware.CurrentUserID(c)
	eventID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid event id"})
	}

	isParticipant, err := s.Links.IsParticipant(userID, uint(eventID))
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "database error"})
	}
	if !isParticipant {
		return c.Status(403).JSON(fiber.Map{"error": "exact location is only visible to participants"})
	}

	var loc models.Location
	if err := s.DB.First(&loc, "event_id = ?", eventID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(404).JSON(fiber.Map{"error": "location not set"})
		}
		return c.Status(500).JSON(fiber.Map{"error": "database error"})
	}
	return c.JSON(loc)
}

// GetLocationApprox returns a jittered coordinate anyone may see. Each read
// draws a fresh point in the privacy disc so repeated reads cannot be
// averaged back to the true coordinate cheaply.
func (s *LocationService) GetLocationApprox(c *fiber.Ctx) error {
	eventID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid event id"})
	}

	var loc models.Location
	if err := s.DB.First(&loc, "event_id = ?", eventID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(404).JSON(fiber.Map{"error": "location not set"})
		}
		return c.Status(500).JSON(fiber.Map{"error": "database error"})
	}

	lat, lon := s.jitter(loc.Lat, loc.Lon)
	return c.JSON(fiber.Map{"event_id": loc.EventID, "lat": lat, "lon": lon, "approx": true})
}

// DeleteLocation removes the event's coordinate and address (creator only).
func (s *LocationService) DeleteLocation(c *fiber.Ctx) error {
	userID := middleware.CurrentUserID(c)
	eventID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid event id"})
	}

	isCreator, err := s.Links.IsCreator(userID, uint(eventID))
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "database error"})
	}
	if !isCreator {
		return c.Status(403).JSON(fiber.Map{"error": "only the event creator can delete the location"})
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&models.Address{}, "event_id = ?", eventID).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Location{}, "event_id = ?", eventID).Error
	})
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to delete location"})
	}
	return c.SendStatus(204)
}

// NearbyEvents lists upcoming events whose location falls inside the radius,
// using the jittered-safe coordinates already stored. Distance filtering
// happens in memory after a coarse bounding-box query.
func (s *LocationService) NearbyEvents(c *fiber.Ctx) error {
	lat := c.QueryFloat("lat")
	lon := c.QueryFloat("lon")
	radius := c.QueryFloat("radius", 5000)
	if radius <= 0 || radius > 50000 {
		radius = 5000
	}

	// Coarse prefilter: a degree box slightly wider than the radius.
	latDelta := radius / utils.MetersPerDegreeLat * 1.5
	lonDelta := latDelta * 2

	var locations []models.Location
	err := s.DB.
		Joins("JOIN events ON events.id = locations.event_id").
		Where("events.starts_at >= ?", time.Now()).
		Where("locations.lat BETWEEN ? AND ?", lat-latDelta, lat+latDelta).
		Where("locations.lon BETWEEN ? AND ?", lon-lonDelta, lon+lonDelta).
		Find(&locations).Error
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "database error"})
	}

	type nearbyEvent struct {
		Event    models.Event `json:"event"`
		Distance float64      `json:"distance_m"`
	}

	distances := locationsWithinRadius(lat, lon, radius, locations)
	if len(distances) == 0 {
		return c.JSON([]nearbyEvent{})
	}

	eventIDs := make([]uint, 0, len(distances))
	for id := range distances {
		eventIDs = append(eventIDs, id)
	}

	var events []models.Event
	if err := s.DB.Find(&events, eventIDs).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "database error"})
	}

	results := make([]nearbyEvent, 0, len(events))
	for i := range events {
		results = append(results, nearbyEvent{Event: events[i], Distance: distances[events[i].ID]})
	}
	sort.Slice(results, func(i, j int) bool { return results[i].Distance < results[j].Distance })
	return c.JSON(results)
}

// locationsWithinRadius returns the haversine distance per event id for the
// locations inside the radius.
func locationsWithinRadius(lat, lon, radius float64, locations []models.Location) map[uint]float64 {
	distances := make(map[uint]float64, len(locations))
	for i := range locations {
		d := utils.HaversineMeters(lat, lon, locations[i].Lat, locations[i].Lon)
		if d <= radius {
			distances[locations[i].EventID] = d
		}
	}
	return distances
}
