package service

import (
	"log"
	"strings"

	"weathertrack.app/models"
	"weathertrack.app/providers"
)

// locationSource marks which provider produced a persisted location
const locationSource = "openweather"

// LocationService resolves free-text location input to a persisted Location,
// reusing an existing row when the geocode lands within the dedup tolerance.
type LocationService struct {
	locationRepo LocationRepositoryInterface
	gateway      providers.WeatherGateway
}

// NewLocationService creates a new location resolver
func NewLocationService(locationRepo LocationRepositoryInterface, gateway providers.WeatherGateway) *LocationService {
	return &LocationService{
		locationRepo: locationRepo,
		gateway:      gateway,
	}
}

// ResolveAndPersistLocation geocodes the input and returns the matching
// Location row, creating one only when no nearby row exists. Repeated nearby
// queries are idempotent.
func (s *LocationService) ResolveAndPersistLocation(locationInput, locationType string) (*models.Location, error) {
	log.Printf("[DEBUG] LocationService.ResolveAndPersistLocation: input=%s, type=%s\n", locationInput, locationType)

	resolved, err := s.gateway.Geocode(locationInput, locationType)
	if err != nil {
		return nil, err
	}

	rawInput := strings.TrimSpace(locationInput)
	normalizedName := resolved.NormalizedName
	if normalizedName == "" {
		normalizedName = rawInput
	}

	existing, err := s.locationRepo.FindMatch(normalizedName, resolved.CountryCode, resolved.Lat, resolved.Lon)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		log.Printf("[DEBUG] Reusing existing location: id=%d\n", existing.ID)
		return existing, nil
	}

	location := &models.Location{
		RawInput:       rawInput,
		NormalizedName: normalizedName,
		CountryCode:    resolved.CountryCode,
		Lat:            resolved.Lat,
		Lon:            resolved.Lon,
		Source:         locationSource,
	}
	if err := s.locationRepo.Create(location); err != nil {
		return nil, err
	}

	log.Printf("[DEBUG] Created location: id=%d, name=%s\n", location.ID, location.NormalizedName)
	return location, nil
}
