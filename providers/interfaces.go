package providers

import "weathertrack.app/models"

// Location input types accepted by the gateway
const (
	LocationTypeCity     = "city"
	LocationTypeZip      = "zip"
	LocationTypeCoords   = "coords"
	LocationTypeLandmark = "landmark"
)

// WeatherGateway resolves location input and fetches weather upstream
type WeatherGateway interface {
	Geocode(locationInput, locationType string) (*models.GeocodedLocation, error)
	GetCurrentAndForecast(lat, lon float64, units string) (*models.CurrentAndForecast, error)
}

// MediaProvider looks up enrichment media for a place. Failures are expected
// to degrade, never to fail the primary operation.
type MediaProvider interface {
	SearchVideos(query, countryCode string) ([]models.Video, error)
}
