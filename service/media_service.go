package service

import (
	"log"
	"net/url"
	"strconv"

	weathererr "weathertrack.app/errors"
	"weathertrack.app/models"
	"weathertrack.app/providers"
)

// MediaService looks up enrichment media for a stored location. The video
// provider is optional and its failures never fail the lookup.
type MediaService struct {
	locationRepo LocationRepositoryInterface
	videos       providers.MediaProvider
}

// NewMediaService creates a new media service. A nil provider disables video
// enrichment.
func NewMediaService(locationRepo LocationRepositoryInterface, videos providers.MediaProvider) *MediaService {
	return &MediaService{
		locationRepo: locationRepo,
		videos:       videos,
	}
}

// GetMediaForLocation returns a map link and travel videos for a location
func (s *MediaService) GetMediaForLocation(locationID uint) (*models.MediaResult, error) {
	log.Printf("[DEBUG] MediaService.GetMediaForLocation: id=%d\n", locationID)

	location, err := s.locationRepo.FindByID(locationID)
	if err != nil {
		return nil, err
	}
	if location == nil {
		return nil, weathererr.NewNotFoundError("location not found")
	}

	result := &models.MediaResult{
		Location: *location,
		Videos:   []models.Video{},
		MapURL:   buildMapURL(location.Lat, location.Lon),
	}

	if s.videos != nil {
		videos, videoErr := s.videos.SearchVideos(location.NormalizedName, location.CountryCode)
		if videoErr != nil {
			log.Printf("[WARNING] Video lookup failed, returning empty list: %v\n", videoErr)
		} else if videos != nil {
			result.Videos = videos
		}
	}

	return result, nil
}

func buildMapURL(lat, lon float64) string {
	coords := strconv.FormatFloat(lat, 'f', -1, 64) + "," + strconv.FormatFloat(lon, 'f', -1, 64)
	return "https://www.google.com/maps?q=" + url.QueryEscape(coords)
}
