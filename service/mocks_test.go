package service

import (
	"github.com/stretchr/testify/mock"
	"weathertrack.app/models"
)

// MockWeatherGateway for testing
type MockWeatherGateway struct {
	mock.Mock
}

func (m *MockWeatherGateway) Geocode(input, locationType string) (*models.GeocodedLocation, error) {
	args := m.Called(input, locationType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.GeocodedLocation), args.Error(1)
}

func (m *MockWeatherGateway) GetCurrentAndForecast(lat, lon float64, units string) (*models.CurrentAndForecast, error) {
	args := m.Called(lat, lon, units)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.CurrentAndForecast), args.Error(1)
}

// MockLocationRepository for testing
type MockLocationRepository struct {
	mock.Mock
}

func (m *MockLocationRepository) FindByID(id uint) (*models.Location, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Location), args.Error(1)
}

func (m *MockLocationRepository) FindMatch(normalizedName, countryCode string, lat, lon float64) (*models.Location, error) {
	args := m.Called(normalizedName, countryCode, lat, lon)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Location), args.Error(1)
}

func (m *MockLocationRepository) Create(location *models.Location) error {
	args := m.Called(location)
	return args.Error(0)
}

// MockMediaProvider for testing
type MockMediaProvider struct {
	mock.Mock
}

func (m *MockMediaProvider) SearchVideos(query, countryCode string) ([]models.Video, error) {
	args := m.Called(query, countryCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Video), args.Error(1)
}

// MockWeatherRequestRepository for testing
type MockWeatherRequestRepository struct {
	mock.Mock
}

func (m *MockWeatherRequestRepository) Create(request *models.WeatherRequest) error {
	args := m.Called(request)
	return args.Error(0)
}

func (m *MockWeatherRequestRepository) FindByID(id uint) (*models.WeatherRequest, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.WeatherRequest), args.Error(1)
}

func (m *MockWeatherRequestRepository) GetEnriched(id uint) (*models.EnrichedRequest, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.EnrichedRequest), args.Error(1)
}

func (m *MockWeatherRequestRepository) List(filters models.ListFilters) ([]models.EnrichedRequest, error) {
	args := m.Called(filters)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.EnrichedRequest), args.Error(1)
}

func (m *MockWeatherRequestRepository) ListWithSnapshots(filters models.ListFilters) ([]models.EnrichedRequest, error) {
	args := m.Called(filters)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.EnrichedRequest), args.Error(1)
}

func (m *MockWeatherRequestRepository) DeleteWithSnapshots(id uint) error {
	args := m.Called(id)
	return args.Error(0)
}
