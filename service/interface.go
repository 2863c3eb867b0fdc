package service

import (
	"weathertrack.app/models"
)

// WeatherRequestServiceInterface defines the weather request lifecycle operations
type WeatherRequestServiceInterface interface {
	Create(input *models.CreateWeatherRequestInput) (*models.CreateWeatherRequestResult, error)
	List(filters models.ListFilters) ([]models.EnrichedRequest, error)
	GetByID(id uint) (*models.EnrichedRequest, error)
	Update(id uint, input *models.UpdateWeatherRequestInput) (*models.EnrichedRequest, error)
	Delete(id uint) error
}

// ExportServiceInterface fetches the dataset for the export renderer
type ExportServiceInterface interface {
	GetExportData(filters models.ListFilters) ([]models.EnrichedRequest, error)
}

// MediaServiceInterface looks up enrichment media for locations
type MediaServiceInterface interface {
	GetMediaForLocation(locationID uint) (*models.MediaResult, error)
}

// LocationResolverInterface resolves location input to a persisted Location
type LocationResolverInterface interface {
	ResolveAndPersistLocation(locationInput, locationType string) (*models.Location, error)
}

// LocationRepositoryInterface defines the interface for location data operations
type LocationRepositoryInterface interface {
	FindByID(id uint) (*models.Location, error)
	FindMatch(normalizedName, countryCode string, lat, lon float64) (*models.Location, error)
	Create(location *models.Location) error
}

// WeatherRequestRepositoryInterface defines the interface for request data operations
type WeatherRequestRepositoryInterface interface {
	Create(request *models.WeatherRequest) error
	FindByID(id uint) (*models.WeatherRequest, error)
	GetEnriched(id uint) (*models.EnrichedRequest, error)
	List(filters models.ListFilters) ([]models.EnrichedRequest, error)
	ListWithSnapshots(filters models.ListFilters) ([]models.EnrichedRequest, error)
	DeleteWithSnapshots(id uint) error
}

// WeatherSnapshotRepositoryInterface defines the interface for snapshot data operations
type WeatherSnapshotRepositoryInterface interface {
	BulkInsert(snapshots []models.WeatherSnapshot) error
	ListByRequestID(requestID uint) ([]models.WeatherSnapshot, error)
}

// Ensure implementations satisfy interfaces
var _ WeatherRequestServiceInterface = (*WeatherRequestService)(nil)
var _ ExportServiceInterface = (*ExportService)(nil)
var _ MediaServiceInterface = (*MediaService)(nil)
var _ LocationResolverInterface = (*LocationService)(nil)
