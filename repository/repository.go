// Package repository implements data access layer for the application
package repository

import (
	"errors"
	"log"
	"math"
	"strings"

	"gorm.io/gorm"
	weathererr "weathertrack.app/errors"
	"weathertrack.app/models"
)

// coordTolerance is the lat/lon box within which two geocodes count as the
// same place.
const coordTolerance = 0.01

// LocationRepository handles data access operations for locations
type LocationRepository struct {
	db *gorm.DB
}

// NewLocationRepository creates a new repository for location data
func NewLocationRepository(db *gorm.DB) *LocationRepository {
	return &LocationRepository{db: db}
}

// FindByID retrieves a location by its ID, returning nil when missing
func (r *LocationRepository) FindByID(id uint) (*models.Location, error) {
	log.Printf("[DEBUG] LocationRepository.FindByID: id=%d\n", id)

	var location models.Location
	result := r.db.First(&location, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		log.Printf("[ERROR] Database error when finding location: %v\n", result.Error)
		return nil, weathererr.NewDatabaseError("failed to find location", result.Error)
	}

	return &location, nil
}

// FindMatch looks for an existing location with the same name and country
// whose coordinates fall within the dedup tolerance box. Returns nil when no
// row matches.
func (r *LocationRepository) FindMatch(normalizedName, countryCode string, lat, lon float64) (*models.Location, error) {
	log.Printf("[DEBUG] LocationRepository.FindMatch: name=%s, country=%s, lat=%f, lon=%f\n",
		normalizedName, countryCode, lat, lon)

	var locations []models.Location
	result := r.db.
		Where("normalized_name = ? AND country_code = ?", normalizedName, countryCode).
		Where("lat BETWEEN ? AND ?", lat-coordTolerance, lat+coordTolerance).
		Where("lon BETWEEN ? AND ?", lon-coordTolerance, lon+coordTolerance).
		Limit(10).
		Find(&locations)
	if result.Error != nil {
		log.Printf("[ERROR] Database error when matching location: %v\n", result.Error)
		return nil, weathererr.NewDatabaseError("failed to match location", result.Error)
	}

	for i := range locations {
		if math.Abs(locations[i].Lat-lat) < coordTolerance && math.Abs(locations[i].Lon-lon) < coordTolerance {
			log.Printf("[DEBUG] Found matching location: id=%d\n", locations[i].ID)
			return &locations[i], nil
		}
	}
	return nil, nil
}

// Create persists a new location to the database
func (r *LocationRepository) Create(location *models.Location) error {
	log.Printf("[DEBUG] LocationRepository.Create: %+v\n", location)

	if location == nil {
		return weathererr.NewValidationError("location cannot be nil")
	}

	result := r.db.Create(location)
	if result.Error != nil {
		log.Printf("[ERROR] Database error when creating location: %v\n", result.Error)
		return weathererr.NewDatabaseError("failed to create location", result.Error)
	}

	log.Printf("[DEBUG] Created location with ID: %d\n", location.ID)
	return nil
}

// WeatherRequestRepository handles data access operations for weather requests
type WeatherRequestRepository struct {
	db *gorm.DB
}

// NewWeatherRequestRepository creates a new repository for weather request data
func NewWeatherRequestRepository(db *gorm.DB) *WeatherRequestRepository {
	return &WeatherRequestRepository{db: db}
}

// Create persists a new weather request to the database
func (r *WeatherRequestRepository) Create(request *models.WeatherRequest) error {
	log.Printf("[DEBUG] WeatherRequestRepository.Create: %+v\n", request)

	if request == nil {
		return weathererr.NewValidationError("weather request cannot be nil")
	}

	result := r.db.Create(request)
	if result.Error != nil {
		log.Printf("[ERROR] Database error when creating weather request: %v\n", result.Error)
		return weathererr.NewDatabaseError("failed to create weather request", result.Error)
	}

	log.Printf("[DEBUG] Created weather request with ID: %d\n", request.ID)
	return nil
}

// FindByID retrieves a weather request row by its ID, returning nil when missing
func (r *WeatherRequestRepository) FindByID(id uint) (*models.WeatherRequest, error) {
	log.Printf("[DEBUG] WeatherRequestRepository.FindByID: id=%d\n", id)

	var request models.WeatherRequest
	result := r.db.First(&request, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		log.Printf("[ERROR] Database error when finding weather request: %v\n", result.Error)
		return nil, weathererr.NewDatabaseError("failed to find weather request", result.Error)
	}

	return &request, nil
}

// enrichedQuery builds the base projection joining requests with their
// location fields. The flattened view lives only at this boundary.
func (r *WeatherRequestRepository) enrichedQuery() *gorm.DB {
	return r.db.
		Table("weather_requests").
		Select("weather_requests.id, weather_requests.location_id, weather_requests.requested_start_date, " +
			"weather_requests.requested_end_date, weather_requests.temperature_unit, weather_requests.current_temp, " +
			"weather_requests.current_feels_like, weather_requests.notes, weather_requests.created_at, " +
			"weather_requests.updated_at, locations.raw_input, locations.normalized_name, " +
			"locations.country_code, locations.lat, locations.lon").
		Joins("JOIN locations ON weather_requests.location_id = locations.id")
}

func applyListFilters(query *gorm.DB, filters models.ListFilters) *gorm.DB {
	if filters.LocationName != "" {
		pattern := "%" + strings.ToLower(filters.LocationName) + "%"
		query = query.Where("LOWER(locations.normalized_name) LIKE ? OR LOWER(locations.raw_input) LIKE ?",
			pattern, pattern)
	}
	if filters.StartDate != "" {
		query = query.Where("weather_requests.requested_end_date >= ?", filters.StartDate)
	}
	if filters.EndDate != "" {
		query = query.Where("weather_requests.requested_start_date <= ?", filters.EndDate)
	}
	return query
}

// GetEnriched retrieves one weather request with its location fields flattened
// on, returning nil when missing. Snapshots are not attached.
func (r *WeatherRequestRepository) GetEnriched(id uint) (*models.EnrichedRequest, error) {
	log.Printf("[DEBUG] WeatherRequestRepository.GetEnriched: id=%d\n", id)

	var rows []models.EnrichedRequest
	result := r.enrichedQuery().Where("weather_requests.id = ?", id).Limit(1).Scan(&rows)
	if result.Error != nil {
		log.Printf("[ERROR] Database error when loading enriched weather request: %v\n", result.Error)
		return nil, weathererr.NewDatabaseError("failed to load weather request", result.Error)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	rows[0].Snapshots = []models.WeatherSnapshot{}
	return &rows[0], nil
}

// List retrieves a filtered, paginated page of enriched weather requests
// ordered by creation time descending
func (r *WeatherRequestRepository) List(filters models.ListFilters) ([]models.EnrichedRequest, error) {
	log.Printf("[DEBUG] WeatherRequestRepository.List: %+v\n", filters)

	var rows []models.EnrichedRequest
	query := applyListFilters(r.enrichedQuery(), filters).
		Order("weather_requests.created_at DESC").
		Limit(filters.Limit).
		Offset(filters.Offset)

	result := query.Scan(&rows)
	if result.Error != nil {
		log.Printf("[ERROR] Database error when listing weather requests: %v\n", result.Error)
		return nil, weathererr.NewDatabaseError("failed to list weather requests", result.Error)
	}

	if rows == nil {
		rows = []models.EnrichedRequest{}
	}
	for i := range rows {
		rows[i].Snapshots = []models.WeatherSnapshot{}
	}
	log.Printf("[DEBUG] Found %d weather requests\n", len(rows))
	return rows, nil
}

// ListWithSnapshots retrieves enriched weather requests with their snapshots
// attached, grouped by parent request and ordered by snapshot date ascending.
// Used by the export renderer.
func (r *WeatherRequestRepository) ListWithSnapshots(filters models.ListFilters) ([]models.EnrichedRequest, error) {
	rows, err := r.List(filters)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return rows, nil
	}

	ids := make([]uint, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ID)
	}

	var snapshots []models.WeatherSnapshot
	result := r.db.
		Where("weather_request_id IN ?", ids).
		Order("weather_request_id, snapshot_date ASC").
		Find(&snapshots)
	if result.Error != nil {
		log.Printf("[ERROR] Database error when loading snapshots for export: %v\n", result.Error)
		return nil, weathererr.NewDatabaseError("failed to load snapshots", result.Error)
	}

	byRequest := make(map[uint][]models.WeatherSnapshot, len(rows))
	for _, snapshot := range snapshots {
		byRequest[snapshot.WeatherRequestID] = append(byRequest[snapshot.WeatherRequestID], snapshot)
	}
	for i := range rows {
		if attached, ok := byRequest[rows[i].ID]; ok {
			rows[i].Snapshots = attached
		}
	}
	return rows, nil
}

// DeleteWithSnapshots removes a weather request and all of its snapshots as
// one unit
func (r *WeatherRequestRepository) DeleteWithSnapshots(id uint) error {
	log.Printf("[DEBUG] WeatherRequestRepository.DeleteWithSnapshots: id=%d\n", id)

	tx := r.db.Begin()
	if tx.Error != nil {
		return weathererr.NewDatabaseError("failed to begin transaction", tx.Error)
	}
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	if err := tx.Where("weather_request_id = ?", id).Delete(&models.WeatherSnapshot{}).Error; err != nil {
		tx.Rollback()
		return weathererr.NewDatabaseError("failed to delete snapshots", err)
	}
	if err := tx.Delete(&models.WeatherRequest{}, id).Error; err != nil {
		tx.Rollback()
		return weathererr.NewDatabaseError("failed to delete weather request", err)
	}

	if err := tx.Commit().Error; err != nil {
		return weathererr.NewDatabaseError("failed to commit transaction", err)
	}

	log.Println("[DEBUG] Deleted weather request and snapshots successfully")
	return nil
}

// WeatherSnapshotRepository handles data access operations for forecast snapshots
type WeatherSnapshotRepository struct {
	db *gorm.DB
}

// NewWeatherSnapshotRepository creates a new repository for snapshot data
func NewWeatherSnapshotRepository(db *gorm.DB) *WeatherSnapshotRepository {
	return &WeatherSnapshotRepository{db: db}
}

// BulkInsert persists a batch of snapshots in one statement
func (r *WeatherSnapshotRepository) BulkInsert(snapshots []models.WeatherSnapshot) error {
	log.Printf("[DEBUG] WeatherSnapshotRepository.BulkInsert: %d snapshots\n", len(snapshots))

	if len(snapshots) == 0 {
		return nil
	}

	result := r.db.Create(&snapshots)
	if result.Error != nil {
		log.Printf("[ERROR] Database error when inserting snapshots: %v\n", result.Error)
		return weathererr.NewDatabaseError("failed to insert snapshots", result.Error)
	}
	return nil
}

// ListByRequestID retrieves all snapshots for a request ordered by date ascending
func (r *WeatherSnapshotRepository) ListByRequestID(requestID uint) ([]models.WeatherSnapshot, error) {
	log.Printf("[DEBUG] WeatherSnapshotRepository.ListByRequestID: requestID=%d\n", requestID)

	var snapshots []models.WeatherSnapshot
	result := r.db.
		Where("weather_request_id = ?", requestID).
		Order("snapshot_date ASC").
		Find(&snapshots)
	if result.Error != nil {
		log.Printf("[ERROR] Database error when listing snapshots: %v\n", result.Error)
		return nil, weathererr.NewDatabaseError("failed to list snapshots", result.Error)
	}

	if snapshots == nil {
		snapshots = []models.WeatherSnapshot{}
	}
	return snapshots, nil
}
