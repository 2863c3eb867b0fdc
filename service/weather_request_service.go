package service

import (
	"encoding/json"
	"log"
	"strings"
	"time"

	"gorm.io/gorm"
	weathererr "weathertrack.app/errors"
	"weathertrack.app/models"
	"weathertrack.app/providers"
)

// maxForecastDays is how far past today a requested end date may reach
const maxForecastDays = 5

// WeatherRequestService orchestrates the weather request lifecycle
type WeatherRequestService struct {
	db           *gorm.DB
	requestRepo  WeatherRequestRepositoryInterface
	snapshotRepo WeatherSnapshotRepositoryInterface
	locations    LocationResolverInterface
	gateway      providers.WeatherGateway
}

// NewWeatherRequestService creates a new weather request service
func NewWeatherRequestService(
	db *gorm.DB,
	requestRepo WeatherRequestRepositoryInterface,
	snapshotRepo WeatherSnapshotRepositoryInterface,
	locations LocationResolverInterface,
	gateway providers.WeatherGateway,
) *WeatherRequestService {
	return &WeatherRequestService{
		db:           db,
		requestRepo:  requestRepo,
		snapshotRepo: snapshotRepo,
		locations:    locations,
		gateway:      gateway,
	}
}

func parseLocalDate(value string) (time.Time, error) {
	return time.ParseInLocation("2006-01-02", value, time.Local)
}

func localToday() time.Time {
	now := time.Now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.Local)
}

func validateDateRange(startDate, endDate string) error {
	start, err := parseLocalDate(startDate)
	if err != nil {
		return weathererr.NewValidationError("invalid startDate: use YYYY-MM-DD and a real calendar date")
	}
	end, err := parseLocalDate(endDate)
	if err != nil {
		return weathererr.NewValidationError("invalid endDate: use YYYY-MM-DD and a real calendar date")
	}

	today := localToday()
	if start.After(end) {
		return weathererr.NewValidationError("startDate must be before or equal to endDate")
	}
	if start.Before(today) {
		return weathererr.NewValidationError("startDate cannot be in the past, only today and future forecasts are supported")
	}
	if int(end.Sub(today).Hours()/24) > maxForecastDays {
		return weathererr.NewValidationError("endDate cannot be more than 5 days from today")
	}
	return nil
}

func unitsToStoredUnit(units string) string {
	if units == "imperial" {
		return models.UnitFahrenheit
	}
	return models.UnitCelsius
}

func storedUnitToUnits(unit string) string {
	if unit == models.UnitFahrenheit {
		return "imperial"
	}
	return "metric"
}

// normalizeNotes drops empty notes on create, matching the stored shape of a
// request created without any
func normalizeNotes(notes *string) *string {
	if notes == nil || *notes == "" {
		return nil
	}
	return notes
}

func midpoint(minValue, maxValue *float64) *float64 {
	if minValue == nil || maxValue == nil {
		return nil
	}
	mid := (*minValue + *maxValue) / 2
	return &mid
}

// Create resolves the location, fetches current weather plus the forecast,
// and persists the request with one snapshot per forecast day
func (s *WeatherRequestService) Create(input *models.CreateWeatherRequestInput) (*models.CreateWeatherRequestResult, error) {
	log.Printf("[DEBUG] WeatherRequestService.Create: %+v\n", input)

	locationInput := strings.TrimSpace(input.LocationInput)
	if locationInput == "" {
		return nil, weathererr.NewValidationError("locationInput is required")
	}
	locationType := input.LocationType
	if locationType == "" {
		locationType = providers.LocationTypeCity
	}
	units := input.Units
	if units == "" {
		units = "metric"
	}

	if err := validateDateRange(input.StartDate, input.EndDate); err != nil {
		return nil, err
	}

	location, err := s.locations.ResolveAndPersistLocation(locationInput, locationType)
	if err != nil {
		return nil, err
	}

	weather, err := s.gateway.GetCurrentAndForecast(location.Lat, location.Lon, units)
	if err != nil {
		return nil, err
	}

	request := &models.WeatherRequest{
		LocationID:         location.ID,
		RequestedStartDate: input.StartDate,
		RequestedEndDate:   input.EndDate,
		TemperatureUnit:    unitsToStoredUnit(units),
		Notes:              normalizeNotes(input.Notes),
	}
	if weather.Current != nil {
		request.CurrentTemp = weather.Current.Temp
		request.CurrentFeelsLike = weather.Current.FeelsLike
	}
	if err := s.requestRepo.Create(request); err != nil {
		return nil, err
	}

	snapshots := make([]models.WeatherSnapshot, 0, len(weather.Forecast))
	for _, day := range weather.Forecast {
		snapshot := models.WeatherSnapshot{
			WeatherRequestID: request.ID,
			SnapshotDate:     day.Date,
			TempMin:          day.TempMin,
			TempMax:          day.TempMax,
		}
		if day.Description != "" {
			description := day.Description
			snapshot.Description = &description
		}
		if payload, marshalErr := json.Marshal(day); marshalErr == nil {
			raw := string(payload)
			snapshot.RawAPIPayload = &raw
		}
		snapshots = append(snapshots, snapshot)
	}
	if err := s.snapshotRepo.BulkInsert(snapshots); err != nil {
		return nil, err
	}

	stored, err := s.snapshotRepo.ListByRequestID(request.ID)
	if err != nil {
		return nil, err
	}
	enriched, err := s.requestRepo.GetEnriched(request.ID)
	if err != nil {
		return nil, err
	}
	enriched.Snapshots = stored

	return &models.CreateWeatherRequestResult{
		Request:   *enriched,
		Location:  *location,
		Current:   weather.Current,
		Forecast:  weather.Forecast,
		Snapshots: stored,
	}, nil
}

// List returns a filtered, paginated page of requests, newest first
func (s *WeatherRequestService) List(filters models.ListFilters) ([]models.EnrichedRequest, error) {
	log.Printf("[DEBUG] WeatherRequestService.List: %+v\n", filters)

	if filters.Limit <= 0 {
		filters.Limit = 50
	}
	if filters.Limit > 100 {
		filters.Limit = 100
	}
	if filters.Offset < 0 {
		filters.Offset = 0
	}

	return s.requestRepo.List(filters)
}

// GetByID returns one request with its snapshots ordered by date ascending
func (s *WeatherRequestService) GetByID(id uint) (*models.EnrichedRequest, error) {
	log.Printf("[DEBUG] WeatherRequestService.GetByID: id=%d\n", id)

	enriched, err := s.requestRepo.GetEnriched(id)
	if err != nil {
		return nil, err
	}
	if enriched == nil {
		return nil, weathererr.NewNotFoundError("weather request not found")
	}

	snapshots, err := s.snapshotRepo.ListByRequestID(id)
	if err != nil {
		return nil, err
	}
	enriched.Snapshots = snapshots
	return enriched, nil
}

// Update applies a partial update. A unit change converts the request and all
// of its snapshots before any date reselection reads snapshot temperatures;
// a date reselection collapses the range to one day, re-derives the current
// temperature, and prunes every other snapshot.
func (s *WeatherRequestService) Update(id uint, input *models.UpdateWeatherRequestInput) (*models.EnrichedRequest, error) {
	log.Printf("[DEBUG] WeatherRequestService.Update: id=%d, input=%+v\n", id, input)

	enriched, err := s.requestRepo.GetEnriched(id)
	if err != nil {
		return nil, err
	}
	if enriched == nil {
		return nil, weathererr.NewNotFoundError("weather request not found")
	}

	if input.SelectedDate != nil {
		if _, parseErr := parseLocalDate(*input.SelectedDate); parseErr != nil {
			return nil, weathererr.NewValidationError("invalid selectedDate: use YYYY-MM-DD and a real calendar date")
		}
	}

	tx := s.db.Begin()
	if tx.Error != nil {
		return nil, weathererr.NewDatabaseError("failed to begin transaction", tx.Error)
	}
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	var request models.WeatherRequest
	if err := tx.First(&request, id).Error; err != nil {
		tx.Rollback()
		return nil, weathererr.NewDatabaseError("failed to load weather request", err)
	}

	if input.Units != nil {
		if err := s.applyUnitChange(tx, &request, *input.Units); err != nil {
			tx.Rollback()
			return nil, err
		}
	}

	if input.SelectedDate != nil {
		if err := s.applyDateReselection(tx, &request, enriched, *input.SelectedDate); err != nil {
			tx.Rollback()
			return nil, err
		}
	}

	if input.Notes != nil {
		notes := *input.Notes
		request.Notes = &notes
	}

	if err := tx.Save(&request).Error; err != nil {
		tx.Rollback()
		return nil, weathererr.NewDatabaseError("failed to save weather request", err)
	}
	if err := tx.Commit().Error; err != nil {
		return nil, weathererr.NewDatabaseError("failed to commit transaction", err)
	}

	return s.GetByID(id)
}

// applyUnitChange converts the request and every snapshot in place. A no-op
// when the stored unit already matches.
func (s *WeatherRequestService) applyUnitChange(tx *gorm.DB, request *models.WeatherRequest, units string) error {
	newUnit := unitsToStoredUnit(units)
	oldUnit := request.TemperatureUnit
	if newUnit == oldUnit {
		return nil
	}

	request.CurrentTemp = ConvertTemperature(request.CurrentTemp, oldUnit, newUnit)
	request.CurrentFeelsLike = ConvertTemperature(request.CurrentFeelsLike, oldUnit, newUnit)
	request.TemperatureUnit = newUnit

	var snapshots []models.WeatherSnapshot
	if err := tx.Where("weather_request_id = ?", request.ID).Find(&snapshots).Error; err != nil {
		return weathererr.NewDatabaseError("failed to load snapshots for conversion", err)
	}
	for i := range snapshots {
		snapshots[i].TempMin = ConvertTemperature(snapshots[i].TempMin, oldUnit, newUnit)
		snapshots[i].TempMax = ConvertTemperature(snapshots[i].TempMax, oldUnit, newUnit)
		if err := tx.Save(&snapshots[i]).Error; err != nil {
			return weathererr.NewDatabaseError("failed to save converted snapshot", err)
		}
	}
	return nil
}

// applyDateReselection collapses the request to a single day. The current
// temperature comes from the matching snapshot's midpoint when one exists,
// else from a fresh forecast fetch, else from fresh current conditions. Stale
// snapshots are pruned only after the new temperature is resolved.
func (s *WeatherRequestService) applyDateReselection(tx *gorm.DB, request *models.WeatherRequest, enriched *models.EnrichedRequest, selectedDate string) error {
	request.RequestedStartDate = selectedDate
	request.RequestedEndDate = selectedDate

	var snapshots []models.WeatherSnapshot
	if err := tx.Where("weather_request_id = ?", request.ID).Find(&snapshots).Error; err != nil {
		return weathererr.NewDatabaseError("failed to load snapshots for reselection", err)
	}

	var selected *models.WeatherSnapshot
	for i := range snapshots {
		if snapshots[i].SnapshotDate == selectedDate {
			selected = &snapshots[i]
			break
		}
	}

	if selected != nil {
		mid := midpoint(selected.TempMin, selected.TempMax)
		request.CurrentTemp = mid
		request.CurrentFeelsLike = mid
	} else {
		weather, err := s.gateway.GetCurrentAndForecast(enriched.Lat, enriched.Lon, storedUnitToUnits(request.TemperatureUnit))
		if err != nil {
			return err
		}

		var day *models.ForecastDay
		for i := range weather.Forecast {
			if weather.Forecast[i].Date == selectedDate {
				day = &weather.Forecast[i]
				break
			}
		}
		if day != nil {
			mid := midpoint(day.TempMin, day.TempMax)
			request.CurrentTemp = mid
			request.CurrentFeelsLike = mid
		} else if weather.Current != nil {
			// Selected date is outside the fresh forecast window; fall back
			// to current conditions.
			request.CurrentTemp = weather.Current.Temp
			request.CurrentFeelsLike = weather.Current.FeelsLike
		} else {
			request.CurrentTemp = nil
			request.CurrentFeelsLike = nil
		}
	}

	if err := tx.Where("weather_request_id = ? AND snapshot_date <> ?", request.ID, selectedDate).
		Delete(&models.WeatherSnapshot{}).Error; err != nil {
		return weathererr.NewDatabaseError("failed to prune snapshots", err)
	}
	return nil
}

// Delete removes a request and all of its snapshots
func (s *WeatherRequestService) Delete(id uint) error {
	log.Printf("[DEBUG] WeatherRequestService.Delete: id=%d\n", id)

	existing, err := s.requestRepo.FindByID(id)
	if err != nil {
		return err
	}
	if existing == nil {
		return weathererr.NewNotFoundError("weather request not found")
	}

	return s.requestRepo.DeleteWithSnapshots(id)
}
