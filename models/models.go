// Package models defines data structures used throughout the application
package models

import (
	"time"
)

// Temperature units stored on a weather request
const (
	UnitCelsius    = "C"
	UnitFahrenheit = "F"
)

// Location represents a geocoded place shared by many weather requests.
// Dates and coordinates never change once the row is created.
type Location struct {
	ID             uint      `json:"id" gorm:"primaryKey"`
	RawInput       string    `json:"raw_input" gorm:"not null"`
	NormalizedName string    `json:"normalized_name" gorm:"index;not null"`
	CountryCode    string    `json:"country_code"`
	Lat            float64   `json:"lat" gorm:"not null"`
	Lon            float64   `json:"lon" gorm:"not null"`
	Source         string    `json:"source"`
	CreatedAt      time.Time `json:"created_at"`
}

// WeatherRequest represents a persisted weather lookup. Dates are stored as
// YYYY-MM-DD strings so lexicographic comparison matches calendar order.
type WeatherRequest struct {
	ID                 uint      `json:"id" gorm:"primaryKey"`
	LocationID         uint      `json:"location_id" gorm:"index;not null"`
	Location           Location  `json:"-" gorm:"foreignKey:LocationID"`
	RequestedStartDate string    `json:"requested_start_date" gorm:"not null"`
	RequestedEndDate   string    `json:"requested_end_date" gorm:"not null"`
	TemperatureUnit    string    `json:"temperature_unit" gorm:"not null;default:C"`
	CurrentTemp        *float64  `json:"current_temp"`
	CurrentFeelsLike   *float64  `json:"current_feels_like"`
	Notes              *string   `json:"notes"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// WeatherSnapshot represents one forecast day owned by a weather request
type WeatherSnapshot struct {
	ID               uint           `json:"id" gorm:"primaryKey"`
	WeatherRequestID uint           `json:"weather_request_id" gorm:"index;not null"`
	WeatherRequest   WeatherRequest `json:"-" gorm:"foreignKey:WeatherRequestID"`
	SnapshotDate     string         `json:"snapshot_date" gorm:"not null"`
	TempMin          *float64       `json:"temp_min"`
	TempMax          *float64       `json:"temp_max"`
	Description      *string        `json:"description"`
	RawAPIPayload    *string        `json:"raw_api_payload" gorm:"type:text"`
}

// EnrichedRequest is a WeatherRequest flattened with its location fields and
// snapshots. It is a read-time projection computed at the repository boundary,
// never a stored row.
type EnrichedRequest struct {
	ID                 uint              `json:"id"`
	LocationID         uint              `json:"location_id"`
	RequestedStartDate string            `json:"requested_start_date"`
	RequestedEndDate   string            `json:"requested_end_date"`
	TemperatureUnit    string            `json:"temperature_unit"`
	CurrentTemp        *float64          `json:"current_temp"`
	CurrentFeelsLike   *float64          `json:"current_feels_like"`
	Notes              *string           `json:"notes"`
	CreatedAt          time.Time         `json:"created_at"`
	UpdatedAt          time.Time         `json:"updated_at"`
	RawInput           string            `json:"raw_input"`
	NormalizedName     string            `json:"normalized_name"`
	CountryCode        string            `json:"country_code"`
	Lat                float64           `json:"lat"`
	Lon                float64           `json:"lon"`
	Snapshots          []WeatherSnapshot `json:"snapshots"`
}

// GeocodedLocation is the result of resolving free-text input upstream
type GeocodedLocation struct {
	NormalizedName string  `json:"normalized_name"`
	CountryCode    string  `json:"country_code"`
	Lat            float64 `json:"lat"`
	Lon            float64 `json:"lon"`
}

// CurrentWeather represents current conditions returned by the gateway
type CurrentWeather struct {
	Temp        *float64 `json:"temp"`
	FeelsLike   *float64 `json:"feels_like"`
	TempMin     *float64 `json:"temp_min"`
	TempMax     *float64 `json:"temp_max"`
	Humidity    float64  `json:"humidity"`
	Pressure    float64  `json:"pressure"`
	Description string   `json:"description"`
	Icon        string   `json:"icon"`
	WindSpeed   float64  `json:"wind_speed"`
	WindDeg     float64  `json:"wind_deg"`
	Clouds      float64  `json:"clouds"`
	Sunrise     int64    `json:"sunrise"`
	Sunset      int64    `json:"sunset"`
}

// ForecastDay is one aggregated forecast day returned by the gateway
type ForecastDay struct {
	Date        string   `json:"date"`
	TempMin     *float64 `json:"temp_min"`
	TempMax     *float64 `json:"temp_max"`
	Description string   `json:"description"`
}

// CurrentAndForecast bundles the two gateway fetches for one location
type CurrentAndForecast struct {
	Current  *CurrentWeather `json:"current"`
	Forecast []ForecastDay   `json:"forecast"`
}

// CreateWeatherRequestInput represents data required to create a weather request
type CreateWeatherRequestInput struct {
	LocationInput string  `json:"locationInput" binding:"required"`
	LocationType  string  `json:"locationType" binding:"omitempty,oneof=city zip coords landmark"`
	StartDate     string  `json:"startDate" binding:"required,dateformat"`
	EndDate       string  `json:"endDate" binding:"required,dateformat"`
	Units         string  `json:"units" binding:"omitempty,oneof=metric imperial"`
	Notes         *string `json:"notes"`
}

// UpdateWeatherRequestInput represents a partial update to a weather request.
// Nil fields are left unchanged; an empty notes string clears the notes.
type UpdateWeatherRequestInput struct {
	SelectedDate *string `json:"selectedDate" binding:"omitempty,dateformat"`
	Units        *string `json:"units" binding:"omitempty,oneof=metric imperial"`
	Notes        *string `json:"notes"`
}

// ListFilters narrows and pages the weather request list
type ListFilters struct {
	LocationName string
	StartDate    string
	EndDate      string
	Limit        int
	Offset       int
}

// CreateWeatherRequestResult is the denormalized create response
type CreateWeatherRequestResult struct {
	Request   EnrichedRequest   `json:"request"`
	Location  Location          `json:"location"`
	Current   *CurrentWeather   `json:"current"`
	Forecast  []ForecastDay     `json:"forecast"`
	Snapshots []WeatherSnapshot `json:"snapshots"`
}

// Video is one media enrichment result for a location
type Video struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Thumbnail string `json:"thumbnail"`
	Link      string `json:"link"`
}

// MediaResult bundles media enrichment for a location. Videos degrade to an
// empty list when the enrichment provider fails.
type MediaResult struct {
	Location Location `json:"location"`
	Videos   []Video  `json:"videos"`
	MapURL   string   `json:"mapUrl"`
}

// ErrorResponse represents an error message structure for API responses
type ErrorResponse struct {
	Error string `json:"error"`
}
