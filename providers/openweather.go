package providers

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"
	"unicode"

	"weathertrack.app/config"
	weathererr "weathertrack.app/errors"
	"weathertrack.app/models"
)

// OpenWeatherGateway implements WeatherGateway against the OpenWeather API
type OpenWeatherGateway struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// NewOpenWeatherGateway creates a gateway from explicit configuration. A
// missing API key fails fast as an upstream fault rather than surfacing later
// from inside a request.
func NewOpenWeatherGateway(cfg *config.WeatherConfig) (*OpenWeatherGateway, error) {
	if cfg.APIKey == "" {
		return nil, weathererr.NewUpstreamError("weather gateway is not configured (missing OPENWEATHER_API_KEY)", nil)
	}

	return &OpenWeatherGateway{
		apiKey:  cfg.APIKey,
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		client:  &http.Client{Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second},
	}, nil
}

type owmMain struct {
	Temp      float64  `json:"temp"`
	FeelsLike float64  `json:"feels_like"`
	TempMin   *float64 `json:"temp_min"`
	TempMax   *float64 `json:"temp_max"`
	Humidity  float64  `json:"humidity"`
	Pressure  float64  `json:"pressure"`
}

type owmWeather struct {
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

type owmCurrentResponse struct {
	Main    *owmMain     `json:"main"`
	Weather []owmWeather `json:"weather"`
	Wind    struct {
		Speed float64 `json:"speed"`
		Deg   float64 `json:"deg"`
	} `json:"wind"`
	Clouds struct {
		All float64 `json:"all"`
	} `json:"clouds"`
	Sys struct {
		Sunrise int64 `json:"sunrise"`
		Sunset  int64 `json:"sunset"`
	} `json:"sys"`
}

type owmForecastResponse struct {
	List []struct {
		Dt      int64        `json:"dt"`
		Main    *owmMain     `json:"main"`
		Weather []owmWeather `json:"weather"`
	} `json:"list"`
}

type owmGeoEntry struct {
	Name    string  `json:"name"`
	Country string  `json:"country"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
}

type owmZipResponse struct {
	Name    string   `json:"name"`
	Country string   `json:"country"`
	Lat     *float64 `json:"lat"`
	Lon     *float64 `json:"lon"`
}

// Geocode resolves free-text, zip, or coordinate input to a single place
func (g *OpenWeatherGateway) Geocode(locationInput, locationType string) (*models.GeocodedLocation, error) {
	trimmed := strings.TrimSpace(locationInput)
	if trimmed == "" {
		return nil, weathererr.NewValidationError("location input is required")
	}

	switch locationType {
	case LocationTypeCoords:
		return g.geocodeCoords(trimmed)
	case LocationTypeZip:
		return g.geocodeZip(trimmed)
	default:
		return g.geocodeDirect(trimmed)
	}
}

func (g *OpenWeatherGateway) geocodeCoords(input string) (*models.GeocodedLocation, error) {
	parts := strings.FieldsFunc(input, func(r rune) bool {
		return r == ',' || unicode.IsSpace(r)
	})
	if len(parts) < 2 {
		return nil, weathererr.NewValidationError("invalid coordinates, use format: latitude, longitude")
	}

	lat, latErr := strconv.ParseFloat(parts[0], 64)
	lon, lonErr := strconv.ParseFloat(parts[1], 64)
	if latErr != nil || lonErr != nil {
		return nil, weathererr.NewValidationError("invalid coordinates, use format: latitude, longitude")
	}
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return nil, weathererr.NewValidationError("coordinates out of range")
	}

	params := url.Values{}
	params.Set("lat", formatCoord(lat))
	params.Set("lon", formatCoord(lon))
	params.Set("limit", "1")

	var entries []owmGeoEntry
	if err := g.getJSON("/geo/1.0/reverse", params, &entries); err != nil {
		return nil, err
	}

	resolved := &models.GeocodedLocation{
		NormalizedName: fmt.Sprintf("%s, %s", formatCoord(lat), formatCoord(lon)),
		Lat:            lat,
		Lon:            lon,
	}
	if len(entries) > 0 {
		if entries[0].Name != "" {
			resolved.NormalizedName = entries[0].Name
		}
		resolved.CountryCode = entries[0].Country
	}
	return resolved, nil
}

func (g *OpenWeatherGateway) geocodeZip(input string) (*models.GeocodedLocation, error) {
	parts := strings.FieldsFunc(input, func(r rune) bool {
		return r == ',' || unicode.IsSpace(r)
	})
	zip := parts[0]

	// OpenWeather expects the zip parameter in "zip,CC" form
	zipParam := zip
	if len(parts) > 1 && parts[1] != "" {
		country := strings.ToUpper(parts[1])
		if len(country) > 2 {
			country = country[:2]
		}
		zipParam = zip + "," + country
	}

	params := url.Values{}
	params.Set("zip", zipParam)

	var entry owmZipResponse
	if err := g.getJSON("/geo/1.0/zip", params, &entry); err != nil {
		return nil, err
	}
	if entry.Lat == nil || entry.Lon == nil {
		return nil, weathererr.NewLocationNotFoundError("no location found for this postal code")
	}

	name := entry.Name
	if name == "" {
		name = input
	}
	return &models.GeocodedLocation{
		NormalizedName: name,
		CountryCode:    entry.Country,
		Lat:            *entry.Lat,
		Lon:            *entry.Lon,
	}, nil
}

func (g *OpenWeatherGateway) geocodeDirect(input string) (*models.GeocodedLocation, error) {
	params := url.Values{}
	params.Set("q", input)
	params.Set("limit", "5")

	var entries []owmGeoEntry
	if err := g.getJSON("/geo/1.0/direct", params, &entries); err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, weathererr.NewLocationNotFoundError(fmt.Sprintf("no location found for %q", input))
	}

	first := entries[0]
	name := first.Name
	if name == "" {
		name = input
	}
	return &models.GeocodedLocation{
		NormalizedName: name,
		CountryCode:    first.Country,
		Lat:            first.Lat,
		Lon:            first.Lon,
	}, nil
}

// GetCurrentAndForecast fetches current conditions and the 5-day forecast for
// coordinates. The two upstream calls are independent and issued concurrently.
func (g *OpenWeatherGateway) GetCurrentAndForecast(lat, lon float64, units string) (*models.CurrentAndForecast, error) {
	buildParams := func() url.Values {
		params := url.Values{}
		params.Set("lat", formatCoord(lat))
		params.Set("lon", formatCoord(lon))
		params.Set("units", units)
		return params
	}

	var (
		current     owmCurrentResponse
		forecast    owmForecastResponse
		currentErr  error
		forecastErr error
	)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		currentErr = g.getJSON("/data/2.5/weather", buildParams(), &current)
	}()
	go func() {
		defer wg.Done()
		forecastErr = g.getJSON("/data/2.5/forecast", buildParams(), &forecast)
	}()
	wg.Wait()

	if currentErr != nil {
		return nil, currentErr
	}
	if forecastErr != nil {
		return nil, forecastErr
	}

	return &models.CurrentAndForecast{
		Current:  normalizeCurrent(&current),
		Forecast: normalizeForecast(&forecast),
	}, nil
}

func (g *OpenWeatherGateway) getJSON(path string, params url.Values, out interface{}) error {
	params.Set("appid", g.apiKey)

	resp, err := g.client.Get(g.baseURL + path + "?" + params.Encode())
	if err != nil {
		return weathererr.NewUpstreamError("weather service temporarily unavailable", err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			slog.Warn("close response body", "error", closeErr)
		}
	}()

	if resp.StatusCode == http.StatusNotFound {
		return weathererr.NewLocationNotFoundError("location not found")
	}
	if resp.StatusCode >= http.StatusInternalServerError {
		return weathererr.NewUpstreamError("weather service temporarily unavailable", nil)
	}
	if resp.StatusCode != http.StatusOK {
		return weathererr.NewUpstreamError(fmt.Sprintf("weather API returned status code %d", resp.StatusCode), nil)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return weathererr.NewUpstreamError("failed to decode weather response", err)
	}
	return nil
}

func normalizeCurrent(resp *owmCurrentResponse) *models.CurrentWeather {
	if resp.Main == nil {
		return nil
	}

	temp := resp.Main.Temp
	feelsLike := resp.Main.FeelsLike
	current := &models.CurrentWeather{
		Temp:      &temp,
		FeelsLike: &feelsLike,
		TempMin:   resp.Main.TempMin,
		TempMax:   resp.Main.TempMax,
		Humidity:  resp.Main.Humidity,
		Pressure:  resp.Main.Pressure,
		WindSpeed: resp.Wind.Speed,
		WindDeg:   resp.Wind.Deg,
		Clouds:    resp.Clouds.All,
		Sunrise:   resp.Sys.Sunrise,
		Sunset:    resp.Sys.Sunset,
	}
	if len(resp.Weather) > 0 {
		current.Description = resp.Weather[0].Description
		current.Icon = resp.Weather[0].Icon
	}
	return current
}

// normalizeForecast groups 3-hourly samples by UTC calendar date and keeps at
// most the first five days: min/max over every temperature reading of the day,
// median-indexed description as the representative text.
func normalizeForecast(resp *owmForecastResponse) []models.ForecastDay {
	type dayAgg struct {
		temps []float64
		descs []string
	}
	byDate := make(map[string]*dayAgg)

	for _, item := range resp.List {
		date := time.Unix(item.Dt, 0).UTC().Format("2006-01-02")
		agg := byDate[date]
		if agg == nil {
			agg = &dayAgg{}
			byDate[date] = agg
		}
		if item.Main != nil {
			agg.temps = append(agg.temps, item.Main.Temp)
			if item.Main.TempMin != nil {
				agg.temps = append(agg.temps, *item.Main.TempMin)
			}
			if item.Main.TempMax != nil {
				agg.temps = append(agg.temps, *item.Main.TempMax)
			}
		}
		if len(item.Weather) > 0 && item.Weather[0].Description != "" {
			agg.descs = append(agg.descs, item.Weather[0].Description)
		}
	}

	dates := make([]string, 0, len(byDate))
	for date := range byDate {
		dates = append(dates, date)
	}
	sort.Strings(dates)
	if len(dates) > 5 {
		dates = dates[:5]
	}

	days := make([]models.ForecastDay, 0, len(dates))
	for _, date := range dates {
		agg := byDate[date]
		day := models.ForecastDay{Date: date}
		if len(agg.temps) > 0 {
			minTemp, maxTemp := agg.temps[0], agg.temps[0]
			for _, t := range agg.temps[1:] {
				if t < minTemp {
					minTemp = t
				}
				if t > maxTemp {
					maxTemp = t
				}
			}
			day.TempMin = &minTemp
			day.TempMax = &maxTemp
		}
		if len(agg.descs) > 0 {
			day.Description = agg.descs[len(agg.descs)/2]
		}
		days = append(days, day)
	}
	return days
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
