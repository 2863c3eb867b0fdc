package providers

import (
	"log/slog"
	"time"

	"weathertrack.app/metrics"
	"weathertrack.app/models"
)

// InstrumentedGateway decorates a WeatherGateway with structured logging and
// Prometheus call metrics. It changes no behavior of the wrapped gateway.
type InstrumentedGateway struct {
	next    WeatherGateway
	metrics *metrics.GatewayMetrics
}

// NewInstrumentedGateway wraps a gateway with logging and metrics
func NewInstrumentedGateway(next WeatherGateway) *InstrumentedGateway {
	return &InstrumentedGateway{
		next:    next,
		metrics: metrics.NewGatewayMetrics(),
	}
}

func (g *InstrumentedGateway) Geocode(locationInput, locationType string) (*models.GeocodedLocation, error) {
	start := time.Now()
	resolved, err := g.next.Geocode(locationInput, locationType)
	g.record("geocode", start, err)

	if err != nil {
		slog.Error("Gateway geocode failed", "input", locationInput, "type", locationType, "error", err)
		return nil, err
	}
	slog.Debug("Gateway geocode succeeded", "input", locationInput,
		"name", resolved.NormalizedName, "lat", resolved.Lat, "lon", resolved.Lon)
	return resolved, nil
}

func (g *InstrumentedGateway) GetCurrentAndForecast(lat, lon float64, units string) (*models.CurrentAndForecast, error) {
	start := time.Now()
	result, err := g.next.GetCurrentAndForecast(lat, lon, units)
	g.record("current_and_forecast", start, err)

	if err != nil {
		slog.Error("Gateway weather fetch failed", "lat", lat, "lon", lon, "error", err)
		return nil, err
	}
	slog.Debug("Gateway weather fetch succeeded", "lat", lat, "lon", lon, "forecast_days", len(result.Forecast))
	return result, nil
}

func (g *InstrumentedGateway) record(operation string, start time.Time, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	g.metrics.RecordCall(operation, status)
	g.metrics.RecordLatency(operation, time.Since(start).Seconds())
}
