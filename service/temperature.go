package service

import "weathertrack.app/models"

// CelsiusToFahrenheit converts a Celsius reading to Fahrenheit
func CelsiusToFahrenheit(c float64) float64 {
	return c*9/5 + 32
}

// FahrenheitToCelsius converts a Fahrenheit reading to Celsius
func FahrenheitToCelsius(f float64) float64 {
	return (f - 32) * 5 / 9
}

// ConvertTemperature converts a possibly-absent reading between stored units.
// Absent readings pass through untouched, never coerced to zero; a zero
// reading is a real value and converts.
func ConvertTemperature(value *float64, fromUnit, toUnit string) *float64 {
	if value == nil || fromUnit == toUnit {
		return value
	}

	var converted float64
	switch {
	case fromUnit == models.UnitCelsius && toUnit == models.UnitFahrenheit:
		converted = CelsiusToFahrenheit(*value)
	case fromUnit == models.UnitFahrenheit && toUnit == models.UnitCelsius:
		converted = FahrenheitToCelsius(*value)
	default:
		return value
	}
	return &converted
}
