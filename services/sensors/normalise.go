package sensors

import (
	"pixelit-go/services/config"
	"pixelit-go/types"
)

// CelsiusToFahrenheit converts °C to °F.
func CelsiusToFahrenheit(c float32) float32 {
	return c*9/5 + 32
}

// normalise applies the configured offsets to present fields only, then the
// temperature unit.
func normalise(r types.TemperatureReading, cfg *config.Config) types.TemperatureReading {
	if r.HasTemperature {
		r.Temperature += cfg.TemperatureOffset
	}
	if r.HasHumidity {
		r.Humidity += cfg.HumidityOffset
	}
	if r.HasPressure {
		r.Pressure += cfg.PressureOffset
	}
	if r.HasGas {
		r.Gas += cfg.GasOffset
	}
	if r.HasTemperature && cfg.TemperatureUnit == types.Fahrenheit {
		r.Temperature = CelsiusToFahrenheit(r.Temperature)
	}
	return r
}
