package telemetry

import "pixelit-go/types"

// Lux is the JSON shape of a lux reading. Lux is null when the sensor
// failed.
type Lux struct {
	Lux *float32 `json:"lux"`
}

// Env is the JSON shape of an environment reading. Absent fields are
// omitted.
type Env struct {
	Temperature *float32 `json:"temperature,omitempty"`
	Humidity    *float32 `json:"humidity,omitempty"`
	Pressure    *float32 `json:"pressure,omitempty"`
	Gas         *float32 `json:"gas,omitempty"`
}

func LuxPayload(r types.LuxReading) Lux {
	return Lux{Lux: opt(r.HasLux, r.Lux)}
}

func EnvPayload(r types.TemperatureReading) Env {
	return Env{
		Temperature: opt(r.HasTemperature, r.Temperature),
		Humidity:    opt(r.HasHumidity, r.Humidity),
		Pressure:    opt(r.HasPressure, r.Pressure),
		Gas:         opt(r.HasGas, r.Gas),
	}
}

func opt(ok bool, v float32) *float32 {
	if !ok {
		return nil
	}
	return &v
}
