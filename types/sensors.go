package types

// ------------------------
// Sensor kinds (selected once at boot)
// ------------------------

type LuxSensorKind uint8

const (
	LuxLDR LuxSensorKind = iota // photoresistor fallback
	LuxBH1750
	LuxMAX44009
)

func (k LuxSensorKind) String() string {
	switch k {
	case LuxLDR:
		return "LDR"
	case LuxBH1750:
		return "BH1750"
	case LuxMAX44009:
		return "Max44009"
	}
	return "unknown"
}

type TempSensorKind uint8

const (
	TempNone TempSensorKind = iota
	TempBME280
	TempDHT
	TempBME680
	TempBMP280
)

func (k TempSensorKind) String() string {
	switch k {
	case TempNone:
		return "none"
	case TempBME280:
		return "BME280"
	case TempDHT:
		return "DHT"
	case TempBME680:
		return "BME680"
	case TempBMP280:
		return "BMP280"
	}
	return "unknown"
}

// Capabilities lists which TemperatureReading fields a kind can ever supply.
func (k TempSensorKind) Capabilities() (temp, hum, pres, gas bool) {
	switch k {
	case TempBME280:
		return true, true, true, false
	case TempDHT:
		return true, true, false, false
	case TempBME680:
		return true, true, true, true
	case TempBMP280:
		return true, false, true, false
	}
	return false, false, false, false
}

// ------------------------
// Readings
// ------------------------

type TemperatureUnit uint8

const (
	Celsius TemperatureUnit = iota
	Fahrenheit
)

// TemperatureReading carries four independently optional values.
// A value is only meaningful when its Has flag is set.
type TemperatureReading struct {
	HasTemperature bool
	Temperature    float32 // °C, or °F when the configured unit is Fahrenheit

	HasHumidity bool
	Humidity    float32 // %RH

	HasPressure bool
	Pressure    float32 // hPa

	HasGas bool
	Gas    float32 // kΩ
}

// Absent returns a reading with every field marked absent.
func Absent() TemperatureReading { return TemperatureReading{} }

// AnyPresent reports whether at least one field is present.
func (r TemperatureReading) AnyPresent() bool {
	return r.HasTemperature || r.HasHumidity || r.HasPressure || r.HasGas
}

// LuxReading carries a single optional lux value.
type LuxReading struct {
	HasLux bool
	Lux    float32
}

// SensorInfo describes what was selected at boot.
type SensorInfo struct {
	Lux         string `json:"lux"`
	Temperature string `json:"temperature"`
}
