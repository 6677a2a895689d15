// Package sensors detects which lux and environment sensors are fitted and
// reads them.
//
// Initialise probes each category once, in a fixed order, and commits the
// first candidate that answers. The selection never changes afterwards.
// Sensors is not safe for concurrent use; one loop owns it.
package sensors

import (
	"time"

	"pixelit-go/drivers/ldr"
	"pixelit-go/services/config"
	"pixelit-go/types"
	"pixelit-go/x/timex"

	"tinygo.org/x/drivers"
)

// LogFunc receives (function, message) log lines. Nil disables logging.
type LogFunc func(function, message string)

// DHT is a single-wire temperature/humidity sensor.
type DHT interface {
	Temperature() (float32, error) // °C
	Humidity() (float32, error)    // %RH
}

// Platform supplies the hardware the candidates are probed on.
type Platform interface {
	I2C(sda, scl uint8) (drivers.I2C, error)
	ADC(pin uint8) (ldr.ADC, error)
	DHT(pin uint8) (DHT, error)
}

type luxDevice interface {
	Lux() (float32, error)
}

// envDevice returns raw readings: °C, %RH, hPa, kΩ, offsets not applied.
type envDevice interface {
	Read() (types.TemperatureReading, error)
}

type luxCandidate struct {
	kind  types.LuxSensorKind
	name  string
	probe func(s *Sensors) (luxDevice, bool)
}

type envCandidate struct {
	kind  types.TempSensorKind
	name  string
	probe func(s *Sensors) (envDevice, bool)
}

type Sensors struct {
	cfg      *config.Config
	platform Platform
	clock    timex.Clock
	log      LogFunc

	bus       drivers.I2C // nil when the bus could not be opened
	busTried  bool
	luxChosen bool
	envChosen bool

	luxKind types.LuxSensorKind
	lux     luxDevice
	envKind types.TempSensorKind
	env     envDevice

	lastLux types.LuxReading

	luxCandidates []luxCandidate
	envCandidates []envCandidate
}

// New creates the sensor set. Nothing is probed until Initialise.
func New(cfg *config.Config, p Platform) *Sensors {
	return &Sensors{
		cfg:           cfg,
		platform:      p,
		clock:         timex.System,
		luxKind:       types.LuxLDR,
		envKind:       types.TempNone,
		luxCandidates: defaultLuxCandidates(),
		envCandidates: defaultEnvCandidates(),
	}
}

func (s *Sensors) SetLogDelegate(f LogFunc) { s.log = f }

func (s *Sensors) logf(function, message string) {
	if s.log != nil {
		s.log(function, message)
	}
}

// Initialise opens the bus and selects one sensor per category.
func (s *Sensors) Initialise() {
	s.initBus()
	s.SelectLuxSensor()
	s.SelectTemperatureSensor()
}

// LuxKind and TempKind report the committed selection.
func (s *Sensors) LuxKind() types.LuxSensorKind   { return s.luxKind }
func (s *Sensors) TempKind() types.TempSensorKind { return s.envKind }

// LastLux returns the result of the most recent ReadLux.
func (s *Sensors) LastLux() types.LuxReading { return s.lastLux }

// Info names the selected sensors.
func (s *Sensors) Info() types.SensorInfo {
	return types.SensorInfo{Lux: s.luxKind.String(), Temperature: s.envKind.String()}
}

func (s *Sensors) staleAfter() time.Duration {
	return time.Duration(s.cfg.EnvStaleAfterMs) * time.Millisecond
}

func (s *Sensors) dhtSettle() time.Duration {
	return time.Duration(s.cfg.DHTSettleMs) * time.Millisecond
}
