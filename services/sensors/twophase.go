package sensors

import (
	"time"

	"pixelit-go/drivers/bme680"
	"pixelit-go/types"
	"pixelit-go/x/timex"
)

// twoPhaseDevice is a sensor whose measurement is started and collected in
// separate calls.
type twoPhaseDevice interface {
	BeginReading() (time.Time, error)
	RemainingReadingMillis() int
	EndReading() (bme680.Sample, error)
}

type phase uint8

const (
	phaseIdle    phase = iota // nothing in flight
	phasePending              // in flight, not yet complete
	phaseDue                  // complete, not yet collected
)

func (p phase) String() string {
	switch p {
	case phaseIdle:
		return "idle"
	case phasePending:
		return "pending"
	case phaseDue:
		return "due"
	}
	return "unknown"
}

// twoPhaseReader keeps the render loop from blocking on a slow sensor.
//
// Called while idle it starts a measurement and returns the previous values.
// Called with a measurement in flight it collects it, blocking for whatever
// conversion time is left. A caller that has not completed a read within
// staleAfter (or never has) always gets a blocking, fresh read.
type twoPhaseReader struct {
	dev        twoPhaseDevice
	clock      timex.Clock
	staleAfter time.Duration
	log        LogFunc

	lastRead time.Time // zero until the first completed read
	cached   types.TemperatureReading
}

func newTwoPhaseReader(dev twoPhaseDevice, clock timex.Clock, staleAfter time.Duration, log LogFunc) *twoPhaseReader {
	return &twoPhaseReader{dev: dev, clock: clock, staleAfter: staleAfter, log: log}
}

func (r *twoPhaseReader) phase() phase {
	switch ms := r.dev.RemainingReadingMillis(); {
	case ms < 0:
		return phaseIdle
	case ms == 0:
		return phaseDue
	default:
		return phasePending
	}
}

func (r *twoPhaseReader) stale() bool {
	return r.lastRead.IsZero() || r.clock.Now().Sub(r.lastRead) > r.staleAfter
}

func (r *twoPhaseReader) logf(function, message string) {
	if r.log != nil {
		r.log(function, message)
	}
}

// Read never returns an error; failures are logged and reported as absent
// fields.
func (r *twoPhaseReader) Read() (types.TemperatureReading, error) {
	if r.phase() == phaseIdle {
		if _, err := r.dev.BeginReading(); err != nil {
			r.logf("GetTempSensorData", "Error while starting bme680 measurement")
			return r.cached, nil
		}
		if !r.stale() {
			return r.cached, nil
		}
	}

	s, err := r.dev.EndReading()
	if err != nil {
		r.logf("GetTempSensorData", "Error while reading bme680")
		return types.Absent(), nil
	}
	r.lastRead = r.clock.Now()
	r.cached = types.TemperatureReading{
		HasTemperature: true, Temperature: s.Temperature,
		HasHumidity: true, Humidity: s.Humidity,
		HasPressure: true, Pressure: s.Pressure / 100, // Pa -> hPa
		HasGas: true, Gas: s.GasResistance / 1000, // Ω -> kΩ
	}
	return r.cached, nil
}
