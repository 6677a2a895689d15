package sensors

import (
	"errors"
	"strings"

	"pixelit-go/drivers/bme680"
	"pixelit-go/types"
	"pixelit-go/x/mathx"

	"tinygo.org/x/drivers/bme280"
	"tinygo.org/x/drivers/bmp280"
)

// BME280 and BMP280 are strapped to the alternate address.
const bmx280Address = 0x76

func defaultEnvCandidates() []envCandidate {
	return []envCandidate{
		{kind: types.TempBME280, name: "BME280", probe: probeBME280},
		{kind: types.TempBMP280, name: "BMP280", probe: probeBMP280},
		{kind: types.TempBME680, name: "BME680", probe: probeBME680},
		{kind: types.TempDHT, name: "DHT", probe: probeDHT},
	}
}

// SelectTemperatureSensor commits the first environment candidate that
// answers, or TempNone. Later calls return the committed kind.
func (s *Sensors) SelectTemperatureSensor() types.TempSensorKind {
	if s.envChosen {
		return s.envKind
	}
	s.envChosen = true
	for _, c := range s.envCandidates {
		if c.kind == types.TempBMP280 {
			s.logf("Setup", "BMP280 Trying")
		}
		if dev, ok := c.probe(s); ok {
			s.envKind, s.env = c.kind, dev
			s.logf("Setup", c.name+" started")
			return s.envKind
		}
	}
	s.envKind, s.env = types.TempNone, nil
	s.logf("Setup", "No BMP280, BME280, BME 680 or DHT Sensor found")
	return s.envKind
}

// ReadEnvironment reads the selected sensor and normalises the result:
// offsets on present fields, then the configured temperature unit.
func (s *Sensors) ReadEnvironment() types.TemperatureReading {
	r := types.Absent()
	if s.env != nil {
		v, err := s.env.Read()
		if err != nil {
			s.logf("GetTempSensorData", "Error while reading "+strings.ToLower(s.envKind.String()))
		} else {
			r = v
		}
	}
	return normalise(r, s.cfg)
}

// ---- BME280 ----

type bme280Env struct{ dev bme280.Device }

func probeBME280(s *Sensors) (envDevice, bool) {
	if s.bus == nil {
		return nil, false
	}
	d := bme280.New(s.bus)
	d.Address = bmx280Address
	if !d.Connected() {
		return nil, false
	}
	d.Configure()
	return &bme280Env{dev: d}, true
}

func (b *bme280Env) Read() (types.TemperatureReading, error) {
	t, err := b.dev.ReadTemperature()
	if err != nil {
		return types.Absent(), err
	}
	h, err := b.dev.ReadHumidity()
	if err != nil {
		return types.Absent(), err
	}
	p, err := b.dev.ReadPressure()
	if err != nil {
		return types.Absent(), err
	}
	return types.TemperatureReading{
		HasTemperature: true, Temperature: float32(t) / 1000,
		HasHumidity: true, Humidity: float32(h) / 100,
		HasPressure: true, Pressure: float32(p) / 100000, // mPa -> hPa
	}, nil
}

// ---- BMP280 ----

type bmp280Env struct{ dev bmp280.Device }

func probeBMP280(s *Sensors) (envDevice, bool) {
	if s.bus == nil {
		return nil, false
	}
	d := bmp280.New(s.bus)
	d.Address = bmx280Address
	if !d.Connected() {
		return nil, false
	}
	d.Configure(bmp280.STANDBY_1MS, bmp280.FILTER_OFF, bmp280.SAMPLING_16X, bmp280.SAMPLING_16X, bmp280.MODE_NORMAL)
	return &bmp280Env{dev: d}, true
}

func (b *bmp280Env) Read() (types.TemperatureReading, error) {
	t, err := b.dev.ReadTemperature()
	if err != nil {
		return types.Absent(), err
	}
	p, err := b.dev.ReadPressure()
	if err != nil {
		return types.Absent(), err
	}
	return types.TemperatureReading{
		HasTemperature: true, Temperature: float32(t) / 1000,
		HasPressure: true, Pressure: float32(p) / 100000,
	}, nil
}

// ---- BME680 ----

func probeBME680(s *Sensors) (envDevice, bool) {
	if s.bus == nil {
		return nil, false
	}
	d := bme680.New(s.bus)
	if !d.Connected() {
		return nil, false
	}
	if err := d.Configure(bme680.Config{Clock: s.clock}); err != nil {
		return nil, false
	}
	return newTwoPhaseReader(&d, s.clock, s.staleAfter(), s.logf), true
}

// ---- DHT ----

type dhtEnv struct{ dev DHT }

// probeDHT waits for the sensor to settle, then accepts it only if both
// values read back as numbers.
func probeDHT(s *Sensors) (envDevice, bool) {
	s.clock.Sleep(s.dhtSettle())
	if s.platform == nil {
		return nil, false
	}
	pin, ok := s.cfg.TranslatePin(s.cfg.OnewirePin)
	if !ok {
		return nil, false
	}
	dev, err := s.platform.DHT(pin)
	if err != nil {
		return nil, false
	}
	e := &dhtEnv{dev: dev}
	if _, err := e.Read(); err != nil {
		return nil, false
	}
	return e, true
}

var errDHTNaN = errors.New("sensors: dht returned NaN")

// Read reports humidity rounded to whole percent.
func (d *dhtEnv) Read() (types.TemperatureReading, error) {
	t, err := d.dev.Temperature()
	if err != nil {
		return types.Absent(), err
	}
	h, err := d.dev.Humidity()
	if err != nil {
		return types.Absent(), err
	}
	if mathx.IsNaN(t) || mathx.IsNaN(h) {
		return types.Absent(), errDHTNaN
	}
	return types.TemperatureReading{
		HasTemperature: true, Temperature: t,
		HasHumidity: true, Humidity: mathx.Round(h),
	}, nil
}
