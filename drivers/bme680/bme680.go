// Package bme680 provides a driver for the Bosch BME680 gas, pressure,
// temperature and humidity sensor.
//
// Gas measurements need the on-chip heater, so a complete forced-mode cycle
// takes a couple of hundred milliseconds. The driver therefore exposes a
// two-phase API so callers can keep a render loop running:
//
//	d.BeginReading()              // start a forced measurement (fast)
//	ms := d.RemainingReadingMillis() // -1 idle, 0 due, >0 still converting
//	s, err := d.EndReading()      // blocks until the measurement is due
//
// NOTE: I2C.Tx MUST perform a write followed by a repeated-start read when both
// w and r are provided, without releasing the bus.
package bme680

import (
	"errors"
	"time"

	"pixelit-go/x/timex"

	"tinygo.org/x/drivers"
)

// Errors returned by the driver.
var (
	ErrNotConnected = errors.New("bme680: not connected")
	ErrNoNewData    = errors.New("bme680: no new data")
)

// Config controls measurement settings. All fields are optional.
type Config struct {
	// Address defaults to 0x77 if zero.
	Address uint16

	Temperature Oversampling // default 8x
	Humidity    Oversampling // default 2x
	Pressure    Oversampling // default 4x
	Filter      Filter       // default 3

	// HeaterTemp in °C (max 400) and HeaterDuration. Default 320 °C / 150 ms.
	// A zero HeaterDuration after defaults disables the gas measurement.
	HeaterTemp     uint16
	HeaterDuration time.Duration

	// PollInterval and PollAttempts bound the wait for the new-data flag once
	// the expected measurement time has passed. Default 5 ms x 10.
	PollInterval time.Duration
	PollAttempts int

	// Clock defaults to the wall clock.
	Clock timex.Clock
}

// Sample is one compensated measurement.
type Sample struct {
	Temperature   float32 // °C
	Pressure      float32 // Pa
	Humidity      float32 // %RH
	GasResistance float32 // Ω
	GasValid      bool
	HeaterStable  bool
}

// Device wraps an I2C connection to a BME680 device.
type Device struct {
	bus     drivers.I2C
	Address uint16

	cfg     Config
	cal     calibration
	clock   timex.Clock
	ambient float64 // last temperature; BeginReading derives the heater code from it

	// readingEnd is the expected completion time of the measurement in
	// flight; zero when idle.
	readingEnd time.Time

	field [fieldLen]byte
}

// New creates a new BME680 connection. The I2C bus must already be configured.
// This function only creates the Device object; it does not touch the device.
func New(bus drivers.I2C) Device {
	return Device{
		bus:     bus,
		Address: Address,
		clock:   timex.System,
		ambient: 25,
	}
}

// Connected reads the chip id register.
func (d *Device) Connected() bool {
	var id [1]byte
	if err := d.bus.Tx(d.Address, []byte{regChipID}, id[:]); err != nil {
		return false
	}
	return id[0] == ChipID
}

// Configure resets the device, loads calibration and writes the measurement
// settings.
func (d *Device) Configure(cfg Config) error {
	if cfg.Address != 0 {
		d.Address = cfg.Address
	}
	if cfg.Temperature == 0 {
		cfg.Temperature = Oversampling8X
	}
	if cfg.Humidity == 0 {
		cfg.Humidity = Oversampling2X
	}
	if cfg.Pressure == 0 {
		cfg.Pressure = Oversampling4X
	}
	if cfg.Filter == 0 {
		cfg.Filter = Filter3
	}
	if cfg.HeaterTemp == 0 {
		cfg.HeaterTemp = 320
	}
	if cfg.HeaterDuration == 0 {
		cfg.HeaterDuration = 150 * time.Millisecond
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 5 * time.Millisecond
	}
	if cfg.PollAttempts <= 0 {
		cfg.PollAttempts = 10
	}
	if cfg.Clock != nil {
		d.clock = cfg.Clock
	}
	d.cfg = cfg

	if !d.Connected() {
		return ErrNotConnected
	}
	if err := d.write(regSoftReset, cmdSoftReset); err != nil {
		return err
	}
	d.clock.Sleep(10 * time.Millisecond)

	cal, err := readCalibration(d.bus, d.Address)
	if err != nil {
		return err
	}
	d.cal = cal

	if err := d.write(regCtrlHum, byte(cfg.Humidity)&0x07); err != nil {
		return err
	}
	if err := d.write(regConfig, byte(cfg.Filter)<<2); err != nil {
		return err
	}
	if err := d.write(regCtrlMeas, d.ctrlMeas(modeSleep)); err != nil {
		return err
	}
	return d.setHeater()
}

func (d *Device) setHeater() error {
	if d.cfg.HeaterDuration <= 0 {
		return d.write(regCtrlGas1, 0)
	}
	if err := d.write(regResHeat0, d.heaterCode()); err != nil {
		return err
	}
	ms := d.cfg.HeaterDuration.Milliseconds()
	if ms > 0xFFFF {
		ms = 0xFFFF
	}
	if err := d.write(regGasWait0, heaterDuration(uint16(ms))); err != nil {
		return err
	}
	return d.write(regCtrlGas1, runGas)
}

func (d *Device) heaterCode() byte {
	return d.cal.heaterResistance(float64(d.cfg.HeaterTemp), d.ambient)
}

// MeasurementDuration estimates a forced-mode cycle for the current settings,
// heater time included.
func (d *Device) MeasurementDuration() time.Duration {
	cycles := osCycles[d.cfg.Temperature] + osCycles[d.cfg.Pressure] + osCycles[d.cfg.Humidity]
	us := cycles*1963 + 477*4 + 477*5 + 500
	ms := time.Duration(us/1000+1) * time.Millisecond
	if d.cfg.HeaterDuration > 0 {
		ms += d.cfg.HeaterDuration
	}
	return ms
}

// BeginReading starts a forced-mode measurement and returns the time at
// which it is expected to complete. Calling it while a measurement is in
// flight returns the existing completion time.
func (d *Device) BeginReading() (time.Time, error) {
	if !d.readingEnd.IsZero() {
		return d.readingEnd, nil
	}
	if d.cfg.PollAttempts == 0 {
		if err := d.Configure(d.cfg); err != nil {
			return time.Time{}, err
		}
	}
	if d.cfg.HeaterDuration > 0 {
		if err := d.write(regResHeat0, d.heaterCode()); err != nil {
			return time.Time{}, err
		}
	}
	if err := d.write(regCtrlMeas, d.ctrlMeas(modeForced)); err != nil {
		return time.Time{}, err
	}
	d.readingEnd = d.clock.Now().Add(d.MeasurementDuration())
	return d.readingEnd, nil
}

// RemainingReadingMillis reports -1 when no measurement is in flight, 0 when
// the measurement should be complete, and the remaining milliseconds otherwise.
func (d *Device) RemainingReadingMillis() int {
	if d.readingEnd.IsZero() {
		return -1
	}
	left := d.readingEnd.Sub(d.clock.Now())
	if left <= 0 {
		return 0
	}
	ms := int(left / time.Millisecond)
	if left%time.Millisecond != 0 {
		ms++
	}
	return ms
}

// EndReading waits for the measurement in flight, starting one first if the
// device is idle, and returns the compensated sample.
func (d *Device) EndReading() (Sample, error) {
	if d.readingEnd.IsZero() {
		if _, err := d.BeginReading(); err != nil {
			return Sample{}, err
		}
	}
	if left := d.readingEnd.Sub(d.clock.Now()); left > 0 {
		d.clock.Sleep(left)
	}
	d.readingEnd = time.Time{}

	for i := 0; ; i++ {
		if err := d.bus.Tx(d.Address, []byte{regField0}, d.field[:]); err != nil {
			return Sample{}, err
		}
		if d.field[0]&statusNewData != 0 {
			break
		}
		if i+1 >= d.cfg.PollAttempts {
			return Sample{}, ErrNoNewData
		}
		d.clock.Sleep(d.cfg.PollInterval)
	}
	return d.decode(), nil
}

// Read performs a complete blocking measurement.
func (d *Device) Read() (Sample, error) {
	if _, err := d.BeginReading(); err != nil {
		return Sample{}, err
	}
	return d.EndReading()
}

func (d *Device) decode() Sample {
	f := d.field[:]
	presADC := uint32(f[2])<<12 | uint32(f[3])<<4 | uint32(f[4])>>4
	tempADC := uint32(f[5])<<12 | uint32(f[6])<<4 | uint32(f[7])>>4
	humADC := uint16(f[8])<<8 | uint16(f[9])
	gasADC := uint16(f[13])<<2 | uint16(f[14])>>6
	gasRange := f[14] & gasRangeMask

	t, tFine := d.cal.temperature(tempADC)
	d.ambient = t
	return Sample{
		Temperature:   float32(t),
		Pressure:      float32(d.cal.pressure(presADC, tFine)),
		Humidity:      float32(d.cal.humidity(humADC, tFine)),
		GasResistance: float32(d.cal.gasResistance(gasADC, gasRange)),
		GasValid:      f[14]&gasValid != 0,
		HeaterStable:  f[14]&heaterStable != 0,
	}
}

func (d *Device) ctrlMeas(mode byte) byte {
	return byte(d.cfg.Temperature)<<5 | byte(d.cfg.Pressure)<<2 | mode
}

func (d *Device) write(reg, v byte) error {
	return d.bus.Tx(d.Address, []byte{reg, v}, nil)
}
