// Package ads1115 provides a single-shot driver for the TI ADS1115 16-bit
// I2C ADC. Boards without an on-chip ADC read the photoresistor through it.
package ads1115

import (
	"errors"
	"time"

	"pixelit-go/x/timex"

	"tinygo.org/x/drivers"
)

// Address with ADDR tied to ground.
const Address = 0x48

const (
	pointerConv   = 0x00
	pointerConfig = 0x01

	// PGA ±4.096 V
	pga4096   = 0x1
	fullScale = 4.096
)

// Errors returned by the driver.
var (
	ErrInvalidChannel = errors.New("ads1115: invalid channel")
)

// Config is optional; zero values take defaults.
type Config struct {
	// Address defaults to 0x48.
	Address uint16
	// SampleRate in samples per second, one of 8..860. Default 128.
	SampleRate int
	Clock      timex.Clock
}

// Device wraps an I2C connection to an ADS1115.
type Device struct {
	bus        drivers.I2C
	Address    uint16
	sampleRate int
	clock      timex.Clock
	buf        [2]byte
}

// New creates a device. It does not touch the bus.
func New(bus drivers.I2C, cfg Config) *Device {
	d := &Device{bus: bus, Address: Address, sampleRate: 128, clock: timex.System}
	if cfg.Address != 0 {
		d.Address = cfg.Address
	}
	if cfg.SampleRate != 0 {
		d.sampleRate = cfg.SampleRate
	}
	if cfg.Clock != nil {
		d.clock = cfg.Clock
	}
	return d
}

// Connected reports whether the config register can be read.
func (d *Device) Connected() bool {
	return d.bus.Tx(d.Address, []byte{pointerConfig}, d.buf[:]) == nil
}

// ReadRaw performs a single-ended single-shot conversion on channel 0..3.
func (d *Device) ReadRaw(channel int) (int16, error) {
	msb, lsb, err := configFor(channel, d.sampleRate)
	if err != nil {
		return 0, err
	}
	if err := d.bus.Tx(d.Address, []byte{pointerConfig, msb, lsb}, nil); err != nil {
		return 0, err
	}
	d.clock.Sleep(time.Duration(1000/d.sampleRate+2) * time.Millisecond)
	if err := d.bus.Tx(d.Address, []byte{pointerConv}, d.buf[:]); err != nil {
		return 0, err
	}
	return int16(uint16(d.buf[0])<<8 | uint16(d.buf[1])), nil
}

// ReadVolts converts a conversion to volts for the fixed ±4.096 V range.
func (d *Device) ReadVolts(channel int) (float64, error) {
	raw, err := d.ReadRaw(channel)
	if err != nil {
		return 0, err
	}
	return float64(raw) * fullScale / 32768.0, nil
}

// Channel returns an analog input bound to one channel.
func (d *Device) Channel(ch int) *Channel { return &Channel{dev: d, ch: ch} }

// Channel adapts one ADS1115 input to the left-aligned 16-bit convention of
// machine.ADC. Bus errors read as zero and are kept in Err.
type Channel struct {
	dev *Device
	ch  int
	err error
}

func (c *Channel) Get() uint16 {
	raw, err := c.dev.ReadRaw(c.ch)
	c.err = err
	if err != nil || raw < 0 {
		return 0
	}
	return uint16(raw) << 1
}

// Err returns the error from the last Get.
func (c *Channel) Err() error { return c.err }

func configFor(channel, sampleRate int) (byte, byte, error) {
	if channel < 0 || channel > 3 {
		return 0, 0, ErrInvalidChannel
	}
	// single-ended AINx vs GND
	mux := byte(0x4 + channel)
	var dr byte
	switch sampleRate {
	case 8:
		dr = 0x0
	case 16:
		dr = 0x1
	case 32:
		dr = 0x2
	case 64:
		dr = 0x3
	case 250:
		dr = 0x5
	case 475:
		dr = 0x6
	case 860:
		dr = 0x7
	default:
		dr = 0x4
	}
	var cfg uint16 = 0x8000 // OS: start single conversion
	cfg |= uint16(mux) << 12
	cfg |= uint16(pga4096) << 9
	cfg |= 1 << 8 // single-shot
	cfg |= uint16(dr) << 5
	cfg |= 0x3 // comparator disabled
	return byte(cfg >> 8), byte(cfg), nil
}
