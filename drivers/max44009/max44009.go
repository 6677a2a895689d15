// Package max44009 provides a driver for the MAX44009 ambient light sensor
// (also sold as the GY-049 breakout).
//
// The part has no identification register. Presence is established by an
// acknowledged register read at the device address:
//
//	d := max44009.New(bus)
//	if d.Connected() {
//		d.Configure(max44009.Config{})
//		lux, err := d.Lux()
//	}
package max44009

import (
	"errors"

	"tinygo.org/x/drivers"
)

// I2C addresses (A0 low / high).
const (
	Address    = 0x4A
	AddressAlt = 0x4B
)

const (
	regInterruptStatus = 0x00
	regConfiguration   = 0x02
	regLuxHigh         = 0x03
	regLuxLow          = 0x04

	cfgContinuous = 0x80
)

// Errors returned by the driver.
var (
	ErrOverflow = errors.New("max44009: overflow")
)

// Config controls non-hardware behaviour. All fields are optional.
type Config struct {
	// Address defaults to 0x4A if zero.
	Address uint16
	// Continuous selects 800 ms continuous conversion instead of the default
	// automatic mode.
	Continuous bool
}

// Device wraps an I2C connection to a MAX44009 device.
type Device struct {
	bus     drivers.I2C
	Address uint16

	buf [1]byte
}

// New creates a new MAX44009 connection. The I2C bus must already be configured.
// This function only creates the Device object; it does not touch the device.
func New(bus drivers.I2C) Device {
	return Device{bus: bus, Address: Address}
}

// Connected reports whether a device acknowledges at the configured address.
func (d *Device) Connected() bool {
	return d.readRegister(regInterruptStatus) == nil
}

// Configure writes the configuration register.
func (d *Device) Configure(cfg Config) error {
	if cfg.Address != 0 {
		d.Address = cfg.Address
	}
	var v byte
	if cfg.Continuous {
		v |= cfgContinuous
	}
	return d.bus.Tx(d.Address, []byte{regConfiguration, v}, nil)
}

// Lux reads the current illuminance in lux.
func (d *Device) Lux() (float32, error) {
	if err := d.readRegister(regLuxHigh); err != nil {
		return 0, err
	}
	hi := d.buf[0]
	if err := d.readRegister(regLuxLow); err != nil {
		return 0, err
	}
	return Decode(hi, d.buf[0])
}

// Decode converts the high/low lux register pair to lux.
// Exponent 0b1111 signals an overload condition.
func Decode(hi, lo byte) (float32, error) {
	exponent := hi >> 4
	if exponent == 0x0F {
		return 0, ErrOverflow
	}
	mantissa := uint32(hi&0x0F)<<4 | uint32(lo&0x0F)
	return float32(mantissa<<exponent) * 0.045, nil
}

func (d *Device) readRegister(reg byte) error {
	return d.bus.Tx(d.Address, []byte{reg}, d.buf[:])
}
