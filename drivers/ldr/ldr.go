// Package ldr converts an analog photoresistor reading into lux.
//
// The photocell forms a voltage divider with a fixed resistor. Given the
// divider position the cell resistance R is derived from the ADC value and
// converted with the cell's power law lux = mult / R^pow.
package ldr

import (
	"errors"
	"math"
)

// ADC is a single analog input. Get returns a 16-bit left-aligned sample,
// the convention used by machine.ADC.
type ADC interface {
	Get() uint16
}

// ErrADC is implemented by inputs whose Get can fail, such as a converter on
// a bus. Raw checks it after every Get.
type ErrADC interface {
	Err() error
}

// Errors returned by the driver.
var (
	ErrNoADC = errors.New("ldr: no adc")
)

// Photocell identifies a GL55xx cell and its conversion constants.
type Photocell uint8

const (
	GL5516 Photocell = iota
	GL5528
	GL5537_1
	GL5537_2
	GL5539
	GL5549
)

type curve struct {
	name string
	mult float64
	pow  float64
}

var curves = [...]curve{
	GL5516:   {"GL5516", 29634400, 1.6689},
	GL5528:   {"GL5528", 32017200, 1.5832},
	GL5537_1: {"GL5537_1", 32435800, 1.4899},
	GL5537_2: {"GL5537_2", 2801820, 1.1772},
	GL5539:   {"GL5539", 208510000, 1.4850},
	GL5549:   {"GL5549", 44682100, 1.2750},
}

func (p Photocell) String() string {
	if int(p) < len(curves) {
		return curves[p].name
	}
	return "unknown"
}

// Lookup resolves a cell by its exact, case-sensitive name.
func Lookup(name string) (Photocell, bool) {
	for i, c := range curves {
		if c.name == name {
			return Photocell(i), true
		}
	}
	return 0, false
}

// Config describes the divider and sampling. Zero values take defaults.
type Config struct {
	// OtherResistor is the fixed divider resistor in ohms.
	OtherResistor float64
	Photocell     Photocell
	// ResolutionBits is the ADC resolution used for the conversion. Default 10.
	ResolutionBits uint8
	// Smoothing is the number of readings averaged by SmoothedLux. Zero
	// disables smoothing.
	Smoothing int
	// OnGround is true when the photocell sits between the ADC pin and ground.
	OnGround bool
}

// Device reads one photoresistor.
type Device struct {
	adc ADC
	cfg Config

	window []float64
	next   int
	filled int
}

// New creates a device. A nil adc is reported by every read.
func New(adc ADC, cfg Config) *Device {
	if cfg.ResolutionBits == 0 || cfg.ResolutionBits > 16 {
		cfg.ResolutionBits = 10
	}
	if cfg.Smoothing < 0 {
		cfg.Smoothing = 0
	}
	d := &Device{adc: adc, cfg: cfg}
	if cfg.Smoothing > 0 {
		d.window = make([]float64, cfg.Smoothing)
	}
	return d
}

// Config returns the effective configuration.
func (d *Device) Config() Config { return d.cfg }

// Raw returns the sample scaled to the configured resolution. A failed
// sample never reaches the smoothing window.
func (d *Device) Raw() (uint16, error) {
	if d.adc == nil {
		return 0, ErrNoADC
	}
	v := d.adc.Get()
	if e, ok := d.adc.(ErrADC); ok {
		if err := e.Err(); err != nil {
			return 0, err
		}
	}
	return v >> (16 - d.cfg.ResolutionBits), nil
}

// Lux takes one reading.
func (d *Device) Lux() (float64, error) {
	raw, err := d.Raw()
	if err != nil {
		return 0, err
	}
	return d.convert(raw), nil
}

// SmoothedLux takes one reading and returns the mean of the last Smoothing
// readings, or the reading itself when smoothing is disabled.
func (d *Device) SmoothedLux() (float64, error) {
	lux, err := d.Lux()
	if err != nil || len(d.window) == 0 {
		return lux, err
	}
	d.window[d.next] = lux
	d.next = (d.next + 1) % len(d.window)
	if d.filled < len(d.window) {
		d.filled++
	}
	var sum float64
	for _, v := range d.window[:d.filled] {
		sum += v
	}
	return sum / float64(d.filled), nil
}

// Resistance converts a raw sample to the photocell resistance in ohms.
// It returns +Inf when the cell is fully dark for the divider orientation.
func (d *Device) Resistance(raw uint16) float64 {
	full := float64(uint32(1) << d.cfg.ResolutionBits)
	v := float64(raw)
	if d.cfg.OnGround {
		if v >= full {
			return math.Inf(1)
		}
		return d.cfg.OtherResistor * v / (full - v)
	}
	if v == 0 {
		return math.Inf(1)
	}
	return d.cfg.OtherResistor * (full - v) / v
}

func (d *Device) convert(raw uint16) float64 {
	r := d.Resistance(raw)
	if math.IsInf(r, 1) {
		return 0
	}
	if r <= 0 {
		r = 1
	}
	c := curves[GL5528]
	if int(d.cfg.Photocell) < len(curves) {
		c = curves[d.cfg.Photocell]
	}
	return c.mult / math.Pow(r, c.pow)
}
