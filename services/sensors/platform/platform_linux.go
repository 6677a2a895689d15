// services/sensors/platform/platform_linux.go
//go:build linux && !(rp2040 || rp2350)

package platform

import (
	"pixelit-go/drivers/ads1115"
	"pixelit-go/drivers/ldr"
	"pixelit-go/errcode"
	"pixelit-go/services/sensors"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"
	"tinygo.org/x/drivers"
)

// Board opens one /dev/i2c-N bus through periph.io. Pin numbers for the bus
// are fixed by the kernel device tree and ignored here; ADC pins select an
// ADS1115 channel on the same bus.
type Board struct {
	opts Options
	bus  i2c.BusCloser
	adc  *ads1115.Device
}

func New(opts Options) *Board {
	if opts.ADCAddress == 0 {
		opts.ADCAddress = ads1115.Address
	}
	return &Board{opts: opts}
}

// I2C opens the configured bus on first use.
func (b *Board) I2C(sda, scl uint8) (drivers.I2C, error) {
	if b.bus != nil {
		return b.bus, nil
	}
	if _, err := host.Init(); err != nil {
		return nil, errcode.Wrap(errcode.Error, "host init", err)
	}
	bus, err := i2creg.Open(b.opts.I2CBus)
	if err != nil {
		return nil, errcode.Wrap(errcode.UnknownBus, "open i2c", err)
	}
	b.bus = bus
	return bus, nil
}

// ADC returns ADS1115 channel pin (0..3).
func (b *Board) ADC(pin uint8) (ldr.ADC, error) {
	if pin > 3 {
		return nil, &errcode.E{C: errcode.UnknownPin, Op: "adc"}
	}
	if b.adc == nil {
		bus, err := b.I2C(0, 0)
		if err != nil {
			return nil, err
		}
		d := ads1115.New(bus, ads1115.Config{Address: b.opts.ADCAddress})
		if !d.Connected() {
			return nil, &errcode.E{C: errcode.NotDetected, Op: "ads1115"}
		}
		b.adc = d
	}
	return b.adc.Channel(int(pin)), nil
}

// DHT needs cycle-accurate GPIO timing, which Linux userspace cannot give.
func (b *Board) DHT(uint8) (sensors.DHT, error) {
	return nil, &errcode.E{C: errcode.Unsupported, Op: "dht"}
}

// Close releases the bus.
func (b *Board) Close() error {
	if b.bus == nil {
		return nil
	}
	return b.bus.Close()
}
