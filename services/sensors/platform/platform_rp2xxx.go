// services/sensors/platform/platform_rp2xxx.go
//go:build rp2040 || rp2350

package platform

import (
	"machine"

	"pixelit-go/drivers/ldr"
	"pixelit-go/errcode"
	"pixelit-go/services/sensors"

	"tinygo.org/x/drivers"
	"tinygo.org/x/drivers/dht"
)

// Board maps GP numbers straight to machine pins.
type Board struct {
	adcReady bool
}

func New(Options) *Board { return &Board{} }

// I2C picks the controller that owns the SDA pin: GP0/1, GP4/5, ... belong
// to I2C0 and GP2/3, GP6/7, ... to I2C1.
func (b *Board) I2C(sda, scl uint8) (drivers.I2C, error) {
	bus := machine.I2C0
	if (sda/2)%2 == 1 {
		bus = machine.I2C1
	}
	err := bus.Configure(machine.I2CConfig{
		Frequency: 100 * machine.KHz,
		SDA:       machine.Pin(sda),
		SCL:       machine.Pin(scl),
	})
	if err != nil {
		return nil, errcode.Wrap(errcode.UnknownBus, "i2c", err)
	}
	return bus, nil
}

// ADC accepts GP26..GP29.
func (b *Board) ADC(pin uint8) (ldr.ADC, error) {
	if pin < 26 || pin > 29 {
		return nil, &errcode.E{C: errcode.UnknownPin, Op: "adc"}
	}
	if !b.adcReady {
		machine.InitADC()
		b.adcReady = true
	}
	a := machine.ADC{Pin: machine.Pin(pin)}
	if err := a.Configure(machine.ADCConfig{}); err != nil {
		return nil, errcode.Wrap(errcode.Error, "adc", err)
	}
	return a, nil
}

func (b *Board) DHT(pin uint8) (sensors.DHT, error) {
	return dhtSensor{dev: dht.New(machine.Pin(pin), dht.DHT22)}, nil
}

type dhtSensor struct{ dev dht.Device }

func (d dhtSensor) Temperature() (float32, error) { return d.dev.TemperatureFloat(dht.C) }
func (d dhtSensor) Humidity() (float32, error)    { return d.dev.HumidityFloat() }

func (b *Board) Close() error { return nil }
