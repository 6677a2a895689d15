// services/sensors/platform/platform_host.go
//go:build !linux && !rp2040 && !rp2350

package platform

import (
	"pixelit-go/drivers/ldr"
	"pixelit-go/errcode"
	"pixelit-go/services/sensors"

	"tinygo.org/x/drivers"
)

// Board has no hardware; every sensor probe falls through.
type Board struct{}

func New(Options) *Board { return &Board{} }

func (*Board) I2C(uint8, uint8) (drivers.I2C, error) {
	return nil, &errcode.E{C: errcode.UnknownBus, Op: "i2c"}
}

func (*Board) ADC(uint8) (ldr.ADC, error) {
	return nil, &errcode.E{C: errcode.Unsupported, Op: "adc"}
}

func (*Board) DHT(uint8) (sensors.DHT, error) {
	return nil, &errcode.E{C: errcode.Unsupported, Op: "dht"}
}

func (*Board) Close() error { return nil }
