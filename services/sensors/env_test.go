package sensors

import (
	"testing"

	"pixelit-go/types"
)

func TestBMP280Adapter_NoHumidityOrGas(t *testing.T) {
	bus := newRegBus()
	regs := bus.add(0x76)
	regs[0xD0] = 0x58
	s, _, _ := newTestSensors(nil, &fakePlatform{bus: bus})
	s.Initialise()
	if s.TempKind() != types.TempBMP280 {
		t.Fatalf("kind=%v", s.TempKind())
	}
	r := s.ReadEnvironment()
	if !r.HasTemperature || !r.HasPressure || r.HasHumidity || r.HasGas {
		t.Fatalf("BMP280 reading %+v", r)
	}
}

func TestBME280Adapter_NoGas(t *testing.T) {
	bus := newRegBus()
	bus.add(0x76)[0xD0] = 0x60
	s, _, _ := newTestSensors(nil, &fakePlatform{bus: bus})
	s.Initialise()
	r := s.ReadEnvironment()
	if !r.HasTemperature || !r.HasHumidity || !r.HasPressure || r.HasGas {
		t.Fatalf("BME280 reading %+v", r)
	}
}
