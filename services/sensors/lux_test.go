package sensors

import (
	"errors"
	"math"
	"testing"

	"pixelit-go/services/config"
	"pixelit-go/types"
)

func TestReadLux_OffsetAndCache(t *testing.T) {
	cfg := config.Default()
	cfg.LuxOffset = 2.5
	s, _, _ := newTestSensors(cfg, nil)
	dev := &fixedLux{v: 100}
	s.luxKind, s.lux, s.luxChosen = types.LuxBH1750, dev, true

	r := s.ReadLux()
	if !r.HasLux || r.Lux != 102.5 {
		t.Fatalf("lux=%+v", r)
	}
	if s.LastLux() != r {
		t.Fatalf("cache=%+v", s.LastLux())
	}

	dev.err = errors.New("nack")
	r = s.ReadLux()
	if r.HasLux || s.LastLux().HasLux {
		t.Fatalf("failed read should be absent and cached: %+v", s.LastLux())
	}
}

func TestReadLux_BH1750Conversion(t *testing.T) {
	bus := newRegBus()
	regs := bus.add(0x23)
	regs[0], regs[1] = 0x04, 0xB0 // 1200 counts
	s, _, _ := newTestSensors(nil, &fakePlatform{bus: bus})
	s.Initialise()
	r := s.ReadLux()
	if !r.HasLux || math.Abs(float64(r.Lux)-1000) > 0.01 {
		t.Fatalf("lux=%+v", r)
	}
}

func TestReadLux_LDRRoundedToThreeDecimals(t *testing.T) {
	cfg := config.Default()
	cfg.LDRDevice = "GL5528"
	p := &fakePlatform{busErr: errors.New("no i2c"), adc: fakeADC{v: 300 << 6}}
	s, _, _ := newTestSensors(cfg, p)
	s.Initialise()
	if s.LuxKind() != types.LuxLDR || p.adcPin != 17 {
		t.Fatalf("kind=%v adc pin=%d", s.LuxKind(), p.adcPin)
	}
	r := s.ReadLux()
	if !r.HasLux {
		t.Fatal("ldr lux absent")
	}
	// R = 10000 * (1024-300)/300
	want := 32017200 / math.Pow(10000*724.0/300, 1.5832)
	want = math.Round(want*1000) / 1000
	if math.Abs(float64(r.Lux)-want) > 1e-3 {
		t.Fatalf("lux=%v want %v", r.Lux, want)
	}
	scaled := float64(r.Lux) * 1000
	if math.Abs(scaled-math.Round(scaled)) > 1e-2 {
		t.Fatalf("lux %v not rounded to 3 decimals", r.Lux)
	}
}

func TestReadLux_LDRWithoutADCIsAbsent(t *testing.T) {
	s, _, rec := newTestSensors(nil, &fakePlatform{busErr: errors.New("no i2c")})
	s.Initialise()
	if r := s.ReadLux(); r.HasLux {
		t.Fatalf("lux=%+v", r)
	}
	if len(rec.lines) == 0 {
		t.Fatal("expected setup/read logs")
	}
}

func TestReadLux_FailedLDRSampleLeavesWindowUntouched(t *testing.T) {
	cfg := config.Default()
	cfg.LDRSmoothing = 2
	adc := &flakyADC{vals: []uint16{300 << 6, 0, 300 << 6}}
	s, _, rec := newTestSensors(cfg, &fakePlatform{busErr: errors.New("no i2c"), adc: adc})
	s.Initialise()

	good := s.ReadLux()
	failed := s.ReadLux()
	next := s.ReadLux()
	if !good.HasLux || failed.HasLux || !next.HasLux {
		t.Fatalf("good=%+v failed=%+v next=%+v", good, failed, next)
	}
	if next.Lux != good.Lux {
		t.Fatalf("failed sample leaked into the average: %v != %v", next.Lux, good.Lux)
	}
	if !rec.has("GetLuxSensorData", "Error while reading LDR: i2c nack") {
		t.Fatalf("missing read error log: %+v", rec.lines)
	}
}
