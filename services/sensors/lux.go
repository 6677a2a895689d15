package sensors

import (
	"pixelit-go/drivers/ldr"
	"pixelit-go/drivers/max44009"
	"pixelit-go/types"
	"pixelit-go/x/mathx"

	"tinygo.org/x/drivers"
	"tinygo.org/x/drivers/bh1750"
)

func defaultLuxCandidates() []luxCandidate {
	return []luxCandidate{
		{kind: types.LuxBH1750, name: "BH1750", probe: probeBH1750},
		{kind: types.LuxMAX44009, name: "Max44009/GY-049", probe: probeMAX44009},
	}
}

// SelectLuxSensor commits the first lux candidate that answers, falling back
// to the photoresistor. Later calls return the committed kind.
func (s *Sensors) SelectLuxSensor() types.LuxSensorKind {
	if s.luxChosen {
		return s.luxKind
	}
	s.luxChosen = true
	for _, c := range s.luxCandidates {
		if dev, ok := c.probe(s); ok {
			s.luxKind, s.lux = c.kind, dev
			s.logf("Setup", c.name+" started")
			return s.luxKind
		}
	}
	s.luxKind, s.lux = types.LuxLDR, s.newLDR()
	return s.luxKind
}

// ReadLux reads the selected sensor, adds the lux offset and caches the
// result. A failed read yields an absent value.
func (s *Sensors) ReadLux() types.LuxReading {
	var r types.LuxReading
	if s.lux != nil {
		v, err := s.lux.Lux()
		if err != nil {
			s.logf("GetLuxSensorData", "Error while reading "+s.luxKind.String()+": "+err.Error())
		} else {
			r = types.LuxReading{HasLux: true, Lux: v + s.cfg.LuxOffset}
		}
	}
	s.lastLux = r
	return r
}

// TranslatePhotocell resolves a photocell name. Unknown names fall back to
// GL5528.
func (s *Sensors) TranslatePhotocell(name string) ldr.Photocell {
	if p, ok := ldr.Lookup(name); ok {
		return p
	}
	s.logf("TranslatePhotocell", "Unknown LDR-Typ")
	return ldr.GL5528
}

// ---- BH1750 ----

type bh1750Lux struct {
	bus  drivers.I2C
	addr uint16
	buf  [2]byte
}

func probeBH1750(s *Sensors) (luxDevice, bool) {
	if s.tx(bh1750.Address, []byte{bh1750.POWER_ON}, nil) != nil {
		return nil, false
	}
	d := bh1750.New(s.bus)
	d.Configure() // continuous high resolution
	return &bh1750Lux{bus: s.bus, addr: d.Address}, true
}

// Lux reads the measurement register. In high resolution mode one count is
// 1/1.2 lx.
func (b *bh1750Lux) Lux() (float32, error) {
	if err := b.bus.Tx(b.addr, nil, b.buf[:]); err != nil {
		return 0, err
	}
	raw := uint16(b.buf[0])<<8 | uint16(b.buf[1])
	return float32(raw) / 1.2, nil
}

// ---- MAX44009 ----

func probeMAX44009(s *Sensors) (luxDevice, bool) {
	if s.bus == nil {
		return nil, false
	}
	d := max44009.New(s.bus)
	if !d.Connected() {
		return nil, false
	}
	if err := d.Configure(max44009.Config{}); err != nil {
		return nil, false
	}
	return &d, true
}

// ---- LDR ----

type ldrLux struct {
	dev *ldr.Device
}

func (s *Sensors) newLDR() luxDevice {
	var adc ldr.ADC
	if pin, ok := s.cfg.TranslatePin(s.cfg.LDRPin); ok && s.platform != nil {
		a, err := s.platform.ADC(pin)
		if err != nil {
			s.logf("Setup", "LDR analog input unavailable: "+err.Error())
		} else {
			adc = a
		}
	}
	dev := ldr.New(adc, ldr.Config{
		OtherResistor:  float64(s.cfg.LDRPulldown),
		Photocell:      s.TranslatePhotocell(s.cfg.LDRDevice),
		ResolutionBits: 10,
		Smoothing:      int(s.cfg.LDRSmoothing),
		OnGround:       false,
	})
	return &ldrLux{dev: dev}
}

func (l *ldrLux) Lux() (float32, error) {
	v, err := l.dev.SmoothedLux()
	if err != nil {
		return 0, err
	}
	return mathx.RoundTo(float32(v), 3), nil
}
