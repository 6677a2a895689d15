package sensors

import (
	"errors"
	"time"

	"pixelit-go/drivers/bme680"
	"pixelit-go/drivers/ldr"
	"pixelit-go/services/config"
	"pixelit-go/types"
	"pixelit-go/x/timex"

	"tinygo.org/x/drivers"
)

var errNack = errors.New("nack")

// Compile-time checks.
var (
	_ drivers.I2C    = (*regBus)(nil)
	_ Platform       = (*fakePlatform)(nil)
	_ twoPhaseDevice = (*bme680.Device)(nil)
)

// regBus emulates register-mapped devices at fixed addresses.
type regBus struct {
	devs map[uint16]*[256]byte
	dead bool
	txs  int
}

func newRegBus() *regBus { return &regBus{devs: map[uint16]*[256]byte{}} }

func (b *regBus) add(addr uint16) *[256]byte {
	r := &[256]byte{}
	b.devs[addr] = r
	return r
}

func (b *regBus) Tx(addr uint16, w, r []byte) error {
	b.txs++
	regs, ok := b.devs[addr]
	if b.dead || !ok {
		return errNack
	}
	switch {
	case len(r) > 0:
		start := 0
		if len(w) > 0 {
			start = int(w[0])
		}
		for i := range r {
			r[i] = regs[(start+i)%256]
		}
	case len(w) >= 2:
		for i, v := range w[1:] {
			regs[(int(w[0])+i)%256] = v
		}
	}
	return nil
}

type fakeADC struct{ v uint16 }

func (a fakeADC) Get() uint16 { return a.v }

type fakeDHT struct {
	t, h float32
	err  error
}

func (d *fakeDHT) Temperature() (float32, error) { return d.t, d.err }
func (d *fakeDHT) Humidity() (float32, error)    { return d.h, d.err }

type fakePlatform struct {
	bus    drivers.I2C
	busErr error
	adc    ldr.ADC
	dht    DHT

	i2cCalls int
	sda, scl uint8
	adcPin   uint8
	dhtPin   uint8
}

func (p *fakePlatform) I2C(sda, scl uint8) (drivers.I2C, error) {
	p.i2cCalls++
	p.sda, p.scl = sda, scl
	if p.busErr != nil {
		return nil, p.busErr
	}
	return p.bus, nil
}

func (p *fakePlatform) ADC(pin uint8) (ldr.ADC, error) {
	p.adcPin = pin
	if p.adc == nil {
		return nil, errors.New("no adc")
	}
	return p.adc, nil
}

func (p *fakePlatform) DHT(pin uint8) (DHT, error) {
	p.dhtPin = pin
	if p.dht == nil {
		return nil, errors.New("no dht")
	}
	return p.dht, nil
}

type logLine struct{ fn, msg string }

type logRecorder struct{ lines []logLine }

func (l *logRecorder) log(fn, msg string) { l.lines = append(l.lines, logLine{fn, msg}) }

func (l *logRecorder) has(fn, msg string) bool {
	for _, x := range l.lines {
		if x.fn == fn && x.msg == msg {
			return true
		}
	}
	return false
}

// newTestSensors wires a Sensors with a manual clock and log recorder.
func newTestSensors(cfg *config.Config, p Platform) (*Sensors, *timex.Manual, *logRecorder) {
	if cfg == nil {
		cfg = config.Default()
	}
	s := New(cfg, p)
	clk := timex.NewManual()
	s.clock = clk
	rec := &logRecorder{}
	s.SetLogDelegate(rec.log)
	return s, clk, rec
}

// ---- scripted candidates ----

type fixedLux struct {
	v   float32
	err error
}

func (f *fixedLux) Lux() (float32, error) { return f.v, f.err }

type fixedEnv struct {
	r   types.TemperatureReading
	err error
}

func (f *fixedEnv) Read() (types.TemperatureReading, error) { return f.r, f.err }

// probeCounter records probe order.
type probeCounter struct{ calls []string }

func (c *probeCounter) lux(kind types.LuxSensorKind, name string, dev luxDevice) luxCandidate {
	return luxCandidate{kind: kind, name: name, probe: func(*Sensors) (luxDevice, bool) {
		c.calls = append(c.calls, name)
		return dev, dev != nil
	}}
}

func (c *probeCounter) env(kind types.TempSensorKind, name string, dev envDevice) envCandidate {
	return envCandidate{kind: kind, name: name, probe: func(*Sensors) (envDevice, bool) {
		c.calls = append(c.calls, name)
		return dev, dev != nil
	}}
}

// ---- scripted two-phase device ----

type fakeTwoPhase struct {
	clock    *timex.Manual
	duration time.Duration
	end      time.Time
	sample   bme680.Sample
	beginErr error
	endErr   error
	begins   int
	ends     int
}

func (f *fakeTwoPhase) BeginReading() (time.Time, error) {
	if f.beginErr != nil {
		return time.Time{}, f.beginErr
	}
	f.begins++
	if f.end.IsZero() {
		f.end = f.clock.Now().Add(f.duration)
	}
	return f.end, nil
}

func (f *fakeTwoPhase) RemainingReadingMillis() int {
	if f.end.IsZero() {
		return -1
	}
	left := f.end.Sub(f.clock.Now())
	if left <= 0 {
		return 0
	}
	return int((left + time.Millisecond - 1) / time.Millisecond)
}

func (f *fakeTwoPhase) EndReading() (bme680.Sample, error) {
	f.ends++
	if f.end.IsZero() {
		f.end = f.clock.Now().Add(f.duration)
	}
	f.clock.Sleep(f.end.Sub(f.clock.Now()))
	f.end = time.Time{}
	if f.endErr != nil {
		return bme680.Sample{}, f.endErr
	}
	return f.sample, nil
}

// flakyADC replays samples; a zero entry fails like a converter on a dead bus.
type flakyADC struct {
	vals []uint16
	err  error
}

func (a *flakyADC) Get() uint16 {
	v := a.vals[0]
	a.vals = a.vals[1:]
	a.err = nil
	if v == 0 {
		a.err = errors.New("i2c nack")
	}
	return v
}

func (a *flakyADC) Err() error { return a.err }
