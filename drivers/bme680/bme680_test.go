package bme680

import (
	"errors"
	"math"
	"testing"
	"time"

	"pixelit-go/x/timex"

	"tinygo.org/x/drivers"
)

// Compile-time check.
var _ drivers.I2C = (*fakeBus)(nil)

var errNack = errors.New("nack")

// fakeBus is a register file with auto-incrementing reads and single
// register writes.
type fakeBus struct {
	addr   uint16
	regs   [256]byte
	writes map[byte][]byte
	forced int
}

func newFakeBus() *fakeBus {
	b := &fakeBus{addr: Address, writes: map[byte][]byte{}}
	b.regs[regChipID] = ChipID
	return b
}

func (b *fakeBus) Tx(addr uint16, w, r []byte) error {
	if addr != b.addr || len(w) == 0 {
		return errNack
	}
	reg := w[0]
	if len(r) > 0 {
		for i := range r {
			r[i] = b.regs[int(reg)+i]
		}
		return nil
	}
	if len(w) == 2 {
		b.writes[reg] = append(b.writes[reg], w[1])
		if reg == regCtrlMeas && w[1]&0x03 == modeForced {
			b.forced++
		}
		if reg != regSoftReset {
			b.regs[reg] = w[1]
		}
	}
	return nil
}

// setCoeff writes coefficient byte i of the concatenated calibration blocks.
func (b *fakeBus) setCoeff(i int, v byte) {
	if i < coeff1Len {
		b.regs[regCoeff1+i] = v
		return
	}
	b.regs[regCoeff2+i-coeff1Len] = v
}

// loadField stores a measurement reading 20.0 °C and 8 MΩ of gas resistance
// under the calibration from simpleCalibration.
func (b *fakeBus) loadField(newData bool) {
	f := b.regs[regField0 : regField0+fieldLen]
	for i := range f {
		f[i] = 0
	}
	if newData {
		f[0] = statusNewData
	}
	// temp_adc = 20 * 16384
	f[5], f[6], f[7] = 0x50, 0x00, 0x00
	// gas_adc = 512, range 0, valid + stable
	f[13], f[14] = 0x80, gasValid|heaterStable
}

// simpleCalibration makes the temperature equal temp_adc/16384.
func (b *fakeBus) simpleCalibration() {
	b.setCoeff(1, 0x00) // t2 lsb
	b.setCoeff(2, 0x14) // t2 msb: 0x1400 = 5120
}

func configured(t *testing.T) (*Device, *fakeBus, *timex.Manual) {
	t.Helper()
	bus := newFakeBus()
	bus.simpleCalibration()
	clk := timex.NewManual()
	d := New(bus)
	if err := d.Configure(Config{Clock: clk}); err != nil {
		t.Fatalf("configure: %v", err)
	}
	clk.Slept, clk.Sleeps = 0, 0
	return &d, bus, clk
}

func TestConnectedChecksChipID(t *testing.T) {
	bus := newFakeBus()
	d := New(bus)
	if !d.Connected() {
		t.Fatal("expected connected")
	}
	bus.regs[regChipID] = 0x60
	if d.Connected() {
		t.Fatal("BME280 chip id must not pass as BME680")
	}
	bus.addr = AddressAlt
	if d.Connected() {
		t.Fatal("wrong address must not be connected")
	}
}

func TestConfigureWritesSettings(t *testing.T) {
	d, bus, _ := configured(t)
	if got := bus.regs[regCtrlHum]; got != byte(Oversampling2X) {
		t.Fatalf("ctrl_hum=%#x", got)
	}
	if got := bus.regs[regCtrlMeas]; got != byte(Oversampling8X)<<5|byte(Oversampling4X)<<2 {
		t.Fatalf("ctrl_meas=%#x", got)
	}
	if got := bus.regs[regConfig]; got != byte(Filter3)<<2 {
		t.Fatalf("config=%#x", got)
	}
	if got := bus.regs[regCtrlGas1]; got != runGas {
		t.Fatalf("ctrl_gas_1=%#x", got)
	}
	// 150 ms -> 37 * 4 + factor 1 -> 0x65
	if got := bus.regs[regGasWait0]; got != 0x65 {
		t.Fatalf("gas_wait_0=%#x", got)
	}
	if len(bus.writes[regSoftReset]) != 1 {
		t.Fatal("expected one soft reset")
	}
	if got := d.MeasurementDuration(); got != 183*time.Millisecond {
		t.Fatalf("duration=%v", got)
	}
}

func TestConfigureNotConnected(t *testing.T) {
	bus := newFakeBus()
	bus.regs[regChipID] = 0
	d := New(bus)
	if err := d.Configure(Config{Clock: timex.NewManual()}); !errors.Is(err, ErrNotConnected) {
		t.Fatalf("expected ErrNotConnected, got %v", err)
	}
}

func TestRemainingReadingMillis(t *testing.T) {
	d, bus, clk := configured(t)
	if got := d.RemainingReadingMillis(); got != -1 {
		t.Fatalf("idle remaining=%d", got)
	}
	end, err := d.BeginReading()
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	if bus.forced != 1 {
		t.Fatalf("forced writes=%d", bus.forced)
	}
	if got := d.RemainingReadingMillis(); got != 183 {
		t.Fatalf("remaining=%d", got)
	}
	// A second begin while in flight does not restart the measurement.
	if again, _ := d.BeginReading(); !again.Equal(end) || bus.forced != 1 {
		t.Fatal("begin restarted an in-flight measurement")
	}
	clk.Advance(100 * time.Millisecond)
	if got := d.RemainingReadingMillis(); got != 83 {
		t.Fatalf("remaining=%d", got)
	}
	clk.Advance(time.Second)
	if got := d.RemainingReadingMillis(); got != 0 {
		t.Fatalf("remaining=%d", got)
	}
	if clk.Sleeps != 0 {
		t.Fatal("begin/remaining must not sleep")
	}
}

func TestEndReadingBlocksUntilDue(t *testing.T) {
	d, bus, clk := configured(t)
	bus.loadField(true)
	if _, err := d.BeginReading(); err != nil {
		t.Fatalf("begin: %v", err)
	}
	clk.Advance(50 * time.Millisecond)
	s, err := d.EndReading()
	if err != nil {
		t.Fatalf("end: %v", err)
	}
	if clk.Slept != 133*time.Millisecond {
		t.Fatalf("slept %v, want 133ms", clk.Slept)
	}
	if math.Abs(float64(s.Temperature)-20) > 1e-3 {
		t.Fatalf("temperature=%v", s.Temperature)
	}
	if math.Abs(float64(s.GasResistance)-8e6) > 1 {
		t.Fatalf("gas=%v", s.GasResistance)
	}
	if !s.GasValid || !s.HeaterStable {
		t.Fatal("gas status bits not decoded")
	}
	if d.RemainingReadingMillis() != -1 {
		t.Fatal("device should be idle after EndReading")
	}
}

func TestEndReadingFromIdleStartsMeasurement(t *testing.T) {
	d, bus, clk := configured(t)
	bus.loadField(true)
	if _, err := d.EndReading(); err != nil {
		t.Fatalf("end: %v", err)
	}
	if bus.forced != 1 || clk.Slept != 183*time.Millisecond {
		t.Fatalf("forced=%d slept=%v", bus.forced, clk.Slept)
	}
}

func TestEndReadingNoNewData(t *testing.T) {
	d, bus, clk := configured(t)
	bus.loadField(false)
	if _, err := d.EndReading(); !errors.Is(err, ErrNoNewData) {
		t.Fatalf("expected ErrNoNewData, got %v", err)
	}
	// 183 ms wait plus nine poll intervals.
	if want := 183*time.Millisecond + 9*5*time.Millisecond; clk.Slept != want {
		t.Fatalf("slept %v, want %v", clk.Slept, want)
	}
	if d.RemainingReadingMillis() != -1 {
		t.Fatal("failed read must leave the device idle")
	}
}

func TestParseCoefficientsLayout(t *testing.T) {
	c := make([]byte, coeff1Len+coeff2Len)
	c[33], c[34] = 0x34, 0x12 // t1
	c[25], c[26], c[27] = 0xAB, 0xCD, 0xEF
	c[35], c[36], c[37], c[38] = 0x02, 0x01, 0xFF, 0x05
	cal := parseCoefficients(c)
	if cal.t1 != 0x1234 {
		t.Fatalf("t1=%#x", cal.t1)
	}
	if cal.h1 != 0xEFD || cal.h2 != 0xABC {
		t.Fatalf("h1=%#x h2=%#x", cal.h1, cal.h2)
	}
	if cal.gh1 != -1 || cal.gh2 != 0x0102 || cal.gh3 != 5 {
		t.Fatalf("gh=%d %d %d", cal.gh1, cal.gh2, cal.gh3)
	}
}

func TestHeaterDuration(t *testing.T) {
	tests := []struct {
		ms   uint16
		want byte
	}{
		{0, 0x00},
		{63, 0x3F},
		{64, 0x50},  // 16 x4
		{150, 0x65}, // 37 x4
		{4032, 0xFF},
	}
	for _, tt := range tests {
		if got := heaterDuration(tt.ms); got != tt.want {
			t.Fatalf("heaterDuration(%d)=%#x want %#x", tt.ms, got, tt.want)
		}
	}
}

func TestBeginReadingTracksAmbientForHeater(t *testing.T) {
	d, bus, _ := configured(t)
	d.cal.gh3 = 100 // ambient term of the heater set-point
	bus.loadField(true)

	if _, err := d.Read(); err != nil {
		t.Fatalf("read: %v", err)
	}
	if _, err := d.BeginReading(); err != nil {
		t.Fatalf("begin: %v", err)
	}
	want := d.cal.heaterResistance(320, 20)
	if want == d.cal.heaterResistance(320, 25) {
		t.Fatal("fixture does not distinguish ambient temperatures")
	}
	if got := bus.regs[regResHeat0]; got != want {
		t.Fatalf("res_heat_0=%#x, want %#x for 20 °C ambient", got, want)
	}
}

func TestHumidityClamped(t *testing.T) {
	c := calibration{h2: 1000}
	if h := c.humidity(0xFFFF, 0); h != 100 {
		t.Fatalf("high humidity=%v", h)
	}
	c = calibration{h1: 4000, h2: 1000}
	if h := c.humidity(0, 0); h != 0 {
		t.Fatalf("low humidity=%v", h)
	}
}
