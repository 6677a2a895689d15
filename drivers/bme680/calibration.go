package bme680

import (
	"pixelit-go/x/mathx"

	"tinygo.org/x/drivers"
)

// calibration holds the factory trimming parameters.
type calibration struct {
	t1 uint16
	t2 int16
	t3 int8

	p1  uint16
	p2  int16
	p3  int8
	p4  int16
	p5  int16
	p6  int8
	p7  int8
	p8  int16
	p9  int16
	p10 uint8

	h1 uint16
	h2 uint16
	h3 int8
	h4 int8
	h5 int8
	h6 uint8
	h7 int8

	gh1 int8
	gh2 int16
	gh3 int8

	resHeatRange uint8
	resHeatVal   int8
	rangeSwErr   int8
}

// parseCoefficients decodes the two concatenated coefficient blocks
// (0x89..0xA1 followed by 0xE1..0xF0).
func parseCoefficients(c []byte) calibration {
	u16 := func(msb, lsb int) uint16 { return uint16(c[msb])<<8 | uint16(c[lsb]) }
	return calibration{
		t1: u16(34, 33),
		t2: int16(u16(2, 1)),
		t3: int8(c[3]),

		p1:  u16(6, 5),
		p2:  int16(u16(8, 7)),
		p3:  int8(c[9]),
		p4:  int16(u16(12, 11)),
		p5:  int16(u16(14, 13)),
		p6:  int8(c[16]),
		p7:  int8(c[15]),
		p8:  int16(u16(20, 19)),
		p9:  int16(u16(22, 21)),
		p10: c[23],

		h1: uint16(c[27])<<4 | uint16(c[26]&0x0F),
		h2: uint16(c[25])<<4 | uint16(c[26]>>4),
		h3: int8(c[28]),
		h4: int8(c[29]),
		h5: int8(c[30]),
		h6: c[31],
		h7: int8(c[32]),

		gh1: int8(c[37]),
		gh2: int16(u16(36, 35)),
		gh3: int8(c[38]),
	}
}

func readCalibration(bus drivers.I2C, addr uint16) (calibration, error) {
	var buf [coeff1Len + coeff2Len]byte
	if err := bus.Tx(addr, []byte{regCoeff1}, buf[:coeff1Len]); err != nil {
		return calibration{}, err
	}
	if err := bus.Tx(addr, []byte{regCoeff2}, buf[coeff1Len:]); err != nil {
		return calibration{}, err
	}
	cal := parseCoefficients(buf[:])

	var b [1]byte
	if err := bus.Tx(addr, []byte{regResHeatRng}, b[:]); err != nil {
		return calibration{}, err
	}
	cal.resHeatRange = (b[0] & heatRangeMask) >> 4
	if err := bus.Tx(addr, []byte{regResHeatVal}, b[:]); err != nil {
		return calibration{}, err
	}
	cal.resHeatVal = int8(b[0])
	if err := bus.Tx(addr, []byte{regRangeSwErr}, b[:]); err != nil {
		return calibration{}, err
	}
	cal.rangeSwErr = int8(b[0]&rangeSwErrMask) >> 4
	return cal, nil
}

// Compensation formulas are the floating-point variants from the vendor
// reference API.

func (c *calibration) temperature(adc uint32) (celsius, tFine float64) {
	v1 := (float64(adc)/16384.0 - float64(c.t1)/1024.0) * float64(c.t2)
	x := float64(adc)/131072.0 - float64(c.t1)/8192.0
	v2 := x * x * float64(c.t3) * 16.0
	tFine = v1 + v2
	return tFine / 5120.0, tFine
}

func (c *calibration) pressure(adc uint32, tFine float64) float64 {
	v1 := tFine/2.0 - 64000.0
	v2 := v1 * v1 * (float64(c.p6) / 131072.0)
	v2 += v1 * float64(c.p5) * 2.0
	v2 = v2/4.0 + float64(c.p4)*65536.0
	v1 = (float64(c.p3)*v1*v1/16384.0 + float64(c.p2)*v1) / 524288.0
	v1 = (1.0 + v1/32768.0) * float64(c.p1)
	if v1 == 0 {
		return 0
	}
	p := 1048576.0 - float64(adc)
	p = (p - v2/4096.0) * 6250.0 / v1
	v1 = float64(c.p9) * p * p / 2147483648.0
	v2 = p * (float64(c.p8) / 32768.0)
	q := p / 256.0
	v3 := q * q * q * (float64(c.p10) / 131072.0)
	return p + (v1+v2+v3+float64(c.p7)*128.0)/16.0
}

func (c *calibration) humidity(adc uint16, tFine float64) float64 {
	t := tFine / 5120.0
	v1 := float64(adc) - (float64(c.h1)*16.0 + float64(c.h3)/2.0*t)
	v2 := v1 * (float64(c.h2) / 262144.0 * (1.0 + float64(c.h4)/16384.0*t + float64(c.h5)/1048576.0*t*t))
	v3 := float64(c.h6) / 16384.0
	v4 := float64(c.h7) / 2097152.0
	return mathx.Clamp(v2+(v3+v4*t)*v2*v2, 0, 100)
}

var (
	gasK1 = [16]float64{0, 0, 0, 0, 0, -1.0, 0, -0.8, 0, 0, -0.2, -0.5, 0, -1.0, 0, 0}
	gasK2 = [16]float64{0, 0, 0, 0, 0.1, 0.7, 0, -0.8, -0.1, 0, 0, 0, 0, 0, 0, 0}
)

// gasResistance returns ohms.
func (c *calibration) gasResistance(adc uint16, rng uint8) float64 {
	rng &= gasRangeMask
	v1 := 1340.0 + 5.0*float64(c.rangeSwErr)
	v2 := v1 * (1.0 + gasK1[rng]/100.0)
	v3 := 1.0 + gasK2[rng]/100.0
	return 1.0 / (v3 * 0.000000125 * float64(uint32(1)<<rng) * ((float64(adc)-512.0)/v2 + 1.0))
}

// heaterResistance converts a target temperature to the res_heat_x code.
func (c *calibration) heaterResistance(target, ambient float64) byte {
	if target > 400 {
		target = 400
	}
	v1 := float64(c.gh1)/16.0 + 49.0
	v2 := float64(c.gh2)/32768.0*0.0005 + 0.00235
	v3 := float64(c.gh3) / 1024.0
	v4 := v1 * (1.0 + v2*target)
	v5 := v4 + v3*ambient
	r := 3.4 * (v5*(4.0/(4.0+float64(c.resHeatRange)))*(1.0/(1.0+float64(c.resHeatVal)*0.002)) - 25)
	if r < 0 {
		return 0
	}
	if r > 255 {
		return 255
	}
	return byte(r)
}

// heaterDuration converts milliseconds to the gas_wait_x code
// (6-bit value with a 2-bit multiplier of 1, 4, 16 or 64).
func heaterDuration(ms uint16) byte {
	if ms >= 0xFC0 {
		return 0xFF
	}
	var factor byte
	for ms > 0x3F {
		ms /= 4
		factor++
	}
	return byte(ms) + factor*64
}
