package bme680

// I2C addresses (SDO high / low).
const (
	Address    = 0x77
	AddressAlt = 0x76
)

// Registers. Names follow the datasheet memory map.
const (
	regChipID     = 0xD0
	regSoftReset  = 0xE0
	regCtrlGas1   = 0x71
	regCtrlHum    = 0x72
	regCtrlMeas   = 0x74
	regConfig     = 0x75
	regResHeat0   = 0x5A
	regGasWait0   = 0x64
	regField0     = 0x1D
	regCoeff1     = 0x89
	regCoeff2     = 0xE1
	regResHeatVal = 0x00
	regResHeatRng = 0x02
	regRangeSwErr = 0x04

	ChipID       = 0x61
	cmdSoftReset = 0xB6

	coeff1Len = 25
	coeff2Len = 16
	fieldLen  = 15

	modeSleep  = 0x00
	modeForced = 0x01

	runGas = 0x10

	statusNewData  = 0x80
	gasValid       = 0x20
	heaterStable   = 0x10
	gasRangeMask   = 0x0F
	heatRangeMask  = 0x30
	rangeSwErrMask = 0xF0
)

// Oversampling for temperature, pressure and humidity.
type Oversampling byte

const (
	OversamplingNone Oversampling = iota
	Oversampling1X
	Oversampling2X
	Oversampling4X
	Oversampling8X
	Oversampling16X
)

// cycles per oversampling setting, used to estimate measurement duration.
var osCycles = [...]uint32{0, 1, 2, 4, 8, 16}

// Filter is the IIR filter coefficient.
type Filter byte

const (
	FilterOff Filter = iota
	Filter1
	Filter3
	Filter7
	Filter15
	Filter31
	Filter63
	Filter127
)
