// Package platform provides the sensors.Platform for each build target:
// RP2 microcontrollers (machine I2C, on-chip ADC, DHT), Linux boards
// (periph.io I2C, ADS1115 for the photoresistor) and an inert host fallback.
package platform

// Options is shared by every target; fields a target has no use for are
// ignored.
type Options struct {
	// I2CBus is the periph.io bus name on Linux ("" selects the first bus).
	I2CBus string
	// ADCAddress is the ADS1115 address on Linux. Default 0x48.
	ADCAddress uint16
}
