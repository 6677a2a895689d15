package config

// -----------------------------------------------------------------------------
// Embedded configuration
//
// Per-board documents applied over Default() by ForBoard. Keys are the same
// flat keys Apply accepts.
// -----------------------------------------------------------------------------

const cfgPico = `{
  "SDAPin": "GP4",
  "SCLPin": "GP5",
  "onewirePin": "GP15",
  "ldrPin": "GP26",
  "ldrDevice": "GL5528"
}`

// Raspberry Pi style SBC: /dev/i2c-1, LDR on ADS1115 channel 0.
const cfgLinux = `{
  "SDAPin": "GPIO2",
  "SCLPin": "GPIO3",
  "ldrPin": "0",
  "ldrDevice": "GL5528"
}`

var embeddedConfigs = map[string][]byte{
	"pico":  []byte(cfgPico),
	"linux": []byte(cfgLinux),
}
