package config

import "strconv"

// NodeMCU silk-screen names.
var nodeMCUPins = map[string]uint8{
	"Pin_D0": 16,
	"Pin_D1": 5,
	"Pin_D2": 4,
	"Pin_D3": 0,
	"Pin_D4": 2,
	"Pin_D5": 14,
	"Pin_D6": 12,
	"Pin_D7": 13,
	"Pin_D8": 15,
	"Pin_A0": 17,
}

// TranslatePin maps a configured pin name to a GPIO number. Accepted forms
// are the NodeMCU names above, "GPn", "GPIOn" and a bare number.
func (c *Config) TranslatePin(name string) (uint8, bool) {
	if n, ok := nodeMCUPins[name]; ok {
		return n, true
	}
	s := name
	switch {
	case len(s) > 4 && s[:4] == "GPIO":
		s = s[4:]
	case len(s) > 2 && s[:2] == "GP":
		s = s[2:]
	}
	n, err := strconv.ParseUint(s, 10, 8)
	if err != nil {
		c.logf("TranslatePin", "Unknown pin: "+name)
		return 0, false
	}
	return uint8(n), true
}
