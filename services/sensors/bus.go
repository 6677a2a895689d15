package sensors

import "errors"

var errNoBus = errors.New("sensors: i2c bus not available")

// initBus opens the shared I2C bus once. A failure leaves s.bus nil, which
// every bus probe treats as an absent device.
func (s *Sensors) initBus() {
	if s.busTried {
		return
	}
	s.busTried = true

	sda, okSDA := s.cfg.TranslatePin(s.cfg.SDAPin)
	scl, okSCL := s.cfg.TranslatePin(s.cfg.SCLPin)
	if !okSDA || !okSCL || s.platform == nil {
		s.logf("Setup", "I2C pins not usable, skipping bus sensors")
		return
	}
	b, err := s.platform.I2C(sda, scl)
	if err != nil {
		s.logf("Setup", "I2C init failed: "+err.Error())
		return
	}
	s.bus = b
}

// tx is the probe path: no bus reads as a NACK.
func (s *Sensors) tx(addr uint16, w, r []byte) error {
	if s.bus == nil {
		return errNoBus
	}
	return s.bus.Tx(addr, w, r)
}
