// services/console/console_rp2xxx.go
//go:build rp2040 || rp2350

package console

import (
	"machine"

	uartx "github.com/jangala-dev/tinygo-uartx/uartx"
)

// Board is the name of the embedded configuration for this target.
const Board = "pico"

// Init routes the console to UART0 on the given pins.
func Init(baud uint32, tx, rx uint8) error {
	hw := uartx.UART0
	if err := hw.Configure(uartx.UARTConfig{
		BaudRate: baud,
		TX:       machine.Pin(tx),
		RX:       machine.Pin(rx),
	}); err != nil {
		return err
	}
	SetOutput(hw)
	return nil
}
