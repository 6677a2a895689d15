// services/console/console_host.go
//go:build !(rp2040 || rp2350)

package console

// Board is the name of the embedded configuration for this target.
const Board = "linux"

// Init keeps stdout.
func Init(baud uint32, tx, rx uint8) error { return nil }
