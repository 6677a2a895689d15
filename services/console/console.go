// Package console is the firmware log sink: "[function] message" lines on
// the board console.
package console

import (
	"io"
	"os"
	"sync"
)

var (
	mu  sync.Mutex
	out io.Writer = os.Stdout
)

// SetOutput redirects log lines.
func SetOutput(w io.Writer) {
	mu.Lock()
	out = w
	mu.Unlock()
}

// Log writes one line. It matches sensors.LogFunc and config.LogFunc.
func Log(function, message string) {
	line := make([]byte, 0, len(function)+len(message)+4)
	line = append(line, '[')
	line = append(line, function...)
	line = append(line, "] "...)
	line = append(line, message...)
	line = append(line, '\n')
	mu.Lock()
	_, _ = out.Write(line)
	mu.Unlock()
}
