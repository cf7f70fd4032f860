package wasm

import (
	"log"
	"os"
)

var PrintDebugInfo = false

var logger = log.New(debugWriter{}, "", log.Lshortfile)

// debugWriter sends log output to stderr while PrintDebugInfo is set and
// drops it otherwise; the flag is checked on every write.
type debugWriter struct{}

func (debugWriter) Write(p []byte) (int, error) {
	if !PrintDebugInfo {
		return len(p), nil
	}
	return os.Stderr.Write(p)
}
