package wad

import "github.com/rs/zerolog"

var logger = zerolog.Nop()

// SetLogger installs the logger used for decode progress and diagnostics.
func SetLogger(l zerolog.Logger) {
	logger = l
}
