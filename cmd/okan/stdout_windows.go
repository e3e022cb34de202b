//go:build windows

package main

import (
	"os"

	"github.com/rs/zerolog/log"
)

// closeStdin does nothing on Windows, it would always fail.
func closeStdin() {
	// Nop
}

// reassignStdout points stdout/stderr to logf on systems that do not support the Dup2 syscall.
func reassignStdout(logf *os.File) {
	// Close std* streams to prevent accidental output, they are redirected to logf below.
	// Warning: this will hide panic() output.
	if err := os.Stderr.Close(); err != nil {
		// Not considered fatal
		log.Warn().Str("phase", "startup").Err(err).Msg("Failed to close os.Stderr during log setup")
	}
	if err := os.Stdin.Close(); err != nil {
		log.Warn().Str("phase", "startup").Err(err).Msg("Failed to close os.Stdin during log setup")
	}
	os.Stdout = logf
	os.Stderr = logf
}
