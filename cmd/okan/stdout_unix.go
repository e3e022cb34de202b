//go:build !windows

package main

import (
	"os"

	"github.com/rs/zerolog/log"
	"golang.org/x/sys/unix"
)

// closeStdin will close stdin on Unix platforms - this is standard practice for daemons.
func closeStdin() {
	if err := os.Stdin.Close(); err != nil {
		// Not a fatal error
		log.Warn().Str("phase", "startup").Err(err).Msg("Failed to close os.Stdin during log setup")
	}
}

// reassignStdout points stdout/stderr to logf on systems that support the Dup2 syscall, so panics
// land in the log file.
func reassignStdout(logf *os.File) {
	if err := unix.Dup2(int(logf.Fd()), 1); err != nil {
		// Not considered fatal
		log.Warn().Str("phase", "startup").Err(err).Msg("Failed to re-assign stdout to logfile")
	}
	if err := unix.Dup2(int(logf.Fd()), 2); err != nil {
		// Not considered fatal
		log.Warn().Str("phase", "startup").Err(err).Msg("Failed to re-assign stderr to logfile")
	}
}
