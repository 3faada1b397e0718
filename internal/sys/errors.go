// SPDX-FileCopyrightText: 2025 Moe Mahhouk
//
// SPDX-License-Identifier: GPL-3.0-or-later

package sys

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrProcessNotRunning is returned if a PID file points to a process
	// that does not exist anymore.
	ErrProcessNotRunning = errors.New("process not running")

	// ErrTerminateTimeout is returned if a process did not exit within the
	// grace period after SIGTERM and had to be killed.
	ErrTerminateTimeout = errors.New("process did not terminate in time")
)

// CommandError is returned if an external tool exits non-zero. It carries
// the tool name, the exit code and the collected output for diagnostics.
type CommandError struct {
	Tool     string
	ExitCode int
	Output   string
	Err      error
}

// Error implements the [error] interface.
func (e *CommandError) Error() string {
	msg := fmt.Sprintf("%s: exit code %d", e.Tool, e.ExitCode)

	if out := strings.TrimSpace(e.Output); out != "" {
		msg += ": " + out
	}

	return msg
}

// Is implements the [errors.Is] interface.
func (*CommandError) Is(other error) bool {
	_, ok := other.(*CommandError)
	return ok
}

// Unwrap implements the [errors.Unwrap] interface.
func (e *CommandError) Unwrap() error {
	return e.Err
}
