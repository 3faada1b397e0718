// SPDX-FileCopyrightText: 2025 Moe Mahhouk
//
// SPDX-License-Identifier: GPL-3.0-or-later

package sys

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sys/unix"
)

const terminatePollInterval = 100 * time.Millisecond

// ReadPIDFile reads the PID the guest process wrote on startup.
func ReadPIDFile(path string) (int, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read PID file: %w", err)
	}

	pid, err := strconv.Atoi(strings.TrimSpace(string(content)))
	if err != nil {
		return 0, fmt.Errorf("parse PID file %s: %w", path, err)
	}

	return pid, nil
}

// ProcessAlive probes the process with the null signal.
func ProcessAlive(pid int) bool {
	return unix.Kill(pid, 0) == nil
}

// Terminate sends SIGTERM to the process and polls until it is gone or the
// grace period expires. On expiry the process is killed with SIGKILL and
// [ErrTerminateTimeout] is returned.
func Terminate(ctx context.Context, pid int, grace time.Duration) error {
	err := unix.Kill(pid, unix.SIGTERM)
	if errors.Is(err, unix.ESRCH) {
		return ErrProcessNotRunning
	} else if err != nil {
		return fmt.Errorf("signal %d: %w", pid, err)
	}

	deadline := time.Now().Add(grace)
	for time.Now().Before(deadline) {
		if !ProcessAlive(pid) {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(terminatePollInterval):
		}
	}

	_ = unix.Kill(pid, unix.SIGKILL)

	return ErrTerminateTimeout
}

// RemoveFiles removes the given files, ignoring ones that are already gone.
// It keeps going on errors and reports them joined, so a single stubborn
// file does not leave the rest behind.
func RemoveFiles(paths ...string) error {
	var errs []error

	for _, path := range paths {
		err := os.Remove(path)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}
