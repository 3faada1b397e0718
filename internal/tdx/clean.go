// SPDX-FileCopyrightText: 2025 Moe Mahhouk
//
// SPDX-License-Identifier: GPL-3.0-or-later

package tdx

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/MoeMahhouk/tdx/internal/sys"
)

// terminateGrace is how long a guest gets to shut down after SIGTERM
// before it is killed.
const terminateGrace = 10 * time.Second

// Clean terminates a running guest tracked by the PID file and removes the
// transient files of the launch. It is idempotent: a missing PID file or an
// already gone process is not an error.
func Clean(ctx context.Context, guest *Guest) error {
	err := terminateGuest(ctx, guest)
	if err != nil {
		return err
	}

	err = sys.RemoveFiles(
		guest.PIDFile,
		guest.LogFile,
		guest.MonitorSocket,
	)
	if err != nil {
		return fmt.Errorf("remove transient files: %w", err)
	}

	return nil
}

func terminateGuest(ctx context.Context, guest *Guest) error {
	pid, err := sys.ReadPIDFile(guest.PIDFile)
	if errors.Is(err, os.ErrNotExist) {
		slog.Debug("No PID file, no guest to terminate",
			slog.String("pidfile", guest.PIDFile))

		return nil
	} else if err != nil {
		// A corrupt PID file leaves nothing to signal; it is removed with
		// the other transient files.
		slog.Warn("Ignoring unreadable PID file",
			slog.String("pidfile", guest.PIDFile),
			slog.Any("error", err))

		return nil
	}

	slog.Info("Terminating TD guest", slog.Int("pid", pid))

	err = sys.Terminate(ctx, pid, terminateGrace)
	if errors.Is(err, sys.ErrProcessNotRunning) {
		return nil
	} else if errors.Is(err, sys.ErrTerminateTimeout) {
		slog.Warn("Guest did not shut down in time, killed",
			slog.Int("pid", pid))

		return nil
	}

	return err
}
