// SPDX-FileCopyrightText: 2025 Moe Mahhouk
//
// SPDX-License-Identifier: GPL-3.0-or-later

package cmd

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"github.com/google/subcommands"

	"github.com/MoeMahhouk/tdx/internal/tdx"
)

// CleanCommand terminates a running guest and removes transient files.
type CleanCommand struct {
	spec  *tdx.Spec
	debug bool
}

// NewCleanCommand returns the clean subcommand operating on the given
// spec.
func NewCleanCommand(spec *tdx.Spec) *CleanCommand {
	return &CleanCommand{spec: spec}
}

// Name implements [subcommands.Command].
func (*CleanCommand) Name() string { return "clean" }

// Synopsis implements [subcommands.Command].
func (*CleanCommand) Synopsis() string {
	return "terminate the TD guest and remove transient files"
}

// Usage implements [subcommands.Command].
func (*CleanCommand) Usage() string {
	return `clean:
  Terminate the guest tracked by the PID file and remove the launch's
  log file, monitor socket and PID file. Safe to run when no guest is
  running.
`
}

// SetFlags implements [subcommands.Command].
func (c *CleanCommand) SetFlags(fs *flag.FlagSet) {
	fs.BoolVar(
		&c.debug,
		"debug",
		c.debug,
		"enable debug output",
	)
}

// Execute implements [subcommands.Command].
func (c *CleanCommand) Execute(
	ctx context.Context,
	_ *flag.FlagSet,
	_ ...any,
) subcommands.ExitStatus {
	setupLogging(os.Stderr, c.debug)

	err := tdx.Clean(ctx, &c.spec.Guest)
	if err != nil {
		slog.Error("Cleanup failed", slog.Any("error", err))
		return subcommands.ExitFailure
	}

	return subcommands.ExitSuccess
}
