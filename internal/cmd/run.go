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

// RunCommand launches the built image as a TDX guest.
type RunCommand struct {
	spec  *tdx.Spec
	debug bool
}

// NewRunCommand returns the run subcommand operating on the given spec.
func NewRunCommand(spec *tdx.Spec) *RunCommand {
	return &RunCommand{spec: spec}
}

// Name implements [subcommands.Command].
func (*RunCommand) Name() string { return "run" }

// Synopsis implements [subcommands.Command].
func (*RunCommand) Synopsis() string {
	return "launch the image as a daemonized TDX guest"
}

// Usage implements [subcommands.Command].
func (*RunCommand) Usage() string {
	return `run [-i image.qcow2]:
  Start the TD guest under qemu with KVM acceleration. The launch is
  parameterized via the environment: VM_IMG, FIRMWARE, SSH_PORT,
  PROCESS_NAME and DEVICE_ARGS.
`
}

// SetFlags implements [subcommands.Command].
func (c *RunCommand) SetFlags(fs *flag.FlagSet) {
	fs.Var(
		(*filePathValue)(&c.spec.Guest.ImagePath),
		"i",
		"guest image to launch (alternative to VM_IMG)",
	)

	fs.BoolVar(
		&c.debug,
		"debug",
		c.debug,
		"enable debug output",
	)
}

// Execute implements [subcommands.Command].
func (c *RunCommand) Execute(
	ctx context.Context,
	_ *flag.FlagSet,
	_ ...any,
) subcommands.ExitStatus {
	setupLogging(os.Stderr, c.debug)

	command := c.spec.GuestCommand()

	err := command.Validate()
	if err != nil {
		slog.Error("Launch preconditions not met", slog.Any("error", err))
		return subcommands.ExitFailure
	}

	err = command.Run(ctx)
	if err != nil {
		slog.Error("Guest launch failed", slog.Any("error", err))
		return subcommands.ExitFailure
	}

	return subcommands.ExitSuccess
}
