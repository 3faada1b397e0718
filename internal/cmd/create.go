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

const (
	sizeMinGB = 10
	sizeMaxGB = 1024
)

// CreateCommand builds the TD guest image.
type CreateCommand struct {
	spec  *tdx.Spec
	debug bool
}

// NewCreateCommand returns the create subcommand operating on the given
// spec. The spec carries the effective defaults, so flag defaults shown in
// the help output match the config file and environment overrides.
func NewCreateCommand(spec *tdx.Spec) *CreateCommand {
	return &CreateCommand{spec: spec}
}

// Name implements [subcommands.Command].
func (*CreateCommand) Name() string { return "create" }

// Synopsis implements [subcommands.Command].
func (*CreateCommand) Synopsis() string {
	return "build a customized TDX guest image"
}

// Usage implements [subcommands.Command].
func (*CreateCommand) Usage() string {
	return `create [-o output.qcow2] [-s size] [-n hostname] [-u user]
	[-p password] [-b binary [-d destdir]] [-f]:
  Download the base cloud image, apply cloud-init customization, run the
  TD setup inside the image and optionally patch the initrd.
`
}

// SetFlags implements [subcommands.Command].
func (c *CreateCommand) SetFlags(fs *flag.FlagSet) {
	fs.Var(
		(*outputPathValue)(&c.spec.Image.OutputPath),
		"o",
		"output image file, must end in .qcow2",
	)

	fs.Var(
		&boundedUintValue{
			value: &c.spec.Image.SizeGB,
			min:   sizeMinGB,
			max:   sizeMaxGB,
		},
		"s",
		"image size in GB",
	)

	fs.StringVar(
		&c.spec.Image.Hostname,
		"n",
		c.spec.Image.Hostname,
		"guest hostname",
	)

	fs.StringVar(
		&c.spec.Image.User,
		"u",
		c.spec.Image.User,
		"guest user",
	)

	fs.StringVar(
		&c.spec.Image.Password,
		"p",
		c.spec.Image.Password,
		"guest password",
	)

	fs.Var(
		(*filePathValue)(&c.spec.Image.Binary),
		"b",
		"binary to inject into the guest initrd",
	)

	fs.StringVar(
		&c.spec.Image.BinaryDestDir,
		"d",
		c.spec.Image.BinaryDestDir,
		"destination dir inside the initrd for the injected binary",
	)

	fs.BoolVar(
		&c.spec.Image.Force,
		"f",
		c.spec.Image.Force,
		"recreate the output image if it exists",
	)

	fs.BoolVar(
		&c.debug,
		"debug",
		c.debug,
		"enable debug output",
	)
}

// Execute implements [subcommands.Command].
func (c *CreateCommand) Execute(
	ctx context.Context,
	_ *flag.FlagSet,
	_ ...any,
) subcommands.ExitStatus {
	setupLogging(os.Stderr, c.debug)

	err := tdx.Create(ctx, &c.spec.Image)
	if err != nil {
		slog.Error("Image creation failed", slog.Any("error", err))
		return subcommands.ExitFailure
	}

	return subcommands.ExitSuccess
}
