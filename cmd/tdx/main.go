// SPDX-FileCopyrightText: 2025 Moe Mahhouk
//
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/subcommands"

	"github.com/MoeMahhouk/tdx/internal/cmd"
)

func run() int {
	spec, err := cmd.LoadSpec()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: load config: %v\n", err)
		return int(subcommands.ExitFailure)
	}

	subcommands.Register(subcommands.HelpCommand(), "")
	subcommands.Register(subcommands.FlagsCommand(), "")
	subcommands.Register(subcommands.CommandsCommand(), "")
	subcommands.Register(cmd.NewCreateCommand(spec), "")
	subcommands.Register(cmd.NewRunCommand(spec), "")
	subcommands.Register(cmd.NewCleanCommand(spec), "")

	flag.Parse()

	ctx, cancel := signal.NotifyContext(
		context.Background(),
		syscall.SIGINT,
		syscall.SIGTERM,
		syscall.SIGQUIT,
		syscall.SIGHUP,
	)
	defer cancel()

	return int(subcommands.Execute(ctx))
}

func main() {
	os.Exit(run())
}
