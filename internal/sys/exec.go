// SPDX-FileCopyrightText: 2025 Moe Mahhouk
//
// SPDX-License-Identifier: GPL-3.0-or-later

package sys

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"

	"github.com/kballard/go-shellquote"
)

// Run executes an external tool and blocks until it exits.
//
// The combined output is collected and returned as part of a [CommandError]
// if the tool exits non-zero. The command line is logged at debug level in
// shell quoting, so it can be copied and replayed for inspection.
func Run(ctx context.Context, tool string, args ...string) error {
	_, err := runCollected(ctx, tool, args...)
	return err
}

// Output is like [Run] but returns the tool's standard output with
// surrounding whitespace trimmed.
func Output(ctx context.Context, tool string, args ...string) (string, error) {
	return runCollected(ctx, tool, args...)
}

func runCollected(ctx context.Context, tool string, args ...string) (string, error) {
	slog.Debug("Running external tool",
		slog.String("command", shellquote.Join(append([]string{tool}, args...)...)))

	var stdout, stderr bytes.Buffer

	cmd := exec.CommandContext(ctx, tool, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err != nil {
		return "", wrapRunError(ctx, tool, err, &stdout, &stderr)
	}

	return strings.TrimSpace(stdout.String()), nil
}

func wrapRunError(
	ctx context.Context,
	tool string,
	err error,
	stdout, stderr *bytes.Buffer,
) error {
	// A context error is more useful than the SIGKILL exit the tool dies
	// with once the context fires.
	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("%s: %w", tool, ctxErr)
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		output := stderr.String()
		if output == "" {
			output = stdout.String()
		}

		return &CommandError{
			Tool:     tool,
			ExitCode: exitErr.ExitCode(),
			Output:   output,
			Err:      err,
		}
	}

	return fmt.Errorf("%s: %w", tool, err)
}

// LookupTools verifies that all given tools can be found in PATH. It is run
// before the pipeline starts so missing packages surface immediately instead
// of mid-build.
func LookupTools(tools ...string) error {
	for _, tool := range tools {
		_, err := exec.LookPath(tool)
		if err != nil {
			return fmt.Errorf("required tool: %w", err)
		}
	}

	return nil
}
