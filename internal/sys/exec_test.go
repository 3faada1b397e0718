// SPDX-FileCopyrightText: 2025 Moe Mahhouk
//
// SPDX-License-Identifier: GPL-3.0-or-later

package sys_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MoeMahhouk/tdx/internal/sys"
)

func TestRun(t *testing.T) {
	err := sys.Run(context.Background(), "true")
	require.NoError(t, err)
}

func TestRun_nonZeroExit(t *testing.T) {
	err := sys.Run(context.Background(), "sh", "-c", "echo broken image >&2; exit 3")
	require.Error(t, err)

	var cmdErr *sys.CommandError
	require.ErrorAs(t, err, &cmdErr)

	assert.Equal(t, "sh", cmdErr.Tool)
	assert.Equal(t, 3, cmdErr.ExitCode)
	assert.Contains(t, cmdErr.Output, "broken image")
}

func TestRun_canceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := sys.Run(ctx, "sleep", "10")
	require.ErrorIs(t, err, context.Canceled)
}

func TestRun_toolNotFound(t *testing.T) {
	err := sys.Run(context.Background(), "surely-not-an-installed-tool")
	require.Error(t, err)
	assert.False(t, errors.Is(err, &sys.CommandError{}))
}

func TestOutput(t *testing.T) {
	output, err := sys.Output(context.Background(), "sh", "-c", "echo '  spaced  '")
	require.NoError(t, err)

	assert.Equal(t, "spaced", output)
}

func TestLookupTools(t *testing.T) {
	tests := []struct {
		name      string
		tools     []string
		expectErr bool
	}{
		{
			name:  "all present",
			tools: []string{"sh", "true"},
		},
		{
			name:      "one missing",
			tools:     []string{"sh", "surely-not-an-installed-tool"},
			expectErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := sys.LookupTools(tt.tools...)

			if tt.expectErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
		})
	}
}
