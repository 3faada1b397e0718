// SPDX-FileCopyrightText: 2025 Moe Mahhouk
//
// SPDX-License-Identifier: GPL-3.0-or-later

package sys_test

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MoeMahhouk/tdx/internal/sys"
)

func TestReadPIDFile(t *testing.T) {
	tests := []struct {
		name      string
		content   string
		expected  int
		expectErr bool
	}{
		{
			name:     "plain pid",
			content:  "4242",
			expected: 4242,
		},
		{
			name:     "trailing newline",
			content:  "4242\n",
			expected: 4242,
		},
		{
			name:      "garbage",
			content:   "not-a-pid",
			expectErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "td.pid")

			err := os.WriteFile(path, []byte(tt.content), 0o600)
			require.NoError(t, err)

			pid, err := sys.ReadPIDFile(path)

			if tt.expectErr {
				require.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.expected, pid)
		})
	}
}

func TestReadPIDFile_missing(t *testing.T) {
	_, err := sys.ReadPIDFile(filepath.Join(t.TempDir(), "td.pid"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestProcessAlive(t *testing.T) {
	assert.True(t, sys.ProcessAlive(os.Getpid()))
}

func TestTerminate(t *testing.T) {
	cmd := exec.Command("sleep", "30")
	require.NoError(t, cmd.Start())

	done := make(chan struct{})
	go func() {
		_ = cmd.Wait()
		close(done)
	}()

	err := sys.Terminate(context.Background(), cmd.Process.Pid, 5*time.Second)
	require.NoError(t, err)

	<-done
}

func TestTerminate_processGone(t *testing.T) {
	cmd := exec.Command("true")
	require.NoError(t, cmd.Run())

	err := sys.Terminate(context.Background(), cmd.Process.Pid, time.Second)
	require.ErrorIs(t, err, sys.ErrProcessNotRunning)
}

func TestRemoveFiles(t *testing.T) {
	dir := t.TempDir()

	present := filepath.Join(dir, "td.log")
	require.NoError(t, os.WriteFile(present, []byte("log"), 0o600))

	missing := filepath.Join(dir, "monitor.sock")

	err := sys.RemoveFiles(present, missing)
	require.NoError(t, err)

	assert.NoFileExists(t, present)
}
