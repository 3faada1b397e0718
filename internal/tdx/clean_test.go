// SPDX-FileCopyrightText: 2025 Moe Mahhouk
//
// SPDX-License-Identifier: GPL-3.0-or-later

package tdx_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MoeMahhouk/tdx/internal/tdx"
)

func testGuest(t *testing.T) *tdx.Guest {
	t.Helper()

	dir := t.TempDir()

	guest := tdx.NewSpec().Guest
	guest.PIDFile = filepath.Join(dir, "td.pid")
	guest.LogFile = filepath.Join(dir, "td.log")
	guest.MonitorSocket = filepath.Join(dir, "monitor.sock")

	return &guest
}

func TestClean(t *testing.T) {
	guest := testGuest(t)

	for _, path := range []string{guest.LogFile, guest.MonitorSocket} {
		err := os.WriteFile(path, nil, 0o600)
		require.NoError(t, err)
	}

	err := tdx.Clean(context.Background(), guest)
	require.NoError(t, err)

	assert.NoFileExists(t, guest.LogFile)
	assert.NoFileExists(t, guest.MonitorSocket)
}

func TestClean_nothingToClean(t *testing.T) {
	guest := testGuest(t)

	// Without a PID file and without transient files the cleanup is a
	// no-op. Running it twice must not fail either.
	require.NoError(t, tdx.Clean(context.Background(), guest))
	require.NoError(t, tdx.Clean(context.Background(), guest))
}

func TestClean_stalePIDFile(t *testing.T) {
	guest := testGuest(t)

	err := os.WriteFile(guest.PIDFile, []byte("garbage"), 0o600)
	require.NoError(t, err)

	require.NoError(t, tdx.Clean(context.Background(), guest))

	assert.NoFileExists(t, guest.PIDFile)
}
