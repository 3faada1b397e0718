// SPDX-FileCopyrightText: 2025 Moe Mahhouk
//
// SPDX-License-Identifier: GPL-3.0-or-later

package tdx_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/MoeMahhouk/tdx/internal/tdx"
)

func TestValidateCreate_outputPath(t *testing.T) {
	img := &tdx.NewSpec().Image
	img.OutputPath = "guest.raw"

	err := tdx.ValidateCreate(img)
	require.ErrorIs(t, err, tdx.ErrInvalidOutputPath)
}

func TestValidateCreate_missingBinary(t *testing.T) {
	img := &tdx.NewSpec().Image
	img.OutputPath = filepath.Join(t.TempDir(), "guest.qcow2")
	img.Binary = filepath.Join(t.TempDir(), "nonexistent")

	err := tdx.ValidateCreate(img)
	require.ErrorIs(t, err, os.ErrNotExist)
}
