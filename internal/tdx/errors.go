// SPDX-FileCopyrightText: 2025 Moe Mahhouk
//
// SPDX-License-Identifier: GPL-3.0-or-later

package tdx

import "errors"

var (
	// ErrOutputExists is returned if the output image exists and force
	// recreation is not requested.
	ErrOutputExists = errors.New("output image exists (use -f to recreate)")

	// ErrInvalidOutputPath is returned if the output path does not name a
	// qcow2 file.
	ErrInvalidOutputPath = errors.New("output path must end in .qcow2")

	// ErrNoOutputPath is returned if no output path is configured.
	ErrNoOutputPath = errors.New("no output path given")
)
