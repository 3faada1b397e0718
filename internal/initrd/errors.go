// SPDX-FileCopyrightText: 2025 Moe Mahhouk
//
// SPDX-License-Identifier: GPL-3.0-or-later

package initrd

import "errors"

var (
	// ErrNoInitrdFound is returned if the guest image has no initrd under
	// /boot.
	ErrNoInitrdFound = errors.New("no initrd found in guest image")

	// ErrNotRegularFile is returned if the binary to inject is not a
	// regular file.
	ErrNotRegularFile = errors.New("not a regular file")
)
