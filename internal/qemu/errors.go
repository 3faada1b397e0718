// SPDX-FileCopyrightText: 2025 Moe Mahhouk
//
// SPDX-License-Identifier: GPL-3.0-or-later

package qemu

import "errors"

var (
	// ErrArgumentCollision is returned if two [Argument]s cannot coexist on
	// the same command line.
	ErrArgumentCollision = errors.New("colliding qemu arguments")

	// ErrKVMNotAvailable is returned if /dev/kvm is missing or not
	// accessible by the invoking user.
	ErrKVMNotAvailable = errors.New(
		"KVM not available (missing /dev/kvm or no permission; " +
			"add your user to the kvm group: sudo usermod -aG kvm $USER)",
	)

	// ErrGuestAlreadyRunning is returned if a guest tracked by the PID file
	// is still alive when a new launch is requested.
	ErrGuestAlreadyRunning = errors.New("guest already running")

	// ErrNoImage is returned if no guest image path is configured.
	ErrNoImage = errors.New("no guest image given")

	// ErrNoFirmware is returned if the firmware file is not configured or
	// not present.
	ErrNoFirmware = errors.New("firmware file not found")
)
