// SPDX-FileCopyrightText: 2025 Moe Mahhouk
//
// SPDX-License-Identifier: GPL-3.0-or-later

// Package qemu builds and runs the qemu-system command line that launches
// the customized image as a TDX guest.
package qemu
