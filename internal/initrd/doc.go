// SPDX-FileCopyrightText: 2025 Moe Mahhouk
//
// SPDX-License-Identifier: GPL-3.0-or-later

// Package initrd patches a guest initrd by injecting additional binaries
// into the cpio archive. Disabled by default; only active when a binary to
// inject is configured.
package initrd
