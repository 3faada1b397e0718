// SPDX-FileCopyrightText: 2025 Moe Mahhouk
//
// SPDX-License-Identifier: GPL-3.0-or-later

// Package sys wraps the external tools the image pipeline shells out to and
// provides process lifecycle helpers for the launched guest.
package sys
