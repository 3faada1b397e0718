// SPDX-FileCopyrightText: 2025 Moe Mahhouk
//
// SPDX-License-Identifier: GPL-3.0-or-later

// Package tdx ties the image pipeline together: it defines the build and
// launch specs and runs the create pipeline from base image download to the
// finished TD guest image.
package tdx
