// SPDX-FileCopyrightText: 2025 Moe Mahhouk
//
// SPDX-License-Identifier: GPL-3.0-or-later

// Package cmd implements the tdx CLI: the create, run and clean
// subcommands, their flags and the configuration override handling.
package cmd
