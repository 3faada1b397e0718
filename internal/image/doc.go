// SPDX-FileCopyrightText: 2025 Moe Mahhouk
//
// SPDX-License-Identifier: GPL-3.0-or-later

// Package image acquires the cloud base image and turns it into a TDX
// guest image: checksum-verified download, resize, cloud-init first boot
// and virt-customize based in-image setup.
package image
