// SPDX-FileCopyrightText: 2025 Moe Mahhouk
//
// SPDX-License-Identifier: GPL-3.0-or-later

package image

import "errors"

var (
	// ErrDownloadFailed is returned if the base image or the checksum
	// manifest cannot be fetched.
	ErrDownloadFailed = errors.New("download failed")

	// ErrChecksumMismatch is returned if the downloaded image does not
	// match the manifest digest. The download is retried once before this
	// error is passed up.
	ErrChecksumMismatch = errors.New("checksum mismatch")

	// ErrChecksumNotFound is returned if the manifest has no entry for the
	// image file.
	ErrChecksumNotFound = errors.New("no checksum entry for image")

	// ErrResizeFailed is returned if growing the image fails.
	ErrResizeFailed = errors.New("image resize failed")

	// ErrCloudInitTimeout is returned if the transient first boot did not
	// finish within the configured timeout.
	ErrCloudInitTimeout = errors.New("cloud-init first boot timed out")

	// ErrCustomizeFailed is returned if the in-image setup via
	// virt-customize fails. The image is left in place for inspection.
	ErrCustomizeFailed = errors.New("image customization failed")
)
