// SPDX-FileCopyrightText: 2025 Moe Mahhouk
//
// SPDX-License-Identifier: GPL-3.0-or-later

package image

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/MoeMahhouk/tdx/internal/sys"
)

// QemuImgTool manipulates qcow2 images.
const QemuImgTool = "qemu-img"

// CopyBase copies the verified base image to the output path. The qcow2
// content is copied as-is, so the base stays pristine for further builds.
func CopyBase(src, dest string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open base image: %w", err)
	}
	defer in.Close()

	out, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("create output image: %w", err)
	}

	_, err = io.Copy(out, in)
	if err != nil {
		out.Close()
		_ = os.Remove(dest)

		return fmt.Errorf("copy base image: %w", err)
	}

	err = out.Close()
	if err != nil {
		_ = os.Remove(dest)

		return fmt.Errorf("close output image: %w", err)
	}

	return nil
}

// Resize grows the image to the given size in GB. The root filesystem
// inside the image is grown separately during customization.
func Resize(ctx context.Context, path string, sizeGB uint64) error {
	size := strconv.FormatUint(sizeGB, 10) + "G"

	err := sys.Run(ctx, QemuImgTool, "resize", path, size)
	if err != nil {
		return fmt.Errorf("%w: %s to %s: %w", ErrResizeFailed, path, size, err)
	}

	return nil
}
