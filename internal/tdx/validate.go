// SPDX-FileCopyrightText: 2025 Moe Mahhouk
//
// SPDX-License-Identifier: GPL-3.0-or-later

package tdx

import (
	"fmt"
	"os"
	"strings"

	"github.com/MoeMahhouk/tdx/internal/image"
	"github.com/MoeMahhouk/tdx/internal/qemu"
	"github.com/MoeMahhouk/tdx/internal/sys"
)

// ValidateOutputPath checks the output image path. It runs before anything
// else of the pipeline, in particular before any network access.
func ValidateOutputPath(path string) error {
	if path == "" {
		return ErrNoOutputPath
	}

	if !strings.HasSuffix(path, ".qcow2") {
		return fmt.Errorf("%w: %s", ErrInvalidOutputPath, path)
	}

	return nil
}

// ValidateCreate checks the create parameters and the presence of all
// external tools the pipeline shells out to.
func ValidateCreate(img *Image) error {
	err := ValidateOutputPath(img.OutputPath)
	if err != nil {
		return err
	}

	tools := []string{
		image.QemuImgTool,
		image.VirtCustomizeTool,
		image.GenisoTool,
		qemu.Executable,
	}

	if img.Binary != "" {
		info, err := os.Stat(img.Binary)
		if err != nil {
			return fmt.Errorf("binary to inject: %w", err)
		}

		if !info.Mode().IsRegular() {
			return fmt.Errorf("binary to inject: %s is not a regular file",
				img.Binary)
		}

		tools = append(tools, image.VirtCopyOutTool, image.VirtLsTool)
	}

	return sys.LookupTools(tools...)
}
