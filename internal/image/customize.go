// SPDX-FileCopyrightText: 2025 Moe Mahhouk
//
// SPDX-License-Identifier: GPL-3.0-or-later

package image

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/MoeMahhouk/tdx/internal/sys"
)

// Tools of the libguestfs suite used for in-image modification.
const (
	VirtCustomizeTool = "virt-customize"
	VirtCopyOutTool   = "virt-copy-out"
	VirtLsTool        = "virt-ls"
)

// Guest paths the setup scripts are placed at and log to.
const (
	guestSetupDir = "/opt/tdx"
	guestSetupLog = "/tmp/tdx-guest-setup.txt"
)

//go:embed setup/*.sh
var setupScripts embed.FS

// Customize runs the embedded setup and attestation scripts inside the
// image and grows the root filesystem into the resized disk.
type Customize struct {
	// Path to the qcow2 image to modify.
	Image string

	// Skip the root filesystem grow step. Only used when the image was not
	// resized.
	NoGrowRoot bool
}

// Apply modifies the image in place. On failure the half-customized image
// is intentionally left behind for manual inspection.
func (c *Customize) Apply(ctx context.Context) error {
	scriptDir, err := os.MkdirTemp("", "tdx-setup-*")
	if err != nil {
		return fmt.Errorf("create script dir: %w", err)
	}
	defer os.RemoveAll(scriptDir)

	scripts, err := extractSetupScripts(scriptDir)
	if err != nil {
		return err
	}

	args := []string{
		"-a", c.Image,
		"--mkdir", guestSetupDir,
	}

	for _, script := range scripts {
		name := filepath.Base(script)
		guestPath := guestSetupDir + "/" + name

		args = append(args,
			"--copy-in", script+":"+guestSetupDir,
			"--chmod", "0755:"+guestPath,
			"--run-command", guestPath+" >>"+guestSetupLog+" 2>&1",
		)
	}

	if !c.NoGrowRoot {
		args = append(args,
			"--run-command", "growpart /dev/sda 1 || true",
			"--run-command", "resize2fs /dev/sda1 || btrfs "+
				"filesystem resize max / || true",
		)
	}

	err = sys.Run(ctx, VirtCustomizeTool, args...)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrCustomizeFailed, err)
	}

	return nil
}

// extractSetupScripts writes the embedded scripts into dir and returns
// their paths in stable order.
func extractSetupScripts(dir string) ([]string, error) {
	entries, err := fs.Glob(setupScripts, "setup/*.sh")
	if err != nil {
		return nil, fmt.Errorf("list setup scripts: %w", err)
	}

	paths := make([]string, 0, len(entries))

	for _, entry := range entries {
		content, err := setupScripts.ReadFile(entry)
		if err != nil {
			return nil, fmt.Errorf("read setup script: %w", err)
		}

		path := filepath.Join(dir, filepath.Base(entry))

		err = os.WriteFile(path, content, 0o755)
		if err != nil {
			return nil, fmt.Errorf("write setup script: %w", err)
		}

		paths = append(paths, path)
	}

	return paths, nil
}
