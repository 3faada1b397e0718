// SPDX-FileCopyrightText: 2025 Moe Mahhouk
//
// SPDX-License-Identifier: GPL-3.0-or-later

package initrd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/MoeMahhouk/tdx/internal/image"
	"github.com/MoeMahhouk/tdx/internal/sys"
)

const bootDir = "/boot"

// Patch injects a binary into the initrd of a guest image: the initrd is
// copied out of the image, rewritten in-process and copied back in.
type Patch struct {
	// Path to the qcow2 guest image.
	Image string

	// Host path of the binary to inject.
	Binary string

	// Directory inside the initrd the binary is placed in.
	DestDir string
}

// Apply patches the newest initrd found under /boot of the image.
func (p *Patch) Apply(ctx context.Context) error {
	name, err := findInitrd(ctx, p.Image)
	if err != nil {
		return err
	}

	slog.Info("Patching guest initrd",
		slog.String("initrd", name),
		slog.String("binary", p.Binary),
		slog.String("dest", p.DestDir))

	scratch, err := os.MkdirTemp("", "tdx-initrd-*")
	if err != nil {
		return fmt.Errorf("create initrd work dir: %w", err)
	}
	defer os.RemoveAll(scratch)

	err = sys.Run(ctx, image.VirtCopyOutTool,
		"-a", p.Image, bootDir+"/"+name, scratch,
	)
	if err != nil {
		return fmt.Errorf("extract initrd: %w", err)
	}

	// The patched archive keeps the original name so the copy back simply
	// replaces the file under /boot.
	patchedDir := filepath.Join(scratch, "patched")

	err = os.Mkdir(patchedDir, 0o755)
	if err != nil {
		return fmt.Errorf("create initrd work dir: %w", err)
	}

	err = InjectFile(
		filepath.Join(scratch, name),
		filepath.Join(patchedDir, name),
		p.Binary,
		p.DestDir,
	)
	if err != nil {
		return err
	}

	err = sys.Run(ctx, image.VirtCustomizeTool,
		"-a", p.Image,
		"--copy-in", filepath.Join(patchedDir, name)+":"+bootDir,
	)
	if err != nil {
		return fmt.Errorf("insert initrd: %w", err)
	}

	return nil
}

// findInitrd lists /boot of the image and returns the lexically highest
// initrd, which for Ubuntu version naming is the newest kernel's one.
func findInitrd(ctx context.Context, imagePath string) (string, error) {
	listing, err := sys.Output(ctx, image.VirtLsTool,
		"-a", imagePath, bootDir,
	)
	if err != nil {
		return "", fmt.Errorf("list %s: %w", bootDir, err)
	}

	var initrds []string

	for _, line := range strings.Split(listing, "\n") {
		name := strings.TrimSpace(line)
		if strings.HasPrefix(name, "initrd.img-") {
			initrds = append(initrds, name)
		}
	}

	if len(initrds) == 0 {
		return "", fmt.Errorf("%w: %s", ErrNoInitrdFound, imagePath)
	}

	return slices.Max(initrds), nil
}
