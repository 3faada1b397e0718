// SPDX-FileCopyrightText: 2025 Moe Mahhouk
//
// SPDX-License-Identifier: GPL-3.0-or-later

package tdx

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/MoeMahhouk/tdx/internal/image"
	"github.com/MoeMahhouk/tdx/internal/initrd"
)

// Create builds the TD guest image: verified base image download, resize,
// cloud-init first boot, in-image setup and optional initrd patching.
//
// Failures before the image is first booted remove the partial output.
// Later failures leave the image in place for manual inspection.
func Create(ctx context.Context, img *Image) error {
	err := ValidateCreate(img)
	if err != nil {
		return err
	}

	_, err = os.Stat(img.OutputPath)
	if err == nil && !img.Force {
		return fmt.Errorf("%w: %s", ErrOutputExists, img.OutputPath)
	}

	basePath, err := fetchBase(ctx, img)
	if err != nil {
		return err
	}

	err = prepareDisk(ctx, img, basePath)
	if err != nil {
		_ = os.Remove(img.OutputPath)
		return err
	}

	err = provision(ctx, img)
	if err != nil {
		return err
	}

	if img.Binary != "" {
		patch := initrd.Patch{
			Image:   img.OutputPath,
			Binary:  img.Binary,
			DestDir: img.BinaryDestDir,
		}

		err = patch.Apply(ctx)
		if err != nil {
			return err
		}
	}

	slog.Info("TD guest image ready", slog.String("image", img.OutputPath))

	return nil
}

func fetchBase(ctx context.Context, img *Image) (string, error) {
	cacheDir := img.CacheDir
	if cacheDir == "" {
		cacheDir = filepath.Dir(img.OutputPath)
	}

	download := image.Download{
		ImageURL:    img.ImageURL,
		ChecksumURL: img.ChecksumURL,
		Dir:         cacheDir,
	}

	return download.Fetch(ctx)
}

func prepareDisk(ctx context.Context, img *Image, basePath string) error {
	slog.Info("Creating output image",
		slog.String("base", basePath),
		slog.String("output", img.OutputPath))

	err := image.CopyBase(basePath, img.OutputPath)
	if err != nil {
		return err
	}

	return image.Resize(ctx, img.OutputPath, img.SizeGB)
}

func provision(ctx context.Context, img *Image) error {
	seedDir, err := os.MkdirTemp("", "tdx-seed-*")
	if err != nil {
		return fmt.Errorf("create seed dir: %w", err)
	}
	defer os.RemoveAll(seedDir)

	cloudCfg := image.CloudConfig{
		Hostname: img.Hostname,
		User:     img.User,
		Password: img.Password,
	}

	seedISO, err := image.BuildSeed(ctx, cloudCfg, seedDir)
	if err != nil {
		return err
	}

	slog.Info("Applying cloud-init configuration",
		slog.String("hostname", img.Hostname),
		slog.String("user", img.User))

	// The boot log lives next to the output image so it survives the seed
	// dir cleanup and is available when the first boot hangs.
	bootLog := img.OutputPath + ".firstboot.log"

	firstBoot := image.FirstBoot{
		Image:   img.OutputPath,
		SeedISO: seedISO,
		Memory:  DefaultMemoryMB,
		SMP:     DefaultSMP,
		BootLog: bootLog,
		Timeout: img.BootTimeout,
	}

	err = firstBoot.Run(ctx)
	if err != nil {
		return err
	}

	_ = os.Remove(bootLog)

	slog.Info("Running in-image TD setup")

	customize := image.Customize{Image: img.OutputPath}

	return customize.Apply(ctx)
}
