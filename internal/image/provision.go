// SPDX-FileCopyrightText: 2025 Moe Mahhouk
//
// SPDX-License-Identifier: GPL-3.0-or-later

package image

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"time"

	"github.com/MoeMahhouk/tdx/internal/qemu"
	"github.com/MoeMahhouk/tdx/internal/sys"
)

// FirstBoot boots the image once with the cloud-init seed attached so the
// guest identity gets applied. No TDX involved here, a plain KVM boot is
// enough (with TCG fallback for hosts without /dev/kvm access).
//
// The user-data powers the guest off once cloud-init is done, which is how
// this returns. A guest that never gets there is killed when the timeout
// expires and [ErrCloudInitTimeout] is returned.
type FirstBoot struct {
	// Path to the qcow2 image to boot.
	Image string

	// Path to the NoCloud seed ISO.
	SeedISO string

	// Memory in MB and number of CPUs for the transient boot.
	Memory uint64
	SMP    uint64

	// Serial console log of the transient boot, for diagnosing hangs.
	BootLog string

	// Maximum duration of the boot.
	Timeout time.Duration
}

// Run performs the transient boot and blocks until the guest powers off.
func (f *FirstBoot) Run(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, f.Timeout)
	defer cancel()

	bootLog := f.BootLog
	if bootLog == "" {
		bootLog = filepath.Join(filepath.Dir(f.Image), "firstboot.log")
	}

	args, err := qemu.BuildArgumentStrings([]qemu.Argument{
		qemu.UniqueArg("machine", "q35", "accel=kvm:tcg"),
		qemu.UniqueArg("cpu", "max"),
		qemu.UniqueArg("m", strconv.FormatUint(f.Memory, 10)+"M"),
		qemu.UniqueArg("smp", strconv.FormatUint(f.SMP, 10)),
		qemu.UniqueArg("display", "none"),
		qemu.UniqueArg("no-reboot"),
		qemu.RepeatableArg("serial", "file:"+bootLog),
		qemu.RepeatableArg("drive",
			"file="+f.Image,
			"format=qcow2",
			"if=virtio",
		),
		qemu.RepeatableArg("drive",
			"file="+f.SeedISO,
			"format=raw",
			"if=virtio",
			"readonly=on",
		),
	})
	if err != nil {
		return err
	}

	err = sys.Run(ctx, qemu.Executable, args...)
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w after %s (see %s)",
			ErrCloudInitTimeout, f.Timeout, bootLog)
	} else if err != nil {
		return fmt.Errorf("first boot: %w", err)
	}

	return nil
}
