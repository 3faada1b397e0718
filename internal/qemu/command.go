// SPDX-FileCopyrightText: 2025 Moe Mahhouk
//
// SPDX-License-Identifier: GPL-3.0-or-later

package qemu

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/MoeMahhouk/tdx/internal/sys"
)

// Executable is the hypervisor binary. TDX requires an x86-64 host, so
// there is no architecture selection.
const Executable = "qemu-system-x86_64"

const netdevID = "nic0"

// CommandSpec defines the qemu invocation that launches the customized
// image as a TDX guest.
//
// The TDX relevant machine configuration is fixed: kernel_irqchip=split and
// hpet=off on a q35 machine with a tdx-guest object. Everything else can be
// overridden via the spec fields or appended through ExtraArgs.
type CommandSpec struct {
	// Path to the qcow2 guest image to boot.
	Image string

	// Path to the OVMF firmware with TDX support.
	Firmware string

	// Memory for the guest in MB.
	Memory uint64

	// Number of guest CPUs.
	SMP uint64

	// Host port forwarded to the guest's SSH port.
	SSHPort uint16

	// Process name of the daemonized qemu process. Used to find the guest
	// again for teardown.
	ProcessName string

	// Context ID for the vsock device.
	GuestCID uint32

	// File the guest serial console is written to.
	LogFile string

	// Unix socket for the qemu monitor.
	MonitorSocket string

	// File qemu writes its PID to after daemonizing.
	PIDFile string

	// ExtraArgs are appended after the fixed argument set. They must not
	// collide with the unique arguments above.
	ExtraArgs []Argument
}

// Validate checks the launch preconditions: image and firmware present, KVM
// usable by the invoking user.
func (s *CommandSpec) Validate() error {
	if s.Image == "" {
		return ErrNoImage
	}

	_, err := os.Stat(s.Image)
	if err != nil {
		return fmt.Errorf("guest image: %w", err)
	}

	if _, err := os.Stat(s.Firmware); err != nil {
		return fmt.Errorf("%w: %s", ErrNoFirmware, s.Firmware)
	}

	if !KVMAvailable() {
		return ErrKVMNotAvailable
	}

	inGroup, err := InKVMGroup()
	if err != nil {
		return fmt.Errorf("check kvm group: %w", err)
	}

	if !inGroup {
		return ErrKVMNotAvailable
	}

	return nil
}

// Arguments compiles the fixed TDX launch arguments followed by the extra
// arguments of the spec.
func (s *CommandSpec) Arguments() []Argument {
	hostfwd := fmt.Sprintf("hostfwd=tcp::%d-:22", s.SSHPort)
	guestCID := strconv.FormatUint(uint64(s.GuestCID), 10)

	args := []Argument{
		UniqueArg("accel", "kvm"),
		UniqueArg("m", strconv.FormatUint(s.Memory, 10)+"M"),
		UniqueArg("smp", strconv.FormatUint(s.SMP, 10)),
		UniqueArg("name",
			s.ProcessName,
			"process="+s.ProcessName,
			"debug-threads=on",
		),
		UniqueArg("cpu", "host"),
		UniqueArg("object", "tdx-guest", "id=tdx"),
		UniqueArg("machine",
			"q35",
			"kernel_irqchip=split",
			"confidential-guest-support=tdx",
			"hpet=off",
		),
		UniqueArg("bios", s.Firmware),
		UniqueArg("nographic"),
		UniqueArg("daemonize"),
		UniqueArg("nodefaults"),
		RepeatableArg("device", "virtio-net-pci", "netdev="+netdevID),
		RepeatableArg("netdev", "user", "id="+netdevID, hostfwd),
		RepeatableArg("drive",
			"file="+s.Image,
			"if=none",
			"id=virtio-disk0",
		),
		RepeatableArg("device", "virtio-blk-pci", "drive=virtio-disk0"),
		RepeatableArg("device", "vhost-vsock-pci", "guest-cid="+guestCID),
		RepeatableArg("serial", "file:"+s.LogFile),
		UniqueArg("monitor", "unix:"+s.MonitorSocket, "server", "nowait"),
		UniqueArg("pidfile", s.PIDFile),
	}

	return append(args, s.ExtraArgs...)
}

// Run starts the guest. Since qemu daemonizes itself, Run returns once the
// guest is up and qemu's foreground parent has exited.
func (s *CommandSpec) Run(ctx context.Context) error {
	pid, err := sys.ReadPIDFile(s.PIDFile)
	if err == nil && sys.ProcessAlive(pid) {
		return fmt.Errorf("%w: pid %d", ErrGuestAlreadyRunning, pid)
	}

	args, err := BuildArgumentStrings(s.Arguments())
	if err != nil {
		return err
	}

	err = sys.Run(ctx, Executable, args...)
	if err != nil {
		return fmt.Errorf("launch guest: %w", err)
	}

	slog.Info("TD guest started",
		slog.String("image", s.Image),
		slog.String("log", s.LogFile),
		slog.Uint64("ssh-port", uint64(s.SSHPort)))

	return nil
}
