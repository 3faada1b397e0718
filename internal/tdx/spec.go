// SPDX-FileCopyrightText: 2025 Moe Mahhouk
//
// SPDX-License-Identifier: GPL-3.0-or-later

package tdx

import (
	"time"

	"github.com/MoeMahhouk/tdx/internal/qemu"
)

// Built-in defaults. All of them can be overridden via the setup-tdx-config
// file, environment variables or flags.
const (
	DefaultImageURL = "https://cloud-images.ubuntu.com/releases/noble/" +
		"release/ubuntu-24.04-server-cloudimg-amd64.img"
	DefaultChecksumURL = "https://cloud-images.ubuntu.com/releases/noble/" +
		"release/SHA256SUMS"

	DefaultImageName = "tdx-guest-ubuntu-24.04.qcow2"

	DefaultHostname = "tdx-guest"
	DefaultUser     = "tdx"
	DefaultPassword = "123456"

	DefaultSizeGB = 20

	DefaultFirmware    = "/usr/share/ovmf/OVMF.fd"
	DefaultSSHPort     = 10022
	DefaultProcessName = "tdx-demo-td"
	DefaultGuestCID    = 3

	DefaultMemoryMB = 2048
	DefaultSMP      = 4

	DefaultBinaryDestDir = "/usr/local/bin"

	DefaultLogFile       = "/tmp/tdx-guest-td.log"
	DefaultMonitorSocket = "/tmp/tdx-demo-td-monitor.sock"
	DefaultPIDFile       = "/tmp/tdx-demo-td-pid.pid"
)

// DefaultBootTimeout bounds the transient cloud-init first boot.
const DefaultBootTimeout = 10 * time.Minute

// Spec describes a complete build and launch configuration. It is split
// into the image build parameters and the guest launch parameters.
type Spec struct {
	Image Image
	Guest Guest
}

// Image holds the parameters of the create pipeline.
type Image struct {
	// Path of the qcow2 image to produce.
	OutputPath string

	// Size the image is grown to, in GB.
	SizeGB uint64

	// Guest identity applied via cloud-init.
	Hostname string
	User     string
	Password string

	// Source of the base cloud image and its checksum manifest.
	ImageURL    string
	ChecksumURL string

	// Directory downloaded base images are cached in. Defaults to the
	// directory of the output image.
	CacheDir string

	// Optional binary injected into the guest initrd and its destination
	// directory inside the initrd.
	Binary        string
	BinaryDestDir string

	// Recreate the output image even if it exists.
	Force bool

	// Timeout for the transient cloud-init boot.
	BootTimeout time.Duration
}

// Guest holds the parameters of the run and clean operations.
type Guest struct {
	// Path to the image to launch.
	ImagePath string

	// OVMF firmware with TDX support.
	Firmware string

	// Guest sizing.
	Memory uint64
	SMP    uint64

	// Host port forwarded to guest SSH.
	SSHPort uint16

	// Name of the daemonized qemu process.
	ProcessName string

	// vsock context ID.
	GuestCID uint32

	// Process tracking and side-channel files.
	LogFile       string
	MonitorSocket string
	PIDFile       string

	// Extra qemu arguments appended to the fixed launch set.
	ExtraArgs []qemu.Argument
}

// NewSpec returns a [Spec] with all defaults applied.
func NewSpec() *Spec {
	return &Spec{
		Image: Image{
			OutputPath:    DefaultImageName,
			SizeGB:        DefaultSizeGB,
			Hostname:      DefaultHostname,
			User:          DefaultUser,
			Password:      DefaultPassword,
			ImageURL:      DefaultImageURL,
			ChecksumURL:   DefaultChecksumURL,
			BinaryDestDir: DefaultBinaryDestDir,
			BootTimeout:   DefaultBootTimeout,
		},
		Guest: Guest{
			ImagePath:     DefaultImageName,
			Firmware:      DefaultFirmware,
			Memory:        DefaultMemoryMB,
			SMP:           DefaultSMP,
			SSHPort:       DefaultSSHPort,
			ProcessName:   DefaultProcessName,
			GuestCID:      DefaultGuestCID,
			LogFile:       DefaultLogFile,
			MonitorSocket: DefaultMonitorSocket,
			PIDFile:       DefaultPIDFile,
		},
	}
}

// GuestCommand translates the launch parameters into a qemu command spec.
func (s *Spec) GuestCommand() *qemu.CommandSpec {
	return &qemu.CommandSpec{
		Image:         s.Guest.ImagePath,
		Firmware:      s.Guest.Firmware,
		Memory:        s.Guest.Memory,
		SMP:           s.Guest.SMP,
		SSHPort:       s.Guest.SSHPort,
		ProcessName:   s.Guest.ProcessName,
		GuestCID:      s.Guest.GuestCID,
		LogFile:       s.Guest.LogFile,
		MonitorSocket: s.Guest.MonitorSocket,
		PIDFile:       s.Guest.PIDFile,
		ExtraArgs:     s.Guest.ExtraArgs,
	}
}
