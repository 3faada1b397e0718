// SPDX-FileCopyrightText: 2025 Moe Mahhouk
//
// SPDX-License-Identifier: GPL-3.0-or-later

package qemu_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MoeMahhouk/tdx/internal/qemu"
)

func TestArgument_String(t *testing.T) {
	tests := []struct {
		name     string
		arg      qemu.Argument
		expected string
	}{
		{
			name:     "without value",
			arg:      qemu.UniqueArg("nographic"),
			expected: "-nographic",
		},
		{
			name:     "single value",
			arg:      qemu.UniqueArg("bios", "/usr/share/ovmf/OVMF.fd"),
			expected: "-bios /usr/share/ovmf/OVMF.fd",
		},
		{
			name:     "multiple values joined",
			arg:      qemu.UniqueArg("object", "tdx-guest", "id=tdx"),
			expected: "-object tdx-guest,id=tdx",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.arg.String())
		})
	}
}

func TestBuildArgumentStrings(t *testing.T) {
	tests := []struct {
		name        string
		args        []qemu.Argument
		expected    []string
		expectedErr error
	}{
		{
			name: "distinct unique args",
			args: []qemu.Argument{
				qemu.UniqueArg("m", "2048M"),
				qemu.UniqueArg("smp", "4"),
				qemu.UniqueArg("nographic"),
			},
			expected: []string{"-m", "2048M", "-smp", "4", "-nographic"},
		},
		{
			name: "repeatable args with different values",
			args: []qemu.Argument{
				qemu.RepeatableArg("device", "virtio-net-pci"),
				qemu.RepeatableArg("device", "virtio-blk-pci"),
			},
			expected: []string{
				"-device", "virtio-net-pci",
				"-device", "virtio-blk-pci",
			},
		},
		{
			name: "unique arg repeated",
			args: []qemu.Argument{
				qemu.UniqueArg("machine", "q35"),
				qemu.UniqueArg("machine", "pc"),
			},
			expectedErr: qemu.ErrArgumentCollision,
		},
		{
			name: "unique arg vs repeatable arg",
			args: []qemu.Argument{
				qemu.UniqueArg("serial", "file:/tmp/td.log"),
				qemu.RepeatableArg("serial", "stdio"),
			},
			expectedErr: qemu.ErrArgumentCollision,
		},
		{
			name: "repeatable arg with duplicate value",
			args: []qemu.Argument{
				qemu.RepeatableArg("device", "vhost-vsock-pci", "guest-cid=3"),
				qemu.RepeatableArg("device", "vhost-vsock-pci", "guest-cid=3"),
			},
			expectedErr: qemu.ErrArgumentCollision,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			actual, err := qemu.BuildArgumentStrings(tt.args)
			require.ErrorIs(t, err, tt.expectedErr)

			if tt.expectedErr == nil {
				assert.Equal(t, tt.expected, actual)
			}
		})
	}
}
