// SPDX-FileCopyrightText: 2025 Moe Mahhouk
//
// SPDX-License-Identifier: GPL-3.0-or-later

package qemu

import (
	"os"
	"os/user"
	"slices"
)

const kvmDevice = "/dev/kvm"

// KVMAvailable checks if the KVM device exists and is writable by the
// invoking user.
func KVMAvailable() bool {
	f, err := os.OpenFile(kvmDevice, os.O_WRONLY, 0)
	_ = f.Close()

	return err == nil
}

// InKVMGroup checks if the current user is a member of the kvm group.
//
// Being in the group is required for the daemonized guest since the
// launched process keeps running after this tool exits and cannot rely on
// transient permissions.
func InKVMGroup() (bool, error) {
	group, err := user.LookupGroup("kvm")
	if err != nil {
		return false, err //nolint:wrapcheck
	}

	current, err := user.Current()
	if err != nil {
		return false, err //nolint:wrapcheck
	}

	if current.Gid == group.Gid {
		return true, nil
	}

	gids, err := current.GroupIds()
	if err != nil {
		return false, err //nolint:wrapcheck
	}

	return slices.Contains(gids, group.Gid), nil
}
