// SPDX-FileCopyrightText: 2025 Moe Mahhouk
//
// SPDX-License-Identifier: GPL-3.0-or-later

package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/kballard/go-shellquote"

	"github.com/MoeMahhouk/tdx/internal/qemu"
	"github.com/MoeMahhouk/tdx/internal/tdx"
)

// ConfigFile is the optional override file in the working directory. It
// replaces the shell-sourced config of earlier script versions: KEY=value
// lines, "#" comments, environment references expanded with [os.ExpandEnv].
const ConfigFile = "setup-tdx-config"

// Keys recognized in the config file. The launch related ones double as
// environment variable overrides.
const (
	keyImageURL    = "IMAGE_URL"
	keyChecksumURL = "CHECKSUM_URL"
	keyHostname    = "GUEST_HOSTNAME"
	keyUser        = "GUEST_USER"
	keyPassword    = "GUEST_PASSWORD"
	keyCacheDir    = "CACHE_DIR"
	keyVMImage     = "VM_IMG"
	keyFirmware    = "FIRMWARE"
	keySSHPort     = "SSH_PORT"
	keyProcessName = "PROCESS_NAME"
	keyDeviceArgs  = "DEVICE_ARGS"
	keyMemoryMB    = "MEMORY_MB"
	keySMP         = "SMP"
)

var envOverrideKeys = []string{
	keyVMImage,
	keyFirmware,
	keySSHPort,
	keyProcessName,
	keyDeviceArgs,
}

// LoadSpec builds the effective [tdx.Spec]: built-in defaults, overridden
// by the config file, overridden by the environment. Flags are applied on
// top by the subcommands, since their defaults are taken from this spec.
func LoadSpec() (*tdx.Spec, error) {
	spec := tdx.NewSpec()

	fileValues, err := configFileValues(os.DirFS("."), ConfigFile)
	if err != nil {
		return nil, err
	}

	err = applyOverrides(spec, fileValues)
	if err != nil {
		return nil, err
	}

	err = applyOverrides(spec, envValues())
	if err != nil {
		return nil, err
	}

	return spec, nil
}

// configFileValues reads the config file. A missing file is not an error.
func configFileValues(fsys fs.FS, file string) (map[string]string, error) {
	content, err := fs.ReadFile(fsys, file)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}

		return nil, fmt.Errorf("read config file: %w", err)
	}

	values := make(map[string]string)

	expanded := os.ExpandEnv(string(content))
	for _, line := range strings.Split(expanded, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, found := strings.Cut(line, "=")
		if !found {
			return nil, &ConfigError{
				Key: line,
				Err: errors.New("not a KEY=value line"),
			}
		}

		values[strings.TrimSpace(key)] = strings.TrimSpace(value)
	}

	return values, nil
}

// envValues collects the launch overrides from the environment.
func envValues() map[string]string {
	values := make(map[string]string)

	for _, key := range envOverrideKeys {
		if value, set := os.LookupEnv(key); set {
			values[key] = value
		}
	}

	return values
}

//nolint:cyclop
func applyOverrides(spec *tdx.Spec, values map[string]string) error {
	for key, value := range values {
		var err error

		switch key {
		case keyImageURL:
			spec.Image.ImageURL = value
		case keyChecksumURL:
			spec.Image.ChecksumURL = value
		case keyHostname:
			spec.Image.Hostname = value
		case keyUser:
			spec.Image.User = value
		case keyPassword:
			spec.Image.Password = value
		case keyCacheDir:
			spec.Image.CacheDir = value
		case keyVMImage:
			spec.Guest.ImagePath = value
		case keyFirmware:
			spec.Guest.Firmware = value
		case keySSHPort:
			err = setPort(&spec.Guest.SSHPort, value)
		case keyProcessName:
			spec.Guest.ProcessName = value
		case keyDeviceArgs:
			spec.Guest.ExtraArgs, err = parseDeviceArgs(value)
		case keyMemoryMB:
			spec.Guest.Memory, err = strconv.ParseUint(value, 10, 0)
		case keySMP:
			spec.Guest.SMP, err = strconv.ParseUint(value, 10, 0)
		default:
			err = errors.New("unknown key")
		}

		if err != nil {
			return &ConfigError{Key: key, Err: err}
		}
	}

	return nil
}

func setPort(dest *uint16, value string) error {
	port, err := strconv.ParseUint(value, 10, 16)
	if err != nil {
		return fmt.Errorf("parse port: %w", err)
	}

	*dest = uint16(port)

	return nil
}

// parseDeviceArgs splits a shell quoted string of extra qemu arguments into
// [qemu.Argument]s. Collisions with the fixed launch arguments surface when
// the command line is built.
func parseDeviceArgs(s string) ([]qemu.Argument, error) {
	words, err := shellquote.Split(s)
	if err != nil {
		return nil, fmt.Errorf("split: %w", err)
	}

	var args []qemu.Argument

	for idx := 0; idx < len(words); idx++ {
		word := words[idx]
		if !strings.HasPrefix(word, "-") {
			return nil, fmt.Errorf("expected -argument, got %q", word)
		}

		name := strings.TrimPrefix(word, "-")

		if idx+1 < len(words) && !strings.HasPrefix(words[idx+1], "-") {
			args = append(args, qemu.RepeatableArg(name, words[idx+1]))
			idx++

			continue
		}

		args = append(args, qemu.RepeatableArg(name))
	}

	return args, nil
}
