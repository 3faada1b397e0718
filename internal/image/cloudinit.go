// SPDX-FileCopyrightText: 2025 Moe Mahhouk
//
// SPDX-License-Identifier: GPL-3.0-or-later

package image

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/MoeMahhouk/tdx/internal/sys"
)

// GenisoTool builds the NoCloud seed ISO.
const GenisoTool = "genisoimage"

const cloudConfigHeader = "#cloud-config\n"

// CloudConfig carries the guest identity applied on first boot.
type CloudConfig struct {
	Hostname string
	User     string
	Password string
}

type userDataDoc struct {
	Hostname       string      `yaml:"hostname"`
	ManageEtcHosts bool        `yaml:"manage_etc_hosts"`
	Users          []userEntry `yaml:"users"`
	SSHPwAuth      bool        `yaml:"ssh_pwauth"`
	Chpasswd       chpasswdDoc `yaml:"chpasswd"`
	PowerState     powerState  `yaml:"power_state"`
}

type userEntry struct {
	Name      string `yaml:"name"`
	Plaintext string `yaml:"plain_text_passwd"`
	LockPw    bool   `yaml:"lock_passwd"`
	Sudo      string `yaml:"sudo"`
	Shell     string `yaml:"shell"`
}

type chpasswdDoc struct {
	Expire bool `yaml:"expire"`
}

type powerState struct {
	Mode    string `yaml:"mode"`
	Message string `yaml:"message"`
	Timeout int    `yaml:"timeout"`
}

type metaDataDoc struct {
	InstanceID    string `yaml:"instance-id"`
	LocalHostname string `yaml:"local-hostname"`
}

// RenderUserData renders the #cloud-config document for the given guest
// identity. The document powers the guest off at the end, which is what
// ends the transient first boot.
func RenderUserData(cfg CloudConfig) ([]byte, error) {
	doc := userDataDoc{
		Hostname:       cfg.Hostname,
		ManageEtcHosts: true,
		Users: []userEntry{
			{
				Name:      cfg.User,
				Plaintext: cfg.Password,
				LockPw:    false,
				Sudo:      "ALL=(ALL) NOPASSWD:ALL",
				Shell:     "/bin/bash",
			},
		},
		SSHPwAuth: true,
		Chpasswd:  chpasswdDoc{Expire: false},
		PowerState: powerState{
			Mode:    "poweroff",
			Message: "cloud-init provisioning done",
			Timeout: 10,
		},
	}

	rendered, err := yaml.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("render user-data: %w", err)
	}

	return append([]byte(cloudConfigHeader), rendered...), nil
}

// RenderMetaData renders the NoCloud meta-data document with a fresh
// instance ID. A new ID per build guarantees cloud-init actually re-runs on
// a force-recreated image.
func RenderMetaData(cfg CloudConfig) ([]byte, error) {
	doc := metaDataDoc{
		InstanceID:    uuid.NewString(),
		LocalHostname: cfg.Hostname,
	}

	rendered, err := yaml.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("render meta-data: %w", err)
	}

	return rendered, nil
}

// BuildSeed writes the cloud-init NoCloud seed ISO into dir and returns its
// path.
func BuildSeed(ctx context.Context, cfg CloudConfig, dir string) (string, error) {
	userData, err := RenderUserData(cfg)
	if err != nil {
		return "", err
	}

	metaData, err := RenderMetaData(cfg)
	if err != nil {
		return "", err
	}

	userDataPath := filepath.Join(dir, "user-data")
	metaDataPath := filepath.Join(dir, "meta-data")
	isoPath := filepath.Join(dir, "seed.iso")

	err = os.WriteFile(userDataPath, userData, 0o600)
	if err != nil {
		return "", fmt.Errorf("write user-data: %w", err)
	}

	err = os.WriteFile(metaDataPath, metaData, 0o600)
	if err != nil {
		return "", fmt.Errorf("write meta-data: %w", err)
	}

	err = sys.Run(ctx, GenisoTool,
		"-output", isoPath,
		"-volid", "cidata",
		"-joliet", "-rock",
		"-graft-points",
		"user-data="+userDataPath,
		"meta-data="+metaDataPath,
	)
	if err != nil {
		return "", fmt.Errorf("build seed ISO: %w", err)
	}

	return isoPath, nil
}
