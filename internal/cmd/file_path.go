// SPDX-FileCopyrightText: 2025 Moe Mahhouk
//
// SPDX-License-Identifier: GPL-3.0-or-later

package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/MoeMahhouk/tdx/internal/tdx"
)

// filePathValue is a [flag.Value] that resolves the given path to an
// absolute one.
type filePathValue string

func (f *filePathValue) String() string {
	return string(*f)
}

func (f *filePathValue) Set(s string) error {
	path, err := absoluteFilePath(s)

	*f = filePathValue(path)

	return err
}

// outputPathValue is a [flag.Value] for the output image path. The qcow2
// suffix is enforced here at parse time, so a bad output name fails before
// the pipeline does anything.
type outputPathValue string

func (f *outputPathValue) String() string {
	return string(*f)
}

func (f *outputPathValue) Set(s string) error {
	err := tdx.ValidateOutputPath(s)
	if err != nil {
		return err
	}

	path, err := absoluteFilePath(s)

	*f = outputPathValue(path)

	return err
}

func absoluteFilePath(path string) (string, error) {
	if path == "" {
		return "", ErrEmptyFilePath
	}

	path, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("absolute path: %w", err)
	}

	return path, nil
}
