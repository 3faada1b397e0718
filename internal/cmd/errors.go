// SPDX-FileCopyrightText: 2025 Moe Mahhouk
//
// SPDX-License-Identifier: GPL-3.0-or-later

package cmd

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyFilePath is returned if a file path flag gets an empty value.
	ErrEmptyFilePath = errors.New("file path must not be empty")

	// ErrValueOutOfRange is returned if a bounded numeric flag gets a value
	// outside its range.
	ErrValueOutOfRange = errors.New("value is outside of range")
)

// ConfigError wraps errors in the setup-tdx-config file or the environment
// overrides.
type ConfigError struct {
	Key string
	Err error
}

// Error implements the [error] interface.
func (e *ConfigError) Error() string {
	return fmt.Sprintf("config %s: %v", e.Key, e.Err)
}

// Is implements the [errors.Is] interface.
func (*ConfigError) Is(other error) bool {
	_, ok := other.(*ConfigError)
	return ok
}

// Unwrap implements the [errors.Unwrap] interface.
func (e *ConfigError) Unwrap() error {
	return e.Err
}
