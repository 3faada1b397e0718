// SPDX-FileCopyrightText: 2025 Moe Mahhouk
//
// SPDX-License-Identifier: GPL-3.0-or-later

package cmd

import (
	"fmt"
	"strconv"
)

// boundedUintValue is a [flag.Value] for numeric flags with sanity bounds,
// like the image size in GB.
type boundedUintValue struct {
	value    *uint64
	min, max uint64
}

func (v *boundedUintValue) String() string {
	if v.value == nil {
		return "0"
	}

	return strconv.FormatUint(*v.value, 10)
}

func (v *boundedUintValue) Set(s string) error {
	parsed, err := strconv.ParseUint(s, 10, 0)
	if err != nil {
		return fmt.Errorf("parse: %w", err)
	}

	if parsed < v.min || (v.max > 0 && parsed > v.max) {
		return fmt.Errorf(
			"%w: %d not in [%d, %d]", ErrValueOutOfRange, parsed, v.min, v.max,
		)
	}

	*v.value = parsed

	return nil
}
