// SPDX-FileCopyrightText: 2025 Moe Mahhouk
//
// SPDX-License-Identifier: GPL-3.0-or-later

package qemu

import (
	"fmt"
	"slices"
	"strings"
)

// Argument is a single QEMU command line argument with optional value.
//
// Arguments like "-machine" may appear only once on a qemu command line
// while others like "-device" repeat freely. The distinction matters when
// user supplied extra arguments are appended to the fixed launch set.
type Argument struct {
	name       string
	value      string
	repeatable bool
}

// UniqueArg returns an [Argument] whose name may appear only once per
// command line. Multiple values are joined with commas.
func UniqueArg(name string, value ...string) Argument {
	return Argument{
		name:  name,
		value: strings.Join(value, ","),
	}
}

// RepeatableArg returns an [Argument] that may appear multiple times as
// long as the values differ.
func RepeatableArg(name string, value ...string) Argument {
	return Argument{
		name:       name,
		value:      strings.Join(value, ","),
		repeatable: true,
	}
}

// Name returns the name of the [Argument].
func (a Argument) Name() string {
	return a.name
}

// Value returns the value of the [Argument].
func (a Argument) Value() string {
	return a.value
}

// String implements [fmt.Stringer].
func (a Argument) String() string {
	if a.value == "" {
		return "-" + a.name
	}

	return "-" + a.name + " " + a.value
}

// collides reports whether two arguments cannot coexist on one command
// line. Unique arguments collide by name, repeatable ones only on an exact
// duplicate.
func (a Argument) collides(other Argument) bool {
	if a.name != other.name {
		return false
	}

	if a.repeatable && other.repeatable {
		return a.value == other.value
	}

	return true
}

// BuildArgumentStrings compiles the [Argument] list into the string slice
// for [exec.Command]. It returns an error on the first collision found.
func BuildArgumentStrings(args []Argument) ([]string, error) {
	strs := make([]string, 0, 2*len(args))

	for idx, arg := range args {
		if i := slices.IndexFunc(args[:idx], arg.collides); i != -1 {
			return nil, fmt.Errorf(
				"%w: %s vs %s",
				ErrArgumentCollision,
				arg.String(),
				args[i].String(),
			)
		}

		strs = append(strs, "-"+arg.name)

		if arg.value != "" {
			strs = append(strs, arg.value)
		}
	}

	return strs, nil
}
