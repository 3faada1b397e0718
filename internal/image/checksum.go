// SPDX-FileCopyrightText: 2025 Moe Mahhouk
//
// SPDX-License-Identifier: GPL-3.0-or-later

package image

import (
	"bufio"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strings"
)

// ParseChecksumManifest parses a SHA256SUMS style manifest: one entry per
// line, hex digest followed by the file name. A leading "*" on the name
// marks binary mode and is stripped.
func ParseChecksumManifest(r io.Reader) (map[string]string, error) {
	sums := make(map[string]string)

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		digest, name, found := strings.Cut(line, " ")
		if !found {
			continue
		}

		name = strings.TrimPrefix(strings.TrimSpace(name), "*")
		sums[name] = strings.ToLower(digest)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}

	return sums, nil
}

// FileDigest returns the hex encoded SHA-256 digest of the given file.
func FileDigest(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err //nolint:wrapcheck
	}
	defer f.Close()

	hash := sha256.New()

	_, err = io.Copy(hash, f)
	if err != nil {
		return "", fmt.Errorf("hash %s: %w", path, err)
	}

	return hex.EncodeToString(hash.Sum(nil)), nil
}
