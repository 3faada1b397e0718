// SPDX-FileCopyrightText: 2025 Moe Mahhouk
//
// SPDX-License-Identifier: GPL-3.0-or-later

package initrd

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path"
	"strings"

	"github.com/cavaliergopher/cpio"
)

const numLinks = 2

var gzipMagic = []byte{0x1f, 0x8b}

// InjectFile rewrites the cpio archive src into dst, adding the given
// binary as destDir/<basename> with mode 0755. Missing parent directories
// are created, an existing entry of the same name is replaced.
//
// src may be gzip compressed or plain newc cpio; dst is always written gzip
// compressed, which the kernel unpacks either way.
func InjectFile(src, dst, binary, destDir string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open initrd: %w", err)
	}
	defer in.Close()

	reader, err := maybeGzipReader(in)
	if err != nil {
		return err
	}

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("create initrd: %w", err)
	}
	defer out.Close()

	compressed := gzip.NewWriter(out)
	writer := cpio.NewWriter(compressed)

	target := normalizeName(path.Join(destDir, path.Base(binary)))

	seenDirs, err := copyEntries(writer, cpio.NewReader(reader), target)
	if err != nil {
		return err
	}

	err = writeInjected(writer, binary, target, seenDirs)
	if err != nil {
		return err
	}

	if err := writer.Close(); err != nil {
		return fmt.Errorf("close archive: %w", err)
	}

	if err := compressed.Close(); err != nil {
		return fmt.Errorf("close gzip stream: %w", err)
	}

	return out.Close() //nolint:wrapcheck
}

// copyEntries streams all entries of the source archive through, dropping
// only an existing entry with the injected name. It returns the set of
// directories seen so [writeInjected] can create exactly the missing
// parents.
func copyEntries(
	w *cpio.Writer,
	r *cpio.Reader,
	target string,
) (map[string]bool, error) {
	seenDirs := map[string]bool{}

	for {
		hdr, err := r.Next()
		if err == io.EOF {
			return seenDirs, nil
		} else if err != nil {
			return nil, fmt.Errorf("read entry: %w", err)
		}

		name := normalizeName(hdr.Name)
		if name == target {
			continue
		}

		if hdr.Mode.IsDir() {
			seenDirs[name] = true
		}

		err = w.WriteHeader(hdr)
		if err != nil {
			return nil, fmt.Errorf("write entry %s: %w", hdr.Name, err)
		}

		if hdr.Size > 0 {
			_, err = io.CopyN(w, r, hdr.Size)
			if err != nil {
				return nil, fmt.Errorf("write body %s: %w", hdr.Name, err)
			}
		}
	}
}

// writeInjected adds missing parent directories and the binary itself.
func writeInjected(
	w *cpio.Writer,
	binary, target string,
	seenDirs map[string]bool,
) error {
	for _, dir := range parentDirs(target) {
		if seenDirs[dir] {
			continue
		}

		hdr := &cpio.Header{
			Name:  dir,
			Mode:  cpio.TypeDir | 0o755,
			Links: numLinks,
		}

		if err := w.WriteHeader(hdr); err != nil {
			return fmt.Errorf("write dir %s: %w", dir, err)
		}
	}

	source, err := os.Open(binary)
	if err != nil {
		return fmt.Errorf("open binary: %w", err)
	}
	defer source.Close()

	info, err := source.Stat()
	if err != nil {
		return fmt.Errorf("stat binary: %w", err)
	}

	if !info.Mode().IsRegular() {
		return fmt.Errorf("%w: %s", ErrNotRegularFile, binary)
	}

	hdr := &cpio.Header{
		Name: target,
		Mode: cpio.TypeReg | 0o755,
		Size: info.Size(),
	}

	if err := w.WriteHeader(hdr); err != nil {
		return fmt.Errorf("write binary header: %w", err)
	}

	_, err = io.Copy(w, source)
	if err != nil {
		return fmt.Errorf("write binary body: %w", err)
	}

	return nil
}

func maybeGzipReader(f *os.File) (io.Reader, error) {
	buffered := bufio.NewReader(f)

	magic, err := buffered.Peek(len(gzipMagic))
	if err != nil {
		return nil, fmt.Errorf("read initrd magic: %w", err)
	}

	if magic[0] != gzipMagic[0] || magic[1] != gzipMagic[1] {
		return buffered, nil
	}

	reader, err := gzip.NewReader(buffered)
	if err != nil {
		return nil, fmt.Errorf("gzip initrd: %w", err)
	}

	return reader, nil
}

func normalizeName(name string) string {
	name = strings.TrimPrefix(name, "./")
	return strings.TrimPrefix(name, "/")
}

// parentDirs returns all parent directories of the given archive name, top
// down, excluding ".".
func parentDirs(name string) []string {
	var dirs []string

	for dir := path.Dir(name); dir != "." && dir != "/"; dir = path.Dir(dir) {
		dirs = append(dirs, dir)
	}

	for i, j := 0, len(dirs)-1; i < j; i, j = i+1, j-1 {
		dirs[i], dirs[j] = dirs[j], dirs[i]
	}

	return dirs
}
