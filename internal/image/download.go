// SPDX-FileCopyrightText: 2025 Moe Mahhouk
//
// SPDX-License-Identifier: GPL-3.0-or-later

package image

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/renameio"
	"github.com/schollz/progressbar/v3"
	"golang.org/x/sync/errgroup"
)

// downloadAttempts is the number of download tries per image. A mismatch
// triggers a single re-download before the build aborts.
const downloadAttempts = 2

// Download fetches the base cloud image and its checksum manifest and
// verifies the image against the manifest.
type Download struct {
	// URL of the cloud base image.
	ImageURL string

	// URL of the SHA256SUMS manifest covering the image.
	ChecksumURL string

	// Directory the image is stored in.
	Dir string
}

// Fetch returns the path of a verified base image in [Download.Dir].
//
// An already present image whose digest matches the manifest is reused
// without any image download. On a digest mismatch the file is deleted and
// fetched again once.
func (d *Download) Fetch(ctx context.Context) (string, error) {
	name, err := fileNameFromURL(d.ImageURL)
	if err != nil {
		return "", err
	}

	dest := filepath.Join(d.Dir, name)

	want, err := d.fetchImageDigest(ctx, name, dest)
	if err != nil {
		return "", err
	}

	// The first attempt verifies whatever is on disk now, either the fresh
	// download or a cached file. A mismatch deletes the file and fetches it
	// once more before giving up.
	var got string

	for attempt := 0; attempt < downloadAttempts; attempt++ {
		got, err = FileDigest(dest)
		if err == nil && got == want {
			return dest, nil
		}

		if attempt == downloadAttempts-1 {
			break
		}

		slog.Warn("Base image digest mismatch, downloading again",
			slog.String("image", dest))

		_ = os.Remove(dest)

		err = fetchFile(ctx, d.ImageURL, dest)
		if err != nil {
			return "", err
		}
	}

	if err != nil {
		return "", err
	}

	return "", fmt.Errorf(
		"%w: %s: got %s, want %s", ErrChecksumMismatch, name, got, want,
	)
}

// fetchImageDigest fetches the manifest and, concurrently, the image itself
// unless a local copy exists already. It returns the manifest digest for
// the image file.
func (d *Download) fetchImageDigest(
	ctx context.Context,
	name, dest string,
) (string, error) {
	var manifest map[string]string

	group, ctx := errgroup.WithContext(ctx)

	group.Go(func() error {
		var err error

		manifest, err = fetchManifest(ctx, d.ChecksumURL)

		return err
	})

	if _, err := os.Stat(dest); err != nil {
		group.Go(func() error {
			return fetchFile(ctx, d.ImageURL, dest)
		})
	} else {
		slog.Info("Found existing base image, verifying checksum",
			slog.String("image", dest))
	}

	if err := group.Wait(); err != nil {
		return "", err
	}

	want, exists := manifest[name]
	if !exists {
		return "", fmt.Errorf("%w: %s", ErrChecksumNotFound, name)
	}

	return want, nil
}

func fetchManifest(ctx context.Context, url string) (map[string]string, error) {
	body, err := get(ctx, url)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	return ParseChecksumManifest(body)
}

func fetchFile(ctx context.Context, url, dest string) error {
	body, err := getWithLength(ctx, url, func(length int64) io.Writer {
		return progressbar.DefaultBytes(length, "download "+path.Base(dest))
	})
	if err != nil {
		return err
	}
	defer body.reader.Close()

	// Write via a temp file in the target directory so a torn download
	// never shows up under the final name.
	pending, err := renameio.TempFile(filepath.Dir(dest), dest)
	if err != nil {
		return fmt.Errorf("create download file: %w", err)
	}
	defer pending.Cleanup() //nolint:errcheck

	_, err = io.Copy(io.MultiWriter(pending, body.progress), body.reader)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrDownloadFailed, url, err)
	}

	err = pending.CloseAtomicallyReplace()
	if err != nil {
		return fmt.Errorf("finalize download: %w", err)
	}

	return nil
}

type lengthBody struct {
	reader   io.ReadCloser
	progress io.Writer
}

func get(ctx context.Context, url string) (io.ReadCloser, error) {
	body, err := getWithLength(ctx, url, func(int64) io.Writer {
		return io.Discard
	})
	if err != nil {
		return nil, err
	}

	return body.reader, nil
}

func getWithLength(
	ctx context.Context,
	url string,
	progressFn func(length int64) io.Writer,
) (*lengthBody, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDownloadFailed, err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrDownloadFailed, url, err)
	}

	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()

		return nil, fmt.Errorf(
			"%w: %s: %s", ErrDownloadFailed, url, resp.Status,
		)
	}

	return &lengthBody{
		reader:   resp.Body,
		progress: progressFn(resp.ContentLength),
	}, nil
}

func fileNameFromURL(rawURL string) (string, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("image URL: %w", err)
	}

	name := path.Base(parsed.Path)
	if name == "." || name == "/" || strings.TrimSpace(name) == "" {
		return "", fmt.Errorf("image URL without file name: %s", rawURL)
	}

	return name, nil
}
