// SPDX-FileCopyrightText: 2025 Moe Mahhouk
//
// SPDX-License-Identifier: GPL-3.0-or-later

package image_test

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MoeMahhouk/tdx/internal/image"
)

// imageServer serves a base image and a SHA256SUMS manifest. The manifest
// always carries the digest of manifestContent while the image endpoint
// serves imageContent, so the two can be set apart to provoke mismatches.
type imageServer struct {
	imageContent    []byte
	manifestContent []byte
	imageRequests   atomic.Int64

	*httptest.Server
}

func newImageServer(t *testing.T, imageContent, manifestContent []byte) *imageServer {
	t.Helper()

	server := &imageServer{
		imageContent:    imageContent,
		manifestContent: manifestContent,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/base.img", func(w http.ResponseWriter, _ *http.Request) {
		server.imageRequests.Add(1)
		_, _ = w.Write(server.imageContent)
	})
	mux.HandleFunc("/SHA256SUMS", func(w http.ResponseWriter, _ *http.Request) {
		sum := sha256.Sum256(server.manifestContent)
		line := hex.EncodeToString(sum[:]) + " *base.img\n"
		_, _ = w.Write([]byte(line))
	})

	server.Server = httptest.NewServer(mux)
	t.Cleanup(server.Close)

	return server
}

func (s *imageServer) download(dir string) *image.Download {
	return &image.Download{
		ImageURL:    s.URL + "/base.img",
		ChecksumURL: s.URL + "/SHA256SUMS",
		Dir:         dir,
	}
}

func TestDownload_Fetch(t *testing.T) {
	content := []byte("pristine base image")
	server := newImageServer(t, content, content)
	dir := t.TempDir()

	path, err := server.download(dir).Fetch(context.Background())
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "base.img"), path)

	actual, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, content, actual)

	assert.EqualValues(t, 1, server.imageRequests.Load())
}

func TestDownload_Fetch_cachedImage(t *testing.T) {
	content := []byte("pristine base image")
	server := newImageServer(t, content, content)
	dir := t.TempDir()

	err := os.WriteFile(filepath.Join(dir, "base.img"), content, 0o600)
	require.NoError(t, err)

	path, err := server.download(dir).Fetch(context.Background())
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "base.img"), path)
	assert.EqualValues(t, 0, server.imageRequests.Load(),
		"a cached image with matching digest must not be downloaded")
}

func TestDownload_Fetch_staleCachedImage(t *testing.T) {
	content := []byte("pristine base image")
	server := newImageServer(t, content, content)
	dir := t.TempDir()

	err := os.WriteFile(
		filepath.Join(dir, "base.img"), []byte("older release"), 0o600,
	)
	require.NoError(t, err)

	path, err := server.download(dir).Fetch(context.Background())
	require.NoError(t, err)

	actual, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, content, actual)

	assert.EqualValues(t, 1, server.imageRequests.Load())
}

func TestDownload_Fetch_checksumMismatch(t *testing.T) {
	server := newImageServer(t,
		[]byte("corrupted transfer"),
		[]byte("pristine base image"),
	)
	dir := t.TempDir()

	_, err := server.download(dir).Fetch(context.Background())
	require.ErrorIs(t, err, image.ErrChecksumMismatch)

	assert.EqualValues(t, 2, server.imageRequests.Load(),
		"a mismatch must trigger exactly one re-download")
}

func TestDownload_Fetch_unknownImage(t *testing.T) {
	server := newImageServer(t, []byte("content"), []byte("content"))

	download := server.download(t.TempDir())
	download.ImageURL = server.URL + "/other.img"

	_, err := download.Fetch(context.Background())
	require.ErrorIs(t, err, image.ErrDownloadFailed)
}
