// Copyright (c) 2026 Andrey Kriulin
// Licensed under the MIT License.
// See the LICENSE file in the project root for full license text.

// Package fetch resolves resource keys to local file paths, downloading from
// a fixed base URL into a cache directory on first use. Payloads with a .gz
// suffix are decompressed transparently; registered sha256 checksums are
// verified against the raw download. Fetches are synchronous with no retry
// logic.
package fetch

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/pkg/errors"
)

// Fetcher resolves a resource key to a local file path.
type Fetcher interface {
	Fetch(key string) (string, error)
}

// CacheFetcher downloads keys from a base URL and caches the results under
// a local directory.
type CacheFetcher struct {
	baseURL string
	dir     string
	client  *http.Client
	sums    map[string]string
}

// Option mutates a CacheFetcher under construction.
type Option func(*CacheFetcher)

// WithClient substitutes the HTTP client used for downloads.
func WithClient(c *http.Client) Option {
	return func(f *CacheFetcher) {
		f.client = c
	}
}

// WithChecksum registers the expected hex-encoded sha256 of a key's raw
// payload, verified before the payload is cached.
func WithChecksum(key, hexSum string) Option {
	return func(f *CacheFetcher) {
		f.sums[key] = hexSum
	}
}

// NewCacheFetcher creates a fetcher downloading from baseURL into dir.
func NewCacheFetcher(baseURL, dir string, setters ...Option) (*CacheFetcher, error) {
	if _, err := url.Parse(baseURL); err != nil {
		return nil, errors.Wrapf(err, "fetch: invalid base URL %q", baseURL)
	}
	if dir == "" {
		return nil, errors.New("fetch: cache directory is required")
	}
	f := &CacheFetcher{
		baseURL: strings.TrimRight(baseURL, "/"),
		dir:     dir,
		client:  http.DefaultClient,
		sums:    make(map[string]string),
	}
	for _, set := range setters {
		set(f)
	}
	return f, nil
}

// Fetch returns the local path of the key's payload, downloading and
// caching it on first use.
func (f *CacheFetcher) Fetch(key string) (string, error) {
	local := filepath.Join(f.dir, filepath.FromSlash(strings.TrimSuffix(key, ".gz")))
	if _, err := os.Stat(local); err == nil {
		return local, nil
	}

	if err := os.MkdirAll(filepath.Dir(local), 0o755); err != nil {
		return "", errors.Wrapf(err, "fetch: creating cache directory for %q", key)
	}

	resp, err := f.client.Get(f.baseURL + "/" + key)
	if err != nil {
		return "", errors.Wrapf(err, "fetch: downloading %q", key)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", errors.Errorf("fetch: downloading %q: unexpected status %s", key, resp.Status)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", errors.Wrapf(err, "fetch: reading %q", key)
	}

	if want, ok := f.sums[key]; ok {
		sum := sha256.Sum256(raw)
		if got := hex.EncodeToString(sum[:]); got != want {
			return "", errors.Errorf("fetch: checksum mismatch for %q: got %s, want %s", key, got, want)
		}
	}

	payload := raw
	if strings.HasSuffix(key, ".gz") {
		zr, err := gzip.NewReader(bytes.NewReader(raw))
		if err != nil {
			return "", errors.Wrapf(err, "fetch: decompressing %q", key)
		}
		payload, err = io.ReadAll(zr)
		if err != nil {
			return "", errors.Wrapf(err, "fetch: decompressing %q", key)
		}
		if err := zr.Close(); err != nil {
			return "", errors.Wrapf(err, "fetch: decompressing %q", key)
		}
	}

	// Write-then-rename keeps a partially written payload out of the cache.
	tmp, err := os.CreateTemp(filepath.Dir(local), ".fetch-*")
	if err != nil {
		return "", errors.Wrapf(err, "fetch: caching %q", key)
	}
	if _, err := tmp.Write(payload); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", errors.Wrapf(err, "fetch: caching %q", key)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", errors.Wrapf(err, "fetch: caching %q", key)
	}
	if err := os.Rename(tmp.Name(), local); err != nil {
		os.Remove(tmp.Name())
		return "", errors.Wrapf(err, "fetch: caching %q", key)
	}
	return local, nil
}
