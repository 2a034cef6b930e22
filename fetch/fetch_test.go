// Copyright (c) 2026 Andrey Kriulin
// Licensed under the MIT License.
// See the LICENSE file in the project root for full license text.

package fetch

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"
)

func TestCacheFetcher_Fetch(t *testing.T) {
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		if r.URL.Path != "/data/sample.txt" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte("hello sphere"))
	}))
	defer srv.Close()

	f, err := NewCacheFetcher(srv.URL, t.TempDir())
	if err != nil {
		t.Fatalf("NewCacheFetcher(...) error = %v, want nil", err)
	}

	path, err := f.Fetch("data/sample.txt")
	if err != nil {
		t.Fatalf("f.Fetch(data/sample.txt) error = %v, want nil", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("os.ReadFile(%q) error = %v, want nil", path, err)
	}
	if string(data) != "hello sphere" {
		t.Errorf("cached payload = %q, want %q", data, "hello sphere")
	}

	// Second fetch is served from the cache without touching the server.
	if _, err := f.Fetch("data/sample.txt"); err != nil {
		t.Fatalf("f.Fetch(data/sample.txt) again error = %v, want nil", err)
	}
	if hits != 1 {
		t.Errorf("server hits = %v, want 1", hits)
	}
}

func TestCacheFetcher_Gzip(t *testing.T) {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	zw.Write([]byte("compressed coastlines"))
	zw.Close()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(buf.Bytes())
	}))
	defer srv.Close()

	f, err := NewCacheFetcher(srv.URL, t.TempDir())
	if err != nil {
		t.Fatalf("NewCacheFetcher(...) error = %v, want nil", err)
	}

	path, err := f.Fetch("coast.geojson.gz")
	if err != nil {
		t.Fatalf("f.Fetch(coast.geojson.gz) error = %v, want nil", err)
	}
	if filepath.Base(path) != "coast.geojson" {
		t.Errorf("cached name = %q, want gz suffix stripped", filepath.Base(path))
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("os.ReadFile(%q) error = %v, want nil", path, err)
	}
	if string(data) != "compressed coastlines" {
		t.Errorf("cached payload = %q, want decompressed text", data)
	}
}

func TestCacheFetcher_Checksum(t *testing.T) {
	payload := []byte("verified payload")
	sum := sha256.Sum256(payload)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(payload)
	}))
	defer srv.Close()

	t.Run("match", func(t *testing.T) {
		f, err := NewCacheFetcher(srv.URL, t.TempDir(),
			WithChecksum("ok.bin", hex.EncodeToString(sum[:])))
		if err != nil {
			t.Fatalf("NewCacheFetcher(...) error = %v, want nil", err)
		}
		if _, err := f.Fetch("ok.bin"); err != nil {
			t.Errorf("f.Fetch(ok.bin) error = %v, want nil", err)
		}
	})

	t.Run("mismatch", func(t *testing.T) {
		f, err := NewCacheFetcher(srv.URL, t.TempDir(),
			WithChecksum("bad.bin", strings.Repeat("0", 64)))
		if err != nil {
			t.Fatalf("NewCacheFetcher(...) error = %v, want nil", err)
		}
		_, err = f.Fetch("bad.bin")
		if err == nil || !strings.Contains(err.Error(), "checksum") {
			t.Errorf("f.Fetch(bad.bin) error = %v, want checksum mismatch", err)
		}
	})
}

func TestCacheFetcher_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	f, err := NewCacheFetcher(srv.URL, t.TempDir())
	if err != nil {
		t.Fatalf("NewCacheFetcher(...) error = %v, want nil", err)
	}
	if _, err := f.Fetch("missing.txt"); err == nil {
		t.Errorf("f.Fetch(missing.txt) error = nil, want non-nil")
	}
}

func TestNewCacheFetcher_NoDir(t *testing.T) {
	if _, err := NewCacheFetcher("http://example.com", ""); err == nil {
		t.Errorf("NewCacheFetcher(..., \"\") error = nil, want non-nil")
	}
}
