// Copyright (c) 2026 Andrey Kriulin
// Licensed under the MIT License.
// See the LICENSE file in the project root for full license text.

package geodata

import (
	"github.com/dgraph-io/ristretto/v2"
	"github.com/pkg/errors"

	"github.com/2dChan/s2geomesh"
	"github.com/2dChan/s2geomesh/fetch"
)

const (
	defaultMaxCost     = 64 << 20
	defaultNumCounters = 1e4
)

// Cache memoizes loaded meshes behind a bounded in-memory store. It is an
// explicit object owned by the caller: invalidation is a method call, not a
// process-global side effect. Costs approximate the mesh's in-memory size.
type Cache struct {
	fetcher fetch.Fetcher
	store   *ristretto.Cache[string, *s2geomesh.Mesh]
}

// CacheOptions configure NewCache.
type CacheOptions struct {
	MaxCost int64
}

// CacheOption mutates CacheOptions.
type CacheOption func(*CacheOptions) error

// WithMaxCost bounds the total approximate bytes of cached meshes.
func WithMaxCost(bytes int64) CacheOption {
	return func(o *CacheOptions) error {
		if bytes <= 0 {
			return errors.Errorf("max cost %d must be positive", bytes)
		}
		o.MaxCost = bytes
		return nil
	}
}

// NewCache creates a mesh cache backed by the fetcher.
func NewCache(fetcher fetch.Fetcher, setters ...CacheOption) (*Cache, error) {
	if fetcher == nil {
		return nil, errors.New("geodata: fetcher is required")
	}
	opts := CacheOptions{MaxCost: defaultMaxCost}
	for _, set := range setters {
		if err := set(&opts); err != nil {
			return nil, err
		}
	}
	store, err := ristretto.NewCache(&ristretto.Config[string, *s2geomesh.Mesh]{
		NumCounters: defaultNumCounters,
		MaxCost:     opts.MaxCost,
		BufferItems: 64,
	})
	if err != nil {
		return nil, errors.Wrap(err, "geodata: creating cache")
	}
	return &Cache{fetcher: fetcher, store: store}, nil
}

// Coastlines returns the coastline line mesh at the given resolution,
// fetching and parsing it on first use.
func (c *Cache) Coastlines(resolution string) (*s2geomesh.Mesh, error) {
	switch resolution {
	case ResolutionCoarse, ResolutionMedium, ResolutionFine:
	default:
		return nil, errors.Errorf("geodata: invalid resolution %q: expected one of [%s %s %s]",
			resolution, ResolutionCoarse, ResolutionMedium, ResolutionFine)
	}

	key := coastlinesKey(resolution)
	if mesh, ok := c.store.Get(key); ok {
		return mesh, nil
	}

	path, err := c.fetcher.Fetch(key)
	if err != nil {
		return nil, err
	}
	mesh, err := LoadLines(path)
	if err != nil {
		return nil, err
	}
	mesh.Resolution = resolution

	c.store.Set(key, mesh, meshCost(mesh))
	c.store.Wait()
	return mesh, nil
}

// Invalidate drops the cached mesh for a resolution, forcing the next load
// to re-fetch.
func (c *Cache) Invalidate(resolution string) {
	c.store.Del(coastlinesKey(resolution))
}

// Close releases the cache's internal resources.
func (c *Cache) Close() {
	c.store.Close()
}

func meshCost(m *s2geomesh.Mesh) int64 {
	const (
		pointBytes = 24
		indexBytes = 8
	)
	return int64(m.NumPoints()*pointBytes +
		(len(m.FaceVertices)+len(m.FaceOffsets)+len(m.LineVertices)+len(m.LineOffsets))*indexBytes)
}
