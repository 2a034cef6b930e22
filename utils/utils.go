// Copyright (c) 2026 Andrey Kriulin
// Licensed under the MIT License.
// See the LICENSE file in the project root for full license text.

// Package utils provides utility functions for generating lon/lat site
// distributions used by mesh builders and tests.
package utils

import (
	"math"
	"math/rand"
)

// GenerateRandomLonLats generates cnt random sites uniformly distributed
// over the sphere, returned as longitude/latitude degree slices.
// The seed parameter ensures reproducibility.
func GenerateRandomLonLats(cnt int, seed int64) (lons, lats []float64) {
	//nolint:gosec
	random := rand.New(rand.NewSource(seed))
	lons = make([]float64, cnt)
	lats = make([]float64, cnt)

	for i := range cnt {
		lons[i] = random.Float64()*360 - 180
		// Uniform in sin(lat) keeps the distribution area-uniform.
		lats[i] = math.Asin(random.Float64()*2-1) * 180 / math.Pi
	}

	return lons, lats
}
