// Copyright (c) 2026 Andrey Kriulin
// Licensed under the MIT License.
// See the LICENSE file in the project root for full license text.

// Package coords converts between longitude/latitude degrees and geocentric
// xyz coordinates, and wraps longitudes onto a canonical half-open interval.
package coords

import (
	"math"

	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/floats"
)

const (
	// DefaultBase is the lower bound of the canonical longitude interval.
	DefaultBase = -180.0
	// DefaultPeriod is the width of the canonical longitude interval.
	DefaultPeriod = 360.0
	// DefaultRadius is the nominal sphere radius of mesh coordinates.
	DefaultRadius = 1.0

	degToRad = math.Pi / 180.0
	radToDeg = 180.0 / math.Pi
)

// Wrap maps a longitude into the half-open interval [base, base+period).
// Wrap is idempotent: Wrap(Wrap(lon, b, p), b, p) == Wrap(lon, b, p).
func Wrap(lon, base, period float64) float64 {
	w := math.Mod(lon-base, period)
	if w < 0 {
		w += period
	}
	return w + base
}

// WrapAll returns a new slice with every longitude wrapped into
// [base, base+period). The input slice is not modified.
func WrapAll(lons []float64, base, period float64) []float64 {
	wrapped := make([]float64, len(lons))
	for i, lon := range lons {
		wrapped[i] = Wrap(lon, base, period)
	}
	return wrapped
}

// ToXYZ converts longitude/latitude degree slices to geocentric Cartesian
// points on a sphere of the given radius. Latitude is measured from the
// equator. The slices must be of equal length.
func ToXYZ(lons, lats []float64, radius float64) []r3.Vector {
	if radius == 0 {
		radius = DefaultRadius
	}
	xyz := make([]r3.Vector, len(lons))
	for i := range lons {
		sinLon, cosLon := math.Sincos(lons[i] * degToRad)
		sinLat, cosLat := math.Sincos(lats[i] * degToRad)
		xyz[i] = r3.Vector{
			X: radius * cosLat * cosLon,
			Y: radius * cosLat * sinLon,
			Z: radius * sinLat,
		}
	}
	return xyz
}

// ToXYZPlanes converts lon/lat degree slices to three coordinate-plane
// slices (x, y, z), the transposed layout of ToXYZ.
func ToXYZPlanes(lons, lats []float64, radius float64) (x, y, z []float64) {
	xyz := ToXYZ(lons, lats, radius)
	x = make([]float64, len(xyz))
	y = make([]float64, len(xyz))
	z = make([]float64, len(xyz))
	for i, p := range xyz {
		x[i], y[i], z[i] = p.X, p.Y, p.Z
	}
	return x, y, z
}

// ToLonLat converts geocentric points back to longitude/latitude degrees,
// assuming the points lie on a sphere of the given radius. The z/radius
// ratio is clamped to [-1, 1] so that floating-point excursions at the poles
// cannot push asin outside its domain. The third result is a zero slice,
// mirroring the lon/lat/zero layout expected by planar projections.
func ToLonLat(xyz []r3.Vector, radius float64) (lons, lats, zeros []float64) {
	if radius == 0 {
		radius = DefaultRadius
	}
	lons = make([]float64, len(xyz))
	lats = make([]float64, len(xyz))
	zeros = make([]float64, len(xyz))
	for i, p := range xyz {
		lons[i] = math.Atan2(p.Y, p.X)
		lats[i] = math.Asin(clamp(p.Z/radius, -1, 1))
	}
	floats.Scale(radToDeg, lons)
	floats.Scale(radToDeg, lats)
	return lons, lats, zeros
}

// LonLatToPoint converts a single lon/lat degree pair to a unit-sphere point.
func LonLatToPoint(lon, lat float64) r3.Vector {
	sinLon, cosLon := math.Sincos(lon * degToRad)
	sinLat, cosLat := math.Sincos(lat * degToRad)
	return r3.Vector{X: cosLat * cosLon, Y: cosLat * sinLon, Z: sinLat}
}

// PointToLonLat converts a single geocentric point on a sphere of the given
// radius back to a lon/lat degree pair.
func PointToLonLat(p r3.Vector, radius float64) (lon, lat float64) {
	if radius == 0 {
		radius = DefaultRadius
	}
	lon = math.Atan2(p.Y, p.X) * radToDeg
	lat = math.Asin(clamp(p.Z/radius, -1, 1)) * radToDeg
	return lon, lat
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(hi, math.Max(lo, v))
}
