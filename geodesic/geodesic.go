// Copyright (c) 2026 Andrey Kriulin
// Licensed under the MIT License.
// See the LICENSE file in the project root for full license text.

// Package geodesic computes geodesic lines between lon/lat points and builds
// bounded quad-mesh regions on the sphere for enclosure testing.
package geodesic

import (
	"github.com/golang/geo/s2"
	"github.com/pkg/errors"

	"github.com/2dChan/s2geomesh/coords"
)

// LonLat is a longitude/latitude pair in degrees.
type LonLat struct {
	Lon, Lat float64
}

// Geodesy is the collaborator computing evenly spaced points along the
// geodesic between two lon/lat positions. Points returns n samples
// including both endpoints; n must be at least 2. Implementations are
// treated as black-box numeric oracles.
type Geodesy interface {
	Points(lon0, lat0, lon1, lat1 float64, n int) ([]LonLat, error)
}

// Spherical is the default Geodesy: great-circle interpolation on the unit
// sphere.
type Spherical struct{}

// Points returns n evenly spaced great-circle samples from (lon0, lat0) to
// (lon1, lat1), endpoints included. Longitudes are wrapped onto the
// canonical interval.
func (Spherical) Points(lon0, lat0, lon1, lat1 float64, n int) ([]LonLat, error) {
	if n < 2 {
		return nil, errors.Errorf("geodesic: need at least 2 points, got %d", n)
	}
	a := s2.PointFromLatLng(s2.LatLngFromDegrees(lat0, lon0))
	b := s2.PointFromLatLng(s2.LatLngFromDegrees(lat1, lon1))

	out := make([]LonLat, n)
	for i := range n {
		t := float64(i) / float64(n-1)
		ll := s2.LatLngFromPoint(s2.Interpolate(t, a, b))
		out[i] = LonLat{
			Lon: coords.Wrap(ll.Lng.Degrees(), coords.DefaultBase, coords.DefaultPeriod),
			Lat: ll.Lat.Degrees(),
		}
	}
	return out, nil
}

// LineOptions configure Line.
type LineOptions struct {
	Geodesy Geodesy
}

// LineOption mutates LineOptions.
type LineOption func(*LineOptions)

// WithGeodesy substitutes the geodesy collaborator used for sampling.
func WithGeodesy(g Geodesy) LineOption {
	return func(o *LineOptions) {
		o.Geodesy = g
	}
}

// Line returns npts evenly spaced points along the geodesic from start to
// end. Excluded endpoints are removed from a correspondingly finer
// subdivision, so the returned points remain evenly spaced.
func Line(start, end LonLat, npts int, includeStart, includeEnd bool, setters ...LineOption) ([]LonLat, error) {
	opts := LineOptions{Geodesy: Spherical{}}
	for _, set := range setters {
		set(&opts)
	}
	if npts < 1 {
		return nil, errors.Errorf("geodesic: need at least 1 point, got %d", npts)
	}

	total := npts
	if !includeStart {
		total++
	}
	if !includeEnd {
		total++
	}
	if total < 2 {
		return nil, errors.New("geodesic: cannot include both endpoints in a single point")
	}
	pts, err := opts.Geodesy.Points(start.Lon, start.Lat, end.Lon, end.Lat, total)
	if err != nil {
		return nil, err
	}
	if !includeStart {
		pts = pts[1:]
	}
	if !includeEnd {
		pts = pts[:len(pts)-1]
	}
	return pts, nil
}
