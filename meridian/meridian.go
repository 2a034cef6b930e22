// Copyright (c) 2026 Andrey Kriulin
// Licensed under the MIT License.
// See the LICENSE file in the project root for full license text.

// Package meridian slices a closed spherical mesh along a chosen meridian,
// classifying cells as wholly west, wholly east, or straddling the cut, and
// extracting render-safe sub-meshes whose cells keep their provenance ids.
package meridian

import (
	"math"
	"strings"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"

	"github.com/2dChan/s2geomesh"
	"github.com/2dChan/s2geomesh/coords"
)

const (
	// DefaultOffset is the angular bias, in degrees, applied to the west and
	// east intersection lines.
	DefaultOffset = 1e-3

	// planarRatio is the z-extent to overall-extent ratio below which a mesh
	// is treated as a flat planar projection.
	planarRatio = 1e-6

	// planeEps is the signed plane distance below which a point counts as
	// lying on the meridian plane, relative to the mesh radius.
	planeEps = 1e-12

	// clipTol absorbs floating noise when comparing longitudes against the
	// 90-degree clip window.
	clipTol = 1e-9
)

// Bias selects which intersection line an extraction is based on.
type Bias int

const (
	BiasWest Bias = iota
	BiasExact
	BiasEast
)

// String returns the canonical lower-case name of the bias.
func (b Bias) String() string {
	switch b {
	case BiasWest:
		return "west"
	case BiasExact:
		return "exact"
	case BiasEast:
		return "east"
	}
	return "unknown"
}

// ParseBias parses a case-insensitive bias name.
// It returns an error listing the legal values for anything else.
func ParseBias(s string) (Bias, error) {
	switch strings.ToLower(s) {
	case "west":
		return BiasWest, nil
	case "exact":
		return BiasExact, nil
	case "east":
		return BiasEast, nil
	}
	return 0, errors.Errorf("invalid bias %q: expected one of [west exact east]", s)
}

// SliceOptions configure NewSlice.
type SliceOptions struct {
	Offset float64
}

// SliceOption mutates SliceOptions.
type SliceOption func(*SliceOptions) error

// WithOffset sets the angular bias in degrees for the west and east
// intersection lines. It must be positive.
func WithOffset(deg float64) SliceOption {
	return func(o *SliceOptions) error {
		if deg <= 0 {
			return errors.Errorf("offset %v must be positive", deg)
		}
		o.Offset = deg
		return nil
	}
}

// Slice holds the classification of a mesh's cells against a meridian: the
// cell-id sets intersecting the west-biased, exact, and east-biased cut
// lines, and the split set straddling the cut itself.
type Slice struct {
	// Lon is the target meridian wrapped onto the canonical interval.
	Lon    float64
	Offset float64

	WestIDs  map[int]struct{}
	ExactIDs map[int]struct{}
	EastIDs  map[int]struct{}
	SplitIDs map[int]struct{}

	mesh *s2geomesh.Mesh
}

// NewSlice classifies the mesh's cells against the meridian at lonDeg. The
// input mesh is cloned and tagged with identity arrays; it is never mutated.
// A meridian that does not intersect the mesh yields empty id sets, which is
// a valid outcome. Flat planar-projection meshes are rejected: slicing is
// only meaningful on a genuinely three-dimensional spherical mesh.
func NewSlice(m *s2geomesh.Mesh, lonDeg float64, setters ...SliceOption) (*Slice, error) {
	opts := SliceOptions{Offset: DefaultOffset}
	for _, set := range setters {
		if err := set(&opts); err != nil {
			return nil, err
		}
	}

	if m.NumFaces() == 0 {
		return nil, errors.New("meridian: mesh has no faces")
	}
	min, max := m.Bounds()
	extent := math.Max(max.X-min.X, math.Max(max.Y-min.Y, max.Z-min.Z))
	if max.Z-min.Z < planarRatio*extent {
		return nil, errors.New("meridian: mesh is a flat planar projection, cannot slice along a meridian")
	}

	s := &Slice{
		Lon:      coords.Wrap(lonDeg, coords.DefaultBase, coords.DefaultPeriod),
		Offset:   opts.Offset,
		mesh:     m.Tagged(),
		WestIDs:  make(map[int]struct{}),
		EastIDs:  make(map[int]struct{}),
		SplitIDs: make(map[int]struct{}),
	}

	s.ExactIDs = intersectingCells(s.mesh, s.Lon)
	if len(s.ExactIDs) == 0 {
		return s, nil
	}
	s.WestIDs = intersectingCells(s.mesh, s.Lon-s.Offset)
	s.EastIDs = intersectingCells(s.mesh, s.Lon+s.Offset)
	for id := range s.WestIDs {
		if _, ok := s.EastIDs[id]; ok {
			s.SplitIDs[id] = struct{}{}
		}
	}
	return s, nil
}

// Extract builds a sub-mesh from the slice. The cell-id set is the biased
// set minus the split set when wholeCells is requested, unioned with the
// split set when splitCells is requested. Cells are extracted whole from the
// tagged original mesh, not from the cut slivers. With clip, cells owning a
// point further than 90 degrees of longitude from the meridian are dropped,
// discarding the antipodal leftover geometry a naive extraction retains
// around the poles.
func (s *Slice) Extract(bias Bias, wholeCells, splitCells, clip bool) (*s2geomesh.Mesh, error) {
	var biased map[int]struct{}
	switch bias {
	case BiasWest:
		biased = s.WestIDs
	case BiasExact:
		biased = s.ExactIDs
	case BiasEast:
		biased = s.EastIDs
	default:
		return nil, errors.Errorf("invalid bias %d: expected one of [west exact east]", bias)
	}

	ids := make(map[int]struct{}, len(biased))
	if wholeCells {
		for id := range biased {
			if _, ok := s.SplitIDs[id]; !ok {
				ids[id] = struct{}{}
			}
		}
	}
	if splitCells {
		for id := range s.SplitIDs {
			ids[id] = struct{}{}
		}
	}

	sub := s.mesh.ExtractCells(ids)
	if clip {
		sub = s.clip(sub)
	}
	return sub, nil
}

// clip drops every cell with a point whose longitude lies more than 90
// degrees from the target meridian. This is a heuristic: extremely wide
// cells near the poles can span the window boundary.
func (s *Slice) clip(m *s2geomesh.Mesh) *s2geomesh.Mesh {
	lons, _ := m.LonLats()
	keep := make(map[int]struct{}, m.NumFaces())
	for fi := 0; fi < m.NumFaces(); fi++ {
		inside := true
		for _, vi := range m.FaceVertices[m.FaceOffsets[fi]:m.FaceOffsets[fi+1]] {
			delta := coords.Wrap(lons[vi]-s.Lon, -180, 360)
			if math.Abs(delta) > 90+clipTol {
				inside = false
				break
			}
		}
		if inside {
			keep[m.CellIDs[fi]] = struct{}{}
		}
	}
	return m.ExtractCells(keep)
}

// intersectingCells returns the ids of cells crossing or touching the
// meridian half-plane at lonDeg. A cell qualifies when its vertices span
// both sides of the full meridian plane (or lie on it) and at least one
// vertex sits on the meridian's side of the sphere, which excludes the
// antipodal crossing.
func intersectingCells(m *s2geomesh.Mesh, lonDeg float64) map[int]struct{} {
	rad := lonDeg * math.Pi / 180
	sinLon, cosLon := math.Sincos(rad)
	normal := r3.Vector{X: -sinLon, Y: cosLon}
	side := r3.Vector{X: cosLon, Y: sinLon}

	radius := m.Radius
	if radius == 0 {
		radius = s2geomesh.DefaultRadius
	}
	eps := planeEps * radius

	ids := make(map[int]struct{})
	for fi := 0; fi < m.NumFaces(); fi++ {
		var neg, pos, zero int
		onSide := false
		for _, vi := range m.FaceVertices[m.FaceOffsets[fi]:m.FaceOffsets[fi+1]] {
			p := m.Points[vi]
			d := normal.Dot(p)
			switch {
			case d > eps:
				pos++
			case d < -eps:
				neg++
			default:
				zero++
			}
			if side.Dot(p) > 0 {
				onSide = true
			}
		}
		if !onSide {
			continue
		}
		if (neg > 0 && pos > 0) || zero > 0 {
			ids[m.CellIDs[fi]] = struct{}{}
		}
	}
	return ids
}
