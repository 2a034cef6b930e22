// Copyright (c) 2026 Andrey Kriulin
// Licensed under the MIT License.
// See the LICENSE file in the project root for full license text.

package geodesic

import (
	"github.com/golang/geo/r3"
	"github.com/golang/geo/s1"
	"github.com/golang/geo/s2"
	"github.com/pkg/errors"

	"github.com/2dChan/s2geomesh"
	"github.com/2dChan/s2geomesh/coords"
)

const (
	// DefaultC is the default number of faces per bounding-box edge.
	DefaultC = 8

	// radiusRatio is the fractional offset of the inner and outer shells
	// from the nominal radius.
	radiusRatio = 0.1

	// boundaryTol is the angular distance within which a point counts as
	// touching the region boundary, and therefore as enclosed.
	boundaryTol = s1.Angle(1e-9)
)

// BBox is a bounded region of the sphere described by an open polygon of
// four lon/lat corners, expanded into a double-shell quad mesh: a c×c inner
// shell, a c×c outer shell, and a 4c-face skirt joining their boundary
// rings. The skirt closes the solid, so the shape supports robust
// inside/outside queries against arbitrary surfaces.
type BBox struct {
	Corners []LonLat
	C       int

	mesh     *s2geomesh.Mesh
	boundary []s2.Point
	loop     *s2.Loop
}

// BBoxOptions configure NewBBox.
type BBoxOptions struct {
	C           int
	Triangulate bool
	Radius      float64
	Geodesy     Geodesy
}

// BBoxOption mutates BBoxOptions.
type BBoxOption func(*BBoxOptions) error

// WithC sets the number of faces per bounding-box edge. It must be positive.
func WithC(c int) BBoxOption {
	return func(o *BBoxOptions) error {
		if c <= 0 {
			return errors.Errorf("c %d must be positive", c)
		}
		o.C = c
		return nil
	}
}

// WithTriangulate splits every quad face of the solid into two triangles.
func WithTriangulate() BBoxOption {
	return func(o *BBoxOptions) error {
		o.Triangulate = true
		return nil
	}
}

// WithRadius sets the nominal sphere radius of the solid.
func WithRadius(r float64) BBoxOption {
	return func(o *BBoxOptions) error {
		if r <= 0 {
			return errors.Errorf("radius %v must be positive", r)
		}
		o.Radius = r
		return nil
	}
}

// WithBBoxGeodesy substitutes the geodesy collaborator used to trace the
// region's edges and interior rows.
func WithBBoxGeodesy(g Geodesy) BBoxOption {
	return func(o *BBoxOptions) error {
		o.Geodesy = g
		return nil
	}
}

// NewBBox builds the bounding-box solid for the region whose corners are
// given as ordered lon/lat pairs: exactly 4 for an open polygon, or 5 with
// first equal to last for a closed one. Mismatched coordinate slice lengths
// or any other corner count is an error.
func NewBBox(lons, lats []float64, setters ...BBoxOption) (*BBox, error) {
	opts := BBoxOptions{C: DefaultC, Radius: s2geomesh.DefaultRadius, Geodesy: Spherical{}}
	for _, set := range setters {
		if err := set(&opts); err != nil {
			return nil, err
		}
	}

	if len(lons) != len(lats) {
		return nil, errors.Errorf("bbox: %d longitudes mismatch %d latitudes", len(lons), len(lats))
	}
	switch len(lons) {
	case 4:
	case 5:
		if lons[0] != lons[4] || lats[0] != lats[4] {
			return nil, errors.New("bbox: 5 corners must close the polygon (first == last)")
		}
		lons, lats = lons[:4], lats[:4]
	default:
		return nil, errors.Errorf("bbox: got %d corners, want 4 open or 5 closed", len(lons))
	}

	b := &BBox{C: opts.C, Corners: make([]LonLat, 4)}
	for i := range 4 {
		b.Corners[i] = LonLat{
			Lon: coords.Wrap(lons[i], coords.DefaultBase, coords.DefaultPeriod),
			Lat: lats[i],
		}
	}
	if err := b.build(opts); err != nil {
		return nil, err
	}
	return b, nil
}

// build traces the geodesic grid and assembles the double-shell solid.
func (b *BBox) build(opts BBoxOptions) error {
	c := b.C
	grid, err := b.grid(opts.Geodesy)
	if err != nil {
		return err
	}

	// One unit point per grid node, shells scaled from it.
	n := c + 1
	unit := make([]r3.Vector, 0, n*n)
	for r := 0; r < n; r++ {
		for q := 0; q < n; q++ {
			unit = append(unit, coords.LonLatToPoint(grid[r][q].Lon, grid[r][q].Lat))
		}
	}

	inner := opts.Radius * (1 - radiusRatio)
	outer := opts.Radius * (1 + radiusRatio)
	points := make([]r3.Vector, 0, 2*n*n)
	for _, p := range unit {
		points = append(points, p.Mul(inner))
	}
	for _, p := range unit {
		points = append(points, p.Mul(outer))
	}

	mesh := &s2geomesh.Mesh{
		Points:      points,
		FaceOffsets: []int{0},
		Radius:      opts.Radius,
	}
	addQuad := func(a, bq, cq, d int) {
		if opts.Triangulate {
			mesh.FaceVertices = append(mesh.FaceVertices, a, bq, cq)
			mesh.FaceOffsets = append(mesh.FaceOffsets, len(mesh.FaceVertices))
			mesh.FaceVertices = append(mesh.FaceVertices, a, cq, d)
			mesh.FaceOffsets = append(mesh.FaceOffsets, len(mesh.FaceVertices))
			return
		}
		mesh.FaceVertices = append(mesh.FaceVertices, a, bq, cq, d)
		mesh.FaceOffsets = append(mesh.FaceOffsets, len(mesh.FaceVertices))
	}

	idx := func(r, q int) int { return r*n + q }
	for _, shell := range []int{0, n * n} {
		for r := 0; r < c; r++ {
			for q := 0; q < c; q++ {
				addQuad(shell+idx(r, q), shell+idx(r, q+1), shell+idx(r+1, q+1), shell+idx(r+1, q))
			}
		}
	}

	ring := perimeter(n)
	for i, pi := range ring {
		pj := ring[(i+1)%len(ring)]
		addQuad(pi, pj, n*n+pj, n*n+pi)
	}

	if err := mesh.Validate(); err != nil {
		return err
	}
	b.mesh = mesh

	b.boundary = make([]s2.Point, len(ring))
	for i, pi := range ring {
		b.boundary[i] = s2.Point{Vector: unit[pi]}
	}
	b.loop = s2.LoopFromPoints(b.boundary)
	b.loop.Normalize()
	return nil
}

// grid fills the (c+1)×(c+1) lon/lat index map: the four corner edges
// first, then geodesic rows linking the left edge to the right edge.
func (b *BBox) grid(g Geodesy) ([][]LonLat, error) {
	c := b.C
	top, err := g.Points(b.Corners[0].Lon, b.Corners[0].Lat, b.Corners[1].Lon, b.Corners[1].Lat, c+1)
	if err != nil {
		return nil, errors.Wrap(err, "bbox: top edge")
	}
	bottom, err := g.Points(b.Corners[3].Lon, b.Corners[3].Lat, b.Corners[2].Lon, b.Corners[2].Lat, c+1)
	if err != nil {
		return nil, errors.Wrap(err, "bbox: bottom edge")
	}
	left, err := g.Points(b.Corners[0].Lon, b.Corners[0].Lat, b.Corners[3].Lon, b.Corners[3].Lat, c+1)
	if err != nil {
		return nil, errors.Wrap(err, "bbox: left edge")
	}
	right, err := g.Points(b.Corners[1].Lon, b.Corners[1].Lat, b.Corners[2].Lon, b.Corners[2].Lat, c+1)
	if err != nil {
		return nil, errors.Wrap(err, "bbox: right edge")
	}

	grid := make([][]LonLat, c+1)
	grid[0] = top
	grid[c] = bottom
	for r := 1; r < c; r++ {
		row, err := g.Points(left[r].Lon, left[r].Lat, right[r].Lon, right[r].Lat, c+1)
		if err != nil {
			return nil, errors.Wrapf(err, "bbox: row %d", r)
		}
		grid[r] = row
	}
	return grid, nil
}

// perimeter returns the boundary node indices of an n×n grid in ring order.
func perimeter(n int) []int {
	ring := make([]int, 0, 4*(n-1))
	for q := 0; q < n-1; q++ {
		ring = append(ring, q)
	}
	for r := 0; r < n-1; r++ {
		ring = append(ring, r*n+n-1)
	}
	for q := n - 1; q > 0; q-- {
		ring = append(ring, (n-1)*n+q)
	}
	for r := n - 1; r > 0; r-- {
		ring = append(ring, r*n)
	}
	return ring
}

// Mesh returns the double-shell bounding-box solid.
func (b *BBox) Mesh() *s2geomesh.Mesh {
	return b.mesh
}

// Enclosed classifies each lon/lat position as inside or outside the
// region. Points touching the boundary count as inside.
func (b *BBox) Enclosed(lons, lats []float64) ([]bool, error) {
	if len(lons) != len(lats) {
		return nil, errors.Errorf("bbox: %d longitudes mismatch %d latitudes", len(lons), len(lats))
	}
	out := make([]bool, len(lons))
	for i := range lons {
		p := s2.PointFromLatLng(s2.LatLngFromDegrees(lats[i], lons[i]))
		out[i] = b.contains(p)
	}
	return out, nil
}

// EnclosedCells returns the cell-id set of the surface's faces whose
// vertices all lie inside the region, keyed by the surface's identity array
// when present so the result can feed ExtractCells directly.
func (b *BBox) EnclosedCells(m *s2geomesh.Mesh) map[int]struct{} {
	inside := make([]bool, m.NumPoints())
	for i, p := range m.Points {
		inside[i] = b.contains(s2.Point{Vector: p.Normalize()})
	}

	ids := make(map[int]struct{})
	for fi := 0; fi < m.NumFaces(); fi++ {
		all := true
		for _, vi := range m.FaceVertices[m.FaceOffsets[fi]:m.FaceOffsets[fi+1]] {
			if !inside[vi] {
				all = false
				break
			}
		}
		if !all {
			continue
		}
		id := fi
		if m.CellIDs != nil {
			id = m.CellIDs[fi]
		}
		ids[id] = struct{}{}
	}
	return ids
}

// contains reports whether the unit point is inside the region or within
// the boundary tolerance of its edge.
func (b *BBox) contains(p s2.Point) bool {
	if b.loop.ContainsPoint(p) {
		return true
	}
	for i, a := range b.boundary {
		c := b.boundary[(i+1)%len(b.boundary)]
		if s2.DistanceFromSegment(p, a, c) <= boundaryTol {
			return true
		}
	}
	return false
}
