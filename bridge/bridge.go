// Copyright (c) 2026 Andrey Kriulin
// Licensed under the MIT License.
// See the LICENSE file in the project root for full license text.

// Package bridge constructs s2geomesh meshes from geolocated source data.
// Each supported input layout (unstructured connectivity, rectilinear
// edges, curvilinear corners, scattered point clouds) is described by its
// own variant type, validated independently, and converges on a single mesh
// assembly step.
package bridge

import (
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"

	"github.com/2dChan/s2geomesh"
	"github.com/2dChan/s2geomesh/coords"
)

// Input is a mesh-construction description. Build validates the description
// and emits the mesh.
type Input interface {
	Build() (*s2geomesh.Mesh, error)
}

// Connectivity is an M×N face-to-node index array. A masked entry is
// excluded from its face's boundary, so rows of mixed arity (triangles among
// quads) are expressed by masking the padding. StartIndex declares whether
// index values are 0- or 1-based.
type Connectivity struct {
	Indices    []int
	Rows, Cols int
	Mask       []bool
	StartIndex int
}

func (c Connectivity) validate() error {
	if c.Rows <= 0 || c.Cols <= 0 {
		return errors.Errorf("connectivity shape %dx%d is empty", c.Rows, c.Cols)
	}
	if len(c.Indices) != c.Rows*c.Cols {
		return errors.Errorf("connectivity has %d indices, want %d (%dx%d)",
			len(c.Indices), c.Rows*c.Cols, c.Rows, c.Cols)
	}
	if c.Mask != nil && len(c.Mask) != len(c.Indices) {
		return errors.Errorf("connectivity mask has %d entries, want %d",
			len(c.Mask), len(c.Indices))
	}
	if c.StartIndex != 0 && c.StartIndex != 1 {
		return errors.Errorf("connectivity start index %d invalid: expected one of [0 1]",
			c.StartIndex)
	}
	return nil
}

// Unstructured describes a mesh by flat node coordinate arrays plus a
// face-to-node connectivity array. Longitudes are wrapped onto the canonical
// interval before conversion to geocentric xyz.
type Unstructured struct {
	Lons, Lats   []float64
	Connectivity Connectivity

	// Name and Data optionally attach an attribute array sized to either the
	// face count or the point count.
	Name string
	Data []float64

	Radius float64
	CRS    string
}

// Build validates the description and constructs the mesh.
func (u Unstructured) Build() (*s2geomesh.Mesh, error) {
	if len(u.Lons) != len(u.Lats) {
		return nil, errors.Errorf("unstructured: %d longitudes mismatch %d latitudes",
			len(u.Lons), len(u.Lats))
	}
	if err := u.Connectivity.validate(); err != nil {
		return nil, errors.Wrap(err, "unstructured")
	}

	lons := coords.WrapAll(u.Lons, coords.DefaultBase, coords.DefaultPeriod)
	points := coords.ToXYZ(lons, u.Lats, radiusOrDefault(u.Radius))

	c := u.Connectivity
	faceVertices := make([]int, 0, len(c.Indices))
	faceOffsets := make([]int, 1, c.Rows+1)
	for r := 0; r < c.Rows; r++ {
		start := len(faceVertices)
		for j := 0; j < c.Cols; j++ {
			k := r*c.Cols + j
			if c.Mask != nil && c.Mask[k] {
				continue
			}
			vi := c.Indices[k] - c.StartIndex
			if vi < 0 || vi >= len(points) {
				return nil, errors.Errorf("unstructured: face %d references node %d, want in [0 %d)",
					r, vi, len(points))
			}
			faceVertices = append(faceVertices, vi)
		}
		if len(faceVertices)-start < 3 {
			return nil, errors.Errorf("unstructured: face %d has %d vertices, want at least 3",
				r, len(faceVertices)-start)
		}
		faceOffsets = append(faceOffsets, len(faceVertices))
	}

	return assemble(points, faceVertices, faceOffsets, meta{
		name: u.Name, data: u.Data, radius: u.Radius, crs: u.CRS,
	})
}

// Structured1D describes a rectilinear grid by its cell-edge coordinates
// (Nx+1 longitudes, Ny+1 latitudes), producing Nx×Ny quads that share the
// points at grid-line intersections.
type Structured1D struct {
	LonEdges, LatEdges []float64

	Name string
	Data []float64

	Radius float64
	CRS    string
}

// Build validates the edges and constructs the grid mesh.
func (s Structured1D) Build() (*s2geomesh.Mesh, error) {
	if len(s.LonEdges) < 2 || len(s.LatEdges) < 2 {
		return nil, errors.Errorf("structured1d: need at least 2 edges per axis, got %d lon and %d lat",
			len(s.LonEdges), len(s.LatEdges))
	}
	if err := edgesSpan("longitude", s.LonEdges); err != nil {
		return nil, errors.Wrap(err, "structured1d")
	}
	if err := edgesSpan("latitude", s.LatEdges); err != nil {
		return nil, errors.Wrap(err, "structured1d")
	}
	nx := len(s.LonEdges) - 1
	ny := len(s.LatEdges) - 1

	// Conversion to xyz is 2π-periodic in longitude, so edge values need no
	// wrapping here; only the meridian slicer cares about the seam.
	lons := make([]float64, 0, (nx+1)*(ny+1))
	lats := make([]float64, 0, (nx+1)*(ny+1))
	for _, lat := range s.LatEdges {
		for _, lon := range s.LonEdges {
			lons = append(lons, lon)
			lats = append(lats, lat)
		}
	}
	points := coords.ToXYZ(lons, lats, radiusOrDefault(s.Radius))

	faceVertices := make([]int, 0, 4*nx*ny)
	faceOffsets := make([]int, 1, nx*ny+1)
	for r := 0; r < ny; r++ {
		for q := 0; q < nx; q++ {
			base := r*(nx+1) + q
			faceVertices = append(faceVertices,
				base, base+1, base+nx+2, base+nx+1)
			faceOffsets = append(faceOffsets, len(faceVertices))
		}
	}

	return assemble(points, faceVertices, faceOffsets, meta{
		name: s.Name, data: s.Data, radius: s.Radius, crs: s.CRS,
	})
}

// Structured2D describes a curvilinear grid by 2-D cell-corner coordinate
// arrays of shape (Ny+1)×(Nx+1). Each cell owns its own four corner points;
// adjacent cells do not share point indices unless the mesh is cleaned
// downstream.
type Structured2D struct {
	Lons, Lats [][]float64

	Name string
	Data []float64

	Radius float64
	CRS    string
}

// Build validates the corner arrays and constructs the quad mesh.
func (s Structured2D) Build() (*s2geomesh.Mesh, error) {
	if err := rectangular("longitude", s.Lons); err != nil {
		return nil, errors.Wrap(err, "structured2d")
	}
	if err := rectangular("latitude", s.Lats); err != nil {
		return nil, errors.Wrap(err, "structured2d")
	}
	if len(s.Lons) != len(s.Lats) || len(s.Lons[0]) != len(s.Lats[0]) {
		return nil, errors.Errorf("structured2d: longitude shape %dx%d mismatches latitude shape %dx%d",
			len(s.Lons), len(s.Lons[0]), len(s.Lats), len(s.Lats[0]))
	}
	if len(s.Lons) < 2 || len(s.Lons[0]) < 2 {
		return nil, errors.Errorf("structured2d: corner shape %dx%d describes no cells",
			len(s.Lons), len(s.Lons[0]))
	}
	ny := len(s.Lons) - 1
	nx := len(s.Lons[0]) - 1

	lons := make([]float64, 0, 4*nx*ny)
	lats := make([]float64, 0, 4*nx*ny)
	faceVertices := make([]int, 0, 4*nx*ny)
	faceOffsets := make([]int, 1, nx*ny+1)
	for r := 0; r < ny; r++ {
		for q := 0; q < nx; q++ {
			lons = append(lons, s.Lons[r][q], s.Lons[r][q+1], s.Lons[r+1][q+1], s.Lons[r+1][q])
			lats = append(lats, s.Lats[r][q], s.Lats[r][q+1], s.Lats[r+1][q+1], s.Lats[r+1][q])
			base := len(faceVertices)
			faceVertices = append(faceVertices, base, base+1, base+2, base+3)
			faceOffsets = append(faceOffsets, len(faceVertices))
		}
	}
	points := coords.ToXYZ(lons, lats, radiusOrDefault(s.Radius))

	return assemble(points, faceVertices, faceOffsets, meta{
		name: s.Name, data: s.Data, radius: s.Radius, crs: s.CRS,
	})
}

type meta struct {
	name   string
	data   []float64
	radius float64
	crs    string
}

// assemble is the single construction step all input variants converge on.
// It attaches the optional attribute array by matching its length against
// the face count first, then the point count, and validates the result.
func assemble(points []r3.Vector, faceVertices, faceOffsets []int, m meta) (*s2geomesh.Mesh, error) {
	mesh := &s2geomesh.Mesh{
		Points:       points,
		FaceVertices: faceVertices,
		FaceOffsets:  faceOffsets,
		Radius:       radiusOrDefault(m.radius),
		CRS:          m.crs,
	}
	if m.data != nil {
		switch len(m.data) {
		case mesh.NumFaces():
			mesh.CellData = map[string][]float64{m.name: m.data}
			mesh.ActiveScalars = m.name
			mesh.ActiveAssociation = s2geomesh.AssociationCell
		case mesh.NumPoints():
			mesh.PointData = map[string][]float64{m.name: m.data}
			mesh.ActiveScalars = m.name
			mesh.ActiveAssociation = s2geomesh.AssociationPoint
		default:
			return nil, errors.Errorf("data %q has %d values, want %d (per face) or %d (per point)",
				m.name, len(m.data), mesh.NumFaces(), mesh.NumPoints())
		}
	}
	if err := mesh.Validate(); err != nil {
		return nil, err
	}
	return mesh, nil
}

func radiusOrDefault(r float64) float64 {
	if r == 0 {
		return s2geomesh.DefaultRadius
	}
	return r
}

func edgesSpan(axis string, edges []float64) error {
	for i := 1; i < len(edges); i++ {
		if edges[i] == edges[i-1] {
			return errors.Errorf("%s edges %d and %d are equal (%v): zero-span cell", axis, i-1, i, edges[i])
		}
	}
	return nil
}

func rectangular(axis string, rows [][]float64) error {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return errors.Errorf("%s corner array is empty", axis)
	}
	for i, row := range rows[1:] {
		if len(row) != len(rows[0]) {
			return errors.Errorf("%s corner row %d has %d columns, want %d",
				axis, i+1, len(row), len(rows[0]))
		}
	}
	return nil
}
