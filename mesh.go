// Copyright (c) 2026 Andrey Kriulin
// Licensed under the MIT License.
// See the LICENSE file in the project root for full license text.

// Package s2geomesh provides a polygon-surface mesh data structure for
// geolocated data on the S2 sphere, together with mesh combination and
// validation operations. Points are geocentric xyz on a unit-radius sphere
// by convention; faces are variable-length polygons stored in CSR-style
// index arrays.
package s2geomesh

import (
	"math"
	"strings"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"

	"github.com/2dChan/s2geomesh/coords"
)

const (
	// DefaultRadius is the nominal sphere radius of mesh points.
	DefaultRadius = 1.0

	// coincidentEps is the coordinate quantum below which two points are
	// considered coincident by Clean.
	coincidentEps = 1e-8

	// degenerateAreaEps is the squared-norm threshold below which a face
	// normal is considered zero area.
	degenerateAreaEps = 1e-18
)

// Association identifies whether a named attribute array is attached to mesh
// cells or mesh points.
type Association int

const (
	AssociationCell Association = iota
	AssociationPoint
)

// String returns the canonical lower-case name of the association.
func (a Association) String() string {
	switch a {
	case AssociationCell:
		return "cell"
	case AssociationPoint:
		return "point"
	}
	return "unknown"
}

// ParseAssociation parses a case-insensitive association name.
// It returns an error listing the legal values for anything else.
func ParseAssociation(s string) (Association, error) {
	switch strings.ToLower(s) {
	case "cell":
		return AssociationCell, nil
	case "point":
		return AssociationPoint, nil
	}
	return 0, errors.Errorf("invalid association %q: expected one of [cell point]", s)
}

// Mesh is a polygon surface: an ordered sequence of geocentric points and a
// face list, each face a variable-length ordered sequence of point indices.
// FaceVertices/FaceOffsets form a CSR layout: face i owns
// FaceVertices[FaceOffsets[i]:FaceOffsets[i+1]]. Line-only meshes (coastline
// geometry) use the parallel LineVertices/LineOffsets arrays instead.
type Mesh struct {
	Points []r3.Vector

	FaceVertices []int
	FaceOffsets  []int

	LineVertices []int
	LineOffsets  []int

	// PointData and CellData are named attribute arrays whose lengths must
	// equal NumPoints and NumFaces respectively. NaN entries act as masks.
	PointData map[string][]float64
	CellData  map[string][]float64

	// CellIDs and PointIDs record provenance indices assigned by Tagged and
	// preserved through slicing and combination.
	CellIDs  []int
	PointIDs []int

	Radius     float64
	CRS        string
	Resolution string

	ActiveScalars     string
	ActiveAssociation Association
}

// NumPoints returns the number of points in the mesh.
func (m *Mesh) NumPoints() int {
	return len(m.Points)
}

// NumFaces returns the number of polygon faces in the mesh.
func (m *Mesh) NumFaces() int {
	if len(m.FaceOffsets) == 0 {
		return 0
	}
	return len(m.FaceOffsets) - 1
}

// NumLines returns the number of polylines in the mesh.
func (m *Mesh) NumLines() int {
	if len(m.LineOffsets) == 0 {
		return 0
	}
	return len(m.LineOffsets) - 1
}

// Face returns a view of the face at the specified index.
// It returns an error if the index is out of range.
func (m *Mesh) Face(i int) (Face, error) {
	if i < 0 || i >= m.NumFaces() {
		return Face{}, errors.Errorf("Face: index %d out of range [0 %d)", i, m.NumFaces())
	}
	return Face{idx: i, m: m}, nil
}

// Face is a view structure for accessing one polygon of a Mesh.
type Face struct {
	idx int
	m   *Mesh
}

// Index returns the position of the face in the mesh's face list.
func (f Face) Index() int {
	return f.idx
}

// NumVertices returns the number of vertices in the face.
func (f Face) NumVertices() int {
	return f.m.FaceOffsets[f.idx+1] - f.m.FaceOffsets[f.idx]
}

// VertexIndices returns the indices of the face's vertices in the mesh's
// Points, in boundary order.
func (f Face) VertexIndices() []int {
	return f.m.FaceVertices[f.m.FaceOffsets[f.idx]:f.m.FaceOffsets[f.idx+1]]
}

// Vertex returns the vertex at the specified index within the face.
// It returns an error if the index is out of range.
func (f Face) Vertex(i int) (r3.Vector, error) {
	start := f.m.FaceOffsets[f.idx]
	end := f.m.FaceOffsets[f.idx+1]
	if i < 0 || i >= end-start {
		return r3.Vector{}, errors.Errorf("Vertex: index %d out of range [0 %d)", i, end-start)
	}
	return f.m.Points[f.m.FaceVertices[start+i]], nil
}

// Normal returns the face's Newell normal. Its norm is twice the enclosed
// planar area, so a near-zero norm marks a degenerate face.
func (f Face) Normal() r3.Vector {
	return newellNormal(f.m.Points, f.VertexIndices())
}

func newellNormal(points []r3.Vector, vs []int) r3.Vector {
	var n r3.Vector
	for i, vi := range vs {
		a := points[vi]
		b := points[vs[(i+1)%len(vs)]]
		n.X += (a.Y - b.Y) * (a.Z + b.Z)
		n.Y += (a.Z - b.Z) * (a.X + b.X)
		n.Z += (a.X - b.X) * (a.Y + b.Y)
	}
	return n
}

// Degenerate reports whether the face repeats a vertex or has zero area.
func (f Face) Degenerate() bool {
	vs := f.VertexIndices()
	if len(vs) < 3 {
		return true
	}
	seen := make(map[int]struct{}, len(vs))
	for _, vi := range vs {
		if _, ok := seen[vi]; ok {
			return true
		}
		seen[vi] = struct{}{}
	}
	n := f.Normal()
	return n.Dot(n) < degenerateAreaEps
}

// Clone returns a deep copy of the mesh. Mutating the copy never affects
// the receiver.
func (m *Mesh) Clone() *Mesh {
	c := &Mesh{
		Points:            append([]r3.Vector(nil), m.Points...),
		FaceVertices:      append([]int(nil), m.FaceVertices...),
		FaceOffsets:       append([]int(nil), m.FaceOffsets...),
		LineVertices:      append([]int(nil), m.LineVertices...),
		LineOffsets:       append([]int(nil), m.LineOffsets...),
		CellIDs:           append([]int(nil), m.CellIDs...),
		PointIDs:          append([]int(nil), m.PointIDs...),
		Radius:            m.Radius,
		CRS:               m.CRS,
		Resolution:        m.Resolution,
		ActiveScalars:     m.ActiveScalars,
		ActiveAssociation: m.ActiveAssociation,
	}
	if m.PointData != nil {
		c.PointData = make(map[string][]float64, len(m.PointData))
		for name, data := range m.PointData {
			c.PointData[name] = append([]float64(nil), data...)
		}
	}
	if m.CellData != nil {
		c.CellData = make(map[string][]float64, len(m.CellData))
		for name, data := range m.CellData {
			c.CellData[name] = append([]float64(nil), data...)
		}
	}
	return c
}

// Tagged returns a clone of the mesh carrying fresh running-integer identity
// arrays over cells and points. The receiver is left unmodified; provenance
// of the clone's cells survives extraction and combination.
func (m *Mesh) Tagged() *Mesh {
	c := m.Clone()
	c.CellIDs = make([]int, c.NumFaces())
	for i := range c.CellIDs {
		c.CellIDs[i] = i
	}
	c.PointIDs = make([]int, c.NumPoints())
	for i := range c.PointIDs {
		c.PointIDs[i] = i
	}
	return c
}

// LonLats projects the mesh's points back to longitude/latitude degrees on
// the mesh's sphere radius.
func (m *Mesh) LonLats() (lons, lats []float64) {
	radius := m.Radius
	if radius == 0 {
		radius = DefaultRadius
	}
	lons, lats, _ = coords.ToLonLat(m.Points, radius)
	return lons, lats
}

// Bounds returns the axis-aligned bounding box of the mesh's points.
// A zero-point mesh yields zero vectors.
func (m *Mesh) Bounds() (min, max r3.Vector) {
	if len(m.Points) == 0 {
		return r3.Vector{}, r3.Vector{}
	}
	min, max = m.Points[0], m.Points[0]
	for _, p := range m.Points[1:] {
		min.X = math.Min(min.X, p.X)
		min.Y = math.Min(min.Y, p.Y)
		min.Z = math.Min(min.Z, p.Z)
		max.X = math.Max(max.X, p.X)
		max.Y = math.Max(max.Y, p.Y)
		max.Z = math.Max(max.Z, p.Z)
	}
	return min, max
}

// Validate checks structural consistency: monotonic CSR offsets, face and
// line indices within the point range, and attribute array lengths matching
// point/cell counts. It reports the first violation found.
func (m *Mesh) Validate() error {
	if err := validateCSR("face", m.FaceVertices, m.FaceOffsets, m.NumPoints()); err != nil {
		return err
	}
	if err := validateCSR("line", m.LineVertices, m.LineOffsets, m.NumPoints()); err != nil {
		return err
	}
	for name, data := range m.PointData {
		if len(data) != m.NumPoints() {
			return errors.Errorf("point data %q has %d values, want %d (one per point)",
				name, len(data), m.NumPoints())
		}
	}
	for name, data := range m.CellData {
		if len(data) != m.NumFaces() {
			return errors.Errorf("cell data %q has %d values, want %d (one per face)",
				name, len(data), m.NumFaces())
		}
	}
	if m.CellIDs != nil && len(m.CellIDs) != m.NumFaces() {
		return errors.Errorf("cell identity array has %d entries, want %d", len(m.CellIDs), m.NumFaces())
	}
	if m.PointIDs != nil && len(m.PointIDs) != m.NumPoints() {
		return errors.Errorf("point identity array has %d entries, want %d", len(m.PointIDs), m.NumPoints())
	}
	return nil
}

func validateCSR(kind string, vertices, offsets []int, numPoints int) error {
	if len(offsets) == 0 {
		if len(vertices) != 0 {
			return errors.Errorf("%s vertices present without offsets", kind)
		}
		return nil
	}
	if offsets[0] != 0 || offsets[len(offsets)-1] != len(vertices) {
		return errors.Errorf("%s offsets span [%d %d], want [0 %d]",
			kind, offsets[0], offsets[len(offsets)-1], len(vertices))
	}
	for i := 1; i < len(offsets); i++ {
		if offsets[i] < offsets[i-1] {
			return errors.Errorf("%s offsets decrease at index %d", kind, i)
		}
	}
	for i, v := range vertices {
		if v < 0 || v >= numPoints {
			return errors.Errorf("%s vertex %d references point %d, want in [0 %d)",
				kind, i, v, numPoints)
		}
	}
	return nil
}

// ExtractCells returns a new mesh containing the faces whose cell-id (from
// the identity array if present, positional index otherwise) appears in ids.
// Referenced points are compacted and remapped; attribute and identity
// arrays follow their cells and points. An empty id set yields an empty
// mesh, which is a valid outcome.
func (m *Mesh) ExtractCells(ids map[int]struct{}) *Mesh {
	out := &Mesh{
		Radius:            m.Radius,
		CRS:               m.CRS,
		Resolution:        m.Resolution,
		ActiveScalars:     m.ActiveScalars,
		ActiveAssociation: m.ActiveAssociation,
		FaceOffsets:       []int{0},
	}
	if len(m.PointData) > 0 {
		out.PointData = make(map[string][]float64, len(m.PointData))
	}
	if len(m.CellData) > 0 {
		out.CellData = make(map[string][]float64, len(m.CellData))
	}

	pointMap := make(map[int]int)
	for fi := 0; fi < m.NumFaces(); fi++ {
		id := fi
		if m.CellIDs != nil {
			id = m.CellIDs[fi]
		}
		if _, ok := ids[id]; !ok {
			continue
		}
		for _, vi := range m.FaceVertices[m.FaceOffsets[fi]:m.FaceOffsets[fi+1]] {
			ni, ok := pointMap[vi]
			if !ok {
				ni = len(out.Points)
				pointMap[vi] = ni
				out.Points = append(out.Points, m.Points[vi])
				if m.PointIDs != nil {
					out.PointIDs = append(out.PointIDs, m.PointIDs[vi])
				}
				for name, data := range m.PointData {
					out.PointData[name] = append(out.PointData[name], data[vi])
				}
			}
			out.FaceVertices = append(out.FaceVertices, ni)
		}
		out.FaceOffsets = append(out.FaceOffsets, len(out.FaceVertices))
		if m.CellIDs != nil {
			out.CellIDs = append(out.CellIDs, id)
		}
		for name, data := range m.CellData {
			out.CellData[name] = append(out.CellData[name], data[fi])
		}
	}
	return out
}
