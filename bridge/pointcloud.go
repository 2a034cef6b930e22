// Copyright (c) 2026 Andrey Kriulin
// Licensed under the MIT License.
// See the LICENSE file in the project root for full license text.

package bridge

import (
	"github.com/golang/geo/r3"
	"github.com/markus-wa/quickhull-go/v2"
	"github.com/pkg/errors"

	"github.com/2dChan/s2geomesh"
	"github.com/2dChan/s2geomesh/coords"
)

const defaultHullEps = 1e-12

// PointCloud describes scattered lon/lat sites with no connectivity. Build
// triangulates them into a closed triangle mesh via the convex hull of the
// unit-sphere points, which on a sphere is the Delaunay triangulation of the
// sites.
type PointCloud struct {
	Lons, Lats []float64

	// Eps is the quickhull distance tolerance; zero selects the default.
	Eps float64

	Name string
	Data []float64

	Radius float64
	CRS    string
}

// Build validates the sites and constructs the triangulated mesh.
func (p PointCloud) Build() (*s2geomesh.Mesh, error) {
	if len(p.Lons) != len(p.Lats) {
		return nil, errors.Errorf("pointcloud: %d longitudes mismatch %d latitudes",
			len(p.Lons), len(p.Lats))
	}
	if len(p.Lons) < 4 {
		return nil, errors.Errorf("pointcloud: insufficient sites for triangulation (minimum 4 required), got %d",
			len(p.Lons))
	}
	eps := p.Eps
	if eps == 0 {
		eps = defaultHullEps
	}
	if eps < 0 {
		return nil, errors.Errorf("pointcloud: eps %v must be positive", eps)
	}

	lons := coords.WrapAll(p.Lons, coords.DefaultBase, coords.DefaultPeriod)
	unit := coords.ToXYZ(lons, p.Lats, 1)

	qh := new(quickhull.QuickHull)
	ch := qh.ConvexHull(unit, true, true, eps)
	if len(ch.Indices)%3 != 0 {
		return nil, errors.New("pointcloud: inconsistent number of indices returned from QuickHull")
	}

	points := unit
	if r := radiusOrDefault(p.Radius); r != 1 {
		points = make([]r3.Vector, len(unit))
		for i, v := range unit {
			points[i] = v.Mul(r)
		}
	}

	numTriangles := len(ch.Indices) / 3
	faceVertices := make([]int, 0, len(ch.Indices))
	faceOffsets := make([]int, 1, numTriangles+1)
	for t := 0; t < numTriangles; t++ {
		tri := [3]int{ch.Indices[3*t], ch.Indices[3*t+1], ch.Indices[3*t+2]}
		orientOutward(&tri, unit)
		faceVertices = append(faceVertices, tri[0], tri[1], tri[2])
		faceOffsets = append(faceOffsets, len(faceVertices))
	}

	return assemble(points, faceVertices, faceOffsets, meta{
		name: p.Name, data: p.Data, radius: p.Radius, crs: p.CRS,
	})
}

// orientOutward swaps two vertices if needed so the triangle winds CCW when
// looking out of the sphere.
func orientOutward(t *[3]int, v []r3.Vector) {
	p0, p1, p2 := v[t[0]], v[t[1]], v[t[2]]
	norm := p1.Sub(p0).Cross(p2.Sub(p0))
	if norm.Dot(p0) < 0 {
		t[1], t[2] = t[2], t[1]
	}
}
