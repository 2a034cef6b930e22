// Copyright (c) 2026 Andrey Kriulin
// Licensed under the MIT License.
// See the LICENSE file in the project root for full license text.

package s2geomesh

import (
	"math"

	"github.com/golang/geo/r3"
)

// Clean returns a copy of the mesh with coincident points merged and
// degenerate faces dropped. Two points are coincident when they agree within
// a fixed coordinate quantum; point data and identity from the first point
// to declare a location win. Faces that collapse below three distinct
// vertices, repeat a vertex, or enclose zero area after merging are removed
// together with their cell data.
func (m *Mesh) Clean() *Mesh {
	out := &Mesh{
		Radius:            m.Radius,
		CRS:               m.CRS,
		Resolution:        m.Resolution,
		ActiveScalars:     m.ActiveScalars,
		ActiveAssociation: m.ActiveAssociation,
		LineVertices:      append([]int(nil), m.LineVertices...),
		LineOffsets:       append([]int(nil), m.LineOffsets...),
		FaceOffsets:       []int{0},
	}
	if len(m.PointData) > 0 {
		out.PointData = make(map[string][]float64, len(m.PointData))
	}
	if len(m.CellData) > 0 {
		out.CellData = make(map[string][]float64, len(m.CellData))
	}

	// First-wins point merge keyed on quantized coordinates.
	remap := make([]int, m.NumPoints())
	seen := make(map[[3]int64]int, m.NumPoints())
	for i, p := range m.Points {
		key := quantize(p)
		ni, ok := seen[key]
		if !ok {
			ni = len(out.Points)
			seen[key] = ni
			out.Points = append(out.Points, p)
			if m.PointIDs != nil {
				out.PointIDs = append(out.PointIDs, m.PointIDs[i])
			}
			for name, data := range m.PointData {
				out.PointData[name] = append(out.PointData[name], data[i])
			}
		}
		remap[i] = ni
	}

	for fi := 0; fi < m.NumFaces(); fi++ {
		vs := m.FaceVertices[m.FaceOffsets[fi]:m.FaceOffsets[fi+1]]
		mapped := make([]int, 0, len(vs))
		for _, vi := range vs {
			ni := remap[vi]
			// Consecutive duplicates collapse; a non-adjacent repeat marks
			// the face degenerate below.
			if len(mapped) > 0 && mapped[len(mapped)-1] == ni {
				continue
			}
			mapped = append(mapped, ni)
		}
		if len(mapped) > 1 && mapped[0] == mapped[len(mapped)-1] {
			mapped = mapped[:len(mapped)-1]
		}
		if degenerateLoop(out.Points, mapped) {
			continue
		}
		out.FaceVertices = append(out.FaceVertices, mapped...)
		out.FaceOffsets = append(out.FaceOffsets, len(out.FaceVertices))
		if m.CellIDs != nil {
			out.CellIDs = append(out.CellIDs, m.CellIDs[fi])
		}
		for name, data := range m.CellData {
			out.CellData[name] = append(out.CellData[name], data[fi])
		}
	}
	if len(m.LineOffsets) > 0 {
		for i, v := range out.LineVertices {
			out.LineVertices[i] = remap[v]
		}
	}
	return out
}

func quantize(p r3.Vector) [3]int64 {
	return [3]int64{
		int64(math.Round(p.X / coincidentEps)),
		int64(math.Round(p.Y / coincidentEps)),
		int64(math.Round(p.Z / coincidentEps)),
	}
}

func degenerateLoop(points []r3.Vector, vs []int) bool {
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
	n := newellNormal(points, vs)
	return n.Dot(n) < degenerateAreaEps
}
