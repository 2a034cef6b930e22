// Copyright (c) 2026 Andrey Kriulin
// Licensed under the MIT License.
// See the LICENSE file in the project root for full license text.

package s2geomesh

import (
	"github.com/pkg/errors"
)

// CombineOptions control attribute handling during Combine.
type CombineOptions struct {
	// Data selects whether attribute arrays common to all inputs are carried
	// over; attributes missing from any input are dropped.
	Data bool
	// Clean merges coincident points and drops degenerate faces after the
	// inputs have been concatenated and re-indexed.
	Clean bool
}

// CombineOption mutates CombineOptions.
type CombineOption func(*CombineOptions)

// WithoutData disables carrying attribute arrays onto the combined mesh.
func WithoutData() CombineOption {
	return func(o *CombineOptions) {
		o.Data = false
	}
}

// WithClean enables coincident-point merging on the combined mesh.
func WithClean() CombineOption {
	return func(o *CombineOptions) {
		o.Clean = true
	}
}

// Combine merges the meshes into one, concatenating point and face arrays
// and offsetting each mesh's face indices by the running point total. Every
// input must be face-bearing with at least one face; line-only or empty
// meshes are rejected with an error naming the offending input. No overlap
// detection is performed; coincident points across inputs survive unless
// cleaning is requested.
func Combine(meshes []*Mesh, setters ...CombineOption) (*Mesh, error) {
	opts := CombineOptions{Data: true}
	for _, set := range setters {
		set(&opts)
	}

	if len(meshes) == 0 {
		return nil, errors.New("combine: at least one mesh is required")
	}
	for i, m := range meshes {
		if m == nil {
			return nil, errors.Errorf("combine: mesh %d is nil", i)
		}
		if m.NumLines() > 0 && m.NumFaces() == 0 {
			return nil, errors.Errorf("combine: mesh %d is line-only, only face meshes can be combined", i)
		}
		if m.NumFaces() == 0 {
			return nil, errors.Errorf("combine: mesh %d has no faces", i)
		}
	}

	out := &Mesh{
		Radius:      meshes[0].Radius,
		CRS:         meshes[0].CRS,
		Resolution:  meshes[0].Resolution,
		FaceOffsets: []int{0},
	}

	carryIDs := true
	for _, m := range meshes {
		if m.CellIDs == nil || m.PointIDs == nil {
			carryIDs = false
			break
		}
	}

	offset := 0
	for _, m := range meshes {
		out.Points = append(out.Points, m.Points...)
		for fi := 0; fi < m.NumFaces(); fi++ {
			// Only vertex index values shift; the per-face vertex count is
			// preserved by the offsets array.
			for _, vi := range m.FaceVertices[m.FaceOffsets[fi]:m.FaceOffsets[fi+1]] {
				out.FaceVertices = append(out.FaceVertices, vi+offset)
			}
			out.FaceOffsets = append(out.FaceOffsets, len(out.FaceVertices))
		}
		if carryIDs {
			out.CellIDs = append(out.CellIDs, m.CellIDs...)
			out.PointIDs = append(out.PointIDs, m.PointIDs...)
		}
		offset += m.NumPoints()
	}

	if opts.Data {
		out.PointData = commonData(meshes, func(m *Mesh) map[string][]float64 { return m.PointData })
		out.CellData = commonData(meshes, func(m *Mesh) map[string][]float64 { return m.CellData })
		out.ActiveScalars, out.ActiveAssociation = pickActiveScalars(meshes, out)
	}

	if opts.Clean {
		out = out.Clean()
	}
	return out, nil
}

// commonData concatenates the attribute arrays whose names appear on every
// input mesh, in input order. Arrays present on only some inputs are
// dropped.
func commonData(meshes []*Mesh, data func(*Mesh) map[string][]float64) map[string][]float64 {
	common := make(map[string]struct{}, len(data(meshes[0])))
	for name := range data(meshes[0]) {
		common[name] = struct{}{}
	}
	for _, m := range meshes[1:] {
		for name := range common {
			if _, ok := data(m)[name]; !ok {
				delete(common, name)
			}
		}
	}
	if len(common) == 0 {
		return nil
	}
	out := make(map[string][]float64, len(common))
	for name := range common {
		for _, m := range meshes {
			out[name] = append(out[name], data(m)[name]...)
		}
	}
	return out
}

// pickActiveScalars selects the first input's active-scalar array that
// survived the common-name intersection, preferring the cell association
// over the point association when the same mesh offers both.
func pickActiveScalars(meshes []*Mesh, combined *Mesh) (string, Association) {
	for _, m := range meshes {
		if m.ActiveScalars == "" {
			continue
		}
		if _, ok := combined.CellData[m.ActiveScalars]; ok {
			return m.ActiveScalars, AssociationCell
		}
		if _, ok := combined.PointData[m.ActiveScalars]; ok {
			return m.ActiveScalars, AssociationPoint
		}
	}
	return "", AssociationCell
}
