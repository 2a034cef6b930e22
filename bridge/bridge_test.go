// Copyright (c) 2026 Andrey Kriulin
// Licensed under the MIT License.
// See the LICENSE file in the project root for full license text.

package bridge

import (
	"math"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/2dChan/s2geomesh"
	"github.com/2dChan/s2geomesh/utils"
)

func TestUnstructured_Build(t *testing.T) {
	// Four nodes around the equator plus the north pole; two triangles and
	// one quad expressed as masked rows of a 3-wide and 4-wide mix.
	u := Unstructured{
		Lons: []float64{0, 90, 180, 270, 0},
		Lats: []float64{0, 0, 0, 0, 90},
		Connectivity: Connectivity{
			Indices: []int{
				0, 1, 4, -1,
				1, 2, 4, -1,
				0, 1, 2, 3,
			},
			Rows: 3,
			Cols: 4,
			Mask: []bool{
				false, false, false, true,
				false, false, false, true,
				false, false, false, false,
			},
		},
	}
	m, err := u.Build()
	if err != nil {
		t.Fatalf("u.Build() error = %v, want nil", err)
	}
	if got := m.NumFaces(); got != 3 {
		t.Fatalf("m.NumFaces() = %v, want 3", got)
	}
	if got := m.NumPoints(); got != 5 {
		t.Errorf("m.NumPoints() = %v, want 5", got)
	}

	f0, err := m.Face(0)
	if err != nil {
		t.Fatalf("m.Face(0) error = %v, want nil", err)
	}
	if got := f0.NumVertices(); got != 3 {
		t.Errorf("m.Face(0).NumVertices() = %v, want 3 (masked quad row)", got)
	}
	f2, err := m.Face(2)
	if err != nil {
		t.Fatalf("m.Face(2) error = %v, want nil", err)
	}
	if got := f2.NumVertices(); got != 4 {
		t.Errorf("m.Face(2).NumVertices() = %v, want 4", got)
	}
	if err := m.Validate(); err != nil {
		t.Errorf("m.Validate() error = %v, want nil", err)
	}
}

func TestUnstructured_StartIndex(t *testing.T) {
	u := Unstructured{
		Lons: []float64{0, 90, 0},
		Lats: []float64{0, 0, 90},
		Connectivity: Connectivity{
			Indices:    []int{1, 2, 3},
			Rows:       1,
			Cols:       3,
			StartIndex: 1,
		},
	}
	m, err := u.Build()
	if err != nil {
		t.Fatalf("u.Build() error = %v, want nil", err)
	}
	f, err := m.Face(0)
	if err != nil {
		t.Fatalf("m.Face(0) error = %v, want nil", err)
	}
	if diff := cmp.Diff([]int{0, 1, 2}, f.VertexIndices()); diff != "" {
		t.Errorf("f.VertexIndices() mismatch (-want +got):\n%v", diff)
	}
}

func TestUnstructured_Errors(t *testing.T) {
	base := func() Unstructured {
		return Unstructured{
			Lons: []float64{0, 90, 0},
			Lats: []float64{0, 0, 90},
			Connectivity: Connectivity{
				Indices: []int{0, 1, 2},
				Rows:    1,
				Cols:    3,
			},
		}
	}
	tests := []struct {
		name    string
		mutate  func(*Unstructured)
		wantSub string
	}{
		{"lon lat mismatch", func(u *Unstructured) { u.Lats = u.Lats[:2] }, "mismatch"},
		{"bad shape", func(u *Unstructured) { u.Connectivity.Rows = 2 }, "indices"},
		{"bad mask", func(u *Unstructured) { u.Connectivity.Mask = []bool{true} }, "mask"},
		{"bad start index", func(u *Unstructured) { u.Connectivity.StartIndex = 2 }, "start index"},
		{"node out of range", func(u *Unstructured) { u.Connectivity.Indices[1] = 9 }, "references node"},
		{"face too small", func(u *Unstructured) {
			u.Connectivity.Mask = []bool{false, false, true}
		}, "at least 3"},
		{"bad data size", func(u *Unstructured) { u.Name = "d"; u.Data = []float64{1, 2} }, "want 1 (per face) or 3 (per point)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := base()
			tt.mutate(&u)
			_, err := u.Build()
			if err == nil {
				t.Fatalf("u.Build() error = nil, want non-nil")
			}
			if !strings.Contains(err.Error(), tt.wantSub) {
				t.Errorf("u.Build() error = %q, want containing %q", err, tt.wantSub)
			}
		})
	}
}

func TestUnstructured_DataAttachment(t *testing.T) {
	u := Unstructured{
		Lons: []float64{0, 90, 0},
		Lats: []float64{0, 0, 90},
		Connectivity: Connectivity{
			Indices: []int{0, 1, 2},
			Rows:    1,
			Cols:    3,
		},
		Name: "temp",
	}

	u.Data = []float64{7}
	m, err := u.Build()
	if err != nil {
		t.Fatalf("u.Build() error = %v, want nil", err)
	}
	if m.ActiveAssociation != s2geomesh.AssociationCell {
		t.Errorf("m.ActiveAssociation = %v, want %v", m.ActiveAssociation, s2geomesh.AssociationCell)
	}

	u.Data = []float64{1, 2, 3}
	m, err = u.Build()
	if err != nil {
		t.Fatalf("u.Build() error = %v, want nil", err)
	}
	if m.ActiveAssociation != s2geomesh.AssociationPoint {
		t.Errorf("m.ActiveAssociation = %v, want %v", m.ActiveAssociation, s2geomesh.AssociationPoint)
	}
	if diff := cmp.Diff([]float64{1, 2, 3}, m.PointData["temp"]); diff != "" {
		t.Errorf("m.PointData[temp] mismatch (-want +got):\n%v", diff)
	}
}

func TestStructured1D_Build(t *testing.T) {
	s := Structured1D{
		LonEdges: []float64{-180, -90, 0, 90, 180},
		LatEdges: []float64{-60, 0, 60},
	}
	m, err := s.Build()
	if err != nil {
		t.Fatalf("s.Build() error = %v, want nil", err)
	}
	if got := m.NumFaces(); got != 8 {
		t.Errorf("m.NumFaces() = %v, want 8 (4x2 grid)", got)
	}
	if got := m.NumPoints(); got != 15 {
		t.Errorf("m.NumPoints() = %v, want 15 (5x3 shared corners)", got)
	}
	if err := m.Validate(); err != nil {
		t.Errorf("m.Validate() error = %v, want nil", err)
	}

	// Adjacent cells share grid-intersection points.
	f0, _ := m.Face(0)
	f1, _ := m.Face(1)
	shared := map[int]struct{}{}
	for _, vi := range f0.VertexIndices() {
		shared[vi] = struct{}{}
	}
	cnt := 0
	for _, vi := range f1.VertexIndices() {
		if _, ok := shared[vi]; ok {
			cnt++
		}
	}
	if cnt != 2 {
		t.Errorf("adjacent faces share %v points, want 2", cnt)
	}
}

func TestStructured1D_Errors(t *testing.T) {
	tests := []struct {
		name     string
		lon, lat []float64
		wantSub  string
	}{
		{"too few lon edges", []float64{0}, []float64{0, 1}, "at least 2"},
		{"zero span lon", []float64{0, 0, 10}, []float64{0, 10}, "zero-span"},
		{"zero span lat", []float64{0, 10}, []float64{5, 5}, "zero-span"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Structured1D{LonEdges: tt.lon, LatEdges: tt.lat}.Build()
			if err == nil {
				t.Fatalf("Build() error = nil, want non-nil")
			}
			if !strings.Contains(err.Error(), tt.wantSub) {
				t.Errorf("Build() error = %q, want containing %q", err, tt.wantSub)
			}
		})
	}
}

func TestStructured2D_Build(t *testing.T) {
	s := Structured2D{
		Lons: [][]float64{
			{0, 10, 20},
			{0, 10, 20},
			{0, 10, 20},
		},
		Lats: [][]float64{
			{0, 0, 0},
			{10, 10, 10},
			{20, 20, 20},
		},
	}
	m, err := s.Build()
	if err != nil {
		t.Fatalf("s.Build() error = %v, want nil", err)
	}
	if got := m.NumFaces(); got != 4 {
		t.Errorf("m.NumFaces() = %v, want 4 (2x2 grid)", got)
	}
	// Each cell owns its own 4 points; nothing is shared.
	if got := m.NumPoints(); got != 16 {
		t.Errorf("m.NumPoints() = %v, want 16 (4 per cell)", got)
	}
	if err := m.Validate(); err != nil {
		t.Errorf("m.Validate() error = %v, want nil", err)
	}

	// Cleaning merges the duplicated shared corners down to the 3x3 grid.
	cleaned := m.Clean()
	if got := cleaned.NumPoints(); got != 9 {
		t.Errorf("cleaned.NumPoints() = %v, want 9", got)
	}
}

func TestStructured2D_Errors(t *testing.T) {
	tests := []struct {
		name     string
		lon, lat [][]float64
		wantSub  string
	}{
		{"ragged rows", [][]float64{{0, 1}, {0}}, [][]float64{{0, 0}, {1, 1}}, "columns"},
		{"shape mismatch", [][]float64{{0, 1}, {0, 1}}, [][]float64{{0, 0, 0}, {1, 1, 1}}, "mismatches"},
		{"no cells", [][]float64{{0, 1}}, [][]float64{{0, 0}}, "no cells"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Structured2D{Lons: tt.lon, Lats: tt.lat}.Build()
			if err == nil {
				t.Fatalf("Build() error = nil, want non-nil")
			}
			if !strings.Contains(err.Error(), tt.wantSub) {
				t.Errorf("Build() error = %q, want containing %q", err, tt.wantSub)
			}
		})
	}
}

func TestPointCloud_Build(t *testing.T) {
	tests := []struct {
		name string
		size int
	}{
		{"minimal", 4},
		{"small", 10},
		{"medium", 1000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lons, lats := utils.GenerateRandomLonLats(tt.size, 0)
			m, err := PointCloud{Lons: lons, Lats: lats}.Build()
			if err != nil {
				t.Fatalf("PointCloud.Build() error = %v, want nil", err)
			}

			// Euler's formula for a closed triangulated sphere: F = 2V - 4.
			want := 2*tt.size - 4
			if got := m.NumFaces(); got != want {
				t.Errorf("m.NumFaces() = %v, want %v", got, want)
			}
			for i := range m.NumFaces() {
				f, err := m.Face(i)
				if err != nil {
					t.Fatalf("m.Face(%d) error = %v, want nil", i, err)
				}
				if f.NumVertices() != 3 {
					t.Errorf("m.Face(%d).NumVertices() = %v, want 3", i, f.NumVertices())
				}
			}
			if err := m.Validate(); err != nil {
				t.Errorf("m.Validate() error = %v, want nil", err)
			}
		})
	}
}

func TestPointCloud_OnSphere(t *testing.T) {
	const radius = 2.5
	lons, lats := utils.GenerateRandomLonLats(64, 1)
	m, err := PointCloud{Lons: lons, Lats: lats, Radius: radius}.Build()
	if err != nil {
		t.Fatalf("PointCloud.Build() error = %v, want nil", err)
	}
	for i, p := range m.Points {
		if math.Abs(p.Norm()-radius) > 1e-9 {
			t.Errorf("m.Points[%d] norm = %v, want ~%v", i, p.Norm(), radius)
		}
	}
}

func TestPointCloud_Errors(t *testing.T) {
	lons, lats := utils.GenerateRandomLonLats(3, 0)
	if _, err := (PointCloud{Lons: lons, Lats: lats}).Build(); err == nil {
		t.Errorf("PointCloud.Build() error = nil, want insufficient sites")
	}
	lons, lats = utils.GenerateRandomLonLats(10, 0)
	if _, err := (PointCloud{Lons: lons, Lats: lats, Eps: -1}).Build(); err == nil {
		t.Errorf("PointCloud.Build() error = nil, want eps rejection")
	}
}

// Benchmarks

func BenchmarkPointCloud_Build(b *testing.B) {
	lons, lats := utils.GenerateRandomLonLats(10000, 0)
	pc := PointCloud{Lons: lons, Lats: lats}
	b.ReportAllocs()
	b.ResetTimer()
	for b.Loop() {
		if _, err := pc.Build(); err != nil {
			b.Fatalf("pc.Build() error = %v, want nil", err)
		}
	}
}
