// Copyright (c) 2026 Andrey Kriulin
// Licensed under the MIT License.
// See the LICENSE file in the project root for full license text.

package geodesic

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"gonum.org/v1/gonum/floats/scalar"
)

const epsilon = 1e-9

func TestSpherical_Points(t *testing.T) {
	g := Spherical{}
	got, err := g.Points(0, 0, 90, 0, 3)
	if err != nil {
		t.Fatalf("g.Points(0, 0, 90, 0, 3) error = %v, want nil", err)
	}
	want := []LonLat{{Lon: 0}, {Lon: 45}, {Lon: 90}}
	if diff := cmp.Diff(want, got, cmpopts.EquateApprox(0, epsilon)); diff != "" {
		t.Errorf("g.Points(0, 0, 90, 0, 3) mismatch (-want +got):\n%v", diff)
	}
}

func TestSpherical_Points_TooFew(t *testing.T) {
	g := Spherical{}
	if _, err := g.Points(0, 0, 90, 0, 1); err == nil {
		t.Errorf("g.Points(0, 0, 90, 0, 1) error = nil, want non-nil")
	}
}

func TestSpherical_Points_AntimeridianWrapped(t *testing.T) {
	g := Spherical{}
	got, err := g.Points(170, 0, -170, 0, 3)
	if err != nil {
		t.Fatalf("g.Points(170, 0, -170, 0, 3) error = %v, want nil", err)
	}
	// The shortest path crosses the antimeridian; the midpoint longitude
	// must come back wrapped onto [-180, 180).
	if !scalar.EqualWithinAbs(got[1].Lon, -180, epsilon) {
		t.Errorf("g.Points(170, 0, -170, 0, 3)[1].Lon = %v, want -180", got[1].Lon)
	}
	for i, p := range got {
		if p.Lon < -180 || p.Lon >= 180 {
			t.Errorf("g.Points(...)[%d].Lon = %v, want in [-180, 180)", i, p.Lon)
		}
	}
}

func TestLine_EndpointControl(t *testing.T) {
	start := LonLat{Lon: 0, Lat: 0}
	end := LonLat{Lon: 90, Lat: 0}
	tests := []struct {
		name                     string
		npts                     int
		includeStart, includeEnd bool
		want                     []float64
	}{
		{"both included", 3, true, true, []float64{0, 45, 90}},
		{"start only", 2, true, false, []float64{0, 45}},
		{"end only", 2, false, true, []float64{45, 90}},
		{"neither", 1, false, false, []float64{45}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Line(start, end, tt.npts, tt.includeStart, tt.includeEnd)
			if err != nil {
				t.Fatalf("Line(...) error = %v, want nil", err)
			}
			if len(got) != tt.npts {
				t.Fatalf("Line(...) len = %v, want %v", len(got), tt.npts)
			}
			for i, p := range got {
				if !scalar.EqualWithinAbs(p.Lon, tt.want[i], epsilon) {
					t.Errorf("Line(...)[%d].Lon = %v, want %v", i, p.Lon, tt.want[i])
				}
				if !scalar.EqualWithinAbs(p.Lat, 0, epsilon) {
					t.Errorf("Line(...)[%d].Lat = %v, want 0", i, p.Lat)
				}
			}
		})
	}
}

func TestLine_Errors(t *testing.T) {
	start := LonLat{}
	end := LonLat{Lon: 90}
	if _, err := Line(start, end, 0, true, true); err == nil {
		t.Errorf("Line(..., 0, true, true) error = nil, want non-nil")
	}
	if _, err := Line(start, end, 1, true, true); err == nil {
		t.Errorf("Line(..., 1, true, true) error = nil, want non-nil")
	}
}
