// Copyright (c) 2026 Andrey Kriulin
// Licensed under the MIT License.
// See the LICENSE file in the project root for full license text.

// Package geodata loads geolocated vector data (coastlines and similar
// GeoJSON features) into line meshes, with an explicit bounded memoization
// cache keyed by resolution.
package geodata

import (
	"fmt"
	"os"

	geojson "github.com/paulmach/go.geojson"
	"github.com/pkg/errors"

	"github.com/2dChan/s2geomesh"
	"github.com/2dChan/s2geomesh/coords"
)

// Natural Earth resolution tags.
const (
	ResolutionCoarse = "110m"
	ResolutionMedium = "50m"
	ResolutionFine   = "10m"
)

// coastlinesKey is the fetch key of the coastline payload at a resolution.
func coastlinesKey(resolution string) string {
	return fmt.Sprintf("natural_earth/physical/ne_coastlines_%s.geojson.gz", resolution)
}

// LoadLines parses a GeoJSON file into a line mesh. Every LineString,
// MultiLineString part, and polygon ring contributes one polyline; points
// are not shared across polylines. The mesh carries no faces.
func LoadLines(path string) (*s2geomesh.Mesh, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "geodata: reading %q", path)
	}
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, errors.Wrapf(err, "geodata: parsing %q", path)
	}

	mesh := &s2geomesh.Mesh{
		Radius:      s2geomesh.DefaultRadius,
		CRS:         "EPSG:4326",
		LineOffsets: []int{0},
	}
	for i, feature := range fc.Features {
		if feature.Geometry == nil {
			continue
		}
		if err := appendGeometry(mesh, feature.Geometry); err != nil {
			return nil, errors.Wrapf(err, "geodata: feature %d of %q", i, path)
		}
	}
	return mesh, nil
}

func appendGeometry(mesh *s2geomesh.Mesh, g *geojson.Geometry) error {
	switch g.Type {
	case geojson.GeometryLineString:
		appendLine(mesh, g.LineString)
	case geojson.GeometryMultiLineString:
		for _, line := range g.MultiLineString {
			appendLine(mesh, line)
		}
	case geojson.GeometryPolygon:
		for _, ring := range g.Polygon {
			appendLine(mesh, ring)
		}
	case geojson.GeometryMultiPolygon:
		for _, polygon := range g.MultiPolygon {
			for _, ring := range polygon {
				appendLine(mesh, ring)
			}
		}
	case geojson.GeometryCollection:
		for _, sub := range g.Geometries {
			if err := appendGeometry(mesh, sub); err != nil {
				return err
			}
		}
	default:
		return errors.Errorf("unsupported geometry type %q", g.Type)
	}
	return nil
}

func appendLine(mesh *s2geomesh.Mesh, line [][]float64) {
	if len(line) < 2 {
		return
	}
	for _, position := range line {
		lon := coords.Wrap(position[0], coords.DefaultBase, coords.DefaultPeriod)
		mesh.LineVertices = append(mesh.LineVertices, len(mesh.Points))
		mesh.Points = append(mesh.Points, coords.LonLatToPoint(lon, position[1]))
	}
	mesh.LineOffsets = append(mesh.LineOffsets, len(mesh.LineVertices))
}
