package geo

import (
	"encoding/json"
	"fmt"

	"fleetroute/internal/rerr"
)

// featureCollection is the minimal GeoJSON shape this package accepts.
// Only Polygon and MultiPolygon feature geometries are supported; a CRS
// member other than the (implicit) WGS84 default causes rejection.
type featureCollection struct {
	Type     string            `json:"type"`
	CRS      *crsObject        `json:"crs,omitempty"`
	Features []geojsonFeature  `json:"features"`
}

type crsObject struct {
	Type       string `json:"type"`
	Properties struct {
		Name string `json:"name"`
	} `json:"properties"`
}

type geojsonFeature struct {
	Type     string          `json:"type"`
	Geometry geojsonGeometry `json:"geometry"`
}

type geojsonGeometry struct {
	Type        string          `json:"type"`
	Coordinates json.RawMessage `json:"coordinates"`
}

// wgs84Names lists the CRS URNs/names treated as equivalent to WGS84.
var wgs84Names = map[string]bool{
	"urn:ogc:def:crs:OGC:1.3:CRS84": true,
	"EPSG:4326":                     true,
	"urn:ogc:def:crs:EPSG::4326":    true,
}

// ParseFeatureCollection parses raw GeoJSON bytes into polygon rings.
// Returns ErrInvalidGeometry for empty/unparseable input, ErrNonWGS84 if a
// non-WGS84 CRS annotation is present.
func ParseFeatureCollection(raw []byte) ([]Polygon, error) {
	const op = "geo.ParseFeatureCollection"

	var fc featureCollection
	if err := json.Unmarshal(raw, &fc); err != nil {
		return nil, rerr.Wrap(rerr.KindInvalidGeometry, op, "unparseable GeoJSON", err)
	}
	if fc.CRS != nil && fc.CRS.Properties.Name != "" && !wgs84Names[fc.CRS.Properties.Name] {
		return nil, rerr.New(rerr.KindNonWGS84, op, fmt.Sprintf("unsupported CRS %q", fc.CRS.Properties.Name))
	}
	if len(fc.Features) == 0 {
		return nil, rerr.New(rerr.KindInvalidGeometry, op, "feature collection has no features")
	}

	var polys []Polygon
	for _, f := range fc.Features {
		switch f.Geometry.Type {
		case "Polygon":
			p, err := parsePolygonCoords(f.Geometry.Coordinates)
			if err != nil {
				return nil, rerr.Wrap(rerr.KindInvalidGeometry, op, "invalid Polygon geometry", err)
			}
			polys = append(polys, p)
		case "MultiPolygon":
			var raw3 [][][][2]float64
			if err := json.Unmarshal(f.Geometry.Coordinates, &raw3); err != nil {
				return nil, rerr.Wrap(rerr.KindInvalidGeometry, op, "invalid MultiPolygon geometry", err)
			}
			for _, polyCoords := range raw3 {
				polys = append(polys, ringsToPolygon(polyCoords))
			}
		default:
			return nil, rerr.New(rerr.KindInvalidGeometry, op, "unsupported geometry type "+f.Geometry.Type)
		}
	}
	if len(polys) == 0 {
		return nil, rerr.New(rerr.KindInvalidGeometry, op, "no polygon geometries found")
	}
	return polys, nil
}

func parsePolygonCoords(raw json.RawMessage) (Polygon, error) {
	var rings [][][2]float64
	if err := json.Unmarshal(raw, &rings); err != nil {
		return Polygon{}, err
	}
	return ringsToPolygon(rings), nil
}

func ringsToPolygon(rings [][][2]float64) Polygon {
	p := Polygon{Rings: make([]Ring, len(rings))}
	for i, ring := range rings {
		pts := make([]Point, len(ring))
		for j, c := range ring {
			pts[j] = Point{Lon: c[0], Lat: c[1]}
		}
		p.Rings[i] = Ring{Points: pts}
	}
	return p
}
