package geo

import "testing"

func square() Polygon {
	return ringsToPolygon([][][2]float64{
		{{-76.5330, 3.4516}, {-76.5320, 3.4516}, {-76.5320, 3.4526}, {-76.5330, 3.4526}, {-76.5330, 3.4516}},
	})
}

func TestBuildRejectsEmpty(t *testing.T) {
	if _, err := Build(nil); err == nil {
		t.Fatal("expected error for empty polygon list")
	}
}

func TestContainsInsidePoint(t *testing.T) {
	per, err := Build([]Polygon{square()})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if !per.Contains(Point{Lon: -76.5325, Lat: 3.4521}) {
		t.Error("expected centroid-ish point to be contained")
	}
}

func TestContainsOutsidePoint(t *testing.T) {
	per, err := Build([]Polygon{square()})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if per.Contains(Point{Lon: 0, Lat: 0}) {
		t.Error("expected origin to be outside the perimeter")
	}
}

func TestContainsBoundaryPoint(t *testing.T) {
	per, err := Build([]Polygon{square()})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if !per.Contains(Point{Lon: -76.5330, Lat: 3.4520}) {
		t.Error("expected point on the boundary edge to be contained (closed perimeter)")
	}
}

func TestParseFeatureCollectionRejectsNonWGS84(t *testing.T) {
	raw := []byte(`{
		"type":"FeatureCollection",
		"crs":{"type":"name","properties":{"name":"EPSG:3857"}},
		"features":[{"type":"Feature","geometry":{"type":"Polygon","coordinates":[[[0,0],[1,0],[1,1],[0,1],[0,0]]]}}]
	}`)
	_, err := ParseFeatureCollection(raw)
	if err == nil {
		t.Fatal("expected NonWGS84 rejection")
	}
}

func TestParseFeatureCollectionRejectsEmpty(t *testing.T) {
	raw := []byte(`{"type":"FeatureCollection","features":[]}`)
	if _, err := ParseFeatureCollection(raw); err == nil {
		t.Fatal("expected error for empty feature collection")
	}
}
