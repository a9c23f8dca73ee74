package artifacts

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"fleetroute/internal/domain"
)

func TestWriteShortlistsAndSummaryAtomic(t *testing.T) {
	root := t.TempDir()
	w := New(root)

	week := domain.Week{
		Tag: "20260803",
		Days: []domain.Shortlist{
			{Day: 1, Clients: []domain.Client{{ClientID: 1, Coords: domain.Coordinates{Lon: -76.5, Lat: 3.45}}}},
		},
		Leftover: 0,
	}

	if err := w.WriteShortlists(week, week.Tag); err != nil {
		t.Fatalf("WriteShortlists: %v", err)
	}
	path := filepath.Join(root, "semana_20260803", "seleccion", "day_1", "shortlist.csv")
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected shortlist.csv to exist: %v", err)
	}

	if err := w.WriteSummary(week, week.Tag, nil, time.Now()); err != nil {
		t.Fatalf("WriteSummary: %v", err)
	}
	summaryPath := filepath.Join(root, "semana_20260803", "summary.json")
	raw, err := os.ReadFile(summaryPath)
	if err != nil {
		t.Fatalf("expected summary.json to exist: %v", err)
	}
	var doc summaryDoc
	if err := json.Unmarshal(raw, &doc); err != nil {
		t.Fatalf("unmarshal summary: %v", err)
	}
	if doc.TotalSelected != 1 {
		t.Errorf("TotalSelected = %d, want 1", doc.TotalSelected)
	}
	if _, err := os.Stat(summaryPath + ".tmp"); !os.IsNotExist(err) {
		t.Error("expected summary.json.tmp to be gone after rename")
	}
}

func TestReadShortlistRoundTrip(t *testing.T) {
	root := t.TempDir()
	w := New(root)

	week := domain.Week{
		Tag: "20260803",
		Days: []domain.Shortlist{
			{Day: 1, Clients: []domain.Client{
				{ClientID: 7, Coords: domain.Coordinates{Lon: -76.5, Lat: 3.45}},
				{ClientID: 3, Coords: domain.Coordinates{Lon: -76.6, Lat: 3.46}},
			}},
		},
	}
	if err := w.WriteShortlists(week, week.Tag); err != nil {
		t.Fatalf("WriteShortlists: %v", err)
	}

	got, err := w.ReadShortlist(week.Tag, 1)
	if err != nil {
		t.Fatalf("ReadShortlist: %v", err)
	}
	if len(got) != 2 || got[0].ClientID != 7 || got[1].ClientID != 3 {
		t.Fatalf("ReadShortlist = %+v, want client ids [7 3]", got)
	}
	if got[0].Coords.Lon != -76.5 || got[0].Coords.Lat != 3.45 {
		t.Errorf("ReadShortlist[0].Coords = %+v, want (-76.5, 3.45)", got[0].Coords)
	}
}

func TestReadShortlistAcceptsIDAlias(t *testing.T) {
	root := t.TempDir()
	w := New(root)
	dir := filepath.Join(root, "semana_20260803", "seleccion", "day_1")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "shortlist.csv"), []byte("job_id,lon,lat\n9,-76.5,3.45\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := w.ReadShortlist("20260803", 1)
	if err != nil {
		t.Fatalf("ReadShortlist: %v", err)
	}
	if len(got) != 1 || got[0].ClientID != 9 {
		t.Fatalf("ReadShortlist = %+v, want [{ClientID:9 ...}]", got)
	}
}

func TestReadShortlistRejectsConflictingIDColumns(t *testing.T) {
	root := t.TempDir()
	w := New(root)
	dir := filepath.Join(root, "semana_20260803", "seleccion", "day_1")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	csv := "id_contacto,job_id,lon,lat\n9,9,-76.5,3.45\n"
	if err := os.WriteFile(filepath.Join(dir, "shortlist.csv"), []byte(csv), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := w.ReadShortlist("20260803", 1); err == nil {
		t.Fatal("expected error for conflicting id_contacto/job_id header, got nil")
	}
}

func TestWriteLatestPointer(t *testing.T) {
	root := t.TempDir()
	w := New(root)
	if err := w.WriteLatest("20260803"); err != nil {
		t.Fatalf("WriteLatest: %v", err)
	}
	raw, err := os.ReadFile(filepath.Join(root, "latest.json"))
	if err != nil {
		t.Fatalf("read latest.json: %v", err)
	}
	var m map[string]string
	_ = json.Unmarshal(raw, &m)
	if m["latest_week_tag"] != "20260803" {
		t.Errorf("latest_week_tag = %q, want 20260803", m["latest_week_tag"])
	}
}
