// Package artifacts implements deterministic export of schedules, routes,
// and summaries to a week-tagged directory tree: tabular shortlist dumps,
// week summary, GeoJSON route export. The JSON documents (summary, solution,
// GeoJSON, latest pointer) are written via a temp-file-then-rename
// discipline so a reader never observes a half-written file; shortlist.csv
// files are written directly in place.
package artifacts

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"fleetroute/internal/domain"
	"fleetroute/internal/rerr"
)

// Writer exports a Week/Solution pair to a filesystem root.
type Writer struct {
	Root string
}

// New builds a Writer rooted at root.
func New(root string) *Writer { return &Writer{Root: root} }

func (w *Writer) weekDir(tag string) string {
	return filepath.Join(w.Root, "semana_"+tag)
}

// WriteShortlists writes one shortlist.csv per day under
// <root>/semana_<tag>/seleccion/day_<i>/shortlist.csv, purging and
// recreating only the seleccion/ subdirectory (input materials under
// insumos/ are preserved).
func (w *Writer) WriteShortlists(week domain.Week, tag string) error {
	const op = "artifacts.WriteShortlists"

	seleccion := filepath.Join(w.weekDir(tag), "seleccion")
	if err := os.RemoveAll(seleccion); err != nil {
		return rerr.Wrap(rerr.KindIOError, op, "purge seleccion directory", err)
	}

	for _, day := range week.Days {
		dayDir := filepath.Join(seleccion, fmt.Sprintf("day_%d", day.Day))
		if err := os.MkdirAll(dayDir, 0o755); err != nil {
			return rerr.Wrap(rerr.KindIOError, op, "create day directory", err)
		}

		path := filepath.Join(dayDir, "shortlist.csv")
		f, err := os.Create(path)
		if err != nil {
			return rerr.Wrap(rerr.KindIOError, op, "create shortlist.csv", err)
		}
		cw := csv.NewWriter(f)
		_ = cw.Write([]string{"id_contacto", "lon", "lat"})
		for _, c := range day.Clients {
			_ = cw.Write([]string{
				strconv.Itoa(c.ClientID),
				strconv.FormatFloat(c.Coords.Lon, 'f', 6, 64),
				strconv.FormatFloat(c.Coords.Lat, 'f', 6, 64),
			})
		}
		cw.Flush()
		if err := cw.Error(); err != nil {
			f.Close()
			return rerr.Wrap(rerr.KindIOError, op, "write shortlist.csv", err)
		}
		if err := f.Close(); err != nil {
			return rerr.Wrap(rerr.KindIOError, op, "close shortlist.csv", err)
		}
	}
	return nil
}

// idColumnAliases are the header names accepted in place of id_contacto on
// ingest. Renamed once here, at ingest, and never again: every downstream
// component (including this same reader, for its own previously-written
// output) only ever sees id_contacto.
var idColumnAliases = map[string]bool{
	"id_contacto": true,
	"id_cliente":  true,
	"job_id":      true,
}

// ReadShortlist reads back a day's shortlist.csv, accepting the id_contacto
// column under any of its documented aliases (id_cliente, job_id) on
// ingest. A header naming more than one alias column is a conflict and is
// rejected rather than guessed at. Used at the Solve workflow's HTTP
// boundary to resolve a (week_tag, day) pair into the client coordinates
// the solvers need.
func (w *Writer) ReadShortlist(tag string, day int) ([]domain.Client, error) {
	const op = "artifacts.ReadShortlist"

	path := filepath.Join(w.weekDir(tag), "seleccion", fmt.Sprintf("day_%d", day), "shortlist.csv")
	f, err := os.Open(path)
	if err != nil {
		return nil, rerr.Wrap(rerr.KindIOError, op, "open shortlist.csv", err)
	}
	defer f.Close()

	cr := csv.NewReader(f)
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, rerr.Wrap(rerr.KindIOError, op, "parse shortlist.csv", err)
	}
	if len(rows) == 0 {
		return nil, rerr.New(rerr.KindInvalidInput, op, "shortlist.csv has no rows")
	}

	idCol, lonCol, latCol, err := resolveShortlistColumns(rows[0])
	if err != nil {
		return nil, rerr.Wrap(rerr.KindInvalidInput, op, "resolve header", err)
	}

	out := make([]domain.Client, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if len(row) <= idCol || len(row) <= lonCol || len(row) <= latCol {
			continue
		}
		id, err := strconv.Atoi(row[idCol])
		if err != nil {
			return nil, rerr.Wrap(rerr.KindInvalidInput, op, "parse id_contacto", err)
		}
		lon, err := strconv.ParseFloat(row[lonCol], 64)
		if err != nil {
			return nil, rerr.Wrap(rerr.KindInvalidInput, op, "parse lon", err)
		}
		lat, err := strconv.ParseFloat(row[latCol], 64)
		if err != nil {
			return nil, rerr.Wrap(rerr.KindInvalidInput, op, "parse lat", err)
		}
		out = append(out, domain.Client{ClientID: id, Coords: domain.Coordinates{Lon: lon, Lat: lat}})
	}
	return out, nil
}

// resolveShortlistColumns locates the id/lon/lat columns in a shortlist.csv
// header, accepting any one id-column alias (see idColumnAliases). More
// than one alias present in the same header is a conflict, not a guess.
func resolveShortlistColumns(header []string) (idCol, lonCol, latCol int, err error) {
	idCol, lonCol, latCol = -1, -1, -1
	for i, name := range header {
		switch {
		case idColumnAliases[name]:
			if idCol != -1 {
				return 0, 0, 0, fmt.Errorf("multiple id columns in header: %q and %q", header[idCol], name)
			}
			idCol = i
		case name == "lon":
			lonCol = i
		case name == "lat":
			latCol = i
		}
	}
	if idCol == -1 || lonCol == -1 || latCol == -1 {
		return 0, 0, 0, fmt.Errorf("header missing required columns (id/lon/lat): %v", header)
	}
	return idCol, lonCol, latCol, nil
}

// summaryDoc mirrors the per-week summary document: week tag, day count,
// total selected, leftover, vehicle metadata carried through verbatim,
// per-day paths and counts, creation timestamp.
type summaryDoc struct {
	WeekTag      string         `json:"week_tag"`
	DayCount     int            `json:"day_count"`
	TotalSelected int           `json:"total_selected"`
	Leftover     int            `json:"leftover"`
	Vehicles     []vehicleMeta  `json:"vehicles"`
	Days         []dayEntry     `json:"days"`
	CreatedAt    string         `json:"created_at"`
}

type vehicleMeta struct {
	VehicleID  int    `json:"vehicle_id"`
	TWStart    string `json:"tw_start"`
	TWEnd      string `json:"tw_end"`
	BreakStart string `json:"break_start"`
	BreakEnd   string `json:"break_end"`
}

type dayEntry struct {
	Day   int    `json:"day"`
	Path  string `json:"path"`
	Count int    `json:"count"`
}

// WriteSummary writes summary.json.tmp then renames it into place, so a
// reader never observes a half-written summary.json.
func (w *Writer) WriteSummary(week domain.Week, tag string, vehicles []domain.Vehicle, createdAt time.Time) error {
	const op = "artifacts.WriteSummary"

	dir := w.weekDir(tag)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return rerr.Wrap(rerr.KindIOError, op, "create week directory", err)
	}

	total := 0
	days := make([]dayEntry, len(week.Days))
	for i, d := range week.Days {
		total += len(d.Clients)
		days[i] = dayEntry{
			Day:   d.Day,
			Path:  filepath.Join("seleccion", fmt.Sprintf("day_%d", d.Day), "shortlist.csv"),
			Count: len(d.Clients),
		}
	}

	vm := make([]vehicleMeta, len(vehicles))
	for i, v := range vehicles {
		vm[i] = vehicleMeta{
			VehicleID: v.VehicleID, TWStart: v.Meta.TWStart, TWEnd: v.Meta.TWEnd,
			BreakStart: v.Meta.BreakStart, BreakEnd: v.Meta.BreakEnd,
		}
	}

	doc := summaryDoc{
		WeekTag: tag, DayCount: len(week.Days), TotalSelected: total,
		Leftover: week.Leftover, Vehicles: vm, Days: days,
		CreatedAt: createdAt.UTC().Format(time.RFC3339),
	}

	return writeJSONAtomic(filepath.Join(dir, "summary.json"), doc)
}

// WriteSolution writes a per-solve route dump and a GeoJSON with one
// Feature per stop and one per route.
func (w *Writer) WriteSolution(sol domain.Solution, tag string, day int, stopCoords map[int]domain.Coordinates) error {
	const op = "artifacts.WriteSolution"
	dir := w.weekDir(tag)
	if err := os.MkdirAll(filepath.Join(dir, "solutions"), 0o755); err != nil {
		return rerr.Wrap(rerr.KindIOError, op, "create solutions directory", err)
	}

	path := filepath.Join(dir, "solutions", fmt.Sprintf("day_%d.json", day))
	if err := writeJSONAtomic(path, sol); err != nil {
		return err
	}

	return w.writeGeoJSON(dir, day, sol, stopCoords)
}

func (w *Writer) writeGeoJSON(dir string, day int, sol domain.Solution, stopCoords map[int]domain.Coordinates) error {
	const op = "artifacts.writeGeoJSON"

	type feature struct {
		Type       string                 `json:"type"`
		Geometry   map[string]interface{} `json:"geometry"`
		Properties map[string]interface{} `json:"properties"`
	}
	type fc struct {
		Type     string    `json:"type"`
		Features []feature `json:"features"`
	}

	var out fc
	out.Type = "FeatureCollection"
	for _, r := range sol.Routes {
		var coords [][]float64
		for _, id := range r.ClientIDs {
			c, ok := stopCoords[id]
			if !ok {
				continue
			}
			coords = append(coords, c.CoordsToList())
			out.Features = append(out.Features, feature{
				Type:       "Feature",
				Geometry:   map[string]interface{}{"type": "Point", "coordinates": c.CoordsToList()},
				Properties: map[string]interface{}{"client_id": id, "vehicle_id": r.VehicleID},
			})
		}
		if len(coords) >= 2 {
			out.Features = append(out.Features, feature{
				Type:       "Feature",
				Geometry:   map[string]interface{}{"type": "LineString", "coordinates": coords},
				Properties: map[string]interface{}{"vehicle_id": r.VehicleID, "distance_km": r.DistanceKM},
			})
		}
	}

	path := filepath.Join(dir, fmt.Sprintf("routes_day_%d.geojson", day))
	if err := writeJSONAtomic(path, out); err != nil {
		return rerr.Wrap(rerr.KindIOError, op, "write geojson", err)
	}
	return nil
}

// WriteLatest writes the root-level latest.json pointer file.
func (w *Writer) WriteLatest(tag string) error {
	return writeJSONAtomic(filepath.Join(w.Root, "latest.json"), map[string]string{"latest_week_tag": tag})
}

func writeJSONAtomic(path string, v interface{}) error {
	const op = "artifacts.writeJSONAtomic"

	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return rerr.Wrap(rerr.KindIOError, op, "create temp file", err)
	}
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		f.Close()
		os.Remove(tmp)
		return rerr.Wrap(rerr.KindIOError, op, "encode json", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return rerr.Wrap(rerr.KindIOError, op, "close temp file", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return rerr.Wrap(rerr.KindIOError, op, "rename into place", err)
	}
	return nil
}
