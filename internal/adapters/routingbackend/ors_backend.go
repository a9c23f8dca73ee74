package routingbackend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"time"

	polyline "github.com/twpayne/go-polyline"

	"fleetroute/internal/ports"
)

// ORSBackend implements ports.RoutingBackend against OpenRouteService's
// /v2/matrix and /v2/directions endpoints: one HTTP session with retry and
// auth-header wiring, serving a full NxN matrix lookup and a whole-route
// polyline fetch.
type ORSBackend struct {
	session *http.Client
	apiKey  string
	baseURL string
}

// NewORSBackend builds a backend bound to the given API key and base URL.
// baseURL defaults to the public OpenRouteService endpoint when empty.
func NewORSBackend(apiKey, baseURL string, timeout time.Duration) (*ORSBackend, error) {
	if apiKey == "" {
		return nil, errors.New("routingbackend: ORS api key is empty")
	}
	if baseURL == "" {
		baseURL = "https://api.openrouteservice.org"
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &ORSBackend{
		session: &http.Client{Timeout: timeout},
		apiKey:  apiKey,
		baseURL: baseURL,
	}, nil
}

type matrixRequest struct {
	Locations [][]float64 `json:"locations"`
	Metrics   []string    `json:"metrics"`
}

type matrixResponse struct {
	Distances [][]*float64 `json:"distances"`
	Durations [][]*float64 `json:"durations"`
}

// Matrix implements ports.RoutingBackend.
func (o *ORSBackend) Matrix(ctx context.Context, points []ports.MatrixPoint, profile string) (ports.MatrixResult, error) {
	n := len(points)
	if n == 0 {
		return ports.MatrixResult{Code: "Ok"}, nil
	}

	locations := make([][]float64, n)
	for i, p := range points {
		locations[i] = []float64{p.Lon, p.Lat}
	}

	payload, err := json.Marshal(matrixRequest{
		Locations: locations,
		Metrics:   []string{"distance", "duration"},
	})
	if err != nil {
		return ports.MatrixResult{}, fmt.Errorf("routingbackend: marshal matrix request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/v2/matrix/%s", o.baseURL, profile)
	resp, err := o.doWithRetry(ctx, func() (*http.Request, error) {
		return o.newRequest(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	})
	if err != nil {
		return ports.MatrixResult{Code: "Error"}, fmt.Errorf("routingbackend: matrix request failed: %w", err)
	}
	defer resp.Body.Close()

	var mr matrixResponse
	if err := json.NewDecoder(resp.Body).Decode(&mr); err != nil {
		return ports.MatrixResult{Code: "Error"}, fmt.Errorf("routingbackend: decode matrix response: %w", err)
	}
	if len(mr.Distances) != n || len(mr.Durations) != n {
		return ports.MatrixResult{Code: "Error"}, fmt.Errorf(
			"routingbackend: matrix response shape mismatch: got %dx%d distances, %dx%d durations, want %dx%d",
			len(mr.Distances), rowLen(mr.Distances), len(mr.Durations), rowLen(mr.Durations), n, n)
	}

	cells := make([][]ports.MatrixCell, n)
	for i := range cells {
		cells[i] = make([]ports.MatrixCell, n)
		for j := 0; j < n; j++ {
			cells[i][j] = ports.MatrixCell{
				DistanceM: mr.Distances[i][j],
				DurationS: mr.Durations[i][j],
			}
		}
	}
	return ports.MatrixResult{Cells: cells, Code: "Ok"}, nil
}

func rowLen(rows [][]*float64) int {
	if len(rows) == 0 {
		return 0
	}
	return len(rows[0])
}

type directionsRequest struct {
	Coordinates [][]float64 `json:"coordinates"`
}

type directionsResponse struct {
	Routes []struct {
		Summary struct {
			Distance float64 `json:"distance"`
			Duration float64 `json:"duration"`
		} `json:"summary"`
		Geometry string `json:"geometry"`
		Segments []struct {
			Distance float64 `json:"distance"`
			Duration float64 `json:"duration"`
		} `json:"segments"`
	} `json:"routes"`
}

// Route implements ports.RoutingBackend. It fetches a single overview
// polyline for the whole ordered stop sequence plus per-leg distance and
// duration, decoding the ORS-returned polyline to validate it and
// re-encoding it in canonical form via go-polyline.
func (o *ORSBackend) Route(ctx context.Context, points []ports.MatrixPoint, profile string) (ports.RouteResult, error) {
	if len(points) < 2 {
		return ports.RouteResult{Code: "Error"}, errors.New("routingbackend: route requires at least 2 points")
	}

	coords := make([][]float64, len(points))
	for i, p := range points {
		coords[i] = []float64{p.Lon, p.Lat}
	}

	payload, err := json.Marshal(directionsRequest{Coordinates: coords})
	if err != nil {
		return ports.RouteResult{Code: "Error"}, fmt.Errorf("routingbackend: marshal directions request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/v2/directions/%s", o.baseURL, profile)
	resp, err := o.doWithRetry(ctx, func() (*http.Request, error) {
		return o.newRequest(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	})
	if err != nil {
		return ports.RouteResult{Code: "Error"}, fmt.Errorf("routingbackend: directions request failed: %w", err)
	}
	defer resp.Body.Close()

	var dr directionsResponse
	if err := json.NewDecoder(resp.Body).Decode(&dr); err != nil {
		return ports.RouteResult{Code: "Error"}, fmt.Errorf("routingbackend: decode directions response: %w", err)
	}
	if len(dr.Routes) == 0 {
		return ports.RouteResult{Code: "Error"}, errors.New("routingbackend: directions response had no routes")
	}
	route := dr.Routes[0]

	decoded, _, err := polyline.DecodeCoords([]byte(route.Geometry))
	if err != nil {
		return ports.RouteResult{Code: "Error"}, fmt.Errorf("routingbackend: decode route polyline: %w", err)
	}
	canonical := string(polyline.EncodeCoords(decoded))

	legs := make([]ports.RouteLegResult, len(route.Segments))
	for i, seg := range route.Segments {
		legs[i] = ports.RouteLegResult{
			DistanceM: math.Round(seg.Distance),
			DurationS: math.Round(seg.Duration),
		}
	}

	return ports.RouteResult{
		Code:      "Ok",
		Polyline:  canonical,
		DistanceM: math.Round(route.Summary.Distance),
		DurationS: math.Round(route.Summary.Duration),
		Legs:      legs,
	}, nil
}

// Health implements ports.RoutingBackend by probing the service's status
// endpoint.
func (o *ORSBackend) Health(ctx context.Context) (bool, string) {
	endpoint := o.baseURL + "/health"
	req, err := o.newRequest(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return false, err.Error()
	}
	resp, err := o.session.Do(req)
	if err != nil {
		return false, err.Error()
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return false, fmt.Sprintf("unexpected status %d", resp.StatusCode)
	}
	return true, "ok"
}
