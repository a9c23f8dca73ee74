// Package handlers implements the HTTP surface over the two orchestrator
// workflows: request decode, orchestrator call, response shaping, and
// structured error-to-status mapping for Locate & Partition and Solve.
package handlers

import (
	"net/http"
	"time"

	"fleetroute/internal/api/dto"
	"fleetroute/internal/domain"
	"fleetroute/internal/orchestrator"
	"fleetroute/internal/ports"
)

// LocateHandler serves the Locate & Partition workflow.
type LocateHandler struct {
	Orchestrator *orchestrator.Orchestrator

	// ClientRepo is optional: when set, PlanFromRepository reads clients and
	// events from it instead of requiring them inline in the request body.
	ClientRepo ports.ClientRepository
}

func (h *LocateHandler) Plan(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var body dto.LocatePartitionRequest
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, r, http.StatusBadRequest, "decode request: "+err.Error())
		return
	}

	req := orchestrator.LocateAndPartitionRequest{
		Clients:      clientsFromDTO(body.Clients),
		Events:       eventsFromDTO(body.Events),
		PerimeterRaw: body.PerimeterRaw,
		FleetStart:   domain.Coordinates{Lon: body.FleetStartLon, Lat: body.FleetStartLat},
		Days:         body.Days,
		TargetPerDay: body.TargetPerDay,
		Seed:         body.Seed,
		WeekTag:      body.WeekTag,
		Now:          time.Now(),
	}

	res, err := h.Orchestrator.LocateAndPartition(r.Context(), req)
	if err != nil {
		writeOrchestratorError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, locateResponseFromResult(res))
}

// PlanFromRepository serves the Locate & Partition workflow using the
// configured ClientRepository as the source of clients and events, for
// deployments that persist their client pool instead of POSTing it inline.
func (h *LocateHandler) PlanFromRepository(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if h.ClientRepo == nil {
		writeError(w, r, http.StatusServiceUnavailable, "no client repository configured")
		return
	}

	var body dto.LocateFromRepositoryRequest
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, r, http.StatusBadRequest, "decode request: "+err.Error())
		return
	}

	clients, err := h.ClientRepo.ListClients(r.Context())
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, "list clients: "+err.Error())
		return
	}
	events, err := h.ClientRepo.ListEvents(r.Context())
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, "list events: "+err.Error())
		return
	}

	req := orchestrator.LocateAndPartitionRequest{
		Clients:      clients,
		Events:       events,
		PerimeterRaw: body.PerimeterRaw,
		FleetStart:   domain.Coordinates{Lon: body.FleetStartLon, Lat: body.FleetStartLat},
		Days:         body.Days,
		TargetPerDay: body.TargetPerDay,
		Seed:         body.Seed,
		WeekTag:      body.WeekTag,
		Now:          time.Now(),
	}

	res, err := h.Orchestrator.LocateAndPartition(r.Context(), req)
	if err != nil {
		writeOrchestratorError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, locateResponseFromResult(res))
}

func clientsFromDTO(in []dto.ClientInput) []domain.Client {
	out := make([]domain.Client, len(in))
	for i, c := range in {
		out[i] = domain.Client{
			ClientID: c.ClientID,
			Name:     c.Name,
			Zone:     c.Zone,
			Priority: c.Priority,
			Coords:   domain.Coordinates{Lon: c.Lon, Lat: c.Lat},
		}
	}
	return out
}

func eventsFromDTO(in []dto.EventInput) []domain.Event {
	out := make([]domain.Event, 0, len(in))
	for _, e := range in {
		ts, err := time.Parse(time.RFC3339, e.Timestamp)
		if err != nil {
			continue // malformed timestamps are dropped; a repair candidate left with no usable events ends with coord_source none
		}
		out = append(out, domain.Event{ClientID: e.ClientID, Timestamp: ts, Coords: domain.Coordinates{Lon: e.Lon, Lat: e.Lat}})
	}
	return out
}

func locateResponseFromResult(res orchestrator.LocateAndPartitionResult) dto.LocatePartitionResponse {
	days := make([]dto.ShortlistResponse, len(res.Week.Days))
	for i, d := range res.Week.Days {
		days[i] = dto.ShortlistResponse{
			Day:       d.Day,
			ClientIDs: d.ClientIDs(),
			Centroid:  d.Centroid.CoordsToList(),
		}
	}
	return dto.LocatePartitionResponse{
		WeekTag:         res.Week.Tag,
		WeekTagReplaced: res.WeekTagReplaced,
		Days:            days,
		Leftover:        res.Week.Leftover,
	}
}
