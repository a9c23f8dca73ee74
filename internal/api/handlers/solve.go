package handlers

import (
	"net/http"

	"fleetroute/internal/api/dto"
	"fleetroute/internal/domain"
	"fleetroute/internal/orchestrator"
)

// SolveHandler serves the Solve workflow.
type SolveHandler struct {
	Orchestrator *orchestrator.Orchestrator
}

func (h *SolveHandler) Solve(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var body dto.SolveRequest
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, r, http.StatusBadRequest, "decode request: "+err.Error())
		return
	}

	day, err := h.Orchestrator.ResolveShortlist(body.WeekTag, body.Day, body.ClientIDs)
	if err != nil {
		writeOrchestratorError(w, r, err)
		return
	}

	res, err := h.Orchestrator.Solve(r.Context(), orchestrator.SolveRequest{
		Day:             day,
		Vehicles:        vehiclesFromDTO(body.Vehicles),
		WeekTag:         body.WeekTag,
		UseCache:        body.UseCache,
		IncludeArrivals: body.IncludeArrivals,
	})
	if err != nil {
		writeOrchestratorError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, solveResponseFromResult(res))
}

func vehiclesFromDTO(in []dto.VehicleInput) []domain.Vehicle {
	out := make([]domain.Vehicle, len(in))
	for i, v := range in {
		start := &domain.Coordinates{Lon: v.StartLon, Lat: v.StartLat}
		end := &domain.Coordinates{Lon: v.EndLon, Lat: v.EndLat}
		out[i] = domain.Vehicle{
			VehicleID: v.VehicleID,
			Start:     start,
			End:       end,
			MaxStops:  v.MaxStops,
			Meta: domain.VehicleMeta{
				TWStart:     v.TWStart,
				TWEnd:       v.TWEnd,
				BreakStart:  v.BreakStart,
				BreakEnd:    v.BreakEnd,
				StartCoords: start,
				EndCoords:   end,
			},
		}
	}
	return out
}

func solveResponseFromResult(res orchestrator.SolveResult) dto.SolveResponse {
	routes := make([]dto.RouteResponse, len(res.Solution.Routes))
	for i, rt := range res.Solution.Routes {
		legs := make([]dto.RouteLegResponse, len(rt.Legs))
		for j, l := range rt.Legs {
			legs[j] = dto.RouteLegResponse{FromID: l.FromID, ToID: l.ToID, DistanceM: l.DistanceM, DurationS: l.DurationS}
		}
		var arrivals []dto.StopArrivalResponse
		if len(rt.Arrivals) > 0 {
			arrivals = make([]dto.StopArrivalResponse, len(rt.Arrivals))
			for j, a := range rt.Arrivals {
				arrivals[j] = dto.StopArrivalResponse{ClientID: a.ClientID, ArriveSec: a.ArriveSec, DepartSec: a.DepartSec}
			}
		}
		routes[i] = dto.RouteResponse{
			VehicleID:       rt.VehicleID,
			ClientIDs:       rt.ClientIDs,
			DistanceKM:      rt.DistanceKM,
			DurationMinutes: rt.DurationMinutes,
			Legs:            legs,
			Arrivals:        arrivals,
			GeometryValid:   rt.Geometry.Valid,
			Polyline:        rt.Geometry.Polyline,
		}
	}
	return dto.SolveResponse{
		Routes:          routes,
		UnservedIDs:     res.Solution.UnservedIDs,
		ServedPct:       res.Solution.ServedPct,
		KMTotal:         res.Solution.KMTotal,
		MinTotal:        res.Solution.MinTotal,
		BalanceStdStops: res.Solution.BalanceStdStops,
		Status:          res.Solution.Status,
	}
}
