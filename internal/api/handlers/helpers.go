package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"fleetroute/internal/rerr"
)

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("encode failed: method=%s path=%s err=%v", r.Method, r.URL.Path, err)
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	writeJSON(w, r, status, map[string]string{"error": msg})
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// statusForKind maps a structured error kind to the HTTP status a caller
// should see. Kinds the orchestrator never surfaces (BackendUnavailable is
// absorbed internally) fall through to 500.
func statusForKind(k rerr.Kind) int {
	switch k {
	case rerr.KindInvalidInput, rerr.KindInvalidGeometry, rerr.KindNonWGS84, rerr.KindEmptyInput:
		return http.StatusBadRequest
	case rerr.KindMatrixTooLarge:
		return http.StatusUnprocessableEntity
	case rerr.KindSolverInfeasible, rerr.KindSolverTimeout:
		return http.StatusConflict
	case rerr.KindIOError:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// writeOrchestratorError translates an orchestrator error into an HTTP
// response, using the structured rerr.Kind when present.
func writeOrchestratorError(w http.ResponseWriter, r *http.Request, err error) {
	kind := rerr.KindOf(err)
	status := http.StatusInternalServerError
	if kind != "" {
		status = statusForKind(kind)
	}
	writeError(w, r, status, err.Error())
}
