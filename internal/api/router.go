// Package api wires HTTP handlers over the orchestrator's two workflows:
// one ServeMux, one logging middleware wrap, handlers kept unaware of the
// concrete adapters behind the orchestrator.
package api

import (
	"net/http"

	"fleetroute/internal/api/handlers"
	"fleetroute/internal/orchestrator"
	"fleetroute/internal/ports"
)

// NewRouter wires HTTP handlers against the given Orchestrator and returns
// an http.Handler. clientRepo is optional (nil disables the repository-backed
// locate route); this is the API composition root.
func NewRouter(o *orchestrator.Orchestrator, clientRepo ports.ClientRepository) http.Handler {
	mux := http.NewServeMux()

	locateHandler := &handlers.LocateHandler{Orchestrator: o, ClientRepo: clientRepo}
	solveHandler := &handlers.SolveHandler{Orchestrator: o}
	backendHandler := &handlers.BackendHandler{Orchestrator: o}

	mux.HandleFunc("/health", handlers.Health)
	mux.HandleFunc("/backend/health", backendHandler.Status)
	mux.HandleFunc("/workflows/locate", locateHandler.Plan)
	mux.HandleFunc("/workflows/locate/from-repository", locateHandler.PlanFromRepository)
	mux.HandleFunc("/workflows/solve", solveHandler.Solve)

	return loggingMiddleware(mux)
}
