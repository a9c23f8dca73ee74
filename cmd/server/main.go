package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	_ "modernc.org/sqlite"

	"fleetroute/internal/adapters/cache"
	"fleetroute/internal/adapters/repositories"
	"fleetroute/internal/adapters/routingbackend"
	"fleetroute/internal/api"
	"fleetroute/internal/config"
	"fleetroute/internal/orchestrator"
)

// main is the application composition root: it loads config from the
// environment, wires concrete adapters (SQLite cache, ORS routing backend)
// behind the core's ports, and starts the HTTP server exposing the two
// orchestrator workflows with tuned http.Server timeouts.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	cfg := config.Default()
	cfg.BackendBaseURL = getEnv("ORS_BASE_URL", "https://api.openrouteservice.org")
	cfg.BackendAPIKey = os.Getenv("ORS_API_KEY")
	cfg.ArtifactsRoot = getEnv("ARTIFACTS_ROOT", "./artifacts")
	if v := os.Getenv("VRP_TIME_LIMIT_SECONDS"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil {
			cfg.VRPTimeLimit = time.Duration(secs) * time.Second
		}
	}

	if strings.TrimSpace(cfg.BackendAPIKey) == "" {
		log.Fatal("ORS_API_KEY is required")
	}

	dbPath := getEnv("DB_PATH", "data/app.db")
	port := getEnv("PORT", "8080")

	db, err := openDB(dbPath)
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	// Initialize schema on startup; client/event rows are seeded out of band
	// (the core never requires persisted clients, only the demo repository does).
	if err := repositories.InitSchema(db); err != nil {
		log.Fatalf("init schema: %v", err)
	}
	if err := cache.InitSchema(context.Background(), db); err != nil {
		log.Fatalf("init cache schema: %v", err)
	}

	backend, err := routingbackend.NewORSBackend(cfg.BackendAPIKey, cfg.BackendBaseURL, cfg.HTTPTimeout)
	if err != nil {
		log.Fatal(err)
	}

	matrixCache := cache.NewSQLiteMatrixStore(db)
	geometryCache := cache.NewSQLiteGeometryStore(db)
	clientRepo := repositories.NewSQLiteClientRepository(db)

	orch := orchestrator.New(cfg, backend, matrixCache, geometryCache)
	router := api.NewRouter(orch, clientRepo)

	// Timeouts are tuned for cold-cache route planning (external API latency).
	log.Printf("Server listening addr=:%s", port)
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	log.Fatal(srv.ListenAndServe())
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func openDB(dbPath string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("openDB: open sqlite database %q: %w", dbPath, err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("openDB: verify sqlite connection to %q: %w", dbPath, err)
	}

	return db, nil
}
