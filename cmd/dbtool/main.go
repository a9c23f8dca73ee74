package main

import (
	"flag"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"

	"fleetroute/internal/adapters/cache"
	"fleetroute/internal/adapters/repositories"
	"fleetroute/internal/adapters/routingbackend"
	"fleetroute/internal/api"
	"fleetroute/internal/config"
	"fleetroute/internal/orchestrator"
	"fleetroute/internal/platform/db"
)

// dbtool initializes the Postgres schema backing a production deployment
// (client/event tables plus the matrix/geometry cache tables) and, in serve
// mode, runs the same HTTP API as cmd/server but backed by that Postgres
// cache instead of the local SQLite one.
func main() {
	mode := flag.String("mode", "schema", `"schema": initialize tables and exit; "serve": also run the HTTP API against Postgres`)
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	databaseURL := os.Getenv("DATABASE_URL")
	if strings.TrimSpace(databaseURL) == "" {
		log.Fatal("DATABASE_URL is required")
	}

	conn, err := db.Open(databaseURL)
	if err != nil {
		log.Fatal(err)
	}
	defer conn.Close()

	log.Println("Initializing database schema...")
	if err := repositories.InitPostgresSchema(conn); err != nil {
		log.Fatalf("schema initialization failed: %v", err)
	}
	log.Println("Schema ready.")

	if *mode != "serve" {
		return
	}

	cfg := config.Default()
	cfg.BackendBaseURL = getEnv("ORS_BASE_URL", "https://api.openrouteservice.org")
	cfg.BackendAPIKey = os.Getenv("ORS_API_KEY")
	cfg.ArtifactsRoot = getEnv("ARTIFACTS_ROOT", "./artifacts")
	if strings.TrimSpace(cfg.BackendAPIKey) == "" {
		log.Fatal("ORS_API_KEY is required")
	}

	backend, err := routingbackend.NewORSBackend(cfg.BackendAPIKey, cfg.BackendBaseURL, cfg.HTTPTimeout)
	if err != nil {
		log.Fatal(err)
	}

	matrixCache := cache.NewSQLMatrixStore(conn)
	geometryCache := cache.NewSQLGeometryStore(conn)
	clientRepo := repositories.NewPostgresClientRepository(conn)

	orch := orchestrator.New(cfg, backend, matrixCache, geometryCache)
	router := api.NewRouter(orch, clientRepo)

	port := getEnv("PORT", "8081")
	log.Printf("Postgres-backed server listening addr=:%s", port)
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
