package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/aquascope/hydro/backend/internal/api/handlers"
	"github.com/aquascope/hydro/backend/internal/realtime"
	"github.com/aquascope/hydro/backend/pkg/database"
	"github.com/aquascope/hydro/backend/pkg/logger"
)

// Handlers bundles everything the router mounts
type Handlers struct {
	Samples *handlers.SampleHandler
	Imports *handlers.ImportHandler
	Stats   *handlers.StatsHandler
	Exports *handlers.ExportHandler
	Quality *handlers.QualityHandler
	Hub     *realtime.Hub
}

// NewRouter creates and configures the HTTP router
func NewRouter(h Handlers, db *database.DB, log *logger.Logger) http.Handler {
	r := mux.NewRouter()

	// Health check
	r.HandleFunc("/health", healthCheckHandler(db)).Methods("GET")

	api := r.PathPrefix("/api").Subrouter()

	// Sample CRUD
	api.HandleFunc("/samples", h.Samples.Create).Methods("POST")
	api.HandleFunc("/samples", h.Samples.List).Methods("GET")
	api.HandleFunc("/samples/{id:[0-9]+}", h.Samples.Get).Methods("GET")
	api.HandleFunc("/samples/{id:[0-9]+}", h.Samples.Update).Methods("PUT")
	api.HandleFunc("/samples/{id:[0-9]+}", h.Samples.Delete).Methods("DELETE")

	// Bulk ingest
	api.HandleFunc("/import", h.Imports.ImportCSV).Methods("POST")
	api.HandleFunc("/import/portal", h.Imports.SyncPortal).Methods("POST")

	// Aggregates
	api.HandleFunc("/stats/summary", h.Stats.Summary).Methods("GET")
	api.HandleFunc("/stats/districts", h.Stats.Districts).Methods("GET")

	// Exports
	api.HandleFunc("/export/csv", h.Exports.CSV).Methods("GET")
	api.HandleFunc("/export/pdf", h.Exports.PDF).Methods("GET")

	// Coverage snapshots
	api.HandleFunc("/quality", h.Quality.Latest).Methods("GET")

	// Live sample stream
	api.Handle("/live", h.Hub).Methods("GET")

	// Apply middleware
	r.Use(loggingMiddleware(log))
	r.Use(recoveryMiddleware(log))

	return r
}

// healthCheckHandler reports server and database pool health
func healthCheckHandler(db *database.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		health, err := db.HealthCheck(r.Context())
		if err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"status":  "degraded",
				"service": "hydro-api",
				"error":   err.Error(),
			})
			return
		}

		json.NewEncoder(w).Encode(map[string]interface{}{
			"status":   "ok",
			"service":  "hydro-api",
			"database": health,
		})
	}
}

// loggingMiddleware logs HTTP requests
func loggingMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			next.ServeHTTP(w, r)

			log.WithFields(map[string]interface{}{
				"method":   r.Method,
				"path":     r.URL.Path,
				"duration": time.Since(start),
			}).Debug("HTTP request")
		})
	}
}

// recoveryMiddleware recovers from panics
func recoveryMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					log.WithFields(map[string]interface{}{
						"error": err,
						"path":  r.URL.Path,
					}).Error("Panic recovered")

					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					json.NewEncoder(w).Encode(map[string]string{
						"error": "Internal server error",
					})
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
