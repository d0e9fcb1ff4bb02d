package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/aquascope/hydro/backend/internal/api"
	"github.com/aquascope/hydro/backend/internal/api/handlers"
	"github.com/aquascope/hydro/backend/internal/ingest"
	"github.com/aquascope/hydro/backend/internal/quality"
	"github.com/aquascope/hydro/backend/internal/realtime"
	"github.com/aquascope/hydro/backend/internal/samples"
	"github.com/aquascope/hydro/backend/internal/scheduler"
	"github.com/aquascope/hydro/backend/internal/scheduler/jobs"
	"github.com/aquascope/hydro/backend/pkg/httputil"
	"github.com/aquascope/hydro/backend/pkg/redis"
)

// apiCmd represents the api command
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Start the API server",
	Long: `Starts the REST API server.

Endpoints:
  GET    /health              - Health check
  POST   /api/samples         - Ingest one sample
  GET    /api/samples         - List samples (filterable)
  GET    /api/samples/{id}    - Get one sample
  PUT    /api/samples/{id}    - Update a sample (reclassifies)
  DELETE /api/samples/{id}    - Delete a sample
  POST   /api/import          - Bulk CSV import
  POST   /api/import/portal   - Pull datasets from the upstream portal
  GET    /api/stats/summary   - Global aggregates
  GET    /api/stats/districts - Per-district averages
  GET    /api/export/csv      - CSV export
  GET    /api/export/pdf      - PDF report
  GET    /api/quality         - Coverage snapshot
  GET    /api/live            - Websocket sample stream

Example:
  go run ./cmd/hydro api
  go run ./cmd/hydro api --port 8080`,
	RunE: runAPIServer,
}

var (
	apiPort        string
	apiNoScheduler bool
)

func init() {
	rootCmd.AddCommand(apiCmd)

	apiCmd.Flags().StringVar(&apiPort, "port", "", "API server port (overrides PORT)")
	apiCmd.Flags().BoolVar(&apiNoScheduler, "no-scheduler", false, "disable the background job scheduler")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	fmt.Println("=== Hydro API Server ===")

	cfg, log, db, err := bootstrap()
	if err != nil {
		return err
	}
	defer db.Close()

	if apiPort != "" {
		cfg.Port = apiPort
	}

	log.WithFields(map[string]interface{}{
		"port": cfg.Port,
		"env":  cfg.Env,
	}).Info("Initializing API server")

	// Redis is optional; the cache degrades to a no-op when disabled
	redisClient, err := redis.New(cfg)
	if err != nil {
		log.WithError(err).Warn("Redis unavailable, caching disabled")
		redisClient = redis.Disabled()
	}
	defer redisClient.Close()
	cache := redis.NewCache(redisClient, "hydro")

	// Classification engine
	engine := newEngine(cfg)
	log.WithField("strict", engine.Strict()).Info("Classification engine ready")

	// Repositories
	sampleRepo := samples.NewRepository(db.Pool)
	coverageRepo := quality.NewRepository(db.Pool)

	// Coverage gate
	gate := quality.NewGate(db.Pool, quality.DefaultConfig())

	// Ingest pipeline
	importer := ingest.NewImporter(engine, sampleRepo, log)

	var portal *ingest.PortalClient
	if cfg.Portal.BaseURL != "" {
		httpClient := httputil.New(log)
		if redisClient.Enabled() {
			// Shared budget across every process pulling the portal
			limiter := redis.NewRateLimiter(redisClient, "hydro")
			httpClient = httpClient.WithRateLimiter(limiter, redis.RateLimitConfig{
				Key:    "portal",
				Limit:  int(cfg.Portal.RatePerSec * 60),
				Window: time.Minute,
			})
		}
		portal = ingest.NewPortalClient(httpClient, cfg.Portal.BaseURL,
			cfg.Portal.RatePerSec, cfg.Portal.Burst, log)
	}

	// Live stream hub
	hub := realtime.NewHub(log)

	// Handlers
	h := api.Handlers{
		Samples: handlers.NewSampleHandler(sampleRepo, engine, hub, cache, log),
		Imports: handlers.NewImportHandler(importer, portal, cache, cfg.Ingest.Workers, log),
		Stats:   handlers.NewStatsHandler(sampleRepo, cache, log),
		Exports: handlers.NewExportHandler(sampleRepo, log),
		Quality: handlers.NewQualityHandler(gate, coverageRepo, log),
		Hub:     hub,
	}

	router := api.NewRouter(h, db, log)
	server := api.New(cfg, log, router)

	// Background jobs
	var sched *scheduler.Scheduler
	if !apiNoScheduler {
		sched = scheduler.New(log)
		if err := sched.AddJob(jobs.NewCoverageJob(gate, coverageRepo, log)); err != nil {
			return fmt.Errorf("schedule coverage job: %w", err)
		}
		if portal != nil {
			job := jobs.NewPortalSyncJob(portal, importer, cache, cfg.Ingest.Workers, log)
			if err := sched.AddJob(job); err != nil {
				return fmt.Errorf("schedule portal sync job: %w", err)
			}
		}
		sched.Start()
	}

	// Start server with graceful shutdown
	go func() {
		if err := server.Start(); err != nil {
			log.WithError(err).Fatal("Failed to start server")
		}
	}()

	log.Info("API server started successfully")
	fmt.Printf("\nServer running on http://localhost:%s\n", cfg.Port)
	fmt.Println("Press Ctrl+C to stop")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	if sched != nil {
		sched.Stop()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Info("Server stopped")
	return nil
}
