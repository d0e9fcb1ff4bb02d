package commands

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/aquascope/hydro/backend/internal/ingest"
	"github.com/aquascope/hydro/backend/internal/samples"
	"github.com/aquascope/hydro/backend/pkg/httputil"
	"github.com/aquascope/hydro/backend/pkg/redis"
)

// importCmd represents the import command
var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import samples from a CSV file or the upstream portal",
	Long: `Imports groundwater samples.

With --file, parses a local CSV export. Without it, discovers and pulls
every station dataset published by the configured portal.

Example:
  go run ./cmd/hydro import --file samples.csv
  go run ./cmd/hydro import --portal
  go run ./cmd/hydro import --file samples.csv --workers 8`,
	RunE: runImport,
}

var (
	importFile    string
	importPortal  bool
	importWorkers int
)

func init() {
	rootCmd.AddCommand(importCmd)

	importCmd.Flags().StringVar(&importFile, "file", "", "CSV file to import")
	importCmd.Flags().BoolVar(&importPortal, "portal", false, "pull datasets from the upstream portal")
	importCmd.Flags().IntVar(&importWorkers, "workers", 0, "worker count (default from config)")
}

func runImport(cmd *cobra.Command, args []string) error {
	if importFile == "" && !importPortal {
		return fmt.Errorf("either --file or --portal is required")
	}

	cfg, log, db, err := bootstrap()
	if err != nil {
		return err
	}
	defer db.Close()

	engine := newEngine(cfg)
	repo := samples.NewRepository(db.Pool)
	importer := ingest.NewImporter(engine, repo, log)

	workers := cfg.Ingest.Workers
	if importWorkers > 0 {
		workers = importWorkers
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	start := time.Now()
	var result *ingest.Result

	if importFile != "" {
		f, err := os.Open(importFile)
		if err != nil {
			return fmt.Errorf("open %s: %w", importFile, err)
		}
		defer f.Close()

		result, err = importer.ImportCSV(ctx, f, ingest.Config{
			Workers: workers,
			Source:  "file",
		})
		if err != nil {
			return fmt.Errorf("import %s: %w", importFile, err)
		}
	} else {
		if cfg.Portal.BaseURL == "" {
			return fmt.Errorf("PORTAL_BASE_URL is not configured")
		}

		httpClient := httputil.New(log)
		if redisClient, rerr := redis.New(cfg); rerr == nil && redisClient.Enabled() {
			defer redisClient.Close()
			limiter := redis.NewRateLimiter(redisClient, "hydro")
			httpClient = httpClient.WithRateLimiter(limiter, redis.RateLimitConfig{
				Key:    "portal",
				Limit:  int(cfg.Portal.RatePerSec * 60),
				Window: time.Minute,
			})
		}
		portal := ingest.NewPortalClient(httpClient, cfg.Portal.BaseURL,
			cfg.Portal.RatePerSec, cfg.Portal.Burst, log)

		result, err = portal.FetchAndImport(ctx, importer, ingest.Config{
			Workers: workers,
			Source:  "portal",
		})
		if err != nil {
			return fmt.Errorf("portal import: %w", err)
		}
	}

	fmt.Printf("\nImport finished in %s\n", time.Since(start).Round(time.Millisecond))
	fmt.Printf("  imported: %d\n", result.Imported)
	fmt.Printf("  skipped:  %d\n", result.Skipped)
	for _, re := range result.RowErrors {
		fmt.Printf("  line %d: %s\n", re.Line, re.Reason)
	}

	return nil
}
