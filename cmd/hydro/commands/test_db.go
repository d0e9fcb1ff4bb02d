package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/aquascope/hydro/backend/pkg/config"
	"github.com/aquascope/hydro/backend/pkg/database"
)

// testDBCmd represents the test-db command
var testDBCmd = &cobra.Command{
	Use:   "test-db",
	Short: "Test the PostgreSQL connection",
	Long: `Tests the database connection and shows pool statistics.

Example:
  go run ./cmd/hydro test-db
  go run ./cmd/hydro test-db --env production`,
	RunE: runTestDB,
}

func init() {
	rootCmd.AddCommand(testDBCmd)
}

func runTestDB(cmd *cobra.Command, args []string) error {
	fmt.Println("=== Hydro Database Connection Test ===")

	fmt.Println("Loading configuration...")
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	fmt.Printf("Config loaded (ENV: %s)\n", cfg.Env)
	fmt.Printf("Database URL: %s\n\n", maskPassword(cfg.Database.URL))

	fmt.Println("Connecting to database...")
	db, err := database.New(cfg)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()
	fmt.Println("Database connection established")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.Ping(ctx); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}
	fmt.Println("Ping successful")

	status, err := db.HealthCheck(ctx)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}

	fmt.Println("\nHealth check results:")
	fmt.Printf("  Healthy:       %v\n", status.Healthy)
	fmt.Printf("  Response time: %v\n", status.ResponseTime)

	fmt.Println("\nConnection pool statistics:")
	fmt.Printf("  Max connections:      %d\n", status.Stats.MaxConns)
	fmt.Printf("  Total connections:    %d\n", status.Stats.TotalConns)
	fmt.Printf("  Acquired connections: %d\n", status.Stats.AcquiredConns)
	fmt.Printf("  Idle connections:     %d\n", status.Stats.IdleConns)

	fmt.Println("\nAll checks passed")
	return nil
}

// maskPassword masks credentials in the database URL for display
func maskPassword(url string) string {
	if len(url) < 55 {
		if len(url) > 30 {
			return url[:30] + "***"
		}
		return "***"
	}
	return url[:30] + "***" + url[len(url)-25:]
}
