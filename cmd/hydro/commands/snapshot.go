package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/aquascope/hydro/backend/internal/quality"
)

// snapshotCmd represents the snapshot command
var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Compute and store a measurement coverage snapshot",
	Long: `Runs the coverage gate over the recent sample window and
persists the resulting snapshot. The same check runs nightly from the
scheduler; this command is for ad-hoc runs after large imports.

Example:
  go run ./cmd/hydro snapshot`,
	RunE: runSnapshot,
}

func init() {
	rootCmd.AddCommand(snapshotCmd)
}

func runSnapshot(cmd *cobra.Command, args []string) error {
	_, log, db, err := bootstrap()
	if err != nil {
		return err
	}
	defer db.Close()

	gate := quality.NewGate(db.Pool, quality.DefaultConfig())
	repo := quality.NewRepository(db.Pool)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	snapshot, err := gate.Check(ctx, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("coverage check: %w", err)
	}

	if err := repo.SaveSnapshot(ctx, snapshot); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}

	log.WithFields(map[string]interface{}{
		"samples": snapshot.TotalSamples,
		"score":   snapshot.QualityScore,
		"passed":  snapshot.Passed,
	}).Info("Coverage snapshot recorded")

	fmt.Printf("Snapshot for %s\n", snapshot.Date.Format("2006-01-02"))
	fmt.Printf("  samples: %d\n", snapshot.TotalSamples)
	fmt.Printf("  score:   %.3f\n", snapshot.QualityScore)
	fmt.Printf("  passed:  %v\n", snapshot.Passed)
	for param, rate := range snapshot.Coverage {
		fmt.Printf("  %-10s %.1f%%\n", param, rate*100)
	}

	return nil
}
