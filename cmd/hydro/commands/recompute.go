package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/aquascope/hydro/backend/internal/contracts"
	"github.com/aquascope/hydro/backend/internal/indices"
	"github.com/aquascope/hydro/backend/internal/samples"
)

// recomputeCmd represents the recompute command
var recomputeCmd = &cobra.Command{
	Use:   "recompute",
	Short: "Recompute indices for every stored sample",
	Long: `Streams every stored sample through the classification engine
and rewrites its indices and category. Run after changing LIMIT_*
threshold overrides.

With --legacy the old fixed-formula variant is used instead; it only
considers lead, cadmium, arsenic and chromium. Kept for comparing runs
against historical classifications.

Example:
  go run ./cmd/hydro recompute
  go run ./cmd/hydro recompute --legacy`,
	RunE: runRecompute,
}

var recomputeLegacy bool

func init() {
	rootCmd.AddCommand(recomputeCmd)

	recomputeCmd.Flags().BoolVar(&recomputeLegacy, "legacy", false, "use the legacy fixed-formula variant")
}

func runRecompute(cmd *cobra.Command, args []string) error {
	cfg, log, db, err := bootstrap()
	if err != nil {
		return err
	}
	defer db.Close()

	engine := newEngine(cfg)
	repo := samples.NewRepository(db.Pool)

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Minute)
	defer cancel()

	start := time.Now()
	var processed, changed int

	err = repo.ForEach(ctx, func(s *contracts.Sample) error {
		ms := indices.MeasurementSet{
			Metals:       s.Metals,
			WaterQuality: s.WaterQuality,
		}

		var result indices.IndexResult
		if recomputeLegacy {
			result = indices.LegacyCompute(ms)
		} else {
			result = engine.Compute(ms)
		}

		processed++
		if result.HPI == s.HPI && result.MI == s.MI && result.CD == s.CD && result.Category == s.Category {
			return nil
		}

		s.HPI = result.HPI
		s.MI = result.MI
		s.CD = result.CD
		s.Category = result.Category
		changed++

		return repo.Update(ctx, s)
	})
	if err != nil {
		return fmt.Errorf("recompute: %w", err)
	}

	log.WithFields(map[string]interface{}{
		"processed": processed,
		"changed":   changed,
		"legacy":    recomputeLegacy,
	}).Info("Recompute completed")

	fmt.Printf("Recomputed %d samples (%d changed) in %s\n",
		processed, changed, time.Since(start).Round(time.Millisecond))
	return nil
}
