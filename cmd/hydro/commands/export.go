package commands

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/aquascope/hydro/backend/internal/contracts"
	"github.com/aquascope/hydro/backend/internal/report"
	"github.com/aquascope/hydro/backend/internal/samples"
)

// exportCmd represents the export command
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export samples to CSV or PDF",
	Long: `Exports samples matching the given filters.

Example:
  go run ./cmd/hydro export --out report.csv
  go run ./cmd/hydro export --out report.pdf --format pdf --category unsafe
  go run ./cmd/hydro export --out nadia.csv --district Nadia`,
	RunE: runExport,
}

var (
	exportOut      string
	exportFormat   string
	exportCategory string
	exportDistrict string
	exportState    string
)

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringVar(&exportOut, "out", "", "output file (required)")
	exportCmd.Flags().StringVar(&exportFormat, "format", "csv", "output format: csv or pdf")
	exportCmd.Flags().StringVar(&exportCategory, "category", "", "filter by category")
	exportCmd.Flags().StringVar(&exportDistrict, "district", "", "filter by district")
	exportCmd.Flags().StringVar(&exportState, "state", "", "filter by state")
	exportCmd.MarkFlagRequired("out")
}

func runExport(cmd *cobra.Command, args []string) error {
	if exportFormat != "csv" && exportFormat != "pdf" {
		return fmt.Errorf("unknown format %q (expected csv or pdf)", exportFormat)
	}

	_, _, db, err := bootstrap()
	if err != nil {
		return err
	}
	defer db.Close()

	repo := samples.NewRepository(db.Pool)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	list, err := repo.List(ctx, contracts.SampleFilter{
		Category: exportCategory,
		District: exportDistrict,
		State:    exportState,
		Limit:    10000,
	})
	if err != nil {
		return fmt.Errorf("load samples: %w", err)
	}

	f, err := os.Create(exportOut)
	if err != nil {
		return fmt.Errorf("create %s: %w", exportOut, err)
	}
	defer f.Close()

	switch exportFormat {
	case "csv":
		err = report.WriteCSV(f, list)
	case "pdf":
		err = report.WritePDF(f, list)
	}
	if err != nil {
		return fmt.Errorf("write %s: %w", exportOut, err)
	}

	fmt.Printf("Exported %d samples to %s\n", len(list), exportOut)
	return nil
}
