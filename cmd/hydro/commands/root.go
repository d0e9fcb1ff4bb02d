package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	configFile string
	env        string
	verbose    bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "hydro",
	Short: "Hydro - groundwater quality monitoring backend",
	Long: `Hydro Unified CLI

Groundwater quality ingestion and classification service.
Samples are scored with HPI, MI and CD contamination indices and
categorized safe / moderate / unsafe.

Usage:
  go run ./cmd/hydro [command]

Examples:
  go run ./cmd/hydro api
  go run ./cmd/hydro import --file samples.csv
  go run ./cmd/hydro snapshot
  go run ./cmd/hydro test-db`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default is .env)")
	rootCmd.PersistentFlags().StringVar(&env, "env", "development", "environment (development|staging|production)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
