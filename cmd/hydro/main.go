package main

import (
	"os"

	"github.com/aquascope/hydro/backend/cmd/hydro/commands"
)

// main is the entry point for the hydro CLI
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
