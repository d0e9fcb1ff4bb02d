package commands

import (
	"fmt"

	"github.com/aquascope/hydro/backend/internal/indices"
	"github.com/aquascope/hydro/backend/pkg/config"
	"github.com/aquascope/hydro/backend/pkg/database"
	"github.com/aquascope/hydro/backend/pkg/logger"
)

// bootstrap loads config, logger and the database pool. Every command
// that touches persistence starts here.
func bootstrap() (*config.Config, *logger.Logger, *database.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load config: %w", err)
	}

	log := logger.New(cfg)

	db, err := database.New(cfg)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("connect to database: %w", err)
	}

	return cfg, log, db, nil
}

// newEngine builds the classification engine from config: the default
// limit table with any LIMIT_* overrides applied, strict mode per config.
func newEngine(cfg *config.Config) *indices.Engine {
	table := indices.DefaultTable().WithOverrides(cfg.ThresholdOverrides)
	return indices.NewEngine(table, cfg.Ingest.Strict)
}
