package ingest

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/aquascope/hydro/backend/internal/contracts"
	"github.com/aquascope/hydro/backend/internal/indices"
	"github.com/aquascope/hydro/backend/pkg/logger"
)

// Importer runs bulk imports: parse, classify, persist.
type Importer struct {
	engine *indices.Engine
	repo   contracts.SampleRepository
	logger *logger.Logger
}

// Config holds importer configuration
type Config struct {
	Workers int
	Source  string // recorded on each sample: file, upload, portal
}

// RowError records a row that could not be imported
type RowError struct {
	Line   int    `json:"line"`
	Reason string `json:"reason"`
}

// Result summarizes a bulk import
type Result struct {
	Imported  int        `json:"imported"`
	Skipped   int        `json:"skipped"`
	RowErrors []RowError `json:"row_errors,omitempty"`
}

// NewImporter creates a new bulk importer
func NewImporter(engine *indices.Engine, repo contracts.SampleRepository, log *logger.Logger) *Importer {
	return &Importer{
		engine: engine,
		repo:   repo,
		logger: log.WithField("module", "importer"),
	}
}

// ImportCSV parses a CSV stream and imports every row. Rows are
// independent, so classification and persistence run on a worker pool;
// result order is irrelevant.
func (im *Importer) ImportCSV(ctx context.Context, r io.Reader, cfg Config) (*Result, error) {
	rows, err := ParseCSV(r)
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}

	return im.ImportRows(ctx, rows, cfg)
}

// ImportRows classifies and persists parsed rows concurrently
func (im *Importer) ImportRows(ctx context.Context, rows []Row, cfg Config) (*Result, error) {
	workers := cfg.Workers
	if workers < 1 {
		workers = 1
	}

	im.logger.WithFields(map[string]interface{}{
		"rows":    len(rows),
		"workers": workers,
		"strict":  im.engine.Strict(),
	}).Info("Starting bulk import")

	rowCh := make(chan Row, len(rows))
	errCh := make(chan RowError, len(rows))
	var imported int
	var mu sync.Mutex

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for row := range rowCh {
				select {
				case <-ctx.Done():
					errCh <- RowError{Line: row.Line, Reason: ctx.Err().Error()}
					continue
				default:
				}

				if err := im.importRow(ctx, row, cfg.Source); err != nil {
					errCh <- RowError{Line: row.Line, Reason: err.Error()}
					continue
				}
				mu.Lock()
				imported++
				mu.Unlock()
			}
		}()
	}

	for _, row := range rows {
		rowCh <- row
	}
	close(rowCh)
	wg.Wait()
	close(errCh)

	result := &Result{Imported: imported}
	for rowErr := range errCh {
		result.RowErrors = append(result.RowErrors, rowErr)
	}
	result.Skipped = len(result.RowErrors)

	im.logger.WithFields(map[string]interface{}{
		"imported": result.Imported,
		"skipped":  result.Skipped,
	}).Info("Bulk import completed")

	return result, nil
}

// importRow classifies one row and persists it
func (im *Importer) importRow(ctx context.Context, row Row, source string) error {
	rawMetals, rawWQ := row.ToMeasurements()

	result, ms, issues := im.engine.ComputeRaw(rawMetals, rawWQ)
	if im.engine.Strict() && len(issues) > 0 {
		return fmt.Errorf("invalid readings: %v", issues)
	}

	// Persist the coerced measurements, not the raw strings, so the
	// stored document matches what the indices were computed from.
	sample := &contracts.Sample{
		StationID:    row.StationID,
		District:     row.District,
		State:        row.State,
		Latitude:     row.Latitude,
		Longitude:    row.Longitude,
		SampledAt:    row.SampledAt,
		Metals:       ms.Metals,
		WaterQuality: ms.WaterQuality,
		HPI:          result.HPI,
		MI:           result.MI,
		CD:           result.CD,
		Category:     result.Category,
		Source:       source,
	}

	if _, err := im.repo.Save(ctx, sample); err != nil {
		return fmt.Errorf("persist: %w", err)
	}
	return nil
}
