// Package quality measures how complete the persisted measurement
// corpus is: the share of samples that actually carry each canonical
// parameter. A low score means the indices are being computed from
// sparse lab sheets and should be read accordingly.
package quality

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aquascope/hydro/backend/internal/contracts"
)

// Gate validates measurement coverage and generates snapshots
type Gate struct {
	db     *pgxpool.Pool
	config Config
}

// Config holds coverage gate thresholds
type Config struct {
	MinCoreCoverage      float64 // lead/cadmium/arsenic/chromium
	MinExtendedCoverage  float64 // uranium/iron/mercury
	MinChemistryCoverage float64 // ph/tds/fluoride/nitrate
	Window               time.Duration
}

// DefaultConfig returns the production gate thresholds
func DefaultConfig() Config {
	return Config{
		MinCoreCoverage:      0.95,
		MinExtendedCoverage:  0.50,
		MinChemistryCoverage: 0.80,
		Window:               365 * 24 * time.Hour,
	}
}

// coreMetals are required on effectively every sample; extendedMetals
// arrived with the newer lab panels and are expected to be sparse.
var (
	coreMetals      = []string{"lead", "cadmium", "arsenic", "chromium"}
	extendedMetals  = []string{"uranium", "iron", "mercury"}
	chemistryParams = []string{"ph", "tds", "fluoride", "nitrate"}
)

// NewGate creates a new coverage gate
func NewGate(db *pgxpool.Pool, config Config) *Gate {
	return &Gate{db: db, config: config}
}

// Check computes parameter coverage for samples collected in the window
// ending at date and scores the corpus.
func (g *Gate) Check(ctx context.Context, date time.Time) (*contracts.CoverageSnapshot, error) {
	snapshot := &contracts.CoverageSnapshot{
		Date:     date,
		Coverage: make(map[string]float64),
	}

	from := date.Add(-g.config.Window)

	total, err := g.countSamples(ctx, from, date)
	if err != nil {
		return nil, fmt.Errorf("count samples: %w", err)
	}
	snapshot.TotalSamples = total

	if total == 0 {
		return snapshot, nil
	}

	for _, param := range coreMetals {
		cov, err := g.parameterCoverage(ctx, "metals", param, from, date)
		if err != nil {
			return nil, fmt.Errorf("coverage %s: %w", param, err)
		}
		snapshot.Coverage[param] = cov
	}
	for _, param := range extendedMetals {
		cov, err := g.parameterCoverage(ctx, "metals", param, from, date)
		if err != nil {
			return nil, fmt.Errorf("coverage %s: %w", param, err)
		}
		snapshot.Coverage[param] = cov
	}
	for _, param := range chemistryParams {
		cov, err := g.parameterCoverage(ctx, "water_quality", param, from, date)
		if err != nil {
			return nil, fmt.Errorf("coverage %s: %w", param, err)
		}
		snapshot.Coverage[param] = cov
	}

	snapshot.QualityScore = g.calculateScore(snapshot.Coverage)
	snapshot.Passed = g.passes(snapshot.Coverage)

	return snapshot, nil
}

// countSamples returns the number of samples in the window
func (g *Gate) countSamples(ctx context.Context, from, to time.Time) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM samples WHERE sampled_at BETWEEN $1 AND $2`

	if err := g.db.QueryRow(ctx, query, from, to).Scan(&count); err != nil {
		return 0, fmt.Errorf("query sample count: %w", err)
	}
	return count, nil
}

// parameterCoverage returns the fraction of samples in the window whose
// measurement document carries the given key.
func (g *Gate) parameterCoverage(ctx context.Context, column, param string, from, to time.Time) (float64, error) {
	// column is one of our two fixed jsonb column names, never user input
	query := fmt.Sprintf(`
		SELECT COALESCE(
			COUNT(*) FILTER (WHERE %s ? $1)::FLOAT / NULLIF(COUNT(*), 0), 0)
		FROM samples
		WHERE sampled_at BETWEEN $2 AND $3
	`, column)

	var coverage float64
	if err := g.db.QueryRow(ctx, query, param, from, to).Scan(&coverage); err != nil {
		return 0, fmt.Errorf("query parameter coverage: %w", err)
	}
	return coverage, nil
}

// calculateScore computes the weighted coverage score
func (g *Gate) calculateScore(coverage map[string]float64) float64 {
	// Group weights sum to 1.0; within a group every parameter weighs
	// the same.
	groups := []struct {
		params []string
		weight float64
	}{
		{coreMetals, 0.6},
		{extendedMetals, 0.1},
		{chemistryParams, 0.3},
	}

	score := 0.0
	for _, group := range groups {
		perParam := group.weight / float64(len(group.params))
		for _, param := range group.params {
			if cov, ok := coverage[param]; ok {
				score += cov * perParam
			}
		}
	}
	return score
}

// passes checks every group against its configured floor
func (g *Gate) passes(coverage map[string]float64) bool {
	groupMean := func(params []string) float64 {
		sum := 0.0
		for _, p := range params {
			sum += coverage[p]
		}
		return sum / float64(len(params))
	}

	return groupMean(coreMetals) >= g.config.MinCoreCoverage &&
		groupMean(extendedMetals) >= g.config.MinExtendedCoverage &&
		groupMean(chemistryParams) >= g.config.MinChemistryCoverage
}
