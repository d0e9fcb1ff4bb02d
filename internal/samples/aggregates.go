package samples

import (
	"context"
	"fmt"

	"github.com/aquascope/hydro/backend/internal/contracts"
)

// CountByCategory returns the sample count per safety category
func (r *Repository) CountByCategory(ctx context.Context) ([]contracts.CategoryCount, error) {
	query := `
		SELECT category, COUNT(*)
		FROM samples
		GROUP BY category
		ORDER BY category
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("count by category: %w", err)
	}
	defer rows.Close()

	var out []contracts.CategoryCount
	for rows.Next() {
		var c contracts.CategoryCount
		if err := rows.Scan(&c.Category, &c.Count); err != nil {
			return nil, fmt.Errorf("scan category count: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// StatsByDistrict returns per-district averages and unsafe counts,
// worst districts first.
func (r *Repository) StatsByDistrict(ctx context.Context) ([]contracts.DistrictStats, error) {
	query := `
		SELECT
			district,
			MAX(state) AS state,
			COUNT(*) AS sample_count,
			AVG(hpi) AS avg_hpi,
			AVG(mi) AS avg_mi,
			AVG(cd) AS avg_cd,
			COUNT(*) FILTER (WHERE category = 'unsafe') AS unsafe_count
		FROM samples
		WHERE district <> ''
		GROUP BY district
		ORDER BY avg_hpi DESC
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("stats by district: %w", err)
	}
	defer rows.Close()

	var out []contracts.DistrictStats
	for rows.Next() {
		var d contracts.DistrictStats
		if err := rows.Scan(
			&d.District, &d.State, &d.SampleCount,
			&d.AvgHPI, &d.AvgMI, &d.AvgCD, &d.UnsafeCount,
		); err != nil {
			return nil, fmt.Errorf("scan district stats: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// GetSummary returns the corpus-wide aggregate
func (r *Repository) GetSummary(ctx context.Context) (*contracts.Summary, error) {
	summary := &contracts.Summary{}

	query := `
		SELECT
			COUNT(*),
			COALESCE(AVG(hpi), 0),
			COALESCE(AVG(mi), 0),
			COALESCE(AVG(cd), 0),
			COALESCE(MAX(sampled_at), 'epoch'::timestamptz)
		FROM samples
	`

	err := r.pool.QueryRow(ctx, query).Scan(
		&summary.TotalSamples, &summary.AvgHPI, &summary.AvgMI, &summary.AvgCD,
		&summary.LastSampled,
	)
	if err != nil {
		return nil, fmt.Errorf("summary: %w", err)
	}

	categories, err := r.CountByCategory(ctx)
	if err != nil {
		return nil, err
	}
	summary.Categories = categories

	return summary, nil
}
