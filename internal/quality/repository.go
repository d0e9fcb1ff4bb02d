package quality

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aquascope/hydro/backend/internal/contracts"
)

// Repository implements contracts.CoverageRepository
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new coverage snapshot repository
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// SaveSnapshot persists a coverage snapshot, one per day
func (r *Repository) SaveSnapshot(ctx context.Context, s *contracts.CoverageSnapshot) error {
	query := `
		INSERT INTO coverage_snapshots (date, total_samples, coverage, quality_score, passed)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (date) DO UPDATE SET
			total_samples = EXCLUDED.total_samples,
			coverage = EXCLUDED.coverage,
			quality_score = EXCLUDED.quality_score,
			passed = EXCLUDED.passed
	`

	_, err := r.pool.Exec(ctx, query,
		s.Date, s.TotalSamples, s.Coverage, s.QualityScore, s.Passed,
	)
	if err != nil {
		return fmt.Errorf("save coverage snapshot: %w", err)
	}
	return nil
}

// GetLatestSnapshot returns the most recent snapshot
func (r *Repository) GetLatestSnapshot(ctx context.Context) (*contracts.CoverageSnapshot, error) {
	query := `
		SELECT date, total_samples, coverage, quality_score, passed
		FROM coverage_snapshots
		ORDER BY date DESC
		LIMIT 1
	`

	return r.scanOne(r.pool.QueryRow(ctx, query))
}

// GetSnapshotByDate returns the snapshot for a specific day
func (r *Repository) GetSnapshotByDate(ctx context.Context, date time.Time) (*contracts.CoverageSnapshot, error) {
	query := `
		SELECT date, total_samples, coverage, quality_score, passed
		FROM coverage_snapshots
		WHERE date = $1
	`

	return r.scanOne(r.pool.QueryRow(ctx, query, date))
}

func (r *Repository) scanOne(row pgx.Row) (*contracts.CoverageSnapshot, error) {
	var s contracts.CoverageSnapshot
	err := row.Scan(&s.Date, &s.TotalSamples, &s.Coverage, &s.QualityScore, &s.Passed)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("no coverage snapshot recorded")
		}
		return nil, fmt.Errorf("get coverage snapshot: %w", err)
	}
	return &s, nil
}
