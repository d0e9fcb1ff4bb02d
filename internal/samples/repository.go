// Package samples persists groundwater sample records in PostgreSQL.
package samples

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aquascope/hydro/backend/internal/contracts"
)

// ErrNotFound is returned when a sample id does not exist
var ErrNotFound = errors.New("sample not found")

const (
	defaultListLimit = 100
	maxListLimit     = 10000 // exports pull full result sets
)

// Repository implements contracts.SampleRepository
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new sample repository
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const sampleColumns = `
	id, station_id, district, state, latitude, longitude, sampled_at,
	metals, water_quality, hpi, mi, cd, category, source, created_at, updated_at
`

// Save inserts a sample, or updates it when the (station, sampled_at)
// pair already exists, and returns the record id.
func (r *Repository) Save(ctx context.Context, s *contracts.Sample) (int64, error) {
	query := `
		INSERT INTO samples (
			station_id, district, state, latitude, longitude, sampled_at,
			metals, water_quality, hpi, mi, cd, category, source, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, now(), now())
		ON CONFLICT (station_id, sampled_at) DO UPDATE SET
			district = EXCLUDED.district,
			state = EXCLUDED.state,
			latitude = EXCLUDED.latitude,
			longitude = EXCLUDED.longitude,
			metals = EXCLUDED.metals,
			water_quality = EXCLUDED.water_quality,
			hpi = EXCLUDED.hpi,
			mi = EXCLUDED.mi,
			cd = EXCLUDED.cd,
			category = EXCLUDED.category,
			source = EXCLUDED.source,
			updated_at = now()
		RETURNING id
	`

	var id int64
	err := r.pool.QueryRow(ctx, query,
		s.StationID, s.District, s.State, s.Latitude, s.Longitude, s.SampledAt,
		s.Metals, s.WaterQuality, s.HPI, s.MI, s.CD, s.Category, s.Source,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("save sample: %w", err)
	}
	return id, nil
}

// SaveBatch saves multiple samples
func (r *Repository) SaveBatch(ctx context.Context, ss []*contracts.Sample) error {
	if len(ss) == 0 {
		return nil
	}

	for _, s := range ss {
		if _, err := r.Save(ctx, s); err != nil {
			return err
		}
	}
	return nil
}

// GetByID retrieves one sample
func (r *Repository) GetByID(ctx context.Context, id int64) (*contracts.Sample, error) {
	query := `SELECT ` + sampleColumns + ` FROM samples WHERE id = $1`

	s, err := r.scanOne(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get sample %d: %w", id, err)
	}
	return s, nil
}

// List retrieves samples matching the filter, newest first
func (r *Repository) List(ctx context.Context, f contracts.SampleFilter) ([]*contracts.Sample, error) {
	var (
		conds []string
		args  []interface{}
	)

	add := func(cond string, arg interface{}) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if f.Category != "" {
		add("category = $%d", f.Category)
	}
	if f.District != "" {
		add("district = $%d", f.District)
	}
	if f.State != "" {
		add("state = $%d", f.State)
	}
	if f.StationID != "" {
		add("station_id = $%d", f.StationID)
	}
	if !f.From.IsZero() {
		add("sampled_at >= $%d", f.From)
	}
	if !f.To.IsZero() {
		add("sampled_at <= $%d", f.To)
	}
	if f.MinLat != 0 || f.MaxLat != 0 || f.MinLon != 0 || f.MaxLon != 0 {
		add("latitude >= $%d", f.MinLat)
		add("latitude <= $%d", f.MaxLat)
		add("longitude >= $%d", f.MinLon)
		add("longitude <= $%d", f.MaxLon)
	}

	query := `SELECT ` + sampleColumns + ` FROM samples`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY sampled_at DESC, id DESC"

	limit := f.Limit
	if limit <= 0 {
		limit = defaultListLimit
	} else if limit > maxListLimit {
		limit = maxListLimit
	}
	args = append(args, limit)
	query += fmt.Sprintf(" LIMIT $%d", len(args))

	if f.Offset > 0 {
		args = append(args, f.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list samples: %w", err)
	}
	defer rows.Close()

	var out []*contracts.Sample
	for rows.Next() {
		s, err := r.scanOne(rows)
		if err != nil {
			return nil, fmt.Errorf("scan sample: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// Update rewrites an existing sample in place
func (r *Repository) Update(ctx context.Context, s *contracts.Sample) error {
	query := `
		UPDATE samples SET
			station_id = $2,
			district = $3,
			state = $4,
			latitude = $5,
			longitude = $6,
			sampled_at = $7,
			metals = $8,
			water_quality = $9,
			hpi = $10,
			mi = $11,
			cd = $12,
			category = $13,
			updated_at = now()
		WHERE id = $1
	`

	tag, err := r.pool.Exec(ctx, query,
		s.ID, s.StationID, s.District, s.State, s.Latitude, s.Longitude, s.SampledAt,
		s.Metals, s.WaterQuality, s.HPI, s.MI, s.CD, s.Category,
	)
	if err != nil {
		return fmt.Errorf("update sample %d: %w", s.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a sample
func (r *Repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM samples WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete sample %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ForEach streams every sample through fn, oldest first. Used by the
// recompute pass after a limit-table revision.
func (r *Repository) ForEach(ctx context.Context, fn func(*contracts.Sample) error) error {
	query := `SELECT ` + sampleColumns + ` FROM samples ORDER BY id ASC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return fmt.Errorf("stream samples: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		s, err := r.scanOne(rows)
		if err != nil {
			return fmt.Errorf("scan sample: %w", err)
		}
		if err := fn(s); err != nil {
			return err
		}
	}
	return rows.Err()
}

// scanOne scans a single sample row
func (r *Repository) scanOne(row pgx.Row) (*contracts.Sample, error) {
	var s contracts.Sample
	err := row.Scan(
		&s.ID, &s.StationID, &s.District, &s.State, &s.Latitude, &s.Longitude, &s.SampledAt,
		&s.Metals, &s.WaterQuality, &s.HPI, &s.MI, &s.CD, &s.Category, &s.Source,
		&s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}
