package contracts

import (
	"context"
	"time"
)

// Repository interfaces are defined here and implemented by internal/samples.

// SampleRepository manages persisted groundwater samples
type SampleRepository interface {
	Save(ctx context.Context, sample *Sample) (int64, error)
	SaveBatch(ctx context.Context, samples []*Sample) error
	GetByID(ctx context.Context, id int64) (*Sample, error)
	List(ctx context.Context, filter SampleFilter) ([]*Sample, error)
	Update(ctx context.Context, sample *Sample) error
	Delete(ctx context.Context, id int64) error

	// Aggregates
	CountByCategory(ctx context.Context) ([]CategoryCount, error)
	StatsByDistrict(ctx context.Context) ([]DistrictStats, error)
	GetSummary(ctx context.Context) (*Summary, error)
}

// CoverageRepository manages measurement coverage snapshots
type CoverageRepository interface {
	SaveSnapshot(ctx context.Context, snapshot *CoverageSnapshot) error
	GetLatestSnapshot(ctx context.Context) (*CoverageSnapshot, error)
	GetSnapshotByDate(ctx context.Context, date time.Time) (*CoverageSnapshot, error)
}
