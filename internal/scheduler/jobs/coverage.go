package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/aquascope/hydro/backend/internal/contracts"
	"github.com/aquascope/hydro/backend/internal/quality"
	"github.com/aquascope/hydro/backend/pkg/logger"
)

// CoverageJob computes and persists the nightly measurement coverage
// snapshot. Downstream consumers (dashboards, the recompute command)
// use the latest snapshot to decide whether the dataset is trustworthy.
type CoverageJob struct {
	gate   *quality.Gate
	repo   contracts.CoverageRepository
	logger *logger.Logger
}

// NewCoverageJob creates a new coverage snapshot job
func NewCoverageJob(gate *quality.Gate, repo contracts.CoverageRepository, log *logger.Logger) *CoverageJob {
	return &CoverageJob{
		gate:   gate,
		repo:   repo,
		logger: log,
	}
}

// Name returns the job name
func (j *CoverageJob) Name() string {
	return "coverage_snapshot"
}

// Schedule returns the cron schedule (2 AM daily, with seconds)
func (j *CoverageJob) Schedule() string {
	return "0 0 2 * * *"
}

// Run executes the coverage check
func (j *CoverageJob) Run(ctx context.Context) error {
	j.logger.Info("Starting scheduled coverage snapshot")

	snapshot, err := j.gate.Check(ctx, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("coverage check: %w", err)
	}

	if err := j.repo.SaveSnapshot(ctx, snapshot); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}

	j.logger.WithFields(map[string]interface{}{
		"samples": snapshot.TotalSamples,
		"score":   snapshot.QualityScore,
		"passed":  snapshot.Passed,
	}).Info("Coverage snapshot recorded")

	return nil
}
