package jobs

import (
	"context"
	"fmt"

	"github.com/aquascope/hydro/backend/internal/ingest"
	"github.com/aquascope/hydro/backend/pkg/logger"
	"github.com/aquascope/hydro/backend/pkg/redis"
)

// PortalSyncJob pulls every dataset published by the upstream portal
// and ingests new or updated station files.
type PortalSyncJob struct {
	portal   *ingest.PortalClient
	importer *ingest.Importer
	cache    *redis.Cache
	workers  int
	logger   *logger.Logger
}

// NewPortalSyncJob creates a new portal sync job
func NewPortalSyncJob(
	portal *ingest.PortalClient,
	importer *ingest.Importer,
	cache *redis.Cache,
	workers int,
	log *logger.Logger,
) *PortalSyncJob {
	return &PortalSyncJob{
		portal:   portal,
		importer: importer,
		cache:    cache,
		workers:  workers,
		logger:   log,
	}
}

// Name returns the job name
func (j *PortalSyncJob) Name() string {
	return "portal_sync"
}

// Schedule returns the cron schedule (1 AM daily, with seconds)
func (j *PortalSyncJob) Schedule() string {
	return "0 0 1 * * *"
}

// Run executes the portal sync
func (j *PortalSyncJob) Run(ctx context.Context) error {
	j.logger.Info("Starting scheduled portal sync")

	result, err := j.portal.FetchAndImport(ctx, j.importer, ingest.Config{
		Workers: j.workers,
		Source:  "portal",
	})
	if err != nil {
		return fmt.Errorf("portal sync: %w", err)
	}

	j.cache.Invalidate(ctx)

	j.logger.WithFields(map[string]interface{}{
		"imported": result.Imported,
		"skipped":  result.Skipped,
	}).Info("Portal sync completed")

	return nil
}
