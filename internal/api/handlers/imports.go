package handlers

import (
	"net/http"

	"github.com/aquascope/hydro/backend/internal/ingest"
	"github.com/aquascope/hydro/backend/pkg/logger"
	"github.com/aquascope/hydro/backend/pkg/redis"
)

// ImportHandler handles bulk CSV ingestion
type ImportHandler struct {
	importer *ingest.Importer
	portal   *ingest.PortalClient
	cache    *redis.Cache
	workers  int
	logger   *logger.Logger
}

// NewImportHandler creates a new import handler. portal may be nil when
// no upstream portal is configured.
func NewImportHandler(
	importer *ingest.Importer,
	portal *ingest.PortalClient,
	cache *redis.Cache,
	workers int,
	log *logger.Logger,
) *ImportHandler {
	return &ImportHandler{
		importer: importer,
		portal:   portal,
		cache:    cache,
		workers:  workers,
		logger:   log,
	}
}

// ImportCSV ingests a CSV file posted as the request body
// POST /api/import
func (h *ImportHandler) ImportCSV(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	result, err := h.importer.ImportCSV(ctx, r.Body, ingest.Config{
		Workers: h.workers,
		Source:  "upload",
	})
	if err != nil {
		h.logger.WithError(err).Error("CSV import failed")
		respondError(w, http.StatusBadRequest, "Failed to parse CSV: "+err.Error())
		return
	}

	h.cache.Invalidate(ctx)

	h.logger.WithFields(map[string]interface{}{
		"imported": result.Imported,
		"skipped":  result.Skipped,
	}).Info("CSV import completed")

	respondJSON(w, http.StatusOK, result)
}

// SyncPortal pulls every dataset published by the upstream portal
// POST /api/import/portal
func (h *ImportHandler) SyncPortal(w http.ResponseWriter, r *http.Request) {
	if h.portal == nil {
		respondError(w, http.StatusServiceUnavailable, "No portal configured")
		return
	}

	ctx := r.Context()

	result, err := h.portal.FetchAndImport(ctx, h.importer, ingest.Config{
		Workers: h.workers,
		Source:  "portal",
	})
	if err != nil {
		h.logger.WithError(err).Error("Portal sync failed")
		respondError(w, http.StatusBadGateway, "Portal sync failed")
		return
	}

	h.cache.Invalidate(ctx)
	respondJSON(w, http.StatusOK, result)
}
