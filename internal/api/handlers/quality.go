package handlers

import (
	"net/http"
	"time"

	"github.com/aquascope/hydro/backend/internal/contracts"
	"github.com/aquascope/hydro/backend/internal/quality"
	"github.com/aquascope/hydro/backend/pkg/logger"
)

// QualityHandler serves measurement coverage snapshots
type QualityHandler struct {
	gate   *quality.Gate
	repo   contracts.CoverageRepository
	logger *logger.Logger
}

// NewQualityHandler creates a new quality handler
func NewQualityHandler(gate *quality.Gate, repo contracts.CoverageRepository, log *logger.Logger) *QualityHandler {
	return &QualityHandler{
		gate:   gate,
		repo:   repo,
		logger: log,
	}
}

// Latest returns the most recent coverage snapshot. With ?date= it
// returns the snapshot for that day; with ?refresh=true it recomputes
// on the spot and persists the result.
// GET /api/quality
func (h *QualityHandler) Latest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()

	if q.Get("refresh") == "true" {
		snapshot, err := h.gate.Check(ctx, time.Now().UTC())
		if err != nil {
			h.logger.WithError(err).Error("Coverage check failed")
			respondError(w, http.StatusInternalServerError, "Coverage check failed")
			return
		}
		if err := h.repo.SaveSnapshot(ctx, snapshot); err != nil {
			h.logger.WithError(err).Warn("Failed to persist coverage snapshot")
		}
		respondJSON(w, http.StatusOK, snapshot)
		return
	}

	if v := q.Get("date"); v != "" {
		date, err := time.Parse("2006-01-02", v)
		if err != nil {
			respondError(w, http.StatusBadRequest, "Invalid date (expected YYYY-MM-DD)")
			return
		}
		snapshot, err := h.repo.GetSnapshotByDate(ctx, date)
		if err != nil {
			respondError(w, http.StatusNotFound, "No snapshot for that date")
			return
		}
		respondJSON(w, http.StatusOK, snapshot)
		return
	}

	snapshot, err := h.repo.GetLatestSnapshot(ctx)
	if err != nil {
		respondError(w, http.StatusNotFound, "No coverage snapshot recorded yet")
		return
	}
	respondJSON(w, http.StatusOK, snapshot)
}
