package handlers

import (
	"net/http"
	"time"

	"github.com/aquascope/hydro/backend/internal/contracts"
	"github.com/aquascope/hydro/backend/pkg/logger"
	"github.com/aquascope/hydro/backend/pkg/redis"
)

const statsCacheTTL = 5 * time.Minute

// StatsHandler serves aggregate statistics endpoints
type StatsHandler struct {
	repo   contracts.SampleRepository
	cache  *redis.Cache
	logger *logger.Logger
}

// NewStatsHandler creates a new stats handler
func NewStatsHandler(repo contracts.SampleRepository, cache *redis.Cache, log *logger.Logger) *StatsHandler {
	return &StatsHandler{
		repo:   repo,
		cache:  cache,
		logger: log,
	}
}

// Summary returns global aggregates plus category counts
// GET /api/stats/summary
func (h *StatsHandler) Summary(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var cached contracts.Summary
	if hit, _ := h.cache.Get(ctx, "stats:summary", &cached); hit {
		respondJSON(w, http.StatusOK, &cached)
		return
	}

	summary, err := h.repo.GetSummary(ctx)
	if err != nil {
		h.logger.WithError(err).Error("Failed to compute summary")
		respondError(w, http.StatusInternalServerError, "Failed to compute summary")
		return
	}

	if err := h.cache.Set(ctx, "stats:summary", summary, statsCacheTTL); err != nil {
		h.logger.WithError(err).Warn("Failed to cache summary")
	}

	respondJSON(w, http.StatusOK, summary)
}

// Districts returns per-district averages sorted by contamination
// GET /api/stats/districts
func (h *StatsHandler) Districts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var cached []contracts.DistrictStats
	if hit, _ := h.cache.Get(ctx, "stats:districts", &cached); hit {
		respondJSON(w, http.StatusOK, map[string]interface{}{
			"count":     len(cached),
			"districts": cached,
		})
		return
	}

	stats, err := h.repo.StatsByDistrict(ctx)
	if err != nil {
		h.logger.WithError(err).Error("Failed to compute district stats")
		respondError(w, http.StatusInternalServerError, "Failed to compute district stats")
		return
	}

	if err := h.cache.Set(ctx, "stats:districts", stats, statsCacheTTL); err != nil {
		h.logger.WithError(err).Warn("Failed to cache district stats")
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"count":     len(stats),
		"districts": stats,
	})
}
