package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/aquascope/hydro/backend/internal/contracts"
	"github.com/aquascope/hydro/backend/internal/indices"
	"github.com/aquascope/hydro/backend/internal/realtime"
	"github.com/aquascope/hydro/backend/internal/samples"
	"github.com/aquascope/hydro/backend/pkg/logger"
	"github.com/aquascope/hydro/backend/pkg/redis"
)

// SampleHandler handles sample CRUD endpoints
type SampleHandler struct {
	repo   contracts.SampleRepository
	engine *indices.Engine
	hub    *realtime.Hub
	cache  *redis.Cache
	logger *logger.Logger
}

// NewSampleHandler creates a new sample handler
func NewSampleHandler(
	repo contracts.SampleRepository,
	engine *indices.Engine,
	hub *realtime.Hub,
	cache *redis.Cache,
	log *logger.Logger,
) *SampleHandler {
	return &SampleHandler{
		repo:   repo,
		engine: engine,
		hub:    hub,
		cache:  cache,
		logger: log,
	}
}

// SampleRequest is the ingest payload. Measurement values are accepted
// as any scalar type; the engine's coercion layer sorts them out.
type SampleRequest struct {
	StationID    string         `json:"station_id"`
	District     string         `json:"district"`
	State        string         `json:"state"`
	Latitude     float64        `json:"latitude"`
	Longitude    float64        `json:"longitude"`
	SampledAt    string         `json:"sampled_at"` // RFC3339 or YYYY-MM-DD
	Metals       map[string]any `json:"metals"`
	WaterQuality map[string]any `json:"water_quality"`
}

// Create ingests one sample
// POST /api/samples
func (h *SampleHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req SampleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.StationID == "" {
		respondError(w, http.StatusBadRequest, "station_id is required")
		return
	}

	sampledAt, ok := parseSampledAt(req.SampledAt)
	if !ok {
		respondError(w, http.StatusBadRequest, "Invalid sampled_at (expected RFC3339 or YYYY-MM-DD)")
		return
	}

	result, ms, issues := h.engine.ComputeRaw(req.Metals, req.WaterQuality)
	if h.engine.Strict() && len(issues) > 0 {
		respondJSON(w, http.StatusUnprocessableEntity, map[string]interface{}{
			"error":  "Invalid measurement values",
			"issues": issues,
		})
		return
	}

	sample := &contracts.Sample{
		StationID:    req.StationID,
		District:     req.District,
		State:        req.State,
		Latitude:     req.Latitude,
		Longitude:    req.Longitude,
		SampledAt:    sampledAt,
		Metals:       ms.Metals,
		WaterQuality: ms.WaterQuality,
		HPI:          result.HPI,
		MI:           result.MI,
		CD:           result.CD,
		Category:     result.Category,
		Source:       "api",
	}

	id, err := h.repo.Save(ctx, sample)
	if err != nil {
		h.logger.WithError(err).Error("Failed to save sample")
		respondError(w, http.StatusInternalServerError, "Failed to save sample")
		return
	}
	sample.ID = id

	h.hub.Broadcast(sample)
	h.cache.Invalidate(ctx)

	respondJSON(w, http.StatusCreated, sample)
}

// Get returns one sample
// GET /api/samples/{id}
func (h *SampleHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid sample id")
		return
	}

	sample, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, samples.ErrNotFound) {
			respondError(w, http.StatusNotFound, "Sample not found")
			return
		}
		h.logger.WithError(err).Error("Failed to get sample")
		respondError(w, http.StatusInternalServerError, "Failed to get sample")
		return
	}

	respondJSON(w, http.StatusOK, sample)
}

// List returns samples matching the query filters
// GET /api/samples?category=&district=&state=&station_id=&from=&to=&limit=&offset=
func (h *SampleHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	filter := contracts.SampleFilter{
		Category:  q.Get("category"),
		District:  q.Get("district"),
		State:     q.Get("state"),
		StationID: q.Get("station_id"),
	}

	if v := q.Get("from"); v != "" {
		t, ok := parseSampledAt(v)
		if !ok {
			respondError(w, http.StatusBadRequest, "Invalid 'from' date")
			return
		}
		filter.From = t
	}
	if v := q.Get("to"); v != "" {
		t, ok := parseSampledAt(v)
		if !ok {
			respondError(w, http.StatusBadRequest, "Invalid 'to' date")
			return
		}
		filter.To = t
	}

	filter.Limit, _ = strconv.Atoi(q.Get("limit"))
	filter.Offset, _ = strconv.Atoi(q.Get("offset"))
	filter.MinLat, _ = strconv.ParseFloat(q.Get("min_lat"), 64)
	filter.MaxLat, _ = strconv.ParseFloat(q.Get("max_lat"), 64)
	filter.MinLon, _ = strconv.ParseFloat(q.Get("min_lon"), 64)
	filter.MaxLon, _ = strconv.ParseFloat(q.Get("max_lon"), 64)

	list, err := h.repo.List(r.Context(), filter)
	if err != nil {
		h.logger.WithError(err).Error("Failed to list samples")
		respondError(w, http.StatusInternalServerError, "Failed to list samples")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"count":   len(list),
		"samples": list,
	})
}

// Update rewrites a sample; when measurements change the indices are
// recomputed before persisting.
// PUT /api/samples/{id}
func (h *SampleHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid sample id")
		return
	}

	sample, err := h.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, samples.ErrNotFound) {
			respondError(w, http.StatusNotFound, "Sample not found")
			return
		}
		h.logger.WithError(err).Error("Failed to load sample for update")
		respondError(w, http.StatusInternalServerError, "Failed to load sample")
		return
	}

	var req SampleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.StationID != "" {
		sample.StationID = req.StationID
	}
	if req.District != "" {
		sample.District = req.District
	}
	if req.State != "" {
		sample.State = req.State
	}
	if req.Latitude != 0 {
		sample.Latitude = req.Latitude
	}
	if req.Longitude != 0 {
		sample.Longitude = req.Longitude
	}
	if req.SampledAt != "" {
		t, ok := parseSampledAt(req.SampledAt)
		if !ok {
			respondError(w, http.StatusBadRequest, "Invalid sampled_at")
			return
		}
		sample.SampledAt = t
	}

	// Measurement changes trigger reclassification
	if req.Metals != nil || req.WaterQuality != nil {
		rawMetals := req.Metals
		rawWQ := req.WaterQuality
		if rawMetals == nil {
			rawMetals = toRaw(sample.Metals)
		}
		if rawWQ == nil {
			rawWQ = toRaw(sample.WaterQuality)
		}

		result, ms, issues := h.engine.ComputeRaw(rawMetals, rawWQ)
		if h.engine.Strict() && len(issues) > 0 {
			respondJSON(w, http.StatusUnprocessableEntity, map[string]interface{}{
				"error":  "Invalid measurement values",
				"issues": issues,
			})
			return
		}

		sample.Metals = ms.Metals
		sample.WaterQuality = ms.WaterQuality
		sample.HPI = result.HPI
		sample.MI = result.MI
		sample.CD = result.CD
		sample.Category = result.Category
	}

	if err := h.repo.Update(ctx, sample); err != nil {
		h.logger.WithError(err).Error("Failed to update sample")
		respondError(w, http.StatusInternalServerError, "Failed to update sample")
		return
	}

	h.cache.Invalidate(ctx)
	respondJSON(w, http.StatusOK, sample)
}

// Delete removes a sample
// DELETE /api/samples/{id}
func (h *SampleHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid sample id")
		return
	}

	if err := h.repo.Delete(r.Context(), id); err != nil {
		if errors.Is(err, samples.ErrNotFound) {
			respondError(w, http.StatusNotFound, "Sample not found")
			return
		}
		h.logger.WithError(err).Error("Failed to delete sample")
		respondError(w, http.StatusInternalServerError, "Failed to delete sample")
		return
	}

	h.cache.Invalidate(r.Context())
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// parseSampledAt accepts RFC3339 or bare dates
func parseSampledAt(value string) (time.Time, bool) {
	if value == "" {
		return time.Now().UTC(), true
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func toRaw(m map[string]float64) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
