package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aquascope/hydro/backend/internal/contracts"
	"github.com/aquascope/hydro/backend/internal/indices"
	"github.com/aquascope/hydro/backend/internal/realtime"
	"github.com/aquascope/hydro/backend/internal/samples"
	"github.com/aquascope/hydro/backend/pkg/config"
	"github.com/aquascope/hydro/backend/pkg/logger"
	"github.com/aquascope/hydro/backend/pkg/redis"
)

// memRepo is an in-memory SampleRepository for handler tests
type memRepo struct {
	mu     sync.Mutex
	byID   map[int64]*contracts.Sample
	nextID int64
}

func newMemRepo() *memRepo {
	return &memRepo{byID: make(map[int64]*contracts.Sample)}
}

func (m *memRepo) Save(_ context.Context, s *contracts.Sample) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	s.ID = m.nextID
	m.byID[s.ID] = s
	return s.ID, nil
}

func (m *memRepo) SaveBatch(ctx context.Context, ss []*contracts.Sample) error {
	for _, s := range ss {
		if _, err := m.Save(ctx, s); err != nil {
			return err
		}
	}
	return nil
}

func (m *memRepo) GetByID(_ context.Context, id int64) (*contracts.Sample, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.byID[id]
	if !ok {
		return nil, samples.ErrNotFound
	}
	return s, nil
}

func (m *memRepo) List(_ context.Context, f contracts.SampleFilter) ([]*contracts.Sample, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*contracts.Sample
	for _, s := range m.byID {
		if f.Category != "" && s.Category != f.Category {
			continue
		}
		out = append(out, s)
	}
	return out, nil
}

func (m *memRepo) Update(_ context.Context, s *contracts.Sample) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[s.ID]; !ok {
		return samples.ErrNotFound
	}
	m.byID[s.ID] = s
	return nil
}

func (m *memRepo) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[id]; !ok {
		return samples.ErrNotFound
	}
	delete(m.byID, id)
	return nil
}

func (m *memRepo) CountByCategory(context.Context) ([]contracts.CategoryCount, error) {
	return nil, nil
}
func (m *memRepo) StatsByDistrict(context.Context) ([]contracts.DistrictStats, error) {
	return nil, nil
}
func (m *memRepo) GetSummary(context.Context) (*contracts.Summary, error) { return nil, nil }

func testLogger() *logger.Logger {
	return logger.New(&config.Config{Env: "development", LogLevel: "error", LogFormat: "console"})
}

func newTestHandler(repo contracts.SampleRepository, strict bool) *SampleHandler {
	log := testLogger()
	engine := indices.NewEngine(indices.DefaultTable(), strict)
	hub := realtime.NewHub(log)
	cache := redis.NewCache(redis.Disabled(), "test")
	return NewSampleHandler(repo, engine, hub, cache, log)
}

func testRouter(h *SampleHandler) *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/api/samples", h.Create).Methods("POST")
	r.HandleFunc("/api/samples", h.List).Methods("GET")
	r.HandleFunc("/api/samples/{id:[0-9]+}", h.Get).Methods("GET")
	r.HandleFunc("/api/samples/{id:[0-9]+}", h.Update).Methods("PUT")
	r.HandleFunc("/api/samples/{id:[0-9]+}", h.Delete).Methods("DELETE")
	return r
}

func postSample(t *testing.T, router *mux.Router, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest("POST", "/api/samples", bytes.NewBufferString(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestSampleHandler_Create(t *testing.T) {
	repo := newMemRepo()
	router := testRouter(newTestHandler(repo, false))

	rec := postSample(t, router, `{
		"station_id": "WB-101",
		"district": "Nadia",
		"sampled_at": "2025-06-14",
		"metals": {"lead": 0.02},
		"water_quality": {"ph": 7.2}
	}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	var got contracts.Sample
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))

	// lead at twice its limit: HPI 200, unsafe
	assert.Equal(t, int64(1), got.ID)
	assert.Equal(t, 200.0, got.HPI)
	assert.Equal(t, "unsafe", got.Category)

	stored, err := repo.GetByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "WB-101", stored.StationID)
}

func TestSampleHandler_CreateMissingStation(t *testing.T) {
	router := testRouter(newTestHandler(newMemRepo(), false))

	rec := postSample(t, router, `{"metals": {"lead": 0.02}}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSampleHandler_CreateInvalidDate(t *testing.T) {
	router := testRouter(newTestHandler(newMemRepo(), false))

	rec := postSample(t, router, `{"station_id": "X", "sampled_at": "14/06/2025"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSampleHandler_CreateStrictRejectsBadValues(t *testing.T) {
	router := testRouter(newTestHandler(newMemRepo(), true))

	rec := postSample(t, router, `{
		"station_id": "WB-101",
		"metals": {"lead": "BDL"}
	}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "issues")
}

func TestSampleHandler_CreateLenientCoercesBadValues(t *testing.T) {
	repo := newMemRepo()
	router := testRouter(newTestHandler(repo, false))

	rec := postSample(t, router, `{
		"station_id": "WB-101",
		"metals": {"lead": "BDL"}
	}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	stored, err := repo.GetByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 0.0, stored.Metals["lead"])
	assert.Equal(t, "safe", stored.Category)
}

func TestSampleHandler_GetNotFound(t *testing.T) {
	router := testRouter(newTestHandler(newMemRepo(), false))

	req := httptest.NewRequest("GET", "/api/samples/99", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSampleHandler_UpdateReclassifies(t *testing.T) {
	repo := newMemRepo()
	router := testRouter(newTestHandler(repo, false))

	rec := postSample(t, router, `{
		"station_id": "WB-101",
		"metals": {"lead": 0.001}
	}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	req := httptest.NewRequest("PUT", "/api/samples/1",
		bytes.NewBufferString(`{"metals": {"lead": 0.05}}`))
	recUpd := httptest.NewRecorder()
	router.ServeHTTP(recUpd, req)
	require.Equal(t, http.StatusOK, recUpd.Code)

	stored, err := repo.GetByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "unsafe", stored.Category)
	assert.Equal(t, 500.0, stored.HPI)
}

func TestSampleHandler_Delete(t *testing.T) {
	repo := newMemRepo()
	router := testRouter(newTestHandler(repo, false))

	rec := postSample(t, router, `{"station_id": "WB-101"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	req := httptest.NewRequest("DELETE", "/api/samples/1", nil)
	recDel := httptest.NewRecorder()
	router.ServeHTTP(recDel, req)
	require.Equal(t, http.StatusOK, recDel.Code)

	_, err := repo.GetByID(context.Background(), 1)
	assert.ErrorIs(t, err, samples.ErrNotFound)
}

func TestSampleHandler_ListFiltersByCategory(t *testing.T) {
	repo := newMemRepo()
	router := testRouter(newTestHandler(repo, false))

	postSample(t, router, `{"station_id": "A", "metals": {"lead": 0.05}}`)
	postSample(t, router, `{"station_id": "B", "metals": {"lead": 0.001}}`)

	req := httptest.NewRequest("GET", "/api/samples?category=unsafe", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Count   int                 `json:"count"`
		Samples []*contracts.Sample `json:"samples"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, 1, resp.Count)
	assert.Equal(t, "A", resp.Samples[0].StationID)
}
