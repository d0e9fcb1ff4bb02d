package ingest

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aquascope/hydro/backend/internal/contracts"
	"github.com/aquascope/hydro/backend/internal/indices"
	"github.com/aquascope/hydro/backend/pkg/config"
	"github.com/aquascope/hydro/backend/pkg/logger"
)

// memRepo is an in-memory SampleRepository for importer tests
type memRepo struct {
	mu      sync.Mutex
	samples []*contracts.Sample
	nextID  int64
}

func (m *memRepo) Save(_ context.Context, s *contracts.Sample) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	s.ID = m.nextID
	m.samples = append(m.samples, s)
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

func (m *memRepo) GetByID(context.Context, int64) (*contracts.Sample, error) { return nil, nil }
func (m *memRepo) List(context.Context, contracts.SampleFilter) ([]*contracts.Sample, error) {
	return nil, nil
}
func (m *memRepo) Update(context.Context, *contracts.Sample) error { return nil }
func (m *memRepo) Delete(context.Context, int64) error             { return nil }
func (m *memRepo) CountByCategory(context.Context) ([]contracts.CategoryCount, error) {
	return nil, nil
}
func (m *memRepo) StatsByDistrict(context.Context) ([]contracts.DistrictStats, error) {
	return nil, nil
}
func (m *memRepo) GetSummary(context.Context) (*contracts.Summary, error) { return nil, nil }

func (m *memRepo) byStation(id string) *contracts.Sample {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.samples {
		if s.StationID == id {
			return s
		}
	}
	return nil
}

func testLogger() *logger.Logger {
	return logger.New(&config.Config{Env: "development", LogLevel: "error", LogFormat: "console"})
}

const importFixture = `station_id,district,lead,cadmium,arsenic,chromium,ph,nitrate
ST-1,Nadia,0.02,0.001,0.005,0.01,7.2,12
ST-2,Nadia,0.001,0.0002,0.0005,0.002,7.0,8
ST-3,Patna,0.5,0.01,0.2,0.1,6.8,60
`

func TestImporter_ImportCSV(t *testing.T) {
	repo := &memRepo{}
	engine := indices.NewEngine(indices.DefaultTable(), false)
	importer := NewImporter(engine, repo, testLogger())

	result, err := importer.ImportCSV(context.Background(), strings.NewReader(importFixture), Config{
		Workers: 3,
		Source:  "import",
	})
	require.NoError(t, err)

	assert.Equal(t, 3, result.Imported)
	assert.Equal(t, 0, result.Skipped)
	assert.Len(t, repo.samples, 3)

	// ST-1: lead at 2x limit -> unsafe
	st1 := repo.byStation("ST-1")
	require.NotNil(t, st1)
	assert.Equal(t, indices.CategoryUnsafe, st1.Category)
	assert.Equal(t, "import", st1.Source)
	assert.Equal(t, 0.02, st1.Metals["lead"])

	// ST-2: everything well under limits -> safe
	st2 := repo.byStation("ST-2")
	require.NotNil(t, st2)
	assert.Equal(t, indices.CategorySafe, st2.Category)

	// ST-3: grossly contaminated -> unsafe
	st3 := repo.byStation("ST-3")
	require.NotNil(t, st3)
	assert.Equal(t, indices.CategoryUnsafe, st3.Category)
	assert.Greater(t, st3.HPI, 100.0)
}

func TestImporter_StrictModeSkipsBadRows(t *testing.T) {
	const fixture = `station_id,lead,ph
ST-OK,0.005,7.1
ST-BAD,BDL,7.0
`

	repo := &memRepo{}
	engine := indices.NewEngine(indices.DefaultTable(), true)
	importer := NewImporter(engine, repo, testLogger())

	result, err := importer.ImportCSV(context.Background(), strings.NewReader(fixture), Config{
		Workers: 2,
		Source:  "import",
	})
	require.NoError(t, err)

	assert.Equal(t, 1, result.Imported)
	assert.Equal(t, 1, result.Skipped)
	require.Len(t, result.RowErrors, 1)
	assert.Equal(t, 3, result.RowErrors[0].Line)
	assert.Nil(t, repo.byStation("ST-BAD"))
}

func TestImporter_LenientModeCoercesBadRows(t *testing.T) {
	const fixture = `station_id,lead,ph
ST-BAD,BDL,n/a
`

	repo := &memRepo{}
	engine := indices.NewEngine(indices.DefaultTable(), false)
	importer := NewImporter(engine, repo, testLogger())

	result, err := importer.ImportCSV(context.Background(), strings.NewReader(fixture), Config{
		Workers: 1,
		Source:  "import",
	})
	require.NoError(t, err)

	assert.Equal(t, 1, result.Imported)

	s := repo.byStation("ST-BAD")
	require.NotNil(t, s)
	assert.Equal(t, 0.0, s.Metals["lead"])
	assert.Equal(t, 7.0, s.WaterQuality["ph"]) // pH coerces to neutral
	assert.Equal(t, indices.CategorySafe, s.Category)
}

func TestImporter_ManyWorkers(t *testing.T) {
	// More workers than rows must not deadlock or drop rows
	var b strings.Builder
	b.WriteString("station_id,lead\n")
	for i := 0; i < 50; i++ {
		b.WriteString("ST-")
		b.WriteByte(byte('A' + i%26))
		b.WriteString(",0.001\n")
	}

	repo := &memRepo{}
	engine := indices.NewEngine(indices.DefaultTable(), false)
	importer := NewImporter(engine, repo, testLogger())

	result, err := importer.ImportCSV(context.Background(), strings.NewReader(b.String()), Config{
		Workers: 16,
		Source:  "import",
	})
	require.NoError(t, err)
	assert.Equal(t, 50, result.Imported)
	assert.Len(t, repo.samples, 50)
}
