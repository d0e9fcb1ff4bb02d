package indices

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompute_SingleMetalOverLimit(t *testing.T) {
	// lead at twice its limit: HPI = (0.02/0.01)*100 = 200 -> unsafe
	table := Table{
		Metals: map[string]float64{"lead": 0.01},
		Fluoride: 1.0, Nitrate: 45, TDS: 500, PHMin: 6.5, PHMax: 8.5,
	}
	engine := NewEngine(table, false)

	result := engine.Compute(MeasurementSet{
		Metals: map[string]float64{"lead": 0.02},
	})

	assert.Equal(t, 200.0, result.HPI)
	assert.Equal(t, 0.2, result.MI)
	assert.Equal(t, 2.0, result.CD)
	assert.Equal(t, CategoryUnsafe, result.Category)
}

func TestCompute_EmptyIntersection(t *testing.T) {
	engine := NewEngine(DefaultTable(), false)

	tests := []struct {
		name string
		ms   MeasurementSet
	}{
		{name: "nil maps", ms: MeasurementSet{}},
		{name: "empty metals", ms: MeasurementSet{Metals: map[string]float64{}}},
		{
			name: "only unknown metals",
			ms:   MeasurementSet{Metals: map[string]float64{"gold": 5.0, "zinc": 12.0}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := engine.Compute(tt.ms)
			assert.Equal(t, 0.0, result.HPI)
			assert.Equal(t, 0.0, result.MI)
			assert.Equal(t, 0.0, result.CD)
			assert.Equal(t, CategorySafe, result.Category)
		})
	}
}

func TestCompute_ThresholdBoundaryIsStrict(t *testing.T) {
	engine := NewEngine(DefaultTable(), false)

	// Exactly at the limit: exceedsMetal must not fire. HPI is exactly
	// 100 which is not > 100, so the sample lands on moderate via HPI > 50.
	atLimit := engine.Compute(MeasurementSet{
		Metals: map[string]float64{"lead": 0.01},
	})
	assert.Equal(t, 100.0, atLimit.HPI)
	assert.Equal(t, CategoryModerate, atLimit.Category)

	// A hair over the limit flips the exceedance flag -> unsafe
	overLimit := engine.Compute(MeasurementSet{
		Metals: map[string]float64{"lead": 0.010001},
	})
	assert.Equal(t, CategoryUnsafe, overLimit.Category)
}

func TestCompute_UnsafeOutranksModerate(t *testing.T) {
	engine := NewEngine(DefaultTable(), false)

	// Indices alone would classify moderate (HPI 75), but the nitrate
	// exceedance flag forces unsafe. First match wins.
	result := engine.Compute(MeasurementSet{
		Metals:       map[string]float64{"lead": 0.0075},
		WaterQuality: map[string]float64{"nitrate": 50.0},
	})

	assert.Equal(t, 75.0, result.HPI)
	assert.Equal(t, CategoryUnsafe, result.Category)
}

func TestCompute_WaterQualityFlags(t *testing.T) {
	engine := NewEngine(DefaultTable(), false)

	tests := []struct {
		name string
		wq   map[string]float64
		want string
	}{
		{name: "alkaline ph", wq: map[string]float64{"ph": 9.0}, want: CategoryUnsafe},
		{name: "acidic ph", wq: map[string]float64{"ph": 5.9}, want: CategoryUnsafe},
		{name: "ph at upper bound", wq: map[string]float64{"ph": 8.5}, want: CategorySafe},
		{name: "ph absent defaults to neutral", wq: nil, want: CategorySafe},
		{name: "fluoride within 1.5x margin", wq: map[string]float64{"fluoride": 1.4}, want: CategorySafe},
		{name: "fluoride beyond 1.5x margin", wq: map[string]float64{"fluoride": 1.6}, want: CategoryUnsafe},
		{name: "nitrate over limit", wq: map[string]float64{"nitrate": 45.1}, want: CategoryUnsafe},
		{name: "tds within 2x margin", wq: map[string]float64{"tds": 900}, want: CategorySafe},
		{name: "tds beyond 2x margin", wq: map[string]float64{"tds": 1100}, want: CategoryUnsafe},
		{name: "hardness is not an exceedance flag", wq: map[string]float64{"hardness": 9999}, want: CategorySafe},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := engine.Compute(MeasurementSet{WaterQuality: tt.wq})
			// No metals at all: indices stay zero, only the flags decide
			assert.Equal(t, 0.0, result.HPI)
			assert.Equal(t, tt.want, result.Category)
		})
	}
}

func TestCompute_MIAveragesAcrossActiveMetals(t *testing.T) {
	engine := NewEngine(DefaultTable(), false)

	// MI = (sum of concentrations / active metals) * 10, raw mg/L,
	// deliberately not normalized per metal.
	result := engine.Compute(MeasurementSet{
		Metals: map[string]float64{"lead": 0.02, "iron": 0.2},
	})

	assert.Equal(t, 1.1, result.MI) // (0.22 / 2) * 10
}

func TestCompute_UnknownMetalDoesNotDiluteMI(t *testing.T) {
	engine := NewEngine(DefaultTable(), false)

	with := engine.Compute(MeasurementSet{
		Metals: map[string]float64{"lead": 0.02, "gold": 3.0},
	})
	without := engine.Compute(MeasurementSet{
		Metals: map[string]float64{"lead": 0.02},
	})

	assert.Equal(t, without, with)
}

func TestCompute_Rounding(t *testing.T) {
	table := Table{
		Metals: map[string]float64{"lead": 1.0},
		Fluoride: 1.0, Nitrate: 45, TDS: 500, PHMin: 6.5, PHMax: 8.5,
	}
	engine := NewEngine(table, false)

	// 0.0125 / 1.0 = 0.0125 -> CD rounds half away from zero to 0.013
	result := engine.Compute(MeasurementSet{
		Metals: map[string]float64{"lead": 0.0125},
	})

	assert.Equal(t, 1.25, result.HPI)
	assert.Equal(t, 0.125, result.MI)
	assert.Equal(t, 0.013, result.CD)
}

func TestCompute_Deterministic(t *testing.T) {
	engine := NewEngine(DefaultTable(), false)
	ms := MeasurementSet{
		Metals:       map[string]float64{"lead": 0.004, "arsenic": 0.002, "mercury": 0.0004},
		WaterQuality: map[string]float64{"ph": 7.2, "tds": 340},
	}

	first := engine.Compute(ms)
	for i := 0; i < 100; i++ {
		assert.Equal(t, first, engine.Compute(ms))
	}
}

func TestComputeRaw_Coercion(t *testing.T) {
	engine := NewEngine(DefaultTable(), false)

	result, _, issues := engine.ComputeRaw(
		map[string]any{"Lead": "0.02", "cadmium": "n/a", "arsenic": nil},
		map[string]any{"pH": "abc", "tds": "410"},
	)

	// Garbage readings degrade to 0; pH degrades to 7, so the result is
	// driven by lead alone.
	assert.Equal(t, CategoryUnsafe, result.Category)
	assert.Equal(t, 200.0, result.HPI)

	require.Len(t, issues, 3)
	fields := make(map[string]string)
	for _, issue := range issues {
		fields[issue.Field] = issue.Reason
	}
	assert.Equal(t, "non_numeric", fields["cadmium"])
	assert.Equal(t, "non_numeric", fields["arsenic"])
	assert.Equal(t, "non_numeric", fields["ph"])
}

func TestComputeRaw_NegativeReading(t *testing.T) {
	engine := NewEngine(DefaultTable(), false)

	result, _, issues := engine.ComputeRaw(
		map[string]any{"lead": -0.5},
		nil,
	)

	// Negative readings clamp to 0 and are reported
	assert.Equal(t, 0.0, result.HPI)
	assert.Equal(t, CategorySafe, result.Category)
	require.Len(t, issues, 1)
	assert.Equal(t, "negative", issues[0].Reason)
}

func TestComputeRaw_Total(t *testing.T) {
	engine := NewEngine(DefaultTable(), true)

	// Never panics, never errors, regardless of input shape
	inputs := []map[string]any{
		nil,
		{},
		{"": ""},
		{"lead": struct{}{}},
		{"lead": []string{"0.1"}},
		{"ph_value": "7,2"},
	}

	for _, raw := range inputs {
		result, _, _ := engine.ComputeRaw(raw, raw)
		assert.GreaterOrEqual(t, result.HPI, 0.0)
		assert.GreaterOrEqual(t, result.MI, 0.0)
		assert.GreaterOrEqual(t, result.CD, 0.0)
		assert.NotEmpty(t, result.Category)
	}
}

func TestCanonicalKey(t *testing.T) {
	assert.Equal(t, "ph", CanonicalKey("pH"))
	assert.Equal(t, "ph", CanonicalKey("P_H"))
	assert.Equal(t, "ph", CanonicalKey(" pH_Value "))
	assert.Equal(t, "lead", CanonicalKey(" Lead "))
	assert.Equal(t, "tds", CanonicalKey("TDS"))
}
