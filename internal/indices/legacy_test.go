package indices

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLegacyCompute_TypicalSample(t *testing.T) {
	result := LegacyCompute(MeasurementSet{
		Metals: map[string]float64{
			"lead":     0.02,
			"cadmium":  0.001,
			"arsenic":  0.005,
			"chromium": 0.01,
		},
	})

	assert.Equal(t, 3.6, result.HPI)  // (0.02+0.001+0.005+0.01) * 100
	assert.Equal(t, 0.21, result.MI)  // (0.02+0.001) * 10
	assert.Equal(t, 0.25, result.CD)  // 0.005 * 50
	assert.Equal(t, CategorySafe, result.Category)
}

func TestLegacyCompute_Categories(t *testing.T) {
	tests := []struct {
		name   string
		metals map[string]float64
		want   string
	}{
		{
			name:   "empty metals is safe",
			metals: nil,
			want:   CategorySafe,
		},
		{
			name:   "hpi over 50 is moderate",
			metals: map[string]float64{"lead": 0.6},
			want:   CategoryModerate,
		},
		{
			name:   "hpi over 100 is unsafe",
			metals: map[string]float64{"lead": 1.1},
			want:   CategoryUnsafe,
		},
		{
			name:   "cd over 5 is moderate",
			metals: map[string]float64{"arsenic": 0.11},
			want:   CategoryModerate,
		},
		{
			name:   "cd over 10 is unsafe",
			metals: map[string]float64{"arsenic": 0.21},
			want:   CategoryUnsafe,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := LegacyCompute(MeasurementSet{Metals: tt.metals})
			assert.Equal(t, tt.want, result.Category)
		})
	}
}

func TestLegacyCompute_IgnoresExtendedMetals(t *testing.T) {
	// The fixed formula predates the extended metal set; uranium and
	// friends must not leak into it.
	base := LegacyCompute(MeasurementSet{
		Metals: map[string]float64{"lead": 0.01},
	})
	extended := LegacyCompute(MeasurementSet{
		Metals: map[string]float64{"lead": 0.01, "uranium": 5.0, "mercury": 2.0},
	})

	assert.Equal(t, base, extended)
}
