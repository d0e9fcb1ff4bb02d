package quality

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGate_calculateScore(t *testing.T) {
	gate := &Gate{config: DefaultConfig()}

	tests := []struct {
		name     string
		coverage map[string]float64
		wantMin  float64
		wantMax  float64
	}{
		{
			name:     "perfect coverage",
			coverage: fullCoverage(1.0),
			wantMin:  0.999,
			wantMax:  1.001,
		},
		{
			name:     "no coverage",
			coverage: map[string]float64{},
			wantMin:  0.0,
			wantMax:  0.0,
		},
		{
			name: "core metals only",
			coverage: map[string]float64{
				"lead": 1.0, "cadmium": 1.0, "arsenic": 1.0, "chromium": 1.0,
			},
			wantMin: 0.599,
			wantMax: 0.601,
		},
		{
			name:     "uniform half coverage",
			coverage: fullCoverage(0.5),
			wantMin:  0.499,
			wantMax:  0.501,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score := gate.calculateScore(tt.coverage)
			assert.GreaterOrEqual(t, score, tt.wantMin)
			assert.LessOrEqual(t, score, tt.wantMax)
		})
	}
}

func TestGate_passes(t *testing.T) {
	gate := &Gate{config: Config{
		MinCoreCoverage:      0.95,
		MinExtendedCoverage:  0.50,
		MinChemistryCoverage: 0.80,
	}}

	healthy := fullCoverage(1.0)
	assert.True(t, gate.passes(healthy))

	// Sparse extended panel is tolerated down to its own floor
	sparse := fullCoverage(1.0)
	sparse["uranium"] = 0.2
	sparse["iron"] = 0.7
	sparse["mercury"] = 0.7 // mean 0.533 >= 0.50
	assert.True(t, gate.passes(sparse))

	// Core metals falling below the floor fails the gate
	degraded := fullCoverage(1.0)
	degraded["lead"] = 0.5
	assert.False(t, gate.passes(degraded))
}

func fullCoverage(v float64) map[string]float64 {
	out := make(map[string]float64)
	for _, params := range [][]string{coreMetals, extendedMetals, chemistryParams} {
		for _, p := range params {
			out[p] = v
		}
	}
	return out
}
