package contracts

import (
	"testing"
	"time"
)

func TestSample_HasCoreMetals(t *testing.T) {
	tests := []struct {
		name   string
		metals map[string]float64
		want   bool
	}{
		{
			name: "all four core metals present",
			metals: map[string]float64{
				"lead": 0.01, "cadmium": 0.001, "arsenic": 0.002, "chromium": 0.03,
			},
			want: true,
		},
		{
			name: "zero reading still counts as measured",
			metals: map[string]float64{
				"lead": 0, "cadmium": 0, "arsenic": 0, "chromium": 0,
			},
			want: true,
		},
		{
			name: "missing chromium",
			metals: map[string]float64{
				"lead": 0.01, "cadmium": 0.001, "arsenic": 0.002,
			},
			want: false,
		},
		{
			name:   "empty metals map",
			metals: map[string]float64{},
			want:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Sample{Metals: tt.metals}
			if got := s.HasCoreMetals(); got != tt.want {
				t.Errorf("HasCoreMetals() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSummary_UnsafeShare(t *testing.T) {
	summary := Summary{
		TotalSamples: 200,
		Categories: []CategoryCount{
			{Category: "safe", Count: 120},
			{Category: "moderate", Count: 30},
			{Category: "unsafe", Count: 50},
		},
	}

	if got := summary.UnsafeShare(); got != 0.25 {
		t.Errorf("UnsafeShare() = %v, want 0.25", got)
	}

	empty := Summary{}
	if got := empty.UnsafeShare(); got != 0 {
		t.Errorf("UnsafeShare() on empty summary = %v, want 0", got)
	}
}

func TestCoverageSnapshot_IsValid(t *testing.T) {
	tests := []struct {
		name     string
		snapshot CoverageSnapshot
		want     bool
	}{
		{
			name: "valid snapshot",
			snapshot: CoverageSnapshot{
				Date:         time.Now(),
				TotalSamples: 100,
				QualityScore: 0.9,
				Coverage:     map[string]float64{"lead": 0.95, "ph": 0.90},
			},
			want: true,
		},
		{
			name: "low quality score",
			snapshot: CoverageSnapshot{
				Date:         time.Now(),
				TotalSamples: 100,
				QualityScore: 0.5,
			},
			want: false,
		},
		{
			name: "no samples",
			snapshot: CoverageSnapshot{
				Date:         time.Now(),
				TotalSamples: 0,
				QualityScore: 0.8,
			},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.snapshot.IsValid(); got != tt.want {
				t.Errorf("IsValid() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCoverageSnapshot_CoverageRate(t *testing.T) {
	snapshot := CoverageSnapshot{
		Date:         time.Now(),
		TotalSamples: 100,
		Coverage: map[string]float64{
			"lead":    0.95,
			"arsenic": 0.90,
			"ph":      0.85,
		},
	}

	expected := (0.95 + 0.90 + 0.85) / 3
	if rate := snapshot.CoverageRate(); rate != expected {
		t.Errorf("CoverageRate() = %v, want %v", rate, expected)
	}

	empty := CoverageSnapshot{}
	if rate := empty.CoverageRate(); rate != 0 {
		t.Errorf("CoverageRate() on empty snapshot = %v, want 0", rate)
	}
}
