package contracts

import "time"

// Sample represents one groundwater sample: the raw lab measurements plus
// the derived pollution indices and safety category.
type Sample struct {
	ID        int64     `json:"id"`
	StationID string    `json:"station_id"`
	District  string    `json:"district"`
	State     string    `json:"state"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	SampledAt time.Time `json:"sampled_at"`

	// Raw measurements, mg/L (pH dimensionless)
	Metals       map[string]float64 `json:"metals"`
	WaterQuality map[string]float64 `json:"water_quality"`

	// Derived by the index engine
	HPI      float64 `json:"hpi"`
	MI       float64 `json:"mi"`
	CD       float64 `json:"cd"`
	Category string  `json:"category"`

	Source    string    `json:"source"` // api, import, portal
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsUnsafe reports whether the sample was classified unsafe
func (s *Sample) IsUnsafe() bool {
	return s.Category == "unsafe"
}

// HasCoreMetals reports whether all four core metals were measured.
// Used by the coverage gate; a zero reading still counts as measured
// only if the key is present.
func (s *Sample) HasCoreMetals() bool {
	for _, k := range []string{"lead", "cadmium", "arsenic", "chromium"} {
		if _, ok := s.Metals[k]; !ok {
			return false
		}
	}
	return true
}

// SampleFilter narrows List queries. Zero values mean "no constraint".
type SampleFilter struct {
	Category  string
	District  string
	State     string
	StationID string
	From      time.Time
	To        time.Time

	// Bounding box; applied only when all four are non-zero
	MinLat float64
	MaxLat float64
	MinLon float64
	MaxLon float64

	Limit  int
	Offset int
}

// CategoryCount is one row of the category breakdown aggregate
type CategoryCount struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}

// DistrictStats is one row of the per-district aggregate
type DistrictStats struct {
	District    string  `json:"district"`
	State       string  `json:"state"`
	SampleCount int     `json:"sample_count"`
	AvgHPI      float64 `json:"avg_hpi"`
	AvgMI       float64 `json:"avg_mi"`
	AvgCD       float64 `json:"avg_cd"`
	UnsafeCount int     `json:"unsafe_count"`
}

// Summary aggregates the whole corpus for the dashboard landing view
type Summary struct {
	TotalSamples int             `json:"total_samples"`
	Categories   []CategoryCount `json:"categories"`
	AvgHPI       float64         `json:"avg_hpi"`
	AvgMI        float64         `json:"avg_mi"`
	AvgCD        float64         `json:"avg_cd"`
	LastSampled  time.Time       `json:"last_sampled"`
}

// UnsafeShare returns the fraction of samples classified unsafe
func (s *Summary) UnsafeShare() float64 {
	if s.TotalSamples == 0 {
		return 0
	}
	for _, c := range s.Categories {
		if c.Category == "unsafe" {
			return float64(c.Count) / float64(s.TotalSamples)
		}
	}
	return 0
}
