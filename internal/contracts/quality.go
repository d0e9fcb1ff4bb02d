package contracts

import "time"

// CoverageSnapshot captures how complete the measurement corpus is for a
// window: the fraction of samples that actually carry each canonical
// parameter. Produced by the coverage gate, persisted nightly.
type CoverageSnapshot struct {
	Date         time.Time          `json:"date"`
	TotalSamples int                `json:"total_samples"`
	Coverage     map[string]float64 `json:"coverage"`      // parameter -> 0.0..1.0
	QualityScore float64            `json:"quality_score"` // 0.0..1.0
	Passed       bool               `json:"passed"`
}

// IsValid checks if the snapshot meets minimum requirements
func (c *CoverageSnapshot) IsValid() bool {
	return c.QualityScore >= 0.7 && c.TotalSamples > 0
}

// CoverageRate returns the mean coverage across tracked parameters
func (c *CoverageSnapshot) CoverageRate() float64 {
	if len(c.Coverage) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range c.Coverage {
		sum += v
	}
	return sum / float64(len(c.Coverage))
}
