// Package indices derives standardized pollution indices from raw
// groundwater measurements and classifies each sample.
//
// The engine is a pure transform: no I/O, no shared state, total over
// its input domain. It is safe to call concurrently from HTTP handlers
// and import workers alike.
package indices

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Safety categories, ordered from best to worst.
const (
	CategorySafe     = "safe"
	CategoryModerate = "moderate"
	CategoryUnsafe   = "unsafe"
)

// MeasurementSet is the engine input: coerced per-sample concentrations.
// Metals are keyed by canonical lowercase name (lead, cadmium, ...),
// WaterQuality carries ph, tds, hardness, fluoride and nitrate.
type MeasurementSet struct {
	Metals       map[string]float64
	WaterQuality map[string]float64
}

// IndexResult is the engine output. All numeric fields are rounded to
// three decimals; Category is derived from the indices plus the raw
// exceedance flags.
type IndexResult struct {
	HPI      float64 `json:"hpi"`
	MI       float64 `json:"mi"`
	CD       float64 `json:"cd"`
	Category string  `json:"category"`
}

// Issue records one input field that required coercion. Reported by
// ComputeRaw so strict callers can reject the row; the computed result
// is unaffected.
type Issue struct {
	Field  string `json:"field"`
	Value  string `json:"value"`
	Reason string `json:"reason"` // non_numeric, negative
}

func (i Issue) String() string {
	return fmt.Sprintf("%s=%q (%s)", i.Field, i.Value, i.Reason)
}

// Engine computes pollution indices against an injected limit table.
type Engine struct {
	table  Table
	strict bool
}

// NewEngine creates an engine bound to a limit table. When strict is
// set, ComputeRaw callers are expected to reject rows that produced
// coercion issues; Compute itself stays total either way.
func NewEngine(table Table, strict bool) *Engine {
	return &Engine{table: table, strict: strict}
}

// Strict reports whether the engine was configured for strict validation
func (e *Engine) Strict() bool {
	return e.strict
}

// Table returns the limit table the engine was built with
func (e *Engine) Table() Table {
	return e.table
}

// Compute derives HPI, MI and CD from a measurement set and classifies
// it. Only metals present in both the input and the limit table
// participate; an empty intersection yields zero indices.
//
//	HPI = Σ (c/t) * 100   (percentage-of-limit, summed)
//	MI  = (Σ c / |K|) * 10  (mean concentration, scaled)
//	CD  = Σ (c/t)          (summed limit ratios)
//
// MI deliberately averages raw concentrations across heterogeneous
// metals; the formula is kept bit-for-bit compatible with the persisted
// corpus rather than unit-corrected.
func (e *Engine) Compute(ms MeasurementSet) IndexResult {
	var (
		hpiSum  float64
		cdSum   float64
		concSum float64
		active  int

		exceedsMetal bool
	)

	for name, conc := range ms.Metals {
		limit, ok := e.table.Metals[name]
		if !ok || limit <= 0 {
			continue // unknown metal: deliberately ignored
		}

		active++
		concSum += conc
		hpiSum += (conc / limit) * 100
		cdSum += conc / limit

		if conc > limit { // strict: equal-to-limit does not exceed
			exceedsMetal = true
		}
	}

	var hpi, mi, cd float64
	if active > 0 {
		hpi = round3(hpiSum)
		mi = round3((concSum / float64(active)) * 10)
		cd = round3(cdSum)
	}

	result := IndexResult{HPI: hpi, MI: mi, CD: cd}
	result.Category = e.classify(hpi, mi, cd, exceedsMetal, e.exceedsOther(ms.WaterQuality))
	return result
}

// exceedsOther checks the non-metal exceedance flags
func (e *Engine) exceedsOther(wq map[string]float64) bool {
	ph := 7.0
	if v, ok := wq["ph"]; ok {
		ph = v
	}
	fluoride := wq["fluoride"]
	nitrate := wq["nitrate"]
	tds := wq["tds"]

	switch {
	case fluoride > e.table.Fluoride*1.5:
		return true
	case nitrate > e.table.Nitrate:
		return true
	case tds > e.table.TDS*2:
		return true
	case ph < e.table.PHMin || ph > e.table.PHMax:
		return true
	}
	return false
}

// classify applies the category decision in order; first match wins so
// an exceedance flag always outranks the moderate numeric cutoffs.
func (e *Engine) classify(hpi, mi, cd float64, exceedsMetal, exceedsOther bool) string {
	switch {
	case hpi > 100 || mi > 1 || cd > 3 || exceedsMetal || exceedsOther:
		return CategoryUnsafe
	case hpi > 50 || mi > 0.5 || cd > 1.5:
		return CategoryModerate
	default:
		return CategorySafe
	}
}

// ComputeRaw coerces arbitrary string-keyed scalars and computes indices
// in one step. Non-numeric or missing values degrade to 0 (pH to 7),
// negative readings clamp to 0; every coercion is reported as an Issue
// so strict-mode callers can reject the row instead. The coerced set is
// returned so callers can persist exactly what was scored.
func (e *Engine) ComputeRaw(rawMetals, rawWQ map[string]any) (IndexResult, MeasurementSet, []Issue) {
	var issues []Issue

	metals := make(map[string]float64, len(rawMetals))
	for key, raw := range rawMetals {
		name := CanonicalKey(key)
		v, ok := coerceScalar(raw)
		if !ok {
			issues = append(issues, Issue{Field: name, Value: fmt.Sprint(raw), Reason: "non_numeric"})
			v = 0
		}
		if v < 0 {
			issues = append(issues, Issue{Field: name, Value: fmt.Sprint(raw), Reason: "negative"})
			v = 0
		}
		metals[name] = v
	}

	wq := make(map[string]float64, len(rawWQ))
	for key, raw := range rawWQ {
		name := CanonicalKey(key)
		v, ok := coerceScalar(raw)
		if !ok {
			if name == "ph" {
				// pH is the one parameter with a non-zero neutral default
				wq[name] = 7
				issues = append(issues, Issue{Field: name, Value: fmt.Sprint(raw), Reason: "non_numeric"})
				continue
			}
			issues = append(issues, Issue{Field: name, Value: fmt.Sprint(raw), Reason: "non_numeric"})
			v = 0
		}
		wq[name] = v
	}

	ms := MeasurementSet{Metals: metals, WaterQuality: wq}
	return e.Compute(ms), ms, issues
}

// CanonicalKey normalizes a parameter name: lowercase, trimmed, with
// the common pH spellings collapsed.
func CanonicalKey(key string) string {
	k := strings.ToLower(strings.TrimSpace(key))
	if k == "p_h" || k == "ph_value" {
		return "ph"
	}
	return k
}

// coerceScalar turns a scalar of any wire type into float64.
// ok is false when the value cannot be interpreted as a finite number.
func coerceScalar(raw any) (float64, bool) {
	switch v := raw.(type) {
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, false
		}
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, false
		}
		return f, true
	case nil:
		return 0, false
	default:
		return 0, false
	}
}

// round3 rounds to three decimals, half away from zero
func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
