package indices

// Table holds the regulatory/guideline limits used to normalize raw
// concentrations. Immutable once built; the engine never mutates it and
// callers get their own copy via WithOverrides.
type Table struct {
	// Metal limits, mg/L. Only metals listed here participate in the
	// index formulas; unknown metals in the input are ignored, so adding
	// a metal to both the input and this map activates it with no
	// formula change.
	Metals map[string]float64

	// Desirable limits for the remaining water-quality parameters
	Fluoride float64 // mg/L
	Nitrate  float64 // mg/L
	TDS      float64 // mg/L
	PHMin    float64
	PHMax    float64
}

// DefaultTable returns the extended limit table.
// This is the authoritative source of truth for the production limits,
// drawn from the BIS 10500 / WHO drinking-water guidelines.
func DefaultTable() Table {
	return Table{
		Metals: map[string]float64{
			"lead":     0.01,
			"cadmium":  0.003,
			"arsenic":  0.01,
			"chromium": 0.05,
			"uranium":  0.03,
			"iron":     0.3,
			"mercury":  0.001,
		},
		Fluoride: 1.0,
		Nitrate:  45.0,
		TDS:      500.0,
		PHMin:    6.5,
		PHMax:    8.5,
	}
}

// LegacyTable returns the original 4-metal table that backs the fixed
// formula used for records ingested before the threshold-normalized
// engine shipped.
func LegacyTable() Table {
	return Table{
		Metals: map[string]float64{
			"lead":     0.01,
			"cadmium":  0.003,
			"arsenic":  0.01,
			"chromium": 0.05,
		},
		Fluoride: 1.0,
		Nitrate:  45.0,
		TDS:      500.0,
		PHMin:    6.5,
		PHMax:    8.5,
	}
}

// WithOverrides returns a copy of the table with per-parameter limit
// overrides applied. Metal names get their metal limit replaced;
// fluoride, nitrate, tds, ph_min and ph_max address the scalar limits.
// Unknown names are ignored.
func (t Table) WithOverrides(overrides map[string]float64) Table {
	out := t
	out.Metals = make(map[string]float64, len(t.Metals))
	for k, v := range t.Metals {
		out.Metals[k] = v
	}

	for name, limit := range overrides {
		switch name {
		case "fluoride":
			out.Fluoride = limit
		case "nitrate":
			out.Nitrate = limit
		case "tds":
			out.TDS = limit
		case "ph_min":
			out.PHMin = limit
		case "ph_max":
			out.PHMax = limit
		default:
			if _, ok := out.Metals[name]; ok {
				out.Metals[name] = limit
			}
		}
	}
	return out
}
