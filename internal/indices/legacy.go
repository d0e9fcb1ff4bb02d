package indices

// LegacyCompute reproduces the original fixed 4-metal formula. It is
// kept only so records ingested under the old engine can be recomputed
// bit-for-bit; the API and importer always use Engine.Compute.
//
//	HPI = (lead + cadmium + arsenic + chromium) * 100
//	MI  = (lead + cadmium) * 10
//	CD  = arsenic * 50
//
// No limit gating: the four metals participate unconditionally.
func LegacyCompute(ms MeasurementSet) IndexResult {
	lead := ms.Metals["lead"]
	cadmium := ms.Metals["cadmium"]
	arsenic := ms.Metals["arsenic"]
	chromium := ms.Metals["chromium"]

	hpi := round3((lead + cadmium + arsenic + chromium) * 100)
	mi := round3((lead + cadmium) * 10)
	cd := round3(arsenic * 50)

	var category string
	switch {
	case hpi > 100 || mi > 20 || cd > 10:
		category = CategoryUnsafe
	case hpi > 50 || mi > 10 || cd > 5:
		category = CategoryModerate
	default:
		category = CategorySafe
	}

	return IndexResult{HPI: hpi, MI: mi, CD: cd, Category: category}
}
