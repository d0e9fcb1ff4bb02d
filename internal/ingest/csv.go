// Package ingest turns tabular lab exports into classified sample
// records: CSV parsing with column-name fallbacks, unit conversion,
// and a worker-pool bulk importer.
package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
)

// Row is one parsed CSV record: identification fields plus the raw
// measurement scalars, left as strings for the engine's coercion layer.
type Row struct {
	Line      int
	StationID string
	District  string
	State     string
	Latitude  float64
	Longitude float64
	SampledAt time.Time

	Metals       map[string]any
	WaterQuality map[string]any
}

// Column fallbacks: lab exports disagree on header names, so each
// canonical parameter accepts the spellings we have met in the wild.
// Headers are normalized (lowercase, non-alphanumerics collapsed to _)
// before lookup.
var (
	metalColumns = map[string][]string{
		"lead":     {"lead", "pb", "lead_mg_l"},
		"cadmium":  {"cadmium", "cd", "cadmium_mg_l"},
		"arsenic":  {"arsenic", "as", "arsenic_mg_l"},
		"chromium": {"chromium", "cr", "chromium_mg_l"},
		"uranium":  {"uranium", "u", "uranium_mg_l"},
		"iron":     {"iron", "fe", "iron_mg_l"},
		"mercury":  {"mercury", "hg", "mercury_mg_l"},
	}

	waterQualityColumns = map[string][]string{
		"ph":       {"ph", "ph_value", "p_h"},
		"tds":      {"tds", "total_dissolved_solids"},
		"hardness": {"hardness", "total_hardness"},
		"fluoride": {"fluoride", "f", "fluoride_mg_l"},
		"nitrate":  {"nitrate", "no3", "nitrate_mg_l"},
	}

	stationColumns   = []string{"station_id", "station", "well_id", "site_id"}
	districtColumns  = []string{"district", "block", "tehsil"}
	stateColumns     = []string{"state", "province"}
	latitudeColumns  = []string{"latitude", "lat"}
	longitudeColumns = []string{"longitude", "lon", "long", "lng"}
	sampledAtColumns = []string{"sampled_at", "sample_date", "date", "collection_date"}
)

// sampleDateFormats are tried in order when parsing the sample date
var sampleDateFormats = []string{
	time.RFC3339,
	"2006-01-02",
	"02-01-2006",
	"02/01/2006",
}

// ParseCSV reads a headered CSV export into rows. Rows missing a
// station id are skipped, not fatal; a malformed header is.
func ParseCSV(r io.Reader) ([]Row, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1 // ragged exports are common

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}

	cols := make([]string, len(header))
	ppb := make([]bool, len(header))
	for i, h := range header {
		name, isPpb := normalizeHeader(h)
		cols[i] = name
		ppb[i] = isPpb
	}

	var rows []Row
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv line %d: %w", line+1, err)
		}
		line++

		row := parseRow(cols, ppb, record)
		row.Line = line
		if row.StationID == "" {
			continue
		}
		rows = append(rows, row)
	}

	return rows, nil
}

// parseRow maps one record onto the canonical fields
func parseRow(cols []string, ppb []bool, record []string) Row {
	row := Row{
		Metals:       make(map[string]any),
		WaterQuality: make(map[string]any),
	}

	for i, value := range record {
		if i >= len(cols) {
			break
		}
		value = strings.TrimSpace(value)
		col := cols[i]

		switch {
		case matches(col, stationColumns):
			row.StationID = value
		case matches(col, districtColumns):
			row.District = value
		case matches(col, stateColumns):
			row.State = value
		case matches(col, latitudeColumns):
			row.Latitude, _ = strconv.ParseFloat(value, 64)
		case matches(col, longitudeColumns):
			row.Longitude, _ = strconv.ParseFloat(value, 64)
		case matches(col, sampledAtColumns):
			row.SampledAt = parseSampleDate(value)
		default:
			if metal, ok := canonicalColumn(col, metalColumns); ok {
				row.Metals[metal] = convertUnit(value, ppb[i])
			} else if param, ok := canonicalColumn(col, waterQualityColumns); ok {
				row.WaterQuality[param] = value
			}
		}
	}

	return row
}

// normalizeHeader lowercases a header, collapses separators to _, and
// strips a trailing ppb unit marker.
func normalizeHeader(h string) (name string, ppb bool) {
	name = strings.ToLower(strings.TrimSpace(h))
	for _, sep := range []string{" ", "-", ".", "(", ")", "/"} {
		name = strings.ReplaceAll(name, sep, "_")
	}
	for strings.Contains(name, "__") {
		name = strings.ReplaceAll(name, "__", "_")
	}
	name = strings.Trim(name, "_")

	if strings.HasSuffix(name, "_ppb") {
		return strings.TrimSuffix(name, "_ppb"), true
	}
	if strings.HasSuffix(name, "_ug_l") { // µg/L is ppb for water
		return strings.TrimSuffix(name, "_ug_l"), true
	}
	return name, false
}

// convertUnit converts a ppb reading to mg/L; mg/L values pass through
// untouched as raw strings so the engine's coercion stays in charge.
func convertUnit(value string, isPpb bool) any {
	if !isPpb {
		return value
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return value
	}
	return f / 1000.0
}

func matches(col string, candidates []string) bool {
	for _, c := range candidates {
		if col == c {
			return true
		}
	}
	return false
}

func canonicalColumn(col string, table map[string][]string) (string, bool) {
	for canonical, aliases := range table {
		if matches(col, aliases) {
			return canonical, true
		}
	}
	// A canonical name with a _mg_l suffix we have not listed still maps
	if strings.HasSuffix(col, "_mg_l") {
		base := strings.TrimSuffix(col, "_mg_l")
		if _, ok := table[base]; ok {
			return base, true
		}
	}
	return "", false
}

func parseSampleDate(value string) time.Time {
	for _, layout := range sampleDateFormats {
		if t, err := time.Parse(layout, value); err == nil {
			return t
		}
	}
	return time.Time{}
}

// ToMeasurements returns the row's raw scalars keyed canonically,
// ready for the index engine's coercion layer.
func (r *Row) ToMeasurements() (map[string]any, map[string]any) {
	return r.Metals, r.WaterQuality
}
