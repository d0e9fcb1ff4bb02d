// Package report renders persisted sample records for export. No
// computation happens here; indices come straight off the records.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/aquascope/hydro/backend/internal/contracts"
)

// csvHeader is the fixed export column order
var csvHeader = []string{
	"id", "station_id", "district", "state", "latitude", "longitude", "sampled_at",
	"lead", "cadmium", "arsenic", "chromium", "uranium", "iron", "mercury",
	"ph", "tds", "hardness", "fluoride", "nitrate",
	"hpi", "mi", "cd", "category",
}

// WriteCSV streams samples as a CSV document
func WriteCSV(w io.Writer, samples []*contracts.Sample) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(csvHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	for _, s := range samples {
		record := []string{
			strconv.FormatInt(s.ID, 10),
			s.StationID,
			s.District,
			s.State,
			formatFloat(s.Latitude),
			formatFloat(s.Longitude),
			formatTime(s.SampledAt),
			metal(s, "lead"), metal(s, "cadmium"), metal(s, "arsenic"), metal(s, "chromium"),
			metal(s, "uranium"), metal(s, "iron"), metal(s, "mercury"),
			wq(s, "ph"), wq(s, "tds"), wq(s, "hardness"), wq(s, "fluoride"), wq(s, "nitrate"),
			formatFloat(s.HPI),
			formatFloat(s.MI),
			formatFloat(s.CD),
			s.Category,
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("write csv record: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// metal formats a metal reading, empty when the parameter was never measured
func metal(s *contracts.Sample, name string) string {
	if v, ok := s.Metals[name]; ok {
		return formatFloat(v)
	}
	return ""
}

func wq(s *contracts.Sample, name string) string {
	if v, ok := s.WaterQuality[name]; ok {
		return formatFloat(v)
	}
	return ""
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format("2006-01-02")
}
