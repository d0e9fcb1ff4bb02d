package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/aquascope/hydro/backend/internal/contracts"
	"github.com/aquascope/hydro/backend/internal/report"
	"github.com/aquascope/hydro/backend/pkg/logger"
)

// ExportHandler serves CSV and PDF exports of filtered samples
type ExportHandler struct {
	repo   contracts.SampleRepository
	logger *logger.Logger
}

// NewExportHandler creates a new export handler
func NewExportHandler(repo contracts.SampleRepository, log *logger.Logger) *ExportHandler {
	return &ExportHandler{
		repo:   repo,
		logger: log,
	}
}

// exportLimit caps export size; dashboards should paginate instead
const exportLimit = 10000

// CSV streams the filtered samples as CSV
// GET /api/export/csv
func (h *ExportHandler) CSV(w http.ResponseWriter, r *http.Request) {
	list, ok := h.load(w, r)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf(`attachment; filename="samples-%s.csv"`, time.Now().UTC().Format("2006-01-02")))

	if err := report.WriteCSV(w, list); err != nil {
		h.logger.WithError(err).Error("CSV export failed")
	}
}

// PDF renders the filtered samples as a PDF report
// GET /api/export/pdf
func (h *ExportHandler) PDF(w http.ResponseWriter, r *http.Request) {
	list, ok := h.load(w, r)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf(`attachment; filename="report-%s.pdf"`, time.Now().UTC().Format("2006-01-02")))

	if err := report.WritePDF(w, list); err != nil {
		h.logger.WithError(err).Error("PDF export failed")
	}
}

func (h *ExportHandler) load(w http.ResponseWriter, r *http.Request) ([]*contracts.Sample, bool) {
	q := r.URL.Query()

	filter := contracts.SampleFilter{
		Category: q.Get("category"),
		District: q.Get("district"),
		State:    q.Get("state"),
		Limit:    exportLimit,
	}

	list, err := h.repo.List(r.Context(), filter)
	if err != nil {
		h.logger.WithError(err).Error("Failed to load samples for export")
		respondError(w, http.StatusInternalServerError, "Failed to load samples")
		return nil, false
	}
	return list, true
}
