package api

import (
	"net/http"

	"github.com/okian/taskbounty/internal/domain/selection"
	"github.com/okian/taskbounty/internal/view"
)

// ReportHandler serves the current report.
type ReportHandler struct {
	store ReportStore
}

// NewReportHandler creates a new report handler.
func NewReportHandler(store ReportStore) *ReportHandler {
	return &ReportHandler{store: store}
}

// HandleDashboard handles GET /api/report. The bid query parameter selects a breakdown.
func (h *ReportHandler) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	d := view.Build(h.store.Snapshot(), selectionFrom(r))
	writeJSON(w, http.StatusOK, d)
}

// HandleRaw handles GET /api/report/raw.
func (h *ReportHandler) HandleRaw(w http.ResponseWriter, _ *http.Request) {
	const op = "api.report_raw"
	snap := h.store.Snapshot()
	if !snap.HasReport() {
		writeError(w, http.StatusNotFound, "not_found", NewKind(op, ErrNoReport))
		return
	}
	writeJSON(w, http.StatusOK, snap.Report)
}

func selectionFrom(r *http.Request) selection.Selection {
	return selection.None.Select(r.URL.Query().Get("bid"))
}
