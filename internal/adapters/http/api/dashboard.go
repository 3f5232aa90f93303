package api

import (
	"bytes"
	"html/template"
	"net/http"
	"strconv"

	"github.com/okian/taskbounty/internal/domain/request"
	"github.com/okian/taskbounty/internal/view"
)

var dashboardTemplate = template.Must(
	template.New("dashboard.html").
		Funcs(template.FuncMap{"num": formatFloat}).
		ParseFS(dashboardFS, "dashboard.html"),
)

// dashboardPage is the template input.
type dashboardPage struct {
	D    view.Dashboard
	Form request.Form
}

// dashboardHandler renders the HTML dashboard.
type dashboardHandler struct {
	store    ReportStore
	defaults Defaults
}

func newDashboardHandler(store ReportStore, defaults Defaults) *dashboardHandler {
	return &dashboardHandler{store: store, defaults: defaults}
}

// HandleDashboard handles GET / requests.
func (h *dashboardHandler) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	const op = "api.dashboard"
	page := dashboardPage{
		D:    view.Build(h.store.Snapshot(), selectionFrom(r)),
		Form: h.defaults.Form,
	}

	var buf bytes.Buffer
	if err := dashboardTemplate.Execute(&buf, page); err != nil {
		writeError(w, http.StatusInternalServerError, "internal", WrapKind(op, ErrRenderPage, err))
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
