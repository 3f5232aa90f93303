// Package api serves the report dashboard and its JSON endpoints.
package api

import (
	"context"
	"encoding/json"
	"mime"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/klauspost/compress/gzhttp"

	service "github.com/okian/taskbounty/internal/app"
	"github.com/okian/taskbounty/internal/domain/request"
	"github.com/okian/taskbounty/pkg/logger"
)

// ReportStore is the part of the store the handlers read and drive.
type ReportStore interface {
	RunDemo(ctx context.Context, seed, rounds int) bool
	RunTask(ctx context.Context, req request.RunRequest) bool
	Snapshot() service.Snapshot
}

// Defaults pre-fill the dashboard forms and fill fields a post leaves out.
type Defaults struct {
	Form request.Form
}

// Server wires HTTP routes for the dashboard.
type Server struct {
	healthHandler    *HealthHandler
	statsHandler     *StatsHandler
	dashboardHandler *dashboardHandler
	reportHandler    *ReportHandler
	runHandler       *RunHandler
}

// Option configures a Server.
type Option func(*serverConfig)

type serverConfig struct {
	defaults Defaults
	logger   logger.Logger
}

// WithDefaults sets the form defaults.
func WithDefaults(d Defaults) Option {
	return func(c *serverConfig) { c.defaults = d }
}

// WithLogger sets the handler logger.
func WithLogger(l logger.Logger) Option {
	return func(c *serverConfig) { c.logger = l }
}

// NewServer creates a new API server with all handlers.
func NewServer(store ReportStore, statsProvider StatsProvider, opts ...Option) *Server {
	cfg := serverConfig{
		defaults: Defaults{Form: request.DefaultForm()},
		logger:   logger.Nop(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Server{
		healthHandler:    NewHealthHandler(),
		statsHandler:     NewStatsHandler(statsProvider),
		dashboardHandler: newDashboardHandler(store, cfg.defaults),
		reportHandler:    NewReportHandler(store),
		runHandler:       NewRunHandler(store, cfg.defaults, cfg.logger),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("GET /api/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("GET /api/report", MetricsMiddleware(s.reportHandler.HandleDashboard, "report"))
	mux.HandleFunc("GET /api/report/raw", MetricsMiddleware(s.reportHandler.HandleRaw, "report_raw"))
	mux.HandleFunc("POST /api/demo", MetricsMiddleware(s.runHandler.HandleDemo, "demo"))
	mux.HandleFunc("POST /api/task", MetricsMiddleware(s.runHandler.HandleTask, "task"))
	mux.HandleFunc("GET /{$}", MetricsMiddleware(s.dashboardHandler.HandleDashboard, "dashboard"))
}

// Handler returns mux behind request ids, panic recovery and gzip.
func Handler(mux http.Handler) http.Handler {
	return middleware.RequestID(middleware.Recoverer(gzhttp.GzipHandler(mux)))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// isJSON reports whether the request body is JSON.
func isJSON(r *http.Request) bool {
	mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mt == "application/json"
}

// wantsJSON reports whether the caller expects a JSON answer rather than a redirect.
func wantsJSON(r *http.Request) bool {
	return isJSON(r) || strings.Contains(r.Header.Get("Accept"), "application/json")
}

// requestContext detaches the remote call from the client connection and carries
// the router's request id into the logs.
func requestContext(r *http.Request) context.Context {
	ctx := context.WithoutCancel(r.Context())
	if id := middleware.GetReqID(r.Context()); id != "" {
		ctx = logger.WithRequestID(ctx, id)
	}
	return ctx
}
