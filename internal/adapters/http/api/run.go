package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/okian/taskbounty/internal/domain/request"
	"github.com/okian/taskbounty/internal/domain/selection"
	"github.com/okian/taskbounty/internal/view"
	"github.com/okian/taskbounty/pkg/logger"
)

// maxFormBytes bounds task submissions.
const maxFormBytes = 1 << 20

// RunHandler starts remote calls through the store.
type RunHandler struct {
	store    ReportStore
	defaults Defaults
	logger   logger.Logger
}

// NewRunHandler creates a new run handler.
func NewRunHandler(store ReportStore, defaults Defaults, l logger.Logger) *RunHandler {
	return &RunHandler{store: store, defaults: defaults, logger: l}
}

// HandleDemo handles POST /api/demo. Seed and rounds come from the query or the form.
func (h *RunHandler) HandleDemo(w http.ResponseWriter, r *http.Request) {
	const op = "api.demo"
	params := h.defaults.Form.Demo()
	seed, err := intParam(r, "seed", params.Seed)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	rounds, err := intParam(r, "rounds", params.Rounds)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	ctx := requestContext(r)
	h.logger.Info(ctx, "demo requested", logger.Int("seed", seed), logger.Int("rounds", rounds))
	applied := h.store.RunDemo(ctx, seed, rounds)
	h.respond(w, r, applied)
}

// HandleTask handles POST /api/task with a JSON form or a url-encoded form.
func (h *RunHandler) HandleTask(w http.ResponseWriter, r *http.Request) {
	const op = "api.task"
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)

	var (
		form request.Form
		err  error
	)
	if isJSON(r) {
		form, err = h.decodeJSONForm(r)
	} else {
		form, err = h.decodePostedForm(r)
	}
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	ctx := requestContext(r)
	h.logger.Info(ctx, "task submitted",
		logger.String("title", form.Title),
		logger.Float64("budget_usd", form.BudgetUSD),
		logger.Bool("use_llm", form.UseLLM))
	applied := h.store.RunTask(ctx, request.Build(form))
	h.respond(w, r, applied)
}

// respond redirects browser posts back to the dashboard and answers API callers with
// the dashboard JSON. A failed call answers 502.
func (h *RunHandler) respond(w http.ResponseWriter, r *http.Request, applied bool) {
	if !wantsJSON(r) {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	snap := h.store.Snapshot()
	status := http.StatusOK
	if !applied && snap.Err != "" {
		status = http.StatusBadGateway
	}
	writeJSON(w, status, view.Build(snap, selection.None))
}

// decodeJSONForm reads a JSON form. Fields left out keep their defaults.
func (h *RunHandler) decodeJSONForm(r *http.Request) (request.Form, error) {
	form := h.defaults.Form
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&form); err != nil {
		return request.Form{}, fmt.Errorf("decode task form: %w", err)
	}
	return form, nil
}

// decodePostedForm reads a url-encoded form. An unchecked use_llm box is absent and means false.
func (h *RunHandler) decodePostedForm(r *http.Request) (request.Form, error) {
	if err := r.ParseForm(); err != nil {
		return request.Form{}, fmt.Errorf("parse task form: %w", err)
	}
	form := h.defaults.Form
	if v, ok := formString(r, "title"); ok {
		form.Title = v
	}
	if v, ok := formString(r, "criteria_text"); ok {
		form.CriteriaText = v
	}
	if v, ok := formString(r, "model"); ok {
		form.Model = v
	}
	form.UseLLM = checkbox(r.PostForm.Get("use_llm"))

	floats := []struct {
		key string
		dst *float64
	}{
		{"budget_usd", &form.BudgetUSD},
		{"weight_price", &form.WeightPrice},
		{"weight_eta", &form.WeightETA},
		{"weight_quality", &form.WeightQuality},
		{"weight_risk", &form.WeightRisk},
	}
	for _, f := range floats {
		v, err := floatParam(r, f.key, *f.dst)
		if err != nil {
			return request.Form{}, err
		}
		*f.dst = v
	}

	var err error
	if form.Seed, err = intParam(r, "seed", form.Seed); err != nil {
		return request.Form{}, err
	}
	if form.Rounds, err = intParam(r, "rounds", form.Rounds); err != nil {
		return request.Form{}, err
	}
	return form, nil
}

func formString(r *http.Request, key string) (string, bool) {
	if _, ok := r.PostForm[key]; !ok {
		return "", false
	}
	return r.PostForm.Get(key), true
}

func checkbox(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "on", "true", "1", "yes":
		return true
	default:
		return false
	}
}

// intParam reads key from the query or form; empty means def.
func intParam(r *http.Request, key string, def int) (int, error) {
	raw := strings.TrimSpace(r.FormValue(key))
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q", key, raw)
	}
	return n, nil
}

func floatParam(r *http.Request, key string, def float64) (float64, error) {
	raw := strings.TrimSpace(r.FormValue(key))
	if raw == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q", key, raw)
	}
	return f, nil
}
