// Package request turns the operator's free-form task input into the bodies and
// parameters the decision service expects.
package request

import (
	"strings"

	"github.com/okian/taskbounty/internal/domain/report"
)

// Weight keys sent with every run request, in wire order.
const (
	WeightPrice   = "price"
	WeightETA     = "eta"
	WeightQuality = "quality"
	WeightRisk    = "risk"
)

// Form is the operator's input as typed.
type Form struct {
	Title         string  `json:"title"`
	BudgetUSD     float64 `json:"budget_usd"`
	CriteriaText  string  `json:"criteria_text"`
	WeightPrice   float64 `json:"weight_price"`
	WeightETA     float64 `json:"weight_eta"`
	WeightQuality float64 `json:"weight_quality"`
	WeightRisk    float64 `json:"weight_risk"`
	UseLLM        bool    `json:"use_llm"`
	Model         string  `json:"model"`
	Seed          int     `json:"seed"`
	Rounds        int     `json:"rounds"`
}

// DefaultForm returns the values the task form starts with.
func DefaultForm() Form {
	return Form{
		Title:     "Build a FastAPI endpoint + unit tests",
		BudgetUSD: 250,
		CriteriaText: JoinCriteria([]string{
			"POST /tasks creates a task",
			"POST /tasks/{id}/run selects winner",
			"Return a JSON decision report",
			"Include basic unit tests",
		}),
		WeightPrice:   0.9,
		WeightETA:     0.35,
		WeightQuality: 1.2,
		WeightRisk:    1.1,
		UseLLM:        true,
		Model:         "llama3.1:8b",
		Seed:          42,
		Rounds:        2,
	}
}

// RunRequest is the body of a run-task call.
type RunRequest struct {
	Title              string          `json:"title"`
	AcceptanceCriteria []string        `json:"acceptance_criteria"`
	BudgetUSD          float64         `json:"budget_usd"`
	Weights            *report.Weights `json:"weights,omitempty"`
	UseLLM             bool            `json:"use_llm"`
	Model              string          `json:"model"`
}

// DemoParams are the query parameters of a seeded demo call.
type DemoParams struct {
	Seed   int
	Rounds int
}

// BuildCriteria splits text into one criterion per non-blank line, trimmed, in order.
// The result is never nil.
func BuildCriteria(text string) []string {
	out := []string{}
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}

// JoinCriteria is the inverse of BuildCriteria for already clean criteria.
func JoinCriteria(criteria []string) string {
	return strings.Join(criteria, "\n")
}

// Weights returns the four form weights keyed price, eta, quality, risk.
func (f Form) Weights() *report.Weights {
	w := report.NewWeights()
	w.Set(WeightPrice, report.NumberValue(f.WeightPrice))
	w.Set(WeightETA, report.NumberValue(f.WeightETA))
	w.Set(WeightQuality, report.NumberValue(f.WeightQuality))
	w.Set(WeightRisk, report.NumberValue(f.WeightRisk))
	return w
}

// Build assembles the run-task body. Values are forwarded without validation.
func Build(f Form) RunRequest {
	return RunRequest{
		Title:              f.Title,
		AcceptanceCriteria: BuildCriteria(f.CriteriaText),
		BudgetUSD:          f.BudgetUSD,
		Weights:            f.Weights(),
		UseLLM:             f.UseLLM,
		Model:              f.Model,
	}
}

// Demo returns the seeded demo call parameters.
func (f Form) Demo() DemoParams {
	return DemoParams{Seed: f.Seed, Rounds: f.Rounds}
}
