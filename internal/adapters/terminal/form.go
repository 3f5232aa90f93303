package terminal

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	"golang.org/x/term"

	"github.com/okian/taskbounty/internal/domain/request"
)

// ErrFormAborted is returned when the operator cancels the form.
var ErrFormAborted = errors.New("task form aborted")

// formInput holds the text the operator types; numbers are parsed after the form completes.
type formInput struct {
	title, budget, criteria              string
	wPrice, wETA, wQuality, wRisk, model string
	useLLM                               bool
}

func newFormInput(f request.Form) *formInput {
	return &formInput{
		title:    f.Title,
		budget:   formatFloat(f.BudgetUSD),
		criteria: f.CriteriaText,
		wPrice:   formatFloat(f.WeightPrice),
		wETA:     formatFloat(f.WeightETA),
		wQuality: formatFloat(f.WeightQuality),
		wRisk:    formatFloat(f.WeightRisk),
		model:    f.Model,
		useLLM:   f.UseLLM,
	}
}

// apply parses the typed values over base. Seed and rounds are not asked for.
func (in *formInput) apply(base request.Form) (request.Form, error) {
	out := base
	out.Title = in.title
	out.CriteriaText = in.criteria
	out.Model = in.model
	out.UseLLM = in.useLLM

	fields := []struct {
		name string
		raw  string
		dst  *float64
	}{
		{"budget", in.budget, &out.BudgetUSD},
		{"price weight", in.wPrice, &out.WeightPrice},
		{"eta weight", in.wETA, &out.WeightETA},
		{"quality weight", in.wQuality, &out.WeightQuality},
		{"risk weight", in.wRisk, &out.WeightRisk},
	}
	for _, f := range fields {
		v, err := parseFloat(f.raw)
		if err != nil {
			return base, fmt.Errorf("%s: %w", f.name, err)
		}
		*f.dst = v
	}
	return out, nil
}

// AskForm prompts for a task, starting from initial.
func AskForm(in io.Reader, out io.Writer, initial request.Form) (request.Form, error) {
	input := newFormInput(initial)

	numberInput := func(title string, v *string) *huh.Input {
		return huh.NewInput().
			Title(title).
			Value(v).
			Validate(func(s string) error {
				_, err := parseFloat(s)
				return err
			})
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Task title").
				Placeholder("Build a FastAPI endpoint + unit tests").
				Value(&input.title),
			numberInput("Budget (USD)", &input.budget),
			huh.NewText().
				Title("Acceptance criteria").
				Description("One per line").
				Value(&input.criteria),
		),
		huh.NewGroup(
			numberInput("Weight: price", &input.wPrice),
			numberInput("Weight: eta", &input.wETA),
			numberInput("Weight: quality", &input.wQuality),
			numberInput("Weight: risk", &input.wRisk),
			huh.NewConfirm().
				Title("Use LLM notes?").
				Affirmative("Yes").
				Negative("No").
				Value(&input.useLLM),
			huh.NewInput().
				Title("Model").
				Placeholder("llama3.1:8b").
				Value(&input.model),
		),
	).
		WithInput(in).
		WithOutput(out)

	// Use accessible mode for non-TTY input (e.g., tests, piped input).
	if f, ok := in.(*os.File); !ok || !term.IsTerminal(int(f.Fd())) {
		form = form.WithAccessible(true)
	}

	if err := form.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return initial, ErrFormAborted
		}
		return initial, fmt.Errorf("task form failed: %w", err)
	}
	return input.apply(initial)
}

func parseFloat(s string) (float64, error) {
	return strconv.ParseFloat(strings.TrimSpace(s), 64)
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
