package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/okian/taskbounty/internal/adapters/terminal"
	service "github.com/okian/taskbounty/internal/app"
	"github.com/okian/taskbounty/internal/domain/request"
)

type runFlags struct {
	form         request.Form
	criteria     []string
	criteriaFile string
	interactive  bool
}

func newRunCommand(root *rootFlags) *cobra.Command {
	flags := &runFlags{form: request.DefaultForm()}
	var vf viewFlags

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run an auction for a task",
		Long: `Submit a task to the decision service and print the decision report.

Acceptance criteria come from --criteria-file (one per line) followed by
each --criteria flag; without either the default criteria are used.
Use --interactive to edit the task in a form before it is sent.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			form, err := flags.resolve(cmd)
			if err != nil {
				return err
			}
			req := request.Build(form)
			return call(cmd, root, &vf, func(ctx context.Context, s *service.Store) bool {
				return s.RunTask(ctx, req)
			})
		},
	}

	f := cmd.Flags()
	f.StringVar(&flags.form.Title, "title", flags.form.Title, "Task title")
	f.Float64Var(&flags.form.BudgetUSD, "budget", flags.form.BudgetUSD, "Budget in USD")
	f.StringArrayVar(&flags.criteria, "criteria", nil, "Acceptance criterion (repeatable)")
	f.StringVar(&flags.criteriaFile, "criteria-file", "", "File with one acceptance criterion per line")
	f.Float64Var(&flags.form.WeightPrice, "weight-price", flags.form.WeightPrice, "Price weight")
	f.Float64Var(&flags.form.WeightETA, "weight-eta", flags.form.WeightETA, "ETA weight")
	f.Float64Var(&flags.form.WeightQuality, "weight-quality", flags.form.WeightQuality, "Quality weight")
	f.Float64Var(&flags.form.WeightRisk, "weight-risk", flags.form.WeightRisk, "Risk weight")
	f.BoolVar(&flags.form.UseLLM, "use-llm", flags.form.UseLLM, "Ask the service for LLM notes")
	f.StringVar(&flags.form.Model, "model", flags.form.Model, "LLM model name")
	f.BoolVarP(&flags.interactive, "interactive", "i", false, "Edit the task in an interactive form")
	vf.register(cmd)

	return cmd
}

// resolve applies the criteria flags and, when asked, the interactive form.
func (f *runFlags) resolve(cmd *cobra.Command) (request.Form, error) {
	form := f.form

	var criteria []string
	if f.criteriaFile != "" {
		data, err := os.ReadFile(f.criteriaFile)
		if err != nil {
			return form, fmt.Errorf("read criteria file: %w", err)
		}
		criteria = request.BuildCriteria(string(data))
	}
	criteria = append(criteria, f.criteria...)
	if f.criteriaFile != "" || len(f.criteria) > 0 {
		form.CriteriaText = request.JoinCriteria(criteria)
	}

	if f.interactive {
		return terminal.AskForm(cmd.InOrStdin(), cmd.ErrOrStderr(), form)
	}
	return form, nil
}
