package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/okian/taskbounty/internal/adapters/remote"
	"github.com/okian/taskbounty/internal/adapters/terminal"
	service "github.com/okian/taskbounty/internal/app"
	"github.com/okian/taskbounty/internal/config"
	"github.com/okian/taskbounty/internal/domain/selection"
	"github.com/okian/taskbounty/internal/view"
	"github.com/okian/taskbounty/pkg/logger"
)

var version = "dev"

type rootFlags struct {
	baseURL string
	format  string
	debug   bool
}

// viewFlags select what is printed after a call.
type viewFlags struct {
	bid      string
	payloads bool
	raw      bool
}

func (f *viewFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.bid, "bid", "", "Open the score breakdown of this freelancer")
	cmd.Flags().BoolVar(&f.payloads, "payloads", false, "Print timeline event payloads (table format)")
	cmd.Flags().BoolVar(&f.raw, "raw", false, "Append the raw report JSON (table format)")
}

func newRootCommand() *cobra.Command {
	flags := &rootFlags{}
	cmd := &cobra.Command{
		Use:   "report-cli",
		Short: "TaskBounty DAO decision report client",
		Long: `report-cli asks the decision service to run an auction, either a seeded demo
or a task you describe, and prints the explainable decision report.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&flags.baseURL, "base-url", "", "Decision service root (default from config)")
	cmd.PersistentFlags().StringVar(&flags.format, "format", formatTable, "Output format: table, json or yaml")
	cmd.PersistentFlags().BoolVar(&flags.debug, "debug", false, "Enable debug logging")
	cmd.PersistentPreRunE = func(cmd *cobra.Command, _ []string) error {
		if err := logger.Init(logger.WithOutput(cmd.ErrOrStderr())); err != nil {
			return err
		}
		level := "warn"
		if flags.debug {
			level = "debug"
		}
		if err := logger.SetLevelString(level); err != nil {
			return err
		}
		return checkFormat(flags.format)
	}

	cmd.AddCommand(newDemoCommand(flags))
	cmd.AddCommand(newRunCommand(flags))
	cmd.AddCommand(newVersionCommand())

	return cmd
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version)
		},
	}
}

func execute() error {
	return newRootCommand().Execute()
}

// newStore builds the report store from config, with --base-url taking precedence.
func newStore(ctx context.Context, flags *rootFlags) (*service.Store, error) {
	cfg, err := config.Load(ctx)
	if err != nil {
		return nil, err
	}
	if flags.baseURL != "" {
		cfg.BaseURL = flags.baseURL
	}
	log := logger.Get()
	client := remote.New(cfg.BaseURL,
		remote.WithTimeout(cfg.RequestTimeout()),
		remote.WithLogger(log.Named("remote")),
	)
	return service.New(client, service.WithLogger(log.Named("store"))), nil
}

// call runs one store operation under a spinner and prints the resulting dashboard.
func call(cmd *cobra.Command, flags *rootFlags, vf *viewFlags, op func(context.Context, *service.Store) bool) error {
	ctx := cmd.Context()
	store, err := newStore(ctx, flags)
	if err != nil {
		return err
	}

	stop := terminal.StartSpinner(cmd.ErrOrStderr(), view.MsgRunning)
	applied := op(ctx, store)
	stop()

	snap := store.Snapshot()
	if !applied {
		msg := snap.Err
		if msg == "" {
			msg = "decision service call was not applied"
		}
		return &CallError{Message: msg}
	}

	d := view.Build(snap, selection.None.Select(vf.bid))
	return writeDashboard(cmd.OutOrStdout(), flags.format, d, terminal.Options{Payloads: vf.payloads, Raw: vf.raw})
}
