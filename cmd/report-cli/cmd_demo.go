package main

import (
	"context"

	"github.com/spf13/cobra"

	service "github.com/okian/taskbounty/internal/app"
	"github.com/okian/taskbounty/internal/domain/request"
)

func newDemoCommand(root *rootFlags) *cobra.Command {
	defaults := request.DefaultForm().Demo()
	var (
		params request.DemoParams
		vf     viewFlags
	)

	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Run the seeded demo auction",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return call(cmd, root, &vf, func(ctx context.Context, s *service.Store) bool {
				return s.RunDemo(ctx, params.Seed, params.Rounds)
			})
		},
	}

	cmd.Flags().IntVar(&params.Seed, "seed", defaults.Seed, "Demo seed")
	cmd.Flags().IntVar(&params.Rounds, "rounds", defaults.Rounds, "Negotiation rounds")
	vf.register(cmd)

	return cmd
}
