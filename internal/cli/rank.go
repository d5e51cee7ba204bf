package cli

import (
	"github.com/spf13/cobra"

	service "github.com/okian/assigner/internal/app"
	"github.com/okian/assigner/internal/domain/scoring"
	"github.com/okian/assigner/internal/domain/types"
	"github.com/okian/assigner/pkg/logger"
)

func newRankCommand(root *rootOptions) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "rank",
		Short: "Rank candidates offline with the configured scorer",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			cfg, err := root.load(ctx)
			if err != nil {
				return err
			}
			req, err := readRequest(cmd, file)
			if err != nil {
				return err
			}

			settings := scoring.SettingsFromConfig(cfg)
			settings.Logger = logger.Get()
			scorer, closer, err := scoring.Build(ctx, settings)
			if err != nil {
				return err
			}
			defer closer.Close()

			svc := service.New(service.WithScorer(scorer), service.WithLogger(logger.Named("rank")))
			if err := svc.Start(ctx); err != nil {
				return err
			}
			defer svc.Stop()

			task, candidates := req.ToDomain(defaultsFrom(cfg))
			a, err := svc.Assign(ctx, task, candidates)
			if err != nil {
				return err
			}
			return printJSON(cmd, types.NewAssignmentResponse(req.CandidateEmployees[a.Index], a.Score))
		},
	}
	addFileFlag(cmd, &file)
	return cmd
}
