// Package cli implements assignctl, the operator command line for the
// assignment service: inspecting features, ranking offline with the
// configured scorer, and submitting requests to a running server.
package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/okian/assigner/internal/config"
	"github.com/okian/assigner/pkg/logger"
)

const app = "assignctl"

// Version is set at build time.
var Version = "dev"

type rootOptions struct {
	configFile string
	logLevel   string
}

// NewRootCommand builds the assignctl command tree.
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           app,
		Short:         "assignctl inspects, ranks and submits task assignment requests",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := logger.Init(logger.WithWriter(cmd.ErrOrStderr())); err != nil {
				return err
			}
			return logger.SetLevelString(opts.logLevel)
		},
	}

	root.PersistentFlags().StringVar(&opts.configFile, "config", "", "YAML config file (default is $ASSIGNER_CONFIG)")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "log level: debug, info, warn, error")

	root.AddCommand(
		newFeaturesCommand(opts),
		newRankCommand(opts),
		newSubmitCommand(),
		newVersionCommand(),
	)
	return root
}

// Execute runs the command tree with ctx and args.
func Execute(ctx context.Context, args []string) error {
	root := NewRootCommand()
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}

func (o *rootOptions) load(ctx context.Context) (*config.Config, error) {
	var loadOpts []config.LoadOption
	if o.configFile != "" {
		loadOpts = append(loadOpts, config.WithFile(o.configFile))
	}
	return config.Load(ctx, loadOpts...)
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s version: %s\n", app, Version)
		},
	}
}
