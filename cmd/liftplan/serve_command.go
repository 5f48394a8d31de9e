package main

import (
	"github.com/spf13/cobra"

	"liftplan/internal/daemonrun"
)

func newServeCommand(ctx *commandContext) *cobra.Command {
	var logLevel string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			return daemonrun.Run(cmd.Context(), cfg, daemonrun.Options{LogLevel: logLevel})
		},
	}

	cmd.Flags().StringVar(&logLevel, "log-level", "", "Override the configured log level (debug, info, warn, error)")
	return cmd
}
