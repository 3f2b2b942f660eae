package main

import (
	"github.com/spf13/cobra"

	"cinerate/internal/app"
	"cinerate/internal/logging"
)

func newServeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the rating API in the foreground",
		Long: `Run the rating API in the foreground.

The server answers GET_RATINGS messages on /api/messages, holds a lock in the
data directory so only one instance runs, and sweeps expired cache entries
once at startup. Stop it with Ctrl+C.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := logging.NewFromConfig(cfg)
			if err != nil {
				return err
			}
			if ctx.verbose() {
				logger, err = logging.New(logging.Options{
					Level:       "debug",
					Format:      cfg.Logging.Format,
					OutputPaths: []string{"stdout", cfg.LogPath()},
				})
				if err != nil {
					return err
				}
			}
			return app.Serve(cmd.Context(), cfg, logger)
		},
	}
}
