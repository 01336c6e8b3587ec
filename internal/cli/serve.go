package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gokatarajesh/timed-trivia/internal/app"
	"github.com/gokatarajesh/timed-trivia/internal/logging"
)

func newServeCmd(rt *rootState) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the quiz over WebSocket with leaderboard and metrics endpoints",
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr != "" {
				rt.cfg.HTTPAddr = addr
			}
			ctx := logging.IntoContext(cmd.Context(), rt.logger)

			instance, err := app.New(ctx, rt.cfg, rt.logger)
			if err != nil {
				return fmt.Errorf("build app: %w", err)
			}
			return instance.Run(ctx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address, overrides HTTP_ADDR")
	return cmd
}
