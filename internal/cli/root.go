package cli

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/gokatarajesh/timed-trivia/internal/config"
	"github.com/gokatarajesh/timed-trivia/internal/logging"
)

// rootState is shared by every subcommand once PersistentPreRunE has run.
type rootState struct {
	envFile string
	cfg     *config.App
	logger  zerolog.Logger
}

// Execute runs the CLI. SIGINT and SIGTERM cancel the command context.
func Execute() error {
	ctx, stop := signalContext(context.Background())
	defer stop()
	return newRootCmd().ExecuteContext(ctx)
}

func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
}

func newRootCmd() *cobra.Command {
	rt := &rootState{}

	cmd := &cobra.Command{
		Use:          "trivia",
		Short:        "Timed trivia quiz server and terminal player",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return rt.load(cmd.Context(), logOutput(cmd))
		},
	}

	cmd.PersistentFlags().StringVar(&rt.envFile, "env-file", "configs/.env", "dotenv file loaded outside production")
	cmd.AddCommand(newServeCmd(rt))
	cmd.AddCommand(newPlayCmd(rt))
	return cmd
}

// load reads the dotenv file, parses config and builds the logger.
func (rt *rootState) load(ctx context.Context, logOut io.Writer) error {
	if os.Getenv("APP_ENV") != "production" && rt.envFile != "" {
		if err := godotenv.Load(rt.envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}

	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}
	rt.cfg = cfg
	rt.logger = logging.WithLevel(logging.NewWithWriter(logOut, cfg.Name, cfg.Env), cfg.LogLevel)
	return nil
}

// logOutput keeps stdout free for the terminal quiz.
func logOutput(cmd *cobra.Command) io.Writer {
	if cmd.Name() == "play" {
		return cmd.ErrOrStderr()
	}
	return cmd.OutOrStdout()
}
