package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/okian/perception/internal/config"
	"github.com/okian/perception/pkg/logger"
)

// cli holds what every subcommand needs once the root pre-run has finished.
type cli struct {
	envFiles []string
	cfg      *config.Config
	log      logger.Logger
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		stop()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	c := &cli{}
	root := &cobra.Command{
		Use:   "perception",
		Short: "Player perception analyzer",
		Long: `Searches the web for coverage of an NFL player, asks a language model
for a structured perception report and serves the results on a dashboard.

Running without a subcommand starts the HTTP server.`,
		SilenceUsage:      true,
		PersistentPreRunE: c.setup,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.serve(cmd.Context())
		},
	}
	root.PersistentFlags().StringSliceVar(&c.envFiles, "env-file", nil, "dotenv files to load before reading PERCEPTION_* variables (default .env)")

	root.AddCommand(newServeCmd(c), newAnalyzeCmd(c))
	return root
}

// setup loads configuration and initializes the global logger. Logs go to
// stderr so analyze output on stdout stays machine readable.
func (c *cli) setup(cmd *cobra.Command, _ []string) error {
	if err := config.LoadDotEnv(c.envFiles...); err != nil {
		return err
	}
	cfg, err := config.Load(cmd.Context())
	if err != nil {
		return err
	}
	if err := logger.InitWith(os.Stderr, cfg.LogFormat); err != nil {
		return err
	}
	c.cfg = cfg
	c.log = logger.Get()

	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		c.log.Warn(cmd.Context(), "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}
	return nil
}
