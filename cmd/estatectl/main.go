package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/IsnaAyustin/final-project-ds/internal/config"
	"github.com/IsnaAyustin/final-project-ds/internal/infrastructure"
)

// options are the persistent flags shared by every command
type options struct {
	configFile string
	logLevel   string
	cfg        *config.Config
	logger     *slog.Logger
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "estatectl",
		Short: "Prepare real estate transactions and run sale price predictions",
		Long: `estatectl runs the dashboard's preparation pipeline and prediction model
from the command line.

Configuration follows the server: defaults, then --config (or ESTATE_CONFIG_FILE),
then ESTATE_* environment variables.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return opts.init(cmd)
		},
	}

	cmd.PersistentFlags().StringVar(&opts.configFile, "config", "", "YAML config file")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "log level (debug, info, warn, error)")

	cmd.AddCommand(prepareCmd(opts))
	cmd.AddCommand(predictCmd(opts))
	cmd.AddCommand(versionCmd())

	return cmd
}

func (o *options) init(cmd *cobra.Command) error {
	var err error
	if o.configFile != "" {
		o.cfg, err = config.LoadFile(o.configFile)
	} else {
		o.cfg, err = config.Load()
	}
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	o.logger = infrastructure.NewLogger(cmd.ErrOrStderr(), o.logLevel)
	return nil
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	cancel()

	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
