package cmd

import (
	"context"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/gangland/server/gangland"
	"github.com/gangland/server/gangland/logger"
)

var (
	configPath string
	cfg        *gangland.Config
)

var rootCmd = &cobra.Command{
	Use:           "gangctl",
	Short:         "operator tooling for the gangland server",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		if cfg, err = gangland.LoadConfig(configPath); err != nil {
			return err
		}
		slog.SetDefault(slog.New(logger.NewHandler(os.Stderr, logger.Options{
			Level:   cfg.Log.Level,
			NoColor: cfg.Log.NoColor,
		})))
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config.toml", "path to config")
}

// Execute runs the command tree and returns the first error.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}
