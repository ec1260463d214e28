// Command smt decodes text with a configured statistical translation model, serves it
// over HTTP and manages phrase table stores.
package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/teatak/smt/config"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "smt",
		Short:        "Phrase-based and hierarchical statistical machine translation",
		SilenceUsage: true,
	}
	cmd.PersistentFlags().StringP("config", "c", "config.yaml", "configuration file")
	cmd.AddCommand(newDecodeCmd(), newServeCmd(), newTableCmd())
	return cmd
}

// loadConfig reads the file named by --config and builds the logger it asks for.
func loadConfig(cmd *cobra.Command) (config.Config, *slog.Logger, error) {
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return config.Config{}, nil, err
	}
	cfg, err := config.Load(path)
	if err != nil {
		return cfg, nil, err
	}
	level, _ := cfg.SlogLevel()
	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
	return cfg, logger, nil
}
