// Package main provides the profilectl binary: the profile engine server and
// its offline tools.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/danielpatrickdp/adaptive-profile/internal/catalog"
	"github.com/danielpatrickdp/adaptive-profile/internal/config"
)

const appName = "profilectl"

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// rootOptions holds flags shared by every subcommand.
type rootOptions struct {
	configPath string
	logLevel   string
}

func rootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   appName,
		Short: "Adaptive personality profile engine",
		Long: `profilectl runs the adaptive profile engine and its offline tools.

It provides:
- serve: gRPC engine plus HTTP health, metrics and read endpoints
- replay: deterministic replay of fixtures or a user's decision log
- inspect: trait version history for a user
- layers: layer table and insight cards for an answers file
- questions: the question catalog with its trait weights`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "Config file path (YAML)")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Log level override (debug, info, warn, error)")

	cmd.AddCommand(
		serveCmd(opts),
		replayCmd(opts),
		inspectCmd(opts),
		layersCmd(opts),
		questionsCmd(opts),
	)
	return cmd
}

// load reads configuration and applies the --log-level override.
func (o *rootOptions) load() (*config.Config, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, err
	}
	if o.logLevel != "" {
		cfg.Log.Level = o.logLevel
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// loadCatalog returns the configured catalog or the built-in one.
func loadCatalog(path string) (*catalog.Catalog, error) {
	if path == "" {
		return catalog.Default(), nil
	}
	return catalog.Load(path)
}
