package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/postman/internal/cli"
	"github.com/aretw0/postman/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "postman",
	Short: "Postman detects which refresh boundaries of a component tree need re-rendering",
	Long: `Postman fingerprints the state of every component when a request starts and
again when it ends, and marks only the refresh boundaries that enclose a change.
Use it to replay scenarios, draw component trees or run the demo host.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringP("config", "c", "", "YAML config file (POSTMAN_* env vars override it)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error")
}

// loadStack reads configuration with flag overrides and wires the engine.
func loadStack(cmd *cobra.Command) (*cli.Stack, config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, cfg, err
	}
	if lvl, _ := cmd.Flags().GetString("log-level"); lvl != "" {
		cfg.LogLevel = lvl
		if err := cfg.Validate(); err != nil {
			return nil, cfg, err
		}
	}
	s, err := cli.NewStack(cfg)
	return s, cfg, err
}
