package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/aretw0/postman/internal/cli"
)

var serveCmd = &cobra.Command{
	Use:   "serve <scenario.yaml>",
	Short: "Start the demo host",
	Long: `Serves every page as a fresh copy of the scenario tree. POST mutations to
/pages/{id}/events and receive only the fragments of the boundaries that changed.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, cfg, err := loadStack(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		addr := cfg.HTTP.Addr
		if cmd.Flags().Changed("addr") {
			addr, _ = cmd.Flags().GetString("addr")
		}

		srv, err := cli.NewServer(s, cli.ServeOptions{
			Addr:     addr,
			Scenario: args[0],
			Metrics:  cfg.Metrics.Enabled,
		})
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return cli.Serve(ctx, s, srv)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("addr", "a", ":8080", "Address to listen on")
}
