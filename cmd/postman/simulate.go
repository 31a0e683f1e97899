package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/postman/internal/cli"
	"github.com/aretw0/postman/internal/presentation/tui"
)

var simulateCmd = &cobra.Command{
	Use:   "simulate <scenario.yaml>",
	Short: "Replay the requests of a scenario and report what each would re-render",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, _, err := loadStack(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		asJSON, _ := cmd.Flags().GetBool("json")
		prefix, _ := cmd.Flags().GetString("request-prefix")
		quiet, _ := cmd.Flags().GetBool("quiet")

		opts := cli.SimulateOptions{
			Path:          args[0],
			JSON:          asJSON,
			RequestPrefix: prefix,
			Output:        cmd.OutOrStdout(),
		}
		if !asJSON {
			if !quiet && tui.IsTerminal(os.Stdout) {
				tui.PrintBanner(cmd.OutOrStdout())
			}
			opts.Renderer = tui.RendererFor(os.Stdout)
		}

		_, err = cli.Simulate(cmd.Context(), s, opts)
		return err
	},
}

func init() {
	rootCmd.AddCommand(simulateCmd)
	simulateCmd.Flags().Bool("json", false, "Emit JSON lines instead of a report")
	simulateCmd.Flags().String("request-prefix", "", "Derive request IDs as <prefix>-<n>")
	simulateCmd.Flags().BoolP("quiet", "q", false, "Do not print the banner")
}
