package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/postman/internal/cli"
)

var graphCmd = &cobra.Command{
	Use:   "graph <scenario.yaml>",
	Short: "Export the component tree as a Mermaid diagram",
	Long: `Outputs a Mermaid flowchart (graph TD) of the scenario tree. Boundaries and
ignored nodes get their own shapes. With --after N, the first N requests are
replayed and the changes of the last one are highlighted.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, _, err := loadStack(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		after, _ := cmd.Flags().GetInt("after")
		out, err := cli.Graph(cmd.Context(), s, args[0], after)
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), out)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
	graphCmd.Flags().Int("after", 0, "Replay this many requests and overlay the last result")
}
