package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/postman/internal/cli"
	"github.com/aretw0/postman/internal/presentation/tui"
)

var reportsCmd = &cobra.Command{
	Use:   "reports [request-id]",
	Short: "List stored reports, or show one",
	Long: `Reads reports from the configured store. Only the redis store outlives a
single command, so point POSTMAN_REDIS_ADDR at the server the host writes to.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, _, err := loadStack(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		if len(args) == 0 {
			return cli.ListReports(cmd.Context(), s, cmd.OutOrStdout())
		}
		return cli.ShowReport(cmd.Context(), s, args[0], cmd.OutOrStdout(), tui.RendererFor(os.Stdout))
	},
}

func init() {
	rootCmd.AddCommand(reportsCmd)
}
