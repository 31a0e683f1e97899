package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aretw0/postman"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of postman",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "postman version %s\n", strings.TrimSpace(postman.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
