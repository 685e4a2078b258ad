package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/uiengineer"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of uiengineer",
	// The version needs no configuration.
	PersistentPreRun: func(cmd *cobra.Command, args []string) {},
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "uiengineer version %s\n", strings.TrimSpace(uiengineer.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
