package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var appsCmd = &cobra.Command{
	Use:   "apps",
	Short: "Manage stored apps",
}

var appsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored app identifiers",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := buildStack(cmd.Context(), cfg, logger)
		if err != nil {
			return err
		}
		defer st.Close()

		ids, err := st.Service.List(cmd.Context())
		if err != nil {
			return err
		}
		for _, id := range ids {
			fmt.Fprintln(cmd.OutOrStdout(), id)
		}
		return nil
	},
}

var appsDeleteCmd = &cobra.Command{
	Use:   "delete <app>...",
	Short: "Delete apps from the store",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := buildStack(cmd.Context(), cfg, logger)
		if err != nil {
			return err
		}
		defer st.Close()

		for _, id := range args {
			if err := st.Service.Delete(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", id)
		}
		return nil
	},
}

var appsRenameCmd = &cobra.Command{
	Use:   "rename <from> <to>",
	Short: "Move an app to a new identifier",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := buildStack(cmd.Context(), cfg, logger)
		if err != nil {
			return err
		}
		defer st.Close()

		if err := st.Service.Rename(cmd.Context(), args[0], args[1]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "renamed %s to %s\n", args[0], args[1])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(appsCmd)
	appsCmd.AddCommand(appsListCmd, appsDeleteCmd, appsRenameCmd)
}
