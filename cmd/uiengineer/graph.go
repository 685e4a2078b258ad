package main

import (
	"fmt"

	"github.com/aretw0/uiengineer/internal/presentation/graph"
	"github.com/spf13/cobra"
)

// graphCmd represents the graph command
var graphCmd = &cobra.Command{
	Use:   "graph <app>",
	Short: "Export the component tree of an app",
	Long: `Loads the stored tree of an app and outputs a Mermaid diagram (graph TD)
with one node per component and dotted edges to the actions they trigger.
It never generates: an app missing from the store is an error.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		highlight, _ := cmd.Flags().GetString("highlight")

		st, err := buildStack(cmd.Context(), cfg, logger)
		if err != nil {
			return err
		}
		defer st.Close()

		tree, err := st.Service.Store().Load(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		var overlay *graph.GraphOverlay
		if highlight != "" {
			overlay = &graph.GraphOverlay{CurrentAction: highlight}
		}
		_, err = fmt.Fprint(cmd.OutOrStdout(), graph.GenerateMermaid(args[0], tree, overlay))
		return err
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
	graphCmd.Flags().String("highlight", "", "Highlight the components triggering this action")
}
