package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aretw0/uiengineer/internal/presentation/tui"
	"github.com/aretw0/uiengineer/internal/runtime"
	"github.com/aretw0/uiengineer/internal/sanitize"
	"github.com/aretw0/uiengineer/pkg/domain"
	"github.com/aretw0/uiengineer/pkg/fastui"
	"github.com/spf13/cobra"
)

var showCmd = &cobra.Command{
	Use:   "show <app|url>",
	Short: "Generate or update an app and preview it in the terminal",
	Long: `Shows the tree of an app, generating it when the store has none.
With --action the stored tree is updated first, like following a button.
A navigation URL such as "/todo-list?action=add%20item" names both the app
and the action; --action overrides the URL's action.
With --json the lowered FastUI components are printed instead of the preview.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		action, _ := cmd.Flags().GetString("action")
		asJSON, _ := cmd.Flags().GetBool("json")

		appID, action, err := resolveTarget(args[0], action)
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		st, err := buildStack(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer st.Close()

		tree, err := st.Service.Show(ctx, appID, action)
		if err != nil {
			return err
		}
		return printTree(ctx, cmd.OutOrStdout(), st.Service, appID, tree, asJSON)
	},
}

// resolveTarget splits a navigation URL into app and action. A plain
// identifier is returned as is.
func resolveTarget(arg, action string) (string, string, error) {
	appID := arg
	if strings.HasPrefix(arg, "/") {
		target, urlAction, err := runtime.ParseAction(arg)
		if err != nil {
			return "", "", err
		}
		appID = target
		if action == "" {
			action = urlAction
		}
	}
	action, err := sanitize.Input(action)
	if err != nil {
		return "", "", err
	}
	return appID, action, nil
}

type lowerer interface {
	Lower(ctx context.Context, appID string, tree domain.Tree) ([]fastui.Component, error)
}

func printTree(ctx context.Context, out io.Writer, svc lowerer, appID string, tree domain.Tree, asJSON bool) error {
	if asJSON {
		components, err := svc.Lower(ctx, appID, tree)
		if err != nil {
			return err
		}
		data, err := fastui.Encode(components)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(out, string(data))
		return err
	}

	rendered, err := tui.NewRenderer()(tui.Markdown(tree, appID))
	if err != nil {
		return err
	}
	_, err = fmt.Fprint(out, rendered)
	return err
}

func init() {
	rootCmd.AddCommand(showCmd)
	showCmd.Flags().StringP("action", "a", "", "Action to apply before showing")
	showCmd.Flags().Bool("json", false, "Print the lowered FastUI JSON")
}
