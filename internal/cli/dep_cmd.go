package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/alexanderramin/planwright/internal/cli/formatter"
	"github.com/alexanderramin/planwright/internal/domain"
	"github.com/alexanderramin/planwright/internal/graph"
	"github.com/spf13/cobra"
)

// errCycleRejected is what the user sees when an edge is refused.
var errCycleRejected = errors.New("this dependency would create a cycle and was not added")

func newDepCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dep",
		Short: "Manage dependencies between work items",
	}

	cmd.AddCommand(
		newDepAddCmd(app),
		newDepRemoveCmd(app),
		newDepListCmd(app),
	)

	return cmd
}

func newDepAddCmd(app *App) *cobra.Command {
	var kind string

	cmd := &cobra.Command{
		Use:   "add <predecessor> <successor>",
		Short: "Make <successor> depend on <predecessor>",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			kindVal, err := domain.ParseDependencyType(kind)
			if err != nil {
				return err
			}
			from, err := resolveItemID(ctx, app, args[0])
			if err != nil {
				return err
			}
			to, err := resolveItemID(ctx, app, args[1])
			if err != nil {
				return err
			}

			err = app.Dependencies.Add(ctx, domain.Dependency{From: from, To: to, Kind: kindVal})
			if errors.Is(err, graph.ErrCycleDetected) {
				return errCycleRejected
			}
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Added %s dependency %s → %s\n", kindVal.Short(), args[0], args[1])
			return nil
		},
	}

	cmd.Flags().StringVar(&kind, "kind", "fs", "Relation: fs, ss, ff, sf (or the full names)")

	return cmd
}

func newDepRemoveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <predecessor> <successor>",
		Short: "Remove a dependency",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			from, err := resolveItemID(ctx, app, args[0])
			if err != nil {
				return err
			}
			to, err := resolveItemID(ctx, app, args[1])
			if err != nil {
				return err
			}

			removed, err := app.Dependencies.Remove(ctx, from, to)
			if err != nil {
				return err
			}
			if !removed {
				fmt.Fprintf(cmd.OutOrStdout(), "No dependency %s → %s\n", args[0], args[1])
				return nil
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Removed dependency %s → %s\n", args[0], args[1])
			return nil
		},
	}
}

func newDepListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List dependencies",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			deps, err := app.Dependencies.List(ctx)
			if err != nil {
				return err
			}
			items, err := itemIndex(ctx, app)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatDependencyList(deps, items))
			return nil
		},
	}
}
