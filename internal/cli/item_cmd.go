package cli

import (
	"context"
	"fmt"

	"github.com/alexanderramin/planwright/internal/cli/formatter"
	"github.com/alexanderramin/planwright/internal/domain"
	"github.com/spf13/cobra"
)

func newItemCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "item",
		Short: "Manage work items",
	}

	cmd.AddCommand(
		newItemAddCmd(app),
		newItemListCmd(app),
		newItemDoneCmd(app),
		newItemRemoveCmd(app),
	)

	return cmd
}

func newItemAddCmd(app *App) *cobra.Command {
	var title, resource, due, status string
	var estimate float64
	var metadata map[string]string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a work item",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			w := &domain.WorkItem{
				Title:  title,
				Status: domain.WorkItemStatus(status),
			}
			if len(metadata) > 0 {
				w.Metadata = metadata
			}
			if cmd.Flags().Changed("estimate") {
				w.EstimatedHours = &estimate
			}
			if resource != "" {
				resID, err := resolveResourceID(ctx, app, resource)
				if err != nil {
					return err
				}
				w.AssignedResourceID = &resID
			}
			if due != "" {
				d, err := domain.ParseDate(due)
				if err != nil {
					return fmt.Errorf("invalid due date %q: %w", due, err)
				}
				w.DueDate = &d
			}

			if err := app.WorkItems.Create(ctx, w); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Created work item %s (%s)\n", w.Title, w.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "Work item title")
	cmd.Flags().Float64Var(&estimate, "estimate", 0, "Estimated effort in hours")
	cmd.Flags().StringVar(&resource, "resource", "", "Assigned resource (ID, ID prefix, or name)")
	cmd.Flags().StringVar(&due, "due", "", "Due date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&status, "status", string(domain.WorkItemTodo), "Status: todo, in_progress, done")
	cmd.Flags().StringToStringVar(&metadata, "meta", nil, "Metadata matched against resource filters (key=value, repeatable)")
	_ = cmd.MarkFlagRequired("title")

	return cmd
}

func newItemListCmd(app *App) *cobra.Command {
	var status string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List work items",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			items, err := app.WorkItems.List(ctx)
			if err != nil {
				return err
			}
			if status != "" {
				filtered := items[:0]
				for _, w := range items {
					if string(w.Status) == status {
						filtered = append(filtered, w)
					}
				}
				items = filtered
			}
			resources, err := resourceIndex(ctx, app)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatItemList(items, resources))
			return nil
		},
	}

	cmd.Flags().StringVar(&status, "status", "", "Only show items with this status")

	return cmd
}

func newItemDoneCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "done <item>",
		Short: "Mark a work item done",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			id, err := resolveItemID(ctx, app, args[0])
			if err != nil {
				return err
			}
			w, err := app.WorkItems.MarkDone(ctx, id)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Marked %s done\n", w.Title)
			return nil
		},
	}
}

func newItemRemoveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <item>",
		Short: "Delete a work item and its dependencies",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			id, err := resolveItemID(ctx, app, args[0])
			if err != nil {
				return err
			}
			if err := app.WorkItems.Delete(ctx, id); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Deleted work item %s\n", id)
			return nil
		},
	}
}
