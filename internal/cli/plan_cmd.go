package cli

import (
	"context"
	"fmt"

	"github.com/alexanderramin/planwright/internal/cli/formatter"
	"github.com/alexanderramin/planwright/internal/service"
	"github.com/spf13/cobra"
)

func newOrderCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "order",
		Short: "Show work items in dependency order",
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := app.Plan.Order(context.Background())
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatOrder(res.Items, res.Starts, res.Ends))
			return nil
		},
	}
}

func newCriticalPathCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "critical-path",
		Short: "Show the longest estimate-weighted chain",
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := app.Plan.CriticalPath(context.Background())
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatCriticalPath(res.Items, res.TotalHours))
			return nil
		},
	}
}

func newReadyCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "ready [item]",
		Short: "Check whether an item can start, or list everything that can",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			if len(args) == 0 {
				items, err := app.Plan.ReadyItems(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatReadyList(items))
				return nil
			}

			id, err := resolveItemID(ctx, app, args[0])
			if err != nil {
				return err
			}
			res, err := app.Plan.Ready(ctx, id)
			if err != nil {
				return err
			}

			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatReady(res.Item, res.Ready, res.BlockedBy))
			return nil
		},
	}
}

func newScheduleCmd(app *App) *cobra.Command {
	var start string
	var includeDone bool

	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Compute a resource-constrained timeline",
		RunE: func(cmd *cobra.Command, args []string) error {
			startDate, err := parseDateFlag("start", start)
			if err != nil {
				return err
			}
			res, err := app.Plan.Schedule(context.Background(), service.ScheduleRequest{
				Start:       startDate,
				IncludeDone: includeDone,
			})
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatSchedule(formatter.ScheduleView{
				Timeline:  res.Timeline,
				Items:     res.Items,
				Resources: res.Resources,
			}))
			return nil
		},
	}

	cmd.Flags().StringVar(&start, "start", "", "Start date (YYYY-MM-DD, default today)")
	cmd.Flags().BoolVar(&includeDone, "include-done", false, "Also schedule items that are already done")

	return cmd
}
