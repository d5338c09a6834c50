package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/alexanderramin/planwright/internal/cli/formatter"
	"github.com/alexanderramin/planwright/internal/domain"
	"github.com/spf13/cobra"
)

func newResourceCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resource",
		Short: "Manage resources and their calendars",
	}

	cmd.AddCommand(
		newResourceAddCmd(app),
		newResourceListCmd(app),
		newResourceAvailCmd(app),
	)

	return cmd
}

func newResourceAddCmd(app *App) *cobra.Command {
	var name, role string
	var weekly float64
	var skills []string
	var filters map[string]string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a resource",
		RunE: func(cmd *cobra.Command, args []string) error {
			r := &domain.Resource{
				Name:         name,
				Role:         role,
				WeeklyHours:  weekly,
				Availability: map[string]float64{},
				Skills:       skills,
			}
			if len(filters) > 0 {
				r.MetadataFilters = filters
			}
			if err := app.Resources.Create(context.Background(), r); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Created resource %s (%s)\n", r.Name, r.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Resource name")
	cmd.Flags().StringVar(&role, "role", "", "Role, e.g. backend")
	cmd.Flags().Float64Var(&weekly, "weekly-hours", 40, "Default hours per week, spread over Monday-Friday")
	cmd.Flags().StringSliceVar(&skills, "skill", nil, "Skill tag (repeatable or comma-separated)")
	cmd.Flags().StringToStringVar(&filters, "filter", nil, "Only take items whose metadata matches (key=value, repeatable)")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

func newResourceListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List resources",
		RunE: func(cmd *cobra.Command, args []string) error {
			resources, err := app.Resources.List(context.Background())
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatResourceList(resources, domain.WeekStart(time.Now().UTC())))
			return nil
		},
	}
}

func newResourceAvailCmd(app *App) *cobra.Command {
	var date string
	var hours float64
	var clearOverride bool

	cmd := &cobra.Command{
		Use:   "avail <resource>",
		Short: "Override a resource's hours on one date",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			id, err := resolveResourceID(ctx, app, args[0])
			if err != nil {
				return err
			}
			day, err := domain.ParseDate(date)
			if err != nil {
				return fmt.Errorf("invalid date %q: %w", date, err)
			}

			if clearOverride {
				if err := app.Resources.ClearAvailability(ctx, id, day); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Cleared override for %s\n", domain.DateKey(day))
				return nil
			}
			if !cmd.Flags().Changed("hours") {
				return fmt.Errorf("--hours is required unless --clear is set")
			}
			if err := app.Resources.SetAvailability(ctx, id, day, hours); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Set %s to %gh on %s\n", args[0], hours, domain.DateKey(day))
			return nil
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "Date (YYYY-MM-DD)")
	cmd.Flags().Float64Var(&hours, "hours", 0, "Available hours on that date")
	cmd.Flags().BoolVar(&clearOverride, "clear", false, "Remove the override and fall back to the weekly default")
	_ = cmd.MarkFlagRequired("date")

	return cmd
}
