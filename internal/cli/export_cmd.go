package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/alexanderramin/planwright/internal/export"
	"github.com/alexanderramin/planwright/internal/service"
	"github.com/spf13/cobra"
)

func newExportCmd(app *App) *cobra.Command {
	var start, out string
	var includeDone, criticalPath, weekends bool

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the computed timeline as JSON for chart tooling",
		RunE: func(cmd *cobra.Command, args []string) error {
			startDate, err := parseDateFlag("start", start)
			if err != nil {
				return err
			}
			doc, err := app.Plan.Export(context.Background(), service.ExportRequest{
				ScheduleRequest:  service.ScheduleRequest{Start: startDate, IncludeDone: includeDone},
				ShowCriticalPath: criticalPath,
				ShowWeekends:     weekends,
			})
			if err != nil {
				return err
			}

			if out == "" || out == "-" {
				return export.Write(cmd.OutOrStdout(), doc)
			}
			f, err := os.Create(out)
			if err != nil {
				return fmt.Errorf("creating export file: %w", err)
			}
			if err := export.Write(f, doc); err != nil {
				_ = f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return fmt.Errorf("closing export file: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Wrote timeline for %d tasks to %s\n", len(doc.Tasks), out)
			return nil
		},
	}

	cmd.Flags().StringVar(&start, "start", "", "Start date (YYYY-MM-DD, default today)")
	cmd.Flags().StringVar(&out, "out", "", "Output file (default stdout)")
	cmd.Flags().BoolVar(&includeDone, "include-done", false, "Also schedule items that are already done")
	cmd.Flags().BoolVar(&criticalPath, "critical-path", true, "Set chart_settings.show_critical_path")
	cmd.Flags().BoolVar(&weekends, "weekends", false, "Set chart_settings.show_weekends")

	return cmd
}
