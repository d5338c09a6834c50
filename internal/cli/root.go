package cli

import (
	"github.com/alexanderramin/planwright/internal/service"
	"github.com/spf13/cobra"
)

// App holds references to all service interfaces used by CLI commands.
type App struct {
	WorkItems    service.WorkItemService
	Resources    service.ResourceService
	Dependencies service.DependencyService
	Plan         service.PlanService
	Import       service.ImportService
}

// NewRootCmd creates the top-level "planwright" command and registers all
// subcommands against the provided App.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "planwright",
		Short:         "Dependency-aware work planner and resource scheduler",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newItemCmd(app),
		newResourceCmd(app),
		newDepCmd(app),
		newOrderCmd(app),
		newCriticalPathCmd(app),
		newReadyCmd(app),
		newScheduleCmd(app),
		newImportCmd(app),
		newExportCmd(app),
	)

	return root
}
