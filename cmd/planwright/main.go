package main

import (
	"fmt"
	"os"

	"github.com/alexanderramin/planwright/internal/cli"
	"github.com/alexanderramin/planwright/internal/cli/formatter"
	"github.com/alexanderramin/planwright/internal/config"
	"github.com/alexanderramin/planwright/internal/db"
	"github.com/alexanderramin/planwright/internal/repository"
	"github.com/alexanderramin/planwright/internal/service"
	"github.com/mattn/go-isatty"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := config.Load()

	dbPath, err := cfg.ResolveDBPath()
	if err != nil {
		return err
	}

	// Open database
	database, err := db.OpenDB(dbPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer database.Close()

	// Wire repositories
	workItemRepo := repository.NewSQLiteWorkItemRepo(database)
	resourceRepo := repository.NewSQLiteResourceRepo(database)
	depRepo := repository.NewSQLiteDependencyRepo(database)

	// Wire unit of work for transactional operations
	uow := db.NewSQLiteUnitOfWork(database)

	var observer service.UseCaseObserver = service.NoopUseCaseObserver{}
	if cfg.LogUseCases {
		observer = service.NewLogUseCaseObserver(os.Stderr)
	}

	app := &cli.App{
		WorkItems:    service.NewWorkItemService(workItemRepo, resourceRepo, observer),
		Resources:    service.NewResourceService(resourceRepo, observer),
		Dependencies: service.NewDependencyService(depRepo, uow, observer),
		Plan:         service.NewPlanService(workItemRepo, resourceRepo, depRepo, cfg.SchedulerOptions(), observer),
		Import:       service.NewImportService(uow, observer),
	}

	// Piped output gets plain tables without borders or color.
	if !isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsCygwinTerminal(os.Stdout.Fd()) {
		formatter.UsePlainStyles()
	}

	rootCmd := cli.NewRootCmd(app)
	return rootCmd.Execute()
}
