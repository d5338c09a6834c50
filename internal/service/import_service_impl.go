package service

import (
	"context"
	"fmt"
	"time"

	"github.com/alexanderramin/planwright/internal/db"
	"github.com/alexanderramin/planwright/internal/importer"
	"github.com/alexanderramin/planwright/internal/repository"
)

type importService struct {
	uow      db.UnitOfWork
	observer UseCaseObserver
}

func NewImportService(uow db.UnitOfWork, observers ...UseCaseObserver) ImportService {
	return &importService{
		uow:      uow,
		observer: useCaseObserverOrNoop(observers),
	}
}

func (s *importService) ImportPlan(ctx context.Context, filePath string) (*ImportResult, error) {
	schema, err := importer.LoadImportSchema(filePath)
	if err != nil {
		return nil, fmt.Errorf("loading import file: %w", err)
	}
	return s.ImportPlanFromSchema(ctx, schema)
}

// ImportPlanFromSchema validates and converts schema, then writes every
// resource, item and edge in one transaction. Nothing is persisted when any
// step fails.
func (s *importService) ImportPlanFromSchema(ctx context.Context, schema *importer.ImportSchema) (res *ImportResult, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{
		"resources":    len(schema.Resources),
		"items":        len(schema.Items),
		"dependencies": len(schema.Dependencies),
	}
	defer func() { observe(ctx, s.observer, "import-plan", startedAt, fields, err) }()

	if errs := importer.ValidateImportSchema(schema); len(errs) > 0 {
		fields["validation_errors"] = len(errs)
		return nil, formatValidationErrors(errs)
	}

	plan, err := importer.Convert(schema)
	if err != nil {
		return nil, fmt.Errorf("converting import schema: %w", err)
	}

	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		txResources := repository.NewSQLiteResourceRepo(tx)
		txItems := repository.NewSQLiteWorkItemRepo(tx)
		txDeps := repository.NewSQLiteDependencyRepo(tx)

		for _, r := range plan.Resources {
			if err := txResources.Create(ctx, r); err != nil {
				return fmt.Errorf("creating resource %q: %w", r.Name, err)
			}
		}
		for _, w := range plan.Items {
			if err := txItems.Create(ctx, w); err != nil {
				return fmt.Errorf("creating work item %q: %w", w.Title, err)
			}
		}
		for i := range plan.Dependencies {
			if err := txDeps.Upsert(ctx, &plan.Dependencies[i]); err != nil {
				return fmt.Errorf("creating dependency: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &ImportResult{
		ResourceCount:   len(plan.Resources),
		ItemCount:       len(plan.Items),
		DependencyCount: len(plan.Dependencies),
		Refs:            plan.Refs,
	}, nil
}
