package service

import (
	"context"
	"fmt"
	"time"

	"github.com/alexanderramin/planwright/internal/db"
	"github.com/alexanderramin/planwright/internal/domain"
	"github.com/alexanderramin/planwright/internal/repository"
)

type dependencyService struct {
	deps     repository.DependencyRepo
	uow      db.UnitOfWork
	observer UseCaseObserver
}

func NewDependencyService(
	deps repository.DependencyRepo,
	uow db.UnitOfWork,
	observers ...UseCaseObserver,
) DependencyService {
	return &dependencyService{
		deps:     deps,
		uow:      uow,
		observer: useCaseObserverOrNoop(observers),
	}
}

// Add checks the edge against the stored graph and persists it in the same
// transaction, so two writers cannot jointly close a cycle.
func (s *dependencyService) Add(ctx context.Context, dep domain.Dependency) (err error) {
	startedAt := time.Now().UTC()
	if dep.Kind == "" {
		dep.Kind = domain.FinishToStart
	}
	fields := map[string]any{"from": dep.From, "to": dep.To, "kind": string(dep.Kind)}
	defer func() { observe(ctx, s.observer, "add-dependency", startedAt, fields, err) }()

	if err := dep.Validate(); err != nil {
		return err
	}

	return s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		txItems := repository.NewSQLiteWorkItemRepo(tx)
		txDeps := repository.NewSQLiteDependencyRepo(tx)

		for _, id := range []string{dep.From, dep.To} {
			if _, err := txItems.GetByID(ctx, id); err != nil {
				return fmt.Errorf("loading work item %s: %w", id, err)
			}
		}
		snap, err := loadPlan(ctx, txItems, nil, txDeps)
		if err != nil {
			return err
		}
		if err := snap.graph.AddDependency(dep); err != nil {
			return fmt.Errorf("adding dependency %s -> %s: %w", dep.From, dep.To, err)
		}
		fields["graph_size"] = snap.graph.Len()
		if err := txDeps.Upsert(ctx, &dep); err != nil {
			return fmt.Errorf("creating dependency: %w", err)
		}
		return nil
	})
}

func (s *dependencyService) Remove(ctx context.Context, from, to string) (removed bool, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{"from": from, "to": to}
	defer func() {
		fields["removed"] = removed
		observe(ctx, s.observer, "remove-dependency", startedAt, fields, err)
	}()

	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		txDeps := repository.NewSQLiteDependencyRepo(tx)
		snap, err := loadPlan(ctx, repository.NewSQLiteWorkItemRepo(tx), nil, txDeps)
		if err != nil {
			return err
		}
		if !snap.graph.RemoveDependency(from, to) {
			removed = false
			return nil
		}
		removed, err = txDeps.Delete(ctx, from, to)
		if err != nil {
			return fmt.Errorf("removing dependency %s -> %s: %w", from, to, err)
		}
		return nil
	})
	if err != nil {
		return false, err
	}
	return removed, nil
}

func (s *dependencyService) List(ctx context.Context) ([]domain.Dependency, error) {
	deps, err := s.deps.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing dependencies: %w", err)
	}
	return deps, nil
}
