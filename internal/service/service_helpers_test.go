package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/alexanderramin/planwright/internal/domain"
	"github.com/alexanderramin/planwright/internal/repository"
	"github.com/alexanderramin/planwright/internal/scheduler"
	"github.com/alexanderramin/planwright/internal/testutil"
	"github.com/stretchr/testify/require"
)

type testServices struct {
	db        *sql.DB
	workItems repository.WorkItemRepo
	resources repository.ResourceRepo
	deps      repository.DependencyRepo

	items     WorkItemService
	resSvc    ResourceService
	depSvc    DependencyService
	plan      PlanService
	importSvc ImportService
}

func setupServices(t *testing.T, observers ...UseCaseObserver) *testServices {
	t.Helper()
	database := testutil.NewTestDB(t)
	uow := testutil.NewTestUoW(database)
	wiRepo := repository.NewSQLiteWorkItemRepo(database)
	resRepo := repository.NewSQLiteResourceRepo(database)
	depRepo := repository.NewSQLiteDependencyRepo(database)
	return &testServices{
		db:        database,
		workItems: wiRepo,
		resources: resRepo,
		deps:      depRepo,
		items:     NewWorkItemService(wiRepo, resRepo, observers...),
		resSvc:    NewResourceService(resRepo, observers...),
		depSvc:    NewDependencyService(depRepo, uow, observers...),
		plan:      NewPlanService(wiRepo, resRepo, depRepo, scheduler.DefaultOptions(), observers...),
		importSvc: NewImportService(uow, observers...),
	}
}

func (s *testServices) addResource(t *testing.T, name string, opts ...testutil.ResourceOption) *domain.Resource {
	t.Helper()
	r := testutil.NewTestResource(name, opts...)
	require.NoError(t, s.resSvc.Create(context.Background(), r))
	return r
}

func (s *testServices) addItem(t *testing.T, title string, opts ...testutil.WorkItemOption) *domain.WorkItem {
	t.Helper()
	w := testutil.NewTestWorkItem(title, opts...)
	require.NoError(t, s.items.Create(context.Background(), w))
	return w
}

func (s *testServices) link(t *testing.T, from, to *domain.WorkItem, kind domain.DependencyType) {
	t.Helper()
	require.NoError(t, s.depSvc.Add(context.Background(), domain.Dependency{From: from.ID, To: to.ID, Kind: kind}))
}

func titles(items []*domain.WorkItem) []string {
	out := make([]string, len(items))
	for i, w := range items {
		out[i] = w.Title
	}
	return out
}

type recordingObserver struct {
	events []UseCaseEvent
}

func (o *recordingObserver) ObserveUseCase(_ context.Context, e UseCaseEvent) {
	o.events = append(o.events, e)
}

func (o *recordingObserver) names() []string {
	out := make([]string, len(o.events))
	for i, e := range o.events {
		out[i] = e.Name
	}
	return out
}

func ptrStr(s string) *string     { return &s }
func ptrFloat(f float64) *float64 { return &f }
