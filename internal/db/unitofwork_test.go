package db_test

import (
	"context"
	"errors"
	"testing"

	"github.com/alexanderramin/planwright/internal/db"
	"github.com/alexanderramin/planwright/internal/domain"
	"github.com/alexanderramin/planwright/internal/repository"
	"github.com/alexanderramin/planwright/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stageAssignment writes a resource and an item assigned to it, the pair
// an import lands together.
func stageAssignment(ctx context.Context, t *testing.T, tx db.DBTX) (*domain.Resource, *domain.WorkItem) {
	t.Helper()
	res := testutil.NewTestResource("Dana")
	item := testutil.NewTestWorkItem("Build", testutil.WithResource(res.ID))
	require.NoError(t, repository.NewSQLiteResourceRepo(tx).Create(ctx, res))
	require.NoError(t, repository.NewSQLiteWorkItemRepo(tx).Create(ctx, item))
	return res, item
}

func TestWithinTx_CommitsResourceAndItemTogether(t *testing.T) {
	database := testutil.NewTestDB(t)
	ctx := context.Background()

	var item *domain.WorkItem
	err := db.NewSQLiteUnitOfWork(database).WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		_, item = stageAssignment(ctx, t, tx)
		return nil
	})
	require.NoError(t, err)

	got, err := repository.NewSQLiteWorkItemRepo(database).GetByID(ctx, item.ID)
	require.NoError(t, err)
	require.NotNil(t, got.AssignedResourceID)
	assert.Equal(t, 1, testutil.CountRows(t, database, "resources"))
}

func TestWithinTx_RollsBackOnError(t *testing.T) {
	database := testutil.NewTestDB(t)
	failed := errors.New("edge would close a cycle")

	err := db.NewSQLiteUnitOfWork(database).WithinTx(context.Background(), func(ctx context.Context, tx db.DBTX) error {
		stageAssignment(ctx, t, tx)
		return failed
	})
	require.ErrorIs(t, err, failed)
	testutil.AssertEmptyPlan(t, database)
}

func TestWithinTx_RollsBackOnPanic(t *testing.T) {
	database := testutil.NewTestDB(t)

	assert.PanicsWithValue(t, "boom", func() {
		_ = db.NewSQLiteUnitOfWork(database).WithinTx(context.Background(), func(ctx context.Context, tx db.DBTX) error {
			stageAssignment(ctx, t, tx)
			panic("boom")
		})
	})
	testutil.AssertEmptyPlan(t, database)
}

func TestWithinTx_CancelledContextDoesNotCommit(t *testing.T) {
	database := testutil.NewTestDB(t)
	ctx, cancel := context.WithCancel(context.Background())

	err := db.NewSQLiteUnitOfWork(database).WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		stageAssignment(ctx, t, tx)
		cancel()
		return nil
	})
	require.ErrorIs(t, err, context.Canceled)
	testutil.AssertEmptyPlan(t, database)
}

func TestWithinTx_TxScopedReadsSeeEarlierWrites(t *testing.T) {
	database := testutil.NewTestDB(t)

	err := db.NewSQLiteUnitOfWork(database).WithinTx(context.Background(), func(ctx context.Context, tx db.DBTX) error {
		res, _ := stageAssignment(ctx, t, tx)
		got, err := repository.NewSQLiteResourceRepo(tx).GetByID(ctx, res.ID)
		if err != nil {
			return err
		}
		assert.Equal(t, "Dana", got.Name)
		return nil
	})
	require.NoError(t, err)
}
