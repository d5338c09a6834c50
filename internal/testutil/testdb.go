package testutil

import (
	"database/sql"
	"testing"

	"github.com/alexanderramin/planwright/internal/db"
)

// planTables are the tables a plan is stored in, children first.
var planTables = []string{"dependencies", "work_items", "resource_availability", "resources"}

// NewTestDB opens a migrated in-memory plan store that is closed with the test.
func NewTestDB(t *testing.T) *sql.DB {
	t.Helper()
	database, err := db.OpenDB(":memory:")
	if err != nil {
		t.Fatalf("opening plan store: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	return database
}

func NewTestUoW(database *sql.DB) db.UnitOfWork {
	return db.NewSQLiteUnitOfWork(database)
}

// CountRows returns the number of rows in one of the plan tables.
func CountRows(t *testing.T, database *sql.DB, table string) int {
	t.Helper()
	known := false
	for _, name := range planTables {
		known = known || name == table
	}
	if !known {
		t.Fatalf("CountRows: %q is not a plan table", table)
	}
	var n int
	if err := database.QueryRow(`SELECT COUNT(*) FROM ` + table).Scan(&n); err != nil {
		t.Fatalf("counting %s: %v", table, err)
	}
	return n
}

// AssertEmptyPlan fails the test when any plan table holds rows.
func AssertEmptyPlan(t *testing.T, database *sql.DB) {
	t.Helper()
	for _, table := range planTables {
		if n := CountRows(t, database, table); n != 0 {
			t.Errorf("%s: expected no rows, found %d", table, n)
		}
	}
}
