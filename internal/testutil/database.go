// Package testutil provides shared helpers for tests that need a database
// or a set of realistic records.
package testutil

import (
	"context"
	"testing"

	"github.com/Veraticus/spice-tally/internal/model"
	"github.com/Veraticus/spice-tally/internal/service"
	"github.com/Veraticus/spice-tally/internal/storage"
)

// TestDB is a migrated in-memory database bound to a test.
type TestDB struct {
	Storage service.Storage
	t       *testing.T
}

// SetupTestDB creates a new in-memory database, runs migrations, and closes
// it when the test finishes.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	store, err := storage.NewSQLiteStorage(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	if err := store.Migrate(context.Background()); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	t.Cleanup(func() {
		_ = store.Close()
	})

	return &TestDB{Storage: store, t: t}
}

// Seed saves records under batch and fails the test on error.
func (db *TestDB) Seed(batch string, records []*model.TransactionRecord) *TestDB {
	db.t.Helper()

	if _, err := db.Storage.SaveRecords(context.Background(), batch, records); err != nil {
		db.t.Fatalf("failed to seed batch %q: %v", batch, err)
	}
	return db
}

// SampleRecords returns a small mixed set of records: three valid ones and
// one with a negative amount that analysis ignores.
func SampleRecords() []*model.TransactionRecord {
	return []*model.TransactionRecord{
		{ID: "t1", Type: model.TypeCredit, Amount: model.Float(1500), To: "Alice", Category: "salary", Date: "2024-01-01"},
		{ID: "t2", Type: model.TypeDebit, Amount: model.Float(200), To: "Bob", Category: "food", Date: "2024-01-02"},
		{ID: "t3", Type: model.TypeDebit, Amount: model.Float(300), To: "Alice", Category: "food", Date: "2024-01-03"},
		{ID: "t4", Type: model.TypeDebit, Amount: model.Float(-50), To: "Carol", Category: "misc", Date: "2024-01-04"},
	}
}
