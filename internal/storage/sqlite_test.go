package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/spice-tally/internal/analysis"
	"github.com/Veraticus/spice-tally/internal/common"
	"github.com/Veraticus/spice-tally/internal/model"
)

// Helper function to create test storage.
func createTestStorage(t *testing.T) *SQLiteStorage {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")

	store, err := NewSQLiteStorage(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	require.NoError(t, store.Migrate(context.Background()))
	return store
}

func testRecords() []*model.TransactionRecord {
	return []*model.TransactionRecord{
		{ID: "t1", Type: model.TypeCredit, Amount: model.Float(1500), To: "Alice", Category: "salary", Date: "2024-01-01"},
		{ID: "t2", Type: model.TypeDebit, Amount: model.Float(200.5), To: "Bob", Category: "food"},
		{ID: "t3", Type: "refund", Amount: model.Float(10), To: "Shop"},
		{ID: "t4", Type: model.TypeDebit},
	}
}

func TestNewSQLiteStorage(t *testing.T) {
	t.Run("creates missing directories", func(t *testing.T) {
		dbPath := filepath.Join(t.TempDir(), "nested", "dir", "tally.db")
		store, err := NewSQLiteStorage(dbPath)
		require.NoError(t, err)
		defer func() { _ = store.Close() }()

		assert.Equal(t, dbPath, store.Path())
	})

	t.Run("in memory", func(t *testing.T) {
		store, err := NewSQLiteStorage(":memory:")
		require.NoError(t, err)
		defer func() { _ = store.Close() }()

		require.NoError(t, store.Migrate(context.Background()))
	})

	t.Run("empty path", func(t *testing.T) {
		_, err := NewSQLiteStorage("  ")
		assert.ErrorIs(t, err, ErrEmptyString)
	})
}

func TestMigrate(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	version, err := store.SchemaVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, ExpectedSchemaVersion, version)

	// Running again is a no-op.
	require.NoError(t, store.Migrate(ctx))
	version, err = store.SchemaVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, ExpectedSchemaVersion, version)
}

func TestSaveAndLoadRecords(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	inserted, err := store.SaveRecords(ctx, "jan", testRecords())
	require.NoError(t, err)
	assert.Equal(t, 4, inserted)

	loaded, err := store.LoadRecords(ctx, "jan")
	require.NoError(t, err)
	require.Len(t, loaded, 4)

	assert.Equal(t, testRecords(), loaded)
	assert.Nil(t, loaded[3].Amount)
}

func TestSaveRecordsSkipsDuplicatesAndNils(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	records := testRecords()
	inserted, err := store.SaveRecords(ctx, "jan", append(records, nil, records[0]))
	require.NoError(t, err)
	assert.Equal(t, 5, inserted, "a repeated record later in the input is kept")

	// Re-importing the same file adds nothing.
	inserted, err = store.SaveRecords(ctx, "jan", append(testRecords(), nil, testRecords()[0]))
	require.NoError(t, err)
	assert.Equal(t, 0, inserted)

	// A different source with the same content is a separate import.
	inserted, err = store.SaveRecordsFrom(ctx, "jan", "jan-copy.json", testRecords())
	require.NoError(t, err)
	assert.Equal(t, 4, inserted)

	// The same records in another batch are kept separately.
	inserted, err = store.SaveRecords(ctx, "feb", testRecords())
	require.NoError(t, err)
	assert.Equal(t, 4, inserted)

	all, err := store.LoadRecords(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 13)
}

func TestStoredRecordsAnalyzeLikeInput(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	records := []*model.TransactionRecord{
		{Type: model.TypeCredit, Amount: model.Float(100), To: "Alice", Category: "gift"},
		{Type: model.TypeCredit, Amount: model.Float(100), To: "Alice", Category: "gift"},
		{Type: model.TypeDebit, Amount: model.Float(40), To: "Bob", Category: "food"},
		{Type: model.TypeCredit, Amount: model.Float(100), To: "Alice", Category: "gift"},
	}

	_, err := store.SaveRecordsFrom(ctx, "dupes", "dupes.json", records)
	require.NoError(t, err)

	loaded, err := store.LoadRecords(ctx, "dupes")
	require.NoError(t, err)

	want := analysis.Analyze(records)
	require.NotNil(t, want)
	assert.Equal(t, 4, want.TransactionCount)
	assert.Equal(t, want, analysis.Analyze(loaded))
}

func TestSaveRecordsValidation(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	tests := []struct {
		wantErr error
		name    string
		batch   string
		records []*model.TransactionRecord
	}{
		{name: "empty batch", batch: "", records: testRecords(), wantErr: ErrEmptyString},
		{name: "nil records", batch: "b", records: nil, wantErr: ErrNilParameter},
		{name: "empty records", batch: "b", records: []*model.TransactionRecord{}, wantErr: ErrEmptySlice},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := store.SaveRecords(ctx, tt.batch, tt.records)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	//nolint:staticcheck // nil context is the case under test
	_, err := store.SaveRecords(nil, "b", testRecords())
	assert.ErrorIs(t, err, ErrNilContext)
}

func TestLoadRecordsUnknownBatch(t *testing.T) {
	store := createTestStorage(t)

	_, err := store.LoadRecords(context.Background(), "missing")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestLoadRecordsEmptyDatabase(t *testing.T) {
	store := createTestStorage(t)

	records, err := store.LoadRecords(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestListBatches(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	_, err := store.SaveRecordsFrom(ctx, "jan", "jan.json", testRecords())
	require.NoError(t, err)
	_, err = store.SaveRecordsFrom(ctx, "feb", "feb.ofx", testRecords()[:2])
	require.NoError(t, err)
	_, err = store.SaveRecordsFrom(ctx, "jan", "jan-extra.json", []*model.TransactionRecord{
		{ID: "t9", Type: model.TypeDebit, Amount: model.Float(9)},
	})
	require.NoError(t, err)
	_, err = store.SaveRecordsFrom(ctx, "jan", "jan.json", testRecords())
	require.NoError(t, err)

	batches, err := store.ListBatches(ctx)
	require.NoError(t, err)
	require.Len(t, batches, 2)

	assert.Equal(t, "feb", batches[0].Name)
	assert.Equal(t, 2, batches[0].RecordCount)
	assert.Equal(t, []string{"feb.ofx"}, batches[0].Sources)

	assert.Equal(t, "jan", batches[1].Name)
	assert.Equal(t, 5, batches[1].RecordCount)
	assert.Equal(t, []string{"jan.json", "jan-extra.json"}, batches[1].Sources)
	assert.False(t, batches[1].ImportedAt.IsZero())
}

func TestDeleteBatch(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	_, err := store.SaveRecords(ctx, "jan", testRecords())
	require.NoError(t, err)
	_, err = store.SaveRecords(ctx, "feb", testRecords()[:1])
	require.NoError(t, err)

	require.NoError(t, store.DeleteBatch(ctx, "jan"))

	_, err = store.LoadRecords(ctx, "jan")
	assert.ErrorIs(t, err, common.ErrNotFound)

	all, err := store.LoadRecords(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 1)

	err = store.DeleteBatch(ctx, "jan")
	assert.ErrorIs(t, err, common.ErrNotFound)
}
